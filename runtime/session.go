package runtime

import (
	"fmt"
	"io"
	"os"

	"github.com/sergev/glox/lang"
	"github.com/sergev/glox/parser"
	"github.com/sergev/glox/resolver"
)

// Session runs source text through scan, parse, resolve and interpret,
// keeping one interpreter alive so later input sees earlier declarations.
//
// Static errors (lexical, syntax, resolution) are all reported and prevent
// execution. A runtime error stops the current run. Either kind is written
// to the diagnostics writer and returned.
type Session struct {
	interp   *lang.Interpreter
	out      io.Writer
	diag     io.Writer
	printAST bool

	// HadError is set by static errors, HadRuntimeError by runtime errors.
	HadError        bool
	HadRuntimeError bool
}

// NewSession creates a session printing program output to out and
// diagnostics to diag. Nil writers default to stdout and stderr; a nil cfg
// means DefaultConfig.
func NewSession(out, diag io.Writer, cfg *Config) *Session {
	if out == nil {
		out = os.Stdout
	}
	if diag == nil {
		diag = os.Stderr
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Session{
		interp:   NewInterpreter(out, cfg.Options()),
		out:      out,
		diag:     diag,
		printAST: cfg.PrintAST,
	}
}

// Interpreter exposes the session's interpreter, e.g. to define natives.
func (s *Session) Interpreter() *lang.Interpreter {
	return s.interp
}

// ResetErrors clears both error flags, as the REPL does between entries.
func (s *Session) ResetErrors() {
	s.HadError = false
	s.HadRuntimeError = false
}

// Run executes a complete program.
func (s *Session) Run(src string) error {
	stmts, err := parser.ParseString(src)
	if err != nil {
		return s.staticError(err)
	}
	return s.execute(stmts)
}

// RunReader executes the program read from r.
func (s *Session) RunReader(r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	return s.Run(string(data))
}

// RunFile loads and executes a script, allowing a #! first line.
func (s *Session) RunFile(path string) error {
	data, err := readFileSkippingShebang(path)
	if err != nil {
		return err
	}
	return s.Run(string(data))
}

// Eval executes one REPL entry. When src is not a valid program but is a
// single expression, its value is printed instead.
func (s *Session) Eval(src string) error {
	stmts, err := parser.ParseString(src)
	if err == nil {
		return s.execute(stmts)
	}
	expr, ok := parseExpression(src)
	if !ok {
		return s.staticError(err)
	}
	if s.printAST {
		fmt.Fprintln(s.diag, parser.Print(expr))
	}
	if err := resolver.ResolveExpr(expr, s.interp); err != nil {
		return s.staticError(err)
	}
	v, err := s.interp.Evaluate(expr)
	if err != nil {
		return s.runtimeError(err)
	}
	fmt.Fprintln(s.out, v.String())
	return nil
}

func (s *Session) execute(stmts []parser.Stmt) error {
	if s.printAST {
		fmt.Fprint(s.diag, parser.PrintProgram(stmts))
	}
	if err := resolver.Resolve(stmts, s.interp); err != nil {
		return s.staticError(err)
	}
	if err := s.interp.Interpret(stmts); err != nil {
		return s.runtimeError(err)
	}
	return nil
}

func (s *Session) staticError(err error) error {
	s.HadError = true
	fmt.Fprintln(s.diag, err)
	return err
}

func (s *Session) runtimeError(err error) error {
	s.HadRuntimeError = true
	fmt.Fprintln(s.diag, err)
	return err
}
