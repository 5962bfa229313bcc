package runtime

import (
	"bytes"
	"io"
	"os"

	"github.com/sergev/glox/lang"
	"github.com/sergev/glox/parser"
)

// NewInterpreter constructs an interpreter with the native functions
// installed. Printed values go to out.
func NewInterpreter(out io.Writer, opts lang.Options) *lang.Interpreter {
	in := lang.NewInterpreter(out, opts)
	installNatives(in)
	return in
}

// readFileSkippingShebang blanks a leading #! line but keeps its newline so
// diagnostics still report the right line numbers.
func readFileSkippingShebang(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if bytes.HasPrefix(data, []byte("#!")) {
		if idx := bytes.IndexByte(data, '\n'); idx >= 0 {
			return data[idx:], nil
		}
		return []byte{}, nil
	}
	return data, nil
}

// NeedsMore reports whether src is an unfinished program that more input
// could complete. An open block comment always needs more. A lone
// expression without a trailing semicolon is complete: the REPL evaluates
// and prints it.
func NeedsMore(src string) bool {
	if parser.OpenComments(src) > 0 {
		return true
	}
	_, err := parser.ParseString(src)
	if err == nil || !parser.IsIncomplete(err) {
		return false
	}
	_, ok := parseExpression(src)
	return !ok
}

// parseExpression parses src as exactly one expression.
func parseExpression(src string) (parser.Expr, bool) {
	tokens, err := parser.Scan(src)
	if err != nil {
		return nil, false
	}
	expr, err := parser.ParseExpression(tokens)
	if err != nil {
		return nil, false
	}
	return expr, true
}
