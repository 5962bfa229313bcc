package lang

import (
	"errors"
	"fmt"

	"github.com/sergev/glox/parser"
)

// ErrRuntime marks errors raised while executing a program.
var ErrRuntime = errors.New("runtime error")

// RuntimeError aborts execution. Token locates the offending operator, name
// or call site.
type RuntimeError struct {
	Token   parser.Token
	Message string
}

func (e *RuntimeError) Error() string {
	if e.Token.Lexeme == "" {
		return fmt.Sprintf("%s\n[line %d]", e.Message, e.Token.Line)
	}
	return fmt.Sprintf("%s\n[line %d] at '%s'", e.Message, e.Token.Line, e.Token.Lexeme)
}

func (e *RuntimeError) Unwrap() error {
	return ErrRuntime
}

func runtimeErrorf(tok parser.Token, format string, args ...interface{}) error {
	return &RuntimeError{Token: tok, Message: fmt.Sprintf(format, args...)}
}
