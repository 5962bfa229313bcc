package parser

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrLex marks errors reported while scanning source text.
	ErrLex = errors.New("lex error")

	// ErrParse marks errors reported while building the syntax tree.
	ErrParse = errors.New("parse error")
)

// Error is a static (pre-execution) error anchored to a source line.
type Error struct {
	Line    int
	Where   string // "", " at end" or " at 'lexeme'"
	Message string
	Kind    error

	// Incomplete is set when the error was caused by running out of input.
	Incomplete bool
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("[line %d] Error%s: %s", e.Line, e.Where, e.Message)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Kind
}

// NewTokenError builds an error positioned at tok, in the "at end" /
// "at 'lexeme'" form.
func NewTokenError(kind error, tok Token, msg string) *Error {
	e := &Error{
		Line:    tok.Line,
		Message: msg,
		Kind:    kind,
	}
	if tok.Type == TokenEOF {
		e.Where = " at end"
		e.Incomplete = true
	} else {
		e.Where = fmt.Sprintf(" at '%s'", tok.Lexeme)
	}
	return e
}

func newLineError(line int, msg string) *Error {
	return &Error{
		Line:    line,
		Message: msg,
		Kind:    ErrLex,
	}
}

// Errors is an ordered collection of static errors from a single pass.
type Errors []*Error

func (es Errors) Error() string {
	lines := make([]string, len(es))
	for i, e := range es {
		lines[i] = e.Error()
	}
	return strings.Join(lines, "\n")
}

func (es Errors) Unwrap() []error {
	out := make([]error, len(es))
	for i, e := range es {
		out[i] = e
	}
	return out
}

// Err returns es as an error, or nil when nothing was collected.
func (es Errors) Err() error {
	if len(es) == 0 {
		return nil
	}
	return es
}

// IsIncomplete reports whether err only describes input that ended too early,
// so that more input could still make it valid.
func IsIncomplete(err error) bool {
	var list Errors
	if errors.As(err, &list) {
		if len(list) == 0 {
			return false
		}
		for _, e := range list {
			if !e.Incomplete {
				return false
			}
		}
		return true
	}
	var single *Error
	if errors.As(err, &single) {
		return single.Incomplete
	}
	return false
}
