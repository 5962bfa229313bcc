package parser

import (
	"errors"
	"io"
)

// ParseString scans and parses source text into a program. Lexical errors do
// not stop parsing; lexical and syntax errors are returned together, in that
// order, as Errors.
func ParseString(src string) ([]Stmt, error) {
	tokens, scanErr := Scan(src)
	stmts, parseErr := Parse(tokens)
	if err := joinErrors(scanErr, parseErr); err != nil {
		return nil, err
	}
	return stmts, nil
}

// ParseReader consumes source from an io.Reader and parses it.
func ParseReader(r io.Reader) ([]Stmt, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return ParseString(string(data))
}

// joinErrors merges Errors collections from successive passes.
func joinErrors(errs ...error) error {
	var all Errors
	for _, err := range errs {
		if err == nil {
			continue
		}
		var list Errors
		if errors.As(err, &list) {
			all = append(all, list...)
			continue
		}
		var single *Error
		if errors.As(err, &single) {
			all = append(all, single)
		}
	}
	return all.Err()
}
