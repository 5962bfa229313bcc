package parser

import (
	"errors"
	"math"
	"testing"
)

func scanAll(t *testing.T, src string) []Token {
	t.Helper()
	tokens, err := Scan(src)
	if err != nil {
		t.Fatalf("unexpected scan error: %v", err)
	}
	return tokens
}

func tokenTypes(tokens []Token) []TokenType {
	out := make([]TokenType, len(tokens))
	for i, tok := range tokens {
		out[i] = tok.Type
	}
	return out
}

func TestScanIdentifiersAndKeywords(t *testing.T) {
	src := "and break class else false for fun if nil or print return super this true var while foo _bar baz123 Emile"
	tokens := scanAll(t, src)
	tokens = tokens[:len(tokens)-1] // drop EOF

	want := []struct {
		typ    TokenType
		lexeme string
	}{
		{TokenAnd, "and"},
		{TokenBreak, "break"},
		{TokenClass, "class"},
		{TokenElse, "else"},
		{TokenFalse, "false"},
		{TokenFor, "for"},
		{TokenFun, "fun"},
		{TokenIf, "if"},
		{TokenNil, "nil"},
		{TokenOr, "or"},
		{TokenPrint, "print"},
		{TokenReturn, "return"},
		{TokenSuper, "super"},
		{TokenThis, "this"},
		{TokenTrue, "true"},
		{TokenVar, "var"},
		{TokenWhile, "while"},
		{TokenIdentifier, "foo"},
		{TokenIdentifier, "_bar"},
		{TokenIdentifier, "baz123"},
		{TokenIdentifier, "Emile"},
	}

	if len(tokens) != len(want) {
		t.Fatalf("expected %d tokens, got %d: %v", len(want), len(tokens), tokens)
	}
	for i, w := range want {
		if tokens[i].Type != w.typ {
			t.Fatalf("token %d: expected type %v, got %v", i, w.typ, tokens[i].Type)
		}
		if tokens[i].Lexeme != w.lexeme {
			t.Fatalf("token %d: expected lexeme %q, got %q", i, w.lexeme, tokens[i].Lexeme)
		}
	}
}

func TestScanOperators(t *testing.T) {
	src := "( ) { } , . - + ; / * ? : ! != = == > >= < <="
	got := tokenTypes(scanAll(t, src))
	want := []TokenType{
		TokenLeftParen, TokenRightParen, TokenLeftBrace, TokenRightBrace,
		TokenComma, TokenDot, TokenMinus, TokenPlus, TokenSemicolon,
		TokenSlash, TokenStar, TokenQuestion, TokenColon,
		TokenBang, TokenBangEqual, TokenEqual, TokenEqualEqual,
		TokenGreater, TokenGreaterEqual, TokenLess, TokenLessEqual,
		TokenEOF,
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d tokens, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token %d: expected %v, got %v", i, want[i], got[i])
		}
	}
}

func TestScanSingleTokenRoundTrip(t *testing.T) {
	for _, src := range []string{"(", "!=", "<=", "while", "name", "12.5", `"text"`} {
		tokens := scanAll(t, src)
		if len(tokens) != 2 {
			t.Fatalf("%q: expected one token plus EOF, got %v", src, tokens)
		}
		if tokens[0].Lexeme != src {
			t.Fatalf("%q: lexeme round trip gave %q", src, tokens[0].Lexeme)
		}
		if tokens[1].Type != TokenEOF {
			t.Fatalf("%q: expected trailing EOF, got %v", src, tokens[1])
		}
	}
}

func TestScanNumbers(t *testing.T) {
	tokens := scanAll(t, "42 3.25 7. .5")
	// 7. scans as 7 followed by a dot; .5 as a dot followed by 5.
	want := []struct {
		typ   TokenType
		value interface{}
	}{
		{TokenNumber, 42.0},
		{TokenNumber, 3.25},
		{TokenNumber, 7.0},
		{TokenDot, nil},
		{TokenDot, nil},
		{TokenNumber, 5.0},
		{TokenEOF, nil},
	}
	if len(tokens) != len(want) {
		t.Fatalf("expected %d tokens, got %d: %v", len(want), len(tokens), tokens)
	}
	for i, w := range want {
		if tokens[i].Type != w.typ || tokens[i].Literal != w.value {
			t.Fatalf("token %d: expected %v %v, got %v", i, w.typ, w.value, tokens[i])
		}
	}
}

func TestScanHugeNumberIsInfinite(t *testing.T) {
	src := "1"
	for i := 0; i < 400; i++ {
		src += "0"
	}
	tokens := scanAll(t, src)
	v, ok := tokens[0].Literal.(float64)
	if !ok || !math.IsInf(v, 1) {
		t.Fatalf("expected +Inf literal, got %v", tokens[0].Literal)
	}
}

func TestScanStrings(t *testing.T) {
	tokens := scanAll(t, "\"hello\" \"multi\nline\" \"\"")
	if tokens[0].Literal != "hello" || tokens[0].Lexeme != `"hello"` {
		t.Fatalf("unexpected first string token: %v", tokens[0])
	}
	if tokens[1].Literal != "multi\nline" {
		t.Fatalf("unexpected multiline literal: %q", tokens[1].Literal)
	}
	if tokens[1].Line != 2 {
		t.Fatalf("multiline string should end on line 2, got %d", tokens[1].Line)
	}
	if tokens[2].Literal != "" {
		t.Fatalf("expected empty string literal, got %q", tokens[2].Literal)
	}
}

func TestScanComments(t *testing.T) {
	src := "a // line comment\n/* block /* nested */ still comment */ b /* unterminated"
	tokens := scanAll(t, src)
	got := tokenTypes(tokens)
	want := []TokenType{TokenIdentifier, TokenIdentifier, TokenEOF}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, tokens)
	}
	if tokens[0].Lexeme != "a" || tokens[1].Lexeme != "b" {
		t.Fatalf("unexpected identifiers: %v", tokens)
	}
	if tokens[1].Line != 2 {
		t.Fatalf("expected b on line 2, got %d", tokens[1].Line)
	}
}

func TestScanEOFCarriesLastLine(t *testing.T) {
	tokens := scanAll(t, "a\nb\n\n")
	eof := tokens[len(tokens)-1]
	if eof.Type != TokenEOF {
		t.Fatalf("expected EOF, got %v", eof)
	}
	if eof.Line != 4 {
		t.Fatalf("expected EOF on line 4, got %d", eof.Line)
	}
}

func TestScanReportsErrorsAndContinues(t *testing.T) {
	tokens, err := Scan("a @ b\n# c")
	if err == nil {
		t.Fatalf("expected scan error")
	}
	if !errors.Is(err, ErrLex) {
		t.Fatalf("expected ErrLex, got %v", err)
	}
	var list Errors
	if !errors.As(err, &list) || len(list) != 2 {
		t.Fatalf("expected two collected errors, got %v", err)
	}
	if list[0].Error() != "[line 1] Error: Unexpected character '@'." {
		t.Fatalf("unexpected first message: %q", list[0].Error())
	}
	if list[1].Line != 2 {
		t.Fatalf("expected second error on line 2, got %d", list[1].Line)
	}
	if got := len(tokens); got != 4 {
		t.Fatalf("expected a, b, c and EOF to survive, got %v", tokens)
	}
}

func TestScanUnterminatedStringIsIncomplete(t *testing.T) {
	_, err := Scan("print \"abc")
	if err == nil {
		t.Fatalf("expected error for unterminated string")
	}
	if !IsIncomplete(err) {
		t.Fatalf("unterminated string should be incomplete: %v", err)
	}
	if got := err.Error(); got != "[line 1] Error: Unterminated string." {
		t.Fatalf("unexpected message: %q", got)
	}
}

func TestOpenComments(t *testing.T) {
	tests := []struct {
		src  string
		want int
	}{
		{"print 1;", 0},
		{"/* done */ a", 0},
		{"/* open", 1},
		{"/* outer /* inner", 2},
		{"/* outer /* inner */", 1},
		{"// /* not a block comment", 0},
		{"\"/* inside a string\"", 0},
	}
	for _, tt := range tests {
		if got := OpenComments(tt.src); got != tt.want {
			t.Fatalf("OpenComments(%q) = %d, want %d", tt.src, got, tt.want)
		}
	}
	if _, err := Scan("a /* open"); err != nil {
		t.Fatalf("an open comment should not be a scan error: %v", err)
	}
}

func TestScanRejectsNonASCIILetters(t *testing.T) {
	tokens, err := Scan("print é;")
	var list Errors
	if !errors.As(err, &list) || len(list) != 1 {
		t.Fatalf("expected one scan error, got %v", err)
	}
	if got := list[0].Error(); got != "[line 1] Error: Unexpected character 'é'." {
		t.Fatalf("unexpected message: %q", got)
	}
	if got := tokenTypes(tokens); len(got) != 3 || got[0] != TokenPrint || got[1] != TokenSemicolon {
		t.Fatalf("unexpected tokens %v", tokens)
	}
}
