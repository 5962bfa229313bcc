package parser

import (
	"fmt"
	"strconv"
	"unicode/utf8"
)

// Scan converts source text into tokens terminated by a single EOF token.
// Scanning never stops early: unexpected characters and unterminated strings
// are collected into the returned error while the token stream stays usable.
func Scan(src string) ([]Token, error) {
	lx := newLexer(src)
	lx.scanTokens()
	return lx.tokens, lx.errs.Err()
}

// OpenComments reports how many block comments are still open at the end of
// src. Scan accepts such input silently; the REPL uses this to keep reading.
func OpenComments(src string) int {
	lx := newLexer(src)
	lx.scanTokens()
	return lx.openComments
}

type lexer struct {
	src   string
	start int
	pos   int
	line  int

	tokens []Token
	errs   Errors

	// openComments is the block comment depth left at end of input.
	openComments int
}

func newLexer(src string) *lexer {
	return &lexer{
		src:  src,
		line: 1,
	}
}

func (lx *lexer) scanTokens() {
	for !lx.atEnd() {
		lx.start = lx.pos
		lx.scanToken()
	}
	lx.tokens = append(lx.tokens, Token{
		Type: TokenEOF,
		Line: lx.line,
	})
}

func (lx *lexer) atEnd() bool {
	return lx.pos >= len(lx.src)
}

func (lx *lexer) readRune() rune {
	if lx.atEnd() {
		return 0
	}
	r, w := utf8.DecodeRuneInString(lx.src[lx.pos:])
	lx.pos += w
	if r == '\n' {
		lx.line++
	}
	return r
}

func (lx *lexer) peek() rune {
	if lx.atEnd() {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(lx.src[lx.pos:])
	return r
}

func (lx *lexer) peekNext() rune {
	if lx.atEnd() {
		return 0
	}
	_, w := utf8.DecodeRuneInString(lx.src[lx.pos:])
	if lx.pos+w >= len(lx.src) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(lx.src[lx.pos+w:])
	return r
}

func (lx *lexer) match(expected rune) bool {
	if lx.atEnd() || lx.peek() != expected {
		return false
	}
	lx.readRune()
	return true
}

func (lx *lexer) scanToken() {
	r := lx.readRune()
	switch r {
	case ' ', '\r', '\t', '\n':
	case '(':
		lx.add(TokenLeftParen)
	case ')':
		lx.add(TokenRightParen)
	case '{':
		lx.add(TokenLeftBrace)
	case '}':
		lx.add(TokenRightBrace)
	case ',':
		lx.add(TokenComma)
	case '.':
		lx.add(TokenDot)
	case '-':
		lx.add(TokenMinus)
	case '+':
		lx.add(TokenPlus)
	case ';':
		lx.add(TokenSemicolon)
	case '*':
		lx.add(TokenStar)
	case '?':
		lx.add(TokenQuestion)
	case ':':
		lx.add(TokenColon)
	case '!':
		lx.addEither('=', TokenBangEqual, TokenBang)
	case '=':
		lx.addEither('=', TokenEqualEqual, TokenEqual)
	case '<':
		lx.addEither('=', TokenLessEqual, TokenLess)
	case '>':
		lx.addEither('=', TokenGreaterEqual, TokenGreater)
	case '/':
		switch {
		case lx.match('/'):
			lx.skipLine()
		case lx.match('*'):
			lx.skipBlockComment()
		default:
			lx.add(TokenSlash)
		}
	case '"':
		lx.scanString()
	default:
		switch {
		case isDigit(r):
			lx.scanNumber()
		case isIdentifierStart(r):
			lx.scanIdentifier()
		default:
			lx.errs = append(lx.errs, newLineError(lx.line, fmt.Sprintf("Unexpected character '%c'.", r)))
		}
	}
}

func (lx *lexer) add(tt TokenType) {
	lx.addLiteral(tt, nil)
}

func (lx *lexer) addLiteral(tt TokenType, literal interface{}) {
	lx.tokens = append(lx.tokens, Token{
		Type:    tt,
		Lexeme:  lx.src[lx.start:lx.pos],
		Literal: literal,
		Line:    lx.line,
	})
}

func (lx *lexer) addEither(next rune, matched, single TokenType) {
	if lx.match(next) {
		lx.add(matched)
		return
	}
	lx.add(single)
}

func (lx *lexer) skipLine() {
	for !lx.atEnd() && lx.peek() != '\n' {
		lx.readRune()
	}
}

// skipBlockComment consumes a /* ... */ comment whose opening delimiter has
// already been read. Nested comments are depth-counted; an unterminated
// comment runs to the end of input and leaves its depth in openComments.
func (lx *lexer) skipBlockComment() {
	depth := 1
	for !lx.atEnd() {
		switch {
		case lx.peek() == '/' && lx.peekNext() == '*':
			lx.readRune()
			lx.readRune()
			depth++
		case lx.peek() == '*' && lx.peekNext() == '/':
			lx.readRune()
			lx.readRune()
			depth--
			if depth == 0 {
				return
			}
		default:
			lx.readRune()
		}
	}
	lx.openComments = depth
}

func (lx *lexer) scanString() {
	for !lx.atEnd() && lx.peek() != '"' {
		lx.readRune()
	}
	if lx.atEnd() {
		err := newLineError(lx.line, "Unterminated string.")
		err.Incomplete = true
		lx.errs = append(lx.errs, err)
		return
	}
	lx.readRune() // closing quote
	lx.addLiteral(TokenString, lx.src[lx.start+1:lx.pos-1])
}

func (lx *lexer) scanNumber() {
	for isDigit(lx.peek()) {
		lx.readRune()
	}
	if lx.peek() == '.' && isDigit(lx.peekNext()) {
		lx.readRune()
		for isDigit(lx.peek()) {
			lx.readRune()
		}
	}
	// The lexeme is always well formed here; out-of-range values become ±Inf.
	value, _ := strconv.ParseFloat(lx.src[lx.start:lx.pos], 64)
	lx.addLiteral(TokenNumber, value)
}

func (lx *lexer) scanIdentifier() {
	for isIdentifierPart(lx.peek()) {
		lx.readRune()
	}
	if tt, ok := keywords[lx.src[lx.start:lx.pos]]; ok {
		lx.add(tt)
		return
	}
	lx.add(TokenIdentifier)
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isIdentifierStart(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == '_'
}

func isIdentifierPart(r rune) bool {
	return isIdentifierStart(r) || isDigit(r)
}
