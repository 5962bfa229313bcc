package parser

import "fmt"

const maxArgs = 255

// Parse builds the statement list of a program. Syntax errors do not stop
// parsing: the parser skips to the next statement boundary and keeps
// collecting, so the returned error may hold several entries. Statements that
// failed to parse are omitted from the result.
func Parse(tokens []Token) ([]Stmt, error) {
	p := newParser(tokens)
	var stmts []Stmt
	for !p.atEnd() {
		if stmt := p.declaration(); stmt != nil {
			stmts = append(stmts, stmt)
		}
	}
	return stmts, p.errs.Err()
}

// ParseExpression parses tokens that must form exactly one expression. It is
// used by the REPL to evaluate bare expressions.
func ParseExpression(tokens []Token) (Expr, error) {
	p := newParser(tokens)
	expr, err := p.comma()
	if err != nil {
		return nil, p.errs
	}
	if !p.atEnd() {
		p.report(p.peek(), "Expect end of expression.")
	}
	if len(p.errs) > 0 {
		return nil, p.errs
	}
	return expr, nil
}

type parser struct {
	tokens  []Token
	current int
	errs    Errors
}

func newParser(tokens []Token) *parser {
	if len(tokens) == 0 || tokens[len(tokens)-1].Type != TokenEOF {
		line := 1
		if len(tokens) > 0 {
			line = tokens[len(tokens)-1].Line
		}
		tokens = append(append([]Token(nil), tokens...), Token{Type: TokenEOF, Line: line})
	}
	return &parser{tokens: tokens}
}

func (p *parser) declaration() Stmt {
	var (
		stmt Stmt
		err  error
	)
	switch {
	case p.match(TokenClass):
		stmt, err = p.classDeclaration()
	case p.check(TokenFun) && p.checkNext(TokenIdentifier):
		p.advance()
		stmt, err = p.function("function")
	case p.match(TokenVar):
		stmt, err = p.varDeclaration()
	default:
		stmt, err = p.statement()
	}
	if err != nil {
		p.synchronize()
		return nil
	}
	return stmt
}

func (p *parser) classDeclaration() (Stmt, error) {
	name, err := p.consume(TokenIdentifier, "Expect class name.")
	if err != nil {
		return nil, err
	}
	var parent *VariableExpr
	if p.match(TokenLess) {
		parentName, err := p.consume(TokenIdentifier, "Expect superclass name.")
		if err != nil {
			return nil, err
		}
		parent = &VariableExpr{Name: parentName}
	}
	if _, err := p.consume(TokenLeftBrace, "Expect '{' before class body."); err != nil {
		return nil, err
	}
	var methods []*FunctionStmt
	for !p.check(TokenRightBrace) && !p.atEnd() {
		method, err := p.function("method")
		if err != nil {
			return nil, err
		}
		methods = append(methods, method)
	}
	if _, err := p.consume(TokenRightBrace, "Expect '}' after class body."); err != nil {
		return nil, err
	}
	return &ClassStmt{
		Name:    name,
		Parent:  parent,
		Methods: methods,
	}, nil
}

func (p *parser) function(kind string) (*FunctionStmt, error) {
	name, err := p.consume(TokenIdentifier, fmt.Sprintf("Expect %s name.", kind))
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(TokenLeftParen, fmt.Sprintf("Expect '(' after %s name.", kind)); err != nil {
		return nil, err
	}
	params, err := p.parameters()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(TokenLeftBrace, fmt.Sprintf("Expect '{' before %s body.", kind)); err != nil {
		return nil, err
	}
	body, err := p.block()
	if err != nil {
		return nil, err
	}
	return &FunctionStmt{
		Name:   name,
		Params: params,
		Body:   body,
	}, nil
}

// parameters parses a parameter list after its opening parenthesis, up to
// and including the closing one.
func (p *parser) parameters() ([]Token, error) {
	var params []Token
	if !p.check(TokenRightParen) {
		for {
			if len(params) >= maxArgs {
				p.report(p.peek(), "Can't have more than 255 parameters.")
			}
			param, err := p.consume(TokenIdentifier, "Expect parameter name.")
			if err != nil {
				return nil, err
			}
			params = append(params, param)
			if !p.match(TokenComma) {
				break
			}
		}
	}
	if _, err := p.consume(TokenRightParen, "Expect ')' after parameters."); err != nil {
		return nil, err
	}
	return params, nil
}

func (p *parser) varDeclaration() (Stmt, error) {
	name, err := p.consume(TokenIdentifier, "Expect variable name.")
	if err != nil {
		return nil, err
	}
	var init Expr
	if p.match(TokenEqual) {
		init, err = p.expression()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.consume(TokenSemicolon, "Expect ';' after variable declaration."); err != nil {
		return nil, err
	}
	return &VarStmt{
		Name: name,
		Init: init,
	}, nil
}

func (p *parser) statement() (Stmt, error) {
	switch {
	case p.match(TokenPrint):
		return p.printStatement()
	case p.match(TokenLeftBrace):
		brace := p.previous()
		stmts, err := p.block()
		if err != nil {
			return nil, err
		}
		return &BlockStmt{Brace: brace, Stmts: stmts}, nil
	case p.match(TokenIf):
		return p.ifStatement()
	case p.match(TokenWhile):
		return p.whileStatement()
	case p.match(TokenFor):
		return p.forStatement()
	case p.match(TokenBreak):
		return p.breakStatement()
	case p.match(TokenReturn):
		return p.returnStatement()
	default:
		return p.expressionStatement()
	}
}

func (p *parser) printStatement() (Stmt, error) {
	keyword := p.previous()
	value, err := p.comma()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(TokenSemicolon, "Expect ';' after value."); err != nil {
		return nil, err
	}
	return &PrintStmt{Keyword: keyword, Expr: value}, nil
}

// block parses declarations up to and including the closing brace; the
// opening brace has already been consumed.
func (p *parser) block() ([]Stmt, error) {
	var stmts []Stmt
	for !p.check(TokenRightBrace) && !p.atEnd() {
		if stmt := p.declaration(); stmt != nil {
			stmts = append(stmts, stmt)
		}
	}
	if _, err := p.consume(TokenRightBrace, "Expect '}' after block."); err != nil {
		return nil, err
	}
	return stmts, nil
}

func (p *parser) ifStatement() (Stmt, error) {
	keyword := p.previous()
	if _, err := p.consume(TokenLeftParen, "Expect '(' after 'if'."); err != nil {
		return nil, err
	}
	cond, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(TokenRightParen, "Expect ')' after if condition."); err != nil {
		return nil, err
	}
	thenBranch, err := p.statement()
	if err != nil {
		return nil, err
	}
	var elseBranch Stmt
	if p.match(TokenElse) {
		elseBranch, err = p.statement()
		if err != nil {
			return nil, err
		}
	}
	return &IfStmt{
		Keyword: keyword,
		Cond:    cond,
		Then:    thenBranch,
		Else:    elseBranch,
	}, nil
}

func (p *parser) whileStatement() (Stmt, error) {
	keyword := p.previous()
	if _, err := p.consume(TokenLeftParen, "Expect '(' after 'while'."); err != nil {
		return nil, err
	}
	cond, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(TokenRightParen, "Expect ')' after condition."); err != nil {
		return nil, err
	}
	body, err := p.statement()
	if err != nil {
		return nil, err
	}
	return &WhileStmt{Keyword: keyword, Cond: cond, Body: body}, nil
}

// forStatement desugars `for (init; cond; incr) body` into
// `{ init; while (cond) { body; incr; } }`.
func (p *parser) forStatement() (Stmt, error) {
	keyword := p.previous()
	if _, err := p.consume(TokenLeftParen, "Expect '(' after 'for'."); err != nil {
		return nil, err
	}

	var (
		init Stmt
		err  error
	)
	switch {
	case p.match(TokenSemicolon):
	case p.match(TokenVar):
		init, err = p.varDeclaration()
	default:
		init, err = p.expressionStatement()
	}
	if err != nil {
		return nil, err
	}

	var cond Expr
	if !p.check(TokenSemicolon) {
		cond, err = p.expression()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.consume(TokenSemicolon, "Expect ';' after loop condition."); err != nil {
		return nil, err
	}

	var incr Expr
	if !p.check(TokenRightParen) {
		incr, err = p.expression()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.consume(TokenRightParen, "Expect ')' after for clauses."); err != nil {
		return nil, err
	}

	body, err := p.statement()
	if err != nil {
		return nil, err
	}
	if incr != nil {
		body = &BlockStmt{Brace: keyword, Stmts: []Stmt{body, &ExprStmt{Expr: incr}}}
	}
	if cond == nil {
		cond = &LiteralExpr{Value: true, Tok: keyword}
	}
	body = &WhileStmt{Keyword: keyword, Cond: cond, Body: body}
	if init != nil {
		body = &BlockStmt{Brace: keyword, Stmts: []Stmt{init, body}}
	}
	return body, nil
}

func (p *parser) breakStatement() (Stmt, error) {
	keyword := p.previous()
	if _, err := p.consume(TokenSemicolon, "Expect ';' after 'break'."); err != nil {
		return nil, err
	}
	return &BreakStmt{Keyword: keyword}, nil
}

func (p *parser) returnStatement() (Stmt, error) {
	keyword := p.previous()
	var (
		value Expr
		err   error
	)
	if !p.check(TokenSemicolon) {
		value, err = p.comma()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.consume(TokenSemicolon, "Expect ';' after return value."); err != nil {
		return nil, err
	}
	return &ReturnStmt{Keyword: keyword, Value: value}, nil
}

func (p *parser) expressionStatement() (Stmt, error) {
	expr, err := p.comma()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(TokenSemicolon, "Expect ';' after expression."); err != nil {
		return nil, err
	}
	return &ExprStmt{Expr: expr}, nil
}

// comma is the lowest precedence level: `a, b` evaluates both and yields b.
func (p *parser) comma() (Expr, error) {
	return p.binaryLevel(p.expression, []TokenType{TokenComma}, TokenComma)
}

func (p *parser) expression() (Expr, error) {
	return p.assignment()
}

func (p *parser) assignment() (Expr, error) {
	expr, err := p.ternary()
	if err != nil {
		return nil, err
	}
	if !p.match(TokenEqual) {
		return expr, nil
	}
	equals := p.previous()
	value, err := p.assignment()
	if err != nil {
		return nil, err
	}
	switch target := expr.(type) {
	case *VariableExpr:
		return &AssignExpr{Name: target.Name, Value: value}, nil
	case *GetExpr:
		return &SetExpr{Object: target.Object, Name: target.Name, Value: value}, nil
	}
	return nil, p.errorAt(equals, "Invalid assignment target.")
}

func (p *parser) ternary() (Expr, error) {
	cond, err := p.or()
	if err != nil {
		return nil, err
	}
	if !p.match(TokenQuestion) {
		return cond, nil
	}
	question := p.previous()
	thenExpr, err := p.ternary()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(TokenColon, "Expect ':' after expression."); err != nil {
		return nil, err
	}
	elseExpr, err := p.ternary()
	if err != nil {
		return nil, err
	}
	return &TernaryExpr{
		Question: question,
		Cond:     cond,
		Then:     thenExpr,
		Else:     elseExpr,
	}, nil
}

func (p *parser) or() (Expr, error) {
	return p.logicalLevel(p.and, TokenOr)
}

func (p *parser) and() (Expr, error) {
	return p.logicalLevel(p.equality, TokenAnd)
}

func (p *parser) logicalLevel(next func() (Expr, error), op TokenType) (Expr, error) {
	left, err := next()
	if err != nil {
		return nil, err
	}
	for p.match(op) {
		opTok := p.previous()
		right, err := next()
		if err != nil {
			return nil, err
		}
		left = &LogicalExpr{Op: opTok, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) equality() (Expr, error) {
	ops := []TokenType{TokenBangEqual, TokenEqualEqual}
	return p.binaryLevel(p.comparison, ops, ops...)
}

func (p *parser) comparison() (Expr, error) {
	ops := []TokenType{TokenGreater, TokenGreaterEqual, TokenLess, TokenLessEqual}
	return p.binaryLevel(p.term, ops, ops...)
}

// term does not guard against a leading '-', which is a valid unary operator.
func (p *parser) term() (Expr, error) {
	return p.binaryLevel(p.factor, []TokenType{TokenMinus, TokenPlus}, TokenPlus)
}

func (p *parser) factor() (Expr, error) {
	ops := []TokenType{TokenSlash, TokenStar}
	return p.binaryLevel(p.unary, ops, ops...)
}

// binaryLevel parses a left-associative chain of ops over operands produced
// by next. An operator from guard appearing where an operand should start is
// reported as a missing left-hand operand.
func (p *parser) binaryLevel(next func() (Expr, error), ops []TokenType, guard ...TokenType) (Expr, error) {
	left, err := p.operand(next, guard)
	if err != nil {
		return nil, err
	}
	for p.match(ops...) {
		opTok := p.previous()
		right, err := p.operand(next, guard)
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Op: opTok, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) operand(next func() (Expr, error), guard []TokenType) (Expr, error) {
	if !p.match(guard...) {
		return next()
	}
	opTok := p.previous()
	// Consume the right-hand side so recovery resumes after it.
	if _, err := next(); err != nil {
		return nil, err
	}
	return nil, p.errorAt(opTok, "Expect left-hand operand.")
}

func (p *parser) unary() (Expr, error) {
	if !p.match(TokenBang, TokenMinus) {
		return p.call()
	}
	op := p.previous()
	operand, err := p.unary()
	if err != nil {
		return nil, err
	}
	return &UnaryExpr{Op: op, Operand: operand}, nil
}

func (p *parser) call() (Expr, error) {
	expr, err := p.primary()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.match(TokenLeftParen):
			expr, err = p.finishCall(expr)
			if err != nil {
				return nil, err
			}
		case p.match(TokenDot):
			name, err := p.consume(TokenIdentifier, "Expect property name after '.'.")
			if err != nil {
				return nil, err
			}
			expr = &GetExpr{Object: expr, Name: name}
		default:
			return expr, nil
		}
	}
}

func (p *parser) finishCall(callee Expr) (Expr, error) {
	var args []Expr
	if !p.check(TokenRightParen) {
		for {
			if len(args) >= maxArgs {
				p.report(p.peek(), "Can't have more than 255 arguments.")
			}
			arg, err := p.expression()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if !p.match(TokenComma) {
				break
			}
		}
	}
	paren, err := p.consume(TokenRightParen, "Expect ')' after arguments.")
	if err != nil {
		return nil, err
	}
	return &CallExpr{Callee: callee, Paren: paren, Args: args}, nil
}

func (p *parser) primary() (Expr, error) {
	switch {
	case p.match(TokenFalse):
		return &LiteralExpr{Value: false, Tok: p.previous()}, nil
	case p.match(TokenTrue):
		return &LiteralExpr{Value: true, Tok: p.previous()}, nil
	case p.match(TokenNil):
		return &LiteralExpr{Value: nil, Tok: p.previous()}, nil
	case p.match(TokenNumber, TokenString):
		tok := p.previous()
		return &LiteralExpr{Value: tok.Literal, Tok: tok}, nil
	case p.match(TokenThis):
		return &ThisExpr{Keyword: p.previous()}, nil
	case p.match(TokenSuper):
		keyword := p.previous()
		if _, err := p.consume(TokenDot, "Expect '.' after 'super'."); err != nil {
			return nil, err
		}
		method, err := p.consume(TokenIdentifier, "Expect superclass method name.")
		if err != nil {
			return nil, err
		}
		return &SuperExpr{Keyword: keyword, Method: method}, nil
	case p.match(TokenIdentifier):
		return &VariableExpr{Name: p.previous()}, nil
	case p.match(TokenFun):
		return p.lambda()
	case p.match(TokenLeftParen):
		paren := p.previous()
		inner, err := p.comma()
		if err != nil {
			return nil, err
		}
		if _, err := p.consume(TokenRightParen, "Expect ')' after expression."); err != nil {
			return nil, err
		}
		return &GroupingExpr{Inner: inner, Paren: paren}, nil
	}
	return nil, p.errorAt(p.peek(), "Expect expression.")
}

func (p *parser) lambda() (Expr, error) {
	keyword := p.previous()
	if _, err := p.consume(TokenLeftParen, "Expect '(' after 'fun'."); err != nil {
		return nil, err
	}
	params, err := p.parameters()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(TokenLeftBrace, "Expect '{' before lambda body."); err != nil {
		return nil, err
	}
	body, err := p.block()
	if err != nil {
		return nil, err
	}
	return &LambdaExpr{Keyword: keyword, Params: params, Body: body}, nil
}

func (p *parser) match(types ...TokenType) bool {
	for _, tt := range types {
		if p.check(tt) {
			p.advance()
			return true
		}
	}
	return false
}

func (p *parser) check(tt TokenType) bool {
	if p.atEnd() {
		return false
	}
	return p.peek().Type == tt
}

func (p *parser) checkNext(tt TokenType) bool {
	if p.current+1 >= len(p.tokens) {
		return false
	}
	return p.tokens[p.current+1].Type == tt
}

func (p *parser) advance() Token {
	if !p.atEnd() {
		p.current++
	}
	return p.previous()
}

func (p *parser) atEnd() bool {
	return p.peek().Type == TokenEOF
}

func (p *parser) peek() Token {
	return p.tokens[p.current]
}

func (p *parser) previous() Token {
	if p.current == 0 {
		return p.tokens[0]
	}
	return p.tokens[p.current-1]
}

func (p *parser) consume(tt TokenType, msg string) (Token, error) {
	if p.check(tt) {
		return p.advance(), nil
	}
	return Token{}, p.errorAt(p.peek(), msg)
}

// report records a non-fatal error; parsing of the production continues.
func (p *parser) report(tok Token, msg string) {
	p.errs = append(p.errs, NewTokenError(ErrParse, tok, msg))
}

// errorAt records an error and returns it so the caller can abandon the
// current production.
func (p *parser) errorAt(tok Token, msg string) error {
	err := NewTokenError(ErrParse, tok, msg)
	p.errs = append(p.errs, err)
	return err
}

// synchronize discards tokens until a likely statement boundary.
func (p *parser) synchronize() {
	p.advance()
	for !p.atEnd() {
		if p.previous().Type == TokenSemicolon {
			return
		}
		switch p.peek().Type {
		case TokenClass, TokenFun, TokenVar, TokenFor, TokenIf,
			TokenWhile, TokenPrint, TokenReturn:
			return
		}
		p.advance()
	}
}
