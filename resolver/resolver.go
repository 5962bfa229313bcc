// Package resolver performs static scope analysis over a parsed program.
//
// For every variable, assignment, `this` and `super` reference it computes the
// number of scopes between the reference and the scope that declares the name,
// and hands it to a Recorder. References that resolve to no enclosing scope are
// left unrecorded and treated as globals by the interpreter. The resolver also
// rejects programs that are syntactically valid but statically wrong, such as a
// top-level `return`.
package resolver

import (
	"errors"
	"fmt"

	"github.com/sergev/glox/parser"
)

// ErrResolve marks errors reported during static resolution.
var ErrResolve = errors.New("resolve error")

// Recorder receives the scope distance of each resolved local reference.
type Recorder interface {
	Resolve(expr parser.Expr, depth int)
}

// Locals is a map-backed Recorder. Expressions absent from it are globals.
type Locals map[parser.Expr]int

// Resolve records depth for expr.
func (l Locals) Resolve(expr parser.Expr, depth int) {
	l[expr] = depth
}

type functionKind int

const (
	functionNone functionKind = iota
	functionPlain
	functionLambda
	functionMethod
	functionInitializer
)

type classKind int

const (
	classNone classKind = iota
	classPlain
	classSub
)

// Resolve analyses a program, reporting distances to rec. All static errors
// are collected and returned as parser.Errors; distances recorded before an
// error are still delivered.
func Resolve(stmts []parser.Stmt, rec Recorder) error {
	r := &resolver{rec: rec}
	r.resolveStmts(stmts)
	return r.errs.Err()
}

// ResolveExpr analyses a lone expression evaluated at top level.
func ResolveExpr(expr parser.Expr, rec Recorder) error {
	r := &resolver{rec: rec}
	r.resolveExpr(expr)
	return r.errs.Err()
}

type resolver struct {
	rec Recorder

	// scopes holds local scopes only, innermost last. A name maps to false
	// between its declaration and the end of its initializer.
	scopes []map[string]bool
	fn     functionKind
	class  classKind

	errs parser.Errors
}

func (r *resolver) resolveStmts(stmts []parser.Stmt) {
	for _, stmt := range stmts {
		r.resolveStmt(stmt)
	}
}

func (r *resolver) resolveStmt(stmt parser.Stmt) {
	switch s := stmt.(type) {
	case *parser.BlockStmt:
		r.beginScope()
		r.resolveStmts(s.Stmts)
		r.endScope()
	case *parser.VarStmt:
		r.declare(s.Name)
		if s.Init != nil {
			r.resolveExpr(s.Init)
		}
		r.define(s.Name)
	case *parser.FunctionStmt:
		// Defined before the body so the function can refer to itself.
		r.declare(s.Name)
		r.define(s.Name)
		r.resolveFunction(s.Params, s.Body, functionPlain)
	case *parser.ClassStmt:
		r.resolveClass(s)
	case *parser.ExprStmt:
		r.resolveExpr(s.Expr)
	case *parser.PrintStmt:
		r.resolveExpr(s.Expr)
	case *parser.IfStmt:
		r.resolveExpr(s.Cond)
		r.resolveStmt(s.Then)
		if s.Else != nil {
			r.resolveStmt(s.Else)
		}
	case *parser.WhileStmt:
		r.resolveExpr(s.Cond)
		r.resolveStmt(s.Body)
	case *parser.BreakStmt:
		// Checked at run time against the active loop stack.
	case *parser.ReturnStmt:
		if r.fn == functionNone {
			r.errorAt(s.Keyword, "Can't return from top-level code.")
		}
		if s.Value != nil {
			if r.fn == functionInitializer {
				r.errorAt(s.Keyword, "Can't return a value from an initializer.")
			}
			r.resolveExpr(s.Value)
		}
	default:
		panic(fmt.Sprintf("resolver: unexpected statement %T", stmt))
	}
}

func (r *resolver) resolveClass(s *parser.ClassStmt) {
	r.declare(s.Name)
	r.define(s.Name)

	enclosing := r.class
	r.class = classPlain
	defer func() { r.class = enclosing }()

	if s.Parent != nil {
		if s.Parent.Name.Lexeme == s.Name.Lexeme {
			r.errorAt(s.Parent.Name, "A class can't inherit from itself.")
		}
		r.class = classSub
		r.resolveExpr(s.Parent)
		r.beginScope()
		r.top()["super"] = true
	}

	r.beginScope()
	r.top()["this"] = true
	for _, method := range s.Methods {
		kind := functionMethod
		if method.Name.Lexeme == "init" {
			kind = functionInitializer
		}
		r.resolveFunction(method.Params, method.Body, kind)
	}
	r.endScope()

	if s.Parent != nil {
		r.endScope()
	}
}

// resolveFunction binds parameters and body in a single scope, matching the
// single environment the interpreter creates per call.
func (r *resolver) resolveFunction(params []parser.Token, body []parser.Stmt, kind functionKind) {
	enclosing := r.fn
	r.fn = kind
	defer func() { r.fn = enclosing }()

	r.beginScope()
	for _, param := range params {
		r.declare(param)
		r.define(param)
	}
	r.resolveStmts(body)
	r.endScope()
}

func (r *resolver) resolveExpr(expr parser.Expr) {
	switch e := expr.(type) {
	case *parser.LiteralExpr:
	case *parser.VariableExpr:
		if len(r.scopes) > 0 {
			if defined, ok := r.top()[e.Name.Lexeme]; ok && !defined {
				r.errorAt(e.Name, "Can't read local variable in its own initializer.")
			}
		}
		r.resolveLocal(e, e.Name)
	case *parser.AssignExpr:
		r.resolveExpr(e.Value)
		r.resolveLocal(e, e.Name)
	case *parser.UnaryExpr:
		r.resolveExpr(e.Operand)
	case *parser.BinaryExpr:
		r.resolveExpr(e.Left)
		r.resolveExpr(e.Right)
	case *parser.LogicalExpr:
		r.resolveExpr(e.Left)
		r.resolveExpr(e.Right)
	case *parser.TernaryExpr:
		r.resolveExpr(e.Cond)
		r.resolveExpr(e.Then)
		r.resolveExpr(e.Else)
	case *parser.GroupingExpr:
		r.resolveExpr(e.Inner)
	case *parser.CallExpr:
		r.resolveExpr(e.Callee)
		for _, arg := range e.Args {
			r.resolveExpr(arg)
		}
	case *parser.LambdaExpr:
		r.resolveFunction(e.Params, e.Body, functionLambda)
	case *parser.GetExpr:
		r.resolveExpr(e.Object)
	case *parser.SetExpr:
		r.resolveExpr(e.Value)
		r.resolveExpr(e.Object)
	case *parser.ThisExpr:
		if r.class == classNone {
			r.errorAt(e.Keyword, "Can't use 'this' outside of a class.")
			return
		}
		r.resolveLocal(e, e.Keyword)
	case *parser.SuperExpr:
		switch r.class {
		case classNone:
			r.errorAt(e.Keyword, "Can't use 'super' outside of a class.")
			return
		case classPlain:
			r.errorAt(e.Keyword, "Can't use 'super' in a class with no superclass.")
			return
		}
		r.resolveLocal(e, e.Keyword)
	default:
		panic(fmt.Sprintf("resolver: unexpected expression %T", expr))
	}
}

func (r *resolver) resolveLocal(expr parser.Expr, name parser.Token) {
	for i := len(r.scopes) - 1; i >= 0; i-- {
		if _, ok := r.scopes[i][name.Lexeme]; ok {
			r.rec.Resolve(expr, len(r.scopes)-1-i)
			return
		}
	}
}

func (r *resolver) beginScope() {
	r.scopes = append(r.scopes, make(map[string]bool))
}

func (r *resolver) endScope() {
	r.scopes = r.scopes[:len(r.scopes)-1]
}

func (r *resolver) top() map[string]bool {
	return r.scopes[len(r.scopes)-1]
}

func (r *resolver) declare(name parser.Token) {
	if len(r.scopes) == 0 {
		return
	}
	scope := r.top()
	if _, ok := scope[name.Lexeme]; ok {
		r.errorAt(name, "Already a variable with this name in this scope.")
	}
	scope[name.Lexeme] = false
}

func (r *resolver) define(name parser.Token) {
	if len(r.scopes) == 0 {
		return
	}
	r.top()[name.Lexeme] = true
}

func (r *resolver) errorAt(tok parser.Token, msg string) {
	err := parser.NewTokenError(ErrResolve, tok, msg)
	err.Incomplete = false
	r.errs = append(r.errs, err)
}
