package parser

import (
	"fmt"
	"strconv"
	"strings"
)

// Print renders a node as a parenthesised prefix expression, e.g.
// `1 + 2 * 3` becomes `(+ 1 (* 2 3))`. It is meant for debugging and tests.
func Print(n Node) string {
	var b strings.Builder
	writeNode(&b, n)
	return b.String()
}

// PrintProgram renders every statement on its own line.
func PrintProgram(stmts []Stmt) string {
	var b strings.Builder
	for _, stmt := range stmts {
		writeNode(&b, stmt)
		b.WriteByte('\n')
	}
	return b.String()
}

func writeNode(b *strings.Builder, n Node) {
	switch n := n.(type) {
	case nil:
		b.WriteString("<nil>")
	case *LiteralExpr:
		b.WriteString(formatLiteral(n.Value))
	case *UnaryExpr:
		parenthesize(b, n.Op.Lexeme, n.Operand)
	case *BinaryExpr:
		parenthesize(b, n.Op.Lexeme, n.Left, n.Right)
	case *LogicalExpr:
		parenthesize(b, n.Op.Lexeme, n.Left, n.Right)
	case *TernaryExpr:
		parenthesize(b, "?:", n.Cond, n.Then, n.Else)
	case *GroupingExpr:
		parenthesize(b, "group", n.Inner)
	case *VariableExpr:
		b.WriteString(n.Name.Lexeme)
	case *AssignExpr:
		b.WriteString("(= " + n.Name.Lexeme + " ")
		writeNode(b, n.Value)
		b.WriteByte(')')
	case *CallExpr:
		nodes := append([]Node{n.Callee}, exprNodes(n.Args)...)
		parenthesize(b, "call", nodes...)
	case *LambdaExpr:
		b.WriteString("(fun ")
		writeParams(b, n.Params)
		writeBody(b, n.Body)
		b.WriteByte(')')
	case *GetExpr:
		b.WriteString("(. ")
		writeNode(b, n.Object)
		b.WriteString(" " + n.Name.Lexeme + ")")
	case *SetExpr:
		b.WriteString("(= (. ")
		writeNode(b, n.Object)
		b.WriteString(" " + n.Name.Lexeme + ") ")
		writeNode(b, n.Value)
		b.WriteByte(')')
	case *ThisExpr:
		b.WriteString("this")
	case *SuperExpr:
		b.WriteString("(super " + n.Method.Lexeme + ")")

	case *ExprStmt:
		parenthesize(b, ";", n.Expr)
	case *PrintStmt:
		parenthesize(b, "print", n.Expr)
	case *VarStmt:
		if n.Init == nil {
			b.WriteString("(var " + n.Name.Lexeme + ")")
			return
		}
		b.WriteString("(var " + n.Name.Lexeme + " ")
		writeNode(b, n.Init)
		b.WriteByte(')')
	case *BlockStmt:
		parenthesize(b, "block", stmtNodes(n.Stmts)...)
	case *IfStmt:
		if n.Else == nil {
			parenthesize(b, "if", n.Cond, n.Then)
			return
		}
		parenthesize(b, "if", n.Cond, n.Then, n.Else)
	case *WhileStmt:
		parenthesize(b, "while", n.Cond, n.Body)
	case *BreakStmt:
		b.WriteString("(break)")
	case *FunctionStmt:
		b.WriteString("(fun " + n.Name.Lexeme + " ")
		writeParams(b, n.Params)
		writeBody(b, n.Body)
		b.WriteByte(')')
	case *ReturnStmt:
		if n.Value == nil {
			b.WriteString("(return)")
			return
		}
		parenthesize(b, "return", n.Value)
	case *ClassStmt:
		b.WriteString("(class " + n.Name.Lexeme)
		if n.Parent != nil {
			b.WriteString(" < " + n.Parent.Name.Lexeme)
		}
		for _, m := range n.Methods {
			b.WriteByte(' ')
			writeNode(b, m)
		}
		b.WriteByte(')')
	default:
		fmt.Fprintf(b, "<%T>", n)
	}
}

func parenthesize(b *strings.Builder, name string, nodes ...Node) {
	b.WriteByte('(')
	b.WriteString(name)
	for _, n := range nodes {
		b.WriteByte(' ')
		writeNode(b, n)
	}
	b.WriteByte(')')
}

func writeParams(b *strings.Builder, params []Token) {
	b.WriteByte('(')
	for i, p := range params {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(p.Lexeme)
	}
	b.WriteByte(')')
}

func writeBody(b *strings.Builder, body []Stmt) {
	for _, stmt := range body {
		b.WriteByte(' ')
		writeNode(b, stmt)
	}
}

func formatLiteral(v interface{}) string {
	switch v := v.(type) {
	case nil:
		return "nil"
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case string:
		return strconv.Quote(v)
	default:
		return fmt.Sprint(v)
	}
}

func exprNodes(exprs []Expr) []Node {
	out := make([]Node, len(exprs))
	for i, e := range exprs {
		out[i] = e
	}
	return out
}

func stmtNodes(stmts []Stmt) []Node {
	out := make([]Node, len(stmts))
	for i, s := range stmts {
		out[i] = s
	}
	return out
}
