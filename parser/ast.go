package parser

// Node is any syntax tree node. Line reports the source line used in
// diagnostics.
type Node interface {
	Line() int
}

// Expr is one of the closed set of expression variants. Every variant is
// a pointer type, so an Expr is usable as a map key for side tables.
type Expr interface {
	Node
	exprNode()
}

// Stmt is one of the closed set of statement variants.
type Stmt interface {
	Node
	stmtNode()
}

// LiteralExpr is a number, string, boolean or nil constant.
type LiteralExpr struct {
	Value interface{} // float64, string, bool or nil
	Tok   Token
}

func (e *LiteralExpr) Line() int { return e.Tok.Line }
func (*LiteralExpr) exprNode()   {}

// UnaryExpr applies a prefix operator.
type UnaryExpr struct {
	Op      Token
	Operand Expr
}

func (e *UnaryExpr) Line() int { return e.Op.Line }
func (*UnaryExpr) exprNode()   {}

// BinaryExpr applies an infix arithmetic, comparison, equality or comma
// operator.
type BinaryExpr struct {
	Op          Token
	Left, Right Expr
}

func (e *BinaryExpr) Line() int { return e.Op.Line }
func (*BinaryExpr) exprNode()   {}

// LogicalExpr is a short-circuiting `and` / `or`.
type LogicalExpr struct {
	Op          Token
	Left, Right Expr
}

func (e *LogicalExpr) Line() int { return e.Op.Line }
func (*LogicalExpr) exprNode()   {}

// TernaryExpr is `cond ? then : else`.
type TernaryExpr struct {
	Question Token
	Cond     Expr
	Then     Expr
	Else     Expr
}

func (e *TernaryExpr) Line() int { return e.Question.Line }
func (*TernaryExpr) exprNode()   {}

// GroupingExpr is a parenthesised expression.
type GroupingExpr struct {
	Inner Expr
	Paren Token
}

func (e *GroupingExpr) Line() int { return e.Paren.Line }
func (*GroupingExpr) exprNode()   {}

// VariableExpr reads a named binding.
type VariableExpr struct {
	Name Token
}

func (e *VariableExpr) Line() int { return e.Name.Line }
func (*VariableExpr) exprNode()   {}

// AssignExpr writes a named binding.
type AssignExpr struct {
	Name  Token
	Value Expr
}

func (e *AssignExpr) Line() int { return e.Name.Line }
func (*AssignExpr) exprNode()   {}

// CallExpr invokes a callee. Paren is the closing parenthesis, used to
// position runtime errors.
type CallExpr struct {
	Callee Expr
	Paren  Token
	Args   []Expr
}

func (e *CallExpr) Line() int { return e.Paren.Line }
func (*CallExpr) exprNode()   {}

// LambdaExpr is an anonymous function.
type LambdaExpr struct {
	Keyword Token
	Params  []Token
	Body    []Stmt
}

func (e *LambdaExpr) Line() int { return e.Keyword.Line }
func (*LambdaExpr) exprNode()   {}

// GetExpr reads a property.
type GetExpr struct {
	Object Expr
	Name   Token
}

func (e *GetExpr) Line() int { return e.Name.Line }
func (*GetExpr) exprNode()   {}

// SetExpr writes a property.
type SetExpr struct {
	Object Expr
	Name   Token
	Value  Expr
}

func (e *SetExpr) Line() int { return e.Name.Line }
func (*SetExpr) exprNode()   {}

// ThisExpr refers to the receiver inside a method.
type ThisExpr struct {
	Keyword Token
}

func (e *ThisExpr) Line() int { return e.Keyword.Line }
func (*ThisExpr) exprNode()   {}

// SuperExpr looks up Method on the enclosing class's parent.
type SuperExpr struct {
	Keyword Token
	Method  Token
}

func (e *SuperExpr) Line() int { return e.Keyword.Line }
func (*SuperExpr) exprNode()   {}

// ExprStmt evaluates an expression for side effects.
type ExprStmt struct {
	Expr Expr
}

func (s *ExprStmt) Line() int { return s.Expr.Line() }
func (*ExprStmt) stmtNode()   {}

// PrintStmt writes the textual form of a value followed by a newline.
type PrintStmt struct {
	Keyword Token
	Expr    Expr
}

func (s *PrintStmt) Line() int { return s.Keyword.Line }
func (*PrintStmt) stmtNode()   {}

// VarStmt declares a variable in the current scope.
type VarStmt struct {
	Name Token
	Init Expr // may be nil
}

func (s *VarStmt) Line() int { return s.Name.Line }
func (*VarStmt) stmtNode()   {}

// BlockStmt opens a new lexical scope.
type BlockStmt struct {
	Brace Token
	Stmts []Stmt
}

func (s *BlockStmt) Line() int { return s.Brace.Line }
func (*BlockStmt) stmtNode()   {}

// IfStmt conditionally executes a branch.
type IfStmt struct {
	Keyword Token
	Cond    Expr
	Then    Stmt
	Else    Stmt // may be nil
}

func (s *IfStmt) Line() int { return s.Keyword.Line }
func (*IfStmt) stmtNode()   {}

// WhileStmt repeats Body while Cond is truthy. `for` loops are desugared
// into it.
type WhileStmt struct {
	Keyword Token
	Cond    Expr
	Body    Stmt
}

func (s *WhileStmt) Line() int { return s.Keyword.Line }
func (*WhileStmt) stmtNode()   {}

// BreakStmt leaves the innermost loop.
type BreakStmt struct {
	Keyword Token
}

func (s *BreakStmt) Line() int { return s.Keyword.Line }
func (*BreakStmt) stmtNode()   {}

// FunctionStmt declares a named function or a class method.
type FunctionStmt struct {
	Name   Token
	Params []Token
	Body   []Stmt
}

func (s *FunctionStmt) Line() int { return s.Name.Line }
func (*FunctionStmt) stmtNode()   {}

// ReturnStmt exits the current function, optionally with a value.
type ReturnStmt struct {
	Keyword Token
	Value   Expr // may be nil
}

func (s *ReturnStmt) Line() int { return s.Keyword.Line }
func (*ReturnStmt) stmtNode()   {}

// ClassStmt declares a class with an optional parent.
type ClassStmt struct {
	Name    Token
	Parent  *VariableExpr // may be nil
	Methods []*FunctionStmt
}

func (s *ClassStmt) Line() int { return s.Name.Line }
func (*ClassStmt) stmtNode()   {}
