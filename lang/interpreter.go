package lang

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sergev/glox/parser"
)

// DefaultMaxCallDepth bounds nested calls when Options leaves it unset.
const DefaultMaxCallDepth = 2048

// Options tune interpreter behaviour.
type Options struct {
	// StrictInit turns reads of variables declared without an initializer,
	// and never assigned, into runtime errors.
	StrictInit bool

	// MaxCallDepth limits nested calls; exceeding it is "Stack overflow.".
	MaxCallDepth int
}

func (o Options) normalize() Options {
	if o.MaxCallDepth <= 0 {
		o.MaxCallDepth = DefaultMaxCallDepth
	}
	return o
}

// Interpreter executes resolved programs. Its globals persist across calls
// to Interpret, so a REPL can feed it one line at a time.
type Interpreter struct {
	globals *Env
	env     *Env
	locals  map[parser.Expr]int
	out     io.Writer
	opts    Options

	depth int
	// loops holds one "broken" flag per active loop of the current call.
	loops []bool
}

// NewInterpreter constructs an interpreter rooted at a new global
// environment. Printed values go to out, or stdout when out is nil.
func NewInterpreter(out io.Writer, opts Options) *Interpreter {
	if out == nil {
		out = os.Stdout
	}
	global := NewEnv(nil)
	return &Interpreter{
		globals: global,
		env:     global,
		locals:  make(map[parser.Expr]int),
		out:     out,
		opts:    opts.normalize(),
	}
}

// Globals returns the outermost environment.
func (in *Interpreter) Globals() *Env {
	return in.globals
}

// Output returns the writer used by print.
func (in *Interpreter) Output() io.Writer {
	return in.out
}

// Resolve records the scope distance of a local reference. It lets the
// interpreter act as the resolver's side table.
func (in *Interpreter) Resolve(expr parser.Expr, depth int) {
	in.locals[expr] = depth
}

// Interpret executes statements in order. The first runtime error stops
// execution and is returned.
func (in *Interpreter) Interpret(stmts []parser.Stmt) error {
	for _, stmt := range stmts {
		if _, err := in.execute(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Evaluate computes a single expression in the global scope.
func (in *Interpreter) Evaluate(expr parser.Expr) (Value, error) {
	return in.evaluate(expr)
}

type flow int

const (
	flowNormal flow = iota
	flowReturn
	flowBreak
)

// outcome is how a statement finished. value is set for flowReturn.
type outcome struct {
	flow  flow
	value Value
}

var normal = outcome{}

func (in *Interpreter) execute(stmt parser.Stmt) (outcome, error) {
	switch s := stmt.(type) {
	case *parser.ExprStmt:
		_, err := in.evaluate(s.Expr)
		return normal, err
	case *parser.PrintStmt:
		v, err := in.evaluate(s.Expr)
		if err != nil {
			return normal, err
		}
		fmt.Fprintln(in.out, v.String())
		return normal, nil
	case *parser.VarStmt:
		if s.Init == nil {
			in.env.Declare(s.Name.Lexeme)
			return normal, nil
		}
		v, err := in.evaluate(s.Init)
		if err != nil {
			return normal, err
		}
		in.env.Define(s.Name.Lexeme, v)
		return normal, nil
	case *parser.BlockStmt:
		return in.executeBlock(s.Stmts, NewEnv(in.env))
	case *parser.IfStmt:
		cond, err := in.evaluate(s.Cond)
		if err != nil {
			return normal, err
		}
		if cond.Truthy() {
			return in.execute(s.Then)
		}
		if s.Else != nil {
			return in.execute(s.Else)
		}
		return normal, nil
	case *parser.WhileStmt:
		return in.executeWhile(s)
	case *parser.BreakStmt:
		if len(in.loops) == 0 {
			return normal, runtimeErrorf(s.Keyword, "No enclosing loop.")
		}
		in.loops[len(in.loops)-1] = true
		return outcome{flow: flowBreak}, nil
	case *parser.FunctionStmt:
		fn := NewFunction(s, in.env, false)
		in.env.Define(s.Name.Lexeme, CallableValue(fn))
		return normal, nil
	case *parser.ReturnStmt:
		v := Nil
		if s.Value != nil {
			var err error
			if v, err = in.evaluate(s.Value); err != nil {
				return normal, err
			}
		}
		return outcome{flow: flowReturn, value: v}, nil
	case *parser.ClassStmt:
		return normal, in.executeClass(s)
	default:
		panic(fmt.Sprintf("interpreter: unexpected statement %T", stmt))
	}
}

// executeBlock runs stmts in env and restores the previous environment
// however the block finishes.
func (in *Interpreter) executeBlock(stmts []parser.Stmt, env *Env) (outcome, error) {
	prev := in.env
	in.env = env
	defer func() { in.env = prev }()

	for _, stmt := range stmts {
		res, err := in.execute(stmt)
		if err != nil || res.flow != flowNormal {
			return res, err
		}
	}
	return normal, nil
}

func (in *Interpreter) executeWhile(s *parser.WhileStmt) (outcome, error) {
	in.loops = append(in.loops, false)
	top := len(in.loops) - 1
	defer func() { in.loops = in.loops[:top] }()

	for !in.loops[top] {
		cond, err := in.evaluate(s.Cond)
		if err != nil {
			return normal, err
		}
		if !cond.Truthy() {
			break
		}
		res, err := in.execute(s.Body)
		if err != nil {
			return normal, err
		}
		if res.flow == flowReturn {
			return res, nil
		}
	}
	return normal, nil
}

func (in *Interpreter) executeClass(s *parser.ClassStmt) error {
	var parent *Class
	if s.Parent != nil {
		pv, err := in.evaluate(s.Parent)
		if err != nil {
			return err
		}
		if parent = pv.Class(); parent == nil {
			return runtimeErrorf(s.Parent.Name, "Superclass must be a class.")
		}
	}

	in.env.Define(s.Name.Lexeme, Nil)

	closure := in.env
	if parent != nil {
		closure = NewEnv(closure)
		closure.Define("super", CallableValue(parent))
	}
	methods := make(map[string]*Function, len(s.Methods))
	for _, m := range s.Methods {
		methods[m.Name.Lexeme] = NewFunction(m, closure, m.Name.Lexeme == "init")
	}
	cls := NewClass(s.Name.Lexeme, parent, methods)
	return in.env.Assign(s.Name, CallableValue(cls))
}

// invoke runs a function body in a fresh environment parented at closure.
// Each invocation gets its own loop stack, so `break` never crosses a call.
func (in *Interpreter) invoke(params []parser.Token, body []parser.Stmt, closure *Env, args []Value) (Value, error) {
	env := NewEnv(closure)
	for i, param := range params {
		env.Define(param.Lexeme, args[i])
	}

	loops := in.loops
	in.loops = nil
	defer func() { in.loops = loops }()

	res, err := in.executeBlock(body, env)
	if err != nil {
		return Value{}, err
	}
	if res.flow == flowReturn {
		return res.value, nil
	}
	return Nil, nil
}

func (in *Interpreter) evaluate(expr parser.Expr) (Value, error) {
	switch e := expr.(type) {
	case *parser.LiteralExpr:
		return FromLiteral(e.Value), nil
	case *parser.GroupingExpr:
		return in.evaluate(e.Inner)
	case *parser.UnaryExpr:
		return in.evalUnary(e)
	case *parser.BinaryExpr:
		return in.evalBinary(e)
	case *parser.LogicalExpr:
		left, err := in.evaluate(e.Left)
		if err != nil {
			return Value{}, err
		}
		if e.Op.Type == parser.TokenOr {
			if left.Truthy() {
				return left, nil
			}
		} else if !left.Truthy() {
			return left, nil
		}
		return in.evaluate(e.Right)
	case *parser.TernaryExpr:
		cond, err := in.evaluate(e.Cond)
		if err != nil {
			return Value{}, err
		}
		if cond.Truthy() {
			return in.evaluate(e.Then)
		}
		return in.evaluate(e.Else)
	case *parser.VariableExpr:
		return in.lookupVariable(e.Name, e)
	case *parser.AssignExpr:
		v, err := in.evaluate(e.Value)
		if err != nil {
			return Value{}, err
		}
		if distance, ok := in.locals[e]; ok {
			in.env.AssignAt(distance, e.Name.Lexeme, v)
			return v, nil
		}
		if err := in.globals.Assign(e.Name, v); err != nil {
			return Value{}, err
		}
		return v, nil
	case *parser.CallExpr:
		return in.evalCall(e)
	case *parser.LambdaExpr:
		return CallableValue(&Lambda{expr: e, closure: in.env}), nil
	case *parser.GetExpr:
		obj, err := in.evaluate(e.Object)
		if err != nil {
			return Value{}, err
		}
		inst := obj.Instance()
		if inst == nil {
			return Value{}, runtimeErrorf(e.Name, "Only instances have properties.")
		}
		return inst.Get(e.Name)
	case *parser.SetExpr:
		obj, err := in.evaluate(e.Object)
		if err != nil {
			return Value{}, err
		}
		inst := obj.Instance()
		if inst == nil {
			return Value{}, runtimeErrorf(e.Name, "Only instances have fields.")
		}
		v, err := in.evaluate(e.Value)
		if err != nil {
			return Value{}, err
		}
		inst.Set(e.Name, v)
		return v, nil
	case *parser.ThisExpr:
		return in.lookupVariable(e.Keyword, e)
	case *parser.SuperExpr:
		return in.evalSuper(e)
	default:
		panic(fmt.Sprintf("interpreter: unexpected expression %T", expr))
	}
}

func (in *Interpreter) lookupVariable(name parser.Token, expr parser.Expr) (Value, error) {
	env := in.globals
	var v Value
	if distance, ok := in.locals[expr]; ok {
		env = in.env.Ancestor(distance)
		v = env.values[name.Lexeme]
	} else {
		var err error
		if v, err = in.globals.Get(name); err != nil {
			return Value{}, err
		}
	}
	if in.opts.StrictInit && env.Uninitialized(name.Lexeme) {
		return Value{}, runtimeErrorf(name, "Uninitialized variable '%s'.", name.Lexeme)
	}
	return v, nil
}

func (in *Interpreter) evalUnary(e *parser.UnaryExpr) (Value, error) {
	operand, err := in.evaluate(e.Operand)
	if err != nil {
		return Value{}, err
	}
	switch e.Op.Type {
	case parser.TokenBang:
		return BoolValue(!operand.Truthy()), nil
	case parser.TokenMinus:
		if operand.Type != TypeNumber {
			return Value{}, runtimeErrorf(e.Op, "Operand must be a number.")
		}
		return NumberValue(-operand.Number()), nil
	}
	return Value{}, runtimeErrorf(e.Op, "Unknown unary operator '%s'.", e.Op.Lexeme)
}

func (in *Interpreter) evalBinary(e *parser.BinaryExpr) (Value, error) {
	left, err := in.evaluate(e.Left)
	if err != nil {
		return Value{}, err
	}
	right, err := in.evaluate(e.Right)
	if err != nil {
		return Value{}, err
	}

	switch e.Op.Type {
	case parser.TokenComma:
		return right, nil
	case parser.TokenEqualEqual:
		return BoolValue(left.Equal(right)), nil
	case parser.TokenBangEqual:
		return BoolValue(!left.Equal(right)), nil
	case parser.TokenPlus:
		switch {
		case left.Type == TypeNumber && right.Type == TypeNumber:
			return NumberValue(left.Number() + right.Number()), nil
		case left.Type == TypeString && right.Type == TypeString:
			return StringValue(left.Str() + right.Str()), nil
		}
		return Value{}, runtimeErrorf(e.Op, "Operands must be two numbers or two strings.")
	}

	if left.Type != TypeNumber || right.Type != TypeNumber {
		return Value{}, runtimeErrorf(e.Op, "Operands must be numbers.")
	}
	a, b := left.Number(), right.Number()
	switch e.Op.Type {
	case parser.TokenMinus:
		return NumberValue(a - b), nil
	case parser.TokenStar:
		return NumberValue(a * b), nil
	case parser.TokenSlash:
		return NumberValue(a / b), nil
	case parser.TokenGreater:
		return BoolValue(a > b), nil
	case parser.TokenGreaterEqual:
		return BoolValue(a >= b), nil
	case parser.TokenLess:
		return BoolValue(a < b), nil
	case parser.TokenLessEqual:
		return BoolValue(a <= b), nil
	}
	return Value{}, runtimeErrorf(e.Op, "Unknown binary operator '%s'.", e.Op.Lexeme)
}

func (in *Interpreter) evalCall(e *parser.CallExpr) (Value, error) {
	callee, err := in.evaluate(e.Callee)
	if err != nil {
		return Value{}, err
	}
	args := make([]Value, 0, len(e.Args))
	for _, argExpr := range e.Args {
		arg, err := in.evaluate(argExpr)
		if err != nil {
			return Value{}, err
		}
		args = append(args, arg)
	}

	fn := callee.Callable()
	if fn == nil {
		return Value{}, runtimeErrorf(e.Paren, "Can only call functions and classes.")
	}
	if len(args) != fn.Arity() {
		return Value{}, runtimeErrorf(e.Paren, "Expected %d arguments but got %d.", fn.Arity(), len(args))
	}
	if in.depth >= in.opts.MaxCallDepth {
		return Value{}, runtimeErrorf(e.Paren, "Stack overflow.")
	}

	in.depth++
	defer func() { in.depth-- }()
	v, err := fn.Call(in, args)
	if err != nil {
		var rtErr *RuntimeError
		if !errors.As(err, &rtErr) {
			err = &RuntimeError{Token: e.Paren, Message: err.Error()}
		}
		return Value{}, err
	}
	return v, nil
}

func (in *Interpreter) evalSuper(e *parser.SuperExpr) (Value, error) {
	distance, ok := in.locals[e]
	if !ok {
		return Value{}, runtimeErrorf(e.Keyword, "Can't use 'super' outside of a class.")
	}
	parent := in.env.GetAt(distance, "super").Class()
	inst := in.env.GetAt(distance-1, "this").Instance()
	if parent == nil || inst == nil {
		return Value{}, runtimeErrorf(e.Keyword, "Can't use 'super' outside of a class.")
	}
	method := parent.FindMethod(e.Method.Lexeme)
	if method == nil {
		return Value{}, runtimeErrorf(e.Method, "Undefined property '%s'.", e.Method.Lexeme)
	}
	return CallableValue(method.Bind(inst)), nil
}
