package lang

import (
	"fmt"

	"github.com/sergev/glox/parser"
)

// Callable is anything that can be invoked with a call expression.
type Callable interface {
	// Arity is the exact number of arguments Call expects.
	Arity() int
	Call(in *Interpreter, args []Value) (Value, error)
	String() string
}

// NativeFunc is the Go implementation behind a Native.
type NativeFunc func(in *Interpreter, args []Value) (Value, error)

// Native is a built-in function implemented in Go.
type Native struct {
	name  string
	arity int
	fn    NativeFunc
}

// NewNative wraps fn as a callable taking exactly arity arguments.
func NewNative(name string, arity int, fn NativeFunc) *Native {
	return &Native{name: name, arity: arity, fn: fn}
}

func (n *Native) Name() string { return n.name }
func (n *Native) Arity() int   { return n.arity }

func (n *Native) Call(in *Interpreter, args []Value) (Value, error) {
	return n.fn(in, args)
}

func (n *Native) String() string { return "<native fn>" }

// Function is a named function or method together with its closure.
type Function struct {
	decl    *parser.FunctionStmt
	closure *Env
	isInit  bool
}

// NewFunction captures decl in closure. isInit marks a class initializer,
// which always returns its receiver.
func NewFunction(decl *parser.FunctionStmt, closure *Env, isInit bool) *Function {
	return &Function{decl: decl, closure: closure, isInit: isInit}
}

func (f *Function) Name() string { return f.decl.Name.Lexeme }
func (f *Function) Arity() int   { return len(f.decl.Params) }

// Bind returns a copy of f whose closure defines `this` as inst.
func (f *Function) Bind(inst *Instance) *Function {
	env := NewEnv(f.closure)
	env.Define("this", InstanceValue(inst))
	return &Function{decl: f.decl, closure: env, isInit: f.isInit}
}

func (f *Function) Call(in *Interpreter, args []Value) (Value, error) {
	result, err := in.invoke(f.decl.Params, f.decl.Body, f.closure, args)
	if err != nil {
		return Value{}, err
	}
	if f.isInit {
		return f.closure.GetAt(0, "this"), nil
	}
	return result, nil
}

func (f *Function) String() string {
	return fmt.Sprintf("<fn %s>", f.Name())
}

// Lambda is an anonymous function value.
type Lambda struct {
	expr    *parser.LambdaExpr
	closure *Env
}

func (l *Lambda) Arity() int { return len(l.expr.Params) }

func (l *Lambda) Call(in *Interpreter, args []Value) (Value, error) {
	return in.invoke(l.expr.Params, l.expr.Body, l.closure, args)
}

func (l *Lambda) String() string { return "<lambda>" }

// Class is both a method table and the constructor of its instances.
type Class struct {
	name    string
	parent  *Class
	methods map[string]*Function
}

// NewClass builds a class. parent may be nil.
func NewClass(name string, parent *Class, methods map[string]*Function) *Class {
	if methods == nil {
		methods = make(map[string]*Function)
	}
	return &Class{name: name, parent: parent, methods: methods}
}

func (c *Class) Name() string   { return c.name }
func (c *Class) Parent() *Class { return c.parent }
func (c *Class) String() string { return c.name }

// FindMethod looks name up in the class and then its ancestors.
func (c *Class) FindMethod(name string) *Function {
	for cls := c; cls != nil; cls = cls.parent {
		if m, ok := cls.methods[name]; ok {
			return m
		}
	}
	return nil
}

// Arity is the arity of init, or zero without one.
func (c *Class) Arity() int {
	if init := c.FindMethod("init"); init != nil {
		return init.Arity()
	}
	return 0
}

// Call allocates an instance and runs init on it when present.
func (c *Class) Call(in *Interpreter, args []Value) (Value, error) {
	inst := NewInstance(c)
	if init := c.FindMethod("init"); init != nil {
		if _, err := init.Bind(inst).Call(in, args); err != nil {
			return Value{}, err
		}
	}
	return InstanceValue(inst), nil
}

// Instance is an object with a class and mutable fields.
type Instance struct {
	class  *Class
	fields map[string]Value
}

// NewInstance creates an instance without running any initializer.
func NewInstance(class *Class) *Instance {
	return &Instance{class: class, fields: make(map[string]Value)}
}

func (inst *Instance) Class() *Class { return inst.class }

// Get reads a field, falling back to a method bound to inst.
func (inst *Instance) Get(name parser.Token) (Value, error) {
	if v, ok := inst.fields[name.Lexeme]; ok {
		return v, nil
	}
	if m := inst.class.FindMethod(name.Lexeme); m != nil {
		return CallableValue(m.Bind(inst)), nil
	}
	return Value{}, runtimeErrorf(name, "Undefined property '%s'.", name.Lexeme)
}

// Set creates or overwrites a field.
func (inst *Instance) Set(name parser.Token, v Value) {
	inst.fields[name.Lexeme] = v
}

func (inst *Instance) String() string {
	return inst.class.Name() + " instance"
}
