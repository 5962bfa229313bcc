package lang

import "github.com/sergev/glox/parser"

// Env implements a lexical environment chain. Closures created in the same
// scope share its Env, so writes through one are visible to the others.
type Env struct {
	parent *Env
	values map[string]Value

	// unset holds names declared without an initializer and not yet assigned.
	unset map[string]struct{}
}

// NewEnv creates an environment with optional parent.
func NewEnv(parent *Env) *Env {
	return &Env{
		parent: parent,
		values: make(map[string]Value),
	}
}

// Define binds name to value in current frame, replacing any prior binding.
func (e *Env) Define(name string, val Value) {
	e.values[name] = val
	delete(e.unset, name)
}

// Declare binds name to nil and marks it uninitialized.
func (e *Env) Declare(name string) {
	e.values[name] = Nil
	if e.unset == nil {
		e.unset = make(map[string]struct{})
	}
	e.unset[name] = struct{}{}
}

// Get retrieves a binding, searching parents if necessary.
func (e *Env) Get(name parser.Token) (Value, error) {
	for env := e; env != nil; env = env.parent {
		if val, ok := env.values[name.Lexeme]; ok {
			return val, nil
		}
	}
	return Value{}, runtimeErrorf(name, "Undefined variable '%s'.", name.Lexeme)
}

// Assign updates an existing binding, searching parents if needed.
func (e *Env) Assign(name parser.Token, val Value) error {
	for env := e; env != nil; env = env.parent {
		if _, ok := env.values[name.Lexeme]; ok {
			env.values[name.Lexeme] = val
			delete(env.unset, name.Lexeme)
			return nil
		}
	}
	return runtimeErrorf(name, "Undefined variable '%s'.", name.Lexeme)
}

// GetAt reads name from the environment distance hops up the chain.
func (e *Env) GetAt(distance int, name string) Value {
	return e.Ancestor(distance).values[name]
}

// AssignAt writes name in the environment distance hops up the chain.
func (e *Env) AssignAt(distance int, name string, val Value) {
	env := e.Ancestor(distance)
	env.values[name] = val
	delete(env.unset, name)
}

// Ancestor returns the environment distance hops up the chain.
func (e *Env) Ancestor(distance int) *Env {
	env := e
	for i := 0; i < distance; i++ {
		env = env.parent
	}
	return env
}

// Uninitialized reports whether name in this frame was declared without a
// value and never assigned.
func (e *Env) Uninitialized(name string) bool {
	_, ok := e.unset[name]
	return ok
}

// Parent returns the parent environment.
func (e *Env) Parent() *Env {
	return e.parent
}
