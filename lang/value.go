package lang

import (
	"math"
	"strconv"
)

// ValueType enumerates the different runtime value categories.
type ValueType int

const (
	TypeNil ValueType = iota
	TypeBool
	TypeNumber
	TypeString
	TypeCallable
	TypeInstance
)

func (t ValueType) String() string {
	switch t {
	case TypeNil:
		return "nil"
	case TypeBool:
		return "boolean"
	case TypeNumber:
		return "number"
	case TypeString:
		return "string"
	case TypeCallable:
		return "callable"
	case TypeInstance:
		return "instance"
	default:
		return "unknown"
	}
}

// Value represents any runtime object in the interpreter.
type Value struct {
	Type    ValueType
	payload interface{}
}

// Nil is the single nil value. The zero Value is also nil.
var Nil = Value{Type: TypeNil}

// BoolValue returns the boolean Value equivalent.
func BoolValue(b bool) Value {
	return Value{Type: TypeBool, payload: b}
}

// NumberValue constructs a double-precision number Value.
func NumberValue(f float64) Value {
	return Value{Type: TypeNumber, payload: f}
}

// StringValue constructs a string Value.
func StringValue(s string) Value {
	return Value{Type: TypeString, payload: s}
}

// CallableValue wraps a function, lambda, class or native.
func CallableValue(c Callable) Value {
	return Value{Type: TypeCallable, payload: c}
}

// InstanceValue wraps a class instance.
func InstanceValue(inst *Instance) Value {
	return Value{Type: TypeInstance, payload: inst}
}

// FromLiteral converts a literal stored in the syntax tree.
func FromLiteral(lit interface{}) Value {
	switch v := lit.(type) {
	case bool:
		return BoolValue(v)
	case float64:
		return NumberValue(v)
	case string:
		return StringValue(v)
	default:
		return Nil
	}
}

func (v Value) Bool() bool {
	if b, ok := v.payload.(bool); ok {
		return b
	}
	return false
}

func (v Value) Number() float64 {
	if f, ok := v.payload.(float64); ok {
		return f
	}
	return 0
}

func (v Value) Str() string {
	if s, ok := v.payload.(string); ok {
		return s
	}
	return ""
}

func (v Value) Callable() Callable {
	if c, ok := v.payload.(Callable); ok {
		return c
	}
	return nil
}

func (v Value) Instance() *Instance {
	if inst, ok := v.payload.(*Instance); ok {
		return inst
	}
	return nil
}

// Class returns the class a callable value holds, or nil.
func (v Value) Class() *Class {
	if c, ok := v.payload.(*Class); ok {
		return c
	}
	return nil
}

// Truthy reports the value's truthiness: only nil and false are falsy.
func (v Value) Truthy() bool {
	switch v.Type {
	case TypeNil:
		return false
	case TypeBool:
		return v.Bool()
	default:
		return true
	}
}

// Equal compares values without coercion between kinds. Primitives compare
// by content, callables and instances by identity. NaN equals itself.
func (v Value) Equal(other Value) bool {
	if v.Type != other.Type {
		return false
	}
	switch v.Type {
	case TypeNil:
		return true
	case TypeNumber:
		a, b := v.Number(), other.Number()
		return a == b || (math.IsNaN(a) && math.IsNaN(b))
	default:
		return v.payload == other.payload
	}
}

func (v Value) String() string {
	switch v.Type {
	case TypeNil:
		return "nil"
	case TypeBool:
		if v.Bool() {
			return "true"
		}
		return "false"
	case TypeNumber:
		return formatNumber(v.Number())
	case TypeString:
		return v.Str()
	case TypeCallable:
		if c := v.Callable(); c != nil {
			return c.String()
		}
		return "<fn>"
	case TypeInstance:
		if inst := v.Instance(); inst != nil {
			return inst.String()
		}
		return "<instance>"
	default:
		return "<unknown>"
	}
}

// formatNumber prints integral values without a fractional part.
func formatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case math.Abs(f) < 1e21:
		return strconv.FormatFloat(f, 'f', -1, 64)
	default:
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
}
