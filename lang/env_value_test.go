package lang

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/sergev/glox/parser"
)

func ident(name string) parser.Token {
	return parser.Token{Type: parser.TokenIdentifier, Lexeme: name, Line: 1}
}

func TestEnvParentLookupAndErrors(t *testing.T) {
	parent := NewEnv(nil)
	parent.Define("x", NumberValue(1))
	child := NewEnv(parent)

	if err := child.Assign(ident("x"), NumberValue(2)); err != nil {
		t.Fatalf("Assign should update parent binding: %v", err)
	}
	val, err := parent.Get(ident("x"))
	if err != nil || val.Number() != 2 {
		t.Fatalf("expected parent value updated to 2, got %v err=%v", val, err)
	}

	err = child.Assign(ident("missing"), Nil)
	if err == nil || !strings.Contains(err.Error(), "Undefined variable 'missing'.") {
		t.Fatalf("expected error updating missing binding, got %v", err)
	}
	if !errors.Is(err, ErrRuntime) {
		t.Fatalf("expected runtime error kind, got %v", err)
	}

	if _, err := child.Get(ident("missing")); err == nil {
		t.Fatalf("expected error fetching missing binding")
	}

	if child.Parent() != parent {
		t.Fatalf("expected Parent to expose enclosing environment")
	}
}

func TestEnvDistanceAccess(t *testing.T) {
	outer := NewEnv(nil)
	outer.Define("a", StringValue("outer"))
	middle := NewEnv(outer)
	middle.Define("a", StringValue("middle"))
	inner := NewEnv(middle)

	if got := inner.GetAt(2, "a").Str(); got != "outer" {
		t.Fatalf("GetAt(2) = %q, want outer", got)
	}
	if got := inner.GetAt(1, "a").Str(); got != "middle" {
		t.Fatalf("GetAt(1) = %q, want middle", got)
	}
	inner.AssignAt(2, "a", StringValue("changed"))
	if got := outer.values["a"].Str(); got != "changed" {
		t.Fatalf("AssignAt did not reach outer scope, got %q", got)
	}
	if inner.Ancestor(0) != inner || inner.Ancestor(2) != outer {
		t.Fatalf("Ancestor returned the wrong environment")
	}
}

func TestEnvUninitialized(t *testing.T) {
	env := NewEnv(nil)
	env.Declare("a")
	if !env.Uninitialized("a") {
		t.Fatalf("declared name should be uninitialized")
	}
	if v, err := env.Get(ident("a")); err != nil || v.Type != TypeNil {
		t.Fatalf("declared name should read as nil, got %v err=%v", v, err)
	}
	if err := env.Assign(ident("a"), NumberValue(1)); err != nil {
		t.Fatalf("Assign returned error: %v", err)
	}
	if env.Uninitialized("a") {
		t.Fatalf("assignment should initialize the name")
	}
	env.Declare("b")
	env.AssignAt(0, "b", Nil)
	if env.Uninitialized("b") {
		t.Fatalf("AssignAt should initialize the name")
	}
}

func TestValueStrings(t *testing.T) {
	cls := NewClass("Point", nil, nil)
	decl := &parser.FunctionStmt{Name: ident("area")}
	tests := []struct {
		val  Value
		want string
	}{
		{Nil, "nil"},
		{Value{}, "nil"},
		{BoolValue(true), "true"},
		{BoolValue(false), "false"},
		{NumberValue(3), "3"},
		{NumberValue(-0.5), "-0.5"},
		{NumberValue(2.5), "2.5"},
		{NumberValue(1e7), "10000000"},
		{NumberValue(math.Inf(1)), "Infinity"},
		{NumberValue(math.NaN()), "NaN"},
		{StringValue("plain"), "plain"},
		{CallableValue(cls), "Point"},
		{InstanceValue(NewInstance(cls)), "Point instance"},
		{CallableValue(NewFunction(decl, nil, false)), "<fn area>"},
		{CallableValue(&Lambda{expr: &parser.LambdaExpr{}}), "<lambda>"},
		{CallableValue(NewNative("clock", 0, nil)), "<native fn>"},
	}
	for _, tt := range tests {
		if got := tt.val.String(); got != tt.want {
			t.Fatalf("expected %q, got %q", tt.want, got)
		}
	}
}

func TestValueTruthiness(t *testing.T) {
	falsy := []Value{Nil, BoolValue(false)}
	truthy := []Value{BoolValue(true), NumberValue(0), StringValue(""), InstanceValue(NewInstance(NewClass("A", nil, nil)))}
	for _, v := range falsy {
		if v.Truthy() {
			t.Fatalf("%v should be falsy", v)
		}
	}
	for _, v := range truthy {
		if !v.Truthy() {
			t.Fatalf("%v should be truthy", v)
		}
	}
}

func TestValueEquality(t *testing.T) {
	cls := NewClass("A", nil, nil)
	a, b := NewInstance(cls), NewInstance(cls)
	tests := []struct {
		left, right Value
		want        bool
	}{
		{Nil, Nil, true},
		{Nil, BoolValue(false), false},
		{NumberValue(1), NumberValue(1), true},
		{NumberValue(1), StringValue("1"), false},
		{NumberValue(math.NaN()), NumberValue(math.NaN()), true},
		{StringValue("ab"), StringValue("ab"), true},
		{BoolValue(true), BoolValue(true), true},
		{InstanceValue(a), InstanceValue(a), true},
		{InstanceValue(a), InstanceValue(b), false},
		{CallableValue(cls), CallableValue(cls), true},
		{CallableValue(cls), CallableValue(NewClass("A", nil, nil)), false},
	}
	for i, tt := range tests {
		if got := tt.left.Equal(tt.right); got != tt.want {
			t.Fatalf("case %d: %v == %v gave %v, want %v", i, tt.left, tt.right, got, tt.want)
		}
	}
}

func TestClassMethodLookupWalksParents(t *testing.T) {
	speak := NewFunction(&parser.FunctionStmt{Name: ident("speak")}, NewEnv(nil), false)
	base := NewClass("Base", nil, map[string]*Function{"speak": speak})
	derived := NewClass("Derived", base, nil)

	if derived.FindMethod("speak") != speak {
		t.Fatalf("expected inherited method")
	}
	if derived.FindMethod("missing") != nil {
		t.Fatalf("expected nil for unknown method")
	}
	if derived.Arity() != 0 {
		t.Fatalf("class without init should have arity 0")
	}

	inst := NewInstance(derived)
	if inst.Class() != derived || inst.Class().Parent().Name() != "Base" {
		t.Fatalf("instance should keep its class chain")
	}
	if speak.Name() != "speak" || inst.String() != "Derived instance" {
		t.Fatalf("unexpected names %q %q", speak.Name(), inst.String())
	}
	if _, err := inst.Get(ident("nope")); err == nil || !strings.Contains(err.Error(), "Undefined property 'nope'.") {
		t.Fatalf("expected undefined property error, got %v", err)
	}
	inst.Set(ident("speak"), NumberValue(1))
	if v, _ := inst.Get(ident("speak")); v.Type != TypeNumber {
		t.Fatalf("fields should shadow methods, got %v", v)
	}
}
