package runtime

import (
	"fmt"
	"strconv"
)

// Kind identifies the runtime value category.
type Kind int

const (
	KindInt Kind = iota
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindBool:
		return "bool"
	default:
		return fmt.Sprintf("unknown_kind_%d", int(k))
	}
}

// Value is the shared behaviour for all runtime values.
type Value interface {
	Kind() Kind
}

//-----------------------------------------------------------------------------
// Scalars
//-----------------------------------------------------------------------------

type IntValue struct {
	Val int64
}

func (v IntValue) Kind() Kind { return KindInt }

type BoolValue struct {
	Val bool
}

func (v BoolValue) Kind() Kind { return KindBool }

// Int and Bool are shorthands used throughout the interpreter and tests.
func Int(v int64) IntValue { return IntValue{Val: v} }

func Bool(v bool) BoolValue { return BoolValue{Val: v} }

//-----------------------------------------------------------------------------
// Built-in fault values
//-----------------------------------------------------------------------------

var (
	// UndefinedVariable is raised when reading a name that has no binding.
	UndefinedVariable Value = IntValue{Val: 0}
	// DivisionByZero is raised by an integer division with a zero divisor.
	DivisionByZero Value = IntValue{Val: 1}
	// TypeMismatch is raised for operands or conditions of the wrong kind.
	TypeMismatch Value = IntValue{Val: 2}
)

// Equal reports whether two values carry the same tag and payload.
func Equal(a, b Value) bool {
	switch av := a.(type) {
	case IntValue:
		bv, ok := b.(IntValue)
		return ok && av.Val == bv.Val
	case BoolValue:
		bv, ok := b.(BoolValue)
		return ok && av.Val == bv.Val
	default:
		return a == nil && b == nil
	}
}

// Show renders a value in its constructor-tagged display form, the format
// observed in program output: "IntVal 3", "IntVal (-3)", "BoolVal True".
func Show(v Value) string {
	switch val := v.(type) {
	case IntValue:
		if val.Val < 0 {
			return "IntVal (" + strconv.FormatInt(val.Val, 10) + ")"
		}
		return "IntVal " + strconv.FormatInt(val.Val, 10)
	case BoolValue:
		if val.Val {
			return "BoolVal True"
		}
		return "BoolVal False"
	case nil:
		return "<nil>"
	default:
		return fmt.Sprintf("<%s>", v.Kind())
	}
}

func (v IntValue) String() string  { return Show(v) }
func (v BoolValue) String() string { return Show(v) }
