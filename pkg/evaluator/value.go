// Package evaluator implements the Lox tree-walking interpreter.
package evaluator

import (
	"math"
	"strconv"
)

// Value is the interface for all Lox runtime values.
// Use the sealed marker method to restrict implementations to this package.
type Value interface {
	loxValue() // sealed marker
}

// LoxNil represents nil.
type LoxNil struct{}

func (LoxNil) loxValue() {}

// LoxBool represents a boolean value.
type LoxBool struct {
	Value bool
}

func (LoxBool) loxValue() {}

// LoxNumber represents a double-precision number.
type LoxNumber struct {
	Value float64
}

func (LoxNumber) loxValue() {}

// LoxString represents a string value.
type LoxString struct {
	Value string
}

func (LoxString) loxValue() {}

// uninitialized marks a variable declared without an initializer that has
// not been assigned yet. It never escapes an Env lookup.
type uninitialized struct{}

func (uninitialized) loxValue() {}

// NewNil creates a nil value.
func NewNil() Value {
	return LoxNil{}
}

// NewBool creates a boolean value.
func NewBool(b bool) Value {
	return LoxBool{Value: b}
}

// NewNumber creates a numeric value.
func NewNumber(n float64) Value {
	return LoxNumber{Value: n}
}

// NewString creates a string value.
func NewString(s string) Value {
	return LoxString{Value: s}
}

// FromLiteral converts a literal carried by the AST (nil, bool, float64 or
// string) into a runtime value.
func FromLiteral(lit any) Value {
	switch v := lit.(type) {
	case bool:
		return LoxBool{Value: v}
	case float64:
		return LoxNumber{Value: v}
	case string:
		return LoxString{Value: v}
	default:
		return LoxNil{}
	}
}

// Truthiness returns the boolean interpretation of a Lox value.
// Only nil and false are falsy.
func Truthiness(v Value) bool {
	switch val := v.(type) {
	case LoxNil:
		return false
	case LoxBool:
		return val.Value
	default:
		return true
	}
}

// Equal reports whether two values are equal. Values of different types are
// never equal; numbers compare with IEEE semantics so NaN != NaN; functions
// compare by identity.
func Equal(a, b Value) bool {
	switch x := a.(type) {
	case LoxNil:
		_, ok := b.(LoxNil)
		return ok
	case LoxBool:
		y, ok := b.(LoxBool)
		return ok && x.Value == y.Value
	case LoxNumber:
		y, ok := b.(LoxNumber)
		return ok && x.Value == y.Value
	case LoxString:
		y, ok := b.(LoxString)
		return ok && x.Value == y.Value
	default:
		return a == b
	}
}

// Stringify returns the display form of a value as written by print.
func Stringify(v Value) string {
	switch val := v.(type) {
	case LoxNil:
		return "nil"
	case LoxBool:
		if val.Value {
			return "true"
		}
		return "false"
	case LoxNumber:
		return formatNumber(val.Value)
	case LoxString:
		return val.Value
	case *Function:
		return "<fn " + val.Name() + ">"
	case *NativeFunction:
		return "<native fn " + val.Name() + ">"
	default:
		return "nil"
	}
}

// formatNumber prints the shortest decimal that round-trips, without an
// exponent and without a trailing ".0" for integral values.
func formatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// TypeName returns the Lox-facing name of a value's type.
func TypeName(v Value) string {
	switch v.(type) {
	case LoxNil:
		return "nil"
	case LoxBool:
		return "boolean"
	case LoxNumber:
		return "number"
	case LoxString:
		return "string"
	case Callable:
		return "function"
	default:
		return "unknown"
	}
}
