// Package value implements the runtime value model shared by the compiler,
// the virtual machine, and the garbage collector: the tagged Value union,
// every heap object kind reachable from it, and the bytecode Chunk that
// stores Values in its constant pool.
package value

import (
	"fmt"
	"math"
	"strconv"
)

// Kind identifies which arm of the tagged union a Value holds.
type Kind int

const (
	KindNil Kind = iota
	KindBool
	KindNumber
	KindObj
)

// Value is a tagged union: nil, a boolean, an IEEE-754 double, or a
// reference to a heap object. It is deliberately a small value type (not a
// pointer or interface) so that pushing and popping the VM's value stack
// never allocates.
type Value struct {
	kind    Kind
	boolean bool
	number  float64
	obj     Obj
}

// Nil is the canonical nil value.
var Nil = Value{kind: KindNil}

// Bool constructs a boolean Value.
func Bool(b bool) Value { return Value{kind: KindBool, boolean: b} }

// Number constructs a numeric Value.
func Number(n float64) Value { return Value{kind: KindNumber, number: n} }

// FromObj constructs a Value wrapping a heap object reference.
func FromObj(o Obj) Value { return Value{kind: KindObj, obj: o} }

func (v Value) IsNil() bool    { return v.kind == KindNil }
func (v Value) IsBool() bool   { return v.kind == KindBool }
func (v Value) IsNumber() bool { return v.kind == KindNumber }
func (v Value) IsObj() bool    { return v.kind == KindObj }

func (v Value) AsBool() bool     { return v.boolean }
func (v Value) AsNumber() float64 { return v.number }
func (v Value) AsObj() Obj        { return v.obj }

// Is reports whether the value is an object of the given runtime type, e.g.
// value.Is[*ObjString](v).
func Is[T Obj](v Value) bool {
	if v.kind != KindObj {
		return false
	}
	_, ok := v.obj.(T)
	return ok
}

// As type-asserts the value's object payload, panicking if the kind does
// not match. Callers are expected to guard with Is first; this mirrors the
// unchecked AS_* macros of the bytecode VM this design is modeled on.
func As[T Obj](v Value) T {
	return v.obj.(T)
}

// IsString reports whether v holds an interned string.
func (v Value) IsString() bool { return Is[*ObjString](v) }

// IsFalsey implements the language's truthiness rule: nil and false are
// falsey, everything else -- including 0 and the empty string -- is truthy.
func (v Value) IsFalsey() bool {
	return v.IsNil() || (v.IsBool() && !v.AsBool())
}

// Equal implements value equality. Objects compare by reference identity,
// which is sufficient for strings because the interner guarantees at most
// one heap String exists per distinct byte sequence.
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindNil:
		return true
	case KindBool:
		return a.boolean == b.boolean
	case KindNumber:
		return a.number == b.number
	case KindObj:
		return a.obj == b.obj
	default:
		return false
	}
}

// String renders the value the way the `print` statement and string
// concatenation do.
func (v Value) String() string {
	switch v.kind {
	case KindNil:
		return "nil"
	case KindBool:
		if v.boolean {
			return "true"
		}
		return "false"
	case KindNumber:
		return formatNumber(v.number)
	case KindObj:
		return v.obj.String()
	default:
		return "<invalid value>"
	}
}

func formatNumber(n float64) string {
	if math.IsInf(n, 1) {
		return "inf"
	}
	if math.IsInf(n, -1) {
		return "-inf"
	}
	if math.IsNaN(n) {
		return "nan"
	}
	return strconv.FormatFloat(n, 'g', -1, 64)
}

// TypeName returns a short description of the value's dynamic type, used in
// runtime error messages.
func TypeName(v Value) string {
	switch v.kind {
	case KindNil:
		return "nil"
	case KindBool:
		return "boolean"
	case KindNumber:
		return "number"
	case KindObj:
		return fmt.Sprintf("%T", v.obj)
	default:
		return "unknown"
	}
}
