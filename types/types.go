package types

import (
	"fmt"

	"rrt/report"
)

// Type represents a resolved source-subset data type.
type Type interface {
	// Returns whether this type is equal to the other type.  This does not
	// account for untyped unwrapping: it should only be called within methods
	// of type instances.
	equals(other Type) bool

	// Returns the representative string for this type.
	Repr() string
}

/* -------------------------------------------------------------------------- */

// PrimitiveType represents a primitive type.  This must be one of the
// enumerated primitive type values below.
type PrimitiveType int

// Enumeration of the different primitive types.
const (
	PrimInt64 = PrimitiveType(iota)
	PrimFloat64
	PrimBool
	PrimStr
)

func (pt PrimitiveType) equals(other Type) bool {
	if opt, ok := other.(PrimitiveType); ok {
		return pt == opt
	}

	return false
}

func (pt PrimitiveType) Repr() string {
	switch pt {
	case PrimInt64:
		return "int"
	case PrimFloat64:
		return "float"
	case PrimBool:
		return "bool"
	default:
		return "str"
	}
}

// IsNumeric returns whether this primitive type is a numeric type.
func (pt PrimitiveType) IsNumeric() bool {
	return pt == PrimInt64 || pt == PrimFloat64
}

/* -------------------------------------------------------------------------- */

// ArrayType represents a fixed-shape array type.  The length is always known
// at translation time: arrays only enter a function through literals.
type ArrayType struct {
	// The element type of the array.
	ElemType Type

	// The number of elements in the array.
	Len int
}

func (at *ArrayType) equals(other Type) bool {
	if oat, ok := other.(*ArrayType); ok {
		return Equals(at.ElemType, oat.ElemType) && at.Len == oat.Len
	}

	return false
}

func (at *ArrayType) Repr() string {
	return fmt.Sprintf("list[%s]", at.ElemType.Repr())
}

/* -------------------------------------------------------------------------- */

// InnerType returns the concrete type underlying typ, unwrapping any bound
// untyped values.  It is an internal error to call this on an unbound untyped
// value: the resolver finalizes all bindings before anything downstream runs.
func InnerType(typ Type) Type {
	if ut, ok := typ.(*Untyped); ok {
		inner := ut.Bound()
		if inner == nil {
			report.ReportICE("InnerType() called on an unbound untyped value")
		}

		return inner
	}

	return typ
}

// Equals returns whether the two types are equal, unwrapping bound untyped
// values on both sides.
func Equals(a, b Type) bool {
	return InnerType(a).equals(InnerType(b))
}

// IsNumeric returns whether typ is (or is bound to) a numeric primitive.
func IsNumeric(typ Type) bool {
	if pt, ok := InnerType(typ).(PrimitiveType); ok {
		return pt.IsNumeric()
	}

	return false
}

// IsPrim returns whether typ unwraps to the given primitive type.
func IsPrim(typ Type, pt PrimitiveType) bool {
	return InnerType(typ).equals(pt)
}

// Promote computes the promoted type of a mixed numeric operation: two Int64
// operands stay Int64; any Float64 operand promotes the result to Float64.
// The returned boolean is false if either operand is not numeric.
func Promote(a, b Type) (Type, bool) {
	if !IsNumeric(a) || !IsNumeric(b) {
		return nil, false
	}

	if IsPrim(a, PrimFloat64) || IsPrim(b, PrimFloat64) {
		return PrimFloat64, true
	}

	return PrimInt64, true
}
