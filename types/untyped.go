package types

import "fmt"

// Untyped represents the as-yet-undetermined type of an unannotated parameter
// or of a value computed from one.  All untyped values that must share a type
// point at the same binding group; binding the group resolves every value that
// references it at once.
type Untyped struct {
	group *untypedGroup
}

// untypedGroup is the shared state of a set of untyped values.
type untypedGroup struct {
	// The display names of the parameters bound to this group.
	names []string

	// The concrete type of the group once it is exactly bound.
	value Type

	// Whether the group is constrained to a numeric type.
	numeric bool

	// Whether numeric evidence requires the group to be Float64.
	float bool

	// Forwarding pointer installed when this group is merged into another.
	forward *untypedGroup
}

// NewUntyped creates a fresh untyped value named for the parameter name.
func NewUntyped(name string) *Untyped {
	return &Untyped{group: &untypedGroup{names: []string{name}}}
}

// find follows forwarding pointers to the representative group.
func (ug *untypedGroup) find() *untypedGroup {
	g := ug
	for g.forward != nil {
		g = g.forward
	}

	return g
}

func (ut *Untyped) equals(other Type) bool {
	g := ut.group.find()
	if g.value == nil {
		if out, ok := other.(*Untyped); ok {
			return g == out.group.find()
		}

		return false
	}

	return g.value.equals(InnerType(other))
}

func (ut *Untyped) Repr() string {
	g := ut.group.find()
	if g.value == nil {
		return fmt.Sprintf("untyped(%s)", g.names[0])
	}

	return g.value.Repr()
}

/* -------------------------------------------------------------------------- */

// Bound returns the concrete type of the untyped value, or nil if the group
// has not been bound yet.
func (ut *Untyped) Bound() Type {
	return ut.group.find().value
}

// BindExact binds the untyped value's group to the exact type typ.  Binding
// fails if the group is already bound to a different type or carries
// conflicting evidence.
func (ut *Untyped) BindExact(typ PrimitiveType) error {
	g := ut.group.find()

	if g.value != nil {
		if g.value.equals(typ) {
			return nil
		}

		return fmt.Errorf("`%s` cannot be both %s and %s", g.names[0], g.value.Repr(), typ.Repr())
	}

	if g.numeric && !typ.IsNumeric() {
		return fmt.Errorf("`%s` is used numerically and cannot be %s", g.names[0], typ.Repr())
	}

	if g.float && typ != PrimFloat64 {
		return fmt.Errorf("`%s` is used as a float and cannot be %s", g.names[0], typ.Repr())
	}

	g.value = typ
	return nil
}

// MarkNumeric constrains the untyped value's group to a numeric type.
func (ut *Untyped) MarkNumeric() error {
	g := ut.group.find()

	if g.value != nil {
		if pt, ok := g.value.(PrimitiveType); ok && pt.IsNumeric() {
			return nil
		}

		return fmt.Errorf("`%s` is %s and cannot be used numerically", g.names[0], g.value.Repr())
	}

	g.numeric = true
	return nil
}

// MarkFloat records numeric evidence requiring the group to resolve to
// Float64.  If the group is already exactly bound to Int64, the evidence is
// satisfied by a promotion at the use site instead, so this is a no-op.
func (ut *Untyped) MarkFloat() error {
	g := ut.group.find()

	if g.value != nil {
		if pt, ok := g.value.(PrimitiveType); ok && pt.IsNumeric() {
			return nil
		}

		return fmt.Errorf("`%s` is %s and cannot be used as a float", g.names[0], g.value.Repr())
	}

	g.numeric = true
	g.float = true
	return nil
}

// MergeWith merges the binding groups of two untyped values so that they
// resolve to the same type.
func (ut *Untyped) MergeWith(other *Untyped) error {
	a := ut.group.find()
	b := other.group.find()

	if a == b {
		return nil
	}

	if a.value != nil && b.value != nil && !a.value.equals(b.value) {
		return fmt.Errorf("`%s` (%s) and `%s` (%s) must have the same type",
			a.names[0], a.value.Repr(), b.names[0], b.value.Repr())
	}

	if a.value == nil && b.value != nil {
		// Bind a to b's value, reusing the exact-binding checks.
		if err := (&Untyped{group: a}).BindExact(b.value.(PrimitiveType)); err != nil {
			return err
		}
	} else if a.value != nil && b.value == nil {
		if err := (&Untyped{group: b}).BindExact(a.value.(PrimitiveType)); err != nil {
			return err
		}
	}

	a.names = append(a.names, b.names...)
	a.numeric = a.numeric || b.numeric
	a.float = a.float || b.float
	b.forward = a

	return nil
}

// Finalize resolves the group to its default if no exact evidence bound it:
// Float64 when float evidence was seen, Int64 otherwise.
func (ut *Untyped) Finalize() {
	g := ut.group.find()

	if g.value == nil {
		if g.float {
			g.value = PrimFloat64
		} else {
			g.value = PrimInt64
		}
	}
}
