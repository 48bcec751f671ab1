package mir

import "rrt/types"

// Expr represents an expression in MIR.
type Expr interface {
	// Type returns the result type of the expression.
	Type() types.Type
}

// Enumeration of op codes.  OCDiv is true division: lowering casts both of
// its operands to float, so generators always see it applied to floats.
const (
	OCAdd = iota
	OCSub
	OCMul
	OCDiv
	OCFloorDiv
	OCMod
	OCNeg

	OCEq
	OCNEq
	OCLt
	OCLtEq
	OCGt
	OCGtEq

	OCNot
	OCAnd
	OCOr
)

// BinaryExpr is a binary operation applied to two values of the same type.
type BinaryExpr struct {
	OpCode     int
	Lhs, Rhs   Expr
	ResultType types.Type
}

func (be *BinaryExpr) Type() types.Type {
	return be.ResultType
}

// UnaryExpr is a unary operation applied to one value.
type UnaryExpr struct {
	OpCode     int
	Operand    Expr
	ResultType types.Type
}

func (ue *UnaryExpr) Type() types.Type {
	return ue.ResultType
}

// CastExpr represents a numeric conversion: int to float promotion or the
// truncating float to int conversion of the `int` builtin.
type CastExpr struct {
	Src      Expr
	DestType types.Type
}

func (ce *CastExpr) Type() types.Type {
	return ce.DestType
}

// BuiltinCall is a call to a runtime builtin that survives lowering: abs,
// min, max, len, or str.  The `int` and `float` builtins become casts.
type BuiltinCall struct {
	Builtin    string
	Args       []Expr
	ResultType types.Type
}

func (bc *BuiltinCall) Type() types.Type {
	return bc.ResultType
}

/* -------------------------------------------------------------------------- */

// Identifier represents a parameter or local variable reference.
type Identifier struct {
	Name   string
	IdType types.Type
}

func (id *Identifier) Type() types.Type {
	return id.IdType
}

// IndexExpr represents an array subscript.
type IndexExpr struct {
	Root     Expr
	Subsc    Expr
	ElemType types.Type
}

func (ie *IndexExpr) Type() types.Type {
	return ie.ElemType
}

// ArrayLit represents a fixed-shape array literal.
type ArrayLit struct {
	Elems   []Expr
	ArrType *types.ArrayType
}

func (al *ArrayLit) Type() types.Type {
	return al.ArrType
}

/* -------------------------------------------------------------------------- */

// IntLit is an integer literal.
type IntLit struct {
	Value int64
}

func (il *IntLit) Type() types.Type {
	return types.PrimInt64
}

// FloatLit is a float literal.
type FloatLit struct {
	Value float64
}

func (fl *FloatLit) Type() types.Type {
	return types.PrimFloat64
}

// BoolLit is a bool literal.
type BoolLit struct {
	Value bool
}

func (bl *BoolLit) Type() types.Type {
	return types.PrimBool
}

// StrLit is a string literal holding its decoded value.
type StrLit struct {
	Value string
}

func (sl *StrLit) Type() types.Type {
	return types.PrimStr
}
