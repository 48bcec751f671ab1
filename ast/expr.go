package ast

import (
	"rrt/common"
	"rrt/report"
	"rrt/types"
)

// ASTExpr represents an expression.  All expression nodes implement it.
type ASTExpr interface {
	ASTNode

	// Type is the yielded type of the expression.  This is nil until the
	// resolver assigns it.
	Type() types.Type

	// SetType sets the type of the expression.
	SetType(types.Type)
}

// ExprBase is the base struct for all expressions.
type ExprBase struct {
	ASTBase

	typ types.Type
}

// NewExprBase creates a new expression base with the given span.
func NewExprBase(span *report.TextSpan) ExprBase {
	return ExprBase{ASTBase: NewASTBaseOn(span)}
}

func (eb *ExprBase) Type() types.Type {
	return eb.typ
}

func (eb *ExprBase) SetType(typ types.Type) {
	eb.typ = typ
}

/* -------------------------------------------------------------------------- */

// Literal represents a single literal value.  The kind is a token kind: one of
// TOK_INTLIT, TOK_FLOATLIT, TOK_STRINGLIT, or TOK_BOOLLIT.
type Literal struct {
	ExprBase

	Kind  int
	Value string
}

// Identifier represents a named value.
type Identifier struct {
	ExprBase

	Name string

	// The symbol the identifier refers to.  Assigned by the resolver.
	Sym *common.Symbol
}

// Oper is an operator used in the AST.
type Oper struct {
	// The token kind of the operator.
	Kind int

	// The name of the operator as written in source.
	Name string

	// The span of the operator token.
	Span *report.TextSpan
}

// BinaryOp represents a binary operator application.
type BinaryOp struct {
	ExprBase

	Op       Oper
	Lhs, Rhs ASTExpr
}

// UnaryOp represents a unary operator application.
type UnaryOp struct {
	ExprBase

	Op      Oper
	Operand ASTExpr
}

// Call represents a call to one of the whitelisted builtin operations.
type Call struct {
	ExprBase

	// The name of the builtin being called.
	Name string

	// The span of the callee name.
	NameSpan *report.TextSpan

	// The argument expressions in order.
	Args []ASTExpr
}

// Index represents an array subscript expression.
type Index struct {
	ExprBase

	Root  ASTExpr
	Subsc ASTExpr
}

// ArrayLit represents an array literal.
type ArrayLit struct {
	ExprBase

	Elems []ASTExpr
}
