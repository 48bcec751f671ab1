package mir

import "rrt/report"

// Statement represents a MIR statement.
type Statement interface {
	// Span returns the source position of the statement.
	Span() *report.TextSpan
}

// The base type for all statements.
type StmtBase struct {
	// The span of the statement.
	span *report.TextSpan
}

// NewStmtBase creates a new statement base with span span.
func NewStmtBase(span *report.TextSpan) StmtBase {
	return StmtBase{span: span}
}

func (sb StmtBase) Span() *report.TextSpan {
	return sb.span
}

/* -------------------------------------------------------------------------- */

// VarDecl represents the declaring first assignment of a variable.
type VarDecl struct {
	StmtBase

	// The variable being declared.
	Ident *Identifier

	// The initializer of the variable.
	Initializer Expr
}

// Assign represents an assignment to an already declared location.  The LHS
// is an Identifier or an IndexExpr.
type Assign struct {
	StmtBase

	LHS Expr
	RHS Expr
}

// Return represents a return statement.
type Return struct {
	StmtBase

	// The value being returned.
	Value Expr
}

// CondBranch is a single conditional branch of an If statement.
type CondBranch struct {
	Cond Expr
	Body []Statement
}

// If represents an if/elif/else statement.
type If struct {
	StmtBase

	// The conditional branches in order.
	Branches []CondBranch

	// The else body.  Nil if there is no else branch.
	ElseBody []Statement
}

// While represents a while loop.
type While struct {
	StmtBase

	Cond Expr
	Body []Statement
}
