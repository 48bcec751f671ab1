package ast

// ASTStmt represents a statement.  Statement order within a block is
// semantically significant.
type ASTStmt interface {
	ASTNode
}

// Assign represents an assignment statement.  The target is either an
// Identifier or an Index expression.
type Assign struct {
	ASTBase

	Target ASTExpr
	Value  ASTExpr

	// Whether this assignment is the first assignment of its variable and
	// therefore declares it.  Set by the resolver.
	IsDecl bool
}

// ReturnStmt represents a return statement.  Value is nil for a bare return.
type ReturnStmt struct {
	ASTBase

	Value ASTExpr
}

// CondBranch is a single conditional branch of an if statement.
type CondBranch struct {
	Cond ASTExpr
	Body []ASTStmt
}

// IfStmt represents an if/elif/else statement.
type IfStmt struct {
	ASTBase

	// The if and elif branches in order.
	Branches []CondBranch

	// The else body.  Nil if there is no else branch.
	ElseBody []ASTStmt
}

// WhileStmt represents a while loop.
type WhileStmt struct {
	ASTBase

	Cond ASTExpr
	Body []ASTStmt
}

// ExprStmt represents a builtin call evaluated for its own sake.
type ExprStmt struct {
	ASTBase

	Call *Call
}

// PassStmt represents a `pass` statement.
type PassStmt struct {
	ASTBase
}
