package ast

import (
	"rrt/common"
	"rrt/types"
)

// FuncParam is a single declared parameter of a function definition.
type FuncParam struct {
	// The name of the parameter.
	Name string

	// The declared type annotation.  Nil if the parameter is unannotated.
	TypeAnn types.Type

	// The symbol created for the parameter.  Assigned by the resolver.
	Sym *common.Symbol
}

// FuncDef represents a function definition: the unit of translation.
type FuncDef struct {
	ASTBase

	// The name of the function.
	Name string

	// The docstring of the function.  Empty if there is none.
	Doc string

	// The ordered parameter list.
	Params []*FuncParam

	// The declared return type annotation.  Nil if unannotated.
	ReturnAnn types.Type

	// The resolved return type.  Assigned by the resolver.
	ReturnType types.Type

	// The ordered statements of the function body.
	Body []ASTStmt
}
