package mir

import (
	"rrt/report"
	"rrt/types"
)

// FuncDef represents a fully typed function ready for code generation.  Every
// node carries exactly one concrete type and every implicit promotion of the
// source has been reified as an explicit cast.
type FuncDef struct {
	// The name of the function.
	Name string

	// The docstring of the function.  Empty if there is none.
	Doc string

	// The ordered parameters of the function.
	Params []*Param

	// The return type of the function.
	ReturnType types.Type

	// The body of the function.
	Body []Statement

	// The text span of the function definition.
	Span *report.TextSpan
}

// Param is a single function parameter.
type Param struct {
	Name string
	Type types.Type
}
