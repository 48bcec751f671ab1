package common

import "rrt/types"

// Symbol represents a named value: a function parameter or a local variable.
type Symbol struct {
	// The name of the symbol.
	Name string

	// The type of the value stored in the symbol.  For unannotated parameters
	// this is an untyped value until the resolver finalizes its binding.
	Type types.Type
}
