package codegen

import (
	"fmt"
	"strconv"
	"strings"

	"rrt/mir"
	"rrt/policy"
)

// Generator produces target source for one MIR function.  Generation is
// deterministic: identical MIR and policy yield byte-identical output.  A
// type the target cannot represent is an UnsupportedType error, never an
// approximation.
type Generator interface {
	// Target returns the name of the target language.
	Target() string

	// FileName returns the artifact file name for the given function.
	FileName(fn *mir.FuncDef) string

	// Generate produces the complete target source for the given function,
	// including a driver entry point where the target has one.
	Generate(fn *mir.FuncDef) (string, error)
}

// New returns the generator for the named target.
func New(target string, pol *policy.Policy) (Generator, error) {
	switch target {
	case "c99":
		return &CGenerator{division: pol.Division}, nil
	case "java":
		return &JavaGenerator{division: pol.Division}, nil
	case "llvm":
		return &LLVMGenerator{division: pol.Division}, nil
	default:
		return nil, fmt.Errorf("unknown target `%s`", target)
	}
}

// Targets returns the names of all known targets in emission order.
func Targets() []string {
	return []string{"c99", "java", "llvm"}
}

/* -------------------------------------------------------------------------- */

// formatIntLit formats an integer literal without a target suffix.
func formatIntLit(value int64) string {
	return strconv.FormatInt(value, 10)
}

// formatFloatLit formats a float literal so that it reads back to exactly the
// same value and is syntactically a float in both C and Java.
func formatFloatLit(value float64) string {
	s := strconv.FormatFloat(value, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}

	return s
}

// escapeStringLit escapes a decoded string value for emission inside double
// quotes.  The same escaping is valid in C and Java source.
func escapeStringLit(value string) string {
	var sb strings.Builder
	for _, c := range value {
		switch c {
		case '\\':
			sb.WriteString(`\\`)
		case '"':
			sb.WriteString(`\"`)
		case '\n':
			sb.WriteString(`\n`)
		case '\t':
			sb.WriteString(`\t`)
		case '\r':
			sb.WriteString(`\r`)
		case 0:
			sb.WriteString(`\0`)
		default:
			sb.WriteRune(c)
		}
	}

	return sb.String()
}

// docLines splits a docstring into trimmed lines for re-emission as target
// comments.  Empty leading and trailing lines are dropped.
func docLines(doc string) []string {
	if doc == "" {
		return nil
	}

	lines := strings.Split(doc, "\n")
	for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}

	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}

	return lines
}

// usesIntDivision reports whether the function applies `//` or `%` anywhere.
// Generators use it to decide whether floor-division helpers are needed.
func usesIntDivision(fn *mir.FuncDef) bool {
	found := false
	walkStatements(fn.Body, func(expr mir.Expr) {
		if be, ok := expr.(*mir.BinaryExpr); ok {
			if be.OpCode == mir.OCFloorDiv || be.OpCode == mir.OCMod {
				found = true
			}
		}
	})

	return found
}

// usesIndexing reports whether the function subscripts a list anywhere.
func usesIndexing(fn *mir.FuncDef) bool {
	found := false
	walkStatements(fn.Body, func(expr mir.Expr) {
		if _, ok := expr.(*mir.IndexExpr); ok {
			found = true
		}
	})

	return found
}

// nestedDecls returns the variables whose declaring assignment sits inside a
// nested block.  The source language scopes variables to the whole function,
// so targets with block scoping hoist these declarations to the top of the
// function with a zero initializer.
func nestedDecls(stmts []mir.Statement) []*mir.Identifier {
	var idents []*mir.Identifier

	var walk func(stmts []mir.Statement, depth int)
	walk = func(stmts []mir.Statement, depth int) {
		for _, stmt := range stmts {
			switch v := stmt.(type) {
			case *mir.VarDecl:
				if depth > 0 {
					idents = append(idents, v.Ident)
				}
			case *mir.If:
				for _, branch := range v.Branches {
					walk(branch.Body, depth+1)
				}
				walk(v.ElseBody, depth+1)
			case *mir.While:
				walk(v.Body, depth+1)
			}
		}
	}
	walk(stmts, 0)

	return idents
}

// allDecls returns every variable declared in the statement list, in
// declaration order.
func allDecls(stmts []mir.Statement) []*mir.Identifier {
	var idents []*mir.Identifier

	var walk func(stmts []mir.Statement)
	walk = func(stmts []mir.Statement) {
		for _, stmt := range stmts {
			switch v := stmt.(type) {
			case *mir.VarDecl:
				idents = append(idents, v.Ident)
			case *mir.If:
				for _, branch := range v.Branches {
					walk(branch.Body)
				}
				walk(v.ElseBody)
			case *mir.While:
				walk(v.Body)
			}
		}
	}
	walk(stmts)

	return idents
}

// walkStatements applies visit to every expression in the statement list.
func walkStatements(stmts []mir.Statement, visit func(mir.Expr)) {
	for _, stmt := range stmts {
		switch v := stmt.(type) {
		case *mir.VarDecl:
			walkExpr(v.Initializer, visit)
		case *mir.Assign:
			walkExpr(v.LHS, visit)
			walkExpr(v.RHS, visit)
		case *mir.Return:
			walkExpr(v.Value, visit)
		case *mir.If:
			for _, branch := range v.Branches {
				walkExpr(branch.Cond, visit)
				walkStatements(branch.Body, visit)
			}
			walkStatements(v.ElseBody, visit)
		case *mir.While:
			walkExpr(v.Cond, visit)
			walkStatements(v.Body, visit)
		}
	}
}

// walkExpr applies visit to expr and every subexpression of it.
func walkExpr(expr mir.Expr, visit func(mir.Expr)) {
	visit(expr)

	switch v := expr.(type) {
	case *mir.BinaryExpr:
		walkExpr(v.Lhs, visit)
		walkExpr(v.Rhs, visit)
	case *mir.UnaryExpr:
		walkExpr(v.Operand, visit)
	case *mir.CastExpr:
		walkExpr(v.Src, visit)
	case *mir.BuiltinCall:
		for _, arg := range v.Args {
			walkExpr(arg, visit)
		}
	case *mir.IndexExpr:
		walkExpr(v.Root, visit)
		walkExpr(v.Subsc, visit)
	case *mir.ArrayLit:
		for _, elem := range v.Elems {
			walkExpr(elem, visit)
		}
	}
}
