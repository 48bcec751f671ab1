package codegen

import (
	"fmt"
	"strings"

	"rrt/mir"
	"rrt/policy"
	"rrt/report"
	"rrt/types"
	"rrt/util"
)

// CGenerator emits a C99 translation unit: the translated function plus a
// `main` driver that parses argv by parameter type and prints the result.
// Str has no native value-semantic representation in C, so it is an
// unsupported type for this target.
type CGenerator struct {
	division string

	sb     strings.Builder
	indent int
	fn     *mir.FuncDef

	// Variables whose declaring assignment is inside a nested block.  These
	// are hoisted to the top of the function so later uses stay in scope.
	hoisted map[string]bool
}

func (g *CGenerator) Target() string {
	return "c99"
}

func (g *CGenerator) FileName(fn *mir.FuncDef) string {
	return fn.Name + ".c"
}

func (g *CGenerator) Generate(fn *mir.FuncDef) (src string, err error) {
	defer report.CatchErrors(&err)

	g.sb.Reset()
	g.indent = 0
	g.fn = fn

	for _, line := range docLines(fn.Doc) {
		g.writeLn("// %s", line)
	}

	g.writeLn("#include <math.h>")
	g.writeLn("#include <stdbool.h>")
	g.writeLn("#include <stdint.h>")
	g.writeLn("#include <stdio.h>")
	g.writeLn("#include <stdlib.h>")
	g.writeLn("#include <string.h>")
	g.writeLn("")

	if g.division == policy.DivisionFloor && usesIntDivision(fn) {
		g.emitFloorHelpers()
	}

	if usesIndexing(fn) {
		g.emitIndexHelper()
	}

	g.emitFunction()
	g.writeLn("")
	g.emitDriver()

	return g.sb.String(), nil
}

// -----------------------------------------------------------------------------

// emitFloorHelpers emits the flooring division and modulo helpers used when
// the floor division rule is configured.
func (g *CGenerator) emitFloorHelpers() {
	g.writeLn("static int64_t rrt_floordiv(int64_t a, int64_t b) {")
	g.writeLn("    int64_t q = a / b;")
	g.writeLn("    if ((a %% b != 0) && ((a < 0) != (b < 0))) {")
	g.writeLn("        q -= 1;")
	g.writeLn("    }")
	g.writeLn("    return q;")
	g.writeLn("}")
	g.writeLn("")
	g.writeLn("static int64_t rrt_floormod(int64_t a, int64_t b) {")
	g.writeLn("    int64_t m = a %% b;")
	g.writeLn("    if (m != 0 && ((m < 0) != (b < 0))) {")
	g.writeLn("        m += b;")
	g.writeLn("    }")
	g.writeLn("    return m;")
	g.writeLn("}")
	g.writeLn("")
}

// emitIndexHelper emits the bounds check applied to every subscript.  Out of
// range indices fail at runtime the same way they do on the other targets.
func (g *CGenerator) emitIndexHelper() {
	g.writeLn("static int64_t rrt_checkidx(int64_t i, int64_t n) {")
	g.writeLn("    if (i < 0 || i >= n) {")
	g.writeLn(`        fprintf(stderr, "index %%lld out of range for list of length %%lld\n", (long long)i, (long long)n);`)
	g.writeLn("        exit(1);")
	g.writeLn("    }")
	g.writeLn("    return i;")
	g.writeLn("}")
	g.writeLn("")
}

// emitFunction emits the translated function definition.
func (g *CGenerator) emitFunction() {
	params := util.Map(g.fn.Params, func(param *mir.Param) string {
		return fmt.Sprintf("%s %s", g.convType(param.Type), param.Name)
	})
	if len(params) == 0 {
		params = []string{"void"}
	}

	g.writeLn("static %s %s(%s) {", g.convType(g.fn.ReturnType), g.fn.Name, strings.Join(params, ", "))
	g.indent++
	g.hoisted = make(map[string]bool)
	for _, ident := range nestedDecls(g.fn.Body) {
		g.hoisted[ident.Name] = true

		if arrType, ok := ident.IdType.(*types.ArrayType); ok {
			g.writeLn("%s %s[%d] = {0};", g.convType(arrType.ElemType), ident.Name, arrType.Len)
			continue
		}

		g.writeLn("%s %s = %s;", g.convType(ident.IdType), ident.Name, g.zeroValue(ident.IdType))
	}
	g.emitBlock(g.fn.Body)
	g.indent--
	g.writeLn("}")
}

// emitDriver emits the main function parsing argv by parameter type and
// printing the result in the canonical output format.
func (g *CGenerator) emitDriver() {
	g.writeLn("int main(int argc, char **argv) {")
	g.indent++

	g.writeLn("if (argc != %d) {", len(g.fn.Params)+1)
	g.indent++
	g.writeLn(`fprintf(stderr, "expected %d argument(s)\n");`, len(g.fn.Params))
	g.writeLn("return 2;")
	g.indent--
	g.writeLn("}")

	args := make([]string, len(g.fn.Params))
	for i, param := range g.fn.Params {
		args[i] = param.Name

		switch param.Type {
		case types.PrimInt64:
			g.writeLn("int64_t %s = (int64_t)strtoll(argv[%d], NULL, 10);", param.Name, i+1)
		case types.PrimFloat64:
			g.writeLn("double %s = strtod(argv[%d], NULL);", param.Name, i+1)
		case types.PrimBool:
			g.writeLn(`bool %s = strcmp(argv[%d], "true") == 0;`, param.Name, i+1)
		default:
			g.unsupported("parameters of type %s", param.Type.Repr())
		}
	}

	g.writeLn("%s result = %s(%s);", g.convType(g.fn.ReturnType), g.fn.Name, strings.Join(args, ", "))

	switch g.fn.ReturnType {
	case types.PrimInt64:
		g.writeLn(`printf("%%lld\n", (long long)result);`)
	case types.PrimFloat64:
		g.writeLn(`printf("%%.17g\n", result);`)
	case types.PrimBool:
		g.writeLn(`printf("%%s\n", result ? "true" : "false");`)
	default:
		g.unsupported("return values of type %s", g.fn.ReturnType.Repr())
	}

	g.writeLn("return 0;")
	g.indent--
	g.writeLn("}")
}

// -----------------------------------------------------------------------------

func (g *CGenerator) emitBlock(stmts []mir.Statement) {
	for _, stmt := range stmts {
		g.emitStmt(stmt)
	}
}

func (g *CGenerator) emitStmt(stmt mir.Statement) {
	switch v := stmt.(type) {
	case *mir.VarDecl:
		if arrType, ok := v.Ident.IdType.(*types.ArrayType); ok {
			lit := v.Initializer.(*mir.ArrayLit)

			if g.hoisted[v.Ident.Name] {
				g.writeLn("memcpy(%s, (%s[%d])%s, sizeof(%s));",
					v.Ident.Name, g.convType(arrType.ElemType), arrType.Len,
					g.emitArrayLit(lit), v.Ident.Name)
				return
			}

			g.writeLn("%s %s[%d] = %s;",
				g.convType(arrType.ElemType), v.Ident.Name, arrType.Len, g.emitArrayLit(lit))
			return
		}

		if g.hoisted[v.Ident.Name] {
			g.writeLn("%s = %s;", v.Ident.Name, g.emitExpr(v.Initializer))
			return
		}

		g.writeLn("%s %s = %s;", g.convType(v.Ident.IdType), v.Ident.Name, g.emitExpr(v.Initializer))
	case *mir.Assign:
		if arrType, ok := v.LHS.Type().(*types.ArrayType); ok {
			// C arrays are not assignable as wholes: refill in place.
			lit := v.RHS.(*mir.ArrayLit)
			g.writeLn("memcpy(%s, (%s[%d])%s, sizeof(%s));",
				g.emitExpr(v.LHS), g.convType(arrType.ElemType), arrType.Len,
				g.emitArrayLit(lit), g.emitExpr(v.LHS))
			return
		}

		g.writeLn("%s = %s;", g.emitExpr(v.LHS), g.emitExpr(v.RHS))
	case *mir.Return:
		g.writeLn("return %s;", g.emitExpr(v.Value))
	case *mir.If:
		for i, branch := range v.Branches {
			if i == 0 {
				g.writeLn("if (%s) {", g.emitExpr(branch.Cond))
			} else {
				g.writeLn("} else if (%s) {", g.emitExpr(branch.Cond))
			}

			g.indent++
			g.emitBlock(branch.Body)
			g.indent--
		}

		if v.ElseBody != nil {
			g.writeLn("} else {")
			g.indent++
			g.emitBlock(v.ElseBody)
			g.indent--
		}

		g.writeLn("}")
	case *mir.While:
		g.writeLn("while (%s) {", g.emitExpr(v.Cond))
		g.indent++
		g.emitBlock(v.Body)
		g.indent--
		g.writeLn("}")
	default:
		report.ReportICE("c99: unknown MIR statement")
	}
}

// -----------------------------------------------------------------------------

// cBinaryOpers maps MIR op codes to C operators for the operations emitted
// symbolically.
var cBinaryOpers = map[int]string{
	mir.OCAdd: "+",
	mir.OCSub: "-",
	mir.OCMul: "*",
	mir.OCDiv: "/",

	mir.OCEq:   "==",
	mir.OCNEq:  "!=",
	mir.OCLt:   "<",
	mir.OCLtEq: "<=",
	mir.OCGt:   ">",
	mir.OCGtEq: ">=",

	mir.OCAnd: "&&",
	mir.OCOr:  "||",
}

func (g *CGenerator) emitExpr(expr mir.Expr) string {
	switch v := expr.(type) {
	case *mir.IntLit:
		return formatIntLit(v.Value) + "LL"
	case *mir.FloatLit:
		return formatFloatLit(v.Value)
	case *mir.BoolLit:
		if v.Value {
			return "true"
		}
		return "false"
	case *mir.StrLit:
		g.unsupported("str values")
		return ""
	case *mir.Identifier:
		return v.Name
	case *mir.BinaryExpr:
		return g.emitBinaryExpr(v)
	case *mir.UnaryExpr:
		if v.OpCode == mir.OCNot {
			return fmt.Sprintf("(!%s)", g.emitExpr(v.Operand))
		}
		return fmt.Sprintf("(-%s)", g.emitExpr(v.Operand))
	case *mir.CastExpr:
		return fmt.Sprintf("((%s)%s)", g.convType(v.DestType), g.emitExpr(v.Src))
	case *mir.BuiltinCall:
		return g.emitBuiltinCall(v)
	case *mir.IndexExpr:
		arrType := v.Root.Type().(*types.ArrayType)
		return fmt.Sprintf("%s[rrt_checkidx(%s, %d)]",
			g.emitExpr(v.Root), g.emitExpr(v.Subsc), arrType.Len)
	case *mir.ArrayLit:
		// Array literals only occur as initializers and refills, which are
		// emitted at the statement level.
		report.ReportICE("c99: array literal outside an initializer")
		return ""
	default:
		report.ReportICE("c99: unknown MIR expression")
		return ""
	}
}

func (g *CGenerator) emitBinaryExpr(be *mir.BinaryExpr) string {
	lhs, rhs := g.emitExpr(be.Lhs), g.emitExpr(be.Rhs)

	switch be.OpCode {
	case mir.OCFloorDiv:
		if g.division == policy.DivisionFloor {
			return fmt.Sprintf("rrt_floordiv(%s, %s)", lhs, rhs)
		}
		return fmt.Sprintf("(%s / %s)", lhs, rhs)
	case mir.OCMod:
		if g.division == policy.DivisionFloor {
			return fmt.Sprintf("rrt_floormod(%s, %s)", lhs, rhs)
		}
		return fmt.Sprintf("(%s %% %s)", lhs, rhs)
	}

	oper, ok := cBinaryOpers[be.OpCode]
	if !ok {
		report.ReportICE("c99: unknown binary op code")
	}

	return fmt.Sprintf("(%s %s %s)", lhs, oper, rhs)
}

func (g *CGenerator) emitBuiltinCall(bc *mir.BuiltinCall) string {
	switch bc.Builtin {
	case "abs":
		arg := g.emitExpr(bc.Args[0])
		if types.IsPrim(bc.ResultType, types.PrimFloat64) {
			return fmt.Sprintf("fabs(%s)", arg)
		}
		return fmt.Sprintf("(%s < 0 ? -%s : %s)", arg, arg, arg)
	case "min", "max":
		lhs, rhs := g.emitExpr(bc.Args[0]), g.emitExpr(bc.Args[1])

		if types.IsPrim(bc.ResultType, types.PrimFloat64) {
			if bc.Builtin == "min" {
				return fmt.Sprintf("fmin(%s, %s)", lhs, rhs)
			}
			return fmt.Sprintf("fmax(%s, %s)", lhs, rhs)
		}

		oper := "<"
		if bc.Builtin == "max" {
			oper = ">"
		}
		return fmt.Sprintf("(%s %s %s ? %s : %s)", lhs, oper, rhs, lhs, rhs)
	case "len":
		// Array shapes are fixed at translation time.
		if arrType, ok := bc.Args[0].Type().(*types.ArrayType); ok {
			return fmt.Sprintf("%dLL", arrType.Len)
		}

		g.unsupported("`len` of str values")
		return ""
	case "str":
		g.unsupported("the `str` builtin")
		return ""
	default:
		report.ReportICE("c99: unknown builtin `%s`", bc.Builtin)
		return ""
	}
}

// -----------------------------------------------------------------------------

// convType converts a MIR type to its C representation.
func (g *CGenerator) convType(typ types.Type) string {
	switch v := typ.(type) {
	case types.PrimitiveType:
		switch v {
		case types.PrimInt64:
			return "int64_t"
		case types.PrimFloat64:
			return "double"
		case types.PrimBool:
			return "bool"
		default:
			g.unsupported("str values")
			return ""
		}
	default:
		report.ReportICE("c99: convType called on a non-scalar type")
		return ""
	}
}

// zeroValue returns the C zero value for a scalar type.
func (g *CGenerator) zeroValue(typ types.Type) string {
	switch typ {
	case types.PrimInt64:
		return "0"
	case types.PrimFloat64:
		return "0.0"
	case types.PrimBool:
		return "false"
	default:
		g.unsupported("str values")
		return ""
	}
}

// emitArrayLit renders an array literal as a C initializer list.
func (g *CGenerator) emitArrayLit(lit *mir.ArrayLit) string {
	return fmt.Sprintf("{%s}", strings.Join(util.Map(lit.Elems, g.emitExpr), ", "))
}

// -----------------------------------------------------------------------------

func (g *CGenerator) writeLn(text string, args ...interface{}) {
	for i := 0; i < g.indent; i++ {
		g.sb.WriteString("    ")
	}

	fmt.Fprintf(&g.sb, text, args...)
	g.sb.WriteRune('\n')
}

// unsupported raises an unsupported type error for this target.
func (g *CGenerator) unsupported(msg string, args ...interface{}) {
	panic(report.Raise(report.UnsupportedType, g.fn.Span,
		"the c99 target does not support "+msg, args...))
}
