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

// JavaGenerator emits a single Java compilation unit: a wrapper class named
// after the function holding the translated static method and a `main`
// driver.
type JavaGenerator struct {
	division string

	sb     strings.Builder
	indent int
	fn     *mir.FuncDef

	// Variables whose declaring assignment is inside a nested block.  These
	// are hoisted to the top of the method so later uses stay in scope and
	// definite assignment holds.
	hoisted map[string]bool
}

func (g *JavaGenerator) Target() string {
	return "java"
}

func (g *JavaGenerator) FileName(fn *mir.FuncDef) string {
	return className(fn.Name) + ".java"
}

// className converts a snake_case function name to the CamelCase name of its
// wrapper class.
func className(name string) string {
	var sb strings.Builder

	upper := true
	for _, c := range name {
		if c == '_' {
			upper = true
			continue
		}

		if upper {
			sb.WriteString(strings.ToUpper(string(c)))
			upper = false
		} else {
			sb.WriteRune(c)
		}
	}

	return sb.String()
}

func (g *JavaGenerator) Generate(fn *mir.FuncDef) (src string, err error) {
	defer report.CatchErrors(&err)

	g.sb.Reset()
	g.indent = 0
	g.fn = fn

	g.writeLn("public final class %s {", className(fn.Name))
	g.indent++

	if lines := docLines(fn.Doc); len(lines) > 0 {
		g.writeLn("/**")
		for _, line := range lines {
			g.writeLn(" * %s", line)
		}
		g.writeLn(" */")
	}

	g.emitMethod()
	g.writeLn("")
	g.emitDriver()

	g.indent--
	g.writeLn("}")

	return g.sb.String(), nil
}

// -----------------------------------------------------------------------------

// emitMethod emits the translated static method.
func (g *JavaGenerator) emitMethod() {
	params := util.Map(g.fn.Params, func(param *mir.Param) string {
		return fmt.Sprintf("%s %s", g.convType(param.Type), param.Name)
	})

	g.writeLn("public static %s %s(%s) {", g.convType(g.fn.ReturnType), g.fn.Name, strings.Join(params, ", "))
	g.indent++
	g.hoisted = make(map[string]bool)
	for _, ident := range nestedDecls(g.fn.Body) {
		g.hoisted[ident.Name] = true

		// Hoisted lists start zero filled, matching the other targets.
		if arrType, ok := ident.IdType.(*types.ArrayType); ok {
			g.writeLn("%s[] %s = new %s[%d];", g.convType(arrType.ElemType), ident.Name,
				g.convType(arrType.ElemType), arrType.Len)
			continue
		}

		g.writeLn("%s %s = %s;", g.convType(ident.IdType), ident.Name, g.zeroValue(ident.IdType))
	}
	g.emitBlock(g.fn.Body)
	g.indent--
	g.writeLn("}")
}

// emitDriver emits the main method parsing args by parameter type and
// printing the result.
func (g *JavaGenerator) emitDriver() {
	g.writeLn("public static void main(String[] args) {")
	g.indent++

	g.writeLn("if (args.length != %d) {", len(g.fn.Params))
	g.indent++
	g.writeLn(`System.err.println("expected %d argument(s)");`, len(g.fn.Params))
	g.writeLn("System.exit(2);")
	g.indent--
	g.writeLn("}")

	callArgs := make([]string, len(g.fn.Params))
	for i, param := range g.fn.Params {
		callArgs[i] = param.Name

		switch param.Type {
		case types.PrimInt64:
			g.writeLn("long %s = Long.parseLong(args[%d]);", param.Name, i)
		case types.PrimFloat64:
			g.writeLn("double %s = Double.parseDouble(args[%d]);", param.Name, i)
		case types.PrimBool:
			g.writeLn("boolean %s = Boolean.parseBoolean(args[%d]);", param.Name, i)
		case types.PrimStr:
			g.writeLn("String %s = args[%d];", param.Name, i)
		default:
			g.unsupported("parameters of type %s", param.Type.Repr())
		}
	}

	g.writeLn("System.out.println(%s(%s));", g.fn.Name, strings.Join(callArgs, ", "))
	g.indent--
	g.writeLn("}")
}

// -----------------------------------------------------------------------------

func (g *JavaGenerator) emitBlock(stmts []mir.Statement) {
	for _, stmt := range stmts {
		g.emitStmt(stmt)
	}
}

func (g *JavaGenerator) emitStmt(stmt mir.Statement) {
	switch v := stmt.(type) {
	case *mir.VarDecl:
		if g.hoisted[v.Ident.Name] {
			g.writeLn("%s = %s;", v.Ident.Name, g.emitExpr(v.Initializer))
			return
		}

		g.writeLn("%s %s = %s;", g.convType(v.Ident.IdType), v.Ident.Name, g.emitExpr(v.Initializer))
	case *mir.Assign:
		if _, ok := v.LHS.Type().(*types.ArrayType); ok {
			if lit, ok := v.RHS.(*mir.ArrayLit); ok {
				g.writeLn("%s = new %s%s;", g.emitExpr(v.LHS),
					g.convType(lit.ArrType), g.emitArrayLit(lit))
				return
			}
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
		report.ReportICE("java: unknown MIR statement")
	}
}

// -----------------------------------------------------------------------------

// javaBinaryOpers maps MIR op codes to Java operators for operations emitted
// symbolically.
var javaBinaryOpers = map[int]string{
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

func (g *JavaGenerator) emitExpr(expr mir.Expr) string {
	switch v := expr.(type) {
	case *mir.IntLit:
		return formatIntLit(v.Value) + "L"
	case *mir.FloatLit:
		return formatFloatLit(v.Value)
	case *mir.BoolLit:
		if v.Value {
			return "true"
		}
		return "false"
	case *mir.StrLit:
		return fmt.Sprintf("\"%s\"", escapeStringLit(v.Value))
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
		return fmt.Sprintf("%s[(int)%s]", g.emitExpr(v.Root), g.emitExpr(v.Subsc))
	case *mir.ArrayLit:
		return fmt.Sprintf("new %s%s", g.convType(v.ArrType), g.emitArrayLit(v))
	default:
		report.ReportICE("java: unknown MIR expression")
		return ""
	}
}

func (g *JavaGenerator) emitBinaryExpr(be *mir.BinaryExpr) string {
	lhs, rhs := g.emitExpr(be.Lhs), g.emitExpr(be.Rhs)

	// Str equality and ordering go through the String methods.
	if types.IsPrim(be.Lhs.Type(), types.PrimStr) {
		switch be.OpCode {
		case mir.OCEq:
			return fmt.Sprintf("%s.equals(%s)", lhs, rhs)
		case mir.OCNEq:
			return fmt.Sprintf("(!%s.equals(%s))", lhs, rhs)
		case mir.OCLt:
			return fmt.Sprintf("(%s.compareTo(%s) < 0)", lhs, rhs)
		case mir.OCLtEq:
			return fmt.Sprintf("(%s.compareTo(%s) <= 0)", lhs, rhs)
		case mir.OCGt:
			return fmt.Sprintf("(%s.compareTo(%s) > 0)", lhs, rhs)
		case mir.OCGtEq:
			return fmt.Sprintf("(%s.compareTo(%s) >= 0)", lhs, rhs)
		}
	}

	switch be.OpCode {
	case mir.OCFloorDiv:
		if g.division == policy.DivisionFloor {
			return fmt.Sprintf("Math.floorDiv(%s, %s)", lhs, rhs)
		}
		return fmt.Sprintf("(%s / %s)", lhs, rhs)
	case mir.OCMod:
		if g.division == policy.DivisionFloor {
			return fmt.Sprintf("Math.floorMod(%s, %s)", lhs, rhs)
		}
		return fmt.Sprintf("(%s %% %s)", lhs, rhs)
	}

	oper, ok := javaBinaryOpers[be.OpCode]
	if !ok {
		report.ReportICE("java: unknown binary op code")
	}

	return fmt.Sprintf("(%s %s %s)", lhs, oper, rhs)
}

func (g *JavaGenerator) emitBuiltinCall(bc *mir.BuiltinCall) string {
	switch bc.Builtin {
	case "abs":
		return fmt.Sprintf("Math.abs(%s)", g.emitExpr(bc.Args[0]))
	case "min":
		return fmt.Sprintf("Math.min(%s, %s)", g.emitExpr(bc.Args[0]), g.emitExpr(bc.Args[1]))
	case "max":
		return fmt.Sprintf("Math.max(%s, %s)", g.emitExpr(bc.Args[0]), g.emitExpr(bc.Args[1]))
	case "len":
		if arrType, ok := bc.Args[0].Type().(*types.ArrayType); ok {
			// Array shapes are fixed at translation time.
			return fmt.Sprintf("%dL", arrType.Len)
		}

		return fmt.Sprintf("(long)%s.length()", g.emitExpr(bc.Args[0]))
	case "str":
		return fmt.Sprintf("String.valueOf(%s)", g.emitExpr(bc.Args[0]))
	default:
		report.ReportICE("java: unknown builtin `%s`", bc.Builtin)
		return ""
	}
}

// -----------------------------------------------------------------------------

// convType converts a MIR type to its Java representation.
func (g *JavaGenerator) convType(typ types.Type) string {
	switch v := typ.(type) {
	case types.PrimitiveType:
		switch v {
		case types.PrimInt64:
			return "long"
		case types.PrimFloat64:
			return "double"
		case types.PrimBool:
			return "boolean"
		default:
			return "String"
		}
	case *types.ArrayType:
		return g.convType(v.ElemType) + "[]"
	default:
		report.ReportICE("java: convType called on an unknown type")
		return ""
	}
}

// zeroValue returns the Java zero value for a type.
func (g *JavaGenerator) zeroValue(typ types.Type) string {
	switch typ {
	case types.PrimInt64:
		return "0L"
	case types.PrimFloat64:
		return "0.0"
	case types.PrimBool:
		return "false"
	case types.PrimStr:
		return `""`
	default:
		return "null"
	}
}

// emitArrayLit renders an array literal as a Java initializer list.
func (g *JavaGenerator) emitArrayLit(lit *mir.ArrayLit) string {
	return fmt.Sprintf("{%s}", strings.Join(util.Map(lit.Elems, g.emitExpr), ", "))
}

// -----------------------------------------------------------------------------

func (g *JavaGenerator) writeLn(text string, args ...interface{}) {
	for i := 0; i < g.indent; i++ {
		g.sb.WriteString("    ")
	}

	fmt.Fprintf(&g.sb, text, args...)
	g.sb.WriteRune('\n')
}

// unsupported raises an unsupported type error for this target.
func (g *JavaGenerator) unsupported(msg string, args ...interface{}) {
	panic(report.Raise(report.UnsupportedType, g.fn.Span,
		"the java target does not support "+msg, args...))
}
