package lower

import (
	"strconv"

	"rrt/ast"
	"rrt/mir"
	"rrt/report"
	"rrt/syntax"
	"rrt/types"
)

// binaryOpCodes maps arithmetic and logical operator tokens to MIR op codes.
var binaryOpCodes = map[int]int{
	syntax.TOK_PLUS:     mir.OCAdd,
	syntax.TOK_MINUS:    mir.OCSub,
	syntax.TOK_STAR:     mir.OCMul,
	syntax.TOK_DIV:      mir.OCDiv,
	syntax.TOK_FLOORDIV: mir.OCFloorDiv,
	syntax.TOK_MOD:      mir.OCMod,

	syntax.TOK_EQ:   mir.OCEq,
	syntax.TOK_NEQ:  mir.OCNEq,
	syntax.TOK_LT:   mir.OCLt,
	syntax.TOK_LTEQ: mir.OCLtEq,
	syntax.TOK_GT:   mir.OCGt,
	syntax.TOK_GTEQ: mir.OCGtEq,

	syntax.TOK_AND: mir.OCAnd,
	syntax.TOK_OR:  mir.OCOr,
}

func (l *Lowerer) lowerExpr(expr ast.ASTExpr) mir.Expr {
	switch v := expr.(type) {
	case *ast.Literal:
		return l.lowerLiteral(v)
	case *ast.Identifier:
		return &mir.Identifier{Name: v.Name, IdType: types.InnerType(v.Sym.Type)}
	case *ast.BinaryOp:
		return l.lowerBinaryOp(v)
	case *ast.UnaryOp:
		return l.lowerUnaryOp(v)
	case *ast.Call:
		return l.lowerCall(v)
	case *ast.Index:
		return l.lowerIndex(v)
	case *ast.ArrayLit:
		return l.lowerArrayLit(v)
	default:
		report.ReportICE("lowerExpr: unknown expression node")
		return nil
	}
}

func (l *Lowerer) lowerLiteral(lit *ast.Literal) mir.Expr {
	switch lit.Kind {
	case syntax.TOK_INTLIT:
		value, err := strconv.ParseInt(lit.Value, 10, 64)
		if err != nil {
			report.ReportICE("lowerLiteral: unvalidated int literal")
		}

		return &mir.IntLit{Value: value}
	case syntax.TOK_FLOATLIT:
		value, err := strconv.ParseFloat(lit.Value, 64)
		if err != nil {
			report.ReportICE("lowerLiteral: unvalidated float literal")
		}

		return &mir.FloatLit{Value: value}
	case syntax.TOK_BOOLLIT:
		return &mir.BoolLit{Value: lit.Value == "True"}
	case syntax.TOK_STRINGLIT:
		return &mir.StrLit{Value: lit.Value}
	default:
		report.ReportICE("lowerLiteral: unknown literal kind")
		return nil
	}
}

func (l *Lowerer) lowerBinaryOp(bop *ast.BinaryOp) mir.Expr {
	lhs := l.lowerExpr(bop.Lhs)
	rhs := l.lowerExpr(bop.Rhs)

	opCode, ok := binaryOpCodes[bop.Op.Kind]
	if !ok {
		report.ReportICE("lowerBinaryOp: unknown binary operator")
	}

	resultType := types.InnerType(bop.Type())

	switch opCode {
	case mir.OCAdd, mir.OCSub, mir.OCMul:
		// Mixed int/float operands promote to the float result.
		lhs = l.castTo(lhs, resultType)
		rhs = l.castTo(rhs, resultType)
	case mir.OCDiv:
		// True division is always carried out on floats.
		lhs = l.castTo(lhs, types.PrimFloat64)
		rhs = l.castTo(rhs, types.PrimFloat64)
	case mir.OCEq, mir.OCNEq, mir.OCLt, mir.OCLtEq, mir.OCGt, mir.OCGtEq:
		if promoted, ok := types.Promote(lhs.Type(), rhs.Type()); ok {
			lhs = l.castTo(lhs, promoted)
			rhs = l.castTo(rhs, promoted)
		}
	}

	return &mir.BinaryExpr{OpCode: opCode, Lhs: lhs, Rhs: rhs, ResultType: resultType}
}

func (l *Lowerer) lowerUnaryOp(uop *ast.UnaryOp) mir.Expr {
	operand := l.lowerExpr(uop.Operand)

	switch uop.Op.Kind {
	case syntax.TOK_PLUS:
		// Unary plus is the identity.
		return operand
	case syntax.TOK_MINUS:
		return &mir.UnaryExpr{OpCode: mir.OCNeg, Operand: operand, ResultType: operand.Type()}
	case syntax.TOK_NOT:
		return &mir.UnaryExpr{OpCode: mir.OCNot, Operand: operand, ResultType: types.PrimBool}
	default:
		report.ReportICE("lowerUnaryOp: unknown unary operator")
		return nil
	}
}

func (l *Lowerer) lowerCall(call *ast.Call) mir.Expr {
	resultType := types.InnerType(call.Type())

	switch call.Name {
	case "int", "float":
		// Conversion builtins become casts.
		return l.castTo(l.lowerExpr(call.Args[0]), resultType)
	case "abs":
		return &mir.BuiltinCall{
			Builtin:    "abs",
			Args:       []mir.Expr{l.castTo(l.lowerExpr(call.Args[0]), resultType)},
			ResultType: resultType,
		}
	case "min", "max":
		// Fold variadic min/max into nested two-argument calls with all
		// arguments promoted to the result type.
		acc := l.castTo(l.lowerExpr(call.Args[0]), resultType)
		for _, arg := range call.Args[1:] {
			acc = &mir.BuiltinCall{
				Builtin:    call.Name,
				Args:       []mir.Expr{acc, l.castTo(l.lowerExpr(arg), resultType)},
				ResultType: resultType,
			}
		}

		return acc
	case "len", "str":
		return &mir.BuiltinCall{
			Builtin:    call.Name,
			Args:       []mir.Expr{l.lowerExpr(call.Args[0])},
			ResultType: resultType,
		}
	default:
		report.ReportICE("lowerCall: unknown builtin `%s`", call.Name)
		return nil
	}
}

func (l *Lowerer) lowerIndex(idx *ast.Index) *mir.IndexExpr {
	return &mir.IndexExpr{
		Root:     l.lowerExpr(idx.Root),
		Subsc:    l.lowerExpr(idx.Subsc),
		ElemType: types.InnerType(idx.Type()),
	}
}

func (l *Lowerer) lowerArrayLit(lit *ast.ArrayLit) mir.Expr {
	arrType := types.InnerType(lit.Type()).(*types.ArrayType)
	elemType := types.InnerType(arrType.ElemType)

	elems := make([]mir.Expr, len(lit.Elems))
	for i, elem := range lit.Elems {
		elems[i] = l.castTo(l.lowerExpr(elem), elemType)
	}

	return &mir.ArrayLit{
		Elems:   elems,
		ArrType: &types.ArrayType{ElemType: elemType, Len: arrType.Len},
	}
}
