package walk

import (
	"strconv"

	"rrt/ast"
	"rrt/report"
	"rrt/syntax"
	"rrt/types"
)

// walkExpr walks an expression, assigning a type to it and every
// subexpression.
func (w *Walker) walkExpr(expr ast.ASTExpr) {
	switch v := expr.(type) {
	case *ast.Literal:
		w.walkLiteral(v)
	case *ast.Identifier:
		sym := w.lookup(v.Name, v.Span())
		v.Sym = sym
		v.SetType(sym.Type)
	case *ast.BinaryOp:
		w.walkBinaryOp(v)
	case *ast.UnaryOp:
		w.walkUnaryOp(v)
	case *ast.Call:
		w.walkCall(v)
	case *ast.Index:
		w.walkIndex(v)
	case *ast.ArrayLit:
		w.walkArrayLit(v)
	default:
		report.ReportICE("walkExpr: unknown expression node")
	}
}

// walkLiteral assigns a type to a literal and validates its value range.
func (w *Walker) walkLiteral(lit *ast.Literal) {
	switch lit.Kind {
	case syntax.TOK_INTLIT:
		if _, err := strconv.ParseInt(lit.Value, 10, 64); err != nil {
			w.error(report.UnsupportedConstruct, lit.Span(),
				"integer literal out of 64-bit range: %s", lit.Value)
		}

		lit.SetType(types.PrimInt64)
	case syntax.TOK_FLOATLIT:
		if _, err := strconv.ParseFloat(lit.Value, 64); err != nil {
			w.error(report.UnsupportedConstruct, lit.Span(),
				"malformed float literal: %s", lit.Value)
		}

		lit.SetType(types.PrimFloat64)
	case syntax.TOK_BOOLLIT:
		lit.SetType(types.PrimBool)
	case syntax.TOK_STRINGLIT:
		lit.SetType(types.PrimStr)
	default:
		report.ReportICE("walkLiteral: unknown literal kind")
	}
}

// -----------------------------------------------------------------------------

// walkBinaryOp type checks a binary operator application.
func (w *Walker) walkBinaryOp(bop *ast.BinaryOp) {
	w.walkExpr(bop.Lhs)
	w.walkExpr(bop.Rhs)

	span := bop.Op.Span
	lt, rt := bop.Lhs.Type(), bop.Rhs.Type()

	switch bop.Op.Kind {
	case syntax.TOK_PLUS:
		bop.SetType(w.checkAdd(lt, rt, span))
	case syntax.TOK_MINUS, syntax.TOK_STAR:
		bop.SetType(w.checkArith(bop.Op.Name, lt, rt, span))
	case syntax.TOK_DIV:
		// True division always yields a float.
		w.markFloatOperand(bop.Lhs)
		w.markFloatOperand(bop.Rhs)
		bop.SetType(types.PrimFloat64)
	case syntax.TOK_FLOORDIV, syntax.TOK_MOD:
		w.requireInt(bop.Op.Name, bop.Lhs)
		w.requireInt(bop.Op.Name, bop.Rhs)
		bop.SetType(types.PrimInt64)
	case syntax.TOK_EQ, syntax.TOK_NEQ:
		w.checkCompare(bop.Op.Name, lt, rt, span, false)
		bop.SetType(types.PrimBool)
	case syntax.TOK_LT, syntax.TOK_LTEQ, syntax.TOK_GT, syntax.TOK_GTEQ:
		w.checkCompare(bop.Op.Name, lt, rt, span, true)
		bop.SetType(types.PrimBool)
	case syntax.TOK_AND, syntax.TOK_OR:
		w.requireBool(bop.Op.Name, bop.Lhs)
		w.requireBool(bop.Op.Name, bop.Rhs)
		bop.SetType(types.PrimBool)
	default:
		report.ReportICE("walkBinaryOp: unknown binary operator")
	}
}

// walkUnaryOp type checks a unary operator application.
func (w *Walker) walkUnaryOp(uop *ast.UnaryOp) {
	w.walkExpr(uop.Operand)

	switch uop.Op.Kind {
	case syntax.TOK_MINUS, syntax.TOK_PLUS:
		w.markNumericOperand(uop.Operand)
		uop.SetType(uop.Operand.Type())
	case syntax.TOK_NOT:
		w.requireBool(uop.Op.Name, uop.Operand)
		uop.SetType(types.PrimBool)
	default:
		report.ReportICE("walkUnaryOp: unknown unary operator")
	}
}

// checkAdd type checks a `+` application: string concatenation or numeric
// addition.
func (w *Walker) checkAdd(lt, rt types.Type, span *report.TextSpan) types.Type {
	lu, lUnbound := asUnbound(lt)
	ru, rUnbound := asUnbound(rt)

	lStr := !lUnbound && types.IsPrim(lt, types.PrimStr)
	rStr := !rUnbound && types.IsPrim(rt, types.PrimStr)

	if lStr || rStr {
		switch {
		case lStr && rStr:
		case lUnbound:
			w.check(lu.BindExact(types.PrimStr), span)
		case rUnbound:
			w.check(ru.BindExact(types.PrimStr), span)
		default:
			w.error(report.TypeConflict, span,
				"operator `+` cannot be applied to %s and %s", lt.Repr(), rt.Repr())
		}

		return types.PrimStr
	}

	return w.checkArith("+", lt, rt, span)
}

// checkArith type checks a numeric binary operation and computes its result
// type.
func (w *Walker) checkArith(opName string, lt, rt types.Type, span *report.TextSpan) types.Type {
	lu, lUnbound := asUnbound(lt)
	ru, rUnbound := asUnbound(rt)

	switch {
	case lUnbound && rUnbound:
		w.check(lu.MergeWith(ru), span)
		w.check(lu.MarkNumeric(), span)
		return lt
	case lUnbound:
		return w.arithWithUnbound(opName, lu, lt, rt, span)
	case rUnbound:
		return w.arithWithUnbound(opName, ru, rt, lt, span)
	default:
		if promoted, ok := types.Promote(lt, rt); ok {
			return promoted
		}

		w.error(report.TypeConflict, span,
			"operator `%s` cannot be applied to %s and %s", opName, lt.Repr(), rt.Repr())
		return nil
	}
}

// arithWithUnbound handles a numeric operation between the unbound value u
// (whose expression type is uTyp) and a value of the concrete type other.
func (w *Walker) arithWithUnbound(opName string, u *types.Untyped, uTyp, other types.Type, span *report.TextSpan) types.Type {
	if !types.IsNumeric(other) {
		w.error(report.TypeConflict, span,
			"operator `%s` cannot be applied to %s operands", opName, other.Repr())
	}

	if types.IsPrim(other, types.PrimFloat64) {
		w.check(u.MarkFloat(), span)
		return types.PrimFloat64
	}

	w.check(u.MarkNumeric(), span)

	// The result tracks the open operand: later float evidence floats it.
	return uTyp
}

// checkCompare type checks a comparison.  Ordering comparisons accept numeric
// and str operands; equality additionally accepts bool.
func (w *Walker) checkCompare(opName string, lt, rt types.Type, span *report.TextSpan, ordering bool) {
	lu, lUnbound := asUnbound(lt)
	ru, rUnbound := asUnbound(rt)

	switch {
	case lUnbound && rUnbound:
		w.check(lu.MergeWith(ru), span)
	case lUnbound:
		w.compareWithUnbound(opName, lu, rt, span, ordering)
	case rUnbound:
		w.compareWithUnbound(opName, ru, lt, span, ordering)
	default:
		if types.IsNumeric(lt) && types.IsNumeric(rt) {
			return
		}

		if types.Equals(lt, rt) {
			if types.IsPrim(lt, types.PrimStr) {
				return
			}

			if types.IsPrim(lt, types.PrimBool) && !ordering {
				return
			}
		}

		w.error(report.TypeConflict, span,
			"operator `%s` cannot be applied to %s and %s", opName, lt.Repr(), rt.Repr())
	}
}

// compareWithUnbound records comparison evidence between the unbound value u
// and a value of the concrete type other.
func (w *Walker) compareWithUnbound(opName string, u *types.Untyped, other types.Type, span *report.TextSpan, ordering bool) {
	switch {
	case types.IsPrim(other, types.PrimInt64):
		w.check(u.MarkNumeric(), span)
	case types.IsPrim(other, types.PrimFloat64):
		w.check(u.MarkFloat(), span)
	case types.IsPrim(other, types.PrimStr):
		w.check(u.BindExact(types.PrimStr), span)
	case types.IsPrim(other, types.PrimBool) && !ordering:
		w.check(u.BindExact(types.PrimBool), span)
	default:
		w.error(report.TypeConflict, span,
			"operator `%s` cannot be applied to %s operands", opName, other.Repr())
	}
}

// -----------------------------------------------------------------------------

// walkCall type checks a call to one of the whitelisted builtins.
func (w *Walker) walkCall(call *ast.Call) {
	for _, arg := range call.Args {
		w.walkExpr(arg)
	}

	switch call.Name {
	case "abs":
		w.expectArgs(call, 1)
		w.markNumericOperand(call.Args[0])
		call.SetType(call.Args[0].Type())
	case "min", "max":
		if len(call.Args) < 2 {
			w.error(report.UnsupportedConstruct, call.Span(),
				"`%s` expects at least 2 arguments", call.Name)
		}

		result := call.Args[0].Type()
		w.markNumericOperand(call.Args[0])
		for _, arg := range call.Args[1:] {
			w.markNumericOperand(arg)
			result = w.checkArith(call.Name, result, arg.Type(), arg.Span())
		}

		call.SetType(result)
	case "int":
		w.expectArgs(call, 1)
		w.markNumericOperand(call.Args[0])
		call.SetType(types.PrimInt64)
	case "float":
		w.expectArgs(call, 1)
		w.markNumericOperand(call.Args[0])
		call.SetType(types.PrimFloat64)
	case "len":
		w.expectArgs(call, 1)
		w.checkLenArg(call.Args[0])
		call.SetType(types.PrimInt64)
	case "str":
		w.expectArgs(call, 1)

		if _, ok := types.InnerType(argTypeOrDefault(call.Args[0])).(*types.ArrayType); ok {
			w.error(report.UnsupportedConstruct, call.Args[0].Span(),
				"`str` of a list is not supported")
		}

		call.SetType(types.PrimStr)
	default:
		w.error(report.UnsupportedConstruct, call.NameSpan,
			"`%s` is not a supported builtin", call.Name)
	}
}

// argTypeOrDefault returns the argument's type, substituting int for a still
// open operand so it can be inspected without forcing a binding.
func argTypeOrDefault(arg ast.ASTExpr) types.Type {
	if _, unbound := asUnbound(arg.Type()); unbound {
		return types.PrimInt64
	}

	return arg.Type()
}

// expectArgs checks the arity of a builtin call.
func (w *Walker) expectArgs(call *ast.Call, count int) {
	if len(call.Args) != count {
		w.error(report.UnsupportedConstruct, call.Span(),
			"`%s` expects %d argument(s) not %d", call.Name, count, len(call.Args))
	}
}

// checkLenArg checks the operand of `len`: a str or list value.
func (w *Walker) checkLenArg(arg ast.ASTExpr) {
	if u, unbound := asUnbound(arg.Type()); unbound {
		w.check(u.BindExact(types.PrimStr), arg.Span())
		return
	}

	switch types.InnerType(arg.Type()).(type) {
	case *types.ArrayType:
	case types.PrimitiveType:
		if !types.IsPrim(arg.Type(), types.PrimStr) {
			w.error(report.TypeConflict, arg.Span(),
				"`len` cannot be applied to %s", arg.Type().Repr())
		}
	}
}

// -----------------------------------------------------------------------------

// walkIndex type checks an array subscript.
func (w *Walker) walkIndex(idx *ast.Index) {
	w.walkExpr(idx.Root)
	w.walkExpr(idx.Subsc)

	if _, unbound := asUnbound(idx.Root.Type()); unbound {
		w.error(report.TypeConflict, idx.Root.Span(), "only list values can be indexed")
	}

	arrType, ok := types.InnerType(idx.Root.Type()).(*types.ArrayType)
	if !ok {
		w.error(report.TypeConflict, idx.Root.Span(),
			"cannot index a value of type %s", idx.Root.Type().Repr())
	}

	w.requireIntSubscript(idx.Subsc)
	idx.SetType(arrType.ElemType)
}

// requireIntSubscript checks that a subscript expression is an int.
func (w *Walker) requireIntSubscript(subsc ast.ASTExpr) {
	if u, unbound := asUnbound(subsc.Type()); unbound {
		w.check(u.BindExact(types.PrimInt64), subsc.Span())
		return
	}

	if !types.IsPrim(subsc.Type(), types.PrimInt64) {
		w.error(report.TypeConflict, subsc.Span(),
			"list indices must be int not %s", subsc.Type().Repr())
	}
}

// walkArrayLit type checks an array literal and fixes its element type and
// length.
func (w *Walker) walkArrayLit(lit *ast.ArrayLit) {
	if len(lit.Elems) == 0 {
		w.error(report.UninferableType, lit.Span(),
			"cannot infer the element type of an empty list")
	}

	for _, elem := range lit.Elems {
		w.walkExpr(elem)

		if _, ok := elem.Type().(*types.ArrayType); ok {
			w.error(report.UnsupportedConstruct, elem.Span(), "nested lists are not supported")
		}
	}

	elemType := lit.Elems[0].Type()
	for _, elem := range lit.Elems[1:] {
		elemType = w.joinElemTypes(elemType, elem.Type(), elem.Span())
	}

	lit.SetType(&types.ArrayType{ElemType: elemType, Len: len(lit.Elems)})
}

// joinElemTypes computes the common element type of two list elements.
func (w *Walker) joinElemTypes(a, b types.Type, span *report.TextSpan) types.Type {
	au, aUnbound := asUnbound(a)
	bu, bUnbound := asUnbound(b)

	switch {
	case aUnbound && bUnbound:
		w.check(au.MergeWith(bu), span)
		return a
	case aUnbound:
		w.bindEvidence(au, types.InnerType(b), span)
		if types.IsPrim(b, types.PrimFloat64) {
			return types.PrimFloat64
		}
		return a
	case bUnbound:
		w.bindEvidence(bu, types.InnerType(a), span)
		if types.IsPrim(a, types.PrimFloat64) {
			return types.PrimFloat64
		}
		return b
	default:
		if types.Equals(a, b) {
			return a
		}

		if promoted, ok := types.Promote(a, b); ok {
			return promoted
		}

		w.error(report.TypeConflict, span,
			"list elements must share one type: %s and %s", a.Repr(), b.Repr())
		return nil
	}
}

// -----------------------------------------------------------------------------

// markNumericOperand records numeric evidence on an operand.
func (w *Walker) markNumericOperand(operand ast.ASTExpr) {
	if u, unbound := asUnbound(operand.Type()); unbound {
		w.check(u.MarkNumeric(), operand.Span())
		return
	}

	if !types.IsNumeric(operand.Type()) {
		w.error(report.TypeConflict, operand.Span(),
			"expected a numeric operand not %s", operand.Type().Repr())
	}
}

// markFloatOperand records float evidence on an operand of `/`.
func (w *Walker) markFloatOperand(operand ast.ASTExpr) {
	if u, unbound := asUnbound(operand.Type()); unbound {
		w.check(u.MarkFloat(), operand.Span())
		return
	}

	if !types.IsNumeric(operand.Type()) {
		w.error(report.TypeConflict, operand.Span(),
			"operator `/` cannot be applied to %s operands", operand.Type().Repr())
	}
}

// requireInt checks that an operand of `//` or `%` is an int.
func (w *Walker) requireInt(opName string, operand ast.ASTExpr) {
	if u, unbound := asUnbound(operand.Type()); unbound {
		w.check(u.BindExact(types.PrimInt64), operand.Span())
		return
	}

	if !types.IsPrim(operand.Type(), types.PrimInt64) {
		w.error(report.TypeConflict, operand.Span(),
			"operator `%s` requires int operands not %s", opName, operand.Type().Repr())
	}
}

// requireBool checks that an operand of a logical operator is a bool.
func (w *Walker) requireBool(opName string, operand ast.ASTExpr) {
	if u, unbound := asUnbound(operand.Type()); unbound {
		w.check(u.BindExact(types.PrimBool), operand.Span())
		return
	}

	if !types.IsPrim(operand.Type(), types.PrimBool) {
		w.error(report.TypeConflict, operand.Span(),
			"operator `%s` requires bool operands not %s", opName, operand.Type().Repr())
	}
}
