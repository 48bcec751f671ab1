package walk

import (
	"rrt/ast"
	"rrt/common"
	"rrt/report"
	"rrt/types"
)

// Walker is responsible for semantic analysis of a function definition: name
// resolution, type checking, and parameter type inference.  The walker is
// deterministic: a single walk over the body collects type evidence and a
// finalization pass defaults whatever the evidence left open.
type Walker struct {
	// The function definition being walked.
	def *ast.FuncDef

	// The function-level scope.  The subset follows Python scoping: a variable
	// assigned anywhere in the body is visible everywhere in the body.
	scope map[string]*common.Symbol

	// The untyped values created for unannotated parameters.
	untypeds []*types.Untyped

	// The type and span of every return value in the body.
	returns []returnSite
}

type returnSite struct {
	typ  types.Type
	span *report.TextSpan
}

// WalkFunction semantically analyzes the given function definition.  On
// success every expression node and symbol carries exactly one resolved type
// and def.ReturnType is set.
func WalkFunction(def *ast.FuncDef) (err error) {
	defer report.CatchErrors(&err)

	w := &Walker{def: def, scope: make(map[string]*common.Symbol)}
	w.walkFuncDef()

	return
}

func (w *Walker) walkFuncDef() {
	for _, param := range w.def.Params {
		var typ types.Type
		if param.TypeAnn != nil {
			typ = param.TypeAnn
		} else {
			ut := types.NewUntyped(param.Name)
			w.untypeds = append(w.untypeds, ut)
			typ = ut
		}

		sym := &common.Symbol{Name: param.Name, Type: typ}
		w.scope[param.Name] = sym
		param.Sym = sym
	}

	w.walkBlock(w.def.Body)

	// Finalize inference: parameters the evidence left open default to int,
	// or to float when float evidence was seen.
	for _, ut := range w.untypeds {
		ut.Finalize()
	}

	if !blockAlwaysReturns(w.def.Body) {
		w.error(report.UnsupportedConstruct, w.def.Span(),
			"not all control-flow paths of `%s` return a value", w.def.Name)
	}

	w.resolveReturnType()
}

// resolveReturnType checks every return site against the declared annotation,
// or joins the sites into the function's return type if there is none.
func (w *Walker) resolveReturnType() {
	if w.def.ReturnAnn != nil {
		want := w.def.ReturnAnn

		for _, site := range w.returns {
			typ := types.InnerType(site.typ)

			if types.Equals(want, typ) {
				continue
			}

			if types.IsPrim(want, types.PrimFloat64) && types.IsPrim(typ, types.PrimInt64) {
				continue
			}

			w.error(report.TypeConflict, site.span,
				"cannot return %s from a function returning %s", typ.Repr(), want.Repr())
		}

		w.def.ReturnType = want
		return
	}

	var ret types.Type
	for _, site := range w.returns {
		typ := types.InnerType(site.typ)

		if _, ok := typ.(*types.ArrayType); ok {
			w.error(report.UnsupportedConstruct, site.span,
				"list return values are not supported")
		}

		if ret == nil {
			ret = typ
			continue
		}

		if types.Equals(ret, typ) {
			continue
		}

		if promoted, ok := types.Promote(ret, typ); ok {
			ret = promoted
			continue
		}

		w.error(report.TypeConflict, site.span,
			"inconsistent return types: %s and %s", ret.Repr(), typ.Repr())
	}

	w.def.ReturnType = ret
}

// blockAlwaysReturns returns whether every control-flow path through the
// block ends in a return statement.
func blockAlwaysReturns(stmts []ast.ASTStmt) bool {
	for _, stmt := range stmts {
		switch v := stmt.(type) {
		case *ast.ReturnStmt:
			return true
		case *ast.IfStmt:
			if v.ElseBody == nil {
				continue
			}

			all := blockAlwaysReturns(v.ElseBody)
			for _, branch := range v.Branches {
				all = all && blockAlwaysReturns(branch.Body)
			}

			if all {
				return true
			}
		}
	}

	return false
}

// -----------------------------------------------------------------------------

// lookup looks up a symbol by name in the function scope.  If no symbol by the
// given name can be found, then an error is reported.
func (w *Walker) lookup(name string, span *report.TextSpan) *common.Symbol {
	if sym, ok := w.scope[name]; ok {
		return sym
	}

	w.error(report.UnsupportedConstruct, span, "undefined name: `%s`", name)
	return nil
}

// -----------------------------------------------------------------------------

// error reports an error on the given span that aborts walking of the
// function.
func (w *Walker) error(kind report.ErrorKind, span *report.TextSpan, msg string, args ...interface{}) {
	panic(report.Raise(kind, span, msg, args...))
}

// check converts a failed type evidence operation into a type conflict error
// on the given span.
func (w *Walker) check(err error, span *report.TextSpan) {
	if err != nil {
		w.error(report.TypeConflict, span, "%s", err.Error())
	}
}

// asUnbound returns the unbound untyped value underlying typ, if any.
func asUnbound(typ types.Type) (*types.Untyped, bool) {
	if ut, ok := typ.(*types.Untyped); ok && ut.Bound() == nil {
		return ut, true
	}

	return nil, false
}

// bindEvidence records that the unbound value u was used against a value of
// the concrete type typ.  Numeric evidence is monotone; bool and str evidence
// binds exactly.
func (w *Walker) bindEvidence(u *types.Untyped, typ types.Type, span *report.TextSpan) {
	switch pt := typ.(type) {
	case types.PrimitiveType:
		switch pt {
		case types.PrimInt64:
			w.check(u.MarkNumeric(), span)
		case types.PrimFloat64:
			w.check(u.MarkFloat(), span)
		default:
			w.check(u.BindExact(pt), span)
		}
	default:
		w.error(report.TypeConflict, span, "a value of type %s cannot be used here", typ.Repr())
	}
}

// mustAssign checks that a value of type src can be stored in a location of
// type dst, recording inference evidence where either side is still open.
// Int valued expressions may be stored in float locations.
func (w *Walker) mustAssign(dst, src types.Type, span *report.TextSpan) {
	du, dUnbound := asUnbound(dst)
	su, sUnbound := asUnbound(src)

	switch {
	case dUnbound && sUnbound:
		w.check(du.MergeWith(su), span)
	case dUnbound:
		w.bindEvidence(du, types.InnerType(src), span)
	case sUnbound:
		switch inner := types.InnerType(dst).(type) {
		case types.PrimitiveType:
			if inner == types.PrimFloat64 {
				w.check(su.MarkNumeric(), span)
			} else {
				w.check(su.BindExact(inner), span)
			}
		default:
			w.error(report.TypeConflict, span,
				"a value of type %s cannot be assigned here", dst.Repr())
		}
	default:
		if types.Equals(dst, src) {
			return
		}

		if types.IsPrim(dst, types.PrimFloat64) && types.IsPrim(src, types.PrimInt64) {
			return
		}

		w.error(report.TypeConflict, span,
			"cannot assign a value of type %s to a location of type %s", src.Repr(), dst.Repr())
	}
}
