package walk

import (
	"rrt/ast"
	"rrt/common"
	"rrt/report"
	"rrt/types"
)

// walkBlock walks all the statements of a block.
func (w *Walker) walkBlock(stmts []ast.ASTStmt) {
	for _, stmt := range stmts {
		w.walkStmt(stmt)
	}
}

// walkStmt walks a single statement.
func (w *Walker) walkStmt(stmt ast.ASTStmt) {
	switch v := stmt.(type) {
	case *ast.Assign:
		w.walkAssign(v)
	case *ast.ReturnStmt:
		w.walkReturn(v)
	case *ast.IfStmt:
		w.walkIf(v)
	case *ast.WhileStmt:
		w.walkCond(v.Cond)
		w.walkBlock(v.Body)
	case *ast.ExprStmt:
		w.walkCall(v.Call)
	case *ast.PassStmt:
		// Nothing to check.
	default:
		report.ReportICE("walkStmt: unknown statement node")
	}
}

// walkAssign walks an assignment statement.  The first assignment of a name
// declares it and fixes its type for the rest of the body.
func (w *Walker) walkAssign(as *ast.Assign) {
	w.walkExpr(as.Value)

	// Whole-list values only enter through literals: the targets disagree on
	// whether a list alias shares storage.
	if _, ok := as.Value.Type().(*types.ArrayType); ok {
		if _, isLit := as.Value.(*ast.ArrayLit); !isLit {
			w.error(report.UnsupportedConstruct, as.Value.Span(),
				"lists may only be assigned from list literals")
		}
	}

	switch target := as.Target.(type) {
	case *ast.Identifier:
		if sym, ok := w.scope[target.Name]; ok {
			w.mustAssign(sym.Type, as.Value.Type(), as.Value.Span())
			target.Sym = sym
			target.SetType(sym.Type)
			return
		}

		sym := &common.Symbol{
			Name: target.Name,
			Type: as.Value.Type(),
		}
		w.scope[target.Name] = sym
		target.Sym = sym
		target.SetType(sym.Type)
		as.IsDecl = true
	case *ast.Index:
		w.walkIndex(target)
		w.mustAssign(target.Type(), as.Value.Type(), as.Value.Span())
	default:
		report.ReportICE("walkAssign: invalid assignment target")
	}
}

// walkReturn walks a return statement.
func (w *Walker) walkReturn(ret *ast.ReturnStmt) {
	if ret.Value == nil {
		w.error(report.UnsupportedConstruct, ret.Span(), "functions must return a value")
	}

	w.walkExpr(ret.Value)

	if w.def.ReturnAnn != nil {
		w.mustAssign(w.def.ReturnAnn, ret.Value.Type(), ret.Value.Span())
	}

	w.returns = append(w.returns, returnSite{typ: ret.Value.Type(), span: ret.Value.Span()})
}

// walkIf walks an if statement.
func (w *Walker) walkIf(stmt *ast.IfStmt) {
	for _, branch := range stmt.Branches {
		w.walkCond(branch.Cond)
		w.walkBlock(branch.Body)
	}

	if stmt.ElseBody != nil {
		w.walkBlock(stmt.ElseBody)
	}
}

// walkCond walks a branch condition.  Conditions must be bool: there is no
// truthiness in the subset.
func (w *Walker) walkCond(cond ast.ASTExpr) {
	w.walkExpr(cond)

	if u, unbound := asUnbound(cond.Type()); unbound {
		w.check(u.BindExact(types.PrimBool), cond.Span())
		return
	}

	if !types.IsPrim(cond.Type(), types.PrimBool) {
		w.error(report.TypeConflict, cond.Span(),
			"condition must be bool not %s", cond.Type().Repr())
	}
}
