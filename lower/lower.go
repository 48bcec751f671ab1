package lower

import (
	"rrt/ast"
	"rrt/mir"
	"rrt/report"
	"rrt/types"
)

// Lowerer converts a resolved AST function into MIR.  Lowering is total: the
// walker has already bound one concrete type to every node, so the only work
// left is reifying implicit promotions as casts and splitting declaring
// assignments from mutating ones.
type Lowerer struct {
	def *ast.FuncDef
}

// Lower lowers the given resolved function definition to MIR.
func Lower(def *ast.FuncDef) *mir.FuncDef {
	l := &Lowerer{def: def}
	return l.lowerFuncDef()
}

func (l *Lowerer) lowerFuncDef() *mir.FuncDef {
	params := make([]*mir.Param, len(l.def.Params))
	for i, param := range l.def.Params {
		params[i] = &mir.Param{
			Name: param.Name,
			Type: types.InnerType(param.Sym.Type),
		}
	}

	return &mir.FuncDef{
		Name:       l.def.Name,
		Doc:        l.def.Doc,
		Params:     params,
		ReturnType: types.InnerType(l.def.ReturnType),
		Body:       l.lowerBlock(l.def.Body),
		Span:       l.def.Span(),
	}
}

// -----------------------------------------------------------------------------

func (l *Lowerer) lowerBlock(stmts []ast.ASTStmt) []mir.Statement {
	var lowered []mir.Statement
	for _, stmt := range stmts {
		if ls := l.lowerStmt(stmt); ls != nil {
			lowered = append(lowered, ls)
		}
	}

	return lowered
}

func (l *Lowerer) lowerStmt(stmt ast.ASTStmt) mir.Statement {
	switch v := stmt.(type) {
	case *ast.Assign:
		return l.lowerAssign(v)
	case *ast.ReturnStmt:
		return &mir.Return{
			StmtBase: mir.NewStmtBase(v.Span()),
			Value:    l.castTo(l.lowerExpr(v.Value), types.InnerType(l.def.ReturnType)),
		}
	case *ast.IfStmt:
		branches := make([]mir.CondBranch, len(v.Branches))
		for i, branch := range v.Branches {
			branches[i] = mir.CondBranch{
				Cond: l.lowerExpr(branch.Cond),
				Body: l.lowerBlock(branch.Body),
			}
		}

		var elseBody []mir.Statement
		if v.ElseBody != nil {
			elseBody = l.lowerBlock(v.ElseBody)
		}

		return &mir.If{StmtBase: mir.NewStmtBase(v.Span()), Branches: branches, ElseBody: elseBody}
	case *ast.WhileStmt:
		return &mir.While{
			StmtBase: mir.NewStmtBase(v.Span()),
			Cond:     l.lowerExpr(v.Cond),
			Body:     l.lowerBlock(v.Body),
		}
	case *ast.ExprStmt:
		// Every expression in the subset is pure, so a call evaluated for its
		// own sake is dead once it has been type checked.
		return nil
	case *ast.PassStmt:
		return nil
	default:
		report.ReportICE("lowerStmt: unknown statement node")
		return nil
	}
}

func (l *Lowerer) lowerAssign(as *ast.Assign) mir.Statement {
	value := l.lowerExpr(as.Value)

	switch target := as.Target.(type) {
	case *ast.Identifier:
		varType := types.InnerType(target.Sym.Type)
		ident := &mir.Identifier{Name: target.Name, IdType: varType}

		if as.IsDecl {
			return &mir.VarDecl{
				StmtBase:    mir.NewStmtBase(as.Span()),
				Ident:       ident,
				Initializer: l.castTo(value, varType),
			}
		}

		return &mir.Assign{
			StmtBase: mir.NewStmtBase(as.Span()),
			LHS:      ident,
			RHS:      l.castTo(value, varType),
		}
	case *ast.Index:
		lhs := l.lowerIndex(target)
		return &mir.Assign{
			StmtBase: mir.NewStmtBase(as.Span()),
			LHS:      lhs,
			RHS:      l.castTo(value, lhs.ElemType),
		}
	default:
		report.ReportICE("lowerAssign: invalid assignment target")
		return nil
	}
}

// -----------------------------------------------------------------------------

// castTo wraps expr in a cast to want unless it already has that type.
func (l *Lowerer) castTo(expr mir.Expr, want types.Type) mir.Expr {
	if types.Equals(expr.Type(), want) {
		return expr
	}

	return &mir.CastExpr{Src: expr, DestType: want}
}
