package syntax

import (
	"rrt/ast"
	"rrt/report"
)

// operOf builds an AST operator from a token.
func operOf(tok *Token) ast.Oper {
	return ast.Oper{Kind: tok.Kind, Name: tok.Value, Span: tok.Span}
}

// binaryOver builds a binary operator application spanning its operands.
func binaryOver(op ast.Oper, lhs, rhs ast.ASTExpr) *ast.BinaryOp {
	return &ast.BinaryOp{
		ExprBase: ast.NewExprBase(report.NewSpanOver(lhs.Span(), rhs.Span())),
		Op:       op,
		Lhs:      lhs,
		Rhs:      rhs,
	}
}

// expr = or ; or = and {'or' and}
func (p *Parser) parseExpr() ast.ASTExpr {
	lhs := p.parseAndExpr()

	for p.got(TOK_OR) {
		op := operOf(p.tok)
		p.next()

		lhs = binaryOver(op, lhs, p.parseAndExpr())
	}

	return lhs
}

// and = not {'and' not}
func (p *Parser) parseAndExpr() ast.ASTExpr {
	lhs := p.parseNotExpr()

	for p.got(TOK_AND) {
		op := operOf(p.tok)
		p.next()

		lhs = binaryOver(op, lhs, p.parseNotExpr())
	}

	return lhs
}

// not = 'not' not | cmp
func (p *Parser) parseNotExpr() ast.ASTExpr {
	if p.got(TOK_NOT) {
		op := operOf(p.tok)
		p.next()

		operand := p.parseNotExpr()
		return &ast.UnaryOp{
			ExprBase: ast.NewExprBase(report.NewSpanOver(op.Span, operand.Span())),
			Op:       op,
			Operand:  operand,
		}
	}

	return p.parseCompareExpr()
}

// cmp = arith [('=='|'!='|'<'|'<='|'>'|'>=') arith]
func (p *Parser) parseCompareExpr() ast.ASTExpr {
	lhs := p.parseArithExpr()

	if p.gotOneOf(TOK_EQ, TOK_NEQ, TOK_LT, TOK_LTEQ, TOK_GT, TOK_GTEQ) {
		op := operOf(p.tok)
		p.next()

		lhs = binaryOver(op, lhs, p.parseArithExpr())

		if p.gotOneOf(TOK_EQ, TOK_NEQ, TOK_LT, TOK_LTEQ, TOK_GT, TOK_GTEQ) {
			p.rejectWithMsg("comparison chaining is not supported")
		}
	}

	return lhs
}

// arith = term {('+'|'-') term}
func (p *Parser) parseArithExpr() ast.ASTExpr {
	lhs := p.parseTermExpr()

	for p.gotOneOf(TOK_PLUS, TOK_MINUS) {
		op := operOf(p.tok)
		p.next()

		lhs = binaryOver(op, lhs, p.parseTermExpr())
	}

	return lhs
}

// term = unary {('*'|'/'|'//'|'%') unary}
func (p *Parser) parseTermExpr() ast.ASTExpr {
	lhs := p.parseUnaryExpr()

	for {
		if p.got(TOK_POW) {
			p.rejectWithMsg("the `**` operator is not supported")
		}

		if !p.gotOneOf(TOK_STAR, TOK_DIV, TOK_FLOORDIV, TOK_MOD) {
			break
		}

		op := operOf(p.tok)
		p.next()

		lhs = binaryOver(op, lhs, p.parseUnaryExpr())
	}

	return lhs
}

// unary = ('-'|'+') unary | atom
func (p *Parser) parseUnaryExpr() ast.ASTExpr {
	if p.gotOneOf(TOK_MINUS, TOK_PLUS) {
		op := operOf(p.tok)
		p.next()

		operand := p.parseUnaryExpr()
		return &ast.UnaryOp{
			ExprBase: ast.NewExprBase(report.NewSpanOver(op.Span, operand.Span())),
			Op:       op,
			Operand:  operand,
		}
	}

	return p.parseAtomExpr()
}

// atom = INT | FLOAT | STRING | 'True' | 'False'
//      | IDENT ['(' [expr {',' expr}] ')' | '[' expr ']']
//      | '(' expr ')' | '[' [expr {',' expr}] ']'
func (p *Parser) parseAtomExpr() ast.ASTExpr {
	switch p.tok.Kind {
	case TOK_INTLIT, TOK_FLOATLIT, TOK_STRINGLIT, TOK_BOOLLIT:
		lit := &ast.Literal{
			ExprBase: ast.NewExprBase(p.tok.Span),
			Kind:     p.tok.Kind,
			Value:    p.tok.Value,
		}
		p.next()
		return lit
	case TOK_IDENT:
		return p.parseIdentSuffix()
	case TOK_LPAREN:
		p.next()
		expr := p.parseExpr()
		p.assertAndNext(TOK_RPAREN)
		return expr
	case TOK_LBRACKET:
		return p.parseArrayLit()
	default:
		p.reject()
		return nil
	}
}

// parseIdentSuffix parses an identifier together with an optional call or
// subscript suffix.
func (p *Parser) parseIdentSuffix() ast.ASTExpr {
	identTok := p.tok
	p.next()

	var expr ast.ASTExpr
	switch p.tok.Kind {
	case TOK_LPAREN:
		p.next()

		var args []ast.ASTExpr
		for !p.got(TOK_RPAREN) {
			args = append(args, p.parseExpr())

			if p.got(TOK_COMMA) {
				p.next()
			} else {
				break
			}
		}

		p.assert(TOK_RPAREN)
		expr = &ast.Call{
			ExprBase: ast.NewExprBase(report.NewSpanOver(identTok.Span, p.tok.Span)),
			Name:     identTok.Value,
			NameSpan: identTok.Span,
			Args:     args,
		}
		p.next()
	case TOK_LBRACKET:
		p.next()

		subsc := p.parseExpr()
		p.assert(TOK_RBRACKET)
		expr = &ast.Index{
			ExprBase: ast.NewExprBase(report.NewSpanOver(identTok.Span, p.tok.Span)),
			Root: &ast.Identifier{
				ExprBase: ast.NewExprBase(identTok.Span),
				Name:     identTok.Value,
			},
			Subsc: subsc,
		}
		p.next()
	default:
		expr = &ast.Identifier{
			ExprBase: ast.NewExprBase(identTok.Span),
			Name:     identTok.Value,
		}
	}

	switch p.tok.Kind {
	case TOK_LBRACKET:
		p.rejectWithMsg("nested indexing is not supported")
	case TOK_DOT:
		p.rejectWithMsg("attribute access is not supported")
	case TOK_LPAREN:
		p.rejectWithMsg("only named builtins may be called")
	}

	return expr
}

// parseArrayLit parses an array literal.
func (p *Parser) parseArrayLit() ast.ASTExpr {
	startSpan := p.tok.Span
	p.next()

	var elems []ast.ASTExpr
	for !p.got(TOK_RBRACKET) {
		elems = append(elems, p.parseExpr())

		if p.got(TOK_COMMA) {
			p.next()
		} else {
			break
		}
	}

	p.assert(TOK_RBRACKET)
	lit := &ast.ArrayLit{
		ExprBase: ast.NewExprBase(report.NewSpanOver(startSpan, p.tok.Span)),
		Elems:    elems,
	}
	p.next()

	return lit
}
