package syntax

import (
	"rrt/ast"
	"rrt/report"
)

// parseFuncBody parses a function body block, extracting the leading
// docstring if one is present.
func (p *Parser) parseFuncBody() (string, []ast.ASTStmt) {
	p.assertAndNext(TOK_NEWLINE)
	p.assertAndNext(TOK_INDENT)

	var doc string
	if p.got(TOK_STRINGLIT) {
		docTok := p.tok
		p.next()

		// Only a string literal forming a whole statement is a docstring.
		if !p.got(TOK_NEWLINE) {
			panic(report.Raise(report.UnsupportedConstruct, docTok.Span,
				"expression statements must be calls"))
		}

		doc = docTok.Value
		p.next()
	}

	var stmts []ast.ASTStmt
	for !p.got(TOK_DEDENT) {
		stmts = append(stmts, p.parseStmt())
	}
	p.next()

	return doc, stmts
}

// block = NEWLINE INDENT stmt {stmt} DEDENT
func (p *Parser) parseBlock() []ast.ASTStmt {
	p.assertAndNext(TOK_NEWLINE)
	p.assertAndNext(TOK_INDENT)

	var stmts []ast.ASTStmt
	for !p.got(TOK_DEDENT) {
		stmts = append(stmts, p.parseStmt())
	}
	p.next()

	return stmts
}

// stmt = simple NEWLINE | if | while
func (p *Parser) parseStmt() ast.ASTStmt {
	switch p.tok.Kind {
	case TOK_IF:
		return p.parseIfStmt()
	case TOK_WHILE:
		return p.parseWhileStmt()
	case TOK_RETURN:
		return p.parseReturnStmt()
	case TOK_PASS:
		stmt := &ast.PassStmt{ASTBase: ast.NewASTBaseOn(p.tok.Span)}
		p.next()
		p.assertAndNext(TOK_NEWLINE)
		return stmt
	case TOK_DEF:
		p.rejectWithMsg("nested function definitions are not supported")
		return nil
	case TOK_IDENT:
		return p.parseAssignOrCallStmt()
	default:
		p.reject()
		return nil
	}
}

// simple = 'return' [expr] | ...
func (p *Parser) parseReturnStmt() ast.ASTStmt {
	startSpan := p.tok.Span
	p.next()

	if p.got(TOK_NEWLINE) {
		p.next()
		return &ast.ReturnStmt{ASTBase: ast.NewASTBaseOn(startSpan)}
	}

	value := p.parseExpr()
	p.assertAndNext(TOK_NEWLINE)

	return &ast.ReturnStmt{
		ASTBase: ast.NewASTBaseOver(startSpan, value.Span()),
		Value:   value,
	}
}

// simple = ... | target '=' expr | call-expr
// target = IDENT | IDENT '[' expr ']'
func (p *Parser) parseAssignOrCallStmt() ast.ASTStmt {
	expr := p.parseExpr()

	// Surface augmented assignment operators by name instead of falling
	// through to the generic expression-statement error.
	if p.got(TOK_REJECTED) {
		p.reject()
	}

	if p.got(TOK_ASSIGN) {
		switch expr.(type) {
		case *ast.Identifier, *ast.Index:
		default:
			panic(report.Raise(report.UnsupportedConstruct, expr.Span(),
				"cannot assign to this expression"))
		}

		p.next()
		value := p.parseExpr()
		p.assertAndNext(TOK_NEWLINE)

		return &ast.Assign{
			ASTBase: ast.NewASTBaseOver(expr.Span(), value.Span()),
			Target:  expr,
			Value:   value,
		}
	}

	// A bare expression statement is only allowed to be a call.
	call, ok := expr.(*ast.Call)
	if !ok {
		panic(report.Raise(report.UnsupportedConstruct, expr.Span(),
			"expression statements must be calls"))
	}

	p.assertAndNext(TOK_NEWLINE)

	return &ast.ExprStmt{ASTBase: ast.NewASTBaseOn(call.Span()), Call: call}
}

// if = 'if' expr ':' block {'elif' expr ':' block} ['else' ':' block]
func (p *Parser) parseIfStmt() ast.ASTStmt {
	startSpan := p.tok.Span
	endSpan := startSpan

	var branches []ast.CondBranch
	for {
		p.next()
		cond := p.parseExpr()
		p.assertAndNext(TOK_COLON)
		body := p.parseBlock()

		branches = append(branches, ast.CondBranch{Cond: cond, Body: body})
		endSpan = body[len(body)-1].Span()

		if !p.got(TOK_ELIF) {
			break
		}
	}

	var elseBody []ast.ASTStmt
	if p.got(TOK_ELSE) {
		p.next()
		p.assertAndNext(TOK_COLON)
		elseBody = p.parseBlock()
		endSpan = elseBody[len(elseBody)-1].Span()
	}

	return &ast.IfStmt{
		ASTBase:  ast.NewASTBaseOver(startSpan, endSpan),
		Branches: branches,
		ElseBody: elseBody,
	}
}

// while = 'while' expr ':' block
func (p *Parser) parseWhileStmt() ast.ASTStmt {
	startSpan := p.tok.Span
	p.next()

	cond := p.parseExpr()
	p.assertAndNext(TOK_COLON)
	body := p.parseBlock()

	return &ast.WhileStmt{
		ASTBase: ast.NewASTBaseOver(startSpan, body[len(body)-1].Span()),
		Cond:    cond,
		Body:    body,
	}
}
