package syntax

import (
	"bufio"
	"fmt"
	"strings"

	"rrt/ast"
	"rrt/report"
	"rrt/types"
	"rrt/util"
)

// Parser is the parser for a source file.  It is a recursive descent parser:
// all parsing functions assume that they begin with the parser centered on the
// first token of their production and must consume all tokens (including the
// last) of their production, leaving the parser on the next token.  Parsing
// errors are thrown as panics and recovered at the API boundary: the supported
// subset is small enough that the first error always poisons the whole
// translation request.
type Parser struct {
	// lexer is the Lexer this parser is using to lex the source file.
	lexer *Lexer

	// tok is the current token the parser is positioned on.
	tok *Token
}

// ParseModule parses all the function definitions in src.
func ParseModule(src string) (defs []*ast.FuncDef, err error) {
	defer report.CatchErrors(&err)

	p := &Parser{lexer: NewLexer(bufio.NewReader(strings.NewReader(src)))}
	p.next()

	defs = p.parseFile()
	return
}

// ParseFunction parses src and returns the definition of the function named
// name.  If name is empty, the first function definition is returned.
func ParseFunction(src, name string) (*ast.FuncDef, error) {
	defs, err := ParseModule(src)
	if err != nil {
		return nil, err
	}

	if name == "" {
		return defs[0], nil
	}

	for _, def := range defs {
		if def.Name == name {
			return def, nil
		}
	}

	return nil, fmt.Errorf("no function named `%s` in source", name)
}

// -----------------------------------------------------------------------------

// file = {NEWLINE} funcdef {funcdef | NEWLINE}
func (p *Parser) parseFile() []*ast.FuncDef {
	var defs []*ast.FuncDef

	p.newlines()
	for !p.got(TOK_EOF) {
		if !p.got(TOK_DEF) {
			p.reject()
		}

		defs = append(defs, p.parseFuncDef())
		p.newlines()
	}

	if len(defs) == 0 {
		p.rejectWithMsg("source contains no function definitions")
	}

	return defs
}

// funcdef = 'def' IDENT '(' [param {',' param}] ')' ['->' typeann] ':' block
// param = IDENT [':' typeann]
func (p *Parser) parseFuncDef() *ast.FuncDef {
	startSpan := p.tok.Span

	p.next()
	p.assert(TOK_IDENT)
	name := p.tok.Value
	p.next()

	p.assertAndNext(TOK_LPAREN)

	var params []*ast.FuncParam
	taken := make(map[string]struct{})
	for !p.got(TOK_RPAREN) {
		p.assert(TOK_IDENT)
		paramName := p.tok.Value
		if _, ok := taken[paramName]; ok {
			p.rejectWithMsg("multiple parameters named `%s`", paramName)
		}
		taken[paramName] = struct{}{}
		p.next()

		var typeAnn types.Type
		if p.got(TOK_COLON) {
			p.next()
			typeAnn = p.parseTypeAnn()
		}

		params = append(params, &ast.FuncParam{Name: paramName, TypeAnn: typeAnn})

		if p.got(TOK_COMMA) {
			p.next()
		} else {
			break
		}
	}

	p.assertAndNext(TOK_RPAREN)

	var returnAnn types.Type
	if p.got(TOK_ARROW) {
		p.next()
		returnAnn = p.parseTypeAnn()
	}

	p.assertAndNext(TOK_COLON)

	doc, body := p.parseFuncBody()

	endSpan := startSpan
	if len(body) > 0 {
		endSpan = body[len(body)-1].Span()
	}

	return &ast.FuncDef{
		ASTBase:   ast.NewASTBaseOver(startSpan, endSpan),
		Name:      name,
		Doc:       doc,
		Params:    params,
		ReturnAnn: returnAnn,
		Body:      body,
	}
}

// typeann = 'int' | 'float' | 'bool' | 'str' | 'list' '[' typeann ']'
func (p *Parser) parseTypeAnn() types.Type {
	p.assert(TOK_IDENT)

	var typ types.Type
	switch p.tok.Value {
	case "int":
		typ = types.PrimInt64
	case "float":
		typ = types.PrimFloat64
	case "bool":
		typ = types.PrimBool
	case "str":
		typ = types.PrimStr
	case "list":
		// Arrays never cross the function boundary: they only enter through
		// array literals inside the body.
		p.rejectWithMsg("list-typed parameters and return values are not supported")
	default:
		p.rejectWithMsg("unknown type annotation `%s`", p.tok.Value)
	}

	p.next()
	return typ
}

// -----------------------------------------------------------------------------

// next moves the parser forward one token.
func (p *Parser) next() {
	tok, err := p.lexer.NextToken()
	if err != nil {
		panic(err)
	}

	p.tok = tok
}

// got returns true if the parser is on a token of a given kind.
func (p *Parser) got(kind int) bool {
	return p.tok.Kind == kind
}

// gotOneOf returns if the parser's current token kind is one of given kinds.
func (p *Parser) gotOneOf(kinds ...int) bool {
	return util.Contains(kinds, p.tok.Kind)
}

// assert checks that the parser is on a token of a given kind and rejects the
// token if not.
func (p *Parser) assert(kind int) {
	if p.got(kind) {
		return
	}

	// EOF can work as a newline.
	if kind == TOK_NEWLINE && p.got(TOK_EOF) {
		return
	}

	p.reject()
}

// assertAndNext performs an assert operation and moves the parser forward.
func (p *Parser) assertAndNext(kind int) {
	p.assert(kind)
	p.next()
}

// newlines moves the parser forward until a non-newline token is encountered.
func (p *Parser) newlines() {
	for p.got(TOK_NEWLINE) {
		p.next()
	}
}

// -----------------------------------------------------------------------------

// reject reports an unexpected token error on the current token.
func (p *Parser) reject() {
	switch p.tok.Kind {
	case TOK_NEWLINE:
		p.rejectWithMsg("unexpected end of line")
	case TOK_INDENT:
		p.rejectWithMsg("unexpected indent")
	case TOK_DEDENT:
		p.rejectWithMsg("unexpected dedent")
	case TOK_EOF:
		p.rejectWithMsg("unexpected end of file")
	case TOK_REJECTED:
		p.rejectWithMsg("`%s` is not supported", p.tok.Value)
	default:
		p.rejectWithMsg("unexpected token: `%s`", p.tok.Value)
	}
}

// rejectWithMsg rejects the current token with a specific message.  The
// function takes a message and arguments to format into it.
func (p *Parser) rejectWithMsg(msg string, args ...interface{}) {
	panic(report.Raise(report.UnsupportedConstruct, p.tok.Span, msg, args...))
}
