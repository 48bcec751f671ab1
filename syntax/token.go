package syntax

import "rrt/report"

// Token represents a single lexical token.
type Token struct {
	// The kind of the token.  This must be one of the enumerated token kinds.
	Kind int

	// The string value of the token.  The value of a string token has the
	// surrounding quotes trimmed off and its escape sequences decoded.
	Value string

	// The text span over which the token exists.
	Span *report.TextSpan
}

// Enumeration of token kinds.
const (
	TOK_DEF = iota

	TOK_RETURN
	TOK_PASS
	TOK_IF
	TOK_ELIF
	TOK_ELSE
	TOK_WHILE

	TOK_AND
	TOK_OR
	TOK_NOT

	TOK_PLUS
	TOK_MINUS
	TOK_STAR
	TOK_DIV
	TOK_FLOORDIV
	TOK_MOD
	TOK_POW

	TOK_EQ
	TOK_NEQ
	TOK_LT
	TOK_LTEQ
	TOK_GT
	TOK_GTEQ

	TOK_ASSIGN
	TOK_ARROW

	TOK_LPAREN
	TOK_RPAREN
	TOK_LBRACKET
	TOK_RBRACKET
	TOK_COMMA
	TOK_COLON
	TOK_DOT

	TOK_IDENT
	TOK_INTLIT
	TOK_FLOATLIT
	TOK_BOOLLIT
	TOK_STRINGLIT

	// TOK_REJECTED is a keyword or operator that is recognized but lies
	// outside the supported subset.  The parser turns it into an unsupported
	// construct error carrying the token's span.
	TOK_REJECTED

	TOK_NEWLINE
	TOK_INDENT
	TOK_DEDENT
	TOK_EOF
)
