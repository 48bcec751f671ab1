package syntax

import (
	"bufio"
	"io"
	"strings"
	"unicode"

	"rrt/report"
)

// Lexer is responsible for tokenizing a source file.  In addition to ordinary
// tokens, the lexer tracks leading whitespace and emits NEWLINE, INDENT, and
// DEDENT tokens describing the block layout of the source.
type Lexer struct {
	file    *bufio.Reader
	tokBuff *strings.Builder

	line, col           int
	startLine, startCol int

	// The stack of open indentation levels.  The bottom entry is always 0.
	indents []int

	// Layout tokens queued for emission before the next real token.
	pending []*Token

	// Whether the lexer is positioned at the start of a logical line and must
	// measure indentation before lexing.
	atLineStart bool

	// The kind of the last token emitted.  Used to decide whether the end of
	// the file needs a closing NEWLINE.
	lastKind int

	closedFile bool
}

// NewLexer creates a new lexer for the given source file.
func NewLexer(file *bufio.Reader) *Lexer {
	return &Lexer{
		file:        file,
		tokBuff:     &strings.Builder{},
		indents:     []int{0},
		atLineStart: true,
		lastKind:    TOK_NEWLINE,
	}
}

// NextToken retrieves the next token from the input file.  If the file has
// ended, this will be an EOF token.
func (l *Lexer) NextToken() (*Token, error) {
	tok, err := l.nextToken()
	if tok != nil {
		l.lastKind = tok.Kind
	}

	return tok, err
}

func (l *Lexer) nextToken() (*Token, error) {
	if len(l.pending) > 0 {
		return l.popPending(), nil
	}

	if l.atLineStart {
		if err := l.lexLineStart(); err != nil {
			return nil, err
		}

		if len(l.pending) > 0 {
			return l.popPending(), nil
		}
	}

	for {
		c, err := l.peek()
		if err != nil {
			return nil, err
		} else if c == -1 {
			return l.lexEOF()
		}

		switch c {
		case ' ', '\t', '\r', '\v', '\f':
			l.skip()
		case '\n':
			l.mark()
			l.skip()
			l.atLineStart = true
			return l.layoutToken(TOK_NEWLINE), nil
		case '#':
			// Comments run to the end of the line; the newline itself still
			// produces a NEWLINE token.
			for c != '\n' && c != -1 {
				if c, err = l.peek(); err != nil {
					return nil, err
				} else if c != '\n' && c != -1 {
					l.skip()
				}
			}
		case '"', '\'':
			return l.lexStringLit()
		default:
			if isDecimalDigit(c) {
				return l.lexNumericLit()
			} else if isFirstIdentChar(c) {
				return l.lexIdentOrKeyword()
			} else {
				return l.lexPunctOrOper()
			}
		}
	}
}

// -----------------------------------------------------------------------------

// lexLineStart measures the indentation of the next non-blank line and queues
// the INDENT and DEDENT tokens implied by its depth.
func (l *Lexer) lexLineStart() error {
	for {
		c, err := l.peek()
		if err != nil {
			return err
		}

		switch c {
		case ' ', '\t', '\r', '\v', '\f':
			l.skip()
		case '\n':
			// Blank lines produce no layout tokens.
			l.skip()
		case '#':
			for c != '\n' && c != -1 {
				if c, err = l.skip(); err != nil {
					return err
				}
			}
		case -1:
			l.atLineStart = false
			return nil
		default:
			return l.matchIndent()
		}
	}
}

// matchIndent compares the measured indentation of the current line against
// the indentation stack and queues INDENT or DEDENT tokens as needed.
func (l *Lexer) matchIndent() error {
	l.atLineStart = false
	l.mark()

	indent := l.col
	top := l.indents[len(l.indents)-1]

	if indent > top {
		l.indents = append(l.indents, indent)
		l.pending = append(l.pending, l.layoutToken(TOK_INDENT))
		return nil
	}

	for indent < top {
		l.indents = l.indents[:len(l.indents)-1]
		top = l.indents[len(l.indents)-1]
		l.pending = append(l.pending, l.layoutToken(TOK_DEDENT))
	}

	if indent != top {
		return report.Raise(report.UnsupportedConstruct, l.getSpan(), "inconsistent indentation")
	}

	return nil
}

// lexEOF closes any open blocks and produces the EOF token.  A source file
// whose last line has no trailing newline still ends its statement: a closing
// NEWLINE is synthesized before the DEDENTs.
func (l *Lexer) lexEOF() (*Token, error) {
	l.mark()

	if !l.closedFile {
		l.closedFile = true

		if l.lastKind != TOK_NEWLINE && l.lastKind != TOK_DEDENT {
			l.pending = append(l.pending, l.layoutToken(TOK_NEWLINE))
		}

		for len(l.indents) > 1 {
			l.indents = l.indents[:len(l.indents)-1]
			l.pending = append(l.pending, l.layoutToken(TOK_DEDENT))
		}
	}

	l.pending = append(l.pending, l.layoutToken(TOK_EOF))

	return l.popPending(), nil
}

// -----------------------------------------------------------------------------

// symbolPatterns maps symbol strings (patterns) to their punctuation/operator
// token kind.  Augmented assignment operators are recognized so they can be
// rejected with a useful span instead of a generic unknown-character error.
var symbolPatterns = map[string]int{
	"+":  TOK_PLUS,
	"-":  TOK_MINUS,
	"*":  TOK_STAR,
	"/":  TOK_DIV,
	"//": TOK_FLOORDIV,
	"%":  TOK_MOD,
	"**": TOK_POW,

	"==": TOK_EQ,
	"!":  TOK_REJECTED,
	"!=": TOK_NEQ,
	"<":  TOK_LT,
	"<=": TOK_LTEQ,
	">":  TOK_GT,
	">=": TOK_GTEQ,

	"=":  TOK_ASSIGN,
	"->": TOK_ARROW,

	"(": TOK_LPAREN,
	")": TOK_RPAREN,
	"[": TOK_LBRACKET,
	"]": TOK_RBRACKET,
	",": TOK_COMMA,
	":": TOK_COLON,
	".": TOK_DOT,

	"+=":  TOK_REJECTED,
	"-=":  TOK_REJECTED,
	"*=":  TOK_REJECTED,
	"/=":  TOK_REJECTED,
	"//=": TOK_REJECTED,
	"%=":  TOK_REJECTED,
	"**=": TOK_REJECTED,
}

// lexPunctOrOper lexes a punctuation or operator symbol.
func (l *Lexer) lexPunctOrOper() (*Token, error) {
	l.mark()
	l.eat()

	kind, ok := symbolPatterns[l.tokBuff.String()]
	if !ok {
		return nil, report.Raise(report.UnsupportedConstruct, l.getSpan(),
			"unknown character `%s`", l.tokBuff.String())
	}

	for {
		c, err := l.peek()
		if err != nil {
			return nil, err
		}

		if c == -1 {
			break
		}

		if _kind, ok := symbolPatterns[l.tokBuff.String()+string(c)]; ok {
			l.eat()
			kind = _kind
		} else {
			break
		}
	}

	return l.makeToken(kind), nil
}

// -----------------------------------------------------------------------------

// keywordPatterns maps keyword strings (patterns) to their keyword token kind.
var keywordPatterns = map[string]int{
	"def": TOK_DEF,

	"return": TOK_RETURN,
	"pass":   TOK_PASS,
	"if":     TOK_IF,
	"elif":   TOK_ELIF,
	"else":   TOK_ELSE,
	"while":  TOK_WHILE,

	"and": TOK_AND,
	"or":  TOK_OR,
	"not": TOK_NOT,

	"True":  TOK_BOOLLIT,
	"False": TOK_BOOLLIT,
}

// rejectedKeywords is the set of keywords that are recognized but lie outside
// the supported subset.
var rejectedKeywords = map[string]struct{}{
	"class":    {},
	"for":      {},
	"in":       {},
	"is":       {},
	"lambda":   {},
	"yield":    {},
	"import":   {},
	"from":     {},
	"try":      {},
	"except":   {},
	"finally":  {},
	"raise":    {},
	"with":     {},
	"as":       {},
	"global":   {},
	"nonlocal": {},
	"del":      {},
	"assert":   {},
	"async":    {},
	"await":    {},
	"break":    {},
	"continue": {},
	"None":     {},
}

// lexIdentOrKeyword lexes an identifier or a keyword.
func (l *Lexer) lexIdentOrKeyword() (*Token, error) {
	l.mark()
	l.eat()

	for {
		c, err := l.peek()
		if err != nil {
			return nil, err
		} else if !isFirstIdentChar(c) && !isDecimalDigit(c) {
			break
		}

		l.eat()
	}

	var kind int
	if _kind, ok := keywordPatterns[l.tokBuff.String()]; ok {
		kind = _kind
	} else if _, ok := rejectedKeywords[l.tokBuff.String()]; ok {
		kind = TOK_REJECTED
	} else {
		kind = TOK_IDENT
	}

	return l.makeToken(kind), nil
}

// -----------------------------------------------------------------------------

// lexNumericLit lexes an integer or float literal.
func (l *Lexer) lexNumericLit() (*Token, error) {
	l.mark()
	l.eat()

	isFloat := false

	for {
		c, err := l.peek()
		if err != nil {
			return nil, err
		}

		if isDecimalDigit(c) {
			l.eat()
		} else if c == '.' && !isFloat {
			isFloat = true
			l.eat()
		} else if c == 'e' || c == 'E' {
			isFloat = true
			l.eat()

			if c, err = l.peek(); err != nil {
				return nil, err
			} else if c == '+' || c == '-' {
				l.eat()

				if c, err = l.peek(); err != nil {
					return nil, err
				}
			}

			if !isDecimalDigit(c) {
				return nil, report.Raise(report.UnsupportedConstruct, l.getSpan(),
					"expected digits after exponent")
			}
		} else {
			break
		}
	}

	if isFloat {
		return l.makeToken(TOK_FLOATLIT), nil
	}

	return l.makeToken(TOK_INTLIT), nil
}

// -----------------------------------------------------------------------------

// lexStringLit lexes a single or triple quoted string literal.  The quotes are
// trimmed from the token value and escape sequences are decoded.
func (l *Lexer) lexStringLit() (*Token, error) {
	l.mark()
	quote, err := l.skip()
	if err != nil {
		return nil, err
	}

	// Detect a triple-quoted string.
	triple := false
	if c, err := l.peek(); err != nil {
		return nil, err
	} else if c == quote {
		l.skip()

		if c, err = l.peek(); err != nil {
			return nil, err
		} else if c == quote {
			l.skip()
			triple = true
		} else {
			// The two quotes formed an empty short string.
			return l.makeToken(TOK_STRINGLIT), nil
		}
	}

	for {
		c, err := l.peek()
		if err != nil {
			return nil, err
		}

		if c == -1 || (c == '\n' && !triple) {
			return nil, report.Raise(report.UnsupportedConstruct, l.getSpan(), "unclosed string literal")
		}

		if c == quote {
			l.skip()

			if !triple {
				break
			}

			// A triple-quoted string only closes on three quotes in a row;
			// fewer are ordinary content.
			closed, err := l.matchTripleClose(quote)
			if err != nil {
				return nil, err
			} else if closed {
				break
			}

			continue
		}

		if c == '\\' {
			l.skip()

			if err := l.eatEscapeSequence(); err != nil {
				return nil, err
			}

			continue
		}

		l.eat()
	}

	return l.makeToken(TOK_STRINGLIT), nil
}

// matchTripleClose checks for the two remaining quotes of a triple-quote
// terminator after one quote has already been consumed.  Unmatched quotes are
// written back to the token buffer as content.
func (l *Lexer) matchTripleClose(quote rune) (bool, error) {
	c, err := l.peek()
	if err != nil {
		return false, err
	}

	if c != quote {
		l.tokBuff.WriteRune(quote)
		return false, nil
	}

	l.skip()

	if c, err = l.peek(); err != nil {
		return false, err
	} else if c != quote {
		l.tokBuff.WriteRune(quote)
		l.tokBuff.WriteRune(quote)
		return false, nil
	}

	l.skip()
	return true, nil
}

// eatEscapeSequence decodes the escape sequence following a consumed
// backslash and writes the decoded character to the token buffer.
func (l *Lexer) eatEscapeSequence() error {
	c, err := l.skip()
	if err != nil {
		return err
	}

	switch c {
	case -1:
		return report.Raise(report.UnsupportedConstruct, l.getSpan(),
			"expected escape sequence not end of file")
	case 'n':
		l.tokBuff.WriteRune('\n')
	case 't':
		l.tokBuff.WriteRune('\t')
	case 'r':
		l.tokBuff.WriteRune('\r')
	case '0':
		l.tokBuff.WriteRune(0)
	case '\\', '\'', '"':
		l.tokBuff.WriteRune(c)
	default:
		return report.Raise(report.UnsupportedConstruct, l.getSpan(),
			"unknown escape sequence: `\\%c`", c)
	}

	return nil
}

// -----------------------------------------------------------------------------

// mark sets the lexer's stored start line and column to its current position.
func (l *Lexer) mark() {
	l.startLine = l.line
	l.startCol = l.col
}

// makeToken produces a new token of the given kind from the lexer's state and
// resets the lexer to begin building the next token.
func (l *Lexer) makeToken(kind int) *Token {
	value := l.tokBuff.String()
	l.tokBuff.Reset()

	return &Token{
		Kind:  kind,
		Value: value,
		Span:  l.getSpan(),
	}
}

// layoutToken produces a valueless layout token at the lexer's marked
// position.
func (l *Lexer) layoutToken(kind int) *Token {
	return &Token{Kind: kind, Span: l.getSpan()}
}

// popPending removes and returns the front of the pending token queue.
func (l *Lexer) popPending() *Token {
	tok := l.pending[0]
	l.pending = l.pending[1:]
	return tok
}

// getSpan calculates a text span based on the lexer's current state.
func (l *Lexer) getSpan() *report.TextSpan {
	return &report.TextSpan{
		StartLine: l.startLine,
		StartCol:  l.startCol,
		EndLine:   l.line,
		EndCol:    l.col,
	}
}

// -----------------------------------------------------------------------------

// eat moves the lexer forward one rune and writes the rune to the token buffer.
// If the lexer encounters an EOF, -1 is returned as the rune value.
func (l *Lexer) eat() (rune, error) {
	c, _, err := l.file.ReadRune()
	if err != nil {
		if err == io.EOF {
			return -1, nil
		}

		return 0, err
	}

	l.updatePos(c)
	l.tokBuff.WriteRune(c)

	return c, nil
}

// skip moves the lexer forward one rune but does not write the rune to the
// token buffer.  If the lexer encounters an EOF, -1 is returned as the rune
// value.
func (l *Lexer) skip() (rune, error) {
	c, _, err := l.file.ReadRune()
	if err != nil {
		if err == io.EOF {
			return -1, nil
		}

		return 0, err
	}

	l.updatePos(c)

	return c, nil
}

// peek returns the next rune in the file without moving the lexer forward or
// writing the rune to the token buffer.  If the lexer encounters an EOF, -1 is
// returned as rune value.
func (l *Lexer) peek() (rune, error) {
	c, _, err := l.file.ReadRune()
	if err != nil {
		if err == io.EOF {
			return -1, nil
		}

		return 0, err
	}

	if err = l.file.UnreadRune(); err != nil {
		return 0, err
	}

	return c, nil
}

// updatePos updates the lexer's position based on input character.
func (l *Lexer) updatePos(c rune) {
	switch c {
	case '\n':
		l.line++
		l.col = 0
	case '\t':
		l.col += 4
	default:
		l.col++
	}
}

// -----------------------------------------------------------------------------

// isDecimalDigit returns whether c is a decimal digit.
func isDecimalDigit(c rune) bool {
	return '0' <= c && c <= '9'
}

// isFirstIdentChar returns whether c could be the first rune of an identifier.
func isFirstIdentChar(c rune) bool {
	return unicode.IsLetter(c) || c == '_'
}
