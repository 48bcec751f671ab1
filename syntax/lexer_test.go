package syntax

import (
	"bufio"
	"strings"
	"testing"
)

// lexAll tokenizes src completely, failing the test on any lexer error.
func lexAll(t *testing.T, src string) []*Token {
	t.Helper()

	l := NewLexer(bufio.NewReader(strings.NewReader(src)))

	var toks []*Token
	for {
		tok, err := l.NextToken()
		if err != nil {
			t.Fatalf("unexpected lexer error: %s", err)
		}

		toks = append(toks, tok)
		if tok.Kind == TOK_EOF {
			return toks
		}
	}
}

// kindsOf extracts the token kinds of a token list.
func kindsOf(toks []*Token) []int {
	kinds := make([]int, len(toks))
	for i, tok := range toks {
		kinds[i] = tok.Kind
	}

	return kinds
}

func sameKinds(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}

	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}

	return true
}

func TestLexKindSequences(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []int
	}{
		{
			name: "flat function",
			src:  "def f(x):\n    return x // 2\n",
			want: []int{
				TOK_DEF, TOK_IDENT, TOK_LPAREN, TOK_IDENT, TOK_RPAREN, TOK_COLON, TOK_NEWLINE,
				TOK_INDENT, TOK_RETURN, TOK_IDENT, TOK_FLOORDIV, TOK_INTLIT, TOK_NEWLINE,
				TOK_DEDENT, TOK_EOF,
			},
		},
		{
			name: "missing trailing newline still closes the statement",
			src:  "def f():\n    return 1",
			want: []int{
				TOK_DEF, TOK_IDENT, TOK_LPAREN, TOK_RPAREN, TOK_COLON, TOK_NEWLINE,
				TOK_INDENT, TOK_RETURN, TOK_INTLIT, TOK_NEWLINE, TOK_DEDENT, TOK_EOF,
			},
		},
		{
			name: "blank lines and comments produce no tokens",
			src:  "x = 1\n\n# comment\n\ny = 2\n",
			want: []int{
				TOK_IDENT, TOK_ASSIGN, TOK_INTLIT, TOK_NEWLINE,
				TOK_IDENT, TOK_ASSIGN, TOK_INTLIT, TOK_NEWLINE, TOK_EOF,
			},
		},
		{
			name: "nested blocks dedent together",
			src:  "if a:\n    if b:\n        pass\nc = 1\n",
			want: []int{
				TOK_IF, TOK_IDENT, TOK_COLON, TOK_NEWLINE,
				TOK_INDENT, TOK_IF, TOK_IDENT, TOK_COLON, TOK_NEWLINE,
				TOK_INDENT, TOK_PASS, TOK_NEWLINE,
				TOK_DEDENT, TOK_DEDENT,
				TOK_IDENT, TOK_ASSIGN, TOK_INTLIT, TOK_NEWLINE, TOK_EOF,
			},
		},
		{
			name: "arrow and annotations",
			src:  "def f(a: int) -> float:\n    pass\n",
			want: []int{
				TOK_DEF, TOK_IDENT, TOK_LPAREN, TOK_IDENT, TOK_COLON, TOK_IDENT, TOK_RPAREN,
				TOK_ARROW, TOK_IDENT, TOK_COLON, TOK_NEWLINE,
				TOK_INDENT, TOK_PASS, TOK_NEWLINE, TOK_DEDENT, TOK_EOF,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := kindsOf(lexAll(t, tt.src))
			if !sameKinds(got, tt.want) {
				t.Errorf("token kinds = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLexLiteralValues(t *testing.T) {
	tests := []struct {
		src       string
		wantKind  int
		wantValue string
	}{
		{"42", TOK_INTLIT, "42"},
		{"3.25", TOK_FLOATLIT, "3.25"},
		{"1e10", TOK_FLOATLIT, "1e10"},
		{"2.5e-3", TOK_FLOATLIT, "2.5e-3"},
		{"True", TOK_BOOLLIT, "True"},
		{"False", TOK_BOOLLIT, "False"},
		{`"hello"`, TOK_STRINGLIT, "hello"},
		{`'a\tb'`, TOK_STRINGLIT, "a\tb"},
		{`"say \"hi\""`, TOK_STRINGLIT, `say "hi"`},
		{`"""multi
line"""`, TOK_STRINGLIT, "multi\nline"},
		{`"""inner "quote" kept"""`, TOK_STRINGLIT, `inner "quote" kept`},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			toks := lexAll(t, tt.src)
			if toks[0].Kind != tt.wantKind {
				t.Fatalf("kind = %d, want %d", toks[0].Kind, tt.wantKind)
			}
			if toks[0].Value != tt.wantValue {
				t.Errorf("value = %q, want %q", toks[0].Value, tt.wantValue)
			}
		})
	}
}

func TestLexOperatorKinds(t *testing.T) {
	tests := []struct {
		src  string
		want int
	}{
		{"+", TOK_PLUS},
		{"-", TOK_MINUS},
		{"*", TOK_STAR},
		{"/", TOK_DIV},
		{"//", TOK_FLOORDIV},
		{"%", TOK_MOD},
		{"**", TOK_POW},
		{"==", TOK_EQ},
		{"!=", TOK_NEQ},
		{"<", TOK_LT},
		{"<=", TOK_LTEQ},
		{">", TOK_GT},
		{">=", TOK_GTEQ},
		{"=", TOK_ASSIGN},
		{"->", TOK_ARROW},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			toks := lexAll(t, "a "+tt.src+" b")
			if toks[1].Kind != tt.want {
				t.Errorf("kind of %q = %d, want %d", tt.src, toks[1].Kind, tt.want)
			}
		})
	}
}

func TestLexRejectedTokens(t *testing.T) {
	tests := []string{"x += 1", "x //= 2", "a ! b", "for", "lambda", "None", "break", "continue", "import"}

	for _, src := range tests {
		t.Run(src, func(t *testing.T) {
			found := false
			for _, tok := range lexAll(t, src) {
				if tok.Kind == TOK_REJECTED {
					found = true
				}
			}

			if !found {
				t.Errorf("expected a rejected token in %q", src)
			}
		})
	}
}

func TestLexInconsistentIndentation(t *testing.T) {
	src := "if a:\n        x = 1\n    y = 2\n"

	l := NewLexer(bufio.NewReader(strings.NewReader(src)))
	for {
		tok, err := l.NextToken()
		if err != nil {
			if !strings.Contains(err.Error(), "inconsistent indentation") {
				t.Errorf("error = %q, want inconsistent indentation", err)
			}
			return
		}

		if tok.Kind == TOK_EOF {
			t.Fatal("expected an indentation error")
		}
	}
}
