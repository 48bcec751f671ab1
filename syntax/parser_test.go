package syntax

import (
	"strings"
	"testing"

	"rrt/ast"
	"rrt/report"
	"rrt/types"
)

func TestParseFunctionShape(t *testing.T) {
	src := `def add_mul(a: int, b: int) -> int:
    """Add then double."""
    c = a + b
    return c * 2
`

	def, err := ParseFunction(src, "")
	if err != nil {
		t.Fatalf("unexpected parse error: %s", err)
	}

	if def.Name != "add_mul" {
		t.Errorf("name = %q, want add_mul", def.Name)
	}
	if def.Doc != "Add then double." {
		t.Errorf("doc = %q", def.Doc)
	}
	if len(def.Params) != 2 {
		t.Fatalf("param count = %d, want 2", len(def.Params))
	}
	for _, param := range def.Params {
		if !types.Equals(param.TypeAnn, types.PrimInt64) {
			t.Errorf("param %s annotation = %v, want int", param.Name, param.TypeAnn)
		}
	}
	if !types.Equals(def.ReturnAnn, types.PrimInt64) {
		t.Errorf("return annotation = %v, want int", def.ReturnAnn)
	}

	// The docstring is not part of the body.
	if len(def.Body) != 2 {
		t.Fatalf("body length = %d, want 2", len(def.Body))
	}
	if as, ok := def.Body[0].(*ast.Assign); !ok {
		t.Errorf("first statement is %T, want *ast.Assign", def.Body[0])
	} else if _, ok := as.Target.(*ast.Identifier); !ok {
		t.Errorf("assign target is %T, want *ast.Identifier", as.Target)
	}
	if _, ok := def.Body[1].(*ast.ReturnStmt); !ok {
		t.Errorf("second statement is %T, want *ast.ReturnStmt", def.Body[1])
	}
}

func TestParseFunctionByName(t *testing.T) {
	src := "def first():\n    pass\n\ndef second():\n    pass\n"

	def, err := ParseFunction(src, "second")
	if err != nil {
		t.Fatalf("unexpected parse error: %s", err)
	}
	if def.Name != "second" {
		t.Errorf("name = %q, want second", def.Name)
	}

	if _, err := ParseFunction(src, "third"); err == nil {
		t.Error("expected an error for a missing function name")
	}
}

func TestParseControlFlowShape(t *testing.T) {
	src := `def clamp(x, lo, hi):
    if x < lo:
        return lo
    elif x > hi:
        return hi
    else:
        return x
`

	def, err := ParseFunction(src, "")
	if err != nil {
		t.Fatalf("unexpected parse error: %s", err)
	}

	ifStmt, ok := def.Body[0].(*ast.IfStmt)
	if !ok {
		t.Fatalf("statement is %T, want *ast.IfStmt", def.Body[0])
	}
	if len(ifStmt.Branches) != 2 {
		t.Errorf("branch count = %d, want 2", len(ifStmt.Branches))
	}
	if ifStmt.ElseBody == nil {
		t.Error("expected an else body")
	}
}

func TestParseRejections(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			"comparison chaining",
			"def f(a, b):\n    return a < b < 10\n",
			"comparison chaining is not supported",
		},
		{
			"power operator",
			"def f(a):\n    return a ** 2\n",
			"the `**` operator is not supported",
		},
		{
			"nested def",
			"def f(a):\n    def g():\n        pass\n    return a\n",
			"nested function definitions are not supported",
		},
		{
			"attribute access",
			"def f(a):\n    return a.real\n",
			"attribute access is not supported",
		},
		{
			"nested indexing",
			"def f(a):\n    return a[0][1]\n",
			"nested indexing is not supported",
		},
		{
			"calling a non-builtin expression",
			"def f(a):\n    return a(0)(1)\n",
			"only named builtins may be called",
		},
		{
			"list annotation",
			"def f(a: list[int]):\n    return a\n",
			"list-typed parameters and return values are not supported",
		},
		{
			"augmented assignment",
			"def f(a):\n    a += 1\n    return a\n",
			"`+=` is not supported",
		},
		{
			"for loop",
			"def f(a):\n    for i in a:\n        pass\n",
			"`for` is not supported",
		},
		{
			"assignment to an expression",
			"def f(a):\n    a + 1 = 2\n    return a\n",
			"cannot assign to this expression",
		},
		{
			"bare expression statement",
			"def f(a):\n    a + 1\n    return a\n",
			"expression statements must be calls",
		},
		{
			"duplicate parameter names",
			"def f(a, a):\n    return a\n",
			"multiple parameters named `a`",
		},
		{
			"empty source",
			"\n",
			"source contains no function definitions",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseModule(tt.src)
			if err == nil {
				t.Fatal("expected a parse error")
			}

			terr, ok := err.(*report.TranslateError)
			if !ok {
				t.Fatalf("error is %T, want *report.TranslateError", err)
			}
			if terr.Kind != report.UnsupportedConstruct {
				t.Errorf("kind = %s, want unsupported construct", terr.Kind)
			}
			if !strings.Contains(terr.Message, tt.want) {
				t.Errorf("message = %q, want it to contain %q", terr.Message, tt.want)
			}
		})
	}
}
