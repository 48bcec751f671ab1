package walk

import (
	"strings"
	"testing"

	"rrt/ast"
	"rrt/report"
	"rrt/syntax"
	"rrt/types"
)

// resolve parses and walks a single function, failing the test on any error.
func resolve(t *testing.T, src string) *ast.FuncDef {
	t.Helper()

	def, err := syntax.ParseFunction(src, "")
	if err != nil {
		t.Fatalf("unexpected parse error: %s", err)
	}

	if err := WalkFunction(def); err != nil {
		t.Fatalf("unexpected walk error: %s", err)
	}

	return def
}

// paramTypes extracts the resolved parameter type names of a walked function.
func paramTypes(def *ast.FuncDef) []string {
	names := make([]string, len(def.Params))
	for i, param := range def.Params {
		names[i] = types.InnerType(param.Sym.Type).Repr()
	}

	return names
}

func TestInferenceResolvesTypes(t *testing.T) {
	tests := []struct {
		name       string
		src        string
		wantParams []string
		wantReturn string
	}{
		{
			name:       "open parameters default to int",
			src:        "def add(a, b):\n    return a + b\n",
			wantParams: []string{"int", "int"},
			wantReturn: "int",
		},
		{
			name:       "true division floats its operands",
			src:        "def half(a):\n    return a / 2\n",
			wantParams: []string{"float"},
			wantReturn: "float",
		},
		{
			name:       "float evidence spreads through a merged group",
			src:        "def f(a, b):\n    c = a + b\n    return c / 2\n",
			wantParams: []string{"float", "float"},
			wantReturn: "float",
		},
		{
			name:       "annotated float operand floats the open one",
			src:        "def scale(a, f: float):\n    return a * f\n",
			wantParams: []string{"float", "float"},
			wantReturn: "float",
		},
		{
			name:       "floor division pins int",
			src:        "def div(a, b):\n    return a // b\n",
			wantParams: []string{"int", "int"},
			wantReturn: "int",
		},
		{
			name:       "len binds its operand to str",
			src:        "def f(s):\n    return len(s)\n",
			wantParams: []string{"str"},
			wantReturn: "int",
		},
		{
			name:       "concatenation binds to str",
			src:        "def greet(name):\n    return \"hi \" + name\n",
			wantParams: []string{"str"},
			wantReturn: "str",
		},
		{
			name:       "conditions bind to bool",
			src:        "def pick(flag, a: int, b: int) -> int:\n    if flag:\n        return a\n    else:\n        return b\n",
			wantParams: []string{"bool", "int", "int"},
			wantReturn: "int",
		},
		{
			name:       "mixed return sites promote to float",
			src:        "def f(flag: bool):\n    if flag:\n        return 1\n    else:\n        return 2.5\n",
			wantParams: []string{"bool"},
			wantReturn: "float",
		},
		{
			name:       "loop counter stays int",
			src:        "def gcd(a: int, b: int) -> int:\n    while b != 0:\n        t = b\n        b = a % b\n        a = t\n    return a\n",
			wantParams: []string{"int", "int"},
			wantReturn: "int",
		},
		{
			name:       "list literal fixes element type and length",
			src:        "def f(i):\n    xs = [1, 2, 3]\n    return xs[i]\n",
			wantParams: []string{"int"},
			wantReturn: "int",
		},
		{
			name:       "int builtin truncates to int",
			src:        "def f(x: float) -> int:\n    return int(x)\n",
			wantParams: []string{"float"},
			wantReturn: "int",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def := resolve(t, tt.src)

			got := paramTypes(def)
			for i, want := range tt.wantParams {
				if got[i] != want {
					t.Errorf("param %d type = %s, want %s", i, got[i], want)
				}
			}

			if ret := types.InnerType(def.ReturnType).Repr(); ret != tt.wantReturn {
				t.Errorf("return type = %s, want %s", ret, tt.wantReturn)
			}
		})
	}
}

func TestWalkErrors(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		wantKind report.ErrorKind
		want     string
	}{
		{
			"undefined name",
			"def f(a):\n    return a + b\n",
			report.UnsupportedConstruct,
			"undefined name: `b`",
		},
		{
			"missing return path",
			"def f(a: int):\n    if a > 0:\n        return a\n",
			report.UnsupportedConstruct,
			"not all control-flow paths",
		},
		{
			"bare return",
			"def f(a):\n    return\n",
			report.UnsupportedConstruct,
			"functions must return a value",
		},
		{
			"adding int and str",
			"def f(a: int):\n    return a + \"x\"\n",
			report.TypeConflict,
			"operator `+` cannot be applied",
		},
		{
			"reassignment changes the type",
			"def f(a: int) -> int:\n    x = a\n    x = \"oops\"\n    return x\n",
			report.TypeConflict,
			"cannot assign a value of type str",
		},
		{
			"non-bool condition",
			"def f(a: int) -> int:\n    if a:\n        return 1\n    return 0\n",
			report.TypeConflict,
			"condition must be bool",
		},
		{
			"conflicting evidence",
			"def f(s):\n    x = len(s)\n    return s / 2\n",
			report.TypeConflict,
			"operator `/` cannot be applied to str operands",
		},
		{
			"empty list literal",
			"def f(i: int) -> int:\n    xs = []\n    return xs[i]\n",
			report.UninferableType,
			"cannot infer the element type of an empty list",
		},
		{
			"unknown builtin",
			"def f(a):\n    return sorted(a)\n",
			report.UnsupportedConstruct,
			"`sorted` is not a supported builtin",
		},
		{
			"list return value",
			"def f(a: int):\n    return [a, a]\n",
			report.UnsupportedConstruct,
			"list return values are not supported",
		},
		{
			"indexing a scalar",
			"def f(a: int) -> int:\n    return a[0]\n",
			report.TypeConflict,
			"cannot index a value of type int",
		},
		{
			"aliasing a list",
			"def f(i: int) -> int:\n    xs = [1, 2]\n    ys = xs\n    return ys[i]\n",
			report.UnsupportedConstruct,
			"lists may only be assigned from list literals",
		},
		{
			"nested list literal",
			"def f(i: int) -> int:\n    xs = [[1, 2], [3, 4]]\n    return i\n",
			report.UnsupportedConstruct,
			"nested lists are not supported",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def, err := syntax.ParseFunction(tt.src, "")
			if err != nil {
				t.Fatalf("unexpected parse error: %s", err)
			}

			err = WalkFunction(def)
			if err == nil {
				t.Fatal("expected a walk error")
			}

			terr, ok := err.(*report.TranslateError)
			if !ok {
				t.Fatalf("error is %T, want *report.TranslateError", err)
			}
			if terr.Kind != tt.wantKind {
				t.Errorf("kind = %s, want %s", terr.Kind, tt.wantKind)
			}
			if !strings.Contains(terr.Message, tt.want) {
				t.Errorf("message = %q, want it to contain %q", terr.Message, tt.want)
			}
		})
	}
}
