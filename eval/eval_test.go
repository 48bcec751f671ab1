package eval

import (
	"strings"
	"testing"

	"rrt/lower"
	"rrt/mir"
	"rrt/policy"
	"rrt/syntax"
	"rrt/walk"
)

// compile runs the front half of the pipeline on src.
func compile(t *testing.T, src string) *mir.FuncDef {
	t.Helper()

	def, err := syntax.ParseFunction(src, "")
	if err != nil {
		t.Fatalf("unexpected parse error: %s", err)
	}
	if err := walk.WalkFunction(def); err != nil {
		t.Fatalf("unexpected walk error: %s", err)
	}

	return lower.Lower(def)
}

// call evaluates src on args under the given division rule and formats the
// result.
func call(t *testing.T, src, division string, args ...string) string {
	t.Helper()

	pol := policy.Default()
	pol.Division = division

	result, err := NewEvaluator(compile(t, src), pol).Call(args)
	if err != nil {
		t.Fatalf("unexpected evaluation error: %s", err)
	}

	return Format(result)
}

func TestEvalArithmetic(t *testing.T) {
	tests := []struct {
		name string
		src  string
		args []string
		want string
	}{
		{
			"gcd loop",
			"def gcd(a: int, b: int) -> int:\n    while b != 0:\n        t = b\n        b = a % b\n        a = t\n    return a\n",
			[]string{"54", "24"}, "6",
		},
		{
			"true division yields floats",
			"def f(a: int, b: int):\n    return a / b\n",
			[]string{"7", "2"}, "3.5",
		},
		{
			"mixed arithmetic promotes",
			"def f(a: int, x: float) -> float:\n    return a + x\n",
			[]string{"2", "0.5"}, "2.5",
		},
		{
			"string concatenation",
			"def greet(name: str) -> str:\n    return \"hi \" + name\n",
			[]string{"bob"}, "hi bob",
		},
		{
			"abs min max",
			"def f(a: int, b: int) -> int:\n    return max(abs(a), min(b, 10))\n",
			[]string{"-3", "99"}, "10",
		},
		{
			"int truncates toward zero",
			"def f(x: float) -> int:\n    return int(x)\n",
			[]string{"-2.7"}, "-2",
		},
		{
			"list indexing",
			"def f(i: int) -> int:\n    xs = [10, 20, 30]\n    return xs[i]\n",
			[]string{"2"}, "30",
		},
		{
			"list element update",
			"def f(i: int) -> int:\n    xs = [1, 2, 3]\n    xs[i] = 9\n    return xs[0] + xs[1] + xs[2]\n",
			[]string{"1"}, "13",
		},
		{
			"boolean short circuit",
			"def f(a: int) -> bool:\n    return a != 0 and 10 // a > 1\n",
			[]string{"0"}, "false",
		},
		{
			"str of a float keeps a decimal point",
			"def f(x: float) -> str:\n    return str(x)\n",
			[]string{"3"}, "3.0",
		},
		{
			"len counts UTF-16 units",
			"def f(s: str) -> int:\n    return len(s)\n",
			[]string{"héllo"}, "5",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := call(t, tt.src, policy.DivisionTrunc, tt.args...); got != tt.want {
				t.Errorf("result = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEvalDivisionRules(t *testing.T) {
	divSrc := "def f(a: int, b: int) -> int:\n    return a // b\n"
	modSrc := "def f(a: int, b: int) -> int:\n    return a % b\n"

	tests := []struct {
		src        string
		a, b       string
		wantTrunc  string
		wantFloor  string
	}{
		{divSrc, "7", "2", "3", "3"},
		{divSrc, "-7", "2", "-3", "-4"},
		{divSrc, "7", "-2", "-3", "-4"},
		{divSrc, "-7", "-2", "3", "3"},
		{modSrc, "7", "2", "1", "1"},
		{modSrc, "-7", "2", "-1", "1"},
		{modSrc, "7", "-2", "1", "-1"},
		{modSrc, "-7", "-2", "-1", "-1"},
	}

	for _, tt := range tests {
		if got := call(t, tt.src, policy.DivisionTrunc, tt.a, tt.b); got != tt.wantTrunc {
			t.Errorf("trunc (%s, %s) = %s, want %s", tt.a, tt.b, got, tt.wantTrunc)
		}
		if got := call(t, tt.src, policy.DivisionFloor, tt.a, tt.b); got != tt.wantFloor {
			t.Errorf("floor (%s, %s) = %s, want %s", tt.a, tt.b, got, tt.wantFloor)
		}
	}
}

func TestEvalRuntimeErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		args []string
		want string
	}{
		{
			"integer division by zero",
			"def f(a: int, b: int) -> int:\n    return a // b\n",
			[]string{"1", "0"}, "integer division by zero",
		},
		{
			"integer modulo by zero",
			"def f(a: int, b: int) -> int:\n    return a % b\n",
			[]string{"1", "0"}, "integer modulo by zero",
		},
		{
			"index out of range",
			"def f(i: int) -> int:\n    xs = [1, 2]\n    return xs[i]\n",
			[]string{"5"}, "index 5 out of range for list of length 2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewEvaluator(compile(t, tt.src), policy.Default()).Call(tt.args)
			if err == nil {
				t.Fatal("expected a runtime error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want it to contain %q", err, tt.want)
			}
		})
	}
}

func TestEvalFloatDivisionByZero(t *testing.T) {
	// True division follows the targets: IEEE infinities, not an error.
	got := call(t, "def f(a: float, b: float):\n    return a / b\n", policy.DivisionTrunc, "1", "0")
	if got != "+Inf" {
		t.Errorf("result = %q, want +Inf", got)
	}
}

func TestEvalArgumentParsing(t *testing.T) {
	ev := NewEvaluator(compile(t, "def f(a: int) -> int:\n    return a\n"), policy.Default())

	if _, err := ev.Call([]string{"1", "2"}); err == nil {
		t.Error("expected an arity error")
	}
	if _, err := ev.Call([]string{"nope"}); err == nil {
		t.Error("expected an int parse error")
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		value Value
		want  string
	}{
		{int64(-42), "-42"},
		{float64(2.5), "2.5"},
		{true, "true"},
		{false, "false"},
		{"text", "text"},
		{[]Value{int64(1), int64(2)}, "[1, 2]"},
	}

	for _, tt := range tests {
		if got := Format(tt.value); got != tt.want {
			t.Errorf("Format(%v) = %q, want %q", tt.value, got, tt.want)
		}
	}
}
