package codegen

import (
	"strings"
	"testing"

	"rrt/lower"
	"rrt/mir"
	"rrt/policy"
	"rrt/report"
	"rrt/syntax"
	"rrt/walk"
)

const gcdSrc = `def gcd(a: int, b: int) -> int:
    """Greatest common divisor."""
    while b != 0:
        t = b
        b = a % b
        a = t
    return a
`

// lowerSrc runs the front half of the pipeline on src.
func lowerSrc(t *testing.T, src string) *mir.FuncDef {
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

// generate translates src for the given target under the given division rule.
func generate(t *testing.T, target, division, src string) string {
	t.Helper()

	pol := policy.Default()
	pol.Division = division

	gen, err := New(target, pol)
	if err != nil {
		t.Fatalf("unexpected generator error: %s", err)
	}

	out, err := gen.Generate(lowerSrc(t, src))
	if err != nil {
		t.Fatalf("unexpected generation error: %s", err)
	}

	return out
}

func wantContains(t *testing.T, out string, wants ...string) {
	t.Helper()

	for _, want := range wants {
		if !strings.Contains(out, want) {
			t.Errorf("output does not contain %q:\n%s", want, out)
		}
	}
}

func TestNewRejectsUnknownTargets(t *testing.T) {
	if _, err := New("rust", policy.Default()); err == nil {
		t.Error("expected an error for an unknown target")
	}

	for _, target := range Targets() {
		if _, err := New(target, policy.Default()); err != nil {
			t.Errorf("target %s: unexpected error: %s", target, err)
		}
	}
}

func TestGenerationIsDeterministic(t *testing.T) {
	fn := lowerSrc(t, gcdSrc)

	for _, target := range Targets() {
		t.Run(target, func(t *testing.T) {
			pol := policy.Default()
			pol.Division = policy.DivisionFloor

			gen, err := New(target, pol)
			if err != nil {
				t.Fatalf("unexpected generator error: %s", err)
			}

			first, err := gen.Generate(fn)
			if err != nil {
				t.Fatalf("unexpected generation error: %s", err)
			}

			second, err := gen.Generate(fn)
			if err != nil {
				t.Fatalf("unexpected generation error: %s", err)
			}

			if first != second {
				t.Error("repeated generation produced different output")
			}
		})
	}
}

/* -------------------------------------------------------------------------- */

func TestCGeneratedShape(t *testing.T) {
	out := generate(t, "c99", policy.DivisionTrunc, gcdSrc)

	wantContains(t, out,
		"// Greatest common divisor.",
		"static int64_t gcd(int64_t a, int64_t b) {",
		"(a % b)",
		"int main(int argc, char **argv) {",
		"strtoll(argv[1], NULL, 10);",
		`printf("%lld\n", (long long)result);`,
	)

	if strings.Contains(out, "rrt_floordiv") {
		t.Error("trunc division should not emit the floor helpers")
	}
}

func TestCFloorDivisionHelpers(t *testing.T) {
	out := generate(t, "c99", policy.DivisionFloor, gcdSrc)

	wantContains(t, out, "static int64_t rrt_floormod(int64_t a, int64_t b) {", "rrt_floormod(a, b)")
}

func TestCHoistsNestedDeclarations(t *testing.T) {
	out := generate(t, "c99", policy.DivisionTrunc, gcdSrc)

	// t is first assigned inside the loop, so its declaration moves to the
	// top of the function with a zero initializer.
	wantContains(t, out, "int64_t t = 0;", "t = b;")

	if strings.Contains(out, "int64_t t = b;") {
		t.Error("hoisted variable was re-declared at its assignment site")
	}
}

func TestCIndexBoundsGuard(t *testing.T) {
	out := generate(t, "c99", policy.DivisionTrunc,
		"def second(i: int) -> int:\n    xs = [10, 20, 30]\n    return xs[i]\n")

	wantContains(t, out,
		"static int64_t rrt_checkidx(int64_t i, int64_t n) {",
		"xs[rrt_checkidx(i, 3)]",
	)

	if plain := generate(t, "c99", policy.DivisionTrunc, gcdSrc); strings.Contains(plain, "rrt_checkidx") {
		t.Error("a function without subscripts should not emit the bounds helper")
	}
}

func TestCRejectsStrValues(t *testing.T) {
	gen, _ := New("c99", policy.Default())

	_, err := gen.Generate(lowerSrc(t, "def f(s: str) -> int:\n    return len(s)\n"))
	if err == nil {
		t.Fatal("expected an unsupported type error")
	}

	terr, ok := err.(*report.TranslateError)
	if !ok {
		t.Fatalf("error is %T, want *report.TranslateError", err)
	}
	if terr.Kind != report.UnsupportedType {
		t.Errorf("kind = %s, want unsupported type", terr.Kind)
	}
	if !strings.Contains(terr.Message, "the c99 target does not support") {
		t.Errorf("message = %q", terr.Message)
	}
}

/* -------------------------------------------------------------------------- */

func TestJavaClassNaming(t *testing.T) {
	tests := []struct{ in, want string }{
		{"gcd", "Gcd"},
		{"add_mul", "AddMul"},
		{"first_n_primes", "FirstNPrimes"},
	}

	for _, tt := range tests {
		if got := className(tt.in); got != tt.want {
			t.Errorf("className(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}

	gen := &JavaGenerator{}
	if name := gen.FileName(lowerSrc(t, gcdSrc)); name != "Gcd.java" {
		t.Errorf("file name = %q, want Gcd.java", name)
	}
}

func TestJavaGeneratedShape(t *testing.T) {
	out := generate(t, "java", policy.DivisionFloor, gcdSrc)

	wantContains(t, out,
		"public final class Gcd {",
		"public static long gcd(long a, long b) {",
		"Math.floorMod(a, b)",
		"long t = 0L;",
		"public static void main(String[] args) {",
		"Long.parseLong(args[0]);",
	)
}

func TestJavaHoistsNestedListDeclarations(t *testing.T) {
	out := generate(t, "java", policy.DivisionTrunc,
		"def pick(c: bool) -> int:\n    if c:\n        xs = [1, 2]\n    return xs[0]\n")

	// A hoisted list starts zero filled like the other targets, never null.
	wantContains(t, out, "long[] xs = new long[2];", "xs = new long[]{1L, 2L};")

	if strings.Contains(out, "null") {
		t.Error("hoisted list declaration emitted null")
	}
}

func TestJavaStrComparison(t *testing.T) {
	out := generate(t, "java", policy.DivisionTrunc,
		"def same(a: str, b: str) -> bool:\n    return a == b\n")

	wantContains(t, out, "a.equals(b)", "String a = args[0];")
}

/* -------------------------------------------------------------------------- */

func TestLLVMGeneratedShape(t *testing.T) {
	out := generate(t, "llvm", policy.DivisionTrunc, gcdSrc)

	wantContains(t, out,
		"define i64 @gcd(i64 %a, i64 %b)",
		"define i32 @main(i32 %argc, i8** %argv)",
		"srem",
		"alloca i64",
		"declare i64 @strtoll",
	)
}

func TestLLVMFloorDivisionAdjusts(t *testing.T) {
	out := generate(t, "llvm", policy.DivisionFloor,
		"def d(a: int, b: int) -> int:\n    return a // b\n")

	// The floor rule adjusts the truncated quotient with a select.
	wantContains(t, out, "sdiv", "select i1")
}

func TestLLVMLogicShortCircuits(t *testing.T) {
	out := generate(t, "llvm", policy.DivisionTrunc,
		"def safe(a: int) -> bool:\n    return a != 0 and 10 // a > 1\n")

	// The division on the right only runs when the left operand holds, so the
	// operands merge through a phi instead of a strict `and`.
	wantContains(t, out, "phi i1", "sdiv")

	if strings.Contains(out, " = and i1") {
		t.Error("logical and was emitted as a strict bitwise and")
	}
}

func TestLLVMFloatOperations(t *testing.T) {
	out := generate(t, "llvm", policy.DivisionTrunc,
		"def half(x: float) -> float:\n    return x / 2\n")

	wantContains(t, out, "fdiv double", "declare double @strtod")
}
