package lower

import (
	"testing"

	"rrt/mir"
	"rrt/syntax"
	"rrt/types"
	"rrt/walk"
)

// lowerSrc runs the front half of the pipeline on src and lowers the result.
func lowerSrc(t *testing.T, src string) *mir.FuncDef {
	t.Helper()

	def, err := syntax.ParseFunction(src, "")
	if err != nil {
		t.Fatalf("unexpected parse error: %s", err)
	}
	if err := walk.WalkFunction(def); err != nil {
		t.Fatalf("unexpected walk error: %s", err)
	}

	return Lower(def)
}

// returnValue extracts the value of the trailing return statement.
func returnValue(t *testing.T, fn *mir.FuncDef) mir.Expr {
	t.Helper()

	ret, ok := fn.Body[len(fn.Body)-1].(*mir.Return)
	if !ok {
		t.Fatalf("last statement is %T, want *mir.Return", fn.Body[len(fn.Body)-1])
	}

	return ret.Value
}

func TestLowerFunctionHeader(t *testing.T) {
	fn := lowerSrc(t, "def halve(x):\n    \"\"\"Half of x.\"\"\"\n    return x / 2\n")

	if fn.Name != "halve" {
		t.Errorf("name = %q, want halve", fn.Name)
	}
	if fn.Doc != "Half of x." {
		t.Errorf("doc = %q", fn.Doc)
	}
	if len(fn.Params) != 1 || !types.Equals(fn.Params[0].Type, types.PrimFloat64) {
		t.Errorf("params = %v, want one float param", fn.Params)
	}
	if !types.Equals(fn.ReturnType, types.PrimFloat64) {
		t.Errorf("return type = %s, want float", fn.ReturnType.Repr())
	}
}

func TestLowerDivisionCastsOperands(t *testing.T) {
	fn := lowerSrc(t, "def f(a: int, b: int):\n    return a / b\n")

	bop, ok := returnValue(t, fn).(*mir.BinaryExpr)
	if !ok || bop.OpCode != mir.OCDiv {
		t.Fatalf("return value is not a division: %#v", returnValue(t, fn))
	}

	for _, side := range []mir.Expr{bop.Lhs, bop.Rhs} {
		cast, ok := side.(*mir.CastExpr)
		if !ok {
			t.Fatalf("division operand is %T, want *mir.CastExpr", side)
		}
		if !types.Equals(cast.DestType, types.PrimFloat64) {
			t.Errorf("cast target = %s, want float", cast.DestType.Repr())
		}
	}
}

func TestLowerMixedArithPromotes(t *testing.T) {
	fn := lowerSrc(t, "def f(a: int, x: float) -> float:\n    return a + x\n")

	bop := returnValue(t, fn).(*mir.BinaryExpr)
	if !types.Equals(bop.ResultType, types.PrimFloat64) {
		t.Fatalf("result type = %s, want float", bop.ResultType.Repr())
	}

	// Only the int side needs a promotion cast.
	if _, ok := bop.Lhs.(*mir.CastExpr); !ok {
		t.Errorf("int operand is %T, want *mir.CastExpr", bop.Lhs)
	}
	if _, ok := bop.Rhs.(*mir.CastExpr); ok {
		t.Error("float operand should not be cast")
	}
}

func TestLowerConversionBuiltinsBecomeCasts(t *testing.T) {
	fn := lowerSrc(t, "def f(x: float) -> int:\n    return int(x)\n")

	cast, ok := returnValue(t, fn).(*mir.CastExpr)
	if !ok {
		t.Fatalf("return value is %T, want *mir.CastExpr", returnValue(t, fn))
	}
	if !types.Equals(cast.DestType, types.PrimInt64) {
		t.Errorf("cast target = %s, want int", cast.DestType.Repr())
	}

	// int(x) on an already-int value needs no cast at all.
	fn = lowerSrc(t, "def g(x: int) -> int:\n    return int(x)\n")
	if _, ok := returnValue(t, fn).(*mir.Identifier); !ok {
		t.Errorf("redundant conversion survived lowering: %#v", returnValue(t, fn))
	}
}

func TestLowerMinMaxFoldsToBinaryCalls(t *testing.T) {
	fn := lowerSrc(t, "def f(a: int, b: int, c: int) -> int:\n    return min(a, b, c)\n")

	outer, ok := returnValue(t, fn).(*mir.BuiltinCall)
	if !ok || outer.Builtin != "min" {
		t.Fatalf("return value is not a min call: %#v", returnValue(t, fn))
	}
	if len(outer.Args) != 2 {
		t.Fatalf("outer arg count = %d, want 2", len(outer.Args))
	}

	inner, ok := outer.Args[0].(*mir.BuiltinCall)
	if !ok || inner.Builtin != "min" || len(inner.Args) != 2 {
		t.Errorf("left fold is wrong: %#v", outer.Args[0])
	}
}

func TestLowerDeclarationsAndAssignments(t *testing.T) {
	fn := lowerSrc(t, "def f(a: int) -> int:\n    x = a\n    x = x + 1\n    return x\n")

	if _, ok := fn.Body[0].(*mir.VarDecl); !ok {
		t.Errorf("first assignment is %T, want *mir.VarDecl", fn.Body[0])
	}
	if _, ok := fn.Body[1].(*mir.Assign); !ok {
		t.Errorf("second assignment is %T, want *mir.Assign", fn.Body[1])
	}
}

func TestLowerDropsPureStatements(t *testing.T) {
	fn := lowerSrc(t, "def f(a: int) -> int:\n    abs(a)\n    pass\n    return a\n")

	if len(fn.Body) != 1 {
		t.Fatalf("body length = %d, want 1", len(fn.Body))
	}
	if _, ok := fn.Body[0].(*mir.Return); !ok {
		t.Errorf("surviving statement is %T, want *mir.Return", fn.Body[0])
	}
}

func TestLowerArrayLitElementPromotion(t *testing.T) {
	fn := lowerSrc(t, "def f(i: int) -> float:\n    xs = [1, 2.5]\n    return xs[i]\n")

	decl := fn.Body[0].(*mir.VarDecl)
	lit, ok := decl.Initializer.(*mir.ArrayLit)
	if !ok {
		t.Fatalf("initializer is %T, want *mir.ArrayLit", decl.Initializer)
	}
	if !types.Equals(lit.ArrType.ElemType, types.PrimFloat64) {
		t.Errorf("element type = %s, want float", lit.ArrType.ElemType.Repr())
	}
	if _, ok := lit.Elems[0].(*mir.CastExpr); !ok {
		t.Errorf("int element is %T, want *mir.CastExpr", lit.Elems[0])
	}
}

func TestLowerUnaryOps(t *testing.T) {
	fn := lowerSrc(t, "def f(a: int) -> int:\n    return -a\n")

	uop, ok := returnValue(t, fn).(*mir.UnaryExpr)
	if !ok || uop.OpCode != mir.OCNeg {
		t.Fatalf("return value is not a negation: %#v", returnValue(t, fn))
	}

	// Unary plus is the identity.
	fn = lowerSrc(t, "def g(a: int) -> int:\n    return +a\n")
	if _, ok := returnValue(t, fn).(*mir.Identifier); !ok {
		t.Errorf("unary plus survived lowering: %#v", returnValue(t, fn))
	}
}
