package eval

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"rrt/mir"
	"rrt/policy"
	"rrt/report"
	"rrt/types"
)

func (e *Evaluator) evalExpr(expr mir.Expr) Value {
	switch v := expr.(type) {
	case *mir.IntLit:
		return v.Value
	case *mir.FloatLit:
		return v.Value
	case *mir.BoolLit:
		return v.Value
	case *mir.StrLit:
		return v.Value
	case *mir.Identifier:
		return e.env[v.Name]
	case *mir.BinaryExpr:
		return e.evalBinaryExpr(v)
	case *mir.UnaryExpr:
		return e.evalUnaryExpr(v)
	case *mir.CastExpr:
		return e.evalCast(v)
	case *mir.BuiltinCall:
		return e.evalBuiltinCall(v)
	case *mir.IndexExpr:
		arr := e.evalExpr(v.Root).([]Value)
		return arr[e.checkIndex(v.Subsc, len(arr))]
	case *mir.ArrayLit:
		elems := make([]Value, len(v.Elems))
		for i, elem := range v.Elems {
			elems[i] = e.evalExpr(elem)
		}
		return elems
	default:
		report.ReportICE("eval: unknown MIR expression")
		return nil
	}
}

func (e *Evaluator) evalBinaryExpr(be *mir.BinaryExpr) Value {
	// And and Or short circuit; everything else is strict.
	switch be.OpCode {
	case mir.OCAnd:
		return e.evalExpr(be.Lhs).(bool) && e.evalExpr(be.Rhs).(bool)
	case mir.OCOr:
		return e.evalExpr(be.Lhs).(bool) || e.evalExpr(be.Rhs).(bool)
	}

	lhs, rhs := e.evalExpr(be.Lhs), e.evalExpr(be.Rhs)

	switch be.OpCode {
	case mir.OCAdd:
		switch l := lhs.(type) {
		case int64:
			return l + rhs.(int64)
		case float64:
			return l + rhs.(float64)
		case string:
			return l + rhs.(string)
		}
	case mir.OCSub:
		switch l := lhs.(type) {
		case int64:
			return l - rhs.(int64)
		case float64:
			return l - rhs.(float64)
		}
	case mir.OCMul:
		switch l := lhs.(type) {
		case int64:
			return l * rhs.(int64)
		case float64:
			return l * rhs.(float64)
		}
	case mir.OCDiv:
		// True division operands are always floats; dividing by zero yields
		// an infinity or NaN just as it does on the targets.
		return lhs.(float64) / rhs.(float64)
	case mir.OCFloorDiv:
		return e.intDiv(lhs.(int64), rhs.(int64))
	case mir.OCMod:
		return e.intMod(lhs.(int64), rhs.(int64))
	case mir.OCEq, mir.OCNEq, mir.OCLt, mir.OCLtEq, mir.OCGt, mir.OCGtEq:
		return evalCompare(be.OpCode, lhs, rhs)
	}

	report.ReportICE("eval: unknown binary op code")
	return nil
}

// intDiv applies `//` under the configured division rule.
func (e *Evaluator) intDiv(a, b int64) int64 {
	if b == 0 {
		panic(runtimeError{msg: "integer division by zero"})
	}

	q := a / b
	if e.division == policy.DivisionFloor && a%b != 0 && (a < 0) != (b < 0) {
		q--
	}

	return q
}

// intMod applies `%` under the configured division rule.
func (e *Evaluator) intMod(a, b int64) int64 {
	if b == 0 {
		panic(runtimeError{msg: "integer modulo by zero"})
	}

	m := a % b
	if e.division == policy.DivisionFloor && m != 0 && (m < 0) != (b < 0) {
		m += b
	}

	return m
}

func evalCompare(opCode int, lhs, rhs Value) bool {
	// Reduce ordering comparisons to a three-way result per operand type.
	var cmp int
	switch l := lhs.(type) {
	case int64:
		cmp = compareOrdered(l, rhs.(int64))
	case float64:
		r := rhs.(float64)
		switch {
		case l < r:
			cmp = -1
		case l > r:
			cmp = 1
		case l == r:
			cmp = 0
		default:
			// NaN compares false under every predicate except !=.
			return opCode == mir.OCNEq
		}
	case string:
		cmp = strings.Compare(l, rhs.(string))
	case bool:
		if l == rhs.(bool) {
			cmp = 0
		} else {
			cmp = 1
		}
	}

	switch opCode {
	case mir.OCEq:
		return cmp == 0
	case mir.OCNEq:
		return cmp != 0
	case mir.OCLt:
		return cmp < 0
	case mir.OCLtEq:
		return cmp <= 0
	case mir.OCGt:
		return cmp > 0
	default:
		return cmp >= 0
	}
}

func compareOrdered(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func (e *Evaluator) evalUnaryExpr(ue *mir.UnaryExpr) Value {
	operand := e.evalExpr(ue.Operand)

	switch ue.OpCode {
	case mir.OCNeg:
		switch v := operand.(type) {
		case int64:
			return -v
		case float64:
			return -v
		}
	case mir.OCNot:
		return !operand.(bool)
	}

	report.ReportICE("eval: unknown unary op code")
	return nil
}

func (e *Evaluator) evalCast(ce *mir.CastExpr) Value {
	src := e.evalExpr(ce.Src)

	switch {
	case types.IsPrim(ce.DestType, types.PrimFloat64):
		return float64(src.(int64))
	case types.IsPrim(ce.DestType, types.PrimInt64):
		// Conversion truncates toward zero on every target.
		return int64(src.(float64))
	default:
		report.ReportICE("eval: unrepresentable cast")
		return nil
	}
}

func (e *Evaluator) evalBuiltinCall(bc *mir.BuiltinCall) Value {
	switch bc.Builtin {
	case "abs":
		switch v := e.evalExpr(bc.Args[0]).(type) {
		case int64:
			if v < 0 {
				return -v
			}
			return v
		case float64:
			return math.Abs(v)
		}
	case "min", "max":
		lhs, rhs := e.evalExpr(bc.Args[0]), e.evalExpr(bc.Args[1])

		switch l := lhs.(type) {
		case int64:
			r := rhs.(int64)
			if (bc.Builtin == "min") == (l < r) {
				return l
			}
			return r
		case float64:
			if bc.Builtin == "min" {
				return math.Min(l, rhs.(float64))
			}
			return math.Max(l, rhs.(float64))
		}
	case "len":
		switch v := e.evalExpr(bc.Args[0]).(type) {
		case []Value:
			return int64(len(v))
		case string:
			return utf16Length(v)
		}
	case "str":
		return stringOf(e.evalExpr(bc.Args[0]))
	}

	report.ReportICE("eval: unknown builtin `%s`", bc.Builtin)
	return nil
}

// utf16Length counts UTF-16 code units, which is how the java target measures
// string length.
func utf16Length(s string) int64 {
	var n int64
	for _, c := range s {
		if c > 0xFFFF {
			n += 2
		} else {
			n++
		}
	}

	return n
}

// stringOf renders a value the way `str` does at runtime.
func stringOf(value Value) string {
	switch v := value.(type) {
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		// Shortest representation that round trips, with a decimal point kept
		// so whole values still read as floats.
		s := strconv.FormatFloat(v, 'g', -1, 64)
		if !strings.ContainsAny(s, ".eE") {
			s += ".0"
		}
		return s
	case bool:
		if v {
			return "true"
		}
		return "false"
	case string:
		return v
	default:
		report.ReportICE("eval: `str` applied to a list value")
		return fmt.Sprint(value)
	}
}
