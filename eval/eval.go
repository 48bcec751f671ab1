package eval

import (
	"fmt"
	"strconv"
	"strings"

	"rrt/mir"
	"rrt/policy"
	"rrt/report"
	"rrt/types"
)

// Value is a runtime value of the evaluator: int64, float64, bool, string,
// or []Value for arrays.
type Value interface{}

// Evaluator interprets a MIR function directly.  Its results are the
// reference every compiled target is checked against.
type Evaluator struct {
	fn       *mir.FuncDef
	division string

	// The flat variable environment of the current call.
	env map[string]Value
}

// NewEvaluator creates an evaluator for fn under the division rule of pol.
func NewEvaluator(fn *mir.FuncDef, pol *policy.Policy) *Evaluator {
	return &Evaluator{fn: fn, division: pol.Division}
}

// returnSignal unwinds statement execution when a return is reached.
type returnSignal struct {
	value Value
}

// runtimeError unwinds execution on a data-dependent failure such as
// division by zero.
type runtimeError struct {
	msg string
}

// Call evaluates the function on the given argument strings.  Each argument
// is parsed by parameter type exactly the way the target drivers parse argv.
func (e *Evaluator) Call(args []string) (result Value, err error) {
	if len(args) != len(e.fn.Params) {
		return nil, fmt.Errorf("expected %d argument(s), got %d", len(e.fn.Params), len(args))
	}

	e.env = make(map[string]Value)
	for i, param := range e.fn.Params {
		value, perr := parseArg(args[i], param.Type)
		if perr != nil {
			return nil, perr
		}

		e.env[param.Name] = value
	}

	// All variables are zero initialized up front, matching the hoisted
	// declarations the targets emit.
	for _, stmt := range e.fn.Body {
		e.zeroInitDecls(stmt)
	}

	defer func() {
		switch p := recover().(type) {
		case nil:
		case returnSignal:
			result = p.value
		case runtimeError:
			err = fmt.Errorf("%s", p.msg)
		default:
			panic(p)
		}
	}()

	e.execBlock(e.fn.Body)

	// The resolver guarantees every path returns.
	report.ReportICE("eval: function fell off the end without returning")
	return nil, nil
}

func (e *Evaluator) zeroInitDecls(stmt mir.Statement) {
	switch v := stmt.(type) {
	case *mir.VarDecl:
		e.env[v.Ident.Name] = zeroValue(v.Ident.IdType)
	case *mir.If:
		for _, branch := range v.Branches {
			for _, inner := range branch.Body {
				e.zeroInitDecls(inner)
			}
		}
		for _, inner := range v.ElseBody {
			e.zeroInitDecls(inner)
		}
	case *mir.While:
		for _, inner := range v.Body {
			e.zeroInitDecls(inner)
		}
	}
}

// zeroValue returns the zero value of a type.
func zeroValue(typ types.Type) Value {
	switch v := typ.(type) {
	case *types.ArrayType:
		elems := make([]Value, v.Len)
		for i := range elems {
			elems[i] = zeroValue(v.ElemType)
		}
		return elems
	default:
		switch typ {
		case types.PrimInt64:
			return int64(0)
		case types.PrimFloat64:
			return float64(0)
		case types.PrimBool:
			return false
		default:
			return ""
		}
	}
}

// parseArg parses one command-line argument by parameter type.
func parseArg(arg string, typ types.Type) (Value, error) {
	switch typ {
	case types.PrimInt64:
		value, err := strconv.ParseInt(arg, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("`%s` is not a valid int argument", arg)
		}
		return value, nil
	case types.PrimFloat64:
		value, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			return nil, fmt.Errorf("`%s` is not a valid float argument", arg)
		}
		return value, nil
	case types.PrimBool:
		return arg == "true", nil
	case types.PrimStr:
		return arg, nil
	default:
		return nil, fmt.Errorf("parameters of type %s cannot be passed on the command line", typ.Repr())
	}
}

/* -------------------------------------------------------------------------- */

func (e *Evaluator) execBlock(stmts []mir.Statement) {
	for _, stmt := range stmts {
		e.execStmt(stmt)
	}
}

func (e *Evaluator) execStmt(stmt mir.Statement) {
	switch v := stmt.(type) {
	case *mir.VarDecl:
		e.env[v.Ident.Name] = e.evalExpr(v.Initializer)
	case *mir.Assign:
		e.execAssign(v)
	case *mir.Return:
		panic(returnSignal{value: e.evalExpr(v.Value)})
	case *mir.If:
		for _, branch := range v.Branches {
			if e.evalExpr(branch.Cond).(bool) {
				e.execBlock(branch.Body)
				return
			}
		}

		if v.ElseBody != nil {
			e.execBlock(v.ElseBody)
		}
	case *mir.While:
		for e.evalExpr(v.Cond).(bool) {
			e.execBlock(v.Body)
		}
	default:
		report.ReportICE("eval: unknown MIR statement")
	}
}

func (e *Evaluator) execAssign(as *mir.Assign) {
	value := e.evalExpr(as.RHS)

	switch lhs := as.LHS.(type) {
	case *mir.Identifier:
		e.env[lhs.Name] = value
	case *mir.IndexExpr:
		arr := e.evalExpr(lhs.Root).([]Value)
		arr[e.checkIndex(lhs.Subsc, len(arr))] = value
	default:
		report.ReportICE("eval: invalid assignment target")
	}
}

// checkIndex evaluates a subscript and bounds checks it.
func (e *Evaluator) checkIndex(subsc mir.Expr, length int) int64 {
	index := e.evalExpr(subsc).(int64)
	if index < 0 || index >= int64(length) {
		panic(runtimeError{msg: fmt.Sprintf("index %d out of range for list of length %d", index, length)})
	}

	return index
}

/* -------------------------------------------------------------------------- */

// Format renders a result value in the canonical output format shared by the
// target drivers: decimal integers, lowercase bools, and floats formatted so
// they parse back to the same value.
func Format(value Value) string {
	switch v := value.(type) {
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case bool:
		if v {
			return "true"
		}
		return "false"
	case string:
		return v
	case []Value:
		elems := make([]string, len(v))
		for i, elem := range v {
			elems[i] = Format(elem)
		}
		return "[" + strings.Join(elems, ", ") + "]"
	default:
		report.ReportICE("eval: unformattable value")
		return ""
	}
}
