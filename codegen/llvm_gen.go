package codegen

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	lltypes "github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"rrt/mir"
	"rrt/policy"
	"rrt/report"
	"rrt/types"
)

// LLVMGenerator emits a textual LLVM IR module: the translated function plus
// a `main` driver calling into the C runtime for argument parsing and
// printing.  Only scalar types are representable on this target.
type LLVMGenerator struct {
	division string

	fn  *mir.FuncDef
	mod *ir.Module

	llFunc *ir.Func

	// The block currently being generated into.
	block *ir.Block

	// The alloca backing each local variable.
	locals map[string]value.Value

	// Lazily created libc and intrinsic declarations by name.
	externs map[string]*ir.Func

	// Lazily created string constants by content.
	strGlobals map[string]*ir.Global
}

func (g *LLVMGenerator) Target() string {
	return "llvm"
}

func (g *LLVMGenerator) FileName(fn *mir.FuncDef) string {
	return fn.Name + ".ll"
}

func (g *LLVMGenerator) Generate(fn *mir.FuncDef) (src string, err error) {
	defer report.CatchErrors(&err)

	g.fn = fn
	g.mod = ir.NewModule()
	g.locals = make(map[string]value.Value)
	g.externs = make(map[string]*ir.Func)
	g.strGlobals = make(map[string]*ir.Global)

	g.genFunction()
	g.genDriver()

	return g.mod.String(), nil
}

/* -------------------------------------------------------------------------- */

// genFunction generates the translated function definition.
func (g *LLVMGenerator) genFunction() {
	params := make([]*ir.Param, len(g.fn.Params))
	for i, param := range g.fn.Params {
		params[i] = ir.NewParam(param.Name, g.convType(param.Type))
	}

	g.llFunc = g.mod.NewFunc(g.fn.Name, g.convType(g.fn.ReturnType), params...)
	g.block = g.llFunc.NewBlock("entry")

	// All variables live in entry allocas so nested declarations stay in
	// scope for the whole function.
	for i, param := range g.fn.Params {
		ptr := g.block.NewAlloca(g.convType(param.Type))
		g.block.NewStore(params[i], ptr)
		g.locals[param.Name] = ptr
	}

	for _, ident := range allDecls(g.fn.Body) {
		typ := g.convType(ident.IdType)
		ptr := g.block.NewAlloca(typ)
		g.block.NewStore(g.zeroValue(ident.IdType), ptr)
		g.locals[ident.Name] = ptr
	}

	g.genBlock(g.fn.Body)

	// Every path returns, so a live tail block is unreachable.
	if g.block.Term == nil {
		g.block.NewUnreachable()
	}
}

func (g *LLVMGenerator) genBlock(stmts []mir.Statement) {
	for _, stmt := range stmts {
		g.genStmt(stmt)
	}
}

func (g *LLVMGenerator) genStmt(stmt mir.Statement) {
	switch v := stmt.(type) {
	case *mir.VarDecl:
		// Generating the operand may move the current block, so it runs
		// before the block is read.
		value := g.genExpr(v.Initializer)
		g.block.NewStore(value, g.locals[v.Ident.Name])
	case *mir.Assign:
		ident, ok := v.LHS.(*mir.Identifier)
		if !ok {
			g.unsupported("list values")
		}

		value := g.genExpr(v.RHS)
		g.block.NewStore(value, g.locals[ident.Name])
	case *mir.Return:
		value := g.genExpr(v.Value)
		g.block.NewRet(value)
	case *mir.If:
		g.genIf(v)
	case *mir.While:
		g.genWhile(v)
	default:
		report.ReportICE("llvm: unknown MIR statement")
	}
}

func (g *LLVMGenerator) genIf(stmt *mir.If) {
	endBlock := g.llFunc.NewBlock("")

	for _, branch := range stmt.Branches {
		thenBlock := g.llFunc.NewBlock("")
		elseBlock := g.llFunc.NewBlock("")

		cond := g.genExpr(branch.Cond)
		g.block.NewCondBr(cond, thenBlock, elseBlock)

		g.block = thenBlock
		g.genBlock(branch.Body)
		if g.block.Term == nil {
			g.block.NewBr(endBlock)
		}

		g.block = elseBlock
	}

	if stmt.ElseBody != nil {
		g.genBlock(stmt.ElseBody)
	}
	if g.block.Term == nil {
		g.block.NewBr(endBlock)
	}

	g.block = endBlock
}

func (g *LLVMGenerator) genWhile(stmt *mir.While) {
	condBlock := g.llFunc.NewBlock("")
	bodyBlock := g.llFunc.NewBlock("")
	endBlock := g.llFunc.NewBlock("")

	g.block.NewBr(condBlock)

	g.block = condBlock
	cond := g.genExpr(stmt.Cond)
	g.block.NewCondBr(cond, bodyBlock, endBlock)

	g.block = bodyBlock
	g.genBlock(stmt.Body)
	if g.block.Term == nil {
		g.block.NewBr(condBlock)
	}

	g.block = endBlock
}

/* -------------------------------------------------------------------------- */

func (g *LLVMGenerator) genExpr(expr mir.Expr) value.Value {
	switch v := expr.(type) {
	case *mir.IntLit:
		return constant.NewInt(lltypes.I64, v.Value)
	case *mir.FloatLit:
		return constant.NewFloat(lltypes.Double, v.Value)
	case *mir.BoolLit:
		return constant.NewBool(v.Value)
	case *mir.StrLit:
		g.unsupported("str values")
		return nil
	case *mir.Identifier:
		return g.block.NewLoad(g.convType(v.IdType), g.locals[v.Name])
	case *mir.BinaryExpr:
		return g.genBinaryExpr(v)
	case *mir.UnaryExpr:
		return g.genUnaryExpr(v)
	case *mir.CastExpr:
		return g.genCast(v)
	case *mir.BuiltinCall:
		return g.genBuiltinCall(v)
	default:
		g.unsupported("list values")
		return nil
	}
}

func (g *LLVMGenerator) genBinaryExpr(be *mir.BinaryExpr) value.Value {
	// Logical operators short circuit: their right operand may only run when
	// the left operand has not already decided the result.
	if be.OpCode == mir.OCAnd || be.OpCode == mir.OCOr {
		return g.genShortCircuit(be)
	}

	lhs, rhs := g.genExpr(be.Lhs), g.genExpr(be.Rhs)
	isFloat := types.IsPrim(be.Lhs.Type(), types.PrimFloat64)

	switch be.OpCode {
	case mir.OCAdd:
		if isFloat {
			return g.block.NewFAdd(lhs, rhs)
		}
		return g.block.NewAdd(lhs, rhs)
	case mir.OCSub:
		if isFloat {
			return g.block.NewFSub(lhs, rhs)
		}
		return g.block.NewSub(lhs, rhs)
	case mir.OCMul:
		if isFloat {
			return g.block.NewFMul(lhs, rhs)
		}
		return g.block.NewMul(lhs, rhs)
	case mir.OCDiv:
		// True division operands are always lowered to doubles.
		return g.block.NewFDiv(lhs, rhs)
	case mir.OCFloorDiv:
		quot := g.block.NewSDiv(lhs, rhs)
		if g.division != policy.DivisionFloor {
			return quot
		}

		// Pull the quotient toward negative infinity when the remainder is
		// nonzero and the operand signs differ.
		rem := g.block.NewSRem(lhs, rhs)
		remNonzero := g.block.NewICmp(enum.IPredNE, rem, constant.NewInt(lltypes.I64, 0))
		signDiff := g.block.NewICmp(enum.IPredSLT, g.block.NewXor(lhs, rhs), constant.NewInt(lltypes.I64, 0))
		adjust := g.block.NewAnd(remNonzero, signDiff)
		return g.block.NewSelect(adjust, g.block.NewSub(quot, constant.NewInt(lltypes.I64, 1)), quot)
	case mir.OCMod:
		rem := g.block.NewSRem(lhs, rhs)
		if g.division != policy.DivisionFloor {
			return rem
		}

		remNonzero := g.block.NewICmp(enum.IPredNE, rem, constant.NewInt(lltypes.I64, 0))
		signDiff := g.block.NewICmp(enum.IPredSLT, g.block.NewXor(rem, rhs), constant.NewInt(lltypes.I64, 0))
		adjust := g.block.NewAnd(remNonzero, signDiff)
		return g.block.NewSelect(adjust, g.block.NewAdd(rem, rhs), rem)
	case mir.OCEq, mir.OCNEq, mir.OCLt, mir.OCLtEq, mir.OCGt, mir.OCGtEq:
		return g.genCompare(be.OpCode, lhs, rhs, isFloat)
	default:
		report.ReportICE("llvm: unknown binary op code")
		return nil
	}
}

// genShortCircuit lowers `and` and `or` with conditional branches so the
// right operand is skipped whenever the left operand decides the result.
func (g *LLVMGenerator) genShortCircuit(be *mir.BinaryExpr) value.Value {
	lhs := g.genExpr(be.Lhs)
	lhsExit := g.block

	rhsBlock := g.llFunc.NewBlock("")
	endBlock := g.llFunc.NewBlock("")

	if be.OpCode == mir.OCAnd {
		lhsExit.NewCondBr(lhs, rhsBlock, endBlock)
	} else {
		lhsExit.NewCondBr(lhs, endBlock, rhsBlock)
	}

	g.block = rhsBlock
	rhs := g.genExpr(be.Rhs)
	rhsExit := g.block
	rhsExit.NewBr(endBlock)

	g.block = endBlock
	return endBlock.NewPhi(ir.NewIncoming(lhs, lhsExit), ir.NewIncoming(rhs, rhsExit))
}

// intPreds and floatPreds map comparison op codes to their signed integer and
// ordered float predicates.
var intPreds = map[int]enum.IPred{
	mir.OCEq:   enum.IPredEQ,
	mir.OCNEq:  enum.IPredNE,
	mir.OCLt:   enum.IPredSLT,
	mir.OCLtEq: enum.IPredSLE,
	mir.OCGt:   enum.IPredSGT,
	mir.OCGtEq: enum.IPredSGE,
}

var floatPreds = map[int]enum.FPred{
	mir.OCEq:   enum.FPredOEQ,
	mir.OCNEq:  enum.FPredONE,
	mir.OCLt:   enum.FPredOLT,
	mir.OCLtEq: enum.FPredOLE,
	mir.OCGt:   enum.FPredOGT,
	mir.OCGtEq: enum.FPredOGE,
}

func (g *LLVMGenerator) genCompare(opCode int, lhs, rhs value.Value, isFloat bool) value.Value {
	if isFloat {
		return g.block.NewFCmp(floatPreds[opCode], lhs, rhs)
	}

	// Bool operands compare as i1, integers as i64.
	return g.block.NewICmp(intPreds[opCode], lhs, rhs)
}

func (g *LLVMGenerator) genUnaryExpr(ue *mir.UnaryExpr) value.Value {
	operand := g.genExpr(ue.Operand)

	switch ue.OpCode {
	case mir.OCNeg:
		if types.IsPrim(ue.ResultType, types.PrimFloat64) {
			return g.block.NewFNeg(operand)
		}
		return g.block.NewSub(constant.NewInt(lltypes.I64, 0), operand)
	case mir.OCNot:
		return g.block.NewXor(operand, constant.True)
	default:
		report.ReportICE("llvm: unknown unary op code")
		return nil
	}
}

func (g *LLVMGenerator) genCast(ce *mir.CastExpr) value.Value {
	src := g.genExpr(ce.Src)

	switch {
	case types.IsPrim(ce.Src.Type(), types.PrimInt64) && types.IsPrim(ce.DestType, types.PrimFloat64):
		return g.block.NewSIToFP(src, lltypes.Double)
	case types.IsPrim(ce.Src.Type(), types.PrimFloat64) && types.IsPrim(ce.DestType, types.PrimInt64):
		return g.block.NewFPToSI(src, lltypes.I64)
	default:
		report.ReportICE("llvm: unrepresentable cast")
		return nil
	}
}

func (g *LLVMGenerator) genBuiltinCall(bc *mir.BuiltinCall) value.Value {
	switch bc.Builtin {
	case "abs":
		arg := g.genExpr(bc.Args[0])
		if types.IsPrim(bc.ResultType, types.PrimFloat64) {
			return g.block.NewCall(g.getUnaryIntrinsic("llvm.fabs.f64"), arg)
		}

		neg := g.block.NewSub(constant.NewInt(lltypes.I64, 0), arg)
		isNeg := g.block.NewICmp(enum.IPredSLT, arg, constant.NewInt(lltypes.I64, 0))
		return g.block.NewSelect(isNeg, neg, arg)
	case "min", "max":
		lhs, rhs := g.genExpr(bc.Args[0]), g.genExpr(bc.Args[1])

		if types.IsPrim(bc.ResultType, types.PrimFloat64) {
			name := "llvm.minnum.f64"
			if bc.Builtin == "max" {
				name = "llvm.maxnum.f64"
			}
			return g.block.NewCall(g.getBinaryIntrinsic(name), lhs, rhs)
		}

		pred := enum.IPredSLT
		if bc.Builtin == "max" {
			pred = enum.IPredSGT
		}
		return g.block.NewSelect(g.block.NewICmp(pred, lhs, rhs), lhs, rhs)
	case "len":
		if arrType, ok := bc.Args[0].Type().(*types.ArrayType); ok {
			return constant.NewInt(lltypes.I64, int64(arrType.Len))
		}

		g.unsupported("`len` of str values")
		return nil
	case "str":
		g.unsupported("the `str` builtin")
		return nil
	default:
		report.ReportICE("llvm: unknown builtin `%s`", bc.Builtin)
		return nil
	}
}

/* -------------------------------------------------------------------------- */

// genDriver generates the `main` function parsing argv by parameter type and
// printing the result in the canonical output format.
func (g *LLVMGenerator) genDriver() {
	i8Ptr := lltypes.NewPointer(lltypes.I8)
	argvType := lltypes.NewPointer(i8Ptr)

	argcParam := ir.NewParam("argc", lltypes.I32)
	argvParam := ir.NewParam("argv", argvType)
	main := g.mod.NewFunc("main", lltypes.I32, argcParam, argvParam)

	g.block = main.NewBlock("entry")

	badArgc := main.NewBlock("")
	parse := main.NewBlock("")

	wrongCount := g.block.NewICmp(enum.IPredNE, argcParam, constant.NewInt(lltypes.I32, int64(len(g.fn.Params)+1)))
	g.block.NewCondBr(wrongCount, badArgc, parse)

	badArgc.NewRet(constant.NewInt(lltypes.I32, 2))

	g.block = parse

	args := make([]value.Value, len(g.fn.Params))
	for i, param := range g.fn.Params {
		argPtr := g.block.NewGetElementPtr(i8Ptr, argvParam, constant.NewInt(lltypes.I64, int64(i+1)))
		arg := g.block.NewLoad(i8Ptr, argPtr)

		switch param.Type {
		case types.PrimInt64:
			args[i] = g.block.NewCall(g.getStrtoll(), arg,
				constant.NewNull(argvType), constant.NewInt(lltypes.I32, 10))
		case types.PrimFloat64:
			args[i] = g.block.NewCall(g.getStrtod(), arg, constant.NewNull(argvType))
		case types.PrimBool:
			cmp := g.block.NewCall(g.getStrcmp(), arg, g.strPtr("true"))
			args[i] = g.block.NewICmp(enum.IPredEQ, cmp, constant.NewInt(lltypes.I32, 0))
		default:
			g.unsupported("parameters of type %s", param.Type.Repr())
		}
	}

	result := g.block.NewCall(g.llFunc, args...)

	switch g.fn.ReturnType {
	case types.PrimInt64:
		g.block.NewCall(g.getPrintf(), g.strPtr("%lld\n"), result)
	case types.PrimFloat64:
		g.block.NewCall(g.getPrintf(), g.strPtr("%.17g\n"), result)
	case types.PrimBool:
		text := g.block.NewSelect(result, g.strPtr("true"), g.strPtr("false"))
		g.block.NewCall(g.getPrintf(), g.strPtr("%s\n"), text)
	default:
		g.unsupported("return values of type %s", g.fn.ReturnType.Repr())
	}

	g.block.NewRet(constant.NewInt(lltypes.I32, 0))
}

/* -------------------------------------------------------------------------- */

// strPtr returns an i8 pointer to a null-terminated global holding text,
// creating the global on first use.
func (g *LLVMGenerator) strPtr(text string) constant.Constant {
	global, ok := g.strGlobals[text]
	if !ok {
		data := constant.NewCharArrayFromString(text + "\x00")
		global = g.mod.NewGlobalDef("", data)
		global.Immutable = true
		g.strGlobals[text] = global
	}

	zero := constant.NewInt(lltypes.I64, 0)
	return constant.NewGetElementPtr(global.ContentType, global, zero, zero)
}

// getExtern returns the named external function declaration, creating it on
// first use via build.
func (g *LLVMGenerator) getExtern(name string, build func() *ir.Func) *ir.Func {
	if fn, ok := g.externs[name]; ok {
		return fn
	}

	fn := build()
	g.externs[name] = fn
	return fn
}

func (g *LLVMGenerator) getStrtoll() *ir.Func {
	return g.getExtern("strtoll", func() *ir.Func {
		i8Ptr := lltypes.NewPointer(lltypes.I8)
		return g.mod.NewFunc("strtoll", lltypes.I64,
			ir.NewParam("", i8Ptr), ir.NewParam("", lltypes.NewPointer(i8Ptr)), ir.NewParam("", lltypes.I32))
	})
}

func (g *LLVMGenerator) getStrtod() *ir.Func {
	return g.getExtern("strtod", func() *ir.Func {
		i8Ptr := lltypes.NewPointer(lltypes.I8)
		return g.mod.NewFunc("strtod", lltypes.Double,
			ir.NewParam("", i8Ptr), ir.NewParam("", lltypes.NewPointer(i8Ptr)))
	})
}

func (g *LLVMGenerator) getStrcmp() *ir.Func {
	return g.getExtern("strcmp", func() *ir.Func {
		i8Ptr := lltypes.NewPointer(lltypes.I8)
		return g.mod.NewFunc("strcmp", lltypes.I32,
			ir.NewParam("", i8Ptr), ir.NewParam("", i8Ptr))
	})
}

func (g *LLVMGenerator) getPrintf() *ir.Func {
	return g.getExtern("printf", func() *ir.Func {
		fn := g.mod.NewFunc("printf", lltypes.I32,
			ir.NewParam("", lltypes.NewPointer(lltypes.I8)))
		fn.Sig.Variadic = true
		return fn
	})
}

func (g *LLVMGenerator) getUnaryIntrinsic(name string) *ir.Func {
	return g.getExtern(name, func() *ir.Func {
		return g.mod.NewFunc(name, lltypes.Double, ir.NewParam("", lltypes.Double))
	})
}

func (g *LLVMGenerator) getBinaryIntrinsic(name string) *ir.Func {
	return g.getExtern(name, func() *ir.Func {
		return g.mod.NewFunc(name, lltypes.Double,
			ir.NewParam("", lltypes.Double), ir.NewParam("", lltypes.Double))
	})
}

/* -------------------------------------------------------------------------- */

// convType converts a MIR type to its LLVM representation.
func (g *LLVMGenerator) convType(typ types.Type) lltypes.Type {
	switch typ {
	case types.PrimInt64:
		return lltypes.I64
	case types.PrimFloat64:
		return lltypes.Double
	case types.PrimBool:
		return lltypes.I1
	case types.PrimStr:
		g.unsupported("str values")
		return nil
	default:
		g.unsupported("list values")
		return nil
	}
}

// zeroValue returns the LLVM zero value for a scalar type.
func (g *LLVMGenerator) zeroValue(typ types.Type) constant.Constant {
	switch typ {
	case types.PrimInt64:
		return constant.NewInt(lltypes.I64, 0)
	case types.PrimFloat64:
		return constant.NewFloat(lltypes.Double, 0)
	case types.PrimBool:
		return constant.False
	default:
		g.unsupported("list values")
		return nil
	}
}

// unsupported raises an unsupported type error for this target.
func (g *LLVMGenerator) unsupported(msg string, args ...interface{}) {
	panic(report.Raise(report.UnsupportedType, g.fn.Span,
		"the llvm target does not support "+msg, args...))
}
