package ir

import (
	"github.com/virexlang/virex/internal/ast"
	"github.com/virexlang/virex/internal/loader"
	"github.com/virexlang/virex/internal/mangle"
	"github.com/virexlang/virex/internal/symtable"
	"github.com/virexlang/virex/internal/types"
)

// genExpr lowers an analyzed expression to the operand holding its
// value, emitting whatever instructions are needed into ctx.g.current.
func (ctx *genCtx) genExpr(e ast.Expr) Operand {
	switch n := e.(type) {
	case *ast.IntLit:
		return ConstInt(n.Value)
	case *ast.FloatLit:
		return ConstFloat(n.Value)
	case *ast.BoolLit:
		return ConstBool(n.Value)
	case *ast.StringLit:
		return ConstString(n.Value)
	case *ast.NullLit:
		return ConstNull()
	case *ast.Ident:
		return ctx.genIdent(n)
	case *ast.BinaryExpr:
		return ctx.genBinary(n)
	case *ast.UnaryExpr:
		return ctx.genUnary(n)
	case *ast.AssignExpr:
		return ctx.genAssign(n)
	case *ast.CallExpr:
		return ctx.genCall(n)
	case *ast.IndexExpr:
		return ctx.genLoadIndex(n)
	case *ast.SliceExpr:
		return ctx.genSlice(n)
	case *ast.MemberExpr:
		return ctx.genLoadMember(n)
	case *ast.ArrowExpr:
		return ctx.genLoadArrow(n)
	case *ast.CastExpr:
		return ctx.genCast(n)
	case *ast.ResultCtorExpr:
		return ctx.genResultCtor(n)
	}
	return ctx.typedTemp("void *")
}

// genIdent resolves a bare name: a local/parameter through the flattened
// genScope, an enum variant constant, or a module-global variable.
func (ctx *genCtx) genIdent(n *ast.Ident) Operand {
	if name, ok := ctx.scope.lookup(n.Name); ok {
		return Local(name)
	}
	if sym, ok := ctx.m.Scope.Lookup(n.Name); ok {
		if sym.Kind == symtable.KindConstant {
			return ConstInt(int64(sym.EnumValue))
		}
		if sym.Kind == symtable.KindVariable {
			return Global(mangle.Module(ctx.m.Name, n.Name))
		}
	}
	return Global(n.Name)
}

func (ctx *genCtx) emit(instr Instruction) { ctx.g.emit(instr) }

// typedTemp allocates a new temporary and records its C type at the
// matching index of the current function's TempTypes, so every temp id
// the generator ever hands out has a non-empty entry — §8's invariant
// that temp_types[id] is defined for every temp actually used. Falls
// back to "void *" when the caller couldn't resolve a concrete type
// (an unresolved callee, or a node sema left untyped).
func (ctx *genCtx) typedTemp(cType string) Operand {
	if cType == "" {
		cType = "void *"
	}
	o := ctx.g.newTemp()
	ctx.g.current.TempTypes = append(ctx.g.current.TempTypes, cType)
	return o
}

var binOpTable = map[string]Op{
	"+": OpAdd, "-": OpSub, "*": OpMul, "/": OpDiv, "%": OpMod,
	"<": OpCmpLT, "<=": OpCmpLE, ">": OpCmpGT, ">=": OpCmpGE,
	"==": OpCmpEQ, "!=": OpCmpNE,
}

// genBinary lowers arithmetic/comparison operators directly; && and ||
// lower to a short-circuiting jump so the right operand is only
// evaluated when it can affect the result.
func (ctx *genCtx) genBinary(n *ast.BinaryExpr) Operand {
	if n.Op == "&&" || n.Op == "||" {
		return ctx.genShortCircuit(n)
	}
	l := ctx.genExpr(n.Left)
	r := ctx.genExpr(n.Right)
	op, ok := binOpTable[n.Op]
	if !ok {
		op = OpAdd
	}
	dst := ctx.typedTemp(ctx.ctype(ast.Resolved(n)))
	ctx.emit(Instruction{Op: op, Dst: dst, HasDst: true, Args: []Operand{l, r}})
	return dst
}

func (ctx *genCtx) genShortCircuit(n *ast.BinaryExpr) Operand {
	l := ctx.genExpr(n.Left)
	dst := ctx.typedTemp(ctx.ctype(ast.Resolved(n)))
	ctx.emit(Instruction{Op: OpAssign, Dst: dst, HasDst: true, Args: []Operand{l}})
	end := ctx.g.newLabel("sc_end")
	if n.Op == "&&" {
		ctx.emit(Instruction{Op: OpJumpFalse, Args: []Operand{dst}, Target: end})
	} else {
		ctx.emit(Instruction{Op: OpJumpTrue, Args: []Operand{dst}, Target: end})
	}
	r := ctx.genExpr(n.Right)
	ctx.emit(Instruction{Op: OpAssign, Dst: dst, HasDst: true, Args: []Operand{r}})
	ctx.emit(Instruction{Op: OpLabel, Target: end})
	return dst
}

func (ctx *genCtx) genUnary(n *ast.UnaryExpr) Operand {
	switch n.Op {
	case "-":
		v := ctx.genExpr(n.Operand)
		dst := ctx.typedTemp(ctx.ctype(ast.Resolved(n)))
		ctx.emit(Instruction{Op: OpNeg, Dst: dst, HasDst: true, Args: []Operand{v}})
		return dst
	case "!":
		v := ctx.genExpr(n.Operand)
		dst := ctx.typedTemp(ctx.ctype(ast.Resolved(n)))
		ctx.emit(Instruction{Op: OpNot, Dst: dst, HasDst: true, Args: []Operand{v}})
		return dst
	case "&":
		return ctx.genAddr(n.Operand)
	case "*":
		v := ctx.genExpr(n.Operand)
		dst := ctx.typedTemp(ctx.ctype(ast.Resolved(n)))
		ctx.emit(Instruction{Op: OpLoad, Dst: dst, HasDst: true, Args: []Operand{v}})
		return dst
	}
	return ctx.genExpr(n.Operand)
}

// genAddr lowers an addressable expression to a pointer operand holding
// its address, for `&x`, an assignment target, or a match capture.
func (ctx *genCtx) genAddr(e ast.Expr) Operand {
	switch n := e.(type) {
	case *ast.Ident:
		base := ctx.genIdent(n)
		dst := ctx.typedTemp(ctx.ctype(types.Pointer(ast.Resolved(n), false)))
		ctx.emit(Instruction{Op: OpAddrOf, Dst: dst, HasDst: true, Args: []Operand{base}})
		return dst
	case *ast.IndexExpr:
		base := ctx.genExpr(n.Base)
		idx := ctx.genExpr(n.Index)
		dst := ctx.typedTemp(ctx.ctype(types.Pointer(ast.Resolved(n), false)))
		ctx.emit(Instruction{Op: OpIndexAddr, Dst: dst, HasDst: true, Args: []Operand{base, idx}})
		return dst
	case *ast.MemberExpr:
		base := ctx.genExpr(n.Base)
		dst := ctx.typedTemp(ctx.ctype(types.Pointer(ast.Resolved(n), false)))
		ctx.emit(Instruction{Op: OpFieldAddr, Dst: dst, HasDst: true, Args: []Operand{base}, Field: n.Field})
		return dst
	case *ast.ArrowExpr:
		base := ctx.genExpr(n.Base)
		dst := ctx.typedTemp(ctx.ctype(types.Pointer(ast.Resolved(n), false)))
		ctx.emit(Instruction{Op: OpFieldAddr, Dst: dst, HasDst: true, Args: []Operand{base}, Field: n.Field})
		return dst
	}
	return ctx.genExpr(e)
}

// genAssign lowers `left = right`: a direct OpAssign to the target local/
// global for an Ident target, or a store through its address otherwise.
func (ctx *genCtx) genAssign(n *ast.AssignExpr) Operand {
	rv := ctx.genExpr(n.Right)
	if left, ok := n.Left.(*ast.Ident); ok {
		target := ctx.genIdent(left)
		ctx.emit(Instruction{Op: OpAssign, Dst: target, HasDst: true, Args: []Operand{rv}})
		return target
	}
	addr := ctx.genAddr(n.Left)
	ctx.emit(Instruction{Op: OpStore, Args: []Operand{addr, rv}})
	return rv
}

// resolveCallee resolves a call's Callee expression to the function
// symbol it names, the module alias used at the call site ("" for a free
// call), and the loader.Module that actually declares it.
func (ctx *genCtx) resolveCallee(callee ast.Expr) (*symtable.Symbol, string, *loader.Module) {
	switch c := callee.(type) {
	case *ast.Ident:
		sym, ok := ctx.m.Scope.Lookup(c.Name)
		if !ok {
			return nil, "", nil
		}
		return sym, "", ctx.m
	case *ast.MemberExpr:
		base, ok := c.Base.(*ast.Ident)
		if !ok {
			return nil, "", nil
		}
		modSym, ok := ctx.m.Scope.Lookup(base.Name)
		if !ok || modSym.Kind != symtable.KindModule {
			return nil, "", nil
		}
		sym, ok := modSym.ModuleTable.LookupCurrent(c.Field)
		if !ok {
			return nil, "", nil
		}
		return sym, base.Name, ctx.g.scopeToModule[modSym.ModuleTable]
	}
	return nil, "", nil
}

// callDst allocates the destination operand for a call's result, or
// reports no destination for a call returning void.
func (ctx *genCtx) callDst(sym *symtable.Symbol) (Operand, bool) {
	if isVoidType(sym.Type.Return) {
		return Operand{}, false
	}
	return ctx.typedTemp(ctx.ctype(sym.Type.Return)), true
}

// printSuffix names the mangled overload of print/println that handles
// argument type t, per §5's generic-builtin dispatch.
func printSuffix(t *types.Type) string {
	if t == nil {
		return "i32"
	}
	if t.Kind == types.KindSlice && t.Elem != nil && t.Elem.Kind == types.KindPrimitive && t.Elem.Prim == types.U8 {
		return "str"
	}
	if t.Kind == types.KindPrimitive {
		return t.Prim.String()
	}
	return "ptr"
}

// genCall lowers a call expression, implementing §5's special-case call
// dispatch (generic print/println suffixing, io.print/io.println mapping
// to the runtime helpers, extern calls keeping their unmangled C name)
// ahead of the general case: a non-generic call to the mangled function
// name, or a generic call routed through instantiateFunc.
func (ctx *genCtx) genCall(n *ast.CallExpr) Operand {
	sym, qualAlias, owner := ctx.resolveCallee(n.Callee)
	args := make([]Operand, len(n.Args))
	for i, a := range n.Args {
		args[i] = ctx.genExpr(a)
	}
	if sym == nil {
		return ctx.typedTemp("void *")
	}

	if qualAlias == "" && (sym.Name == "print" || sym.Name == "println") && len(n.Args) > 0 {
		callee := sym.Name + "_" + printSuffix(ast.Resolved(n.Args[0]))
		dst, hasDst := ctx.callDst(sym)
		ctx.emit(Instruction{Op: OpCall, Dst: dst, HasDst: hasDst, Args: args, Callee: callee})
		return dst
	}
	if qualAlias == "io" && (sym.Name == "print" || sym.Name == "println") {
		dst, hasDst := ctx.callDst(sym)
		ctx.emit(Instruction{Op: OpCall, Dst: dst, HasDst: hasDst, Args: args, Callee: "virex_" + sym.Name})
		return dst
	}

	var calleeName string
	switch {
	case sym.Flags.Extern:
		calleeName = sym.Name
	case len(sym.GenericParams) > 0 && owner != nil:
		argTypes := n.InferredArgTypes
		if len(argTypes) == 0 && len(n.TypeArgs) > 0 {
			argTypes = make([]*types.Type, len(n.TypeArgs))
			for i, te := range n.TypeArgs {
				argTypes[i] = ctx.g.analyzer.ResolveType(owner, te, ctx.genericParams)
			}
		}
		calleeName = ctx.g.instantiateFunc(owner, sym, argTypes).Name
	case owner != nil:
		calleeName = mangle.Function(owner.Name, sym.Name, owner == ctx.g.project.Main())
	default:
		calleeName = mangle.Function(ctx.m.Name, sym.Name, ctx.m == ctx.g.project.Main())
	}

	dst, hasDst := ctx.callDst(sym)
	ctx.emit(Instruction{Op: OpCall, Dst: dst, HasDst: hasDst, Args: args, Callee: calleeName})
	return dst
}

func (ctx *genCtx) genLoadIndex(n *ast.IndexExpr) Operand {
	base := ctx.genExpr(n.Base)
	idx := ctx.genExpr(n.Index)
	dst := ctx.typedTemp(ctx.ctype(ast.Resolved(n)))
	ctx.emit(Instruction{Op: OpIndex, Dst: dst, HasDst: true, Args: []Operand{base, idx}})
	return dst
}

// genSlice lowers `base[lo..hi]` to a call into the slice runtime
// helper, mirroring how result constructors route through dedicated Op
// forms for a shape the flat three-address instruction set cannot
// otherwise express in one step (a pointer+length pair).
func (ctx *genCtx) genSlice(n *ast.SliceExpr) Operand {
	base := ctx.genExpr(n.Base)
	lo := ConstInt(0)
	if n.Lo != nil {
		lo = ctx.genExpr(n.Lo)
	}
	hi := ConstInt(-1)
	if n.Hi != nil {
		hi = ctx.genExpr(n.Hi)
	}
	dst := ctx.typedTemp(ctx.ctype(ast.Resolved(n)))
	ctx.emit(Instruction{Op: OpCall, Dst: dst, HasDst: true, Args: []Operand{base, lo, hi}, Callee: "virex_slice_make"})
	return dst
}

func (ctx *genCtx) genLoadMember(n *ast.MemberExpr) Operand {
	if base, ok := n.Base.(*ast.Ident); ok {
		if modSym, ok2 := ctx.m.Scope.Lookup(base.Name); ok2 && modSym.Kind == symtable.KindModule {
			if sym, ok3 := modSym.ModuleTable.LookupCurrent(n.Field); ok3 {
				if sym.Kind == symtable.KindConstant {
					return ConstInt(int64(sym.EnumValue))
				}
				ownerName := base.Name
				if owner := ctx.g.scopeToModule[modSym.ModuleTable]; owner != nil {
					ownerName = owner.Name
				}
				return Global(mangle.Module(ownerName, n.Field))
			}
		}
	}

	baseType := ast.Resolved(n.Base)
	baseOp := ctx.genExpr(n.Base)
	if baseType != nil && baseType.Kind == types.KindSlice && (n.Field == "len" || n.Field == "data") {
		dst := ctx.typedTemp(ctx.ctype(ast.Resolved(n)))
		ctx.emit(Instruction{Op: OpFieldGet, Dst: dst, HasDst: true, Args: []Operand{baseOp}, Field: n.Field})
		return dst
	}
	dst := ctx.typedTemp(ctx.ctype(ast.Resolved(n)))
	ctx.emit(Instruction{Op: OpFieldGet, Dst: dst, HasDst: true, Args: []Operand{baseOp}, Field: n.Field})
	return dst
}

// genLoadArrow lowers `base->field`; the emitter (C8) tells `->` from
// `.` by the operand's own declared C type, so this emits the same
// OpFieldGet form genLoadMember does.
func (ctx *genCtx) genLoadArrow(n *ast.ArrowExpr) Operand {
	base := ctx.genExpr(n.Base)
	dst := ctx.typedTemp(ctx.ctype(ast.Resolved(n)))
	ctx.emit(Instruction{Op: OpFieldGet, Dst: dst, HasDst: true, Args: []Operand{base}, Field: n.Field})
	return dst
}

func (ctx *genCtx) genCast(n *ast.CastExpr) Operand {
	v := ctx.genExpr(n.Value)
	cType := ctx.ctype(ast.Resolved(n))
	dst := ctx.typedTemp(cType)
	ctx.emit(Instruction{Op: OpCast, Dst: dst, HasDst: true, Args: []Operand{v}, Target: cType})
	return dst
}

func (ctx *genCtx) genResultCtor(n *ast.ResultCtorExpr) Operand {
	v := ConstInt(0)
	if n.Arg != nil {
		v = ctx.genExpr(n.Arg)
	}
	op := OpResultErr
	if n.IsOk {
		op = OpResultOk
	}
	dst := ctx.typedTemp(ctx.ctype(ast.Resolved(n)))
	ctx.emit(Instruction{Op: op, Dst: dst, HasDst: true, Args: []Operand{v}})
	return dst
}
