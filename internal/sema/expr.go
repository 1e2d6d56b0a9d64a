package sema

import (
	"strings"

	"github.com/virexlang/virex/internal/ast"
	virexerrors "github.com/virexlang/virex/internal/errors"
	"github.com/virexlang/virex/internal/symtable"
	"github.com/virexlang/virex/internal/types"
)

// analyzeExpr dispatches on e's concrete type, records the resolved Type
// on the node itself (ast.SetResolved), and returns that Type (nil on an
// unrecoverable error, so callers must guard before using it further).
func (ctx *bodyCtx) analyzeExpr(e ast.Expr) *types.Type {
	var t *types.Type
	switch n := e.(type) {
	case *ast.IntLit:
		t = types.Primitive(types.I32)
	case *ast.FloatLit:
		t = types.Primitive(types.F64)
	case *ast.BoolLit:
		t = types.Primitive(types.Bool)
	case *ast.StringLit:
		t = types.SliceT(types.Primitive(types.U8))
	case *ast.NullLit:
		t = types.NullPointer()
	case *ast.Ident:
		t = ctx.analyzeIdent(n)
	case *ast.BinaryExpr:
		t = ctx.analyzeBinary(n)
	case *ast.AssignExpr:
		t = ctx.analyzeAssign(n)
	case *ast.UnaryExpr:
		t = ctx.analyzeUnary(n)
	case *ast.CallExpr:
		t = ctx.analyzeCall(n)
	case *ast.IndexExpr:
		t = ctx.analyzeIndex(n)
	case *ast.SliceExpr:
		t = ctx.analyzeSlice(n)
	case *ast.MemberExpr:
		t = ctx.analyzeMember(n)
	case *ast.ArrowExpr:
		t = ctx.analyzeArrow(n)
	case *ast.CastExpr:
		t = ctx.analyzeCast(n)
	case *ast.ResultCtorExpr:
		t = ctx.analyzeResultCtor(n)
	}
	ast.SetResolved(e, t)
	return t
}

func (ctx *bodyCtx) undefined(pos ast.Pos, name string) {
	rep := virexerrors.New(virexerrors.NAM001, "sema", pos, "undefined identifier %q", name)
	if s := virexerrors.Suggest(name, ctx.scope.Names()); len(s) > 0 {
		rep = rep.WithFix("did you mean " + s[0] + "?")
	}
	ctx.a.Collector.Add(rep)
}

func (ctx *bodyCtx) analyzeIdent(n *ast.Ident) *types.Type {
	sym, ok := ctx.scope.Lookup(n.Name)
	if !ok {
		ctx.undefined(n.Pos, n.Name)
		return nil
	}
	return types.Clone(sym.Type)
}

func isAddressable(e ast.Expr) bool {
	switch e.(type) {
	case *ast.Ident, *ast.IndexExpr, *ast.MemberExpr, *ast.ArrowExpr:
		return true
	}
	return false
}

func (ctx *bodyCtx) analyzeAssign(n *ast.AssignExpr) *types.Type {
	if !isAddressable(n.Left) {
		ctx.a.addf(virexerrors.TYP002, "sema", n.Position(), "left side of assignment is not addressable")
	}
	leftType := ctx.analyzeExpr(n.Left)
	rightType := ctx.analyzeExpr(n.Right)
	if leftType != nil && rightType != nil && !ctx.compatible(leftType, rightType) {
		ctx.a.addf(virexerrors.TYP001, "sema", n.Position(),
			"cannot assign value of type %s to target of type %s", rightType.String(), leftType.String())
	}
	return leftType
}

func (ctx *bodyCtx) analyzeUnary(n *ast.UnaryExpr) *types.Type {
	operand := ctx.analyzeExpr(n.Operand)
	switch n.Op {
	case "-":
		if operand != nil && operand.Kind == types.KindPrimitive && operand.Prim.IsNumeric() {
			return operand
		}
		ctx.a.addf(virexerrors.TYP002, "sema", n.Position(), "unary - requires a numeric operand")
		return operand
	case "!":
		if operand != nil && !(operand.Kind == types.KindPrimitive && operand.Prim == types.Bool) {
			ctx.a.addf(virexerrors.TYP002, "sema", n.Position(), "unary ! requires a bool operand")
		}
		return types.Primitive(types.Bool)
	case "&":
		if !isAddressable(n.Operand) {
			ctx.a.addf(virexerrors.TYP002, "sema", n.Position(), "cannot take the address of a non-addressable expression")
		}
		return types.Pointer(operand, true)
	case "*":
		if operand == nil || operand.Kind != types.KindPointer {
			ctx.a.addf(virexerrors.TYP002, "sema", n.Position(), "unary * requires a pointer operand")
			return nil
		}
		if !operand.NonNull {
			if !ctx.inUnsafe {
				ctx.a.addf(virexerrors.SAF002, "sema", n.Position(), "dereferencing a nullable pointer requires an unsafe block")
			} else {
				*ctx.usedUnsafe = true
			}
		}
		return operand.Base
	}
	return operand
}

var comparisonOps = map[string]bool{"<": true, "<=": true, ">": true, ">=": true}
var logicalOps = map[string]bool{"&&": true, "||": true}
var equalityOps = map[string]bool{"==": true, "!=": true}

func (ctx *bodyCtx) analyzeBinary(n *ast.BinaryExpr) *types.Type {
	left := ctx.analyzeExpr(n.Left)
	right := ctx.analyzeExpr(n.Right)

	if (n.Op == "+" || n.Op == "-") && ((left != nil && left.Kind == types.KindPointer) || (right != nil && right.Kind == types.KindPointer)) {
		if !ctx.inUnsafe {
			ctx.a.addf(virexerrors.SAF001, "sema", n.Position(), "pointer arithmetic requires an unsafe block")
		} else {
			*ctx.usedUnsafe = true
		}
		if left != nil && left.Kind == types.KindPointer {
			return left
		}
		return right
	}

	if logicalOps[n.Op] {
		if left != nil && !(left.Kind == types.KindPrimitive && left.Prim == types.Bool) {
			ctx.a.addf(virexerrors.TYP002, "sema", n.Position(), "%s requires bool operands", n.Op)
		}
		if right != nil && !(right.Kind == types.KindPrimitive && right.Prim == types.Bool) {
			ctx.a.addf(virexerrors.TYP002, "sema", n.Position(), "%s requires bool operands", n.Op)
		}
		return types.Primitive(types.Bool)
	}

	if equalityOps[n.Op] {
		if left != nil && right != nil && !ctx.compatible(left, right) && !ctx.compatible(right, left) {
			ctx.a.addf(virexerrors.TYP002, "sema", n.Position(), "cannot compare %s with %s", left.String(), right.String())
		}
		return types.Primitive(types.Bool)
	}

	if comparisonOps[n.Op] {
		if !isNumeric(left) || !isNumeric(right) {
			ctx.a.addf(virexerrors.TYP002, "sema", n.Position(), "%s requires numeric operands", n.Op)
		}
		return types.Primitive(types.Bool)
	}

	// arithmetic: +, -, *, /, %
	if !isNumeric(left) || !isNumeric(right) {
		ctx.a.addf(virexerrors.TYP002, "sema", n.Position(), "operator %q requires numeric operands", n.Op)
		if left != nil {
			return left
		}
		return right
	}
	if ctx.compatible(left, right) {
		return left
	}
	return right
}

func isNumeric(t *types.Type) bool {
	return t != nil && t.Kind == types.KindPrimitive && t.Prim.IsNumeric()
}

// isUnsafeWhitelisted implements the extern/variadic-call exemption list:
// a handful of always-safe builtins, anything named with "print" in it,
// and anything reached through the math/result standard modules.
func isUnsafeWhitelisted(module, name string) bool {
	switch name {
	case "print", "exit", "assert":
		return true
	}
	if strings.Contains(name, "print") {
		return true
	}
	switch module {
	case "math", "std::math", "result", "std::result":
		return true
	}
	return false
}

// resolveCallee resolves a call's Callee expression to the function
// symbol it names, plus the qualifying module name when the call used
// `module.member(...)` syntax ("" for a free call).
func (ctx *bodyCtx) resolveCallee(callee ast.Expr) (*symtable.Symbol, string) {
	switch c := callee.(type) {
	case *ast.Ident:
		sym, ok := ctx.scope.Lookup(c.Name)
		if !ok {
			ctx.undefined(c.Pos, c.Name)
			return nil, ""
		}
		return sym, ""
	case *ast.MemberExpr:
		base, ok := c.Base.(*ast.Ident)
		if !ok {
			ctx.a.addf(virexerrors.TYP002, "sema", c.Position(), "expression is not callable")
			return nil, ""
		}
		modSym, ok := ctx.scope.Lookup(base.Name)
		if !ok || modSym.Kind != symtable.KindModule {
			ctx.undefined(base.Pos, base.Name)
			return nil, ""
		}
		sym, ok := modSym.ModuleTable.LookupCurrent(c.Field)
		if !ok {
			ctx.undefined(c.Position(), base.Name+"."+c.Field)
			return nil, ""
		}
		return sym, base.Name
	}
	ctx.a.addf(virexerrors.TYP002, "sema", callee.Position(), "expression is not callable")
	return nil, ""
}

func (ctx *bodyCtx) analyzeCall(n *ast.CallExpr) *types.Type {
	sym, qualModule := ctx.resolveCallee(n.Callee)
	argTypes := make([]*types.Type, len(n.Args))
	for i, arg := range n.Args {
		argTypes[i] = ctx.analyzeExpr(arg)
	}
	if sym == nil {
		return nil
	}
	if sym.Kind != symtable.KindFunction {
		ctx.a.addf(virexerrors.TYP002, "sema", n.Position(), "%q is not callable", sym.Name)
		return nil
	}
	if qualModule != "" && qualModule != ctx.m.Name && !sym.Flags.Public {
		ctx.a.addf(virexerrors.VIS001, "sema", n.Position(), "%q is not public in module %q", sym.Name, qualModule)
	}

	params := sym.Type.Params
	if sym.Flags.Variadic {
		if len(argTypes) < len(params) {
			ctx.a.addf(virexerrors.TYP004, "sema", n.Position(),
				"%q expects at least %d argument(s), got %d", sym.Name, len(params), len(argTypes))
		}
	} else if len(argTypes) != len(params) {
		ctx.a.addf(virexerrors.TYP004, "sema", n.Position(),
			"%q expects %d argument(s), got %d", sym.Name, len(params), len(argTypes))
	}

	if sym.Flags.Extern || sym.Flags.Variadic {
		if !ctx.inUnsafe && !isUnsafeWhitelisted(qualModule, sym.Name) {
			ctx.a.addf(virexerrors.SAF003, "sema", n.Position(), "call to %q requires an unsafe block", sym.Name)
		} else if ctx.inUnsafe {
			*ctx.usedUnsafe = true
		}
	}

	retType := sym.Type.Return
	if len(sym.GenericParams) > 0 {
		var argTys []*types.Type
		if len(n.TypeArgs) > 0 {
			argTys = make([]*types.Type, len(n.TypeArgs))
			for i, te := range n.TypeArgs {
				argTys[i] = ctx.a.resolveType(ctx.m, te, ctx.generics)
			}
		} else {
			inferred, ok := unify(sym.GenericParams, params, argTypes)
			if !ok {
				ctx.a.addf(virexerrors.TYP005, "sema", n.Position(),
					"cannot infer generic type arguments for %q", sym.Name)
				return types.Clone(retType)
			}
			argTys = inferred
			n.InferredArgTypes = inferred
		}
		retType = types.Substitute(retType, sym.GenericParams, argTys)
	} else {
		for i := 0; i < len(params) && i < len(argTypes); i++ {
			if params[i] != nil && argTypes[i] != nil && !ctx.compatible(params[i], argTypes[i]) {
				ctx.a.addf(virexerrors.TYP001, "sema", n.Args[i].Position(),
					"argument %d to %q: cannot use value of type %s as %s", i+1, sym.Name,
					argTypes[i].String(), params[i].String())
			}
		}
	}
	return types.Clone(retType)
}

// unify performs a structural unification of sym's formal parameter
// types (which may reference sym's own generic parameter names as bare
// struct/enum references) against the call's argument types, resolving
// each generic parameter to a concrete Type, in declaration order.
func unify(paramNames []string, formals, actuals []*types.Type) ([]*types.Type, bool) {
	bound := make(map[string]*types.Type)
	for i := 0; i < len(formals) && i < len(actuals); i++ {
		if !unifyOne(formals[i], actuals[i], paramNames, bound) {
			return nil, false
		}
	}
	out := make([]*types.Type, len(paramNames))
	for i, p := range paramNames {
		t, ok := bound[p]
		if !ok {
			return nil, false
		}
		out[i] = t
	}
	return out, true
}

func unifyOne(formal, actual *types.Type, paramNames []string, bound map[string]*types.Type) bool {
	if formal == nil || actual == nil {
		return false
	}
	if isGenericParamRef(formal, paramNames) {
		if existing, ok := bound[formal.Name]; ok {
			return types.Equal(existing, actual)
		}
		bound[formal.Name] = actual
		return true
	}
	if formal.Kind != actual.Kind {
		return formal.Kind == types.KindPrimitive && actual.Kind == types.KindPrimitive
	}
	switch formal.Kind {
	case types.KindPointer:
		return unifyOne(formal.Base, actual.Base, paramNames, bound)
	case types.KindArray, types.KindSlice:
		return unifyOne(formal.Elem, actual.Elem, paramNames, bound)
	case types.KindResult:
		return unifyOne(formal.Ok, actual.Ok, paramNames, bound) && unifyOne(formal.Err, actual.Err, paramNames, bound)
	case types.KindFunction:
		if len(formal.Params) != len(actual.Params) {
			return false
		}
		for i := range formal.Params {
			if !unifyOne(formal.Params[i], actual.Params[i], paramNames, bound) {
				return false
			}
		}
		return unifyOne(formal.Return, actual.Return, paramNames, bound)
	case types.KindStruct, types.KindEnum:
		return formal.Name == actual.Name
	default:
		return true
	}
}

func (ctx *bodyCtx) analyzeIndex(n *ast.IndexExpr) *types.Type {
	base := ctx.analyzeExpr(n.Base)
	index := ctx.analyzeExpr(n.Index)
	if !isNumeric(index) || (index != nil && !index.Prim.IsInteger()) {
		ctx.a.addf(virexerrors.TYP002, "sema", n.Position(), "index expression must be an integer")
	}
	if base == nil {
		return nil
	}
	var elem *types.Type
	switch base.Kind {
	case types.KindArray, types.KindSlice:
		elem = base.Elem
	case types.KindPointer:
		elem = base.Base
	default:
		ctx.a.addf(virexerrors.TYP002, "sema", n.Position(), "cannot index a value of type %s", base.String())
		return nil
	}
	if base.Kind == types.KindArray {
		if lit, ok := n.Index.(*ast.IntLit); ok {
			if lit.Value < 0 || int(lit.Value) >= base.Size {
				ctx.a.addf(virexerrors.BND001, "sema", n.Position(),
					"constant index %d out of bounds for array of size %d", lit.Value, base.Size)
			}
		}
	}
	return elem
}

func (ctx *bodyCtx) analyzeSlice(n *ast.SliceExpr) *types.Type {
	base := ctx.analyzeExpr(n.Base)
	if n.Lo != nil {
		if lo := ctx.analyzeExpr(n.Lo); lo != nil && !lo.Prim.IsInteger() {
			ctx.a.addf(virexerrors.TYP002, "sema", n.Lo.Position(), "slice bound must be an integer")
		}
	}
	if n.Hi != nil {
		if hi := ctx.analyzeExpr(n.Hi); hi != nil && !hi.Prim.IsInteger() {
			ctx.a.addf(virexerrors.TYP002, "sema", n.Hi.Position(), "slice bound must be an integer")
		}
	}
	if base == nil {
		return nil
	}
	switch base.Kind {
	case types.KindArray, types.KindSlice:
		return types.SliceT(base.Elem)
	case types.KindPointer:
		return types.SliceT(base.Base)
	}
	ctx.a.addf(virexerrors.TYP002, "sema", n.Position(), "cannot slice a value of type %s", base.String())
	return nil
}

func (ctx *bodyCtx) findField(structType *types.Type, field string) (*types.Type, bool) {
	if structType == nil || structType.Kind != types.KindStruct {
		return nil, false
	}
	sym, ok := ctx.a.resolveStructSymbol(structType.Name)
	if !ok {
		return nil, false
	}
	for _, f := range sym.Fields {
		if f.Name == field {
			if len(structType.TypeArgs) > 0 && len(sym.GenericParams) == len(structType.TypeArgs) {
				return types.Substitute(f.Type, sym.GenericParams, structType.TypeArgs), true
			}
			return f.Type, true
		}
	}
	return nil, false
}

func (ctx *bodyCtx) analyzeMember(n *ast.MemberExpr) *types.Type {
	if base, ok := n.Base.(*ast.Ident); ok {
		if modSym, ok := ctx.scope.Lookup(base.Name); ok && modSym.Kind == symtable.KindModule {
			sym, ok := modSym.ModuleTable.LookupCurrent(n.Field)
			if !ok {
				ctx.undefined(n.Position(), base.Name+"."+n.Field)
				return nil
			}
			if !sym.Flags.Public {
				ctx.a.addf(virexerrors.VIS001, "sema", n.Position(), "%q is not public in module %q", n.Field, base.Name)
			}
			return types.Clone(sym.Type)
		}
	}

	baseType := ctx.analyzeExpr(n.Base)
	if baseType == nil {
		return nil
	}
	if baseType.Kind == types.KindSlice {
		switch n.Field {
		case "len":
			return types.Primitive(types.I64)
		case "data":
			return types.Pointer(baseType.Elem, true)
		}
	}
	if ft, ok := ctx.findField(baseType, n.Field); ok {
		return ft
	}
	ctx.a.addf(virexerrors.NAM001, "sema", n.Position(), "type %s has no member %q", baseType.String(), n.Field)
	return nil
}

func (ctx *bodyCtx) analyzeArrow(n *ast.ArrowExpr) *types.Type {
	baseType := ctx.analyzeExpr(n.Base)
	if baseType == nil {
		return nil
	}
	if baseType.Kind != types.KindPointer {
		ctx.a.addf(virexerrors.TYP002, "sema", n.Position(), "-> requires a pointer operand")
		return nil
	}
	if !baseType.NonNull {
		if !ctx.inUnsafe {
			ctx.a.addf(virexerrors.SAF002, "sema", n.Position(), "dereferencing a nullable pointer requires an unsafe block")
		} else {
			*ctx.usedUnsafe = true
		}
	}
	if ft, ok := ctx.findField(baseType.Base, n.Field); ok {
		return ft
	}
	ctx.a.addf(virexerrors.NAM001, "sema", n.Position(), "type %s has no member %q", baseType.Base.String(), n.Field)
	return nil
}

func (ctx *bodyCtx) analyzeCast(n *ast.CastExpr) *types.Type {
	ctx.analyzeExpr(n.Value)
	return ctx.a.resolveType(ctx.m, n.Target, ctx.generics)
}

func (ctx *bodyCtx) analyzeResultCtor(n *ast.ResultCtorExpr) *types.Type {
	argType := types.Primitive(types.Void)
	if n.Arg != nil {
		if t := ctx.analyzeExpr(n.Arg); t != nil {
			argType = t
		}
	}
	if n.IsOk {
		return types.ResultOf(argType, types.Primitive(types.Void))
	}
	return types.ResultOf(types.Primitive(types.Void), argType)
}
