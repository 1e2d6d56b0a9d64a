package sema

import (
	"github.com/virexlang/virex/internal/ast"
	virexerrors "github.com/virexlang/virex/internal/errors"
	"github.com/virexlang/virex/internal/loader"
	"github.com/virexlang/virex/internal/symtable"
	"github.com/virexlang/virex/internal/types"
)

// bodyCtx threads the per-analysis state §4.4 Phase C requires through
// every expression/statement visitor: the current scope, the enclosing
// function's return type, loop depth (for break/continue), the
// enclosing function's generic parameter names, and the unsafe-region
// flags.
//
// usedUnsafe is a pointer rather than a plain bool: child() makes a
// shallow copy of ctx for every nested scope (if/while/for/match bodies
// included), and a flat bool field would have each of those copies
// record a use in its own throwaway field, never reaching back up to the
// bodyCtx analyzeUnsafeStmt actually inspects. Sharing one bool across
// every ctx within the same unsafe region lets a use recorded ten blocks
// deep still be visible at the unsafe statement that opened the region.
// analyzeUnsafeStmt allocates a fresh bool when it opens a new region, so
// the sharing never crosses an unsafe-block boundary.
type bodyCtx struct {
	a          *Analyzer
	m          *loader.Module
	scope      *symtable.Scope
	returnType *types.Type
	loopDepth  int
	generics   []string

	inUnsafe   bool
	usedUnsafe *bool
}

func (ctx *bodyCtx) child() *bodyCtx {
	cp := *ctx
	cp.scope = ctx.scope.Enter()
	return &cp
}

// isGenericParamRef reports whether t is a bare reference to one of the
// enclosing function's own generic parameter names — its body is
// type-checked structurally once, at declaration site, without
// substituting concrete types, so such a reference is treated as
// compatible with anything (a parametric placeholder, not a concrete
// struct/enum).
func isGenericParamRef(t *types.Type, generics []string) bool {
	if t == nil || !t.IsStructOrEnum() || len(t.TypeArgs) != 0 {
		return false
	}
	for _, g := range generics {
		if g == t.Name {
			return true
		}
	}
	return false
}

func (ctx *bodyCtx) compatible(expected, actual *types.Type) bool {
	if isGenericParamRef(expected, ctx.generics) || isGenericParamRef(actual, ctx.generics) {
		return true
	}
	return types.Compatible(expected, actual)
}

func (a *Analyzer) analyzeFunctionBody(m *loader.Module, d *ast.FuncDecl) {
	paramScope := m.Scope.Enter()
	for _, p := range d.Params {
		paramScope.Insert(&symtable.Symbol{
			Name: p.Name, Kind: symtable.KindVariable,
			Type: a.resolveType(m, p.Type, d.GenericParams), Pos: astPos(p.Pos), Depth: paramScope.Depth(),
		})
	}

	retType := a.resolveType(m, d.Return, d.GenericParams)
	if d.Return == nil {
		retType = types.Primitive(types.Void)
	}

	ctx := &bodyCtx{a: a, m: m, scope: paramScope, returnType: retType, generics: d.GenericParams, usedUnsafe: new(bool)}
	ctx.analyzeBlock(d.Body)

	if retType.Kind != types.KindPrimitive || retType.Prim != types.Void {
		if !guaranteesReturn(d.Body) {
			a.addf(virexerrors.TYP003, "sema", d.Pos, "function %q does not guarantee a return on every path", d.Name)
		}
	}
}

func (a *Analyzer) analyzeGlobalInit(m *loader.Module, d *ast.GlobalVarDecl) {
	if d.Init == nil {
		return
	}
	ctx := &bodyCtx{a: a, m: m, scope: m.Scope, usedUnsafe: new(bool)}
	initType := ctx.analyzeExpr(d.Init)
	declType := a.resolveType(m, d.Type, nil)
	if declType != nil && initType != nil && !ctx.compatible(declType, initType) {
		a.addf(virexerrors.TYP001, "sema", d.Pos,
			"cannot initialize %q of type %s with value of type %s", d.Name, declType.String(), initType.String())
	}
}
