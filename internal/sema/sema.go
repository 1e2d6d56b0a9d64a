// Package sema implements the semantic analyzer (C5): three declaration
// passes per module plus a body pass that type-checks expressions and
// statements, tracks unsafe regions, builds the generic instantiation
// registry, checks match exhaustiveness, and verifies every non-void
// function's return paths.
package sema

import (
	"github.com/virexlang/virex/internal/ast"
	virexerrors "github.com/virexlang/virex/internal/errors"
	"github.com/virexlang/virex/internal/loader"
	"github.com/virexlang/virex/internal/mangle"
	"github.com/virexlang/virex/internal/symtable"
	"github.com/virexlang/virex/internal/types"
)

// instKey identifies one generic instantiation by its mangled name —
// deterministic from (base_name, argument-type list), so two call sites
// requesting the same specialization collide on the same key.
type instKey = string

// Analyzer runs the three global phases of §4.4 over a loader.Project.
// One Analyzer is shared across every module in the project so the
// generic instantiation registry is process-wide, matching §3's
// GenericInstantiation invariant ("for a given key, at most one entry").
type Analyzer struct {
	Collector    *virexerrors.Collector
	StrictUnsafe bool

	project *loader.Project

	// instantiations records every GenericInstantiation created so far,
	// keyed by its mangled name.
	instantiations map[instKey]*symtable.Symbol

	// declModule remembers which module's global scope owns a given type
	// symbol, so a generic instantiation can be inserted into the right
	// module even when reached through an import.
	declModule map[*symtable.Symbol]*loader.Module

	// typesByMangledName indexes every struct/enum symbol by its mangled
	// name, so member-expression field lookup can resolve a value's
	// struct type even when that struct was declared in another module.
	typesByMangledName map[string]*symtable.Symbol
}

// New creates an Analyzer bound to project, with strictUnsafe selecting
// whether an unused `unsafe` block is a warning (false) or an error (true).
func New(project *loader.Project, strictUnsafe bool) *Analyzer {
	return &Analyzer{
		Collector:          &virexerrors.Collector{},
		StrictUnsafe:       strictUnsafe,
		project:            project,
		instantiations:     make(map[instKey]*symtable.Symbol),
		declModule:         make(map[*symtable.Symbol]*loader.Module),
		typesByMangledName: make(map[string]*symtable.Symbol),
	}
}

// resolveStructSymbol finds the declaring symbol for a struct/enum Type by
// its mangled name, checking the generic instantiation registry first
// (specializations are never registered in typesByMangledName).
func (a *Analyzer) resolveStructSymbol(mangledName string) (*symtable.Symbol, bool) {
	if sym, ok := a.instantiations[mangledName]; ok {
		return sym, true
	}
	sym, ok := a.typesByMangledName[mangledName]
	return sym, ok
}

// Analyze runs all three §4.3 phases over every module in the project:
// declaration pass, import linking (performed by loader.Project.Analyze
// itself), then body pass. Any error in a phase short-circuits.
func (a *Analyzer) Analyze() error {
	return a.project.Analyze(a.DeclarationPass, a.BodyPass)
}

// DeclarationPass runs §4.4 Phase A for one module: forward type pass,
// type population pass, function/global pass.
func (a *Analyzer) DeclarationPass(m *loader.Module) error {
	a.forwardTypePass(m)
	a.typePopulationPass(m)
	a.functionGlobalPass(m)
	return a.firstErrorOrNil()
}

// BodyPass runs §4.4 Phase C for one module: analyze every function body
// and every global initializer.
func (a *Analyzer) BodyPass(m *loader.Module) error {
	for _, decl := range m.Program.Decls {
		switch d := decl.(type) {
		case *ast.FuncDecl:
			if d.Body != nil {
				a.analyzeFunctionBody(m, d)
			}
		case *ast.GlobalVarDecl:
			a.analyzeGlobalInit(m, d)
		}
	}
	return a.firstErrorOrNil()
}

func (a *Analyzer) firstErrorOrNil() error {
	if a.Collector.HasErrors() {
		return virexerrors.Wrap(a.Collector.Reports()[len(a.Collector.Reports())-1])
	}
	return nil
}

// addf is a small convenience wrapper building and collecting a Report.
func (a *Analyzer) addf(code, phase string, pos ast.Pos, format string, args ...any) {
	a.Collector.Add(virexerrors.New(code, phase, pos, format, args...))
}

// addWarningf collects an advisory Report: a warning normally, but a full
// error when the Analyzer runs with StrictUnsafe, per §6's
// "--strict-unsafe: unnecessary unsafe becomes an error" contract.
func (a *Analyzer) addWarningf(code, phase string, pos ast.Pos, format string, args ...any) {
	if a.StrictUnsafe {
		a.addf(code, phase, pos, format, args...)
		return
	}
	a.Collector.Add(virexerrors.NewWarning(code, phase, pos, format, args...))
}

// Instantiations returns every GenericInstantiation created while
// analyzing the project, for C6 to materialize as concrete C struct/enum
// definitions (a generic struct/enum's own declaration is never emitted
// directly — only its instantiations are concrete).
func (a *Analyzer) Instantiations() []*symtable.Symbol {
	out := make([]*symtable.Symbol, 0, len(a.instantiations))
	for _, sym := range a.instantiations {
		out = append(out, sym)
	}
	return out
}

// ResolveType exposes resolveType to C6, for lowering an explicit `<...>`
// generic call-site type argument it cannot read off an already-analyzed
// expression.
func (a *Analyzer) ResolveType(m *loader.Module, te ast.TypeExpr, generics []string) *types.Type {
	return a.resolveType(m, te, generics)
}

// EnumVariants returns the declared variant names, in order, for the
// struct/enum symbol named by mangledName — checking the generic
// instantiation registry first — for C6's match-to-jump-chain lowering.
func (a *Analyzer) EnumVariants(mangledName string) ([]string, bool) {
	sym, ok := a.resolveStructSymbol(mangledName)
	if !ok {
		return nil, false
	}
	return sym.EnumVariants, true
}

// resolveType resolves a syntactic TypeExpr to a *types.Type within
// module m's global scope (the only scope types are looked up in —
// struct/enum/function declarations live at module scope). generics is
// nil except while resolving a generic struct/enum/function's own
// signature, in which case a bare name matching one of generics
// resolves to a placeholder struct/enum reference instead of being
// looked up as a declared type (§4.4 generic parameter scoping).
func (a *Analyzer) resolveType(m *loader.Module, te ast.TypeExpr, generics []string) *types.Type {
	if te == nil {
		return types.Primitive(types.Void)
	}
	switch t := te.(type) {
	case *ast.NamedType:
		return a.resolveNamedType(m, t, generics)
	case *ast.PointerType:
		return types.Pointer(a.resolveType(m, t.Base, generics), t.NonNull)
	case *ast.ArrayType:
		return types.Array(a.resolveType(m, t.Elem, generics), t.Size)
	case *ast.SliceType:
		return types.SliceT(a.resolveType(m, t.Elem, generics))
	case *ast.FuncType:
		params := make([]*types.Type, len(t.Params))
		for i, p := range t.Params {
			params[i] = a.resolveType(m, p, generics)
		}
		return types.Function(a.resolveType(m, t.Return, generics), params)
	case *ast.ResultType:
		return types.ResultOf(a.resolveType(m, t.Ok, generics), a.resolveType(m, t.Err, generics))
	}
	return nil
}

var primByName = map[string]types.PrimKind{
	"i8": types.I8, "i16": types.I16, "i32": types.I32, "i64": types.I64,
	"u8": types.U8, "u16": types.U16, "u32": types.U32, "u64": types.U64,
	"f32": types.F32, "f64": types.F64, "bool": types.Bool, "void": types.Void,
	"cstr": types.CString,
}

func (a *Analyzer) resolveNamedType(m *loader.Module, t *ast.NamedType, generics []string) *types.Type {
	if len(t.TypeArgs) == 0 {
		for _, g := range generics {
			if g == t.Name {
				return types.Struct(t.Name, nil)
			}
		}
	}
	if prim, ok := primByName[t.Name]; ok {
		return types.Primitive(prim)
	}

	sym, ok := m.Scope.Lookup(t.Name)
	if !ok || sym.Kind != symtable.KindType {
		a.addf(virexerrors.NAM001, "sema", t.Pos, "undefined type %q", t.Name)
		return nil
	}

	if len(t.TypeArgs) == 0 {
		return types.Clone(sym.Type)
	}

	argTypes := make([]*types.Type, len(t.TypeArgs))
	for i, arg := range t.TypeArgs {
		argTypes[i] = a.resolveType(m, arg, generics)
	}
	if len(sym.GenericParams) != len(argTypes) {
		a.addf(virexerrors.GEN001, "sema", t.Pos,
			"generic type %q expects %d argument(s), got %d", t.Name, len(sym.GenericParams), len(argTypes))
		return types.Clone(sym.Type)
	}
	return a.instantiate(m, sym, argTypes, t.Pos)
}

// instantiate looks up or creates the GenericInstantiation for sym with
// argTypes, per §4.4's "Generic instantiation registry".
func (a *Analyzer) instantiate(m *loader.Module, sym *symtable.Symbol, argTypes []*types.Type, pos ast.Pos) *types.Type {
	argNames := make([]string, len(argTypes))
	for i, at := range argTypes {
		argNames[i] = mangle.Ident(at.String())
	}
	mangled := mangle.Instantiation(sym.Type.Name, argNames)

	if existing, ok := a.instantiations[mangled]; ok {
		return types.Clone(existing.Type)
	}

	specialized := &symtable.Symbol{
		Name:  mangled,
		Kind:  symtable.KindType,
		Flags: sym.Flags,
		Pos:   symtable.Pos{Line: pos.Line, Column: pos.Column},
	}
	if sym.Type.Kind == types.KindEnum {
		specialized.Type = types.Enum(mangled, nil)
		specialized.EnumVariants = append([]string(nil), sym.EnumVariants...)
	} else {
		specialized.Type = types.Struct(mangled, nil)
	}
	specialized.Fields = make([]symtable.Field, len(sym.Fields))
	for i, f := range sym.Fields {
		specialized.Fields[i] = symtable.Field{
			Name: f.Name,
			Type: types.Substitute(f.Type, sym.GenericParams, argTypes),
		}
	}

	owner := a.declModule[sym]
	if owner == nil {
		owner = m
	}
	owner.Scope.Insert(specialized)
	a.declModule[specialized] = owner
	a.instantiations[mangled] = specialized

	return types.Clone(specialized.Type)
}
