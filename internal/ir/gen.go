package ir

import (
	"fmt"

	"github.com/virexlang/virex/internal/ast"
	"github.com/virexlang/virex/internal/loader"
	"github.com/virexlang/virex/internal/mangle"
	"github.com/virexlang/virex/internal/sema"
	"github.com/virexlang/virex/internal/symtable"
	"github.com/virexlang/virex/internal/types"
)

// genericFuncTemplate records a not-yet-monomorphized generic function
// declaration, so a call site can materialize its concrete instantiation
// lazily the first time it is needed.
type genericFuncTemplate struct {
	m      *loader.Module
	d      *ast.FuncDecl
	sym    *symtable.Symbol
	isMain bool
}

// Generator lowers an analyzed project into a single ir.Module. Call
// Generate only after sema.Analyzer.Analyze has returned a nil error —
// the generator assumes every expression already carries a resolved Type
// and every declaration a populated symtable.Symbol.
type Generator struct {
	project  *loader.Project
	analyzer *sema.Analyzer
	mod      *Module
	namer    *TypeNamer

	tempCounter  int
	labelCounter int
	localCounter int

	current *Function

	scopeToModule map[*symtable.Scope]*loader.Module
	genericFuncs  map[string]*genericFuncTemplate
	funcInstCache map[string]*Function
}

// NewGenerator creates a Generator over an already-analyzed project.
func NewGenerator(project *loader.Project, analyzer *sema.Analyzer) *Generator {
	mod := &Module{}
	return &Generator{
		project: project, analyzer: analyzer, mod: mod, namer: NewTypeNamer(mod),
		scopeToModule: make(map[*symtable.Scope]*loader.Module),
		genericFuncs:  make(map[string]*genericFuncTemplate),
		funcInstCache: make(map[string]*Function),
	}
}

func templateKey(m *loader.Module, name string) string { return m.Name + "." + name }

// Generate lowers every module's declarations into g's Module. Generic
// functions are never emitted here directly — §4.4's worked example
// ("max<T> called with (i32,i32) emits a single mangled function
// <mod>__max_i32") requires one concrete function per distinct call-site
// instantiation, so their bodies are lowered lazily by instantiateFunc
// the first time a call site needs that specialization.
func (g *Generator) Generate() (*Module, error) {
	for _, m := range g.project.Modules() {
		g.scopeToModule[m.Scope] = m
	}

	for _, m := range g.project.Modules() {
		isMain := m == g.project.Main()
		for _, decl := range m.Program.Decls {
			switch d := decl.(type) {
			case *ast.StructDecl:
				if len(d.GenericParams) == 0 {
					g.emitStructDef(m, d)
				}
			case *ast.EnumDecl:
				if len(d.GenericParams) == 0 {
					g.emitEnumDef(m, d)
				}
			case *ast.FuncDecl:
				if len(d.GenericParams) > 0 {
					if sym, ok := m.Scope.LookupCurrent(d.Name); ok {
						g.genericFuncs[templateKey(m, d.Name)] = &genericFuncTemplate{m: m, d: d, sym: sym, isMain: isMain}
					}
				}
			}
		}
	}
	for _, sym := range g.analyzer.Instantiations() {
		g.emitInstantiatedDef(sym)
	}

	for _, m := range g.project.Modules() {
		isMain := m == g.project.Main()
		for _, decl := range m.Program.Decls {
			switch d := decl.(type) {
			case *ast.GlobalVarDecl:
				g.genGlobal(m, d)
			case *ast.FuncDecl:
				g.genFunc(m, d, isMain)
			}
		}
	}
	return g.mod, nil
}

func (g *Generator) emitStructDef(m *loader.Module, d *ast.StructDecl) {
	sym, ok := m.Scope.LookupCurrent(d.Name)
	if !ok {
		return
	}
	g.mod.Structs = append(g.mod.Structs, fieldsToStructDef(sym, g.namer))
}

func (g *Generator) emitEnumDef(m *loader.Module, d *ast.EnumDecl) {
	sym, ok := m.Scope.LookupCurrent(d.Name)
	if !ok {
		return
	}
	g.mod.Enums = append(g.mod.Enums, &EnumDef{Name: sym.Type.Name, Variants: append([]string(nil), sym.EnumVariants...)})
}

func (g *Generator) emitInstantiatedDef(sym *symtable.Symbol) {
	if sym.Type.Kind == types.KindEnum {
		g.mod.Enums = append(g.mod.Enums, &EnumDef{Name: sym.Type.Name, Variants: append([]string(nil), sym.EnumVariants...)})
		return
	}
	g.mod.Structs = append(g.mod.Structs, fieldsToStructDef(sym, g.namer))
}

func fieldsToStructDef(sym *symtable.Symbol, namer *TypeNamer) *StructDef {
	fields := make([]Local, len(sym.Fields))
	for i, f := range sym.Fields {
		fields[i] = Local{Name: f.Name, CType: namer.CType(f.Type)}
	}
	return &StructDef{Name: sym.Type.Name, Fields: fields, Packed: sym.Flags.Packed}
}

func (g *Generator) genGlobal(m *loader.Module, d *ast.GlobalVarDecl) {
	sym, ok := m.Scope.LookupCurrent(d.Name)
	if !ok {
		return
	}
	mangled := mangle.Module(m.Name, d.Name)
	glob := &Global{Name: mangled, CType: g.namer.CType(sym.Type), Const: d.Const}

	if d.Init != nil {
		g.current = &Function{}
		g.tempCounter, g.localCounter = 0, 0
		ctx := &genCtx{g: g, m: m, scope: newGenScope()}
		ctx.genExpr(d.Init)
		glob.Init = g.current.Body
		g.current = nil
	}
	g.mod.Globals = append(g.mod.Globals, glob)
}

// genScope maps a Virex source-level local name to its unique, flattened
// C local name — the generator hoists every local to the top of its
// owning function and renames to avoid collisions across shadowed blocks.
type genScope struct {
	parent *genScope
	vars   map[string]string
}

func newGenScope() *genScope { return &genScope{vars: make(map[string]string)} }

func (s *genScope) enter() *genScope { return &genScope{parent: s, vars: make(map[string]string)} }

func (s *genScope) define(name, unique string) { s.vars[name] = unique }

func (s *genScope) lookup(name string) (string, bool) {
	for sc := s; sc != nil; sc = sc.parent {
		if u, ok := sc.vars[name]; ok {
			return u, true
		}
	}
	return "", false
}

// genCtx threads per-function generation state through statement/
// expression lowering: the current lexical scope, the enclosing loop's
// break/continue labels, and — inside a lazily-monomorphized generic
// function body — the bound generic parameter names/concrete argument
// types substituted into any type a node resolved to.
type genCtx struct {
	g     *Generator
	m     *loader.Module
	scope *genScope

	breakLabel, continueLabel string

	genericParams []string
	genericArgs   []*types.Type
}

func (ctx *genCtx) child() *genCtx {
	cp := *ctx
	cp.scope = ctx.scope.enter()
	return &cp
}

// ctype renders t's C spelling, substituting any bound generic parameter
// reference with its concrete argument type first.
func (ctx *genCtx) ctype(t *types.Type) string {
	if ctx.genericParams != nil {
		t = types.Substitute(t, ctx.genericParams, ctx.genericArgs)
	}
	return ctx.g.namer.CType(t)
}

func (g *Generator) newTemp() Operand {
	o := Temp(g.tempCounter)
	g.tempCounter++
	return o
}

func (g *Generator) newLabel(prefix string) string {
	g.labelCounter++
	return fmt.Sprintf("%s_%d", prefix, g.labelCounter)
}

func (g *Generator) emit(instr Instruction) {
	g.current.Body = append(g.current.Body, instr)
}

func (g *Generator) declLocal(name, cType string) string {
	g.localCounter++
	unique := fmt.Sprintf("%s_%d", name, g.localCounter)
	g.current.Locals = append(g.current.Locals, Local{Name: unique, CType: cType})
	return unique
}

// genFunc lowers one non-generic function declaration. A generic
// function's own declaration produces no code here — see
// genericFuncTemplate/instantiateFunc — since its body can only be
// lowered once a call site supplies concrete type arguments.
func (g *Generator) genFunc(m *loader.Module, d *ast.FuncDecl, isMain bool) {
	if len(d.GenericParams) > 0 {
		return
	}
	sym, ok := m.Scope.LookupCurrent(d.Name)
	if !ok {
		return
	}

	name := mangle.Function(m.Name, d.Name, isMain)
	if d.Extern {
		name = d.Name // standard C functions keep their original, unmangled name
	}
	fn := &Function{Name: name, ReturnCType: g.namer.CType(sym.Type.Return), Extern: d.Extern, Variadic: d.Variadic}

	scope := newGenScope()
	for i, p := range d.Params {
		var ct string
		if i < len(sym.Type.Params) {
			ct = g.namer.CType(sym.Type.Params[i])
		}
		fn.Params = append(fn.Params, Param{Name: p.Name, CType: ct})
		scope.define(p.Name, p.Name)
	}

	g.current = fn
	g.tempCounter, g.localCounter = 0, 0

	if d.Body != nil && !d.Extern {
		ctx := &genCtx{g: g, m: m, scope: scope}
		ctx.genBlock(d.Body)
		if isVoidType(sym.Type.Return) {
			g.emit(Instruction{Op: OpReturn})
		}
	}
	g.current = nil
	g.mod.Functions = append(g.mod.Functions, fn)
}

// instantiateFunc looks up or lazily lowers the monomorphized function
// for tmpl called with argTypes, caching by its mangled instantiation
// name so repeated calls with the same concrete arguments reuse one
// emitted C function (§4.4's generic instantiation registry, extended
// from types to functions per the worked max<T> example).
func (g *Generator) instantiateFunc(owner *loader.Module, sym *symtable.Symbol, argTypes []*types.Type) *Function {
	tmpl, ok := g.genericFuncs[templateKey(owner, sym.Name)]
	if !ok {
		return &Function{Name: sym.Name}
	}

	argNames := make([]string, len(argTypes))
	for i, at := range argTypes {
		argNames[i] = mangle.Ident(at.String())
	}
	base := mangle.Function(owner.Name, sym.Name, tmpl.isMain)
	mangled := mangle.Instantiation(base, argNames)

	if fn, ok := g.funcInstCache[mangled]; ok {
		return fn
	}

	params := make([]*types.Type, len(sym.Type.Params))
	for i, p := range sym.Type.Params {
		params[i] = types.Substitute(p, sym.GenericParams, argTypes)
	}
	retType := types.Substitute(sym.Type.Return, sym.GenericParams, argTypes)

	fn := &Function{Name: mangled, ReturnCType: g.namer.CType(retType), Extern: tmpl.d.Extern, Variadic: tmpl.d.Variadic}
	g.funcInstCache[mangled] = fn
	g.mod.Functions = append(g.mod.Functions, fn)

	scope := newGenScope()
	for i, p := range tmpl.d.Params {
		var ct string
		if i < len(params) {
			ct = g.namer.CType(params[i])
		}
		fn.Params = append(fn.Params, Param{Name: p.Name, CType: ct})
		scope.define(p.Name, p.Name)
	}

	prevCurrent, prevTemp, prevLocal := g.current, g.tempCounter, g.localCounter
	g.current = fn
	g.tempCounter, g.localCounter = 0, 0

	if tmpl.d.Body != nil && !tmpl.d.Extern {
		ctx := &genCtx{g: g, m: tmpl.m, scope: scope, genericParams: sym.GenericParams, genericArgs: argTypes}
		ctx.genBlock(tmpl.d.Body)
		if isVoidType(retType) {
			g.emit(Instruction{Op: OpReturn})
		}
	}

	g.current, g.tempCounter, g.localCounter = prevCurrent, prevTemp, prevLocal
	return fn
}

func isVoidType(t *types.Type) bool {
	return t == nil || (t.Kind == types.KindPrimitive && t.Prim == types.Void)
}
