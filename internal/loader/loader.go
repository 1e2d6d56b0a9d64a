// Package loader implements the project/module graph (C4): it consumes
// already-parsed modules (parsing itself is out of core scope — the
// caller supplies a ModuleSource), detects import cycles, and orchestrates
// the three global analysis phases described in §4.3.
package loader

import (
	"strings"

	"github.com/virexlang/virex/internal/ast"
	virexerrors "github.com/virexlang/virex/internal/errors"
	"github.com/virexlang/virex/internal/symtable"
)

// ModuleSource resolves an import path to its parsed Program. Path
// resolution on disk is out of core scope; a CLI driver implements this
// by invoking the external lexer/parser against whatever filesystem
// convention it chooses.
type ModuleSource interface {
	Parse(path string) (*ast.Program, error)
}

type loadState int

const (
	stateUnloaded loadState = iota
	stateLoading
	stateLoaded
)

// Module is one loaded, not-yet-analyzed compilation unit.
type Module struct {
	Name    string // declared `module "x";` name, or the import path's basename
	Path    string // the import path used to reach this module
	Program *ast.Program
	Scope   *symtable.Scope // this module's global scope, empty until C5 populates it
}

// Project owns the ordered module list and the main module (the first
// one loaded).
type Project struct {
	source  ModuleSource
	state   map[string]loadState
	modules map[string]*Module
	names   map[string]string // chosen name -> owning path, for LDR003 detection
	order   []*Module
}

// NewProject creates an empty project backed by source.
func NewProject(source ModuleSource) *Project {
	return &Project{
		source:  source,
		state:   make(map[string]loadState),
		modules: make(map[string]*Module),
		names:   make(map[string]string),
	}
}

// Load resolves path, recursively loading its imports. Re-entering a
// path already marked "loading" is a cycle (LDR002); re-entering one
// already "loaded" returns the cached Module.
func (p *Project) Load(path string) (*Module, error) {
	switch p.state[path] {
	case stateLoaded:
		return p.modules[path], nil
	case stateLoading:
		return nil, virexerrors.Wrap(virexerrors.New(virexerrors.LDR002, "loader", ast.Pos{},
			"circular dependency on module %q", path))
	}

	p.state[path] = stateLoading

	prog, err := p.source.Parse(path)
	if err != nil {
		return nil, virexerrors.Wrap(virexerrors.New(virexerrors.LDR001, "loader", ast.Pos{},
			"module not found: %s: %v", path, err))
	}

	name := chosenName(path, prog)
	if owner, exists := p.names[name]; exists && owner != path {
		return nil, virexerrors.Wrap(virexerrors.New(virexerrors.LDR003, "loader", prog.Pos,
			"duplicate module definition: %q already names module at %s", name, owner))
	}
	p.names[name] = path

	mod := &Module{Name: name, Path: path, Program: prog, Scope: symtable.NewGlobalScope()}
	p.modules[path] = mod
	p.order = append(p.order, mod)

	for _, imp := range prog.Imports {
		if _, err := p.Load(imp.Path); err != nil {
			return nil, err
		}
	}

	p.state[path] = stateLoaded
	return mod, nil
}

// Main returns the first module loaded, or nil if none has been.
func (p *Project) Main() *Module {
	if len(p.order) == 0 {
		return nil
	}
	return p.order[0]
}

// Modules returns every loaded module, in load order.
func (p *Project) Modules() []*Module { return p.order }

// ByPath returns the module loaded under the given import path.
func (p *Project) ByPath(path string) (*Module, bool) {
	m, ok := p.modules[path]
	return m, ok
}

// Analyze runs the three global phases of §4.3: a declaration pass
// (delegated to declPass — normally sema's forward-type/population/
// function pass), import linking (performed here directly), and a body
// pass (delegated to bodyPass). Any error in a phase short-circuits the
// project; declPass/bodyPass are injected rather than imported to avoid
// a loader<->sema import cycle (sema already depends on loader for the
// Module/Project types).
func (p *Project) Analyze(declPass, bodyPass func(*Module) error) error {
	for _, m := range p.order {
		if err := declPass(m); err != nil {
			return err
		}
	}
	if err := p.linkImports(); err != nil {
		return err
	}
	for _, m := range p.order {
		if err := bodyPass(m); err != nil {
			return err
		}
	}
	return nil
}

// linkImports implements §4.3 phase 2: for each module M and each of its
// imports I, locate the loaded target module T, create a module-kind
// symbol in M's global scope under the alias I.alias if present,
// otherwise under I's filename basename, and point its ModuleTable at
// T's global scope.
func (p *Project) linkImports() error {
	for _, m := range p.order {
		for _, imp := range m.Program.Imports {
			target, ok := p.modules[imp.Path]
			if !ok {
				return virexerrors.Wrap(virexerrors.New(virexerrors.LDR001, "loader", imp.Pos,
					"module not found: %s", imp.Path))
			}
			alias := imp.Alias
			if alias == "" {
				alias = basename(imp.Path)
			}
			sym := &symtable.Symbol{
				Name:        alias,
				Kind:        symtable.KindModule,
				Pos:         symtable.Pos{Line: imp.Pos.Line, Column: imp.Pos.Column},
				ModuleTable: target.Scope,
			}
			if !m.Scope.Insert(sym) {
				return virexerrors.Wrap(virexerrors.New(virexerrors.NAM002, "sema", imp.Pos,
					"duplicate import alias %q in module %q", alias, m.Name))
			}
		}
	}
	return nil
}

// chosenName picks a module's name: its declared `module "x";` name if
// present, otherwise the import path's basename without extension.
func chosenName(path string, prog *ast.Program) string {
	if prog.ModuleName != "" {
		return prog.ModuleName
	}
	return basename(path)
}

func basename(path string) string {
	name := path
	if i := strings.LastIndexAny(name, "/\\"); i >= 0 {
		name = name[i+1:]
	}
	name = strings.TrimSuffix(name, ".vx")
	return name
}
