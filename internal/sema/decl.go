package sema

import (
	"github.com/virexlang/virex/internal/ast"
	virexerrors "github.com/virexlang/virex/internal/errors"
	"github.com/virexlang/virex/internal/loader"
	"github.com/virexlang/virex/internal/mangle"
	"github.com/virexlang/virex/internal/symtable"
	"github.com/virexlang/virex/internal/types"
)

// forwardTypePass is §4.4 Phase A step 1: for each struct/enum
// declaration, create a `type` symbol under its source name plus a
// second symbol under its module-mangled name for qualified lookups.
func (a *Analyzer) forwardTypePass(m *loader.Module) {
	seen := make(map[string]bool)
	for _, decl := range m.Program.Decls {
		var name string
		var isEnum bool
		var generics []string
		var public, packed bool
		switch d := decl.(type) {
		case *ast.StructDecl:
			name, isEnum, generics, public, packed = d.Name, false, d.GenericParams, d.Public, d.Packed
		case *ast.EnumDecl:
			name, isEnum, generics, public = d.Name, true, d.GenericParams, d.Public
		default:
			continue
		}
		if seen[name] {
			a.addf(virexerrors.NAM002, "sema", decl.Position(), "duplicate type declaration %q", name)
			continue
		}
		seen[name] = true

		mangled := mangle.Module(m.Name, name)
		var ty *types.Type
		if isEnum {
			ty = types.Enum(mangled, nil)
		} else {
			ty = types.Struct(mangled, nil)
		}

		sym := &symtable.Symbol{
			Name:          name,
			Kind:          symtable.KindType,
			Type:          ty,
			Flags:         symtable.Flags{Public: public, Packed: packed},
			Pos:           astPos(decl.Position()),
			GenericParams: generics,
		}
		m.Scope.Insert(sym)
		a.declModule[sym] = m
		a.typesByMangledName[mangled] = sym

		if mangled != name {
			twin := &symtable.Symbol{
				Name: mangled, Kind: symtable.KindType, Type: types.Clone(ty),
				Flags: sym.Flags, Pos: sym.Pos, GenericParams: generics,
			}
			m.Scope.Insert(twin)
			a.declModule[twin] = m
		}
	}
}

// typePopulationPass is §4.4 Phase A step 2: resolve struct field types
// / store enum variant lists, and insert one constant symbol per enum
// variant.
func (a *Analyzer) typePopulationPass(m *loader.Module) {
	for _, decl := range m.Program.Decls {
		switch d := decl.(type) {
		case *ast.StructDecl:
			sym, _ := m.Scope.LookupCurrent(d.Name)
			if sym == nil {
				continue
			}
			fields := make([]symtable.Field, len(d.Fields))
			for i, f := range d.Fields {
				fields[i] = symtable.Field{Name: f.Name, Type: a.resolveType(m, f.Type, d.GenericParams)}
			}
			sym.Fields = fields
			if mangled, ok := m.Scope.LookupCurrent(mangle.Module(m.Name, d.Name)); ok {
				mangled.Fields = cloneFields(fields)
			}
		case *ast.EnumDecl:
			sym, _ := m.Scope.LookupCurrent(d.Name)
			if sym == nil {
				continue
			}
			sym.EnumVariants = append([]string(nil), d.Variants...)
			if mangled, ok := m.Scope.LookupCurrent(mangle.Module(m.Name, d.Name)); ok {
				mangled.EnumVariants = append([]string(nil), d.Variants...)
			}
			for i, variant := range d.Variants {
				cs := &symtable.Symbol{
					Name: variant, Kind: symtable.KindConstant,
					Type: types.Clone(sym.Type), EnumValue: i,
					Pos: astPos(decl.Position()),
				}
				if !m.Scope.Insert(cs) {
					a.addf(virexerrors.NAM002, "sema", decl.Position(), "duplicate variant name %q", variant)
				}
			}
		}
	}
}

func cloneFields(fs []symtable.Field) []symtable.Field {
	out := make([]symtable.Field, len(fs))
	for i, f := range fs {
		out[i] = symtable.Field{Name: f.Name, Type: types.Clone(f.Type)}
	}
	return out
}

// functionGlobalPass is §4.4 Phase A step 3: create function symbols for
// every FuncDecl and variable symbols for every GlobalVarDecl.
func (a *Analyzer) functionGlobalPass(m *loader.Module) {
	seen := make(map[string]bool)
	for _, decl := range m.Program.Decls {
		switch d := decl.(type) {
		case *ast.FuncDecl:
			if seen[d.Name] {
				a.addf(virexerrors.NAM002, "sema", decl.Position(), "duplicate function declaration %q", d.Name)
				continue
			}
			seen[d.Name] = true

			params := make([]*types.Type, len(d.Params))
			for i, p := range d.Params {
				params[i] = a.resolveType(m, p.Type, d.GenericParams)
			}
			ret := a.resolveType(m, d.Return, d.GenericParams)
			if d.Return == nil {
				ret = types.Primitive(types.Void)
			}

			sym := &symtable.Symbol{
				Name: d.Name, Kind: symtable.KindFunction,
				Type:          types.Function(ret, params),
				Flags:         symtable.Flags{Public: d.Public, Extern: d.Extern, Variadic: d.Variadic},
				Pos:           astPos(decl.Position()),
				GenericParams: d.GenericParams,
				ParamCount:    len(d.Params),
			}
			m.Scope.Insert(sym)
			a.declModule[sym] = m

		case *ast.GlobalVarDecl:
			if seen[d.Name] {
				a.addf(virexerrors.NAM002, "sema", decl.Position(), "duplicate global declaration %q", d.Name)
				continue
			}
			seen[d.Name] = true

			ty := a.resolveType(m, d.Type, nil)
			sym := &symtable.Symbol{
				Name: d.Name, Kind: symtable.KindVariable, Type: ty,
				Flags: symtable.Flags{Public: d.Public, Const: d.Const},
				Pos:   astPos(decl.Position()),
			}
			m.Scope.Insert(sym)
			a.declModule[sym] = m
		}
	}
}

func astPos(p ast.Pos) symtable.Pos {
	return symtable.Pos{Line: p.Line, Column: p.Column}
}
