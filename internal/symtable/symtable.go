// Package symtable implements nested lexical scopes over Symbol records,
// the carrier for name resolution across C5's three analysis passes.
package symtable

import (
	"fmt"

	"github.com/virexlang/virex/internal/types"
)

// Kind tags what a Symbol denotes.
type Kind int

const (
	KindVariable Kind = iota
	KindFunction
	KindType
	KindModule
	KindConstant
)

// Pos is a source location, duplicated here (rather than imported from
// internal/ast) to keep symtable free of an AST dependency; internal/ast
// and internal/sema both convert their own Pos into this shape.
type Pos struct {
	Line   int
	Column int
}

// Field is a named, typed struct field.
type Field struct {
	Name string
	Type *types.Type
}

// Flags holds the boolean attributes a Symbol may carry.
type Flags struct {
	Public      bool
	Const       bool
	Extern      bool
	Variadic    bool
	Packed      bool
	Initialized bool
}

// Symbol is a single named entry in a Scope. A Symbol's Type is valid for
// the lifetime of the owning SymbolTable; composite payloads are not
// shared with any other Symbol.
type Symbol struct {
	Name  string
	Kind  Kind
	Type  *types.Type
	Flags Flags
	Pos   Pos
	Depth int

	// Generic parameter names, for generic function/struct/enum symbols.
	GenericParams []string

	// KindConstant payload: an enum variant's ordinal value.
	EnumValue int

	// KindType payload (enum only): declared variant names, in order.
	EnumVariants []string

	// KindType payload (struct only): declared fields, in order.
	Fields []Field

	// KindFunction payload.
	ParamCount int

	// KindModule payload: the imported module's own global scope.
	ModuleTable *Scope
}

// Scope is an ordered set of Symbols with a parent link. Lookup ascends
// toward the root (global) scope; LookupCurrent searches only this scope.
type Scope struct {
	parent  *Scope
	symbols map[string]*Symbol
	order   []string
	depth   int
}

// NewGlobalScope creates a fresh root scope for one module.
func NewGlobalScope() *Scope {
	return &Scope{symbols: make(map[string]*Symbol), depth: 0}
}

// Depth reports this scope's nesting depth (0 for the global scope).
func (s *Scope) Depth() int { return s.depth }

// Parent returns the enclosing scope, or nil for the global scope.
func (s *Scope) Parent() *Scope { return s.parent }

// Enter pushes a new child scope and returns it.
func (s *Scope) Enter() *Scope {
	return &Scope{parent: s, symbols: make(map[string]*Symbol), depth: s.depth + 1}
}

// Exit returns the parent scope. It panics if called on the global scope,
// matching §4.2's "fails if asked to exit global" contract; callers at the
// analyzer level should check Parent() != nil before calling Exit.
func (s *Scope) Exit() *Scope {
	if s.parent == nil {
		panic("symtable: cannot exit the global scope")
	}
	return s.parent
}

// Insert adds sym to this scope's current level. It returns false without
// modifying the scope if a symbol with the same name already exists in
// this scope (ancestors are not checked, so shadowing in nested scopes is
// allowed) — the caller is responsible for reporting the duplicate.
func (s *Scope) Insert(sym *Symbol) bool {
	if _, exists := s.symbols[sym.Name]; exists {
		return false
	}
	if s.symbols == nil {
		s.symbols = make(map[string]*Symbol)
	}
	s.symbols[sym.Name] = sym
	s.order = append(s.order, sym.Name)
	return true
}

// Lookup walks from this scope toward the global scope, returning the
// first Symbol found under name.
func (s *Scope) Lookup(name string) (*Symbol, bool) {
	for sc := s; sc != nil; sc = sc.parent {
		if sym, ok := sc.symbols[name]; ok {
			return sym, true
		}
	}
	return nil, false
}

// LookupCurrent searches only this scope, without ascending.
func (s *Scope) LookupCurrent(name string) (*Symbol, bool) {
	sym, ok := s.symbols[name]
	return sym, ok
}

// Names returns the symbol names inserted into this scope, in insertion
// order — used by the "did you mean" suggestion helper in internal/errors.
func (s *Scope) Names() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// All returns every Symbol visible from this scope, nearest scope first,
// a name shadowed by a nearer scope is not repeated.
func (s *Scope) All() []*Symbol {
	seen := make(map[string]bool)
	var out []*Symbol
	for sc := s; sc != nil; sc = sc.parent {
		for _, name := range sc.order {
			if seen[name] {
				continue
			}
			seen[name] = true
			out = append(out, sc.symbols[name])
		}
	}
	return out
}

func (k Kind) String() string {
	switch k {
	case KindVariable:
		return "variable"
	case KindFunction:
		return "function"
	case KindType:
		return "type"
	case KindModule:
		return "module"
	case KindConstant:
		return "constant"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}
