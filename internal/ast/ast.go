// Package ast defines Virex's abstract syntax tree: the contract between
// the (out-of-scope) parser and C4/C5/C6. Three node categories —
// expression, statement, declaration — plus a Program root. The tree is
// read-only after parsing except for the ResolvedType slot C5 writes on
// every expression node.
package ast

import "fmt"

// Pos is a single source location.
type Pos struct {
	File   string
	Line   int
	Column int
}

func (p Pos) String() string { return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column) }

// Span is a half-open source range.
type Span struct {
	Start Pos
	End   Pos
}

// Node is implemented by every AST node.
type Node interface {
	Position() Pos
}

// Expr is any expression node. Resolved carries the Type C5 assigns;
// it is nil until analysis runs and is overwritten, never accumulated,
// on re-analysis.
type Expr interface {
	Node
	exprNode()
}

// Stmt is any statement node.
type Stmt interface {
	Node
	stmtNode()
}

// TypeExpr is a syntactic type reference as written by the programmer,
// resolved to a *types.Type by C5; kept distinct from internal/types.Type
// so the AST carries no dependency on the resolved type representation.
type TypeExpr interface {
	Node
	typeNode()
}

// Decl is any top-level declaration.
type Decl interface {
	Node
	declNode()
}

// Pattern is a match-arm pattern.
type Pattern interface {
	Node
	patternNode()
}

// Program is the AST root. It owns its declarations; each declaration
// owns its nested statements, expressions, and type references.
type Program struct {
	ModuleName string // "" if the file carries no `module "x";` declaration
	Imports    []*ImportDecl
	Decls      []Decl
	Pos        Pos
}

func (p *Program) Position() Pos { return p.Pos }

// ImportDecl is a single `import "path" [as alias];`.
type ImportDecl struct {
	Path  string
	Alias string // "" if no `as` clause
	Pos   Pos
}

func (i *ImportDecl) Position() Pos { return i.Pos }
