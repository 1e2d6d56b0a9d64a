package ast

// declBase carries the position every declaration shares.
type declBase struct {
	Pos Pos
}

func (d *declBase) Position() Pos { return d.Pos }
func (d *declBase) declNode()     {}

// Param is a single function parameter.
type Param struct {
	Name string
	Type TypeExpr
	Pos  Pos
}

// FuncDecl is a function declaration: `[pub] [extern] fn name<G...>(params) -> ret { body }`
// or, for an extern declaration, a prototype with Body == nil.
type FuncDecl struct {
	declBase
	Name          string
	GenericParams []string
	Params        []Param
	Variadic      bool
	Return        TypeExpr // nil means void
	Body          *BlockStmt
	Public        bool
	Extern        bool
}

// StructField is a single field of a StructDecl.
type StructField struct {
	Name string
	Type TypeExpr
	Pos  Pos
}

// StructDecl is `[pub] struct Name<G...> { fields... }`.
type StructDecl struct {
	declBase
	Name          string
	GenericParams []string
	Fields        []StructField
	Public        bool
	Packed        bool
}

// EnumDecl is `[pub] enum Name<G...> { Variant, Variant, ... }`.
type EnumDecl struct {
	declBase
	Name          string
	GenericParams []string
	Variants      []string
	Public        bool
}

// GlobalVarDecl is a top-level `[pub] [const] var name: T = init;`.
type GlobalVarDecl struct {
	declBase
	Name   string
	Type   TypeExpr
	Init   Expr
	Public bool
	Const  bool
}
