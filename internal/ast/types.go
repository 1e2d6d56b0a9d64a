package ast

// NamedType is a bare or qualified type name, optionally generic:
// `i32`, `Pair`, `Pair<i32, i64>`, `mymod::Thing`.
type NamedType struct {
	Name     string
	TypeArgs []TypeExpr
	Pos      Pos
}

func (n *NamedType) Position() Pos { return n.Pos }
func (n *NamedType) typeNode()     {}

// PointerType is `*T` (nullable) or `*!T` (non-null).
type PointerType struct {
	Base    TypeExpr
	NonNull bool
	Pos     Pos
}

func (p *PointerType) Position() Pos { return p.Pos }
func (p *PointerType) typeNode()     {}

// ArrayType is `T[N]`.
type ArrayType struct {
	Elem TypeExpr
	Size int
	Pos  Pos
}

func (a *ArrayType) Position() Pos { return a.Pos }
func (a *ArrayType) typeNode()     {}

// SliceType is `[]T`.
type SliceType struct {
	Elem TypeExpr
	Pos  Pos
}

func (s *SliceType) Position() Pos { return s.Pos }
func (s *SliceType) typeNode()     {}

// FuncType is `fn(T1, T2) -> R`, used for function-typed parameters.
type FuncType struct {
	Params []TypeExpr
	Return TypeExpr
	Pos    Pos
}

func (f *FuncType) Position() Pos { return f.Pos }
func (f *FuncType) typeNode()     {}

// ResultType is `result<Ok, Err>`.
type ResultType struct {
	Ok  TypeExpr
	Err TypeExpr
	Pos Pos
}

func (r *ResultType) Position() Pos { return r.Pos }
func (r *ResultType) typeNode()     {}
