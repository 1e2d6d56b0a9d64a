package ast

import "github.com/virexlang/virex/internal/types"

// exprBase carries the slot every expression shares: its source position
// and the Type C5 resolves it to. Embedded by value so each concrete
// node gets its own ResolvedType.
type exprBase struct {
	Pos          Pos
	ResolvedType *types.Type
}

func (e *exprBase) Position() Pos { return e.Pos }
func (e *exprBase) exprNode()     {}

// Resolved returns e's resolved Type, the slot C5 writes during body
// analysis; nil before analysis runs.
func Resolved(e Expr) *types.Type {
	if b, ok := e.(interface{ resolvedType() *types.Type }); ok {
		return b.resolvedType()
	}
	return nil
}

// SetResolved overwrites e's resolved Type, replacing any previous
// value (§3: "Expressions carry a post-analysis resolved Type").
func SetResolved(e Expr, t *types.Type) {
	if b, ok := e.(interface{ setResolvedType(*types.Type) }); ok {
		b.setResolvedType(t)
	}
}

func (e *exprBase) resolvedType() *types.Type     { return e.ResolvedType }
func (e *exprBase) setResolvedType(t *types.Type) { e.ResolvedType = t }

// IntLit is an integer literal; defaults to i32 (§4.4 Literal typing).
type IntLit struct {
	exprBase
	Value int64
}

// FloatLit is a floating-point literal; defaults to f64.
type FloatLit struct {
	exprBase
	Value float64
}

// BoolLit is `true`/`false`.
type BoolLit struct {
	exprBase
	Value bool
}

// StringLit is a string literal; typed as `[]u8`.
type StringLit struct {
	exprBase
	Value string
}

// NullLit is the `null` literal; typed as nullable `*void`.
type NullLit struct {
	exprBase
}

// Ident is a variable, function, constant, or module reference.
type Ident struct {
	exprBase
	Name string
}

// BinaryExpr covers arithmetic, comparison, equality, and logical ops.
// Op is one of "+","-","*","/","%","<","<=",">",">=","==","!=","&&","||".
type BinaryExpr struct {
	exprBase
	Op          string
	Left, Right Expr
}

// AssignExpr is `lhs = rhs`; lhs must be an addressable expression
// (Ident, IndexExpr, MemberExpr, ArrowExpr).
type AssignExpr struct {
	exprBase
	Left, Right Expr
}

// UnaryExpr covers "-", "!", "&" (address-of), "*" (deref).
type UnaryExpr struct {
	exprBase
	Op      string
	Operand Expr
}

// CallExpr is a function call; Callee is an Ident (free call) or a
// MemberExpr (`module.member(...)`/qualified call).
type CallExpr struct {
	exprBase
	Callee      Expr
	Args        []Expr
	TypeArgs    []TypeExpr // explicit `<...>` generic arguments, if given
	InferredArgTypes []*types.Type // written by C5 when TypeArgs is empty and inference succeeds
}

// IndexExpr is `base[index]`.
type IndexExpr struct {
	exprBase
	Base, Index Expr
}

// SliceExpr is `base[lo..hi]`; Lo/Hi may be nil for an open bound.
type SliceExpr struct {
	exprBase
	Base, Lo, Hi Expr
}

// MemberExpr is `base.field`, including `.len`/`.data` on slices and
// qualified `module.member` references.
type MemberExpr struct {
	exprBase
	Base  Expr
	Field string
}

// ArrowExpr is `base->field`, an implicit-deref member access.
type ArrowExpr struct {
	exprBase
	Base  Expr
	Field string
}

// CastExpr is `(T) expr`.
type CastExpr struct {
	exprBase
	Target TypeExpr
	Value  Expr
}

// ResultCtorExpr is `result::ok(v)` or `result::err(v)`.
type ResultCtorExpr struct {
	exprBase
	IsOk bool
	Arg  Expr
}
