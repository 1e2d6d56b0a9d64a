package ast

import "github.com/virexlang/virex/internal/types"

// stmtBase carries the line/column every statement shares (§3: "statements
// carry (line, column)").
type stmtBase struct {
	Pos Pos
}

func (s *stmtBase) Position() Pos { return s.Pos }
func (s *stmtBase) stmtNode()     {}

// ExprStmt is a bare expression used as a statement (a call, an
// assignment).
type ExprStmt struct {
	stmtBase
	X Expr
}

// VarDeclStmt is `var name: T = init;` (Type may be nil when the parser
// infers it from Init — C5 requires a resolvable initializer in that case).
type VarDeclStmt struct {
	stmtBase
	Name string
	Type TypeExpr
	Init Expr

	// ResolvedType is the declaration's effective type, written by C5:
	// Type resolved if explicit, else Init's resolved type.
	ResolvedType *types.Type
}

// IfStmt is `if (cond) then [else else_]`.
type IfStmt struct {
	stmtBase
	Cond       Expr
	Then       *BlockStmt
	Else       Stmt // *BlockStmt, *IfStmt (else-if), or nil
}

// WhileStmt is `while (cond) body`.
type WhileStmt struct {
	stmtBase
	Cond Expr
	Body *BlockStmt
}

// ForStmt is the C-style `for (init; cond; post) body`. Any clause may
// be nil. For-in sugar is desugared by the parser into this shape
// (§4.4: "for may desugar for-in ... into { var __slice = ...; for (...) {...} }")
// before C5 ever sees it.
type ForStmt struct {
	stmtBase
	Init Stmt // *VarDeclStmt or *ExprStmt, or nil
	Cond Expr
	Post Expr
	Body *BlockStmt
}

// ReturnStmt is `return [expr];`.
type ReturnStmt struct {
	stmtBase
	Value Expr // nil for a bare `return;`
}

// BlockStmt is `{ stmts... }`; it introduces a new scope.
type BlockStmt struct {
	stmtBase
	Stmts []Stmt
}

// MatchStmt is `match (subject) { arms... }`.
type MatchStmt struct {
	stmtBase
	Subject Expr
	Arms    []*MatchArm
}

// MatchArm is one `pattern => body` arm of a MatchStmt.
type MatchArm struct {
	Pattern Pattern
	Body    *BlockStmt
	Pos     Pos
}

// FailStmt is `fail [expr];`.
type FailStmt struct {
	stmtBase
	Value Expr // nil for a bare `fail;`
}

// UnsafeStmt is `unsafe { body }`.
type UnsafeStmt struct {
	stmtBase
	Body *BlockStmt
}

// BreakStmt is `break;`.
type BreakStmt struct {
	stmtBase
}

// ContinueStmt is `continue;`.
type ContinueStmt struct {
	stmtBase
}
