package sema

import (
	"github.com/virexlang/virex/internal/ast"
	virexerrors "github.com/virexlang/virex/internal/errors"
	"github.com/virexlang/virex/internal/symtable"
	"github.com/virexlang/virex/internal/types"
)

// analyzeBlock enters a fresh child scope and analyzes every statement in
// b within it — every block introduces its own scope (§4.2). Once a
// statement guarantees a return on every path through it, everything
// after it in the same block is unreachable (§4.4 block rule); the rest
// of the block is still walked (so later errors keep surfacing), just
// flagged rather than silently accepted.
func (ctx *bodyCtx) analyzeBlock(b *ast.BlockStmt) {
	child := ctx.child()
	returned := false
	for _, s := range b.Stmts {
		if returned {
			child.a.addWarningf(virexerrors.TYP006, "sema", s.Position(), "unreachable statement")
		}
		child.analyzeStmt(s)
		if guaranteesReturn(s) {
			returned = true
		}
	}
}

func (ctx *bodyCtx) analyzeStmt(s ast.Stmt) {
	switch st := s.(type) {
	case *ast.ExprStmt:
		ctx.analyzeExpr(st.X)
	case *ast.VarDeclStmt:
		ctx.analyzeVarDecl(st)
	case *ast.IfStmt:
		ctx.analyzeIf(st)
	case *ast.WhileStmt:
		ctx.analyzeWhile(st)
	case *ast.ForStmt:
		ctx.analyzeFor(st)
	case *ast.ReturnStmt:
		ctx.analyzeReturn(st)
	case *ast.BlockStmt:
		ctx.analyzeBlock(st)
	case *ast.MatchStmt:
		ctx.analyzeMatch(st)
	case *ast.FailStmt:
		if st.Value != nil {
			ctx.analyzeExpr(st.Value)
		}
	case *ast.UnsafeStmt:
		ctx.analyzeUnsafeStmt(st)
	case *ast.BreakStmt:
		if ctx.loopDepth == 0 {
			ctx.a.addf(virexerrors.TYP002, "sema", st.Position(), "break used outside a loop")
		}
	case *ast.ContinueStmt:
		if ctx.loopDepth == 0 {
			ctx.a.addf(virexerrors.TYP002, "sema", st.Position(), "continue used outside a loop")
		}
	}
}

func (ctx *bodyCtx) analyzeVarDecl(s *ast.VarDeclStmt) {
	if _, exists := ctx.scope.LookupCurrent(s.Name); exists {
		ctx.a.addf(virexerrors.NAM002, "sema", s.Position(), "duplicate declaration %q in this scope", s.Name)
	}

	var declType *types.Type
	if s.Type != nil {
		declType = ctx.a.resolveType(ctx.m, s.Type, ctx.generics)
	}

	var initType *types.Type
	if s.Init != nil {
		initType = ctx.analyzeExpr(s.Init)
	}

	switch {
	case declType == nil:
		declType = initType
	case initType != nil && !ctx.compatible(declType, initType):
		ctx.a.addf(virexerrors.TYP001, "sema", s.Position(),
			"cannot initialize %q of type %s with value of type %s", s.Name, declType.String(), initType.String())
	}

	s.ResolvedType = declType
	ctx.scope.Insert(&symtable.Symbol{
		Name: s.Name, Kind: symtable.KindVariable, Type: declType,
		Pos: astPos(s.Position()), Depth: ctx.scope.Depth(),
	})
}

func (ctx *bodyCtx) checkBool(e ast.Expr, what string) {
	t := ctx.analyzeExpr(e)
	if t != nil && !(t.Kind == types.KindPrimitive && t.Prim == types.Bool) {
		ctx.a.addf(virexerrors.TYP002, "sema", e.Position(), "%s must be bool, got %s", what, t.String())
	}
}

func (ctx *bodyCtx) analyzeIf(s *ast.IfStmt) {
	ctx.checkBool(s.Cond, "if condition")
	ctx.analyzeBlock(s.Then)
	if s.Else != nil {
		ctx.analyzeStmt(s.Else)
	}
}

func (ctx *bodyCtx) analyzeWhile(s *ast.WhileStmt) {
	ctx.checkBool(s.Cond, "while condition")
	inner := ctx.child()
	inner.loopDepth++
	inner.analyzeBlock(s.Body)
}

func (ctx *bodyCtx) analyzeFor(s *ast.ForStmt) {
	inner := ctx.child()
	if s.Init != nil {
		inner.analyzeStmt(s.Init)
	}
	if s.Cond != nil {
		inner.checkBool(s.Cond, "for condition")
	}
	if s.Post != nil {
		inner.analyzeExpr(s.Post)
	}
	inner.loopDepth++
	inner.analyzeBlock(s.Body)
}

func (ctx *bodyCtx) analyzeReturn(s *ast.ReturnStmt) {
	var actual *types.Type
	if s.Value != nil {
		actual = ctx.analyzeExpr(s.Value)
	} else {
		actual = types.Primitive(types.Void)
	}
	if ctx.returnType != nil && actual != nil && !ctx.compatible(ctx.returnType, actual) {
		ctx.a.addf(virexerrors.TYP003, "sema", s.Position(),
			"cannot return value of type %s from a function returning %s", actual.String(), ctx.returnType.String())
	}
}

func (ctx *bodyCtx) analyzeMatch(s *ast.MatchStmt) {
	subjectType := ctx.analyzeExpr(s.Subject)
	checkExhaustive(ctx.a, subjectType, s)

	for _, arm := range s.Arms {
		child := ctx.child()
		if rp, ok := arm.Pattern.(*ast.ResultPattern); ok && rp.Capture != "" &&
			subjectType != nil && subjectType.Kind == types.KindResult {
			capType := subjectType.Err
			if rp.IsOk {
				capType = subjectType.Ok
			}
			child.scope.Insert(&symtable.Symbol{
				Name: rp.Capture, Kind: symtable.KindVariable, Type: capType,
				Pos: astPos(arm.Pos), Depth: child.scope.Depth(),
			})
		}
		child.analyzeBlock(arm.Body)
	}
}

// analyzeUnsafeStmt runs s.Body with inUnsafe set and a fresh usedUnsafe
// marker, then reports SAF004 if nothing inside actually required it —
// a warning normally, escalated to a full error under --strict-unsafe
// (§6). Each unsafe block is judged solely on what it itself directly
// contains: a nested unsafe block gets its own independent marker and
// its usage does not retroactively satisfy the enclosing one, nor does
// the enclosing block's marker leak into the nested one. Both may warn
// or error independently.
func (ctx *bodyCtx) analyzeUnsafeStmt(s *ast.UnsafeStmt) {
	inner := ctx.child()
	inner.inUnsafe = true
	used := false
	inner.usedUnsafe = &used
	inner.analyzeBlock(s.Body)

	if !used {
		ctx.a.addWarningf(virexerrors.SAF004, "sema", s.Position(), "unsafe block contains no operation that requires it")
	}
}
