package ir

import (
	"github.com/virexlang/virex/internal/ast"
	"github.com/virexlang/virex/internal/types"
)

// genBlock enters a fresh child scope and lowers every statement in b
// within it, mirroring C5's per-block scoping.
func (ctx *genCtx) genBlock(b *ast.BlockStmt) {
	child := ctx.child()
	for _, s := range b.Stmts {
		child.genStmt(s)
	}
}

func (ctx *genCtx) genStmt(s ast.Stmt) {
	switch st := s.(type) {
	case *ast.ExprStmt:
		ctx.genExpr(st.X)
	case *ast.VarDeclStmt:
		ctx.genVarDecl(st)
	case *ast.IfStmt:
		ctx.genIf(st)
	case *ast.WhileStmt:
		ctx.genWhile(st)
	case *ast.ForStmt:
		ctx.genFor(st)
	case *ast.ReturnStmt:
		ctx.genReturn(st)
	case *ast.BlockStmt:
		ctx.genBlock(st)
	case *ast.MatchStmt:
		ctx.genMatch(st)
	case *ast.FailStmt:
		ctx.genFail(st)
	case *ast.UnsafeStmt:
		ctx.genBlock(st.Body) // unsafe is a sema-only concept; emits identically
	case *ast.BreakStmt:
		ctx.emit(Instruction{Op: OpJump, Target: ctx.breakLabel})
	case *ast.ContinueStmt:
		ctx.emit(Instruction{Op: OpJump, Target: ctx.continueLabel})
	}
}

func (ctx *genCtx) genVarDecl(s *ast.VarDeclStmt) {
	unique := ctx.g.declLocal(s.Name, ctx.ctype(s.ResolvedType))
	ctx.scope.define(s.Name, unique)
	if s.Init != nil {
		v := ctx.genExpr(s.Init)
		ctx.emit(Instruction{Op: OpAssign, Dst: Local(unique), HasDst: true, Args: []Operand{v}})
	}
}

func (ctx *genCtx) genIf(s *ast.IfStmt) {
	cond := ctx.genExpr(s.Cond)
	elseLabel := ctx.g.newLabel("if_else")
	endLabel := ctx.g.newLabel("if_end")
	ctx.emit(Instruction{Op: OpJumpFalse, Args: []Operand{cond}, Target: elseLabel})
	ctx.genBlock(s.Then)
	ctx.emit(Instruction{Op: OpJump, Target: endLabel})
	ctx.emit(Instruction{Op: OpLabel, Target: elseLabel})
	if s.Else != nil {
		ctx.genStmt(s.Else)
	}
	ctx.emit(Instruction{Op: OpLabel, Target: endLabel})
}

func (ctx *genCtx) genWhile(s *ast.WhileStmt) {
	start := ctx.g.newLabel("while_start")
	end := ctx.g.newLabel("while_end")
	ctx.emit(Instruction{Op: OpLabel, Target: start})
	cond := ctx.genExpr(s.Cond)
	ctx.emit(Instruction{Op: OpJumpFalse, Args: []Operand{cond}, Target: end})

	inner := ctx.child()
	inner.breakLabel, inner.continueLabel = end, start
	inner.genBlock(s.Body)

	ctx.emit(Instruction{Op: OpJump, Target: start})
	ctx.emit(Instruction{Op: OpLabel, Target: end})
}

func (ctx *genCtx) genFor(s *ast.ForStmt) {
	inner := ctx.child()
	if s.Init != nil {
		inner.genStmt(s.Init)
	}

	start := ctx.g.newLabel("for_start")
	end := ctx.g.newLabel("for_end")
	post := ctx.g.newLabel("for_post")
	ctx.emit(Instruction{Op: OpLabel, Target: start})
	if s.Cond != nil {
		cond := inner.genExpr(s.Cond)
		ctx.emit(Instruction{Op: OpJumpFalse, Args: []Operand{cond}, Target: end})
	}

	body := inner.child()
	body.breakLabel, body.continueLabel = end, post
	body.genBlock(s.Body)

	ctx.emit(Instruction{Op: OpLabel, Target: post})
	if s.Post != nil {
		inner.genExpr(s.Post)
	}
	ctx.emit(Instruction{Op: OpJump, Target: start})
	ctx.emit(Instruction{Op: OpLabel, Target: end})
}

func (ctx *genCtx) genReturn(s *ast.ReturnStmt) {
	if s.Value == nil {
		ctx.emit(Instruction{Op: OpReturn})
		return
	}
	v := ctx.genExpr(s.Value)
	ctx.emit(Instruction{Op: OpReturn, Args: []Operand{v}})
}

func (ctx *genCtx) genFail(s *ast.FailStmt) {
	if s.Value == nil {
		ctx.emit(Instruction{Op: OpFail})
		return
	}
	v := ctx.genExpr(s.Value)
	ctx.emit(Instruction{Op: OpFail, Args: []Operand{v}})
}

func tagIndex(variants []string, tag string) int {
	for i, v := range variants {
		if v == tag {
			return i
		}
	}
	return -1
}

// genMatch lowers a match statement to a flat test-and-jump chain over
// the subject's tag field (a result's is_ok flag, or an enum's ordinal
// tag). Exhaustiveness was already verified by C5, so the final arm
// (and any wildcard arm) runs unconditionally rather than being guarded
// by one more comparison.
func (ctx *genCtx) genMatch(s *ast.MatchStmt) {
	subjectType := ast.Resolved(s.Subject)
	subj := ctx.genExpr(s.Subject)
	end := ctx.g.newLabel("match_end")
	isResult := subjectType != nil && subjectType.Kind == types.KindResult

	var variants []string
	if !isResult && subjectType != nil {
		variants, _ = ctx.g.analyzer.EnumVariants(subjectType.Name)
	}

	field := "tag"
	if isResult {
		field = "is_ok"
	}
	tag := ctx.typedTemp("int")
	ctx.emit(Instruction{Op: OpFieldGet, Dst: tag, HasDst: true, Args: []Operand{subj}, Field: field})

	nextLabel := ""
	for i, arm := range s.Arms {
		if nextLabel != "" {
			ctx.emit(Instruction{Op: OpLabel, Target: nextLabel})
			nextLabel = ""
		}

		armCtx := ctx.child()
		wildcard := false
		var testVal Operand
		switch p := arm.Pattern.(type) {
		case *ast.ResultPattern:
			testVal = ConstBool(p.IsOk)
			if p.Capture != "" {
				capType := subjectType.Err
				payloadField := "err"
				if p.IsOk {
					capType, payloadField = subjectType.Ok, "ok"
				}
				unique := ctx.g.declLocal(p.Capture, armCtx.ctype(capType))
				armCtx.scope.define(p.Capture, unique)
				ctx.emit(Instruction{Op: OpFieldGet, Dst: Local(unique), HasDst: true, Args: []Operand{subj}, Field: payloadField})
			}
		case *ast.EnumPattern:
			if p.Wildcard {
				wildcard = true
			} else {
				testVal = ConstInt(int64(tagIndex(variants, p.Tag)))
			}
		}

		isLast := i == len(s.Arms)-1
		if wildcard || isLast {
			armCtx.genBlock(arm.Body)
		} else {
			nextLabel = ctx.g.newLabel("match_next")
			cmp := ctx.typedTemp("bool")
			ctx.emit(Instruction{Op: OpCmpEQ, Dst: cmp, HasDst: true, Args: []Operand{tag, testVal}})
			ctx.emit(Instruction{Op: OpJumpFalse, Args: []Operand{cmp}, Target: nextLabel})
			armCtx.genBlock(arm.Body)
		}
		if !isLast {
			ctx.emit(Instruction{Op: OpJump, Target: end})
		}
	}
	ctx.emit(Instruction{Op: OpLabel, Target: end})
}
