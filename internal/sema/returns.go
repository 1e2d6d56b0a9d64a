package sema

import "github.com/virexlang/virex/internal/ast"

// guaranteesReturn reports whether stmt guarantees the enclosing function
// returns on every path through it (§4.4 Return-path analysis): a return
// or fail always does; a block does if any statement in it does; an if
// does only when both branches do; a match does when every arm does;
// loops never do, since the compiler does not prove they execute; an
// unsafe block delegates to its body.
func guaranteesReturn(stmt ast.Stmt) bool {
	switch s := stmt.(type) {
	case *ast.ReturnStmt, *ast.FailStmt:
		return true
	case *ast.BlockStmt:
		for _, inner := range s.Stmts {
			if guaranteesReturn(inner) {
				return true
			}
		}
		return false
	case *ast.IfStmt:
		return guaranteesReturn(s.Then) && s.Else != nil && guaranteesReturn(s.Else)
	case *ast.MatchStmt:
		if len(s.Arms) == 0 {
			return false
		}
		for _, arm := range s.Arms {
			if !guaranteesReturn(arm.Body) {
				return false
			}
		}
		return true
	case *ast.WhileStmt, *ast.ForStmt:
		return false
	case *ast.UnsafeStmt:
		return guaranteesReturn(s.Body)
	}
	return false
}
