package sema

import (
	"github.com/virexlang/virex/internal/ast"
	virexerrors "github.com/virexlang/virex/internal/errors"
	"github.com/virexlang/virex/internal/types"
)

// checkExhaustive validates a match's arms against its subject's type:
// a result subject must cover both ok(...) and err(...); an enum subject
// must cover every declared variant, or carry a `_` wildcard arm.
func checkExhaustive(a *Analyzer, subjectType *types.Type, s *ast.MatchStmt) {
	if subjectType == nil {
		return
	}
	switch subjectType.Kind {
	case types.KindResult:
		checkResultExhaustive(a, s)
	case types.KindEnum:
		checkEnumExhaustive(a, subjectType, s)
	}
}

func checkResultExhaustive(a *Analyzer, s *ast.MatchStmt) {
	var hasOk, hasErr bool
	for _, arm := range s.Arms {
		rp, ok := arm.Pattern.(*ast.ResultPattern)
		if !ok {
			a.addf(virexerrors.EXH002, "sema", arm.Pattern.Position(), "pattern does not match a result subject")
			continue
		}
		if rp.IsOk {
			hasOk = true
		} else {
			hasErr = true
		}
	}
	if !hasOk {
		a.addf(virexerrors.EXH001, "sema", s.Position(), "match over result is missing an ok(...) arm")
	}
	if !hasErr {
		a.addf(virexerrors.EXH001, "sema", s.Position(), "match over result is missing an err(...) arm")
	}
}

func checkEnumExhaustive(a *Analyzer, subjectType *types.Type, s *ast.MatchStmt) {
	sym, ok := a.resolveStructSymbol(subjectType.Name)
	if !ok {
		return
	}

	covered := make(map[string]bool)
	wildcard := false
	for _, arm := range s.Arms {
		ep, ok := arm.Pattern.(*ast.EnumPattern)
		if !ok {
			a.addf(virexerrors.EXH002, "sema", arm.Pattern.Position(), "pattern does not match an enum subject")
			continue
		}
		if ep.Wildcard {
			wildcard = true
			continue
		}
		found := false
		for _, v := range sym.EnumVariants {
			if v == ep.Tag {
				found = true
				break
			}
		}
		if !found {
			a.addf(virexerrors.EXH002, "sema", ep.Position(), "%q is not a variant of %s", ep.Tag, subjectType.Name)
			continue
		}
		covered[ep.Tag] = true
	}

	if wildcard {
		return
	}
	for _, v := range sym.EnumVariants {
		if !covered[v] {
			a.addf(virexerrors.EXH001, "sema", s.Position(), "match over %s is not exhaustive: missing variant %q", subjectType.Name, v)
			return
		}
	}
}
