package ast

// patternBase carries the position every pattern shares.
type patternBase struct {
	Pos Pos
}

func (p *patternBase) Position() Pos { return p.Pos }
func (p *patternBase) patternNode()  {}

// ResultPattern matches a `result` subject: `ok(name)` / `err(name)`,
// with Capture == "" for a pattern that discards the payload.
type ResultPattern struct {
	patternBase
	IsOk    bool
	Capture string
}

// EnumPattern matches an enum subject by variant tag, or `_` when
// Wildcard is set.
type EnumPattern struct {
	patternBase
	Wildcard bool
	Tag      string
}
