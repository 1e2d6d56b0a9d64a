package errors

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/virexlang/virex/internal/ast"
)

func TestNewBuildsReportWithSpan(t *testing.T) {
	pos := ast.Pos{File: "a.vx", Line: 3, Column: 5}
	r := New(TYP001, "sema", pos, "cannot assign %s to %s", "i64", "i32")

	assert.Equal(t, TYP001, r.Code)
	assert.Equal(t, "sema", r.Phase)
	assert.Equal(t, "cannot assign i64 to i32", r.Message)
	require.NotNil(t, r.Span)
	assert.Equal(t, pos, r.Span.Start)
}

func TestWrapAndAsReportRoundTrip(t *testing.T) {
	r := New(LDR002, "loader", ast.Pos{}, "cycle")
	err := Wrap(r)

	got, ok := AsReport(err)
	require.True(t, ok)
	assert.Same(t, r, got)
}

func TestAsReportFalseForPlainError(t *testing.T) {
	_, ok := AsReport(assertErr{})
	assert.False(t, ok)
}

type assertErr struct{}

func (assertErr) Error() string { return "plain" }

func TestCollectorHasErrorsIgnoresWarnings(t *testing.T) {
	var c Collector
	c.Add(NewWarning(SAF004, "sema", ast.Pos{}, "unnecessary unsafe block"))
	assert.False(t, c.HasErrors())
	assert.Equal(t, 1, c.Count())

	c.Add(New(TYP001, "sema", ast.Pos{}, "mismatch"))
	assert.True(t, c.HasErrors())
	assert.Equal(t, 2, c.Count())
}

func TestNewWarningMarksReportWarning(t *testing.T) {
	r := NewWarning(SAF004, "sema", ast.Pos{}, "unnecessary unsafe block")
	assert.True(t, r.Warning)
	assert.Contains(t, r.Render(), "warning")
}

func TestRenderIncludesLocationArrow(t *testing.T) {
	r := New(TYP001, "sema", ast.Pos{File: "a.vx", Line: 3, Column: 5}, "mismatch")
	out := r.Render()
	assert.Contains(t, out, "-->")
	assert.Contains(t, out, "a.vx:3:5")
}

func TestRenderSkipsSnippetWhenSourceFileIsUnavailable(t *testing.T) {
	r := New(TYP001, "sema", ast.Pos{File: "does-not-exist.vx", Line: 1, Column: 1}, "mismatch")
	out := r.Render()
	assert.Contains(t, out, "-->")
	assert.NotContains(t, out, "|")
}

func TestRenderShowsSourceSnippetAndCaret(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/a.vx"
	require.NoError(t, os.WriteFile(path, []byte("let x: i32 = f();\n"), 0o644))

	r := New(TYP001, "sema", ast.Pos{File: path, Line: 1, Column: 14}, "mismatch")
	out := r.Render()
	assert.Contains(t, out, "let x: i32 = f();")
	assert.Contains(t, out, "^")
}

func TestSuggestOrdersByEditDistance(t *testing.T) {
	got := Suggest("lenght", []string{"length", "height", "width", "zzzzzzzzzz"})
	require.NotEmpty(t, got)
	assert.Equal(t, "length", got[0])
}

func TestSuggestDropsDistantCandidates(t *testing.T) {
	got := Suggest("x", []string{"completely_unrelated_name"})
	assert.Empty(t, got)
}

func TestToJSONRoundTrips(t *testing.T) {
	r := New(NAM001, "sema", ast.Pos{File: "a.vx", Line: 1, Column: 1}, "undefined: %s", "foo")
	js, err := r.ToJSON(false)
	require.NoError(t, err)
	assert.Contains(t, js, `"code":"NAM001"`)
	assert.Contains(t, js, `"schema":"virex.error/v1"`)
}

func TestExpandTabsToSpacesPreservesColumnCount(t *testing.T) {
	in := "\tfoo"
	out := ExpandTabsToSpaces(in)
	assert.Len(t, out, len(in))
	assert.Equal(t, " foo", out)
}
