package symtable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/virexlang/virex/internal/types"
)

func TestNewGlobalScopeHasNoParentAndDepthZero(t *testing.T) {
	s := NewGlobalScope()
	assert.Nil(t, s.Parent())
	assert.Equal(t, 0, s.Depth())
}

func TestEnterAndExitNestScopes(t *testing.T) {
	global := NewGlobalScope()
	inner := global.Enter()
	assert.Equal(t, 1, inner.Depth())
	assert.Same(t, global, inner.Parent())
	assert.Same(t, global, inner.Exit())
}

func TestExitPanicsOnTheGlobalScope(t *testing.T) {
	global := NewGlobalScope()
	assert.Panics(t, func() { global.Exit() })
}

func TestInsertRejectsDuplicateNamesInTheSameScope(t *testing.T) {
	s := NewGlobalScope()
	require.True(t, s.Insert(&Symbol{Name: "x", Kind: KindVariable}))
	assert.False(t, s.Insert(&Symbol{Name: "x", Kind: KindVariable}), "a second x in the same scope must be rejected")
}

func TestInsertAllowsShadowingInANestedScope(t *testing.T) {
	global := NewGlobalScope()
	require.True(t, global.Insert(&Symbol{Name: "x", Kind: KindVariable, Type: types.Primitive(types.I32)}))

	inner := global.Enter()
	assert.True(t, inner.Insert(&Symbol{Name: "x", Kind: KindVariable, Type: types.Primitive(types.F64)}),
		"shadowing an outer x from a nested scope must be allowed")

	sym, ok := inner.LookupCurrent("x")
	require.True(t, ok)
	assert.Equal(t, types.F64, sym.Type.Prim)
}

func TestLookupAscendsToTheGlobalScope(t *testing.T) {
	global := NewGlobalScope()
	require.True(t, global.Insert(&Symbol{Name: "g", Kind: KindVariable}))
	inner := global.Enter().Enter()

	sym, ok := inner.Lookup("g")
	require.True(t, ok)
	assert.Equal(t, "g", sym.Name)

	_, ok = inner.Lookup("nope")
	assert.False(t, ok)
}

func TestLookupCurrentDoesNotAscend(t *testing.T) {
	global := NewGlobalScope()
	require.True(t, global.Insert(&Symbol{Name: "g", Kind: KindVariable}))
	inner := global.Enter()

	_, ok := inner.LookupCurrent("g")
	assert.False(t, ok, "LookupCurrent must not see symbols declared in an ancestor scope")
}

func TestNamesPreservesInsertionOrder(t *testing.T) {
	s := NewGlobalScope()
	s.Insert(&Symbol{Name: "c"})
	s.Insert(&Symbol{Name: "a"})
	s.Insert(&Symbol{Name: "b"})
	assert.Equal(t, []string{"c", "a", "b"}, s.Names())
}

func TestAllReportsEachNameOnceNearestScopeWins(t *testing.T) {
	global := NewGlobalScope()
	global.Insert(&Symbol{Name: "x", Kind: KindVariable, Type: types.Primitive(types.I32)})
	global.Insert(&Symbol{Name: "y", Kind: KindVariable})

	inner := global.Enter()
	inner.Insert(&Symbol{Name: "x", Kind: KindVariable, Type: types.Primitive(types.F64)})

	all := inner.All()
	byName := make(map[string]*Symbol, len(all))
	for _, sym := range all {
		byName[sym.Name] = sym
	}
	require.Len(t, all, 2, "x must appear once, shadowed by the nearer scope")
	assert.Equal(t, types.F64, byName["x"].Type.Prim)
	assert.Contains(t, byName, "y")
}

func TestKindString(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{KindVariable, "variable"},
		{KindFunction, "function"},
		{KindType, "type"},
		{KindModule, "module"},
		{KindConstant, "constant"},
		{Kind(99), "kind(99)"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.kind.String())
	}
}
