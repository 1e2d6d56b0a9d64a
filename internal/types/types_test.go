package types

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrimitiveString(t *testing.T) {
	tests := []struct {
		kind PrimKind
		want string
	}{
		{I32, "i32"}, {U8, "u8"}, {F64, "f64"}, {Bool, "bool"}, {Void, "void"}, {CString, "cstr"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Primitive(tt.kind).String())
	}
}

func TestCloneIsDeep(t *testing.T) {
	orig := Struct("Pair", []*Type{Primitive(I32), Primitive(I64)})
	clone := Clone(orig)
	require.True(t, Equal(orig, clone))
	if diff := cmp.Diff(orig, clone); diff != "" {
		t.Errorf("clone must be structurally identical to orig before mutation (-orig +clone):\n%s", diff)
	}

	clone.TypeArgs[0].Prim = F64
	assert.Equal(t, I32, orig.TypeArgs[0].Prim, "mutating the clone must not affect the original")
}

func TestEqualStructuralByNameAndArgs(t *testing.T) {
	a := Struct("Pair", []*Type{Primitive(I32), Primitive(I64)})
	b := Struct("Pair", []*Type{Primitive(I32), Primitive(I64)})
	c := Struct("Pair", []*Type{Primitive(I32), Primitive(F64)})
	d := Struct("Other", []*Type{Primitive(I32), Primitive(I64)})

	assert.True(t, Equal(a, b))
	assert.False(t, Equal(a, c))
	assert.False(t, Equal(a, d))
}

func TestCompatibleIntegerWidening(t *testing.T) {
	assert.True(t, Compatible(Primitive(I64), Primitive(I32)), "i32 literal flows into an i64 slot")
	assert.False(t, Compatible(Primitive(I32), Primitive(I64)), "i64 does not narrow into i32")
	assert.False(t, Compatible(Primitive(I32), Primitive(U32)), "signed/unsigned do not cross-widen")
}

func TestCompatibleNullablePointers(t *testing.T) {
	nonNull := Pointer(Primitive(I32), true)
	nullable := Pointer(Primitive(I32), false)

	assert.True(t, Compatible(nullable, nonNull), "non-null pointer flows where nullable is expected")
	assert.False(t, Compatible(nonNull, nullable), "nullable pointer must not flow where non-null is expected")
}

func TestCompatibleVoidPointerUniversal(t *testing.T) {
	voidPtr := Pointer(Primitive(Void), false)
	i32Ptr := Pointer(Primitive(I32), true)

	assert.True(t, Compatible(voidPtr, i32Ptr))
	assert.True(t, Compatible(i32Ptr, voidPtr))
}

func TestCompatibleResultVoidIsBottom(t *testing.T) {
	expected := ResultOf(Primitive(Void), Primitive(I32))
	actual := ResultOf(Primitive(I64), Primitive(I32))
	assert.True(t, Compatible(expected, actual), "void ok-slot accepts any ok payload")
}

func TestSubstituteReplacesGenericParams(t *testing.T) {
	template := Struct("Pair", []*Type{Struct("A", nil), Struct("B", nil)})
	result := Substitute(template, []string{"A", "B"}, []*Type{Primitive(I32), Primitive(I64)})

	want := Struct("Pair", []*Type{Primitive(I32), Primitive(I64)})
	assert.True(t, Equal(want, result))
}

func TestSubstituteRecursesIntoComposites(t *testing.T) {
	template := SliceT(Pointer(Struct("T", nil), true))
	result := Substitute(template, []string{"T"}, []*Type{Primitive(U8)})

	want := SliceT(Pointer(Primitive(U8), true))
	assert.True(t, Equal(want, result))
}

func TestToStringRoundTripsForMangling(t *testing.T) {
	ty := Struct("Pair", []*Type{Primitive(I32), Primitive(I64)})
	assert.Equal(t, "Pair<i32,i64>", ty.String())
}

func TestNullPointerIsVoidBase(t *testing.T) {
	n := NullPointer()
	assert.Equal(t, KindPointer, n.Kind)
	assert.False(t, n.NonNull)
	assert.Equal(t, Void, n.Base.Prim)
}
