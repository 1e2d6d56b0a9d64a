package codegen_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/virexlang/virex/internal/codegen"
	"github.com/virexlang/virex/internal/ir"
)

func TestEmitWritesFixedHeadersAndResultStruct(t *testing.T) {
	out, err := codegen.Emit(&ir.Module{})
	require.NoError(t, err)
	assert.Contains(t, out, "#include <stdint.h>")
	assert.Contains(t, out, "struct Result { int is_ok; long ok; long err; };")
}

func TestEmitForceIncludesSliceUint8EvenWhenUnused(t *testing.T) {
	out, err := codegen.Emit(&ir.Module{})
	require.NoError(t, err)
	assert.Contains(t, out, "struct Slice_uint8_t { uint8_t *data; int64_t len; };")
}

func TestEmitSkipsWhitelistedExternRedeclaration(t *testing.T) {
	mod := &ir.Module{Functions: []*ir.Function{
		{Name: "puts", Extern: true, ReturnCType: "int32_t", Params: []ir.Param{{Name: "s", CType: "const char *"}}},
	}}
	out, err := codegen.Emit(mod)
	require.NoError(t, err)
	assert.NotContains(t, out, "int32_t puts(", "puts is already declared by <stdio.h> and must not be redeclared")
}

func TestEmitDeclaresNonWhitelistedExtern(t *testing.T) {
	mod := &ir.Module{Functions: []*ir.Function{
		{Name: "sqlite3_open", Extern: true, ReturnCType: "int32_t", Params: []ir.Param{{Name: "path", CType: "const char *"}}},
	}}
	out, err := codegen.Emit(mod)
	require.NoError(t, err)
	assert.Contains(t, out, "int32_t sqlite3_open(const char * path);")
}

// TestEmitRendersSimpleFunctionBody exercises a non-trivial lowered
// function directly (bypassing C5/C6 — codegen's own contract is
// *ir.Module in, C source out): t0 = a + b; return t0;
func TestEmitRendersSimpleFunctionBody(t *testing.T) {
	fn := &ir.Function{
		Name:        "main__add",
		ReturnCType: "int32_t",
		Params:      []ir.Param{{Name: "a", CType: "int32_t"}, {Name: "b", CType: "int32_t"}},
		TempTypes:   []string{"int32_t"},
		Body: []ir.Instruction{
			{Op: ir.OpAdd, Dst: ir.Temp(0), HasDst: true, Args: []ir.Operand{ir.Local("a"), ir.Local("b")}},
			{Op: ir.OpReturn, Args: []ir.Operand{ir.Temp(0)}},
		},
	}
	out, err := codegen.Emit(&ir.Module{Functions: []*ir.Function{fn}})
	require.NoError(t, err)
	assert.Contains(t, out, "int32_t main__add(int32_t a, int32_t b) {")
	assert.Contains(t, out, "int32_t t0;")
	assert.Contains(t, out, "t0 = a + b;")
	assert.Contains(t, out, "return t0;")
}

// TestEmitRendersWhileLoopAsForLoop exercises the loop-pattern recognizer
// over genWhile's exact output shape.
func TestEmitRendersWhileLoopAsForLoop(t *testing.T) {
	fn := &ir.Function{
		Name:        "main__count",
		ReturnCType: "void",
		TempTypes:   []string{"bool"},
		Locals:      []ir.Local{{Name: "i_1", CType: "int32_t"}},
		Body: []ir.Instruction{
			{Op: ir.OpLabel, Target: "while_start_1"},
			{Op: ir.OpCmpLT, Dst: ir.Temp(0), HasDst: true, Args: []ir.Operand{ir.Local("i_1"), ir.ConstInt(10)}},
			{Op: ir.OpJumpFalse, Args: []ir.Operand{ir.Temp(0)}, Target: "while_end_1"},
			{Op: ir.OpAssign, Dst: ir.Local("i_1"), HasDst: true, Args: []ir.Operand{ir.Local("i_1")}},
			{Op: ir.OpJump, Target: "while_start_1"},
			{Op: ir.OpLabel, Target: "while_end_1"},
			{Op: ir.OpReturn},
		},
	}
	out, err := codegen.Emit(&ir.Module{Functions: []*ir.Function{fn}})
	require.NoError(t, err)
	assert.Contains(t, out, "#pragma GCC ivdep")
	assert.Contains(t, out, "for (;;) {")
	assert.Contains(t, out, "__builtin_expect")
	assert.NotContains(t, out, "goto while_start_1", "the recognized loop's own back-edge must not fall back to a goto")
}

// TestEmitFallsBackToGotoWhenLoopShapeIsUnrecognized exercises the
// recognizer's own negative case: a hand-built body that merely jumps
// backward without matching genWhile/genFor's skeleton must still emit
// correct (if unstructured) C via the raw label/goto path.
func TestEmitFallsBackToGotoWhenLoopShapeIsUnrecognized(t *testing.T) {
	fn := &ir.Function{
		Name:        "main__loopy",
		ReturnCType: "void",
		Body: []ir.Instruction{
			{Op: ir.OpLabel, Target: "top"},
			{Op: ir.OpJump, Target: "top"},
		},
	}
	out, err := codegen.Emit(&ir.Module{Functions: []*ir.Function{fn}})
	require.NoError(t, err)
	assert.Contains(t, out, "top: ;")
	assert.Contains(t, out, "goto top;")
}

func TestAccessOperatorFollowsOperandsDeclaredCType(t *testing.T) {
	fn := &ir.Function{
		Name:        "main__get",
		ReturnCType: "int32_t",
		Params:      []ir.Param{{Name: "p", CType: "struct Box *"}},
		TempTypes:   []string{"int32_t"},
		Body: []ir.Instruction{
			{Op: ir.OpFieldGet, Dst: ir.Temp(0), HasDst: true, Args: []ir.Operand{ir.Local("p")}, Field: "value"},
			{Op: ir.OpReturn, Args: []ir.Operand{ir.Temp(0)}},
		},
	}
	out, err := codegen.Emit(&ir.Module{Functions: []*ir.Function{fn}})
	require.NoError(t, err)
	assert.True(t, strings.Contains(out, "p->value"), "a pointer-typed base must be accessed with ->, got:\n%s", out)
}

func TestEmitDefinesPackedStructWithAttribute(t *testing.T) {
	mod := &ir.Module{Structs: []*ir.StructDef{
		{Name: "Header", Packed: true, Fields: []ir.Local{{Name: "tag", CType: "uint8_t"}}},
	}}
	out, err := codegen.Emit(mod)
	require.NoError(t, err)
	assert.Contains(t, out, "struct Header {")
	assert.Contains(t, out, "__attribute__((packed))")
}
