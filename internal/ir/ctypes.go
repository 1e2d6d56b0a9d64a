package ir

import (
	"github.com/virexlang/virex/internal/mangle"
	"github.com/virexlang/virex/internal/types"
)

var primCType = map[types.PrimKind]string{
	types.I8: "int8_t", types.I16: "int16_t", types.I32: "int32_t", types.I64: "int64_t",
	types.U8: "uint8_t", types.U16: "uint16_t", types.U32: "uint32_t", types.U64: "uint64_t",
	types.F32: "float", types.F64: "double", types.Bool: "bool", types.Void: "void",
	types.CString: "const char *",
}

// TypeNamer maps resolved Types to their C spelling, registering any
// slice/result materialization it encounters into mod so the emitter can
// later declare their backing structs exactly once each.
type TypeNamer struct {
	mod        *Module
	sliceSeen  map[string]bool
	resultSeen map[string]bool
}

// NewTypeNamer creates a TypeNamer that records materializations into mod.
func NewTypeNamer(mod *Module) *TypeNamer {
	return &TypeNamer{mod: mod, sliceSeen: map[string]bool{}, resultSeen: map[string]bool{}}
}

// CType renders t's C spelling, registering a Slice/Result materialization
// as a side effect when t is a slice or result type.
func (tn *TypeNamer) CType(t *types.Type) string {
	if t == nil {
		return "void"
	}
	switch t.Kind {
	case types.KindPrimitive:
		if c, ok := primCType[t.Prim]; ok {
			return c
		}
		return "void"
	case types.KindPointer:
		return tn.CType(t.Base) + " *"
	case types.KindArray:
		return tn.CType(t.Elem)
	case types.KindSlice:
		elemC := tn.CType(t.Elem)
		name := mangle.SliceStructName(elemC)
		if !tn.sliceSeen[name] {
			tn.sliceSeen[name] = true
			tn.mod.Slices = append(tn.mod.Slices, &SliceDef{Name: name, ElemCType: elemC})
		}
		return name
	case types.KindStruct, types.KindEnum:
		return t.Name
	case types.KindResult:
		okC := tn.CType(t.Ok)
		errC := tn.CType(t.Err)
		name := mangle.ResultStructName(okC, errC)
		if !tn.resultSeen[name] {
			tn.resultSeen[name] = true
			tn.mod.Results = append(tn.mod.Results, &ResultDef{Name: name, OkCType: okC, ErrCType: errC})
		}
		return name
	case types.KindFunction:
		return "void *"
	}
	return "void"
}

// ArrayElemAndSize returns t's element C type and declared size, for
// declaring a fixed-size array local/field ("CType name[Size];").
func (tn *TypeNamer) ArrayElemAndSize(t *types.Type) (string, int) {
	if t == nil || t.Kind != types.KindArray {
		return "", 0
	}
	return tn.CType(t.Elem), t.Size
}
