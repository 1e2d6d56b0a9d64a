// Package types implements the Virex type system: a closed set of tagged
// type variants over primitives, pointers, arrays, slices, nominal
// struct/enum types with generic arguments, function types, and the result
// sum type.
package types

import (
	"fmt"
	"strings"
)

// Kind tags the variant held by a Type.
type Kind int

const (
	KindPrimitive Kind = iota
	KindPointer
	KindArray
	KindSlice
	KindStruct
	KindEnum
	KindFunction
	KindResult
)

// PrimKind enumerates the primitive type kinds from spec §3.
type PrimKind int

const (
	I8 PrimKind = iota
	I16
	I32
	I64
	U8
	U16
	U32
	U64
	F32
	F64
	Bool
	Void
	CString
)

var primNames = map[PrimKind]string{
	I8: "i8", I16: "i16", I32: "i32", I64: "i64",
	U8: "u8", U16: "u16", U32: "u32", U64: "u64",
	F32: "f32", F64: "f64", Bool: "bool", Void: "void", CString: "cstr",
}

func (k PrimKind) String() string {
	if n, ok := primNames[k]; ok {
		return n
	}
	return "<unknown-prim>"
}

var signedInts = map[PrimKind]bool{I8: true, I16: true, I32: true, I64: true}
var unsignedInts = map[PrimKind]bool{U8: true, U16: true, U32: true, U64: true}

// IsInteger reports whether the primitive kind is a signed or unsigned
// integer kind.
func (k PrimKind) IsInteger() bool { return signedInts[k] || unsignedInts[k] }

// IsFloat reports whether the primitive kind is f32 or f64.
func (k PrimKind) IsFloat() bool { return k == F32 || k == F64 }

// IsNumeric reports whether arithmetic operators apply to this kind.
func (k PrimKind) IsNumeric() bool { return k.IsInteger() || k.IsFloat() }

func intWidth(k PrimKind) int {
	switch k {
	case I8, U8:
		return 8
	case I16, U16:
		return 16
	case I32, U32:
		return 32
	case I64, U64:
		return 64
	}
	return 0
}

func floatWidth(k PrimKind) int {
	switch k {
	case F32:
		return 32
	case F64:
		return 64
	}
	return 0
}

// Type is the single tagged-union value type for the Virex type system.
// Exactly one group of payload fields is meaningful, selected by Kind.
// Composite payloads are owned exclusively by their containing Type;
// Clone produces a deep copy, never sharing structure with the original.
type Type struct {
	Kind Kind

	// KindPrimitive
	Prim PrimKind

	// KindPointer
	Base    *Type
	NonNull bool

	// KindArray / KindSlice
	Elem *Type
	Size int // KindArray only

	// KindStruct / KindEnum
	Name     string
	TypeArgs []*Type

	// KindFunction
	Return *Type
	Params []*Type

	// KindResult
	Ok  *Type
	Err *Type
}

// Primitive constructs a primitive Type of the given kind.
func Primitive(kind PrimKind) *Type { return &Type{Kind: KindPrimitive, Prim: kind} }

// Pointer constructs a pointer Type.
func Pointer(base *Type, nonNull bool) *Type {
	return &Type{Kind: KindPointer, Base: base, NonNull: nonNull}
}

// NullPointer is the universal null pointer type `*void`, nullable.
func NullPointer() *Type { return Pointer(Primitive(Void), false) }

// Array constructs a fixed-size array Type.
func Array(elem *Type, size int) *Type {
	return &Type{Kind: KindArray, Elem: elem, Size: size}
}

// SliceT constructs a slice Type.
func SliceT(elem *Type) *Type { return &Type{Kind: KindSlice, Elem: elem} }

// Struct constructs a nominal struct reference Type.
func Struct(name string, args []*Type) *Type {
	return &Type{Kind: KindStruct, Name: name, TypeArgs: args}
}

// Enum constructs a nominal enum reference Type.
func Enum(name string, args []*Type) *Type {
	return &Type{Kind: KindEnum, Name: name, TypeArgs: args}
}

// Function constructs a function Type.
func Function(ret *Type, params []*Type) *Type {
	return &Type{Kind: KindFunction, Return: ret, Params: params}
}

// ResultOf constructs a result<ok, err> Type.
func ResultOf(ok, err *Type) *Type {
	return &Type{Kind: KindResult, Ok: ok, Err: err}
}

// Clone returns a deep copy of t; t may be nil, in which case nil is
// returned (used by analysis code to propagate "no type" after an error).
func Clone(t *Type) *Type {
	if t == nil {
		return nil
	}
	c := &Type{Kind: t.Kind, Prim: t.Prim, NonNull: t.NonNull, Size: t.Size, Name: t.Name}
	c.Base = Clone(t.Base)
	c.Elem = Clone(t.Elem)
	c.Return = Clone(t.Return)
	c.Ok = Clone(t.Ok)
	c.Err = Clone(t.Err)
	if t.TypeArgs != nil {
		c.TypeArgs = make([]*Type, len(t.TypeArgs))
		for i, a := range t.TypeArgs {
			c.TypeArgs[i] = Clone(a)
		}
	}
	if t.Params != nil {
		c.Params = make([]*Type, len(t.Params))
		for i, p := range t.Params {
			c.Params[i] = Clone(p)
		}
	}
	return c
}

// Equal reports structural equality: for struct/enum, same name and an
// equal argument list; composites recurse on every field.
func Equal(a, b *Type) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindPrimitive:
		return a.Prim == b.Prim
	case KindPointer:
		return a.NonNull == b.NonNull && Equal(a.Base, b.Base)
	case KindArray:
		return a.Size == b.Size && Equal(a.Elem, b.Elem)
	case KindSlice:
		return Equal(a.Elem, b.Elem)
	case KindStruct, KindEnum:
		return a.Name == b.Name && equalTypeList(a.TypeArgs, b.TypeArgs)
	case KindFunction:
		return Equal(a.Return, b.Return) && equalTypeList(a.Params, b.Params)
	case KindResult:
		return Equal(a.Ok, b.Ok) && Equal(a.Err, b.Err)
	}
	return false
}

func equalTypeList(a, b []*Type) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

// Compatible reports whether a value of type actual may be used where
// expected is required: integer/float kinds widen among themselves; a
// non-null pointer flows to a nullable pointer parameter but not vice
// versa; *void is compatible with any pointer base in either direction;
// void on either side of a result is treated as bottom (matches anything).
func Compatible(expected, actual *Type) bool {
	if expected == nil || actual == nil {
		return false
	}
	if Equal(expected, actual) {
		return true
	}
	switch expected.Kind {
	case KindPrimitive:
		if actual.Kind != KindPrimitive {
			return false
		}
		if expected.Prim == Void || actual.Prim == Void {
			return true
		}
		if expected.Prim.IsNumeric() && actual.Prim.IsNumeric() {
			return widens(expected.Prim, actual.Prim)
		}
		return false
	case KindPointer:
		if actual.Kind != KindPointer {
			return false
		}
		if isVoidPtr(expected) || isVoidPtr(actual) {
			return true
		}
		if !Equal(expected.Base, actual.Base) && !Compatible(expected.Base, actual.Base) {
			return false
		}
		// a non-null actual may flow to a nullable expected; the reverse fails.
		if expected.NonNull && !actual.NonNull {
			return false
		}
		return true
	case KindSlice:
		return actual.Kind == KindSlice && Compatible(expected.Elem, actual.Elem)
	case KindArray:
		return actual.Kind == KindArray && expected.Size == actual.Size && Compatible(expected.Elem, actual.Elem)
	case KindResult:
		if actual.Kind != KindResult {
			return false
		}
		return compatibleOrVoid(expected.Ok, actual.Ok) && compatibleOrVoid(expected.Err, actual.Err)
	case KindFunction:
		if actual.Kind != KindFunction {
			return false
		}
		if !Compatible(expected.Return, actual.Return) {
			return false
		}
		if len(expected.Params) != len(actual.Params) {
			return false
		}
		for i := range expected.Params {
			if !Compatible(expected.Params[i], actual.Params[i]) {
				return false
			}
		}
		return true
	case KindStruct, KindEnum:
		return Equal(expected, actual)
	}
	return false
}

func compatibleOrVoid(expected, actual *Type) bool {
	if isVoid(expected) || isVoid(actual) {
		return true
	}
	return Compatible(expected, actual)
}

func isVoid(t *Type) bool { return t != nil && t.Kind == KindPrimitive && t.Prim == Void }

func isVoidPtr(t *Type) bool {
	return t.Kind == KindPointer && t.Base != nil && t.Base.Kind == KindPrimitive && t.Base.Prim == Void
}

// widens reports whether a value of kind actual may flow into a slot of
// kind expected via integer/float widening. Equal kinds are handled by the
// Equal() fast path in Compatible and never reach here.
func widens(expected, actual PrimKind) bool {
	if expected.IsFloat() {
		if actual.IsFloat() {
			return floatWidth(expected) >= floatWidth(actual)
		}
		return actual.IsInteger()
	}
	if expected.IsInteger() && actual.IsInteger() {
		sameSign := signedInts[expected] == signedInts[actual]
		return sameSign && intWidth(expected) >= intWidth(actual)
	}
	return false
}

// Substitute returns a fresh Type tree with any struct/enum reference whose
// Name equals one of paramNames (and that itself carries no further type
// arguments — a bare generic-parameter use) replaced by the corresponding
// entry of argTypes, recursing into composite payloads. The template is
// never mutated.
func Substitute(template *Type, paramNames []string, argTypes []*Type) *Type {
	if template == nil {
		return nil
	}
	if (template.Kind == KindStruct || template.Kind == KindEnum) && len(template.TypeArgs) == 0 {
		for i, p := range paramNames {
			if p == template.Name && i < len(argTypes) {
				return Clone(argTypes[i])
			}
		}
	}
	out := &Type{Kind: template.Kind, Prim: template.Prim, NonNull: template.NonNull,
		Size: template.Size, Name: template.Name}
	out.Base = Substitute(template.Base, paramNames, argTypes)
	out.Elem = Substitute(template.Elem, paramNames, argTypes)
	out.Return = Substitute(template.Return, paramNames, argTypes)
	out.Ok = Substitute(template.Ok, paramNames, argTypes)
	out.Err = Substitute(template.Err, paramNames, argTypes)
	if template.TypeArgs != nil {
		out.TypeArgs = make([]*Type, len(template.TypeArgs))
		for i, a := range template.TypeArgs {
			out.TypeArgs[i] = Substitute(a, paramNames, argTypes)
		}
	}
	if template.Params != nil {
		out.Params = make([]*Type, len(template.Params))
		for i, p := range template.Params {
			out.Params[i] = Substitute(p, paramNames, argTypes)
		}
	}
	return out
}

// String renders the round-trip diagnostic/mangling form of a Type.
func (t *Type) String() string {
	if t == nil {
		return "<nil>"
	}
	switch t.Kind {
	case KindPrimitive:
		return t.Prim.String()
	case KindPointer:
		mark := "?"
		if t.NonNull {
			mark = "!"
		}
		return fmt.Sprintf("*%s%s", mark, t.Base.String())
	case KindArray:
		return fmt.Sprintf("[%d]%s", t.Size, t.Elem.String())
	case KindSlice:
		return fmt.Sprintf("[]%s", t.Elem.String())
	case KindStruct, KindEnum:
		if len(t.TypeArgs) == 0 {
			return t.Name
		}
		parts := make([]string, len(t.TypeArgs))
		for i, a := range t.TypeArgs {
			parts[i] = a.String()
		}
		return fmt.Sprintf("%s<%s>", t.Name, strings.Join(parts, ","))
	case KindFunction:
		parts := make([]string, len(t.Params))
		for i, p := range t.Params {
			parts[i] = p.String()
		}
		return fmt.Sprintf("func(%s)->%s", strings.Join(parts, ","), t.Return.String())
	case KindResult:
		return fmt.Sprintf("result<%s,%s>", t.Ok.String(), t.Err.String())
	}
	return "<invalid>"
}

// IsStructOrEnum reports whether t names a nominal struct or enum type.
func (t *Type) IsStructOrEnum() bool {
	return t != nil && (t.Kind == KindStruct || t.Kind == KindEnum)
}

// IsGenericRef reports whether t is a struct/enum reference carrying type
// arguments (a use site, as opposed to a parameter-less declaration name).
func (t *Type) IsGenericRef() bool { return t.IsStructOrEnum() && len(t.TypeArgs) > 0 }
