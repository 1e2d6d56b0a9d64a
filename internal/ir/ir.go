// Package ir implements the three-address intermediate representation
// C6 lowers analyzed function bodies into, and C7/C8 consume.
package ir

import "fmt"

// OperandKind tags the variant held by an Operand.
type OperandKind int

const (
	OpndTemp OperandKind = iota
	OpndLocal
	OpndGlobal
	OpndConstInt
	OpndConstFloat
	OpndConstBool
	OpndConstString
	OpndConstNull
)

// Operand is a value reference: a temporary, a named local/global, or an
// immediate constant.
type Operand struct {
	Kind OperandKind

	Temp int
	Name string

	IntVal    int64
	FloatVal  float64
	BoolVal   bool
	StrVal    string
}

func Temp(id int) Operand              { return Operand{Kind: OpndTemp, Temp: id} }
func Local(name string) Operand        { return Operand{Kind: OpndLocal, Name: name} }
func Global(name string) Operand       { return Operand{Kind: OpndGlobal, Name: name} }
func ConstInt(v int64) Operand         { return Operand{Kind: OpndConstInt, IntVal: v} }
func ConstFloat(v float64) Operand     { return Operand{Kind: OpndConstFloat, FloatVal: v} }
func ConstBool(v bool) Operand         { return Operand{Kind: OpndConstBool, BoolVal: v} }
func ConstString(v string) Operand     { return Operand{Kind: OpndConstString, StrVal: v} }
func ConstNull() Operand               { return Operand{Kind: OpndConstNull} }

// IsConst reports whether o is any constant-kind operand — the fact C7's
// constant folding and copy propagation passes key off of.
func (o Operand) IsConst() bool {
	switch o.Kind {
	case OpndConstInt, OpndConstFloat, OpndConstBool, OpndConstString, OpndConstNull:
		return true
	}
	return false
}

func (o Operand) String() string {
	switch o.Kind {
	case OpndTemp:
		return fmt.Sprintf("t%d", o.Temp)
	case OpndLocal:
		return o.Name
	case OpndGlobal:
		return "@" + o.Name
	case OpndConstInt:
		return fmt.Sprintf("%d", o.IntVal)
	case OpndConstFloat:
		return fmt.Sprintf("%g", o.FloatVal)
	case OpndConstBool:
		return fmt.Sprintf("%t", o.BoolVal)
	case OpndConstString:
		return fmt.Sprintf("%q", o.StrVal)
	case OpndConstNull:
		return "null"
	}
	return "<?>"
}

// Op enumerates every three-address instruction form §5 lowers to.
type Op int

const (
	OpAdd Op = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpNeg
	OpNot
	OpCmpLT
	OpCmpLE
	OpCmpGT
	OpCmpGE
	OpCmpEQ
	OpCmpNE
	OpAnd
	OpOr
	OpAssign    // Dst = Args[0]
	OpAddrOf    // Dst = &Args[0]
	OpLoad      // Dst = *Args[0]
	OpStore     // *Args[0] = Args[1]
	OpIndex     // Dst = Args[0][Args[1]]
	OpIndexAddr // Dst = &Args[0][Args[1]]
	OpFieldGet  // Dst = Args[0].Field
	OpFieldAddr // Dst = &Args[0].Field
	OpCall      // Dst = Callee(Args...); Dst may be absent for a void call
	OpCast      // Dst = (Target) Args[0]
	OpResultOk  // Dst = result-ctor ok(Args[0])
	OpResultErr // Dst = result-ctor err(Args[0])
	OpLabel     // marks Target as a jump destination; no operands
	OpJump      // unconditional jump to Target
	OpJumpFalse // jump to Target if Args[0] is false
	OpJumpTrue  // jump to Target if Args[0] is true
	OpReturn    // return Args[0], or a bare return if Args is empty
	OpFail      // abort-style `fail` statement; Args[0] optional
	OpNop       // no-op left behind by dead-store/dead-code elimination
)

// Instruction is one three-address operation. Not every field is
// meaningful for every Op; see the Op const block above.
type Instruction struct {
	Op     Op
	Dst    Operand
	HasDst bool
	Args   []Operand
	Field  string // OpFieldGet / OpFieldAddr
	Callee string // OpCall: the mangled callee name
	Target string // OpCast: target C type; OpLabel/OpJump*: label name
}

// Local is one function-local variable slot, declared up front in the
// emitted C function per the teacher's hoist-all-locals convention.
type Local struct {
	Name  string
	CType string
}

// Param is one function parameter.
type Param struct {
	Name  string
	CType string
}

// Function is one lowered function body.
type Function struct {
	Name        string // mangled C name
	Params      []Param
	ReturnCType string
	Locals      []Local
	Body        []Instruction
	Extern      bool // prototype only, no Body
	Variadic    bool

	// TempTypes is indexed by temporary id — TempTypes[i] is the C type
	// of t<i>. Populated alongside every temp allocation so C8 can
	// declare each one up front, per §4.5/§8's "temp_types[id] is
	// non-empty for every temp actually used".
	TempTypes []string
}

// Global is one lowered top-level variable.
type Global struct {
	Name  string // mangled C name
	CType string
	Init  []Instruction // instructions computing the initializer, last one's Dst is the value
	Const bool
}

// StructDef is a struct layout the emitter materializes as a C struct.
// Packed structs get `__attribute__((packed))` in the emitted definition.
type StructDef struct {
	Name   string // mangled C name
	Fields []Local
	Packed bool
}

// EnumDef is an enum's variant-to-ordinal mapping, materialized as a C
// enum.
type EnumDef struct {
	Name     string
	Variants []string
}

// ResultDef is one `result<ok,err>` instantiation the emitter must
// materialize as a tagged-union C struct.
type ResultDef struct {
	Name      string
	OkCType   string
	ErrCType  string
}

// SliceDef is one slice-of-T instantiation the emitter must materialize
// as a (pointer, length) C struct.
type SliceDef struct {
	Name    string
	ElemCType string
}

// Module is one lowered compilation unit — the whole linked project, per
// §5's "C8 emits a single translation unit".
type Module struct {
	Functions  []*Function
	Globals    []*Global
	Structs    []*StructDef
	Enums      []*EnumDef
	Results    []*ResultDef
	Slices     []*SliceDef
}
