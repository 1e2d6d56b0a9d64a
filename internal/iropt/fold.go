package iropt

import "github.com/virexlang/virex/internal/ir"

// foldConstants rewrites any pure binary instruction whose two sources
// are both integer constants to a plain MOVE of the evaluated result.
// Division and modulo by the literal 0 are left intact — §8's boundary
// law requires the fault to surface at runtime, not vanish at compile
// time.
func foldConstants(body []ir.Instruction) []ir.Instruction {
	out := make([]ir.Instruction, len(body))
	copy(out, body)

	for i, instr := range out {
		if !isPureBinary(instr.Op) || len(instr.Args) != 2 {
			continue
		}
		a, b := instr.Args[0], instr.Args[1]
		if a.Kind != ir.OpndConstInt || b.Kind != ir.OpndConstInt {
			continue
		}
		if (instr.Op == ir.OpDiv || instr.Op == ir.OpMod) && b.IntVal == 0 {
			continue
		}

		result, ok := evalIntOp(instr.Op, a.IntVal, b.IntVal)
		if !ok {
			continue
		}
		out[i] = ir.Instruction{Op: ir.OpAssign, Dst: instr.Dst, HasDst: instr.HasDst, Args: []ir.Operand{result}}
	}
	return out
}

func evalIntOp(op ir.Op, a, b int64) (ir.Operand, bool) {
	switch op {
	case ir.OpAdd:
		return ir.ConstInt(a + b), true
	case ir.OpSub:
		return ir.ConstInt(a - b), true
	case ir.OpMul:
		return ir.ConstInt(a * b), true
	case ir.OpDiv:
		return ir.ConstInt(a / b), true
	case ir.OpMod:
		return ir.ConstInt(a % b), true
	case ir.OpAnd:
		return ir.ConstInt(a & b), true
	case ir.OpOr:
		return ir.ConstInt(a | b), true
	case ir.OpCmpLT:
		return ir.ConstBool(a < b), true
	case ir.OpCmpLE:
		return ir.ConstBool(a <= b), true
	case ir.OpCmpGT:
		return ir.ConstBool(a > b), true
	case ir.OpCmpGE:
		return ir.ConstBool(a >= b), true
	case ir.OpCmpEQ:
		return ir.ConstBool(a == b), true
	case ir.OpCmpNE:
		return ir.ConstBool(a != b), true
	}
	return ir.Operand{}, false
}
