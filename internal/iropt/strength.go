package iropt

import "github.com/virexlang/virex/internal/ir"

// reduceStrength rewrites a few cheap algebraic identities on OpMul:
// `x * 0` to a zero MOVE, `x * 1` to a MOVE of x, `x * 2` to `x + x`.
func reduceStrength(body []ir.Instruction) []ir.Instruction {
	out := make([]ir.Instruction, len(body))
	copy(out, body)

	for i, instr := range out {
		if instr.Op != ir.OpMul || len(instr.Args) != 2 {
			continue
		}
		x, c, ok := splitMulOperands(instr.Args[0], instr.Args[1])
		if !ok {
			continue
		}
		switch c.IntVal {
		case 0:
			out[i] = ir.Instruction{Op: ir.OpAssign, Dst: instr.Dst, HasDst: instr.HasDst, Args: []ir.Operand{ir.ConstInt(0)}}
		case 1:
			out[i] = ir.Instruction{Op: ir.OpAssign, Dst: instr.Dst, HasDst: instr.HasDst, Args: []ir.Operand{x}}
		case 2:
			out[i] = ir.Instruction{Op: ir.OpAdd, Dst: instr.Dst, HasDst: instr.HasDst, Args: []ir.Operand{x, x}}
		}
	}
	return out
}

// splitMulOperands reports whether exactly one of a/b is an integer
// constant, returning (the other operand, the constant) in that order.
func splitMulOperands(a, b ir.Operand) (ir.Operand, ir.Operand, bool) {
	aConst, bConst := a.Kind == ir.OpndConstInt, b.Kind == ir.OpndConstInt
	switch {
	case aConst && !bConst:
		return b, a, true
	case bConst && !aConst:
		return a, b, true
	default:
		return ir.Operand{}, ir.Operand{}, false
	}
}
