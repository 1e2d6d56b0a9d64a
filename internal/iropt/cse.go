package iropt

import "github.com/virexlang/virex/internal/ir"

// eliminateCSE replaces a pure binary instruction with `MOVE dest,
// previous_dest` when an identical earlier instruction (same opcode,
// same operand shape) computed the same value and its destination has
// not been redefined since.
func eliminateCSE(body []ir.Instruction) []ir.Instruction {
	out := make([]ir.Instruction, len(body))
	copy(out, body)

	redefinedAfter := make(map[int]int) // temp id -> last index it was (re)defined at

	for i, instr := range out {
		if isPureBinary(instr.Op) && instr.HasDst && instr.Dst.Kind == ir.OpndTemp {
			if prev, ok := findEarlierMatch(out, i, instr, redefinedAfter); ok {
				out[i] = ir.Instruction{Op: ir.OpAssign, Dst: instr.Dst, HasDst: true, Args: []ir.Operand{prev}}
			}
		}
		if instr.HasDst && instr.Dst.Kind == ir.OpndTemp {
			redefinedAfter[instr.Dst.Temp] = i
		}
	}
	return out
}

// findEarlierMatch scans backward from i for an instruction computing the
// same opcode over the same operands, whose destination temp was not
// redefined between that instruction and i.
func findEarlierMatch(body []ir.Instruction, i int, cur ir.Instruction, redefinedAfter map[int]int) (ir.Operand, bool) {
	for j := i - 1; j >= 0; j-- {
		cand := body[j]
		if cand.Op != cur.Op || !cand.HasDst || cand.Dst.Kind != ir.OpndTemp {
			continue
		}
		if !sameOperands(cand.Args, cur.Args) {
			continue
		}
		if last, ok := redefinedAfter[cand.Dst.Temp]; ok && last > j {
			continue // redefined since — stale value, not a valid match
		}
		return cand.Dst, true
	}
	return ir.Operand{}, false
}
