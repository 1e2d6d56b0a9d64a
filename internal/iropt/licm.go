package iropt

import "github.com/virexlang/virex/internal/ir"

// hoistLoopInvariants finds loops via backward jumps (a JUMP/BRANCH whose
// target label appears earlier in the instruction list) and moves any
// invariant instruction inside the loop body to just before the loop's
// start label, preserving the relative order of hoisted instructions.
//
// An instruction is invariant iff it is a pure arithmetic/comparison/
// unary op, writes a temporary, and every operand is either a constant
// or a temporary not defined anywhere inside the loop's range.
func hoistLoopInvariants(body []ir.Instruction) []ir.Instruction {
	labelIndex := make(map[string]int)
	for i, instr := range body {
		if instr.Op == ir.OpLabel {
			labelIndex[instr.Target] = i
		}
	}

	out := append([]ir.Instruction(nil), body...)

	for jumpIdx := 0; jumpIdx < len(out); jumpIdx++ {
		instr := out[jumpIdx]
		if instr.Op != ir.OpJump && instr.Op != ir.OpJumpTrue && instr.Op != ir.OpJumpFalse {
			continue
		}
		labelIdx, ok := labelIndex[instr.Target]
		if !ok || labelIdx >= jumpIdx {
			continue
		}
		out = hoistOneLoop(out, labelIdx, jumpIdx)
	}
	return out
}

func hoistOneLoop(body []ir.Instruction, labelIdx, jumpIdx int) []ir.Instruction {
	definedInRange := make(map[int]bool)
	for i := labelIdx + 1; i < jumpIdx; i++ {
		if body[i].HasDst && body[i].Dst.Kind == ir.OpndTemp {
			definedInRange[body[i].Dst.Temp] = true
		}
	}

	var hoisted []ir.Instruction
	var kept []ir.Instruction
	for i := labelIdx + 1; i < jumpIdx; i++ {
		instr := body[i]
		if isInvariant(instr, definedInRange) {
			hoisted = append(hoisted, instr)
			definedInRange[instr.Dst.Temp] = false // no longer "defined in range" for later invariance checks
		} else {
			kept = append(kept, instr)
		}
	}
	if len(hoisted) == 0 {
		return body
	}

	out := make([]ir.Instruction, 0, len(body))
	out = append(out, body[:labelIdx]...)
	out = append(out, hoisted...)
	out = append(out, body[labelIdx])
	out = append(out, kept...)
	out = append(out, body[jumpIdx:]...)
	return out
}

func isInvariant(instr ir.Instruction, definedInRange map[int]bool) bool {
	if !instr.HasDst || instr.Dst.Kind != ir.OpndTemp {
		return false
	}
	if !isPureBinary(instr.Op) && !isPureUnary(instr.Op) {
		return false
	}
	for _, a := range instr.Args {
		if a.Kind == ir.OpndTemp && definedInRange[a.Temp] {
			return false
		}
		if a.Kind == ir.OpndLocal || a.Kind == ir.OpndGlobal {
			return false
		}
	}
	return true
}
