package iropt

import "github.com/virexlang/virex/internal/ir"

// eliminateDeadCode drops every instruction after an unconditional
// RETURN until the next LABEL, then drops every remaining NOP (the
// marker dead-store elimination leaves behind).
func eliminateDeadCode(body []ir.Instruction) []ir.Instruction {
	out := make([]ir.Instruction, 0, len(body))
	unreachable := false
	for _, instr := range body {
		if instr.Op == ir.OpLabel {
			unreachable = false
		}
		if unreachable {
			continue
		}
		if instr.Op == ir.OpReturn {
			unreachable = true
		}
		if instr.Op == ir.OpNop {
			continue
		}
		out = append(out, instr)
	}
	return out
}
