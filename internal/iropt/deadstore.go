package iropt

import "github.com/virexlang/virex/internal/ir"

// eliminateDeadStores turns a temporary's definition into a NOP when it
// is redefined before any use, within a forward window that does not
// cross a label — beyond a label a redefinition may sit on a path that
// never reaches the earlier definition's would-be use, so the window
// stops there.
func eliminateDeadStores(body []ir.Instruction) []ir.Instruction {
	out := make([]ir.Instruction, len(body))
	copy(out, body)

	for i, instr := range out {
		if !instr.HasDst || instr.Dst.Kind != ir.OpndTemp {
			continue
		}
		if isDeadBeforeUse(out, i, instr.Dst.Temp) {
			out[i] = ir.Instruction{Op: ir.OpNop}
		}
	}
	return out
}

func isDeadBeforeUse(body []ir.Instruction, from int, temp int) bool {
	for j := from + 1; j < len(body); j++ {
		instr := body[j]
		if instr.Op == ir.OpLabel {
			return false
		}
		if usesTemp(instr, temp) {
			return false
		}
		if instr.HasDst && instr.Dst.Kind == ir.OpndTemp && instr.Dst.Temp == temp {
			return true
		}
	}
	return false
}

func usesTemp(instr ir.Instruction, temp int) bool {
	for _, a := range instr.Args {
		if a.Kind == ir.OpndTemp && a.Temp == temp {
			return true
		}
	}
	return false
}
