package iropt

import "github.com/virexlang/virex/internal/ir"

// propagateCopies rewrites uses of a temporary defined by `MOVE t_d, t_s`
// (both temporaries) to t_s directly, until t_d is redefined.
func propagateCopies(body []ir.Instruction) []ir.Instruction {
	out := make([]ir.Instruction, len(body))
	copy(out, body)

	subst := make(map[int]ir.Operand)

	for i, instr := range out {
		args := make([]ir.Operand, len(instr.Args))
		for j, a := range instr.Args {
			args[j] = resolveCopy(a, subst)
		}
		out[i].Args = args

		if instr.HasDst && instr.Dst.Kind == ir.OpndTemp {
			delete(subst, instr.Dst.Temp)
		}

		if out[i].Op == ir.OpAssign && instr.HasDst && instr.Dst.Kind == ir.OpndTemp &&
			len(args) == 1 && args[0].Kind == ir.OpndTemp {
			subst[instr.Dst.Temp] = args[0]
		}
	}
	return out
}

func resolveCopy(o ir.Operand, subst map[int]ir.Operand) ir.Operand {
	if o.Kind != ir.OpndTemp {
		return o
	}
	if replacement, ok := subst[o.Temp]; ok {
		return replacement
	}
	return o
}
