package codegen

import (
	"fmt"
	"strings"

	"github.com/virexlang/virex/internal/ir"
)

var binOpSym = map[ir.Op]string{
	ir.OpAdd: "+", ir.OpSub: "-", ir.OpMul: "*", ir.OpDiv: "/", ir.OpMod: "%",
	ir.OpCmpLT: "<", ir.OpCmpLE: "<=", ir.OpCmpGT: ">", ir.OpCmpGE: ">=",
	ir.OpCmpEQ: "==", ir.OpCmpNE: "!=", ir.OpAnd: "&", ir.OpOr: "|",
}

// writeBody renders fn's whole instruction stream. It first tries the
// §4.7 loop-pattern recognizer over body[i:] before falling back to the
// raw one-instruction-at-a-time label/goto translation everything else
// (and the recognizer's own failure case) goes through.
func writeBody(sb *strings.Builder, mod *ir.Module, fn *ir.Function) error {
	body := fn.Body
	for i := 0; i < len(body); {
		if end, ok := matchLoop(body, i); ok {
			writeRecognizedLoop(sb, mod, fn, body, i, end)
			i = end + 1
			continue
		}
		if err := writeInstr(sb, mod, fn, body[i]); err != nil {
			return err
		}
		i++
	}
	return nil
}

// matchLoop recognizes the exact instruction skeleton genWhile/genFor
// emit:
//
//	OpLabel start
//	<cond instr with HasDst>
//	OpJumpFalse cond.Dst -> end
//	... body ...
//	OpJump -> start
//	OpLabel end
//
// It reports whether body[i] begins a recognizable loop, and if
// so the index of its closing OpLabel end (so the caller can skip past
// it). Anything that doesn't fit this exact shape — nested break/continue
// targets aside, which are plain labels inside bodyStart..jumpIdx and
// need no special handling here — falls through to the raw translation.
func matchLoop(body []ir.Instruction, i int) (int, bool) {
	if i+2 >= len(body) || body[i].Op != ir.OpLabel {
		return 0, false
	}
	start := body[i].Target
	cond := body[i+1]
	if !cond.HasDst {
		return 0, false
	}
	jf := body[i+2]
	if jf.Op != ir.OpJumpFalse || len(jf.Args) != 1 || !sameOp(jf.Args[0], cond.Dst) {
		return 0, false
	}
	end := jf.Target

	// Every label the generator hands out is uniquely named (newLabel's
	// running counter), so the first jump back to this exact start label
	// can only be this loop's own back edge — a nested loop's back jump
	// targets its own, differently-named start label instead.
	for j := i + 3; j < len(body); j++ {
		if body[j].Op == ir.OpJump && body[j].Target == start {
			if j+1 < len(body) && body[j+1].Op == ir.OpLabel && body[j+1].Target == end {
				return j + 1, true
			}
			return 0, false
		}
	}
	return 0, false
}

func sameOp(a, b ir.Operand) bool {
	return a.Kind == b.Kind && a.Temp == b.Temp && a.Name == b.Name
}

// writeRecognizedLoop emits a `for (;;)`-shaped loop with §4.7's
// GCC-specific loop hints. The condition and jump-false test fold into
// one `if (!cond) break;` guard so the generated loop still reads as a
// structured C loop rather than a goto chain.
func writeRecognizedLoop(sb *strings.Builder, mod *ir.Module, fn *ir.Function, body []ir.Instruction, start, end int) {
	condInstr := body[start+1]
	startLabel := body[start].Target
	endLabel := body[end].Target

	sb.WriteString("#pragma GCC ivdep\n")
	sb.WriteString("for (;;) {\n")
	_ = writeInstr(sb, mod, fn, condInstr)
	sb.WriteString(fmt.Sprintf("  if (__builtin_expect(!(%s), 0)) break;\n", renderOperand(condInstr.Dst)))
	for j := start + 3; j < end; j++ {
		in := body[j]
		if in.Op == ir.OpJump && in.Target == startLabel {
			// A while loop's `continue` lowers to the same jump-to-start
			// form as the generator's own closing back-edge (both target
			// the loop's start label) — re-entering the top of this
			// for(;;) body re-runs the cond-check/break guard we just
			// wrote, so a plain C `continue` is correct for either case.
			sb.WriteString("continue;\n")
			continue
		}
		_ = writeInstr(sb, mod, fn, in)
	}
	sb.WriteString("}\n")
	// body[end] itself (the OpLabel carrying the end target) is consumed
	// by the caller skipping to end+1, but `break` lowers to a bare
	// `goto <end>` that still needs that label to exist past the loop.
	sb.WriteString(fmt.Sprintf("%s: ;\n", endLabel))
}

func writeInstr(sb *strings.Builder, mod *ir.Module, fn *ir.Function, in ir.Instruction) error {
	args := func(i int) string { return renderOperand(in.Args[i]) }
	dst := func() string { return renderOperand(in.Dst) }

	switch in.Op {
	case ir.OpNop:
		return nil
	case ir.OpLabel:
		sb.WriteString(in.Target + ": ;\n")
	case ir.OpJump:
		sb.WriteString(fmt.Sprintf("goto %s;\n", in.Target))
	case ir.OpJumpFalse:
		sb.WriteString(fmt.Sprintf("if (!(%s)) goto %s;\n", args(0), in.Target))
	case ir.OpJumpTrue:
		sb.WriteString(fmt.Sprintf("if (%s) goto %s;\n", args(0), in.Target))
	case ir.OpReturn:
		if len(in.Args) == 0 {
			sb.WriteString("return;\n")
		} else {
			sb.WriteString(fmt.Sprintf("return %s;\n", args(0)))
		}
	case ir.OpFail:
		if len(in.Args) > 0 {
			sb.WriteString(fmt.Sprintf("fprintf(stderr, \"fail: %%ld\\n\", (long)(%s));\n", args(0)))
		}
		sb.WriteString("virex_exit(1);\n")
	case ir.OpAssign:
		sb.WriteString(fmt.Sprintf("%s = %s;\n", dst(), args(0)))
	case ir.OpAddrOf:
		sb.WriteString(fmt.Sprintf("%s = &%s;\n", dst(), args(0)))
	case ir.OpLoad:
		sb.WriteString(fmt.Sprintf("%s = *%s;\n", dst(), args(0)))
	case ir.OpStore:
		sb.WriteString(fmt.Sprintf("*%s = %s;\n", args(0), args(1)))
	case ir.OpNeg:
		sb.WriteString(fmt.Sprintf("%s = -%s;\n", dst(), args(0)))
	case ir.OpNot:
		sb.WriteString(fmt.Sprintf("%s = !%s;\n", dst(), args(0)))
	case ir.OpIndex:
		sb.WriteString(fmt.Sprintf("virex_slice_bounds_check((int64_t)(%s), (%s).len);\n", args(1), args(0)))
		sb.WriteString(fmt.Sprintf("%s = (%s).data[%s];\n", dst(), args(0), args(1)))
	case ir.OpIndexAddr:
		sb.WriteString(fmt.Sprintf("virex_slice_bounds_check((int64_t)(%s), (%s).len);\n", args(1), args(0)))
		sb.WriteString(fmt.Sprintf("%s = &(%s).data[%s];\n", dst(), args(0), args(1)))
	case ir.OpFieldGet:
		sb.WriteString(fmt.Sprintf("%s = %s%s%s;\n", dst(), args(0), accessOp(mod, fn, in.Args[0]), in.Field))
	case ir.OpFieldAddr:
		sb.WriteString(fmt.Sprintf("%s = &(%s%s%s);\n", dst(), args(0), accessOp(mod, fn, in.Args[0]), in.Field))
	case ir.OpCast:
		sb.WriteString(fmt.Sprintf("%s = (%s) %s;\n", dst(), in.Target, args(0)))
	case ir.OpResultOk:
		sb.WriteString(fmt.Sprintf("%s = virex_result_ok((long)(%s));\n", dst(), args(0)))
	case ir.OpResultErr:
		sb.WriteString(fmt.Sprintf("%s = virex_result_err((long)(%s));\n", dst(), args(0)))
	case ir.OpCall:
		writeCall(sb, in)
	case ir.OpAnd, ir.OpOr, ir.OpAdd, ir.OpSub, ir.OpMul, ir.OpDiv, ir.OpMod,
		ir.OpCmpLT, ir.OpCmpLE, ir.OpCmpGT, ir.OpCmpGE, ir.OpCmpEQ, ir.OpCmpNE:
		sym := binOpSym[in.Op]
		sb.WriteString(fmt.Sprintf("%s = %s %s %s;\n", dst(), args(0), sym, args(1)))
	default:
		return fmt.Errorf("codegen: unhandled op %v", in.Op)
	}
	return nil
}

// accessOp picks `->` over `.` when base's own declared C type is a
// pointer — the distinguishing rule genLoadArrow's doc comment defers
// to C8 to apply.
func accessOp(mod *ir.Module, fn *ir.Function, base ir.Operand) string {
	if isPointerCType(cTypeOf(fn, mod, base)) {
		return "->"
	}
	return "."
}

func writeCall(sb *strings.Builder, in ir.Instruction) {
	var argStrs []string
	for _, a := range in.Args {
		argStrs = append(argStrs, renderOperand(a))
	}
	call := fmt.Sprintf("%s(%s)", in.Callee, strings.Join(argStrs, ", "))
	if in.HasDst {
		sb.WriteString(fmt.Sprintf("%s = %s;\n", renderOperand(in.Dst), call))
	} else {
		sb.WriteString(call + ";\n")
	}
}
