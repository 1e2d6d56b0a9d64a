package codegen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/virexlang/virex/internal/ir"
)

// renderOperand spells an ir.Operand as a C expression.
func renderOperand(o ir.Operand) string {
	switch o.Kind {
	case ir.OpndTemp:
		return fmt.Sprintf("t%d", o.Temp)
	case ir.OpndLocal, ir.OpndGlobal:
		return o.Name
	case ir.OpndConstInt:
		return strconv.FormatInt(o.IntVal, 10)
	case ir.OpndConstFloat:
		return strconv.FormatFloat(o.FloatVal, 'g', -1, 64)
	case ir.OpndConstBool:
		if o.BoolVal {
			return "1"
		}
		return "0"
	case ir.OpndConstString:
		return renderStringLiteral(o.StrVal)
	case ir.OpndConstNull:
		return "NULL"
	}
	return "/* bad operand */"
}

// renderStringLiteral builds a `[]u8` string literal as a C99 compound
// literal over the byte count of the original Virex string, so a
// constant string's length is correct even past an embedded NUL byte.
func renderStringLiteral(s string) string {
	return fmt.Sprintf("(struct Slice_uint8_t){(uint8_t *)%s, %d}", escapeCString(s), len(s))
}

func escapeCString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// cTypeOf looks up the C type an operand carries within fn, consulting
// fn's params/locals/temp_types — the information genLoadArrow's doc
// comment says C8 needs to tell a `->` access from a `.` one.
func cTypeOf(fn *ir.Function, mod *ir.Module, o ir.Operand) string {
	switch o.Kind {
	case ir.OpndTemp:
		if o.Temp >= 0 && o.Temp < len(fn.TempTypes) {
			return fn.TempTypes[o.Temp]
		}
	case ir.OpndLocal:
		for _, p := range fn.Params {
			if p.Name == o.Name {
				return p.CType
			}
		}
		for _, l := range fn.Locals {
			if l.Name == o.Name {
				return l.CType
			}
		}
	case ir.OpndGlobal:
		for _, g := range mod.Globals {
			if g.Name == o.Name {
				return g.CType
			}
		}
	}
	return ""
}

func isPointerCType(cType string) bool {
	return strings.HasSuffix(strings.TrimSpace(cType), "*")
}
