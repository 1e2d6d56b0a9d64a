// Package codegen is C8: it writes one C translation unit from a lowered
// *ir.Module — §4.7's fixed section order (headers, Result struct, slice
// structs, struct/enum defs, runtime + extern prototypes, forward decls,
// function bodies).
package codegen

import (
	"fmt"
	"strings"

	"github.com/virexlang/virex/internal/ir"
)

// fixedHeaders is §4.7 step 1.
var fixedHeaders = []string{"stdio.h", "stdlib.h", "string.h", "stdint.h", "stdbool.h"}

// Emit renders mod as a single C source string.
func Emit(mod *ir.Module) (string, error) {
	var sb strings.Builder

	writeHeader(&sb)
	writeResultStruct(&sb)
	writeSliceStructs(&sb, mod)
	writeStructAndEnumDefs(&sb, mod)
	writeRuntimePrototypes(&sb)
	if err := writeExternPrototypes(&sb, mod); err != nil {
		return "", err
	}
	writeForwardDecls(&sb, mod)
	writeGlobals(&sb, mod)
	if err := writeFunctionBodies(&sb, mod); err != nil {
		return "", err
	}

	return sb.String(), nil
}

func writeHeader(sb *strings.Builder) {
	for _, h := range fixedHeaders {
		sb.WriteString(fmt.Sprintf("#include <%s>\n", h))
	}
	sb.WriteString("\n")
}

// writeResultStruct emits §4.7 step 2's `struct Result`: the untyped,
// wide-enough-for-any-payload shape `virex_result_ok`/`virex_result_err`
// (runtime.go) construct and OpResultOk/OpResultErr assign from. Typed
// `result<Ok,Err>` instantiations additionally get their own
// `struct Result_<ok>_<err>` below (writeStructAndEnumDefs), for call
// sites that destructure a specific payload pair by field rather than
// through the generic constructors.
func writeResultStruct(sb *strings.Builder) {
	sb.WriteString("struct Result { int is_ok; long ok; long err; };\n\n")
}

// writeSliceStructs materializes every slice-of-T the generator
// registered into mod.Slices while lowering (TypeNamer.CType's side
// effect), force-including Slice_uint8_t unconditionally per §4.7's
// "[]u8 is always emitted" even when no source slice literal forced its
// registration.
func writeSliceStructs(sb *strings.Builder, mod *ir.Module) {
	sawU8 := false
	for _, s := range mod.Slices {
		if s.Name == "Slice_uint8_t" {
			sawU8 = true
		}
		writeSliceStruct(sb, s.Name, s.ElemCType)
	}
	if !sawU8 {
		writeSliceStruct(sb, "Slice_uint8_t", "uint8_t")
	}
	sb.WriteString("\n")
}

func writeSliceStruct(sb *strings.Builder, name, elemCType string) {
	sb.WriteString(fmt.Sprintf("struct %s { %s *data; int64_t len; };\n", name, elemCType))
}

func writeStructAndEnumDefs(sb *strings.Builder, mod *ir.Module) {
	for _, r := range mod.Results {
		sb.WriteString(fmt.Sprintf("struct %s { int is_ok; %s ok; %s err; };\n", r.Name, r.OkCType, r.ErrCType))
	}
	for _, e := range mod.Enums {
		sb.WriteString(fmt.Sprintf("enum %s { ", e.Name))
		for i, v := range e.Variants {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(fmt.Sprintf("%s_%s", e.Name, v))
		}
		sb.WriteString(" };\n")
	}
	for _, s := range mod.Structs {
		sb.WriteString(fmt.Sprintf("struct %s {\n", s.Name))
		for _, f := range s.Fields {
			sb.WriteString(fmt.Sprintf("  %s %s;\n", f.CType, f.Name))
		}
		if s.Packed {
			sb.WriteString("} __attribute__((packed));\n")
		} else {
			sb.WriteString("};\n")
		}
	}
	sb.WriteString("\n")
}

func writeRuntimePrototypes(sb *strings.Builder) {
	for _, p := range runtimePrototypes {
		sb.WriteString(p + "\n")
	}
	for _, p := range printOverloadPrototypes() {
		sb.WriteString(p + "\n")
	}
	for _, p := range resultCtorPrototypes {
		sb.WriteString(p + "\n")
	}
	sb.WriteString("\n")
}

// writeExternPrototypes declares every `extern` function the generator
// lowered, skipping names §4.7 step 6's whitelist says the fixed headers
// already declare (re-declaring e.g. `printf` with a mismatched
// signature is a hard gcc error, not a warning).
func writeExternPrototypes(sb *strings.Builder, mod *ir.Module) error {
	for _, fn := range mod.Functions {
		if !fn.Extern || externWhitelist[fn.Name] {
			continue
		}
		sb.WriteString(signature(fn) + ";\n")
	}
	sb.WriteString("\n")
	return nil
}

func writeForwardDecls(sb *strings.Builder, mod *ir.Module) {
	for _, fn := range mod.Functions {
		if fn.Extern {
			continue
		}
		sb.WriteString(signature(fn) + ";\n")
	}
	sb.WriteString("\n")
}

func writeGlobals(sb *strings.Builder, mod *ir.Module) {
	for _, g := range mod.Globals {
		qualifier := ""
		if g.Const {
			qualifier = "const "
		}
		sb.WriteString(fmt.Sprintf("%s%s %s;\n", qualifier, g.CType, g.Name))
	}
	sb.WriteString("\n")
}

func signature(fn *ir.Function) string {
	var params []string
	for _, p := range fn.Params {
		params = append(params, fmt.Sprintf("%s %s", p.CType, p.Name))
	}
	if fn.Variadic {
		params = append(params, "...")
	}
	if len(params) == 0 {
		params = append(params, "void")
	}
	return fmt.Sprintf("%s %s(%s)", fn.ReturnCType, fn.Name, strings.Join(params, ", "))
}

func writeFunctionBodies(sb *strings.Builder, mod *ir.Module) error {
	for _, fn := range mod.Functions {
		if fn.Extern {
			continue
		}
		sb.WriteString(signature(fn) + " {\n")
		writeLocals(sb, fn)
		if err := writeBody(sb, mod, fn); err != nil {
			return fmt.Errorf("function %s: %w", fn.Name, err)
		}
		sb.WriteString("}\n\n")
	}
	return nil
}

// writeLocals declares every hoisted local and every temporary up front,
// mirroring the teacher's hoist-all-locals convention carried into C6's
// own doc comment on ir.Local.
func writeLocals(sb *strings.Builder, fn *ir.Function) {
	for _, l := range fn.Locals {
		sb.WriteString(fmt.Sprintf("  %s %s;\n", l.CType, l.Name))
	}
	for id, ct := range fn.TempTypes {
		sb.WriteString(fmt.Sprintf("  %s t%d;\n", ct, id))
	}
}
