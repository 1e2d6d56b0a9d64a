// Package mangle produces the mangled C identifiers the IR generator
// (C6) and code emitter (C8) use for module-qualified names and generic
// instantiations.
package mangle

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Normalize applies Unicode NFC normalization to a source identifier
// before mangling, so visually identical identifiers entered under
// different Unicode compositions mangle to the same C name (grounded on
// the lexer's own input-boundary NFC normalization).
func Normalize(name string) string {
	if norm.NFC.IsNormalString(name) {
		return name
	}
	return norm.NFC.String(name)
}

// sanitizeModule replaces the module-path separators `.` and `:` with
// `_`, per §4.4's module-mangling rule.
func sanitizeModule(module string) string {
	r := strings.NewReplacer(".", "_", ":", "_")
	return r.Replace(module)
}

// Module mangles a module-qualified declaration name: `<module>__<name>`,
// with `.`/`:` in the module path replaced by `_`.
func Module(module, name string) string {
	return sanitizeModule(Normalize(module)) + "__" + Normalize(name)
}

// Function mangles a function name per §4.5: non-main functions become
// `<module>__<name>`; `main` in the main module stays `main`; `main` in
// a non-main module becomes `<module>__main`.
func Function(module, name string, isMainModule bool) string {
	if name == "main" {
		if isMainModule {
			return "main"
		}
		return Module(module, name)
	}
	return Module(module, name)
}

// Instantiation mangles a monomorphized generic symbol's name:
// `base_name + "_" + strings.Join(mangled_arg_types, "_")`, per the
// original implementation's monomorph.c.
func Instantiation(baseName string, mangledArgTypes []string) string {
	if len(mangledArgTypes) == 0 {
		return baseName
	}
	return baseName + "_" + strings.Join(mangledArgTypes, "_")
}

// Stable returns a short, stable hex suffix for a mangled name that
// would otherwise exceed a readable length — a deep generic
// instantiation chain, for instance. Grounded on the teacher's
// crypto/sha256-based stable-ID scheme, reused here as a name-shortening
// hash rather than an AST node identifier.
func Stable(input string) string {
	sum := sha256.Sum256([]byte(input))
	return hex.EncodeToString(sum[:])[:12]
}

// Shorten returns name unchanged if it is at most maxLen bytes, or
// name's first (maxLen-13) bytes plus an underscore and a Stable hash
// suffix otherwise.
func Shorten(name string, maxLen int) string {
	if len(name) <= maxLen || maxLen <= 13 {
		return name
	}
	return name[:maxLen-13] + "_" + Stable(name)
}

// Ident replaces every character of s that is not a letter, digit, or
// underscore with `_`, producing a valid C identifier fragment.
func Ident(s string) string {
	var b strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}

// SliceStructName derives a slice struct's C name from the C element
// type spelling, replacing non-identifier characters (`*`, spaces) with
// `_`, e.g. "uint8_t" -> "Slice_uint8_t", "int32_t *" -> "Slice_int32_t_".
func SliceStructName(cElemType string) string {
	return "Slice_" + Ident(cElemType)
}

// ResultStructName derives a `result<ok,err>` materialization's C name
// from its two payload C type spellings, e.g. ("int32_t", "Slice_uint8_t")
// -> "Result_int32_t_Slice_uint8_t".
func ResultStructName(okCType, errCType string) string {
	return "Result_" + Ident(okCType) + "_" + Ident(errCType)
}
