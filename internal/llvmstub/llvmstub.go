// Package llvmstub is the `--backend=llvm` placeholder §6 calls for: a
// real LLVM IR module gets constructed so the wiring is genuine, but no
// Virex-to-LLVM lowering exists yet, so Emit always fails.
package llvmstub

import (
	"errors"

	llvmir "github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/types"

	"github.com/virexlang/virex/internal/ir"
)

// ErrNotImplemented is returned by every Emit call. The LLVM backend is a
// stub: it proves the dependency wires up (a module and a function decl
// are genuinely constructed with llir/llvm's API) but lowers nothing.
var ErrNotImplemented = errors.New("llvmstub: LLVM backend is not implemented, pass --backend=c")

// Emit builds a placeholder LLVM module from mod's function signatures —
// one declaration per function, no bodies — and then reports that the
// backend cannot actually lower Virex IR into it.
func Emit(mod *ir.Module) (*llvmir.Module, error) {
	m := llvmir.NewModule()
	for _, fn := range mod.Functions {
		m.NewFunc(fn.Name, types.Void) // TODO: translate Virex C types to llir/llvm types
	}
	return m, ErrNotImplemented
}
