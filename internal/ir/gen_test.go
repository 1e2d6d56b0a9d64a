package ir_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/virexlang/virex/internal/ast"
	"github.com/virexlang/virex/internal/ir"
	"github.com/virexlang/virex/internal/loader"
	"github.com/virexlang/virex/internal/sema"
)

type progSource map[string]*ast.Program

func (s progSource) Parse(path string) (*ast.Program, error) {
	p, ok := s[path]
	if !ok {
		return nil, notFoundErr(path)
	}
	return p, nil
}

type notFoundErr string

func (e notFoundErr) Error() string { return "no such module: " + string(e) }

func i32() *ast.NamedType { return &ast.NamedType{Name: "i32"} }

// lower loads, analyzes, and lowers src's "main" module, requiring a
// clean analysis — these tests exercise C6 over already-valid programs.
func lower(t *testing.T, src progSource) *ir.Module {
	t.Helper()
	proj := loader.NewProject(src)
	_, err := proj.Load("main")
	require.NoError(t, err)
	a := sema.New(proj, false)
	err = a.Analyze()
	require.NoError(t, err, "unexpected sema errors: %+v", a.Collector.Reports())

	mod, err := ir.NewGenerator(proj, a).Generate()
	require.NoError(t, err)
	return mod
}

func findFunc(mod *ir.Module, name string) *ir.Function {
	for _, fn := range mod.Functions {
		if fn.Name == name {
			return fn
		}
	}
	return nil
}

func TestSimpleFunctionLowersToMangledName(t *testing.T) {
	prog := &ast.Program{
		ModuleName: "main",
		Decls: []ast.Decl{
			&ast.FuncDecl{
				Name:   "add",
				Params: []ast.Param{{Name: "a", Type: i32()}, {Name: "b", Type: i32()}},
				Return: i32(),
				Body: &ast.BlockStmt{Stmts: []ast.Stmt{
					&ast.ReturnStmt{Value: &ast.BinaryExpr{Op: "+", Left: &ast.Ident{Name: "a"}, Right: &ast.Ident{Name: "b"}}},
				}},
			},
		},
	}
	mod := lower(t, progSource{"main": prog})

	fn := findFunc(mod, "main__add")
	require.NotNil(t, fn, "expected a lowered function named main__add")
	assert.Equal(t, "int32_t", fn.ReturnCType)
	require.Len(t, fn.Params, 2)
	last := fn.Body[len(fn.Body)-1]
	assert.Equal(t, ir.OpReturn, last.Op)

	require.NotEmpty(t, fn.TempTypes, "the a+b addition must allocate at least one typed temp")
	for id, ct := range fn.TempTypes {
		assert.NotEmpty(t, ct, "temp_types[%d] must not be empty", id)
	}
	assert.Equal(t, "int32_t", fn.TempTypes[0], "a+b's result temp must carry i32's C type")
}

func TestMainFunctionKeepsBareName(t *testing.T) {
	prog := &ast.Program{
		ModuleName: "main",
		Decls: []ast.Decl{
			&ast.FuncDecl{Name: "main", Return: i32(), Body: &ast.BlockStmt{Stmts: []ast.Stmt{
				&ast.ReturnStmt{Value: &ast.IntLit{Value: 0}},
			}}},
		},
	}
	mod := lower(t, progSource{"main": prog})
	require.NotNil(t, findFunc(mod, "main"))
}

func TestExternFunctionKeepsUnmangledName(t *testing.T) {
	prog := &ast.Program{
		ModuleName: "main",
		Decls: []ast.Decl{
			&ast.FuncDecl{Name: "puts", Extern: true, Params: []ast.Param{{Name: "s", Type: &ast.NamedType{Name: "cstr"}}}, Return: i32()},
			&ast.FuncDecl{Name: "main", Return: i32(), Body: &ast.BlockStmt{Stmts: []ast.Stmt{
				&ast.UnsafeStmt{Body: &ast.BlockStmt{Stmts: []ast.Stmt{
					&ast.ExprStmt{X: &ast.CallExpr{Callee: &ast.Ident{Name: "puts"}, Args: []ast.Expr{&ast.StringLit{Value: "hi"}}}},
				}}},
				&ast.ReturnStmt{Value: &ast.IntLit{Value: 0}},
			}}},
		},
	}
	mod := lower(t, progSource{"main": prog})

	fn := findFunc(mod, "puts")
	require.NotNil(t, fn, "extern function must keep its bare C name")

	mainFn := findFunc(mod, "main")
	require.NotNil(t, mainFn)
	var sawCall bool
	for _, in := range mainFn.Body {
		if in.Op == ir.OpCall && in.Callee == "puts" {
			sawCall = true
		}
	}
	assert.True(t, sawCall, "call site must reference the extern function by its unmangled name")
}

// TestGenericFunctionInstantiatedOnceForRepeatedCalls exercises §4.4's
// max<T> worked example: two call sites inferring the same T=i32 must
// share a single emitted specialization.
func TestGenericFunctionInstantiatedOnceForRepeatedCalls(t *testing.T) {
	tParam := &ast.NamedType{Name: "T"}
	prog := &ast.Program{
		ModuleName: "main",
		Decls: []ast.Decl{
			&ast.FuncDecl{
				Name:          "max",
				GenericParams: []string{"T"},
				Params:        []ast.Param{{Name: "a", Type: tParam}, {Name: "b", Type: tParam}},
				Return:        tParam,
				Body: &ast.BlockStmt{Stmts: []ast.Stmt{
					&ast.IfStmt{
						Cond: &ast.BinaryExpr{Op: ">", Left: &ast.Ident{Name: "a"}, Right: &ast.Ident{Name: "b"}},
						Then: &ast.BlockStmt{Stmts: []ast.Stmt{&ast.ReturnStmt{Value: &ast.Ident{Name: "a"}}}},
					},
					&ast.ReturnStmt{Value: &ast.Ident{Name: "b"}},
				}},
			},
			&ast.FuncDecl{
				Name:   "main",
				Return: i32(),
				Body: &ast.BlockStmt{Stmts: []ast.Stmt{
					&ast.ExprStmt{X: &ast.CallExpr{Callee: &ast.Ident{Name: "max"}, Args: []ast.Expr{&ast.IntLit{Value: 1}, &ast.IntLit{Value: 2}}}},
					&ast.ReturnStmt{Value: &ast.CallExpr{Callee: &ast.Ident{Name: "max"}, Args: []ast.Expr{&ast.IntLit{Value: 3}, &ast.IntLit{Value: 4}}}},
				}},
			},
		},
	}
	mod := lower(t, progSource{"main": prog})

	var matches int
	for _, fn := range mod.Functions {
		if fn.Name == "main__max_i32" {
			matches++
		}
	}
	assert.Equal(t, 1, matches, "both call sites inferring T=i32 must share one specialization")
	assert.Nil(t, findFunc(mod, "main__max"), "the unspecialized generic template must never itself be emitted")
}

func TestGenericStructFieldAccessLowersToFieldGet(t *testing.T) {
	tParam := &ast.NamedType{Name: "T"}
	prog := &ast.Program{
		ModuleName: "main",
		Decls: []ast.Decl{
			&ast.StructDecl{
				Name:          "Box",
				GenericParams: []string{"T"},
				Fields:        []ast.StructField{{Name: "value", Type: tParam}},
			},
			&ast.FuncDecl{
				Name:   "unwrap",
				Params: []ast.Param{{Name: "b", Type: &ast.NamedType{Name: "Box", TypeArgs: []ast.TypeExpr{i32()}}}},
				Return: i32(),
				Body: &ast.BlockStmt{Stmts: []ast.Stmt{
					&ast.ReturnStmt{Value: &ast.MemberExpr{Base: &ast.Ident{Name: "b"}, Field: "value"}},
				}},
			},
		},
	}
	mod := lower(t, progSource{"main": prog})

	fn := findFunc(mod, "main__unwrap")
	require.NotNil(t, fn)
	var sawFieldGet bool
	for _, in := range fn.Body {
		if in.Op == ir.OpFieldGet && in.Field == "value" {
			sawFieldGet = true
		}
	}
	assert.True(t, sawFieldGet)

	var sawBoxStruct bool
	for _, s := range mod.Structs {
		if s.Name != "Box" {
			sawBoxStruct = true
		}
	}
	assert.True(t, sawBoxStruct, "only the instantiated Box<i32> should be materialized, never the generic template")
}

func TestPrintCallSuffixesByArgumentType(t *testing.T) {
	prog := &ast.Program{
		ModuleName: "main",
		Decls: []ast.Decl{
			&ast.FuncDecl{Name: "print", Extern: true, Variadic: true, Params: []ast.Param{{Name: "v", Type: i32()}}},
			&ast.FuncDecl{Name: "main", Return: i32(), Body: &ast.BlockStmt{Stmts: []ast.Stmt{
				&ast.UnsafeStmt{Body: &ast.BlockStmt{Stmts: []ast.Stmt{
					&ast.ExprStmt{X: &ast.CallExpr{Callee: &ast.Ident{Name: "print"}, Args: []ast.Expr{&ast.IntLit{Value: 1}}}},
				}}},
				&ast.ReturnStmt{Value: &ast.IntLit{Value: 0}},
			}}},
		},
	}
	mod := lower(t, progSource{"main": prog})

	fn := findFunc(mod, "main")
	require.NotNil(t, fn)
	var sawSuffixed bool
	for _, in := range fn.Body {
		if in.Op == ir.OpCall && in.Callee == "print_i32" {
			sawSuffixed = true
		}
	}
	assert.True(t, sawSuffixed, "a generic print(i32) call must mangle to print_i32")
}

func TestMatchOverEnumLowersToTagJumpChain(t *testing.T) {
	prog := &ast.Program{
		ModuleName: "main",
		Decls: []ast.Decl{
			&ast.EnumDecl{Name: "Color", Variants: []string{"Red", "Green", "Blue"}},
			&ast.FuncDecl{
				Name:   "code",
				Params: []ast.Param{{Name: "c", Type: &ast.NamedType{Name: "Color"}}},
				Return: i32(),
				Body: &ast.BlockStmt{Stmts: []ast.Stmt{
					&ast.MatchStmt{
						Subject: &ast.Ident{Name: "c"},
						Arms: []*ast.MatchArm{
							{Pattern: &ast.EnumPattern{Tag: "Red"}, Body: &ast.BlockStmt{Stmts: []ast.Stmt{&ast.ReturnStmt{Value: &ast.IntLit{Value: 1}}}}},
							{Pattern: &ast.EnumPattern{Wildcard: true}, Body: &ast.BlockStmt{Stmts: []ast.Stmt{&ast.ReturnStmt{Value: &ast.IntLit{Value: 0}}}}},
						},
					},
				}},
			},
		},
	}
	mod := lower(t, progSource{"main": prog})

	fn := findFunc(mod, "main__code")
	require.NotNil(t, fn)
	var sawTagRead, sawCmp bool
	for _, in := range fn.Body {
		if in.Op == ir.OpFieldGet && in.Field == "tag" {
			sawTagRead = true
		}
		if in.Op == ir.OpCmpEQ {
			sawCmp = true
		}
	}
	assert.True(t, sawTagRead)
	assert.True(t, sawCmp)
}
