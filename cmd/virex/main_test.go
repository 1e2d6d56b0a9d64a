package main

import "testing"

func TestParseBuildArgsDefaultsToCBackend(t *testing.T) {
	file, opts, err := parseBuildArgs([]string{"main.vx"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if file != "main.vx" {
		t.Errorf("file = %q, want main.vx", file)
	}
	if opts.backend != "c" {
		t.Errorf("backend = %q, want c", opts.backend)
	}
	if opts.strictUnsafe {
		t.Error("strictUnsafe should default to false")
	}
}

func TestParseBuildArgsRecognizesFlagsAfterTheFile(t *testing.T) {
	file, opts, err := parseBuildArgs([]string{"main.vx", "--backend=llvm", "--strict-unsafe", "-o", "out"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if file != "main.vx" {
		t.Errorf("file = %q, want main.vx", file)
	}
	if opts.backend != "llvm" {
		t.Errorf("backend = %q, want llvm", opts.backend)
	}
	if !opts.strictUnsafe {
		t.Error("strict-unsafe flag should be recorded")
	}
	if opts.output != "out" {
		t.Errorf("output = %q, want out", opts.output)
	}
}

func TestParseBuildArgsForwardsUnknownFlagsToTheHostCompiler(t *testing.T) {
	_, opts, err := parseBuildArgs([]string{"main.vx", "-Wall", "-lm", "-O2"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"-Wall", "-lm", "-O2"}
	if len(opts.ccArgs) != len(want) {
		t.Fatalf("ccArgs = %v, want %v", opts.ccArgs, want)
	}
	for i, a := range want {
		if opts.ccArgs[i] != a {
			t.Errorf("ccArgs[%d] = %q, want %q", i, opts.ccArgs[i], a)
		}
	}
}

func TestParseBuildArgsRejectsMissingFile(t *testing.T) {
	if _, _, err := parseBuildArgs([]string{"--backend=c"}); err == nil {
		t.Error("expected an error when no source file is given")
	}
}

func TestParseBuildArgsRejectsUnknownBackend(t *testing.T) {
	if _, _, err := parseBuildArgs([]string{"main.vx", "--backend=wasm"}); err == nil {
		t.Error("expected an error for an unrecognized backend")
	}
}

func TestParseBuildArgsRejectsDanglingDashO(t *testing.T) {
	if _, _, err := parseBuildArgs([]string{"main.vx", "-o"}); err == nil {
		t.Error("expected an error when -o has no following path")
	}
}

func TestFileModuleSourceReportsMissingFile(t *testing.T) {
	var src fileModuleSource
	if _, err := src.Parse("/nonexistent/path/does/not/exist.vx"); err == nil {
		t.Error("expected an error for a nonexistent path")
	}
}
