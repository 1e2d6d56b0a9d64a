package manifest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewManifest(t *testing.T) {
	m := New("myapp")

	if m.Module != "myapp" {
		t.Errorf("Module = %s, want myapp", m.Module)
	}
	if m.Backend != DefaultBackend {
		t.Errorf("Backend = %s, want %s", m.Backend, DefaultBackend)
	}
	if m.StrictUnsafe {
		t.Error("StrictUnsafe should default to false")
	}
	if len(m.Modules) != 0 {
		t.Errorf("Modules should be empty, got %d", len(m.Modules))
	}
}

func boolPtr(b bool) *bool { return &b }

func TestManifestValidation(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Manifest)
		wantErr bool
		errMsg  string
	}{
		{
			name:   "valid manifest",
			modify: func(m *Manifest) {},
		},
		{
			name: "missing module name",
			modify: func(m *Manifest) {
				m.Module = ""
			},
			wantErr: true,
			errMsg:  "missing module name",
		},
		{
			name: "unknown backend",
			modify: func(m *Manifest) {
				m.Backend = "wasm"
			},
			wantErr: true,
			errMsg:  "invalid backend",
		},
		{
			name: "duplicate module override path",
			modify: func(m *Manifest) {
				m.Modules = []ModuleOverride{
					{Path: "src/a.vx"},
					{Path: "src/a.vx"},
				}
			},
			wantErr: true,
			errMsg:  "duplicate module override path",
		},
		{
			name: "override missing .vx extension",
			modify: func(m *Manifest) {
				m.Modules = []ModuleOverride{{Path: "src/a.txt"}}
			},
			wantErr: true,
			errMsg:  "must name a .vx file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New("myapp")
			tt.modify(m)

			err := m.Validate()
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error containing %q, got nil", tt.errMsg)
				}
				if tt.errMsg != "" && !strings.Contains(err.Error(), tt.errMsg) {
					t.Errorf("error = %q, want to contain %q", err.Error(), tt.errMsg)
				}
			} else if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestManifestSaveAndLoadRoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "virex.yaml")

	m := New("myapp")
	m.Roots = []string{"src", "vendor"}
	m.Modules = []ModuleOverride{
		{Path: "src/unsafe_io.vx", StrictUnsafe: boolPtr(true)},
	}

	if err := m.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Module != "myapp" {
		t.Errorf("Module = %s, want myapp", loaded.Module)
	}
	if len(loaded.Roots) != 2 || loaded.Roots[0] != "src" || loaded.Roots[1] != "vendor" {
		t.Errorf("Roots = %v, want [src vendor]", loaded.Roots)
	}
	if !loaded.StrictUnsafeFor("src/unsafe_io.vx") {
		t.Error("expected the per-module override to enable strict-unsafe")
	}
	if loaded.StrictUnsafeFor("src/other.vx") {
		t.Error("a module with no override should fall back to the project default")
	}
}

func TestLoadRejectsMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml")); err == nil {
		t.Error("expected an error for a nonexistent manifest file")
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "virex.yaml")
	if err := os.WriteFile(path, []byte("module: [this is not a string"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected an error for malformed YAML")
	}
}

func TestParseExampleProducesAValidManifest(t *testing.T) {
	m := ParseExample()
	if err := m.Validate(); err != nil {
		t.Errorf("ExampleYAML should validate cleanly: %v", err)
	}
	if m.Module != "myapp" {
		t.Errorf("Module = %s, want myapp", m.Module)
	}
}

func TestResolveRootsJoinsRelativeRootsAgainstDir(t *testing.T) {
	m := New("myapp")
	m.Roots = []string{"src", "/abs/vendor"}

	roots := m.ResolveRoots("/project")
	want := []string{"/project/src", "/abs/vendor"}
	if len(roots) != len(want) {
		t.Fatalf("roots = %v, want %v", roots, want)
	}
	for i := range want {
		if roots[i] != want[i] {
			t.Errorf("roots[%d] = %s, want %s", i, roots[i], want[i])
		}
	}
}

func TestFindOverride(t *testing.T) {
	m := New("myapp")
	m.Modules = []ModuleOverride{{Path: "src/a.vx", StrictUnsafe: boolPtr(true)}}

	if _, ok := m.FindOverride("src/missing.vx"); ok {
		t.Error("should not find an override for an unlisted path")
	}
	o, ok := m.FindOverride("src/a.vx")
	if !ok {
		t.Fatal("expected to find the override")
	}
	if o.StrictUnsafe == nil || !*o.StrictUnsafe {
		t.Error("found override should carry StrictUnsafe = true")
	}
}
