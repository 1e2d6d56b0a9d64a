// Package manifest loads and validates a project's virex.yaml — the
// project-level configuration the CLI driver consults before a build:
// module name, import search roots, default output path, backend
// choice, and any per-module strict-unsafe override. Parsing is via
// gopkg.in/yaml.v3, the direct teacher dependency this package repurposes.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultBackend is the backend a manifest with no explicit "backend"
// field builds against, matching §6's CLI default.
const DefaultBackend = "c"

// ModuleOverride narrows strict-unsafe enforcement to one source file,
// letting a project keep the project-wide default relaxed while
// tightening it for a module that does its own pointer arithmetic.
type ModuleOverride struct {
	Path         string `yaml:"path"`
	StrictUnsafe *bool  `yaml:"strict_unsafe,omitempty"`
}

// Manifest is the parsed form of a project's virex.yaml.
type Manifest struct {
	Module       string           `yaml:"module"`
	Roots        []string         `yaml:"roots,omitempty"`
	Output       string           `yaml:"output,omitempty"`
	Backend      string           `yaml:"backend,omitempty"`
	StrictUnsafe bool             `yaml:"strict_unsafe,omitempty"`
	Modules      []ModuleOverride `yaml:"modules,omitempty"`
}

// New creates a Manifest with the CLI's own defaults — the same values
// `virex build` falls back to when no virex.yaml is present at all.
func New(moduleName string) *Manifest {
	return &Manifest{
		Module:  moduleName,
		Roots:   []string{"."},
		Output:  moduleName,
		Backend: DefaultBackend,
	}
}

// Load reads and validates a virex.yaml at path.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	return parseString(string(data))
}

// parseString parses and validates a manifest from raw YAML text,
// shared by Load (reads from disk) and ParseExample (reads from the
// in-memory ExampleYAML fixture).
func parseString(data string) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal([]byte(data), &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	if m.Backend == "" {
		m.Backend = DefaultBackend
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("manifest validation failed: %w", err)
	}
	return &m, nil
}

// Save writes m to path as YAML, its module overrides sorted by path so
// repeated saves of an unchanged manifest produce byte-identical output.
func (m *Manifest) Save(path string) error {
	sort.Slice(m.Modules, func(i, j int) bool {
		return m.Modules[i].Path < m.Modules[j].Path
	})

	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate checks m for internal consistency: a non-empty module name, a
// recognized backend, no duplicate module-override paths, and every
// override naming a `.vx` file.
func (m *Manifest) Validate() error {
	if m.Module == "" {
		return fmt.Errorf("missing module name")
	}
	if m.Backend != "c" && m.Backend != "llvm" {
		return fmt.Errorf("invalid backend: %s (want c or llvm)", m.Backend)
	}

	seen := make(map[string]bool)
	for _, o := range m.Modules {
		if o.Path == "" {
			return fmt.Errorf("module override missing path")
		}
		if seen[o.Path] {
			return fmt.Errorf("duplicate module override path: %s", o.Path)
		}
		seen[o.Path] = true
		if !strings.HasSuffix(o.Path, ".vx") {
			return fmt.Errorf("module override %s must name a .vx file", o.Path)
		}
	}
	return nil
}

// StrictUnsafeFor resolves the effective strict-unsafe setting for a
// source path: an override for that exact path wins, otherwise the
// project-wide default applies.
func (m *Manifest) StrictUnsafeFor(path string) bool {
	for _, o := range m.Modules {
		if o.Path == path && o.StrictUnsafe != nil {
			return *o.StrictUnsafe
		}
	}
	return m.StrictUnsafe
}

// FindOverride locates the override entry for path, if any.
func (m *Manifest) FindOverride(path string) (*ModuleOverride, bool) {
	for i := range m.Modules {
		if m.Modules[i].Path == path {
			return &m.Modules[i], true
		}
	}
	return nil, false
}

// ResolveRoots returns m's import search roots as absolute paths rooted
// at dir (the manifest's own directory), so a loader.ModuleSource can
// search them regardless of the CLI's current working directory.
func (m *Manifest) ResolveRoots(dir string) []string {
	roots := m.Roots
	if len(roots) == 0 {
		roots = []string{"."}
	}
	out := make([]string, len(roots))
	for i, r := range roots {
		if filepath.IsAbs(r) {
			out[i] = r
		} else {
			out[i] = filepath.Join(dir, r)
		}
	}
	return out
}
