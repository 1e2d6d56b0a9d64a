package manifest

// ExampleYAML is a minimal, valid virex.yaml — the shape Validate accepts
// and the fixture ParseExample exercises in tests, standing in for the
// teacher's own ExampleHeaderSchema constant (a worked sample of the
// format rather than a machine-checked JSON schema, since yaml.v3 already
// enforces Manifest's field shapes at unmarshal time).
const ExampleYAML = `module: myapp
roots:
  - src
output: build/myapp
backend: c
strict_unsafe: false
modules:
  - path: src/unsafe_io.vx
    strict_unsafe: true
`

// ParseExample parses ExampleYAML, panicking on failure — it exists so
// callers (and tests) can get a hand of a valid Manifest without writing
// a fixture file to disk first.
func ParseExample() *Manifest {
	m, err := parseString(ExampleYAML)
	if err != nil {
		panic("manifest: ExampleYAML is not a valid manifest: " + err.Error())
	}
	return m
}
