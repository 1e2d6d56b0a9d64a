package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/virexlang/virex/internal/ast"
)

// Report is the canonical structured diagnostic. Every compiler phase
// builds Reports instead of returning bare errors.
type Report struct {
	Schema  string         `json:"schema"` // always "virex.error/v1"
	Code    string         `json:"code"`
	Phase   string         `json:"phase"`
	Message string         `json:"message"`
	Span    *ast.Span      `json:"span,omitempty"`
	Data    map[string]any `json:"data,omitempty"`
	Fix     *Fix           `json:"fix,omitempty"`

	// Warning marks a Report as advisory rather than fatal: it still
	// surfaces in Reports(), but Collector.HasErrors ignores it and
	// Render prints it at "warning" level. Set per-instance (not derived
	// from Code) so the same code can be a warning in one build and an
	// error in another — e.g. SAF004 under --strict-unsafe.
	Warning bool `json:"warning,omitempty"`
}

// Fix is an optional suggested remedy attached to a Report.
type Fix struct {
	Suggestion string `json:"suggestion"`
}

// ReportError wraps a Report so it survives errors.As() unwrapping.
type ReportError struct {
	Rep *Report
}

func (e *ReportError) Error() string {
	if e.Rep == nil {
		return "unknown error"
	}
	return e.Rep.Code + ": " + e.Rep.Message
}

// AsReport extracts a Report from an error chain.
func AsReport(err error) (*Report, bool) {
	var re *ReportError
	if errors.As(err, &re) {
		return re.Rep, true
	}
	return nil, false
}

// Wrap wraps a Report as an error.
func Wrap(r *Report) error {
	if r == nil {
		return nil
	}
	return &ReportError{Rep: r}
}

// New builds a Report for code at pos with message, formatted printf-style.
func New(code, phase string, pos ast.Pos, format string, args ...any) *Report {
	return &Report{
		Schema:  "virex.error/v1",
		Code:    code,
		Phase:   phase,
		Message: fmt.Sprintf(format, args...),
		Span:    &ast.Span{Start: pos, End: pos},
	}
}

// NewWarning builds a Report like New, marked Warning so it is excluded
// from Collector.HasErrors and rendered at "warning" level.
func NewWarning(code, phase string, pos ast.Pos, format string, args ...any) *Report {
	r := New(code, phase, pos, format, args...)
	r.Warning = true
	return r
}

// WithFix attaches a suggested fix and returns the same Report.
func (r *Report) WithFix(suggestion string) *Report {
	r.Fix = &Fix{Suggestion: suggestion}
	return r
}

// WithData attaches a structured data key and returns the same Report.
func (r *Report) WithData(key string, value any) *Report {
	if r.Data == nil {
		r.Data = make(map[string]any)
	}
	r.Data[key] = value
	return r
}

// ToJSON renders the Report as JSON; map keys sort alphabetically under
// encoding/json's default map handling, so output is deterministic.
func (r *Report) ToJSON(indent bool) (string, error) {
	var data []byte
	var err error
	if indent {
		data, err = json.MarshalIndent(r, "", "  ")
	} else {
		data, err = json.Marshal(r)
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}

var (
	colorRed    = color.New(color.FgRed, color.Bold).SprintFunc()
	colorYellow = color.New(color.FgYellow, color.Bold).SprintFunc()
	colorCyan   = color.New(color.FgCyan).SprintFunc()
	colorBold   = color.New(color.Bold).SprintFunc()
)

// Render formats a Report for terminal display, per §4.8:
//
//	error[TYP001]: cannot assign i64 to i32
//	  --> a.vx:3:5
//	    3 | let x: i32 = f();
//	      |     ^
//	  fix: insert an explicit cast
//
// The source line and caret are only printed when the reported file can
// be read from disk at render time — C9 itself never has the original
// source text in hand (lexing/parsing it is out of core scope), so a
// report built against a path that no longer exists, or against no path
// at all (Span.Start.File == ""), still renders cleanly without them.
func (r *Report) Render() string {
	levelWord, markColor := "error", colorRed
	if r.Warning {
		levelWord, markColor = "warning", colorYellow
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s[%s]: %s", markColor(levelWord), colorBold(r.Code), r.Message)

	if r.Span != nil {
		pos := r.Span.Start
		fmt.Fprintf(&b, "\n  %s %s", colorCyan("-->"), FormatSourceSpan(pos.File, pos.Line, pos.Column))
		if line, ok := readSourceLine(pos.File, pos.Line); ok {
			fmt.Fprintf(&b, "\n%5d | %s", pos.Line, ExpandTabsToSpaces(line))
			col := pos.Column - 1
			if col < 0 {
				col = 0
			}
			fmt.Fprintf(&b, "\n      | %s%s", strings.Repeat(" ", col), markColor("^"))
		}
	}

	if r.Fix != nil {
		fmt.Fprintf(&b, "\n  fix: %s", r.Fix.Suggestion)
	}
	return b.String()
}

// readSourceLine returns the 1-indexed line'th line of the file at path,
// without its trailing newline. It reports false whenever the file
// cannot be read (no path given, the file no longer exists, or the file
// is shorter than line) rather than returning an error — a missing
// source file is never fatal to rendering a diagnostic about it.
func readSourceLine(path string, line int) (string, bool) {
	if path == "" || line <= 0 {
		return "", false
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}
	lines := strings.Split(string(data), "\n")
	if line > len(lines) {
		return "", false
	}
	return lines[line-1], true
}

// Collector accumulates Reports across a compilation pass. A phase never
// panics on ill-typed input; it records a Report and continues so later
// errors in the same run still surface (§4.4 Failure semantics).
type Collector struct {
	reports []*Report
}

// Add appends r to the collector. A nil r is a no-op.
func (c *Collector) Add(r *Report) {
	if r != nil {
		c.reports = append(c.reports, r)
	}
}

// HasErrors reports whether any non-warning Report was collected.
func (c *Collector) HasErrors() bool {
	for _, r := range c.reports {
		if !r.Warning {
			return true
		}
	}
	return false
}

// Count returns the number of collected Reports.
func (c *Collector) Count() int { return len(c.reports) }

// Reports returns the collected Reports in insertion order.
func (c *Collector) Reports() []*Report { return c.reports }

// Suggest returns up to 3 candidate names closest to target by edit
// distance, for "did you mean" hints on NAM001/undefined-identifier
// reports.
func Suggest(target string, candidates []string) []string {
	type scored struct {
		name string
		dist int
	}
	scoredCandidates := make([]scored, 0, len(candidates))
	for _, c := range candidates {
		scoredCandidates = append(scoredCandidates, scored{c, levenshtein(target, c)})
	}
	sort.Slice(scoredCandidates, func(i, j int) bool {
		if scoredCandidates[i].dist != scoredCandidates[j].dist {
			return scoredCandidates[i].dist < scoredCandidates[j].dist
		}
		return scoredCandidates[i].name < scoredCandidates[j].name
	})
	var out []string
	for i := 0; i < len(scoredCandidates) && i < 3; i++ {
		if scoredCandidates[i].dist <= maxSuggestDistance(target) {
			out = append(out, scoredCandidates[i].name)
		}
	}
	return out
}

func maxSuggestDistance(s string) int {
	if len(s) <= 3 {
		return 1
	}
	return 2
}

// levenshtein computes the classic edit distance between a and b.
func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min3(curr[j-1]+1, prev[j]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

func min3(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}

// FormatSourceSpan formats a file position as "file:line:col", matching
// the caret/snippet rendering's own positional convention. A tab in the
// underlying source line prints as a single space to keep caret columns
// aligned (grounded on the original implementation's snippet renderer).
func FormatSourceSpan(file string, line, col int) string {
	return fmt.Sprintf("%s:%d:%d", file, line, col)
}

// ExpandTabsToSpaces replaces every tab in a source line with a single
// space, preserving column alignment for caret rendering.
func ExpandTabsToSpaces(line string) string {
	return strings.ReplaceAll(line, "\t", " ")
}
