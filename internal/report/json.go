package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/standardbeagle/nargo-mutants/internal/types"
	"github.com/standardbeagle/nargo-mutants/internal/version"
)

// MutantJSON is one entry of mutants.json.
type MutantJSON struct {
	ID          int    `json:"id"`
	File        string `json:"file"`
	Start       int    `json:"start"`
	End         int    `json:"end"`
	Original    string `json:"original"`
	Replacement string `json:"replacement"`
	Operator    string `json:"operator"`
}

// NewMutantJSON converts the in-memory candidate to its artifact form.
func NewMutantJSON(m types.Mutant) MutantJSON {
	return MutantJSON{
		ID:          m.ID,
		File:        m.File,
		Start:       m.Span.Start,
		End:         m.Span.End,
		Original:    m.Original,
		Replacement: m.Replacement,
		Operator:    m.Operator,
	}
}

// MutantsJSON converts a whole candidate list to artifact form.
func MutantsJSON(ms []types.Mutant) []MutantJSON {
	out := make([]MutantJSON, 0, len(ms))
	for _, m := range ms {
		out = append(out, NewMutantJSON(m))
	}
	return out
}

// OutcomeJSON is one entry of outcomes.json.
type OutcomeJSON struct {
	ID         int    `json:"id"`
	File       string `json:"file"`
	Start      int    `json:"start"`
	End        int    `json:"end"`
	Outcome    string `json:"outcome"`
	DurationMs int64  `json:"duration_ms"`
}

// NewOutcomeJSON converts an executed mutant to its artifact form.
func NewOutcomeJSON(e Executed) OutcomeJSON {
	return OutcomeJSON{
		ID:         e.Mutant.ID,
		File:       e.Mutant.File,
		Start:      e.Mutant.Span.Start,
		End:        e.Mutant.Span.End,
		Outcome:    string(e.Outcome.Kind),
		DurationMs: e.Outcome.DurationMs,
	}
}

// BaselineJSON is the baseline section of run.json.
type BaselineJSON struct {
	Passed       bool   `json:"passed"`
	DurationMs   int64  `json:"duration_ms"`
	CapturedTail string `json:"captured_tail"`
}

// SummaryJSON is the summary section of run.json.
type SummaryJSON struct {
	Caught   int `json:"caught"`
	Missed   int `json:"missed"`
	Unviable int `json:"unviable"`
	Timeout  int `json:"timeout"`
	Error    int `json:"error"`
}

// EnvironmentJSON is the namespaced non-deterministic section of
// run.json. Nothing here appears in the deterministic artifacts.
type EnvironmentJSON struct {
	Timestamp       string            `json:"timestamp,omitempty"`
	NargoVersion    string            `json:"nargo_version,omitempty"`
	CompilerVersion string            `json:"compiler_version,omitempty"`
	FileDigests     map[string]string `json:"file_digests,omitempty"`
}

// RunJSON is the complete run record.
type RunJSON struct {
	Tool        string          `json:"tool"`
	Version     string          `json:"version"`
	Baseline    BaselineJSON    `json:"baseline"`
	Summary     SummaryJSON     `json:"summary"`
	Mutants     []MutantJSON    `json:"mutants"`
	Outcomes    []OutcomeJSON   `json:"outcomes"`
	Errors      []string        `json:"errors"`
	Environment EnvironmentJSON `json:"environment"`
}

// NewRunJSON assembles the run record from the pipeline's results.
func NewRunJSON(baseline types.Baseline, summary types.Summary, mutants []types.Mutant, executed []Executed, errs []string, env EnvironmentJSON) RunJSON {
	run := RunJSON{
		Tool:    version.Tool,
		Version: version.Version,
		Baseline: BaselineJSON{
			Passed:       baseline.Passed,
			DurationMs:   baseline.DurationMs,
			CapturedTail: baseline.Tail,
		},
		Summary: SummaryJSON{
			Caught:   summary.Caught,
			Missed:   summary.Missed,
			Unviable: summary.Unviable,
			Timeout:  summary.Timeout,
			Error:    summary.Error,
		},
		Mutants:     []MutantJSON{},
		Outcomes:    []OutcomeJSON{},
		Errors:      errs,
		Environment: env,
	}
	if run.Errors == nil {
		run.Errors = []string{}
	}
	for _, m := range mutants {
		run.Mutants = append(run.Mutants, NewMutantJSON(m))
	}
	for _, e := range executed {
		run.Outcomes = append(run.Outcomes, NewOutcomeJSON(e))
	}
	return run
}

// DigestStrings renders the per-file xxhash digests as fixed-width hex
// for the environment section.
func DigestStrings(digests map[string]uint64) map[string]string {
	out := make(map[string]string, len(digests))
	for rel, d := range digests {
		out[rel] = fmt.Sprintf("%016x", d)
	}
	return out
}

// writeJSON marshals v two-space indented with a trailing newline so
// artifact bytes are identical across runs on the same input.
func (w *Writer) writeJSON(name string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(filepath.Join(w.dir, name), data, 0o644)
}
