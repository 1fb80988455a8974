// Package report owns the artifact directory: atomic rotation of the
// previous run, the JSON and text artifact set, and the stable log. The
// deterministic artifacts (mutants.json, outcomes.json, the text lists,
// diffs, log) never contain timestamps or absolute temporary paths.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/standardbeagle/nargo-mutants/internal/types"
)

// OldSuffix names the rotated previous run next to the destination.
const OldSuffix = ".old"

// DiffDirName holds the per-mutant diff artifacts.
const DiffDirName = "diff"

// Executed pairs a mutant with its classified outcome for the artifact
// writers; outcomes join mutants by ID, not list position.
type Executed struct {
	Mutant  types.Mutant
	Outcome types.Outcome
}

// Rotate prepares dest atomically: remove dest.old, rename an existing
// dest to dest.old, create dest fresh. It runs once, before any artifact
// is written, so a concurrent observer sees the previous run or the new
// run but never a hybrid.
func Rotate(dest string) error {
	old := dest + OldSuffix
	if _, err := os.Lstat(old); err == nil {
		if err := os.RemoveAll(old); err != nil {
			return fmt.Errorf("failed to remove %s: %w", old, err)
		}
	}
	if _, err := os.Lstat(dest); err == nil {
		if err := os.Rename(dest, old); err != nil {
			return fmt.Errorf("failed to rotate %s: %w", dest, err)
		}
	}
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dest, err)
	}
	return nil
}

// Writer emits artifacts into a prepared output directory.
type Writer struct {
	dir string
}

// NewWriter returns a Writer for a directory already prepared by Rotate.
func NewWriter(dir string) *Writer {
	return &Writer{dir: dir}
}

// Dir returns the output directory path.
func (w *Writer) Dir() string {
	return w.dir
}

// WriteMutants writes mutants.json: the full discovery in ID order,
// before any --limit truncation.
func (w *Writer) WriteMutants(ms []types.Mutant) error {
	return w.writeJSON("mutants.json", MutantsJSON(ms))
}

// WriteOutcomes writes outcomes.json for the executed mutants in ID order.
func (w *Writer) WriteOutcomes(executed []Executed) error {
	list := make([]OutcomeJSON, 0, len(executed))
	for _, e := range executed {
		list = append(list, NewOutcomeJSON(e))
	}
	return w.writeJSON("outcomes.json", list)
}

// WriteDiff writes diff/NNNNNN.diff for one mutant. During a run, diffs
// are written immediately per mutant so partial runs leave usable state.
func (w *Writer) WriteDiff(id int, diff string) error {
	dir := filepath.Join(w.dir, DiffDirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	name := fmt.Sprintf("%06d.diff", id)
	return os.WriteFile(filepath.Join(dir, name), []byte(diff), 0o644)
}

// WriteTextLists writes caught.txt, missed.txt, and unviable.txt: one
// line per mutant of the matching outcome, tab-separated.
func (w *Writer) WriteTextLists(executed []Executed) error {
	lists := map[string]types.OutcomeKind{
		"caught.txt":   types.OutcomeCaught,
		"missed.txt":   types.OutcomeMissed,
		"unviable.txt": types.OutcomeUnviable,
	}
	for name, kind := range lists {
		var b strings.Builder
		for _, e := range executed {
			if e.Outcome.Kind != kind {
				continue
			}
			fmt.Fprintf(&b, "%d\t%s\t%s→%s\n",
				e.Mutant.ID, e.Mutant.Location(), e.Mutant.Original, e.Mutant.Replacement)
		}
		if err := os.WriteFile(filepath.Join(w.dir, name), []byte(b.String()), 0o644); err != nil {
			return err
		}
	}
	return nil
}

// WriteLog writes the stable text log: a baseline line, a summary line,
// and one line per recorded error. No timestamps, no absolute paths.
func (w *Writer) WriteLog(baseline types.Baseline, summary types.Summary, errs []string) error {
	var b strings.Builder
	if baseline.Passed {
		b.WriteString("baseline: passed\n")
	} else {
		b.WriteString("baseline: failed\n")
	}
	fmt.Fprintf(&b, "summary: caught=%d missed=%d unviable=%d timeout=%d error=%d\n",
		summary.Caught, summary.Missed, summary.Unviable, summary.Timeout, summary.Error)
	for _, e := range errs {
		fmt.Fprintf(&b, "error: %s\n", e)
	}
	return os.WriteFile(filepath.Join(w.dir, "log"), []byte(b.String()), 0o644)
}

// WriteRun writes run.json, the complete record including the
// namespaced non-deterministic environment section.
func (w *Writer) WriteRun(run RunJSON) error {
	return w.writeJSON("run.json", run)
}
