// Package display owns the stream discipline: every human-readable line
// goes to the error stream, machine JSON goes to the standard stream
// exactly once at exit, and NO_COLOR disables ANSI escapes on both.
package display

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/standardbeagle/nargo-mutants/internal/types"
)

const (
	ansiReset  = "\x1b[0m"
	ansiBold   = "\x1b[1m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
)

// Printer writes human-readable lines. It is constructed once at startup
// with the color decision already made.
type Printer struct {
	w     io.Writer
	color bool
}

// New builds a Printer on w. Color is enabled unless NO_COLOR is
// non-empty in the environment, read once here.
func New(w io.Writer) *Printer {
	return &Printer{w: w, color: os.Getenv("NO_COLOR") == ""}
}

// NewPlain builds a Printer with color forced off, for tests.
func NewPlain(w io.Writer) *Printer {
	return &Printer{w: w}
}

// Infof prints a plain human line.
func (p *Printer) Infof(format string, args ...interface{}) {
	fmt.Fprintf(p.w, format+"\n", args...)
}

// Errorf prints an error line.
func (p *Printer) Errorf(format string, args ...interface{}) {
	fmt.Fprintf(p.w, p.paint(ansiRed, "error: ")+format+"\n", args...)
}

// Headerf prints an emphasized section line.
func (p *Printer) Headerf(format string, args ...interface{}) {
	fmt.Fprintf(p.w, p.paint(ansiBold, format)+"\n", args...)
}

// Outcome prints one mutant's classified result.
func (p *Printer) Outcome(m types.Mutant, o types.Outcome) {
	// Pad before painting so escape codes do not skew the column.
	label := fmt.Sprintf("%-8s", string(o.Kind))
	switch o.Kind {
	case types.OutcomeCaught:
		label = p.paint(ansiGreen, label)
	case types.OutcomeMissed:
		label = p.paint(ansiRed, label)
	case types.OutcomeUnviable, types.OutcomeTimeout:
		label = p.paint(ansiYellow, label)
	case types.OutcomeError:
		label = p.paint(ansiRed, label)
	}
	p.Infof("%s %s %s (%dms)", label, m.Location(), m.Operator, o.DurationMs)
}

// Summary prints the aggregate counts for a finished run.
func (p *Printer) Summary(s types.Summary) {
	p.Infof("%d mutants tested: %s caught, %s missed, %d unviable, %d timeout, %d error",
		s.Total(),
		p.paint(ansiGreen, fmt.Sprintf("%d", s.Caught)),
		p.paint(ansiRed, fmt.Sprintf("%d", s.Missed)),
		s.Unviable, s.Timeout, s.Error)
}

func (p *Printer) paint(code, s string) string {
	if !p.color {
		return s
	}
	return code + s + ansiReset
}

// WriteJSON emits v as an indented JSON document on w. It is the single
// machine-output path used by the --json flag.
func WriteJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
