package process

import (
	"strings"

	"github.com/standardbeagle/nargo-mutants/internal/types"
)

// Classifier maps a raw process result to a mutant outcome. Its marker
// tables are the only substantive coupling to the external tool's output
// format; both default sets live in the config package.
type Classifier struct {
	// CompileMarkers mark a compile failure anywhere in the captured
	// output.
	CompileMarkers []string

	// TestLineMarkers are expected in any output that actually reached
	// the test phase; their absence on a failing run means the build
	// never got that far.
	TestLineMarkers []string
}

// Classify applies the outcome table:
// timeout, then exit 0 = missed, then compile failure = unviable, then
// no test-line marker = unviable, otherwise caught.
func (c Classifier) Classify(res Result) types.OutcomeKind {
	if res.TimedOut {
		return types.OutcomeTimeout
	}
	if res.ExitCode == 0 {
		return types.OutcomeMissed
	}
	combined := res.Stdout + res.Stderr
	if containsAny(combined, c.CompileMarkers) {
		return types.OutcomeUnviable
	}
	if !containsAny(combined, c.TestLineMarkers) {
		return types.OutcomeUnviable
	}
	return types.OutcomeCaught
}

// BaselinePassed is the binary gate for the unmutated run.
func BaselinePassed(res Result) bool {
	return !res.TimedOut && res.ExitCode == 0
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if m != "" && strings.Contains(s, m) {
			return true
		}
	}
	return false
}
