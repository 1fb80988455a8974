// Package types holds the core data model shared by the discovery,
// execution, and reporting layers. Everything here is plain data:
// candidates are produced once by the discoverer and consumed read-only
// by every downstream component.
package types

import "fmt"

// Span is a half-open byte range [Start, End) within a single source file.
// Offsets are byte offsets over the file's on-disk bytes, never rune
// offsets.
type Span struct {
	Start int
	End   int
}

// Len returns the number of bytes covered by the span.
func (s Span) Len() int {
	return s.End - s.Start
}

// Overlaps reports whether two spans partially overlap, i.e. they are
// neither disjoint nor identical. Partial overlap between candidates in
// the same file violates the discovery invariant.
func (s Span) Overlaps(o Span) bool {
	if s == o {
		return false
	}
	return s.Start < o.End && o.Start < s.End
}

// Mutant is a single textual replacement of one operator occurrence in
// one source file.
type Mutant struct {
	// ID is the 1-based position in the globally sorted candidate list.
	// Zero until SortAndAssignIDs has run.
	ID int

	// File is the project-relative path, slash-separated regardless of
	// platform so artifacts compare byte-for-byte across hosts.
	File string

	Span Span

	// Original is the matched operator text. It must equal the file
	// bytes at Span at the moment of patching.
	Original string

	// Replacement is the text spliced in at Span.
	Replacement string

	// Operator names the mutation, e.g. "==->!=".
	Operator string
}

// Location renders the mutant position as "file:offset" for text lists
// and human output.
func (m Mutant) Location() string {
	return fmt.Sprintf("%s:%d", m.File, m.Span.Start)
}

// OutcomeKind classifies what happened when a mutant's test run finished.
type OutcomeKind string

const (
	// OutcomeCaught means at least one test failed: the suite noticed
	// the mutation.
	OutcomeCaught OutcomeKind = "caught"

	// OutcomeMissed means every test still passed: a test-suite gap.
	OutcomeMissed OutcomeKind = "missed"

	// OutcomeUnviable means the mutated source failed to compile.
	OutcomeUnviable OutcomeKind = "unviable"

	// OutcomeTimeout means the test run exceeded its wall-clock budget.
	OutcomeTimeout OutcomeKind = "timeout"

	// OutcomeError means the driver itself failed for this mutant
	// (workspace, spawn, or patch mismatch); the run continues.
	OutcomeError OutcomeKind = "error"
)

// Outcome records the classified result of executing one mutant.
type Outcome struct {
	Kind       OutcomeKind
	DurationMs int64

	// Tail is the truncated captured output of the test process.
	Tail string

	// Detail carries the driver error text for OutcomeError.
	Detail string
}

// Baseline records the unmutated project's gating test run.
type Baseline struct {
	Passed     bool
	DurationMs int64
	Tail       string
}

// Summary aggregates outcome counts for one run.
type Summary struct {
	Caught   int
	Missed   int
	Unviable int
	Timeout  int
	Error    int
}

// Add bumps the counter for the given outcome kind.
func (s *Summary) Add(kind OutcomeKind) {
	switch kind {
	case OutcomeCaught:
		s.Caught++
	case OutcomeMissed:
		s.Missed++
	case OutcomeUnviable:
		s.Unviable++
	case OutcomeTimeout:
		s.Timeout++
	case OutcomeError:
		s.Error++
	}
}

// Total returns the number of executed mutants.
func (s Summary) Total() int {
	return s.Caught + s.Missed + s.Unviable + s.Timeout + s.Error
}
