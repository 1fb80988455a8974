// Package discover performs deterministic mutant discovery: a textual
// walk over code-classified bytes that emits ordered mutation candidates
// with stable IDs. Discovery is a pure function of the source bytes;
// nothing here touches the clock, temporary paths, or the environment.
package discover

import (
	"os"
	"sort"

	"github.com/cespare/xxhash/v2"

	"github.com/standardbeagle/nargo-mutants/internal/debug"
	"github.com/standardbeagle/nargo-mutants/internal/errs"
	"github.com/standardbeagle/nargo-mutants/internal/project"
	"github.com/standardbeagle/nargo-mutants/internal/scan"
	"github.com/standardbeagle/nargo-mutants/internal/types"
)

// mutation maps one matched operator to its replacement set.
type mutation struct {
	op           string
	replacements []string
}

// mutationTable is tried in order at every code offset, so every
// two-byte operator must precede the one-byte operators it shares a
// prefix with. This is what keeps "<=" from also yielding mutants at
// its "<" or "=".
var mutationTable = []mutation{
	{"==", []string{"!="}},
	{"!=", []string{"=="}},
	{"<=", []string{">"}},
	{">=", []string{"<"}},
	{"&&", []string{"||"}},
	{"||", []string{"&&"}},
	{"<", []string{">="}},
	{">", []string{"<="}},
	{"+", []string{"-"}},
	{"-", []string{"+"}},
}

// passTokens are composite tokens the discoverer recognizes but never
// mutates. They are consumed whole, before the mutation table, so their
// constituent bytes cannot match shorter operators: "fn f() -> bool"
// yields neither a "-" nor a ">" candidate.
var passTokens = []string{"->"}

// Result is the outcome of discovery over a whole project.
type Result struct {
	// Mutants is the globally sorted candidate list with IDs assigned.
	Mutants []types.Mutant

	// Digests maps each relative source path to the xxhash of its
	// bytes, recorded for the run environment section and used by the
	// watch loop to suppress no-op rescans.
	Digests map[string]uint64

	// Sources retains each file's bytes so the execution loop patches
	// exactly what was scanned.
	Sources map[string][]byte
}

// Project reads every source file of p and returns the sorted, ID'd
// candidate list. A file read failure is a fatal discovery error.
func Project(p *project.Project) (*Result, error) {
	res := &Result{
		Digests: make(map[string]uint64, len(p.Files)),
		Sources: make(map[string][]byte, len(p.Files)),
	}

	for _, f := range p.Files {
		src, err := os.ReadFile(f.Abs)
		if err != nil {
			return nil, &errs.DiscoveryError{Path: f.Abs, Underlying: err}
		}
		res.Digests[f.Rel] = xxhash.Sum64(src)
		res.Sources[f.Rel] = src
		found := File(f.Rel, src)
		debug.Logf("discover %s: %d candidates", f.Rel, len(found))
		res.Mutants = append(res.Mutants, found...)
	}

	SortAndAssignIDs(res.Mutants)
	return res, nil
}

// File emits the unsorted candidates for one source file. IDs are zero
// until SortAndAssignIDs runs over the whole project's list.
func File(rel string, src []byte) []types.Mutant {
	cls := scan.Classify(src)
	excluded := testExclusions(src, cls)

	var out []types.Mutant
	i := 0
scanLoop:
	for i < len(src) {
		if !cls.IsCode(i) {
			i++
			continue
		}

		for _, tok := range passTokens {
			if matchesAt(src, cls, i, tok) {
				i += len(tok)
				continue scanLoop
			}
		}

		for _, m := range mutationTable {
			if !matchesAt(src, cls, i, m.op) {
				continue
			}
			end := i + len(m.op)
			if !within(excluded, i) {
				for _, repl := range m.replacements {
					out = append(out, types.Mutant{
						File:        rel,
						Span:        types.Span{Start: i, End: end},
						Original:    m.op,
						Replacement: repl,
						Operator:    m.op + "->" + repl,
					})
				}
			}
			// Advance past the whole match, never to i+1: a matched
			// site must not also yield mutants at its inner bytes.
			i = end
			continue scanLoop
		}

		i++
	}

	return out
}

// matchesAt reports whether tok occurs at offset i with every byte
// code-classified.
func matchesAt(src []byte, cls *scan.Classification, i int, tok string) bool {
	if i+len(tok) > len(src) {
		return false
	}
	if string(src[i:i+len(tok)]) != tok {
		return false
	}
	return cls.CodeRange(i, i+len(tok))
}

// within reports whether off falls inside any of the sorted spans.
func within(spans []types.Span, off int) bool {
	for _, s := range spans {
		if off >= s.Start && off < s.End {
			return true
		}
		if s.Start > off {
			break
		}
	}
	return false
}

// SortAndAssignIDs orders candidates by (file, span start, span end,
// replacement) and numbers them 1..n. The ordering is total for any
// valid candidate set, so IDs are stable across runs on the same bytes.
func SortAndAssignIDs(ms []types.Mutant) {
	sort.SliceStable(ms, func(a, b int) bool {
		if ms[a].File != ms[b].File {
			return ms[a].File < ms[b].File
		}
		if ms[a].Span.Start != ms[b].Span.Start {
			return ms[a].Span.Start < ms[b].Span.Start
		}
		if ms[a].Span.End != ms[b].Span.End {
			return ms[a].Span.End < ms[b].Span.End
		}
		return ms[a].Replacement < ms[b].Replacement
	})
	for i := range ms {
		ms[i].ID = i + 1
	}
}

// CountByOperator tallies candidates per operator kind for the scan
// overview.
func CountByOperator(ms []types.Mutant) map[string]int {
	counts := make(map[string]int)
	for _, m := range ms {
		counts[m.Operator]++
	}
	return counts
}
