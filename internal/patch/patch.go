// Package patch applies a single mutant to a file's bytes and renders a
// small unified-style diff for the artifact directory.
package patch

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/standardbeagle/nargo-mutants/internal/errs"
	"github.com/standardbeagle/nargo-mutants/internal/types"
)

// Apply splices the mutant's replacement into src and returns the
// patched bytes. src is never modified. The file bytes at the span must
// equal the mutant's recorded original text; a mismatch means the tree
// changed since discovery and yields a PatchMismatchError.
func Apply(src []byte, m types.Mutant) ([]byte, error) {
	if m.Span.Start < 0 || m.Span.End > len(src) || m.Span.Start > m.Span.End {
		return nil, &errs.PatchMismatchError{
			MutantID: m.ID,
			File:     m.File,
			Want:     m.Original,
			Got:      "<span out of range>",
		}
	}
	got := string(src[m.Span.Start:m.Span.End])
	if got != m.Original {
		return nil, &errs.PatchMismatchError{
			MutantID: m.ID,
			File:     m.File,
			Want:     m.Original,
			Got:      got,
		}
	}

	out := make([]byte, 0, len(src)-m.Span.Len()+len(m.Replacement))
	out = append(out, src[:m.Span.Start]...)
	out = append(out, m.Replacement...)
	out = append(out, src[m.Span.End:]...)
	return out, nil
}

// Diff renders a human-record diff snippet for the mutant: the changed
// line with one context line above and below when available. It is not
// required to be patch(1)-applicable.
func Diff(src []byte, m types.Mutant) string {
	lines := splitLines(src)
	lineIdx, lineStart := lineAt(src, m.Span.Start)

	old := lines[lineIdx]
	col := m.Span.Start - lineStart
	mutated := old[:col] + m.Replacement + old[col+m.Span.Len():]

	var b strings.Builder
	fmt.Fprintf(&b, "--- a/%s\n", m.File)
	fmt.Fprintf(&b, "+++ b/%s\n", m.File)
	fmt.Fprintf(&b, "@@ line %d: %s @@\n", lineIdx+1, m.Operator)
	if lineIdx > 0 {
		fmt.Fprintf(&b, " %s\n", lines[lineIdx-1])
	}
	fmt.Fprintf(&b, "-%s\n", old)
	fmt.Fprintf(&b, "+%s\n", mutated)
	if lineIdx+1 < len(lines) {
		fmt.Fprintf(&b, " %s\n", lines[lineIdx+1])
	}
	return b.String()
}

// splitLines splits src on '\n' without dropping a trailing unterminated
// line. Line content excludes the newline itself.
func splitLines(src []byte) []string {
	raw := bytes.Split(src, []byte("\n"))
	lines := make([]string, len(raw))
	for i, l := range raw {
		lines[i] = strings.TrimSuffix(string(l), "\r")
	}
	return lines
}

// lineAt returns the 0-based line index containing byte offset off and
// the offset of that line's first byte.
func lineAt(src []byte, off int) (int, int) {
	line := 0
	start := 0
	for i := 0; i < off && i < len(src); i++ {
		if src[i] == '\n' {
			line++
			start = i + 1
		}
	}
	return line, start
}
