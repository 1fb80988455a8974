package patch

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/nargo-mutants/internal/errs"
	"github.com/standardbeagle/nargo-mutants/internal/types"
)

func mutantAt(src string, op, repl string) types.Mutant {
	start := strings.Index(src, op)
	return types.Mutant{
		ID:          1,
		File:        "src/main.nr",
		Span:        types.Span{Start: start, End: start + len(op)},
		Original:    op,
		Replacement: repl,
		Operator:    op + "->" + repl,
	}
}

func TestApplySplicesReplacement(t *testing.T) {
	src := []byte("fn f() { a == b }")
	m := mutantAt(string(src), "==", "!=")

	patched, err := Apply(src, m)
	require.NoError(t, err)
	assert.Equal(t, "fn f() { a != b }", string(patched))
	// The input is untouched.
	assert.Equal(t, "fn f() { a == b }", string(src))
}

func TestApplyDifferentLengthReplacement(t *testing.T) {
	src := []byte("a <= b")
	m := mutantAt(string(src), "<=", ">")

	patched, err := Apply(src, m)
	require.NoError(t, err)
	assert.Equal(t, "a > b", string(patched))
}

func TestApplyRoundTrip(t *testing.T) {
	// Applying the patch and then reverting the span restores the
	// original bytes exactly.
	src := []byte("let x = a + b;\nlet y = c < d;\n")
	m := mutantAt(string(src), "+", "-")

	patched, err := Apply(src, m)
	require.NoError(t, err)

	revert := types.Mutant{
		ID:          m.ID,
		File:        m.File,
		Span:        types.Span{Start: m.Span.Start, End: m.Span.Start + len(m.Replacement)},
		Original:    m.Replacement,
		Replacement: m.Original,
	}
	restored, err := Apply(patched, revert)
	require.NoError(t, err)

	if diff := cmp.Diff(string(src), string(restored)); diff != "" {
		t.Fatalf("round trip mismatch (-orig +restored):\n%s", diff)
	}
}

func TestApplyMismatchFails(t *testing.T) {
	src := []byte("a == b")
	m := mutantAt(string(src), "==", "!=")
	m.Original = "<="

	_, err := Apply(src, m)
	require.Error(t, err)
	var pme *errs.PatchMismatchError
	require.ErrorAs(t, err, &pme)
	assert.Equal(t, "<=", pme.Want)
	assert.Equal(t, "==", pme.Got)
}

func TestApplySpanOutOfRangeFails(t *testing.T) {
	m := types.Mutant{Span: types.Span{Start: 4, End: 9}, Original: "=="}
	_, err := Apply([]byte("ab"), m)
	require.Error(t, err)
	assert.Equal(t, errs.KindPatch, errs.KindOf(err))
}

func TestDiffShowsChangedLineWithContext(t *testing.T) {
	src := []byte("fn f() {\n    a == b\n}\n")
	m := mutantAt(string(src), "==", "!=")

	diff := Diff(src, m)
	assert.Contains(t, diff, "--- a/src/main.nr")
	assert.Contains(t, diff, "+++ b/src/main.nr")
	assert.Contains(t, diff, "@@ line 2: ==->!= @@")
	assert.Contains(t, diff, " fn f() {")
	assert.Contains(t, diff, "-    a == b")
	assert.Contains(t, diff, "+    a != b")
	assert.Contains(t, diff, " }")
}

func TestDiffFirstLineHasNoLeadingContext(t *testing.T) {
	src := []byte("a == b\nrest\n")
	m := mutantAt(string(src), "==", "!=")

	diff := Diff(src, m)
	lines := strings.Split(diff, "\n")
	require.GreaterOrEqual(t, len(lines), 5)
	assert.Equal(t, "@@ line 1: ==->!= @@", lines[2])
	assert.Equal(t, "-a == b", lines[3])
	assert.Equal(t, "+a != b", lines[4])
}

func TestDiffLastLineHasNoTrailingContext(t *testing.T) {
	src := []byte("first\na == b")
	m := mutantAt(string(src), "==", "!=")

	diff := Diff(src, m)
	assert.True(t, strings.HasSuffix(diff, "+a != b\n"))
}
