package display

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/nargo-mutants/internal/types"
)

func TestNoColorDisablesEscapes(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	var out strings.Builder
	p := New(&out)
	p.Errorf("boom")
	p.Summary(types.Summary{Caught: 1})

	assert.NotContains(t, out.String(), "\x1b[")
}

func TestColorEnabledByDefault(t *testing.T) {
	t.Setenv("NO_COLOR", "")

	var out strings.Builder
	p := New(&out)
	p.Errorf("boom")

	assert.Contains(t, out.String(), ansiRed)
}

func TestOutcomeLine(t *testing.T) {
	var out strings.Builder
	p := NewPlain(&out)
	m := types.Mutant{ID: 4, File: "src/main.nr", Span: types.Span{Start: 17, End: 19}, Original: "==", Replacement: "!=", Operator: "==->!="}
	p.Outcome(m, types.Outcome{Kind: types.OutcomeCaught, DurationMs: 42})

	line := out.String()
	assert.Contains(t, line, "caught")
	assert.Contains(t, line, "src/main.nr:17")
	assert.Contains(t, line, "==->!=")
	assert.Contains(t, line, "42ms")
}

func TestSummaryLine(t *testing.T) {
	var out strings.Builder
	p := NewPlain(&out)
	p.Summary(types.Summary{Caught: 2, Missed: 1, Unviable: 3})

	assert.Equal(t, "6 mutants tested: 2 caught, 1 missed, 3 unviable, 0 timeout, 0 error\n", out.String())
}

func TestWriteJSON(t *testing.T) {
	var out strings.Builder
	require.NoError(t, WriteJSON(&out, map[string]int{"caught": 2}))
	assert.Equal(t, "{\n  \"caught\": 2\n}\n", out.String())
}
