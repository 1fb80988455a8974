package process

import (
	"context"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/standardbeagle/nargo-mutants/internal/errs"
)

// TestMain verifies the runner's drain and kill goroutines always join.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
	)
}

func requireUnix(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("exec tests use sh")
	}
}

func TestExecRunnerCapturesOutput(t *testing.T) {
	requireUnix(t)
	r := &ExecRunner{TailBytes: 64 * 1024}

	res, err := r.Run(context.Background(), t.TempDir(),
		[]string{"sh", "-c", "echo out; echo err 1>&2"}, 0)
	require.NoError(t, err)

	assert.Equal(t, 0, res.ExitCode)
	assert.Equal(t, "out\n", res.Stdout)
	assert.Equal(t, "err\n", res.Stderr)
	assert.False(t, res.TimedOut)
}

func TestExecRunnerNonZeroExitIsNotAnError(t *testing.T) {
	requireUnix(t)
	r := &ExecRunner{TailBytes: 1024}

	res, err := r.Run(context.Background(), t.TempDir(),
		[]string{"sh", "-c", "exit 3"}, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, res.ExitCode)
}

func TestExecRunnerTimeout(t *testing.T) {
	requireUnix(t)
	r := &ExecRunner{TailBytes: 1024}

	start := time.Now()
	res, err := r.Run(context.Background(), t.TempDir(),
		[]string{"sh", "-c", "sleep 30"}, 200*time.Millisecond)
	require.NoError(t, err)

	assert.True(t, res.TimedOut)
	assert.Less(t, time.Since(start), 10*time.Second)
}

func TestExecRunnerRunsInDir(t *testing.T) {
	requireUnix(t)
	dir := t.TempDir()
	r := &ExecRunner{TailBytes: 1024}

	res, err := r.Run(context.Background(), dir, []string{"pwd"}, 0)
	require.NoError(t, err)
	assert.Contains(t, res.Stdout, "/")
}

func TestExecRunnerSpawnFailure(t *testing.T) {
	r := &ExecRunner{TailBytes: 1024}

	_, err := r.Run(context.Background(), t.TempDir(),
		[]string{"definitely-not-a-real-binary-xyz"}, 0)
	require.Error(t, err)
	assert.Equal(t, errs.KindProcess, errs.KindOf(err))
}

func TestExecRunnerEmptyArgv(t *testing.T) {
	r := &ExecRunner{TailBytes: 1024}
	_, err := r.Run(context.Background(), t.TempDir(), nil, 0)
	require.Error(t, err)
}

func TestExecRunnerCancelledContext(t *testing.T) {
	requireUnix(t)
	r := &ExecRunner{TailBytes: 1024}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	res, err := r.Run(ctx, t.TempDir(), []string{"sh", "-c", "sleep 30"}, 0)
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 10*time.Second)
	assert.False(t, res.TimedOut)
	assert.NotZero(t, res.ExitCode)
}
