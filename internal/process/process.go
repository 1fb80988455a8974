// Package process invokes the external test tool with a wall-clock
// timeout and bounded output capture, and classifies the result. The
// Runner interface is the injection seam: production wires ExecRunner,
// tests wire a stub returning canned results.
package process

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os/exec"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/standardbeagle/nargo-mutants/internal/debug"
	"github.com/standardbeagle/nargo-mutants/internal/errs"
)

// Result is the raw observation of one child process run.
type Result struct {
	ExitCode   int
	Stdout     string
	Stderr     string
	DurationMs int64
	TimedOut   bool
}

// Runner executes argv in dir with a wall-clock timeout. A zero timeout
// means no limit. Runner errors are driver failures (spawn, pipes); a
// non-zero exit of the child is not an error.
type Runner interface {
	Run(ctx context.Context, dir string, argv []string, timeout time.Duration) (Result, error)
}

// ExecRunner runs real operating-system processes.
type ExecRunner struct {
	// TailBytes caps each captured stream; excess input is discarded
	// from the front with a truncation marker.
	TailBytes int
}

// Run starts argv in dir, drains stdout and stderr concurrently to
// avoid pipe-buffer deadlock, and enforces the timeout by killing the
// child's whole process group.
func (r *ExecRunner) Run(ctx context.Context, dir string, argv []string, timeout time.Duration) (Result, error) {
	if len(argv) == 0 {
		return Result{}, &errs.ProcessError{Argv: argv, Underlying: errors.New("empty argv")}
	}

	runCtx := ctx
	var cancel context.CancelFunc
	if timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Dir = dir
	// A fresh process group lets cancellation reach the child's own
	// children, not just the direct process.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	stdout := newTailBuffer(r.TailBytes)
	stderr := newTailBuffer(r.TailBytes)

	outPipe, err := cmd.StdoutPipe()
	if err != nil {
		return Result{}, &errs.ProcessError{Argv: argv, Underlying: err}
	}
	errPipe, err := cmd.StderrPipe()
	if err != nil {
		return Result{}, &errs.ProcessError{Argv: argv, Underlying: err}
	}

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return Result{}, &errs.ProcessError{Argv: argv, Underlying: err}
	}

	// Kill the process group when the context expires or is cancelled.
	done := make(chan struct{})
	go func() {
		select {
		case <-runCtx.Done():
			killGroup(cmd)
		case <-done:
		}
	}()

	var eg errgroup.Group
	eg.Go(func() error { return drain(stdout, outPipe) })
	eg.Go(func() error { return drain(stderr, errPipe) })
	drainErr := eg.Wait()

	waitErr := cmd.Wait()
	close(done)
	duration := time.Since(start)

	timedOut := errors.Is(runCtx.Err(), context.DeadlineExceeded)
	res := Result{
		ExitCode:   exitCodeOf(waitErr),
		Stdout:     stdout.Tail(),
		Stderr:     stderr.Tail(),
		DurationMs: duration.Milliseconds(),
		TimedOut:   timedOut,
	}

	if drainErr != nil && !timedOut {
		return res, &errs.ProcessError{Argv: argv, Underlying: drainErr}
	}
	if waitErr != nil && res.ExitCode < 0 && !timedOut && !errors.Is(runCtx.Err(), context.Canceled) {
		return res, &errs.ProcessError{Argv: argv, Underlying: waitErr}
	}

	debug.Logf("ran %v in %s: exit=%d timedOut=%v", argv, dir, res.ExitCode, res.TimedOut)
	return res, nil
}

func killGroup(cmd *exec.Cmd) {
	if cmd.Process == nil {
		return
	}
	// Negative pid addresses the whole group created by Setpgid.
	_ = syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
}

// exitCodeOf maps Wait's result to an exit code; a signal-terminated
// child reports -1.
func exitCodeOf(waitErr error) int {
	if waitErr == nil {
		return 0
	}
	var ee *exec.ExitError
	if errors.As(waitErr, &ee) {
		return ee.ExitCode()
	}
	return -1
}

// drain copies a child pipe into its tail buffer until EOF. A closed
// pipe after a kill is a normal end of stream, not a driver failure.
func drain(dst *tailBuffer, src io.Reader) error {
	_, err := io.Copy(dst, src)
	if err != nil && !errors.Is(err, fs.ErrClosed) {
		return err
	}
	return nil
}
