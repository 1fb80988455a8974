// Package pipeline sequences the mutation run: baseline gate, mutant
// discovery, per-mutant isolated execution, and artifact emission. The
// core is strictly sequential across mutants; the only concurrency lives
// inside the process runner's pipe draining.
package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/standardbeagle/nargo-mutants/internal/config"
	"github.com/standardbeagle/nargo-mutants/internal/debug"
	"github.com/standardbeagle/nargo-mutants/internal/discover"
	"github.com/standardbeagle/nargo-mutants/internal/display"
	"github.com/standardbeagle/nargo-mutants/internal/errs"
	"github.com/standardbeagle/nargo-mutants/internal/patch"
	"github.com/standardbeagle/nargo-mutants/internal/process"
	"github.com/standardbeagle/nargo-mutants/internal/project"
	"github.com/standardbeagle/nargo-mutants/internal/report"
	"github.com/standardbeagle/nargo-mutants/internal/types"
	"github.com/standardbeagle/nargo-mutants/internal/workspace"
)

// Options carries the per-invocation knobs from the CLI.
type Options struct {
	// OutDir overrides the artifact directory; empty means
	// <project>/<cfg.OutDirName>.
	OutDir string

	// Limit truncates the execution list to the first N mutants after
	// sorting. 0 means no limit. mutants.json always records the full
	// discovery.
	Limit int

	// FailOnSurvivors requests exit status 2 when any mutant is missed.
	FailOnSurvivors bool
}

// Pipeline wires the run sequence to its collaborators.
type Pipeline struct {
	cfg     *config.Config
	runner  process.Runner
	printer *display.Printer
}

// New builds a Pipeline. The runner is injectable so tests can supply
// canned process results.
func New(cfg *config.Config, runner process.Runner, printer *display.Printer) *Pipeline {
	return &Pipeline{cfg: cfg, runner: runner, printer: printer}
}

// RunResult is everything a caller needs after a run: the aggregate
// counts for the exit status and the assembled run record for --json.
type RunResult struct {
	Project  *project.Project
	Baseline types.Baseline
	Summary  types.Summary
	Mutants  []types.Mutant
	Executed []report.Executed
	Errors   []string
	OutDir   string
	Run      report.RunJSON
}

// Run executes the full pipeline for the project at root. Fatal errors
// (project load, rotation, baseline, discovery) return a non-nil error;
// per-mutant failures are recorded as error outcomes and the run
// continues. On context cancellation the artifacts produced so far are
// flushed and ctx.Err is returned alongside the partial result.
func (p *Pipeline) Run(ctx context.Context, root string, opts Options) (*RunResult, error) {
	proj, err := project.Load(root)
	if err != nil {
		return nil, err
	}

	outDir := opts.OutDir
	if outDir == "" {
		outDir = filepath.Join(proj.Root, p.cfg.OutDirName)
	}
	if err := report.Rotate(outDir); err != nil {
		return nil, err
	}
	writer := report.NewWriter(outDir)

	res := &RunResult{Project: proj, OutDir: outDir, Errors: []string{}}

	baseline, probed, baseErr := p.baseline(ctx, proj)
	res.Baseline = baseline
	env := report.EnvironmentJSON{
		Timestamp:       time.Now().UTC().Format(time.RFC3339),
		NargoVersion:    probed,
		CompilerVersion: proj.CompilerVersion,
	}
	if baseErr != nil {
		res.Errors = append(res.Errors, baseErr.Error())
		res.Run = report.NewRunJSON(baseline, res.Summary, nil, nil, res.Errors, env)
		if err := writer.WriteRun(res.Run); err != nil {
			debug.Logf("failed to write run.json: %v", err)
		}
		if err := writer.WriteLog(baseline, res.Summary, res.Errors); err != nil {
			debug.Logf("failed to write log: %v", err)
		}
		return res, baseErr
	}
	p.printer.Infof("baseline passed in %dms", baseline.DurationMs)

	disc, err := discover.Project(proj)
	if err != nil {
		return res, err
	}
	res.Mutants = disc.Mutants
	env.FileDigests = report.DigestStrings(disc.Digests)
	if err := writer.WriteMutants(disc.Mutants); err != nil {
		return res, err
	}
	p.printer.Infof("%d mutants discovered", len(disc.Mutants))

	execList := disc.Mutants
	if opts.Limit > 0 && len(execList) > opts.Limit {
		execList = execList[:opts.Limit]
		p.printer.Infof("limited to first %d mutants", opts.Limit)
	}

	classifier := process.Classifier{
		CompileMarkers:  p.cfg.CompileMarkers,
		TestLineMarkers: p.cfg.TestLineMarkers,
	}
	wsOpts := workspace.Options{
		SkipRootEntries: []string{p.cfg.OutDirName, p.cfg.OutDirName + report.OldSuffix},
	}

	var interrupted error
	for _, m := range execList {
		if ctx.Err() != nil {
			interrupted = ctx.Err()
			break
		}
		executed := p.runMutant(ctx, proj, disc, m, classifier, wsOpts, writer)
		res.Summary.Add(executed.Outcome.Kind)
		if executed.Outcome.Kind == types.OutcomeError {
			res.Errors = append(res.Errors, executed.Outcome.Detail)
		}
		p.printer.Outcome(m, executed.Outcome)
		res.Executed = append(res.Executed, executed)
	}

	// Flush artifacts even after an interrupt: completed mutants are
	// present, pending ones are simply absent.
	if err := writer.WriteOutcomes(res.Executed); err != nil {
		return res, err
	}
	if err := writer.WriteTextLists(res.Executed); err != nil {
		return res, err
	}
	if err := writer.WriteLog(res.Baseline, res.Summary, res.Errors); err != nil {
		return res, err
	}
	res.Run = report.NewRunJSON(res.Baseline, res.Summary, res.Mutants, res.Executed, res.Errors, env)
	if err := writer.WriteRun(res.Run); err != nil {
		return res, err
	}

	p.printer.Summary(res.Summary)
	return res, interrupted
}

// runMutant stages and executes a single mutant. Driver failures become
// an error outcome; the caller decides nothing beyond recording it.
func (p *Pipeline) runMutant(ctx context.Context, proj *project.Project, disc *discover.Result, m types.Mutant, classifier process.Classifier, wsOpts workspace.Options, writer *report.Writer) report.Executed {
	src := disc.Sources[m.File]

	patched, err := patch.Apply(src, m)
	if err != nil {
		return errorOutcome(m, err)
	}
	if err := writer.WriteDiff(m.ID, patch.Diff(src, m)); err != nil {
		debug.Logf("failed to write diff for mutant %d: %v", m.ID, err)
	}

	var procRes process.Result
	err = workspace.With(proj.Root, m.File, patched, wsOpts, func(wsRoot string) error {
		var runErr error
		procRes, runErr = p.runner.Run(ctx, wsRoot, p.cfg.TestCommand, p.mutantTimeout())
		return runErr
	})
	if err != nil {
		return errorOutcome(m, err)
	}

	return report.Executed{
		Mutant: m,
		Outcome: types.Outcome{
			Kind:       classifier.Classify(procRes),
			DurationMs: procRes.DurationMs,
			Tail:       tailOf(procRes),
		},
	}
}

// baseline runs the unmutated test suite as the gate. On failure the
// version probe output feeds the mismatch hint.
func (p *Pipeline) baseline(ctx context.Context, proj *project.Project) (types.Baseline, string, error) {
	p.printer.Infof("running baseline tests in %s", proj.Name)

	// The baseline is never bounded; a slow clean build must not abort
	// the run.
	res, err := p.runner.Run(ctx, proj.Root, p.cfg.TestCommand, 0)
	if err != nil {
		return types.Baseline{}, "", err
	}

	baseline := types.Baseline{
		Passed:     process.BaselinePassed(res),
		DurationMs: res.DurationMs,
		Tail:       tailOf(res),
	}

	probed := p.probeVersion(ctx, proj)
	if baseline.Passed {
		return baseline, probed, nil
	}

	return baseline, probed, &errs.BaselineError{
		ExitCode: res.ExitCode,
		Tail:     baseline.Tail,
		Hint:     proj.Hint(probed),
	}
}

// probeVersion captures the external tool's version output tail; a
// failed probe yields an empty string rather than an error.
func (p *Pipeline) probeVersion(ctx context.Context, proj *project.Project) string {
	res, err := p.runner.Run(ctx, proj.Root, p.cfg.VersionCommand, 0)
	if err != nil {
		debug.Logf("version probe failed: %v", err)
		return ""
	}
	return res.Stdout
}

func (p *Pipeline) mutantTimeout() time.Duration {
	return time.Duration(p.cfg.TimeoutSeconds) * time.Second
}

func errorOutcome(m types.Mutant, err error) report.Executed {
	return report.Executed{
		Mutant: m,
		Outcome: types.Outcome{
			Kind:   types.OutcomeError,
			Detail: fmt.Sprintf("mutant %d: %v", m.ID, err),
		},
	}
}

func tailOf(res process.Result) string {
	if res.Stdout == "" {
		return res.Stderr
	}
	if res.Stderr == "" {
		return res.Stdout
	}
	return res.Stdout + res.Stderr
}
