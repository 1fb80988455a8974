package pipeline

import (
	"context"
	"strings"

	"github.com/standardbeagle/nargo-mutants/internal/errs"
	"github.com/standardbeagle/nargo-mutants/internal/project"
	"github.com/standardbeagle/nargo-mutants/internal/types"
	"github.com/standardbeagle/nargo-mutants/internal/version"
)

// PreflightInfo is the bounded diagnostic result: tool versions plus the
// baseline gate, with no mutant execution and no artifact directory.
type PreflightInfo struct {
	Tool            string         `json:"tool"`
	Version         string         `json:"version"`
	CompilerVersion string         `json:"compiler_version,omitempty"`
	NargoVersion    string         `json:"nargo_version,omitempty"`
	Baseline        types.Baseline `json:"-"`

	BaselinePassed     bool   `json:"baseline_passed"`
	BaselineDurationMs int64  `json:"baseline_duration_ms"`
	BaselineTail       string `json:"baseline_tail,omitempty"`
	Hint               string `json:"hint,omitempty"`
}

// Preflight runs the loader and the baseline gate only. The returned
// info is valid whenever the project loads; a failing baseline is
// reported in the info, not as an error.
func (p *Pipeline) Preflight(ctx context.Context, root string) (*PreflightInfo, error) {
	proj, err := project.Load(root)
	if err != nil {
		return nil, err
	}

	info := &PreflightInfo{
		Tool:            version.Tool,
		Version:         version.Version,
		CompilerVersion: proj.CompilerVersion,
	}

	baseline, probed, baseErr := p.baseline(ctx, proj)
	info.Baseline = baseline
	info.NargoVersion = strings.TrimSpace(probed)
	info.BaselinePassed = baseline.Passed
	info.BaselineDurationMs = baseline.DurationMs
	info.BaselineTail = baseline.Tail
	if baseErr != nil {
		info.Hint = proj.Hint(probed)
		// A process-level failure (nargo missing) is fatal; a red
		// baseline is the diagnostic's answer, not a driver error.
		if errs.KindOf(baseErr) == errs.KindProcess {
			return info, baseErr
		}
	}
	return info, nil
}

// PrintPreflight renders the diagnostic on the human stream.
func (p *Pipeline) PrintPreflight(info *PreflightInfo) {
	p.printer.Headerf("%s %s preflight", info.Tool, info.Version)
	if info.CompilerVersion != "" {
		p.printer.Infof("compiler_version: %s", info.CompilerVersion)
	}
	if info.NargoVersion != "" {
		p.printer.Infof("nargo --version: %s", info.NargoVersion)
	}
	if info.BaselinePassed {
		p.printer.Infof("baseline: passed in %dms", info.BaselineDurationMs)
	} else {
		p.printer.Infof("baseline: failed")
		if info.Hint != "" {
			p.printer.Infof("hint: %s", info.Hint)
		}
	}
}
