package pipeline

import (
	"path/filepath"
	"sort"

	"github.com/standardbeagle/nargo-mutants/internal/discover"
	"github.com/standardbeagle/nargo-mutants/internal/patch"
	"github.com/standardbeagle/nargo-mutants/internal/project"
	"github.com/standardbeagle/nargo-mutants/internal/report"
)

// ScanInfo is the no-execution project overview.
type ScanInfo struct {
	Project    *project.Project
	Discovery  *discover.Result
	ByOperator map[string]int
}

// Scan loads the project and discovers candidates without running
// anything and without touching the artifact directory.
func (p *Pipeline) Scan(root string) (*ScanInfo, error) {
	proj, err := project.Load(root)
	if err != nil {
		return nil, err
	}
	disc, err := discover.Project(proj)
	if err != nil {
		return nil, err
	}
	return &ScanInfo{
		Project:    proj,
		Discovery:  disc,
		ByOperator: discover.CountByOperator(disc.Mutants),
	}, nil
}

// PrintScan renders the overview on the human stream.
func (p *Pipeline) PrintScan(info *ScanInfo) {
	p.printer.Headerf("%s: %d source files, %d mutants",
		info.Project.Name, len(info.Project.Files), len(info.Discovery.Mutants))

	ops := make([]string, 0, len(info.ByOperator))
	for op := range info.ByOperator {
		ops = append(ops, op)
	}
	sort.Strings(ops)
	for _, op := range ops {
		p.printer.Infof("  %-8s %d", op, info.ByOperator[op])
	}
}

// List discovers candidates and writes mutants.json plus one diff per
// candidate into the artifact directory, rotating it first. It runs no
// tests.
func (p *Pipeline) List(root string, opts Options) (*ScanInfo, string, error) {
	info, err := p.Scan(root)
	if err != nil {
		return nil, "", err
	}

	outDir := opts.OutDir
	if outDir == "" {
		outDir = filepath.Join(info.Project.Root, p.cfg.OutDirName)
	}
	if err := report.Rotate(outDir); err != nil {
		return nil, "", err
	}
	writer := report.NewWriter(outDir)
	if err := writer.WriteMutants(info.Discovery.Mutants); err != nil {
		return nil, "", err
	}
	for _, m := range info.Discovery.Mutants {
		diff := patch.Diff(info.Discovery.Sources[m.File], m)
		if err := writer.WriteDiff(m.ID, diff); err != nil {
			return nil, "", err
		}
	}
	return info, outDir, nil
}
