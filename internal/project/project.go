// Package project loads a Noir project descriptor: the Nargo.toml
// manifest plus the ordered list of source files under src/.
package project

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pelletier/go-toml/v2"

	"github.com/standardbeagle/nargo-mutants/internal/debug"
	"github.com/standardbeagle/nargo-mutants/internal/errs"
)

// ManifestName is the Noir package manifest file.
const ManifestName = "Nargo.toml"

// SourceGlob matches every Noir source file below the project root.
const SourceGlob = "src/**/*.nr"

// Manifest mirrors the [package] table of Nargo.toml. Unknown keys are
// ignored; the driver only needs identity and the declared compiler
// version for the baseline mismatch hint.
type Manifest struct {
	Package struct {
		Name            string `toml:"name"`
		Type            string `toml:"type"`
		CompilerVersion string `toml:"compiler_version"`
	} `toml:"package"`
}

// File is one source file, addressed both absolutely (for I/O) and
// project-relative (for ordering and artifacts). Rel is always
// slash-separated.
type File struct {
	Abs string
	Rel string
}

// Project is the loaded descriptor handed to the pipeline.
type Project struct {
	// Root is the absolute project root path.
	Root string

	// Name is the package name from the manifest, or the root directory
	// base name when the manifest does not declare one.
	Name string

	// CompilerVersion is the declared compiler version string, possibly
	// empty.
	CompilerVersion string

	// Files is the source list ordered by relative path.
	Files []File
}

// Load reads the manifest at root and enumerates the source tree.
// A missing or unparsable Nargo.toml is a fatal project error.
func Load(root string) (*Project, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, &errs.ProjectError{Path: root, Operation: "resolve", Underlying: err}
	}

	manifestPath := filepath.Join(absRoot, ManifestName)
	raw, err := os.ReadFile(manifestPath)
	if err != nil {
		return nil, &errs.ProjectError{Path: manifestPath, Operation: "read manifest", Underlying: err}
	}

	var manifest Manifest
	if err := toml.Unmarshal(raw, &manifest); err != nil {
		return nil, &errs.ProjectError{Path: manifestPath, Operation: "parse manifest", Underlying: err}
	}

	files, err := enumerateSources(absRoot)
	if err != nil {
		return nil, err
	}

	name := manifest.Package.Name
	if name == "" {
		name = filepath.Base(absRoot)
	}

	debug.Logf("loaded project %s: %d source files", name, len(files))

	return &Project{
		Root:            absRoot,
		Name:            name,
		CompilerVersion: manifest.Package.CompilerVersion,
		Files:           files,
	}, nil
}

// enumerateSources globs src/**/*.nr under root and returns the matches
// sorted by relative path so downstream ordering is deterministic.
func enumerateSources(absRoot string) ([]File, error) {
	matches, err := doublestar.Glob(os.DirFS(absRoot), SourceGlob)
	if err != nil {
		return nil, &errs.ProjectError{Path: absRoot, Operation: "enumerate sources", Underlying: err}
	}
	sort.Strings(matches)

	files := make([]File, 0, len(matches))
	for _, rel := range matches {
		files = append(files, File{
			Abs: filepath.Join(absRoot, filepath.FromSlash(rel)),
			Rel: rel,
		})
	}
	return files, nil
}

// Hint builds the version-mismatch note attached to a failing baseline:
// non-empty only when the manifest declares a compiler version and the
// probed tool reports a different one.
func (p *Project) Hint(probedVersion string) string {
	declared := p.CompilerVersion
	if declared == "" || probedVersion == "" {
		return ""
	}
	// The probe output is free-form ("nargo version = 0.30.0\n..."); a
	// substring check is the strongest comparison available.
	if strings.Contains(probedVersion, declared) {
		return ""
	}
	return fmt.Sprintf("Nargo.toml declares compiler_version %q but nargo --version reports %q; a version mismatch can fail the baseline", declared, probedVersion)
}
