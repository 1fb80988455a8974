// Package errs defines the typed error taxonomy for the mutation driver.
// Fatal kinds (project, baseline, discovery) terminate the run with exit
// status 1; per-mutant kinds (workspace, process, patch) are recorded as
// an error outcome for that mutant and the run continues.
package errs

import (
	"errors"
	"fmt"
	"strings"
)

// Kind identifies the failure class of a driver error.
type Kind string

const (
	// KindProject covers a missing or unreadable Nargo.toml and
	// unreadable source files at load time.
	KindProject Kind = "project"

	// KindBaseline covers a failing unmutated test run.
	KindBaseline Kind = "baseline"

	// KindDiscovery covers file read failures during the mutant scan.
	KindDiscovery Kind = "discovery"

	// KindWorkspace covers copy and removal failures while staging an
	// isolated tree.
	KindWorkspace Kind = "workspace"

	// KindProcess covers spawn failures and pipe I/O errors.
	KindProcess Kind = "process"

	// KindPatch covers a mismatch between a mutant's recorded original
	// text and the file bytes at its span.
	KindPatch Kind = "patch"
)

// ProjectError represents a failure to load the project descriptor.
type ProjectError struct {
	Path       string
	Operation  string
	Underlying error
}

// Error implements the error interface
func (e *ProjectError) Error() string {
	return fmt.Sprintf("project %s failed for %s: %v", e.Operation, e.Path, e.Underlying)
}

// Unwrap returns the underlying error for errors.Is/As
func (e *ProjectError) Unwrap() error {
	return e.Underlying
}

// BaselineError represents a failing unmutated test run.
type BaselineError struct {
	ExitCode int
	Tail     string

	// Hint is a version-mismatch note built from Nargo.toml's
	// compiler_version and the probed tool version when they differ.
	Hint string
}

// Error implements the error interface
func (e *BaselineError) Error() string {
	msg := fmt.Sprintf("baseline test run failed with exit code %d", e.ExitCode)
	if e.Hint != "" {
		msg += " (" + e.Hint + ")"
	}
	return msg
}

// DiscoveryError represents a file read failure during the mutant scan.
type DiscoveryError struct {
	Path       string
	Underlying error
}

// Error implements the error interface
func (e *DiscoveryError) Error() string {
	return fmt.Sprintf("discovery failed reading %s: %v", e.Path, e.Underlying)
}

// Unwrap returns the underlying error
func (e *DiscoveryError) Unwrap() error {
	return e.Underlying
}

// WorkspaceError represents a copy or cleanup failure for an isolated tree.
type WorkspaceError struct {
	Operation  string
	Path       string
	Underlying error
}

// Error implements the error interface
func (e *WorkspaceError) Error() string {
	return fmt.Sprintf("workspace %s failed for %s: %v", e.Operation, e.Path, e.Underlying)
}

// Unwrap returns the underlying error
func (e *WorkspaceError) Unwrap() error {
	return e.Underlying
}

// ProcessError represents a spawn failure or pipe I/O error while running
// the external test tool.
type ProcessError struct {
	Argv       []string
	Underlying error
}

// Error implements the error interface
func (e *ProcessError) Error() string {
	return fmt.Sprintf("process %q failed: %v", strings.Join(e.Argv, " "), e.Underlying)
}

// Unwrap returns the underlying error
func (e *ProcessError) Unwrap() error {
	return e.Underlying
}

// PatchMismatchError reports that a file's bytes at a mutant's span no
// longer match the recorded original text.
type PatchMismatchError struct {
	MutantID int
	File     string
	Want     string
	Got      string
}

// Error implements the error interface
func (e *PatchMismatchError) Error() string {
	return fmt.Sprintf("patch mismatch for mutant %d in %s: want %q at span, got %q",
		e.MutantID, e.File, e.Want, e.Got)
}

// KindOf returns the failure class of err, or an empty Kind for errors
// outside the taxonomy.
func KindOf(err error) Kind {
	var pe *ProjectError
	var be *BaselineError
	var de *DiscoveryError
	var we *WorkspaceError
	var pre *ProcessError
	var pme *PatchMismatchError
	switch {
	case errors.As(err, &pe):
		return KindProject
	case errors.As(err, &be):
		return KindBaseline
	case errors.As(err, &de):
		return KindDiscovery
	case errors.As(err, &we):
		return KindWorkspace
	case errors.As(err, &pre):
		return KindProcess
	case errors.As(err, &pme):
		return KindPatch
	}
	return ""
}

// IsFatal reports whether err must terminate the whole run rather than
// a single mutant.
func IsFatal(err error) bool {
	switch KindOf(err) {
	case KindProject, KindBaseline, KindDiscovery:
		return true
	}
	return false
}
