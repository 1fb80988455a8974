// Package workspace stages isolated project copies. Each mutant gets a
// fresh temporary tree; the mutated file is always a fresh, unshared
// inode; the tree is removed on every exit path including panic.
package workspace

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/standardbeagle/nargo-mutants/internal/debug"
	"github.com/standardbeagle/nargo-mutants/internal/errs"
)

// Options tunes the tree copy.
type Options struct {
	// SkipRootEntries lists top-level directory names never copied into
	// the workspace, e.g. the artifact directory and its .old sibling.
	SkipRootEntries []string
}

// With creates a temporary copy of projectRoot, overwrites mutatedRel
// with patched bytes, invokes body with the workspace root, and removes
// the workspace afterwards regardless of how body exits.
func With(projectRoot, mutatedRel string, patched []byte, opts Options, body func(root string) error) error {
	dir, err := os.MkdirTemp("", "nargo-mutants-*")
	if err != nil {
		return &errs.WorkspaceError{Operation: "create", Path: projectRoot, Underlying: err}
	}
	defer func() {
		if rmErr := os.RemoveAll(dir); rmErr != nil {
			debug.Logf("workspace cleanup failed for %s: %v", dir, rmErr)
		}
	}()

	if err := copyTree(projectRoot, dir, opts); err != nil {
		return err
	}

	target := filepath.Join(dir, filepath.FromSlash(mutatedRel))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return &errs.WorkspaceError{Operation: "prepare", Path: target, Underlying: err}
	}
	if err := os.WriteFile(target, patched, 0o644); err != nil {
		return &errs.WorkspaceError{Operation: "write mutated file", Path: target, Underlying: err}
	}

	return body(dir)
}

// copyTree copies src into dst preserving file modes. Symlinks are
// skipped entirely so a link pointing outside the project root is never
// followed.
func copyTree(src, dst string, opts Options) error {
	err := filepath.WalkDir(src, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}

		if d.IsDir() && isSkippedRoot(rel, opts.SkipRootEntries) {
			return filepath.SkipDir
		}
		if d.Type()&fs.ModeSymlink != 0 {
			return nil
		}

		target := filepath.Join(dst, rel)
		if d.IsDir() {
			info, err := d.Info()
			if err != nil {
				return err
			}
			return os.MkdirAll(target, info.Mode().Perm())
		}
		return copyFile(path, target, d)
	})
	if err != nil {
		return &errs.WorkspaceError{Operation: "copy", Path: src, Underlying: err}
	}
	return nil
}

func isSkippedRoot(rel string, skip []string) bool {
	for _, name := range skip {
		if rel == name {
			return true
		}
	}
	return false
}

// copyFile copies one regular file preserving its permission bits, so
// executable fixtures stay executable in the workspace.
func copyFile(src, dst string, d fs.DirEntry) error {
	info, err := d.Info()
	if err != nil {
		return err
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
