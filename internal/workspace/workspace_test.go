package workspace

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildFixture creates a small project tree and returns its root.
func buildFixture(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "src", "nested"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "Nargo.toml"), []byte("[package]\nname = \"p\"\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "src", "main.nr"), []byte("a == b"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "src", "nested", "lib.nr"), []byte("c < d"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "tool.sh"), []byte("#!/bin/sh\n"), 0o755))
	return root
}

func TestWithCopiesTreeAndAppliesPatch(t *testing.T) {
	root := buildFixture(t)

	var seen string
	err := With(root, "src/main.nr", []byte("a != b"), Options{}, func(ws string) error {
		seen = ws

		patched, err := os.ReadFile(filepath.Join(ws, "src", "main.nr"))
		require.NoError(t, err)
		assert.Equal(t, "a != b", string(patched))

		untouched, err := os.ReadFile(filepath.Join(ws, "src", "nested", "lib.nr"))
		require.NoError(t, err)
		assert.Equal(t, "c < d", string(untouched))

		manifest, err := os.ReadFile(filepath.Join(ws, "Nargo.toml"))
		require.NoError(t, err)
		assert.Contains(t, string(manifest), "name = \"p\"")
		return nil
	})
	require.NoError(t, err)

	// The original tree is never perturbed.
	orig, err := os.ReadFile(filepath.Join(root, "src", "main.nr"))
	require.NoError(t, err)
	assert.Equal(t, "a == b", string(orig))

	// The workspace is gone after the body returns.
	_, statErr := os.Stat(seen)
	assert.True(t, os.IsNotExist(statErr))
}

func TestWithPreservesExecutableBits(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission bits are not meaningful on windows")
	}
	root := buildFixture(t)

	err := With(root, "src/main.nr", []byte("x"), Options{}, func(ws string) error {
		info, err := os.Stat(filepath.Join(ws, "tool.sh"))
		require.NoError(t, err)
		assert.NotZero(t, info.Mode().Perm()&0o111)
		return nil
	})
	require.NoError(t, err)
}

func TestWithCleansUpOnBodyError(t *testing.T) {
	root := buildFixture(t)

	var seen string
	err := With(root, "src/main.nr", []byte("x"), Options{}, func(ws string) error {
		seen = ws
		return assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)

	_, statErr := os.Stat(seen)
	assert.True(t, os.IsNotExist(statErr))
}

func TestWithCleansUpOnPanic(t *testing.T) {
	root := buildFixture(t)

	var seen string
	func() {
		defer func() { _ = recover() }()
		_ = With(root, "src/main.nr", []byte("x"), Options{}, func(ws string) error {
			seen = ws
			panic("abort")
		})
	}()

	require.NotEmpty(t, seen)
	_, statErr := os.Stat(seen)
	assert.True(t, os.IsNotExist(statErr))
}

func TestWithSkipsSymlinks(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlink creation requires privileges on windows")
	}
	root := buildFixture(t)

	outside := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(outside, "secret"), []byte("x"), 0o644))
	require.NoError(t, os.Symlink(outside, filepath.Join(root, "escape")))

	err := With(root, "src/main.nr", []byte("x"), Options{}, func(ws string) error {
		_, statErr := os.Lstat(filepath.Join(ws, "escape"))
		assert.True(t, os.IsNotExist(statErr))
		return nil
	})
	require.NoError(t, err)
}

func TestWithSkipsConfiguredRootEntries(t *testing.T) {
	root := buildFixture(t)
	require.NoError(t, os.MkdirAll(filepath.Join(root, "mutants.out", "diff"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "mutants.out", "log"), []byte("old"), 0o644))

	opts := Options{SkipRootEntries: []string{"mutants.out", "mutants.out.old"}}
	err := With(root, "src/main.nr", []byte("x"), opts, func(ws string) error {
		_, statErr := os.Stat(filepath.Join(ws, "mutants.out"))
		assert.True(t, os.IsNotExist(statErr))
		return nil
	})
	require.NoError(t, err)
}

func TestWithMutatedFileIsFreshInode(t *testing.T) {
	root := buildFixture(t)

	err := With(root, "src/main.nr", []byte("mutated"), Options{}, func(ws string) error {
		// Writing the workspace copy must never reach the original.
		require.NoError(t, os.WriteFile(filepath.Join(ws, "src", "main.nr"), []byte("scribbled"), 0o644))
		return nil
	})
	require.NoError(t, err)

	orig, err := os.ReadFile(filepath.Join(root, "src", "main.nr"))
	require.NoError(t, err)
	assert.Equal(t, "a == b", string(orig))
}
