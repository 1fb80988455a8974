package pipeline

import (
	"context"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/standardbeagle/nargo-mutants/internal/debug"
)

// Watch re-runs discovery whenever the project's source tree changes and
// reprints the scan overview. Events are debounced, and a rescan whose
// per-file digest set is unchanged prints nothing. The loop runs until
// ctx is cancelled; it never executes tests.
func (p *Pipeline) Watch(ctx context.Context, root string) error {
	info, err := p.Scan(root)
	if err != nil {
		return err
	}
	p.PrintScan(info)
	lastDigests := info.Discovery.Digests

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := p.addWatchDirs(watcher, info.Project.Root); err != nil {
		return err
	}

	debounce := time.Duration(p.cfg.WatchDebounceMs) * time.Millisecond
	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if p.ignoreEvent(info.Project.Root, ev.Name) {
				continue
			}
			// A new directory must be watched before anything inside
			// it changes.
			if ev.Op&fsnotify.Create != 0 {
				if err := p.addWatchDirs(watcher, ev.Name); err != nil {
					debug.Logf("watch add failed for %s: %v", ev.Name, err)
				}
			}
			if timer == nil {
				timer = time.NewTimer(debounce)
				timerC = timer.C
			} else {
				timer.Reset(debounce)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			debug.Logf("watch error: %v", err)

		case <-timerC:
			timer = nil
			timerC = nil
			next, err := p.Scan(root)
			if err != nil {
				p.printer.Errorf("rescan failed: %v", err)
				continue
			}
			if digestsEqual(lastDigests, next.Discovery.Digests) {
				continue
			}
			lastDigests = next.Discovery.Digests
			p.PrintScan(next)
		}
	}
}

// addWatchDirs registers path and every directory below it, skipping the
// artifact directory and dot-directories.
func (p *Pipeline) addWatchDirs(watcher *fsnotify.Watcher, path string) error {
	return filepath.WalkDir(path, func(sub string, d fs.DirEntry, walkErr error) error {
		// A vanished entry mid-walk is not fatal for watching.
		if walkErr != nil || !d.IsDir() {
			return nil
		}
		base := filepath.Base(sub)
		if base == p.cfg.OutDirName || base == p.cfg.OutDirName+".old" {
			return filepath.SkipDir
		}
		if sub != path && strings.HasPrefix(base, ".") {
			return filepath.SkipDir
		}
		return watcher.Add(sub)
	})
}

// ignoreEvent filters changes under the artifact directory and editor
// dotfiles.
func (p *Pipeline) ignoreEvent(root, name string) bool {
	rel, err := filepath.Rel(root, name)
	if err != nil {
		return false
	}
	parts := strings.Split(filepath.ToSlash(rel), "/")
	for _, part := range parts {
		if part == p.cfg.OutDirName || part == p.cfg.OutDirName+".old" || strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}

func digestsEqual(a, b map[string]uint64) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if b[k] != v {
			return false
		}
	}
	return true
}
