// Package watch observes jj's on-disk operation log for changes made by
// another process (a concurrent `jj` CLI invocation, another tij, a CI
// job) and reports them as a dirty-flag producer — never a direct state
// mutator — so the refresh orchestrator's usual path picks them up
// (spec.md §5's concurrency addendum).
package watch

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/nakamura-shuta/tij/internal/dirty"
)

// Watcher wraps an fsnotify.Watcher rooted at a repo's op-log directory.
type Watcher struct {
	fs     *fsnotify.Watcher
	Events chan dirty.Flag
}

// New starts watching <repoRoot>/.jj/repo/op_heads for writes. The
// directory may not exist yet on a freshly-initialized repo; callers
// should tolerate New returning an error and simply run without the
// watcher (it is an enhancement, not a requirement — spec.md's
// concurrency model holds without it).
func New(repoRoot string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	opHeadsDir := filepath.Join(repoRoot, ".jj", "repo", "op_heads")
	if err := fsw.Add(opHeadsDir); err != nil {
		fsw.Close()
		return nil, err
	}

	w := &Watcher{fs: fsw, Events: make(chan dirty.Flag, 1)}
	go w.run()
	return w, nil
}

func (w *Watcher) run() {
	for {
		select {
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			// Single-slot inbox: a pending unread signal is sufficient,
			// no need to queue multiple external-change notifications.
			select {
			case w.Events <- dirty.OperationLog:
			default:
			}
		case _, ok := <-w.fs.Errors:
			if !ok {
				return
			}
		}
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	return w.fs.Close()
}
