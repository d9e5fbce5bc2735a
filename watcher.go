package prefs

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// DirWatcher observes a single directory, non-recursively, and reports
// which entries changed since the last poll. Backends that lose track of
// events return ErrWatcherLostSync from Poll; the caller should rescan
// manually.
type DirWatcher interface {
	// Poll returns the subpaths (base names) that changed since the
	// previous call. It never blocks.
	Poll() ([]string, error)

	// Close stops the watcher and releases its resources.
	Close() error
}

// FsnotifyWatcher is the production DirWatcher, backed by fsnotify. Events
// are accumulated on a background goroutine and drained by Poll.
type FsnotifyWatcher struct {
	watcher *fsnotify.Watcher

	mu      sync.Mutex
	pending []string
	seen    map[string]bool
	err     error
}

// WatchDir starts watching the given directory.
func WatchDir(dir string) (*FsnotifyWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close() //nolint:errcheck // already failing
		return nil, fmt.Errorf("failed to watch directory %s: %w", dir, err)
	}

	w := &FsnotifyWatcher{
		watcher: watcher,
		seen:    make(map[string]bool),
	}
	go w.collect()
	return w, nil
}

// collect drains fsnotify channels into the pending set until Close.
func (w *FsnotifyWatcher) collect() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			name := filepath.Base(event.Name)
			w.mu.Lock()
			if !w.seen[name] {
				w.seen[name] = true
				w.pending = append(w.pending, name)
			}
			w.mu.Unlock()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.mu.Lock()
			if errors.Is(err, fsnotify.ErrEventOverflow) {
				w.err = ErrWatcherLostSync
			} else if w.err == nil {
				w.err = err
			}
			w.mu.Unlock()
		}
	}
}

// Poll returns the subpaths that changed since the last call.
func (w *FsnotifyWatcher) Poll() ([]string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.err != nil {
		err := w.err
		w.err = nil
		return nil, err
	}

	changed := w.pending
	w.pending = nil
	clear(w.seen)
	return changed, nil
}

// Close stops the watcher.
func (w *FsnotifyWatcher) Close() error {
	return w.watcher.Close()
}

// ChannelDirWatcher is a DirWatcher fed by hand. Useful for testing and
// for hosts that already receive change notifications from elsewhere.
type ChannelDirWatcher struct {
	mu      sync.Mutex
	pending []string
	err     error
}

// Push records subpaths to be returned by the next Poll.
func (w *ChannelDirWatcher) Push(subpaths ...string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pending = append(w.pending, subpaths...)
}

// Fail makes the next Poll return err.
func (w *ChannelDirWatcher) Fail(err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.err = err
}

// Poll returns the pushed subpaths.
func (w *ChannelDirWatcher) Poll() ([]string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.err != nil {
		err := w.err
		w.err = nil
		return nil, err
	}
	changed := w.pending
	w.pending = nil
	return changed, nil
}

// Close is a no-op.
func (w *ChannelDirWatcher) Close() error { return nil }
