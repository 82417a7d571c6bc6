// Package watch regenerates stylesheets when one of the files they were
// compiled from changes.
package watch

import (
	"context"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultWindow is the quiet period before a rebuild starts.
const DefaultWindow = 100 * time.Millisecond

// Watcher maps changed files back to the stylesheets depending on them.
// A stylesheet is identified by an owner key chosen by the caller.
type Watcher struct {
	log *zap.Logger
	fs  *fsnotify.Watcher

	mu     sync.Mutex
	deps   map[string][]string            // owner -> dependencies
	owners map[string]map[string]struct{} // dependency -> owners
	dirs   map[string]int                 // watched directory -> dependency count
}

// New creates a watcher. Call Close when done.
func New(log *zap.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Watcher{
		log:    log.Named("watch"),
		fs:     fsw,
		deps:   make(map[string][]string),
		owners: make(map[string]map[string]struct{}),
		dirs:   make(map[string]int),
	}, nil
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.fs.Close()
}

// Track replaces the dependency set of owner. Directories are watched
// rather than files so that editors replacing a file are still seen.
func (w *Watcher) Track(owner string, deps []string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, dep := range w.deps[owner] {
		delete(w.owners[dep], owner)
		if len(w.owners[dep]) == 0 {
			delete(w.owners, dep)
		}
		w.release(filepath.Dir(dep))
	}
	delete(w.deps, owner)

	if len(deps) == 0 {
		return nil
	}

	clean := make([]string, 0, len(deps))
	for _, dep := range deps {
		dep = filepath.Clean(dep)
		if slices.Contains(clean, dep) {
			continue
		}
		if err := w.acquire(filepath.Dir(dep)); err != nil {
			w.deps[owner] = clean
			return err
		}
		if w.owners[dep] == nil {
			w.owners[dep] = make(map[string]struct{})
		}
		w.owners[dep][owner] = struct{}{}
		clean = append(clean, dep)
	}
	w.deps[owner] = clean

	w.log.Debug("Tracking", zap.String("owner", owner), zap.Strings("dependencies", clean))
	return nil
}

func (w *Watcher) acquire(dir string) error {
	if w.dirs[dir] == 0 {
		if err := w.fs.Add(dir); err != nil {
			return err
		}
	}
	w.dirs[dir]++
	return nil
}

func (w *Watcher) release(dir string) {
	w.dirs[dir]--
	if w.dirs[dir] <= 0 {
		delete(w.dirs, dir)
		_ = w.fs.Remove(dir)
	}
}

// Affected returns the owners depending on path, sorted.
func (w *Watcher) Affected(path string) []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	set := w.owners[filepath.Clean(path)]
	out := make([]string, 0, len(set))
	for owner := range set {
		out = append(out, owner)
	}
	slices.Sort(out)
	return out
}

// Run calls rebuild with the owners affected by file changes until ctx is
// done. Changes arriving within window of each other are batched; rebuilds
// never overlap.
func (w *Watcher) Run(ctx context.Context, window time.Duration, rebuild func(owners []string)) error {
	var building sync.Mutex
	d := NewDebouncer(window, func(owners []string) {
		building.Lock()
		defer building.Unlock()
		rebuild(owners)
	})

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
				continue
			}
			for _, owner := range w.Affected(event.Name) {
				w.log.Debug("Changed", zap.String("file", event.Name), zap.String("owner", owner))
				d.Add(owner)
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("File system error", zap.Error(err))
		}
	}
}
