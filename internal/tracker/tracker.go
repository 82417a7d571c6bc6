// Package tracker records the auxiliary files a single compilation reads.
//
// Build tools only watch the files a generated artifact names directly.
// Partials pulled in through load paths are invisible to them, so every
// read goes through a Tracker and the resulting set is handed back to the
// code generator.
package tracker

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/yacobolo/turf/internal/pathutil"
	"go.uber.org/zap"
)

// Error reports a recorded dependency that can no longer be resolved.
type Error struct {
	Path string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("dependency %q could not be resolved: %v", e.Path, e.Err)
}

// Message returns the error text without the underlying cause.
func (e *Error) Message() string {
	return fmt.Sprintf("dependency %q could not be resolved", e.Path)
}

func (e *Error) Unwrap() error { return e.Err }

// Tracker is created per compilation and discarded with it. It is safe for
// concurrent use; the Dart Sass resolver may call it from its own goroutine.
type Tracker struct {
	log     *zap.Logger
	primary string

	mu    sync.Mutex
	seen  map[string]struct{}
	order []string
}

// New creates a tracker. primary is the stylesheet being compiled; it is
// never recorded. Pass "" for inline stylesheets.
func New(primary string, log *zap.Logger) *Tracker {
	if log == nil {
		log = zap.NewNop()
	}
	if primary != "" {
		if abs, err := filepath.Abs(primary); err == nil {
			primary = abs
		}
	}
	return &Tracker{
		log:     log.Named("tracker"),
		primary: primary,
		seen:    make(map[string]struct{}),
	}
}

// ReadFile reads path and records it as a dependency.
func (t *Tracker) ReadFile(path string) ([]byte, error) {
	// #nosec G304 - paths come from import resolution against configured load paths
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	t.Record(path)
	return data, nil
}

// Record adds path to the dependency set. Repeated paths and the primary
// stylesheet are ignored.
func (t *Tracker) Record(path string) {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	if abs == t.primary {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.seen[abs]; ok {
		return
	}
	t.seen[abs] = struct{}{}
	t.order = append(t.order, abs)
	t.log.Debug("Recorded dependency", zap.String("path", abs))
}

// Len returns the number of recorded dependencies.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.order)
}

// Dependencies returns the recorded files in first-read order, each resolved
// to its canonical path. Two recorded spellings of the same file collapse
// into one entry. A file that disappeared since it was read is an error.
func (t *Tracker) Dependencies() ([]string, error) {
	t.mu.Lock()
	recorded := make([]string, len(t.order))
	copy(recorded, t.order)
	t.mu.Unlock()

	out := make([]string, 0, len(recorded))
	seen := make(map[string]struct{}, len(recorded))
	for _, p := range recorded {
		canonical, err := pathutil.Canonicalize("", p)
		if err != nil {
			return nil, &Error{Path: p, Err: err}
		}
		if _, ok := seen[canonical]; ok {
			continue
		}
		seen[canonical] = struct{}{}
		out = append(out, canonical)
	}
	return out, nil
}
