// Package pathutil resolves configured search paths to absolute, existing
// directories.
package pathutil

import (
	"fmt"
	"os"
	"path/filepath"
)

// ResolutionError reports a configured path that does not exist or cannot
// be made absolute.
type ResolutionError struct {
	Path string
	Err  error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("could not resolve path %q: %v", e.Path, e.Err)
}

// Message returns the error text without the underlying cause.
func (e *ResolutionError) Message() string {
	return fmt.Sprintf("could not resolve path %q", e.Path)
}

func (e *ResolutionError) Unwrap() error { return e.Err }

// Canonicalize returns the absolute, symlink-free form of path. Relative
// paths are resolved against baseDir, or the working directory when baseDir
// is empty. The path must exist.
func Canonicalize(baseDir, path string) (string, error) {
	p := path
	if !filepath.IsAbs(p) && baseDir != "" {
		p = filepath.Join(baseDir, p)
	}

	abs, err := filepath.Abs(p)
	if err != nil {
		return "", &ResolutionError{Path: path, Err: err}
	}

	// EvalSymlinks fails on missing paths, which is what we want here.
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", &ResolutionError{Path: path, Err: err}
	}

	if _, err := os.Stat(resolved); err != nil {
		return "", &ResolutionError{Path: path, Err: err}
	}

	return resolved, nil
}

// CanonicalizeAll resolves every path in order and stops at the first
// failure.
func CanonicalizeAll(baseDir string, paths []string) ([]string, error) {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		resolved, err := Canonicalize(baseDir, p)
		if err != nil {
			return nil, err
		}
		out = append(out, resolved)
	}
	return out, nil
}
