// Package engine defines the Stylesheet Engine boundary and ships a
// built-in engine that resolves and inlines Sass imports.
package engine

import (
	"fmt"
	"os"
)

// Style selects the output formatting of an engine.
type Style int

const (
	// StyleExpanded writes one declaration per line.
	StyleExpanded Style = iota
	// StyleCompressed removes as many extra characters as possible.
	StyleCompressed
)

func (s Style) String() string {
	switch s {
	case StyleExpanded:
		return "expanded"
	case StyleCompressed:
		return "compressed"
	default:
		return fmt.Sprintf("Style(%d)", int(s))
	}
}

// Source is the stylesheet handed to an engine.
type Source struct {
	// Path is the absolute path of a file stylesheet, or "" for inline text.
	Path    string
	Content string
}

// Files reads auxiliary stylesheets. Engines must read every imported file
// through it so the caller learns which files were consulted.
type Files interface {
	ReadFile(path string) ([]byte, error)
}

// Options configure one engine run.
type Options struct {
	Style Style
	// LoadPaths are absolute, existing directories searched in order after
	// the importing file's own directory.
	LoadPaths []string
	// Files defaults to reading straight from disk.
	Files Files
}

//go:generate mockgen -source=engine.go -destination=mocks/mock_engine.go -package=mocks

// Engine compiles a stylesheet to plain CSS.
type Engine interface {
	Name() string
	Compile(src Source, opts Options) (string, error)
}

// Error is an engine diagnostic tied to a source location.
type Error struct {
	Path    string
	Line    int
	Message string
}

func (e *Error) Error() string {
	path := e.Path
	if path == "" {
		path = "<inline>"
	}
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %s", path, e.Line, e.Message)
	}
	return fmt.Sprintf("%s: %s", path, e.Message)
}

type osFiles struct{}

func (osFiles) ReadFile(path string) ([]byte, error) {
	// #nosec G304 - engines only read resolved import targets
	return os.ReadFile(path)
}

func filesOrDisk(f Files) Files {
	if f == nil {
		return osFiles{}
	}
	return f
}
