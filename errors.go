package turf

import (
	"errors"
	"fmt"
)

// Compilation failure kinds. A *CompileError matches exactly one of them
// with errors.Is.
var (
	ErrPathResolution        = errors.New("load path could not be resolved")
	ErrStylesheetCompilation = errors.New("stylesheet could not be compiled")
	ErrTransform             = errors.New("css could not be transformed")
)

// CompileError is returned by Compile and Process. Err carries the
// underlying diagnostic.
type CompileError struct {
	Kind error
	Err  error
}

func (e *CompileError) Error() string {
	return e.Kind.Error() + ": " + e.Err.Error()
}

// Message returns the failure kind without the cause.
func (e *CompileError) Message() string {
	return e.Kind.Error()
}

func (e *CompileError) Is(target error) bool {
	return target == e.Kind
}

func (e *CompileError) Unwrap() error { return e.Err }

// TrackingError reports that the files read during a compilation could not
// be listed. The compiled stylesheet is still valid; callers may continue
// without forcing invalidation.
type TrackingError struct {
	Err error
}

func (e *TrackingError) Error() string {
	return e.Message() + ": " + e.Err.Error()
}

// Message returns the error text without the cause.
func (e *TrackingError) Message() string {
	return "could not determine the files read during compilation"
}

func (e *TrackingError) Unwrap() error { return e.Err }

// OutputConflictError reports two stylesheets whose separate CSS files
// share a path.
type OutputConflictError struct {
	Path   string
	First  StyleSheet
	Second StyleSheet
}

func (e *OutputConflictError) Error() string {
	return fmt.Sprintf("%s and %s would both be written to %s", e.First, e.Second, e.Path)
}
