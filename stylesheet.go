package turf

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Kind tells file stylesheets from inline ones.
type Kind int

const (
	KindFile Kind = iota
	KindInline
)

func (k Kind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindInline:
		return "inline"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// StyleSheet is the input of a compilation: a path to a stylesheet on disk
// or stylesheet text. The zero value is an empty inline stylesheet.
type StyleSheet struct {
	kind  Kind
	value string
}

// File refers to a stylesheet on disk. Relative paths resolve against the
// working directory.
func File(path string) StyleSheet {
	return StyleSheet{kind: KindFile, value: path}
}

// Inline wraps stylesheet text.
func Inline(text string) StyleSheet {
	return StyleSheet{kind: KindInline, value: text}
}

func (s StyleSheet) Kind() Kind { return s.kind }

// Path returns the file path, or "" for inline stylesheets.
func (s StyleSheet) Path() string {
	if s.kind == KindFile {
		return s.value
	}
	return ""
}

// Text returns the inline text, or "" for file stylesheets.
func (s StyleSheet) Text() string {
	if s.kind == KindInline {
		return s.value
	}
	return ""
}

// Stem names the stylesheet for output files: the file name without its
// extension, or "inline-" plus a content hash.
func (s StyleSheet) Stem() string {
	if s.kind == KindFile {
		base := filepath.Base(s.value)
		return strings.TrimSuffix(base, filepath.Ext(base))
	}
	return "inline-" + strconv.FormatUint(xxhash.Sum64String(s.value), 36)
}

func (s StyleSheet) String() string {
	if s.kind == KindFile {
		return s.value
	}
	return "<inline " + s.Stem() + ">"
}
