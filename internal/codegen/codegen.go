// Package codegen renders the Go source that exposes a compiled stylesheet:
// the CSS as a constant, one identifier per class name and an inert
// reference to every file the stylesheet was compiled from.
package codegen

import (
	"bytes"
	"fmt"
	"go/format"
	"go/token"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/maruel/natural"
)

// Mode selects how class names are exposed.
type Mode int

const (
	// ModeConstants emits one constant per class in SCREAMING_SNAKE case.
	ModeConstants Mode = iota
	// ModeValues emits a ClassNames struct type and a Classes variable.
	ModeValues
)

func (m Mode) String() string {
	switch m {
	case ModeConstants:
		return "constants"
	case ModeValues:
		return "values"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode parses a --mode value.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "constants", "const":
		return ModeConstants, nil
	case "values":
		return ModeValues, nil
	}
	return 0, fmt.Errorf("unknown mode %q (want constants or values)", s)
}

// File describes one generated Go file.
type File struct {
	Package string
	// Source names the stylesheet in comments, e.g. "button.scss".
	Source string
	// Prefix is prepended to every generated identifier. It lets several
	// stylesheets share a package.
	Prefix     string
	Mode       Mode
	CSS        string
	ClassNames map[string]string
	// Dependencies are emitted as written; see Rel.
	Dependencies []string
}

// IdentifierError reports a class name that does not yield a valid Go
// identifier.
type IdentifierError struct {
	Class string
	Ident string
}

func (e *IdentifierError) Error() string {
	return fmt.Sprintf("class %q does not map to a valid Go identifier (got %q)", e.Class, e.Ident)
}

// CollisionError reports two class names that map to the same identifier.
type CollisionError struct {
	Ident   string
	Classes [2]string
}

func (e *CollisionError) Error() string {
	return fmt.Sprintf("classes %q and %q both map to identifier %s", e.Classes[0], e.Classes[1], e.Ident)
}

type entry struct {
	ident string
	value string
}

// Render returns the gofmt-formatted source of f.
func Render(f File) ([]byte, error) {
	if !token.IsIdentifier(f.Package) {
		return nil, fmt.Errorf("invalid package name %q", f.Package)
	}

	source := f.Source
	if source == "" {
		source = "an inline stylesheet"
	}

	var buf bytes.Buffer
	if f.Source != "" {
		fmt.Fprintf(&buf, "// Code generated by turf from %s. DO NOT EDIT.\n\n", f.Source)
	} else {
		buf.WriteString("// Code generated by turf. DO NOT EDIT.\n\n")
	}
	fmt.Fprintf(&buf, "package %s\n\n", f.Package)

	cssIdent := PascalCase(f.Prefix) + "StyleSheet"
	fmt.Fprintf(&buf, "// %s is the compiled CSS of %s.\n", cssIdent, source)
	fmt.Fprintf(&buf, "const %s = %s\n", cssIdent, strconv.Quote(f.CSS))

	var err error
	switch f.Mode {
	case ModeConstants:
		err = writeConstants(&buf, f, source)
	case ModeValues:
		err = writeValues(&buf, f, source)
	default:
		err = fmt.Errorf("unknown mode %v", f.Mode)
	}
	if err != nil {
		return nil, err
	}

	if len(f.Dependencies) > 0 {
		fmt.Fprintf(&buf, "\n// Files %s is compiled from.\nvar _ = []string{\n", source)
		for _, dep := range f.Dependencies {
			fmt.Fprintf(&buf, "%s,\n", strconv.Quote(dep))
		}
		buf.WriteString("}\n")
	}

	out, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("formatting generated code: %w", err)
	}
	return out, nil
}

func writeConstants(buf *bytes.Buffer, f File, source string) error {
	prefix := ""
	if f.Prefix != "" {
		prefix = ScreamingSnake(f.Prefix) + "_"
	}
	entries, err := identifiers(f.ClassNames, func(class string) string {
		return prefix + ScreamingSnake(class)
	})
	if err != nil || len(entries) == 0 {
		return err
	}

	fmt.Fprintf(buf, "\n// Class names of %s:\n//\n", source)
	writeListing(buf, entries)
	buf.WriteString("const (\n")
	for _, e := range entries {
		fmt.Fprintf(buf, "%s = %s\n", e.ident, strconv.Quote(e.value))
	}
	buf.WriteString(")\n")
	return nil
}

func writeValues(buf *bytes.Buffer, f File, source string) error {
	entries, err := identifiers(f.ClassNames, PascalCase)
	if err != nil {
		return err
	}

	typeName := PascalCase(f.Prefix) + "ClassNames"
	varName := PascalCase(f.Prefix) + "Classes"

	if len(entries) == 0 {
		fmt.Fprintf(buf, "\n// %s lists the class names of %s.\ntype %s struct{}\n", typeName, source, typeName)
		fmt.Fprintf(buf, "\n// %s holds the generated class names of %s.\nvar %s = %s{}\n", varName, source, varName, typeName)
		return nil
	}

	fmt.Fprintf(buf, "\n// %s lists the class names of %s:\n//\n", typeName, source)
	writeListing(buf, entries)
	fmt.Fprintf(buf, "type %s struct {\n", typeName)
	for _, e := range entries {
		fmt.Fprintf(buf, "%s string\n", e.ident)
	}
	buf.WriteString("}\n")

	fmt.Fprintf(buf, "\n// %s holds the generated class names of %s.\nvar %s = %s{\n", varName, source, varName, typeName)
	for _, e := range entries {
		fmt.Fprintf(buf, "%s: %s,\n", e.ident, strconv.Quote(e.value))
	}
	buf.WriteString("}\n")
	return nil
}

func writeListing(buf *bytes.Buffer, entries []entry) {
	for _, e := range entries {
		fmt.Fprintf(buf, "//\t%s = %s\n", e.ident, strconv.Quote(e.value))
	}
}

// identifiers maps each class to an identifier and returns them in natural
// identifier order.
func identifiers(classes map[string]string, ident func(string) string) ([]entry, error) {
	names := make([]string, 0, len(classes))
	for class := range classes {
		names = append(names, class)
	}
	slices.Sort(names)

	owner := make(map[string]string, len(names))
	entries := make([]entry, 0, len(names))
	for _, class := range names {
		id := ident(class)
		if !token.IsIdentifier(id) || id == "_" {
			return nil, &IdentifierError{Class: class, Ident: id}
		}
		if prev, ok := owner[id]; ok {
			return nil, &CollisionError{Ident: id, Classes: [2]string{prev, class}}
		}
		owner[id] = class
		entries = append(entries, entry{ident: id, value: classes[class]})
	}

	slices.SortFunc(entries, func(a, b entry) int {
		switch {
		case natural.Less(a.ident, b.ident):
			return -1
		case natural.Less(b.ident, a.ident):
			return 1
		}
		return 0
	})
	return entries, nil
}

// Rel rewrites paths relative to dir with forward slashes. Paths on another
// volume stay absolute.
func Rel(dir string, paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if rel, err := filepath.Rel(dir, p); err == nil {
			p = rel
		}
		out = append(out, filepath.ToSlash(p))
	}
	return out
}
