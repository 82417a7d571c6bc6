package turf

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/yacobolo/turf/internal/settings"
	"go.trai.ch/zerr"
	"go.uber.org/multierr"
)

// WriteSeparate writes the CSS of r to <dir>/<stem>.css when the settings
// ask for separate CSS files, and returns the written path ("" when file
// output is off).
func WriteSeparate(r *Result, s settings.Settings) (string, error) {
	path := SeparatePath(r.StyleSheet, s)
	if path == "" {
		return "", nil
	}
	if err := writeFile(path, r.CSS); err != nil {
		return "", err
	}
	return path, nil
}

// SeparatePath returns the separate CSS file sheet is written to, or ""
// when the settings ask for none.
func SeparatePath(sheet StyleSheet, s settings.Settings) string {
	if s.FileOutput == nil || s.FileOutput.SeparateCSSFilesPath == "" {
		return ""
	}
	dir := resolveOutput(s.BaseDir, s.FileOutput.SeparateCSSFilesPath)
	return filepath.Join(dir, sheet.Stem()+".css")
}

// CheckSeparateOutputs fails with an *OutputConflictError for every pair of
// sheets that would write the same separate CSS file.
func CheckSeparateOutputs(sheets []StyleSheet, s settings.Settings) error {
	var errs error
	owners := make(map[string]StyleSheet, len(sheets))
	for _, sheet := range sheets {
		path := SeparatePath(sheet, s)
		if path == "" {
			return nil
		}
		if first, ok := owners[path]; ok {
			errs = multierr.Append(errs, &OutputConflictError{Path: path, First: first, Second: sheet})
			continue
		}
		owners[path] = sheet
	}
	return errs
}

// Bundle concatenates the CSS of several stylesheets into the global CSS
// file. Sheets are written in the order they were added.
type Bundle struct {
	parts []string
}

// Add appends the CSS of r.
func (b *Bundle) Add(r *Result) {
	b.parts = append(b.parts, r.CSS)
}

// Len returns the number of stylesheets added.
func (b *Bundle) Len() int { return len(b.parts) }

// Write writes the bundle to the global CSS file path from the settings
// and returns that path ("" when the setting is absent).
func (b *Bundle) Write(s settings.Settings) (string, error) {
	if s.FileOutput == nil || s.FileOutput.GlobalCSSFilePath == "" {
		return "", nil
	}

	path := resolveOutput(s.BaseDir, s.FileOutput.GlobalCSSFilePath)

	var sb strings.Builder
	for _, part := range b.parts {
		sb.WriteString(part)
		if part != "" && !strings.HasSuffix(part, "\n") {
			sb.WriteByte('\n')
		}
	}
	if err := writeFile(path, sb.String()); err != nil {
		return "", err
	}
	return path, nil
}

func resolveOutput(baseDir, path string) string {
	if filepath.IsAbs(path) || baseDir == "" {
		return path
	}
	return filepath.Join(baseDir, path)
}

func writeFile(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create output directory"), "path", filepath.Dir(path))
	}
	// #nosec G306 - generated CSS is meant to be world-readable
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return zerr.With(zerr.Wrap(err, fmt.Sprintf("failed to write %s", filepath.Base(path))), "path", path)
	}
	return nil
}
