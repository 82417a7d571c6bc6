// Package discover expands the glob patterns given to turf generate into
// the stylesheet files to compile.
package discover

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	ignore "github.com/sabhiram/go-gitignore"
)

// DefaultPatterns is used when no pattern is given.
var DefaultPatterns = []string{"**/*.scss"}

// Extensions lists the stylesheet file extensions turf compiles.
var Extensions = []string{".scss", ".sass", ".css"}

// Stats counts what a Find call saw.
type Stats struct {
	Discovered int
	Skipped    int
	Selected   int
}

// Finder expands patterns relative to a project root and filters out
// partials and gitignored files.
type Finder struct {
	root string

	gitIgnoreOnce  sync.Once
	gitIgnoreCache *ignore.GitIgnore
}

// New returns a Finder for root. The root's .gitignore is read on first use.
func New(root string) *Finder {
	return &Finder{root: root}
}

// loadGitIgnore loads the .gitignore file once (thread-safe)
// Gracefully degrades if .gitignore doesn't exist
func (f *Finder) loadGitIgnore() *ignore.GitIgnore {
	f.gitIgnoreOnce.Do(func() {
		gi, err := ignore.CompileIgnoreFile(filepath.Join(f.root, ".gitignore"))
		if err != nil {
			return
		}
		f.gitIgnoreCache = gi
	})
	return f.gitIgnoreCache
}

// IsPartial reports whether path names a Sass partial, which is only ever
// compiled through an import.
func IsPartial(path string) bool {
	return strings.HasPrefix(filepath.Base(path), "_")
}

// IsStylesheet reports whether path has a stylesheet extension.
func IsStylesheet(path string) bool {
	return slices.Contains(Extensions, strings.ToLower(filepath.Ext(path)))
}

// shouldSkip determines if a matched file is left out.
func (f *Finder) shouldSkip(path string) bool {
	if IsPartial(path) || !IsStylesheet(path) {
		return true
	}

	// Only apply gitignore to paths within the project
	rel, err := filepath.Rel(f.root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return false
	}
	gi := f.loadGitIgnore()
	return gi != nil && gi.MatchesPath(filepath.ToSlash(rel))
}

// Find expands patterns into stylesheet paths in pattern order without
// duplicates. Relative patterns are taken relative to the root. A pattern
// naming a directory selects every stylesheet below it.
func (f *Finder) Find(patterns []string) ([]string, Stats, error) {
	if len(patterns) == 0 {
		patterns = DefaultPatterns
	}

	var (
		files []string
		stats Stats
		seen  = make(map[string]bool)
	)

	for _, pattern := range patterns {
		if !filepath.IsAbs(pattern) {
			pattern = filepath.Join(f.root, pattern)
		}
		if info, err := os.Stat(pattern); err == nil && info.IsDir() {
			pattern = filepath.Join(pattern, "**", "*")
		}

		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return nil, stats, err
		}

		for _, match := range matches {
			if seen[match] {
				continue
			}
			info, err := os.Stat(match)
			if err != nil || info.IsDir() {
				continue
			}
			seen[match] = true
			stats.Discovered++

			if f.shouldSkip(match) {
				stats.Skipped++
				continue
			}
			files = append(files, match)
			stats.Selected++
		}
	}

	return files, stats, nil
}
