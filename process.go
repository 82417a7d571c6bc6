package turf

import (
	"os"
	"sync"

	"github.com/yacobolo/turf/internal/manifest"
	"github.com/yacobolo/turf/internal/settings"
)

// Result is everything a code generator needs from one stylesheet.
type Result struct {
	CSS        string
	ClassNames map[string]string
	// Dependencies lists every file the CSS depends on: the auxiliary files
	// read during compilation followed by the stylesheet itself for file
	// stylesheets. Each path appears once.
	Dependencies []string
	StyleSheet   StyleSheet
}

// Process compiles sheet and lists its dependencies. Compilation failures are
// *CompileError; a failure to list dependencies is *TrackingError. Callers
// that want to keep going without dependency information call Compile and
// UntrackedDependencies themselves.
func (c *Compiler) Process(sheet StyleSheet, s settings.Settings) (*Result, error) {
	compiled, err := c.Compile(sheet, s)
	if err != nil {
		return nil, err
	}

	deps, err := compiled.UntrackedDependencies()
	if err != nil {
		return nil, err
	}

	return compiled.Package(deps), nil
}

// Package combines the compiled stylesheet with its tracked dependencies.
// Pass nil deps when tracking failed; the result then names only the
// stylesheet itself.
func (c *CompiledStyleSheet) Package(deps []string) *Result {
	all := make([]string, 0, len(deps)+1)
	seen := make(map[string]struct{}, len(deps)+1)
	add := func(p string) {
		if _, ok := seen[p]; ok {
			return
		}
		seen[p] = struct{}{}
		all = append(all, p)
	}
	for _, d := range deps {
		add(d)
	}
	if c.primary != "" {
		add(c.primary)
	}

	return &Result{
		CSS:          c.CSS,
		ClassNames:   c.ClassNames,
		Dependencies: all,
		StyleSheet:   c.StyleSheet,
	}
}

// defaultStore backs Settings. The manifest is discovered from the working
// directory on first use.
var defaultStore = sync.OnceValue(func() *settings.Store {
	return settings.NewStore(discoveringLoader{}, settings.DevelopmentBuild())
})

// Settings returns the process-wide settings: the development profile in
// development builds when present, otherwise the production profile,
// otherwise defaults. Each profile is read from the manifest at most once.
func Settings() (settings.Settings, error) {
	return defaultStore().Get()
}

// Process compiles sheet with the process-wide settings and a default
// compiler.
func Process(sheet StyleSheet) (*Result, error) {
	s, err := Settings()
	if err != nil {
		return nil, err
	}
	return New().Process(sheet, s)
}

type discoveringLoader struct{}

func (discoveringLoader) Profile(p settings.Profile) (*settings.Settings, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	path, err := manifest.Discover(wd)
	if err != nil {
		return nil, err
	}
	return manifest.NewLoader(path).Profile(p)
}
