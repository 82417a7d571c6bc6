// Package settings resolves the turf configuration for the current build.
//
// Two profiles may be declared in the manifest: a production profile (`turf`)
// and a development profile (`turf-dev`). Each profile is read at most once per
// process and cached; Get then selects between them based on the build mode.
package settings

import (
	"reflect"
	"slices"

	"github.com/yacobolo/turf/internal/targets"
)

// DefaultClassNameTemplate renders class names as `class-<id>`.
const DefaultClassNameTemplate = "class-<id>"

// DefaultMinify is the minify setting used when the manifest omits it.
const DefaultMinify = true

// FileOutput configures optional CSS files written next to the generated code.
type FileOutput struct {
	GlobalCSSFilePath    string `koanf:"global_css_file_path" yaml:"global_css_file_path,omitempty"`
	SeparateCSSFilesPath string `koanf:"separate_css_files_path" yaml:"separate_css_files_path,omitempty"`
}

// ClassNameGeneration controls how class names are rewritten.
type ClassNameGeneration struct {
	Template string   `koanf:"template" yaml:"template"`
	Excludes []string `koanf:"excludes" yaml:"excludes,omitempty"`
}

// Settings is one resolved turf profile.
type Settings struct {
	Debug          bool                `koanf:"debug" yaml:"debug"`
	Minify         bool                `koanf:"minify" yaml:"minify"`
	LoadPaths      []string            `koanf:"load_paths" yaml:"load_paths,omitempty"`
	BrowserTargets *targets.Browsers   `koanf:"browser_targets" yaml:"browser_targets,omitempty"`
	ClassNames     ClassNameGeneration `koanf:"class_names" yaml:"class_names"`
	FileOutput     *FileOutput         `koanf:"file_output" yaml:"file_output,omitempty"`

	// BaseDir is the directory relative load and output paths resolve
	// against. It is set by the manifest loader, not read from the manifest.
	BaseDir string `koanf:"-" yaml:"-"`
}

// Default returns the settings used when no profile applies.
func Default() Settings {
	return Settings{
		Minify: DefaultMinify,
		ClassNames: ClassNameGeneration{
			Template: DefaultClassNameTemplate,
		},
	}
}

// Clone returns a deep copy.
func (s Settings) Clone() Settings {
	out := s
	out.LoadPaths = slices.Clone(s.LoadPaths)
	out.ClassNames.Excludes = slices.Clone(s.ClassNames.Excludes)
	if s.BrowserTargets != nil {
		b := *s.BrowserTargets
		out.BrowserTargets = &b
	}
	if s.FileOutput != nil {
		f := *s.FileOutput
		out.FileOutput = &f
	}
	return out
}

// Equal reports whether two settings are identical field by field.
func (s Settings) Equal(other Settings) bool {
	return reflect.DeepEqual(s, other)
}

// Choose selects the effective settings. A development build prefers the
// development profile and falls back to the production profile; a
// production build never uses the development profile.
func Choose(dev, prod *Settings, isDevelopmentBuild bool) Settings {
	if isDevelopmentBuild {
		if dev != nil {
			return dev.Clone()
		}
		if prod != nil {
			return prod.Clone()
		}
		return Default()
	}

	if prod != nil {
		return prod.Clone()
	}
	return Default()
}
