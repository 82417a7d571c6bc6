// Package manifest reads turf profiles from the project's turf.yaml.
//
// The manifest holds two optional sections:
//
//	turf:       # production profile
//	  minify: true
//	turf-dev:   # development profile
//	  minify: false
//	  debug: true
package manifest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/yacobolo/turf/internal/settings"
	"github.com/yacobolo/turf/internal/targets"
	"go.trai.ch/zerr"
)

// FileName is the manifest file looked up by Discover.
const FileName = "turf.yaml"

// EnvManifest names an explicit manifest path, bypassing discovery.
const EnvManifest = "TURF_MANIFEST"

var _ settings.Loader = (*Loader)(nil)

// Loader reads profiles from a manifest file. Every call reads the file
// again; caching is the settings store's job.
type Loader struct {
	path string
}

// NewLoader creates a loader for the manifest at path. An empty path means
// the project has no manifest and every profile is absent.
func NewLoader(path string) *Loader {
	return &Loader{path: path}
}

// Path returns the manifest path, or "" when there is none.
func (l *Loader) Path() string {
	return l.path
}

// Profile reads and decodes one profile section.
func (l *Loader) Profile(p settings.Profile) (*settings.Settings, error) {
	if l.path == "" {
		return nil, nil
	}

	k, err := Read(l.path)
	if err != nil {
		return nil, err
	}

	if !k.Exists(p.Key()) {
		return nil, nil
	}

	s := settings.Default()
	if err := Decode(k, p.Key(), &s); err != nil {
		return nil, zerr.With(zerr.Wrap(err, fmt.Sprintf("failed to parse %s section", p.Key())), "path", l.path)
	}

	abs, err := filepath.Abs(l.path)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to resolve manifest directory"), "path", l.path)
	}
	s.BaseDir = filepath.Dir(abs)

	return &s, nil
}

// Read loads the manifest into a fresh koanf instance.
func Read(path string) (*koanf.Koanf, error) {
	k := koanf.New(".")
	// #nosec G304 - path comes from discovery or explicit configuration
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to read manifest"), "path", path)
	}
	return k, nil
}

// Decode unmarshals the section at key into out. Fields already set in out
// act as defaults for keys the section omits. Unknown keys are rejected.
func Decode(k *koanf.Koanf, key string, out *settings.Settings) error {
	return k.UnmarshalWithConf(key, out, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				targets.DecodeHook(),
				mapstructure.StringToSliceHookFunc(","),
			),
			ErrorUnused:      true,
			WeaklyTypedInput: true,
			Result:           out,
		},
	})
}

// Discover finds the manifest for a build running in startDir. TURF_MANIFEST
// wins when set. Otherwise the search walks up from startDir and stops at
// the first directory holding turf.yaml, or at the module root (the first
// directory with a go.mod). It returns "" when no manifest exists.
func Discover(startDir string) (string, error) {
	if explicit := os.Getenv(EnvManifest); explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", zerr.With(zerr.Wrap(err, "manifest named by "+EnvManifest+" is not readable"), "path", explicit)
		}
		return explicit, nil
	}

	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", zerr.With(zerr.Wrap(err, "failed to inspect manifest"), "path", candidate)
		}

		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return "", nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}
