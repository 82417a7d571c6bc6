package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/yacobolo/turf/internal/codegen"
	"github.com/yacobolo/turf/internal/discover"
	"github.com/yacobolo/turf/internal/manifest"
)

var k = koanf.New(".")

// globalFlags keep their own name as koanf key; every other flag lives
// under the generate section.
var globalFlags = map[string]bool{
	"verbose":  true,
	"quiet":    true,
	"color":    true,
	"manifest": true,
}

// loadConfig loads configuration with precedence: flags > env > manifest > defaults.
// It must be called after cobra parses flags (in PreRunE or RunE).
func loadConfig(cmd *cobra.Command) error {
	manifestPath, _ := cmd.Flags().GetString("manifest")
	if manifestPath == "" {
		wd, err := os.Getwd()
		if err != nil {
			return err
		}
		if manifestPath, err = manifest.Discover(wd); err != nil {
			return err
		}
	}

	if err := loadConfigFromPath(manifestPath); err != nil {
		return err
	}
	if err := k.Set("manifest", manifestPath); err != nil {
		return err
	}

	// CLI flags (highest precedence, only flags that were explicitly set)
	fs := cmd.Flags()
	if err := k.Load(posflag.ProviderWithFlag(fs, ".", k, func(f *pflag.Flag) (string, interface{}) {
		if !f.Changed {
			return "", nil
		}
		key := f.Name
		if !globalFlags[key] {
			key = "generate." + key
		}
		return key, posflag.FlagVal(fs, f)
	}), nil); err != nil {
		return fmt.Errorf("loading command flags: %w", err)
	}

	return nil
}

// loadConfigFromPath loads the generate section of the manifest and
// environment variables. This is separated from loadConfig to allow testing
// without a cobra command.
func loadConfigFromPath(manifestPath string) error {
	// 1. Manifest (lowest precedence among providers)
	if manifestPath != "" {
		if _, err := os.Stat(manifestPath); err == nil {
			if err := k.Load(file.Provider(manifestPath), yaml.Parser()); err != nil {
				return fmt.Errorf("loading manifest %s: %w", manifestPath, err)
			}
		}
	}

	// 2. Environment variables (TURF_* prefix)
	if err := k.Load(env.Provider("TURF_", ".", func(s string) string {
		// TURF_GENERATE_PACKAGE -> generate.package
		// TURF_VERBOSE -> verbose
		return strings.ReplaceAll(
			strings.ToLower(strings.TrimPrefix(s, "TURF_")),
			"_", ".",
		)
	}), nil); err != nil {
		return fmt.Errorf("loading environment variables: %w", err)
	}

	return nil
}

// generateConfig is the resolved configuration of generate, watch and inline.
type generateConfig struct {
	Patterns []string
	Package  string
	Mode     codegen.Mode
	Engine   string
	Sass     string
	Prefix   bool
	Depfile  bool
	Output   string

	Verbose bool
	Quiet   bool
	Color   bool
}

// buildGenerateConfig constructs the command configuration from koanf state.
// Positional patterns win over the manifest's include list.
func buildGenerateConfig(args []string) (generateConfig, error) {
	mode, err := codegen.ParseMode(getString("generate.mode", "constants"))
	if err != nil {
		return generateConfig{}, err
	}

	config := generateConfig{
		Package: getString("generate.package", ""),
		Mode:    mode,
		Engine:  getString("generate.engine", engineAuto),
		Sass:    getString("generate.sass", ""),
		Prefix:  getBool("generate.prefix", false),
		Depfile: getBool("generate.depfile", false),
		Output:  getString("generate.output", ""),
		Verbose: getBool("verbose", false),
		Quiet:   getBool("quiet", false),
		Color:   getBool("color", false),
	}

	switch {
	case len(args) > 0:
		// command line patterns are relative to the working directory
		for _, arg := range args {
			abs, err := filepath.Abs(arg)
			if err != nil {
				return generateConfig{}, err
			}
			config.Patterns = append(config.Patterns, abs)
		}
	case len(k.Strings("generate.include")) > 0:
		config.Patterns = k.Strings("generate.include")
	default:
		config.Patterns = discover.DefaultPatterns
	}

	return config, nil
}

// projectRoot is the directory relative patterns are expanded from: the
// manifest's directory, or the working directory without a manifest.
func projectRoot() (string, error) {
	if m := k.String("manifest"); m != "" {
		abs, err := filepath.Abs(m)
		if err != nil {
			return "", err
		}
		return filepath.Dir(abs), nil
	}
	return os.Getwd()
}

// getString returns the value at key, or defaultVal when it is unset or empty.
func getString(key, defaultVal string) string {
	if v := k.String(key); v != "" {
		return v
	}
	return defaultVal
}

// getBool returns the value at key, or defaultVal when it is unset.
func getBool(key string, defaultVal bool) bool {
	if k.Exists(key) {
		return k.Bool(key)
	}
	return defaultVal
}
