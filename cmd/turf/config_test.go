package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/knadh/koanf/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yacobolo/turf/internal/codegen"
	"github.com/yacobolo/turf/internal/discover"
)

// resetKoanf creates a fresh koanf instance for each test.
func resetKoanf() {
	k = koanf.New(".")
}

func TestConfigFileLoading(t *testing.T) {
	resetKoanf()

	dir := t.TempDir()
	configPath := filepath.Join(dir, "turf.yaml")
	configContent := `
turf:
  minify: false

generate:
  package: custom
  mode: values
  engine: builtin
  prefix: true
  include:
    - "web/**/*.scss"
`
	require.NoError(t, os.WriteFile(configPath, []byte(configContent), 0644))
	require.NoError(t, loadConfigFromPath(configPath))

	config, err := buildGenerateConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, "custom", config.Package)
	assert.Equal(t, codegen.ModeValues, config.Mode)
	assert.Equal(t, engineBuiltin, config.Engine)
	assert.True(t, config.Prefix)
	assert.False(t, config.Depfile)
	assert.Equal(t, []string{"web/**/*.scss"}, config.Patterns)
}

func TestConfigFileNotFound_UsesDefaults(t *testing.T) {
	resetKoanf()

	// Point to non-existent manifest, should not error
	require.NoError(t, loadConfigFromPath("/nonexistent/turf.yaml"))

	config, err := buildGenerateConfig(nil)
	require.NoError(t, err)
	assert.Empty(t, config.Package)
	assert.Equal(t, codegen.ModeConstants, config.Mode)
	assert.Equal(t, engineAuto, config.Engine)
	assert.Equal(t, discover.DefaultPatterns, config.Patterns)
	assert.False(t, config.Verbose)
}

func TestEnvVarOverridesConfigFile(t *testing.T) {
	resetKoanf()

	dir := t.TempDir()
	configPath := filepath.Join(dir, "turf.yaml")
	configContent := `
generate:
  package: from-file
  depfile: false
`
	require.NoError(t, os.WriteFile(configPath, []byte(configContent), 0644))

	t.Setenv("TURF_GENERATE_PACKAGE", "fromenv")
	t.Setenv("TURF_GENERATE_DEPFILE", "true")
	t.Setenv("TURF_VERBOSE", "true")

	require.NoError(t, loadConfigFromPath(configPath))

	config, err := buildGenerateConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, "fromenv", config.Package)
	assert.True(t, config.Depfile)
	assert.True(t, config.Verbose)
}

func TestFlagsOverrideManifestAndEnv(t *testing.T) {
	resetKoanf()

	dir := t.TempDir()
	configPath := filepath.Join(dir, "turf.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("generate:\n  mode: values\n  package: fromfile\n"), 0644))
	t.Setenv("TURF_GENERATE_ENGINE", "dart-sass")

	root := newRootCmd()
	cmd, _, err := root.Find([]string{"generate"})
	require.NoError(t, err)
	require.NoError(t, cmd.ParseFlags([]string{"--manifest", configPath, "--mode", "constants", "--engine", "builtin"}))
	require.NoError(t, loadConfig(cmd))

	config, err := buildGenerateConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, codegen.ModeConstants, config.Mode, "flag beats manifest")
	assert.Equal(t, engineBuiltin, config.Engine, "flag beats env")
	assert.Equal(t, "fromfile", config.Package, "unset flag keeps manifest value")
	assert.Equal(t, configPath, k.String("manifest"))
}

func TestBuildGenerateConfig_ArgsWinOverInclude(t *testing.T) {
	resetKoanf()
	require.NoError(t, k.Set("generate.include", []string{"web/**/*.scss"}))

	config, err := buildGenerateConfig([]string{"styles/a.scss"})
	require.NoError(t, err)

	abs, err := filepath.Abs("styles/a.scss")
	require.NoError(t, err)
	assert.Equal(t, []string{abs}, config.Patterns)
}

func TestBuildGenerateConfig_BadMode(t *testing.T) {
	resetKoanf()
	require.NoError(t, k.Set("generate.mode", "macros"))

	_, err := buildGenerateConfig(nil)
	require.Error(t, err)
}

func TestPackageName(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "My-Styles")

	name, err := packageName(generateConfig{Package: "ui"}, dir)
	require.NoError(t, err)
	assert.Equal(t, "ui", name)

	t.Setenv("GOPACKAGE", "")
	name, err = packageName(generateConfig{}, dir)
	require.NoError(t, err)
	assert.Equal(t, "mystyles", name)
}

func TestPackageName_GOPACKAGEOnlyForWorkingDirectory(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	t.Setenv("GOPACKAGE", "generated")

	name, err := packageName(generateConfig{}, wd)
	require.NoError(t, err)
	assert.Equal(t, "generated", name)

	name, err = packageName(generateConfig{}, filepath.Join(t.TempDir(), "other"))
	require.NoError(t, err)
	assert.Equal(t, "other", name)
}

func TestSanitizePackage(t *testing.T) {
	assert.Equal(t, "webui", sanitizePackage("web-ui"))
	assert.Equal(t, "_2d", sanitizePackage("2d"))
	assert.Empty(t, sanitizePackage("---"))
}

func TestGetString(t *testing.T) {
	resetKoanf()

	// No keys set - should return default
	assert.Equal(t, "default", getString("generate.key", "default"))
}

func TestGetBool(t *testing.T) {
	resetKoanf()

	// No keys set - should return default
	assert.False(t, getBool("generate.key", false))
	assert.True(t, getBool("generate.key", true))
}
