package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/yacobolo/turf"
	"github.com/yacobolo/turf/internal/diag"
	"github.com/yacobolo/turf/internal/engine"
	"github.com/yacobolo/turf/internal/engine/dartsass"
	"github.com/yacobolo/turf/internal/logging"
	"github.com/yacobolo/turf/internal/manifest"
	"github.com/yacobolo/turf/internal/settings"
	"go.uber.org/zap"
)

const (
	engineAuto     = "auto"
	engineBuiltin  = "builtin"
	engineDartSass = "dart-sass"
)

// session holds what every compiling command needs.
type session struct {
	cfg       generateConfig
	settings  settings.Settings
	log       *zap.Logger
	compiler  *turf.Compiler
	engine    engine.Engine
	useColors bool
	stderr    io.Writer
}

func newSession(args []string) (*session, error) {
	cfg, err := buildGenerateConfig(args)
	if err != nil {
		return nil, err
	}

	s, err := loadSettings()
	if err != nil {
		return nil, err
	}

	log := logging.New(logging.Options{
		Debug: cfg.Verbose || s.Debug,
		Quiet: cfg.Quiet,
		Color: cfg.Color,
	})

	eng, err := newEngine(cfg, log)
	if err != nil {
		return nil, err
	}
	log.Debug("Session",
		zap.String("manifest", k.String("manifest")),
		zap.String("engine", eng.Name()),
		zap.Bool("developmentBuild", settings.DevelopmentBuild()))

	return &session{
		cfg:       cfg,
		settings:  s,
		log:       log,
		compiler:  turf.New(turf.WithEngine(eng), turf.WithLogger(log)),
		engine:    eng,
		useColors: diag.ShouldUseColors(cfg.Color, os.Stderr),
		stderr:    os.Stderr,
	}, nil
}

// Close releases the engine.
func (s *session) Close() error {
	defer func() { _ = s.log.Sync() }()
	if c, ok := s.engine.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// loadSettings resolves the turf profile from the manifest selected by
// loadConfig.
func loadSettings() (settings.Settings, error) {
	store := settings.NewStore(manifest.NewLoader(k.String("manifest")), settings.DevelopmentBuild())
	return store.Get()
}

// newEngine picks the stylesheet engine. auto uses Dart Sass when a sass
// executable is installed.
func newEngine(cfg generateConfig, log *zap.Logger) (engine.Engine, error) {
	switch cfg.Engine {
	case engineBuiltin:
		return engine.NewBuiltin(log), nil
	case engineDartSass:
		binary := cfg.Sass
		if binary == "" {
			var err error
			if binary, err = dartsass.LookPath(); err != nil {
				return nil, fmt.Errorf("dart-sass engine: %w", err)
			}
		}
		return startDartSass(binary, log)
	case engineAuto, "":
		binary := cfg.Sass
		if binary == "" {
			binary, _ = dartsass.LookPath()
		}
		if binary == "" {
			return engine.NewBuiltin(log), nil
		}
		return startDartSass(binary, log)
	}
	return nil, fmt.Errorf("unknown engine %q (want %s, %s or %s)", cfg.Engine, engineBuiltin, engineDartSass, engineAuto)
}

func startDartSass(binary string, log *zap.Logger) (engine.Engine, error) {
	d, err := dartsass.New(binary, log)
	if err != nil {
		return nil, err
	}
	return d, nil
}

// process compiles sheet. A dependency tracking failure is reported as a
// warning; the result then carries no dependencies and tracked is false.
func (s *session) process(sheet turf.StyleSheet) (res *turf.Result, tracked bool, err error) {
	compiled, err := s.compiler.Compile(sheet, s.settings)
	if err != nil {
		return nil, false, err
	}

	deps, err := compiled.UntrackedDependencies()
	if err != nil {
		fmt.Fprintln(s.stderr, diag.Warning(err, s.useColors))
		return compiled.Package(nil), false, nil
	}
	return compiled.Package(deps), true, nil
}

// packageName picks the Go package for code written to outDir: the
// configured name, then $GOPACKAGE when outDir is the directory go generate
// runs in, then the directory name.
func packageName(cfg generateConfig, outDir string) (string, error) {
	if cfg.Package != "" {
		return cfg.Package, nil
	}

	if p := os.Getenv("GOPACKAGE"); p != "" {
		if wd, err := os.Getwd(); err == nil && sameDir(wd, outDir) {
			return p, nil
		}
	}

	abs, err := filepath.Abs(outDir)
	if err != nil {
		return "", err
	}
	name := sanitizePackage(filepath.Base(abs))
	if name == "" {
		return "", fmt.Errorf("cannot derive a package name from %s; use --package", outDir)
	}
	return name, nil
}

func sameDir(a, b string) bool {
	a, errA := filepath.Abs(a)
	b, errB := filepath.Abs(b)
	return errA == nil && errB == nil && a == b
}

// sanitizePackage lowercases name and drops characters that are not
// allowed in a package name.
func sanitizePackage(name string) string {
	var sb strings.Builder
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			sb.WriteRune(r)
		}
	}
	out := sb.String()
	if out != "" && unicode.IsDigit([]rune(out)[0]) {
		out = "_" + out
	}
	return out
}
