// Package dartsass runs stylesheets through Dart Sass over its embedded
// protocol. Imports are resolved by turf itself so every file Sass loads is
// read through the caller's tracker.
package dartsass

import (
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/bep/godartsass/v2"
	"github.com/yacobolo/turf/internal/engine"
	"go.uber.org/zap"
)

// Binary is the executable looked up on PATH.
const Binary = "sass"

// LookPath returns the path of the Dart Sass executable, or an error when it
// is not installed.
func LookPath() (string, error) {
	return exec.LookPath(Binary)
}

var _ engine.Engine = (*DartSass)(nil)

// DartSass owns one long-lived Dart Sass process. It is safe for concurrent
// use.
type DartSass struct {
	log        *zap.Logger
	transpiler *godartsass.Transpiler
}

// New starts Dart Sass from binary.
func New(binary string, log *zap.Logger) (*DartSass, error) {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("dart-sass")

	t, err := godartsass.Start(godartsass.Options{
		DartSassEmbeddedFilename: binary,
		LogEventHandler: func(e godartsass.LogEvent) {
			log.Warn(e.Message, zap.Any("type", e.Type))
		},
	})
	if err != nil {
		return nil, fmt.Errorf("start dart sass: %w", err)
	}

	return &DartSass{log: log, transpiler: t}, nil
}

func (d *DartSass) Name() string { return "dart-sass" }

// Close stops the Dart Sass process.
func (d *DartSass) Close() error {
	return d.transpiler.Close()
}

func (d *DartSass) Compile(src engine.Source, opts engine.Options) (string, error) {
	files := opts.Files
	if files == nil {
		files = diskFiles{}
	}

	fromDir := ""
	sourceURL := ""
	syntax := godartsass.SourceSyntaxSCSS
	if src.Path != "" {
		fromDir = filepath.Dir(src.Path)
		sourceURL = pathToURL(src.Path)
		syntax = syntaxFor(src.Path)
	}

	style := godartsass.OutputStyleExpanded
	if opts.Style == engine.StyleCompressed {
		style = godartsass.OutputStyleCompressed
	}

	d.log.Debug("Compiling", zap.String("url", sourceURL), zap.Strings("loadPaths", opts.LoadPaths))

	res, err := d.transpiler.Execute(godartsass.Args{
		Source:       src.Content,
		URL:          sourceURL,
		OutputStyle:  style,
		SourceSyntax: syntax,
		ImportResolver: &resolver{
			fromDir:   fromDir,
			loadPaths: opts.LoadPaths,
			files:     files,
		},
	})
	if err != nil {
		return "", fmt.Errorf("dart sass: %w", err)
	}
	return res.CSS, nil
}

// resolver maps Sass load requests onto files read through the tracker.
type resolver struct {
	fromDir   string
	loadPaths []string
	files     engine.Files
}

// CanonicalizeURL returns "" for URLs it cannot resolve so Sass reports
// the missing stylesheet itself.
func (r *resolver) CanonicalizeURL(rawURL string) (string, error) {
	if strings.HasPrefix(rawURL, "file:") {
		p, err := urlToPath(rawURL)
		if err != nil {
			return "", err
		}
		if resolved, ok := engine.Resolve("", nil, p); ok {
			return pathToURL(resolved), nil
		}
		return "", nil
	}

	if resolved, ok := engine.Resolve(r.fromDir, r.loadPaths, rawURL); ok {
		return pathToURL(resolved), nil
	}
	return "", nil
}

func (r *resolver) Load(canonicalURL string) (godartsass.Import, error) {
	p, err := urlToPath(canonicalURL)
	if err != nil {
		return godartsass.Import{}, err
	}
	data, err := r.files.ReadFile(p)
	if err != nil {
		return godartsass.Import{}, err
	}
	return godartsass.Import{Content: string(data), SourceSyntax: syntaxFor(p)}, nil
}

func syntaxFor(path string) godartsass.SourceSyntax {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".css":
		return godartsass.SourceSyntaxCSS
	case ".sass":
		return godartsass.SourceSyntaxSASS
	default:
		return godartsass.SourceSyntaxSCSS
	}
}

func pathToURL(p string) string {
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(p)}).String()
}

func urlToPath(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse %q: %w", raw, err)
	}
	if u.Scheme != "file" {
		return "", fmt.Errorf("unsupported scheme in %q", raw)
	}
	return filepath.FromSlash(u.Path), nil
}

type diskFiles struct{}

func (diskFiles) ReadFile(path string) ([]byte, error) {
	// #nosec G304 - only canonicalized import targets are loaded
	return os.ReadFile(path)
}
