package turf

import (
	"fmt"
	"os"

	"github.com/yacobolo/turf/internal/engine"
	"github.com/yacobolo/turf/internal/pathutil"
	"github.com/yacobolo/turf/internal/settings"
	"github.com/yacobolo/turf/internal/targets"
	"github.com/yacobolo/turf/internal/tracker"
	"github.com/yacobolo/turf/internal/transform"
	"go.uber.org/zap"
)

// Compiler drives the stylesheet engine, the transform engine and the class
// scoping step. A Compiler holds no per-compilation state and is safe for
// concurrent use when its engines are.
type Compiler struct {
	engine    engine.Engine
	transform transform.Engine
	log       *zap.Logger
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithEngine replaces the built-in stylesheet engine.
func WithEngine(e engine.Engine) Option {
	return func(c *Compiler) { c.engine = e }
}

// WithTransform replaces the minifier.
func WithTransform(t transform.Engine) Option {
	return func(c *Compiler) { c.transform = t }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(log *zap.Logger) Option {
	return func(c *Compiler) { c.log = log }
}

// New creates a compiler. Without options it uses the built-in engine and
// the minifier.
func New(opts ...Option) *Compiler {
	c := &Compiler{}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = zap.NewNop()
	}
	c.log = c.log.Named("compiler")
	if c.engine == nil {
		c.engine = engine.NewBuiltin(c.log)
	}
	if c.transform == nil {
		c.transform = transform.NewMinifier(c.log)
	}
	return c
}

// CompiledStyleSheet is the result of one compilation.
type CompiledStyleSheet struct {
	CSS string
	// ClassNames maps every class in the stylesheet to its generated name.
	ClassNames map[string]string
	StyleSheet StyleSheet

	// primary is the canonical path of a file stylesheet.
	primary string
	files   *tracker.Tracker
}

// PrimaryPath returns the canonical path of a file stylesheet, or "" for
// inline stylesheets.
func (c *CompiledStyleSheet) PrimaryPath() string {
	return c.primary
}

// UntrackedDependencies lists the auxiliary files read while compiling,
// excluding the stylesheet itself.
func (c *CompiledStyleSheet) UntrackedDependencies() ([]string, error) {
	deps, err := c.files.Dependencies()
	if err != nil {
		return nil, &TrackingError{Err: err}
	}
	return deps, nil
}

// Compile turns sheet into CSS and a class name map using s. Load paths are
// resolved before any engine runs.
func (c *Compiler) Compile(sheet StyleSheet, s settings.Settings) (*CompiledStyleSheet, error) {
	loadPaths, err := pathutil.CanonicalizeAll(s.BaseDir, s.LoadPaths)
	if err != nil {
		return nil, &CompileError{Kind: ErrPathResolution, Err: err}
	}

	src, err := readSource(sheet)
	if err != nil {
		return nil, &CompileError{Kind: ErrStylesheetCompilation, Err: err}
	}

	log := c.log.With(zap.Stringer("stylesheet", sheet))
	log.Debug("Compiling",
		zap.String("engine", c.engine.Name()),
		zap.Strings("loadPaths", loadPaths))

	files := tracker.New(src.Path, c.log)

	raw, err := c.engine.Compile(src, engine.Options{
		Style:     engine.StyleExpanded,
		LoadPaths: loadPaths,
		Files:     files,
	})
	if err != nil {
		return nil, &CompileError{Kind: ErrStylesheetCompilation, Err: err}
	}

	transformed, err := c.transform.Transform(raw, transform.Options{
		Minify:  s.Minify,
		Targets: encodeTargets(s.BrowserTargets),
	})
	if err != nil {
		return nil, &CompileError{Kind: ErrTransform, Err: err}
	}

	scoper, err := transform.NewScoper(s.ClassNames.Template, s.ClassNames.Excludes)
	if err != nil {
		return nil, &CompileError{Kind: ErrTransform, Err: err}
	}
	css, classes, err := scoper.Scope(transformed)
	if err != nil {
		return nil, &CompileError{Kind: ErrTransform, Err: err}
	}

	log.Debug("Compiled",
		zap.Int("bytes", len(css)),
		zap.Int("classes", len(classes)),
		zap.Int("dependencies", files.Len()))

	return &CompiledStyleSheet{
		CSS:        css,
		ClassNames: classes,
		StyleSheet: sheet,
		primary:    src.Path,
		files:      files,
	}, nil
}

func readSource(sheet StyleSheet) (engine.Source, error) {
	if sheet.Kind() == KindInline {
		return engine.Source{Content: sheet.Text()}, nil
	}

	path, err := pathutil.Canonicalize("", sheet.Path())
	if err != nil {
		return engine.Source{}, err
	}
	// #nosec G304 - the stylesheet path is chosen by the caller
	data, err := os.ReadFile(path)
	if err != nil {
		return engine.Source{}, fmt.Errorf("read stylesheet: %w", err)
	}
	return engine.Source{Path: path, Content: string(data)}, nil
}

func encodeTargets(b *targets.Browsers) targets.Targets {
	if b == nil {
		return targets.Targets{}
	}
	return b.Encode()
}
