// Package transform post-processes engine output: minification for the
// configured browser targets, then class-name scoping.
package transform

import (
	"fmt"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/yacobolo/turf/internal/targets"
	"go.uber.org/zap"
)

const mediaType = "text/css"

// ie9 is the first Internet Explorer release with full CSS3 selector and
// unit support, encoded as a browser target.
const ie9 = 9 << 16

// Options configure one transform run.
type Options struct {
	Minify  bool
	Targets targets.Targets
}

// Engine rewrites CSS text.
type Engine interface {
	Transform(source string, opts Options) (string, error)
}

var _ Engine = (*Minifier)(nil)

// Minifier is the default CSS Transform Engine.
type Minifier struct {
	log *zap.Logger
}

// NewMinifier creates a minifier.
func NewMinifier(log *zap.Logger) *Minifier {
	if log == nil {
		log = zap.NewNop()
	}
	return &Minifier{log: log.Named("minify")}
}

// Transform minifies source when opts.Minify is set and returns it untouched
// otherwise. Targets that include Internet Explorer before 9 keep the output
// CSS2 compatible.
func (m *Minifier) Transform(source string, opts Options) (string, error) {
	if !opts.Minify {
		return source, nil
	}

	keepCSS2 := opts.Targets.IE != nil && *opts.Targets.IE < ie9

	mm := minify.New()
	mm.Add(mediaType, &css.Minifier{KeepCSS2: keepCSS2})

	out, err := mm.String(mediaType, source)
	if err != nil {
		return "", fmt.Errorf("minify: %w", err)
	}

	m.log.Debug("Minified stylesheet",
		zap.Int("before", len(source)),
		zap.Int("after", len(out)),
		zap.Bool("css2", keepCSS2))

	return out, nil
}
