package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/spf13/cobra"
	"github.com/yacobolo/turf"
	"github.com/yacobolo/turf/internal/codegen"
	"github.com/yacobolo/turf/internal/diag"
	"github.com/yacobolo/turf/internal/discover"
	"go.trai.ch/zerr"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// GeneratedSuffix is appended to the stylesheet stem to name the Go file.
const GeneratedSuffix = "_turf.go"

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "generate [patterns...]",
		Aliases: []string{"gen"},
		Short:   "Generate Go code from stylesheets",
		Long: `Compile every stylesheet matching the patterns and write <stem>_turf.go next
to each one. Partials (files starting with _) and gitignored files are skipped.
Without patterns the manifest's generate.include list is used.`,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			return loadConfig(cmd)
		},
		RunE: runGenerate,
	}
	addGenerateFlags(cmd)
	cmd.Flags().StringP("output", "o", "", "Output file (single stylesheet only)")
	return cmd
}

func addGenerateFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("package", "", "Go package name (default: $GOPACKAGE or the directory name)")
	f.String("mode", "constants", "How class names are exposed: constants|values")
	f.String("engine", engineAuto, "Stylesheet engine: builtin|dart-sass|auto")
	f.String("sass", "", "Path to the Dart Sass executable")
	f.Bool("prefix", false, "Prefix generated identifiers with the stylesheet name")
	f.Bool("depfile", false, "Write a Make depfile (<output>.d) next to each generated file")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	sess, err := newSession(args)
	if err != nil {
		return err
	}
	defer sess.Close()

	files, err := sess.find()
	if err != nil {
		return err
	}
	if len(files) == 0 {
		sess.log.Warn("No stylesheets found", zap.Strings("patterns", sess.cfg.Patterns))
		return nil
	}
	if sess.cfg.Output != "" && len(files) > 1 {
		return fmt.Errorf("--output needs exactly one stylesheet, got %d", len(files))
	}
	if err := sess.checkOutputs(files); err != nil {
		return err
	}

	outputs, genErr := sess.generateAll(cmd.Context(), files)

	if err := sess.writeBundle(outputs); err != nil {
		genErr = multierr.Append(genErr, err)
	}

	if !sess.cfg.Quiet {
		written := 0
		for _, o := range outputs {
			if o != nil {
				written++
			}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %d of %d stylesheets\n",
			diag.RenderStyle(diag.StyleOK, "Generated", sess.useColors), written, len(files))
	}

	return genErr
}

// find expands the configured patterns from the project root.
func (s *session) find() ([]string, error) {
	root, err := projectRoot()
	if err != nil {
		return nil, err
	}

	files, stats, err := discover.New(root).Find(s.cfg.Patterns)
	if err != nil {
		return nil, fmt.Errorf("expanding patterns: %w", err)
	}
	s.log.Debug("Discovered stylesheets",
		zap.String("root", root),
		zap.Int("matched", stats.Discovered),
		zap.Int("skipped", stats.Skipped),
		zap.Strings("files", files))
	return files, nil
}

// checkOutputs rejects stylesheets that would overwrite each other's
// separate CSS file.
func (s *session) checkOutputs(files []string) error {
	sheets := make([]turf.StyleSheet, len(files))
	for i, f := range files {
		sheets[i] = turf.File(f)
	}
	return turf.CheckSeparateOutputs(sheets, s.settings)
}

// output is one successfully generated stylesheet.
type output struct {
	Stylesheet string
	GoFile     string
	Result     *turf.Result
}

// fileError attributes a failure to a stylesheet.
type fileError struct {
	Path string
	Err  error
}

func (e *fileError) Error() string {
	return e.Path + ": " + e.Err.Error()
}

// Message returns the error text without the cause.
func (e *fileError) Message() string {
	return "failed to generate code for " + e.Path
}

func (e *fileError) Unwrap() error { return e.Err }

// generateAll generates every file concurrently. The returned slice is
// parallel to files with nil entries for failures; the error combines
// every failure.
func (s *session) generateAll(ctx context.Context, files []string) ([]*output, error) {
	outputs := make([]*output, len(files))

	var (
		mu   sync.Mutex
		errs error
	)

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, file := range files {
		g.Go(func() error {
			out, err := s.generateOne(file)
			if err != nil {
				mu.Lock()
				errs = multierr.Append(errs, &fileError{Path: file, Err: err})
				mu.Unlock()
				return nil
			}
			outputs[i] = out
			return nil
		})
	}
	_ = g.Wait()

	return outputs, errs
}

// generateOne compiles one stylesheet and writes its Go file, the optional
// depfile and the optional separate CSS file.
func (s *session) generateOne(path string) (*output, error) {
	sheet := turf.File(path)
	res, tracked, err := s.process(sheet)
	if err != nil {
		return nil, err
	}

	goFile := s.cfg.Output
	if goFile == "" {
		goFile = filepath.Join(filepath.Dir(path), sheet.Stem()+GeneratedSuffix)
	}
	outDir := filepath.Dir(goFile)

	pkg, err := packageName(s.cfg, outDir)
	if err != nil {
		return nil, err
	}

	file := codegen.File{
		Package:    pkg,
		Source:     codegen.Rel(outDir, []string{path})[0],
		Mode:       s.cfg.Mode,
		CSS:        res.CSS,
		ClassNames: res.ClassNames,
	}
	if s.cfg.Prefix {
		file.Prefix = sheet.Stem()
	}
	if tracked {
		file.Dependencies = codegen.Rel(outDir, res.Dependencies)
	}

	src, err := codegen.Render(file)
	if err != nil {
		return nil, err
	}
	if err := writeIfChanged(goFile, src); err != nil {
		return nil, err
	}
	s.log.Debug("Wrote", zap.String("file", goFile), zap.Int("classes", len(res.ClassNames)))

	if s.cfg.Depfile && tracked {
		if err := writeDepfile(goFile, res.Dependencies); err != nil {
			return nil, err
		}
	}

	if css, err := turf.WriteSeparate(res, s.settings); err != nil {
		return nil, err
	} else if css != "" {
		s.log.Debug("Wrote", zap.String("file", css))
	}

	return &output{Stylesheet: path, GoFile: goFile, Result: res}, nil
}

// writeBundle writes the global CSS file from the successful outputs in
// input order.
func (s *session) writeBundle(outputs []*output) error {
	var b turf.Bundle
	for _, o := range outputs {
		if o != nil {
			b.Add(o.Result)
		}
	}
	if b.Len() == 0 {
		return nil
	}

	path, err := b.Write(s.settings)
	if err != nil {
		return err
	}
	if path != "" {
		s.log.Debug("Wrote", zap.String("file", path), zap.Int("stylesheets", b.Len()))
	}
	return nil
}

// writeIfChanged leaves an identical file untouched.
func writeIfChanged(path string, content []byte) error {
	if existing, err := os.ReadFile(path); err == nil && bytes.Equal(existing, content) {
		return nil
	}
	// #nosec G306 - generated source is meant to be world-readable
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to write generated code"), "path", path)
	}
	return nil
}

func writeDepfile(goFile string, deps []string) error {
	var buf bytes.Buffer
	if err := codegen.WriteDepfile(&buf, goFile, deps); err != nil {
		return err
	}
	return writeIfChanged(goFile+".d", buf.Bytes())
}
