package turf_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yacobolo/turf"
	"github.com/yacobolo/turf/internal/settings"
	"go.uber.org/multierr"
)

func withFileOutput(root string, out settings.FileOutput) settings.Settings {
	s := settings.Default()
	s.BaseDir = root
	s.FileOutput = &out
	return s
}

func TestWriteSeparate(t *testing.T) {
	root := t.TempDir()
	s := withFileOutput(root, settings.FileOutput{SeparateCSSFilesPath: "dist/css"})

	res := &turf.Result{CSS: ".a{}", StyleSheet: turf.File("web/button.scss")}
	path, err := turf.WriteSeparate(res, s)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(root, "dist", "css", "button.css"), path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, ".a{}", string(data))
}

func TestWriteSeparate_Inline(t *testing.T) {
	root := t.TempDir()
	s := withFileOutput(root, settings.FileOutput{SeparateCSSFilesPath: "out"})

	sheet := turf.Inline(".b{}")
	path, err := turf.WriteSeparate(&turf.Result{CSS: ".b{}", StyleSheet: sheet}, s)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "out", sheet.Stem()+".css"), path)
}

func TestWriteSeparate_Disabled(t *testing.T) {
	path, err := turf.WriteSeparate(&turf.Result{CSS: ".a{}"}, settings.Default())
	require.NoError(t, err)
	assert.Empty(t, path)
}

func TestCheckSeparateOutputs(t *testing.T) {
	root := t.TempDir()
	s := withFileOutput(root, settings.FileOutput{SeparateCSSFilesPath: "dist/css"})

	sheets := []turf.StyleSheet{
		turf.File("a/button.scss"),
		turf.File("b/button.scss"),
		turf.File("c/card.scss"),
		turf.File("d/button.css"),
	}

	err := turf.CheckSeparateOutputs(sheets, s)
	require.Error(t, err)

	errs := multierr.Errors(err)
	require.Len(t, errs, 2)

	var conflict *turf.OutputConflictError
	require.ErrorAs(t, errs[0], &conflict)
	assert.Equal(t, filepath.Join(root, "dist", "css", "button.css"), conflict.Path)
	assert.Equal(t, "a/button.scss", conflict.First.Path())
	assert.Equal(t, "b/button.scss", conflict.Second.Path())
	assert.Contains(t, conflict.Error(), "a/button.scss and b/button.scss would both be written to")

	require.ErrorAs(t, errs[1], &conflict)
	assert.Equal(t, "d/button.css", conflict.Second.Path())
}

func TestCheckSeparateOutputs_NoConflict(t *testing.T) {
	root := t.TempDir()
	sheets := []turf.StyleSheet{turf.File("a/button.scss"), turf.File("b/button.scss")}

	assert.NoError(t, turf.CheckSeparateOutputs(sheets, settings.Default()), "no separate files configured")

	s := withFileOutput(root, settings.FileOutput{SeparateCSSFilesPath: "dist"})
	assert.NoError(t, turf.CheckSeparateOutputs(sheets[:1], s))
}

func TestBundle(t *testing.T) {
	root := t.TempDir()
	abs := filepath.Join(root, "global", "app.css")
	s := withFileOutput(root, settings.FileOutput{GlobalCSSFilePath: abs})

	var b turf.Bundle
	b.Add(&turf.Result{CSS: ".a{}"})
	b.Add(&turf.Result{CSS: ".b{}\n"})
	b.Add(&turf.Result{CSS: ".c{}"})
	assert.Equal(t, 3, b.Len())

	path, err := b.Write(s)
	require.NoError(t, err)
	assert.Equal(t, abs, path)

	data, err := os.ReadFile(abs)
	require.NoError(t, err)
	assert.Equal(t, ".a{}\n.b{}\n.c{}\n", string(data))
}

func TestBundle_Disabled(t *testing.T) {
	var b turf.Bundle
	b.Add(&turf.Result{CSS: ".a{}"})

	path, err := b.Write(settings.Default())
	require.NoError(t, err)
	assert.Empty(t, path)
}
