package engine

import (
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/yacobolo/turf/internal/pathutil"
)

// moduleExtensions lists the file extensions tried for an extensionless
// import, in priority order.
var moduleExtensions = []string{".scss", ".css"}

// Resolve finds the file an import target refers to. fromDir is the
// directory of the importing stylesheet ("" for inline sources) and is
// searched before each load path. The result is canonical. ok is false when
// no candidate exists.
func Resolve(fromDir string, loadPaths []string, target string) (resolved string, ok bool) {
	dirs := make([]string, 0, len(loadPaths)+1)
	if fromDir != "" {
		dirs = append(dirs, fromDir)
	}
	dirs = append(dirs, loadPaths...)

	if path.IsAbs(target) || filepath.IsAbs(target) {
		dirs = []string{""}
	}

	for _, dir := range dirs {
		for _, candidate := range candidates(target) {
			p := filepath.Join(dir, filepath.FromSlash(candidate))
			info, err := os.Stat(p)
			if err != nil || !info.Mode().IsRegular() {
				continue
			}
			canonical, err := pathutil.Canonicalize("", p)
			if err != nil {
				continue
			}
			return canonical, true
		}
	}
	return "", false
}

// candidates expands an import target using the Sass partial rules:
// "a/b" may name a/b.scss, a/_b.scss, a/b.css, a/_b.css or an index file
// inside a/b.
func candidates(target string) []string {
	dir, base := path.Split(target)

	switch path.Ext(base) {
	case ".scss", ".css":
		return []string{dir + base, dir + "_" + base}
	}

	out := make([]string, 0, 4*len(moduleExtensions))
	for _, ext := range moduleExtensions {
		out = append(out, dir+base+ext, dir+"_"+base+ext)
	}
	for _, ext := range moduleExtensions {
		out = append(out, target+"/_index"+ext, target+"/index"+ext)
	}
	return out
}

// isPlainImport reports whether an @import target is left for the browser
// to fetch instead of being inlined.
func isPlainImport(target string) bool {
	return strings.HasSuffix(target, ".css") ||
		strings.HasPrefix(target, "http://") ||
		strings.HasPrefix(target, "https://") ||
		strings.HasPrefix(target, "//")
}
