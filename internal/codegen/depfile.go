package codegen

import (
	"bufio"
	"io"
	"strings"
)

var makeEscaper = strings.NewReplacer(
	" ", `\ `,
	"#", `\#`,
	"$", "$$",
)

// WriteDepfile writes a Make rule stating that target depends on deps,
// followed by an empty rule per dependency so that deleting one does not
// break the build.
func WriteDepfile(w io.Writer, target string, deps []string) error {
	bw := bufio.NewWriter(w)

	bw.WriteString(makeEscaper.Replace(target) + ":")
	for _, dep := range deps {
		bw.WriteString(" \\\n  " + makeEscaper.Replace(dep))
	}
	bw.WriteString("\n")

	for _, dep := range deps {
		bw.WriteString("\n" + makeEscaper.Replace(dep) + ":\n")
	}
	return bw.Flush()
}
