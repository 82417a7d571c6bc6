// Package main provides the turf CLI, which compiles stylesheets and
// generates Go code exposing their CSS and scoped class names.
package main

import (
	"fmt"
	"os"

	"github.com/yacobolo/turf/internal/diag"
	"go.uber.org/multierr"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		useColors := diag.ShouldUseColors(getBool("color", false), os.Stderr)
		for _, e := range multierr.Errors(err) {
			fmt.Fprintln(os.Stderr, diag.Render(e, useColors))
		}
		os.Exit(1)
	}
}
