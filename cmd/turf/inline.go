package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/yacobolo/turf"
	"github.com/yacobolo/turf/internal/codegen"
)

func newInlineCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inline [css]",
		Short: "Compile an inline stylesheet and print the Go code",
		Long: `Compile the stylesheet given as argument (or read from stdin when the
argument is "-" or missing) and print the generated Go code to stdout.`,
		Args: cobra.MaximumNArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			return loadConfig(cmd)
		},
		RunE: runInline,
	}
	addGenerateFlags(cmd)
	cmd.Flags().String("name", "", "Identifier prefix for the generated code")
	return cmd
}

func runInline(cmd *cobra.Command, args []string) error {
	text, err := inlineSource(cmd.InOrStdin(), args)
	if err != nil {
		return err
	}

	sess, err := newSession(nil)
	if err != nil {
		return err
	}
	defer sess.Close()

	res, tracked, err := sess.process(turf.Inline(text))
	if err != nil {
		return err
	}

	wd, err := os.Getwd()
	if err != nil {
		return err
	}
	pkg, err := packageName(sess.cfg, wd)
	if err != nil {
		return err
	}

	file := codegen.File{
		Package:    pkg,
		Prefix:     getString("generate.name", ""),
		Mode:       sess.cfg.Mode,
		CSS:        res.CSS,
		ClassNames: res.ClassNames,
	}
	if tracked {
		file.Dependencies = codegen.Rel(wd, res.Dependencies)
	}

	src, err := codegen.Render(file)
	if err != nil {
		return err
	}

	if _, err := turf.WriteSeparate(res, sess.settings); err != nil {
		return err
	}

	_, err = cmd.OutOrStdout().Write(src)
	return err
}

func inlineSource(stdin io.Reader, args []string) (string, error) {
	if len(args) == 1 && args[0] != "-" {
		return args[0], nil
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("reading stylesheet from stdin: %w", err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return "", fmt.Errorf("empty stylesheet")
	}
	return string(data), nil
}
