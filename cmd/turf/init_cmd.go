package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/yacobolo/turf/internal/manifest"
)

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Generate a default " + manifest.FileName,
		Long:  `Create a ` + manifest.FileName + ` manifest in the current directory with sensible defaults.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			force, _ := cmd.Flags().GetBool("force")

			if _, err := os.Stat(manifest.FileName); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", manifest.FileName)
			}

			// #nosec G306 - the manifest is meant to be committed
			if err := os.WriteFile(manifest.FileName, []byte(defaultManifest), 0o644); err != nil {
				return fmt.Errorf("writing manifest: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", manifest.FileName)
			return nil
		},
	}
	cmd.Flags().Bool("force", false, "Overwrite existing manifest")
	return cmd
}

const defaultManifest = `# turf manifest

# Production profile, used by release builds (-tags turfrelease)
# and by development builds without a turf-dev profile.
turf:
  minify: true
  load_paths:
    - web/styles
  class_names:
    template: "class-<id>"
    excludes: []
  # browser_targets:
  #   chrome: 95
  #   safari: [15, 4]
  # file_output:
  #   global_css_file_path: dist/app.css
  #   separate_css_files_path: dist/css

# Development profile
turf-dev:
  debug: false
  minify: false
  load_paths:
    - web/styles
  class_names:
    template: "<original_name>-<id>"

# Options of the turf command
generate:
  include:
    - "**/*.scss"
  mode: constants   # constants | values
  engine: auto      # builtin | dart-sass | auto
  prefix: false
  depfile: false
`
