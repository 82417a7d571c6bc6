package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/yacobolo/turf/internal/settings"
	"gopkg.in/yaml.v3"
)

func newSettingsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "settings",
		Short: "Print the effective settings as YAML",
		Long: `Print the settings turf compiles with: the development profile (turf-dev)
in development builds when present, otherwise the production profile (turf),
otherwise the defaults.`,
		Args: cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			return loadConfig(cmd)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := loadSettings()
			if err != nil {
				return err
			}

			out, err := yaml.Marshal(s)
			if err != nil {
				return fmt.Errorf("encoding settings: %w", err)
			}

			w := cmd.OutOrStdout()
			manifestPath := k.String("manifest")
			if manifestPath == "" {
				manifestPath = "none"
			}
			fmt.Fprintf(w, "# manifest: %s\n", manifestPath)
			fmt.Fprintf(w, "# build: %s\n", buildName(settings.DevelopmentBuild()))
			_, err = w.Write(out)
			return err
		},
	}
}

func buildName(dev bool) string {
	if dev {
		return "development"
	}
	return "release"
}
