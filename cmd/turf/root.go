package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "turf",
		Short: "Scoped CSS for Go",
		Long: `Compile SCSS/CSS stylesheets, rewrite their class names to unique
generated names and emit Go code holding the CSS and the class name mapping.`,
		// Default behavior: run generate when no subcommand is given.
		// We must call loadConfig here because PreRunE of the generate
		// command is not triggered when delegating via rootCmd.RunE.
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := loadConfig(cmd); err != nil {
				return err
			}
			return runGenerate(cmd, args)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global persistent flags (inherited by all subcommands)
	pf := rootCmd.PersistentFlags()
	pf.BoolP("verbose", "v", false, "Enable verbose logging")
	pf.Bool("quiet", false, "Only report errors")
	pf.Bool("color", false, "Force color output")
	pf.String("manifest", "", "Manifest path (default: turf.yaml found from the working directory)")

	addGenerateFlags(rootCmd)

	rootCmd.AddCommand(newGenerateCmd())
	rootCmd.AddCommand(newInlineCmd())
	rootCmd.AddCommand(newWatchCmd())
	rootCmd.AddCommand(newSettingsCmd())
	rootCmd.AddCommand(newInitCmd())
	rootCmd.AddCommand(newCompletionCmd(rootCmd))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}
