// Package cli holds the sptracker command line.
package cli

import (
	"github.com/spf13/cobra"
)

var envFile string

// NewRootCmd builds the sptracker command tree
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "sptracker",
		Short: "Spaced-repetition tracker for coding practice",
		Long: `sptracker records solved problems, schedules their revisions and
reports progress per category.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "env file to load before reading the environment")

	root.AddCommand(
		newServeCmd(),
		newMigrateCmd(),
		newImportCmd(),
		newDigestCmd(),
	)
	return root
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}
