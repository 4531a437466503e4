package cli

import (
	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the tables and seed the reference data",
		RunE: func(cmd *cobra.Command, args []string) error {
			// opening the database applies the schema
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			tabs, err := a.lookup.ListTabs(cmd.Context())
			if err != nil {
				return err
			}
			cmd.Printf("database migrated, tabs: %v\n", tabs)
			return nil
		},
	}
}
