package cli

import (
	"fmt"

	"github.com/example/sptracker/internal/excel"
	"github.com/spf13/cobra"
)

func newImportCmd() *cobra.Command {
	config := excel.DefaultImportConfig()
	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Record attempts from an .xlsx or .csv file",
		Long: `Record one attempt per row. Columns default to
link, category, type, level, tab, rts (A to F) with a header row.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			config.FilePath = args[0]
			if !cmd.Flags().Changed("tab") {
				config.DefaultTab = a.cfg.DefaultTab
			}
			result, err := excel.ImportSubmissions(cmd.Context(), a.ledger, config)
			if err != nil {
				return fmt.Errorf("import failed: %w", err)
			}

			cmd.Printf("processed %d rows: %d recorded, %d skipped, %d errors\n",
				result.TotalProcessed, result.Recorded, result.Skipped, len(result.Errors))
			for _, e := range result.Errors {
				cmd.Println(e)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&config.SheetName, "sheet", "", "sheet to import, defaults to the first one")
	cmd.Flags().IntVar(&config.StartRow, "start-row", config.StartRow, "first row to import (1-based)")
	cmd.Flags().StringVar(&config.DefaultTab, "tab", config.DefaultTab, "tab for rows without one")
	return cmd
}
