package cli

import (
	"github.com/spf13/cobra"
)

func newDigestCmd() *cobra.Command {
	var tabs []string
	cmd := &cobra.Command{
		Use:   "digest",
		Short: "Send the pending-revision digest now",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			s, err := a.digestScheduler()
			if err != nil {
				return err
			}
			return s.RunOnce(cmd.Context(), tabs...)
		},
	}
	cmd.Flags().StringSliceVar(&tabs, "tab", nil, "tabs to report, defaults to all")
	return cmd
}
