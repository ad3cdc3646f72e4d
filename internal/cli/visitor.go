package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newVisitorCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "visitor",
		Short: "Print the anonymous visitor id of this profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			_, err = fmt.Fprintln(cmd.OutOrStdout(), a.visitors.Get(cmd.Context()))
			return err
		},
	}
}
