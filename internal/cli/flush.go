package cli

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
)

func newFlushCmd(opts *rootOptions) *cobra.Command {
	var remote remoteOptions

	cmd := &cobra.Command{
		Use:   "flush",
		Short: "Deliver buffered events to the collector",
		Long: `Deliver the local event buffer to the configured collector
(ANALYTICS_ENDPOINT). With --server the flush is triggered on a running
suma server instead, signing in with the console credentials.`,
		Example: `  suma flush
  suma flush --server http://localhost:8080`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			if remote.server != "" {
				body, err := remote.call(cmd.Context(), a, http.MethodPost, "/v1/metrics/flush")
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(body)
				return err
			}

			if !a.cfg.Analytics.Enabled() {
				return fmt.Errorf("no collector configured, set ANALYTICS_ENDPOINT")
			}
			pending := len(a.buffer.ReadAll(cmd.Context()))
			if a.flusher.Flush(cmd.Context()) {
				fmt.Fprintf(cmd.OutOrStdout(), "Delivered %d event(s)\n", pending)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Nothing delivered, %d event(s) still buffered\n", pending)
			return nil
		},
	}

	remote.register(cmd)
	return cmd
}
