package cli

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
)

func newBufferCmd(opts *rootOptions) *cobra.Command {
	var jsonOutput bool
	var remote remoteOptions

	cmd := &cobra.Command{
		Use:     "buffer",
		Aliases: []string{"ls"},
		Short:   "Show events waiting for delivery",
		Example: `  suma buffer
  suma buffer --json
  suma buffer --server http://localhost:8080`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			out := cmd.OutOrStdout()
			if remote.server != "" {
				body, err := remote.call(cmd.Context(), a, http.MethodGet, "/v1/metrics/buffer")
				if err != nil {
					return err
				}
				_, err = out.Write(body)
				return err
			}

			events := a.buffer.ReadAll(cmd.Context())
			if jsonOutput {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(events)
			}

			if len(events) == 0 {
				fmt.Fprintln(out, "Buffer is empty.")
				return nil
			}
			fmt.Fprintf(out, "Buffered events (%d/%d):\n\n", len(events), a.buffer.Cap())
			for _, e := range events {
				fmt.Fprintf(out, "  %s  %-16s %v\n", e.Timestamp, e.Type, e.Metadata["path"])
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")
	remote.register(cmd)
	return cmd
}
