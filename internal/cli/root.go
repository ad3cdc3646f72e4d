package cli

import (
	"github.com/spf13/cobra"
)

// rootOptions are the persistent flags shared by every subcommand
type rootOptions struct {
	dataPath string
	logLevel string
}

// NewRootCmd creates the suma command tree
func NewRootCmd(version string) *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "suma",
		Short: "Assignment AI comments and landing-site analytics from the terminal",
		Long: `suma resolves AI comments for assignments and records landing-site
interaction events into a local buffer that is delivered to the configured
collector.

Local state (visitor id, event buffer, cached comments) lives in a SQLite
profile under the XDG data directory unless --data is given.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.dataPath, "data", "", "Path of the local profile database")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	cmd.AddCommand(newCommentCmd(opts))
	cmd.AddCommand(newTrackCmd(opts))
	cmd.AddCommand(newFlushCmd(opts))
	cmd.AddCommand(newBufferCmd(opts))
	cmd.AddCommand(newVisitorCmd(opts))

	return cmd
}
