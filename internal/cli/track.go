package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"suma/internal/model"
)

func newTrackCmd(opts *rootOptions) *cobra.Command {
	var meta []string
	var page model.PageContext

	cmd := &cobra.Command{
		Use:   "track <type>",
		Short: "Record an analytics event and flush the buffer",
		Long: fmt.Sprintf(`Append an event to the local buffer, then try to deliver the buffer
to the collector. Undelivered events stay buffered for the next run.

Event types: %s`, eventTypeList()),
		Example: `  suma track visit --url https://suma.example/
  suma track cta_click --meta label=try_now --path /pricing`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			metadata, err := parseMeta(meta)
			if err != nil {
				return err
			}

			a, err := openApp(opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			page.UserAgent = "suma-cli"
			eventType := model.MetricEventType(args[0])
			var event model.MetricEvent
			if eventType == model.EventVisit && len(metadata) == 0 {
				event, err = a.tracker.Visit(cmd.Context(), page)
			} else {
				event, err = a.tracker.Track(cmd.Context(), eventType, metadata, page)
			}
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(event); err != nil {
				return err
			}

			// leaving the process counts as unload
			a.tracker.Unload(cmd.Context())
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&meta, "meta", "m", nil, "Metadata entry key=value (repeatable)")
	cmd.Flags().StringVar(&page.Path, "path", "/", "Page path")
	cmd.Flags().StringVar(&page.Referrer, "referrer", "", "Referrer URL")
	cmd.Flags().StringVar(&page.URL, "url", "", "Full page URL (visit events)")

	return cmd
}

func parseMeta(entries []string) (map[string]interface{}, error) {
	out := make(map[string]interface{}, len(entries))
	for _, entry := range entries {
		key, value, ok := strings.Cut(entry, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid metadata %q, expected key=value", entry)
		}
		out[key] = value
	}
	return out, nil
}

func eventTypeList() string {
	names := make([]string, len(model.MetricEventTypes))
	for i, t := range model.MetricEventTypes {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}
