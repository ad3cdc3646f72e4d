package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"suma/internal/cache"
	"suma/internal/model"
	"suma/internal/service"
)

func newCommentCmd(opts *rootOptions) *cobra.Command {
	var taskID string
	var locale string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "comment [text]",
		Short: "Print the AI comment for an assignment",
		Long: `Ask the analysis service whether an assignment is a frequent exam topic
and print the one-line comment. Text is read from stdin when no argument
is given. Comments are cached in the local profile.`,
		Example: `  suma comment "Solve 2x + 3 = 7"
  suma comment --task 42 < assignment.txt
  suma comment --locale en --json "Prove the lemma"`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := commentText(args, cmd.InOrStdin())
			if err != nil {
				return err
			}

			a, err := openApp(opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			if locale == "" {
				locale = a.cfg.Analysis.Locale
			}
			formatter := service.NewCommentFormatter(locale)
			svc := service.NewCommentService(
				cache.NewStoreCommentCache(a.store, formatter.Tag()),
				service.NewAnalysisClient(a.cfg.Analysis, a.logger),
				formatter,
				a.logger,
			)

			state, err := svc.Resolve(cmd.Context(), model.CommentRequest{TaskID: model.TaskID(taskID), AssignmentText: text})
			if err != nil {
				return err
			}
			return printComment(cmd.OutOrStdout(), state, svc.Formatter(), jsonOutput)
		},
	}

	cmd.Flags().StringVarP(&taskID, "task", "t", "", "Task id used as the cache key")
	cmd.Flags().StringVar(&locale, "locale", "", "Comment language (zh-TW or en)")
	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")

	return cmd
}

func commentText(args []string, stdin io.Reader) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	if f, ok := stdin.(*os.File); ok {
		if info, err := f.Stat(); err == nil && info.Mode()&os.ModeCharDevice != 0 {
			return "", fmt.Errorf("no assignment text given")
		}
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

func printComment(w io.Writer, state model.CommentState, f *service.CommentFormatter, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(model.NewCommentResponse(state))
	}

	line := f.Unavailable()
	switch {
	case state.Error != nil:
		line = *state.Error
	case state.Comment != nil && *state.Comment != "":
		line = *state.Comment
	}
	_, err := fmt.Fprintln(w, line)
	return err
}
