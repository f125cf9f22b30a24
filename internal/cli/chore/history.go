package chore

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/thenoetrevino/chores/internal/cli"
	"github.com/thenoetrevino/chores/internal/cli/styles"
)

// HistoryCmd returns the history command
func HistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [id]",
		Short: "Show past completions",
		Long: `List when chores were marked done, newest first. Without an ID the
completions of every chore are listed.

Examples:
  chores history clean_oven
  chores history --limit=0 --json
`,
		Args: cli.Args(cobra.MaximumNArgs(1)),
		RunE: runHistory,
	}

	cmd.Flags().Int("limit", 10, "Maximum number of entries (0 for all)")
	addOutputFlags(cmd)

	return cmd
}

func runHistory(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cliInstance, formatter, err := setup(cmd)
	if err != nil {
		return err
	}
	defer closeCLI(cliInstance)

	var id string
	if len(args) > 0 {
		id = strings.TrimSpace(args[0])
	}

	limit, _ := cmd.Flags().GetInt("limit")
	if limit < 0 {
		return usageError(formatter, "--limit cannot be negative", "Use --limit=0 to list everything")
	}

	svc := cliInstance.App.ChoreService
	if id != "" {
		// unknown ids get suggestions rather than an empty list
		if _, err := svc.Get(ctx, id); err != nil {
			return cli.HandleError(formatter, err, id, knownIDs(ctx, svc))
		}
	}

	completions, err := svc.History(ctx, id, limit)
	if err != nil {
		return cli.HandleError(formatter, err, id, nil)
	}

	if formatter.Quiet {
		for _, c := range completions {
			formatter.Println(c.DoneAt.UTC().Format("2006-01-02T15:04:05Z"))
		}
		return nil
	}

	if formatter.JSON {
		return formatter.WriteJSON(map[string]any{
			"success":     true,
			"chore_id":    id,
			"completions": completions,
		})
	}

	if len(completions) == 0 {
		formatter.Println("No completions recorded")
		return nil
	}

	for _, c := range completions {
		formatter.Printf("%s  %s\n",
			styles.SubtitleStyle.Render(c.DoneAt.Local().Format("2006-01-02 15:04")),
			c.Title,
		)
	}
	return nil
}
