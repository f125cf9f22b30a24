package chore

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/thenoetrevino/chores/internal/cli"
	"github.com/thenoetrevino/chores/internal/cli/styles"
)

// DoneCmd returns the done command
func DoneCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "done <id>",
		Short: "Mark a chore as done today",
		Long: `Record today as the date a chore was last done.

When the daemon is running the request is sent to it so every open
dashboard updates at once. Otherwise the chore file is updated directly.

Examples:
  chores done clean_oven

  # JSON output for agents
  chores done clean_oven --json

  # Skip the daemon
  chores done clean_oven --local
`,
		Args: cli.Args(cobra.ExactArgs(1)),
		RunE: runDone,
	}

	cmd.Flags().Bool("local", false, "Update the chore file directly even if the daemon is running")
	addOutputFlags(cmd)

	return cmd
}

func runDone(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	id := strings.TrimSpace(args[0])

	cliInstance, formatter, err := setup(cmd)
	if err != nil {
		return err
	}
	defer closeCLI(cliInstance)

	if id == "" {
		return usageError(formatter, "chore ID cannot be empty", "Usage: chores done <id>")
	}

	local, _ := cmd.Flags().GetBool("local")

	st, via, err := cliInstance.App.MarkDone(ctx, id, !local)
	if err != nil {
		return cli.HandleError(formatter, err, id, knownIDs(ctx, cliInstance.App.ChoreService))
	}

	if formatter.Quiet {
		formatter.Println(st.ID)
		return nil
	}

	if formatter.JSON {
		return formatter.WriteJSON(map[string]any{
			"success": true,
			"via":     via,
			"chore":   st,
		})
	}

	formatter.Printf("%s Marked '%s' done (%s)\n",
		styles.SuccessStyle.Render("✓"),
		st.Title,
		styles.RenderStatus(st.Classification, 0),
	)
	return nil
}
