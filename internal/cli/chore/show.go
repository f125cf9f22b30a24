package chore

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/thenoetrevino/chores/internal/cli"
	"github.com/thenoetrevino/chores/internal/cli/styles"
	"github.com/thenoetrevino/chores/internal/models"
	choreservice "github.com/thenoetrevino/chores/internal/services/chore"
)

// recentCompletions is how much history show prints
const recentCompletions = 5

// ShowCmd returns the show command
func ShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show chore details",
		Long: `Display a chore's status, deadlines, description and recent completions.
The description is rendered as Markdown.

Examples:
  chores show clean_oven
  chores show clean_oven --json
`,
		Args: cli.Args(cobra.ExactArgs(1)),
		RunE: runShow,
	}

	addOutputFlags(cmd)

	return cmd
}

func runShow(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	id := strings.TrimSpace(args[0])

	cliInstance, formatter, err := setup(cmd)
	if err != nil {
		return err
	}
	defer closeCLI(cliInstance)

	svc := cliInstance.App.ChoreService
	st, err := svc.Get(ctx, id)
	if err != nil {
		return cli.HandleError(formatter, err, id, knownIDs(ctx, svc))
	}

	if formatter.Quiet {
		formatter.Println(st.ID)
		return nil
	}

	// history is optional; show what is available
	completions, err := svc.History(ctx, st.ID, recentCompletions)
	if err != nil && !errors.Is(err, choreservice.ErrHistoryUnavailable) {
		formatter.Warn(fmt.Sprintf("could not load history: %v", err))
	}
	count, err := svc.CompletionCount(ctx, st.ID)
	if err != nil && !errors.Is(err, choreservice.ErrHistoryUnavailable) {
		formatter.Warn(fmt.Sprintf("could not count completions: %v", err))
	}

	if formatter.JSON {
		return formatter.WriteJSON(map[string]any{
			"success":     true,
			"chore":       st,
			"history":     completions,
			"completions": count,
		})
	}

	formatter.Println(renderDetail(st, completions, count))
	return nil
}

func pluralTimes(n int) string {
	if n == 1 {
		return "once"
	}
	return fmt.Sprintf("%d times", n)
}

func renderDetail(st *models.ChoreStatus, completions []*models.Completion, count int) string {
	var content strings.Builder

	content.WriteString(styles.TitleStyle.Render(st.Title))
	content.WriteString("  ")
	content.WriteString(styles.SubtitleStyle.Render(st.ID))
	content.WriteString("\n\n")

	lastDone := st.LastDone
	if lastDone == "" {
		lastDone = "never"
	}

	fmt.Fprintf(&content, "%s %s  %s %s\n",
		styles.LabelStyle.Render("Status:"),
		styles.RenderStatus(st.Classification, 0),
		styles.LabelStyle.Render("Since:"),
		styles.ValueStyle.Render(styles.FormatDays(*st)),
	)
	fmt.Fprintf(&content, "%s %s  %s %s  %s %s\n",
		styles.LabelStyle.Render("Last done:"),
		styles.ValueStyle.Render(lastDone),
		styles.LabelStyle.Render("Soft:"),
		styles.ValueStyle.Render(styles.FormatDeadline(st.SoftDeadline)),
		styles.LabelStyle.Render("Hard:"),
		styles.ValueStyle.Render(styles.FormatDeadline(st.HardDeadline)),
	)

	content.WriteString(styles.SectionStyle.Render("Description"))
	content.WriteString("\n")
	content.WriteString(styles.RenderMarkdown(st.Description, styles.CardWidth-6))
	content.WriteString("\n")

	if len(completions) > 0 {
		content.WriteString(styles.SectionStyle.Render("Recent completions"))
		content.WriteString("\n")
		content.WriteString("  " + styles.LabelStyle.Render(fmt.Sprintf("Done %s", pluralTimes(count))) + "\n")
		for _, c := range completions {
			content.WriteString("  • " + styles.SubtitleStyle.Render(c.DoneAt.Local().Format("Jan 2, 2006 3:04 PM")) + "\n")
		}
	}

	return styles.RenderCard(strings.TrimRight(content.String(), "\n"))
}
