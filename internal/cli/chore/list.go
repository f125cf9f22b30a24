package chore

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/thenoetrevino/chores/internal/cli"
	"github.com/thenoetrevino/chores/internal/cli/styles"
	"github.com/thenoetrevino/chores/internal/models"
	choreservice "github.com/thenoetrevino/chores/internal/services/chore"
)

// ListCmd returns the list command
func ListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List chores with their current status",
		Long: `List every chore with days since it was last done and its status.

Examples:
  # Everything, in file order
  chores list

  # Only overdue chores, most urgent first
  chores list --status=overdue --sort

  # IDs only, for scripts
  chores list --status=due_soon --quiet
`,
		Args: cli.Args(cobra.NoArgs),
		RunE: runList,
	}

	cmd.Flags().String("status", "", "Filter by status (unknown, ok, due_soon, overdue)")
	cmd.Flags().Bool("sort", false, "Sort by urgency instead of file order")
	addOutputFlags(cmd)

	return cmd
}

func runList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cliInstance, formatter, err := setup(cmd)
	if err != nil {
		return err
	}
	defer closeCLI(cliInstance)

	statusFlag, _ := cmd.Flags().GetString("status")
	filter, err := cli.ParseStatusFilter(statusFlag)
	if err != nil {
		return usageError(formatter, err.Error(), "")
	}
	sortByUrgency, _ := cmd.Flags().GetBool("sort")

	statuses, err := cliInstance.App.ChoreService.Refresh(ctx)
	if err != nil {
		return cli.HandleError(formatter, err, "", nil)
	}

	if filter != "" {
		statuses = choreservice.FilterByClassification(statuses, filter)
	}
	if sortByUrgency {
		choreservice.SortByUrgency(statuses)
	}

	if formatter.Quiet {
		for _, id := range choreservice.IDs(statuses) {
			formatter.Println(id)
		}
		return nil
	}

	if formatter.JSON {
		return formatter.WriteJSON(map[string]any{
			"success": true,
			"chores":  statuses,
		})
	}

	if len(statuses) == 0 {
		if filter != "" {
			formatter.Printf("No %s chores\n", filter)
		} else {
			formatter.Println("No chores yet. Add one with: chores add --title=\"Water Plants\" --soft=3 --hard=7")
		}
		return nil
	}

	formatter.Println(renderTable(statuses))
	return nil
}

// renderTable lays out statuses as aligned columns
func renderTable(statuses []models.ChoreStatus) string {
	idWidth := len("ID")
	for _, s := range statuses {
		idWidth = max(idWidth, len(s.ID))
	}
	const statusWidth = 10

	var b strings.Builder
	header := fmt.Sprintf("%-*s  %-*s  %-9s  %-4s  %-4s  %s",
		idWidth, "ID", statusWidth, "STATUS", "SINCE", "SOFT", "HARD", "TITLE")
	b.WriteString(styles.LabelStyle.Render(header))

	for _, s := range statuses {
		b.WriteString("\n")
		fmt.Fprintf(&b, "%-*s  %s  %-9s  %-4s  %-4s  %s",
			idWidth, s.ID,
			styles.RenderStatus(s.Classification, statusWidth),
			styles.FormatDays(s),
			styles.FormatDeadline(s.SoftDeadline),
			styles.FormatDeadline(s.HardDeadline),
			s.Title,
		)
	}
	return b.String()
}
