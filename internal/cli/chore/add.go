package chore

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/thenoetrevino/chores/internal/cli"
	"github.com/thenoetrevino/chores/internal/cli/styles"
	"github.com/thenoetrevino/chores/internal/models"
	choreservice "github.com/thenoetrevino/chores/internal/services/chore"
)

// AddCmd returns the add command
func AddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a new chore",
		Long: `Append a new chore to the chore file.

The chore's ID is its title in lower case with spaces replaced by
underscores, so "Water Plants" becomes water_plants.

Examples:
  chores add --title="Water Plants" --soft=3 --hard=7

  # Already done once, with a Markdown description
  chores add --title="Clean Oven" --soft=30 --hard=45 \
    --last-done=2024-01-15 --description="Use the **non-toxic** cleaner"
`,
		Args: cli.Args(cobra.NoArgs),
		RunE: runAdd,
	}

	cmd.Flags().String("title", "", "Chore title (required)")
	cmd.Flags().String("description", "", "Description (Markdown)")
	cmd.Flags().Int("soft", 0, "Days after which the chore is due soon")
	cmd.Flags().Int("hard", 0, "Days after which the chore is overdue")
	cmd.Flags().String("last-done", "", "Date last done (YYYY-MM-DD), empty for never")
	addOutputFlags(cmd)

	return cmd
}

func runAdd(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cliInstance, formatter, err := setup(cmd)
	if err != nil {
		return err
	}
	defer closeCLI(cliInstance)

	if !cmd.Flags().Changed("title") {
		return usageError(formatter, "--title is required", `Example: chores add --title="Water Plants" --soft=3 --hard=7`)
	}

	title, _ := cmd.Flags().GetString("title")
	description, _ := cmd.Flags().GetString("description")
	lastDone, _ := cmd.Flags().GetString("last-done")
	lastDone = strings.TrimSpace(lastDone)

	if lastDone != "" {
		if _, err := time.Parse(models.DateLayout, lastDone); err != nil {
			return usageError(formatter,
				fmt.Sprintf("invalid --last-done '%s'", lastDone),
				"Use the YYYY-MM-DD format, e.g. --last-done=2024-01-15")
		}
	}

	req := choreservice.AddChoreRequest{
		Title:            strings.TrimSpace(title),
		Description:      description,
		SoftDeadlineDays: optionalInt(cmd, "soft"),
		HardDeadlineDays: optionalInt(cmd, "hard"),
		DateLastDone:     lastDone,
	}

	st, err := cliInstance.App.ChoreService.Add(ctx, req)
	if err != nil {
		return cli.HandleError(formatter, err, "", nil)
	}

	if req.SoftDeadlineDays != nil && req.HardDeadlineDays != nil && *req.HardDeadlineDays < *req.SoftDeadlineDays {
		formatter.Warn("hard deadline is shorter than the soft deadline")
	}

	if formatter.Quiet {
		formatter.Println(st.ID)
		return nil
	}

	if formatter.JSON {
		return formatter.WriteJSON(map[string]any{
			"success": true,
			"chore":   st,
		})
	}

	formatter.Printf("%s Added '%s' as %s (%s)\n",
		styles.SuccessStyle.Render("✓"),
		st.Title,
		st.ID,
		styles.RenderStatus(st.Classification, 0),
	)
	return nil
}

// optionalInt returns nil for flags the user did not set
func optionalInt(cmd *cobra.Command, name string) *int {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetInt(name)
	return &v
}
