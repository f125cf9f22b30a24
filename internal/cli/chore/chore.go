// Package chore holds the cobra commands that read and update chores.
package chore

import (
	"context"
	"log"

	"github.com/spf13/cobra"
	"github.com/thenoetrevino/chores/internal/cli"
	"github.com/thenoetrevino/chores/internal/cli/styles"
	choreservice "github.com/thenoetrevino/chores/internal/services/chore"
)

// Commands returns every chore command. They are registered on the root
// command so they read as `chores list`, `chores done <id>`.
func Commands() []*cobra.Command {
	return []*cobra.Command{
		InitCmd(),
		ListCmd(),
		ShowCmd(),
		DoneCmd(),
		AddCmd(),
		HistoryCmd(),
	}
}

// addOutputFlags registers the agent-friendly output flags
func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("json", false, "Output in JSON format")
	cmd.Flags().Bool("quiet", false, "Minimal output (IDs only)")
}

func newFormatter(cmd *cobra.Command) *cli.OutputFormatter {
	jsonOutput, _ := cmd.Flags().GetBool("json")
	quietMode, _ := cmd.Flags().GetBool("quiet")
	return &cli.OutputFormatter{
		JSON:  jsonOutput,
		Quiet: quietMode,
		Out:   cmd.OutOrStdout(),
		Err:   cmd.ErrOrStderr(),
	}
}

// setup builds the formatter and the CLI instance for a command
func setup(cmd *cobra.Command) (*cli.CLI, *cli.OutputFormatter, error) {
	formatter := newFormatter(cmd)

	if formatter.JSON && formatter.Quiet {
		err := formatter.Error("INVALID_FLAGS", "--json and --quiet cannot be used together")
		if err != nil {
			log.Printf("Error formatting error message: %v", err)
		}
		return nil, nil, cli.Exit(cli.ExitUsage, nil)
	}

	cliInstance, err := cli.GetCLIFromContext(cmd.Context())
	if err != nil {
		if fmtErr := formatter.Error("INITIALIZATION_ERROR", err.Error()); fmtErr != nil {
			log.Printf("Error formatting error message: %v", fmtErr)
		}
		return nil, nil, cli.Exit(cli.ExitError, err)
	}

	styles.Init(cliInstance.Config.ColorScheme)
	return cliInstance, formatter, nil
}

func closeCLI(c *cli.CLI) {
	if err := c.Close(); err != nil {
		log.Printf("Error closing CLI: %v", err)
	}
}

// knownIDs lists current chore ids for "did you mean" suggestions
func knownIDs(ctx context.Context, svc choreservice.Service) []string {
	statuses, err := svc.Refresh(ctx)
	if err != nil {
		return nil
	}
	return choreservice.IDs(statuses)
}

// usageError reports a bad argument and returns exit code 2
func usageError(f *cli.OutputFormatter, message, suggestion string) error {
	if err := f.ErrorWithSuggestion("INVALID_ARGUMENT", message, suggestion); err != nil {
		log.Printf("Error formatting error message: %v", err)
	}
	return cli.Exit(cli.ExitUsage, nil)
}
