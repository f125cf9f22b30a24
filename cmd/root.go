package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/thenoetrevino/chores/internal/cli"
	"github.com/thenoetrevino/chores/internal/cli/chore"
	"github.com/thenoetrevino/chores/internal/launcher"
)

// version is set at build time with -ldflags "-X github.com/thenoetrevino/chores/cmd.version=..."
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "chores",
	Short: "Chores - track when household chores were last done",
	Long: `Chores tracks recurring household chores in a plain CSV file and tells
you which ones are due soon or overdue.

Run without a command to open the dashboard.`,
	Args:          cli.Args(cobra.NoArgs),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return launcher.Launch(cmd.Context())
	},
}

func init() {
	rootCmd.Version = version
	rootCmd.SetFlagErrorFunc(cli.FlagError)
	rootCmd.AddCommand(chore.Commands()...)
}

// Execute runs the root command and returns the process exit code
func Execute() int {
	err := rootCmd.Execute()
	if err == nil {
		return cli.ExitSuccess
	}
	if !cli.Reported(err) {
		fmt.Fprintf(os.Stderr, "❌ Error: %v\n", err)
	}
	return cli.ExitCode(err)
}
