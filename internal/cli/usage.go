package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Args wraps a positional argument validator so violations exit with ExitUsage
func Args(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := validate(cmd, args); err != nil {
			return usageExit(cmd, err)
		}
		return nil
	}
}

// FlagError is installed on the root command so bad flags exit with ExitUsage
func FlagError(cmd *cobra.Command, err error) error {
	return usageExit(cmd, err)
}

func usageExit(cmd *cobra.Command, err error) error {
	fmt.Fprintf(cmd.ErrOrStderr(), "❌ Error: %s\n", err)
	fmt.Fprintf(cmd.ErrOrStderr(), "💡 Suggestion: Run '%s --help' for usage\n", cmd.CommandPath())
	return Exit(ExitUsage, err)
}
