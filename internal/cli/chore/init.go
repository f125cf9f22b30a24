package chore

import (
	"errors"
	"io/fs"
	"os"

	"github.com/spf13/cobra"
	"github.com/thenoetrevino/chores/internal/cli"
	"github.com/thenoetrevino/chores/internal/config"
)

// InitCmd returns the init command
func InitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the chore file if it does not exist",
		Long: `Create the chore file with its header row. Running it again is harmless.
With --write-config the current settings are also written to the config
file, unless one exists already.

Examples:
  chores init
  chores init --write-config
  chores init --json
`,
		Args: cli.Args(cobra.NoArgs),
		RunE: runInit,
	}

	addOutputFlags(cmd)
	cmd.Flags().Bool("write-config", false, "Also write the config file with the current settings")

	return cmd
}

func runInit(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cliInstance, formatter, err := setup(cmd)
	if err != nil {
		return err
	}
	defer closeCLI(cliInstance)

	path := cliInstance.App.Store().Path()
	existed := cliInstance.App.Store().Exists()

	if err := cliInstance.App.ChoreService.Init(ctx); err != nil {
		return cli.HandleError(formatter, err, "", nil)
	}

	var configPath string
	configCreated := false
	if writeConfig, _ := cmd.Flags().GetBool("write-config"); writeConfig {
		configPath, configCreated, err = writeConfigFile(cliInstance.App.Config())
		if err != nil {
			return cli.HandleError(formatter, err, "", nil)
		}
	}

	if formatter.Quiet {
		formatter.Println(path)
		return nil
	}

	if formatter.JSON {
		out := map[string]any{
			"success": true,
			"path":    path,
			"created": !existed,
		}
		if configPath != "" {
			out["config_path"] = configPath
			out["config_created"] = configCreated
		}
		return formatter.WriteJSON(out)
	}

	if existed {
		formatter.Printf("Chore file already exists at %s\n", path)
	} else {
		formatter.Printf("Created chore file at %s\n", path)
	}
	switch {
	case configCreated:
		formatter.Printf("Wrote config file to %s\n", configPath)
	case configPath != "":
		formatter.Printf("Config file already exists at %s\n", configPath)
	}
	return nil
}

// writeConfigFile saves cfg unless a config file is already there
func writeConfigFile(cfg *config.Config) (string, bool, error) {
	path, err := config.FilePath()
	if err != nil {
		return "", false, err
	}
	if _, err := os.Stat(path); err == nil {
		return path, false, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return "", false, err
	}
	if err := cfg.Save(); err != nil {
		return "", false, err
	}
	return path, true, nil
}
