package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/thenoetrevino/chores/internal/app"
	clipkg "github.com/thenoetrevino/chores/internal/cli"
	"github.com/thenoetrevino/chores/internal/config"
	"github.com/thenoetrevino/chores/internal/testutil"
)

// SetupCLITest writes content to a temp chore file and returns an App over
// it with a file-backed history and the clock fixed at testutil.SampleNow.
// The socket path points at a daemon that is not running.
func SetupCLITest(t *testing.T, content string) *app.App {
	t.Helper()

	cfg := config.Default()
	cfg.CSVPath = testutil.WriteChoreFile(t, content)
	cfg.HistoryPath = filepath.Join(filepath.Dir(cfg.CSVPath), "history.db")
	cfg.SocketPath = testutil.GetTestSocketPath(t)

	a, err := app.New(context.Background(), cfg, app.WithClock(testutil.FixedClock(testutil.SampleNow)))
	if err != nil {
		t.Fatalf("Failed to create test app: %v", err)
	}
	t.Cleanup(func() { _ = a.Close() })

	return a
}

// Result is the captured outcome of one command run
type Result struct {
	Stdout string
	Stderr string
	Err    error
}

// ExitCode is the process exit code the command would produce
func (r Result) ExitCode() int {
	return clipkg.ExitCode(r.Err)
}

// ExecuteCLICommand runs cmd with args against testApp and captures its output
func ExecuteCLICommand(t *testing.T, testApp *app.App, cmd *cobra.Command, args ...string) Result {
	t.Helper()

	if testApp == nil {
		t.Fatal("testApp cannot be nil - SetupCLITest must be called first")
	}

	var stdout, stderr bytes.Buffer
	cmd.SetArgs(args)
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)

	// Disable usage output on error for cleaner test output
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	err := cmd.ExecuteContext(clipkg.WithApp(context.Background(), testApp))

	return Result{Stdout: stdout.String(), Stderr: stderr.String(), Err: err}
}

// ParseJSON parses JSON output from CLI commands
func ParseJSON(t *testing.T, output string) map[string]any {
	t.Helper()

	var result map[string]any
	if err := json.Unmarshal([]byte(output), &result); err != nil {
		t.Fatalf("Failed to parse JSON output: %v\nOutput: %s", err, output)
	}

	return result
}
