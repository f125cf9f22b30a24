package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/thenoetrevino/chores/internal/app"
	"github.com/thenoetrevino/chores/internal/config"
	"github.com/thenoetrevino/chores/internal/events"
)

// CLI represents the CLI application context
type CLI struct {
	App    *app.App // Application container with services
	Config *config.Config

	eventClient *events.Client
	ownsApp     bool
}

type contextKey string

const appKey contextKey = "chores.app"

// WithApp returns a context carrying a ready App. Commands run with such a
// context reuse it instead of building their own.
func WithApp(ctx context.Context, a *app.App) context.Context {
	return context.WithValue(ctx, appKey, a)
}

// GetCLIFromContext returns a CLI for the App stored in ctx, or builds a
// fresh one with NewCLI.
func GetCLIFromContext(ctx context.Context) (*CLI, error) {
	if a, ok := ctx.Value(appKey).(*app.App); ok && a != nil {
		return &CLI{App: a, Config: a.Config()}, nil
	}
	return NewCLI(ctx)
}

// NewCLI loads the config, opens the chore file and history, and connects
// to the daemon when it is running. A missing daemon is not an error.
func NewCLI(ctx context.Context) (*CLI, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	var opts []app.Option
	var eventClient *events.Client
	client, err := events.NewClient(cfg.SocketPath)
	if err == nil {
		// daemon isn't running (graceful degradation)
		if err := client.Connect(ctx); err == nil {
			eventClient = client
			opts = append(opts, app.WithEventPublisher(client))
		} else {
			slog.Debug("daemon not reachable", "error", err)
			_ = client.Close()
		}
	}

	application, err := app.New(ctx, cfg, opts...)
	if err != nil {
		if eventClient != nil {
			_ = eventClient.Close()
		}
		return nil, fmt.Errorf("failed to initialize app: %w", err)
	}

	return &CLI{
		App:         application,
		Config:      cfg,
		eventClient: eventClient,
		ownsApp:     true,
	}, nil
}

// SocketPath is where the daemon listens.
func (c *CLI) SocketPath() string {
	return c.Config.SocketPath
}

// Close cleans up CLI resources. An App taken from the context is left open.
func (c *CLI) Close() error {
	var errs []error
	if c.eventClient != nil {
		errs = append(errs, c.eventClient.Close())
	}
	if c.ownsApp {
		errs = append(errs, c.App.Close())
	}
	return errors.Join(errs...)
}
