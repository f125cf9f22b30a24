package launcher

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/thenoetrevino/chores/internal/app"
	"github.com/thenoetrevino/chores/internal/config"
	"github.com/thenoetrevino/chores/internal/events"
	"github.com/thenoetrevino/chores/internal/logging"
	"github.com/thenoetrevino/chores/internal/tui"
)

// connectTimeout bounds how long start-up waits for the daemon
const connectTimeout = 2 * time.Second

// Launch starts the dashboard
func Launch(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}

	// Create root context with signal handling for graceful shutdown
	ctx, cancel := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Log to file before anything else; the terminal belongs to the dashboard
	closer, err := logging.Init(cfg.LogDir)
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer func() { _ = closer.Close() }()

	// Connect to daemon for live updates (optional - daemon may not be running)
	eventClient, eventChan := connectDaemon(ctx, cfg.SocketPath)
	defer func() {
		if eventClient != nil {
			if err := eventClient.Close(); err != nil {
				slog.Error("error closing event client", "error", err)
			}
		}
	}()

	var opts []app.Option
	if eventClient != nil {
		opts = append(opts, app.WithEventPublisher(eventClient))
	}
	application, err := app.New(ctx, cfg, opts...)
	if err != nil {
		return fmt.Errorf("failed to initialize app: %w", err)
	}
	defer func() {
		if err := application.Close(); err != nil {
			slog.Error("error closing app", "error", err)
		}
	}()

	model := tui.InitialModel(ctx, application, eventChan)
	p := tea.NewProgram(model, tea.WithContext(ctx))

	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("error running program: %w", err)
	}

	slog.Info("dashboard closed")
	return nil
}

// connectDaemon returns a listening event client, or nils when the daemon
// is not reachable.
func connectDaemon(ctx context.Context, socketPath string) (*events.Client, <-chan events.Event) {
	eventClient, err := events.NewClient(socketPath)
	if err != nil {
		daemonErr := events.ClassifyDaemonError(err)
		slog.Warn("failed to create daemon client", "message", daemonErr.Message, "hint", daemonErr.Hint)
		return nil, nil
	}

	connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	if err := eventClient.Connect(connectCtx); err != nil {
		daemonErr := events.ClassifyDaemonError(err)
		slog.Warn("failed to connect to daemon", "message", daemonErr.Message, "hint", daemonErr.Hint)
		slog.Info("continuing without live updates")
		_ = eventClient.Close()
		return nil, nil
	}

	eventChan, err := eventClient.Listen(ctx)
	if err != nil {
		slog.Warn("failed to listen for daemon events", "error", err)
		_ = eventClient.Close()
		return nil, nil
	}

	slog.Info("connected to daemon", "socket_path", socketPath)
	return eventClient, eventChan
}
