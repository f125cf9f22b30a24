package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/thenoetrevino/chores/internal/app"
	"github.com/thenoetrevino/chores/internal/config"
	"github.com/thenoetrevino/chores/internal/daemon"
	"github.com/thenoetrevino/chores/internal/logging"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Set up signal handling for graceful shutdown
	ctx, cancel := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
		syscall.SIGQUIT,
	)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		return 1
	}

	if closer, err := logging.Init(cfg.LogDir); err != nil {
		slog.Warn("logging to stderr", "error", err)
	} else {
		defer func() { _ = closer.Close() }()
	}

	server, err := daemon.NewServer(cfg.SocketPath,
		daemon.WithRefreshInterval(cfg.RefreshInterval),
		daemon.WithLogger(slog.Default()),
	)
	if err != nil {
		slog.Error("failed to create daemon", "error", err)
		return 1
	}

	// The server broadcasts whatever the service publishes
	application, err := app.New(ctx, cfg, app.WithEventPublisher(server))
	if err != nil {
		slog.Error("failed to initialize app", "error", err)
		return 1
	}
	defer func() {
		if err := application.Close(); err != nil {
			slog.Error("error closing app", "error", err)
		}
	}()

	if err := application.ChoreService.Init(ctx); err != nil {
		slog.Error("failed to initialize chore file", "path", cfg.CSVPath, "error", err)
		return 1
	}
	server.SetChoreService(application.ChoreService)

	slog.Info("chores daemon starting",
		"socket_path", cfg.SocketPath,
		"csv_path", cfg.CSVPath,
		"refresh_interval", cfg.RefreshInterval,
		"pid", os.Getpid(),
	)

	// Start the daemon (blocks until shutdown)
	if err := server.Start(ctx); err != nil {
		slog.Error("daemon error", "error", err)
		return 1
	}

	slog.Info("chores daemon shutting down gracefully", "metrics", server.Metrics())
	return 0
}
