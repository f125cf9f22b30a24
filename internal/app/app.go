package app

import (
	"context"
	"errors"
	"log/slog"

	"github.com/thenoetrevino/chores/internal/config"
	"github.com/thenoetrevino/chores/internal/events"
	"github.com/thenoetrevino/chores/internal/history"
	choreservice "github.com/thenoetrevino/chores/internal/services/chore"
	"github.com/thenoetrevino/chores/internal/store"
)

// ErrNilConfig is returned when New is called without a config.
var ErrNilConfig = errors.New("config is required")

// App holds all application services and provides dependency injection.
// This is the main application container that manages service lifecycles.
type App struct {
	cfg    *config.Config
	logger *slog.Logger

	// Storage layer
	store   *store.Store
	history *history.Repository

	// Event system for live updates
	eventClient events.Sender

	// Service layer (business logic)
	ChoreService choreservice.Service
}

// New creates a new App with all services initialized.
// The history database is optional: when it cannot be opened the app
// runs without completion history and logs a warning.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*App, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}

	options := &appConfig{logger: slog.Default()}
	for _, opt := range opts {
		opt(options)
	}

	a := &App{
		cfg:         cfg,
		logger:      options.logger,
		store:       store.New(cfg.CSVPath, store.WithLogger(options.logger)),
		eventClient: options.eventClient,
	}

	// Keep the interface nil when no history is available
	var recorder history.Recorder
	if !options.noHistory {
		db, err := history.InitDB(ctx, cfg.HistoryPath)
		if err != nil {
			options.logger.Warn("completion history unavailable", "path", cfg.HistoryPath, "error", err)
		} else {
			a.history = history.NewRepository(db)
			recorder = a.history
		}
	}

	serviceOpts := []choreservice.Option{choreservice.WithLogger(options.logger)}
	if options.now != nil {
		serviceOpts = append(serviceOpts, choreservice.WithClock(options.now))
	}

	a.ChoreService = choreservice.NewService(a.store, recorder, a.eventClient, serviceOpts...)
	return a, nil
}

// Config returns the configuration the app was built from.
func (a *App) Config() *config.Config {
	return a.cfg
}

// Store returns the underlying chore file store.
func (a *App) Store() *store.Store {
	return a.store
}

// HasHistory reports whether the completion history database is open.
func (a *App) HasHistory() bool {
	return a.history != nil
}

// Close releases the history database.
func (a *App) Close() error {
	if a.history == nil {
		return nil
	}
	return a.history.Close()
}
