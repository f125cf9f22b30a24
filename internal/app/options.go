package app

import (
	"log/slog"
	"time"

	"github.com/thenoetrevino/chores/internal/events"
)

// Option is a functional option for configuring App initialization
type Option func(*appConfig)

// appConfig holds the configuration for App initialization
type appConfig struct {
	eventClient events.Sender
	logger      *slog.Logger
	now         func() time.Time
	noHistory   bool
}

// WithEventPublisher sets the event publisher for the application.
// The daemon passes its own server; CLI and TUI pass an events.Client.
func WithEventPublisher(ec events.Sender) Option {
	return func(cfg *appConfig) {
		cfg.eventClient = ec
	}
}

// WithLogger sets the logger for the application
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *appConfig) {
		cfg.logger = logger
	}
}

// WithClock overrides the clock used for status computation
func WithClock(now func() time.Time) Option {
	return func(cfg *appConfig) {
		cfg.now = now
	}
}

// WithoutHistory skips opening the completion history database
func WithoutHistory() Option {
	return func(cfg *appConfig) {
		cfg.noHistory = true
	}
}
