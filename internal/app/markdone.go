package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/thenoetrevino/chores/internal/events"
	"github.com/thenoetrevino/chores/internal/models"
	"github.com/thenoetrevino/chores/internal/store"
)

// Via reports where a mark-done request was carried out
type Via string

const (
	ViaDaemon Via = "daemon"
	ViaLocal  Via = "local"
)

// MarkDone marks a chore done through the daemon when one is listening on
// the configured socket, so every observer sees the change at once. When
// no daemon can take the request, the daemon serves a different chore
// file, or useDaemon is false, the local service updates the file instead.
func (a *App) MarkDone(ctx context.Context, id string, useDaemon bool) (*models.ChoreStatus, Via, error) {
	if useDaemon {
		st, err := a.markDoneRemote(ctx, id)
		if err == nil {
			return st, ViaDaemon, nil
		}
		if !errors.Is(err, errDaemonUnavailable) {
			return nil, ViaDaemon, err
		}
		a.logger.Debug("daemon unavailable, marking done locally", "id", id, "error", err)
	}

	st, err := a.ChoreService.MarkDone(ctx, id)
	return st, ViaLocal, err
}

var errDaemonUnavailable = errors.New("daemon unavailable")

func (a *App) markDoneRemote(ctx context.Context, id string) (*models.ChoreStatus, error) {
	resp, err := events.MarkDone(ctx, a.cfg.SocketPath, a.cfg.CSVPath, id)
	if err == nil {
		if resp.Status == nil {
			return nil, fmt.Errorf("daemon returned no status for %s", id)
		}
		return resp.Status, nil
	}

	var daemonErr *events.DaemonError
	switch {
	case errors.As(err, &daemonErr),
		events.IsRemoteCode(err, events.CodeUnavailable),
		events.IsRemoteCode(err, events.CodeWrongFile):
		return nil, fmt.Errorf("%w: %w", errDaemonUnavailable, err)
	case events.IsRemoteCode(err, events.CodeChoreNotFound):
		return nil, fmt.Errorf("%w: %s", store.ErrChoreNotFound, id)
	default:
		return nil, err
	}
}
