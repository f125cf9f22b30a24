package tui

import (
	"context"

	tea "charm.land/bubbletea/v2"
	"github.com/thenoetrevino/chores/internal/app"
	"github.com/thenoetrevino/chores/internal/events"
)

// loadChores refreshes the chore file through the service
func loadChores(ctx context.Context, a *app.App) tea.Cmd {
	return func() tea.Msg {
		statuses, err := a.ChoreService.Refresh(ctx)
		return choresLoadedMsg{statuses: statuses, err: err}
	}
}

// markDone asks the daemon to mark id done, falling back to the local file
func markDone(ctx context.Context, a *app.App, id string) tea.Cmd {
	return func() tea.Msg {
		st, via, err := a.MarkDone(ctx, id, true)
		return markDoneMsg{id: id, status: st, via: via, err: err}
	}
}

// loadHistory fetches recent completions of id
func loadHistory(ctx context.Context, a *app.App, id string) tea.Cmd {
	return func() tea.Msg {
		entries, err := a.ChoreService.History(ctx, id, historyLimit)
		return historyLoadedMsg{id: id, entries: entries, err: err}
	}
}

// listenForEvents waits for the next daemon event.
// Returns nil if there is no event channel.
func listenForEvents(ctx context.Context, ch <-chan events.Event) tea.Cmd {
	if ch == nil {
		return nil
	}

	return func() tea.Msg {
		select {
		case event, ok := <-ch:
			if !ok {
				return daemonClosedMsg{}
			}
			return daemonEventMsg{event: event}
		case <-ctx.Done():
			return nil
		}
	}
}
