package tui

import (
	"github.com/thenoetrevino/chores/internal/app"
	"github.com/thenoetrevino/chores/internal/events"
	"github.com/thenoetrevino/chores/internal/models"
)

// choresLoadedMsg carries a freshly computed status list
type choresLoadedMsg struct {
	statuses []models.ChoreStatus
	err      error
}

// markDoneMsg reports the outcome of marking a chore done
type markDoneMsg struct {
	id     string
	status *models.ChoreStatus
	via    app.Via
	err    error
}

// historyLoadedMsg carries recent completions for the detail view
type historyLoadedMsg struct {
	id      string
	entries []*models.Completion
	err     error
}

// daemonEventMsg wraps an event received from the daemon
type daemonEventMsg struct {
	event events.Event
}

// daemonClosedMsg is sent once the event channel closes
type daemonClosedMsg struct{}
