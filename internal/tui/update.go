package tui

import (
	"errors"
	"fmt"
	"log/slog"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"github.com/thenoetrevino/chores/internal/events"
	"github.com/thenoetrevino/chores/internal/services/chore"
	"github.com/thenoetrevino/chores/internal/store"
)

// Update handles all messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	select {
	case <-m.Ctx.Done():
		return m, tea.Quit
	default:
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.SetWidth(msg.Width)
		m.detail.SetWidth(msg.Width)
		m.detail.SetHeight(max(1, msg.Height-4))
		if m.mode == detailMode {
			m.renderDetail()
		}
		return m, nil

	case choresLoadedMsg:
		if msg.err != nil {
			m.setNotice("Refresh failed: "+msg.err.Error(), noticeError)
			return m, nil
		}
		m.setStatuses(msg.statuses)
		return m, nil

	case markDoneMsg:
		return m.handleMarkDone(msg)

	case historyLoadedMsg:
		if msg.id != m.historyID {
			return m, nil
		}
		if msg.err != nil && !errors.Is(msg.err, chore.ErrHistoryUnavailable) {
			m.setNotice("History failed: "+msg.err.Error(), noticeError)
		}
		m.history = msg.entries
		if m.mode == detailMode {
			m.renderDetail()
		}
		return m, nil

	case daemonEventMsg:
		m.handleEvent(msg.event)
		return m, listenForEvents(m.Ctx, m.EventChan)

	case daemonClosedMsg:
		m.Connection = Disconnected
		m.EventChan = nil
		m.setNotice("Lost the daemon connection; changes are now made locally", noticeWarn)
		return m, nil

	case tea.KeyPressMsg:
		if m.mode == detailMode {
			return m.handleDetailKey(msg)
		}
		return m.handleListKey(msg)
	}

	return m, nil
}

func (m Model) handleListKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.visible)-1 {
			m.cursor++
		}

	case key.Matches(msg, m.keys.MarkDone):
		sel := m.Selected()
		if sel == nil {
			return m, nil
		}
		m.setNotice("Marking "+sel.Title+" done...", noticeInfo)
		return m, markDone(m.Ctx, m.App, sel.ID)

	case key.Matches(msg, m.keys.Detail):
		sel := m.Selected()
		if sel == nil {
			return m, nil
		}
		m.mode = detailMode
		m.historyID = sel.ID
		m.history = nil
		m.renderDetail()
		m.detail.GotoTop()
		return m, loadHistory(m.Ctx, m.App, sel.ID)

	case key.Matches(msg, m.keys.Refresh):
		m.setNotice("", noticeInfo)
		return m, loadChores(m.Ctx, m.App)

	case key.Matches(msg, m.keys.Sort):
		m.sortUrgency = !m.sortUrgency
		m.rebuild()

	case key.Matches(msg, m.keys.Filter):
		m.filter = nextFilter(m.filter)
		m.cursor = 0
		m.rebuild()

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}

	return m, nil
}

func (m Model) handleDetailKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.String() == "ctrl+c":
		return m, tea.Quit

	case key.Matches(msg, m.keys.Back, m.keys.Detail, m.keys.Quit):
		m.mode = listMode
		return m, nil

	case key.Matches(msg, m.keys.MarkDone):
		sel := m.Selected()
		if sel == nil {
			return m, nil
		}
		return m, markDone(m.Ctx, m.App, sel.ID)
	}

	var cmd tea.Cmd
	m.detail, cmd = m.detail.Update(msg)
	return m, cmd
}

func (m Model) handleMarkDone(msg markDoneMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		slog.Error("mark done failed", "chore_id", msg.id, "error", msg.err)
		if errors.Is(msg.err, store.ErrChoreNotFound) {
			m.setNotice(fmt.Sprintf("Chore %q no longer exists", msg.id), noticeError)
			return m, loadChores(m.Ctx, m.App)
		}
		m.setNotice("Mark done failed: "+msg.err.Error(), noticeError)
		return m, nil
	}

	m.setNotice(fmt.Sprintf("Marked %s done (%s)", msg.status.Title, msg.via), noticeInfo)
	m.mergeStatus(*msg.status)

	cmds := []tea.Cmd{loadChores(m.Ctx, m.App)}
	if m.mode == detailMode && m.historyID == msg.id {
		cmds = append(cmds, loadHistory(m.Ctx, m.App, msg.id))
	}
	return m, tea.Batch(cmds...)
}

// handleEvent applies a daemon event to the snapshot
func (m *Model) handleEvent(event events.Event) {
	switch event.Type {
	case events.EventChoresRefreshed:
		m.setStatuses(event.Statuses)
	case events.EventChoreDone:
		for _, st := range event.Statuses {
			m.mergeStatus(st)
		}
	}
	if m.mode == detailMode {
		m.renderDetail()
	}
}
