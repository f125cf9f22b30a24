package tui

import (
	"context"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"
	"github.com/thenoetrevino/chores/internal/app"
	"github.com/thenoetrevino/chores/internal/events"
	"github.com/thenoetrevino/chores/internal/models"
	"github.com/thenoetrevino/chores/internal/services/chore"
)

// historyLimit is how many completions the detail view shows
const historyLimit = 10

type mode int

const (
	listMode mode = iota
	detailMode
)

// Model is the dashboard state
type Model struct {
	Ctx        context.Context
	App        *app.App
	EventChan  <-chan events.Event
	Connection ConnectionStatus

	keys   keyMap
	help   help.Model
	detail viewport.Model
	styles styles

	statuses    []models.ChoreStatus
	visible     []models.ChoreStatus
	cursor      int
	filter      models.Classification // "" shows every chore
	sortUrgency bool
	mode        mode
	width       int
	height      int

	history   []*models.Completion
	historyID string

	notice      string
	noticeLevel noticeLevel
	loaded      bool
}

type noticeLevel int

const (
	noticeInfo noticeLevel = iota
	noticeWarn
	noticeError
)

// InitialModel creates the dashboard. eventChan may be nil when the daemon
// is not running; the dashboard then works on the local chore file only.
func InitialModel(ctx context.Context, a *app.App, eventChan <-chan events.Event) Model {
	cfg := a.Config()

	m := Model{
		Ctx:       ctx,
		App:       a,
		EventChan: eventChan,
		keys:      newKeyMap(cfg.KeyMappings),
		help:      help.New(),
		detail:    viewport.New(),
		styles:    newStyles(cfg.ColorScheme),
	}
	if eventChan != nil {
		m.Connection = Connected
	}
	return m
}

// Init loads the chores and starts listening for daemon events
func (m Model) Init() tea.Cmd {
	return tea.Batch(loadChores(m.Ctx, m.App), listenForEvents(m.Ctx, m.EventChan))
}

// Selected returns the chore under the cursor, or nil for an empty list
func (m Model) Selected() *models.ChoreStatus {
	if m.cursor < 0 || m.cursor >= len(m.visible) {
		return nil
	}
	st := m.visible[m.cursor]
	return &st
}

// Visible returns the chores currently listed, after filtering and sorting
func (m Model) Visible() []models.ChoreStatus {
	return m.visible
}

// setStatuses replaces the snapshot and keeps the cursor on the same chore
func (m *Model) setStatuses(statuses []models.ChoreStatus) {
	m.statuses = statuses
	m.loaded = true
	m.rebuild()
}

// mergeStatus replaces one chore in the snapshot. It reports false when the
// chore is not part of the snapshot yet.
func (m *Model) mergeStatus(st models.ChoreStatus) bool {
	for i := range m.statuses {
		if m.statuses[i].ID == st.ID {
			m.statuses[i] = st
			m.rebuild()
			return true
		}
	}
	return false
}

// rebuild recomputes the visible list from the snapshot
func (m *Model) rebuild() {
	var selectedID string
	if sel := m.Selected(); sel != nil {
		selectedID = sel.ID
	}

	if m.filter == "" {
		m.visible = make([]models.ChoreStatus, len(m.statuses))
		copy(m.visible, m.statuses)
	} else {
		m.visible = chore.FilterByClassification(m.statuses, m.filter)
	}
	if m.sortUrgency {
		chore.SortByUrgency(m.visible)
	}

	for i, st := range m.visible {
		if st.ID == selectedID {
			m.cursor = i
			return
		}
	}
	m.cursor = min(m.cursor, max(0, len(m.visible)-1))
}

// nextFilter cycles all → overdue → due_soon → ok → unknown → all
func nextFilter(c models.Classification) models.Classification {
	order := []models.Classification{
		"",
		models.StatusOverdue,
		models.StatusDueSoon,
		models.StatusOK,
		models.StatusUnknown,
	}
	for i, f := range order {
		if f == c {
			return order[(i+1)%len(order)]
		}
	}
	return ""
}

func (m *Model) setNotice(text string, level noticeLevel) {
	m.notice = text
	m.noticeLevel = level
}
