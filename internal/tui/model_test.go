package tui

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/thenoetrevino/chores/internal/app"
	"github.com/thenoetrevino/chores/internal/config"
	"github.com/thenoetrevino/chores/internal/daemon"
	"github.com/thenoetrevino/chores/internal/events"
	"github.com/thenoetrevino/chores/internal/models"
	"github.com/thenoetrevino/chores/internal/store"
	"github.com/thenoetrevino/chores/internal/testutil"
)

// ============================================================================
// HELPERS
// ============================================================================

func testConfig(t *testing.T, content string) *config.Config {
	t.Helper()

	cfg := config.Default()
	cfg.CSVPath = testutil.WriteChoreFile(t, content)
	cfg.HistoryPath = filepath.Join(filepath.Dir(cfg.CSVPath), "history.db")
	cfg.SocketPath = testutil.GetTestSocketPath(t)
	return cfg
}

func newTestApp(t *testing.T, cfg *config.Config, opts ...app.Option) *app.App {
	t.Helper()

	opts = append([]app.Option{app.WithClock(testutil.FixedClock(testutil.SampleNow))}, opts...)
	a, err := app.New(context.Background(), cfg, opts...)
	if err != nil {
		t.Fatalf("Failed to create app: %v", err)
	}
	t.Cleanup(func() { _ = a.Close() })
	return a
}

// setupTestModel returns a sized dashboard with the chores already loaded
func setupTestModel(t *testing.T, content string) Model {
	t.Helper()

	a := newTestApp(t, testConfig(t, content))
	m := InitialModel(context.Background(), a, nil)
	m = send(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	return send(t, m, loadChores(m.Ctx, m.App)())
}

// send applies msg and returns the updated model, discarding the command
func send(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	updated, _ := update(t, m, msg)
	return updated
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()

	updated, cmd := m.Update(msg)
	model, ok := updated.(Model)
	if !ok {
		t.Fatalf("Update returned %T, want Model", updated)
	}
	return model, cmd
}

func press(text string) tea.KeyPressMsg {
	return tea.KeyPressMsg(tea.Key{Text: text, Code: []rune(text)[0]})
}

func pressCode(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg(tea.Key{Code: code})
}

func visibleIDs(m Model) []string {
	ids := make([]string, 0, len(m.Visible()))
	for _, st := range m.Visible() {
		ids = append(ids, st.ID)
	}
	return ids
}

func equalIDs(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

// ============================================================================
// LOADING AND RENDERING
// ============================================================================

func TestView_LoadingBeforeWindowSize(t *testing.T) {
	a := newTestApp(t, testConfig(t, testutil.SampleCSV))
	m := InitialModel(context.Background(), a, nil)

	view := m.View()
	if view.Content != "Loading..." {
		t.Errorf("Expected loading view, got %q", view.Content)
	}
	if !view.AltScreen {
		t.Error("Expected the dashboard to use the alternate screen")
	}
}

func TestInitialModel_LoadsChores(t *testing.T) {
	m := setupTestModel(t, testutil.SampleCSV)

	want := []string{"clean_oven", "water_plants", "change_sheets", "defrost_freezer", "descale_kettle"}
	if got := visibleIDs(m); !equalIDs(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
	if m.Connection != Disconnected {
		t.Errorf("Expected Disconnected without event channel, got %v", m.Connection)
	}

	output := m.View().Content
	for _, s := range []string{"Clean Oven", "Defrost Freezer", "overdue", "due_soon", "never", "50 days"} {
		if !strings.Contains(output, s) {
			t.Errorf("Expected view to contain %q", s)
		}
	}
}

func TestInitialModel_EmptyFile(t *testing.T) {
	m := setupTestModel(t, testutil.EmptyChoreFile)

	if m.Selected() != nil {
		t.Error("Expected no selection on an empty list")
	}
	if !strings.Contains(m.View().Content, "No chores yet") {
		t.Error("Expected empty state message")
	}

	// Keys on an empty list are no-ops
	m, cmd := update(t, m, press("d"))
	if cmd != nil {
		t.Error("Expected no command when marking done on an empty list")
	}
	m, cmd = update(t, m, pressCode(tea.KeyEnter))
	if cmd != nil || m.mode != listMode {
		t.Error("Expected enter on an empty list to stay in list mode")
	}
}

func TestInit_WithoutEventChannel(t *testing.T) {
	if cmd := listenForEvents(context.Background(), nil); cmd != nil {
		t.Error("Expected no listener without an event channel")
	}

	a := newTestApp(t, testConfig(t, testutil.SampleCSV))
	m := InitialModel(context.Background(), a, nil)
	if m.Init() == nil {
		t.Error("Expected Init to load chores")
	}
}

// ============================================================================
// NAVIGATION
// ============================================================================

func TestNavigation_CursorBounds(t *testing.T) {
	m := setupTestModel(t, testutil.SampleCSV)

	m = send(t, m, press("k"))
	if m.cursor != 0 {
		t.Errorf("Expected cursor to stay at 0, got %d", m.cursor)
	}

	m = send(t, m, press("j"))
	m = send(t, m, pressCode(tea.KeyDown))
	if got := m.Selected().ID; got != "change_sheets" {
		t.Errorf("Expected change_sheets selected, got %s", got)
	}

	for range 10 {
		m = send(t, m, press("j"))
	}
	if got := m.Selected().ID; got != "descale_kettle" {
		t.Errorf("Expected cursor clamped at last chore, got %s", got)
	}

	m = send(t, m, pressCode(tea.KeyUp))
	if got := m.Selected().ID; got != "defrost_freezer" {
		t.Errorf("Expected defrost_freezer selected, got %s", got)
	}
}

func TestFilter_Cycle(t *testing.T) {
	m := setupTestModel(t, testutil.SampleCSV)

	tests := []struct {
		filter models.Classification
		want   []string
	}{
		{models.StatusOverdue, []string{"clean_oven", "defrost_freezer"}},
		{models.StatusDueSoon, []string{"water_plants", "change_sheets"}},
		{models.StatusOK, []string{}},
		{models.StatusUnknown, []string{"descale_kettle"}},
		{"", []string{"clean_oven", "water_plants", "change_sheets", "defrost_freezer", "descale_kettle"}},
	}

	for _, tt := range tests {
		m = send(t, m, press("f"))
		if m.filter != tt.filter {
			t.Fatalf("Expected filter %q, got %q", tt.filter, m.filter)
		}
		if got := visibleIDs(m); !equalIDs(got, tt.want) {
			t.Errorf("Filter %q: expected %v, got %v", tt.filter, tt.want, got)
		}
		if tt.filter == models.StatusOK && !strings.Contains(m.View().Content, "No ok chores") {
			t.Error("Expected empty filter message")
		}
	}
}

func TestSort_ByUrgencyKeepsSelection(t *testing.T) {
	m := setupTestModel(t, testutil.SampleCSV)

	// Select water_plants before sorting
	m = send(t, m, press("j"))

	m = send(t, m, press("s"))
	want := []string{"defrost_freezer", "clean_oven", "change_sheets", "water_plants", "descale_kettle"}
	if got := visibleIDs(m); !equalIDs(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
	if got := m.Selected().ID; got != "water_plants" {
		t.Errorf("Expected selection to follow water_plants, got %s", got)
	}
	if !strings.Contains(m.View().Content, "by urgency") {
		t.Error("Expected header to show the sort order")
	}

	m = send(t, m, press("s"))
	if got := visibleIDs(m); got[0] != "clean_oven" {
		t.Errorf("Expected file order after toggling sort off, got %v", got)
	}
}

func TestHelp_Toggle(t *testing.T) {
	m := setupTestModel(t, testutil.SampleCSV)

	m = send(t, m, press("?"))
	if !m.help.ShowAll {
		t.Fatal("Expected full help after ?")
	}
	if !strings.Contains(m.View().Content, "sort by urgency") {
		t.Error("Expected full help to list the sort binding")
	}

	m = send(t, m, press("?"))
	if m.help.ShowAll {
		t.Error("Expected short help after second ?")
	}
}

func TestQuit(t *testing.T) {
	m := setupTestModel(t, testutil.SampleCSV)

	_, cmd := update(t, m, press("q"))
	if cmd == nil {
		t.Fatal("Expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("Expected tea.QuitMsg")
	}
}

func TestQuit_ContextCancelled(t *testing.T) {
	m := setupTestModel(t, testutil.SampleCSV)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	m.Ctx = ctx

	_, cmd := update(t, m, press("j"))
	if cmd == nil {
		t.Fatal("Expected quit command after cancellation")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("Expected tea.QuitMsg")
	}
}

func TestCustomKeyMappings(t *testing.T) {
	cfg := testConfig(t, testutil.SampleCSV)
	cfg.KeyMappings.MarkDone = "x"
	cfg.KeyMappings.Down = "n"

	m := InitialModel(context.Background(), newTestApp(t, cfg), nil)
	m = send(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	m = send(t, m, loadChores(m.Ctx, m.App)())

	m = send(t, m, press("n"))
	if got := m.Selected().ID; got != "water_plants" {
		t.Errorf("Expected custom down key to move, got %s", got)
	}

	_, cmd := update(t, m, press("d"))
	if cmd != nil {
		t.Error("Expected default mark done key to be unbound")
	}
	_, cmd = update(t, m, press("x"))
	if cmd == nil {
		t.Error("Expected custom mark done key to issue a command")
	}
}

// ============================================================================
// MARK DONE
// ============================================================================

func TestMarkDone_Local(t *testing.T) {
	m := setupTestModel(t, testutil.SampleCSV)

	m, cmd := update(t, m, press("d"))
	if cmd == nil {
		t.Fatal("Expected mark done command")
	}
	msg, ok := cmd().(markDoneMsg)
	if !ok {
		t.Fatalf("Expected markDoneMsg, got %T", msg)
	}
	if msg.err != nil {
		t.Fatalf("Mark done failed: %v", msg.err)
	}
	if msg.via != app.ViaLocal {
		t.Errorf("Expected local fallback without daemon, got %s", msg.via)
	}

	m = send(t, m, msg)
	sel := m.Selected()
	if sel.ID != "clean_oven" || sel.Classification != models.StatusOK || sel.DaysSince != 0 {
		t.Errorf("Expected clean_oven ok at 0 days, got %+v", sel)
	}
	if !strings.Contains(m.notice, "Marked Clean Oven done (local)") {
		t.Errorf("Unexpected notice %q", m.notice)
	}
	if !strings.Contains(testutil.ReadFile(t, m.App.Config().CSVPath), "Clean Oven,2024-02-20,30,45") {
		t.Error("Expected the chore file to record today's date")
	}
}

func TestMarkDone_RemovedChore(t *testing.T) {
	m := setupTestModel(t, testutil.SampleCSV)

	m, cmd := update(t, m, markDoneMsg{id: "gone", err: fmt.Errorf("%w: gone", store.ErrChoreNotFound)})
	if m.noticeLevel != noticeError || !strings.Contains(m.notice, "no longer exists") {
		t.Errorf("Unexpected notice %q", m.notice)
	}
	if cmd == nil {
		t.Error("Expected a reload after a missing chore")
	}
}

// ============================================================================
// DETAIL VIEW
// ============================================================================

func TestDetail_ShowsChoreAndHistory(t *testing.T) {
	m := setupTestModel(t, testutil.SampleCSV)

	// Record one completion so the history section has an entry
	if _, err := m.App.ChoreService.MarkDone(context.Background(), "clean_oven"); err != nil {
		t.Fatalf("MarkDone failed: %v", err)
	}
	m = send(t, m, loadChores(m.Ctx, m.App)())

	m, cmd := update(t, m, pressCode(tea.KeyEnter))
	if m.mode != detailMode {
		t.Fatal("Expected detail mode after enter")
	}
	if cmd == nil {
		t.Fatal("Expected history command")
	}
	m = send(t, m, cmd())

	if len(m.history) != 1 {
		t.Fatalf("Expected 1 history entry, got %d", len(m.history))
	}

	output := m.View().Content
	for _, s := range []string{"Clean Oven", "clean_oven", "Last done:", "2024-02-20", "History", "Description"} {
		if !strings.Contains(output, s) {
			t.Errorf("Expected detail view to contain %q", s)
		}
	}

	m = send(t, m, pressCode(tea.KeyEscape))
	if m.mode != listMode {
		t.Error("Expected esc to return to the list")
	}
}

func TestDetail_StaleHistoryIgnored(t *testing.T) {
	m := setupTestModel(t, testutil.SampleCSV)
	m = send(t, m, pressCode(tea.KeyEnter))

	m = send(t, m, historyLoadedMsg{id: "water_plants", entries: []*models.Completion{{ChoreID: "water_plants"}}})
	if len(m.history) != 0 {
		t.Error("Expected history for another chore to be ignored")
	}
}

func TestDetail_QuitKeyGoesBack(t *testing.T) {
	m := setupTestModel(t, testutil.SampleCSV)
	m = send(t, m, pressCode(tea.KeyEnter))

	m, cmd := update(t, m, press("q"))
	if m.mode != listMode {
		t.Error("Expected q to leave the detail view")
	}
	if cmd != nil {
		t.Error("Expected q in the detail view not to quit")
	}
}

// ============================================================================
// DAEMON EVENTS
// ============================================================================

func TestDaemonEvent_Refreshed(t *testing.T) {
	m := setupTestModel(t, testutil.SampleCSV)

	ch := make(chan events.Event, 1)
	m.EventChan = ch
	m.Connection = Connected

	statuses := []models.ChoreStatus{{ID: "mop_floor", Title: "Mop Floor", Classification: models.StatusOK}}
	m, cmd := update(t, m, daemonEventMsg{event: events.Event{Type: events.EventChoresRefreshed, Statuses: statuses}})

	if got := visibleIDs(m); !equalIDs(got, []string{"mop_floor"}) {
		t.Errorf("Expected snapshot replaced by event, got %v", got)
	}
	if cmd == nil {
		t.Error("Expected the model to keep listening")
	}
}

func TestDaemonEvent_ChoreDoneMerges(t *testing.T) {
	m := setupTestModel(t, testutil.SampleCSV)

	done := models.ChoreStatus{ID: "water_plants", Title: "Water Plants", LastDone: "2024-02-20", Classification: models.StatusOK}
	m = send(t, m, daemonEventMsg{event: events.Event{Type: events.EventChoreDone, ChoreID: "water_plants", Statuses: []models.ChoreStatus{done}}})

	if len(m.Visible()) != 5 {
		t.Fatalf("Expected 5 chores, got %d", len(m.Visible()))
	}
	if got := m.Visible()[1]; got.Classification != models.StatusOK || got.LastDone != "2024-02-20" {
		t.Errorf("Expected water_plants merged, got %+v", got)
	}
}

func TestDaemonClosed(t *testing.T) {
	m := setupTestModel(t, testutil.SampleCSV)
	m.Connection = Connected

	m = send(t, m, daemonClosedMsg{})
	if m.Connection != Disconnected {
		t.Errorf("Expected Disconnected, got %v", m.Connection)
	}
	if m.noticeLevel != noticeWarn || !strings.Contains(m.View().Content, "Lost the daemon connection") {
		t.Error("Expected a warning about the lost connection")
	}
}

func TestListenForEvents_ClosedChannel(t *testing.T) {
	ch := make(chan events.Event)
	close(ch)

	msg := listenForEvents(context.Background(), ch)()
	if _, ok := msg.(daemonClosedMsg); !ok {
		t.Errorf("Expected daemonClosedMsg, got %T", msg)
	}
}

func TestLiveUpdates_ThroughDaemon(t *testing.T) {
	cfg := testConfig(t, testutil.SampleCSV)

	socketPath := testutil.GetTestSocketPath(t)
	server, err := daemon.NewServer(socketPath)
	if err != nil {
		t.Fatalf("Failed to create daemon: %v", err)
	}
	daemonApp := newTestApp(t, cfg, app.WithoutHistory(), app.WithEventPublisher(server))
	server.SetChoreService(daemonApp.ChoreService)
	testutil.StartTestDaemon(t, server)

	client := testutil.SetupTestClient(t, socketPath)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch, err := client.Listen(ctx)
	if err != nil {
		t.Fatalf("Listen failed: %v", err)
	}

	clientCfg := *cfg
	clientCfg.SocketPath = socketPath
	m := InitialModel(ctx, newTestApp(t, &clientCfg, app.WithoutHistory()), ch)
	m = send(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	m = send(t, m, loadChores(m.Ctx, m.App)())
	if m.Connection != Connected {
		t.Fatalf("Expected Connected with an event channel, got %v", m.Connection)
	}

	msg := markDone(m.Ctx, m.App, "water_plants")().(markDoneMsg)
	if msg.err != nil {
		t.Fatalf("Mark done failed: %v", msg.err)
	}
	if msg.via != app.ViaDaemon {
		t.Errorf("Expected mark done through the daemon, got %s", msg.via)
	}

	event := testutil.WaitForEventType(t, ch, events.EventChoreDone, 2*time.Second)
	m = send(t, m, daemonEventMsg{event: event})

	if got := m.Visible()[1]; got.ID != "water_plants" || got.Classification != models.StatusOK {
		t.Errorf("Expected live update for water_plants, got %+v", got)
	}
}
