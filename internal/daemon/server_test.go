package daemon

import (
	"context"
	"encoding/json"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/thenoetrevino/chores/internal/events"
	"github.com/thenoetrevino/chores/internal/models"
	"github.com/thenoetrevino/chores/internal/services/chore"
	"github.com/thenoetrevino/chores/internal/store"
)

// Test helpers live here to avoid an import cycle with testutil

const testCSV = `title,date_last_done,soft_deadline_days,hard_deadline_days,description
Clean Oven,2024-01-01,30,45,Deep clean the oven interior
Water Plants,2024-02-17,2,5,Living room and balcony
`

var testNow = time.Date(2024, 2, 20, 9, 0, 0, 0, time.UTC)

func getTestSocketPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "test-chores.sock")
}

// startServer starts server in the background and waits for its socket
func startServer(t *testing.T, server *Server) {
	t.Helper()

	t.Cleanup(func() {
		_ = server.Shutdown()
	})

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	go func() { _ = server.Start(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if _, err := os.Stat(server.SocketPath()); err == nil {
			time.Sleep(10 * time.Millisecond)
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("Timeout waiting for daemon socket")
}

func setupTestDaemon(t *testing.T, opts ...Option) (*Server, string) {
	t.Helper()
	socketPath := getTestSocketPath(t)

	server, err := NewServer(socketPath, opts...)
	if err != nil {
		t.Fatalf("Failed to create test daemon: %v", err)
	}
	startServer(t, server)
	return server, socketPath
}

// setupChoreDaemon runs a daemon backed by a real chore service over a temp CSV
func setupChoreDaemon(t *testing.T, opts ...Option) (*Server, string, string) {
	t.Helper()

	csvPath := filepath.Join(t.TempDir(), "chores.csv")
	if err := os.WriteFile(csvPath, []byte(testCSV), 0o644); err != nil {
		t.Fatalf("Failed to write chore file: %v", err)
	}

	server, err := NewServer(getTestSocketPath(t), opts...)
	if err != nil {
		t.Fatalf("Failed to create test daemon: %v", err)
	}
	svc := chore.NewService(store.New(csvPath), nil, server, chore.WithClock(func() time.Time { return testNow }))
	server.SetChoreService(svc)

	startServer(t, server)
	return server, server.SocketPath(), csvPath
}

func connectRawClient(t *testing.T, socketPath string) (net.Conn, *json.Encoder, *json.Decoder) {
	t.Helper()

	conn, err := (&net.Dialer{}).DialContext(context.Background(), "unix", socketPath)
	if err != nil {
		t.Fatalf("Failed to dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	return conn, json.NewEncoder(conn), json.NewDecoder(conn)
}

func sendSubscribeMessage(t *testing.T, encoder *json.Encoder, choreID string) {
	t.Helper()
	msg := events.Message{
		Version:   events.ProtocolVersion,
		Type:      events.MsgSubscribe,
		Subscribe: &events.SubscribeMessage{ChoreID: choreID},
	}
	if err := encoder.Encode(msg); err != nil {
		t.Fatalf("Failed to send subscribe: %v", err)
	}
}

// readMessage reads the next message matching accept, skipping others
func readMessage(t *testing.T, conn net.Conn, decoder *json.Decoder, timeout time.Duration, accept func(events.Message) bool) events.Message {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(timeout))
	defer func() { _ = conn.SetReadDeadline(time.Time{}) }()

	for {
		var msg events.Message
		if err := decoder.Decode(&msg); err != nil {
			t.Fatalf("Failed waiting for message: %v", err)
		}
		if accept(msg) {
			return msg
		}
	}
}

func isEvent(eventType events.EventType) func(events.Message) bool {
	return func(msg events.Message) bool {
		return msg.Type == events.MsgEvent && msg.Event != nil && msg.Event.Type == eventType
	}
}

func setupTestClient(t *testing.T, socketPath string) *events.Client {
	t.Helper()
	t.Setenv("CHORES_EVENT_DEBOUNCE_MS", "10")

	client, err := events.NewClient(socketPath)
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Connect(ctx); err != nil {
		t.Fatalf("Failed to connect client: %v", err)
	}
	return client
}

func waitForEventType(t *testing.T, ch <-chan events.Event, eventType events.EventType, timeout time.Duration) events.Event {
	t.Helper()
	deadline := time.After(timeout)
	for {
		select {
		case event, ok := <-ch:
			if !ok {
				t.Fatal("Channel closed")
			}
			if event.Type == eventType {
				return event
			}
		case <-deadline:
			t.Fatalf("Timeout waiting for %s event", eventType)
			return events.Event{}
		}
	}
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool, what string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("Timeout waiting for %s", what)
}

// ============================================================================
// Server Initialization Tests
// ============================================================================

func TestNewServer_Success(t *testing.T) {
	socketPath := getTestSocketPath(t)

	server, err := NewServer(socketPath)
	if err != nil {
		t.Fatalf("Expected NewServer to succeed, got error: %v", err)
	}
	defer func() { _ = server.Shutdown() }()

	if _, err := os.Stat(socketPath); os.IsNotExist(err) {
		t.Error("Expected socket file to be created")
	}
	if server.refreshInterval != DefaultRefreshInterval {
		t.Errorf("Expected default refresh interval, got %v", server.refreshInterval)
	}
}

func TestNewServer_DirectoryCreation(t *testing.T) {
	nestedPath := filepath.Join(t.TempDir(), "nested", "subdirs", "chores.sock")

	server, err := NewServer(nestedPath)
	if err != nil {
		t.Fatalf("Expected NewServer to create nested directories, got error: %v", err)
	}
	defer func() { _ = server.Shutdown() }()

	if _, err := os.Stat(nestedPath); os.IsNotExist(err) {
		t.Error("Expected socket file to be created in nested directory")
	}
}

func TestNewServer_StaleSocketCleanup(t *testing.T) {
	socketPath := getTestSocketPath(t)

	f, err := os.Create(socketPath)
	if err != nil {
		t.Fatalf("Failed to create stale socket file: %v", err)
	}
	_ = f.Close()

	server, err := NewServer(socketPath)
	if err != nil {
		t.Fatalf("Expected NewServer to succeed after removing stale socket, got error: %v", err)
	}
	defer func() { _ = server.Shutdown() }()
}

func TestNewServer_EnvVarConfiguration(t *testing.T) {
	t.Setenv("CHORES_DAEMON_BROADCAST_BUFFER", "200")
	t.Setenv("CHORES_DAEMON_CLIENT_BUFFER", "20")

	server, err := NewServer(getTestSocketPath(t))
	if err != nil {
		t.Fatalf("Expected NewServer to succeed, got error: %v", err)
	}
	defer func() { _ = server.Shutdown() }()

	if cap(server.broadcast) != 200 {
		t.Errorf("Expected broadcast buffer 200, got %d", cap(server.broadcast))
	}
	if server.clientBufferSize != 20 {
		t.Errorf("Expected client buffer 20, got %d", server.clientBufferSize)
	}
}

func TestNewServer_Options(t *testing.T) {
	server, err := NewServer(getTestSocketPath(t),
		WithRefreshInterval(5*time.Minute),
		WithHealthCheck(time.Second, 3*time.Second),
		WithRefreshInterval(0), // ignored
	)
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}
	defer func() { _ = server.Shutdown() }()

	if server.refreshInterval != 5*time.Minute {
		t.Errorf("Expected 5m refresh interval, got %v", server.refreshInterval)
	}
	if server.pingInterval != time.Second || server.staleAfter != 3*time.Second {
		t.Errorf("Unexpected health settings: %v / %v", server.pingInterval, server.staleAfter)
	}
}

// ============================================================================
// Refresh Tests
// ============================================================================

func TestRefresh_OnStartupAndTimer(t *testing.T) {
	server, _, _ := setupChoreDaemon(t, WithRefreshInterval(30*time.Millisecond))

	waitFor(t, 2*time.Second, func() bool {
		return server.Metrics().RefreshesTotal >= 3
	}, "periodic refreshes")
}

func TestRefresh_BroadcastsStatuses(t *testing.T) {
	server, socketPath, _ := setupChoreDaemon(t)

	conn, encoder, decoder := connectRawClient(t, socketPath)
	sendSubscribeMessage(t, encoder, "")
	waitFor(t, time.Second, func() bool { return server.Metrics().ConnectedClients == 1 }, "client registration")

	server.RequestRefresh()

	msg := readMessage(t, conn, decoder, 2*time.Second, isEvent(events.EventChoresRefreshed))
	if len(msg.Event.Statuses) != 2 {
		t.Fatalf("Expected 2 statuses, got %d", len(msg.Event.Statuses))
	}
	oven := msg.Event.Statuses[0]
	if oven.ID != "clean_oven" || oven.DaysSince != 50 || oven.Classification != models.StatusOverdue {
		t.Errorf("Unexpected status for clean oven: %+v", oven)
	}
	if msg.Event.SequenceID == 0 {
		t.Error("Expected a sequence id")
	}
}

func TestClientChange_TriggersRefresh(t *testing.T) {
	_, socketPath, csvPath := setupChoreDaemon(t)

	listener := setupTestClient(t, socketPath)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	eventChan, err := listener.Listen(ctx)
	if err != nil {
		t.Fatalf("Listen failed: %v", err)
	}

	// another process appends a chore and tells the daemon
	if err := store.New(csvPath).Add(models.Chore{Title: "Mow Lawn", HardDeadlineDays: models.Days(14)}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	writer := setupTestClient(t, socketPath)
	if err := writer.SendEvent(events.Event{Type: events.EventChoresChanged, ChoreID: "mow_lawn"}); err != nil {
		t.Fatalf("SendEvent failed: %v", err)
	}

	deadline := time.After(3 * time.Second)
	for {
		select {
		case event := <-eventChan:
			if event.Type == events.EventChoresRefreshed && len(event.Statuses) == 3 {
				return
			}
		case <-deadline:
			t.Fatal("Timeout waiting for refresh with the new chore")
		}
	}
}

// ============================================================================
// Request Tests
// ============================================================================

func TestMarkDoneRequest(t *testing.T) {
	server, socketPath, csvPath := setupChoreDaemon(t)

	listener := setupTestClient(t, socketPath)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	eventChan, err := listener.Listen(ctx)
	if err != nil {
		t.Fatalf("Listen failed: %v", err)
	}

	resp, err := events.MarkDone(context.Background(), socketPath, "", "clean_oven")
	if err != nil {
		t.Fatalf("MarkDone request failed: %v", err)
	}
	if !resp.OK || resp.Status == nil {
		t.Fatalf("Expected OK response with status, got %+v", resp)
	}
	if resp.Status.Classification != models.StatusOK || resp.Status.LastDone != "2024-02-20" {
		t.Errorf("Unexpected status: %+v", resp.Status)
	}

	data, _ := os.ReadFile(csvPath)
	if !strings.Contains(string(data), "Clean Oven,2024-02-20,30,45") {
		t.Errorf("Chore file not updated:\n%s", data)
	}

	event := waitForEventType(t, eventChan, events.EventChoreDone, 2*time.Second)
	if event.ChoreID != "clean_oven" {
		t.Errorf("Expected chore_done for clean_oven, got %q", event.ChoreID)
	}

	snap := server.Metrics()
	if snap.MarkDoneTotal != 1 || snap.RequestsTotal != 1 {
		t.Errorf("Unexpected request metrics: %+v", snap)
	}
}

func TestMarkDoneRequest_NotFound(t *testing.T) {
	server, socketPath, csvPath := setupChoreDaemon(t)
	before, _ := os.ReadFile(csvPath)

	resp, err := events.MarkDone(context.Background(), socketPath, "", "mow_lawn")
	if !events.IsRemoteCode(err, events.CodeChoreNotFound) {
		t.Fatalf("Expected %s, got %v", events.CodeChoreNotFound, err)
	}
	if resp == nil || resp.OK {
		t.Errorf("Expected failed response, got %+v", resp)
	}

	after, _ := os.ReadFile(csvPath)
	if string(before) != string(after) {
		t.Error("Chore file changed on unknown id")
	}
	if server.Metrics().RequestErrors != 1 {
		t.Errorf("Expected 1 request error, got %d", server.Metrics().RequestErrors)
	}
}

func TestMarkDoneRequest_WrongFile(t *testing.T) {
	server, socketPath, csvPath := setupChoreDaemon(t)
	before, _ := os.ReadFile(csvPath)

	other := filepath.Join(t.TempDir(), "chores.csv")
	_, err := events.MarkDone(context.Background(), socketPath, other, "clean_oven")
	if !events.IsRemoteCode(err, events.CodeWrongFile) {
		t.Fatalf("Expected %s, got %v", events.CodeWrongFile, err)
	}

	after, _ := os.ReadFile(csvPath)
	if string(before) != string(after) {
		t.Error("Chore file changed for a request on another file")
	}
	if server.Metrics().MarkDoneTotal != 0 {
		t.Errorf("Expected no mark done, got %d", server.Metrics().MarkDoneTotal)
	}

	// a symlink to the served file is the same file
	link := filepath.Join(t.TempDir(), "link.csv")
	if err := os.Symlink(csvPath, link); err != nil {
		t.Fatalf("Failed to create symlink: %v", err)
	}
	resp, err := events.MarkDone(context.Background(), socketPath, link, "clean_oven")
	if err != nil {
		t.Fatalf("MarkDone through symlink failed: %v", err)
	}
	if !resp.OK {
		t.Errorf("Expected OK response, got %+v", resp)
	}
}

func TestRequest_Invalid(t *testing.T) {
	_, socketPath, _ := setupChoreDaemon(t)

	tests := []struct {
		name string
		msg  events.Message
		code string
	}{
		{
			"missing chore id",
			events.Message{Version: events.ProtocolVersion, Type: events.MsgRequest, Request: &events.Request{RequestID: "r1", Action: events.ActionMarkDone}},
			events.CodeInvalidRequest,
		},
		{
			"unknown action",
			events.Message{Version: events.ProtocolVersion, Type: events.MsgRequest, Request: &events.Request{RequestID: "r2", Action: "delete", ChoreID: "clean_oven"}},
			events.CodeInvalidRequest,
		},
		{
			"newer protocol",
			events.Message{Version: events.ProtocolVersion + 1, Type: events.MsgRequest, Request: &events.Request{RequestID: "r3", Action: events.ActionMarkDone, ChoreID: "clean_oven"}},
			events.CodeInvalidRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn, encoder, decoder := connectRawClient(t, socketPath)
			if err := encoder.Encode(tt.msg); err != nil {
				t.Fatalf("send: %v", err)
			}
			msg := readMessage(t, conn, decoder, 2*time.Second, func(m events.Message) bool {
				return m.Type == events.MsgResponse
			})
			if msg.Response.RequestID != tt.msg.Request.RequestID {
				t.Errorf("Expected request id %s, got %s", tt.msg.Request.RequestID, msg.Response.RequestID)
			}
			if msg.Response.OK || msg.Response.ErrorCode != tt.code {
				t.Errorf("Expected %s, got %+v", tt.code, msg.Response)
			}
		})
	}
}

func TestRequest_NoService(t *testing.T) {
	_, socketPath := setupTestDaemon(t)

	_, err := events.MarkDone(context.Background(), socketPath, "", "clean_oven")
	if !events.IsRemoteCode(err, events.CodeUnavailable) {
		t.Errorf("Expected %s, got %v", events.CodeUnavailable, err)
	}
}

// ============================================================================
// Broadcast Tests
// ============================================================================

func TestBroadcast_SubscriptionFiltering(t *testing.T) {
	server, socketPath := setupTestDaemon(t)

	conn, encoder, decoder := connectRawClient(t, socketPath)
	sendSubscribeMessage(t, encoder, "water_plants")
	time.Sleep(50 * time.Millisecond)

	_ = server.SendEvent(events.Event{Type: events.EventChoreDone, ChoreID: "clean_oven"})
	_ = server.SendEvent(events.Event{Type: events.EventChoreDone, ChoreID: "water_plants"})
	_ = server.SendEvent(events.Event{Type: events.EventChoresRefreshed})

	first := readMessage(t, conn, decoder, 2*time.Second, isEvent(events.EventChoreDone))
	if first.Event.ChoreID != "water_plants" {
		t.Errorf("Expected only water_plants chore_done, got %q", first.Event.ChoreID)
	}
	readMessage(t, conn, decoder, 2*time.Second, isEvent(events.EventChoresRefreshed))
}

func TestBroadcast_SequenceNumbers(t *testing.T) {
	server, socketPath := setupTestDaemon(t)

	conn, encoder, decoder := connectRawClient(t, socketPath)
	sendSubscribeMessage(t, encoder, "")
	time.Sleep(50 * time.Millisecond)

	for range 3 {
		if err := server.SendEvent(events.Event{Type: events.EventChoresRefreshed}); err != nil {
			t.Fatalf("SendEvent failed: %v", err)
		}
	}

	var last int64
	for range 3 {
		msg := readMessage(t, conn, decoder, 2*time.Second, isEvent(events.EventChoresRefreshed))
		if msg.Event.SequenceID <= last {
			t.Errorf("Sequence not increasing: %d after %d", msg.Event.SequenceID, last)
		}
		last = msg.Event.SequenceID
	}
}

// ============================================================================
// Health Tests
// ============================================================================

func TestHealth_DropsSilentClient(t *testing.T) {
	server, socketPath := setupTestDaemon(t, WithHealthCheck(20*time.Millisecond, 60*time.Millisecond))

	conn, _, decoder := connectRawClient(t, socketPath)
	waitFor(t, time.Second, func() bool { return server.Metrics().ConnectedClients == 1 }, "client registration")

	// never answer pings; the server should hang up
	_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	for {
		var msg events.Message
		if err := decoder.Decode(&msg); err != nil {
			break
		}
	}
	waitFor(t, time.Second, func() bool { return server.Metrics().ConnectedClients == 0 }, "client removal")
}

func TestHealth_PongKeepsClient(t *testing.T) {
	server, socketPath := setupTestDaemon(t, WithHealthCheck(20*time.Millisecond, 60*time.Millisecond))

	client := setupTestClient(t, socketPath)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if _, err := client.Listen(ctx); err != nil {
		t.Fatalf("Listen failed: %v", err)
	}

	time.Sleep(300 * time.Millisecond)
	if got := server.Metrics().ConnectedClients; got != 1 {
		t.Errorf("Expected responsive client to stay connected, got %d clients", got)
	}
}

// ============================================================================
// Shutdown Tests
// ============================================================================

func TestShutdown_Idempotent(t *testing.T) {
	server, socketPath := setupTestDaemon(t)

	if err := server.Shutdown(); err != nil {
		t.Fatalf("First shutdown failed: %v", err)
	}
	if err := server.Shutdown(); err != nil {
		t.Fatalf("Second shutdown failed: %v", err)
	}

	if _, err := os.Stat(socketPath); !os.IsNotExist(err) {
		t.Error("Expected socket file to be removed")
	}
	if err := server.SendEvent(events.Event{Type: events.EventChoresRefreshed}); err == nil {
		t.Error("Expected SendEvent to fail after shutdown")
	}
}

func TestShutdown_ContextCancel(t *testing.T) {
	server, err := NewServer(getTestSocketPath(t))
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- server.Start(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Start returned error: %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Start did not return after context cancel")
	}
}
