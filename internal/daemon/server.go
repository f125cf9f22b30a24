// Package daemon is the long-running chores process: it refreshes chore
// statuses on a timer, broadcasts them to connected clients and dispatches
// mark_done requests.
package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/thenoetrevino/chores/internal/events"
	"github.com/thenoetrevino/chores/internal/models"
	"github.com/thenoetrevino/chores/internal/store"
)

const (
	DefaultRefreshInterval = time.Hour
	DefaultPingInterval    = 30 * time.Second
	DefaultStaleAfter      = 90 * time.Second
)

// ChoreService is what the daemon drives
type ChoreService interface {
	Path() string
	Refresh(ctx context.Context) ([]models.ChoreStatus, error)
	MarkDone(ctx context.Context, id string) (*models.ChoreStatus, error)
}

// client represents a connected client to the daemon
type client struct {
	conn         net.Conn
	send         chan events.Message
	subscription events.SubscribeMessage
	lastPong     time.Time
	closed       bool
	mu           sync.Mutex // Protects subscription, lastPong and closed
}

// closeSend closes the send queue once; later sends are dropped
func (c *client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// Server represents the chores daemon
type Server struct {
	socketPath       string
	listener         net.Listener
	clients          map[*client]bool
	mu               sync.RWMutex
	ctx              context.Context
	cancel           context.CancelFunc
	broadcast        chan events.Event
	refreshNow       chan struct{}
	metrics          *Metrics
	sequenceCounter  atomic.Int64
	clientBufferSize int
	shutdownOnce     sync.Once
	logger           *slog.Logger

	service         ChoreService
	refreshInterval time.Duration
	pingInterval    time.Duration
	staleAfter      time.Duration
}

// Option configures a Server
type Option func(*Server)

// WithRefreshInterval sets how often chore statuses are recomputed
func WithRefreshInterval(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.refreshInterval = d
		}
	}
}

// WithHealthCheck sets the ping interval and how long a client may stay
// silent before it is dropped
func WithHealthCheck(ping, staleAfter time.Duration) Option {
	return func(s *Server) {
		if ping > 0 {
			s.pingInterval = ping
		}
		if staleAfter > 0 {
			s.staleAfter = staleAfter
		}
	}
}

// WithLogger sets the daemon logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithChoreService sets the service refreshed and dispatched to.
// SetChoreService does the same after construction.
func WithChoreService(svc ChoreService) Option {
	return func(s *Server) {
		s.service = svc
	}
}

// getEnvInt reads an integer from an environment variable, returning defaultVal if not set or invalid
func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil && parsed > 0 {
			return parsed
		}
	}
	return defaultVal
}

// NewServer creates a new daemon server listening on socketPath
func NewServer(socketPath string, opts ...Option) (*Server, error) {
	if dir := filepath.Dir(socketPath); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("failed to create socket directory: %w", err)
		}
	}

	// Remove stale socket file if it exists
	if _, err := os.Stat(socketPath); err == nil {
		if err := os.Remove(socketPath); err != nil {
			return nil, fmt.Errorf("failed to remove stale socket: %w", err)
		}
	}

	lc := net.ListenConfig{}
	listener, err := lc.Listen(context.Background(), "unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create socket listener: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	broadcastBuffer := getEnvInt("CHORES_DAEMON_BROADCAST_BUFFER", 100)
	clientBuffer := getEnvInt("CHORES_DAEMON_CLIENT_BUFFER", 10)

	s := &Server{
		socketPath:       socketPath,
		listener:         listener,
		clients:          make(map[*client]bool),
		ctx:              ctx,
		cancel:           cancel,
		broadcast:        make(chan events.Event, broadcastBuffer),
		refreshNow:       make(chan struct{}, 1),
		metrics:          NewMetrics(),
		clientBufferSize: clientBuffer,
		logger:           slog.Default(),
		refreshInterval:  DefaultRefreshInterval,
		pingInterval:     DefaultPingInterval,
		staleAfter:       DefaultStaleAfter,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// SetChoreService attaches the chore service. Call it before Start; the
// service usually publishes through this server, so it is built afterwards.
func (s *Server) SetChoreService(svc ChoreService) {
	s.service = svc
}

// SocketPath returns the path the server listens on
func (s *Server) SocketPath() string {
	return s.socketPath
}

// Metrics returns a snapshot of the daemon counters
func (s *Server) Metrics() MetricsSnapshot {
	return s.metrics.GetSnapshot()
}

// Start runs the daemon until ctx is cancelled or Shutdown is called.
// It runs the accept, broadcast, health and refresh loops.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("daemon starting", "socket_path", s.socketPath, "refresh_interval", s.refreshInterval)

	combinedCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		select {
		case <-s.ctx.Done():
			cancel()
		case <-combinedCtx.Done():
		}
	}()

	acceptErr := make(chan error, 1)
	go func() {
		acceptErr <- s.acceptLoop(combinedCtx)
	}()

	go s.broadcastLoop(combinedCtx)
	go s.monitorHealth(combinedCtx)
	if s.service != nil {
		go s.refreshLoop(combinedCtx)
	} else {
		s.logger.Warn("no chore service attached, refresh and requests are disabled")
	}

	select {
	case <-combinedCtx.Done():
		s.logger.Info("daemon context cancelled, shutting down")
	case err := <-acceptErr:
		if err != nil {
			s.logger.Error("accept loop error", "error", err)
		}
	}

	return s.Shutdown()
}

// acceptLoop accepts incoming client connections
func (s *Server) acceptLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		// Deadline so the loop can notice cancellation
		if ul, ok := s.listener.(*net.UnixListener); ok {
			if err := ul.SetDeadline(time.Now().Add(1 * time.Second)); err != nil {
				s.logger.Warn("error setting listener deadline", "error", err)
			}
		}

		conn, err := s.listener.Accept()
		if err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				continue
			}
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("accept error: %w", err)
		}

		c := &client{
			conn:     conn,
			send:     make(chan events.Message, s.clientBufferSize),
			lastPong: time.Now(),
		}

		s.mu.Lock()
		s.clients[c] = true
		s.mu.Unlock()

		s.updateClientCount()
		s.logger.Debug("client connected", "total_clients", s.getClientCount())

		go s.handleClient(c)
		go s.clientWriter(c)
	}
}

// refreshLoop recomputes statuses at start-up, on every tick and whenever
// a client reports that it changed the chore file
func (s *Server) refreshLoop(ctx context.Context) {
	s.refresh(ctx, "startup")

	ticker := time.NewTicker(s.refreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.refresh(ctx, "timer")
		case <-s.refreshNow:
			s.refresh(ctx, "client")
		}
	}
}

func (s *Server) refresh(ctx context.Context, reason string) {
	statuses, err := s.service.Refresh(ctx)
	if err != nil {
		if ctx.Err() == nil {
			s.logger.Error("refresh failed", "reason", reason, "error", err)
		}
		return
	}
	s.metrics.IncRefreshesTotal()
	s.logger.Debug("refreshed chores", "reason", reason, "count", len(statuses))
}

// RequestRefresh schedules a refresh without blocking. Requests made while
// one is already pending are coalesced.
func (s *Server) RequestRefresh() {
	select {
	case s.refreshNow <- struct{}{}:
	default:
	}
}

// broadcastLoop distributes events to subscribed clients
func (s *Server) broadcastLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return

		case event := <-s.broadcast:
			event.SequenceID = s.sequenceCounter.Add(1)

			s.mu.RLock()
			for c := range s.clients {
				c.mu.Lock()
				isSubscribed := event.Matches(c.subscription.ChoreID)
				c.mu.Unlock()

				if !isSubscribed {
					continue
				}

				msg := events.Message{
					Version: events.ProtocolVersion,
					Type:    events.MsgEvent,
					Event:   &event,
				}

				// Non-blocking send - if client is slow, skip
				if !s.sendToClient(c, msg) {
					s.logger.Warn("client send queue full, event dropped", "event_type", event.Type)
				}
			}
			s.mu.RUnlock()
		}
	}
}

// handleClient reads messages from a connected client
func (s *Server) handleClient(c *client) {
	defer func() {
		s.removeClient(c)
		s.logger.Debug("client disconnected", "total_clients", s.getClientCount())
	}()

	decoder := json.NewDecoder(c.conn)

	for {
		var msg events.Message

		if err := decoder.Decode(&msg); err != nil {
			return
		}

		if msg.Version != 0 && msg.Version != events.ProtocolVersion {
			s.logger.Warn("protocol version mismatch", "got", msg.Version, "expected", events.ProtocolVersion)
		}

		// any traffic proves the client is alive
		c.mu.Lock()
		c.lastPong = time.Now()
		c.mu.Unlock()

		switch msg.Type {
		case events.MsgEvent:
			if msg.Event == nil {
				continue
			}
			s.metrics.IncEventsReceived()
			if msg.Event.Type == events.EventPong {
				continue
			}
			// the client changed the chore file itself
			s.RequestRefresh()

		case events.MsgSubscribe:
			if msg.Subscribe != nil {
				c.mu.Lock()
				c.subscription = *msg.Subscribe
				c.mu.Unlock()
				s.logger.Debug("client subscribed", "chore_id", msg.Subscribe.ChoreID)
			}

		case events.MsgRequest:
			if msg.Request == nil {
				continue
			}
			resp := s.dispatch(s.ctx, msg)
			if !s.sendToClient(c, events.Message{
				Version:  events.ProtocolVersion,
				Type:     events.MsgResponse,
				Response: &resp,
			}) {
				s.logger.Warn("client send queue full, response dropped", "request_id", resp.RequestID)
			}
		}
	}
}

// dispatch runs one request and builds its response
func (s *Server) dispatch(ctx context.Context, msg events.Message) events.Response {
	req := msg.Request
	s.metrics.IncRequestsTotal()

	fail := func(code string, err error) events.Response {
		s.metrics.IncRequestErrors()
		return events.Response{RequestID: req.RequestID, ErrorCode: code, Error: err.Error()}
	}

	if !msg.Supported() {
		return fail(events.CodeInvalidRequest, fmt.Errorf("unsupported protocol version %d", msg.Version))
	}
	if s.service == nil {
		return fail(events.CodeUnavailable, errors.New("daemon has no chore service"))
	}
	if req.CSVPath != "" && !sameFile(req.CSVPath, s.service.Path()) {
		return fail(events.CodeWrongFile, fmt.Errorf("daemon serves %s, not %s", s.service.Path(), req.CSVPath))
	}

	switch req.Action {
	case events.ActionMarkDone:
		if req.ChoreID == "" {
			return fail(events.CodeInvalidRequest, errors.New("chore_id is required"))
		}
		st, err := s.service.MarkDone(ctx, req.ChoreID)
		if errors.Is(err, store.ErrChoreNotFound) {
			return fail(events.CodeChoreNotFound, err)
		}
		if err != nil {
			s.logger.Error("mark done failed", "chore_id", req.ChoreID, "error", err)
			return fail(events.CodeInternal, err)
		}
		s.metrics.IncMarkDoneTotal()
		return events.Response{RequestID: req.RequestID, OK: true, Status: st}

	default:
		return fail(events.CodeInvalidRequest, fmt.Errorf("unknown action %q", req.Action))
	}
}

// sameFile reports whether a and b name the same chore file. A file that
// does not exist yet only matches its own cleaned path.
func sameFile(a, b string) bool {
	if filepath.Clean(a) == filepath.Clean(b) {
		return true
	}
	ai, err := os.Stat(a)
	if err != nil {
		return false
	}
	bi, err := os.Stat(b)
	if err != nil {
		return false
	}
	return os.SameFile(ai, bi)
}

// clientWriter sends messages to a client
func (s *Server) clientWriter(c *client) {
	encoder := json.NewEncoder(c.conn)

	for msg := range c.send {
		if err := encoder.Encode(msg); err != nil {
			return
		}
	}
}

// monitorHealth sends ping messages and removes stale clients
func (s *Server) monitorHealth(ctx context.Context) {
	pingTicker := time.NewTicker(s.pingInterval)
	defer pingTicker.Stop()

	healthTicker := time.NewTicker(2 * s.pingInterval)
	defer healthTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-pingTicker.C:
			pingMsg := events.Message{
				Version: events.ProtocolVersion,
				Type:    events.MsgPing,
				Event:   &events.Event{Type: events.EventPing},
			}
			for _, c := range s.snapshotClients() {
				if !s.sendToClient(c, pingMsg) {
					s.logger.Debug("failed to send ping to client (queue full)")
				}
			}

		case <-healthTicker.C:
			// collect under the read lock, remove outside it
			now := time.Now()
			var stale []*client
			for _, c := range s.snapshotClients() {
				c.mu.Lock()
				silent := now.Sub(c.lastPong)
				c.mu.Unlock()

				if silent > s.staleAfter {
					s.logger.Info("removing stale client", "silent_for", silent)
					stale = append(stale, c)
				}
			}
			for _, c := range stale {
				s.removeClient(c)
			}
		}
	}
}

// SendEvent queues an event for broadcast without blocking.
// It lets the chore service publish in-process the same way clients do.
func (s *Server) SendEvent(event events.Event) error {
	if s.ctx.Err() != nil {
		return errors.New("daemon is shut down")
	}
	select {
	case s.broadcast <- event:
		s.metrics.IncEventsPublished()
		return nil
	default:
		return fmt.Errorf("broadcast channel full")
	}
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown() error {
	s.shutdownOnce.Do(func() {
		s.logger.Info("shutting down daemon")

		s.cancel()

		if s.listener != nil {
			if err := s.listener.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
				s.logger.Warn("error closing listener", "error", err)
			}
		}

		s.mu.Lock()
		for c := range s.clients {
			if err := c.conn.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
				s.logger.Warn("error closing client connection", "error", err)
			}
			c.closeSend()
		}
		s.clients = make(map[*client]bool)
		s.mu.Unlock()
		s.updateClientCount()

		if err := os.Remove(s.socketPath); err != nil && !os.IsNotExist(err) {
			s.logger.Warn("failed to remove socket file", "error", err)
		}
	})

	return nil
}

// Helper methods

func (s *Server) getClientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

func (s *Server) snapshotClients() []*client {
	s.mu.RLock()
	defer s.mu.RUnlock()
	clients := make([]*client, 0, len(s.clients))
	for c := range s.clients {
		clients = append(clients, c)
	}
	return clients
}

func (s *Server) updateClientCount() {
	s.metrics.SetConnectedClients(int32(s.getClientCount()))
}

// removeClient safely removes a client from the server
func (s *Server) removeClient(c *client) {
	s.mu.Lock()
	delete(s.clients, c)
	s.mu.Unlock()

	if err := c.conn.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
		s.logger.Debug("error closing client connection", "error", err)
	}
	c.closeSend()

	s.updateClientCount()
}

// sendToClient attempts to send a message to a client (non-blocking).
// Returns false if the queue is full or the client is gone.
func (s *Server) sendToClient(c *client, msg events.Message) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}

	select {
	case c.send <- msg:
		s.metrics.IncEventsSent()
		return true
	default:
		return false
	}
}
