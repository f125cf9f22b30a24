package daemon

import (
	"sync/atomic"
	"time"
)

// Metrics tracks daemon statistics using atomic operations for thread-safety
type Metrics struct {
	EventsSent       atomic.Int64 // messages queued to clients
	EventsReceived   atomic.Int64 // events received from clients
	EventsPublished  atomic.Int64 // events accepted for broadcast
	RefreshesTotal   atomic.Int64
	RequestsTotal    atomic.Int64
	RequestErrors    atomic.Int64
	MarkDoneTotal    atomic.Int64
	ConnectedClients atomic.Int32
	StartTime        time.Time
}

// NewMetrics creates a new Metrics instance
func NewMetrics() *Metrics {
	return &Metrics{
		StartTime: time.Now(),
	}
}

func (m *Metrics) IncEventsSent()      { m.EventsSent.Add(1) }
func (m *Metrics) IncEventsReceived()  { m.EventsReceived.Add(1) }
func (m *Metrics) IncEventsPublished() { m.EventsPublished.Add(1) }
func (m *Metrics) IncRefreshesTotal()  { m.RefreshesTotal.Add(1) }
func (m *Metrics) IncRequestsTotal()   { m.RequestsTotal.Add(1) }
func (m *Metrics) IncRequestErrors()   { m.RequestErrors.Add(1) }
func (m *Metrics) IncMarkDoneTotal()   { m.MarkDoneTotal.Add(1) }

// SetConnectedClients sets the current connected clients count
func (m *Metrics) SetConnectedClients(count int32) {
	m.ConnectedClients.Store(count)
}

// MetricsSnapshot represents a point-in-time snapshot of metrics
type MetricsSnapshot struct {
	EventsSent       int64     `json:"events_sent"`
	EventsReceived   int64     `json:"events_received"`
	EventsPublished  int64     `json:"events_published"`
	RefreshesTotal   int64     `json:"refreshes_total"`
	RequestsTotal    int64     `json:"requests_total"`
	RequestErrors    int64     `json:"request_errors"`
	MarkDoneTotal    int64     `json:"mark_done_total"`
	ConnectedClients int32     `json:"connected_clients"`
	StartTime        time.Time `json:"start_time"`
	Uptime           string    `json:"uptime"`
}

// GetSnapshot returns a snapshot of current metrics
func (m *Metrics) GetSnapshot() MetricsSnapshot {
	return MetricsSnapshot{
		EventsSent:       m.EventsSent.Load(),
		EventsReceived:   m.EventsReceived.Load(),
		EventsPublished:  m.EventsPublished.Load(),
		RefreshesTotal:   m.RefreshesTotal.Load(),
		RequestsTotal:    m.RequestsTotal.Load(),
		RequestErrors:    m.RequestErrors.Load(),
		MarkDoneTotal:    m.MarkDoneTotal.Load(),
		ConnectedClients: m.ConnectedClients.Load(),
		StartTime:        m.StartTime,
		Uptime:           time.Since(m.StartTime).Round(time.Second).String(),
	}
}
