package events

import (
	"time"

	"github.com/thenoetrevino/chores/internal/models"
)

// ProtocolVersion is stamped on every message. Peers ignore messages
// carrying a newer version than they understand.
const ProtocolVersion = 1

// EventType indicates what kind of change occurred
type EventType string

const (
	// EventChoresRefreshed carries the full recomputed status list
	EventChoresRefreshed EventType = "chores_refreshed"
	// EventChoreDone carries the status of the chore that was just marked done
	EventChoreDone EventType = "chore_done"
	// EventChoresChanged is sent by clients that modified the chore file
	// themselves; the daemon answers with a refresh.
	EventChoresChanged EventType = "chores_changed"
	EventPing          EventType = "ping"
	EventPong          EventType = "pong"
)

// Event is a chore status notification
type Event struct {
	Type       EventType            `json:"type"`
	ChoreID    string               `json:"chore_id,omitempty"` // empty = every chore
	Statuses   []models.ChoreStatus `json:"statuses,omitempty"`
	Timestamp  time.Time            `json:"timestamp"`
	SequenceID int64                `json:"sequence_id"` // monotonically increasing, assigned by the daemon
}

// Matches reports whether a subscriber interested in choreID should see the event
func (e Event) Matches(choreID string) bool {
	return choreID == "" || e.ChoreID == "" || e.ChoreID == choreID
}

// SubscribeMessage is sent by clients to pick which chore updates they receive
type SubscribeMessage struct {
	ChoreID string `json:"chore_id"` // "" = all chores
}

// Action names a request the daemon can dispatch
type Action string

// ActionMarkDone marks Request.ChoreID done
const ActionMarkDone Action = "mark_done"

// Request asks the daemon to perform an action
type Request struct {
	RequestID string `json:"request_id"`
	Action    Action `json:"action"`
	ChoreID   string `json:"chore_id"`
	// CSVPath is the file the caller works on; empty accepts whatever the
	// daemon serves
	CSVPath string `json:"csv_path,omitempty"`
}

// Error codes carried by Response.ErrorCode
const (
	CodeChoreNotFound  = "CHORE_NOT_FOUND"
	CodeInvalidRequest = "INVALID_REQUEST"
	CodeUnavailable    = "UNAVAILABLE"
	CodeInternal       = "INTERNAL"
	CodeWrongFile      = "WRONG_FILE"
)

// Response answers a Request with the same RequestID
type Response struct {
	RequestID string              `json:"request_id"`
	OK        bool                `json:"ok"`
	ErrorCode string              `json:"error_code,omitempty"`
	Error     string              `json:"error,omitempty"`
	Status    *models.ChoreStatus `json:"status,omitempty"`
}

// Message types on the wire
const (
	MsgEvent     = "event"
	MsgSubscribe = "subscribe"
	MsgPing      = "ping"
	MsgPong      = "pong"
	MsgRequest   = "request"
	MsgResponse  = "response"
)

// Message wraps events and control messages for the wire protocol.
// Messages are newline-delimited JSON.
type Message struct {
	Version   int               `json:"version"`
	Type      string            `json:"type"`
	Event     *Event            `json:"event,omitempty"`
	Subscribe *SubscribeMessage `json:"subscribe,omitempty"`
	Request   *Request          `json:"request,omitempty"`
	Response  *Response         `json:"response,omitempty"`
}

// Supported reports whether this side can interpret the message
func (m Message) Supported() bool {
	return m.Version <= ProtocolVersion
}
