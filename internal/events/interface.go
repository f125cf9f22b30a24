package events

import "context"

// Sender is the publishing half of EventPublisher. The daemon server
// implements it too, so services publish the same way in and out of process.
type Sender interface {
	SendEvent(event Event) error
}

// EventPublisher defines the interface for sending and receiving events
type EventPublisher interface {
	Sender

	// Connect establishes a connection to the daemon socket
	Connect(ctx context.Context) error

	// Listen starts listening for events from the daemon
	Listen(ctx context.Context) (<-chan Event, error)

	// Subscribe changes the subscription to a single chore ("" = all)
	Subscribe(choreID string) error

	// Close closes the connection to the daemon and stops all goroutines
	Close() error
}

// Compile-time verification that *Client implements EventPublisher
var _ EventPublisher = (*Client)(nil)
