package testutil

import (
	"context"
	"errors"
	"sync"

	"github.com/thenoetrevino/chores/internal/events"
)

// FakePublisher records published events. It satisfies events.EventPublisher.
type FakePublisher struct {
	mu sync.Mutex

	SentEvents []events.Event
	Fail       bool

	ConnectCalled bool
	CloseCalled   bool

	SubscriptionHistory []string
}

var _ events.EventPublisher = (*FakePublisher)(nil)

// NewFakePublisher creates an empty FakePublisher
func NewFakePublisher() *FakePublisher {
	return &FakePublisher{}
}

func (f *FakePublisher) Connect(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ConnectCalled = true
	return nil
}

// SendEvent records the event, or fails when Fail is set
func (f *FakePublisher) SendEvent(event events.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Fail {
		return errors.New("fake publisher failure")
	}
	f.SentEvents = append(f.SentEvents, event)
	return nil
}

// Listen returns a closed channel
func (f *FakePublisher) Listen(ctx context.Context) (<-chan events.Event, error) {
	ch := make(chan events.Event)
	close(ch)
	return ch, nil
}

func (f *FakePublisher) Subscribe(choreID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.SubscriptionHistory = append(f.SubscriptionHistory, choreID)
	return nil
}

func (f *FakePublisher) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.CloseCalled = true
	return nil
}

// Events returns a copy of the recorded events
func (f *FakePublisher) Events() []events.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]events.Event, len(f.SentEvents))
	copy(out, f.SentEvents)
	return out
}

// EventsOfType returns the recorded events of one type
func (f *FakePublisher) EventsOfType(t events.EventType) []events.Event {
	var out []events.Event
	for _, e := range f.Events() {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}
