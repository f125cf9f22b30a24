package launcher

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thenoetrevino/chores/internal/events"
	"github.com/thenoetrevino/chores/internal/testutil"
)

func TestConnectDaemon_NotRunning(t *testing.T) {
	client, ch := connectDaemon(context.Background(), testutil.GetTestSocketPath(t))
	assert.Nil(t, client)
	assert.Nil(t, ch)
}

func TestConnectDaemon_EmptySocketPath(t *testing.T) {
	client, ch := connectDaemon(context.Background(), "")
	assert.Nil(t, client)
	assert.Nil(t, ch)
}

func TestConnectDaemon_ReceivesEvents(t *testing.T) {
	server, socketPath := testutil.SetupTestDaemon(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client, ch := connectDaemon(ctx, socketPath)
	require.NotNil(t, client)
	require.NotNil(t, ch)
	defer func() { _ = client.Close() }()

	testutil.WaitForCondition(t, func() bool {
		return server.Metrics().ConnectedClients == 1
	}, 2*time.Second, "client registered")

	require.NoError(t, server.SendEvent(events.Event{Type: events.EventChoresRefreshed}))
	event := testutil.WaitForEventType(t, ch, events.EventChoresRefreshed, 2*time.Second)
	assert.Equal(t, events.EventChoresRefreshed, event.Type)
}
