package ws

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relayline/warm-transfer/pkg/logger"
)

func newTestClient(hub *Hub, room string, queue int) *Client {
	return &Client{
		ID:   uuid.New(),
		Room: room,
		Send: make(chan []byte, queue),
		hub:  hub,
	}
}

func TestTransferFrame(t *testing.T) {
	frame := TransferFrame("tok-123", "support-2", "xfer-9")
	assert.Equal(t, "TRANSFER_NOTIFICATION:tok-123:support-2:xfer-9", frame)
}

func TestBroadcastReachesRoomListenersOnly(t *testing.T) {
	hub := NewHub(logger.NewNop())

	a := newTestClient(hub, "support-1", 4)
	b := newTestClient(hub, "support-1", 4)
	other := newTestClient(hub, "support-2", 4)
	hub.Subscribe(a)
	hub.Subscribe(b)
	hub.Subscribe(other)

	hub.Broadcast("support-1", []byte("hello"))

	assert.Equal(t, []byte("hello"), <-a.Send)
	assert.Equal(t, []byte("hello"), <-b.Send)
	assert.Empty(t, other.Send)
}

func TestUnsubscribeIsIdempotent(t *testing.T) {
	hub := NewHub(logger.NewNop())

	c := newTestClient(hub, "support-1", 1)
	hub.Subscribe(c)
	require.Equal(t, 1, hub.Listeners("support-1"))

	hub.Unsubscribe(c)
	assert.Zero(t, hub.Listeners("support-1"))

	// Second unsubscribe must not panic on the closed channel.
	hub.Unsubscribe(c)
	assert.Zero(t, hub.Listeners("support-1"))
}

func TestBroadcastPrunesFullClients(t *testing.T) {
	hub := NewHub(logger.NewNop())

	slow := newTestClient(hub, "support-1", 1)
	hub.Subscribe(slow)

	hub.Broadcast("support-1", []byte("one"))
	require.Equal(t, 1, hub.Listeners("support-1"))

	// The queue is full now; the next broadcast drops the client.
	hub.Broadcast("support-1", []byte("two"))
	assert.Zero(t, hub.Listeners("support-1"))
}

func TestBroadcastToEmptyRoom(t *testing.T) {
	hub := NewHub(logger.NewNop())
	hub.Broadcast("nobody-here", []byte("hello"))
	assert.Zero(t, hub.Listeners("nobody-here"))
}
