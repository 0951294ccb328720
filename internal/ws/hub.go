// Package ws provides per-room WebSocket fan-out for transfer
// notifications and room updates.
package ws

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/relayline/warm-transfer/pkg/logger"
	"github.com/relayline/warm-transfer/pkg/metrics"
)

// transferFramePrefix marks the distinguished frame signaling an
// in-progress transfer to the source room's listeners.
const transferFramePrefix = "TRANSFER_NOTIFICATION"

// TransferFrame encodes the caller's new credential, the destination
// room, and the transfer id into the notification wire format.
func TransferFrame(callerToken, destinationRoom, transferID string) string {
	return fmt.Sprintf("%s:%s:%s:%s", transferFramePrefix, callerToken, destinationRoom, transferID)
}

// Hub tracks WebSocket listeners per room name and broadcasts text frames
// to them. Delivery is best-effort, at most once per listener; clients
// whose send queue is full or whose connection broke are pruned on send.
type Hub struct {
	logger *logger.Logger

	mu    sync.RWMutex
	rooms map[string]map[uuid.UUID]*Client
}

// NewHub creates an empty hub.
func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		logger: log,
		rooms:  make(map[string]map[uuid.UUID]*Client),
	}
}

// Subscribe registers a client as a listener of its room.
func (h *Hub) Subscribe(client *Client) {
	h.mu.Lock()
	if _, ok := h.rooms[client.Room]; !ok {
		h.rooms[client.Room] = make(map[uuid.UUID]*Client)
	}
	h.rooms[client.Room][client.ID] = client
	h.mu.Unlock()

	metrics.WSConnectionsActive.Inc()
	h.logger.Debug("ws client subscribed",
		zap.String("room", client.Room),
		zap.String("client_id", client.ID.String()),
	)
}

// Unsubscribe removes a client, closing its send queue. Safe to call more
// than once.
func (h *Hub) Unsubscribe(client *Client) {
	h.mu.Lock()
	room, ok := h.rooms[client.Room]
	if ok {
		if _, ok := room[client.ID]; ok {
			delete(room, client.ID)
			close(client.Send)
			if len(room) == 0 {
				delete(h.rooms, client.Room)
			}
			metrics.WSConnectionsActive.Dec()
		}
	}
	h.mu.Unlock()
}

// Broadcast sends a text frame to every listener of the room. Listeners
// that cannot accept the frame are pruned.
func (h *Hub) Broadcast(roomName string, message []byte) {
	h.mu.RLock()
	var stale []*Client
	for _, client := range h.rooms[roomName] {
		select {
		case client.Send <- message:
		default:
			stale = append(stale, client)
		}
	}
	h.mu.RUnlock()

	for _, client := range stale {
		h.logger.Warn("pruning slow ws client",
			zap.String("room", roomName),
			zap.String("client_id", client.ID.String()),
		)
		h.Unsubscribe(client)
	}
}

// Listeners reports how many clients are subscribed to the room.
func (h *Hub) Listeners(roomName string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[roomName])
}
