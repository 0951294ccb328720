package ws

import (
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
)

// Client is one WebSocket listener bound to a room name.
type Client struct {
	ID   uuid.UUID
	Room string
	Conn *websocket.Conn
	Send chan []byte

	hub *Hub
}

// NewClient wraps an upgraded connection as a listener of roomName.
func NewClient(hub *Hub, conn *websocket.Conn, roomName string) *Client {
	return &Client{
		ID:   uuid.New(),
		Room: roomName,
		Conn: conn,
		Send: make(chan []byte, 64),
		hub:  hub,
	}
}

// ReadPump consumes inbound frames and re-broadcasts them to the room.
// It unsubscribes the client when the connection drops.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unsubscribe(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Warn("ws read error", zap.Error(err))
			}
			return
		}
		c.hub.Broadcast(c.Room, message)
	}
}

// WritePump drains the send queue onto the connection and keeps it alive
// with pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
