package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/relayline/warm-transfer/internal/middleware"
	"github.com/relayline/warm-transfer/internal/ws"
	"github.com/relayline/warm-transfer/pkg/logger"
)

// WSHandler upgrades room notification connections.
type WSHandler struct {
	hub      *ws.Hub
	logger   *logger.Logger
	upgrader websocket.Upgrader
}

// NewWSHandler creates a new WebSocket handler.
func NewWSHandler(hub *ws.Hub, log *logger.Logger) *WSHandler {
	return &WSHandler{
		hub:    hub,
		logger: log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Browser clients connect from arbitrary origins; access
			// control is handled at the room-token level.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Serve handles GET /ws/{room}
func (h *WSHandler) Serve(w http.ResponseWriter, r *http.Request) {
	roomName := chi.URLParam(r, "room")
	if err := middleware.ValidateRoomName(roomName); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed",
			zap.String("room", roomName),
			zap.Error(err),
		)
		return
	}

	client := ws.NewClient(h.hub, conn, roomName)
	h.hub.Subscribe(client)

	go client.WritePump()
	go client.ReadPump()
}
