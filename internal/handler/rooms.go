// Package handler provides HTTP handlers for the API.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/relayline/warm-transfer/internal/middleware"
	"github.com/relayline/warm-transfer/internal/model"
	"github.com/relayline/warm-transfer/internal/service"
	"github.com/relayline/warm-transfer/internal/store"
	"github.com/relayline/warm-transfer/pkg/logger"
)

// RoomHandler handles room and transcript endpoints.
type RoomHandler struct {
	registry  *service.RoomRegistry
	snapshots store.SnapshotStore
	logger    *logger.Logger
}

// NewRoomHandler creates a new room handler. snapshots may be nil, which
// disables snapshot persistence.
func NewRoomHandler(registry *service.RoomRegistry, snapshots store.SnapshotStore, log *logger.Logger) *RoomHandler {
	return &RoomHandler{
		registry:  registry,
		snapshots: snapshots,
		logger:    log,
	}
}

// Create handles POST /api/rooms/create and POST /api/token/generate,
// which share request and response shapes.
func (h *RoomHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CreateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := middleware.ValidateRoomName(req.RoomName); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := middleware.ValidateParticipantName(req.ParticipantName); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	handle, err := h.registry.CreateRoom(r.Context(), req.RoomName, req.ParticipantName, req.IsAgent)
	if err != nil {
		h.logger.Error("failed to create room", zap.String("room", req.RoomName), zap.Error(err))
		writeServiceError(w, err)
		return
	}

	h.persistSnapshot(r, req.RoomName)
	writeJSON(w, http.StatusOK, handle)
}

// Join handles POST /api/rooms/join
func (h *RoomHandler) Join(w http.ResponseWriter, r *http.Request) {
	var req model.CreateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := middleware.ValidateRoomName(req.RoomName); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := middleware.ValidateParticipantName(req.ParticipantName); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	handle, err := h.registry.JoinRoom(r.Context(), req.RoomName, req.ParticipantName, req.IsAgent)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, handle)
}

// Participants handles GET /api/rooms/{room}/participants
func (h *RoomHandler) Participants(w http.ResponseWriter, r *http.Request) {
	roomName := chi.URLParam(r, "room")
	if err := middleware.ValidateRoomName(roomName); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"room_name":    roomName,
		"participants": h.registry.Participants(roomName),
	})
}

// RemoveParticipant handles DELETE /api/rooms/{room}/participants/{identity}
func (h *RoomHandler) RemoveParticipant(w http.ResponseWriter, r *http.Request) {
	roomName := chi.URLParam(r, "room")
	identity := chi.URLParam(r, "identity")

	if err := middleware.ValidateRoomName(roomName); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := middleware.ValidateParticipantName(identity); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.registry.RemoveParticipant(r.Context(), roomName, identity); err != nil {
		writeServiceError(w, err)
		return
	}

	h.persistSnapshot(r, roomName)
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "removed",
		"room":   roomName,
	})
}

// AvailableAgents handles GET /api/agents/available
func (h *RoomHandler) AvailableAgents(w http.ResponseWriter, r *http.Request) {
	agents := h.registry.AvailableAgents()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"agents": agents,
		"count":  len(agents),
	})
}

// Messages handles GET /api/rooms/{room}/messages
func (h *RoomHandler) Messages(w http.ResponseWriter, r *http.Request) {
	roomName := chi.URLParam(r, "room")
	if err := middleware.ValidateRoomName(roomName); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	history := h.registry.History(roomName)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"room_name":            roomName,
		"conversation_history": history,
		"message_count":        len(history),
	})
}

// AppendMessage handles POST /api/rooms/{room}/messages
func (h *RoomHandler) AppendMessage(w http.ResponseWriter, r *http.Request) {
	roomName := chi.URLParam(r, "room")
	if err := middleware.ValidateRoomName(roomName); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req model.AppendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := middleware.ValidateParticipantName(req.Speaker); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := middleware.ValidateMessageText(req.Text); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.registry.AppendMessage(roomName, req.Speaker, req.Text)
	h.persistSnapshot(r, roomName)

	writeJSON(w, http.StatusOK, map[string]string{
		"status": "added",
		"room":   roomName,
	})
}

// ClearMessages handles DELETE /api/rooms/{room}/messages
func (h *RoomHandler) ClearMessages(w http.ResponseWriter, r *http.Request) {
	roomName := chi.URLParam(r, "room")
	if err := middleware.ValidateRoomName(roomName); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.registry.ClearHistory(roomName)
	h.persistSnapshot(r, roomName)

	writeJSON(w, http.StatusOK, map[string]string{
		"status": "cleared",
		"room":   roomName,
	})
}

// State handles GET /api/rooms/{room}/state. The live registry wins; a
// stored snapshot is consulted only when the registry has nothing.
func (h *RoomHandler) State(w http.ResponseWriter, r *http.Request) {
	roomName := chi.URLParam(r, "room")
	if err := middleware.ValidateRoomName(roomName); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	state := h.registry.Snapshot(roomName)
	if len(state.Participants) == 0 && len(state.History) == 0 && h.snapshots != nil {
		if blob, err := h.snapshots.Load(r.Context(), roomName); err == nil {
			var stored model.RoomState
			if err := json.Unmarshal(blob, &stored); err == nil {
				h.registry.Restore(roomName, &stored)
				state = &stored
			}
		} else if !errors.Is(err, store.ErrSnapshotNotFound) {
			h.logger.Warn("snapshot load failed", zap.String("room", roomName), zap.Error(err))
		}
	}

	writeJSON(w, http.StatusOK, state)
}

// Restore handles POST /api/rooms/{room}/restore. The body carries a
// state blob; with an empty body the latest stored snapshot is used
// instead.
func (h *RoomHandler) Restore(w http.ResponseWriter, r *http.Request) {
	roomName := chi.URLParam(r, "room")
	if err := middleware.ValidateRoomName(roomName); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var state model.RoomState
	if err := json.NewDecoder(r.Body).Decode(&state); err != nil {
		if h.snapshots == nil {
			writeError(w, http.StatusBadRequest, "invalid request body and no snapshot store configured")
			return
		}
		blob, loadErr := h.snapshots.Load(r.Context(), roomName)
		if loadErr != nil {
			if errors.Is(loadErr, store.ErrSnapshotNotFound) {
				writeError(w, http.StatusNotFound, "no snapshot stored for room")
				return
			}
			h.logger.Error("snapshot load failed", zap.String("room", roomName), zap.Error(loadErr))
			writeError(w, http.StatusInternalServerError, "failed to load snapshot")
			return
		}
		if err := json.Unmarshal(blob, &state); err != nil {
			writeError(w, http.StatusInternalServerError, "stored snapshot is corrupt")
			return
		}
	}

	h.registry.Restore(roomName, &state)
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "restored",
		"room":   roomName,
	})
}

// persistSnapshot saves the room state to the snapshot store best-effort.
func (h *RoomHandler) persistSnapshot(r *http.Request, roomName string) {
	if h.snapshots == nil {
		return
	}

	blob, err := json.Marshal(h.registry.Snapshot(roomName))
	if err != nil {
		return
	}
	if err := h.snapshots.Save(r.Context(), roomName, blob); err != nil {
		h.logger.Warn("snapshot save failed", zap.String("room", roomName), zap.Error(err))
	}
}
