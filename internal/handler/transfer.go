package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/relayline/warm-transfer/internal/middleware"
	"github.com/relayline/warm-transfer/internal/model"
	"github.com/relayline/warm-transfer/internal/service"
	"github.com/relayline/warm-transfer/pkg/logger"
)

// TransferHandler handles warm transfer endpoints.
type TransferHandler struct {
	coordinator *service.TransferCoordinator
	registry    *service.RoomRegistry
	logger      *logger.Logger
}

// NewTransferHandler creates a new transfer handler.
func NewTransferHandler(coordinator *service.TransferCoordinator, registry *service.RoomRegistry, log *logger.Logger) *TransferHandler {
	return &TransferHandler{
		coordinator: coordinator,
		registry:    registry,
		logger:      log,
	}
}

// Initiate handles POST /api/transfer/initiate
func (h *TransferHandler) Initiate(w http.ResponseWriter, r *http.Request) {
	var req model.TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := middleware.ValidateRoomName(req.FromRoom); err != nil {
		writeError(w, http.StatusBadRequest, "from_room: "+err.Error())
		return
	}
	if err := middleware.ValidateRoomName(req.ToRoom); err != nil {
		writeError(w, http.StatusBadRequest, "to_room: "+err.Error())
		return
	}
	if err := middleware.ValidateParticipantName(req.CallerName); err != nil {
		writeError(w, http.StatusBadRequest, "caller_name: "+err.Error())
		return
	}

	t, err := h.coordinator.Initiate(r.Context(), &req)
	if err != nil {
		h.logger.Error("transfer initiation failed",
			zap.String("from_room", req.FromRoom),
			zap.String("to_room", req.ToRoom),
			zap.Error(err),
		)
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, t)
}

// Complete handles POST /api/transfer/complete
func (h *TransferHandler) Complete(w http.ResponseWriter, r *http.Request) {
	var req model.TransferCompleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := middleware.ValidateTransferID(req.TransferID); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	receipt, err := h.coordinator.Complete(r.Context(), req.TransferID, req.FromRoom, req.ToRoom)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, receipt)
}

// Cancel handles POST /api/transfer/{id}/cancel
func (h *TransferHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	transferID := chi.URLParam(r, "id")
	if err := middleware.ValidateTransferID(transferID); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	t, err := h.coordinator.Cancel(transferID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, t)
}

// Debug handles GET /api/transfer/debug/{id}, returning the record plus
// both rooms' participant lists and the source transcript for diagnosis.
func (h *TransferHandler) Debug(w http.ResponseWriter, r *http.Request) {
	transferID := chi.URLParam(r, "id")
	if err := middleware.ValidateTransferID(transferID); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	t, ok := h.coordinator.Transfer(transferID)
	if !ok {
		writeError(w, http.StatusNotFound, "transfer not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"transfer":               t,
		"from_room_participants": h.registry.Participants(t.FromRoom),
		"to_room_participants":   h.registry.Participants(t.ToRoom),
		"conversation_history":   h.registry.History(t.FromRoom),
	})
}

// GetSummary handles GET /api/transfer/{id}/summary
func (h *TransferHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	transferID := chi.URLParam(r, "id")
	if err := middleware.ValidateTransferID(transferID); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if _, ok := h.coordinator.Transfer(transferID); !ok {
		writeError(w, http.StatusNotFound, "transfer not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"transfer_id": transferID,
		"summary":     h.coordinator.Summary(transferID),
	})
}

// Active handles GET /api/transfer/debug/active. It always succeeds; an
// empty record map produces an empty list.
func (h *TransferHandler) Active(w http.ResponseWriter, r *http.Request) {
	active := h.coordinator.ActiveTransfers()
	if active == nil {
		active = []*model.Transfer{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"active_transfers": active,
		"count":            len(active),
	})
}

// Stats handles GET /api/transfer/stats
func (h *TransferHandler) Stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.coordinator.Statistics())
}
