package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/relayline/warm-transfer/internal/middleware"
	"github.com/relayline/warm-transfer/internal/model"
	"github.com/relayline/warm-transfer/internal/service"
	"github.com/relayline/warm-transfer/internal/telephony"
	"github.com/relayline/warm-transfer/pkg/logger"
)

// TelephonyHandler handles outbound dial and call-control endpoints.
type TelephonyHandler struct {
	bridge *telephony.Bridge
	engine *service.SummaryEngine
	rooms  *service.RoomRegistry
	logger *logger.Logger
}

// NewTelephonyHandler creates a new telephony handler. bridge may be nil
// when the PSTN provider is not configured.
func NewTelephonyHandler(bridge *telephony.Bridge, engine *service.SummaryEngine, rooms *service.RoomRegistry, log *logger.Logger) *TelephonyHandler {
	return &TelephonyHandler{
		bridge: bridge,
		engine: engine,
		rooms:  rooms,
		logger: log,
	}
}

// Dial handles POST /api/twilio/dial
func (h *TelephonyHandler) Dial(w http.ResponseWriter, r *http.Request) {
	if h.bridge == nil {
		writeError(w, http.StatusNotImplemented, "telephony is not configured")
		return
	}

	var req model.DialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.PhoneNumber == "" {
		writeError(w, http.StatusBadRequest, "phone_number is required")
		return
	}
	if err := middleware.ValidateRoomName(req.RoomName); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	session, err := h.bridge.Dial(req.PhoneNumber, req.RoomName, req.AgentName)
	if err != nil {
		h.logger.Error("outbound dial failed",
			zap.String("room", req.RoomName),
			zap.Error(err),
		)
		writeError(w, http.StatusBadGateway, "failed to place call")
		return
	}

	writeJSON(w, http.StatusOK, session)
}

// TwiML handles POST /api/twilio/twiml/{room}, the webhook the PSTN
// provider fetches when a dialed party answers. The response reads out the
// extractive summary of the room's transcript before connecting.
func (h *TelephonyHandler) TwiML(w http.ResponseWriter, r *http.Request) {
	if h.bridge == nil {
		writeError(w, http.StatusNotImplemented, "telephony is not configured")
		return
	}

	roomName := chi.URLParam(r, "room")
	if err := middleware.ValidateRoomName(roomName); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	summary := h.engine.Summarize(r.Context(), h.rooms.History(roomName), "")

	doc, err := h.bridge.ConnectTwiML(roomName, summary)
	if err != nil {
		h.logger.Error("twiml render failed", zap.String("room", roomName), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to render call instructions")
		return
	}

	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(doc))
}

// CallStatus handles GET /api/twilio/call/{sid}
func (h *TelephonyHandler) CallStatus(w http.ResponseWriter, r *http.Request) {
	if h.bridge == nil {
		writeError(w, http.StatusNotImplemented, "telephony is not configured")
		return
	}

	session, err := h.bridge.CallStatus(chi.URLParam(r, "sid"))
	if err != nil {
		writeError(w, http.StatusNotFound, "call not found")
		return
	}

	writeJSON(w, http.StatusOK, session)
}

// Hangup handles POST /api/twilio/call/{sid}/hangup
func (h *TelephonyHandler) Hangup(w http.ResponseWriter, r *http.Request) {
	if h.bridge == nil {
		writeError(w, http.StatusNotImplemented, "telephony is not configured")
		return
	}

	sid := chi.URLParam(r, "sid")
	if err := h.bridge.Hangup(sid); err != nil {
		writeError(w, http.StatusBadGateway, "failed to hang up call")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":   "completed",
		"call_sid": sid,
	})
}
