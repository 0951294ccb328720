package handler

import (
	"net/http"

	"github.com/relayline/warm-transfer/internal/events"
	"github.com/relayline/warm-transfer/internal/livekit"
)

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	provider    livekit.Provider
	llmProvider string
	telephony   bool
	snapshots   bool
	natsClient  *events.Client
}

// NewHealthHandler creates a new health handler. llmProvider is empty when
// no generation client is configured.
func NewHealthHandler(provider livekit.Provider, llmProvider string, telephony, snapshots bool, natsClient *events.Client) *HealthHandler {
	return &HealthHandler{
		provider:    provider,
		llmProvider: llmProvider,
		telephony:   telephony,
		snapshots:   snapshots,
		natsClient:  natsClient,
	}
}

// Root handles GET /, carrying liveness plus the same dependency flags
// as the health endpoint.
func (h *HealthHandler) Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":      "Warm Transfer API is running",
		"dependencies": h.dependencies(),
	})
}

// Health handles GET /api/health, reporting per-dependency availability.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":       "healthy",
		"dependencies": h.dependencies(),
	})
}

func (h *HealthHandler) dependencies() map[string]interface{} {
	return map[string]interface{}{
		"room_provider":  h.provider.Configured(),
		"llm_provider":   h.llmProvider,
		"telephony":      h.telephony,
		"snapshot_store": h.snapshots,
		"event_bus":      h.natsClient != nil && h.natsClient.IsConnected(),
	}
}

// Ready handles GET /ready
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	// The event bus and snapshot store are optional; readiness only
	// requires the HTTP stack itself.
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ready",
	})
}
