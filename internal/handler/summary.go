package handler

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/relayline/warm-transfer/internal/model"
	"github.com/relayline/warm-transfer/internal/service"
	"github.com/relayline/warm-transfer/pkg/logger"
)

// SummaryHandler handles standalone summary and speech endpoints.
type SummaryHandler struct {
	engine *service.SummaryEngine
	logger *logger.Logger
}

// NewSummaryHandler creates a new summary handler.
func NewSummaryHandler(engine *service.SummaryEngine, log *logger.Logger) *SummaryHandler {
	return &SummaryHandler{
		engine: engine,
		logger: log,
	}
}

// Generate handles POST /api/summary/generate. The response carries the summary
// plus the sentiment and key-point analyses of the same transcript.
func (h *SummaryHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req model.SummaryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	summary := h.engine.Summarize(r.Context(), req.ConversationHistory, req.Context)
	keyPoints := h.engine.ExtractKeyPoints(req.ConversationHistory, 5)
	if keyPoints == nil {
		keyPoints = []string{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"summary":    summary,
		"sentiment":  h.engine.ClassifySentiment(req.ConversationHistory),
		"key_points": keyPoints,
		"generative": h.engine.Generative(),
	})
}

// Speech handles POST /api/speech/generate
func (h *SummaryHandler) Speech(w http.ResponseWriter, r *http.Request) {
	var req model.SpeechRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Text == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}

	audio := h.engine.SynthesizeSpeech(r.Context(), req.Text, req.Voice)
	if audio == nil {
		writeError(w, http.StatusInternalServerError, "speech synthesis failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"audio":  base64.StdEncoding.EncodeToString(audio),
		"status": "success",
	})
}
