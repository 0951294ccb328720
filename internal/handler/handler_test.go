package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relayline/warm-transfer/internal/livekit"
	"github.com/relayline/warm-transfer/internal/service"
	"github.com/relayline/warm-transfer/pkg/logger"
)

func newTestRouter() (*chi.Mux, *service.RoomRegistry, *service.TransferCoordinator) {
	log := logger.NewNop()
	registry := service.NewRoomRegistry(livekit.NewMock(), log)
	summaries := service.NewSummaryEngine(nil, log)
	coordinator := service.NewTransferCoordinator(registry, summaries, nil, time.Hour, log)

	roomHandler := NewRoomHandler(registry, nil, log)
	transferHandler := NewTransferHandler(coordinator, registry, log)
	summaryHandler := NewSummaryHandler(summaries, log)

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Post("/token/generate", roomHandler.Create)
		r.Post("/rooms/create", roomHandler.Create)
		r.Post("/rooms/join", roomHandler.Join)
		r.Get("/rooms/{room}/participants", roomHandler.Participants)
		r.Get("/rooms/{room}/messages", roomHandler.Messages)
		r.Post("/rooms/{room}/messages", roomHandler.AppendMessage)
		r.Delete("/rooms/{room}/messages", roomHandler.ClearMessages)
		r.Get("/agents/available", roomHandler.AvailableAgents)
		r.Post("/transfer/initiate", transferHandler.Initiate)
		r.Post("/transfer/complete", transferHandler.Complete)
		r.Get("/transfer/debug/active", transferHandler.Active)
		r.Get("/transfer/debug/{id}", transferHandler.Debug)
		r.Post("/summary/generate", summaryHandler.Generate)
		r.Post("/speech/generate", summaryHandler.Speech)
	})
	return r, registry, coordinator
}

func doJSON(t *testing.T, router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestCreateRoomEndpoint(t *testing.T) {
	router, _, _ := newTestRouter()

	rec := doJSON(t, router, http.MethodPost, "/api/rooms/create", map[string]interface{}{
		"room_name":        "support-1",
		"participant_name": "alice",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "support-1", resp["room_name"])
	assert.Equal(t, "mock-token-support-1-alice", resp["token"])
}

func TestTokenGenerateAlias(t *testing.T) {
	router, _, _ := newTestRouter()

	rec := doJSON(t, router, http.MethodPost, "/api/token/generate", map[string]interface{}{
		"room_name":        "support-1",
		"participant_name": "alice",
		"is_agent":         true,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["is_agent"])
	assert.NotEmpty(t, resp["token"])
}

func TestCreateRoomRejectsBadNames(t *testing.T) {
	router, _, _ := newTestRouter()

	rec := doJSON(t, router, http.MethodPost, "/api/rooms/create", map[string]interface{}{
		"room_name":        "",
		"participant_name": "alice",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/rooms/create", map[string]interface{}{
		"room_name":        "has spaces",
		"participant_name": "alice",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestJoinUnknownRoomReturns404(t *testing.T) {
	router, _, _ := newTestRouter()

	rec := doJSON(t, router, http.MethodPost, "/api/rooms/join", map[string]interface{}{
		"room_name":        "missing",
		"participant_name": "bob",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUnconfiguredProviderReturns501(t *testing.T) {
	log := logger.NewNop()
	registry := service.NewRoomRegistry(livekit.Unconfigured{}, log)
	roomHandler := NewRoomHandler(registry, nil, log)

	r := chi.NewRouter()
	r.Post("/api/rooms/create", roomHandler.Create)

	rec := doJSON(t, r, http.MethodPost, "/api/rooms/create", map[string]interface{}{
		"room_name":        "support-1",
		"participant_name": "alice",
	})
	assert.Equal(t, http.StatusNotImplemented, rec.Code)
}

func TestMessageRoundTrip(t *testing.T) {
	router, _, _ := newTestRouter()

	rec := doJSON(t, router, http.MethodPost, "/api/rooms/support-1/messages", map[string]interface{}{
		"speaker": "alice",
		"message": "hello there",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/rooms/support-1/messages", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		History []struct {
			Speaker string `json:"speaker"`
			Message string `json:"message"`
		} `json:"conversation_history"`
		Count int `json:"message_count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 1, resp.Count)
	assert.Equal(t, "alice", resp.History[0].Speaker)
	assert.Equal(t, "hello there", resp.History[0].Message)

	rec = doJSON(t, router, http.MethodDelete, "/api/rooms/support-1/messages", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/rooms/support-1/messages", nil)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Zero(t, resp.Count)
}

func TestTransferInitiateAndFetch(t *testing.T) {
	router, registry, _ := newTestRouter()

	rec := doJSON(t, router, http.MethodPost, "/api/rooms/create", map[string]interface{}{
		"room_name":        "support-1",
		"participant_name": "alice",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	registry.AppendMessage("support-1", "alice", "I need help with my account")

	rec = doJSON(t, router, http.MethodPost, "/api/transfer/initiate", map[string]interface{}{
		"from_room":   "support-1",
		"to_room":     "support-2",
		"from_agent":  "agent",
		"to_agent":    "bob",
		"caller_name": "alice",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var transfer struct {
		ID     string `json:"transfer_id"`
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &transfer))
	assert.Equal(t, "in_progress", transfer.Status)

	rec = doJSON(t, router, http.MethodGet, "/api/transfer/debug/"+transfer.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var debug struct {
		Transfer struct {
			ID string `json:"transfer_id"`
		} `json:"transfer"`
		FromHistory []interface{} `json:"conversation_history"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &debug))
	assert.Equal(t, transfer.ID, debug.Transfer.ID)
	assert.Len(t, debug.FromHistory, 1)
}

func TestTransferDebugRejectsMalformedID(t *testing.T) {
	router, _, _ := newTestRouter()

	rec := doJSON(t, router, http.MethodGet, "/api/transfer/debug/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestActiveTransfersAlwaysList(t *testing.T) {
	router, _, _ := newTestRouter()

	rec := doJSON(t, router, http.MethodGet, "/api/transfer/debug/active", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Active []interface{} `json:"active_transfers"`
		Count  int           `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotNil(t, resp.Active)
	assert.Zero(t, resp.Count)
}

func TestRootReportsDependencies(t *testing.T) {
	health := NewHealthHandler(livekit.NewMock(), "openai", false, false, nil)

	r := chi.NewRouter()
	r.Get("/", health.Root)
	r.Get("/api/health", health.Health)

	rec := doJSON(t, r, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var root struct {
		Message      string                 `json:"message"`
		Dependencies map[string]interface{} `json:"dependencies"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &root))
	assert.Equal(t, "Warm Transfer API is running", root.Message)
	assert.Equal(t, true, root.Dependencies["room_provider"])
	assert.Equal(t, "openai", root.Dependencies["llm_provider"])
	assert.Equal(t, false, root.Dependencies["telephony"])

	// The root and health endpoints report the same flags.
	rec = doJSON(t, r, http.MethodGet, "/api/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var healthResp struct {
		Dependencies map[string]interface{} `json:"dependencies"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &healthResp))
	assert.Equal(t, root.Dependencies, healthResp.Dependencies)
}

func TestSummaryEndpointFallback(t *testing.T) {
	router, _, _ := newTestRouter()

	rec := doJSON(t, router, http.MethodPost, "/api/summary/generate", map[string]interface{}{
		"conversation_history": []map[string]string{
			{"speaker": "alice", "message": "my refund is missing", "timestamp": "2026-01-01T00:00:00Z"},
			{"speaker": "agent", "message": "let me check", "timestamp": "2026-01-01T00:00:10Z"},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Summary    string   `json:"summary"`
		Sentiment  string   `json:"sentiment"`
		KeyPoints  []string `json:"key_points"`
		Generative bool     `json:"generative"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Summary, "Total messages exchanged: 2")
	assert.Equal(t, "neutral", resp.Sentiment)
	assert.Len(t, resp.KeyPoints, 1)
	assert.False(t, resp.Generative)
}

func TestSpeechEndpointValidation(t *testing.T) {
	router, _, _ := newTestRouter()

	rec := doJSON(t, router, http.MethodPost, "/api/speech/generate", map[string]string{"text": ""})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Without a generation client, synthesis is unavailable.
	rec = doJSON(t, router, http.MethodPost, "/api/speech/generate", map[string]string{"text": "hello"})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
