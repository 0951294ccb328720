// Package metrics provides Prometheus metrics instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestDuration tracks HTTP request duration.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	// RequestsTotal tracks total HTTP requests.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// TransfersTotal tracks transfer lifecycle transitions by status.
	TransfersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "transfers_total",
			Help: "Total transfer state transitions",
		},
		[]string{"status"},
	)

	// TransfersActive tracks transfers currently in a non-terminal state.
	TransfersActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "transfers_active",
			Help: "Transfers in initiated or in_progress state",
		},
	)

	// SummariesTotal tracks summaries generated, by mode and outcome.
	SummariesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "summaries_total",
			Help: "Total call summaries generated",
		},
		[]string{"mode"},
	)

	// SummaryDuration tracks generative summary latency.
	SummaryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "summary_duration_seconds",
			Help:    "Summary generation duration",
			Buckets: []float64{.1, .25, .5, 1, 2, 5, 10, 20, 30},
		},
		[]string{"provider"},
	)

	// SpeechRequestsTotal tracks TTS requests by outcome.
	SpeechRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "speech_requests_total",
			Help: "Total speech synthesis requests",
		},
		[]string{"status"},
	)

	// RoomParticipants tracks locally registered participants per room.
	RoomParticipants = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "room_participants",
			Help: "Participants registered in a room",
		},
		[]string{"room"},
	)

	// WSConnectionsActive tracks active WebSocket listeners.
	WSConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ws_connections_active",
			Help: "Number of active WebSocket connections",
		},
	)

	// DialsTotal tracks telephony dial-outs by outcome.
	DialsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "telephony_dials_total",
			Help: "Total outbound dial attempts",
		},
		[]string{"status"},
	)
)

// RecordRequest records metrics for an HTTP request.
func RecordRequest(method, path, status string, duration float64) {
	RequestDuration.WithLabelValues(method, path, status).Observe(duration)
	RequestsTotal.WithLabelValues(method, path, status).Inc()
}

// RecordSummary records a generated summary and, for generative summaries,
// the provider latency.
func RecordSummary(mode, provider string, duration float64) {
	SummariesTotal.WithLabelValues(mode).Inc()
	if provider != "" {
		SummaryDuration.WithLabelValues(provider).Observe(duration)
	}
}
