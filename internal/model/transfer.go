package model

import (
	"time"
)

// TransferStatus is the lifecycle state of a transfer record.
//
// Valid transitions:
//
//	initiated -> in_progress -> completed
//	in_progress -> failed
//	initiated|in_progress -> cancelled
//
// Terminal states (completed, failed, cancelled) admit no further
// transitions.
type TransferStatus string

const (
	StatusInitiated  TransferStatus = "initiated"
	StatusInProgress TransferStatus = "in_progress"
	StatusCompleted  TransferStatus = "completed"
	StatusFailed     TransferStatus = "failed"
	StatusCancelled  TransferStatus = "cancelled"
)

// Active reports whether the status still permits cancel or complete.
func (s TransferStatus) Active() bool {
	return s == StatusInitiated || s == StatusInProgress
}

// Terminal reports whether the status admits no further transitions.
func (s TransferStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}

// Transfer describes one warm handoff attempt. FromRoom, ToRoom, FromAgent
// and ToAgent are immutable once created; only Status and Summary (and the
// derived CallerToken/TransferMessage artifacts) mutate afterwards.
type Transfer struct {
	ID              string         `json:"transfer_id"`
	FromRoom        string         `json:"from_room"`
	ToRoom          string         `json:"to_room"`
	FromAgent       string         `json:"from_agent"`
	ToAgent         string         `json:"to_agent"`
	CallerName      string         `json:"caller_name"`
	Summary         string         `json:"summary,omitempty"`
	Status          TransferStatus `json:"status"`
	CreatedAt       time.Time      `json:"created_at"`
	CallerToken     string         `json:"caller_token,omitempty"`
	DestinationRoom string         `json:"destination_room,omitempty"`
	TransferMessage string         `json:"transfer_message,omitempty"`
}

// TransferRequest is the body for initiating a warm transfer.
type TransferRequest struct {
	FromRoom   string `json:"from_room"`
	ToRoom     string `json:"to_room"`
	FromAgent  string `json:"from_agent"`
	ToAgent    string `json:"to_agent"`
	CallerName string `json:"caller_name"`
}

// TransferCompleteRequest is the body for completing a transfer.
type TransferCompleteRequest struct {
	TransferID string `json:"transfer_id"`
	FromRoom   string `json:"from_room"`
	ToRoom     string `json:"to_room"`
}

// TransferReceipt is returned after a successful completion.
type TransferReceipt struct {
	TransferID  string `json:"transfer_id"`
	Status      string `json:"status"`
	FromRoom    string `json:"from_room"`
	ToRoom      string `json:"to_room"`
	CompletedAt string `json:"completed_at"`
	Summary     string `json:"summary,omitempty"`
}

// TransferStats summarizes the coordinator's record map.
type TransferStats struct {
	Total       int     `json:"total_transfers"`
	Active      int     `json:"active_transfers"`
	Completed   int     `json:"completed_transfers"`
	Failed      int     `json:"failed_transfers"`
	SuccessRate float64 `json:"success_rate"`
}

// SummaryRequest is the body for standalone summary generation.
type SummaryRequest struct {
	ConversationHistory []Message `json:"conversation_history"`
	Context             string    `json:"context,omitempty"`
}

// SpeechRequest is the body for text-to-speech generation.
type SpeechRequest struct {
	Text  string `json:"text"`
	Voice string `json:"voice,omitempty"`
}

// DialRequest is the body for the telephony dial-out endpoint.
type DialRequest struct {
	PhoneNumber string `json:"phone_number"`
	RoomName    string `json:"room_name"`
	AgentName   string `json:"agent_name"`
}
