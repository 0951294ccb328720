// Package model defines data structures for the warm transfer service.
package model

import (
	"time"
)

// Participant is a member of a room, tracked locally alongside the live
// session held by the room provider. Identity is the removal key and is
// unique within a room.
type Participant struct {
	Identity string    `json:"identity"`
	Name     string    `json:"name"`
	IsAgent  bool      `json:"is_agent"`
	JoinedAt time.Time `json:"joined_at"`
}

// Message is a single transcript entry. Messages are immutable once
// appended; a transfer copies them into the destination room rather than
// moving them.
type Message struct {
	Speaker   string `json:"speaker"`
	Text      string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// RoomHandle is returned to a participant after a create or join: the
// minted access token plus enough context to connect to the provider.
type RoomHandle struct {
	RoomName        string    `json:"room_name"`
	Token           string    `json:"token"`
	URL             string    `json:"url"`
	ParticipantName string    `json:"participant_name"`
	IsAgent         bool      `json:"is_agent"`
	CreatedAt       time.Time `json:"created_at"`
}

// RoomState is the serializable snapshot of one room: metadata, the
// participant list, and the full transcript. Restore replaces the
// registry's entry for the room wholesale.
type RoomState struct {
	RoomInfo     RoomMeta      `json:"room_info"`
	Participants []Participant `json:"participants"`
	History      []Message     `json:"conversation_history"`
}

// RoomMeta holds per-room bookkeeping outside of participants and history.
type RoomMeta struct {
	CreatedAt time.Time `json:"created_at"`
}

// CreateRoomRequest is the body for token generation and room create/join.
type CreateRoomRequest struct {
	RoomName        string `json:"room_name"`
	ParticipantName string `json:"participant_name"`
	IsAgent         bool   `json:"is_agent"`
}

// AppendMessageRequest is the body for appending a transcript entry.
type AppendMessageRequest struct {
	Speaker string `json:"speaker"`
	Text    string `json:"message"`
}
