package middleware

import (
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

// ValidateRoomName validates a room name path or body parameter.
func ValidateRoomName(name string) error {
	if len(name) == 0 {
		return errors.New("room name cannot be empty")
	}
	if len(name) > 128 {
		return errors.New("room name exceeds maximum length")
	}
	if !utf8.ValidString(name) {
		return errors.New("room name must be valid UTF-8")
	}
	if strings.ContainsAny(name, " \t\n/") {
		return errors.New("room name must not contain whitespace or slashes")
	}
	return nil
}

// ValidateParticipantName validates a participant display name.
func ValidateParticipantName(name string) error {
	if len(name) == 0 {
		return errors.New("participant name cannot be empty")
	}
	if len(name) > 128 {
		return errors.New("participant name exceeds maximum length")
	}
	if !utf8.ValidString(name) {
		return errors.New("participant name must be valid UTF-8")
	}
	return nil
}

// ValidateTransferID validates a transfer ID.
func ValidateTransferID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return errors.New("invalid transfer ID format")
	}
	return nil
}

// ValidateMessageText validates message content appended to room history.
func ValidateMessageText(text string) error {
	if len(text) == 0 {
		return errors.New("message cannot be empty")
	}
	if len(text) > 100000 { // ~100KB limit
		return errors.New("message exceeds maximum length")
	}
	if !utf8.ValidString(text) {
		return errors.New("message must be valid UTF-8")
	}
	return nil
}
