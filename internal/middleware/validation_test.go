package middleware

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestValidateRoomName(t *testing.T) {
	assert.NoError(t, ValidateRoomName("support-1"))
	assert.NoError(t, ValidateRoomName("agent-room-wanda"))

	assert.Error(t, ValidateRoomName(""))
	assert.Error(t, ValidateRoomName("has space"))
	assert.Error(t, ValidateRoomName("a/b"))
	assert.Error(t, ValidateRoomName(strings.Repeat("x", 129)))
}

func TestValidateParticipantName(t *testing.T) {
	assert.NoError(t, ValidateParticipantName("Alice Smith"))

	assert.Error(t, ValidateParticipantName(""))
	assert.Error(t, ValidateParticipantName(strings.Repeat("x", 129)))
}

func TestValidateTransferID(t *testing.T) {
	assert.NoError(t, ValidateTransferID(uuid.New().String()))
	assert.Error(t, ValidateTransferID("not-a-uuid"))
}

func TestValidateMessageText(t *testing.T) {
	assert.NoError(t, ValidateMessageText("hello"))
	assert.Error(t, ValidateMessageText(""))
	assert.Error(t, ValidateMessageText(strings.Repeat("x", 100001)))
}
