package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relayline/warm-transfer/internal/livekit"
	"github.com/relayline/warm-transfer/pkg/logger"
)

func newTestRegistry() (*RoomRegistry, *livekit.Mock) {
	mock := livekit.NewMock()
	return NewRoomRegistry(mock, logger.NewNop()), mock
}

func TestCreateRoomReturnsHandle(t *testing.T) {
	registry, _ := newTestRegistry()

	handle, err := registry.CreateRoom(context.Background(), "support-1", "alice", false)
	require.NoError(t, err)

	assert.Equal(t, "support-1", handle.RoomName)
	assert.Equal(t, "alice", handle.ParticipantName)
	assert.Equal(t, "mock-token-support-1-alice", handle.Token)
	assert.Equal(t, "mock://local", handle.URL)
	assert.False(t, handle.IsAgent)

	participants := registry.Participants("support-1")
	require.Len(t, participants, 1)
	assert.Equal(t, "alice", participants[0].Identity)
}

func TestJoinRoomRequiresExistingRoom(t *testing.T) {
	registry, _ := newTestRegistry()

	_, err := registry.JoinRoom(context.Background(), "missing", "bob", false)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRoomNotFound)

	_, err = registry.CreateRoom(context.Background(), "support-2", "alice", false)
	require.NoError(t, err)

	handle, err := registry.JoinRoom(context.Background(), "support-2", "bob", true)
	require.NoError(t, err)
	assert.True(t, handle.IsAgent)
	assert.Len(t, registry.Participants("support-2"), 2)
}

func TestUnconfiguredProviderRejectsRoomOps(t *testing.T) {
	registry := NewRoomRegistry(livekit.Unconfigured{}, logger.NewNop())

	_, err := registry.CreateRoom(context.Background(), "support-1", "alice", false)
	assert.ErrorIs(t, err, livekit.ErrNotConfigured)

	_, err = registry.JoinRoom(context.Background(), "support-1", "alice", false)
	assert.ErrorIs(t, err, livekit.ErrNotConfigured)
}

func TestRemoveParticipantIsIdempotent(t *testing.T) {
	registry, mock := newTestRegistry()

	_, err := registry.CreateRoom(context.Background(), "support-1", "alice", false)
	require.NoError(t, err)

	require.NoError(t, registry.RemoveParticipant(context.Background(), "support-1", "alice"))
	assert.Empty(t, registry.Participants("support-1"))

	// Removing an absent identity succeeds without changing local state.
	require.NoError(t, registry.RemoveParticipant(context.Background(), "support-1", "alice"))
	assert.Empty(t, registry.Participants("support-1"))

	assert.Equal(t, []string{"support-1/alice", "support-1/alice"}, mock.Evictions)
}

func TestAppendMessagePreservesOrder(t *testing.T) {
	registry, _ := newTestRegistry()

	for i := 0; i < 10; i++ {
		registry.AppendMessage("support-1", "caller", fmt.Sprintf("message %d", i))
	}

	history := registry.History("support-1")
	require.Len(t, history, 10)
	for i, msg := range history {
		assert.Equal(t, fmt.Sprintf("message %d", i), msg.Text)
		assert.NotEmpty(t, msg.Timestamp)
	}
}

func TestClearHistoryKeepsRoom(t *testing.T) {
	registry, _ := newTestRegistry()

	registry.AppendMessage("support-1", "caller", "hello")
	registry.ClearHistory("support-1")

	assert.Empty(t, registry.History("support-1"))

	// Clearing an unknown room is a no-op.
	registry.ClearHistory("never-seen")
	assert.Empty(t, registry.History("never-seen"))
}

func TestHistoryReturnsCopy(t *testing.T) {
	registry, _ := newTestRegistry()

	registry.AppendMessage("support-1", "caller", "hello")

	history := registry.History("support-1")
	history[0].Text = "mutated"

	assert.Equal(t, "hello", registry.History("support-1")[0].Text)
}

func TestAvailableAgentsSortedAndDeduplicated(t *testing.T) {
	registry, _ := newTestRegistry()
	ctx := context.Background()

	_, err := registry.CreateRoom(ctx, "agent-room-wanda-smith", "wanda", true)
	require.NoError(t, err)
	_, err = registry.CreateRoom(ctx, "agent-room-bob", "bob", true)
	require.NoError(t, err)
	_, err = registry.CreateRoom(ctx, "support-main", "alice", false)
	require.NoError(t, err)

	assert.Equal(t, []string{"Bob", "Wanda Smith"}, registry.AvailableAgents())
}

func TestAvailableAgentsExcludesEmptiedRooms(t *testing.T) {
	registry, _ := newTestRegistry()
	ctx := context.Background()

	_, err := registry.CreateRoom(ctx, "agent-room-bob", "bob", true)
	require.NoError(t, err)

	require.NoError(t, registry.RemoveParticipant(ctx, "agent-room-bob", "bob"))
	assert.Empty(t, registry.AvailableAgents())
}

func TestSnapshotAndRestoreRoundTrip(t *testing.T) {
	registry, _ := newTestRegistry()
	ctx := context.Background()

	_, err := registry.CreateRoom(ctx, "support-1", "alice", false)
	require.NoError(t, err)
	registry.AppendMessage("support-1", "alice", "hello")
	registry.AppendMessage("support-1", "agent", "hi there")

	state := registry.Snapshot("support-1")
	require.Len(t, state.Participants, 1)
	require.Len(t, state.History, 2)

	other, _ := newTestRegistry()
	other.Restore("support-1", state)

	assert.Equal(t, registry.Participants("support-1"), other.Participants("support-1"))
	assert.Equal(t, registry.History("support-1"), other.History("support-1"))
}
