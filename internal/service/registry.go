// Package service provides the warm-transfer business logic: room and
// transcript bookkeeping, summary generation, and the transfer lifecycle.
package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/relayline/warm-transfer/internal/livekit"
	"github.com/relayline/warm-transfer/internal/model"
	"github.com/relayline/warm-transfer/pkg/logger"
	"github.com/relayline/warm-transfer/pkg/metrics"
)

// agentRoomPrefix is the naming convention for agent-owned rooms; agent
// availability is derived from it.
const agentRoomPrefix = "agent-room-"

// RoomRegistry owns per-room participant lists and conversation
// transcripts. All membership changes go through the room provider; local
// bookkeeping mirrors what the provider holds. The registry's maps are
// shared mutable state and are guarded by a single RWMutex.
type RoomRegistry struct {
	provider livekit.Provider
	logger   *logger.Logger

	mu           sync.RWMutex
	rooms        map[string]model.RoomMeta
	participants map[string][]model.Participant
	history      map[string][]model.Message
}

// NewRoomRegistry creates a registry backed by the given provider.
func NewRoomRegistry(provider livekit.Provider, log *logger.Logger) *RoomRegistry {
	return &RoomRegistry{
		provider:     provider,
		logger:       log,
		rooms:        make(map[string]model.RoomMeta),
		participants: make(map[string][]model.Participant),
		history:      make(map[string][]model.Message),
	}
}

// Provider exposes the underlying room provider for capability checks.
func (r *RoomRegistry) Provider() livekit.Provider {
	return r.provider
}

// CreateRoom provisions a room with the provider (idempotently), mints an
// access credential for the participant, and registers the participant
// locally.
func (r *RoomRegistry) CreateRoom(ctx context.Context, name, participantName string, isAgent bool) (*model.RoomHandle, error) {
	if err := r.provider.EnsureRoom(ctx, name); err != nil {
		if err == livekit.ErrNotConfigured {
			return nil, err
		}
		return nil, fmt.Errorf("%w: create %s: %v", ErrProvisioning, name, err)
	}

	token, err := r.provider.AccessToken(participantName, name, isAgent)
	if err != nil {
		return nil, fmt.Errorf("%w: token for %s: %v", ErrProvisioning, participantName, err)
	}

	now := time.Now()

	r.mu.Lock()
	if _, ok := r.rooms[name]; !ok {
		r.rooms[name] = model.RoomMeta{CreatedAt: now}
	}
	r.registerParticipantLocked(name, participantName, isAgent, now)
	r.mu.Unlock()

	r.logger.Info("room created",
		zap.String("room", name),
		zap.String("participant", participantName),
		zap.Bool("is_agent", isAgent),
	)

	return &model.RoomHandle{
		RoomName:        name,
		Token:           token,
		URL:             r.provider.URL(),
		ParticipantName: participantName,
		IsAgent:         isAgent,
		CreatedAt:       now,
	}, nil
}

// JoinRoom mints a credential for an existing room. The provider reporting
// the room absent fails with ErrRoomNotFound; no creation is attempted.
func (r *RoomRegistry) JoinRoom(ctx context.Context, name, participantName string, isAgent bool) (*model.RoomHandle, error) {
	exists, err := r.provider.RoomExists(ctx, name)
	if err != nil {
		if err == livekit.ErrNotConfigured {
			return nil, err
		}
		return nil, fmt.Errorf("%w: list %s: %v", ErrProvisioning, name, err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrRoomNotFound, name)
	}

	token, err := r.provider.AccessToken(participantName, name, isAgent)
	if err != nil {
		return nil, fmt.Errorf("%w: token for %s: %v", ErrProvisioning, participantName, err)
	}

	now := time.Now()

	r.mu.Lock()
	r.registerParticipantLocked(name, participantName, isAgent, now)
	r.mu.Unlock()

	r.logger.Info("participant joined room",
		zap.String("room", name),
		zap.String("participant", participantName),
		zap.Bool("is_agent", isAgent),
	)

	return &model.RoomHandle{
		RoomName:        name,
		Token:           token,
		URL:             r.provider.URL(),
		ParticipantName: participantName,
		IsAgent:         isAgent,
		CreatedAt:       now,
	}, nil
}

// RemoveParticipant evicts the identity from the live session and drops
// the local bookkeeping entry. Removing an absent identity is a no-op.
func (r *RoomRegistry) RemoveParticipant(ctx context.Context, roomName, identity string) error {
	if err := r.provider.RemoveParticipant(ctx, roomName, identity); err != nil {
		if err == livekit.ErrNotConfigured {
			return err
		}
		return fmt.Errorf("%w: remove %s from %s: %v", ErrProvisioning, identity, roomName, err)
	}

	r.mu.Lock()
	kept := r.participants[roomName][:0]
	for _, p := range r.participants[roomName] {
		if p.Identity != identity {
			kept = append(kept, p)
		}
	}
	r.participants[roomName] = kept
	metrics.RoomParticipants.WithLabelValues(roomName).Set(float64(len(kept)))
	r.mu.Unlock()

	r.logger.Info("participant removed",
		zap.String("room", roomName),
		zap.String("participant", identity),
	)
	return nil
}

// AppendMessage appends a timestamped transcript entry, creating the
// room's history lazily.
func (r *RoomRegistry) AppendMessage(roomName, speaker, text string) {
	msg := model.Message{
		Speaker:   speaker,
		Text:      text,
		Timestamp: time.Now().Format(time.RFC3339),
	}

	r.mu.Lock()
	r.history[roomName] = append(r.history[roomName], msg)
	r.mu.Unlock()

	r.logger.Debug("message appended",
		zap.String("room", roomName),
		zap.String("speaker", speaker),
	)
}

// History returns a copy of the room's transcript, empty if unknown.
func (r *RoomRegistry) History(roomName string) []model.Message {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.Message, len(r.history[roomName]))
	copy(out, r.history[roomName])
	return out
}

// ClearHistory empties the room's transcript without deleting the room.
func (r *RoomRegistry) ClearHistory(roomName string) {
	r.mu.Lock()
	if _, ok := r.history[roomName]; ok {
		r.history[roomName] = nil
	}
	r.mu.Unlock()
}

// Participants returns a copy of the room's locally registered members.
func (r *RoomRegistry) Participants(roomName string) []model.Participant {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.Participant, len(r.participants[roomName]))
	copy(out, r.participants[roomName])
	return out
}

// AvailableAgents derives agent availability from rooms following the
// agent-room naming convention, witnessed either by room existence or by
// non-empty membership. The result is deduplicated and sorted.
func (r *RoomRegistry) AvailableAgents() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]bool)

	for roomName := range r.rooms {
		if !strings.HasPrefix(roomName, agentRoomPrefix) {
			continue
		}
		if members, ok := r.participants[roomName]; ok && len(members) == 0 {
			continue
		}
		seen[agentDisplayName(roomName)] = true
	}

	for roomName, members := range r.participants {
		if strings.HasPrefix(roomName, agentRoomPrefix) && len(members) > 0 {
			seen[agentDisplayName(roomName)] = true
		}
	}

	agents := make([]string, 0, len(seen))
	for name := range seen {
		agents = append(agents, name)
	}
	sort.Strings(agents)
	return agents
}

// Snapshot exports the room's metadata, participants, and transcript as a
// serializable state blob.
func (r *RoomRegistry) Snapshot(roomName string) *model.RoomState {
	r.mu.RLock()
	defer r.mu.RUnlock()

	state := &model.RoomState{
		RoomInfo:     r.rooms[roomName],
		Participants: make([]model.Participant, len(r.participants[roomName])),
		History:      make([]model.Message, len(r.history[roomName])),
	}
	copy(state.Participants, r.participants[roomName])
	copy(state.History, r.history[roomName])
	return state
}

// Restore replaces the registry's entry for the room with the given state.
func (r *RoomRegistry) Restore(roomName string, state *model.RoomState) {
	r.mu.Lock()
	r.rooms[roomName] = state.RoomInfo
	r.participants[roomName] = append([]model.Participant(nil), state.Participants...)
	r.history[roomName] = append([]model.Message(nil), state.History...)
	metrics.RoomParticipants.WithLabelValues(roomName).Set(float64(len(state.Participants)))
	r.mu.Unlock()

	r.logger.Info("room state restored", zap.String("room", roomName))
}

func (r *RoomRegistry) registerParticipantLocked(roomName, participantName string, isAgent bool, now time.Time) {
	r.participants[roomName] = append(r.participants[roomName], model.Participant{
		Identity: participantName,
		Name:     participantName,
		IsAgent:  isAgent,
		JoinedAt: now,
	})
	metrics.RoomParticipants.WithLabelValues(roomName).Set(float64(len(r.participants[roomName])))
}

// agentDisplayName maps an agent room name to the agent's display name:
// prefix stripped, dashes as spaces, words title-cased.
func agentDisplayName(roomName string) string {
	slug := strings.TrimPrefix(roomName, agentRoomPrefix)
	words := strings.Split(strings.ReplaceAll(slug, "-", " "), " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
