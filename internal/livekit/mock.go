package livekit

import (
	"context"
	"sync"
)

// Mock is an in-memory provider variant for local development and tests.
// Rooms live in a set; tokens are unsigned placeholders.
type Mock struct {
	mu    sync.Mutex
	rooms map[string]bool

	// Evictions records RemoveParticipant calls as "room/identity".
	Evictions []string
}

// NewMock creates an empty mock provider.
func NewMock() *Mock {
	return &Mock{rooms: make(map[string]bool)}
}

func (m *Mock) EnsureRoom(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rooms[name] = true
	return nil
}

func (m *Mock) RoomExists(_ context.Context, name string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rooms[name], nil
}

func (m *Mock) RemoveParticipant(_ context.Context, room, identity string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Evictions = append(m.Evictions, room+"/"+identity)
	return nil
}

func (m *Mock) AccessToken(identity, room string, isAgent bool) (string, error) {
	return "mock-token-" + room + "-" + identity, nil
}

func (m *Mock) URL() string      { return "mock://local" }
func (m *Mock) Configured() bool { return true }
