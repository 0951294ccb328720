// Package livekit talks to a LiveKit-compatible room provider: room
// administration over its Twirp HTTP API and access-token minting.
package livekit

import (
	"context"
	"errors"
)

// ErrNotConfigured is returned by the unconfigured provider variant.
var ErrNotConfigured = errors.New("room provider is not configured")

// Provider is the capability interface over the external room service.
// Exactly one variant is selected at construction: the real Twirp client,
// the in-memory mock, or Unconfigured.
type Provider interface {
	// EnsureRoom creates the room, treating "already exists" as success.
	EnsureRoom(ctx context.Context, name string) error

	// RoomExists asks the provider whether the named room is live.
	RoomExists(ctx context.Context, name string) (bool, error)

	// RemoveParticipant evicts an identity from the live session.
	RemoveParticipant(ctx context.Context, room, identity string) error

	// AccessToken mints a signed join credential scoped to the room.
	// Agents receive admin and own-metadata grants on top of the
	// publish/subscribe rights everyone gets.
	AccessToken(identity, room string, isAgent bool) (string, error)

	// URL returns the client-facing connection URL.
	URL() string

	// Configured reports whether real provider calls can be made.
	Configured() bool
}

// Unconfigured is the provider variant used when credentials are absent.
// Every operation fails with ErrNotConfigured; the transport layer maps
// that to 501.
type Unconfigured struct{}

func (Unconfigured) EnsureRoom(context.Context, string) error { return ErrNotConfigured }

func (Unconfigured) RoomExists(context.Context, string) (bool, error) {
	return false, ErrNotConfigured
}

func (Unconfigured) RemoveParticipant(context.Context, string, string) error {
	return ErrNotConfigured
}

func (Unconfigured) AccessToken(string, string, bool) (string, error) {
	return "", ErrNotConfigured
}

func (Unconfigured) URL() string      { return "" }
func (Unconfigured) Configured() bool { return false }
