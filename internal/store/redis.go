// Package store persists room-state snapshots out of process. The store
// is optional; without a configured Redis URL the service keeps snapshots
// purely request-scoped.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"
)

// ErrSnapshotNotFound is returned when no snapshot exists for a room.
var ErrSnapshotNotFound = errors.New("no snapshot stored for room")

// SnapshotStore saves and loads opaque room-state blobs keyed by room
// name.
type SnapshotStore interface {
	Save(ctx context.Context, roomName string, blob []byte) error
	Load(ctx context.Context, roomName string) ([]byte, error)
}

// RedisStore keeps snapshots in Redis under room_state:<name>.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(ctx context.Context, url string) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis connect failed: %w", err)
	}

	return &RedisStore{client: client}, nil
}

// Save stores the blob, replacing any previous snapshot for the room.
func (s *RedisStore) Save(ctx context.Context, roomName string, blob []byte) error {
	if err := s.client.Set(ctx, snapshotKey(roomName), blob, 0).Err(); err != nil {
		return fmt.Errorf("failed to save snapshot for %s: %w", roomName, err)
	}
	return nil
}

// Load fetches the stored blob for the room.
func (s *RedisStore) Load(ctx context.Context, roomName string) ([]byte, error) {
	blob, err := s.client.Get(ctx, snapshotKey(roomName)).Bytes()
	if err == redis.Nil {
		return nil, fmt.Errorf("%w: %s", ErrSnapshotNotFound, roomName)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot for %s: %w", roomName, err)
	}
	return blob, nil
}

// Close releases the underlying connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func snapshotKey(roomName string) string {
	return "room_state:" + roomName
}
