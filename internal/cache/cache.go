// Package cache is a thin Redis layer for transient game data: the latest
// snapshot per match (reconnect recovery) and per-room presence sets. Redis
// is optional; a nil *Cache is safe to call and does nothing.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrSnapshotNotFound is returned when no snapshot is cached for a game.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// snapshotTTL bounds how long a stale match snapshot lingers after the last
// move.
const snapshotTTL = 24 * time.Hour

// Cache wraps a Redis client. The zero value of *Cache (nil) is a no-op.
type Cache struct {
	rdb *redis.Client
}

// Connect parses url, opens a client and verifies it with a ping.
func Connect(ctx context.Context, url string) (*Cache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &Cache{rdb: rdb}, nil
}

// Close releases the underlying client.
func (c *Cache) Close() error {
	if c == nil || c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}

func snapshotKey(gameID string) string { return "montoncito:snapshot:" + gameID }
func presenceKey(roomID string) string { return "montoncito:presence:" + roomID }

// SaveSnapshot stores the latest encoded state for a game.
func (c *Cache) SaveSnapshot(ctx context.Context, gameID string, data []byte) error {
	if c == nil || c.rdb == nil {
		return nil
	}
	if err := c.rdb.Set(ctx, snapshotKey(gameID), data, snapshotTTL).Err(); err != nil {
		return fmt.Errorf("save snapshot %s: %w", gameID, err)
	}
	return nil
}

// LoadSnapshot returns the latest cached state for a game.
func (c *Cache) LoadSnapshot(ctx context.Context, gameID string) ([]byte, error) {
	if c == nil || c.rdb == nil {
		return nil, ErrSnapshotNotFound
	}
	data, err := c.rdb.Get(ctx, snapshotKey(gameID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSnapshotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot %s: %w", gameID, err)
	}
	return data, nil
}

// MarkPresent adds playerID to the room's presence set.
func (c *Cache) MarkPresent(ctx context.Context, roomID, playerID string) error {
	if c == nil || c.rdb == nil {
		return nil
	}
	if err := c.rdb.SAdd(ctx, presenceKey(roomID), playerID).Err(); err != nil {
		return fmt.Errorf("mark present %s/%s: %w", roomID, playerID, err)
	}
	return nil
}

// MarkAbsent removes playerID from the room's presence set.
func (c *Cache) MarkAbsent(ctx context.Context, roomID, playerID string) error {
	if c == nil || c.rdb == nil {
		return nil
	}
	if err := c.rdb.SRem(ctx, presenceKey(roomID), playerID).Err(); err != nil {
		return fmt.Errorf("mark absent %s/%s: %w", roomID, playerID, err)
	}
	return nil
}

// Present lists the players currently marked present in a room.
func (c *Cache) Present(ctx context.Context, roomID string) ([]string, error) {
	if c == nil || c.rdb == nil {
		return nil, nil
	}
	members, err := c.rdb.SMembers(ctx, presenceKey(roomID)).Result()
	if err != nil {
		return nil, fmt.Errorf("presence %s: %w", roomID, err)
	}
	return members, nil
}
