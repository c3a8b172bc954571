// Package session provides the Redis-backed client-local store the chat
// widget resumes sessions from: the current session id and the last saved
// snapshot live under a per-client namespace, mirroring what the browser
// widget keeps in local storage.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/KiWA001/kiwa-labs/internal/chat"
)

const defaultTTL = 30 * 24 * time.Hour

// RedisStore implements chat.LocalStore on Redis.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStore connects to Redis and namespaces all keys under the given
// client id, so several widget instances can share one Redis.
func NewRedisStore(redisURL, clientID string) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return NewRedisStoreWithClient(client, clientID), nil
}

// NewRedisStoreWithClient builds a store from an existing Redis client.
func NewRedisStoreWithClient(client *redis.Client, clientID string) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: "chat:" + clientID + ":",
		ttl:    defaultTTL,
	}
}

func (s *RedisStore) currentKey() string {
	return s.prefix + "current"
}

func (s *RedisStore) snapshotKey(sessionID string) string {
	return s.prefix + "snapshot:" + sessionID
}

// SessionID returns the stored session id, or "" when none exists.
func (s *RedisStore) SessionID(ctx context.Context) (string, error) {
	id, err := s.client.Get(ctx, s.currentKey()).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("load session id: %w", err)
	}
	return id, nil
}

// SetSessionID stores the durable session id.
func (s *RedisStore) SetSessionID(ctx context.Context, id string) error {
	if err := s.client.Set(ctx, s.currentKey(), id, s.ttl).Err(); err != nil {
		return fmt.Errorf("store session id: %w", err)
	}
	return nil
}

// Snapshot loads the stored snapshot for a session. Missing keys and
// corrupt JSON both report ok=false so the caller starts fresh.
func (s *RedisStore) Snapshot(ctx context.Context, sessionID string) (chat.Snapshot, bool, error) {
	raw, err := s.client.Get(ctx, s.snapshotKey(sessionID)).Result()
	if err == redis.Nil {
		return chat.Snapshot{}, false, nil
	}
	if err != nil {
		return chat.Snapshot{}, false, fmt.Errorf("load snapshot: %w", err)
	}
	var snap chat.Snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		return chat.Snapshot{}, false, nil
	}
	return snap, true, nil
}

// SaveSnapshot stores the snapshot and refreshes the TTL on both keys so an
// active session never expires under the client.
func (s *RedisStore) SaveSnapshot(ctx context.Context, snap chat.Snapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := s.client.Set(ctx, s.snapshotKey(snap.SessionID), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("store snapshot: %w", err)
	}
	s.client.Expire(ctx, s.currentKey(), s.ttl)
	return nil
}

// Clear drops the stored session id and snapshot.
func (s *RedisStore) Clear(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, s.currentKey(), s.snapshotKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// Ping checks the Redis connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the underlying Redis client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
