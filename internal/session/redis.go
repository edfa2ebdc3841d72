package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// keyPrefix namespaces session keys so the store can share a Redis database
// with other consumers.
const keyPrefix = "contract:session:"

// RedisStore persists sessions in Redis with the TTL enforced server-side,
// so every instance behind a load balancer sees the same sessions and expiry
// needs no sweeping.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore constructs a RedisStore on an existing client. A TTL <= 0
// defaults to one hour.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &RedisStore{client: client, ttl: ttl}
}

// Put stores s and restarts its TTL.
func (r *RedisStore) Put(ctx context.Context, s *Session) error {
	payload, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal session %s: %w", s.ID, err)
	}
	if err := r.client.Set(ctx, keyPrefix+s.ID, payload, r.ttl).Err(); err != nil {
		return fmt.Errorf("store session %s: %w", s.ID, err)
	}
	return nil
}

// Get returns the session for id, or ErrNotFound when Redis no longer holds
// it.
func (r *RedisStore) Get(ctx context.Context, id string) (*Session, error) {
	payload, err := r.client.Get(ctx, keyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", id, err)
	}
	var s Session
	if err := json.Unmarshal(payload, &s); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", id, err)
	}
	return &s, nil
}

// Delete removes the session for id. Deleting an unknown id is not an error.
func (r *RedisStore) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, keyPrefix+id).Err(); err != nil {
		return fmt.Errorf("delete session %s: %w", id, err)
	}
	return nil
}
