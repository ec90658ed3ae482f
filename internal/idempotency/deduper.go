// Package idempotency deduplicates non-idempotent writes. Clients attach a
// fresh Idempotency-Key to each create/delete; a replayed key from the same
// actor means a retry of an already-applied write and is rejected instead of
// re-executed.
package idempotency

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// Deduper records processed idempotency keys
type Deduper interface {
	// Add records the key if it does not already exist. It returns true
	// when the key was newly added.
	Add(ctx context.Context, actorID uuid.UUID, key string) (bool, error)
	// Remove deletes a previously recorded key so the caller may retry
	// after a downstream failure.
	Remove(ctx context.Context, actorID uuid.UUID, key string) error
}

// RedisDeduper stores processed keys in Redis so all instances agree on
// which writes have been applied
type RedisDeduper struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisDeduper creates a deduper using the provided Redis client and TTL
func NewRedisDeduper(client *redis.Client, ttl time.Duration) *RedisDeduper {
	return &RedisDeduper{client: client, ttl: ttl}
}

func (r *RedisDeduper) key(actorID uuid.UUID, key string) string {
	return fmt.Sprintf("idem:%s:%s", actorID, key)
}

// Add records the key if it does not already exist
func (r *RedisDeduper) Add(ctx context.Context, actorID uuid.UUID, key string) (bool, error) {
	return r.client.SetNX(ctx, r.key(actorID, key), 1, r.ttl).Result()
}

// Remove deletes a previously recorded key
func (r *RedisDeduper) Remove(ctx context.Context, actorID uuid.UUID, key string) error {
	return r.client.Del(ctx, r.key(actorID, key)).Err()
}
