package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisBackend is the L2 adapter over go-redis, wrapping *redis.Client
// the way this codebase's other Redis-backed caches do. It round-trips
// Entry as JSON.
type RedisBackend struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisBackend wraps an already-connected client. ttl bounds an entry's
// lifetime even if the version token never changes again — a safety net,
// not the primary invalidation mechanism (that's the version stamp).
func NewRedisBackend(client *redis.Client, ttl time.Duration) *RedisBackend {
	return &RedisBackend{client: client, ttl: ttl}
}

// Fetch implements Backend. Any Redis error (including redis.Nil) is a
// miss — a best-effort backend degrades silently rather than erroring.
func (b *RedisBackend) Fetch(ctx context.Context, key string) (Entry, bool) {
	if b == nil || b.client == nil {
		return Entry{}, false
	}
	raw, err := b.client.Get(ctx, key).Bytes()
	if err != nil {
		return Entry{}, false
	}
	var entry Entry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return Entry{}, false
	}
	return entry, true
}

// Store implements Backend. A write failure is swallowed silently — a
// stale or absent L2 entry is never an error.
func (b *RedisBackend) Store(ctx context.Context, key string, entry Entry) {
	if b == nil || b.client == nil {
		return
	}
	raw, err := json.Marshal(entry)
	if err != nil {
		return
	}
	_ = b.client.Set(ctx, key, raw, b.ttl).Err()
}
