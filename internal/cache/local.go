package cache

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
)

// LocalBackend is the "in-process shared memory" L2 option, for
// single-process deployments with no Redis available. It wraps
// golang-lru's expirable cache as a bounded, TTL'd process cache with
// no network hop.
type LocalBackend struct {
	c *lru.LRU[string, Entry]
}

// NewLocalBackend builds a bounded, TTL'd in-process L2. size caps the
// number of distinct (user, context) entries retained; ttl is the same
// safety-net expiry RedisBackend applies.
func NewLocalBackend(size int, ttl time.Duration) *LocalBackend {
	if size <= 0 {
		size = 4096
	}
	return &LocalBackend{c: lru.NewLRU[string, Entry](size, nil, ttl)}
}

// Fetch implements Backend.
func (b *LocalBackend) Fetch(ctx context.Context, key string) (Entry, bool) {
	if b == nil || b.c == nil {
		return Entry{}, false
	}
	return b.c.Get(key)
}

// Store implements Backend.
func (b *LocalBackend) Store(ctx context.Context, key string, entry Entry) {
	if b == nil || b.c == nil {
		return
	}
	b.c.Add(key, entry)
}
