// Package cache implements a two-level cache: a
// per-request L1 map and a pluggable, process-wide L2 backend stamped
// with the global permissions_version. L2 is best-effort by contract —
// every backend method degrades to a miss (Entry{}, false) or a swallowed error
// rather than propagating a failure into the resolver.
package cache

import (
	"context"
	"strconv"
)

// Entry is what L2 stores: the resolved right map plus the version it
// was computed against.
type Entry struct {
	Version int64          `json:"version"`
	Values  map[string]any `json:"values"`
}

// Backend is the L2 cache contract: fetch/store keyed by an
// opaque string. Concrete adapters: RedisBackend, LocalBackend. A nil
// Backend is a legal, explicit "L1-only" configuration.
type Backend interface {
	Fetch(ctx context.Context, key string) (Entry, bool)
	Store(ctx context.Context, key string, entry Entry)
}

// Key composes the two-level cache key: (user_id,
// context_id | "global").
func Key(userID int64, contextID *int64) string {
	part := "global"
	if contextID != nil {
		part = strconv.FormatInt(*contextID, 10)
	}
	return strconv.FormatInt(userID, 10) + ":" + part
}
