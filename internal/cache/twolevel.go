package cache

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Resolver computes the fast-path resolution for (userID, contextID) when
// neither cache level has a fresh answer. It is internal/rbac.Resolve,
// injected so this package stays free of a store dependency.
type Resolver func(ctx context.Context, userID int64, contextID *int64) (map[string]any, error)

// VersionReader reads the current global permissions_version. It is
// internal/version.Counter.Current, injected for the same reason.
type VersionReader func(ctx context.Context) (int64, error)

// Request is the L1 cache: a per-invocation-context map. It lives for
// the duration of a single top-level request and is never shared
// across requests or goroutines outside that request. Once populated,
// an entry is fresh for the rest of the request with no version check.
type Request struct {
	mu      sync.Mutex
	entries map[string]map[string]any
}

// NewRequest builds an empty L1 cache. Callers construct one per
// top-level request/invocation.
func NewRequest() *Request {
	return &Request{entries: make(map[string]map[string]any)}
}

func (r *Request) get(key string) (map[string]any, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.entries[key]
	return v, ok
}

func (r *Request) put(key string, values map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[key] = values
}

// TwoLevel implements the read protocol: check L1, then L2 with a
// version check, then fall through to the resolver, writing back
// through both levels. Concurrent misses for the same key are
// collapsed with singleflight so a burst of requests for the same
// (user, context) triggers exactly one resolver call.
type TwoLevel struct {
	l2       Backend // nil is a legal L1-only configuration
	resolve  Resolver
	version  VersionReader
	inflight singleflight.Group

	// OnL1Hit, OnL2Hit and OnMiss are optional instrumentation hooks,
	// called synchronously from Get when non-nil. They let a caller
	// (the root engine) wire cache counters without this
	// package depending on internal/metrics.
	OnL1Hit func()
	OnL2Hit func()
	OnMiss  func()
}

// NewTwoLevel wires a resolver and version reader against an optional L2
// backend. Pass a nil backend for pure-L1 operation.
func NewTwoLevel(l2 Backend, resolve Resolver, version VersionReader) *TwoLevel {
	return &TwoLevel{l2: l2, resolve: resolve, version: version}
}

// Get implements the hasRight read protocol against the fast-path map
// (the engine's explain path does not go through the cache). l1 may be nil, in which case every call recomputes (or
// hits L2) with no request-scoped memoization.
func (t *TwoLevel) Get(ctx context.Context, l1 *Request, userID int64, contextID *int64) (map[string]any, error) {
	key := Key(userID, contextID)

	if l1 != nil {
		if v, ok := l1.get(key); ok {
			if t.OnL1Hit != nil {
				t.OnL1Hit()
			}
			return v, nil
		}
	}

	v, err, _ := t.inflight.Do(key, func() (any, error) {
		return t.fetchOrCompute(ctx, key, userID, contextID)
	})
	if err != nil {
		return nil, err
	}
	values := v.(map[string]any)

	if l1 != nil {
		l1.put(key, values)
	}
	return values, nil
}

func (t *TwoLevel) fetchOrCompute(ctx context.Context, key string, userID int64, contextID *int64) (map[string]any, error) {
	version, err := t.version(ctx)
	if err != nil {
		return nil, err
	}

	if t.l2 != nil {
		if entry, ok := t.l2.Fetch(ctx, key); ok && entry.Version == version {
			if t.OnL2Hit != nil {
				t.OnL2Hit()
			}
			return entry.Values, nil
		}
	}

	if t.OnMiss != nil {
		t.OnMiss()
	}
	values, err := t.resolve(ctx, userID, contextID)
	if err != nil {
		return nil, err
	}

	if t.l2 != nil {
		t.l2.Store(ctx, key, Entry{Version: version, Values: values})
	}
	return values, nil
}
