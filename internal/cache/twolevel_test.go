package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisBackend(t *testing.T) *RedisBackend {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisBackend(client, 10*time.Minute)
}

func TestTwoLevelComputesOnceThenServesFromL2(t *testing.T) {
	backend := newRedisBackend(t)
	var calls int
	resolve := func(ctx context.Context, userID int64, contextID *int64) (map[string]any, error) {
		calls++
		return map[string]any{"view_article": true}, nil
	}
	version := func(ctx context.Context) (int64, error) { return 7, nil }

	tl := NewTwoLevel(backend, resolve, version)
	ctx := context.Background()

	v1, err := tl.Get(ctx, nil, 1, nil)
	require.NoError(t, err)
	assert.Equal(t, true, v1["view_article"])
	assert.Equal(t, 1, calls)

	v2, err := tl.Get(ctx, nil, 1, nil)
	require.NoError(t, err)
	assert.Equal(t, true, v2["view_article"])
	assert.Equal(t, 1, calls, "second call with no L1 must still hit L2, not recompute")
}

func TestTwoLevelStaleVersionRecomputes(t *testing.T) {
	backend := newRedisBackend(t)
	var calls int
	var ver int64 = 1
	resolve := func(ctx context.Context, userID int64, contextID *int64) (map[string]any, error) {
		calls++
		return map[string]any{"n": calls}, nil
	}
	version := func(ctx context.Context) (int64, error) { return ver, nil }

	tl := NewTwoLevel(backend, resolve, version)
	ctx := context.Background()

	_, err := tl.Get(ctx, nil, 1, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)

	ver = 2
	v, err := tl.Get(ctx, nil, 1, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, v["n"])
	assert.Equal(t, 2, calls, "a version bump must force recomputation")
}

func TestTwoLevelL1SkipsVersionCheck(t *testing.T) {
	var versionCalls int
	version := func(ctx context.Context) (int64, error) {
		versionCalls++
		return 1, nil
	}
	resolve := func(ctx context.Context, userID int64, contextID *int64) (map[string]any, error) {
		return map[string]any{"n": 1}, nil
	}
	tl := NewTwoLevel(nil, resolve, version)
	l1 := NewRequest()
	ctx := context.Background()

	_, err := tl.Get(ctx, l1, 1, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, versionCalls)

	_, err = tl.Get(ctx, l1, 1, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, versionCalls, "an L1 hit must not re-read the version")
}

func TestNilBackendDegradesToL1Only(t *testing.T) {
	var calls int
	resolve := func(ctx context.Context, userID int64, contextID *int64) (map[string]any, error) {
		calls++
		return map[string]any{"n": calls}, nil
	}
	version := func(ctx context.Context) (int64, error) { return 1, nil }
	tl := NewTwoLevel(nil, resolve, version)
	ctx := context.Background()

	_, err := tl.Get(ctx, nil, 1, nil)
	require.NoError(t, err)
	_, err = tl.Get(ctx, nil, 1, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, calls, "with no L1 and no L2, every call recomputes")
}

func TestLocalBackendRoundTrips(t *testing.T) {
	b := NewLocalBackend(16, time.Minute)
	ctx := context.Background()
	_, ok := b.Fetch(ctx, "1:global")
	assert.False(t, ok)

	b.Store(ctx, "1:global", Entry{Version: 3, Values: map[string]any{"x": true}})
	entry, ok := b.Fetch(ctx, "1:global")
	require.True(t, ok)
	assert.Equal(t, int64(3), entry.Version)
	assert.Equal(t, true, entry.Values["x"])
}

func TestKeyEncoding(t *testing.T) {
	assert.Equal(t, "1:global", Key(1, nil))
	ctxID := int64(42)
	assert.Equal(t, "1:42", Key(1, &ctxID))
}
