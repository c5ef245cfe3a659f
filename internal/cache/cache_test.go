package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache() (*Cache, *MemoryStore) {
	store := NewMemoryStore()
	return New(store, Options{NegativeTTL: time.Minute}), store
}

func TestGetOrSetLoadsOnceThenServesFromCache(t *testing.T) {
	t.Parallel()
	c, _ := newTestCache()
	calls := 0
	loader := func(ctx context.Context) (int, error) {
		calls++
		return 42, nil
	}

	value, err := GetOrSet(context.Background(), c, "k", time.Minute, loader, nil)
	require.NoError(t, err)
	assert.Equal(t, 42, value)

	value, err = GetOrSet(context.Background(), c, "k", time.Minute, loader, nil)
	require.NoError(t, err)
	assert.Equal(t, 42, value)
	assert.Equal(t, 1, calls)
}

func TestGetOrSetLoaderErrorNotCached(t *testing.T) {
	t.Parallel()
	c, store := newTestCache()
	boom := errors.New("db down")

	_, err := GetOrSet(context.Background(), c, "k", time.Minute, func(ctx context.Context) (int, error) {
		return 0, boom
	}, nil)
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, store.Len())
}

func TestNegativeCaching(t *testing.T) {
	t.Parallel()
	c, _ := newTestCache()
	missing := errors.New("not found")
	calls := 0
	loader := func(ctx context.Context) (string, error) {
		calls++
		return "", missing
	}
	notFound := func(err error) bool { return errors.Is(err, missing) }

	_, err := GetOrSet(context.Background(), c, "k", time.Minute, loader, notFound)
	assert.ErrorIs(t, err, missing)

	// The sentinel answers the repeat without running the loader.
	_, err = GetOrSet(context.Background(), c, "k", time.Minute, loader, notFound)
	assert.ErrorIs(t, err, ErrNegativeEntry)
	assert.Equal(t, 1, calls)

	// Invalidation clears the sentinel like any other entry.
	c.Invalidate(context.Background(), "k")
	_, err = GetOrSet(context.Background(), c, "k", time.Minute, loader, notFound)
	assert.ErrorIs(t, err, missing)
	assert.Equal(t, 2, calls)
}

func TestInvalidatePrefix(t *testing.T) {
	t.Parallel()
	c, store := newTestCache()
	require.NoError(t, store.Set(context.Background(), "unread:u1:total", "3", 0))
	require.NoError(t, store.Set(context.Background(), "unread:u1:private", "1", 0))
	require.NoError(t, store.Set(context.Background(), "unread:u2:total", "7", 0))

	c.InvalidatePrefix(context.Background(), "unread:u1:")

	_, err := store.Get(context.Background(), "unread:u1:total")
	assert.ErrorIs(t, err, ErrCacheMiss)
	_, err = store.Get(context.Background(), "unread:u1:private")
	assert.ErrorIs(t, err, ErrCacheMiss)

	// Other users' keys are untouched.
	value, err := store.Get(context.Background(), "unread:u2:total")
	require.NoError(t, err)
	assert.Equal(t, "7", value)
}

func TestJitterTTLBounds(t *testing.T) {
	t.Parallel()
	c := New(NewMemoryStore(), Options{JitterFactor: 0.5})
	base := time.Minute

	for i := 0; i < 100; i++ {
		jittered := c.JitterTTL(base)
		assert.GreaterOrEqual(t, jittered, base)
		assert.LessOrEqual(t, jittered, base+base/2)
	}

	assert.Equal(t, time.Duration(0), c.JitterTTL(0))
}

func TestMemoryStoreExpiry(t *testing.T) {
	t.Parallel()
	store := NewMemoryStore()
	require.NoError(t, store.Set(context.Background(), "k", "v", 10*time.Millisecond))

	value, err := store.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.Equal(t, "v", value)

	time.Sleep(20 * time.Millisecond)
	_, err = store.Get(context.Background(), "k")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestUndecodableEntryFallsBackToLoader(t *testing.T) {
	t.Parallel()
	c, store := newTestCache()
	require.NoError(t, store.Set(context.Background(), "k", "{not json", 0))

	value, err := GetOrSet(context.Background(), c, "k", time.Minute, func(ctx context.Context) (int, error) {
		return 9, nil
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, 9, value)

	// The bad entry was replaced by the fresh value.
	raw, err := store.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.Equal(t, "9", raw)
}
