package cache

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"time"

	"campustalk_backend/internal/logger"
)

// ErrNegativeEntry reports a cached confirmed-absent lookup: the entity was
// recently looked up and did not exist, and the loader was skipped.
var ErrNegativeEntry = errors.New("cache: negative entry")

// negativeSentinel marks a confirmed-absent key. The NUL prefix keeps it
// outside the space of JSON-encoded values.
const negativeSentinel = "\x00absent"

// Cache is the cache-aside layer over a Store. Concurrent misses on the
// same key both run the loader; the value is an idempotent derived
// projection, so the worst case is redundant work. Store errors degrade
// silently to the loader and are never surfaced to callers.
type Cache struct {
	store        Store
	jitterFactor float64
	negativeTTL  time.Duration
}

type Options struct {
	JitterFactor float64       // fraction of the TTL added as random spread
	NegativeTTL  time.Duration // TTL for confirmed-absent sentinels
}

func New(store Store, opts Options) *Cache {
	if opts.JitterFactor <= 0 {
		opts.JitterFactor = 0.1
	}
	if opts.NegativeTTL <= 0 {
		opts.NegativeTTL = 30 * time.Second
	}
	return &Cache{
		store:        store,
		jitterFactor: opts.JitterFactor,
		negativeTTL:  opts.NegativeTTL,
	}
}

func (c *Cache) Store() Store {
	return c.store
}

func (c *Cache) Close() error {
	return c.store.Close()
}

// JitterTTL spreads expiry for keys created at the same moment so that
// expensive aggregate keys do not all fall out of the cache together.
func (c *Cache) JitterTTL(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return ttl
	}
	return ttl + time.Duration(rand.Float64()*c.jitterFactor*float64(ttl))
}

// SetNegative records a confirmed-absent lookup under a short fixed TTL.
func (c *Cache) SetNegative(ctx context.Context, key string) {
	if err := c.store.Set(ctx, key, negativeSentinel, c.negativeTTL); err != nil {
		logger.CtxWarn(ctx, "cache set negative failed", "key", key, "error", err)
	}
}

// Invalidate removes exact keys, logging failures and moving on.
func (c *Cache) Invalidate(ctx context.Context, keys ...string) {
	if err := c.store.Delete(ctx, keys...); err != nil {
		logger.CtxWarn(ctx, "cache invalidate failed", "keys", keys, "error", err)
	}
}

// InvalidatePrefix drops every key under a prefix. Coarse on purpose: any
// mutation that could affect a derived view clears the whole prefix rather
// than chasing exact keys.
func (c *Cache) InvalidatePrefix(ctx context.Context, prefix string) {
	if err := c.store.DeletePattern(ctx, prefix+"*"); err != nil {
		logger.CtxWarn(ctx, "cache invalidate prefix failed", "prefix", prefix, "error", err)
	}
}

// GetOrSet returns the cached value for key, or runs loader, stores the
// result with a jittered ttl and returns it. There is no single-flight
// dedup. A hit on a negative sentinel returns ErrNegativeEntry without
// calling the loader. notFound decides whether a loader error should be
// negatively cached; pass nil to disable negative caching for this key.
func GetOrSet[T any](ctx context.Context, c *Cache, key string, ttl time.Duration, loader func(ctx context.Context) (T, error), notFound func(error) bool) (T, error) {
	var zero T

	raw, err := c.store.Get(ctx, key)
	if err == nil {
		if raw == negativeSentinel {
			return zero, ErrNegativeEntry
		}
		var value T
		if uerr := json.Unmarshal([]byte(raw), &value); uerr == nil {
			return value, nil
		}
		// Undecodable entry: treat as a miss and fall through to the loader.
		c.Invalidate(ctx, key)
	} else if !errors.Is(err, ErrCacheMiss) {
		logger.CtxWarn(ctx, "cache get failed, falling back to loader", "key", key, "error", err)
	}

	value, err := loader(ctx)
	if err != nil {
		if notFound != nil && notFound(err) {
			c.SetNegative(ctx, key)
		}
		return zero, err
	}

	if data, merr := json.Marshal(value); merr == nil {
		if serr := c.store.Set(ctx, key, string(data), c.JitterTTL(ttl)); serr != nil {
			logger.CtxWarn(ctx, "cache set failed", "key", key, "error", serr)
		}
	}
	return value, nil
}
