package cache

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss is returned by Store.Get when the key is absent or expired.
var ErrCacheMiss = errors.New("cache: key not found")

// Store is the low-level cache backend. The production implementation is
// redis; the in-memory implementation backs tests and the degraded mode
// when redis is unreachable. Entries are disposable by contract: dropping
// any or all of them can only cost latency, never correctness.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error

	// DeletePattern removes every key matching a glob-style pattern,
	// e.g. "unread:u1:*".
	DeletePattern(ctx context.Context, pattern string) error

	Close() error
}
