// Package cache provides the small TTL memo the client keeps in front of
// tool discovery.
package cache

import (
	"sync"
	"time"
)

// entry is one captured value. Entries are replaced wholesale on refresh,
// never mutated in place.
type entry[T any] struct {
	value      T
	capturedAt time.Time
}

// Cache memoizes a single value for a bounded time. The zero value is ready
// to use. Refresh is mutex-guarded so concurrent callers cannot race a
// double load.
type Cache[T any] struct {
	mu  sync.Mutex
	cur *entry[T]
	now func() time.Time // test hook, nil means time.Now
}

// GetOrRefresh returns the cached value while it is younger than ttl,
// otherwise runs loader and caches its result. A loader failure is returned
// as-is and leaves any previous entry in place for the next call to retry.
func (c *Cache[T]) GetOrRefresh(ttl time.Duration, loader func() (T, error)) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now
	if c.now != nil {
		now = c.now
	}
	if c.cur != nil && now().Sub(c.cur.capturedAt) < ttl {
		return c.cur.value, nil
	}

	v, err := loader()
	if err != nil {
		var zero T
		return zero, err
	}
	c.cur = &entry[T]{value: v, capturedAt: now()}
	return v, nil
}

// Invalidate drops the cached value so the next GetOrRefresh reloads.
func (c *Cache[T]) Invalidate() {
	c.mu.Lock()
	c.cur = nil
	c.mu.Unlock()
}
