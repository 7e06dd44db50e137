// Package cache holds in-process caches in front of the database.
package cache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// PendingTimeLoader reads the submission time of the newest pending change.
// ok is false when nothing is pending.
type PendingTimeLoader func(ctx context.Context) (ts time.Time, ok bool, err error)

type pendingTime struct {
	ts time.Time
	ok bool
}

const pendingTimeKey = "newest"

// PendingTime caches the newest pending submission time for ttl.
// Decisions on queue rows invalidate it explicitly.
type PendingTime struct {
	load PendingTimeLoader
	lru  *expirable.LRU[string, pendingTime]
}

// NewPendingTime creates a cache reading through load.
func NewPendingTime(load PendingTimeLoader, ttl time.Duration) *PendingTime {
	return &PendingTime{
		load: load,
		lru:  expirable.NewLRU[string, pendingTime](1, nil, ttl),
	}
}

// Get returns the cached value, loading it on a miss. Load errors are not cached.
func (c *PendingTime) Get(ctx context.Context) (time.Time, bool, error) {
	if v, ok := c.lru.Get(pendingTimeKey); ok {
		return v.ts, v.ok, nil
	}

	ts, ok, err := c.load(ctx)
	if err != nil {
		return time.Time{}, false, err
	}
	c.lru.Add(pendingTimeKey, pendingTime{ts: ts, ok: ok})
	return ts, ok, nil
}

// Invalidate drops the cached value.
func (c *PendingTime) Invalidate() {
	c.lru.Purge()
}
