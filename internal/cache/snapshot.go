package cache

import (
	"context"
	"sync"
	"time"

	"carteira/internal/core"
	"carteira/internal/summary"
)

// SnapshotCache keeps one loaded collection snapshot per owner. Snapshots
// are shared; readers must treat them as immutable.
type SnapshotCache struct {
	lru *LRUCache[summary.Snapshot]

	mu          sync.Mutex
	generations map[core.OwnerID]uint64
}

// Loader fetches a fresh snapshot on a miss.
type Loader func(ctx context.Context) (summary.Snapshot, error)

func NewSnapshotCache(size int, ttl time.Duration) *SnapshotCache {
	return &SnapshotCache{
		lru:         NewLRUCache[summary.Snapshot](size, ttl),
		generations: make(map[core.OwnerID]uint64),
	}
}

func (c *SnapshotCache) Get(owner core.OwnerID) (summary.Snapshot, bool) {
	return c.lru.Get(string(owner))
}

func (c *SnapshotCache) Set(owner core.OwnerID, snap summary.Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Set(string(owner), snap)
}

// Invalidate drops the owner's snapshot. A load already in flight for the
// owner will not repopulate the cache.
func (c *SnapshotCache) Invalidate(owner core.OwnerID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generations[owner]++
	c.lru.Delete(string(owner))
}

// GetOrLoad returns the cached snapshot or loads and caches a new one.
// Load errors are returned as is and nothing is cached.
func (c *SnapshotCache) GetOrLoad(ctx context.Context, owner core.OwnerID, load Loader) (summary.Snapshot, error) {
	if snap, ok := c.Get(owner); ok {
		return snap, nil
	}

	c.mu.Lock()
	gen := c.generations[owner]
	c.mu.Unlock()

	snap, err := load(ctx)
	if err != nil {
		return summary.Snapshot{}, err
	}

	c.mu.Lock()
	if c.generations[owner] == gen {
		c.lru.Set(string(owner), snap)
	}
	c.mu.Unlock()
	return snap, nil
}

func (c *SnapshotCache) CleanExpired() int { return c.lru.CleanExpired() }
func (c *SnapshotCache) Size() int         { return c.lru.Size() }
