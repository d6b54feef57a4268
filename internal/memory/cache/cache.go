// Package cache provides WorkingCache, a bounded in-process cache of full
// Records that sits in front of a VectorStore, keeping the hottest records
// available without a backend round-trip.
package cache

import (
	"context"
	"sort"
	"sync"

	"github.com/Parswanadh/memory-mcp-server/internal/memory/store"
	"github.com/Parswanadh/memory-mcp-server/pkg/models"
)

// DefaultCapacity is the default number of records the cache holds, per spec.
const DefaultCapacity = 100

// WorkingCache holds up to capacity Records, evicting the earliest-inserted
// entry when full; reads and overwrites of a cached id do not change its
// position. Every write is pushed through to the backing VectorStore.
type WorkingCache struct {
	mu       sync.RWMutex
	items    map[string]*models.Record
	order    []string
	capacity int
	backing  store.VectorStore
}

// New creates an empty WorkingCache backed by backing, with room for
// capacity records. A non-positive capacity falls back to DefaultCapacity.
func New(backing store.VectorStore, capacity int) *WorkingCache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &WorkingCache{
		items:    make(map[string]*models.Record),
		capacity: capacity,
		backing:  backing,
	}
}

// Warm populates the cache at startup from the backing store, keeping the
// capacity most-used records ranked by accessCount/(now-lastAccessed)
// descending.
func (c *WorkingCache) Warm(ctx context.Context, nowMS int64) error {
	recs, err := c.backing.List(ctx, nil)
	if err != nil {
		return err
	}

	sort.Slice(recs, func(i, j int) bool {
		return recencyScore(recs[i], nowMS) > recencyScore(recs[j], nowMS)
	})

	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]*models.Record, c.capacity)
	c.order = c.order[:0]
	for _, rec := range recs {
		if len(c.order) >= c.capacity {
			break
		}
		c.items[rec.ID] = rec.Clone()
		c.order = append(c.order, rec.ID)
	}
	return nil
}

// recencyScore implements accessCount/(now-lastAccessed), scoring a
// non-positive age as accessCount+1 so a just-written record ranks ahead
// of stale ones with the same count.
func recencyScore(rec *models.Record, nowMS int64) float64 {
	age := nowMS - rec.LastAccessMS
	if age <= 0 {
		return float64(rec.AccessCount + 1)
	}
	return float64(rec.AccessCount) / float64(age)
}

// Get returns a cached record by id, or (nil, false) on a miss. Callers
// fall back to the backing VectorStore on a miss.
func (c *WorkingCache) Get(id string) (*models.Record, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	rec, ok := c.items[id]
	if !ok {
		return nil, false
	}
	return rec.Clone(), true
}

// Put writes rec through to the backing store first, and only inserts or
// replaces it in the cache (evicting the oldest entry if at capacity) once
// that write succeeds. A record that fails to persist durably must never
// appear in the cache.
func (c *WorkingCache) Put(ctx context.Context, rec *models.Record) error {
	if err := c.backing.Store(ctx, rec); err != nil {
		return err
	}
	c.touch(rec)
	return nil
}

func (c *WorkingCache) touch(rec *models.Record) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.items[rec.ID]; !exists {
		c.order = append(c.order, rec.ID)
		if len(c.order) > c.capacity {
			oldest := c.order[0]
			c.order = c.order[1:]
			delete(c.items, oldest)
		}
	}
	c.items[rec.ID] = rec.Clone()
}

// Invalidate removes id from the cache without touching the backing store.
func (c *WorkingCache) Invalidate(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.items[id]; !ok {
		return
	}
	delete(c.items, id)
	for i, k := range c.order {
		if k == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

// Len returns the number of entries currently cached.
func (c *WorkingCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
