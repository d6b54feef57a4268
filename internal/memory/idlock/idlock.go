// Package idlock provides per-id mutual exclusion for the memory engine via
// a fixed table of shards, each hashed to by id, so concurrent operations on
// different ids do not contend on a single global lock.
package idlock

import (
	"hash/fnv"
	"sync"
)

// shardCount is a small constant: enough to spread contention across
// concurrently-touched ids without the bookkeeping cost of a lock per id.
const shardCount = 32

// Table is a sharded mutex keyed by record id.
type Table struct {
	shards [shardCount]sync.Mutex
}

// New creates an idlock Table.
func New() *Table {
	return &Table{}
}

// Lock acquires the shard guarding id.
func (t *Table) Lock(id string) {
	t.shards[shardFor(id)].Lock()
}

// Unlock releases the shard guarding id.
func (t *Table) Unlock(id string) {
	t.shards[shardFor(id)].Unlock()
}

// With runs fn while holding the shard guarding id, unlocking it afterward
// regardless of whether fn panics or returns an error.
func (t *Table) With(id string, fn func() error) error {
	t.Lock(id)
	defer t.Unlock(id)
	return fn()
}

func shardFor(id string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	return h.Sum32() % shardCount
}
