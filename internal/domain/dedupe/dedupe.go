// Package dedupe provides content-key idempotency tracking. The alert
// pipeline uses it to collapse regenerated proximity alerts that carry
// the same user, task and approximate distance.
package dedupe

import (
	"context"
	"sync"
	"sync/atomic"
)

// Deduper records seen content keys for at-most-once storage.
type Deduper interface {
	// SeenAndRecord atomically checks whether key was seen and records
	// it if not. Returns true when key was already present.
	SeenAndRecord(ctx context.Context, key string) bool

	// Unrecord forgets a key so the same content can be stored again,
	// for example after a failed persistence attempt.
	Unrecord(ctx context.Context, key string)

	Size() int64
}

// memory is a bounded in-memory deduper. Keys are kept in insertion
// order in a ring; when the bound is reached the oldest key is evicted.
// A non-positive bound disables eviction.
type memory struct {
	mu      sync.Mutex
	seen    map[string]struct{}
	order   []string
	oldest  int
	maxSize int
	size    atomic.Int64
}

// NewMemory creates an in-memory deduper. The default bound keeps the
// most recent 10000 keys.
func NewMemory(opts ...Option) Deduper {
	d := &memory{maxSize: 10000}
	for _, opt := range opts {
		opt(d)
	}
	d.seen = make(map[string]struct{})
	if d.maxSize > 0 {
		d.order = make([]string, 0, d.maxSize)
	}
	return d
}

func (d *memory) SeenAndRecord(_ context.Context, key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[key]; ok {
		return true
	}
	if d.maxSize > 0 {
		if len(d.seen) >= d.maxSize {
			d.evictOldest()
		}
		d.order = append(d.order, key)
	}
	d.seen[key] = struct{}{}
	d.size.Add(1)
	return false
}

func (d *memory) Unrecord(_ context.Context, key string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[key]; !ok {
		return
	}
	delete(d.seen, key)
	d.size.Add(-1)
	// The ring entry stays behind as a tombstone; evictOldest skips
	// entries that are no longer in the map.
}

// evictOldest drops ring entries until one that is still live has been
// removed from the map. Callers hold d.mu.
func (d *memory) evictOldest() {
	for d.oldest < len(d.order) {
		key := d.order[d.oldest]
		d.oldest++
		if _, ok := d.seen[key]; ok {
			delete(d.seen, key)
			d.size.Add(-1)
			break
		}
	}
	// Compact once the consumed prefix dominates the ring.
	if d.oldest > len(d.order)/2 {
		d.order = append(d.order[:0], d.order[d.oldest:]...)
		d.oldest = 0
	}
}

func (d *memory) Size() int64 {
	return d.size.Load()
}
