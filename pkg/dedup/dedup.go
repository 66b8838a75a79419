// Package dedup drops duplicate deliveries by payload identity. QoS 1
// subscriptions can redeliver the same message; feeding a payload hash
// through a Deduper keeps the processing path idempotent.
package dedup

import (
	"sync"
	"time"
)

type Deduper struct {
	mu   sync.Mutex
	ttl  time.Duration
	cap  int
	seen map[string]time.Time // id -> expiry
}

func New(ttl time.Duration, capacity int) *Deduper {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	if capacity <= 0 {
		capacity = 10000
	}
	return &Deduper{ttl: ttl, cap: capacity, seen: make(map[string]time.Time, capacity)}
}

// ShouldProcess reports whether id has not been seen within the TTL window
// and marks it as seen. An empty id is always processed.
func (d *Deduper) ShouldProcess(id string) bool {
	if id == "" {
		return true
	}
	now := time.Now()

	d.mu.Lock()
	defer d.mu.Unlock()

	if exp, ok := d.seen[id]; ok && now.Before(exp) {
		return false
	}
	d.seen[id] = now.Add(d.ttl)
	if len(d.seen) > d.cap {
		d.sweep(now)
	}
	return true
}

// sweep evicts expired entries; called with the lock held.
func (d *Deduper) sweep(now time.Time) {
	for id, exp := range d.seen {
		if now.After(exp) {
			delete(d.seen, id)
		}
		if len(d.seen) <= d.cap {
			return
		}
	}
}

func (d *Deduper) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.seen)
}
