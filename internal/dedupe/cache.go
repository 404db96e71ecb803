// Package dedupe tracks recently ingested opportunity fingerprints so the
// worker can drop resubmissions of the same opportunity.
package dedupe

import (
	"sync"
	"time"
)

type arrival struct {
	fingerprint string
	at          time.Time
}

// Cache is a fixed-size set of recently seen fingerprints with a TTL.
type Cache struct {
	mu       sync.Mutex
	seen     map[string]time.Time
	arrivals []arrival
	capacity int
	ttl      time.Duration
}

// NewCache builds a cache; non-positive capacity or ttl fall back to sane
// minimums.
func NewCache(capacity int, ttl time.Duration) *Cache {
	if capacity <= 0 {
		capacity = 1
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Cache{
		seen:     make(map[string]time.Time, capacity),
		arrivals: make([]arrival, 0, capacity),
		capacity: capacity,
		ttl:      ttl,
	}
}

// Seen reports whether fingerprint was observed inside the TTL window. It
// does not record anything; pair with Observe after successful indexing.
func (c *Cache) Seen(fingerprint string) bool {
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	at, ok := c.seen[fingerprint]
	return ok && now.Sub(at) <= c.ttl
}

// Observe records a fingerprint, evicting expired and over-capacity entries.
func (c *Cache) Observe(fingerprint string) {
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.seen[fingerprint] = now
	c.arrivals = append(c.arrivals, arrival{fingerprint: fingerprint, at: now})
	c.evict(now)
}

// Len returns the number of live fingerprints.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.seen)
}

func (c *Cache) evict(now time.Time) {
	cutoff := now.Add(-c.ttl)

	for len(c.arrivals) > 0 && (len(c.seen) > c.capacity || c.arrivals[0].at.Before(cutoff)) {
		oldest := c.arrivals[0]
		c.arrivals = c.arrivals[1:]

		// A fingerprint re-observed later carries a newer timestamp; only
		// the stale arrival record is discarded then.
		if at, ok := c.seen[oldest.fingerprint]; ok && at.Equal(oldest.at) {
			delete(c.seen, oldest.fingerprint)
		}
	}
}
