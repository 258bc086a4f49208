package checkin

import (
	"sync"
	"time"
)

// defaultMaxEntries bounds the cooldown map. A single kiosk never comes
// close, but the cache must not grow without limit if a scanner misbehaves.
const defaultMaxEntries = 1024

// Cooldown is a bounded last-seen cache keyed by scanned identity. It
// suppresses immediate re-processing of the same physical scan (scanners
// often fire several times per second). It is advisory only: the checked-in
// state in the log table stays authoritative.
type Cooldown struct {
	mu   sync.Mutex
	ttl  time.Duration
	max  int
	seen map[string]time.Time
	now  func() time.Time
}

// NewCooldown builds a cache with the given window. A zero or negative TTL
// disables suppression entirely.
func NewCooldown(ttl time.Duration) *Cooldown {
	return &Cooldown{
		ttl:  ttl,
		max:  defaultMaxEntries,
		seen: make(map[string]time.Time),
		now:  time.Now,
	}
}

// Recent reports whether the key was seen within the window, recording the
// current time when it was not. Expired entries are swept on every call; the
// table is small enough that a full sweep is cheaper than bookkeeping.
func (c *Cooldown) Recent(key string) bool {
	if c == nil || c.ttl <= 0 {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for k, at := range c.seen {
		if now.Sub(at) > c.ttl {
			delete(c.seen, k)
		}
	}
	if at, ok := c.seen[key]; ok && now.Sub(at) <= c.ttl {
		return true
	}
	if len(c.seen) >= c.max {
		// Window full of live entries: drop the map rather than block scans.
		c.seen = make(map[string]time.Time)
	}
	c.seen[key] = now
	return false
}
