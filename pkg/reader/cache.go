package reader

import (
	"sync"
	"time"
)

// cache holds decoded resource bytes keyed by canonical path. Entries
// that sit unused for longer than the idle TTL are evicted during
// later writes, so a long session does not pin every resource it ever
// touched.
type cache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]*cacheEntry
}

type cacheEntry struct {
	data     []byte
	lastUsed time.Time
}

func newCache(ttl time.Duration) *cache {
	return &cache{ttl: ttl, entries: make(map[string]*cacheEntry)}
}

func (c *cache) get(key string) ([]byte, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	c.mu.Lock()
	e.lastUsed = time.Now()
	c.mu.Unlock()
	return e.data, true
}

func (c *cache) put(key string, data []byte) {
	now := time.Now()
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, e := range c.entries {
		if now.Sub(e.lastUsed) > c.ttl {
			delete(c.entries, k)
		}
	}
	c.entries[key] = &cacheEntry{data: data, lastUsed: now}
}

func (c *cache) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
