package jwks

import (
	"sync"
	"time"
)

// keyCache is a TTL cache of key sets keyed by JWKS URL. Read-mostly; a race
// between two goroutines on the same expired key performs a redundant fetch,
// not a correctness bug.
type keyCache struct {
	mu  sync.RWMutex
	ttl time.Duration
	set map[string]cachedSet
}

type cachedSet struct {
	set       *Set
	fetchedAt time.Time
}

func newKeyCache(ttl time.Duration) *keyCache {
	return &keyCache{
		ttl: ttl,
		set: make(map[string]cachedSet),
	}
}

func (c *keyCache) get(url string) *Set {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.set[url]
	if !ok || time.Since(entry.fetchedAt) > c.ttl {
		return nil
	}
	return entry.set
}

func (c *keyCache) put(url string, set *Set) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.set[url] = cachedSet{set: set, fetchedAt: time.Now()}
}
