package datasets

import (
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// frameCache keeps recently read frames in an expirable LRU. Changing the
// TTL or capacity rebuilds the LRU and drops what it held; a TTL <= 0
// disables caching.
type frameCache struct {
	mu         sync.RWMutex
	ttl        time.Duration
	maxEntries int
	lru        *expirable.LRU[int, []Player]
}

func newFrameCache(ttl time.Duration, maxEntries int) *frameCache {
	c := &frameCache{ttl: ttl, maxEntries: maxEntries}
	c.rebuild()
	return c
}

// rebuild must be called with mu held for writing (or before c is shared).
func (c *frameCache) rebuild() {
	if c.ttl <= 0 {
		c.lru = nil
		return
	}
	c.lru = expirable.NewLRU[int, []Player](c.maxEntries, nil, c.ttl)
}

func (c *frameCache) setTTL(ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ttl = ttl
	c.rebuild()
}

func (c *frameCache) setMaxEntries(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.maxEntries = n
	c.rebuild()
}

func (c *frameCache) get(frameID int) ([]Player, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.lru == nil {
		return nil, false
	}
	players, ok := c.lru.Get(frameID)
	if !ok {
		return nil, false
	}
	return append([]Player(nil), players...), true
}

func (c *frameCache) put(frameID int, players []Player) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.lru == nil {
		return
	}
	c.lru.Add(frameID, append([]Player(nil), players...))
}

func (c *frameCache) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.lru == nil {
		return 0
	}
	return c.lru.Len()
}
