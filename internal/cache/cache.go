// Package cache holds embedding vectors for history records so they are not
// recomputed on every duplicate check. Entries carry a TTL equal to the
// history window: a vector expires no later than its record is pruned.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"
)

type item struct {
	vector    []float32
	expiresAt time.Time
}

type VectorCache struct {
	mu    sync.RWMutex
	items map[string]item
}

func New() *VectorCache {
	return &VectorCache{
		items: make(map[string]item),
	}
}

func (c *VectorCache) Set(key string, vector []float32, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = item{
		vector:    vector,
		expiresAt: time.Now().Add(ttl),
	}
}

func (c *VectorCache) Get(key string) ([]float32, bool) {
	c.mu.RLock()
	it, exists := c.items[key]
	c.mu.RUnlock()

	if !exists {
		return nil, false
	}
	if time.Now().After(it.expiresAt) {
		c.mu.Lock()
		delete(c.items, key)
		c.mu.Unlock()
		return nil, false
	}
	return it.vector, true
}

func (c *VectorCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Key derives a stable cache key from a record's text.
func Key(text string) string {
	h := sha256.Sum256([]byte(text))
	return hex.EncodeToString(h[:])
}
