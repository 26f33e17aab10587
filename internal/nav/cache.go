package nav

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Cache stores computed menu trees across requests. Callers must Clone what
// they read before mutating it.
type Cache interface {
	Get(key string) ([]*Item, bool)
	Set(key string, items []*Item)
}

// MemoryCache is an in-process Cache with per-entry expiration.
type MemoryCache struct {
	c *gocache.Cache
}

// NewMemoryCache creates a MemoryCache whose entries expire after ttl.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{c: gocache.New(ttl, 2*ttl)}
}

// Get returns the cached menu tree for key.
func (m *MemoryCache) Get(key string) ([]*Item, bool) {
	v, ok := m.c.Get(key)
	if !ok {
		return nil, false
	}
	items, ok := v.([]*Item)
	return items, ok
}

// Set stores a menu tree under key.
func (m *MemoryCache) Set(key string, items []*Item) {
	m.c.SetDefault(key, items)
}
