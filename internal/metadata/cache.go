package metadata

import (
	"sync"
	"time"
)

// Cache is an in-memory TTL cache for TMDB results.
type Cache struct {
	mu       sync.RWMutex
	items    map[string]cacheItem
	ttl      time.Duration
	maxItems int
	now      func() time.Time
}

type cacheItem struct {
	value     interface{}
	expiresAt time.Time
}

// CacheConfig holds cache configuration.
type CacheConfig struct {
	TTL      time.Duration
	MaxItems int
}

// DefaultCacheConfig returns default cache configuration.
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		TTL:      15 * time.Minute,
		MaxItems: 500,
	}
}

// NewCache creates a new cache with the given configuration. Expired entries
// are purged lazily when the cache is full.
func NewCache(cfg CacheConfig) *Cache {
	if cfg.TTL == 0 {
		cfg.TTL = 15 * time.Minute
	}
	if cfg.MaxItems == 0 {
		cfg.MaxItems = 500
	}
	return &Cache{
		items:    make(map[string]cacheItem),
		ttl:      cfg.TTL,
		maxItems: cfg.MaxItems,
		now:      time.Now,
	}
}

// Get retrieves an item from the cache.
func (c *Cache) Get(key string) (interface{}, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	item, ok := c.items[key]
	if !ok || c.now().After(item.expiresAt) {
		return nil, false
	}
	return item.value, true
}

// Set stores an item in the cache.
func (c *Cache) Set(key string, value interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.items) >= c.maxItems {
		c.evict()
	}
	c.items[key] = cacheItem{value: value, expiresAt: c.now().Add(c.ttl)}
}

// Clear removes all items from the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]cacheItem)
}

// Len returns the number of items in the cache.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// evict drops expired items, then the entry closest to expiry if the cache
// is still full. Must be called with the lock held.
func (c *Cache) evict() {
	now := c.now()
	for key, item := range c.items {
		if now.After(item.expiresAt) {
			delete(c.items, key)
		}
	}
	if len(c.items) < c.maxItems {
		return
	}

	var oldestKey string
	var oldest time.Time
	for key, item := range c.items {
		if oldestKey == "" || item.expiresAt.Before(oldest) {
			oldestKey, oldest = key, item.expiresAt
		}
	}
	delete(c.items, oldestKey)
}

// GetTitles retrieves cached search results.
func (c *Cache) GetTitles(key string) ([]TitleMetadata, bool) {
	val, ok := c.Get(key)
	if !ok {
		return nil, false
	}
	results, ok := val.([]TitleMetadata)
	return results, ok
}

// GetTitle retrieves a cached title.
func (c *Cache) GetTitle(key string) (*TitleMetadata, bool) {
	val, ok := c.Get(key)
	if !ok {
		return nil, false
	}
	result, ok := val.(*TitleMetadata)
	return result, ok
}
