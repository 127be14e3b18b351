package utils

import (
	"log"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// CacheItem wraps cached data with its expiry
type CacheItem struct {
	Data      interface{}
	ExpiresAt time.Time
}

// Cache is a size-bounded local cache with per-entry TTL
type Cache struct {
	lruCache *lru.Cache[string, CacheItem]
}

var cacheInstance *Cache

// NewCache creates an independent cache, mainly for components that
// should not share the global keyspace (and for tests)
func NewCache(size int) *Cache {
	l, err := lru.New[string, CacheItem](size)
	if err != nil {
		log.Fatalf("Failed to create LRU cache: %v", err)
	}
	return &Cache{lruCache: l}
}

// GetCache returns the shared singleton instance
func GetCache() *Cache {
	if cacheInstance == nil {
		cacheInstance = NewCache(500)
	}
	return cacheInstance
}

func (c *Cache) Set(key string, data interface{}, ttl time.Duration) {
	c.lruCache.Add(key, CacheItem{
		Data:      data,
		ExpiresAt: time.Now().Add(ttl),
	})
}

// Get returns nil when the key is absent or expired
func (c *Cache) Get(key string) interface{} {
	val, ok := c.lruCache.Get(key)
	if !ok {
		return nil
	}

	if time.Now().After(val.ExpiresAt) {
		c.lruCache.Remove(key)
		return nil
	}

	return val.Data
}

func (c *Cache) Delete(key string) {
	c.lruCache.Remove(key)
}
