package utils

import (
	"log/slog"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

type cacheItem struct {
	data      any
	expiresAt time.Time
}

// PageCache is a small TTL cache for rendered list data.
type PageCache struct {
	lru *lru.Cache[string, cacheItem]
	now func() time.Time
}

func NewPageCache(size int) *PageCache {
	l, err := lru.New[string, cacheItem](size)
	if err != nil {
		// only fails for size <= 0
		slog.Error("invalid page cache size, using 1", "size", size, "error", err)
		l, _ = lru.New[string, cacheItem](1)
	}
	return &PageCache{lru: l, now: time.Now}
}

func (c *PageCache) Set(key string, data any, ttl time.Duration) {
	c.lru.Add(key, cacheItem{data: data, expiresAt: c.now().Add(ttl)})
}

// Get returns nil when the key is missing or expired.
func (c *PageCache) Get(key string) any {
	val, ok := c.lru.Get(key)
	if !ok {
		return nil
	}
	if c.now().After(val.expiresAt) {
		c.lru.Remove(key)
		return nil
	}
	return val.data
}

func (c *PageCache) Delete(key string) {
	c.lru.Remove(key)
}

// Purge drops every entry.
func (c *PageCache) Purge() {
	c.lru.Purge()
}
