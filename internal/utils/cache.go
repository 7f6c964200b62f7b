package utils

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// CacheItem 包装缓存数据和过期时间
type CacheItem[V any] struct {
	Data      V
	ExpiresAt time.Time
}

// Cache is a bounded LRU whose entries also expire after a TTL.
// OnEvict runs for capacity evictions, expirations and explicit deletes.
type Cache[K comparable, V any] struct {
	lruCache *lru.Cache[K, CacheItem[V]]
	ttl      time.Duration
	now      func() time.Time
}

// NewCache creates a cache holding at most size entries for ttl each.
// onEvict may be nil.
func NewCache[K comparable, V any](size int, ttl time.Duration, onEvict func(K, V)) (*Cache[K, V], error) {
	var cb func(K, CacheItem[V])
	if onEvict != nil {
		cb = func(k K, item CacheItem[V]) { onEvict(k, item.Data) }
	}
	l, err := lru.NewWithEvict[K, CacheItem[V]](size, cb)
	if err != nil {
		return nil, err
	}
	return &Cache[K, V]{lruCache: l, ttl: ttl, now: time.Now}, nil
}

// Set 设置缓存
func (c *Cache[K, V]) Set(key K, data V) {
	c.lruCache.Add(key, CacheItem[V]{
		Data:      data,
		ExpiresAt: c.now().Add(c.ttl),
	})
}

// Get returns the cached value; expired entries are removed and reported missing.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	val, ok := c.lruCache.Get(key)
	if !ok {
		var zero V
		return zero, false
	}

	// 检查过期
	if c.now().After(val.ExpiresAt) {
		c.lruCache.Remove(key)
		var zero V
		return zero, false
	}

	return val.Data, true
}

// Delete 删除指定缓存
func (c *Cache[K, V]) Delete(key K) {
	c.lruCache.Remove(key)
}

// Len counts entries, including ones that expired but were not read since.
func (c *Cache[K, V]) Len() int {
	return c.lruCache.Len()
}

// Purge drops every entry, running the eviction callback for each.
func (c *Cache[K, V]) Purge() {
	c.lruCache.Purge()
}
