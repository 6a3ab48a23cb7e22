package infra

import (
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/olgasafonova/mediawiki-list-client/metrics"
)

// Cache size limits to prevent unbounded memory growth
const (
	DefaultMaxCacheEntries = 1000
	DefaultMaxCacheTTL     = time.Hour
)

type cacheEntry struct {
	data      any
	expiresAt time.Time
}

// Cache is an LRU cache with a per-entry TTL. Entries never outlive the
// cache-wide maximum TTL.
type Cache struct {
	lru    *expirable.LRU[string, cacheEntry]
	maxTTL time.Duration
	now    func() time.Time
}

// CacheOption configures a Cache.
type CacheOption func(*Cache)

// WithCacheClock replaces time.Now for expiry checks.
func WithCacheClock(now func() time.Time) CacheOption {
	return func(c *Cache) {
		c.now = now
	}
}

// WithMaxTTL caps how long any entry may live.
func WithMaxTTL(ttl time.Duration) CacheOption {
	return func(c *Cache) {
		if ttl > 0 {
			c.maxTTL = ttl
		}
	}
}

// NewCache creates a new LRU cache with the specified max entries
func NewCache(maxEntries int, opts ...CacheOption) *Cache {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxCacheEntries
	}
	c := &Cache{
		maxTTL: DefaultMaxCacheTTL,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.lru = expirable.NewLRU[string, cacheEntry](maxEntries, func(string, cacheEntry) {
		metrics.CacheEvictions.Inc()
	}, c.maxTTL)
	return c
}

// Get retrieves a cached value if it exists and hasn't expired
func (c *Cache) Get(key string) (any, bool) {
	e, ok := c.lru.Get(key)
	if !ok {
		metrics.RecordCacheAccess(false)
		return nil, false
	}
	if !c.now().Before(e.expiresAt) {
		c.lru.Remove(key)
		metrics.RecordCacheAccess(false)
		return nil, false
	}
	metrics.RecordCacheAccess(true)
	return e.data, true
}

// Set stores a value with the given TTL. A TTL of zero or one above the
// cache maximum is clamped to the maximum.
func (c *Cache) Set(key string, data any, ttl time.Duration) {
	if ttl <= 0 || ttl > c.maxTTL {
		ttl = c.maxTTL
	}
	c.lru.Add(key, cacheEntry{data: data, expiresAt: c.now().Add(ttl)})
	metrics.SetCacheSize(c.Size())
}

// Delete removes a key from the cache
func (c *Cache) Delete(key string) {
	c.lru.Remove(key)
}

// DeletePrefix removes all cache entries with keys starting with prefix
func (c *Cache) DeletePrefix(prefix string) {
	for _, k := range c.lru.Keys() {
		if strings.HasPrefix(k, prefix) {
			c.lru.Remove(k)
		}
	}
}

// Size returns the current number of entries in the cache
func (c *Cache) Size() int64 {
	return int64(c.lru.Len())
}

// Purge drops every entry
func (c *Cache) Purge() {
	c.lru.Purge()
	metrics.SetCacheSize(0)
}
