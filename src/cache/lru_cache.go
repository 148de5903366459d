package cache

import (
	"container/list"
	"sync"
	"time"
)

// CacheEntry holds a cached value with expiration
type CacheEntry struct {
	Value     any
	ExpiresAt time.Time
}

// LRUCache is a thread-safe LRU cache with TTL support
type LRUCache struct {
	mu       sync.Mutex
	capacity int
	ttl      time.Duration
	items    map[string]*list.Element
	lru      *list.List
}

type entry struct {
	key   string
	value CacheEntry
}

// NewLRUCache creates a new LRU cache with the given capacity and TTL.
// A TTL of zero means entries never expire.
func NewLRUCache(capacity int, ttl time.Duration) *LRUCache {
	if capacity <= 0 {
		capacity = 16
	}
	return &LRUCache{
		capacity: capacity,
		ttl:      ttl,
		items:    make(map[string]*list.Element, capacity),
		lru:      list.New(),
	}
}

// Get retrieves a value from the cache
func (c *LRUCache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if !ok {
		return nil, false
	}

	ent := elem.Value.(*entry)

	if !ent.value.ExpiresAt.IsZero() && time.Now().After(ent.value.ExpiresAt) {
		c.lru.Remove(elem)
		delete(c.items, key)
		return nil, false
	}

	c.lru.MoveToFront(elem)
	return ent.value.Value, true
}

// Set adds or updates a value in the cache
func (c *LRUCache) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.set(key, value)
}

// GetOrLoad returns the cached value for key, calling load to populate the
// cache on a miss. Concurrent callers for the same missing key may each run
// load; the last result wins, which is acceptable for idempotent loaders.
func (c *LRUCache) GetOrLoad(key string, load func() any) any {
	if value, ok := c.Get(key); ok {
		return value
	}
	value := load()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.set(key, value)
	return value
}

func (c *LRUCache) set(key string, value any) {
	var expiresAt time.Time
	if c.ttl > 0 {
		expiresAt = time.Now().Add(c.ttl)
	}

	if elem, ok := c.items[key]; ok {
		c.lru.MoveToFront(elem)
		elem.Value.(*entry).value = CacheEntry{Value: value, ExpiresAt: expiresAt}
		return
	}

	ent := &entry{key: key, value: CacheEntry{Value: value, ExpiresAt: expiresAt}}
	elem := c.lru.PushFront(ent)
	c.items[key] = elem

	if c.lru.Len() > c.capacity {
		oldest := c.lru.Back()
		if oldest != nil {
			c.lru.Remove(oldest)
			delete(c.items, oldest.Value.(*entry).key)
		}
	}
}

// Clear removes all entries from the cache
func (c *LRUCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]*list.Element, c.capacity)
	c.lru.Init()
}

// Len returns the number of items in the cache
func (c *LRUCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}
