// Package internal provides caching, charset and node helpers shared by
// the tidy processor and its engines.
package internal

import (
	"sync"
	"time"
)

type cacheEntry[V any] struct {
	prev, next *cacheEntry[V]
	expiresAt  int64
	value      V
	key        string
}

func (e *cacheEntry[V]) isExpired(now int64) bool {
	return e.expiresAt > 0 && now > e.expiresAt
}

// Cache is a thread-safe LRU cache with optional TTL.
type Cache[V any] struct {
	mu         sync.Mutex
	entries    map[string]*cacheEntry[V]
	maxEntries int
	ttl        time.Duration
	head, tail *cacheEntry[V] // sentinels
}

// NewCache returns a cache holding at most maxEntries values. A zero
// maxEntries disables caching; a zero ttl keeps entries until evicted.
func NewCache[V any](maxEntries int, ttl time.Duration) *Cache[V] {
	if maxEntries < 0 {
		maxEntries = 0
	}
	c := &Cache[V]{
		entries:    make(map[string]*cacheEntry[V], maxEntries),
		maxEntries: maxEntries,
		ttl:        ttl,
		head:       &cacheEntry[V]{},
		tail:       &cacheEntry[V]{},
	}
	c.head.next = c.tail
	c.tail.prev = c.head
	return c
}

// Get returns the value stored under key and whether it was found.
func (c *Cache[V]) Get(key string) (V, bool) {
	var zero V
	if key == "" {
		return zero, false
	}
	now := time.Now().UnixNano()

	c.mu.Lock()
	defer c.mu.Unlock()

	entry := c.entries[key]
	if entry == nil {
		return zero, false
	}
	if entry.isExpired(now) {
		c.unlink(entry)
		delete(c.entries, key)
		return zero, false
	}
	c.unlink(entry)
	c.pushFront(entry)
	return entry.value, true
}

// Set stores value under key, evicting the least recently used entry
// when the cache is full.
func (c *Cache[V]) Set(key string, value V) {
	if key == "" || c.maxEntries == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	var expiresAt int64
	if c.ttl > 0 {
		expiresAt = time.Now().Add(c.ttl).UnixNano()
	}

	if entry, ok := c.entries[key]; ok {
		entry.value = value
		entry.expiresAt = expiresAt
		c.unlink(entry)
		c.pushFront(entry)
		return
	}

	if len(c.entries) >= c.maxEntries {
		c.evictOne()
	}
	entry := &cacheEntry[V]{key: key, value: value, expiresAt: expiresAt}
	c.entries[key] = entry
	c.pushFront(entry)
}

// Len returns the number of stored entries, expired ones included.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Clear removes every entry.
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.entries)
	c.head.next = c.tail
	c.tail.prev = c.head
}

func (c *Cache[V]) pushFront(entry *cacheEntry[V]) {
	entry.prev = c.head
	entry.next = c.head.next
	c.head.next.prev = entry
	c.head.next = entry
}

func (c *Cache[V]) unlink(entry *cacheEntry[V]) {
	if entry.prev == nil || entry.next == nil {
		return
	}
	entry.prev.next = entry.next
	entry.next.prev = entry.prev
	entry.prev = nil
	entry.next = nil
}

func (c *Cache[V]) evictOne() {
	now := time.Now().UnixNano()
	for key, entry := range c.entries {
		if entry.isExpired(now) {
			c.unlink(entry)
			delete(c.entries, key)
			return
		}
	}
	// tail.prev is the least recently used entry
	if lru := c.tail.prev; lru != c.head {
		c.unlink(lru)
		delete(c.entries, lru.key)
	}
}
