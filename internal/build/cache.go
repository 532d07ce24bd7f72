// Package build turns expanded splice blocks into generated Go files.
package build

import (
	"sync"
	"sync/atomic"
	"time"
)

// Cache holds rendered generated files keyed by source hash, with LRU
// eviction by total size and a TTL.
type Cache struct {
	entries     map[string]*cacheEntry
	mutex       sync.Mutex
	maxSize     int64
	currentSize int64
	ttl         time.Duration
	// sentinels of the LRU list; head.next is the most recently used
	head *cacheEntry
	tail *cacheEntry

	hits      int64
	misses    int64
	evictions int64
}

type cacheEntry struct {
	key       string
	value     []byte
	createdAt time.Time
	prev      *cacheEntry
	next      *cacheEntry
}

// CacheStats is a point-in-time view of a Cache.
type CacheStats struct {
	Entries   int
	Size      int64
	MaxSize   int64
	Hits      int64
	Misses    int64
	Evictions int64
}

// NewCache creates a cache bounded to maxSize bytes of values. A zero ttl
// keeps entries until they are evicted.
func NewCache(maxSize int64, ttl time.Duration) *Cache {
	c := &Cache{
		entries: make(map[string]*cacheEntry),
		maxSize: maxSize,
		ttl:     ttl,
		head:    &cacheEntry{},
		tail:    &cacheEntry{},
	}
	c.head.next = c.tail
	c.tail.prev = c.head
	return c
}

// Get retrieves a value and marks it recently used.
func (c *Cache) Get(key string) ([]byte, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		atomic.AddInt64(&c.misses, 1)
		return nil, false
	}

	if c.ttl > 0 && time.Since(entry.createdAt) > c.ttl {
		c.drop(entry)
		atomic.AddInt64(&c.misses, 1)
		return nil, false
	}

	c.moveToFront(entry)
	atomic.AddInt64(&c.hits, 1)
	return entry.value, true
}

// Set stores value under key. Values larger than the whole cache are not
// stored.
func (c *Cache) Set(key string, value []byte) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	size := int64(len(value))
	if size > c.maxSize {
		return
	}

	if existing, ok := c.entries[key]; ok {
		c.drop(existing)
	}

	for c.currentSize+size > c.maxSize && c.tail.prev != c.head {
		c.drop(c.tail.prev)
		atomic.AddInt64(&c.evictions, 1)
	}

	entry := &cacheEntry{key: key, value: value, createdAt: time.Now()}
	c.entries[key] = entry
	c.currentSize += size
	c.addToFront(entry)
}

// Clear removes every entry and resets statistics.
func (c *Cache) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.entries = make(map[string]*cacheEntry)
	c.currentSize = 0
	c.head.next = c.tail
	c.tail.prev = c.head

	atomic.StoreInt64(&c.hits, 0)
	atomic.StoreInt64(&c.misses, 0)
	atomic.StoreInt64(&c.evictions, 0)
}

// Stats returns cache statistics.
func (c *Cache) Stats() CacheStats {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	return CacheStats{
		Entries:   len(c.entries),
		Size:      c.currentSize,
		MaxSize:   c.maxSize,
		Hits:      atomic.LoadInt64(&c.hits),
		Misses:    atomic.LoadInt64(&c.misses),
		Evictions: atomic.LoadInt64(&c.evictions),
	}
}

// drop must be called with the mutex held.
func (c *Cache) drop(entry *cacheEntry) {
	c.removeFromList(entry)
	delete(c.entries, entry.key)
	c.currentSize -= int64(len(entry.value))
}

func (c *Cache) addToFront(entry *cacheEntry) {
	entry.prev = c.head
	entry.next = c.head.next
	c.head.next.prev = entry
	c.head.next = entry
}

func (c *Cache) removeFromList(entry *cacheEntry) {
	entry.prev.next = entry.next
	entry.next.prev = entry.prev
}

func (c *Cache) moveToFront(entry *cacheEntry) {
	c.removeFromList(entry)
	c.addToFront(entry)
}
