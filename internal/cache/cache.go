// Package cache provides a small bounded cache with least-recently-used
// eviction. It caps the memory held for recently loaded years without a
// background eviction goroutine: all bookkeeping happens synchronously
// inside Get and Set.
//
// Not safe for concurrent use. The manager package only touches its
// cache from the caller-facing Load path, so no lock is carried here.
package cache

// Cache is a fixed-capacity LRU map. Recency is refreshed by both reads
// and writes; when an insert exceeds capacity the least-recently-used
// entry is evicted.
type Cache[K comparable, V any] struct {
	capacity int
	entries  map[K]*entry[K, V]

	// Doubly linked recency list, most recent at head.
	head *entry[K, V]
	tail *entry[K, V]
}

type entry[K comparable, V any] struct {
	key   K
	value V
	prev  *entry[K, V]
	next  *entry[K, V]
}

// New creates a cache holding at most capacity entries.
// Panics if capacity is not positive: a zero-capacity cache would make
// every Set a silent no-op, which is always a configuration bug.
func New[K comparable, V any](capacity int) *Cache[K, V] {
	if capacity <= 0 {
		panic("cache: capacity must be positive")
	}
	return &Cache[K, V]{
		capacity: capacity,
		entries:  make(map[K]*entry[K, V], capacity),
	}
}

// Get returns the cached value and whether it was present.
// A hit refreshes the entry's recency.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	e, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	c.moveToFront(e)
	return e.value, true
}

// Contains reports presence without refreshing recency.
func (c *Cache[K, V]) Contains(key K) bool {
	_, ok := c.entries[key]
	return ok
}

// Set inserts or replaces the value for key and refreshes its recency.
// Inserting a new key at capacity evicts the least-recently-used entry.
func (c *Cache[K, V]) Set(key K, value V) {
	if e, ok := c.entries[key]; ok {
		e.value = value
		c.moveToFront(e)
		return
	}

	if len(c.entries) == c.capacity {
		c.evict()
	}

	e := &entry[K, V]{key: key, value: value}
	c.entries[key] = e
	c.pushFront(e)
}

// Clear removes one key if present.
func (c *Cache[K, V]) Clear(key K) {
	e, ok := c.entries[key]
	if !ok {
		return
	}
	c.unlink(e)
	delete(c.entries, key)
}

// Reset empties the cache.
func (c *Cache[K, V]) Reset() {
	c.entries = make(map[K]*entry[K, V], c.capacity)
	c.head = nil
	c.tail = nil
}

// Len returns the number of cached entries.
func (c *Cache[K, V]) Len() int {
	return len(c.entries)
}

func (c *Cache[K, V]) evict() {
	if c.tail == nil {
		return
	}
	oldest := c.tail
	c.unlink(oldest)
	delete(c.entries, oldest.key)
}

func (c *Cache[K, V]) moveToFront(e *entry[K, V]) {
	if c.head == e {
		return
	}
	c.unlink(e)
	c.pushFront(e)
}

func (c *Cache[K, V]) pushFront(e *entry[K, V]) {
	e.prev = nil
	e.next = c.head
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *Cache[K, V]) unlink(e *entry[K, V]) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
	e.prev = nil
	e.next = nil
}
