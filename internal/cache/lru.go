// Package cache provides a small thread-safe LRU used for playlist lookups.
package cache

import "sync"

type entry struct {
	key   string
	value string
	prev  *entry
	next  *entry
}

// LRU is a fixed-capacity least-recently-used cache of string values.
// A doubly-linked list keeps access order, a map gives O(1) lookups.
type LRU struct {
	mu       sync.Mutex
	capacity int
	items    map[string]*entry

	// head.next is most recently used, tail.prev least recently used.
	head *entry
	tail *entry

	hits   int64
	misses int64
}

const defaultCapacity = 32

// NewLRU creates a cache holding at most capacity entries.
func NewLRU(capacity int) *LRU {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	c := &LRU{
		capacity: capacity,
		items:    make(map[string]*entry, capacity),
		head:     &entry{},
		tail:     &entry{},
	}
	c.head.next = c.tail
	c.tail.prev = c.head
	return c
}

// Get returns the cached value and whether it was present.
// A hit moves the entry to the front.
func (c *LRU) Get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.items[key]
	if !ok {
		c.misses++
		return "", false
	}
	c.moveToFront(e)
	c.hits++
	return e.value, true
}

// Add inserts or updates an entry, evicting the least recently used entry
// when the cache is at capacity.
func (c *LRU) Add(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.items[key]; ok {
		e.value = value
		c.moveToFront(e)
		return
	}

	if len(c.items) >= c.capacity {
		lru := c.tail.prev
		if lru != c.head {
			c.remove(lru)
		}
	}

	e := &entry{key: key, value: value}
	c.items[key] = e
	c.insertFront(e)
}

// Remove drops an entry if present.
func (c *LRU) Remove(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.items[key]; ok {
		c.remove(e)
	}
}

// Purge empties the cache. Used when credentials change so stale live results
// do not outlive the account they were fetched with.
func (c *LRU) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*entry, c.capacity)
	c.head.next = c.tail
	c.tail.prev = c.head
}

// Len returns the current entry count.
func (c *LRU) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Stats returns cumulative hit and miss counts.
func (c *LRU) Stats() (hits, misses int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}

func (c *LRU) insertFront(e *entry) {
	e.prev = c.head
	e.next = c.head.next
	c.head.next.prev = e
	c.head.next = e
}

func (c *LRU) moveToFront(e *entry) {
	e.prev.next = e.next
	e.next.prev = e.prev
	c.insertFront(e)
}

func (c *LRU) remove(e *entry) {
	e.prev.next = e.next
	e.next.prev = e.prev
	delete(c.items, e.key)
}
