// Package lru implements a thread-safe least recently used cache
package lru

import (
	"container/list"
	"fmt"
	"sync"
)

type entry[K comparable, V any] struct {
	key   K
	value V
}

// A Cache is a bounded key-value store evicting the least recently used
// pair once capacity is exceeded
type Cache[K comparable, V any] struct {
	mu       sync.Mutex
	order    *list.List
	index    map[K]*list.Element
	capacity int
}

// New creates an empty cache. It should be created only using this command
func New[K comparable, V any](capacity int) (*Cache[K, V], error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("expected positive number for capacity, got: %d", capacity)
	}
	return &Cache[K, V]{order: list.New(), index: make(map[K]*list.Element), capacity: capacity}, nil
}

// Set adds a new key-value pair to the cache, might evict the oldest pair
func (c *Cache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if element, ok := c.index[key]; ok {
		element.Value.(*entry[K, V]).value = value
		c.order.MoveToFront(element)
		return
	}

	if c.order.Len() == c.capacity {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.index, oldest.Value.(*entry[K, V]).key)
	}

	c.index[key] = c.order.PushFront(&entry[K, V]{key: key, value: value})
}

// Get returns a value by key and marks the pair as recently used
func (c *Cache[K, V]) Get(key K) (value V, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	element, ok := c.index[key]
	if !ok {
		return
	}

	c.order.MoveToFront(element)
	return element.Value.(*entry[K, V]).value, true
}

// Contains returns whether key is present in the cache
func (c *Cache[K, V]) Contains(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, ok := c.index[key]
	return ok
}

// Delete removes a pair by key
func (c *Cache[K, V]) Delete(key K) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	element, ok := c.index[key]
	if !ok {
		return fmt.Errorf("can't delete pair as no pair has key %v", key)
	}

	c.order.Remove(element)
	delete(c.index, key)
	return nil
}

// Flush clears the cache
func (c *Cache[K, V]) Flush() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.order.Init()
	clear(c.index)
}

// Len returns how many pairs are currently cached
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.order.Len()
}

// Capacity returns the fixed capacity of the cache
func (c *Cache[K, V]) Capacity() int {
	return c.capacity
}
