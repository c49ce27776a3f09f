// Package ring implements a bounded FIFO buffer safe for concurrent use
package ring

import (
	"fmt"
	"sync"
)

// A Buffer keeps the last capacity appended values. Appending beyond
// capacity evicts the oldest value. Readers take a stable copy and never
// observe a partially written entry.
type Buffer[T any] struct {
	mu    sync.Mutex
	items []T
	start int
	count int
}

// New creates an empty buffer. It should be created only using this command
func New[T any](capacity int) (*Buffer[T], error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("expected positive number for capacity, got: %d", capacity)
	}
	return &Buffer[T]{items: make([]T, capacity)}, nil
}

// Append adds a value, evicting the oldest one when the buffer is full
func (b *Buffer[T]) Append(value T) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.count < len(b.items) {
		b.items[(b.start+b.count)%len(b.items)] = value
		b.count++
		return
	}

	b.items[b.start] = value
	b.start = (b.start + 1) % len(b.items)
}

// Snapshot returns a point-in-time copy of the retained values, oldest first
func (b *Buffer[T]) Snapshot() []T {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]T, b.count)
	for i := 0; i < b.count; i++ {
		out[i] = b.items[(b.start+i)%len(b.items)]
	}
	return out
}

// Len returns how many values are currently retained
func (b *Buffer[T]) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.count
}

// Cap returns the fixed capacity of the buffer
func (b *Buffer[T]) Cap() int {
	return len(b.items)
}
