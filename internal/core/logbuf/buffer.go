// Package logbuf provides the bounded FIFO used for packet, credential and
// activity logs, and the queue that hands records to it across goroutines.
package logbuf

import "github.com/lcalzada-xor/wdeck/internal/core/domain"

// Buffer is a fixed-capacity FIFO. When full, Append evicts the oldest item.
//
// Buffer is not safe for concurrent use. It is owned by the control loop;
// other goroutines hand records over through a Feed.
type Buffer[T any] struct {
	items []T
	head  int // index of the oldest item
	count int
	added uint64
}

// New creates a buffer holding at most capacity items. Capacity below 1 is
// raised to 1.
func New[T any](capacity int) *Buffer[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Buffer[T]{items: make([]T, capacity)}
}

// Append inserts item, evicting the oldest entry first when at capacity.
func (b *Buffer[T]) Append(item T) {
	if b.count == len(b.items) {
		b.items[b.head] = item
		b.head = (b.head + 1) % len(b.items)
	} else {
		b.items[(b.head+b.count)%len(b.items)] = item
		b.count++
	}
	b.added++
}

// Get returns the item at index, counting from the oldest (0).
func (b *Buffer[T]) Get(index int) (T, error) {
	var zero T
	if index < 0 || index >= b.count {
		return zero, domain.ErrIndexOutOfRange
	}
	return b.items[(b.head+index)%len(b.items)], nil
}

// Latest returns the most recently appended item.
func (b *Buffer[T]) Latest() (T, error) {
	if b.count == 0 {
		var zero T
		return zero, domain.ErrEmpty
	}
	return b.Get(b.count - 1)
}

// Len returns the number of items held.
func (b *Buffer[T]) Len() int { return b.count }

// IsEmpty reports whether the buffer holds no items.
func (b *Buffer[T]) IsEmpty() bool { return b.count == 0 }

// Cap returns the configured capacity.
func (b *Buffer[T]) Cap() int { return len(b.items) }

// TotalAdded counts every Append since creation, including evicted items.
func (b *Buffer[T]) TotalAdded() uint64 { return b.added }

// Items returns a copy of the contents, oldest first.
func (b *Buffer[T]) Items() []T {
	out := make([]T, b.count)
	for i := 0; i < b.count; i++ {
		out[i] = b.items[(b.head+i)%len(b.items)]
	}
	return out
}

// Clear drops all items. TotalAdded is kept.
func (b *Buffer[T]) Clear() {
	var zero T
	for i := range b.items {
		b.items[i] = zero
	}
	b.head = 0
	b.count = 0
}
