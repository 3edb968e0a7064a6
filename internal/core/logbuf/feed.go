package logbuf

import "sync/atomic"

// Feed is a bounded hand-off queue from producer goroutines (radio callback,
// HTTP handlers) to the goroutine that owns a Buffer. Producers never touch
// the Buffer itself, so the owner never observes it mid-eviction.
type Feed[T any] struct {
	ch      chan T
	dropped atomic.Uint64
}

// NewFeed creates a feed that holds up to size pending items.
func NewFeed[T any](size int) *Feed[T] {
	if size < 1 {
		size = 1
	}
	return &Feed[T]{ch: make(chan T, size)}
}

// Publish enqueues item without blocking. It returns false and counts a drop
// when the queue is full.
func (f *Feed[T]) Publish(item T) bool {
	select {
	case f.ch <- item:
		return true
	default:
		f.dropped.Add(1)
		return false
	}
}

// DrainInto moves every pending item into buf, in publish order, and returns
// how many were moved. Only the buffer owner may call it.
func (f *Feed[T]) DrainInto(buf *Buffer[T]) int {
	return f.Drain(buf.Append)
}

// Drain passes pending items to fn and returns how many were handled. At
// most one queue's worth is handled per call so a busy producer cannot keep
// the owner spinning.
func (f *Feed[T]) Drain(fn func(T)) int {
	n := 0
	for n < cap(f.ch) {
		select {
		case item := <-f.ch:
			fn(item)
			n++
		default:
			return n
		}
	}
	return n
}

// Discard empties the queue without delivering anything.
func (f *Feed[T]) Discard() int {
	return f.Drain(func(T) {})
}

// Pending returns the number of queued items.
func (f *Feed[T]) Pending() int { return len(f.ch) }

// Dropped returns how many items were rejected because the queue was full.
func (f *Feed[T]) Dropped() uint64 { return f.dropped.Load() }
