package queue

import (
	"sync/atomic"
)

// spsc is a lock-free single-producer/single-consumer ring buffer.
// Thread-Safety:
//   - Enqueue: exactly one producer goroutine
//   - Dequeue: exactly one consumer goroutine (game loop)
//   - The producer publishes a slot by storing tail after writing it; the consumer
//     frees a slot by storing head after reading it
//
// Overflow: new events are dropped when full, the queue never blocks
type spsc[T any] struct {
	buf  []T
	mask uint64
	head atomic.Uint64 // Read index, written by consumer only
	tail atomic.Uint64 // Write index, written by producer only
}

// Producer is the sending half of an SPSC channel. It must be owned by a single goroutine.
type Producer[T any] struct {
	q *spsc[T]
}

// Consumer is the receiving half of an SPSC channel. It must be owned by a single goroutine.
type Consumer[T any] struct {
	q *spsc[T]
}

// NewSPSC allocates a channel of the given power-of-two capacity and returns its two halves
func NewSPSC[T any](capacity int) (*Producer[T], *Consumer[T]) {
	if capacity <= 0 || capacity&(capacity-1) != 0 {
		panic("queue: spsc capacity must be a positive power of two")
	}
	q := &spsc[T]{
		buf:  make([]T, capacity),
		mask: uint64(capacity - 1),
	}
	return &Producer[T]{q: q}, &Consumer[T]{q: q}
}

// Enqueue stores v, returning false if the channel is full. O(1), never blocks.
func (p *Producer[T]) Enqueue(v T) bool {
	q := p.q
	tail := q.tail.Load()
	if tail-q.head.Load() == uint64(len(q.buf)) {
		return false
	}
	q.buf[tail&q.mask] = v
	q.tail.Store(tail + 1) // MUST be after write
	return true
}

// Dequeue removes the oldest value. O(1), never blocks.
func (c *Consumer[T]) Dequeue() (T, bool) {
	q := c.q
	head := q.head.Load()
	if head == q.tail.Load() {
		var zero T
		return zero, false
	}
	v := q.buf[head&q.mask]
	q.head.Store(head + 1) // MUST be after read
	return v, true
}

// Len returns approximate pending count
func (c *Consumer[T]) Len() int {
	return int(c.q.tail.Load() - c.q.head.Load())
}
