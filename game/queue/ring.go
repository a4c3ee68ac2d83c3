package queue

import (
	"iter"

	"github.com/pkg/errors"
)

// ErrFull is returned when pushing into a ring that is at capacity
var ErrFull = errors.New("queue: full")

// Ring is a fixed-capacity FIFO. The backing array is allocated once in NewRing
// and never grows.
// Thread-Safety: none, owned by a single goroutine
type Ring[T any] struct {
	buf   []T
	head  int // Index of the oldest element
	count int
}

// NewRing allocates a ring holding at most capacity elements
func NewRing[T any](capacity int) *Ring[T] {
	if capacity <= 0 {
		panic("queue: ring capacity must be positive")
	}
	return &Ring[T]{buf: make([]T, capacity)}
}

// Push appends v as the newest element. Returns ErrFull without modifying the ring when at capacity.
func (r *Ring[T]) Push(v T) error {
	if r.count == len(r.buf) {
		return ErrFull
	}
	r.buf[(r.head+r.count)%len(r.buf)] = v
	r.count++
	return nil
}

// Pop removes and returns the oldest element
func (r *Ring[T]) Pop() (T, bool) {
	var zero T
	if r.count == 0 {
		return zero, false
	}
	v := r.buf[r.head]
	r.buf[r.head] = zero
	r.head = (r.head + 1) % len(r.buf)
	r.count--
	return v, true
}

func (r *Ring[T]) Len() int { return r.count }

// All yields elements oldest first
func (r *Ring[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		for i := 0; i < r.count; i++ {
			if !yield(r.buf[(r.head+i)%len(r.buf)]) {
				return
			}
		}
	}
}
