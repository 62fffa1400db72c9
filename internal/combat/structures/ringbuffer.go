// Package structures provides the concurrent data structures shared by
// the combat engine: a bounded lock-free delivery queue for dispatched
// events, and a score-ranked skip list for survivor ranking.
package structures

import (
	"runtime"
	"sync/atomic"
)

// CacheLineSize is the typical CPU cache line size on x86-64.
const CacheLineSize = 64

// Padding prevents adjacent fields from sharing a cache line.
type Padding [CacheLineSize]byte

// EventQueue is a bounded MPSC ring buffer: any number of producers may
// call TryPush concurrently, but exactly one consumer goroutine may
// call TryPop/Drain. The combat dispatcher gives each registered
// consumer its own EventQueue so a slow subscriber drops its own
// overflow instead of stalling the simulation tick (GLOSSARY,
// "Bounded, non-blocking delivery").
//
// Origin: Vyukov MPSC queue / LMAX Disruptor ring buffer.
type EventQueue[T any] struct {
	_pad0 Padding

	head uint64 // producer write cursor
	_pad1 Padding

	tail uint64 // consumer read cursor
	_pad2 Padding

	mask uint64 // capacity-1, capacity is a power of 2
	_pad3 Padding

	data []T
}

// NewEventQueue creates a queue with the given capacity, rounded up to
// the next power of 2.
func NewEventQueue[T any](capacity int) *EventQueue[T] {
	c := 1
	for c < capacity {
		c <<= 1
	}
	return &EventQueue[T]{
		mask: uint64(c - 1),
		data: make([]T, c),
	}
}

// TryPush claims the next slot and writes item. Returns false if the
// queue is at capacity — the caller (the dispatcher) counts this as a
// dropped delivery for that consumer; it never blocks the tick loop.
func (q *EventQueue[T]) TryPush(item T) bool {
	for {
		head := atomic.LoadUint64(&q.head)
		tail := atomic.LoadUint64(&q.tail)

		if head-tail > q.mask {
			return false
		}

		if atomic.CompareAndSwapUint64(&q.head, head, head+1) {
			q.data[head&q.mask] = item
			return true
		}
		runtime.Gosched()
	}
}

// TryPop removes the oldest item. Single-consumer only.
func (q *EventQueue[T]) TryPop() (T, bool) {
	var zero T

	tail := atomic.LoadUint64(&q.tail)
	head := atomic.LoadUint64(&q.head)
	if tail >= head {
		return zero, false
	}

	item := q.data[tail&q.mask]
	atomic.StoreUint64(&q.tail, tail+1)
	return item, true
}

// Len returns an approximate item count; safe to call from either side.
func (q *EventQueue[T]) Len() int {
	head := atomic.LoadUint64(&q.head)
	tail := atomic.LoadUint64(&q.tail)
	if head < tail {
		return 0
	}
	return int(head - tail)
}

// Cap returns the queue's fixed capacity.
func (q *EventQueue[T]) Cap() int {
	return int(q.mask + 1)
}

// Drain pops up to maxItems into a freshly allocated slice. Used by
// consumers that poll rather than pop one at a time.
func (q *EventQueue[T]) Drain(maxItems int) []T {
	result := make([]T, 0, maxItems)
	for len(result) < maxItems {
		item, ok := q.TryPop()
		if !ok {
			break
		}
		result = append(result, item)
	}
	return result
}
