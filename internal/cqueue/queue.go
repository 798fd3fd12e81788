// Package cqueue provides a fixed-capacity integer FIFO for telemetry
// buffering inside a periodic control task. All operations are O(1) and
// allocation-free after construction.
package cqueue

import (
	"errors"
	"fmt"
)

var (
	// ErrEmpty is returned by Get and Peek on an empty queue.
	ErrEmpty = errors.New("cqueue: queue is empty")

	// ErrFull is returned by Put on a full queue. The queue is left
	// untouched; nothing is overwritten.
	ErrFull = errors.New("cqueue: queue is full")
)

// IntQueue is a bounded FIFO of integers backed by a ring buffer.
type IntQueue struct {
	buf   []int
	head  int
	count int
}

// New creates a queue holding at most capacity values. Capacity must be
// positive.
func New(capacity int) *IntQueue {
	if capacity < 1 {
		panic(fmt.Sprintf("cqueue: capacity must be positive, got %d", capacity))
	}
	return &IntQueue{buf: make([]int, capacity)}
}

// Put appends v to the queue. A full queue rejects the value with ErrFull.
func (q *IntQueue) Put(v int) error {
	if q.count == len(q.buf) {
		return ErrFull
	}
	q.buf[(q.head+q.count)%len(q.buf)] = v
	q.count++
	return nil
}

// Get pops the oldest value.
func (q *IntQueue) Get() (int, error) {
	if q.count == 0 {
		return 0, ErrEmpty
	}
	v := q.buf[q.head]
	q.head = (q.head + 1) % len(q.buf)
	q.count--
	return v, nil
}

// Peek returns the oldest value without removing it.
func (q *IntQueue) Peek() (int, error) {
	if q.count == 0 {
		return 0, ErrEmpty
	}
	return q.buf[q.head], nil
}

// Any reports whether the queue holds at least one value.
func (q *IntQueue) Any() bool { return q.count > 0 }

// Full reports whether the queue is at capacity.
func (q *IntQueue) Full() bool { return q.count == len(q.buf) }

// Len returns the current occupancy.
func (q *IntQueue) Len() int { return q.count }

// Max returns the fixed capacity.
func (q *IntQueue) Max() int { return len(q.buf) }

// Available returns the number of free slots.
func (q *IntQueue) Available() int { return len(q.buf) - q.count }

// Clear empties the queue without reallocating its storage.
func (q *IntQueue) Clear() {
	q.head = 0
	q.count = 0
}
