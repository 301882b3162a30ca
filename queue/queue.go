// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

// Package queue implements a bounded FIFO with an explicit overflow policy,
// storing its items in a fixed-capacity [pool.Pool].
//
// A Queue is the only channel through which two components exchange data,
// which makes its capacity the backpressure knob of a system: under
// [RejectNew] a producer observes [ErrFull], under [DropOldest] the oldest
// item is evicted and handed back to the producer. All operations are O(1),
// never block and never allocate. Queues are not synchronised; producers in
// interrupt context must use a platform critical section.
package queue

import (
	"errors"
	"fmt"

	"github.com/joeycumines/go-flow/pool"
)

var (
	// ErrFull is returned by [Queue.Enqueue] under [RejectNew] when the queue
	// holds Cap items.
	ErrFull = errors.New("queue: full")

	// ErrInvalidPolicy is returned for an unknown Policy value.
	ErrInvalidPolicy = errors.New("queue: invalid policy")
)

// Policy selects what Enqueue does when the queue is full.
type Policy uint8

const (
	// RejectNew fails the enqueue with ErrFull, leaving the queue unchanged.
	RejectNew Policy = iota
	// DropOldest evicts the oldest item to make room for the new one.
	DropOldest
)

// String implements fmt.Stringer.
func (x Policy) String() string {
	switch x {
	case RejectNew:
		return "reject-new"
	case DropOldest:
		return "drop-oldest"
	default:
		return fmt.Sprintf("Policy(%d)", uint8(x))
	}
}

// Set implements flag.Value.
func (x *Policy) Set(s string) error {
	p, err := ParsePolicy(s)
	if err != nil {
		return err
	}
	*x = p
	return nil
}

// ParsePolicy parses the String form of a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "reject-new":
		return RejectNew, nil
	case "drop-oldest":
		return DropOldest, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidPolicy, s)
	}
}

func (x Policy) valid() bool { return x <= DropOldest }

// Queue is a ring of pool handles. The Queue exclusively owns the storage of
// enqueued items; a dequeued item is copied out and its slot released.
type Queue[T any] struct {
	pool    *pool.Pool[T]
	ring    []pool.Handle
	head    int
	tail    int
	count   int
	dropped uint64
	policy  Policy
}

// New creates a queue backed by a private pool of exactly capacity slots.
func New[T any](capacity int, policy Policy) (*Queue[T], error) {
	p, err := pool.New[T](capacity)
	if err != nil {
		return nil, err
	}
	return NewWithPool(p, capacity, policy)
}

// NewWithPool creates a queue whose item storage is acquired from p. When p
// is shared between queues, Enqueue may fail with pool.ErrExhausted even
// though the queue itself has room.
func NewWithPool[T any](p *pool.Pool[T], capacity int, policy Policy) (*Queue[T], error) {
	if p == nil {
		return nil, errors.New("queue: nil pool")
	}
	if capacity < 1 || capacity > pool.MaxCapacity {
		return nil, fmt.Errorf("%w: %d", pool.ErrInvalidCapacity, capacity)
	}
	if !policy.valid() {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPolicy, policy)
	}
	return &Queue[T]{
		pool:   p,
		ring:   make([]pool.Handle, capacity),
		policy: policy,
	}, nil
}

// Enqueue appends item. Under RejectNew a full queue returns ErrFull. Under
// DropOldest a full queue evicts its oldest item, returned as evicted with
// dropped set. The pool's ErrExhausted is returned if no slot can be found.
func (q *Queue[T]) Enqueue(item T) (evicted T, dropped bool, err error) {
	var h pool.Handle
	if q.count == len(q.ring) {
		if q.policy != DropOldest {
			return evicted, false, ErrFull
		}
		evicted, h = q.pop()
		dropped = true
	} else if h, err = q.pool.Acquire(); err != nil {
		if q.policy != DropOldest || q.count == 0 {
			return evicted, false, err
		}
		// the shared pool is dry, recycle our own oldest slot
		evicted, h = q.pop()
		dropped, err = true, nil
	}

	*q.pool.Get(h) = item
	q.ring[q.tail] = h
	if q.tail++; q.tail == len(q.ring) {
		q.tail = 0
	}
	q.count++
	if dropped {
		q.dropped++
	}
	return evicted, dropped, nil
}

// Dequeue removes and returns the oldest item, transferring ownership to the
// caller. The boolean is false if the queue is empty.
func (q *Queue[T]) Dequeue() (item T, ok bool) {
	if q.count == 0 {
		return item, false
	}
	item, h := q.pop()
	if err := q.pool.Release(h); err != nil {
		panic(fmt.Errorf("queue: release %v: %w", h, err))
	}
	return item, true
}

// pop unlinks the oldest handle without releasing its slot.
func (q *Queue[T]) pop() (T, pool.Handle) {
	h := q.ring[q.head]
	q.ring[q.head] = 0
	if q.head++; q.head == len(q.ring) {
		q.head = 0
	}
	q.count--
	return *q.pool.Get(h), h
}

// Peek returns a pointer to the oldest item without removing it. The pointer
// is only valid until the next Enqueue or Dequeue.
func (q *Queue[T]) Peek() (*T, bool) {
	if q.count == 0 {
		return nil, false
	}
	return q.pool.Get(q.ring[q.head]), true
}

// Len returns the number of enqueued items.
func (q *Queue[T]) Len() int { return q.count }

// Cap returns the maximum number of items.
func (q *Queue[T]) Cap() int { return len(q.ring) }

// IsEmpty reports Len() == 0.
func (q *Queue[T]) IsEmpty() bool { return q.count == 0 }

// IsFull reports Len() == Cap().
func (q *Queue[T]) IsFull() bool { return q.count == len(q.ring) }

// Policy returns the overflow policy.
func (q *Queue[T]) Policy() Policy { return q.policy }

// Dropped returns the number of items evicted under DropOldest.
func (q *Queue[T]) Dropped() uint64 { return q.dropped }
