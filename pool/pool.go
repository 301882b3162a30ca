// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package pool

import (
	"errors"
	"fmt"
)

// MaxCapacity is the largest number of slots a Pool may hold.
const MaxCapacity = 1<<16 - 1

var (
	// ErrExhausted is returned by [Pool.Acquire] when every slot is in use.
	ErrExhausted = errors.New("pool: exhausted")

	// ErrInvalidCapacity is returned by [New] for a capacity outside
	// [1, MaxCapacity].
	ErrInvalidCapacity = errors.New("pool: invalid capacity")

	// ErrInvalidHandle is returned by [Pool.Release] for the zero Handle or a
	// handle whose index is out of range for the pool.
	ErrInvalidHandle = errors.New("pool: invalid handle")

	// ErrDoubleRelease is returned by [Pool.Release] when the slot referenced
	// by the handle is not currently acquired through that handle.
	ErrDoubleRelease = errors.New("pool: slot already released")
)

// Handle identifies an acquired slot. The low 16 bits hold the slot index
// plus one, the high 16 bits the slot generation at the time of acquisition,
// which makes handles from an earlier acquisition of the same slot stale.
// The zero Handle is never valid.
type Handle uint32

func makeHandle(index int, gen uint16) Handle {
	return Handle(uint32(gen)<<16 | uint32(index+1))
}

// Index returns the slot index of the handle, or -1 for the zero Handle.
func (h Handle) Index() int {
	return int(h&0xffff) - 1
}

func (h Handle) generation() uint16 {
	return uint16(h >> 16)
}

// String implements fmt.Stringer.
func (h Handle) String() string {
	return fmt.Sprintf("pool.Handle(%d#%d)", h.Index(), h.generation())
}

// Pool is a fixed-capacity allocator of equally sized slots. All storage is
// allocated by New; Acquire and Release are O(1) and never allocate.
//
// A Pool is not safe for concurrent use. Callers sharing a pool with
// interrupt context must guard it with a platform critical section.
type Pool[T any] struct {
	slots []T
	gens  []uint16
	used  []bool
	// next links free slots, storing index+1, with 0 terminating the list
	next  []uint16
	free  uint16
	inUse int
}

// New allocates a pool of capacity slots, all initially free.
func New[T any](capacity int) (*Pool[T], error) {
	if capacity < 1 || capacity > MaxCapacity {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCapacity, capacity)
	}
	p := &Pool[T]{
		slots: make([]T, capacity),
		gens:  make([]uint16, capacity),
		used:  make([]bool, capacity),
		next:  make([]uint16, capacity),
	}
	for i := range capacity - 1 {
		p.next[i] = uint16(i + 2)
	}
	p.free = 1
	return p, nil
}

// Acquire claims a free slot. It fails with ErrExhausted, without blocking or
// allocating, when all slots are in use.
func (p *Pool[T]) Acquire() (Handle, error) {
	if p.free == 0 {
		return 0, ErrExhausted
	}
	i := int(p.free - 1)
	p.free = p.next[i]
	p.next[i] = 0
	p.used[i] = true
	p.inUse++
	return makeHandle(i, p.gens[i]), nil
}

// Release returns the slot referenced by h to the pool, zeroing its value.
// Releasing a slot twice, or through a stale handle, returns ErrDoubleRelease
// and leaves the pool untouched.
func (p *Pool[T]) Release(h Handle) error {
	i, err := p.check(h)
	if err != nil {
		return err
	}
	var zero T
	p.slots[i] = zero
	p.used[i] = false
	p.gens[i]++
	p.next[i] = p.free
	p.free = uint16(i + 1)
	p.inUse--
	return nil
}

// Get returns the storage of an acquired slot. The pointer must not be
// retained after the slot is released. Get panics if h does not reference a
// currently acquired slot.
func (p *Pool[T]) Get(h Handle) *T {
	i, err := p.check(h)
	if err != nil {
		panic(fmt.Errorf("pool: get %v: %w", h, err))
	}
	return &p.slots[i]
}

// Valid reports whether h references a currently acquired slot.
func (p *Pool[T]) Valid(h Handle) bool {
	_, err := p.check(h)
	return err == nil
}

func (p *Pool[T]) check(h Handle) (int, error) {
	i := h.Index()
	if i < 0 || i >= len(p.slots) {
		return 0, ErrInvalidHandle
	}
	if !p.used[i] || p.gens[i] != h.generation() {
		return 0, ErrDoubleRelease
	}
	return i, nil
}

// Len returns the number of slots in use.
func (p *Pool[T]) Len() int { return p.inUse }

// Cap returns the fixed number of slots.
func (p *Pool[T]) Cap() int { return len(p.slots) }

// Available returns the number of free slots.
func (p *Pool[T]) Available() int { return len(p.slots) - p.inUse }
