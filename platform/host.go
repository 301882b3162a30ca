// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

//go:build !baremetal

package platform

import (
	"errors"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// HostTickRate is the number of host ticks per second, unless a custom clock
// is configured via WithClock.
const HostTickRate = 1_000_000

// DefaultIdleTimeout bounds a single Host.SleepUntilEvent call.
const DefaultIdleTimeout = time.Millisecond

// ErrNotOwner is the panic value when ExitCritical is called by a goroutine
// that does not hold the critical section.
var ErrNotOwner = errors.New("platform: critical section not held by caller")

// Host is the host test platform. Critical sections are a mutex owned by the
// entering goroutine, and so nest, which lets simulated interrupt handlers
// (see Interrupt) use the same code paths as on hardware.
//
// Unlike the hardware platforms, each EnterCritical/ExitCritical pair
// allocates (two objects, identifying the calling goroutine), which shows in
// allocation counts of host tests.
type Host struct {
	mu    sync.Mutex
	owner atomic.Uint64
	depth int

	anchor  time.Time
	clock   func() Tick
	idle    time.Duration
	pending atomic.Bool
	closed  atomic.Bool

	// wakeMu guards waker against Close, read locked while in use
	wakeMu sync.RWMutex
	waker  waker
}

var _ interface {
	Platform
	Signaler
} = (*Host)(nil)

// NewHost creates a host platform. The caller should Close it to release
// the wake-up file descriptor, where one is used.
func NewHost(opts ...HostOption) (*Host, error) {
	cfg, err := resolveHostOptions(opts)
	if err != nil {
		return nil, err
	}
	w, err := newWaker()
	if err != nil {
		return nil, err
	}
	return &Host{
		anchor: time.Now(),
		clock:  cfg.clock,
		idle:   cfg.idleTimeout,
		waker:  w,
	}, nil
}

// Now returns microseconds since NewHost, or the configured clock.
func (h *Host) Now() Tick {
	if h.clock != nil {
		return h.clock()
	}
	return Tick(time.Since(h.anchor) / time.Microsecond)
}

// EnterCritical implements Platform.
func (h *Host) EnterCritical() {
	id := goroutineID()
	if h.owner.Load() == id {
		h.depth++
		return
	}
	h.mu.Lock()
	h.owner.Store(id)
	h.depth = 1
}

// ExitCritical implements Platform. It panics with ErrNotOwner if the caller
// does not hold the critical section.
func (h *Host) ExitCritical() {
	if h.owner.Load() != goroutineID() {
		panic(ErrNotOwner)
	}
	if h.depth--; h.depth == 0 {
		h.owner.Store(0)
		h.mu.Unlock()
	}
}

// SleepUntilEvent blocks until Signal is called or the idle timeout elapses.
func (h *Host) SleepUntilEvent() {
	h.wakeMu.RLock()
	defer h.wakeMu.RUnlock()
	if h.closed.Load() {
		// nothing left to wake us
		h.pending.Store(false)
		runtime.Gosched()
		return
	}
	if h.pending.Swap(false) {
		h.waker.drain()
		return
	}
	h.waker.wait(h.idle)
	h.pending.Store(false)
}

// Signal wakes a pending or the next SleepUntilEvent. Safe for concurrent
// use, including with Close.
func (h *Host) Signal() {
	if !h.pending.CompareAndSwap(false, true) {
		return
	}
	h.wakeMu.RLock()
	defer h.wakeMu.RUnlock()
	if !h.closed.Load() {
		h.waker.signal()
	}
}

// Interrupt runs fn as a simulated interrupt handler: inside a critical
// section, followed by Signal. It may be called from any goroutine.
func (h *Host) Interrupt(fn func()) {
	func() {
		h.EnterCritical()
		defer h.ExitCritical()
		fn()
	}()
	h.Signal()
}

// Close releases the wake-up resources. Subsequent sleeps only yield.
func (h *Host) Close() error {
	h.wakeMu.Lock()
	defer h.wakeMu.Unlock()
	if !h.closed.CompareAndSwap(false, true) {
		return nil
	}
	return h.waker.close()
}

// waker is the host's event primitive, an eventfd on Linux.
type waker interface {
	signal()
	wait(timeout time.Duration)
	drain()
	close() error
}

// goroutineID returns the current goroutine's ID, parsed from the stack
// header ("goroutine 123 [running]:").
func goroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	var id uint64
	for i := len("goroutine "); i < n; i++ {
		if buf[i] >= '0' && buf[i] <= '9' {
			id = id*10 + uint64(buf[i]-'0')
		} else {
			break
		}
	}
	return id
}
