// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package flow

import (
	"github.com/joeycumines/go-flow/platform"
)

// InterruptWriter is the handoff from interrupt context into the graph. Its
// Send is the only operation on the data path that may be called outside the
// reactor goroutine, e.g. from an interrupt handler, or (on the host) any
// goroutine.
type InterruptWriter[T any] struct {
	p   platform.Platform
	sig platform.Signaler
	out *OutPort[T]
}

// NewInterruptWriter wraps out, which must be connected before the reactor
// starts.
func NewInterruptWriter[T any](r *Reactor, out *OutPort[T]) *InterruptWriter[T] {
	return &InterruptWriter[T]{
		p:   r.platform,
		sig: r.signaler,
		out: out,
	}
}

// Send enqueues v to every connection of the port, within a single critical
// section, then wakes the reactor. Every connection is attempted and the
// first failure, a *ConnectionError, is returned, or ErrNotConnected. Send
// does not allocate, so it is safe in interrupt handlers. The reactor is
// woken regardless.
func (x *InterruptWriter[T]) Send(v T) error {
	x.p.EnterCritical()
	err := x.out.sendFirst(v)
	x.p.ExitCritical()
	if x.sig != nil {
		x.sig.Signal()
	}
	return err
}
