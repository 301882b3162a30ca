// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package flow

import (
	"sync/atomic"
)

// Stats is a snapshot of the reactor's counters.
type Stats struct {
	// Dispatches is the number of Process calls.
	Dispatches uint64
	// Faults is the number of Process calls that returned an error or
	// panicked.
	Faults uint64
	// Idles is the number of times the loop slept, having found nothing to
	// do.
	Idles uint64
	// Discarded is the number of delivered items a component did not
	// Receive during its dispatch.
	Discarded uint64
	// Evicted is the number of items dropped by queue.DropOldest
	// connections.
	Evicted uint64
}

type stats struct {
	dispatches atomic.Uint64
	faults     atomic.Uint64
	idles      atomic.Uint64
	discarded  atomic.Uint64
	evicted    atomic.Uint64
}

func (x *stats) snapshot() Stats {
	return Stats{
		Dispatches: x.dispatches.Load(),
		Faults:     x.faults.Load(),
		Idles:      x.idles.Load(),
		Discarded:  x.discarded.Load(),
		Evicted:    x.evicted.Load(),
	}
}
