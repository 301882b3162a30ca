// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

// Package flow is a pipes-and-filters runtime for microcontrollers, and
// their host-side test doubles.
//
// Applications are graphs of independent components, which exchange values
// only through typed ports. Each connection between an output port and an
// input port is a bounded queue, with capacity and overflow policy fixed
// before the graph starts. A single cooperative [Reactor] moves all data:
// it repeatedly picks the first connection holding an item, delivers that
// item to the consuming component, and calls its Process method. Periodic
// and event driven sources are triggered when no data is pending, and the
// platform is put to sleep when nothing is.
//
// # Wiring
//
// Register every component, then connect their ports:
//
//	r, _ := flow.NewReactor(p)
//	_ = r.Register(src)
//	_ = r.Register(sink)
//	_, _ = flow.Connect(r, src.Out, sink.In, flow.WithCapacity(4))
//
// [Connect] is checked at compile time. [ConnectPorts] accepts the
// type-erased [Port], checking the type tags at run time, for table driven
// wiring. Inputs accept a single connection; outputs fan out, by copy.
//
// # Interrupts
//
// The graph is single threaded. The sole exception is [InterruptWriter],
// which enqueues within a platform critical section, then wakes the reactor.
// [Reactor.Notify] similarly signals event sources.
//
// # Faults
//
// A component returning an error, or panicking, does not affect any other
// component. The failure is reported to the [FaultSink] as a [ProcessFault],
// and the reactor carries on.
package flow
