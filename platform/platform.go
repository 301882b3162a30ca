// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

// Package platform abstracts time, interrupt masking and idle sleep, so that
// the same reactor and components run unmodified on a host test harness and
// on bare-metal hardware.
//
// There are exactly two implementations of [Platform]:
//
//   - [Host]: the operating system clock, a nestable mutex standing in for
//     interrupt masking, and simulated interrupts via [Host.Interrupt].
//   - CortexM4: built with TinyGo (build tags tinygo and cortexm), the DWT
//     cycle counter, PRIMASK based critical sections and WFE/SEV.
//
// The variant is chosen when the reactor is constructed and never changes.
package platform

// Tick is a point in platform time. Ticks wrap, so they must be compared with
// [Tick.Before] rather than the < operator.
type Tick uint32

// Add returns t advanced by d ticks.
func (t Tick) Add(d Tick) Tick { return t + d }

// Before reports whether t is earlier than u, assuming they are less than
// half the tick range apart.
func (t Tick) Before(u Tick) bool { return int32(t-u) < 0 }

// Since returns the number of ticks elapsed from u to t.
func (t Tick) Since(u Tick) Tick { return t - u }

// Platform is the capability surface consumed by the reactor and by any
// component needing time.
type Platform interface {
	// Now returns the current tick. It may be called from interrupt context.
	Now() Tick

	// EnterCritical masks interrupts (or their host equivalent). Calls nest
	// and must be paired with ExitCritical on the same thread of control.
	EnterCritical()

	// ExitCritical undoes the matching EnterCritical, unmasking interrupts
	// once the outermost section exits.
	ExitCritical()

	// SleepUntilEvent idles until an event (an interrupt, a Signal) may have
	// produced work. Spurious returns are allowed.
	SleepUntilEvent()
}

// Signaler is implemented by platforms that can wake a sleeping
// SleepUntilEvent from another context, e.g. after an interrupt handler
// enqueued data.
type Signaler interface {
	Signal()
}
