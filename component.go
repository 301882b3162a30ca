// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package flow

import (
	"fmt"

	"github.com/joeycumines/go-flow/platform"
)

// Component is a unit of computation. Process is the only method the reactor
// calls. It is never invoked concurrently with itself, and must not block.
//
// Components are typically pointers to structs holding their ports, see
// [NewInPort] and [NewOutPort]. Returning an error, or panicking, reports a
// [ProcessFault] without affecting other components.
type Component interface {
	Process(t Trigger) error
}

// ComponentFunc adapts a function to a Component. Note that only pointers to
// a ComponentFunc are comparable, and so registrable.
type ComponentFunc func(t Trigger) error

// Process implements Component.
func (f *ComponentFunc) Process(t Trigger) error { return (*f)(t) }

// Starter is implemented by components needing second stage initialisation,
// after all wiring is complete. Start is called once, in registration order,
// when the reactor starts.
type Starter interface {
	Start() error
}

// Stopper is the symmetrical counterpart of Starter, called by
// [Reactor.Stop] in reverse registration order.
type Stopper interface {
	Stop()
}

// TriggerKind identifies why Process was invoked.
type TriggerKind uint8

const (
	// TriggerData indicates an item was delivered to Trigger.Port.
	TriggerData TriggerKind = iota
	// TriggerTimer indicates a periodic source fell due.
	TriggerTimer
	// TriggerEvent indicates an event source was notified.
	TriggerEvent
)

// String implements fmt.Stringer.
func (k TriggerKind) String() string {
	switch k {
	case TriggerData:
		return "data"
	case TriggerTimer:
		return "timer"
	case TriggerEvent:
		return "event"
	default:
		return fmt.Sprintf("TriggerKind(%d)", uint8(k))
	}
}

// Trigger describes a single Process invocation.
type Trigger struct {
	// Port is the input the delivered item is waiting on, for TriggerData.
	Port Port
	// Now is the platform time the reactor observed for this iteration.
	Now platform.Tick
	// Kind is the reason for the invocation.
	Kind TriggerKind
}
