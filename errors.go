// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package flow

import (
	"errors"
	"fmt"

	"github.com/joeycumines/go-flow/pool"
	"github.com/joeycumines/go-flow/queue"
)

// Standard errors.
var (
	// ErrQueueFull is returned by a send into a full reject-new connection.
	// It is the same value as queue.ErrFull.
	ErrQueueFull = queue.ErrFull

	// ErrPoolExhausted is returned by a send into a connection whose shared
	// pool has no free slot. It is the same value as pool.ErrExhausted.
	ErrPoolExhausted = pool.ErrExhausted

	// ErrTypeMismatch is returned when connecting ports of different types.
	ErrTypeMismatch = errors.New("flow: port type mismatch")

	// ErrDirection is returned when the ports passed to ConnectPorts are not
	// an output followed by an input.
	ErrDirection = errors.New("flow: wrong port direction")

	// ErrInputConnected is returned when connecting an input port that
	// already has a connection, as inputs accept a single writer.
	ErrInputConnected = errors.New("flow: input port already connected")

	// ErrSelfConnection is returned when connecting a component's output to
	// one of its own inputs.
	ErrSelfConnection = errors.New("flow: self connection not supported")

	// ErrForeignPort is returned when a port's owner is not registered with
	// the reactor being wired.
	ErrForeignPort = errors.New("flow: port owner not registered with reactor")

	// ErrNotConnected is returned by a send on an output port without any
	// connection.
	ErrNotConnected = errors.New("flow: port not connected")

	// ErrReactorStarted is returned by construction calls after the reactor
	// has started, as its tables are immutable from then on.
	ErrReactorStarted = errors.New("flow: reactor already started")

	// ErrReactorStopped is returned when running a stopped reactor.
	ErrReactorStopped = errors.New("flow: reactor stopped")

	// ErrReentrantRun is returned when the reactor is driven from within a
	// dispatch, or from two goroutines at once.
	ErrReentrantRun = errors.New("flow: reactor is already running")

	// ErrAlreadyRegistered is returned when registering a component twice.
	ErrAlreadyRegistered = errors.New("flow: component already registered")

	// ErrNotRegistered is returned for a component unknown to the reactor.
	ErrNotRegistered = errors.New("flow: component not registered")

	// ErrNotEventSource is returned by Notify for a component registered
	// without WithEvents.
	ErrNotEventSource = errors.New("flow: component is not an event source")

	// ErrInvalidComponent is returned when registering a nil or
	// non-comparable component.
	ErrInvalidComponent = errors.New("flow: invalid component")

	// ErrProcessFault matches every *ProcessFault.
	ErrProcessFault = errors.New("flow: process fault")
)

// ProcessFault reports a failed Process call. It is delivered to the
// reactor's FaultSink; the reactor neither retries nor stops.
type ProcessFault struct {
	// Component is the faulting component.
	Component Component
	// Err is the error returned by Process, or a *PanicError.
	Err error
	// Name is the component's registered name.
	Name string
	// Trigger is the trigger of the failed invocation.
	Trigger Trigger
}

// Error implements the error interface.
func (e *ProcessFault) Error() string {
	return fmt.Sprintf("flow: process fault: %s (%v): %v", e.Name, e.Trigger.Kind, e.Err)
}

// Unwrap returns the underlying cause for use with [errors.Is] and [errors.As].
func (e *ProcessFault) Unwrap() error {
	return e.Err
}

// Is matches ErrProcessFault, in addition to the wrapped chain.
func (e *ProcessFault) Is(target error) bool {
	return target == ErrProcessFault
}

// ConnectionError reports a value a connection did not accept. Each
// Connection allocates its errors once, when it is built, so a rejected send
// does not allocate, including from interrupt context.
type ConnectionError struct {
	// Link is the rejecting connection.
	Link Link
	// Err is ErrQueueFull or ErrPoolExhausted.
	Err error
}

// Error implements the error interface.
func (e *ConnectionError) Error() string {
	return e.Link.Name() + ": " + e.Err.Error()
}

// Unwrap returns the underlying cause for use with [errors.Is] and [errors.As].
func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// PanicError wraps a value recovered from a panicking Process call.
type PanicError struct {
	Value any
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return fmt.Sprintf("flow: panic: %v", e.Value)
}

// Unwrap returns the panic value if it is an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}
