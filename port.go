// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package flow

import (
	"errors"
	"fmt"
	"reflect"
)

// Direction is the direction of a Port.
type Direction uint8

const (
	// Input ports receive from at most one connection.
	Input Direction = iota
	// Output ports send to any number of connections.
	Output
)

// String implements fmt.Stringer.
func (d Direction) String() string {
	switch d {
	case Input:
		return "input"
	case Output:
		return "output"
	default:
		return fmt.Sprintf("Direction(%d)", uint8(d))
	}
}

// Port is the type-erased view of an InPort or OutPort, used for
// run-time checked wiring via ConnectPorts.
type Port interface {
	// Name is the port name given at construction.
	Name() string
	// Direction is Input or Output.
	Direction() Direction
	// Type is the type tag: the reflect.Type of the carried values.
	Type() reflect.Type
	// Owner is the component the port belongs to.
	Owner() Component
	// Connected reports whether the port has at least one connection.
	Connected() bool

	connectTo(r *Reactor, in Port, cfg *connectionOptions) (Link, error)
}

type portBase struct {
	owner Component
	name  string
}

func (p *portBase) Name() string { return p.name }

func (p *portBase) Owner() Component { return p.owner }

// InPort receives values of type T from a single connection.
type InPort[T any] struct {
	portBase
	conn      *Connection[T]
	delivered T
	constant  T
	// hasDelivered is set while an item handed over by the reactor is
	// waiting to be received
	hasDelivered bool
	hasConstant  bool
}

// NewInPort creates an input port owned by owner.
func NewInPort[T any](owner Component, name string) *InPort[T] {
	return &InPort[T]{portBase: portBase{owner: owner, name: name}}
}

// Direction implements Port.
func (p *InPort[T]) Direction() Direction { return Input }

// Type implements Port.
func (p *InPort[T]) Type() reflect.Type { return reflect.TypeOf((*T)(nil)).Elem() }

// Connected implements Port.
func (p *InPort[T]) Connected() bool { return p.conn != nil || p.hasConstant }

func (p *InPort[T]) connectTo(*Reactor, Port, *connectionOptions) (Link, error) {
	return nil, fmt.Errorf("%w: %s is an input", ErrDirection, p.name)
}

// Receive returns the next value. The item delivered by the reactor for the
// current dispatch comes first, after which the backing queue is drained
// directly. An input bound with ConnectConstant always yields its constant.
// An unconnected input never yields.
func (p *InPort[T]) Receive() (v T, ok bool) {
	if p.hasDelivered {
		v = p.delivered
		p.clearDelivered()
		return v, true
	}
	if p.hasConstant {
		return p.constant, true
	}
	if p.conn != nil {
		return p.conn.receive()
	}
	return v, false
}

// Peek reports whether Receive would yield a value.
func (p *InPort[T]) Peek() bool {
	return p.hasDelivered || p.hasConstant || (p.conn != nil && p.conn.peek())
}

func (p *InPort[T]) clearDelivered() {
	var zero T
	p.delivered = zero
	p.hasDelivered = false
}

// OutPort sends values of type T to every connection, in connection order.
type OutPort[T any] struct {
	portBase
	conns []*Connection[T]
}

// NewOutPort creates an output port owned by owner.
func NewOutPort[T any](owner Component, name string) *OutPort[T] {
	return &OutPort[T]{portBase: portBase{owner: owner, name: name}}
}

// Direction implements Port.
func (p *OutPort[T]) Direction() Direction { return Output }

// Type implements Port.
func (p *OutPort[T]) Type() reflect.Type { return reflect.TypeOf((*T)(nil)).Elem() }

// Connected implements Port.
func (p *OutPort[T]) Connected() bool { return len(p.conns) != 0 }

func (p *OutPort[T]) connectTo(r *Reactor, in Port, cfg *connectionOptions) (Link, error) {
	if in.Direction() != Input {
		return nil, fmt.Errorf("%w: %s is an output", ErrDirection, in.Name())
	}
	typed, ok := in.(*InPort[T])
	if !ok {
		return nil, fmt.Errorf("%w: %s (%v) -> %s (%v)", ErrTypeMismatch, p.name, p.Type(), in.Name(), in.Type())
	}
	c, err := connect(r, p, typed, cfg)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Send copies v into every connection. All connections are attempted. A
// single failure is returned as is, a *ConnectionError wrapping ErrQueueFull
// or ErrPoolExhausted, without allocating. Failures of two or more
// connections are joined with errors.Join. Sending on an unconnected port
// returns ErrNotConnected.
func (p *OutPort[T]) Send(v T) error {
	switch len(p.conns) {
	case 0:
		return ErrNotConnected
	case 1:
		return p.conns[0].Forward(v)
	}
	var first error
	var errs []error
	for _, c := range p.conns {
		err := c.Forward(v)
		switch {
		case err == nil:
		case first == nil:
			first = err
		default:
			if errs == nil {
				errs = append(errs, first)
			}
			errs = append(errs, err)
		}
	}
	if errs != nil {
		return errors.Join(errs...)
	}
	return first
}

// sendFirst is Send without joining: every connection is attempted and the
// first failure is returned. It never allocates.
func (p *OutPort[T]) sendFirst(v T) error {
	if len(p.conns) == 0 {
		return ErrNotConnected
	}
	var first error
	for _, c := range p.conns {
		if err := c.Forward(v); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Full reports whether any connection is full, i.e. whether a Send would
// observe backpressure.
func (p *OutPort[T]) Full() bool {
	for _, c := range p.conns {
		if c.full() {
			return true
		}
	}
	return false
}

// Connections returns the port's connections, in connection order.
func (p *OutPort[T]) Connections() []*Connection[T] {
	return p.conns
}

// InOutPort is an input and an output of the same type, sharing a name
// prefix, for components exchanging values in both directions with a peer.
// See ConnectBidirectional.
type InOutPort[T any] struct {
	In  *InPort[T]
	Out *OutPort[T]
}

// NewInOutPort creates a duplex port owned by owner, with ports named
// name+".in" and name+".out".
func NewInOutPort[T any](owner Component, name string) *InOutPort[T] {
	return &InOutPort[T]{
		In:  NewInPort[T](owner, name+".in"),
		Out: NewOutPort[T](owner, name+".out"),
	}
}

// Receive is In.Receive.
func (p *InOutPort[T]) Receive() (T, bool) { return p.In.Receive() }

// Send is Out.Send.
func (p *InOutPort[T]) Send(v T) error { return p.Out.Send(v) }

// Connected reports whether both directions are connected.
func (p *InOutPort[T]) Connected() bool { return p.In.Connected() && p.Out.Connected() }
