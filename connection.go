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

// Link is the type-erased view of a Connection.
type Link interface {
	// Name is the connection name, "out->in" unless configured.
	Name() string
	// Len is the number of queued items.
	Len() int
	// Cap is the queue capacity.
	Cap() int
	// Policy is the overflow policy.
	Policy() queue.Policy
	// Dropped is the number of items evicted under queue.DropOldest.
	Dropped() uint64
	// Source is the output port.
	Source() Port
	// Target is the input port.
	Target() Port
}

// link is the reactor's view of a connection, used while it holds the
// platform critical section (take) or on the reactor goroutine (discard).
type link interface {
	Link
	take() bool
	discard() bool
	owner() *registration
}

// Connection is a bounded queue between one OutPort and one InPort, with
// capacity and overflow policy fixed at construction.
type Connection[T any] struct {
	r    *Reactor
	q    *queue.Queue[T]
	src  *OutPort[T]
	dst  *InPort[T]
	reg  *registration
	name string

	errFull      *ConnectionError
	errExhausted *ConnectionError
}

var _ link = (*Connection[int])(nil)

// Connect joins out to in. Both port owners must be registered with r, and
// r must not have started. See ConnectPorts for run-time typed wiring.
func Connect[T any](r *Reactor, out *OutPort[T], in *InPort[T], opts ...ConnectionOption) (*Connection[T], error) {
	if out == nil || in == nil {
		return nil, errors.New("flow: nil port")
	}
	cfg, err := resolveConnectionOptions(opts)
	if err != nil {
		return nil, err
	}
	return connect(r, out, in, cfg)
}

// ConnectPorts joins out to in, validating the directions (ErrDirection) and
// type tags (ErrTypeMismatch) at run time. It is otherwise equivalent to
// Connect.
func ConnectPorts(r *Reactor, out, in Port, opts ...ConnectionOption) (Link, error) {
	if out == nil || in == nil {
		return nil, errors.New("flow: nil port")
	}
	if out.Direction() != Output {
		return nil, fmt.Errorf("%w: %s is an input", ErrDirection, out.Name())
	}
	cfg, err := resolveConnectionOptions(opts)
	if err != nil {
		return nil, err
	}
	return out.connectTo(r, in, cfg)
}

// ConnectConstant binds in to a constant value. Receive always yields value,
// but the binding never triggers the owner.
//
// A constant input is never exhausted, so the owner must read it once per
// Process, not drain it in a loop until Receive reports false. Library
// components that drain their inputs (e.g. Map, Split, Combine, Counter) will
// not return if given a constant input.
func ConnectConstant[T any](r *Reactor, value T, in *InPort[T]) error {
	if in == nil {
		return errors.New("flow: nil port")
	}
	if _, err := r.wiring(in); err != nil {
		return err
	}
	if in.Connected() {
		return fmt.Errorf("%w: %s", ErrInputConnected, in.name)
	}
	in.constant = value
	in.hasConstant = true
	return nil
}

func connect[T any](r *Reactor, out *OutPort[T], in *InPort[T], cfg *connectionOptions) (*Connection[T], error) {
	if _, err := r.wiring(out); err != nil {
		return nil, err
	}
	reg, err := r.wiring(in)
	if err != nil {
		return nil, err
	}
	if out.owner == in.owner {
		return nil, fmt.Errorf("%w: %s -> %s", ErrSelfConnection, out.name, in.name)
	}
	if in.Connected() {
		return nil, fmt.Errorf("%w: %s", ErrInputConnected, in.name)
	}
	var q *queue.Queue[T]
	if cfg.pool != nil {
		p, ok := cfg.pool.(*pool.Pool[T])
		if !ok {
			return nil, fmt.Errorf("%w: pool %T for %s (%v)", ErrTypeMismatch, cfg.pool, in.name, in.Type())
		}
		q, err = queue.NewWithPool(p, cfg.capacity, cfg.policy)
	} else {
		q, err = queue.New[T](cfg.capacity, cfg.policy)
	}
	if err != nil {
		return nil, err
	}
	name := cfg.name
	if name == "" {
		name = out.name + "->" + in.name
	}
	c := &Connection[T]{
		r:    r,
		q:    q,
		src:  out,
		dst:  in,
		reg:  reg,
		name: name,
	}
	c.errFull = &ConnectionError{Link: c, Err: ErrQueueFull}
	c.errExhausted = &ConnectionError{Link: c, Err: ErrPoolExhausted}
	out.conns = append(out.conns, c)
	in.conn = c
	r.links = append(r.links, c)
	return c, nil
}

// ConnectBidirectional joins a and b in both directions, a.Out to b.In then
// b.Out to a.In, with the same options. Either both connections are made or
// neither is.
func ConnectBidirectional[T any](r *Reactor, a, b *InOutPort[T], opts ...ConnectionOption) (ab, ba *Connection[T], err error) {
	if a == nil || b == nil {
		return nil, nil, errors.New("flow: nil port")
	}
	cfg, err := resolveConnectionOptions(opts)
	if err != nil {
		return nil, nil, err
	}
	name := cfg.name
	if name != "" {
		cfg.name = name + "/ab"
	}
	if ab, err = connect(r, a.Out, b.In, cfg); err != nil {
		return nil, nil, err
	}
	if name != "" {
		cfg.name = name + "/ba"
	}
	if ba, err = connect(r, b.Out, a.In, cfg); err != nil {
		ab.unlink()
		return nil, nil, err
	}
	return ab, ba, nil
}

// unlink reverts connect, for a connection that has never carried data.
func (c *Connection[T]) unlink() {
	for i, v := range c.src.conns {
		if v == c {
			c.src.conns = append(c.src.conns[:i], c.src.conns[i+1:]...)
			break
		}
	}
	c.dst.conn = nil
	for i, v := range c.r.links {
		if v == link(c) {
			c.r.links = append(c.r.links[:i], c.r.links[i+1:]...)
			break
		}
	}
}

// Forward enqueues v inside a platform critical section. A rejected value is
// reported as a *ConnectionError wrapping ErrQueueFull or ErrPoolExhausted;
// neither outcome allocates. Evictions under queue.DropOldest are counted in
// Stats.Evicted.
func (c *Connection[T]) Forward(v T) error {
	c.r.platform.EnterCritical()
	_, dropped, err := c.q.Enqueue(v)
	c.r.platform.ExitCritical()
	if err != nil {
		return c.reject(err)
	}
	if dropped {
		c.r.stats.evicted.Add(1)
	}
	return nil
}

func (c *Connection[T]) reject(err error) error {
	switch {
	case errors.Is(err, ErrQueueFull):
		return c.errFull
	case errors.Is(err, ErrPoolExhausted):
		return c.errExhausted
	}
	return err
}

// Name implements Link.
func (c *Connection[T]) Name() string { return c.name }

// Len implements Link.
func (c *Connection[T]) Len() int {
	c.r.platform.EnterCritical()
	defer c.r.platform.ExitCritical()
	return c.q.Len()
}

// Cap implements Link.
func (c *Connection[T]) Cap() int { return c.q.Cap() }

// Policy implements Link.
func (c *Connection[T]) Policy() queue.Policy { return c.q.Policy() }

// Dropped implements Link.
func (c *Connection[T]) Dropped() uint64 {
	c.r.platform.EnterCritical()
	defer c.r.platform.ExitCritical()
	return c.q.Dropped()
}

// Source implements Link.
func (c *Connection[T]) Source() Port { return c.src }

// Target implements Link.
func (c *Connection[T]) Target() Port { return c.dst }

func (c *Connection[T]) full() bool {
	c.r.platform.EnterCritical()
	defer c.r.platform.ExitCritical()
	return c.q.IsFull()
}

func (c *Connection[T]) peek() bool {
	c.r.platform.EnterCritical()
	defer c.r.platform.ExitCritical()
	return !c.q.IsEmpty()
}

func (c *Connection[T]) receive() (T, bool) {
	c.r.platform.EnterCritical()
	defer c.r.platform.ExitCritical()
	return c.q.Dequeue()
}

// take moves the head item into the target port. The caller holds the
// critical section.
func (c *Connection[T]) take() bool {
	v, ok := c.q.Dequeue()
	if !ok {
		return false
	}
	c.dst.delivered = v
	c.dst.hasDelivered = true
	return true
}

func (c *Connection[T]) discard() bool {
	if !c.dst.hasDelivered {
		return false
	}
	c.dst.clearDelivered()
	return true
}

func (c *Connection[T]) owner() *registration { return c.reg }
