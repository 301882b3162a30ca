// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package flow

import (
	"errors"

	"github.com/joeycumines/go-flow/platform"
	"github.com/joeycumines/go-flow/pool"
	"github.com/joeycumines/go-flow/queue"
	"github.com/joeycumines/logiface"
)

// reactorOptions holds configuration options for Reactor creation.
type reactorOptions struct {
	logger    *logiface.Logger[logiface.Event]
	faultSink FaultSink
}

// --- Reactor Options ---

// Option configures a Reactor instance.
type Option interface {
	applyReactor(*reactorOptions) error
}

// optionImpl implements Option.
type optionImpl struct {
	applyReactorFunc func(*reactorOptions) error
}

func (x *optionImpl) applyReactor(opts *reactorOptions) error {
	return x.applyReactorFunc(opts)
}

// WithLogger configures structured logging. A nil logger (the default)
// disables logging.
func WithLogger(logger *logiface.Logger[logiface.Event]) Option {
	return &optionImpl{func(opts *reactorOptions) error {
		opts.logger = logger
		return nil
	}}
}

// WithFaultSink receives every ProcessFault. The default sink logs faults
// at error level, see LogFaults.
func WithFaultSink(sink FaultSink) Option {
	return &optionImpl{func(opts *reactorOptions) error {
		if sink == nil {
			return errors.New("flow: nil fault sink")
		}
		opts.faultSink = sink
		return nil
	}}
}

// resolveOptions applies Option instances to reactorOptions.
func resolveOptions(opts []Option) (*reactorOptions, error) {
	cfg := &reactorOptions{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt.applyReactor(cfg); err != nil {
			return nil, err
		}
	}
	if cfg.faultSink == nil {
		cfg.faultSink = LogFaults(cfg.logger)
	}
	return cfg, nil
}

// --- Register Options ---

type registerOptions struct {
	name   string
	period platform.Tick
	events bool
}

// RegisterOption configures a component registration.
type RegisterOption interface {
	applyRegister(*registerOptions) error
}

type registerOptionImpl struct {
	applyRegisterFunc func(*registerOptions) error
}

func (x *registerOptionImpl) applyRegister(opts *registerOptions) error {
	return x.applyRegisterFunc(opts)
}

// WithName names the component, for logs and faults. Defaults to the
// component's type and registration index.
func WithName(name string) RegisterOption {
	return &registerOptionImpl{func(opts *registerOptions) error {
		opts.name = name
		return nil
	}}
}

// WithPeriod makes the component a periodic source, triggered with
// TriggerTimer every period ticks, first at start plus period.
func WithPeriod(period platform.Tick) RegisterOption {
	return &registerOptionImpl{func(opts *registerOptions) error {
		if period == 0 || period > platform.Tick(1<<31-1) {
			return errors.New("flow: period must be in [1, 2^31)")
		}
		opts.period = period
		return nil
	}}
}

// WithEvents makes the component an event source, triggered with
// TriggerEvent after each Reactor.Notify.
func WithEvents() RegisterOption {
	return &registerOptionImpl{func(opts *registerOptions) error {
		opts.events = true
		return nil
	}}
}

func resolveRegisterOptions(opts []RegisterOption) (*registerOptions, error) {
	cfg := &registerOptions{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt.applyRegister(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// --- Connection Options ---

type connectionOptions struct {
	name     string
	capacity int
	policy   queue.Policy
	// pool is a *pool.Pool[T], checked against the port type on connect
	pool any
}

// ConnectionOption configures a connection.
type ConnectionOption interface {
	applyConnection(*connectionOptions) error
}

type connectionOptionImpl struct {
	applyConnectionFunc func(*connectionOptions) error
}

func (x *connectionOptionImpl) applyConnection(opts *connectionOptions) error {
	return x.applyConnectionFunc(opts)
}

// WithCapacity sets the connection's queue capacity. Defaults to 1.
func WithCapacity(capacity int) ConnectionOption {
	return &connectionOptionImpl{func(opts *connectionOptions) error {
		if capacity <= 0 {
			return errors.New("flow: capacity must be positive")
		}
		opts.capacity = capacity
		return nil
	}}
}

// WithPolicy sets the connection's overflow policy. Defaults to
// queue.RejectNew.
func WithPolicy(policy queue.Policy) ConnectionOption {
	return &connectionOptionImpl{func(opts *connectionOptions) error {
		opts.policy = policy
		return nil
	}}
}

// WithConnectionName names the connection. Defaults to "out->in", using the
// port names.
func WithConnectionName(name string) ConnectionOption {
	return &connectionOptionImpl{func(opts *connectionOptions) error {
		opts.name = name
		return nil
	}}
}

// WithPool stores the connection's items in p, which may be shared with
// other connections of the same type. Sends then fail with ErrPoolExhausted
// once p is dry, even if the connection has room. The type of p must match
// the ports, else connecting fails with ErrTypeMismatch. Defaults to a
// private pool sized to the capacity.
func WithPool[T any](p *pool.Pool[T]) ConnectionOption {
	return &connectionOptionImpl{func(opts *connectionOptions) error {
		if p == nil {
			return errors.New("flow: nil pool")
		}
		opts.pool = p
		return nil
	}}
}

func resolveConnectionOptions(opts []ConnectionOption) (*connectionOptions, error) {
	cfg := &connectionOptions{
		capacity: 1,
		policy:   queue.RejectNew,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt.applyConnection(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}
