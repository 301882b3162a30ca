// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package flow

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync/atomic"

	"github.com/joeycumines/go-flow/platform"
	"github.com/joeycumines/logiface"
)

// Reactor is the single cooperative scheduler driving a component graph.
//
// Construction (Register, Connect, ConnectPorts, ConnectConstant) happens
// before Start, on one goroutine. From Start on, the tables are immutable,
// and only the reactor goroutine calls Process. The only operations safe
// from other goroutines (or interrupt handlers) are Notify,
// InterruptWriter.Send, State and Stats.
type Reactor struct {
	platform  platform.Platform
	signaler  platform.Signaler
	logger    *logiface.Logger[logiface.Event]
	faultSink FaultSink

	regs  []*registration
	byKey map[Component]*registration
	links []link

	state   stateCell
	stats   stats
	running atomic.Bool
	started atomic.Bool
	stopped atomic.Bool
}

// registration is a component's row in the reactor's tables.
type registration struct {
	component Component
	name      string
	index     int
	period    platform.Tick
	due       platform.Tick
	events    bool
	notified  atomic.Bool
}

// NewReactor creates a reactor bound to p. If p implements
// platform.Signaler, Notify and InterruptWriter wake the reactor through it.
func NewReactor(p platform.Platform, opts ...Option) (*Reactor, error) {
	if p == nil {
		return nil, errors.New("flow: nil platform")
	}
	cfg, err := resolveOptions(opts)
	if err != nil {
		return nil, err
	}
	r := &Reactor{
		platform:  p,
		logger:    cfg.logger,
		faultSink: cfg.faultSink,
		byKey:     make(map[Component]*registration),
	}
	r.signaler, _ = p.(platform.Signaler)
	return r, nil
}

// Register adds c to the reactor. Components are identified by value, and so
// must be comparable, typically a pointer. Ports must be owned by registered
// components before they are connected.
func (r *Reactor) Register(c Component, opts ...RegisterOption) error {
	if !registrable(c) {
		return fmt.Errorf("%w: %T", ErrInvalidComponent, c)
	}
	if r.started.Load() {
		return ErrReactorStarted
	}
	if _, ok := r.byKey[c]; ok {
		return ErrAlreadyRegistered
	}
	cfg, err := resolveRegisterOptions(opts)
	if err != nil {
		return err
	}
	reg := &registration{
		component: c,
		name:      cfg.name,
		index:     len(r.regs),
		period:    cfg.period,
		events:    cfg.events,
	}
	if reg.name == "" {
		reg.name = fmt.Sprintf("%T#%d", c, reg.index)
	}
	r.regs = append(r.regs, reg)
	r.byKey[c] = reg
	return nil
}

func registrable(c Component) bool {
	return c != nil && reflect.TypeOf(c).Comparable()
}

func (r *Reactor) lookup(c Component) (*registration, bool) {
	if !registrable(c) {
		return nil, false
	}
	reg, ok := r.byKey[c]
	return reg, ok
}

// wiring validates that p may be connected.
func (r *Reactor) wiring(p Port) (*registration, error) {
	if r.started.Load() {
		return nil, ErrReactorStarted
	}
	reg, ok := r.lookup(p.Owner())
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrForeignPort, p.Name())
	}
	return reg, nil
}

// Start seals the tables, schedules the periodic sources, and calls Start
// on each Starter in registration order. If a Starter fails, those already
// started are stopped, in reverse order, and the error is returned. Start is
// idempotent, and called implicitly by Step, Run and RunUntil.
func (r *Reactor) Start() error {
	if r.stopped.Load() {
		return ErrReactorStopped
	}
	if r.started.Load() {
		return nil
	}
	for i, reg := range r.regs {
		s, ok := reg.component.(Starter)
		if !ok {
			continue
		}
		if err := s.Start(); err != nil {
			r.stopComponents(i - 1)
			return fmt.Errorf("flow: start %s: %w", reg.name, err)
		}
	}
	now := r.platform.Now()
	for _, reg := range r.regs {
		if reg.period != 0 {
			reg.due = now.Add(reg.period)
		}
	}
	r.started.Store(true)
	r.logger.Info().
		Int(`components`, len(r.regs)).
		Int(`connections`, len(r.links)).
		Log(`reactor started`)
	return nil
}

// Stop calls Stop on each Stopper in reverse registration order, after which
// the reactor will not run again. Stop is idempotent. It must not be called
// concurrently with a dispatch, e.g. call it from a component, or after Run
// returns.
func (r *Reactor) Stop() {
	if !r.stopped.CompareAndSwap(false, true) {
		return
	}
	if r.started.Load() {
		r.stopComponents(len(r.regs) - 1)
	}
	r.logger.Info().Log(`reactor stopped`)
}

func (r *Reactor) stopComponents(last int) {
	for i := last; i >= 0; i-- {
		if s, ok := r.regs[i].component.(Stopper); ok {
			s.Stop()
		}
	}
}

// Notify marks the event source c as signalled, and wakes the reactor. Safe
// for use from interrupt handlers and other goroutines. Notifications
// coalesce: c is triggered once per observed signal.
func (r *Reactor) Notify(c Component) error {
	reg, ok := r.lookup(c)
	if !ok {
		return ErrNotRegistered
	}
	if !reg.events {
		return ErrNotEventSource
	}
	reg.notified.Store(true)
	if r.signaler != nil {
		r.signaler.Signal()
	}
	return nil
}

// Step runs a single iteration, returning true if a component was
// dispatched. Unlike Run, it never sleeps.
func (r *Reactor) Step() (bool, error) {
	if err := r.enter(); err != nil {
		return false, err
	}
	defer r.running.Store(false)
	return r.step(), nil
}

// Run drives the graph until ctx is done, returning ctx.Err(), or until the
// reactor is stopped, returning ErrReactorStopped. When nothing is pending
// it sleeps via the platform's SleepUntilEvent.
func (r *Reactor) Run(ctx context.Context) error {
	return r.RunUntil(ctx, nil)
}

// RunUntil is Run, that also returns nil once pred, evaluated before each
// iteration, reports true.
func (r *Reactor) RunUntil(ctx context.Context, pred func() bool) error {
	if err := r.enter(); err != nil {
		return err
	}
	defer r.running.Store(false)
	for {
		if pred != nil && pred() {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if r.stopped.Load() {
			return ErrReactorStopped
		}
		if !r.step() {
			r.stats.idles.Add(1)
			r.platform.SleepUntilEvent()
		}
	}
}

func (r *Reactor) enter() error {
	if r.stopped.Load() {
		return ErrReactorStopped
	}
	if !r.running.CompareAndSwap(false, true) {
		return ErrReentrantRun
	}
	if err := r.Start(); err != nil {
		r.running.Store(false)
		return err
	}
	return nil
}

// step performs one scan, always from the start of each table: the first
// connection with data, then the first signalled event source, then the
// first due periodic source. Continuous load on an earlier connection can
// starve later ones.
func (r *Reactor) step() bool {
	now := r.platform.Now()

	var data link
	r.platform.EnterCritical()
	for _, l := range r.links {
		if l.take() {
			data = l
			break
		}
	}
	r.platform.ExitCritical()
	if data != nil {
		r.dispatch(data.owner(), Trigger{Port: data.Target(), Now: now, Kind: TriggerData})
		if data.discard() {
			r.stats.discarded.Add(1)
			r.logger.Debug().
				Str(`connection`, data.Name()).
				Log(`discarded unconsumed delivery`)
		}
		return true
	}

	for _, reg := range r.regs {
		if reg.events && reg.notified.CompareAndSwap(true, false) {
			r.dispatch(reg, Trigger{Now: now, Kind: TriggerEvent})
			return true
		}
	}

	for _, reg := range r.regs {
		if reg.period == 0 || now.Before(reg.due) {
			continue
		}
		next := reg.due.Add(reg.period)
		if !now.Before(next) {
			// behind by a full period or more, don't burst
			next = now.Add(reg.period)
		}
		reg.due = next
		r.dispatch(reg, Trigger{Now: now, Kind: TriggerTimer})
		return true
	}

	return false
}

func (r *Reactor) dispatch(reg *registration, t Trigger) {
	r.state.Store(StateDispatching)
	err := safeProcess(reg.component, t)
	r.state.Store(StateIdle)
	r.stats.dispatches.Add(1)
	if err != nil {
		r.stats.faults.Add(1)
		r.faultSink.Fault(&ProcessFault{
			Component: reg.component,
			Err:       err,
			Name:      reg.name,
			Trigger:   t,
		})
	}
}

// safeProcess calls Process, converting a panic to a *PanicError.
func safeProcess(c Component, t Trigger) (err error) {
	defer func() {
		if v := recover(); v != nil {
			err = &PanicError{Value: v}
		}
	}()
	return c.Process(t)
}

// State returns the current dispatch state.
func (r *Reactor) State() State { return r.state.Load() }

// Stats returns a snapshot of the reactor's counters.
func (r *Reactor) Stats() Stats { return r.stats.snapshot() }

// Platform returns the platform the reactor was constructed with.
func (r *Reactor) Platform() platform.Platform { return r.platform }

// Links returns the connections, in connection order, which is the order
// they are scanned.
func (r *Reactor) Links() []Link {
	links := make([]Link, len(r.links))
	for i, l := range r.links {
		links[i] = l
	}
	return links
}
