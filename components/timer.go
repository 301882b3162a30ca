// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package components

import (
	"github.com/joeycumines/go-flow"
)

// Tick is an indication, carrying no data.
type Tick struct{}

// Timer gives an indication every period timer triggers. Register it with
// flow.WithPeriod, the base rate, e.g. a millisecond.
//
// The period may be changed via InPeriod, which may be bound to a constant,
// using flow.ConnectConstant. A new period takes effect after the next
// indication, or immediately while the period is 0, which pauses the timer.
type Timer struct {
	InPeriod *flow.InPort[uint32]
	Out      *flow.OutPort[Tick]
	period   uint32
	next     uint32
	ticks    uint32
}

// NewTimer creates a Timer with the initial period.
func NewTimer(period uint32) *Timer {
	x := &Timer{period: period, next: period}
	x.InPeriod = flow.NewInPort[uint32](x, `period`)
	x.Out = flow.NewOutPort[Tick](x, `tick`)
	return x
}

// Process implements flow.Component.
func (x *Timer) Process(t flow.Trigger) error {
	if v, ok := x.InPeriod.Receive(); ok {
		x.next = v
	}
	if x.period == 0 {
		x.period = x.next
		return nil
	}
	if t.Kind != flow.TriggerTimer {
		return nil
	}
	if x.ticks++; x.ticks < x.period {
		return nil
	}
	x.ticks = 0
	x.period = x.next
	return x.Out.Send(Tick{})
}

// Toggle flips its output on every received Tick.
type Toggle struct {
	In    *flow.InPort[Tick]
	Out   *flow.OutPort[bool]
	state bool
}

// NewToggle creates a Toggle, initially false.
func NewToggle() *Toggle {
	x := &Toggle{}
	x.In = flow.NewInPort[Tick](x, `tick`)
	x.Out = flow.NewOutPort[bool](x, `out`)
	return x
}

// Process implements flow.Component.
func (x *Toggle) Process(flow.Trigger) error {
	for {
		if _, ok := x.In.Receive(); !ok {
			return nil
		}
		x.state = !x.state
		if err := x.Out.Send(x.state); err != nil {
			return err
		}
	}
}
