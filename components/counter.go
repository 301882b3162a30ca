// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package components

import (
	"errors"

	"github.com/joeycumines/go-flow"
)

// Counter counts received values of any type, from 0 to limit-1, wrapping to
// 0. After draining its input it sends the count once.
type Counter[T any] struct {
	In    *flow.InPort[T]
	Out   *flow.OutPort[uint32]
	count uint32
	limit uint32
}

// NewCounter creates a Counter wrapping at limit, which must be positive.
func NewCounter[T any](limit uint32) (*Counter[T], error) {
	if limit == 0 {
		return nil, errors.New(`components: counter limit must be positive`)
	}
	x := &Counter[T]{limit: limit}
	x.In = flow.NewInPort[T](x, `in`)
	x.Out = flow.NewOutPort[uint32](x, `out`)
	return x, nil
}

// Process implements flow.Component.
func (x *Counter[T]) Process(flow.Trigger) error {
	var more bool
	for {
		if _, ok := x.In.Receive(); !ok {
			break
		}
		more = true
		if x.count++; x.count == x.limit {
			x.count = 0
		}
	}
	if !more {
		return nil
	}
	return x.Out.Send(x.count)
}

// Count returns the current count.
func (x *Counter[T]) Count() uint32 { return x.count }

// UpDownCounter counts up to an upper limit, then down to a lower limit, and
// repeats. After draining its input it sends the count once.
type UpDownCounter[T any] struct {
	In    *flow.InPort[T]
	Out   *flow.OutPort[uint32]
	count uint32
	lower uint32
	upper uint32
	down  bool
}

// NewUpDownCounter creates an UpDownCounter, counting up from start, which
// must lie in [lower, upper], with lower < upper.
func NewUpDownCounter[T any](lower, upper, start uint32) (*UpDownCounter[T], error) {
	if lower >= upper || start < lower || start > upper {
		return nil, errors.New(`components: invalid up down counter limits`)
	}
	x := &UpDownCounter[T]{
		count: start,
		lower: lower,
		upper: upper,
		down:  start == upper,
	}
	x.In = flow.NewInPort[T](x, `in`)
	x.Out = flow.NewOutPort[uint32](x, `out`)
	return x, nil
}

// Process implements flow.Component.
func (x *UpDownCounter[T]) Process(flow.Trigger) error {
	var more bool
	for {
		if _, ok := x.In.Receive(); !ok {
			break
		}
		more = true
		if x.down {
			x.count--
		} else {
			x.count++
		}
		switch x.count {
		case x.upper:
			x.down = true
		case x.lower:
			x.down = false
		}
	}
	if !more {
		return nil
	}
	return x.Out.Send(x.count)
}

// Count returns the current count.
func (x *UpDownCounter[T]) Count() uint32 { return x.count }
