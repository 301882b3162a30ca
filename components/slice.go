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

// Slice is a source emitting a fixed sequence, one value per trigger. It is
// normally registered with flow.WithPeriod or flow.WithEvents. A full
// connection is retried on the next trigger.
type Slice[T any] struct {
	Out    *flow.OutPort[T]
	values []T
	next   int
}

// NewSlice creates a Slice emitting values in order.
func NewSlice[T any](values ...T) *Slice[T] {
	x := &Slice[T]{values: values}
	x.Out = flow.NewOutPort[T](x, `out`)
	return x
}

// Process implements flow.Component.
func (x *Slice[T]) Process(flow.Trigger) error {
	if x.Done() {
		return nil
	}
	if err := x.Out.Send(x.values[x.next]); err != nil {
		if errors.Is(err, flow.ErrQueueFull) || errors.Is(err, flow.ErrPoolExhausted) {
			return nil
		}
		return err
	}
	x.next++
	return nil
}

// Done reports whether every value was sent.
func (x *Slice[T]) Done() bool { return x.next >= len(x.values) }

// Collect is a sink recording every received value.
type Collect[T any] struct {
	In     *flow.InPort[T]
	Values []T
}

// NewCollect creates an empty Collect.
func NewCollect[T any]() *Collect[T] {
	x := &Collect[T]{}
	x.In = flow.NewInPort[T](x, `in`)
	return x
}

// Process implements flow.Component.
func (x *Collect[T]) Process(flow.Trigger) error {
	for {
		v, ok := x.In.Receive()
		if !ok {
			return nil
		}
		x.Values = append(x.Values, v)
	}
}
