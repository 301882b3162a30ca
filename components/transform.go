// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package components

import (
	"github.com/joeycumines/go-flow"
	"golang.org/x/exp/constraints"
)

// Map sends fn(v) for every received v.
type Map[In, Out any] struct {
	In  *flow.InPort[In]
	Out *flow.OutPort[Out]
	fn  func(In) Out
}

// NewMap creates a Map applying fn, which must not be nil.
func NewMap[In, Out any](fn func(In) Out) *Map[In, Out] {
	if fn == nil {
		panic(`components: nil map function`)
	}
	x := &Map[In, Out]{fn: fn}
	x.In = flow.NewInPort[In](x, `in`)
	x.Out = flow.NewOutPort[Out](x, `out`)
	return x
}

// Process implements flow.Component.
func (x *Map[In, Out]) Process(flow.Trigger) error {
	for {
		v, ok := x.In.Receive()
		if !ok {
			return nil
		}
		if err := x.Out.Send(x.fn(v)); err != nil {
			return err
		}
	}
}

// Filter forwards the received values for which keep returns true.
type Filter[T any] struct {
	In   *flow.InPort[T]
	Out  *flow.OutPort[T]
	keep func(T) bool
}

// NewFilter creates a Filter, keep must not be nil.
func NewFilter[T any](keep func(T) bool) *Filter[T] {
	if keep == nil {
		panic(`components: nil filter function`)
	}
	x := &Filter[T]{keep: keep}
	x.In = flow.NewInPort[T](x, `in`)
	x.Out = flow.NewOutPort[T](x, `out`)
	return x
}

// Process implements flow.Component.
func (x *Filter[T]) Process(flow.Trigger) error {
	for {
		v, ok := x.In.Receive()
		if !ok {
			return nil
		}
		if !x.keep(v) {
			continue
		}
		if err := x.Out.Send(v); err != nil {
			return err
		}
	}
}

// Invert negates booleans.
type Invert struct {
	In  *flow.InPort[bool]
	Out *flow.OutPort[bool]
}

// NewInvert creates an Invert.
func NewInvert() *Invert {
	x := &Invert{}
	x.In = flow.NewInPort[bool](x, `in`)
	x.Out = flow.NewOutPort[bool](x, `out`)
	return x
}

// Process implements flow.Component.
func (x *Invert) Process(flow.Trigger) error {
	for {
		v, ok := x.In.Receive()
		if !ok {
			return nil
		}
		if err := x.Out.Send(!v); err != nil {
			return err
		}
	}
}

// Number is the set of types Convert operates on.
type Number interface {
	constraints.Integer | constraints.Float
}

// Convert performs a Go numeric conversion, truncating or wrapping as the
// language does.
type Convert[From, To Number] struct {
	In  *flow.InPort[From]
	Out *flow.OutPort[To]
}

// NewConvert creates a Convert from From to To.
func NewConvert[From, To Number]() *Convert[From, To] {
	x := &Convert[From, To]{}
	x.In = flow.NewInPort[From](x, `in`)
	x.Out = flow.NewOutPort[To](x, `out`)
	return x
}

// Process implements flow.Component.
func (x *Convert[From, To]) Process(flow.Trigger) error {
	for {
		v, ok := x.In.Receive()
		if !ok {
			return nil
		}
		if err := x.Out.Send(To(v)); err != nil {
			return err
		}
	}
}
