// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package components

import (
	"errors"
	"strconv"

	"github.com/joeycumines/go-flow"
)

// Split copies every received value to each of its outputs.
type Split[T any] struct {
	In  *flow.InPort[T]
	Out []*flow.OutPort[T]
}

// NewSplit creates a Split with n outputs, named out0 to out{n-1}.
func NewSplit[T any](n int) *Split[T] {
	x := &Split[T]{Out: make([]*flow.OutPort[T], n)}
	x.In = flow.NewInPort[T](x, `in`)
	for i := range x.Out {
		x.Out[i] = flow.NewOutPort[T](x, `out`+strconv.Itoa(i))
	}
	return x
}

// Process implements flow.Component. Every output is attempted, and the
// failures joined, so one full output does not starve the others.
func (x *Split[T]) Process(flow.Trigger) error {
	var errs []error
	for {
		v, ok := x.In.Receive()
		if !ok {
			break
		}
		for _, out := range x.Out {
			if err := out.Send(v); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// Combine merges its inputs into one output. Lower indexed inputs take
// priority, and each is drained before moving on to the next.
type Combine[T any] struct {
	In  []*flow.InPort[T]
	Out *flow.OutPort[T]
}

// NewCombine creates a Combine with n inputs, named in0 to in{n-1}.
func NewCombine[T any](n int) *Combine[T] {
	x := &Combine[T]{In: make([]*flow.InPort[T], n)}
	for i := range x.In {
		x.In[i] = flow.NewInPort[T](x, `in`+strconv.Itoa(i))
	}
	x.Out = flow.NewOutPort[T](x, `out`)
	return x
}

// Process implements flow.Component.
func (x *Combine[T]) Process(flow.Trigger) error {
	for _, in := range x.In {
		for {
			v, ok := in.Receive()
			if !ok {
				break
			}
			if err := x.Out.Send(v); err != nil {
				return err
			}
		}
	}
	return nil
}
