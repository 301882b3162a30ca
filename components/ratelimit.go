// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package components

import (
	"fmt"
	"time"

	"github.com/joeycumines/go-catrate"
	"github.com/joeycumines/go-flow"
)

// RateLimit forwards received values while they are within every configured
// sliding window, dropping the excess. Values may be limited separately, per
// category.
type RateLimit[T any] struct {
	In       *flow.InPort[T]
	Out      *flow.OutPort[T]
	limiter  *catrate.Limiter
	category func(T) any
	dropped  uint64
}

// NewRateLimit creates a RateLimit. The rates map window durations to the
// maximum number of values per window, see catrate.NewLimiter. A nil
// category function limits all values together.
//
// Windows are measured on the wall clock, so RateLimit is intended for the
// host platform.
func NewRateLimit[T any](rates map[time.Duration]int, category func(T) any) (_ *RateLimit[T], err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf(`components: rate limit: %v`, r)
		}
	}()
	x := &RateLimit[T]{
		limiter:  catrate.NewLimiter(rates),
		category: category,
	}
	x.In = flow.NewInPort[T](x, `in`)
	x.Out = flow.NewOutPort[T](x, `out`)
	return x, nil
}

// Process implements flow.Component.
func (x *RateLimit[T]) Process(flow.Trigger) error {
	for {
		v, ok := x.In.Receive()
		if !ok {
			return nil
		}
		var category any
		if x.category != nil {
			category = x.category(v)
		}
		if _, ok := x.limiter.Allow(category); !ok {
			x.dropped++
			continue
		}
		if err := x.Out.Send(v); err != nil {
			return err
		}
	}
}

// Dropped returns the number of values dropped for exceeding a rate.
func (x *RateLimit[T]) Dropped() uint64 { return x.dropped }
