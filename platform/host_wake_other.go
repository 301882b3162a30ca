// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

//go:build !linux && !baremetal

package platform

import (
	"time"
)

// chanWaker signals through a single-slot channel.
type chanWaker struct {
	ch    chan struct{}
	timer *time.Timer
}

func newWaker() (waker, error) {
	t := time.NewTimer(time.Hour)
	t.Stop()
	return &chanWaker{ch: make(chan struct{}, 1), timer: t}, nil
}

func (x *chanWaker) signal() {
	select {
	case x.ch <- struct{}{}:
	default:
	}
}

func (x *chanWaker) wait(timeout time.Duration) {
	x.timer.Reset(timeout)
	select {
	case <-x.ch:
	case <-x.timer.C:
	}
	x.timer.Stop()
}

func (x *chanWaker) drain() {
	select {
	case <-x.ch:
	default:
	}
}

func (x *chanWaker) close() error { return nil }
