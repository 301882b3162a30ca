// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

//go:build !baremetal

package platform

import (
	"fmt"
	"time"
)

// hostOptions holds configuration options for Host creation.
type hostOptions struct {
	clock       func() Tick
	idleTimeout time.Duration
}

// HostOption configures a Host instance.
type HostOption interface {
	applyHost(*hostOptions) error
}

// hostOptionImpl implements HostOption.
type hostOptionImpl struct {
	applyHostFunc func(*hostOptions) error
}

func (x *hostOptionImpl) applyHost(opts *hostOptions) error {
	return x.applyHostFunc(opts)
}

// WithClock replaces the OS clock. Intended for deterministic tests, where
// time is advanced explicitly.
func WithClock(clock func() Tick) HostOption {
	return &hostOptionImpl{func(opts *hostOptions) error {
		opts.clock = clock
		return nil
	}}
}

// WithIdleTimeout bounds how long SleepUntilEvent blocks without a Signal.
// It must be positive.
func WithIdleTimeout(d time.Duration) HostOption {
	return &hostOptionImpl{func(opts *hostOptions) error {
		if d <= 0 {
			return fmt.Errorf("platform: idle timeout must be positive: %v", d)
		}
		opts.idleTimeout = d
		return nil
	}}
}

// resolveHostOptions applies HostOption instances to hostOptions.
func resolveHostOptions(opts []HostOption) (*hostOptions, error) {
	cfg := &hostOptions{
		idleTimeout: DefaultIdleTimeout,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt.applyHost(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}
