// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package flow

import (
	"sync/atomic"
)

// State is the dispatch state of the reactor.
//
// State Machine:
//
//	StateIdle → StateDispatching   [scan found pending data, an event, or a due source]
//	StateDispatching → StateIdle   [Process returned]
//
// There is no stopped state: the loop lives as long as the process (or, on
// bare metal, forever).
type State uint32

const (
	// StateIdle indicates no Process call is in progress.
	StateIdle State = iota
	// StateDispatching indicates a component's Process is executing.
	StateDispatching
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateDispatching:
		return "Dispatching"
	default:
		return "Unknown"
	}
}

// stateCell holds a State, readable from any goroutine.
type stateCell struct {
	v atomic.Uint32
}

func (s *stateCell) Load() State { return State(s.v.Load()) }

func (s *stateCell) Store(state State) { s.v.Store(uint32(state)) }
