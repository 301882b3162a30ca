// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package flow

import (
	"github.com/joeycumines/logiface"
)

// FaultSink receives a ProcessFault for every failed Process call. It is
// called on the reactor goroutine, after the dispatch, and must not block.
type FaultSink interface {
	Fault(f *ProcessFault)
}

// FaultSinkFunc adapts a function to a FaultSink.
type FaultSinkFunc func(f *ProcessFault)

// Fault implements FaultSink.
func (x FaultSinkFunc) Fault(f *ProcessFault) { x(f) }

// LogFaults returns the default FaultSink, which logs each fault at error
// level. A nil logger discards faults.
func LogFaults(logger *logiface.Logger[logiface.Event]) FaultSink {
	return FaultSinkFunc(func(f *ProcessFault) {
		logger.Err().
			Str(`component`, f.Name).
			Stringer(`trigger`, f.Trigger.Kind).
			Err(f.Err).
			Log(`process fault`)
	})
}
