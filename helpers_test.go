// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package flow

import (
	"sync/atomic"
	"testing"

	"github.com/joeycumines/go-flow/platform"
	"github.com/joeycumines/logiface"
	"github.com/stretchr/testify/require"
)

// newSteppingHost returns a host whose clock advances by one tick per read.
func newSteppingHost(t testing.TB) *platform.Host {
	t.Helper()
	var now atomic.Uint32
	h, err := platform.NewHost(platform.WithClock(func() platform.Tick {
		return platform.Tick(now.Add(1))
	}))
	require.NoError(t, err)
	t.Cleanup(func() { _ = h.Close() })
	return h
}

// manualClock is a clock under test control.
type manualClock struct {
	now atomic.Uint32
}

func (x *manualClock) Now() platform.Tick { return platform.Tick(x.now.Load()) }

func (x *manualClock) Set(t platform.Tick) { x.now.Store(uint32(t)) }

func newManualHost(t testing.TB, clock *manualClock) *platform.Host {
	t.Helper()
	h, err := platform.NewHost(platform.WithClock(clock.Now))
	require.NoError(t, err)
	t.Cleanup(func() { _ = h.Close() })
	return h
}

// quietPlatform is a platform that never allocates, for allocation counts,
// as the host's critical sections allocate.
type quietPlatform struct {
	now     platform.Tick
	signals int
}

func (x *quietPlatform) Now() platform.Tick {
	x.now++
	return x.now
}

func (x *quietPlatform) EnterCritical() {}

func (x *quietPlatform) ExitCritical() {}

func (x *quietPlatform) SleepUntilEvent() {}

func (x *quietPlatform) Signal() { x.signals++ }

// tracer records dispatches, in order.
type tracer struct {
	events []string
}

func (x *tracer) add(name string) {
	if x != nil {
		x.events = append(x.events, name)
	}
}

// sliceSource emits values, one per trigger, retrying on failure.
type sliceSource struct {
	Out    *OutPort[int]
	trace  *tracer
	name   string
	values []int
	next   int
}

func newSliceSource(name string, trace *tracer, values ...int) *sliceSource {
	x := &sliceSource{name: name, trace: trace, values: values}
	x.Out = NewOutPort[int](x, "out")
	return x
}

func (x *sliceSource) Process(Trigger) error {
	x.trace.add(x.name)
	if x.next >= len(x.values) {
		return nil
	}
	if err := x.Out.Send(x.values[x.next]); err != nil {
		return err
	}
	x.next++
	return nil
}

// mapper applies fn to each received value.
type mapper struct {
	In    *InPort[int]
	Out   *OutPort[int]
	trace *tracer
	name  string
	fn    func(int) int
}

func newMapper(name string, trace *tracer, fn func(int) int) *mapper {
	x := &mapper{name: name, trace: trace, fn: fn}
	x.In = NewInPort[int](x, "in")
	x.Out = NewOutPort[int](x, "out")
	return x
}

func (x *mapper) Process(Trigger) error {
	x.trace.add(x.name)
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

// collector records every received value, receiving at most limit per
// dispatch (0 for no limit).
type collector[T any] struct {
	In       *InPort[T]
	trace    *tracer
	name     string
	values   []T
	triggers []Trigger
	limit    int
}

func newCollector[T any](name string, trace *tracer) *collector[T] {
	x := &collector[T]{name: name, trace: trace}
	x.In = NewInPort[T](x, "in")
	return x
}

func (x *collector[T]) Process(t Trigger) error {
	x.trace.add(x.name)
	x.triggers = append(x.triggers, t)
	for n := 0; x.limit == 0 || n < x.limit; n++ {
		v, ok := x.In.Receive()
		if !ok {
			break
		}
		x.values = append(x.values, v)
	}
	return nil
}

// recordingSink collects faults.
type recordingSink struct {
	faults []*ProcessFault
}

func (x *recordingSink) Fault(f *ProcessFault) { x.faults = append(x.faults, f) }

// testEvent is a minimal logiface.Event implementation, recording fields.
type testEvent struct {
	logiface.UnimplementedEvent
	level  logiface.Level
	fields map[string]any
}

func (e *testEvent) Level() logiface.Level { return e.level }

func (e *testEvent) AddField(key string, val any) {
	if e.fields == nil {
		e.fields = make(map[string]any)
	}
	e.fields[key] = val
}

// testEventFactory creates testEvent instances.
type testEventFactory struct{}

func (f *testEventFactory) NewEvent(level logiface.Level) *testEvent {
	return &testEvent{level: level}
}

// testEventWriter writes testEvent instances.
type testEventWriter struct {
	events []*testEvent
}

func (w *testEventWriter) Write(event *testEvent) error {
	w.events = append(w.events, event)
	return nil
}

func newTestLogger(level logiface.Level) (*logiface.Logger[logiface.Event], *testEventWriter) {
	writer := &testEventWriter{}
	typedLogger := logiface.New[*testEvent](
		logiface.WithEventFactory[*testEvent](&testEventFactory{}),
		logiface.WithWriter[*testEvent](writer),
		logiface.WithLevel[*testEvent](level),
	)
	return typedLogger.Logger(), writer
}
