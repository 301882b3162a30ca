// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package components

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/joeycumines/go-flow"
	"github.com/joeycumines/go-flow/platform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newReactor returns a reactor on a host whose clock advances by one tick
// per read, along with the registered components.
func newReactor(t *testing.T, periodic flow.Component, components ...flow.Component) *flow.Reactor {
	t.Helper()
	var now atomic.Uint32
	h, err := platform.NewHost(platform.WithClock(func() platform.Tick {
		return platform.Tick(now.Add(1))
	}))
	require.NoError(t, err)
	t.Cleanup(func() { _ = h.Close() })
	r, err := flow.NewReactor(h)
	require.NoError(t, err)
	if periodic != nil {
		require.NoError(t, r.Register(periodic, flow.WithPeriod(1)))
	}
	for _, c := range components {
		require.NoError(t, r.Register(c))
	}
	return r
}

func connect[T any](t *testing.T, r *flow.Reactor, out *flow.OutPort[T], in *flow.InPort[T], opts ...flow.ConnectionOption) {
	t.Helper()
	_, err := flow.Connect(r, out, in, opts...)
	require.NoError(t, err)
}

func runUntil(t *testing.T, r *flow.Reactor, pred func() bool) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	require.NoError(t, r.RunUntil(ctx, pred))
}

// drain steps until idle.
func drain(t *testing.T, r *flow.Reactor) {
	t.Helper()
	for {
		ok, err := r.Step()
		require.NoError(t, err)
		if !ok {
			return
		}
	}
}

// feeder owns an output port, for injecting values directly.
type feeder[T any] struct {
	Out *flow.OutPort[T]
}

func newFeeder[T any]() *feeder[T] {
	x := &feeder[T]{}
	x.Out = flow.NewOutPort[T](x, `feed`)
	return x
}

func (x *feeder[T]) Process(flow.Trigger) error { return nil }

func TestMap_doubling(t *testing.T) {
	src := NewSlice(1, 2, 3, 4, 5)
	dbl := NewMap(func(v int) int { return v * 2 })
	sink := NewCollect[int]()
	r := newReactor(t, src, dbl, sink)
	connect(t, r, src.Out, dbl.In)
	connect(t, r, dbl.Out, sink.In)
	runUntil(t, r, func() bool { return len(sink.Values) == 5 })
	assert.Equal(t, []int{2, 4, 6, 8, 10}, sink.Values)
	assert.True(t, src.Done())
	assert.Zero(t, r.Stats().Faults)
}

func TestMap_changesType(t *testing.T) {
	src := NewSlice(1, 22, 333)
	m := NewMap(func(v int) string { return string(rune('a' + v%26)) })
	sink := NewCollect[string]()
	r := newReactor(t, src, m, sink)
	connect(t, r, src.Out, m.In)
	connect(t, r, m.Out, sink.In)
	runUntil(t, r, func() bool { return len(sink.Values) == 3 })
	assert.Equal(t, []string{"b", "w", "v"}, sink.Values)
	assert.Panics(t, func() { NewMap[int, int](nil) })
}

func TestFilter(t *testing.T) {
	src := NewSlice(1, 2, 3, 4, 5, 6)
	even := NewFilter(func(v int) bool { return v%2 == 0 })
	sink := NewCollect[int]()
	r := newReactor(t, src, even, sink)
	connect(t, r, src.Out, even.In)
	connect(t, r, even.Out, sink.In)
	runUntil(t, r, func() bool { return src.Done() && len(sink.Values) == 3 })
	assert.Equal(t, []int{2, 4, 6}, sink.Values)
	assert.Panics(t, func() { NewFilter[int](nil) })
}

func TestInvert(t *testing.T) {
	src := NewSlice(true, false, false)
	inv := NewInvert()
	sink := NewCollect[bool]()
	r := newReactor(t, src, inv, sink)
	connect(t, r, src.Out, inv.In)
	connect(t, r, inv.Out, sink.In)
	runUntil(t, r, func() bool { return len(sink.Values) == 3 })
	assert.Equal(t, []bool{false, true, true}, sink.Values)
}

func TestConvert(t *testing.T) {
	src := NewSlice(1.9, -2.5, 300.0)
	toInt := NewConvert[float64, int16]()
	toFloat := NewConvert[int16, float32]()
	sink := NewCollect[float32]()
	r := newReactor(t, src, toInt, toFloat, sink)
	connect(t, r, src.Out, toInt.In)
	connect(t, r, toInt.Out, toFloat.In)
	connect(t, r, toFloat.Out, sink.In)
	runUntil(t, r, func() bool { return len(sink.Values) == 3 })
	assert.Equal(t, []float32{1, -2, 300}, sink.Values)
}

func TestCounter(t *testing.T) {
	src := NewSlice(`a`, `b`, `c`, `d`, `e`)
	counter, err := NewCounter[string](3)
	require.NoError(t, err)
	sink := NewCollect[uint32]()
	r := newReactor(t, src, counter, sink)
	connect(t, r, src.Out, counter.In)
	connect(t, r, counter.Out, sink.In)
	runUntil(t, r, func() bool { return len(sink.Values) == 5 })
	assert.Equal(t, []uint32{1, 2, 0, 1, 2}, sink.Values)
	assert.Equal(t, uint32(2), counter.Count())

	_, err = NewCounter[int](0)
	assert.Error(t, err)
}

func TestCounter_drainsBeforeSending(t *testing.T) {
	feed := newFeeder[Tick]()
	counter, err := NewCounter[Tick](10)
	require.NoError(t, err)
	sink := NewCollect[uint32]()
	r := newReactor(t, nil, feed, counter, sink)
	connect(t, r, feed.Out, counter.In, flow.WithCapacity(4))
	connect(t, r, counter.Out, sink.In)
	for range 4 {
		require.NoError(t, feed.Out.Send(Tick{}))
	}
	drain(t, r)
	assert.Equal(t, []uint32{4}, sink.Values)

	// dormant without stimulus
	drain(t, r)
	assert.Equal(t, []uint32{4}, sink.Values)
}

func TestUpDownCounter(t *testing.T) {
	src := NewSlice(0, 0, 0, 0, 0, 0, 0, 0)
	counter, err := NewUpDownCounter[int](0, 3, 0)
	require.NoError(t, err)
	sink := NewCollect[uint32]()
	r := newReactor(t, src, counter, sink)
	connect(t, r, src.Out, counter.In)
	connect(t, r, counter.Out, sink.In)
	runUntil(t, r, func() bool { return len(sink.Values) == 8 })
	assert.Equal(t, []uint32{1, 2, 3, 2, 1, 0, 1, 2}, sink.Values)
	assert.Equal(t, uint32(2), counter.Count())

	for _, tc := range [][3]uint32{{3, 3, 3}, {4, 3, 3}, {1, 3, 0}, {1, 3, 4}} {
		_, err := NewUpDownCounter[int](tc[0], tc[1], tc[2])
		assert.Error(t, err, "%v", tc)
	}

	// starting at the upper limit counts down
	c, err := NewUpDownCounter[int](5, 7, 7)
	require.NoError(t, err)
	assert.True(t, c.down)
}

func TestSplit(t *testing.T) {
	src := NewSlice(1, 2, 3)
	split := NewSplit[int](3)
	sinks := []*Collect[int]{NewCollect[int](), NewCollect[int](), NewCollect[int]()}
	r := newReactor(t, src, split, sinks[0], sinks[1], sinks[2])
	connect(t, r, src.Out, split.In)
	for i, sink := range sinks {
		connect(t, r, split.Out[i], sink.In)
	}
	assert.Equal(t, "out2", split.Out[2].Name())
	runUntil(t, r, func() bool { return len(sinks[2].Values) == 3 })
	for _, sink := range sinks {
		assert.Equal(t, []int{1, 2, 3}, sink.Values)
	}
}

func TestSplit_fullOutputDoesNotStarveOthers(t *testing.T) {
	feed := newFeeder[int]()
	split := NewSplit[int](2)
	sink := NewCollect[int]()
	var blocked flow.ComponentFunc = func(flow.Trigger) error { return nil }
	blockedIn := flow.NewInPort[int](&blocked, `in`)
	r := newReactor(t, nil, feed, split, sink, &blocked)
	connect(t, r, feed.Out, split.In, flow.WithCapacity(3))
	connect(t, r, split.Out[0], blockedIn)
	connect(t, r, split.Out[1], sink.In, flow.WithCapacity(3))
	for i := 1; i <= 3; i++ {
		require.NoError(t, feed.Out.Send(i))
	}
	ok, err := r.Step()
	require.NoError(t, err)
	require.True(t, ok)
	// blocked accepted 1, then rejected 2 and 3
	assert.Equal(t, uint64(1), r.Stats().Faults)
	drain(t, r)
	assert.Equal(t, []int{1, 2, 3}, sink.Values)
}

func TestCombine_priority(t *testing.T) {
	low := newFeeder[int]()
	high := newFeeder[int]()
	combine := NewCombine[int](2)
	sink := NewCollect[int]()
	r := newReactor(t, nil, low, high, combine, sink)
	connect(t, r, low.Out, combine.In[0], flow.WithCapacity(2))
	connect(t, r, high.Out, combine.In[1], flow.WithCapacity(2))
	connect(t, r, combine.Out, sink.In, flow.WithCapacity(4))
	require.NoError(t, high.Out.Send(10))
	require.NoError(t, high.Out.Send(11))
	require.NoError(t, low.Out.Send(1))
	require.NoError(t, low.Out.Send(2))

	ok, err := r.Step()
	require.NoError(t, err)
	require.True(t, ok)
	drain(t, r)
	assert.Equal(t, []int{1, 2, 10, 11}, sink.Values)
	assert.Zero(t, r.Stats().Discarded)
}

func TestCombine_triggeredByLaterInput(t *testing.T) {
	low := newFeeder[int]()
	high := newFeeder[int]()
	combine := NewCombine[int](2)
	sink := NewCollect[int]()
	r := newReactor(t, nil, low, high, combine, sink)
	connect(t, r, high.Out, combine.In[1], flow.WithCapacity(2))
	connect(t, r, low.Out, combine.In[0], flow.WithCapacity(2))
	connect(t, r, combine.Out, sink.In, flow.WithCapacity(4))
	require.NoError(t, high.Out.Send(10))
	require.NoError(t, low.Out.Send(1))
	drain(t, r)
	// the delivery on in1 waits while in0 drains
	assert.Equal(t, []int{1, 10}, sink.Values)
}

func TestTimerToggle(t *testing.T) {
	clock := &atomic.Uint32{}
	h, err := platform.NewHost(platform.WithClock(func() platform.Tick {
		return platform.Tick(clock.Load())
	}))
	require.NoError(t, err)
	defer h.Close()
	r, err := flow.NewReactor(h)
	require.NoError(t, err)

	timer := NewTimer(3)
	toggle := NewToggle()
	sink := NewCollect[bool]()
	require.NoError(t, r.Register(timer, flow.WithPeriod(1)))
	require.NoError(t, r.Register(toggle))
	require.NoError(t, r.Register(sink))
	require.NoError(t, flow.ConnectConstant(r, uint32(3), timer.InPeriod))
	connect(t, r, timer.Out, toggle.In)
	connect(t, r, toggle.Out, sink.In)

	require.NoError(t, r.Start())
	var emitted []uint32
	for now := uint32(1); now <= 9; now++ {
		clock.Store(now)
		before := len(sink.Values)
		drain(t, r)
		if len(sink.Values) != before {
			emitted = append(emitted, now)
		}
	}
	assert.Equal(t, []uint32{3, 6, 9}, emitted)
	assert.Equal(t, []bool{true, false, true}, sink.Values)
}

func TestTimer_dynamicPeriod(t *testing.T) {
	clock := &atomic.Uint32{}
	h, err := platform.NewHost(platform.WithClock(func() platform.Tick {
		return platform.Tick(clock.Load())
	}))
	require.NoError(t, err)
	defer h.Close()
	r, err := flow.NewReactor(h)
	require.NoError(t, err)

	feed := newFeeder[uint32]()
	timer := NewTimer(0)
	sink := NewCollect[Tick]()
	require.NoError(t, r.Register(feed))
	require.NoError(t, r.Register(timer, flow.WithPeriod(1)))
	require.NoError(t, r.Register(sink))
	connect(t, r, feed.Out, timer.InPeriod)
	connect(t, r, timer.Out, sink.In, flow.WithCapacity(8))

	require.NoError(t, r.Start())
	step := func(now uint32) {
		clock.Store(now)
		drain(t, r)
	}

	// paused
	for now := uint32(1); now <= 4; now++ {
		step(now)
	}
	assert.Empty(t, sink.Values)

	require.NoError(t, feed.Out.Send(2))
	for now := uint32(5); now <= 8; now++ {
		step(now)
	}
	assert.Len(t, sink.Values, 2)

	// takes effect after the next indication
	require.NoError(t, feed.Out.Send(4))
	for now := uint32(9); now <= 10; now++ {
		step(now)
	}
	assert.Len(t, sink.Values, 3)
	for now := uint32(11); now <= 14; now++ {
		step(now)
	}
	assert.Len(t, sink.Values, 4)
}

func TestRateLimit(t *testing.T) {
	src := NewSlice(1, 2, 3, 4, 5, 6)
	limit, err := NewRateLimit[int](map[time.Duration]int{time.Hour: 3}, nil)
	require.NoError(t, err)
	sink := NewCollect[int]()
	r := newReactor(t, src, limit, sink)
	connect(t, r, src.Out, limit.In)
	connect(t, r, limit.Out, sink.In)
	runUntil(t, r, func() bool { return limit.Dropped() == 3 })
	assert.Equal(t, []int{1, 2, 3}, sink.Values)
}

func TestRateLimit_categories(t *testing.T) {
	src := NewSlice(1, 2, 3, 4, 5, 6)
	limit, err := NewRateLimit(map[time.Duration]int{time.Hour: 2}, func(v int) any { return v % 2 })
	require.NoError(t, err)
	sink := NewCollect[int]()
	r := newReactor(t, src, limit, sink)
	connect(t, r, src.Out, limit.In)
	connect(t, r, limit.Out, sink.In)
	runUntil(t, r, func() bool { return limit.Dropped() == 2 })
	assert.Equal(t, []int{1, 2, 3, 4}, sink.Values)
}

func TestRateLimit_invalidRates(t *testing.T) {
	_, err := NewRateLimit[int](map[time.Duration]int{time.Second: 0}, nil)
	assert.Error(t, err)
	_, err = NewRateLimit[int](map[time.Duration]int{time.Second: 5, time.Minute: 5}, nil)
	assert.Error(t, err)
}

func TestSlice_retriesWhenFull(t *testing.T) {
	src := NewSlice(1, 2, 3)
	var lazy flow.ComponentFunc = func(flow.Trigger) error { return nil }
	in := flow.NewInPort[int](&lazy, `in`)
	r := newReactor(t, nil, src, &lazy)
	connect(t, r, src.Out, in)

	require.NoError(t, src.Process(flow.Trigger{Kind: flow.TriggerTimer}))
	require.NoError(t, src.Process(flow.Trigger{Kind: flow.TriggerTimer}))
	assert.False(t, src.Done())
	v, ok := in.Receive()
	require.True(t, ok)
	assert.Equal(t, 1, v)
	require.NoError(t, src.Process(flow.Trigger{Kind: flow.TriggerTimer}))
	require.NoError(t, src.Process(flow.Trigger{Kind: flow.TriggerTimer}))
	v, ok = in.Receive()
	require.True(t, ok)
	assert.Equal(t, 2, v)
	assert.Zero(t, r.Stats().Faults)
}
