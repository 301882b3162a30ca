// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

// Command flowdemo runs a small flow graph on the host platform, logging
// as JSON to stderr.
//
// The graph:
//
//	slice -> double -> ratelimit -> split -+-> collect
//	                                       +-> log(value)
//	button (interrupt) -> counter -> log(presses)
//	timer -> toggle -> invert -> log(led)
//
// Run with: go run ./cmd/flowdemo -count 20 -level debug
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync/atomic"
	"time"

	"github.com/joeycumines/go-flow"
	"github.com/joeycumines/go-flow/components"
	"github.com/joeycumines/go-flow/platform"
	"github.com/joeycumines/go-flow/queue"
	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := run(ctx, os.Args[1:], os.Stderr); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

type config struct {
	count    int
	period   time.Duration
	capacity int
	policy   queue.Policy
	rate     int
	level    logiface.Level
}

func parseFlags(args []string, output io.Writer) (*config, error) {
	cfg := config{level: logiface.LevelInformational}
	fs := flag.NewFlagSet(`flowdemo`, flag.ContinueOnError)
	fs.SetOutput(output)
	fs.IntVar(&cfg.count, `count`, 10, `number of values emitted by the source`)
	fs.DurationVar(&cfg.period, `period`, time.Millisecond, `source and timer period`)
	fs.IntVar(&cfg.capacity, `capacity`, 4, `capacity of each connection`)
	fs.Var(&cfg.policy, `policy`, `overflow policy, reject-new or drop-oldest`)
	fs.IntVar(&cfg.rate, `rate`, 1000, `maximum values per second past the rate limit`)
	fs.Func(`level`, `log level, e.g. info or debug`, func(s string) error {
		level, err := parseLevel(s)
		if err != nil {
			return err
		}
		cfg.level = level
		return nil
	})
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if cfg.count <= 0 {
		return nil, errors.New(`flowdemo: count must be positive`)
	}
	if cfg.period < time.Microsecond {
		return nil, errors.New(`flowdemo: period must be at least 1µs`)
	}
	return &cfg, nil
}

func parseLevel(s string) (logiface.Level, error) {
	for level := logiface.LevelEmergency; level <= logiface.LevelTrace; level++ {
		if level.String() == s {
			return level, nil
		}
	}
	return 0, fmt.Errorf(`flowdemo: unknown log level %q`, s)
}

// logSink logs every received value.
type logSink[T any] struct {
	In     *flow.InPort[T]
	logger *logiface.Logger[logiface.Event]
	field  string
}

func newLogSink[T any](logger *logiface.Logger[logiface.Event], field string) *logSink[T] {
	x := &logSink[T]{logger: logger, field: field}
	x.In = flow.NewInPort[T](x, field)
	return x
}

func (x *logSink[T]) Process(t flow.Trigger) error {
	for {
		v, ok := x.In.Receive()
		if !ok {
			return nil
		}
		x.logger.Info().
			Any(x.field, v).
			Int64(`tick`, int64(t.Now)).
			Log(`received`)
	}
}

// button owns the port fed from interrupt context.
type button struct {
	Out *flow.OutPort[components.Tick]
}

func (x *button) Process(flow.Trigger) error { return nil }

func run(ctx context.Context, args []string, output io.Writer) error {
	cfg, err := parseFlags(args, output)
	if err != nil {
		return err
	}

	logger := stumpy.L.New(
		stumpy.L.WithStumpy(stumpy.WithWriter(output)),
		stumpy.L.WithLevel(cfg.level),
	).Logger()

	host, err := platform.NewHost()
	if err != nil {
		return err
	}
	defer host.Close()

	r, err := flow.NewReactor(host, flow.WithLogger(logger))
	if err != nil {
		return err
	}
	ticks := platform.Tick(cfg.period / (time.Second / platform.HostTickRate))

	values := make([]int, cfg.count)
	for i := range values {
		values[i] = i + 1
	}
	src := components.NewSlice(values...)
	double := components.NewMap(func(v int) int { return v * 2 })
	limit, err := components.NewRateLimit[int](map[time.Duration]int{time.Second: cfg.rate}, nil)
	if err != nil {
		return err
	}
	split := components.NewSplit[int](2)
	collect := components.NewCollect[int]()
	logValues := newLogSink[int](logger, `value`)

	btn := &button{}
	btn.Out = flow.NewOutPort[components.Tick](btn, `press`)
	counter, err := components.NewCounter[components.Tick](1000)
	if err != nil {
		return err
	}
	presses := newLogSink[uint32](logger, `presses`)

	timer := components.NewTimer(10)
	toggle := components.NewToggle()
	invert := components.NewInvert()
	led := newLogSink[bool](logger, `led`)

	for _, reg := range []struct {
		c    flow.Component
		name string
		opts []flow.RegisterOption
	}{
		{src, `slice`, []flow.RegisterOption{flow.WithPeriod(ticks)}},
		{double, `double`, nil},
		{limit, `ratelimit`, nil},
		{split, `split`, nil},
		{collect, `collect`, nil},
		{logValues, `log-value`, nil},
		{btn, `button`, nil},
		{counter, `counter`, nil},
		{presses, `log-presses`, nil},
		{timer, `timer`, []flow.RegisterOption{flow.WithPeriod(ticks)}},
		{toggle, `toggle`, nil},
		{invert, `invert`, nil},
		{led, `log-led`, nil},
	} {
		if err := r.Register(reg.c, append(reg.opts, flow.WithName(reg.name))...); err != nil {
			return fmt.Errorf(`register %s: %w`, reg.name, err)
		}
	}

	// the value chain, drained once the slice is done
	var chain []flow.Link
	opts := []flow.ConnectionOption{flow.WithCapacity(cfg.capacity), flow.WithPolicy(cfg.policy)}
	if err := errors.Join(
		connect(&chain, r, src.Out, double.In, opts...),
		connect(&chain, r, double.Out, limit.In, opts...),
		connect(&chain, r, limit.Out, split.In, opts...),
		connect(&chain, r, split.Out[0], collect.In, opts...),
		connect(&chain, r, split.Out[1], logValues.In, opts...),
		connect(nil, r, btn.Out, counter.In, opts...),
		connect(nil, r, counter.Out, presses.In, opts...),
		flow.ConnectConstant(r, uint32(10), timer.InPeriod),
		connect(nil, r, timer.Out, toggle.In, opts...),
		connect(nil, r, toggle.Out, invert.In, opts...),
		connect(nil, r, invert.Out, led.In, opts...),
	); err != nil {
		return err
	}

	// simulated button presses, from interrupt context
	irq := flow.NewInterruptWriter(r, btn.Out)
	irqCtx, irqCancel := context.WithCancel(ctx)
	irqDone := make(chan struct{})
	// the producer must be gone before the deferred host.Close
	defer func() {
		irqCancel()
		<-irqDone
	}()
	var lost atomic.Uint64
	go func() {
		defer close(irqDone)
		t := time.NewTicker(cfg.period * 3)
		defer t.Stop()
		for {
			select {
			case <-irqCtx.Done():
				return
			case <-t.C:
				if err := irq.Send(components.Tick{}); err != nil {
					lost.Add(1)
				}
			}
		}
	}()

	err = r.RunUntil(ctx, func() bool {
		if !src.Done() {
			return false
		}
		for _, l := range chain {
			if l.Len() != 0 {
				return false
			}
		}
		return true
	})
	irqCancel()
	<-irqDone
	r.Stop()
	if err != nil {
		return err
	}

	stats := r.Stats()
	logger.Notice().
		Int(`collected`, len(collect.Values)).
		Uint64(`rateLimited`, limit.Dropped()).
		Uint64(`pressesLost`, lost.Load()).
		Uint64(`dispatches`, stats.Dispatches).
		Uint64(`faults`, stats.Faults).
		Uint64(`idles`, stats.Idles).
		Uint64(`discarded`, stats.Discarded).
		Uint64(`evicted`, stats.Evicted).
		Log(`done`)
	return nil
}

func connect[T any](chain *[]flow.Link, r *flow.Reactor, out *flow.OutPort[T], in *flow.InPort[T], opts ...flow.ConnectionOption) error {
	c, err := flow.Connect(r, out, in, opts...)
	if err != nil {
		return err
	}
	if chain != nil {
		*chain = append(*chain, c)
	}
	return nil
}
