// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package flow_test

import (
	"context"
	"errors"
	"fmt"

	"github.com/joeycumines/go-flow"
	"github.com/joeycumines/go-flow/platform"
)

type counter struct {
	Out  *flow.OutPort[int]
	next int
}

func (x *counter) Process(flow.Trigger) error {
	x.next++
	return x.Out.Send(x.next)
}

type printer struct {
	In   *flow.InPort[int]
	seen int
}

func (x *printer) Process(flow.Trigger) error {
	for {
		v, ok := x.In.Receive()
		if !ok {
			return nil
		}
		fmt.Println("received", v)
		x.seen++
	}
}

func Example() {
	var now platform.Tick
	p, err := platform.NewHost(platform.WithClock(func() platform.Tick {
		now++
		return now
	}))
	if err != nil {
		panic(err)
	}
	defer p.Close()

	r, err := flow.NewReactor(p)
	if err != nil {
		panic(err)
	}

	src := &counter{}
	src.Out = flow.NewOutPort[int](src, "out")
	sink := &printer{}
	sink.In = flow.NewInPort[int](sink, "in")

	if err := errors.Join(
		r.Register(src, flow.WithName("counter"), flow.WithPeriod(1)),
		r.Register(sink, flow.WithName("printer")),
	); err != nil {
		panic(err)
	}
	if _, err := flow.Connect(r, src.Out, sink.In, flow.WithCapacity(2)); err != nil {
		panic(err)
	}

	if err := r.RunUntil(context.Background(), func() bool { return sink.seen == 3 }); err != nil {
		panic(err)
	}
	fmt.Println("dispatches", r.Stats().Dispatches)

	// Output:
	// received 1
	// received 2
	// received 3
	// dispatches 6
}

func ExampleConnectPorts() {
	p, err := platform.NewHost()
	if err != nil {
		panic(err)
	}
	defer p.Close()
	r, err := flow.NewReactor(p)
	if err != nil {
		panic(err)
	}

	src := &counter{}
	src.Out = flow.NewOutPort[int](src, "out")
	var sink flow.ComponentFunc = func(flow.Trigger) error { return nil }
	in := flow.NewInPort[string](&sink, "in")
	_ = r.Register(src)
	_ = r.Register(&sink)

	_, err = flow.ConnectPorts(r, src.Out, in)
	fmt.Println(errors.Is(err, flow.ErrTypeMismatch))

	// Output:
	// true
}
