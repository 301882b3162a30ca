// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

//go:build linux && !baremetal

package platform

import (
	"time"
	"unsafe"

	"golang.org/x/sys/unix"
)

// eventfdWaker signals through a non-blocking eventfd, polled with a timeout.
type eventfdWaker struct {
	fd  int
	buf [8]byte
}

func newWaker() (waker, error) {
	fd, err := unix.Eventfd(0, unix.EFD_CLOEXEC|unix.EFD_NONBLOCK)
	if err != nil {
		return nil, err
	}
	return &eventfdWaker{fd: fd}, nil
}

func (x *eventfdWaker) signal() {
	// native endianness, as required by eventfd
	var one uint64 = 1
	_, _ = unix.Write(x.fd, (*[8]byte)(unsafe.Pointer(&one))[:])
}

func (x *eventfdWaker) wait(timeout time.Duration) {
	deadline := time.Now().Add(timeout)
	for {
		fds := [1]unix.PollFd{{Fd: int32(x.fd), Events: unix.POLLIN}}
		ts := unix.NsecToTimespec(time.Until(deadline).Nanoseconds())
		n, err := unix.Ppoll(fds[:], &ts, nil)
		if err == unix.EINTR && time.Now().Before(deadline) {
			// preemption signals interrupt the poll
			continue
		}
		if err == nil && n > 0 {
			x.drain()
		}
		return
	}
}

func (x *eventfdWaker) drain() {
	for {
		if _, err := unix.Read(x.fd, x.buf[:]); err != nil {
			return
		}
	}
}

func (x *eventfdWaker) close() error {
	return unix.Close(x.fd)
}
