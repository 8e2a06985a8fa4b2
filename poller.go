// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

// # I/O Registration
//
// Readers are registered with [Loop.AddReader], and are polled for read
// readiness on every dispatch cycle, using the configured [Poller]:
//   - Linux, Darwin: poll(2)
//
// # Safety
//
// Always call RemoveReader before closing a file descriptor to prevent
// stale event delivery due to FD recycling.

package yloop

import (
	"time"
)

// IOEvents represents the type of I/O events to monitor.
type IOEvents uint32

const (
	// EventRead indicates the file descriptor is ready for reading.
	EventRead IOEvents = 1 << iota
	// EventWrite indicates the file descriptor is ready for writing.
	EventWrite
	// EventError indicates an error condition on the file descriptor.
	EventError
	// EventHangup indicates the peer closed its end of the connection.
	EventHangup
	// EventInvalid indicates the file descriptor is not open.
	EventInvalid
)

// readable reports whether a reader callback should run for these events.
// Hangup and error conditions are delivered as readable, so the callback
// observes EOF or the error on its next read. EventInvalid alone is not
// readable, there being nothing to read.
func (x IOEvents) readable() bool {
	return x&(EventRead|EventHangup|EventError) != 0
}

// PollFD is a single entry of the wait-descriptor array, passed to
// [Poller.Poll], which sets REvents.
type PollFD struct {
	FD      int
	Events  IOEvents
	REvents IOEvents
}

// Poller is the bounded multi-descriptor readiness wait.
type Poller interface {
	// Poll waits for at most timeout milliseconds (negative meaning
	// indefinitely) for any of fds to become ready, setting REvents and
	// returning the number of ready descriptors. Interruption by a signal
	// must be reported with an error matching ErrInterrupted.
	Poll(fds []PollFD, timeout int) (int, error)

	// SetNonblock puts fd into non-blocking mode.
	SetNonblock(fd int) error
}

// Clock is a monotonic clock, Now returns the elapsed time since an
// arbitrary but fixed point.
type Clock interface {
	Now() time.Duration
}

// EventDevice provides the wake descriptor of a loop.
//
// Open is called once by [New], and Close once by [Loop.Close], for the fd
// current at that time (see [Loop.SetEventFD]).
type EventDevice interface {
	Open() (fd int, err error)
	Close(fd int) error
	// Signal makes fd readable.
	Signal(fd int) error
	// Drain consumes all pending signals, without blocking.
	Drain(fd int) error
}

var clockAnchor = time.Now()

// monotonicClock reads the Go monotonic clock, relative to process start.
type monotonicClock struct{}

func (monotonicClock) Now() time.Duration { return time.Since(clockAnchor) }
