// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package yloop

import (
	"errors"
	"fmt"
)

// Standard errors.
var (
	// ErrInvalidArgument is wrapped by every argument validation error, e.g.
	// [ErrInvalidFD] and [ErrNilCallback].
	ErrInvalidArgument = errors.New("yloop: invalid argument")

	// ErrInvalidFD is returned when registering a negative file descriptor.
	ErrInvalidFD = fmt.Errorf("%w: fd out of range", ErrInvalidArgument)

	// ErrNilCallback is returned when registering a nil callback.
	ErrNilCallback = fmt.Errorf("%w: nil callback", ErrInvalidArgument)

	// ErrOutOfMemory is returned when a registration would grow a table past
	// its configured capacity, see [WithMaxReaders] and [WithMaxTimers].
	// The table is left unchanged.
	ErrOutOfMemory = errors.New("yloop: out of memory")

	// ErrAlreadyInitialized is returned by [Init], alongside the existing
	// loop, when the calling goroutine already owns a loop. It is
	// informational, the returned loop is usable.
	ErrAlreadyInitialized = errors.New("yloop: loop already initialized")

	// ErrLoopAlreadyRunning is returned when Run is called on a loop that is
	// already running, including from within one of its own callbacks.
	ErrLoopAlreadyRunning = errors.New("yloop: loop is already running")

	// ErrLoopDestroyed is returned when operations are attempted on a loop
	// that has been destroyed.
	ErrLoopDestroyed = errors.New("yloop: loop has been destroyed")

	// ErrInterrupted is matched by errors returned by a [Poller] when the wait
	// was interrupted by a signal. The loop treats it as zero ready events.
	ErrInterrupted = errors.New("yloop: poll interrupted")

	// ErrUnsupported is returned by the default collaborators on platforms
	// without poll(2).
	ErrUnsupported = errors.New("yloop: unsupported platform")
)
