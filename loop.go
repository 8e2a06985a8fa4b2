// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package yloop

import (
	"errors"
	"fmt"
	"math"
	"sync/atomic"
	"time"

	catrate "github.com/joeycumines/go-catrate"
	"github.com/joeycumines/logiface"
)

// loopIDCounter is used to give each Loop a unique ID, for logging.
var loopIDCounter atomic.Uint64

// Loop is a single-threaded reactor, dispatching delayed actions and read
// readiness callbacks, from the goroutine that calls [Loop.Run].
//
// Except for [Loop.Exit], [Loop.Wake], [Loop.EventFD], and [Loop.State],
// methods must only be called by the goroutine that owns the loop, or from
// callbacks it dispatches. Loops obtained via [Current], without a prior
// [Init], may be shared between goroutines, and require external
// synchronization.
type Loop struct {
	// Prevent copying
	_ [0]func()

	logger  *logiface.Logger[logiface.Event]
	limiter *catrate.Limiter
	poller  Poller
	clock   Clock
	device  EventDevice

	timers  timerList
	readers readerTable
	// cycle is the snapshot of readers dispatched by the current cycle,
	// parallel to fds.
	cycle readerTable
	fds   []PollFD

	id      uint64
	eventFD atomic.Int64
	maxFD   int

	maxReaders        int
	maxTimers         int
	timersPerCycle    int
	strictReaderMatch bool

	state     loopState
	terminate atomic.Bool
	running   bool
	destroyed bool
}

// New creates a loop that is not bound to any goroutine. Most callers
// should use [Init] or [Current] instead.
//
// The wake descriptor is obtained from the configured [EventDevice], and
// released by [Loop.Close].
func New(opts ...Option) (*Loop, error) {
	cfg, err := resolveOptions(opts)
	if err != nil {
		return nil, err
	}
	l, err := newLoop(cfg)
	if err != nil {
		return nil, err
	}
	return l, nil
}

// newLoop always returns a usable loop, the error indicating only that the
// wake descriptor could not be opened, in which case EventFD is -1.
func newLoop(cfg *loopOptions) (*Loop, error) {
	l := &Loop{
		logger:            cfg.logger,
		limiter:           cfg.limiter,
		poller:            cfg.poller,
		clock:             cfg.clock,
		device:            cfg.device,
		id:                loopIDCounter.Add(1),
		maxFD:             -1,
		maxReaders:        cfg.maxReaders,
		maxTimers:         cfg.maxTimers,
		timersPerCycle:    cfg.timersPerCycle,
		strictReaderMatch: cfg.strictReaderMatch,
	}
	l.eventFD.Store(-1)

	fd, err := l.device.Open()
	if err != nil {
		l.log(logiface.LevelWarning, categoryWakeup).
			Err(err).
			Log("failed to open wake descriptor")
		return l, fmt.Errorf("yloop: event device: %w", err)
	}
	l.eventFD.Store(int64(fd))

	l.log(logiface.LevelDebug, categoryInit).
		Int("fd", fd).
		Log("loop created")

	return l, nil
}

// AddReader registers callback to be called, with fd and data, whenever fd
// is ready to read. The fd is switched to non-blocking mode. Registering
// the same fd more than once is permitted, each registration being
// dispatched separately.
//
// Changes take effect from the next dispatch cycle.
func (l *Loop) AddReader(fd int, callback ReadFunc, data any) error {
	if l.destroyed {
		return ErrLoopDestroyed
	}
	if fd < 0 {
		return ErrInvalidFD
	}
	if callback == nil {
		return ErrNilCallback
	}
	if l.maxReaders > 0 && len(l.readers) >= l.maxReaders {
		l.limited(logiface.LevelWarning, categoryReader).
			Int("fd", fd).
			Int("max", l.maxReaders).
			Log("reader table full")
		return ErrOutOfMemory
	}

	if err := l.poller.SetNonblock(fd); err != nil {
		l.limited(logiface.LevelWarning, categoryReader).
			Err(err).
			Int("fd", fd).
			Log("failed to set non-blocking mode")
	}

	l.readers = append(l.readers, readerEntry{
		callback: callback,
		data:     data,
		fd:       fd,
	})
	if fd > l.maxFD {
		l.maxFD = fd
	}

	l.log(logiface.LevelDebug, categoryReader).
		Int("fd", fd).
		Int("readers", len(l.readers)).
		Log("reader added")

	return nil
}

// RemoveReader removes the first registration for fd, in registration
// order. Unless [WithStrictReaderMatch] is enabled, callback and data are
// not compared. Removing an fd that is not registered does nothing.
func (l *Loop) RemoveReader(fd int, callback ReadFunc, data any) {
	if !l.readers.remove(fd, callback, data, l.strictReaderMatch) {
		return
	}
	l.log(logiface.LevelDebug, categoryReader).
		Int("fd", fd).
		Int("readers", len(l.readers)).
		Log("reader removed")
}

// PostDelayed schedules action to be called once, with data, after delay.
// Actions with equal deadlines run in the order they were posted.
func (l *Loop) PostDelayed(delay time.Duration, action ActionFunc, data any) error {
	if action == nil {
		return ErrNilCallback
	}
	if l.destroyed {
		return ErrLoopDestroyed
	}
	if l.maxTimers > 0 && len(l.timers) >= l.maxTimers {
		l.limited(logiface.LevelWarning, categoryTimer).
			Dur("delay", delay).
			Int("max", l.maxTimers).
			Log("timer list full")
		return ErrOutOfMemory
	}

	l.timers.insert(timerEntry{
		action:   action,
		data:     data,
		deadline: deadlineAfter(l.clock.Now(), delay),
		delay:    delay,
	})

	l.log(logiface.LevelDebug, categoryTimer).
		Dur("delay", delay).
		Int("timers", len(l.timers)).
		Log("timer scheduled")

	return nil
}

// deadlineAfter returns now + delay, saturating instead of overflowing.
func deadlineAfter(now, delay time.Duration) time.Duration {
	if delay > 0 && now > math.MaxInt64-delay {
		return math.MaxInt64
	}
	return now + delay
}

// CancelDelayed removes the first pending action matching action and data,
// posted with exactly delay, or any delay if delay is [AnyDelay]. Functions
// are compared by code pointer, so pass the same func value that was posted,
// e.g. a named function or a closure stored in a variable. Cancelling an
// action that is not pending does nothing.
func (l *Loop) CancelDelayed(delay time.Duration, action ActionFunc, data any) {
	if !l.timers.cancel(delay, action, data) {
		return
	}
	l.log(logiface.LevelDebug, categoryTimer).
		Dur("delay", delay).
		Int("timers", len(l.timers)).
		Log("timer canceled")
}

// Run dispatches callbacks until there is nothing left to wait for, or
// [Loop.Exit] is called. It blocks only within the [Poller].
//
// Each cycle waits for the earliest timer, or indefinitely if there are no
// timers, then fires due timers (by default, at most one per cycle, see
// [WithMaxTimersPerCycle]), then calls the callback of every reader that
// was registered at the start of the cycle and is ready.
//
// A poll error other than [ErrInterrupted] stops the loop, and is returned.
// Pending timers and readers are retained, so Run may be called again.
func (l *Loop) Run() error {
	if l.destroyed {
		return ErrLoopDestroyed
	}
	if l.running {
		return ErrLoopAlreadyRunning
	}
	l.running = true
	defer func() { l.running = false }()

	l.state.Store(StateRunning)

	for !l.terminate.Load() && (len(l.timers) != 0 || len(l.readers) != 0) {
		timeout := -1
		if wait, ok := l.timers.dueWait(l.clock.Now()); ok {
			timeout = timeoutMillis(wait)
		}

		fds := l.rebuildFDs()

		l.state.Store(StateWaiting)
		n, err := l.poller.Poll(fds, timeout)
		l.state.Store(StateRunning)

		if err != nil {
			if !errors.Is(err, ErrInterrupted) {
				l.log(logiface.LevelError, categoryPoll).
					Err(err).
					Int("fds", len(fds)).
					Int("timeout", timeout).
					Log("poll failed, stopping loop")
				l.state.Store(StateTerminated)
				return fmt.Errorf("yloop: poll: %w", err)
			}
			n = 0
		}

		l.fireDue(l.clock.Now())

		if n <= 0 {
			continue
		}

		for i := range fds {
			if l.destroyed {
				break
			}
			switch ev := fds[i].REvents; {
			case ev.readable():
				l.invokeReader(l.cycle[i])
			case ev&EventInvalid != 0:
				l.limited(logiface.LevelWarning, categoryReader).
					Int("fd", fds[i].FD).
					Log("reader fd is not open")
			}
		}
	}

	l.terminate.Store(false)
	l.state.Store(StateTerminated)

	return nil
}

// rebuildFDs snapshots the reader table, for a single cycle.
func (l *Loop) rebuildFDs() []PollFD {
	l.cycle = append(l.cycle[:0], l.readers...)
	l.fds = l.fds[:0]
	for _, e := range l.cycle {
		l.fds = append(l.fds, PollFD{FD: e.fd, Events: EventRead})
	}
	return l.fds
}

// fireDue fires up to timersPerCycle due timers, or every timer that was
// due as of now, if timersPerCycle is zero.
func (l *Loop) fireDue(now time.Duration) {
	limit := l.timersPerCycle
	if limit == 0 {
		limit = len(l.timers)
	}
	for range limit {
		e, ok := l.timers.popDue(now)
		if !ok {
			return
		}
		l.invokeAction(e)
	}
}

func (l *Loop) invokeAction(e timerEntry) {
	defer func() {
		if r := recover(); r != nil {
			l.logPanic(categoryTimer, r)
		}
	}()
	e.action(e.data)
}

func (l *Loop) invokeReader(e readerEntry) {
	defer func() {
		if r := recover(); r != nil {
			l.logPanic(categoryReader, r)
		}
	}()
	e.callback(e.fd, e.data)
}

// timeoutMillis converts d to a poll timeout, rounding up, so a pending
// timer is never polled for with a zero timeout before it is due.
func timeoutMillis(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	if d >= time.Duration(math.MaxInt32)*time.Millisecond {
		return math.MaxInt32
	}
	return int((d + time.Millisecond - 1) / time.Millisecond)
}

// Exit requests that Run return, after the current cycle completes. It is
// safe to call from any goroutine. The request is cleared when Run
// returns normally.
func (l *Loop) Exit() {
	l.terminate.Store(true)
}

// Wake signals the wake descriptor, see [Loop.WatchWakeup]. It is safe to
// call from any goroutine.
func (l *Loop) Wake() error {
	fd := l.EventFD()
	if fd < 0 {
		return ErrInvalidFD
	}
	if err := l.device.Signal(fd); err != nil {
		return fmt.Errorf("yloop: wake: %w", err)
	}
	return nil
}

// WatchWakeup registers the wake descriptor as a reader, which drains it,
// allowing [Loop.Wake] to interrupt a blocked poll. While watched, the loop
// always has a reader, so Run returns only after [Loop.Exit].
func (l *Loop) WatchWakeup() error {
	fd := l.EventFD()
	if fd < 0 {
		return ErrInvalidFD
	}
	return l.AddReader(fd, l.drainWakeup, nil)
}

func (l *Loop) drainWakeup(fd int, _ any) {
	if err := l.device.Drain(fd); err != nil {
		l.limited(logiface.LevelWarning, categoryWakeup).
			Err(err).
			Int("fd", fd).
			Log("failed to drain wake descriptor")
	}
}

// SetEventFD replaces the wake descriptor. The previous descriptor, if any,
// is not closed.
func (l *Loop) SetEventFD(fd int) {
	l.eventFD.Store(int64(fd))
}

// EventFD returns the wake descriptor, or -1 if there is none.
func (l *Loop) EventFD() int {
	return int(l.eventFD.Load())
}

// MaxFD returns the largest fd ever registered via AddReader, or -1.
func (l *Loop) MaxFD() int {
	return l.maxFD
}

// State returns the current dispatch state. It is safe to call from any
// goroutine.
func (l *Loop) State() LoopState {
	return l.state.Load()
}

// Len returns the number of pending timers and registered readers.
func (l *Loop) Len() (timers, readers int) {
	return len(l.timers), len(l.readers)
}

// Close releases the wake descriptor, and discards every pending timer and
// reader, without calling them. The loop is unbound from every goroutine,
// see [Destroy]. Subsequent calls do nothing.
//
// Close may be called from a callback, in which case Run returns once the
// current cycle completes.
func (l *Loop) Close() error {
	if l.destroyed {
		return nil
	}
	l.destroyed = true

	timers, readers := l.Len()
	clear(l.timers)
	l.timers = nil
	clear(l.readers)
	l.readers = nil

	contexts.forget(l)

	var err error
	if fd := l.EventFD(); fd >= 0 {
		l.eventFD.Store(-1)
		if e := l.device.Close(fd); e != nil {
			err = fmt.Errorf("yloop: event device: %w", e)
			l.log(logiface.LevelWarning, categoryWakeup).
				Err(e).
				Int("fd", fd).
				Log("failed to close wake descriptor")
		}
	}

	l.log(logiface.LevelDebug, categoryInit).
		Int("timers", timers).
		Int("readers", readers).
		Log("loop destroyed")

	return err
}
