// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package yloop

import (
	"errors"
	"time"

	catrate "github.com/joeycumines/go-catrate"
	"github.com/joeycumines/logiface"
)

// loopOptions holds configuration options for Loop creation.
type loopOptions struct {
	logger            *logiface.Logger[logiface.Event]
	limiter           *catrate.Limiter
	poller            Poller
	clock             Clock
	device            EventDevice
	maxReaders        int
	maxTimers         int
	timersPerCycle    int
	strictReaderMatch bool
}

// --- Loop Options ---

// Option configures a Loop instance.
type Option interface {
	applyLoop(*loopOptions) error
}

// optionImpl implements Option.
type optionImpl struct {
	applyLoopFunc func(*loopOptions) error
}

func (o *optionImpl) applyLoop(opts *loopOptions) error {
	return o.applyLoopFunc(opts)
}

// WithLogger attaches a structured logger, used for non-fatal diagnostics.
// A nil logger (the default) disables logging.
func WithLogger(logger *logiface.Logger[logiface.Event]) Option {
	return &optionImpl{func(opts *loopOptions) error {
		opts.logger = logger
		return nil
	}}
}

// WithLogRateLimits rate limits repetitive diagnostics, per category, e.g.
// a reader that repeatedly panics. See catrate.NewLimiter for the format.
func WithLogRateLimits(rates map[time.Duration]int) Option {
	return &optionImpl{func(opts *loopOptions) error {
		limiter, err := newLogLimiter(rates)
		if err != nil {
			return err
		}
		opts.limiter = limiter
		return nil
	}}
}

// WithPoller replaces the readiness wait primitive, which defaults to poll(2).
func WithPoller(poller Poller) Option {
	return &optionImpl{func(opts *loopOptions) error {
		opts.poller = poller
		return nil
	}}
}

// WithClock replaces the monotonic clock used to compute timer deadlines.
func WithClock(clock Clock) Option {
	return &optionImpl{func(opts *loopOptions) error {
		opts.clock = clock
		return nil
	}}
}

// WithEventDevice replaces the source of the wake descriptor.
func WithEventDevice(device EventDevice) Option {
	return &optionImpl{func(opts *loopOptions) error {
		opts.device = device
		return nil
	}}
}

// WithMaxReaders caps the number of registered readers, AddReader returning
// ErrOutOfMemory once reached. Zero (the default) means unlimited.
func WithMaxReaders(n int) Option {
	return &optionImpl{func(opts *loopOptions) error {
		if n < 0 {
			return errors.New("yloop: max readers must not be negative")
		}
		opts.maxReaders = n
		return nil
	}}
}

// WithMaxTimers caps the number of pending delayed actions, PostDelayed
// returning ErrOutOfMemory once reached. Zero (the default) means unlimited.
func WithMaxTimers(n int) Option {
	return &optionImpl{func(opts *loopOptions) error {
		if n < 0 {
			return errors.New("yloop: max timers must not be negative")
		}
		opts.maxTimers = n
		return nil
	}}
}

// WithMaxTimersPerCycle sets how many due timers may fire per dispatch cycle.
//
// The default is 1: only the head of the timer list is considered after each
// wait, and any other due timers become eligible on subsequent cycles. Zero
// fires every due timer.
func WithMaxTimersPerCycle(n int) Option {
	return &optionImpl{func(opts *loopOptions) error {
		if n < 0 {
			return errors.New("yloop: timers per cycle must not be negative")
		}
		opts.timersPerCycle = n
		return nil
	}}
}

// WithStrictReaderMatch makes RemoveReader match on the full (fd, callback,
// data) triple. By default only the fd is compared, and the first reader
// registered for it is removed.
func WithStrictReaderMatch(enabled bool) Option {
	return &optionImpl{func(opts *loopOptions) error {
		opts.strictReaderMatch = enabled
		return nil
	}}
}

// resolveOptions applies Option instances to loopOptions.
func resolveOptions(opts []Option) (*loopOptions, error) {
	cfg := &loopOptions{
		timersPerCycle: 1,
	}
	for _, opt := range opts {
		if opt == nil {
			continue // Skip nil options gracefully
		}
		if err := opt.applyLoop(cfg); err != nil {
			return nil, err
		}
	}
	if cfg.poller == nil {
		cfg.poller = newDefaultPoller()
	}
	if cfg.clock == nil {
		cfg.clock = monotonicClock{}
	}
	if cfg.device == nil {
		cfg.device = defaultEventDevice{}
	}
	return cfg, nil
}
