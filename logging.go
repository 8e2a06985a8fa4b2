// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package yloop

import (
	"fmt"
	"runtime/debug"
	"time"

	catrate "github.com/joeycumines/go-catrate"
	"github.com/joeycumines/logiface"
)

// Log categories, attached to every entry as the "category" field, and used
// as the rate limiting key.
const (
	categoryInit     = "init"
	categoryPoll     = "poll"
	categoryTimer    = "timer"
	categoryReader   = "reader"
	categoryCallback = "callback"
	categoryWakeup   = "wakeup"
)

// newLogLimiter converts the panic catrate.NewLimiter raises for invalid
// rates into an error.
func newLogLimiter(rates map[time.Duration]int) (limiter *catrate.Limiter, err error) {
	if len(rates) == 0 {
		return nil, nil
	}
	defer func() {
		if r := recover(); r != nil {
			limiter, err = nil, fmt.Errorf("yloop: invalid log rate limits: %v", r)
		}
	}()
	return catrate.NewLimiter(rates), nil
}

// log returns a builder for the given level, pre-populated with the loop id
// and category. The result is nil (and safe to use) if the level is disabled.
func (l *Loop) log(level logiface.Level, category string) *logiface.Builder[logiface.Event] {
	return l.logger.Build(level).
		Uint64("loop", l.id).
		Str("category", category)
}

// limited behaves like log, but also consults the rate limiter, keyed by
// category.
func (l *Loop) limited(level logiface.Level, category string) *logiface.Builder[logiface.Event] {
	b := l.logger.Build(level)
	if !b.Enabled() {
		return nil
	}
	if _, ok := l.limiter.Allow(category); !ok {
		b.Release()
		return nil
	}
	return b.Uint64("loop", l.id).
		Str("category", category)
}

// logPanic reports a recovered callback panic.
func (l *Loop) logPanic(source string, r any) {
	if b := l.limited(logiface.LevelError, categoryCallback); b.Enabled() {
		b.Str("source", source).
			Any("panic", r).
			Str("stack", string(debug.Stack())).
			Log("callback panicked")
	}
}
