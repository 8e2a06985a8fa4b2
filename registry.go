// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package yloop

import (
	"slices"
	"sync"

	"github.com/joeycumines/go-yloop/goroutineid"
	"github.com/joeycumines/logiface"
)

// contexts binds loops to goroutines.
var contexts = registry{bindings: make(map[uint64]binding)}

type (
	registry struct {
		bindings map[uint64]binding
		// fallback is shared by every goroutine that has not called Init
		fallback *Loop
		defaults []Option
		mu       sync.Mutex
	}

	binding struct {
		loop *Loop
		// explicit is set by Init, rather than Current
		explicit bool
	}
)

// SetDefaultOptions sets the options used to create the shared fallback
// loop, see [Current]. It has no effect on a fallback that already exists.
func SetDefaultOptions(opts ...Option) error {
	if _, err := resolveOptions(opts); err != nil {
		return err
	}
	contexts.mu.Lock()
	contexts.defaults = slices.Clone(opts)
	contexts.mu.Unlock()
	return nil
}

// Current returns the loop bound to the calling goroutine. Goroutines that
// have not called [Init] are bound to a shared fallback loop, created on
// first use.
//
// The fallback is not synchronized: goroutines sharing it must not use it
// concurrently. Call [Init] for an isolated loop.
//
// The fallback is usable even if its wake descriptor could not be opened,
// in which case [Loop.EventFD] returns -1.
func Current() *Loop {
	return contexts.current(goroutineid.Get())
}

// Init creates a loop bound to the calling goroutine. If no fallback exists
// yet, the new loop also becomes the fallback.
//
// If the calling goroutine already has a loop, the existing loop is
// returned, with [ErrAlreadyInitialized], and opts are ignored. This includes
// the fallback, if [Current] was called first.
func Init(opts ...Option) (*Loop, error) {
	return contexts.init(goroutineid.Get(), opts)
}

// Destroy closes the loop bound to the calling goroutine, see [Loop.Close].
// It does nothing if the goroutine has no loop. Note that this includes the
// shared fallback, if the goroutine was bound to it by [Current].
func Destroy() {
	contexts.mu.Lock()
	b, ok := contexts.bindings[goroutineid.Get()]
	contexts.mu.Unlock()
	if ok {
		_ = b.loop.Close()
	}
}

func (r *registry) current(gid uint64) *Loop {
	r.mu.Lock()
	defer r.mu.Unlock()
	if b, ok := r.bindings[gid]; ok {
		return b.loop
	}
	if r.fallback == nil {
		// options were validated by SetDefaultOptions
		cfg, _ := resolveOptions(r.defaults)
		// the loop is usable without a wake descriptor, and the failure is logged
		r.fallback, _ = newLoop(cfg)
	}
	r.bindings[gid] = binding{loop: r.fallback}
	return r.fallback
}

func (r *registry) init(gid uint64, opts []Option) (*Loop, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if b, ok := r.bindings[gid]; ok {
		b.loop.limited(logiface.LevelNotice, categoryInit).
			Uint64("goroutine", gid).
			Bool("fallback", !b.explicit).
			Log("loop already initialized")
		return b.loop, ErrAlreadyInitialized
	}
	l, err := New(opts...)
	if err != nil {
		return nil, err
	}
	if r.fallback == nil {
		r.fallback = l
	}
	r.bindings[gid] = binding{loop: l, explicit: true}
	return l, nil
}

// forget unbinds l from every goroutine.
func (r *registry) forget(l *Loop) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for gid, b := range r.bindings {
		if b.loop == l {
			delete(r.bindings, gid)
		}
	}
	if r.fallback == l {
		r.fallback = nil
	}
}
