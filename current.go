// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package yloop

import (
	"time"
)

// AddReader calls [Loop.AddReader] on [Current].
func AddReader(fd int, callback ReadFunc, data any) error {
	return Current().AddReader(fd, callback, data)
}

// RemoveReader calls [Loop.RemoveReader] on [Current].
func RemoveReader(fd int, callback ReadFunc, data any) {
	Current().RemoveReader(fd, callback, data)
}

// PostDelayed calls [Loop.PostDelayed] on [Current].
func PostDelayed(delay time.Duration, action ActionFunc, data any) error {
	if action == nil {
		return ErrNilCallback
	}
	return Current().PostDelayed(delay, action, data)
}

// CancelDelayed calls [Loop.CancelDelayed] on [Current].
func CancelDelayed(delay time.Duration, action ActionFunc, data any) {
	Current().CancelDelayed(delay, action, data)
}

// Run calls [Loop.Run] on [Current].
func Run() error {
	return Current().Run()
}

// Exit calls [Loop.Exit] on [Current].
func Exit() {
	Current().Exit()
}

// SetEventFD calls [Loop.SetEventFD] on [Current].
func SetEventFD(fd int) {
	Current().SetEventFD(fd)
}

// EventFD returns the wake descriptor of loop, or of [Current] if loop is
// nil.
func EventFD(loop *Loop) int {
	if loop == nil {
		loop = Current()
	}
	return loop.EventFD()
}
