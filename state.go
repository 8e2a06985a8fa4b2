// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package yloop

import (
	"sync/atomic"
)

// LoopState represents the current state of the dispatch loop.
//
//	StateAwake → StateRunning            [Run()]
//	StateRunning → StateWaiting          [before poll]
//	StateWaiting → StateRunning          [poll returned]
//	StateRunning → StateTerminated       [Run() returned]
//	StateTerminated → StateRunning       [Run() again]
//
// The state is informational, it is stored atomically so it may be observed
// from other goroutines, but it is never used for synchronization.
type LoopState uint32

const (
	// StateAwake indicates the loop has been created but never run.
	StateAwake LoopState = iota
	// StateRunning indicates the loop is dispatching callbacks.
	StateRunning
	// StateWaiting indicates the loop is blocked in the poller.
	StateWaiting
	// StateTerminated indicates Run has returned.
	StateTerminated
)

// String returns a human-readable representation of the state.
func (s LoopState) String() string {
	switch s {
	case StateAwake:
		return "Awake"
	case StateRunning:
		return "Running"
	case StateWaiting:
		return "Waiting"
	case StateTerminated:
		return "Terminated"
	default:
		return "Unknown"
	}
}

type loopState struct {
	v atomic.Uint32
}

func (s *loopState) Load() LoopState { return LoopState(s.v.Load()) }

func (s *loopState) Store(state LoopState) { s.v.Store(uint32(state)) }
