// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package yloop

import (
	"slices"
	"sort"
	"time"
)

// ActionFunc is a delayed action, called once with the data it was posted
// with.
type ActionFunc func(data any)

// AnyDelay may be passed to CancelDelayed to match a delayed action
// regardless of the delay it was posted with. Note it is -1ns, not
// -time.Millisecond, which is matched like any other delay.
const AnyDelay time.Duration = -1

type timerEntry struct {
	action   ActionFunc
	data     any
	deadline time.Duration
	delay    time.Duration
}

// timerList is ordered by deadline, ascending. Entries with equal deadlines
// retain insertion order.
type timerList []timerEntry

func (x *timerList) insert(e timerEntry) {
	s := *x
	i := sort.Search(len(s), func(i int) bool {
		return s[i].deadline > e.deadline
	})
	*x = slices.Insert(s, i, e)
}

// cancel removes the first entry matching all of delay (unless AnyDelay),
// action, and data.
func (x *timerList) cancel(delay time.Duration, action ActionFunc, data any) bool {
	for i, e := range *x {
		if delay != AnyDelay && e.delay != delay {
			continue
		}
		if !sameFunc(e.action, action) || !sameData(e.data, data) {
			continue
		}
		*x = slices.Delete(*x, i, i+1)
		return true
	}
	return false
}

// dueWait returns the time remaining until the earliest deadline, clamped to
// zero, or false if the list is empty.
func (x timerList) dueWait(now time.Duration) (time.Duration, bool) {
	if len(x) == 0 {
		return 0, false
	}
	if d := x[0].deadline - now; d > 0 {
		return d, true
	}
	return 0, true
}

// popDue removes and returns the head of the list, if it is due.
func (x *timerList) popDue(now time.Duration) (timerEntry, bool) {
	s := *x
	if len(s) == 0 || s[0].deadline > now {
		return timerEntry{}, false
	}
	e := s[0]
	*x = slices.Delete(s, 0, 1)
	return e, true
}
