// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package yloop

import (
	"slices"
)

// ReadFunc is called when fd is ready to read, with the data it was
// registered with.
type ReadFunc func(fd int, data any)

type readerEntry struct {
	callback ReadFunc
	data     any
	fd       int
}

// readerTable is in registration order, which is also dispatch order.
type readerTable []readerEntry

// remove deletes the first entry for fd, also matching callback and data if
// strict is set.
func (x *readerTable) remove(fd int, callback ReadFunc, data any, strict bool) bool {
	for i, e := range *x {
		if e.fd != fd {
			continue
		}
		if strict && (!sameFunc(e.callback, callback) || !sameData(e.data, data)) {
			continue
		}
		*x = slices.Delete(*x, i, i+1)
		return true
	}
	return false
}
