// Package goroutineid identifies the calling goroutine.
//
// Goroutine IDs are never reused within a process, which makes them usable
// as keys for goroutine-local state, though entries for goroutines that have
// exited must be removed explicitly.
package goroutineid

import (
	"runtime"
)

// prefix of the first line of every stack trace
const prefix = "goroutine "

// Get returns the ID of the calling goroutine, parsed from the header of
// its stack trace. It returns 0 if the ID cannot be determined.
func Get() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	if n <= len(prefix) || string(buf[:len(prefix)]) != prefix {
		return 0
	}
	var id uint64
	for _, c := range buf[len(prefix):n] {
		if c < '0' || c > '9' {
			break
		}
		id = id*10 + uint64(c-'0')
	}
	return id
}
