// Package yloop provides a small, single-threaded reactor, dispatching
// delayed actions and file descriptor read readiness callbacks, with one
// reactor per goroutine.
//
// # Architecture
//
// A [Loop] owns a list of delayed actions, sorted by deadline, and a table
// of readers, in registration order. [Loop.Run] repeatedly:
//  1. Waits, using the [Poller], for any reader to become ready, or until
//     the earliest delayed action is due
//  2. Fires due delayed actions, by default at most one per cycle
//  3. Calls the callback of every ready reader, in registration order
//
// Run returns once there are no delayed actions and no readers left, or
// after [Loop.Exit] is called, at the end of the current cycle.
//
// # Goroutine Binding
//
// Each goroutine may own a loop, created by [Init]. Goroutines that have not
// called Init share a fallback loop, returned by [Current]. The package
// level functions, e.g. [PostDelayed] and [Run], operate on Current.
//
// The fallback loop is NOT synchronized. Goroutines that run independently
// must each call Init before using any other function of this package.
//
// # Thread Safety
//
//   - [Loop.Exit], [Loop.Wake], [Loop.EventFD], and [Loop.State] are safe to
//     call from any goroutine
//   - All other methods must be called from the goroutine that owns the
//     loop, or from a callback the loop is dispatching
//
// # Usage
//
//	loop, err := yloop.Init(yloop.WithLogger(logger))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer yloop.Destroy()
//
//	_ = loop.PostDelayed(10*time.Millisecond, func(data any) {
//	    fmt.Println(data)
//	}, "hello")
//
//	if err := loop.Run(); err != nil {
//	    log.Fatal(err)
//	}
package yloop
