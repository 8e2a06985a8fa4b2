//go:build linux || darwin

package yloop

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// unixPoller implements Poller using poll(2).
//
// PERFORMANCE: The unix.PollFd buffer is reused across cycles.
type unixPoller struct {
	buf []unix.PollFd
}

func newDefaultPoller() Poller {
	return &unixPoller{}
}

// Poll polls for I/O events.
func (p *unixPoller) Poll(fds []PollFD, timeout int) (int, error) {
	p.buf = p.buf[:0]
	for _, fd := range fds {
		p.buf = append(p.buf, unix.PollFd{
			Fd:     int32(fd.FD),
			Events: eventsToPoll(fd.Events),
		})
	}

	n, err := unix.Poll(p.buf, timeout)
	if err != nil {
		if err == unix.EINTR {
			return 0, fmt.Errorf("%w: %w", ErrInterrupted, err)
		}
		return 0, err
	}

	for i := range fds {
		fds[i].REvents = pollToEvents(p.buf[i].Revents)
	}

	return n, nil
}

// SetNonblock sets O_NONBLOCK on fd.
func (p *unixPoller) SetNonblock(fd int) error {
	return unix.SetNonblock(fd, true)
}

// eventsToPoll converts IOEvents to poll event flags.
func eventsToPoll(events IOEvents) int16 {
	var pollEvents int16
	if events&EventRead != 0 {
		pollEvents |= unix.POLLIN
	}
	if events&EventWrite != 0 {
		pollEvents |= unix.POLLOUT
	}
	return pollEvents
}

// pollToEvents converts poll event flags to IOEvents.
func pollToEvents(pollEvents int16) IOEvents {
	var events IOEvents
	if pollEvents&unix.POLLIN != 0 {
		events |= EventRead
	}
	if pollEvents&unix.POLLOUT != 0 {
		events |= EventWrite
	}
	if pollEvents&unix.POLLERR != 0 {
		events |= EventError
	}
	if pollEvents&unix.POLLNVAL != 0 {
		events |= EventInvalid
	}
	if pollEvents&unix.POLLHUP != 0 {
		events |= EventHangup
	}
	return events
}
