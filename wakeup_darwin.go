//go:build darwin

package yloop

import (
	"sync"

	"golang.org/x/sys/unix"
)

// pipeWriters maps the read end of each wake pipe to its write end.
var pipeWriters sync.Map // map[int]int

// defaultEventDevice provides a self-pipe as the wake descriptor (Darwin).
// The read end is the wake descriptor.
type defaultEventDevice struct{}

func (defaultEventDevice) Open() (int, error) {
	var fds [2]int
	if err := unix.Pipe(fds[:]); err != nil {
		return -1, err
	}

	for _, fd := range fds {
		unix.CloseOnExec(fd)
		if err := unix.SetNonblock(fd, true); err != nil {
			_ = unix.Close(fds[0])
			_ = unix.Close(fds[1])
			return -1, err
		}
	}

	pipeWriters.Store(fds[0], fds[1])
	return fds[0], nil
}

func (defaultEventDevice) Close(fd int) error {
	if w, ok := pipeWriters.LoadAndDelete(fd); ok {
		_ = unix.Close(w.(int))
	}
	return unix.Close(fd)
}

func (defaultEventDevice) Signal(fd int) error {
	w, ok := pipeWriters.Load(fd)
	if !ok {
		return unix.EBADF
	}
	_, err := unix.Write(w.(int), []byte{1})
	if err == unix.EAGAIN {
		// pipe full, already readable
		return nil
	}
	return err
}

func (defaultEventDevice) Drain(fd int) error {
	var buf [64]byte
	for {
		n, err := unix.Read(fd, buf[:])
		if err == unix.EAGAIN {
			return nil
		}
		if err != nil {
			return err
		}
		if n == 0 {
			return nil
		}
	}
}
