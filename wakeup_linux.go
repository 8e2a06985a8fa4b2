//go:build linux

package yloop

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// defaultEventDevice provides an eventfd as the wake descriptor (Linux).
type defaultEventDevice struct{}

func (defaultEventDevice) Open() (int, error) {
	return unix.Eventfd(0, unix.EFD_CLOEXEC|unix.EFD_NONBLOCK)
}

func (defaultEventDevice) Close(fd int) error {
	return unix.Close(fd)
}

func (defaultEventDevice) Signal(fd int) error {
	// PERFORMANCE: Native endianness, no binary.LittleEndian overhead
	var one uint64 = 1
	buf := (*[8]byte)(unsafe.Pointer(&one))[:]
	_, err := unix.Write(fd, buf)
	if err == unix.EAGAIN {
		// counter saturated, already readable
		return nil
	}
	return err
}

func (defaultEventDevice) Drain(fd int) error {
	var buf [8]byte
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
