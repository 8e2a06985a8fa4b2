//go:build !linux && !darwin

package yloop

type unsupportedPoller struct{}

func newDefaultPoller() Poller { return unsupportedPoller{} }

func (unsupportedPoller) Poll([]PollFD, int) (int, error) { return 0, ErrUnsupported }

func (unsupportedPoller) SetNonblock(int) error { return ErrUnsupported }

type defaultEventDevice struct{}

func (defaultEventDevice) Open() (int, error) { return -1, ErrUnsupported }

func (defaultEventDevice) Close(int) error { return ErrUnsupported }

func (defaultEventDevice) Signal(int) error { return ErrUnsupported }

func (defaultEventDevice) Drain(int) error { return ErrUnsupported }
