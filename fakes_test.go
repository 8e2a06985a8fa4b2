package yloop

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
)

var errWouldBlock = errors.New("fake poller: would block indefinitely")

type fakeClock struct {
	now time.Duration
}

func (c *fakeClock) Now() time.Duration { return c.now }

// pollResult scripts the outcome of a single Poll call.
type pollResult struct {
	ready map[int]IOEvents
	err   error
}

// fakePoller replays script, then behaves as if nothing ever becomes ready,
// advancing clock by the timeout, or failing with errWouldBlock when there
// is none.
type fakePoller struct {
	clock       *fakeClock
	onPoll      func()
	nonblockErr error
	script      []pollResult
	timeouts    []int
	polled      [][]int
	nonblock    []int
}

func (p *fakePoller) Poll(fds []PollFD, timeout int) (int, error) {
	p.timeouts = append(p.timeouts, timeout)
	polled := make([]int, 0, len(fds))
	for _, fd := range fds {
		polled = append(polled, fd.FD)
	}
	p.polled = append(p.polled, polled)

	if p.onPoll != nil {
		p.onPoll()
	}

	var result pollResult
	if len(p.script) != 0 {
		result = p.script[0]
		p.script = p.script[1:]
	}
	if result.err != nil {
		return -1, result.err
	}

	var n int
	for i := range fds {
		fds[i].REvents = result.ready[fds[i].FD]
		if fds[i].REvents != 0 {
			n++
		}
	}
	if n == 0 {
		if timeout < 0 {
			return -1, errWouldBlock
		}
		if p.clock != nil {
			p.clock.now += time.Duration(timeout) * time.Millisecond
		}
	}
	return n, nil
}

func (p *fakePoller) SetNonblock(fd int) error {
	p.nonblock = append(p.nonblock, fd)
	return p.nonblockErr
}

type fakeDevice struct {
	openErr  error
	closed   []int
	fd       int
	signals  int
	drains   int
	signaled bool
}

func (d *fakeDevice) Open() (int, error) {
	if d.openErr != nil {
		return -1, d.openErr
	}
	return d.fd, nil
}

func (d *fakeDevice) Close(fd int) error {
	d.closed = append(d.closed, fd)
	return nil
}

func (d *fakeDevice) Signal(int) error {
	d.signals++
	d.signaled = true
	return nil
}

func (d *fakeDevice) Drain(int) error {
	d.drains++
	d.signaled = false
	return nil
}

type testHarness struct {
	loop   *Loop
	poller *fakePoller
	clock  *fakeClock
	device *fakeDevice
}

// fakeOptions returns options using fresh fakes, which are also returned.
func fakeOptions() ([]Option, *fakePoller, *fakeClock, *fakeDevice) {
	clock := &fakeClock{}
	poller := &fakePoller{clock: clock}
	device := &fakeDevice{fd: 1000}
	return []Option{
		WithPoller(poller),
		WithClock(clock),
		WithEventDevice(device),
	}, poller, clock, device
}

func newTestLoop(t *testing.T, opts ...Option) *testHarness {
	t.Helper()
	base, poller, clock, device := fakeOptions()
	l, err := New(append(base, opts...)...)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = l.Close() })
	return &testHarness{
		loop:   l,
		poller: poller,
		clock:  clock,
		device: device,
	}
}

// newTestLogger returns a JSON logger, writing to the returned buffer.
func newTestLogger(level logiface.Level) (*logiface.Logger[logiface.Event], *bytes.Buffer) {
	var buf bytes.Buffer
	logger := stumpy.L.New(
		stumpy.L.WithStumpy(
			stumpy.WithWriter(&buf),
			stumpy.WithTimeField(``),
		),
		stumpy.L.WithLevel(level),
	)
	return logger.Logger(), &buf
}
