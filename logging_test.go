package yloop

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/joeycumines/logiface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLogs(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var entries []map[string]any
	dec := json.NewDecoder(bytes.NewReader(buf.Bytes()))
	for {
		var entry map[string]any
		err := dec.Decode(&entry)
		if err == io.EOF {
			return entries
		}
		require.NoError(t, err, buf.String())
		entries = append(entries, entry)
	}
}

func logMessages(entries []map[string]any) []string {
	msgs := make([]string, 0, len(entries))
	for _, e := range entries {
		msg, _ := e["msg"].(string)
		msgs = append(msgs, msg)
	}
	return msgs
}

func TestLoop_logging_callbackPanic(t *testing.T) {
	logger, buf := newTestLogger(logiface.LevelInformational)
	h := newTestLoop(t, WithLogger(logger))

	require.NoError(t, h.loop.PostDelayed(0, func(any) { panic("boom") }, nil))
	require.NoError(t, h.loop.Run())

	entries := decodeLogs(t, buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "callback panicked", entries[0]["msg"])
	assert.Equal(t, "err", entries[0]["lvl"])
	assert.Equal(t, categoryCallback, entries[0]["category"])
	assert.Equal(t, categoryTimer, entries[0]["source"])
	assert.Contains(t, entries[0]["stack"], "invokeAction")
}

func TestLoop_logging_pollError(t *testing.T) {
	logger, buf := newTestLogger(logiface.LevelInformational)
	h := newTestLoop(t, WithLogger(logger))

	require.NoError(t, h.loop.AddReader(3, func(int, any) {}, nil))
	assert.ErrorIs(t, h.loop.Run(), errWouldBlock)

	entries := decodeLogs(t, buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "poll failed, stopping loop", entries[0]["msg"])
	assert.Equal(t, categoryPoll, entries[0]["category"])
	assert.Equal(t, errWouldBlock.Error(), entries[0]["err"])
}

func TestLoop_logging_debug(t *testing.T) {
	logger, buf := newTestLogger(logiface.LevelDebug)
	h := newTestLoop(t, WithLogger(logger))

	require.NoError(t, h.loop.AddReader(3, func(int, any) {}, nil))
	h.loop.RemoveReader(3, nil, nil)
	h.loop.RemoveReader(3, nil, nil)
	require.NoError(t, h.loop.PostDelayed(time.Second, noopAction, nil))
	h.loop.CancelDelayed(AnyDelay, noopAction, nil)
	require.NoError(t, h.loop.Close())

	assert.Equal(t, []string{
		"loop created",
		"reader added",
		"reader removed",
		"timer scheduled",
		"timer canceled",
		"loop destroyed",
	}, logMessages(decodeLogs(t, buf)))
}

func TestLoop_logging_rateLimited(t *testing.T) {
	logger, buf := newTestLogger(logiface.LevelInformational)
	h := newTestLoop(t,
		WithLogger(logger),
		WithLogRateLimits(map[time.Duration]int{time.Hour: 2}),
	)
	h.poller.nonblockErr = errors.New("not supported")

	for fd := range 5 {
		require.NoError(t, h.loop.AddReader(fd, func(int, any) {}, nil))
	}

	entries := decodeLogs(t, buf)
	assert.Equal(t, []string{
		"failed to set non-blocking mode",
		"failed to set non-blocking mode",
	}, logMessages(entries))
	for _, e := range entries {
		assert.Equal(t, categoryReader, e["category"])
		assert.Equal(t, "warning", e["lvl"])
	}

	// other categories are limited separately
	for fd := range 5 {
		h.loop.RemoveReader(fd, nil, nil)
	}
	buf.Reset()
	require.NoError(t, h.loop.PostDelayed(0, func(any) { panic("boom") }, nil))
	require.NoError(t, h.loop.Run())
	assert.Equal(t, []string{"callback panicked"}, logMessages(decodeLogs(t, buf)))
}

func TestLoop_logging_alreadyInitialized(t *testing.T) {
	resetContexts(t)
	logger, buf := newTestLogger(logiface.LevelInformational)
	opts, _, _, _ := fakeOptions()

	onGoroutine(func() {
		_, err := Init(append(opts, WithLogger(logger))...)
		require.NoError(t, err)
		_, err = Init()
		assert.ErrorIs(t, err, ErrAlreadyInitialized)
		Destroy()
	})

	entries := decodeLogs(t, buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "loop already initialized", entries[0]["msg"])
	assert.Equal(t, "notice", entries[0]["lvl"])
	assert.Equal(t, categoryInit, entries[0]["category"])
}
