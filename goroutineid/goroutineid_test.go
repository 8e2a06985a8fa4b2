// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package goroutineid

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_stable(t *testing.T) {
	id := Get()
	require.NotZero(t, id)
	assert.Equal(t, id, Get())
}

func TestGet_unique(t *testing.T) {
	const n = 32
	ids := make([]uint64, n)
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids[i] = Get()
		}()
	}
	wg.Wait()

	seen := make(map[uint64]struct{}, n+1)
	seen[Get()] = struct{}{}
	for _, id := range ids {
		require.NotZero(t, id)
		_, ok := seen[id]
		require.False(t, ok, "duplicate goroutine id %d", id)
		seen[id] = struct{}{}
	}
}

func BenchmarkGet(b *testing.B) {
	for b.Loop() {
		Get()
	}
}
