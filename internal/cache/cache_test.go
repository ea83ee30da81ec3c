// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package cache

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_Eviction(t *testing.T) {
	c := New[string, int](2)
	c.Set("a", 1)
	c.Set("b", 2)
	_, ok := c.Get("a") // b is now least recently used
	require.True(t, ok)
	c.Set("c", 3)

	assert.Equal(t, 2, c.Len())
	_, ok = c.Get("b")
	assert.False(t, ok)
	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	c.Set("a", 10)
	v, _ = c.Get("a")
	assert.Equal(t, 10, v)
}

func TestCache_GetOrCreate(t *testing.T) {
	c := New[int, string](0)
	calls := 0
	create := func() (string, error) {
		calls++
		return "v", nil
	}

	v, err := c.GetOrCreate(1, create)
	require.NoError(t, err)
	assert.Equal(t, "v", v)
	_, err = c.GetOrCreate(1, create)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)

	boom := errors.New("boom")
	_, err = c.GetOrCreate(2, func() (string, error) { return "", boom })
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, c.Len())

	hits, misses := c.Stats()
	assert.Equal(t, uint64(1), hits)
	assert.Equal(t, uint64(2), misses)
}

func TestCache_Delete(t *testing.T) {
	c := New[int, int](0)
	for i := range 3 {
		c.Set(i, i)
	}
	assert.True(t, c.Delete(1))
	assert.False(t, c.Delete(1))
	assert.True(t, c.Delete(0))
	assert.True(t, c.Delete(2))
	assert.Zero(t, c.Len())

	// the list is consistent after emptying
	c.Set(5, 5)
	v, ok := c.Get(5)
	assert.True(t, ok)
	assert.Equal(t, 5, v)
}

func TestCache_Concurrent(t *testing.T) {
	c := New[int, int](8)
	var wg sync.WaitGroup
	for g := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 200 {
				_, _ = c.GetOrCreate((g*i)%16, func() (int, error) { return i, nil })
			}
		}()
	}
	wg.Wait()
	assert.LessOrEqual(t, c.Len(), 8)
}
