package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_PanicsOnNonPositiveCapacity(t *testing.T) {
	assert.Panics(t, func() { New[int, string](0) })
	assert.Panics(t, func() { New[int, string](-1) })
}

func TestGetMiss(t *testing.T) {
	c := New[int, string](2)
	v, ok := c.Get(1)
	assert.False(t, ok)
	assert.Equal(t, "", v)
}

func TestSetAndGet(t *testing.T) {
	c := New[int, string](2)
	c.Set(1, "one")

	v, ok := c.Get(1)
	require.True(t, ok)
	assert.Equal(t, "one", v)
	assert.Equal(t, 1, c.Len())
}

func TestSetReplacesValue(t *testing.T) {
	c := New[int, string](2)
	c.Set(1, "one")
	c.Set(1, "uno")

	v, ok := c.Get(1)
	require.True(t, ok)
	assert.Equal(t, "uno", v)
	assert.Equal(t, 1, c.Len())
}

func TestEvictsLeastRecentlyUsed(t *testing.T) {
	c := New[int, string](2)
	c.Set(1, "one")
	c.Set(2, "two")
	c.Set(3, "three")

	assert.False(t, c.Contains(1), "oldest entry should be evicted")
	assert.True(t, c.Contains(2))
	assert.True(t, c.Contains(3))
	assert.Equal(t, 2, c.Len())
}

func TestGetRefreshesRecency(t *testing.T) {
	c := New[int, string](2)
	c.Set(1, "one")
	c.Set(2, "two")

	// Touch 1 so 2 becomes the eviction candidate.
	_, ok := c.Get(1)
	require.True(t, ok)

	c.Set(3, "three")
	assert.True(t, c.Contains(1))
	assert.False(t, c.Contains(2))
}

func TestSetRefreshesRecency(t *testing.T) {
	c := New[int, string](2)
	c.Set(1, "one")
	c.Set(2, "two")
	c.Set(1, "uno")

	c.Set(3, "three")
	assert.True(t, c.Contains(1))
	assert.False(t, c.Contains(2))
}

func TestContainsDoesNotRefresh(t *testing.T) {
	c := New[int, string](2)
	c.Set(1, "one")
	c.Set(2, "two")

	require.True(t, c.Contains(1))

	// 1 stays the eviction candidate because Contains is a pure probe.
	c.Set(3, "three")
	assert.False(t, c.Contains(1))
	assert.True(t, c.Contains(2))
}

func TestClear(t *testing.T) {
	c := New[int, string](3)
	c.Set(1, "one")
	c.Set(2, "two")

	c.Clear(1)
	assert.False(t, c.Contains(1))
	assert.True(t, c.Contains(2))
	assert.Equal(t, 1, c.Len())

	// Clearing an absent key is a no-op.
	c.Clear(42)
	assert.Equal(t, 1, c.Len())
}

func TestReset(t *testing.T) {
	c := New[int, string](3)
	c.Set(1, "one")
	c.Set(2, "two")

	c.Reset()
	assert.Equal(t, 0, c.Len())
	assert.False(t, c.Contains(1))

	// Usable after reset.
	c.Set(3, "three")
	assert.True(t, c.Contains(3))
}

func TestCapacityOne(t *testing.T) {
	c := New[int, string](1)
	c.Set(1, "one")
	c.Set(2, "two")

	assert.False(t, c.Contains(1))
	v, ok := c.Get(2)
	require.True(t, ok)
	assert.Equal(t, "two", v)
}
