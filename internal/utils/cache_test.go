package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheEvictsLeastRecentlyUsed(t *testing.T) {
	var evicted []string
	c, err := NewCache[string, int](2, time.Hour, func(k string, _ int) { evicted = append(evicted, k) })
	require.NoError(t, err)

	c.Set("a", 1)
	c.Set("b", 2)
	_, _ = c.Get("a")
	c.Set("c", 3)

	assert.Equal(t, []string{"b"}, evicted)
	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)
	assert.Equal(t, 2, c.Len())
}

func TestCacheExpiry(t *testing.T) {
	var evicted []string
	c, err := NewCache[string, int](4, time.Minute, func(k string, _ int) { evicted = append(evicted, k) })
	require.NoError(t, err)

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	c.Set("a", 1)

	now = now.Add(2 * time.Minute)
	_, ok := c.Get("a")
	assert.False(t, ok)
	assert.Equal(t, []string{"a"}, evicted)
	assert.Zero(t, c.Len())
}

func TestCacheDeleteAndPurge(t *testing.T) {
	count := 0
	c, err := NewCache[int, string](4, time.Hour, func(int, string) { count++ })
	require.NoError(t, err)

	c.Set(1, "x")
	c.Set(2, "y")
	c.Delete(1)
	c.Purge()
	assert.Equal(t, 2, count)
	_, ok := c.Get(2)
	assert.False(t, ok)
}

func TestCacheNilCallback(t *testing.T) {
	c, err := NewCache[string, string](1, time.Hour, nil)
	require.NoError(t, err)
	c.Set("a", "1")
	c.Set("b", "2")
	_, ok := c.Get("a")
	assert.False(t, ok)
}
