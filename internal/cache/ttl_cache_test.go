package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTTLCacheExpiry(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewTTLCache(time.Minute)
	c.now = func() time.Time { return now }

	c.Set("stats:financial", 42)
	v, ok := c.Get("stats:financial")
	require.True(t, ok)
	require.Equal(t, 42, v)

	now = now.Add(time.Minute)
	_, ok = c.Get("stats:financial")
	require.False(t, ok)
}

func TestTTLCacheInvalidatePrefix(t *testing.T) {
	c := NewTTLCache(time.Minute)
	c.Set("stats:financial", 1)
	c.Set("stats:timeseries:30:day", 2)
	c.Set("other", 3)

	require.Equal(t, 2, c.InvalidatePrefix("stats:"))
	_, ok := c.Get("stats:financial")
	require.False(t, ok)
	_, ok = c.Get("other")
	require.True(t, ok)
}

func TestTTLCacheDisabled(t *testing.T) {
	c := NewTTLCache(0)
	c.Set("k", 1)
	_, ok := c.Get("k")
	require.False(t, ok)
}

func TestTTLCacheExpiredGetKeepsConcurrentSet(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewTTLCache(time.Minute)
	c.now = func() time.Time { return now }
	c.Set("stats:financial", "old")

	now = now.Add(2 * time.Minute)
	refreshed := false
	c.now = func() time.Time {
		if !refreshed {
			// lands between the read and write lock in Get
			refreshed = true
			c.Set("stats:financial", "fresh")
		}
		return now
	}

	_, ok := c.Get("stats:financial")
	require.False(t, ok)
	require.True(t, refreshed)

	v, ok := c.Get("stats:financial")
	require.True(t, ok)
	require.Equal(t, "fresh", v)
}
