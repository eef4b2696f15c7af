package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheGetMissing(t *testing.T) {
	c := New[int]()
	v, ok := c.Get("nope")
	assert.False(t, ok)
	assert.Equal(t, 0, v)
}

func TestCacheSetGet(t *testing.T) {
	c := New[string]()
	c.Set("k", "v", time.Minute)

	v, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v", v)
}

func TestCacheExpiry(t *testing.T) {
	c := New[int]()
	cur := time.Unix(1000, 0)
	c.now = func() time.Time { return cur }

	c.Set("k", 42, 30*time.Second)

	v, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, 42, v)

	// Exactly at the deadline the entry is still valid.
	cur = cur.Add(30 * time.Second)
	_, ok = c.Get("k")
	assert.True(t, ok)

	// One tick past the deadline it is gone and evicted.
	cur = cur.Add(time.Millisecond)
	_, ok = c.Get("k")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestCacheNoExpiryWhenTTLZero(t *testing.T) {
	c := New[int]()
	cur := time.Unix(1000, 0)
	c.now = func() time.Time { return cur }

	c.Set("k", 7, 0)

	cur = cur.Add(1000 * time.Hour)
	v, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, 7, v)
}

func TestCacheOverwriteRefreshesTTL(t *testing.T) {
	c := New[int]()
	cur := time.Unix(1000, 0)
	c.now = func() time.Time { return cur }

	c.Set("k", 1, 10*time.Second)
	cur = cur.Add(5 * time.Second)
	c.Set("k", 2, 10*time.Second)

	cur = cur.Add(8 * time.Second)
	v, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, 2, v)
}
