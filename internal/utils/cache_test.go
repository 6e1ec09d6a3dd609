package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextCacheGetSet(t *testing.T) {
	c := NewTextCache(time.Minute, 4)

	_, ok := c.Get("prompt")
	assert.False(t, ok)

	c.Set("prompt", "answer")
	got, ok := c.Get("prompt")
	require.True(t, ok)
	assert.Equal(t, "answer", got)
	assert.Equal(t, 1, c.Len())
}

func TestTextCacheExpiry(t *testing.T) {
	c := NewTextCache(20*time.Millisecond, 4)

	c.Set("prompt", "answer")
	time.Sleep(40 * time.Millisecond)

	_, ok := c.Get("prompt")
	assert.False(t, ok)
}

func TestTextCacheEvictsOldest(t *testing.T) {
	c := NewTextCache(time.Hour, 2)

	c.Set("a", "1")
	time.Sleep(2 * time.Millisecond)
	c.Set("b", "2")
	time.Sleep(2 * time.Millisecond)
	c.Set("c", "3")

	assert.Equal(t, 2, c.Len())
	_, ok := c.Get("a")
	assert.False(t, ok)
	_, ok = c.Get("b")
	assert.True(t, ok)
	_, ok = c.Get("c")
	assert.True(t, ok)
}

func TestTextCacheOverwriteKeepsSize(t *testing.T) {
	c := NewTextCache(time.Hour, 2)

	c.Set("a", "1")
	c.Set("b", "2")
	c.Set("a", "3")

	assert.Equal(t, 2, c.Len())
	got, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, "3", got)
	_, ok = c.Get("b")
	assert.True(t, ok)
}

func TestTextCacheDisabled(t *testing.T) {
	c := NewTextCache(time.Hour, 0)
	c.Set("a", "1")
	_, ok := c.Get("a")
	assert.False(t, ok)
	assert.Zero(t, c.Len())

	var nilCache *TextCache
	assert.NotPanics(t, func() { nilCache.Set("a", "1") })
}

func TestKeyStable(t *testing.T) {
	assert.Equal(t, Key("사주"), Key("사주"))
	assert.NotEqual(t, Key("a"), Key("b"))
}
