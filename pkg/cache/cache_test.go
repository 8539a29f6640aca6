package cache_test

import (
	"testing"
	"time"

	"github.com/clinika/clinika-backend/pkg/cache"
	"github.com/stretchr/testify/assert"
)

func TestCache_SetGet(t *testing.T) {
	c := cache.New[string](time.Minute)
	defer c.Stop()

	_, ok := c.Get("missing")
	assert.False(t, ok)

	c.Set("k", "v")
	got, ok := c.Get("k")
	assert.True(t, ok)
	assert.Equal(t, "v", got)
}

func TestCache_Expiry(t *testing.T) {
	c := cache.New[int](20 * time.Millisecond)
	defer c.Stop()

	c.Set("k", 42)
	_, ok := c.Get("k")
	assert.True(t, ok)

	time.Sleep(40 * time.Millisecond)

	_, ok = c.Get("k")
	assert.False(t, ok, "entry must expire after TTL")
}

func TestCache_Invalidate(t *testing.T) {
	c := cache.New[int](time.Minute)
	defer c.Stop()

	c.Set("k", 1)
	c.Invalidate("k")

	_, ok := c.Get("k")
	assert.False(t, ok)
}

func TestCache_SetResetsTTL(t *testing.T) {
	c := cache.New[int](50 * time.Millisecond)
	defer c.Stop()

	c.Set("k", 1)
	time.Sleep(30 * time.Millisecond)
	c.Set("k", 2)
	time.Sleep(30 * time.Millisecond)

	got, ok := c.Get("k")
	assert.True(t, ok)
	assert.Equal(t, 2, got)
}
