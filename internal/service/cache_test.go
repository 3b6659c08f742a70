package service

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(t time.Time) *fakeClock {
	return &fakeClock{now: t.UTC()}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func TestTTLCache_Expiry(t *testing.T) {
	clock := newFakeClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	cache := NewTTLCache[string, int](time.Minute, clock)

	cache.Set("a", 1)
	v, ok := cache.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	clock.Advance(59 * time.Second)
	_, ok = cache.Get("a")
	assert.True(t, ok)

	clock.Advance(time.Second)
	_, ok = cache.Get("a")
	assert.False(t, ok, "entry must expire exactly at the TTL")
}

func TestTTLCache_Delete(t *testing.T) {
	cache := NewTTLCache[string, int](time.Minute, nil)
	cache.Set("a", 1)
	cache.Set("b", 2)
	cache.Set("c", 3)

	cache.Delete("a", "missing")
	_, ok := cache.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 2, cache.Len())

	cache.Delete()
	assert.Equal(t, 0, cache.Len())
}
