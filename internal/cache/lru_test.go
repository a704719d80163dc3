package cache

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
)

func TestLRU_BasicGetPut(t *testing.T) {
	c := New[string](3, 0, nil)

	c.Put("a", "A")
	c.Put("b", "B")

	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, "A", v)

	_, ok = c.Get("missing")
	assert.False(t, ok)
}

func TestLRU_Eviction(t *testing.T) {
	c := New[string](2, 0, nil)

	c.Put("a", "A")
	c.Put("b", "B")
	c.Put("c", "C") // evicts "a"

	_, ok := c.Get("a")
	assert.False(t, ok, "a should have been evicted")

	v, ok := c.Get("b")
	assert.True(t, ok)
	assert.Equal(t, "B", v)

	v, ok = c.Get("c")
	assert.True(t, ok)
	assert.Equal(t, "C", v)
}

func TestLRU_AccessPromotesEntry(t *testing.T) {
	c := New[string](2, 0, nil)

	c.Put("a", "A")
	c.Put("b", "B")

	c.Get("a")

	// Insert "c": "b" is now least recently used.
	c.Put("c", "C")

	_, ok := c.Get("b")
	assert.False(t, ok, "b should have been evicted")
	_, ok = c.Get("a")
	assert.True(t, ok, "a should survive")
}

func TestLRU_UpdateExistingKey(t *testing.T) {
	c := New[string](2, 0, nil)

	c.Put("a", "A")
	c.Put("a", "A2")

	v, _ := c.Get("a")
	assert.Equal(t, "A2", v)
	assert.Equal(t, 1, c.Len())
}

func TestLRU_TTLExpiry(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2024, time.April, 26, 15, 0, 0, 0, time.UTC))
	c := New[int](10, time.Minute, clock)

	c.Put("k", 42)

	clock.Advance(59 * time.Second)
	v, ok := c.Get("k")
	assert.True(t, ok)
	assert.Equal(t, 42, v)

	clock.Advance(time.Second)
	_, ok = c.Get("k")
	assert.False(t, ok, "entry should expire at the TTL")
	assert.Zero(t, c.Len(), "expired entry is removed")
}

func TestLRU_ZeroCapacityStoresNothing(t *testing.T) {
	c := New[string](0, 0, nil)
	c.Put("a", "A")
	_, ok := c.Get("a")
	assert.False(t, ok)
}
