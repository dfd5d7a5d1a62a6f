package dedup

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock is a manually advanced time source
type fakeClock struct {
	t time.Time
}

func (f *fakeClock) Now() time.Time          { return f.t }
func (f *fakeClock) Advance(d time.Duration) { f.t = f.t.Add(d) }

func newClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func TestCache_MarkSentContains(t *testing.T) {
	clock := newClock()
	c := New(10, time.Hour, WithClock(clock.Now))

	assert.False(t, c.Contains("NodeSeek:https://example.com/1"))
	c.MarkSent("NodeSeek:https://example.com/1")

	for i := 0; i < 5; i++ {
		assert.True(t, c.Contains("NodeSeek:https://example.com/1"), "repeated lookup %d", i)
		clock.Advance(10 * time.Minute)
	}
	assert.False(t, c.Contains("V2EX:https://example.com/1"))
	assert.Equal(t, 1, c.Len())
}

func TestCache_Expiry(t *testing.T) {
	t.Run("expires exactly at ttl", func(t *testing.T) {
		clock := newClock()
		c := New(10, 24*time.Hour, WithClock(clock.Now))
		c.MarkSent("k")

		clock.Advance(24*time.Hour - time.Nanosecond)
		assert.True(t, c.Contains("k"))

		clock.Advance(time.Nanosecond)
		assert.False(t, c.Contains("k"))
		assert.Equal(t, 0, c.Len(), "expired entry removed on lookup")
	})

	t.Run("re-mark after expiry acts as new", func(t *testing.T) {
		clock := newClock()
		c := New(10, time.Minute, WithClock(clock.Now))
		c.MarkSent("k")
		clock.Advance(2 * time.Minute)
		require.False(t, c.Contains("k"))

		c.MarkSent("k")
		assert.True(t, c.Contains("k"))
		clock.Advance(59 * time.Second)
		assert.True(t, c.Contains("k"), "new first-seen time applies")
		clock.Advance(time.Second)
		assert.False(t, c.Contains("k"))
	})

	t.Run("lookup of any key cleans all expired entries", func(t *testing.T) {
		clock := newClock()
		c := New(10, time.Minute, WithClock(clock.Now))
		c.MarkSent("a")
		c.MarkSent("b")
		clock.Advance(30 * time.Second)
		c.MarkSent("c")
		clock.Advance(30 * time.Second)

		assert.False(t, c.Contains("unrelated"))
		assert.Equal(t, 1, c.Len())
		assert.True(t, c.Contains("c"))
	})

	t.Run("cleanup is idempotent without time advance", func(t *testing.T) {
		clock := newClock()
		c := New(10, time.Minute, WithClock(clock.Now))
		c.MarkSent("a")
		clock.Advance(time.Minute)
		c.MarkSent("b")
		for i := 0; i < 3; i++ {
			assert.False(t, c.Contains("a"))
			assert.True(t, c.Contains("b"))
			assert.Equal(t, 1, c.Len())
		}
	})
}

func TestCache_Capacity(t *testing.T) {
	t.Run("evicts earliest inserted", func(t *testing.T) {
		c := New(2, time.Hour)
		c.MarkSent("a")
		c.MarkSent("b")
		c.MarkSent("c")

		assert.False(t, c.Contains("a"))
		assert.True(t, c.Contains("b"))
		assert.True(t, c.Contains("c"))
		assert.Equal(t, 2, c.Len())
	})

	t.Run("reads don't refresh insertion order", func(t *testing.T) {
		c := New(2, time.Hour)
		c.MarkSent("a")
		c.MarkSent("b")
		require.True(t, c.Contains("a"))
		c.MarkSent("c")

		assert.False(t, c.Contains("a"), "a is oldest by insertion even though it was read last")
		assert.True(t, c.Contains("b"))
		assert.True(t, c.Contains("c"))
	})

	t.Run("bound holds for long sequences", func(t *testing.T) {
		c := New(100, time.Hour)
		for i := 0; i < 1000; i++ {
			c.MarkSent(fmt.Sprintf("key-%d", i))
			require.LessOrEqual(t, c.Len(), 100)
		}
		assert.Equal(t, 100, c.Len())
		assert.False(t, c.Contains("key-899"))
		assert.True(t, c.Contains("key-900"))
		assert.True(t, c.Contains("key-999"))
	})

	t.Run("eviction independent of expiry", func(t *testing.T) {
		clock := newClock()
		c := New(2, time.Hour, WithClock(clock.Now))
		c.MarkSent("a")
		clock.Advance(time.Minute)
		c.MarkSent("b")
		clock.Advance(time.Minute)
		c.MarkSent("c")
		assert.Equal(t, 2, c.Len())
		assert.False(t, c.Contains("a"))
	})

	t.Run("re-marking a resident key keeps the bound", func(t *testing.T) {
		c := New(2, time.Hour)
		c.MarkSent("a")
		c.MarkSent("b")
		c.MarkSent("a")
		assert.Equal(t, 2, c.Len())
		c.MarkSent("c")
		assert.False(t, c.Contains("b"), "b became the oldest after a was re-recorded")
		assert.True(t, c.Contains("a"))
	})

	t.Run("non-positive size", func(t *testing.T) {
		c := New(0, time.Hour)
		assert.Equal(t, 1, c.Cap())
		c.MarkSent("a")
		c.MarkSent("b")
		assert.Equal(t, 1, c.Len())
		assert.True(t, c.Contains("b"))
	})
}

func TestCache_LenCap(t *testing.T) {
	c := New(1000, 24*time.Hour)
	assert.Equal(t, 0, c.Len())
	assert.Equal(t, 1000, c.Cap())
	c.MarkSent("x")
	assert.Equal(t, 1, c.Len())
}
