package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2023, 8, 11, 19, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func TestMemoryTTL(t *testing.T) {
	tests := []struct {
		name    string
		elapsed time.Duration
		found   bool
	}{
		{"fresh", 0, true},
		{"just before expiry", 30*time.Second - time.Millisecond, true},
		{"exactly at ttl", 30 * time.Second, false},
		{"long after", time.Hour, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := newFakeClock()
			m := NewMemory(WithClock(clock.Now))
			require.NoError(t, m.Set("k", "v", 30*time.Second))

			clock.Advance(tt.elapsed)

			v, ok := m.Get("k")
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.found, m.Has("k"))
			if tt.found {
				assert.Equal(t, "v", v)
			} else {
				assert.Nil(t, v)
			}
		})
	}
}

func TestMemoryExpiredEntryIsEvicted(t *testing.T) {
	clock := newFakeClock()
	m := NewMemory(WithClock(clock.Now))
	require.NoError(t, m.Set("k", 1, time.Second))

	clock.Advance(2 * time.Second)
	assert.Equal(t, Stats{Total: 1, Active: 0, Expired: 1}, m.Stats())

	_, ok := m.Get("k")
	require.False(t, ok)
	assert.Equal(t, Stats{}, m.Stats(), "expired entry should be removed on read")
}

func TestMemoryOverwrite(t *testing.T) {
	clock := newFakeClock()
	m := NewMemory(WithClock(clock.Now))

	require.NoError(t, m.Set("k", "v1", time.Minute))
	require.NoError(t, m.Set("k", "v2", 10*time.Second))

	v, ok := m.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v2", v)

	// v2's shorter ttl applies, v1 never comes back
	clock.Advance(10 * time.Second)
	_, ok = m.Get("k")
	assert.False(t, ok)
}

func TestMemoryRejectsNonPositiveTTL(t *testing.T) {
	m := NewMemory()
	assert.ErrorIs(t, m.Set("k", "v", 0), ErrInvalidTTL)
	assert.ErrorIs(t, m.Set("k", "v", -time.Second), ErrInvalidTTL)
	assert.False(t, m.Has("k"))
}

func TestMemoryDeleteAndClear(t *testing.T) {
	m := NewMemory()
	require.NoError(t, m.Set("a", 1, time.Minute))
	require.NoError(t, m.Set("b", 2, time.Minute))

	assert.True(t, m.Delete("a"))
	assert.False(t, m.Delete("a"))
	assert.False(t, m.Has("a"))
	assert.True(t, m.Has("b"))

	m.Clear()
	assert.False(t, m.Has("b"))
	assert.Equal(t, 0, m.Stats().Total)
}

func TestMemoryCleanup(t *testing.T) {
	clock := newFakeClock()
	m := NewMemory(WithClock(clock.Now))
	require.NoError(t, m.Set("short", 1, time.Second))
	require.NoError(t, m.Set("long", 2, time.Hour))

	clock.Advance(time.Minute)

	assert.Equal(t, 1, m.Cleanup())
	assert.Equal(t, 0, m.Cleanup(), "cleanup should be idempotent")
	assert.True(t, m.Has("long"))
	assert.Equal(t, Stats{Total: 1, Active: 1}, m.Stats())
}

func TestMemoryCleanupRacingGet(t *testing.T) {
	clock := newFakeClock()
	m := NewMemory(WithClock(clock.Now))
	for i := 0; i < 100; i++ {
		require.NoError(t, m.Set(fmt.Sprintf("k%d", i), i, time.Second))
	}
	clock.Advance(time.Second)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		m.Cleanup()
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			_, ok := m.Get(fmt.Sprintf("k%d", i))
			assert.False(t, ok)
		}
	}()
	wg.Wait()
	assert.Equal(t, 0, m.Stats().Total)
}

func TestGetAs(t *testing.T) {
	m := NewMemory()
	require.NoError(t, m.Set("ints", []int{1, 2}, time.Minute))

	v, ok := GetAs[[]int](m, "ints")
	require.True(t, ok)
	assert.Equal(t, []int{1, 2}, v)

	_, ok = GetAs[string](m, "ints")
	assert.False(t, ok, "wrong type should read as absent")

	_, ok = GetAs[[]int](m, "missing")
	assert.False(t, ok)
}
