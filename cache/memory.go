package cache

import (
	"sync"
	"time"
)

type entry struct {
	value     any
	storedAt  time.Time
	expiresAt time.Time
}

// expired is true once the full ttl has elapsed
func (e entry) expired(now time.Time) bool {
	return !now.Before(e.expiresAt)
}

// Memory implements the Store interface with a mutex-guarded map
type Memory struct {
	mu      sync.Mutex
	entries map[string]entry
	now     func() time.Time
}

type Option func(*Memory)

// WithClock replaces time.Now, mainly so tests can move time forward
func WithClock(now func() time.Time) Option {
	return func(m *Memory) {
		if now != nil {
			m.now = now
		}
	}
}

// NewMemory creates an empty in-memory store
func NewMemory(opts ...Option) *Memory {
	m := &Memory{
		entries: make(map[string]entry),
		now:     time.Now,
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Set implements Writer interface
func (m *Memory) Set(key string, value any, ttl time.Duration) error {
	if ttl <= 0 {
		return ErrInvalidTTL
	}
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = entry{value: value, storedAt: now, expiresAt: now.Add(ttl)}
	return nil
}

// Get implements Reader interface
func (m *Memory) Get(key string) (any, bool) {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok {
		return nil, false
	}
	if e.expired(now) {
		delete(m.entries, key)
		return nil, false
	}
	return e.value, true
}

// Has implements Reader interface
func (m *Memory) Has(key string) bool {
	_, ok := m.Get(key)
	return ok
}

// Delete implements Writer interface
func (m *Memory) Delete(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.entries[key]
	delete(m.entries, key)
	return ok
}

// Clear implements Writer interface
func (m *Memory) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	clear(m.entries)
}

// Cleanup implements Store interface. It is safe to run concurrently with
// Get since both re-check expiry under the lock.
func (m *Memory) Cleanup() int {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for k, e := range m.entries {
		if e.expired(now) {
			delete(m.entries, k)
			removed++
		}
	}
	return removed
}

// Stats implements Store interface
func (m *Memory) Stats() Stats {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()
	s := Stats{Total: len(m.entries)}
	for _, e := range m.entries {
		if e.expired(now) {
			s.Expired++
		}
	}
	s.Active = s.Total - s.Expired
	return s
}

var _ Store = (*Memory)(nil)
