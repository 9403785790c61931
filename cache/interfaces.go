// Package cache provides an in-memory key/value store with per-entry
// time-to-live and lazy expiry on read.
package cache

import (
	"errors"
	"time"
)

var (
	// ErrInvalidTTL is returned by Set when the ttl is not positive
	ErrInvalidTTL = errors.New("cache ttl must be positive")
)

// Reader defines the interface for reading cache entries
type Reader interface {
	// Get returns the stored value if it has not expired.
	// An expired entry is evicted and reported as absent.
	Get(key string) (any, bool)

	// Has applies the same expiry rules as Get without returning the value
	Has(key string) bool
}

// Writer defines the interface for writing and invalidating cache entries
type Writer interface {
	// Set stores value under key until now+ttl, replacing any existing entry
	Set(key string, value any, ttl time.Duration) error

	// Delete removes a single entry and reports whether it existed
	Delete(key string) bool

	// Clear removes every entry
	Clear()
}

// Store is the main interface that combines all cache operations
type Store interface {
	Reader
	Writer

	// Cleanup removes all expired entries and returns how many were dropped
	Cleanup() int

	// Stats reports entry counts at the current instant
	Stats() Stats
}

// Stats summarises the contents of a store
type Stats struct {
	Total   int `json:"total"`
	Active  int `json:"active"`
	Expired int `json:"expired"`
}

// GetAs fetches key from r and asserts it to T. A value of another type is
// reported as absent.
func GetAs[T any](r Reader, key string) (T, bool) {
	var zero T
	v, ok := r.Get(key)
	if !ok {
		return zero, false
	}
	t, ok := v.(T)
	if !ok {
		return zero, false
	}
	return t, true
}
