// Package kv defines the origin-scoped key/value store the repositories
// persist into, and an in-memory implementation of it.
package kv

import (
	"errors"
	"time"
)

var (
	ErrUnavailable   = errors.New("storage unavailable")
	ErrQuotaExceeded = errors.New("storage quota exceeded")
	ErrClosed        = errors.New("storage closed")
)

// Store is a synchronous, string-keyed map shared by every handle opened on
// the same origin. Each handle behaves like one browser tab: Subscribe
// delivers changes made through other handles, never its own writes.
type Store interface {
	// Get returns the value stored under key and whether it exists.
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Remove(key string) error
	// Subscribe returns a channel of changes made by other handles and an
	// unsubscribe function. Changes are dropped when the buffer is full.
	Subscribe(bufSize int) (<-chan Change, func())
}

// Change describes a mutation observed on another handle.
type Change struct {
	Key       string
	Value     string
	Removed   bool
	Writer    string
	Timestamp time.Time
}

// Size is the quota cost of a single entry.
func Size(key, value string) int {
	return len(key) + len(value)
}

// Unavailable is a Store for contexts without storage access. Reads report
// ErrUnavailable and writes are rejected.
type Unavailable struct{}

var _ Store = Unavailable{}

func (Unavailable) Get(string) (string, bool, error) { return "", false, ErrUnavailable }
func (Unavailable) Set(string, string) error         { return ErrUnavailable }
func (Unavailable) Remove(string) error              { return ErrUnavailable }

func (Unavailable) Subscribe(int) (<-chan Change, func()) {
	return make(chan Change), func() {}
}
