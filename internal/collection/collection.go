// Package collection persists whole JSON documents under single store keys.
// Every failure is absorbed here: reads fall back to "no data" and writes
// report false, with the cause logged.
package collection

import (
	"encoding/json"
	"errors"
	"math/rand"
	"strconv"
	"time"

	"github.com/matheus3301/fiberglass/internal/kv"
	"go.uber.org/zap"
)

// Clock returns the current time. Repositories take one so tests can pin it.
type Clock func() time.Time

// NewID returns the millisecond timestamp in base 36 followed by a random
// base 36 suffix. Unique enough within one origin; not a secret.
func NewID(now time.Time) string {
	return strconv.FormatInt(now.UnixMilli(), 36) + strconv.FormatUint(rand.Uint64(), 36)
}

// List is a []T stored as one JSON array.
type List[T any] struct {
	store  kv.Store
	key    string
	logger *zap.Logger
}

// NewList binds a list to key.
func NewList[T any](store kv.Store, key string, logger *zap.Logger) *List[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &List[T]{store: store, key: key, logger: logger}
}

// Key returns the storage key.
func (l *List[T]) Key() string { return l.key }

// Load returns the stored items. ok is false when the key is missing, the
// value is not a JSON array of T, or the store cannot be read.
func (l *List[T]) Load() (items []T, ok bool) {
	raw, found, err := l.store.Get(l.key)
	if err != nil {
		logReadError(l.logger, l.key, err)
		return nil, false
	}
	if !found {
		return nil, false
	}
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		l.logger.Warn("ignoring corrupt stored collection", zap.String("key", l.key), zap.Error(err))
		return nil, false
	}
	if items == nil {
		l.logger.Warn("ignoring null stored collection", zap.String("key", l.key))
		return nil, false
	}
	return items, true
}

// Save replaces the stored array. It reports whether the write landed.
func (l *List[T]) Save(items []T) bool {
	if items == nil {
		items = []T{}
	}
	return save(l.store, l.logger, l.key, items)
}

// Remove deletes the key. It reports whether the removal landed.
func (l *List[T]) Remove() bool {
	if err := l.store.Remove(l.key); err != nil {
		l.logger.Error("failed to remove collection", zap.String("key", l.key), zap.Error(err))
		return false
	}
	return true
}

// Doc is a single T stored as one JSON object.
type Doc[T any] struct {
	store  kv.Store
	key    string
	logger *zap.Logger
}

// NewDoc binds a document to key.
func NewDoc[T any](store kv.Store, key string, logger *zap.Logger) *Doc[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Doc[T]{store: store, key: key, logger: logger}
}

// Key returns the storage key.
func (d *Doc[T]) Key() string { return d.key }

// Load returns the stored document; ok is false for missing, corrupt or
// unreadable values.
func (d *Doc[T]) Load() (doc T, ok bool) {
	raw, found, err := d.store.Get(d.key)
	if err != nil {
		logReadError(d.logger, d.key, err)
		return doc, false
	}
	if !found {
		return doc, false
	}
	var ptr *T
	if err := json.Unmarshal([]byte(raw), &ptr); err != nil {
		d.logger.Warn("ignoring corrupt stored document", zap.String("key", d.key), zap.Error(err))
		return doc, false
	}
	if ptr == nil {
		d.logger.Warn("ignoring null stored document", zap.String("key", d.key))
		return doc, false
	}
	return *ptr, true
}

// Save replaces the stored document. It reports whether the write landed.
func (d *Doc[T]) Save(doc T) bool {
	return save(d.store, d.logger, d.key, doc)
}

func save(store kv.Store, logger *zap.Logger, key string, v any) bool {
	data, err := json.Marshal(v)
	if err != nil {
		logger.Error("failed to encode collection", zap.String("key", key), zap.Error(err))
		return false
	}
	if err := store.Set(key, string(data)); err != nil {
		logger.Error("failed to save collection", zap.String("key", key), zap.Int("bytes", len(data)), zap.Error(err))
		return false
	}
	return true
}

func logReadError(logger *zap.Logger, key string, err error) {
	if errors.Is(err, kv.ErrUnavailable) {
		logger.Debug("storage unavailable, using default", zap.String("key", key))
		return
	}
	logger.Error("failed to read collection", zap.String("key", key), zap.Error(err))
}
