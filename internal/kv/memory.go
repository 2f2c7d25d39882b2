package kv

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Origin is an in-memory backing map shared by any number of tab handles.
type Origin struct {
	mu    sync.RWMutex
	data  map[string]string
	used  int
	quota int
	subs  map[int]*memorySub
	next  int
}

type memorySub struct {
	writer string
	ch     chan Change
}

// NewOrigin creates an empty origin. quota bounds the summed key and value
// length in bytes; zero means unlimited.
func NewOrigin(quota int) *Origin {
	return &Origin{
		data:  make(map[string]string),
		quota: quota,
		subs:  make(map[int]*memorySub),
	}
}

// Open returns a new tab handle on the origin.
func (o *Origin) Open() *Memory {
	return &Memory{origin: o, id: uuid.NewString()}
}

// Keys returns the stored keys in sorted order.
func (o *Origin) Keys() []string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	keys := make([]string, 0, len(o.data))
	for k := range o.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Used returns the bytes currently counted against the quota.
func (o *Origin) Used() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.used
}

func (o *Origin) notify(c Change) {
	for _, sub := range o.subs {
		if sub.writer == c.Writer {
			continue
		}
		select {
		case sub.ch <- c:
		default:
		}
	}
}

// Memory is one tab's handle on an Origin.
type Memory struct {
	origin *Origin
	id     string
}

var _ Store = (*Memory)(nil)

// NewMemory opens a single handle on a fresh unlimited origin.
func NewMemory() *Memory {
	return NewOrigin(0).Open()
}

// ID returns the handle's writer id.
func (m *Memory) ID() string { return m.id }

// Origin returns the backing origin.
func (m *Memory) Origin() *Origin { return m.origin }

func (m *Memory) Get(key string) (string, bool, error) {
	m.origin.mu.RLock()
	defer m.origin.mu.RUnlock()
	v, ok := m.origin.data[key]
	return v, ok, nil
}

func (m *Memory) Set(key, value string) error {
	o := m.origin
	o.mu.Lock()
	defer o.mu.Unlock()

	used := o.used
	if old, ok := o.data[key]; ok {
		used -= Size(key, old)
	}
	used += Size(key, value)
	if o.quota > 0 && used > o.quota {
		return fmt.Errorf("set %q (%d of %d bytes): %w", key, used, o.quota, ErrQuotaExceeded)
	}
	o.data[key] = value
	o.used = used
	o.notify(Change{Key: key, Value: value, Writer: m.id, Timestamp: time.Now()})
	return nil
}

func (m *Memory) Remove(key string) error {
	o := m.origin
	o.mu.Lock()
	defer o.mu.Unlock()

	old, ok := o.data[key]
	if !ok {
		return nil
	}
	delete(o.data, key)
	o.used -= Size(key, old)
	o.notify(Change{Key: key, Removed: true, Writer: m.id, Timestamp: time.Now()})
	return nil
}

func (m *Memory) Subscribe(bufSize int) (<-chan Change, func()) {
	ch := make(chan Change, bufSize)
	o := m.origin
	o.mu.Lock()
	id := o.next
	o.next++
	o.subs[id] = &memorySub{writer: m.id, ch: ch}
	o.mu.Unlock()

	return ch, func() {
		o.mu.Lock()
		delete(o.subs, id)
		o.mu.Unlock()
	}
}
