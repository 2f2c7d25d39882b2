// Package settings stores the site-wide lock flag and its message.
package settings

import (
	"sync"
	"time"

	"github.com/matheus3301/fiberglass/internal/bus"
	"github.com/matheus3301/fiberglass/internal/collection"
	"github.com/matheus3301/fiberglass/internal/keys"
	"github.com/matheus3301/fiberglass/internal/kv"
	"go.uber.org/zap"
)

// DefaultLockMessage is shown while the site is locked and no message was set.
const DefaultLockMessage = "وبسایت در حال توسعه و بروزرسانی است. از صبر و شکیبایی شما سپاسگزاریم."

// SiteSettings is the per-origin settings singleton.
type SiteSettings struct {
	IsLocked    bool      `json:"isLocked"`
	LockMessage string    `json:"lockMessage"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// Repository owns the site settings key.
type Repository struct {
	mu     sync.Mutex
	doc    *collection.Doc[SiteSettings]
	bus    *bus.Bus
	logger *zap.Logger
	now    collection.Clock
}

// New creates a settings repository over store.
func New(store kv.Store, ns keys.Namespace, b *bus.Bus, logger *zap.Logger) *Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("settings")
	return &Repository{
		doc:    collection.NewDoc[SiteSettings](store, ns.Settings(), logger),
		bus:    b,
		logger: logger,
		now:    time.Now,
	}
}

// WithClock replaces the time source.
func (r *Repository) WithClock(c collection.Clock) *Repository {
	r.now = c
	return r
}

// Get returns the stored settings, or unlocked defaults. Defaults are not
// written back.
func (r *Repository) Get() SiteSettings {
	if s, ok := r.doc.Load(); ok {
		return s
	}
	return SiteSettings{LockMessage: DefaultLockMessage, LastUpdated: r.now()}
}

// Save stores s with LastUpdated set to now and returns what was stored.
func (r *Repository) Save(s SiteSettings) SiteSettings {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.save(s)
}

// SetLocked locks or unlocks the site.
func (r *Repository) SetLocked(locked bool) SiteSettings {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := r.Get()
	s.IsLocked = locked
	return r.save(s)
}

// SetLockMessage replaces the message shown while locked.
func (r *Repository) SetLockMessage(msg string) SiteSettings {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := r.Get()
	s.LockMessage = msg
	return r.save(s)
}

func (r *Repository) save(s SiteSettings) SiteSettings {
	s.LastUpdated = r.now()
	if r.doc.Save(s) {
		r.bus.Signal(keys.SettingsChanged, r.doc.Key())
		if s.IsLocked {
			r.logger.Info("site locked")
		}
	}
	return s
}
