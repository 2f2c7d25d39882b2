// Package sync keeps mounted views consistent with the store. A view
// re-reads on local bus signals, on cross-tab changes forwarded by the
// Engine, and on a polling interval as a fallback.
package sync

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/matheus3301/fiberglass/internal/bus"
	"go.uber.org/zap"
)

var (
	ErrMounted  = errors.New("view already mounted")
	ErrNoReload = errors.New("view has no reload function")
)

// ViewConfig describes what a view listens to and how it re-reads.
type ViewConfig struct {
	Name string
	// Namespace is the bus prefix the view subscribes to.
	Namespace string
	// Match filters events within Namespace before they are queued; nil
	// accepts all.
	Match func(bus.Event) bool
	// Interval is the polling fallback; zero disables polling.
	Interval time.Duration
	Reload   func()
}

// View is a mounted consumer of repository data. Mount installs the bus
// listener and the poll task; Unmount releases both.
type View struct {
	cfg    ViewConfig
	bus    *bus.Bus
	sched  Scheduler
	logger *zap.Logger

	reloadMu sync.Mutex
	reloads  int

	mu       sync.Mutex
	mounted  bool
	stopPoll func()
	cancel   context.CancelFunc
	done     chan struct{}
}

func NewView(cfg ViewConfig, b *bus.Bus, sched Scheduler, logger *zap.Logger) *View {
	if sched == nil {
		sched = Ticker{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &View{
		cfg:    cfg,
		bus:    b,
		sched:  sched,
		logger: logger.Named("view").With(zap.String("view", cfg.Name)),
	}
}

// Mount reads once, then keeps re-reading until ctx ends or Unmount is called.
// Unmount must still be called to release the poll task.
func (v *View) Mount(ctx context.Context) error {
	if v.cfg.Reload == nil {
		return ErrNoReload
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.mounted {
		return ErrMounted
	}

	v.reload()

	ctx, v.cancel = context.WithCancel(ctx)
	v.done = make(chan struct{})
	if v.bus != nil {
		ch, unsub := v.bus.SubscribeMatch(v.cfg.Namespace, 1, v.cfg.Match)
		go v.listen(ctx, ch, unsub, v.done)
	} else {
		close(v.done)
	}
	if v.cfg.Interval > 0 {
		v.stopPoll = v.sched.Every(v.cfg.Interval, func() {
			if ctx.Err() == nil {
				v.reload()
			}
		})
	}
	v.mounted = true
	v.logger.Debug("mounted", zap.Duration("interval", v.cfg.Interval))
	return nil
}

// Unmount stops polling and listening. It is safe to call more than once.
func (v *View) Unmount() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.mounted {
		return
	}
	if v.stopPoll != nil {
		v.stopPoll()
		v.stopPoll = nil
	}
	v.cancel()
	<-v.done
	v.mounted = false
	v.logger.Debug("unmounted")
}

// Mounted reports whether the view is live.
func (v *View) Mounted() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.mounted
}

// Reloads returns how many times the view has re-read.
func (v *View) Reloads() int {
	v.reloadMu.Lock()
	defer v.reloadMu.Unlock()
	return v.reloads
}

func (v *View) listen(ctx context.Context, ch <-chan bus.Event, unsub func(), done chan struct{}) {
	defer close(done)
	defer unsub()
	for {
		select {
		case <-ch:
			v.reload()
		case <-ctx.Done():
			return
		}
	}
}

// reload runs Reload; concurrent triggers are serialized.
func (v *View) reload() {
	v.reloadMu.Lock()
	defer v.reloadMu.Unlock()
	v.reloads++
	v.cfg.Reload()
}
