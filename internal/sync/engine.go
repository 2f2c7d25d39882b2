package sync

import (
	"context"

	"github.com/matheus3301/fiberglass/internal/bus"
	"github.com/matheus3301/fiberglass/internal/keys"
	"github.com/matheus3301/fiberglass/internal/kv"
	"go.uber.org/zap"
)

// Engine forwards changes made by other tabs on the same origin to the local
// bus, so views react to them exactly as they react to local writes.
type Engine struct {
	store  kv.Store
	ns     keys.Namespace
	bus    *bus.Bus
	logger *zap.Logger
	cancel context.CancelFunc
	done   chan struct{}
}

// NewEngine creates a new sync engine.
func NewEngine(store kv.Store, ns keys.Namespace, b *bus.Bus, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		store:  store,
		ns:     ns,
		bus:    b,
		logger: logger.Named("sync"),
	}
}

// Start subscribes to the store's cross-tab notifications.
func (e *Engine) Start(ctx context.Context) {
	ctx, e.cancel = context.WithCancel(ctx)
	e.done = make(chan struct{})
	ch, unsub := e.store.Subscribe(256)

	go func() {
		defer close(e.done)
		defer unsub()
		for {
			select {
			case c, ok := <-ch:
				if !ok {
					return
				}
				e.handleChange(c)
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop stops the engine and waits for the forwarding loop to exit.
func (e *Engine) Stop() {
	if e.cancel == nil {
		return
	}
	e.cancel()
	<-e.done
	e.cancel = nil
}

func (e *Engine) handleChange(c kv.Change) {
	kind, ok := e.ns.Signal(c.Key)
	if !ok {
		e.logger.Debug("ignoring change to unowned key", zap.String("key", c.Key))
		return
	}
	e.bus.Publish(bus.Event{
		Kind:      kind,
		Key:       c.Key,
		Remote:    true,
		Timestamp: c.Timestamp,
	})
}
