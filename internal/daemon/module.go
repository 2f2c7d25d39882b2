package daemon

import (
	"context"
	"path/filepath"

	"github.com/matheus3301/fiberglass/internal/bus"
	"github.com/matheus3301/fiberglass/internal/config"
	"github.com/matheus3301/fiberglass/internal/keys"
	"github.com/matheus3301/fiberglass/internal/lock"
	"github.com/matheus3301/fiberglass/internal/logging"
	"github.com/matheus3301/fiberglass/internal/origin"
	"github.com/matheus3301/fiberglass/internal/site"
	intsync "github.com/matheus3301/fiberglass/internal/sync"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Params holds the resolved origin configuration passed to the fx module.
type Params struct {
	OriginName string
	Dir        string         // optional override for testing; empty = origin.Dir(OriginName)
	Config     *config.Config // optional; nil = load ~/.fiberglass/config.toml
}

func (p Params) dir() string {
	if p.Dir != "" {
		return p.Dir
	}
	return origin.Dir(p.OriginName)
}

// Module returns the fx module for the daemon, composing all providers and lifecycle hooks.
func Module(p Params) fx.Option {
	return fx.Module("daemon",
		fx.Supply(p),
		fx.Provide(
			provideConfig,
			provideLogger,
			provideBus,
			provideLock,
			provideBackend,
			provideSite,
			provideSyncEngine,
			provideMonitor,
		),
		fx.Invoke(registerLifecycle),
	)
}

func provideConfig(p Params) (*config.Config, error) {
	if p.Config != nil {
		return p.Config, p.Config.Validate()
	}
	return config.LoadOrDefault(origin.ConfigPath())
}

func provideLogger(p Params) (*zap.Logger, error) {
	return logging.New(filepath.Join(p.dir(), "logs", "fiberd.log"), p.OriginName, "fiberd")
}

func provideBus() *bus.Bus {
	return bus.New()
}

// provideLock keeps one daemon per origin.
func provideLock(p Params, logger *zap.Logger) (*lock.Lock, error) {
	logger.Info("acquiring origin lock", zap.String("origin", p.OriginName))
	l, err := lock.Acquire(p.dir(), "fiberd")
	if err != nil {
		return nil, err
	}
	logger.Info("origin lock acquired")
	return l, nil
}

func provideBackend(p Params, cfg *config.Config, logger *zap.Logger) (*Backend, error) {
	return OpenStore(context.Background(), p.OriginName, p.dir(), cfg.Store, cfg.Sync.ChangePollInterval, logger)
}

func provideSite(backend *Backend, cfg *config.Config, b *bus.Bus, logger *zap.Logger) *site.Site {
	return site.New(backend.Store, keys.Namespace(cfg.Store.Namespace), b, logger)
}

func provideSyncEngine(s *site.Site, logger *zap.Logger) *intsync.Engine {
	return intsync.NewEngine(s.Store, s.Namespace, s.Bus, logger)
}

func provideMonitor(s *site.Site, cfg *config.Config, logger *zap.Logger) *Monitor {
	return NewMonitor(s, intsync.Ticker{}, Intervals(cfg.Sync), logger)
}

// Intervals converts the configured polling intervals.
func Intervals(c config.SyncConfig) intsync.Intervals {
	return intsync.Intervals{
		ThreadList:     c.ThreadListInterval.Duration,
		ThreadMessages: c.ThreadMessagesInterval.Duration,
		Gallery:        c.GalleryInterval.Duration,
		Inbox:          c.InboxInterval.Duration,
	}
}

func registerLifecycle(lc fx.Lifecycle, lk *lock.Lock, backend *Backend, engine *intsync.Engine, monitor *Monitor, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			// Forward other tabs' writes before the views mount.
			engine.Start(context.Background())
			if err := monitor.Start(context.Background()); err != nil {
				engine.Stop()
				return err
			}
			logger.Info("daemon started")
			return nil
		},
		OnStop: func(_ context.Context) error {
			monitor.Stop()
			engine.Stop()
			if err := backend.Close(); err != nil {
				logger.Warn("error closing store", zap.Error(err))
			}
			if err := lk.Release(); err != nil {
				logger.Warn("error releasing lock", zap.Error(err))
			}
			logger.Info("daemon stopped")
			return nil
		},
	})
}
