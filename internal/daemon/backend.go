package daemon

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/matheus3301/fiberglass/internal/config"
	"github.com/matheus3301/fiberglass/internal/kv"
	"github.com/matheus3301/fiberglass/internal/rediskv"
	"github.com/matheus3301/fiberglass/internal/store"
	"go.uber.org/zap"
)

// Backend is an opened origin store and the function that releases it.
type Backend struct {
	Store kv.Store
	Close func() error
}

// OpenStore opens the origin's store for the configured backend. dir holds
// the sqlite database.
func OpenStore(ctx context.Context, originName, dir string, cfg config.StoreConfig, poll config.Duration, logger *zap.Logger) (*Backend, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		logger.Info("using in-memory store; state is lost on exit")
		return &Backend{
			Store: kv.NewOrigin(int(cfg.QuotaBytes)).Open(),
			Close: func() error { return nil },
		}, nil

	case config.BackendSQLite:
		dbPath := filepath.Join(dir, "site.db")
		db, err := store.Open(dbPath)
		if err != nil {
			return nil, err
		}
		result, err := db.Migrate()
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		if result.Changed {
			logger.Info("migrations applied", zap.Uint("from", result.From), zap.Uint("version", result.Version))
		} else {
			logger.Info("migrations up to date", zap.Uint("version", result.Version))
		}
		logger.Info("store initialized", zap.String("path", dbPath))
		handle := store.NewKV(db, store.Options{
			Quota:        cfg.QuotaBytes,
			PollInterval: poll.Duration,
			Logger:       logger.Named("store"),
		})
		return &Backend{
			Store: handle,
			Close: func() error {
				_ = handle.Close()
				return db.Close()
			},
		}, nil

	case config.BackendRedis:
		rdb, err := rediskv.Dial(ctx, cfg.RedisAddr, cfg.RedisDB)
		if err != nil {
			return nil, err
		}
		logger.Info("store initialized", zap.String("redis", cfg.RedisAddr), zap.Int("db", cfg.RedisDB))
		return &Backend{
			Store: rediskv.New(rdb, originName, logger.Named("redis")),
			Close: rdb.Close,
		}, nil
	}
	return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
}
