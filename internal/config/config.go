package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Store backends.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// Config represents the global ~/.fiberglass/config.toml.
type Config struct {
	DefaultOrigin string      `toml:"default_origin"`
	Store         StoreConfig `toml:"store"`
	Sync          SyncConfig  `toml:"sync"`
}

type StoreConfig struct {
	Backend   string `toml:"backend"`
	Namespace string `toml:"namespace"`
	// QuotaBytes bounds each origin's stored keys and values; 0 is unlimited.
	QuotaBytes int64  `toml:"quota_bytes"`
	RedisAddr  string `toml:"redis_addr"`
	RedisDB    int    `toml:"redis_db"`
}

type SyncConfig struct {
	ThreadListInterval     Duration `toml:"thread_list_interval"`
	ThreadMessagesInterval Duration `toml:"thread_messages_interval"`
	GalleryInterval        Duration `toml:"gallery_interval"`
	InboxInterval          Duration `toml:"inbox_interval"`
	// ChangePollInterval is how often the sqlite backend scans for writes
	// from other processes.
	ChangePollInterval Duration `toml:"change_poll_interval"`
}

// Duration is a time.Duration written as "500ms" in TOML.
type Duration struct {
	time.Duration
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		DefaultOrigin: "main",
		Store: StoreConfig{
			Backend:    BackendSQLite,
			Namespace:  "fiberglass",
			QuotaBytes: 5 << 20,
			RedisAddr:  "localhost:6379",
		},
		Sync: SyncConfig{
			ThreadListInterval:     Duration{time.Second},
			ThreadMessagesInterval: Duration{500 * time.Millisecond},
			GalleryInterval:        Duration{500 * time.Millisecond},
			InboxInterval:          Duration{time.Second},
			ChangePollInterval:     Duration{250 * time.Millisecond},
		},
	}
}

// Load reads config from the given path. Returns zero config and error if file missing.
func Load(path string) (*Config, error) {
	var cfg Config
	_, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault reads path over Default. A missing file yields Default.
func LoadOrDefault(path string) (*Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects unknown backends and non-positive intervals.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case BackendMemory, BackendSQLite, BackendRedis:
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}
	if c.Store.QuotaBytes < 0 {
		return fmt.Errorf("store quota_bytes must not be negative, got %d", c.Store.QuotaBytes)
	}
	if c.Store.Backend == BackendRedis && c.Store.RedisAddr == "" {
		return errors.New("store redis_addr is required for the redis backend")
	}
	for name, d := range map[string]Duration{
		"thread_list_interval":     c.Sync.ThreadListInterval,
		"thread_messages_interval": c.Sync.ThreadMessagesInterval,
		"gallery_interval":         c.Sync.GalleryInterval,
		"inbox_interval":           c.Sync.InboxInterval,
		"change_poll_interval":     c.Sync.ChangePollInterval,
	} {
		if d.Duration <= 0 {
			return fmt.Errorf("sync %s must be positive, got %s", name, d)
		}
	}
	return nil
}

// Save writes config to the given path, creating parent dirs as needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	encErr := toml.NewEncoder(f).Encode(cfg)
	if closeErr := f.Close(); closeErr != nil && encErr == nil {
		return closeErr
	}
	return encErr
}
