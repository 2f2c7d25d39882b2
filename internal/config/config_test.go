package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestSaveAndLoad(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.toml")

	cfg := Default()
	cfg.DefaultOrigin = "staging"
	cfg.Store.Backend = BackendRedis
	cfg.Sync.InboxInterval = Duration{2 * time.Second}
	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.DefaultOrigin != "staging" {
		t.Errorf("DefaultOrigin = %q, want %q", loaded.DefaultOrigin, "staging")
	}
	if loaded.Store.Backend != BackendRedis {
		t.Errorf("Backend = %q, want redis", loaded.Store.Backend)
	}
	if loaded.Sync.InboxInterval.Duration != 2*time.Second {
		t.Errorf("InboxInterval = %v, want 2s", loaded.Sync.InboxInterval)
	}
}

func TestLoadMissing(t *testing.T) {
	_, err := Load("/nonexistent/config.toml")
	if err == nil {
		t.Error("Load() expected error for missing file")
	}
}

func TestLoadOrDefaultMissing(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "config.toml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DefaultOrigin != "main" || cfg.Store.Backend != BackendSQLite {
		t.Errorf("cfg = %+v, want defaults", cfg)
	}
	if cfg.Sync.ThreadMessagesInterval.Duration != 500*time.Millisecond {
		t.Errorf("ThreadMessagesInterval = %v", cfg.Sync.ThreadMessagesInterval)
	}
}

func TestLoadOrDefaultPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := "default_origin = \"shop\"\n[sync]\nthread_list_interval = \"2s\"\n"
	if err := os.WriteFile(path, []byte(data), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadOrDefault(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DefaultOrigin != "shop" {
		t.Errorf("DefaultOrigin = %q, want shop", cfg.DefaultOrigin)
	}
	if cfg.Sync.ThreadListInterval.Duration != 2*time.Second {
		t.Errorf("ThreadListInterval = %v, want 2s", cfg.Sync.ThreadListInterval)
	}
	if cfg.Sync.GalleryInterval.Duration != 500*time.Millisecond {
		t.Errorf("GalleryInterval = %v, want default 500ms", cfg.Sync.GalleryInterval)
	}
	if cfg.Store.Namespace != "fiberglass" {
		t.Errorf("Namespace = %q, want default", cfg.Store.Namespace)
	}
}

func TestLoadOrDefaultInvalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"bad backend", "[store]\nbackend = \"mongo\"\n"},
		{"bad duration", "[sync]\ninbox_interval = \"soon\"\n"},
		{"zero interval", "[sync]\ngallery_interval = \"0s\"\n"},
		{"negative quota", "[store]\nquota_bytes = -1\n"},
		{"redis without addr", "[store]\nbackend = \"redis\"\nredis_addr = \"\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(tt.data), 0600); err != nil {
				t.Fatal(err)
			}
			if _, err := LoadOrDefault(path); err == nil {
				t.Error("LoadOrDefault() expected error")
			}
		})
	}
}

func TestSavePermissions(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.toml")

	if err := Save(path, &Config{DefaultOrigin: "main"}); err != nil {
		t.Fatal(err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	perm := info.Mode().Perm()
	if perm != 0600 {
		t.Errorf("file permission = %o, want 0600", perm)
	}
}
