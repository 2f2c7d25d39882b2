package store

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/matheus3301/fiberglass/internal/kv"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "site.db")
	db, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Migrate(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func testKV(t *testing.T, db *DB, opts Options) *KV {
	t.Helper()
	if opts.PollInterval == 0 {
		opts.PollInterval = 10 * time.Millisecond
	}
	k := NewKV(db, opts)
	t.Cleanup(func() { _ = k.Close() })
	return k
}

func TestMigrateIdempotent(t *testing.T) {
	db := testDB(t)

	// testDB already ran Migrate once.
	result, err := db.Migrate()
	if err != nil {
		t.Fatal(err)
	}
	if result.Changed {
		t.Error("second Migrate() should report Changed=false")
	}
	if result.Version != 2 || result.From != 2 {
		t.Errorf("version %d -> %d, want 2 -> 2 (init + change log)", result.From, result.Version)
	}
}

func TestMigrateFreshDatabase(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "site.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = db.Close() }()

	result, err := db.Migrate()
	if err != nil {
		t.Fatal(err)
	}
	if !result.Changed || result.From != 0 || result.Version != 2 {
		t.Errorf("result = %+v, want changed 0 -> 2", result)
	}
}

func TestMigrateRefusesDirtySchema(t *testing.T) {
	db := testDB(t)
	if _, err := db.Exec(`UPDATE schema_migrations SET dirty = 1`); err != nil {
		t.Fatal(err)
	}

	_, err := db.Migrate()
	if !errors.Is(err, ErrDirtySchema) {
		t.Errorf("Migrate on dirty schema error = %v, want ErrDirtySchema", err)
	}
}

func TestKVGetSetRemove(t *testing.T) {
	db := testDB(t)
	k := testKV(t, db, Options{})

	if _, ok, err := k.Get("fiberglass_team"); err != nil || ok {
		t.Fatalf("Get(missing) = ok %v, err %v", ok, err)
	}
	if err := k.Set("fiberglass_team", `[{"id":"1"}]`); err != nil {
		t.Fatal(err)
	}
	if err := k.Set("fiberglass_team", `[]`); err != nil {
		t.Fatal(err)
	}
	v, ok, err := k.Get("fiberglass_team")
	if err != nil || !ok || v != "[]" {
		t.Fatalf("Get = %q, %v, %v; want [], true, nil", v, ok, err)
	}

	count, err := db.KeyCount()
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("key count = %d, want 1", count)
	}

	if err := k.Remove("fiberglass_team"); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := k.Get("fiberglass_team"); ok {
		t.Error("key present after Remove")
	}
	if err := k.Remove("fiberglass_team"); err != nil {
		t.Errorf("Remove(missing) error = %v", err)
	}
}

func TestKVQuota(t *testing.T) {
	db := testDB(t)
	k := testKV(t, db, Options{Quota: 20})

	if err := k.Set("a", "0123456789"); err != nil {
		t.Fatalf("Set within quota: %v", err)
	}
	err := k.Set("b", "0123456789")
	if !errors.Is(err, kv.ErrQuotaExceeded) {
		t.Fatalf("Set over quota error = %v, want ErrQuotaExceeded", err)
	}
	if _, ok, _ := k.Get("b"); ok {
		t.Error("rejected write was stored")
	}
	// Rewriting an existing key is measured without its old value.
	if err := k.Set("a", "01234567890123456"); err != nil {
		t.Errorf("replace within quota: %v", err)
	}
	used, err := db.UsedBytes()
	if err != nil {
		t.Fatal(err)
	}
	if used != 18 {
		t.Errorf("used = %d, want 18", used)
	}
}

func TestKVNotifiesOtherHandles(t *testing.T) {
	db := testDB(t)
	admin := testKV(t, db, Options{})
	customer := testKV(t, db, Options{})

	adminCh, unsubAdmin := admin.Subscribe(10)
	defer unsubAdmin()
	customerCh, unsubCustomer := customer.Subscribe(10)
	defer unsubCustomer()

	if err := customer.Set("fiberglass_chats", `[{"id":"t1"}]`); err != nil {
		t.Fatal(err)
	}

	select {
	case c := <-adminCh:
		if c.Key != "fiberglass_chats" {
			t.Errorf("key = %q, want fiberglass_chats", c.Key)
		}
		if c.Writer != customer.ID() {
			t.Errorf("writer = %q, want %q", c.Writer, customer.ID())
		}
		if c.Value != `[{"id":"t1"}]` {
			t.Errorf("value = %q", c.Value)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for change")
	}

	select {
	case c := <-customerCh:
		t.Errorf("writer saw its own change: %+v", c)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestKVNotifiesAcrossConnections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "site.db")
	open := func() *DB {
		db, err := Open(path)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := db.Migrate(); err != nil {
			t.Fatal(err)
		}
		t.Cleanup(func() { _ = db.Close() })
		return db
	}
	first := testKV(t, open(), Options{})
	second := testKV(t, open(), Options{})

	ch, unsub := first.Subscribe(10)
	defer unsub()

	if err := second.Set("fiberglass_gallery", "[]"); err != nil {
		t.Fatal(err)
	}
	if err := second.Remove("fiberglass_gallery"); err != nil {
		t.Fatal(err)
	}

	var got []kv.Change
	timeout := time.After(2 * time.Second)
	for len(got) < 2 {
		select {
		case c := <-ch:
			got = append(got, c)
		case <-timeout:
			t.Fatalf("got %d changes, want 2", len(got))
		}
	}
	if got[0].Removed || !got[1].Removed {
		t.Errorf("changes = %+v, want set then remove", got)
	}
}

func TestKVUnsubscribeStopsWatcher(t *testing.T) {
	db := testDB(t)
	k := testKV(t, db, Options{})

	_, unsub := k.Subscribe(1)
	unsub()
	unsub()

	k.mu.Lock()
	running := k.cancel != nil
	k.mu.Unlock()
	if running {
		t.Error("watcher still running after last unsubscribe")
	}
}

func TestKVPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "site.db")
	db, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Migrate(); err != nil {
		t.Fatal(err)
	}
	if err := NewKV(db, Options{}).Set("fiberglass_site_settings", `{"isLocked":true}`); err != nil {
		t.Fatal(err)
	}
	_ = db.Close()

	db, err = Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = db.Close() }()
	v, ok, err := NewKV(db, Options{}).Get("fiberglass_site_settings")
	if err != nil || !ok || v != `{"isLocked":true}` {
		t.Errorf("Get after reopen = %q, %v, %v", v, ok, err)
	}
}

func TestKVClosed(t *testing.T) {
	db := testDB(t)
	k := NewKV(db, Options{})
	if err := k.Close(); err != nil {
		t.Fatal(err)
	}
	if _, _, err := k.Get("a"); !errors.Is(err, kv.ErrClosed) {
		t.Errorf("Get after Close error = %v, want ErrClosed", err)
	}
	if err := k.Set("a", "1"); !errors.Is(err, kv.ErrClosed) {
		t.Errorf("Set after Close error = %v, want ErrClosed", err)
	}
	if err := k.Remove("a"); !errors.Is(err, kv.ErrClosed) {
		t.Errorf("Remove after Close error = %v, want ErrClosed", err)
	}
	// The DB itself is still usable by other handles.
	if err := NewKV(db, Options{}).Set("a", "1"); err != nil {
		t.Errorf("Set on a fresh handle: %v", err)
	}
}
