package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/matheus3301/fiberglass/internal/kv"
	"go.uber.org/zap"
)

const (
	defaultPollInterval = 250 * time.Millisecond
	changeRetention     = 5 * time.Minute
)

// Options configures a KV handle.
type Options struct {
	// Quota bounds the summed key and value bytes; zero means unlimited.
	Quota int64
	// PollInterval is how often the change log is scanned for other writers.
	PollInterval time.Duration
	Logger       *zap.Logger
}

// KV is one tab's handle on the site.db key/value table. Writes are recorded
// in kv_changes so handles in this or other processes observe them.
type KV struct {
	db     *DB
	id     string
	quota  int64
	poll   time.Duration
	logger *zap.Logger

	mu      sync.Mutex
	subs    map[int]chan kv.Change
	next    int
	cancel  context.CancelFunc
	done    chan struct{}
	lastSeq int64
	closed  bool
}

var _ kv.Store = (*KV)(nil)

// NewKV opens a handle with a fresh writer id.
func NewKV(db *DB, opts Options) *KV {
	if opts.PollInterval <= 0 {
		opts.PollInterval = defaultPollInterval
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &KV{
		db:     db,
		id:     uuid.NewString(),
		quota:  opts.Quota,
		poll:   opts.PollInterval,
		logger: opts.Logger,
		subs:   make(map[int]chan kv.Change),
	}
}

// ID returns the handle's writer id.
func (k *KV) ID() string { return k.id }

func (k *KV) isClosed() bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.closed
}

func (k *KV) Get(key string) (string, bool, error) {
	if k.isClosed() {
		return "", false, kv.ErrClosed
	}
	var value string
	err := k.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %q: %w", key, err)
	}
	return value, true, nil
}

func (k *KV) Set(key, value string) error {
	if k.isClosed() {
		return kv.ErrClosed
	}
	tx, err := k.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if k.quota > 0 {
		var used int64
		if err := tx.QueryRow(`
			SELECT COALESCE(SUM(length(CAST(key AS BLOB)) + length(CAST(value AS BLOB))), 0)
			FROM kv WHERE key != ?`, key).Scan(&used); err != nil {
			return fmt.Errorf("measure usage: %w", err)
		}
		used += int64(kv.Size(key, value))
		if used > k.quota {
			return fmt.Errorf("set %q (%d of %d bytes): %w", key, used, k.quota, kv.ErrQuotaExceeded)
		}
	}

	now := time.Now().UnixMilli()
	if _, err := tx.Exec(`
		INSERT INTO kv (key, value, writer, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			writer = excluded.writer,
			updated_at = excluded.updated_at`,
		key, value, k.id, now); err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}
	if _, err := tx.Exec(`INSERT INTO kv_changes (key, writer, removed, changed_at) VALUES (?, ?, 0, ?)`,
		key, k.id, now); err != nil {
		return fmt.Errorf("record change %q: %w", key, err)
	}
	return tx.Commit()
}

func (k *KV) Remove(key string) error {
	if k.isClosed() {
		return kv.ErrClosed
	}
	tx, err := k.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	result, err := tx.Exec(`DELETE FROM kv WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("remove %q: %w", key, err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return nil
	}
	if _, err := tx.Exec(`INSERT INTO kv_changes (key, writer, removed, changed_at) VALUES (?, ?, 1, ?)`,
		key, k.id, time.Now().UnixMilli()); err != nil {
		return fmt.Errorf("record removal %q: %w", key, err)
	}
	return tx.Commit()
}

// Subscribe starts the change-log watcher on first use and stops it when the
// last subscriber leaves.
func (k *KV) Subscribe(bufSize int) (<-chan kv.Change, func()) {
	ch := make(chan kv.Change, bufSize)
	k.mu.Lock()
	if k.closed {
		k.mu.Unlock()
		return ch, func() {}
	}
	id := k.next
	k.next++
	k.subs[id] = ch
	if len(k.subs) == 1 {
		k.startLocked()
	}
	k.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			k.mu.Lock()
			delete(k.subs, id)
			var done chan struct{}
			if len(k.subs) == 0 {
				done = k.stopLocked()
			}
			k.mu.Unlock()
			if done != nil {
				<-done
			}
		})
	}
}

// Close stops the watcher and rejects further operations with kv.ErrClosed.
// The underlying DB stays open.
func (k *KV) Close() error {
	k.mu.Lock()
	k.closed = true
	k.subs = make(map[int]chan kv.Change)
	done := k.stopLocked()
	k.mu.Unlock()
	if done != nil {
		<-done
	}
	return nil
}

func (k *KV) startLocked() {
	if err := k.db.QueryRow(`SELECT COALESCE(MAX(seq), 0) FROM kv_changes`).Scan(&k.lastSeq); err != nil {
		k.logger.Error("failed to read change log head", zap.Error(err))
	}
	ctx, cancel := context.WithCancel(context.Background())
	k.cancel = cancel
	k.done = make(chan struct{})
	go k.watch(ctx, k.done)
}

func (k *KV) stopLocked() chan struct{} {
	if k.cancel == nil {
		return nil
	}
	k.cancel()
	k.cancel = nil
	done := k.done
	k.done = nil
	return done
}

func (k *KV) watch(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(k.poll)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			k.scan()
		case <-ctx.Done():
			return
		}
	}
}

type changeRow struct {
	seq       int64
	key       string
	writer    string
	removed   bool
	changedAt int64
	value     string
}

func (k *KV) scan() {
	k.mu.Lock()
	since := k.lastSeq
	k.mu.Unlock()

	rows, err := k.db.Query(`
		SELECT c.seq, c.key, c.writer, c.removed, c.changed_at, COALESCE(v.value, '')
		FROM kv_changes c
		LEFT JOIN kv v ON v.key = c.key
		WHERE c.seq > ?
		ORDER BY c.seq ASC`, since)
	if err != nil {
		k.logger.Error("failed to scan change log", zap.Error(err))
		return
	}
	var changes []changeRow
	for rows.Next() {
		var r changeRow
		if err := rows.Scan(&r.seq, &r.key, &r.writer, &r.removed, &r.changedAt, &r.value); err != nil {
			k.logger.Error("failed to read change row", zap.Error(err))
			break
		}
		changes = append(changes, r)
	}
	_ = rows.Close()

	k.mu.Lock()
	for _, r := range changes {
		if r.seq > k.lastSeq {
			k.lastSeq = r.seq
		}
		if r.writer == k.id {
			continue
		}
		c := kv.Change{
			Key:       r.key,
			Removed:   r.removed,
			Writer:    r.writer,
			Timestamp: time.UnixMilli(r.changedAt),
		}
		if !r.removed {
			c.Value = r.value
		}
		for _, ch := range k.subs {
			select {
			case ch <- c:
			default:
			}
		}
	}
	k.mu.Unlock()

	cutoff := time.Now().Add(-changeRetention).UnixMilli()
	if _, err := k.db.Exec(`DELETE FROM kv_changes WHERE changed_at < ?`, cutoff); err != nil {
		k.logger.Warn("failed to prune change log", zap.Error(err))
	}
}
