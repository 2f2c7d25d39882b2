// Package rediskv stores an origin's keys in Redis and carries cross-tab
// change notices over a pub/sub channel, so handles in separate processes
// or machines share one origin.
package rediskv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/matheus3301/fiberglass/internal/kv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const opTimeout = 2 * time.Second

// Store is one tab's handle on an origin held in Redis. Keys are stored
// under "<origin>:kv:<key>"; changes are announced on "<origin>:changes".
type Store struct {
	rdb    *redis.Client
	origin string
	id     string
	logger *zap.Logger
}

var _ kv.Store = (*Store)(nil)

type notice struct {
	Key     string `json:"key"`
	Writer  string `json:"writer"`
	Removed bool   `json:"removed,omitempty"`
	At      int64  `json:"at"`
}

// New creates a handle for origin on the given client. A nil client yields a
// handle whose operations report kv.ErrUnavailable.
func New(rdb *redis.Client, origin string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{rdb: rdb, origin: origin, id: uuid.NewString(), logger: logger}
}

// Dial connects to addr and verifies the connection.
func Dial(ctx context.Context, addr string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr, DB: db})
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	return rdb, nil
}

// ID returns the handle's writer id.
func (s *Store) ID() string { return s.id }

// KeyName returns the Redis key holding key.
func (s *Store) KeyName(key string) string {
	return s.origin + ":kv:" + key
}

// Channel returns the pub/sub channel carrying change notices.
func (s *Store) Channel() string {
	return s.origin + ":changes"
}

func (s *Store) Get(key string) (string, bool, error) {
	if s.rdb == nil {
		return "", false, kv.ErrUnavailable
	}
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	v, err := s.rdb.Get(ctx, s.KeyName(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, wrap("get", key, err)
	}
	return v, true, nil
}

func (s *Store) Set(key, value string) error {
	if s.rdb == nil {
		return kv.ErrUnavailable
	}
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	if err := s.rdb.Set(ctx, s.KeyName(key), value, 0).Err(); err != nil {
		return wrap("set", key, err)
	}
	s.announce(ctx, notice{Key: key, Writer: s.id})
	return nil
}

func (s *Store) Remove(key string) error {
	if s.rdb == nil {
		return kv.ErrUnavailable
	}
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	n, err := s.rdb.Del(ctx, s.KeyName(key)).Result()
	if err != nil {
		return wrap("remove", key, err)
	}
	if n > 0 {
		s.announce(ctx, notice{Key: key, Writer: s.id, Removed: true})
	}
	return nil
}

// wrap reports a closed client as kv.ErrClosed.
func wrap(op, key string, err error) error {
	if errors.Is(err, redis.ErrClosed) {
		err = kv.ErrClosed
	}
	return fmt.Errorf("%s %q: %w", op, key, err)
}

// announce publishes a change notice. The write has already landed, so a
// failed publish is logged and left to the readers' polling.
func (s *Store) announce(ctx context.Context, n notice) {
	n.At = time.Now().UnixMilli()
	payload, err := json.Marshal(n)
	if err != nil {
		s.logger.Error("failed to encode change notice", zap.Error(err), zap.String("key", n.Key))
		return
	}
	if err := s.rdb.Publish(ctx, s.Channel(), payload).Err(); err != nil {
		s.logger.Warn("failed to publish change notice", zap.Error(err), zap.String("key", n.Key))
	}
}

// Subscribe listens on the origin's change channel and forwards notices from
// other writers. The subscription is confirmed before Subscribe returns.
func (s *Store) Subscribe(bufSize int) (<-chan kv.Change, func()) {
	ch := make(chan kv.Change, bufSize)
	if s.rdb == nil {
		return ch, func() {}
	}

	ctx, cancel := context.WithCancel(context.Background())
	sub := s.rdb.Subscribe(ctx, s.Channel())
	confirmCtx, confirmCancel := context.WithTimeout(ctx, opTimeout)
	if _, err := sub.Receive(confirmCtx); err != nil {
		s.logger.Error("failed to subscribe to change channel", zap.Error(err), zap.String("channel", s.Channel()))
	}
	confirmCancel()
	msgs := sub.Channel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				s.forward(ch, msg.Payload)
			}
		}
	}()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			cancel()
			<-done
		})
	}
}

func (s *Store) forward(ch chan<- kv.Change, payload string) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("panic handling change notice", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
		}
	}()

	var n notice
	if err := json.Unmarshal([]byte(payload), &n); err != nil {
		s.logger.Warn("ignoring malformed change notice", zap.Error(err))
		return
	}
	if n.Writer == s.id {
		return
	}
	c := kv.Change{
		Key:       n.Key,
		Removed:   n.Removed,
		Writer:    n.Writer,
		Timestamp: time.UnixMilli(n.At),
	}
	if !n.Removed {
		if v, ok, err := s.Get(n.Key); err == nil && ok {
			c.Value = v
		}
	}
	select {
	case ch <- c:
	default:
	}
}
