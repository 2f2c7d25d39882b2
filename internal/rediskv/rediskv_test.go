package rediskv

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/matheus3301/fiberglass/internal/kv"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestStore_GetSetRemove(t *testing.T) {
	mr, rdb := testClient(t)
	s := New(rdb, "main", nil)

	_, ok, err := s.Get("fiberglass_gallery")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set("fiberglass_gallery", "[]"))
	v, ok, err := s.Get("fiberglass_gallery")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "[]", v)

	raw, err := mr.Get("main:kv:fiberglass_gallery")
	require.NoError(t, err)
	assert.Equal(t, "[]", raw)

	require.NoError(t, s.Remove("fiberglass_gallery"))
	assert.False(t, mr.Exists("main:kv:fiberglass_gallery"))
	require.NoError(t, s.Remove("fiberglass_gallery"))
}

func TestStore_OriginsAreIsolated(t *testing.T) {
	_, rdb := testClient(t)
	a := New(rdb, "main", nil)
	b := New(rdb, "staging", nil)

	require.NoError(t, a.Set("k", "v"))
	_, ok, err := b.Get("k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_NotifiesOtherHandlesOnly(t *testing.T) {
	_, rdb := testClient(t)
	admin := New(rdb, "main", nil)
	customer := New(rdb, "main", nil)

	adminCh, unsubAdmin := admin.Subscribe(10)
	defer unsubAdmin()
	customerCh, unsubCustomer := customer.Subscribe(10)
	defer unsubCustomer()

	require.NoError(t, customer.Set("fiberglass_chats", `[{"id":"t1"}]`))

	var got kv.Change
	require.Eventually(t, func() bool {
		select {
		case got = <-adminCh:
			return true
		default:
			return false
		}
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, "fiberglass_chats", got.Key)
	assert.Equal(t, customer.ID(), got.Writer)
	assert.Equal(t, `[{"id":"t1"}]`, got.Value)

	assert.Never(t, func() bool {
		select {
		case <-customerCh:
			return true
		default:
			return false
		}
	}, 100*time.Millisecond, 10*time.Millisecond)
}

func TestStore_UnsubscribeStopsDelivery(t *testing.T) {
	_, rdb := testClient(t)
	reader := New(rdb, "main", nil)
	writer := New(rdb, "main", nil)

	ch, unsub := reader.Subscribe(10)
	unsub()
	unsub()

	require.NoError(t, writer.Set("k", "v"))
	assert.Never(t, func() bool {
		select {
		case <-ch:
			return true
		default:
			return false
		}
	}, 100*time.Millisecond, 10*time.Millisecond)
}

func TestStore_NilClientIsUnavailable(t *testing.T) {
	s := New(nil, "main", nil)
	_, _, err := s.Get("k")
	assert.ErrorIs(t, err, kv.ErrUnavailable)
	assert.ErrorIs(t, s.Set("k", "v"), kv.ErrUnavailable)
	assert.ErrorIs(t, s.Remove("k"), kv.ErrUnavailable)
}

func TestStore_ClosedClient(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	s := New(rdb, "shop", nil)
	require.NoError(t, rdb.Close())

	_, _, err := s.Get("fiberglass_team")
	assert.ErrorIs(t, err, kv.ErrClosed)
	assert.ErrorIs(t, s.Set("fiberglass_team", "[]"), kv.ErrClosed)
}
