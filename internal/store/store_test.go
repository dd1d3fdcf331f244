package store

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseScope(t *testing.T) {
	assert.Equal(t, ScopePersistent, ParseScope("persistent"))
	assert.Equal(t, ScopeSession, ParseScope("session"))
	assert.Equal(t, ScopeSession, ParseScope(""))
	assert.Equal(t, ScopeSession, ParseScope("other"))
}

func TestMemoryStoreGetSetRemove(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(time.Minute)

	_, found, err := s.Get(ctx, "progress:u1")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, s.Set(ctx, "progress:u1", `{"position":2}`))
	v, found, err := s.Get(ctx, "progress:u1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `{"position":2}`, v)

	require.NoError(t, s.Remove(ctx, "progress:u1"))
	_, found, _ = s.Get(ctx, "progress:u1")
	assert.False(t, found)

	// 删除不存在的 key 不报错
	assert.NoError(t, s.Remove(ctx, "missing"))
}

func TestMemoryStoreExpires(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	s := NewMemoryStore(time.Minute)
	s.now = func() time.Time { return now }

	require.NoError(t, s.Set(ctx, "token:u1", "abc"))

	now = now.Add(59 * time.Second)
	_, found, _ := s.Get(ctx, "token:u1")
	assert.True(t, found)

	now = now.Add(time.Second)
	_, found, _ = s.Get(ctx, "token:u1")
	assert.False(t, found)
}

func TestStoresForScope(t *testing.T) {
	stores := NewMemoryStores(time.Hour, time.Minute)
	ctx := context.Background()

	require.NoError(t, stores.For(ScopePersistent).Set(ctx, "k", "p"))
	_, found, _ := stores.For(ScopeSession).Get(ctx, "k")
	assert.False(t, found, "scopes must not share keys")

	v, found, _ := stores.For(ScopePersistent).Get(ctx, "k")
	assert.True(t, found)
	assert.Equal(t, "p", v)
	assert.Len(t, stores.All(), 2)
}

func TestMemoryLocker(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	l := NewMemoryLocker()
	l.now = func() time.Time { return now }

	ok, err := l.TryLock(ctx, "progress:u1", 10*time.Second)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, _ = l.TryLock(ctx, "progress:u1", 10*time.Second)
	assert.False(t, ok)

	ok, _ = l.TryLock(ctx, "progress:u2", 10*time.Second)
	assert.True(t, ok, "locks are per key")

	require.NoError(t, l.Unlock(ctx, "progress:u1"))
	ok, _ = l.TryLock(ctx, "progress:u1", 10*time.Second)
	assert.True(t, ok)

	// 持有者崩溃后锁自动过期
	now = now.Add(11 * time.Second)
	ok, _ = l.TryLock(ctx, "progress:u1", 10*time.Second)
	assert.True(t, ok)
}

func TestCircuitBreakerOpensAndRecovers(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	cb := NewCircuitBreaker("test", 2, time.Minute)
	cb.now = func() time.Time { return now }

	boom := errors.New("boom")
	assert.ErrorIs(t, cb.Call(ctx, func() error { return boom }), boom)
	assert.Equal(t, StateClosed, cb.State())
	assert.ErrorIs(t, cb.Call(ctx, func() error { return boom }), boom)
	assert.Equal(t, StateOpen, cb.State())

	called := false
	err := cb.Call(ctx, func() error { called = true; return nil })
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, called)

	now = now.Add(time.Minute)
	require.NoError(t, cb.Call(ctx, func() error { return nil }))
	assert.Equal(t, StateClosed, cb.State())
}

func TestCircuitBreakerIgnoresCancellation(t *testing.T) {
	cb := NewCircuitBreaker("test", 1, time.Minute)
	err := cb.Call(context.Background(), func() error { return context.Canceled })
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StateClosed, cb.State())
}

// 需要本地 redis：REDIS_TEST_ADDR=localhost:6379 go test ./internal/store/
func TestRedisStore(t *testing.T) {
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}

	client := goredis.NewClient(&goredis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })

	ctx := context.Background()
	require.NoError(t, client.Ping(ctx).Err())

	stores, err := NewRedisStores(client, time.Hour, time.Minute)
	require.NoError(t, err)

	s := stores.For(ScopeSession)
	require.NoError(t, s.Set(ctx, "progress:redis-test", "v1"))
	v, found, err := s.Get(ctx, "progress:redis-test")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "v1", v)

	require.NoError(t, s.Remove(ctx, "progress:redis-test"))
	_, found, err = s.Get(ctx, "progress:redis-test")
	require.NoError(t, err)
	assert.False(t, found)

	ok, err := stores.Locker.TryLock(ctx, "progress:redis-test", time.Second)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = stores.Locker.TryLock(ctx, "progress:redis-test", time.Second)
	require.NoError(t, err)
	assert.False(t, ok)
	require.NoError(t, stores.Locker.Unlock(ctx, "progress:redis-test"))
}
