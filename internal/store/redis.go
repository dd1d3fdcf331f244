package store

import (
	"context"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"CaronaCondominio/storage/redis"
)

const lockPrefix = "lock"

// RedisStore 基于 redis 的存储，每个范围一个 key 前缀和 TTL
type RedisStore struct {
	client  goredis.Cmdable
	breaker *CircuitBreaker
	scope   Scope
	ttl     time.Duration
}

func NewRedisStore(client goredis.Cmdable, scope Scope, ttl time.Duration) *RedisStore {
	return &RedisStore{
		client:  client,
		scope:   scope,
		ttl:     ttl,
		breaker: NewCircuitBreaker("store:"+string(scope), 5, 30*time.Second),
	}
}

// key 形如 carona:session:progress:{user_id}
func (r *RedisStore) key(k string) string {
	return redis.Key(string(r.scope), k)
}

func (r *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	var (
		value string
		found bool
	)

	err := r.breaker.Call(ctx, func() error {
		v, err := r.client.Get(ctx, r.key(key)).Result()
		if errors.Is(err, goredis.Nil) {
			return nil
		}
		if err != nil {
			return err
		}
		value, found = v, true
		return nil
	})
	if err != nil {
		return "", false, err
	}
	return value, found, nil
}

func (r *RedisStore) Set(ctx context.Context, key, value string) error {
	return r.breaker.Call(ctx, func() error {
		return r.client.Set(ctx, r.key(key), value, r.ttl).Err()
	})
}

func (r *RedisStore) Remove(ctx context.Context, key string) error {
	return r.breaker.Call(ctx, func() error {
		return r.client.Del(ctx, r.key(key)).Err()
	})
}

// RedisLocker 通过 SETNX 实现的分布式锁
type RedisLocker struct {
	client goredis.Cmdable
}

func NewRedisLocker(client goredis.Cmdable) *RedisLocker {
	return &RedisLocker{client: client}
}

func (l *RedisLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return l.client.SetNX(ctx, redis.Key(lockPrefix, key), 1, ttl).Result()
}

func (l *RedisLocker) Unlock(ctx context.Context, key string) error {
	return l.client.Del(ctx, redis.Key(lockPrefix, key)).Err()
}

var errNilRedisClient = errors.New("redis client is nil")

func NewRedisStores(client goredis.Cmdable, persistentTTL, sessionTTL time.Duration) (*Stores, error) {
	if client == nil {
		return nil, errNilRedisClient
	}
	return &Stores{
		Persistent: NewRedisStore(client, ScopePersistent, persistentTTL),
		Session:    NewRedisStore(client, ScopeSession, sessionTTL),
		Locker:     NewRedisLocker(client),
	}, nil
}
