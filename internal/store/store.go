package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"CaronaCondominio/config"
	"CaronaCondominio/pkg/logger"
	"CaronaCondominio/storage/redis"
)

// Scope 存储范围：persistent 对应"记住我"，session 对应一次会话
type Scope string

const (
	ScopePersistent Scope = "persistent"
	ScopeSession    Scope = "session"
)

// ParseScope 未知或空值一律按 session 处理
func ParseScope(s string) Scope {
	if Scope(s) == ScopePersistent {
		return ScopePersistent
	}
	return ScopeSession
}

// KVStore 进度缓存和远端凭证使用的键值存储
type KVStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// Locker 按 key 的互斥，用于进度缓存的读改写
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Unlock(ctx context.Context, key string) error
}

var ErrUnknownDriver = errors.New("unknown store driver")

// Stores 两个范围的存储和可选的锁
type Stores struct {
	Persistent KVStore
	Session    KVStore
	Locker     Locker
}

// For 返回指定范围的存储
func (s *Stores) For(scope Scope) KVStore {
	if scope == ScopePersistent {
		return s.Persistent
	}
	return s.Session
}

// All 依次返回两个范围，登出时两个都要清理
func (s *Stores) All() []KVStore {
	return []KVStore{s.Persistent, s.Session}
}

var (
	defaultStores *Stores
	mu            sync.RWMutex
)

// Init 根据配置创建存储，redis 驱动需要先初始化 storage/redis
func Init() error {
	var (
		stores *Stores
		err    error
	)

	switch config.Cfg.StoreDriver {
	case "redis":
		stores, err = NewRedisStores(redis.Client(), config.Cfg.PersistentTTL(), config.Cfg.SessionTTL())
	case "memory":
		stores = NewMemoryStores(config.Cfg.PersistentTTL(), config.Cfg.SessionTTL())
	default:
		err = fmt.Errorf("%w: %s", ErrUnknownDriver, config.Cfg.StoreDriver)
	}
	if err != nil {
		return err
	}

	SetDefault(stores)
	logger.Logger.Info("Store initialized",
		zap.String("driver", config.Cfg.StoreDriver),
		zap.Duration("session_ttl", config.Cfg.SessionTTL()),
		zap.Duration("persistent_ttl", config.Cfg.PersistentTTL()),
	)
	return nil
}

func SetDefault(s *Stores) {
	mu.Lock()
	defer mu.Unlock()
	defaultStores = s
}

func Default() *Stores {
	mu.RLock()
	defer mu.RUnlock()
	if defaultStores == nil {
		panic("store not init")
	}
	return defaultStores
}
