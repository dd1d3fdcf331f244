package cache

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"CaronaCondominio/internal/store"
	"CaronaCondominio/pkg/logger"
)

var ErrLockTimeout = errors.New("timed out waiting for progress lock")

const lockRetryInterval = 25 * time.Millisecond

// ProgressLockKey 进度读改写锁，redis 中实际为 {prefix}:lock:progress:{user_id}
func ProgressLockKey(userID string) string {
	return progressPrefix + userID
}

// WithLock 持有 key 锁执行 fn。locker 为 nil 时直接执行。
// 等待时间不超过 ttl，锁本身也在 ttl 后过期，持有者崩溃不会永久阻塞。
func WithLock(ctx context.Context, locker store.Locker, key string, ttl time.Duration, fn func() error) error {
	if locker == nil {
		return fn()
	}

	deadline := time.Now().Add(ttl)
	ticker := time.NewTicker(lockRetryInterval)
	defer ticker.Stop()

	for {
		ok, err := locker.TryLock(ctx, key, ttl)
		if err != nil {
			return err
		}
		if ok {
			break
		}
		if time.Now().After(deadline) {
			return ErrLockTimeout
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}

	defer func() {
		// 解锁用独立 ctx，请求取消后也要释放
		unlockCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
		defer cancel()
		if err := locker.Unlock(unlockCtx, key); err != nil {
			logger.Ctx(ctx).Warn("Failed to release lock", zap.String("key", key), zap.Error(err))
		}
	}()

	return fn()
}
