package storage

import (
	"go.uber.org/zap"

	"CaronaCondominio/config"
	"CaronaCondominio/internal/store"
	"CaronaCondominio/pkg/logger"
	"CaronaCondominio/storage/redis"
)

// Init 统一初始化存储层
func Init() error {
	switch {
	case config.Cfg.StoreDriver == "redis":
		if err := redis.Init(); err != nil {
			return err
		}
	case config.Cfg.RateLimitEnabled:
		// memory 驱动下 redis 只给限流用，连不上就关闭限流
		if err := redis.Init(); err != nil {
			logger.Logger.Warn("Redis unavailable, rate limiting disabled", zap.Error(err))
		}
	}

	return store.Init()
}
