package middleware

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	redislib "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"CaronaCondominio/config"
	"CaronaCondominio/pkg/errors"
	"CaronaCondominio/pkg/logger"
	"CaronaCondominio/pkg/response"
	"CaronaCondominio/storage/redis"
)

// RateLimitConfig 限流配置
type RateLimitConfig struct {
	// 限流键前缀
	KeyPrefix string
	// 时间窗口（秒）
	Window int
	// 时间窗口内最大请求数
	MaxRequests int
	// 阻塞时长（秒），超过限制后禁止访问的时间，0 表示不阻塞
	BlockDuration int
	// 是否按用户ID限流（需要认证）
	ByUserID bool
	// 是否按IP限流
	ByIP bool
}

// LoginRateLimitConfig 登录按 IP 限流
func LoginRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		KeyPrefix:     "rate:login",
		Window:        60,
		MaxRequests:   config.Cfg.LoginRateLimit,
		BlockDuration: 300,
		ByIP:          true,
	}
}

// AccountRateLimitConfig 注册和找回密码按 IP 限流
func AccountRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		KeyPrefix:     "rate:account",
		Window:        60,
		MaxRequests:   config.Cfg.AccountRateLimit,
		BlockDuration: 300,
		ByIP:          true,
	}
}

// SubmitRateLimitConfig 向导提交按用户限流，未登录时按 IP
func SubmitRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		KeyPrefix:   "rate:submit",
		Window:      60,
		MaxRequests: config.Cfg.SubmitRateLimit,
		ByUserID:    true,
		ByIP:        true,
	}
}

// RateLimiter 基于 redis zset 的滑动窗口限流器
type RateLimiter struct {
	client redislib.Cmdable
	now    func() time.Time
	config RateLimitConfig
}

func NewRateLimiter(client redislib.Cmdable, config RateLimitConfig) *RateLimiter {
	return &RateLimiter{client: client, config: config, now: time.Now}
}

// getKey 生成限流键
func (rl *RateLimiter) getKey(ctx context.Context, c *app.RequestContext) string {
	var identifier string

	if rl.config.ByUserID {
		if userID, exists := GetUserID(ctx, c); exists {
			identifier = "user:" + userID
		}
	}

	if identifier == "" && rl.config.ByIP {
		identifier = "ip:" + c.ClientIP()
	}

	return redis.Key(rl.config.KeyPrefix, identifier)
}

// Allow 检查是否允许请求，返回窗口内的请求数
func (rl *RateLimiter) Allow(ctx context.Context, key string) (bool, int, error) {
	now := rl.now()
	windowStart := now.Add(-time.Duration(rl.config.Window) * time.Second)

	pipe := rl.client.Pipeline()

	// 先移除窗口之外的记录
	pipe.ZRemRangeByScore(ctx, key, "0", strconv.FormatInt(windowStart.UnixNano(), 10))
	pipe.ZAdd(ctx, key, redislib.Z{
		Score:  float64(now.UnixNano()),
		Member: now.UnixNano(),
	})
	zcardCmd := pipe.ZCard(ctx, key)
	pipe.Expire(ctx, key, time.Duration(rl.config.Window+10)*time.Second)

	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, fmt.Errorf("failed to execute pipeline: %w", err)
	}

	count := int(zcardCmd.Val())
	return count <= rl.config.MaxRequests, count, nil
}

func (rl *RateLimiter) blockKey(key string) string {
	return key + ":block"
}

func (rl *RateLimiter) Block(ctx context.Context, key string) error {
	if rl.config.BlockDuration <= 0 {
		return nil
	}
	return rl.client.Set(ctx, rl.blockKey(key), "1", time.Duration(rl.config.BlockDuration)*time.Second).Err()
}

func (rl *RateLimiter) IsBlocked(ctx context.Context, key string) (bool, error) {
	if rl.config.BlockDuration <= 0 {
		return false, nil
	}
	result, err := rl.client.Exists(ctx, rl.blockKey(key)).Result()
	return result > 0, err
}

// RateLimitMiddleware 创建限流中间件。redis 不可用或限流关闭时直接放行。
func RateLimitMiddleware(cfg RateLimitConfig) app.HandlerFunc {
	if !config.Cfg.RateLimitEnabled || !redis.Enabled() || cfg.MaxRequests <= 0 {
		return func(ctx context.Context, c *app.RequestContext) {
			c.Next(ctx)
		}
	}
	return rateLimitHandler(NewRateLimiter(redis.Client(), cfg))
}

func rateLimitHandler(limiter *RateLimiter) app.HandlerFunc {
	cfg := limiter.config

	return func(ctx context.Context, c *app.RequestContext) {
		key := limiter.getKey(ctx, c)

		blocked, err := limiter.IsBlocked(ctx, key)
		if err != nil {
			// 限流器故障不影响业务请求
			logger.Ctx(ctx).Error("Failed to check block status", zap.Error(err))
			c.Next(ctx)
			return
		}
		if blocked {
			response.Error(ctx, c, errors.TooManyRequests)
			c.Abort()
			return
		}

		allowed, count, err := limiter.Allow(ctx, key)
		if err != nil {
			logger.Ctx(ctx).Error("Failed to check rate limit", zap.Error(err))
			c.Next(ctx)
			return
		}

		remaining := cfg.MaxRequests - count
		if remaining < 0 {
			remaining = 0
		}
		c.Response.Header.Set("X-RateLimit-Limit", strconv.Itoa(cfg.MaxRequests))
		c.Response.Header.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Response.Header.Set("X-RateLimit-Reset", strconv.FormatInt(limiter.now().Add(time.Duration(cfg.Window)*time.Second).Unix(), 10))

		if !allowed {
			if err := limiter.Block(ctx, key); err != nil {
				logger.Ctx(ctx).Error("Failed to block client", zap.Error(err))
			}
			logger.Ctx(ctx).Warn("Rate limit exceeded",
				zap.String("key", key),
				zap.Int("count", count),
			)
			response.Error(ctx, c, errors.TooManyRequests)
			c.Abort()
			return
		}

		c.Next(ctx)
	}
}

// LoginRateLimitMiddleware 登录限流
func LoginRateLimitMiddleware() app.HandlerFunc {
	return RateLimitMiddleware(LoginRateLimitConfig())
}

func AccountRateLimitMiddleware() app.HandlerFunc {
	return RateLimitMiddleware(AccountRateLimitConfig())
}

// SubmitRateLimitMiddleware 向导提交限流
func SubmitRateLimitMiddleware() app.HandlerFunc {
	return RateLimitMiddleware(SubmitRateLimitConfig())
}
