package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"CaronaCondominio/config"
	"CaronaCondominio/internal/cache"
	"CaronaCondominio/internal/model"
	"CaronaCondominio/internal/store"
	"CaronaCondominio/internal/wizard"
	"CaronaCondominio/pkg/backend"
	"CaronaCondominio/pkg/errors"
	"CaronaCondominio/pkg/logger"
	"CaronaCondominio/pkg/metrics"
	"CaronaCondominio/pkg/snowflake"
)

// FieldPosition 远端记录中的进度字段
const FieldPosition = "posicaoCadastroComplementar"

var (
	progressService *ProgressService
	progressOnce    sync.Once
)

// Progress 使用全局后端客户端和存储的进度服务
func Progress() *ProgressService {
	progressOnce.Do(func() {
		progressService = NewProgressService(backend.GetClient(), store.Default(),
			WithLockTTL(time.Duration(config.Cfg.ProgressLockSeconds)*time.Second),
			WithFetchTimeout(config.Cfg.BackendTimeout()),
		)
	})
	return progressService
}

// ProgressService 维护远端进度和本地缓存的一致：
// 缓存只在远端确认之后写入，位置不会领先于服务端。
type ProgressService struct {
	backend      backend.Client
	stores       *store.Stores
	now          func() time.Time
	nextKey      func() string
	fetches      singleflight.Group
	lockTTL      time.Duration
	fetchTimeout time.Duration
}

type ProgressOption func(*ProgressService)

func WithLockTTL(ttl time.Duration) ProgressOption {
	return func(s *ProgressService) {
		if ttl > 0 {
			s.lockTTL = ttl
		}
	}
}

// WithFetchTimeout 未命中时共享拉取的超时
func WithFetchTimeout(timeout time.Duration) ProgressOption {
	return func(s *ProgressService) {
		if timeout > 0 {
			s.fetchTimeout = timeout
		}
	}
}

func WithClock(now func() time.Time) ProgressOption {
	return func(s *ProgressService) {
		s.now = now
	}
}

func NewProgressService(client backend.Client, stores *store.Stores, opts ...ProgressOption) *ProgressService {
	s := &ProgressService{
		backend:      client,
		stores:       stores,
		now:          time.Now,
		nextKey:      idempotencyKey,
		lockTTL:      15 * time.Second,
		fetchTimeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// idempotencyKey 优先使用 snowflake，未初始化时退回 uuid
func idempotencyKey() string {
	if id, err := snowflake.NextIDString(); err == nil {
		return id
	}
	return uuid.NewString()
}

// GetCurrentProgress 先读缓存，未命中时用远端凭证拉取 GET /users/me 并写入缓存。
// 没有凭证返回 AuthRequired 且不发请求；拉取失败返回 ProgressFetchFailed，缓存不变。
func (s *ProgressService) GetCurrentProgress(ctx context.Context, id Identity) (*model.UserProgress, error) {
	kv := s.stores.For(id.Scope)

	cached, found, err := cache.GetProgress(ctx, kv, id.UserID)
	if err != nil {
		logger.Ctx(ctx).Warn("Progress cache unavailable, falling back to backend",
			zap.String("user_id", id.UserID),
			zap.Error(err),
		)
	}
	metrics.RecordProgressCache(ctx, found)
	if found {
		return cached, nil
	}

	// 同一用户并发的未命中只拉取一次。共享的拉取不跟随第一个请求取消，
	// 否则其他等待者也会拿到 ctx.Err()
	v, err, _ := s.fetches.Do(string(id.Scope)+":"+id.UserID, func() (interface{}, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.fetchTimeout)
		defer cancel()
		return s.fetch(fetchCtx, id)
	})
	if err != nil {
		return nil, err
	}
	return v.(*model.UserProgress).Clone(), nil
}

func (s *ProgressService) fetch(ctx context.Context, id Identity) (*model.UserProgress, error) {
	token, err := credential(ctx, s.stores, id)
	if err != nil {
		return nil, err
	}

	user, err := s.backend.GetMe(ctx, token)
	if err != nil {
		logger.Ctx(ctx).Warn("Failed to fetch progress from backend",
			zap.String("user_id", id.UserID),
			zap.Error(err),
		)
		return nil, classifyBackendError(ctx, s.stores, id, err, errors.ProgressFetchFailed)
	}

	progress := user.ToProgress(s.now().Unix())
	progress.UserID = id.UserID

	if err := cache.SetProgress(ctx, s.stores.For(id.Scope), progress); err != nil {
		// 远端结果仍然可用，下一次读取会重新拉取
		logger.Ctx(ctx).Warn("Failed to populate progress cache",
			zap.String("user_id", id.UserID),
			zap.Error(err),
		)
	}

	logger.Ctx(ctx).Debug("Progress fetched from backend",
		zap.String("user_id", id.UserID),
		zap.Int("position", progress.Position),
	)
	return progress, nil
}

// CommitStep 一次 PATCH 提交新位置和本步骤字段，远端确认后再合并进缓存。
// 远端失败返回 ProgressCommitFailed，缓存不变。
func (s *ProgressService) CommitStep(ctx context.Context, id Identity, newPosition wizard.Position, fields map[string]any) (*model.UserProgress, error) {
	if !wizard.IsValid(newPosition) {
		verr := errors.NewValidationError()
		verr.Add(FieldPosition, errors.PositionInvalid.Message)
		return nil, verr
	}

	token, err := credential(ctx, s.stores, id)
	if err != nil {
		return nil, err
	}

	body := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		body[k] = v
	}
	body[FieldPosition] = int(newPosition)

	start := s.now()
	err = s.backend.UpdatePosition(ctx, token, id.UserID, body, s.nextKey())
	duration := s.now().Sub(start).Seconds()
	if err != nil {
		metrics.RecordStepCommit(ctx, int(newPosition), "failed", duration)
		logger.Ctx(ctx).Warn("Failed to commit wizard step",
			zap.String("user_id", id.UserID),
			zap.Int("position", int(newPosition)),
			zap.Error(err),
		)
		return nil, classifyBackendError(ctx, s.stores, id, err, errors.ProgressCommitFailed)
	}
	metrics.RecordStepCommit(ctx, int(newPosition), "success", duration)

	updated := s.mergeAfterAck(ctx, id, newPosition, fields)

	logger.Ctx(ctx).Info("Wizard step committed",
		zap.String("user_id", id.UserID),
		zap.Int("position", int(newPosition)),
	)
	return updated, nil
}

// mergeAfterAck 在锁内重新读取缓存后合并写回，保留未涉及的字段。
// 缓存未命中时不写入，下一次读取从远端拿完整记录。写入失败时删除缓存。
func (s *ProgressService) mergeAfterAck(ctx context.Context, id Identity, newPosition wizard.Position, fields map[string]any) *model.UserProgress {
	kv := s.stores.For(id.Scope)
	var updated *model.UserProgress

	err := cache.WithLock(ctx, s.stores.Locker, cache.ProgressLockKey(id.UserID), s.lockTTL, func() error {
		current, found, err := cache.GetProgress(ctx, kv, id.UserID)
		if err != nil {
			return err
		}
		if !found {
			current = &model.UserProgress{UserID: id.UserID}
		}

		updated = mergeProgress(current, newPosition, fields, s.now().Unix())
		if !found {
			return nil
		}
		return cache.SetProgress(ctx, kv, updated)
	})

	if err != nil {
		logger.Ctx(ctx).Warn("Progress cache update failed after commit, invalidating",
			zap.String("user_id", id.UserID),
			zap.Error(err),
		)
		if rmErr := cache.RemoveProgress(ctx, kv, id.UserID); rmErr != nil {
			logger.Ctx(ctx).Error("Failed to invalidate progress cache",
				zap.String("user_id", id.UserID),
				zap.Error(rmErr),
			)
		}
		if updated == nil {
			updated = mergeProgress(&model.UserProgress{UserID: id.UserID}, newPosition, fields, s.now().Unix())
		}
	}

	return updated
}

// mergeProgress 浅合并：位置覆盖，字段逐个覆盖，接受条款字段映射到布尔值
func mergeProgress(current *model.UserProgress, newPosition wizard.Position, fields map[string]any, now int64) *model.UserProgress {
	merged := current.Clone()
	if merged.StepData == nil {
		merged.StepData = make(map[string]string, len(fields))
	}
	merged.Position = int(newPosition)
	merged.UpdatedAt = now

	for k, v := range fields {
		switch k {
		case model.FieldAcceptedTerms:
			merged.AcceptedTerms, _ = v.(bool)
		case model.FieldAcceptedPrivacy:
			merged.AcceptedPrivacy, _ = v.(bool)
		default:
			merged.StepData[k] = fmt.Sprint(v)
		}
	}
	return merged
}

// Seed 登录时保存远端凭证，旧的进度缓存作废
func (s *ProgressService) Seed(ctx context.Context, id Identity, token string) error {
	kv := s.stores.For(id.Scope)
	if err := cache.SetToken(ctx, kv, id.UserID, token); err != nil {
		return fmt.Errorf("failed to store credential: %w", err)
	}
	if err := cache.RemoveProgress(ctx, kv, id.UserID); err != nil {
		logger.Ctx(ctx).Warn("Failed to reset progress cache", zap.String("user_id", id.UserID), zap.Error(err))
	}
	return nil
}

// Token 读取当前远端凭证
func (s *ProgressService) Token(ctx context.Context, id Identity) (string, error) {
	return credential(ctx, s.stores, id)
}

// HasCredential 守卫第一步，只看本地凭证，不访问远端
func (s *ProgressService) HasCredential(ctx context.Context, id Identity) bool {
	_, found, err := cache.GetToken(ctx, s.stores.For(id.Scope), id.UserID)
	return err == nil && found
}

// Clear 登出时清理两个范围内的凭证和进度
func (s *ProgressService) Clear(ctx context.Context, userID string) error {
	var firstErr error
	for _, kv := range s.stores.All() {
		if err := cache.RemoveProgress(ctx, kv, userID); err != nil && firstErr == nil {
			firstErr = err
		}
		if err := cache.RemoveToken(ctx, kv, userID); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
