package service

import (
	"context"
	stderrors "errors"
	"fmt"

	"go.uber.org/zap"

	"CaronaCondominio/internal/cache"
	"CaronaCondominio/internal/store"
	"CaronaCondominio/pkg/backend"
	"CaronaCondominio/pkg/errors"
	"CaronaCondominio/pkg/logger"
)

// Identity 已认证的用户以及远端凭证所在的存储范围，来自 BFF 会话令牌
type Identity struct {
	UserID string
	Scope  store.Scope
}

// credential 读取远端凭证，不存在时返回 AuthRequired
func credential(ctx context.Context, stores *store.Stores, id Identity) (string, error) {
	token, found, err := cache.GetToken(ctx, stores.For(id.Scope), id.UserID)
	if err != nil {
		return "", fmt.Errorf("%w: %w", errors.BackendUnavailable, err)
	}
	if !found {
		return "", errors.AuthRequired
	}
	return token, nil
}

// dropSession 远端凭证失效后删除本范围内的凭证和进度缓存
func dropSession(ctx context.Context, stores *store.Stores, id Identity) {
	kv := stores.For(id.Scope)
	if err := cache.RemoveToken(ctx, kv, id.UserID); err != nil {
		logger.Ctx(ctx).Warn("Failed to remove expired credential", zap.String("user_id", id.UserID), zap.Error(err))
	}
	if err := cache.RemoveProgress(ctx, kv, id.UserID); err != nil {
		logger.Ctx(ctx).Warn("Failed to remove progress cache", zap.String("user_id", id.UserID), zap.Error(err))
	}
}

// classifyBackendError 远端 401 清理会话并返回 SessionExpired（同时满足 errors.Is AuthRequired），
// 其余错误包装为 fallback
func classifyBackendError(ctx context.Context, stores *store.Stores, id Identity, err error, fallback errors.Definition) error {
	if stderrors.Is(err, backend.ErrUnauthorized) {
		logger.Ctx(ctx).Info("Backend rejected credential, clearing session", zap.String("user_id", id.UserID))
		dropSession(ctx, stores, id)
		return fmt.Errorf("%w (%w): %w", errors.SessionExpired, errors.AuthRequired, err)
	}
	return fmt.Errorf("%w: %w", fallback, err)
}
