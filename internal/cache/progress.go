package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"CaronaCondominio/internal/model"
	"CaronaCondominio/internal/store"
	"CaronaCondominio/pkg/logger"
)

const progressPrefix = "progress:"

// ProgressKey 缓存 key：progress:{user_id}
func ProgressKey(userID string) string {
	return progressPrefix + userID
}

// GetProgress 读取缓存的进度，未命中返回 (nil, false, nil)。
// 无法解析的缓存视为未命中并删除，下次读取会重新拉取远端。
func GetProgress(ctx context.Context, kv store.KVStore, userID string) (*model.UserProgress, bool, error) {
	raw, found, err := kv.Get(ctx, ProgressKey(userID))
	if err != nil {
		return nil, false, fmt.Errorf("failed to read progress cache: %w", err)
	}
	if !found {
		return nil, false, nil
	}

	var progress model.UserProgress
	if err := json.Unmarshal([]byte(raw), &progress); err != nil {
		logger.Ctx(ctx).Warn("Dropping unreadable progress cache",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		_ = kv.Remove(ctx, ProgressKey(userID))
		return nil, false, nil
	}
	// 旧缓存可能没有 step_data，读出的值与远端拉取的保持一致
	if progress.StepData == nil {
		progress.StepData = map[string]string{}
	}

	return &progress, true, nil
}

func SetProgress(ctx context.Context, kv store.KVStore, progress *model.UserProgress) error {
	data, err := json.Marshal(progress)
	if err != nil {
		return fmt.Errorf("failed to marshal progress: %w", err)
	}

	if err := kv.Set(ctx, ProgressKey(progress.UserID), string(data)); err != nil {
		return fmt.Errorf("failed to write progress cache: %w", err)
	}
	return nil
}

func RemoveProgress(ctx context.Context, kv store.KVStore, userID string) error {
	return kv.Remove(ctx, ProgressKey(userID))
}
