package cache

import (
	"context"

	"CaronaCondominio/internal/store"
)

const tokenPrefix = "token:"

// TokenKey 远端后端凭证的 key：token:{user_id}
func TokenKey(userID string) string {
	return tokenPrefix + userID
}

// GetToken 读取远端凭证，空字符串视为不存在
func GetToken(ctx context.Context, kv store.KVStore, userID string) (string, bool, error) {
	token, found, err := kv.Get(ctx, TokenKey(userID))
	if err != nil {
		return "", false, err
	}
	if !found || token == "" {
		return "", false, nil
	}
	return token, true, nil
}

func SetToken(ctx context.Context, kv store.KVStore, userID, token string) error {
	return kv.Set(ctx, TokenKey(userID), token)
}

// RemoveToken 登出或远端返回 401 时删除凭证
func RemoveToken(ctx context.Context, kv store.KVStore, userID string) error {
	return kv.Remove(ctx, TokenKey(userID))
}
