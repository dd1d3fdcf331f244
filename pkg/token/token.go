package token

import (
	"errors"
	"fmt"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/hertz-contrib/jwt"

	"CaronaCondominio/config"
)

const (
	IdentityKey = "uid"
	ScopeKey    = "scope"

	// 与 store.Scope 的取值一致
	ScopePersistent = "persistent"
	ScopeSession    = "session"
)

var (
	ErrGeneratorNotInitialized = errors.New("token generator not initialized")
	ErrUnexpectedSigningMethod = errors.New("unexpected signing method")
	ErrInvalidToken            = errors.New("invalid token")
	ErrUserIDNotFound          = errors.New("user id not found in token")
)

var (
	// 这个实例会被 middleware 和 token 包共同使用
	sharedGenerator *jwt.HertzJWTMiddleware
)

// Claims BFF 会话令牌携带的信息：用户 ID 和远端凭证所在的存储范围
type Claims struct {
	UserID string
	Scope  string
}

func (c Claims) Remember() bool {
	return c.Scope == ScopePersistent
}

func Init() error {
	var err error
	sharedGenerator, err = jwt.New(&jwt.HertzJWTMiddleware{
		Key:         []byte(config.Cfg.JWTSecret),
		Timeout:     time.Duration(config.Cfg.JWTExpireMinutes) * time.Minute,
		IdentityKey: IdentityKey,
		TimeFunc:    time.Now,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize token generator: %w", err)
	}

	return nil
}

// GetGenerator 获取共享的 token 生成器（供 middleware 使用）
func GetGenerator() *jwt.HertzJWTMiddleware {
	return sharedGenerator
}

// lifetime "记住我"使用更长的有效期
func lifetime(scope string) time.Duration {
	if scope == ScopePersistent {
		return time.Duration(config.Cfg.JWTRememberDays) * 24 * time.Hour
	}
	return time.Duration(config.Cfg.JWTExpireMinutes) * time.Minute
}

// GenerateAccessToken 签发 BFF 会话令牌，返回令牌和有效秒数
func GenerateAccessToken(userID, scope string) (accessToken string, expiresIn int, err error) {
	if sharedGenerator == nil {
		return "", 0, ErrGeneratorNotInitialized
	}
	if scope != ScopePersistent {
		scope = ScopeSession
	}

	now := time.Now()
	expiresAt := now.Add(lifetime(scope))

	claims := jwtv5.MapClaims{
		IdentityKey: userID,
		ScopeKey:    scope,
		"iat":       now.Unix(),
		"exp":       expiresAt.Unix(),
	}

	accessToken, err = jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims).SignedString(sharedGenerator.Key)
	if err != nil {
		return "", 0, fmt.Errorf("failed to generate access token: %w", err)
	}

	expiresIn = int(time.Until(expiresAt).Seconds())
	if expiresIn < 0 {
		expiresIn = 0
	}

	return accessToken, expiresIn, nil
}

// ParseAccessToken 校验签名和过期时间并取出 Claims
func ParseAccessToken(tokenString string) (*Claims, error) {
	if sharedGenerator == nil {
		return nil, ErrGeneratorNotInitialized
	}

	parsed, err := jwtv5.Parse(tokenString, func(t *jwtv5.Token) (interface{}, error) {
		if t.Method != jwtv5.SigningMethodHS256 {
			return nil, fmt.Errorf("%w: %v, expected HS256", ErrUnexpectedSigningMethod, t.Header["alg"])
		}
		return sharedGenerator.Key, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	if !parsed.Valid {
		return nil, ErrInvalidToken
	}

	mapClaims, ok := parsed.Claims.(jwtv5.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	return ClaimsFromMap(mapClaims)
}

// ClaimsFromMap 从 jwt claims 中取出用户和范围，数字形式的 uid 也接受
func ClaimsFromMap(m map[string]interface{}) (*Claims, error) {
	var uid string
	switch v := m[IdentityKey].(type) {
	case string:
		uid = v
	case float64:
		uid = fmt.Sprintf("%.0f", v)
	}
	if uid == "" {
		return nil, ErrUserIDNotFound
	}

	scope, _ := m[ScopeKey].(string)
	if scope != ScopePersistent {
		scope = ScopeSession
	}

	return &Claims{UserID: uid, Scope: scope}, nil
}
