package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/hertz-contrib/jwt"

	"CaronaCondominio/internal/service"
	"CaronaCondominio/internal/store"
	"CaronaCondominio/pkg/errors"
	"CaronaCondominio/pkg/response"
	"CaronaCondominio/pkg/token"
)

const (
	IdentityKey = token.IdentityKey
	// TokenCookie 浏览器导航携带的 BFF 会话 cookie
	TokenCookie = "jwt"
)

var authMiddleware *jwt.HertzJWTMiddleware

func initAuthMiddleware() error {
	// 使用 token 包中共享的生成器
	sharedGenerator := token.GetGenerator()
	if sharedGenerator == nil {
		return fmt.Errorf("token generator not initialized, call token.Init() first")
	}

	mw, err := newAuthMiddleware(sharedGenerator.Key, sharedGenerator.TimeFunc)
	if err != nil {
		return err
	}
	authMiddleware = mw
	return nil
}

func newAuthMiddleware(key []byte, timeFunc func() time.Time) (*jwt.HertzJWTMiddleware, error) {
	return jwt.New(&jwt.HertzJWTMiddleware{
		Realm:       "carona-condominio",
		Key:         key,
		IdentityKey: IdentityKey,
		TimeFunc:    timeFunc,

		IdentityHandler: func(ctx context.Context, c *app.RequestContext) interface{} {
			return identityFromClaims(jwt.ExtractClaims(ctx, c))
		},

		Unauthorized: func(ctx context.Context, c *app.RequestContext, code int, message string) {
			response.ErrorWithDetails(ctx, c, errors.AuthRequired, map[string]interface{}{"reason": message})
		},

		TokenLookup:   "header: Authorization, query: token, cookie: " + TokenCookie,
		TokenHeadName: "Bearer",
	})
}

func identityFromClaims(claims jwt.MapClaims) *service.Identity {
	parsed, err := token.ClaimsFromMap(claims)
	if err != nil {
		return nil
	}
	return &service.Identity{UserID: parsed.UserID, Scope: store.ParseScope(parsed.Scope)}
}

// AuthMiddleware 要求有效的 BFF 会话令牌，否则返回 401 AUTH_REQUIRED
func AuthMiddleware() app.HandlerFunc {
	if authMiddleware == nil {
		panic("AuthMiddleware not initialized, call Init() first")
	}
	return authMiddleware.MiddlewareFunc()
}

// OptionalIdentity 解析令牌但不拦截请求，向导守卫据此决定跳转。
// 令牌缺失、过期或无效时上下文里没有身份。
func OptionalIdentity() app.HandlerFunc {
	if authMiddleware == nil {
		panic("AuthMiddleware not initialized, call Init() first")
	}
	return optionalIdentity(authMiddleware)
}

func optionalIdentity(mw *jwt.HertzJWTMiddleware) app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		if claims, err := mw.GetClaimsFromJWT(ctx, c); err == nil {
			if id := identityFromClaims(claims); id != nil {
				c.Set(IdentityKey, id)
			}
		}
		c.Next(ctx)
	}
}

// GetIdentity 从请求上下文中取出已认证的身份
func GetIdentity(ctx context.Context, c *app.RequestContext) (*service.Identity, bool) {
	v, exists := c.Get(IdentityKey)
	if !exists {
		return nil, false
	}
	id, ok := v.(*service.Identity)
	if !ok || id == nil {
		return nil, false
	}
	return id, true
}

// GetUserID 从请求上下文中获取用户ID
func GetUserID(ctx context.Context, c *app.RequestContext) (string, bool) {
	id, ok := GetIdentity(ctx, c)
	if !ok {
		return "", false
	}
	return id.UserID, true
}
