package middleware

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/hertz-contrib/csrf"
	"github.com/hertz-contrib/sessions"
	"github.com/hertz-contrib/sessions/cookie"
	"go.uber.org/zap"

	"CaronaCondominio/config"
	"CaronaCondominio/pkg/errors"
	"CaronaCondominio/pkg/logger"
	"CaronaCondominio/pkg/response"
)

const (
	csrfSessionName = "carona-csrf"
	CSRFHeader      = "X-CSRF-TOKEN"
)

// CSRFMiddleware cookie 会话 + CSRF 校验，浏览器提交向导表单时启用。
// 会话中间件必须在 csrf 之前执行。
func CSRFMiddleware() []app.HandlerFunc {
	store := cookie.NewStore([]byte(config.Cfg.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		Domain:   config.Cfg.CookieDomain,
		MaxAge:   config.Cfg.SessionTTLMinutes * 60,
		Secure:   config.Cfg.CookieSecure,
		HttpOnly: true,
	})

	return []app.HandlerFunc{
		sessions.New(csrfSessionName, store),
		csrf.New(
			csrf.WithSecret(config.Cfg.CSRFSecret),
			csrf.WithKeyLookUp("header:"+CSRFHeader),
			csrf.WithErrorFunc(func(ctx context.Context, c *app.RequestContext) {
				logger.Ctx(ctx).Info("CSRF check failed",
					zap.String("path", string(c.Path())),
					zap.String("reason", c.Errors.String()),
				)
				response.Error(ctx, c, errors.CSRFInvalid)
				c.Abort()
			}),
		),
	}
}

// CSRFToken 为当前会话生成 token，前端放进 X-CSRF-TOKEN 请求头
func CSRFToken(c *app.RequestContext) string {
	return csrf.GetToken(c)
}
