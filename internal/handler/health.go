package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/cloudwego/hertz/pkg/app"

	"CaronaCondominio/internal/middleware"
	"CaronaCondominio/pkg/response"
	"CaronaCondominio/storage/redis"
)

// Healthz 存活检查
// GET /healthz
func Healthz(ctx context.Context, c *app.RequestContext) {
	response.Success(ctx, c, map[string]string{"status": "ok"})
}

// Readyz 就绪检查，redis 驱动下需要能 ping 通
// GET /readyz
func Readyz(ctx context.Context, c *app.RequestContext) {
	checks := map[string]string{"redis": "disabled"}

	if redis.Enabled() {
		pingCtx, cancel := context.WithTimeout(ctx, time.Second)
		defer cancel()
		if err := redis.Client().Ping(pingCtx).Err(); err != nil {
			checks["redis"] = err.Error()
			c.JSON(http.StatusServiceUnavailable, response.SuccessResponse{Data: checks})
			return
		}
		checks["redis"] = "ok"
	}

	response.Success(ctx, c, checks)
}

// GetCSRFToken 返回当前会话的 CSRF token
// GET /v1/csrf-token
func GetCSRFToken(ctx context.Context, c *app.RequestContext) {
	response.Success(ctx, c, map[string]string{
		"token":  middleware.CSRFToken(c),
		"header": middleware.CSRFHeader,
	})
}
