package middleware

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"CaronaCondominio/pkg/logger"
)

const RequestIDHeader = "X-Request-Id"

// RequestIDMiddleware 透传或生成请求 ID，并把带 request_id 的 logger 放进 ctx
func RequestIDMiddleware() app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		requestID := string(c.GetHeader(RequestIDHeader))
		if requestID == "" || len(requestID) > 128 {
			requestID = uuid.NewString()
		}
		c.Response.Header.Set(RequestIDHeader, requestID)
		c.Set("request_id", requestID)

		ctx = logger.WithContext(ctx, logger.Logger.With(zap.String("request_id", requestID)))
		c.Next(ctx)
	}
}
