package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"

	"CaronaCondominio/internal/middleware"
	"CaronaCondominio/internal/service"
	"CaronaCondominio/pkg/errors"
	"CaronaCondominio/pkg/response"
)

// GetProgress 当前补充注册进度以及应该打开的页面
// GET /v1/progress
func GetProgress(ctx context.Context, c *app.RequestContext) {
	id, ok := middleware.GetIdentity(ctx, c)
	if !ok {
		response.Error(ctx, c, errors.AuthRequired)
		return
	}

	data, err := service.Step().Current(ctx, *id)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Success(ctx, c, data)
}
