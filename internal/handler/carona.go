package handler

import (
	"context"
	"strconv"

	"github.com/cloudwego/hertz/pkg/app"

	"CaronaCondominio/internal/middleware"
	"CaronaCondominio/internal/model/dto"
	"CaronaCondominio/internal/service"
	"CaronaCondominio/pkg/errors"
	"CaronaCondominio/pkg/response"
)

// ListCaronas carona 列表，向导完成后的目的地
// GET /v1/caronas
// GET /app/caronas/listar
func ListCaronas(ctx context.Context, c *app.RequestContext) {
	id, ok := middleware.GetIdentity(ctx, c)
	if !ok {
		response.Error(ctx, c, errors.AuthRequired)
		return
	}

	var q dto.ListCaronasQuery
	if err := c.BindQuery(&q); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	data, err := service.Carona().List(ctx, *id, q)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.SuccessWithMeta(ctx, c, data.Items, map[string]interface{}{
		"page":      data.Page,
		"page_size": data.PageSize,
	})
}

// GetCarona GET /v1/caronas/:carona_id
func GetCarona(ctx context.Context, c *app.RequestContext) {
	id, ok := middleware.GetIdentity(ctx, c)
	if !ok {
		response.Error(ctx, c, errors.AuthRequired)
		return
	}

	caronaID, err := strconv.ParseInt(c.Param("carona_id"), 10, 64)
	if err != nil || caronaID <= 0 {
		response.Error(ctx, c, errors.InvalidRequest)
		return
	}

	item, err := service.Carona().Get(ctx, *id, caronaID)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Success(ctx, c, item)
}

// MyCaronas GET /v1/caronas/minhas/:role
func MyCaronas(ctx context.Context, c *app.RequestContext) {
	id, ok := middleware.GetIdentity(ctx, c)
	if !ok {
		response.Error(ctx, c, errors.AuthRequired)
		return
	}

	items, err := service.Carona().Mine(ctx, *id, c.Param("role"))
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Success(ctx, c, items)
}
