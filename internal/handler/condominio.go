package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"

	"CaronaCondominio/internal/middleware"
	"CaronaCondominio/internal/service"
	"CaronaCondominio/pkg/errors"
	"CaronaCondominio/pkg/response"
)

// ListCondominios GET /v1/condominios
func ListCondominios(ctx context.Context, c *app.RequestContext) {
	id, ok := middleware.GetIdentity(ctx, c)
	if !ok {
		response.Error(ctx, c, errors.AuthRequired)
		return
	}

	condominios, err := service.Condominio().List(ctx, *id)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Success(ctx, c, condominios)
}

// ListBlocos GET /v1/condominios/:slug/blocos
func ListBlocos(ctx context.Context, c *app.RequestContext) {
	id, ok := middleware.GetIdentity(ctx, c)
	if !ok {
		response.Error(ctx, c, errors.AuthRequired)
		return
	}

	blocos, err := service.Condominio().Blocos(ctx, *id, c.Param("slug"))
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Success(ctx, c, blocos)
}

// ListApartamentos GET /v1/condominios/:slug/blocos/:bloco_id/apartamentos
func ListApartamentos(ctx context.Context, c *app.RequestContext) {
	id, ok := middleware.GetIdentity(ctx, c)
	if !ok {
		response.Error(ctx, c, errors.AuthRequired)
		return
	}

	apartamentos, err := service.Condominio().Apartamentos(ctx, *id, c.Param("slug"), c.Param("bloco_id"))
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Success(ctx, c, apartamentos)
}
