package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol"

	"CaronaCondominio/config"
	"CaronaCondominio/internal/middleware"
	"CaronaCondominio/internal/model/dto"
	"CaronaCondominio/internal/service"
	"CaronaCondominio/pkg/errors"
	"CaronaCondominio/pkg/response"
)

// Login 登录并签发 BFF 会话令牌，同时写入 jwt cookie 供浏览器导航使用
// POST /v1/auth/login
func Login(ctx context.Context, c *app.RequestContext) {
	var req dto.LoginRequest
	if err := c.BindAndValidate(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	resp, err := service.Auth().Login(ctx, req)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	// 未勾选"记住我"时使用会话 cookie
	maxAge := 0
	if req.RememberMe {
		maxAge = resp.ExpiresIn
	}
	setTokenCookie(c, resp.AccessToken, maxAge)

	response.Success(ctx, c, resp)
}

// Logout 注销远端会话并清理本地凭证和进度
// POST /v1/auth/logout
func Logout(ctx context.Context, c *app.RequestContext) {
	userID, ok := middleware.GetUserID(ctx, c)
	if !ok {
		response.Error(ctx, c, errors.AuthRequired)
		return
	}

	if err := service.Auth().Logout(ctx, userID); err != nil {
		response.Error(ctx, c, err)
		return
	}

	setTokenCookie(c, "", -1)
	response.NoContent(ctx, c)
}

// Register 远端注册，不建立会话
// POST /v1/auth/register
func Register(ctx context.Context, c *app.RequestContext) {
	var req dto.RegisterRequest
	if err := c.BindAndValidate(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	resp, err := service.Auth().Register(ctx, req)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Success(ctx, c, resp)
}

// ForgotPassword 请求发送验证码
// POST /v1/auth/forgot-password
func ForgotPassword(ctx context.Context, c *app.RequestContext) {
	var req dto.ForgotPasswordRequest
	if err := c.BindAndValidate(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	resp, err := service.Auth().ForgotPassword(ctx, req)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Success(ctx, c, resp)
}

// ChangePassword POST /v1/auth/alterar-senha
func ChangePassword(ctx context.Context, c *app.RequestContext) {
	var req dto.ChangePasswordRequest
	if err := c.BindAndValidate(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	resp, err := service.Auth().ChangePassword(ctx, req)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Success(ctx, c, resp)
}

func setTokenCookie(c *app.RequestContext, value string, maxAge int) {
	c.SetCookie(middleware.TokenCookie, value, maxAge, "/", config.Cfg.CookieDomain,
		protocol.CookieSameSiteLaxMode, config.Cfg.CookieSecure, true)
}
