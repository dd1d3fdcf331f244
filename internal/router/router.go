package router

import (
	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"

	"CaronaCondominio/config"
	"CaronaCondominio/internal/handler"
	"CaronaCondominio/internal/middleware"
	"CaronaCondominio/internal/wizard"
)

// wizardSteps 向导页面路由，GET 加载，POST 提交
var wizardSteps = []string{
	wizard.RouteWelcome,
	wizard.RoutePersonal,
	wizard.RouteCondo,
	wizard.RouteTerms,
	wizard.RouteSuccess,
}

func Register(h *server.Hertz, extra ...app.HandlerFunc) {
	h.Use(middleware.RecoverMiddleware())
	h.Use(middleware.RequestIDMiddleware())
	h.Use(middleware.CORSMiddleware())
	h.Use(extra...)
	h.Use(middleware.OpenTelemetryMiddleware())

	h.GET("/healthz", handler.Healthz)
	h.GET("/readyz", handler.Readyz)

	// 浏览器提交表单时才需要 CSRF，API 客户端使用 Authorization 头
	var csrf []app.HandlerFunc
	if config.Cfg.CSRFEnabled {
		csrf = middleware.CSRFMiddleware()
	}

	v1 := h.Group("/v1", csrf...)
	if config.Cfg.CSRFEnabled {
		v1.GET("/csrf-token", handler.GetCSRFToken)
	}

	// 认证相关路由
	auth := v1.Group("/auth")
	{
		auth.POST("/login", middleware.LoginRateLimitMiddleware(), handler.Login)
		auth.POST("/logout", middleware.AuthMiddleware(), handler.Logout)
		auth.POST("/register", middleware.AccountRateLimitMiddleware(), handler.Register)
		auth.POST("/forgot-password", middleware.AccountRateLimitMiddleware(), handler.ForgotPassword)
		auth.POST("/alterar-senha", middleware.AccountRateLimitMiddleware(), handler.ChangePassword)
	}

	v1.GET("/progress", middleware.AuthMiddleware(), handler.GetProgress)

	// carona 路由
	caronas := v1.Group("/caronas")
	caronas.Use(middleware.AuthMiddleware())
	{
		caronas.GET("", handler.ListCaronas)
		caronas.GET("/minhas/:role", handler.MyCaronas)
		caronas.GET("/:carona_id", handler.GetCarona)
	}

	// 小区查询，向导第 3 步的选项
	condominios := v1.Group("/condominios")
	condominios.Use(middleware.AuthMiddleware())
	{
		condominios.GET("", handler.ListCondominios)
		condominios.GET("/:slug/blocos", handler.ListBlocos)
		condominios.GET("/:slug/blocos/:bloco_id/apartamentos", handler.ListApartamentos)
	}

	// 补充注册向导：每个页面都经过守卫，只有当前进度对应的页面可以访问
	pages := h.Group("/app", csrf...)
	onboarding := pages.Group("/cadastro-complementar", middleware.OptionalIdentity(), middleware.WizardGuard())
	{
		// 裸路径交给守卫重定向到当前页面
		onboarding.GET("", handler.GetWizardStep)
		for _, route := range wizardSteps {
			rel := route[len("/app/cadastro-complementar"):]
			onboarding.GET(rel, handler.GetWizardStep)
			onboarding.POST(rel, middleware.SubmitRateLimitMiddleware(), handler.SubmitWizardStep)
		}
	}

	// 向导完成后的目的地只要求登录
	pages.GET("/caronas/listar", middleware.AuthMiddleware(), handler.ListCaronas)
}
