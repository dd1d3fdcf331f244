package middleware

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"

	"CaronaCondominio/internal/model"
	"CaronaCondominio/internal/service"
	"CaronaCondominio/internal/wizard"
	"CaronaCondominio/pkg/response"
)

const (
	progressKey = "wizard_progress"
	positionKey = "wizard_position"
)

// WizardGuard 向导页面守卫，只放行与当前进度一致的页面。
// 浏览器导航（GET/HEAD）收到 302，其余请求收到带 details.redirect 的 JSON。
func WizardGuard() app.HandlerFunc {
	return WizardGuardWith(service.Guard())
}

func WizardGuardWith(guard *service.GuardService) app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		id, _ := GetIdentity(ctx, c)
		decision := guard.Evaluate(ctx, id, string(c.Path()))

		if !decision.Allow {
			response.Redirect(ctx, c, decision.Err, decision.Redirect)
			c.Abort()
			return
		}

		c.Set(progressKey, decision.Progress)
		c.Set(positionKey, decision.Position)
		c.Next(ctx)
	}
}

// GetWizardPosition 守卫放行后当前页面对应的位置
func GetWizardPosition(c *app.RequestContext) (wizard.Position, bool) {
	v, ok := c.Get(positionKey)
	if !ok {
		return 0, false
	}
	p, ok := v.(wizard.Position)
	return p, ok
}

// GetWizardProgress 守卫读取到的进度，处理器不需要再读一次
func GetWizardProgress(c *app.RequestContext) (*model.UserProgress, bool) {
	v, ok := c.Get(progressKey)
	if !ok {
		return nil, false
	}
	p, ok := v.(*model.UserProgress)
	return p, ok && p != nil
}
