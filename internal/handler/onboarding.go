package handler

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/cloudwego/hertz/pkg/app"

	"CaronaCondominio/internal/middleware"
	"CaronaCondominio/internal/service"
	"CaronaCondominio/internal/wizard"
	"CaronaCondominio/pkg/errors"
	"CaronaCondominio/pkg/response"
)

// GetWizardStep 打开向导页面，返回预填值。守卫已确认这是当前进度对应的页面。
// GET /app/cadastro-complementar/{step}
func GetWizardStep(ctx context.Context, c *app.RequestContext) {
	id, position, ok := wizardContext(ctx, c)
	if !ok {
		return
	}

	progress, _ := middleware.GetWizardProgress(c)
	view, err := service.Step().Load(ctx, *id, position, progress)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Success(ctx, c, view)
}

// SubmitWizardStep 校验并提交本页，成功后返回下一页路由。
// 失败时原样回显用户输入，页面不会丢失已填写的内容。
// POST /app/cadastro-complementar/{step}
func SubmitWizardStep(ctx context.Context, c *app.RequestContext) {
	id, position, ok := wizardContext(ctx, c)
	if !ok {
		return
	}

	in, err := bindInput(c)
	if err != nil {
		response.BindError(ctx, c, err)
		return
	}

	result, err := service.Step().Submit(ctx, *id, position, in)
	if err != nil {
		response.ErrorWithDetails(ctx, c, err, map[string]interface{}{"values": in})
		return
	}
	response.Success(ctx, c, result)
}

func wizardContext(ctx context.Context, c *app.RequestContext) (*service.Identity, wizard.Position, bool) {
	id, ok := middleware.GetIdentity(ctx, c)
	if !ok {
		response.Error(ctx, c, errors.AuthRequired)
		return nil, 0, false
	}
	position, ok := middleware.GetWizardPosition(c)
	if !ok {
		response.Error(ctx, c, errors.PositionInvalid)
		return nil, 0, false
	}
	return id, position, true
}

// bindInput JSON 请求体或表单，空请求体视为没有字段
func bindInput(c *app.RequestContext) (wizard.Input, error) {
	in := wizard.Input{}

	if bytes.Contains(c.ContentType(), []byte("json")) {
		body := bytes.TrimSpace(c.Request.Body())
		if len(body) == 0 {
			return in, nil
		}
		if err := json.Unmarshal(body, &in); err != nil {
			return nil, err
		}
		return in, nil
	}

	c.PostArgs().VisitAll(func(key, value []byte) {
		in[string(key)] = string(value)
	})
	return in, nil
}
