package response

import (
	"context"
	stderrors "errors"
	"net/http"

	"github.com/cloudwego/hertz/pkg/app"

	"CaronaCondominio/pkg/errors"
)

// ErrorResponse 统一的错误响应格式
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Details map[string]interface{} `json:"details,omitempty"`
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
}

// SuccessResponse 统一的成功响应格式
type SuccessResponse struct {
	Data interface{}            `json:"data"`
	Meta map[string]interface{} `json:"meta,omitempty"`
}

// resolve 从错误链中找出业务错误码，找不到时按内部错误处理
func resolve(err error) (errors.Definition, map[string]interface{}) {
	var details map[string]interface{}

	var verr *errors.ValidationError
	if stderrors.As(err, &verr) {
		details = map[string]interface{}{"fields": verr.Fields}
		return errors.ValidationFailed, details
	}

	var def errors.Definition
	if stderrors.As(err, &def) {
		return def, nil
	}

	return errors.Internal, nil
}

// Error 返回错误响应
func Error(ctx context.Context, c *app.RequestContext, err error) {
	ErrorWithDetails(ctx, c, err, nil)
}

// ErrorWithDetails 返回错误响应，details 会与错误自带的详情合并
func ErrorWithDetails(ctx context.Context, c *app.RequestContext, err error, details map[string]interface{}) {
	def, own := resolve(err)

	merged := own
	if len(details) > 0 {
		if merged == nil {
			merged = make(map[string]interface{}, len(details))
		}
		for k, v := range details {
			merged[k] = v
		}
	}

	c.JSON(def.HTTPStatus(), ErrorResponse{
		Error: ErrorDetail{
			Code:    def.Code,
			Message: def.Message,
			Details: merged,
		},
	})
}

func Success(ctx context.Context, c *app.RequestContext, data interface{}) {
	c.JSON(http.StatusOK, SuccessResponse{
		Data: data,
	})
}

func SuccessWithMeta(ctx context.Context, c *app.RequestContext, data interface{}, meta map[string]interface{}) {
	c.JSON(http.StatusOK, SuccessResponse{
		Data: data,
		Meta: meta,
	})
}

func BindError(ctx context.Context, c *app.RequestContext, err error) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error: ErrorDetail{
			Code:    errors.InvalidRequest.Code,
			Message: err.Error(),
		},
	})
}

// Redirect 向导守卫的跳转：浏览器导航用 302，API 调用用 JSON 携带目标路由
func Redirect(ctx context.Context, c *app.RequestContext, err error, location string) {
	method := string(c.Method())
	if method == http.MethodGet || method == http.MethodHead {
		c.Redirect(http.StatusFound, []byte(location))
		return
	}
	ErrorWithDetails(ctx, c, err, map[string]interface{}{"redirect": location})
}

// NoContent 返回 204 No Content
func NoContent(ctx context.Context, c *app.RequestContext) {
	c.Status(http.StatusNoContent)
}
