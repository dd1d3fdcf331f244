package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/hertz/pkg/app/client"
	"github.com/cloudwego/hertz/pkg/protocol"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"CaronaCondominio/internal/model"
	"CaronaCondominio/pkg/logger"
	"CaronaCondominio/pkg/metrics"
)

// IdempotencyHeader 进度提交携带的幂等键
const IdempotencyHeader = "X-Idempotency-Key"

// 错误响应体只保留前 512 字节用于日志
const maxErrorBody = 512

// HTTPClient 基于 hertz client 的远端实现
type HTTPClient struct {
	client  *client.Client
	baseURL string
	timeout time.Duration
}

func NewHTTPClient(baseURL string, timeout time.Duration) (*HTTPClient, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("backend base url is required")
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	c, err := client.NewClient(
		client.WithDialTimeout(5*time.Second),
		client.WithClientReadTimeout(timeout),
		client.WithMaxConnsPerHost(256),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create hertz client: %w", err)
	}

	return &HTTPClient{
		client:  c,
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
	}, nil
}

type call struct {
	body    any
	out     any
	headers map[string]string
	query   url.Values
	op      string
	method  string
	path    string
	token   string
}

func (c *HTTPClient) do(ctx context.Context, cl call) error {
	req := protocol.AcquireRequest()
	resp := protocol.AcquireResponse()
	defer protocol.ReleaseRequest(req)
	defer protocol.ReleaseResponse(resp)

	uri := c.baseURL + cl.path
	if len(cl.query) > 0 {
		uri += "?" + cl.query.Encode()
	}
	req.SetRequestURI(uri)
	req.SetMethod(cl.method)
	req.Header.Set("Accept", consts.MIMEApplicationJSON)
	if cl.token != "" {
		req.Header.Set("Authorization", "Bearer "+cl.token)
	}
	for k, v := range cl.headers {
		req.Header.Set(k, v)
	}
	if cl.body != nil {
		data, err := json.Marshal(cl.body)
		if err != nil {
			return fmt.Errorf("%s: failed to marshal body: %w", cl.op, err)
		}
		req.Header.SetContentTypeBytes([]byte(consts.MIMEApplicationJSON))
		req.SetBody(data)
	}
	otel.GetTextMapPropagator().Inject(ctx, &headerCarrier{header: &req.Header})

	start := time.Now()
	err := c.client.DoTimeout(ctx, req, resp, c.timeout)
	duration := time.Since(start)

	status := 0
	if err == nil {
		status = resp.StatusCode()
	}
	metrics.RecordBackendRequest(ctx, cl.op, status, duration.Seconds())

	if err != nil {
		logger.Ctx(ctx).Warn("Backend request failed",
			zap.String("operation", cl.op),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return fmt.Errorf("%s: %w", cl.op, err)
	}

	if status < 200 || status >= 300 {
		body := string(resp.Body())
		if len(body) > maxErrorBody {
			body = body[:maxErrorBody]
		}
		logger.Ctx(ctx).Warn("Backend returned error status",
			zap.String("operation", cl.op),
			zap.Int("status", status),
			zap.Duration("duration", duration),
		)
		return &StatusError{Op: cl.op, Status: status, Body: body}
	}

	if cl.out != nil && len(resp.Body()) > 0 {
		if err := json.Unmarshal(resp.Body(), cl.out); err != nil {
			return fmt.Errorf("%s: failed to decode response: %w", cl.op, err)
		}
	}
	return nil
}

func (c *HTTPClient) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	var result LoginResult
	err := c.do(ctx, call{
		op:     "login",
		method: consts.MethodPost,
		path:   "/auth/login",
		body:   map[string]string{"email": email, "password": password},
		out:    &result,
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) Logout(ctx context.Context, token string) error {
	return c.do(ctx, call{
		op:     "logout",
		method: consts.MethodPost,
		path:   "/auth/logout",
		token:  token,
	})
}

func (c *HTTPClient) GetMe(ctx context.Context, token string) (*model.User, error) {
	var user model.User
	err := c.do(ctx, call{
		op:     "get_me",
		method: consts.MethodGet,
		path:   "/users/me",
		token:  token,
		out:    &user,
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *HTTPClient) UpdatePosition(ctx context.Context, token, userID string, body map[string]any, idempotencyKey string) error {
	cl := call{
		op:     "update_position",
		method: consts.MethodPatch,
		path:   "/users/" + url.PathEscape(userID) + "/posicao-cadastro",
		token:  token,
		body:   body,
	}
	if idempotencyKey != "" {
		cl.headers = map[string]string{IdempotencyHeader: idempotencyKey}
	}
	return c.do(ctx, cl)
}

func (c *HTTPClient) ListCaronas(ctx context.Context, token string, filter model.CaronaFilter) ([]model.Carona, error) {
	var caronas []model.Carona
	err := c.do(ctx, call{
		op:     "list_caronas",
		method: consts.MethodGet,
		path:   "/caronas",
		query:  filterQuery(filter),
		token:  token,
		out:    &caronas,
	})
	if err != nil {
		return nil, err
	}
	return caronas, nil
}

func (c *HTTPClient) GetCarona(ctx context.Context, token string, id int64) (*model.Carona, error) {
	var carona model.Carona
	err := c.do(ctx, call{
		op:     "get_carona",
		method: consts.MethodGet,
		path:   "/caronas/" + strconv.FormatInt(id, 10),
		token:  token,
		out:    &carona,
	})
	if err != nil {
		return nil, err
	}
	return &carona, nil
}

func (c *HTTPClient) MyCaronas(ctx context.Context, token string, role model.CaronaRole) ([]model.Carona, error) {
	var caronas []model.Carona
	err := c.do(ctx, call{
		op:     "my_caronas",
		method: consts.MethodGet,
		path:   "/caronas/minhas-caronas/" + url.PathEscape(string(role)),
		token:  token,
		out:    &caronas,
	})
	if err != nil {
		return nil, err
	}
	return caronas, nil
}

func (c *HTTPClient) Register(ctx context.Context, req RegisterRequest) (*RegisterResult, error) {
	var result RegisterResult
	err := c.do(ctx, call{
		op:     "register",
		method: consts.MethodPost,
		path:   "/auth/register",
		body:   req,
		out:    &result,
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) ForgotPassword(ctx context.Context, email string) (*MessageResult, error) {
	var result MessageResult
	err := c.do(ctx, call{
		op:     "forgot_password",
		method: consts.MethodPost,
		path:   "/auth/forgot-password",
		body:   map[string]string{"email": email},
		out:    &result,
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) ChangePassword(ctx context.Context, email, code, newPassword string) (*MessageResult, error) {
	var result MessageResult
	err := c.do(ctx, call{
		op:     "change_password",
		method: consts.MethodPost,
		path:   "/auth/alterar-senha",
		body:   map[string]string{"email": email, "codigo": code, "novaSenha": newPassword},
		out:    &result,
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) ListCondominios(ctx context.Context, token string) ([]model.Condominio, error) {
	var condominios []model.Condominio
	err := c.do(ctx, call{
		op:     "list_condominios",
		method: consts.MethodGet,
		path:   "/condominios",
		token:  token,
		out:    &condominios,
	})
	if err != nil {
		return nil, err
	}
	return condominios, nil
}

func (c *HTTPClient) ListBlocos(ctx context.Context, token, slug string) ([]model.Bloco, error) {
	var blocos []model.Bloco
	err := c.do(ctx, call{
		op:     "list_blocos",
		method: consts.MethodGet,
		path:   "/condominios/" + url.PathEscape(slug) + "/blocos",
		token:  token,
		out:    &blocos,
	})
	if err != nil {
		return nil, err
	}
	return blocos, nil
}

func (c *HTTPClient) ListApartamentos(ctx context.Context, token, slug, blocoID string) ([]string, error) {
	var apartamentos []string
	err := c.do(ctx, call{
		op:     "list_apartamentos",
		method: consts.MethodGet,
		path:   "/condominios/" + url.PathEscape(slug) + "/blocos/" + url.PathEscape(blocoID) + "/apartamentos",
		token:  token,
		out:    &apartamentos,
	})
	if err != nil {
		return nil, err
	}
	return apartamentos, nil
}

// filterQuery 只发送有值的筛选条件
func filterQuery(f model.CaronaFilter) url.Values {
	q := url.Values{}
	if f.Origem != "" {
		q.Set("origem", f.Origem)
	}
	if f.Destino != "" {
		q.Set("destino", f.Destino)
	}
	if f.Data != "" {
		q.Set("data", f.Data)
	}
	if f.Status != "" {
		q.Set("status", string(f.Status))
	}
	if f.ApenasMinhasCaronas != nil {
		q.Set("apenasMinhasCaronas", strconv.FormatBool(*f.ApenasMinhasCaronas))
	}
	if f.Page > 0 {
		q.Set("page", strconv.Itoa(f.Page))
	}
	if f.PageSize > 0 {
		q.Set("pageSize", strconv.Itoa(f.PageSize))
	}
	return q
}

// headerCarrier 把 hertz 请求头适配为 otel propagation.TextMapCarrier
type headerCarrier struct {
	header *protocol.RequestHeader
}

func (h *headerCarrier) Get(key string) string {
	return h.header.Get(key)
}

func (h *headerCarrier) Set(key, value string) {
	h.header.Set(key, value)
}

func (h *headerCarrier) Keys() []string {
	keys := make([]string, 0)
	h.header.VisitAll(func(k, _ []byte) {
		keys = append(keys, string(k))
	})
	return keys
}
