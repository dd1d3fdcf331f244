package backend

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"go.uber.org/zap"

	"CaronaCondominio/config"
	"CaronaCondominio/internal/model"
	"CaronaCondominio/pkg/logger"
)

// Client 远端 REST 后端，用户、注册进度和 carona 的权威数据源
type Client interface {
	// Login POST /auth/login
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	// Logout POST /auth/logout，调用方只做尽力而为
	Logout(ctx context.Context, token string) error
	// GetMe GET /users/me
	GetMe(ctx context.Context, token string) (*model.User, error)
	// UpdatePosition PATCH /users/{id}/posicao-cadastro
	// body 包含 posicaoCadastroComplementar 和本步骤的字段，一次提交
	UpdatePosition(ctx context.Context, token, userID string, body map[string]any, idempotencyKey string) error

	ListCaronas(ctx context.Context, token string, filter model.CaronaFilter) ([]model.Carona, error)
	GetCarona(ctx context.Context, token string, id int64) (*model.Carona, error)
	MyCaronas(ctx context.Context, token string, role model.CaronaRole) ([]model.Carona, error)

	// Register POST /auth/register，不需要凭证
	Register(ctx context.Context, req RegisterRequest) (*RegisterResult, error)
	// ForgotPassword POST /auth/forgot-password，远端把验证码发到邮箱
	ForgotPassword(ctx context.Context, email string) (*MessageResult, error)
	// ChangePassword POST /auth/alterar-senha，用验证码设置新密码
	ChangePassword(ctx context.Context, email, code, newPassword string) (*MessageResult, error)

	ListCondominios(ctx context.Context, token string) ([]model.Condominio, error)
	ListBlocos(ctx context.Context, token, slug string) ([]model.Bloco, error)
	ListApartamentos(ctx context.Context, token, slug, blocoID string) ([]string, error)
}

// LoginResult 远端登录响应
type LoginResult struct {
	PosicaoCadastroComplementar *int   `json:"posicaoCadastroComplementar,omitempty"`
	Token                       string `json:"token"`
	UID                         string `json:"uid"`
	Email                       string `json:"email"`
	Name                        string `json:"name"`
	Role                        string `json:"role"`
	PendenciaCadastro           bool   `json:"pendenciaCadastro"`
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone,omitempty"`
}

// RegisterResult 注册成功的响应，注册后需要重新登录
type RegisterResult struct {
	UID     string `json:"uid"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Role    string `json:"role"`
	Message string `json:"message"`
}

// MessageResult 找回密码和修改密码的响应
type MessageResult struct {
	Mensagem string `json:"mensagem"`
	Sucesso  bool   `json:"sucesso"`
}

var (
	ErrUnauthorized = errors.New("backend: unauthorized")
	ErrNotFound     = errors.New("backend: not found")
	ErrConflict     = errors.New("backend: conflict")
	ErrBadRequest   = errors.New("backend: bad request")
)

// StatusError 远端返回非 2xx
type StatusError struct {
	Op     string
	Body   string
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: backend returned %d: %s", e.Op, e.Status, e.Body)
}

// Is 让 errors.Is(err, ErrUnauthorized) 按状态码判断
func (e *StatusError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	case ErrConflict:
		return e.Status == http.StatusConflict
	case ErrBadRequest:
		return e.Status == http.StatusBadRequest
	default:
		return false
	}
}

var (
	backendClient Client
	backendOnce   sync.Once
	backendErr    error
	backendMu     sync.RWMutex
)

// Init 根据 BACKEND_PROVIDER 初始化客户端
func Init() error {
	backendOnce.Do(func() {
		cfg := config.Cfg

		var c Client
		switch cfg.BackendProvider {
		case "http":
			c, backendErr = NewHTTPClient(cfg.BackendBaseURL, cfg.BackendTimeout())
		case "mock":
			c = NewMockClient()
		default:
			backendErr = fmt.Errorf("unsupported backend provider: %s", cfg.BackendProvider)
		}

		if backendErr != nil {
			logger.Logger.Error("Failed to initialize backend client", zap.Error(backendErr))
			return
		}

		SetClient(c)
		logger.Logger.Info("Backend client initialized",
			zap.String("provider", cfg.BackendProvider),
			zap.String("base_url", cfg.BackendBaseURL),
		)
	})

	return backendErr
}

// SetClient 替换全局客户端，测试中注入 mock
func SetClient(c Client) {
	backendMu.Lock()
	defer backendMu.Unlock()
	backendClient = c
}

func GetClient() Client {
	backendMu.RLock()
	defer backendMu.RUnlock()
	if backendClient == nil {
		panic("backend client not initialized, call backend.Init() first")
	}
	return backendClient
}
