package service

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"go.uber.org/zap"

	"CaronaCondominio/internal/model/dto"
	"CaronaCondominio/internal/store"
	"CaronaCondominio/internal/wizard"
	"CaronaCondominio/pkg/backend"
	"CaronaCondominio/pkg/errors"
	"CaronaCondominio/pkg/logger"
	"CaronaCondominio/pkg/token"
	"CaronaCondominio/utils"
)

// ChangePasswordRoute 找回密码后输入验证码的页面
const ChangePasswordRoute = "/alterar-senha"

// ResetCodeLength 邮件验证码长度
const ResetCodeLength = 6

const reasonRequired = "is required"

var (
	authService *AuthService
	authOnce    sync.Once
)

func Auth() *AuthService {
	authOnce.Do(func() {
		authService = NewAuthService(backend.GetClient(), Progress())
	})
	return authService
}

// AuthService 登录、登出、注册和找回密码。远端凭证只保存在服务端存储中，
// 浏览器拿到的是 BFF 自己签发的会话令牌。
type AuthService struct {
	backend  backend.Client
	progress *ProgressService
}

func NewAuthService(client backend.Client, progress *ProgressService) *AuthService {
	return &AuthService{backend: client, progress: progress}
}

// Login 远端登录，保存凭证，拉取进度并计算登录后的跳转
func (s *AuthService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" {
		verr := errors.NewValidationError()
		if email == "" {
			verr.Add("email", "is required")
		}
		if req.Password == "" {
			verr.Add("password", "is required")
		}
		return nil, verr
	}

	result, err := s.backend.Login(ctx, email, req.Password)
	if err != nil {
		if stderrors.Is(err, backend.ErrUnauthorized) {
			return nil, errors.InvalidCredentials
		}
		logger.Ctx(ctx).Error("Backend login failed", zap.String("email", email), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", errors.BackendUnavailable, err)
	}

	scope := store.ScopeSession
	if req.RememberMe {
		scope = store.ScopePersistent
	}
	id := Identity{UserID: result.UID, Scope: scope}

	if err := s.progress.Seed(ctx, id, result.Token); err != nil {
		return nil, fmt.Errorf("%w: %w", errors.BackendUnavailable, err)
	}

	// 登录响应里的位置作为兜底，GET /users/me 失败时仍能跳转
	position := wizard.MinPosition
	if result.PosicaoCadastroComplementar != nil {
		if p := wizard.Position(*result.PosicaoCadastroComplementar); wizard.IsValid(p) {
			position = p
		}
	}
	if progress, err := s.progress.GetCurrentProgress(ctx, id); err == nil {
		position = wizard.Position(progress.Position)
	} else {
		logger.Ctx(ctx).Warn("Progress unavailable after login, using login response",
			zap.String("user_id", id.UserID),
			zap.Error(err),
		)
	}

	accessToken, expiresIn, err := token.GenerateAccessToken(id.UserID, string(id.Scope))
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	logger.Ctx(ctx).Info("User logged in",
		zap.String("user_id", id.UserID),
		zap.String("scope", string(id.Scope)),
		zap.Int("position", int(position)),
	)

	return &dto.LoginResponse{
		AccessToken: accessToken,
		ExpiresIn:   expiresIn,
		Redirect:    wizard.RouteForPosition(position),
		User: dto.AuthUserSnapshot{
			ID:                result.UID,
			Email:             result.Email,
			Name:              result.Name,
			Role:              result.Role,
			Position:          int(position),
			PendenciaCadastro: !wizard.IsComplete(position),
			RememberMe:        req.RememberMe,
		},
	}, nil
}

// Logout 尽力通知远端，然后清理两个范围内的本地数据
func (s *AuthService) Logout(ctx context.Context, userID string) error {
	for _, scope := range []store.Scope{store.ScopeSession, store.ScopePersistent} {
		remote, err := s.progress.Token(ctx, Identity{UserID: userID, Scope: scope})
		if err != nil {
			continue
		}
		if err := s.backend.Logout(ctx, remote); err != nil {
			logger.Ctx(ctx).Warn("Backend logout failed", zap.String("user_id", userID), zap.Error(err))
		}
		break
	}

	if err := s.progress.Clear(ctx, userID); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	logger.Ctx(ctx).Info("User logged out", zap.String("user_id", userID))
	return nil
}

// Register 远端注册。注册不建立会话，成功后回到登录页
func (s *AuthService) Register(ctx context.Context, req dto.RegisterRequest) (*dto.RegisterResponse, error) {
	name := strings.Join(strings.Fields(req.Name), " ")
	email := strings.ToLower(strings.TrimSpace(req.Email))
	phone := utils.StripNonDigits(req.Phone)

	verr := errors.NewValidationError()
	switch {
	case name == "":
		verr.Add("name", reasonRequired)
	case !strings.Contains(name, " "):
		verr.Add("name", "must include first and last name")
	}
	switch {
	case email == "":
		verr.Add("email", reasonRequired)
	case !utils.ValidateEmail(email):
		verr.Add("email", "must be a valid email address")
	}
	switch {
	case req.Password == "":
		verr.Add("password", reasonRequired)
	case !utils.StrongPassword(req.Password):
		verr.Add("password", fmt.Sprintf("must have at least %d characters with upper case, lower case and a digit", utils.MinPasswordLength))
	}
	if strings.TrimSpace(req.Phone) != "" && !utils.ValidatePhone(phone) {
		verr.Add("phone", "must have 11 digits")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	result, err := s.backend.Register(ctx, backend.RegisterRequest{
		Name:     name,
		Email:    email,
		Password: req.Password,
		Phone:    phone,
	})
	if err != nil {
		if stderrors.Is(err, backend.ErrConflict) {
			return nil, errors.EmailAlreadyRegistered
		}
		logger.Ctx(ctx).Error("Backend register failed", zap.String("email", email), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", errors.BackendUnavailable, err)
	}

	logger.Ctx(ctx).Info("User registered", zap.String("user_id", result.UID))
	return &dto.RegisterResponse{
		ID:       result.UID,
		Email:    result.Email,
		Name:     result.Name,
		Role:     result.Role,
		Message:  result.Message,
		Redirect: wizard.LoginRoute,
	}, nil
}

// ForgotPassword 请求远端发送验证码，成功后跳到输入验证码的页面
func (s *AuthService) ForgotPassword(ctx context.Context, req dto.ForgotPasswordRequest) (*dto.MessageResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	verr := errors.NewValidationError()
	switch {
	case email == "":
		verr.Add("email", reasonRequired)
	case !utils.ValidateEmail(email):
		verr.Add("email", "must be a valid email address")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	result, err := s.backend.ForgotPassword(ctx, email)
	if err != nil {
		logger.Ctx(ctx).Error("Backend forgot password failed", zap.String("email", email), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", errors.BackendUnavailable, err)
	}

	resp := &dto.MessageResponse{Success: result.Sucesso, Message: result.Mensagem}
	if result.Sucesso {
		resp.Redirect = ChangePasswordRoute + "?" + url.Values{"email": {email}}.Encode()
	}
	return resp, nil
}

// ChangePassword 校验验证码和两次输入的新密码，成功后回到登录页
func (s *AuthService) ChangePassword(ctx context.Context, req dto.ChangePasswordRequest) (*dto.MessageResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	code := strings.TrimSpace(req.Codigo)

	verr := errors.NewValidationError()
	if email == "" {
		verr.Add("email", reasonRequired)
	}
	switch {
	case code == "":
		verr.Add("codigo", reasonRequired)
	case len(code) != ResetCodeLength:
		verr.Add("codigo", fmt.Sprintf("must have %d characters", ResetCodeLength))
	}
	if req.NovaSenha == "" {
		verr.Add("novaSenha", reasonRequired)
	}
	switch {
	case req.ConfirmarSenha == "":
		verr.Add("confirmarSenha", reasonRequired)
	case req.NovaSenha != req.ConfirmarSenha:
		verr.Add("confirmarSenha", "passwords do not match")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	result, err := s.backend.ChangePassword(ctx, email, code, req.NovaSenha)
	if err != nil {
		if stderrors.Is(err, backend.ErrBadRequest) {
			return nil, errors.ResetCodeInvalid
		}
		logger.Ctx(ctx).Error("Backend change password failed", zap.String("email", email), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", errors.BackendUnavailable, err)
	}

	resp := &dto.MessageResponse{Success: result.Sucesso, Message: result.Mensagem}
	if result.Sucesso {
		resp.Redirect = wizard.LoginRoute
		logger.Ctx(ctx).Info("Password changed", zap.String("email", email))
	}
	return resp, nil
}
