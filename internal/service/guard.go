package service

import (
	"context"
	stderrors "errors"
	"strings"
	"sync"

	"go.uber.org/zap"

	"CaronaCondominio/internal/model"
	"CaronaCondominio/internal/wizard"
	"CaronaCondominio/pkg/errors"
	"CaronaCondominio/pkg/logger"
	"CaronaCondominio/pkg/metrics"
)

// 守卫判定原因，用于日志和指标
const (
	ReasonAllowed         = "allowed"
	ReasonNoCredential    = "no_credential"
	ReasonSessionExpired  = "session_expired"
	ReasonProgressFailure = "progress_unavailable"
	ReasonCompleted       = "completed"
	ReasonWrongStep       = "wrong_step"
)

var (
	guardService *GuardService
	guardOnce    sync.Once
)

func Guard() *GuardService {
	guardOnce.Do(func() {
		guardService = NewGuardService(Progress())
	})
	return guardService
}

// Decision 守卫对一次向导页面访问的判定
type Decision struct {
	Progress *model.UserProgress
	Redirect string
	Reason   string
	Position wizard.Position
	Allow    bool
	// Err 拒绝时返回给 API 调用方的错误
	Err error
}

// GuardService 根据当前进度决定向导页面是否可访问。
// 只允许进度所在的那一页，前进和后退都会被重定向。
type GuardService struct {
	progress *ProgressService
}

func NewGuardService(progress *ProgressService) *GuardService {
	return &GuardService{progress: progress}
}

// Evaluate 判定 route 是否可访问。id 为 nil 表示请求未携带 BFF 会话。
func (s *GuardService) Evaluate(ctx context.Context, id *Identity, route string) Decision {
	d := s.evaluate(ctx, id, route)
	metrics.RecordGuardDecision(ctx, guardRouteLabel(route), d.Reason)

	if !d.Allow {
		fields := []zap.Field{
			zap.String("route", route),
			zap.String("redirect", d.Redirect),
			zap.String("reason", d.Reason),
		}
		if id != nil {
			fields = append(fields, zap.String("user_id", id.UserID))
		}
		logger.Ctx(ctx).Debug("Wizard guard redirect", fields...)
	}
	return d
}

// guardRouteLabel 指标中的 route 标签，非向导页面统一记为 other
func guardRouteLabel(route string) string {
	if !wizard.IsWizardRoute(route) {
		return "other"
	}
	return strings.TrimRight(route, "/")
}

func (s *GuardService) evaluate(ctx context.Context, id *Identity, route string) Decision {
	// 没有凭证直接去登录页，不访问远端
	if id == nil || !s.progress.HasCredential(ctx, *id) {
		return Decision{Redirect: wizard.LoginRoute, Reason: ReasonNoCredential, Err: errors.AuthRequired}
	}

	progress, err := s.progress.GetCurrentProgress(ctx, *id)
	if err != nil {
		if stderrors.Is(err, errors.SessionExpired) {
			return Decision{Redirect: wizard.SessionExpiredRoute, Reason: ReasonSessionExpired, Err: err}
		}
		logger.Ctx(ctx).Warn("Wizard guard could not resolve progress",
			zap.String("user_id", id.UserID),
			zap.Error(err),
		)
		return Decision{Redirect: wizard.LoginRoute, Reason: ReasonProgressFailure, Err: err}
	}

	position := wizard.Position(progress.Position)
	if position < wizard.MinPosition {
		position = wizard.MinPosition
	}

	if wizard.IsComplete(position) {
		return Decision{
			Progress: progress,
			Redirect: wizard.PostWizardRoute,
			Reason:   ReasonCompleted,
			Position: position,
			Err:      errors.WizardRedirect,
		}
	}

	expected := wizard.RouteForPosition(position)
	if requested, ok := wizard.PositionForRoute(route); !ok || requested != position {
		return Decision{
			Progress: progress,
			Redirect: expected,
			Reason:   ReasonWrongStep,
			Position: position,
			Err:      errors.WizardRedirect,
		}
	}

	return Decision{Progress: progress, Reason: ReasonAllowed, Position: position, Allow: true}
}
