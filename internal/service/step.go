package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"CaronaCondominio/internal/model"
	"CaronaCondominio/internal/model/dto"
	"CaronaCondominio/internal/wizard"
	"CaronaCondominio/pkg/errors"
	"CaronaCondominio/pkg/logger"
	"CaronaCondominio/pkg/metrics"
)

var (
	stepService *StepService
	stepOnce    sync.Once
)

func Step() *StepService {
	stepOnce.Do(func() {
		stepService = NewStepService(Progress(), time.Now)
	})
	return stepService
}

// StepService 向导页面的加载和提交
type StepService struct {
	progress *ProgressService
	now      func() time.Time
}

func NewStepService(progress *ProgressService, now func() time.Time) *StepService {
	if now == nil {
		now = time.Now
	}
	return &StepService{progress: progress, now: now}
}

// Load 返回页面预填值，调用前守卫已确认 position 就是当前进度。
// progress 为守卫读到的进度，nil 时重新读取。
func (s *StepService) Load(ctx context.Context, id Identity, position wizard.Position, progress *model.UserProgress) (*dto.StepView, error) {
	step, ok := wizard.StepFor(position)
	if !ok {
		return nil, errors.PositionInvalid
	}

	if progress == nil {
		var err error
		if progress, err = s.progress.GetCurrentProgress(ctx, id); err != nil {
			return nil, err
		}
	}

	view := &dto.StepView{
		Values:   step.Prefill(progress),
		Step:     step.Name,
		Route:    step.Route,
		Position: int(step.Position),
	}
	if step.Position > wizard.MinPosition {
		view.Previous = wizard.RouteForPosition(wizard.Previous(step.Position))
	}
	return view, nil
}

// Submit 校验输入并把进度推进到下一位置。
// 校验失败时不访问远端，进度不变；远端失败时进度同样不变，用户可以重试。
func (s *StepService) Submit(ctx context.Context, id Identity, position wizard.Position, in wizard.Input) (*dto.StepResult, error) {
	step, ok := wizard.StepFor(position)
	if !ok {
		return nil, errors.PositionInvalid
	}

	fields, err := step.Validate(in, s.now())
	if err != nil {
		metrics.RecordStepValidationFailure(ctx, int(position))
		logger.Ctx(ctx).Debug("Wizard step validation failed",
			zap.String("user_id", id.UserID),
			zap.String("step", step.Name),
			zap.Error(err),
		)
		return nil, err
	}

	next := wizard.Next(position)
	if _, err := s.progress.CommitStep(ctx, id, next, fields); err != nil {
		return nil, err
	}

	return &dto.StepResult{
		NextRoute: step.NextRoute(),
		Position:  int(next),
		Completed: wizard.IsComplete(next),
	}, nil
}

// Current 当前进度的视图，供 GET /v1/progress 使用
func (s *StepService) Current(ctx context.Context, id Identity) (*dto.ProgressData, error) {
	progress, err := s.progress.GetCurrentProgress(ctx, id)
	if err != nil {
		return nil, err
	}

	position := wizard.Position(progress.Position)
	stepData := progress.StepData
	if stepData == nil {
		stepData = map[string]string{}
	}
	return &dto.ProgressData{
		StepData:        stepData,
		Route:           wizard.RouteForPosition(position),
		Position:        progress.Position,
		Completed:       wizard.IsComplete(position),
		AcceptedTerms:   progress.AcceptedTerms,
		AcceptedPrivacy: progress.AcceptedPrivacy,
	}, nil
}
