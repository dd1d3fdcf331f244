package service

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"

	"CaronaCondominio/internal/model"
	"CaronaCondominio/internal/model/dto"
	"CaronaCondominio/pkg/backend"
	"CaronaCondominio/pkg/errors"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

var (
	caronaService *CaronaService
	caronaOnce    sync.Once
)

func Carona() *CaronaService {
	caronaOnce.Do(func() {
		caronaService = NewCaronaService(backend.GetClient(), Progress())
	})
	return caronaService
}

// CaronaService 向导完成后的目的地：carona 列表，数据直接透传远端
type CaronaService struct {
	backend  backend.Client
	progress *ProgressService
}

func NewCaronaService(client backend.Client, progress *ProgressService) *CaronaService {
	return &CaronaService{backend: client, progress: progress}
}

func (s *CaronaService) List(ctx context.Context, id Identity, q dto.ListCaronasQuery) (*dto.ListCaronasData, error) {
	filter, err := buildFilter(q)
	if err != nil {
		return nil, err
	}

	remote, err := s.progress.Token(ctx, id)
	if err != nil {
		return nil, err
	}

	caronas, err := s.backend.ListCaronas(ctx, remote, filter)
	if err != nil {
		return nil, classifyBackendError(ctx, s.progress.stores, id, err, errors.BackendUnavailable)
	}

	return &dto.ListCaronasData{
		Items:    toItems(caronas),
		Page:     filter.Page,
		PageSize: filter.PageSize,
	}, nil
}

func (s *CaronaService) Get(ctx context.Context, id Identity, caronaID int64) (*dto.CaronaItem, error) {
	remote, err := s.progress.Token(ctx, id)
	if err != nil {
		return nil, err
	}

	carona, err := s.backend.GetCarona(ctx, remote, caronaID)
	if err != nil {
		if stderrors.Is(err, backend.ErrNotFound) {
			return nil, errors.RideNotFound
		}
		return nil, classifyBackendError(ctx, s.progress.stores, id, err, errors.BackendUnavailable)
	}

	item := dto.CaronaItem{Carona: *carona, VagasLivres: carona.VagasLivres()}
	return &item, nil
}

// Mine 当前用户作为司机或乘客的 carona
func (s *CaronaService) Mine(ctx context.Context, id Identity, role string) ([]dto.CaronaItem, error) {
	r := model.CaronaRole(role)
	if r != model.RoleMotorista && r != model.RolePassageiro {
		verr := errors.NewValidationError()
		verr.Add("role", fmt.Sprintf("must be %s or %s", model.RoleMotorista, model.RolePassageiro))
		return nil, verr
	}

	remote, err := s.progress.Token(ctx, id)
	if err != nil {
		return nil, err
	}

	caronas, err := s.backend.MyCaronas(ctx, remote, r)
	if err != nil {
		return nil, classifyBackendError(ctx, s.progress.stores, id, err, errors.BackendUnavailable)
	}
	return toItems(caronas), nil
}

func buildFilter(q dto.ListCaronasQuery) (model.CaronaFilter, error) {
	filter := model.CaronaFilter{
		ApenasMinhasCaronas: q.ApenasMinhasCaronas,
		Origem:              q.Origem,
		Destino:             q.Destino,
		Data:                q.Data,
		Page:                q.Page,
		PageSize:            q.PageSize,
	}

	if q.Status != "" {
		status := model.CaronaStatus(q.Status)
		if !status.IsValid() {
			verr := errors.NewValidationError()
			verr.Add("status", "unknown status")
			return filter, verr
		}
		filter.Status = status
	}

	if filter.Page < 1 {
		filter.Page = 1
	}
	switch {
	case filter.PageSize <= 0:
		filter.PageSize = defaultPageSize
	case filter.PageSize > maxPageSize:
		filter.PageSize = maxPageSize
	}
	return filter, nil
}

func toItems(caronas []model.Carona) []dto.CaronaItem {
	items := make([]dto.CaronaItem, 0, len(caronas))
	for i := range caronas {
		items = append(items, dto.CaronaItem{Carona: caronas[i], VagasLivres: caronas[i].VagasLivres()})
	}
	return items
}
