package service

import (
	"context"
	stderrors "errors"
	"strings"
	"sync"

	"CaronaCondominio/internal/model"
	"CaronaCondominio/pkg/backend"
	"CaronaCondominio/pkg/errors"
)

var (
	condominioService *CondominioService
	condominioOnce    sync.Once
)

func Condominio() *CondominioService {
	condominioOnce.Do(func() {
		condominioService = NewCondominioService(backend.GetClient(), Progress())
	})
	return condominioService
}

// CondominioService 小区、楼栋和公寓的查询，向导第 3 步的下拉选项
type CondominioService struct {
	backend  backend.Client
	progress *ProgressService
}

func NewCondominioService(client backend.Client, progress *ProgressService) *CondominioService {
	return &CondominioService{backend: client, progress: progress}
}

func (s *CondominioService) List(ctx context.Context, id Identity) ([]model.Condominio, error) {
	remote, err := s.progress.Token(ctx, id)
	if err != nil {
		return nil, err
	}

	condominios, err := s.backend.ListCondominios(ctx, remote)
	if err != nil {
		return nil, s.classify(ctx, id, err)
	}
	if condominios == nil {
		condominios = []model.Condominio{}
	}
	return condominios, nil
}

func (s *CondominioService) Blocos(ctx context.Context, id Identity, slug string) ([]model.Bloco, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, requiredField("slug")
	}

	remote, err := s.progress.Token(ctx, id)
	if err != nil {
		return nil, err
	}

	blocos, err := s.backend.ListBlocos(ctx, remote, slug)
	if err != nil {
		return nil, s.classify(ctx, id, err)
	}
	if blocos == nil {
		blocos = []model.Bloco{}
	}
	return blocos, nil
}

func (s *CondominioService) Apartamentos(ctx context.Context, id Identity, slug, blocoID string) ([]string, error) {
	slug, blocoID = strings.TrimSpace(slug), strings.TrimSpace(blocoID)
	if slug == "" {
		return nil, requiredField("slug")
	}
	if blocoID == "" {
		return nil, requiredField("bloco_id")
	}

	remote, err := s.progress.Token(ctx, id)
	if err != nil {
		return nil, err
	}

	apartamentos, err := s.backend.ListApartamentos(ctx, remote, slug, blocoID)
	if err != nil {
		return nil, s.classify(ctx, id, err)
	}
	if apartamentos == nil {
		apartamentos = []string{}
	}
	return apartamentos, nil
}

func (s *CondominioService) classify(ctx context.Context, id Identity, err error) error {
	if stderrors.Is(err, backend.ErrNotFound) {
		return errors.CondominioNotFound
	}
	return classifyBackendError(ctx, s.progress.stores, id, err, errors.BackendUnavailable)
}

func requiredField(field string) error {
	verr := errors.NewValidationError()
	verr.Add(field, reasonRequired)
	return verr
}
