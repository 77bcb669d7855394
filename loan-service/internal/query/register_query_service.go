package query

import (
	"context"

	"github.com/manikantaaddala217-hub/fin-backend/loan-service/internal/repository"
	"github.com/manikantaaddala217-hub/fin-backend/shared/models"
)

type RegisterQueryService struct {
	repo *repository.RegisterRepository
}

func NewRegisterQueryService(repo *repository.RegisterRepository) *RegisterQueryService {
	return &RegisterQueryService{repo: repo}
}

func (s *RegisterQueryService) ListCashFlow(ctx context.Context) ([]models.CashFlowEntry, error) {
	return s.repo.ListCashFlow(ctx)
}

func (s *RegisterQueryService) ListBackups(ctx context.Context) ([]models.BackupEntry, error) {
	return s.repo.ListBackups(ctx)
}
