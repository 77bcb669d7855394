package command

import (
	"context"

	"github.com/google/uuid"
	"github.com/manikantaaddala217-hub/fin-backend/loan-service/internal/repository"
	"github.com/manikantaaddala217-hub/fin-backend/shared/apperr"
	"github.com/manikantaaddala217-hub/fin-backend/shared/cqrs"
	"github.com/manikantaaddala217-hub/fin-backend/shared/models"
	"github.com/manikantaaddala217-hub/fin-backend/shared/utils"
	"github.com/rs/zerolog/log"
)

// RegisterCommandService writes the cash-flow and backup registers.
type RegisterCommandService struct {
	repo *repository.RegisterRepository
}

func NewRegisterCommandService(repo *repository.RegisterRepository) *RegisterCommandService {
	return &RegisterCommandService{repo: repo}
}

func (s *RegisterCommandService) SaveCashFlow(ctx context.Context, cmd cqrs.SaveCashFlowCommand) (*models.CashFlowEntry, error) {
	if _, err := utils.ParseDate(cmd.Date); err != nil {
		return nil, apperr.Validation("date must be in YYYY-MM-DD format")
	}
	entry := &models.CashFlowEntry{
		ID:     uuid.NewString(),
		SNo:    cmd.SNo,
		Amount: cmd.Amount.Round(2),
		Date:   cmd.Date,
	}
	if err := s.repo.CreateCashFlow(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// ClearCashFlow empties the cash-flow register.
func (s *RegisterCommandService) ClearCashFlow(ctx context.Context) (int64, error) {
	n, err := s.repo.ClearCashFlow(ctx)
	if err != nil {
		return 0, err
	}
	log.Info().Int64("entries", n).Msg("cash flow register cleared")
	return n, nil
}

func (s *RegisterCommandService) SaveBackup(ctx context.Context, cmd cqrs.SaveBackupCommand) (*models.BackupEntry, error) {
	entry := &models.BackupEntry{
		ID:     uuid.NewString(),
		SNo:    cmd.SNo,
		Name:   cmd.Name,
		Amount: cmd.Amount.Round(2),
		Area:   cmd.Area,
	}
	if err := s.repo.CreateBackup(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *RegisterCommandService) DeleteBackup(ctx context.Context, cmd cqrs.DeleteBackupCommand) error {
	return s.repo.DeleteBackup(ctx, cmd.ID)
}
