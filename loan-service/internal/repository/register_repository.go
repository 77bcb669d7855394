package repository

import (
	"context"
	"fmt"

	"github.com/manikantaaddala217-hub/fin-backend/shared/apperr"
	"github.com/manikantaaddala217-hub/fin-backend/shared/models"
	"gorm.io/gorm"
)

// RegisterRepository stores the cash-flow and backup registers. Neither
// touches the loan book.
type RegisterRepository struct {
	db *gorm.DB
}

func NewRegisterRepository(db *gorm.DB) *RegisterRepository {
	return &RegisterRepository{db: db}
}

func (r *RegisterRepository) CreateCashFlow(ctx context.Context, entry *models.CashFlowEntry) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("failed to save cash flow entry: %w", err)
	}
	return nil
}

func (r *RegisterRepository) ListCashFlow(ctx context.Context) ([]models.CashFlowEntry, error) {
	entries := []models.CashFlowEntry{}
	if err := r.db.WithContext(ctx).Order("date ASC").Order("sno ASC").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to list cash flow entries: %w", err)
	}
	return entries, nil
}

// ClearCashFlow empties the cash-flow register and reports how many rows went.
func (r *RegisterRepository) ClearCashFlow(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.CashFlowEntry{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to clear cash flow entries: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (r *RegisterRepository) CreateBackup(ctx context.Context, entry *models.BackupEntry) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("failed to save backup entry: %w", err)
	}
	return nil
}

func (r *RegisterRepository) ListBackups(ctx context.Context) ([]models.BackupEntry, error) {
	entries := []models.BackupEntry{}
	if err := r.db.WithContext(ctx).Order("area ASC").Order("sno ASC").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to list backup entries: %w", err)
	}
	return entries, nil
}

func (r *RegisterRepository) DeleteBackup(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.BackupEntry{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete backup entry: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("Backup entry not found")
	}
	return nil
}
