package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/manikantaaddala217-hub/fin-backend/shared/apperr"
	"github.com/manikantaaddala217-hub/fin-backend/shared/database"
	"github.com/manikantaaddala217-hub/fin-backend/shared/models"
	"gorm.io/gorm"
)

var errDuplicateEntry = apperr.Conflict("Entry for this date already exists for this loan")

func (r *LoanWriteRepository) GetEntry(ctx context.Context, loanID, date string) (*models.LedgerEntry, error) {
	var entry models.LedgerEntry
	err := r.db.WithContext(ctx).Where("loan_id = ? AND date = ?", loanID, date).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("Table entry not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ledger entry: %w", err)
	}
	return &entry, nil
}

func (r *LoanWriteRepository) EntryExists(ctx context.Context, loanID, date string) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.LedgerEntry{}).
		Where("loan_id = ? AND date = ?", loanID, date).
		Count(&n).Error; err != nil {
		return false, fmt.Errorf("failed to check ledger entry: %w", err)
	}
	return n > 0, nil
}

func (r *LoanWriteRepository) InsertEntry(ctx context.Context, entry *models.LedgerEntry) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return errDuplicateEntry
		}
		return fmt.Errorf("failed to create ledger entry: %w", err)
	}
	return nil
}

func (r *LoanWriteRepository) UpdateEntry(ctx context.Context, entry *models.LedgerEntry) error {
	err := r.db.WithContext(ctx).Model(entry).
		Updates(map[string]any{"date": entry.Date, "amount": entry.Amount}).Error
	if err != nil {
		if database.IsUniqueViolation(err) {
			return errDuplicateEntry
		}
		return fmt.Errorf("failed to update ledger entry: %w", err)
	}
	return nil
}

// DeleteEntries removes the whole collection history of a loan.
func (r *LoanWriteRepository) DeleteEntries(ctx context.Context, loanID string) (int64, error) {
	res := r.db.WithContext(ctx).Where("loan_id = ?", loanID).Delete(&models.LedgerEntry{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to delete ledger entries: %w", res.Error)
	}
	return res.RowsAffected, nil
}
