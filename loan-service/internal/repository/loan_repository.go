package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/manikantaaddala217-hub/fin-backend/shared/apperr"
	"github.com/manikantaaddala217-hub/fin-backend/shared/database"
	"github.com/manikantaaddala217-hub/fin-backend/shared/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LoanWriteRepository handles all state-mutating operations for loans and
// their ledger entries. It operates exclusively against the SQL store.
type LoanWriteRepository struct {
	db *gorm.DB
}

func NewLoanWriteRepository(db *gorm.DB) *LoanWriteRepository {
	return &LoanWriteRepository{db: db}
}

// Transaction runs fn against a repository bound to one database
// transaction. fn's error rolls everything back.
func (r *LoanWriteRepository) Transaction(ctx context.Context, fn func(tx *LoanWriteRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&LoanWriteRepository{db: tx})
	})
}

func (r *LoanWriteRepository) Create(ctx context.Context, loan *models.LoanAccount) error {
	if err := r.db.WithContext(ctx).Create(loan).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return DuplicateLoan(loan.SNo, loan.Section)
		}
		return fmt.Errorf("failed to create loan: %w", err)
	}
	return nil
}

func (r *LoanWriteRepository) GetByID(ctx context.Context, loanID string) (*models.LoanAccount, error) {
	return r.get(r.db.WithContext(ctx), loanID)
}

// GetForUpdate reads the loan and locks its row until the surrounding
// transaction ends (a no-op on sqlite, whose writers are already serialised).
func (r *LoanWriteRepository) GetForUpdate(ctx context.Context, loanID string) (*models.LoanAccount, error) {
	return r.get(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), loanID)
}

func (r *LoanWriteRepository) get(db *gorm.DB, loanID string) (*models.LoanAccount, error) {
	var loan models.LoanAccount
	err := db.First(&loan, "loan_id = ?", loanID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("Loan not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get loan: %w", err)
	}
	return &loan, nil
}

// SNoTaken reports whether another loan than exceptID holds (sno, section).
func (r *LoanWriteRepository) SNoTaken(ctx context.Context, sno int, section, exceptID string) (bool, error) {
	var n int64
	q := r.db.WithContext(ctx).Model(&models.LoanAccount{}).Where("sno = ? AND section = ?", sno, section)
	if exceptID != "" {
		q = q.Where("loan_id <> ?", exceptID)
	}
	if err := q.Count(&n).Error; err != nil {
		return false, fmt.Errorf("failed to check sno: %w", err)
	}
	return n > 0, nil
}

// Save writes every column of loan except paid, which only the ledger
// moves. Use SaveRenewed to also overwrite paid.
func (r *LoanWriteRepository) Save(ctx context.Context, loan *models.LoanAccount) error {
	return r.save(ctx, loan, "loan_id", "created_at", "paid")
}

func (r *LoanWriteRepository) SaveRenewed(ctx context.Context, loan *models.LoanAccount) error {
	return r.save(ctx, loan, "loan_id", "created_at")
}

func (r *LoanWriteRepository) save(ctx context.Context, loan *models.LoanAccount, omit ...string) error {
	res := r.db.WithContext(ctx).Model(loan).Select("*").Omit(omit...).Updates(loan)
	if res.Error != nil {
		if database.IsUniqueViolation(res.Error) {
			return DuplicateLoan(loan.SNo, loan.Section)
		}
		return fmt.Errorf("failed to update loan: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("Loan not found")
	}
	return nil
}

// AddPaid moves the paid total of a loan by delta and returns the new total.
func (r *LoanWriteRepository) AddPaid(ctx context.Context, loanID string, delta int64) (int64, error) {
	db := r.db.WithContext(ctx)
	res := db.Model(&models.LoanAccount{}).
		Where("loan_id = ?", loanID).
		Update("paid", gorm.Expr("paid + ?", delta))
	if res.Error != nil {
		return 0, fmt.Errorf("failed to update paid: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return 0, apperr.NotFound("Loan not found")
	}
	var paid int64
	if err := db.Model(&models.LoanAccount{}).Where("loan_id = ?", loanID).Pluck("paid", &paid).Error; err != nil {
		return 0, fmt.Errorf("failed to read paid: %w", err)
	}
	return paid, nil
}

func (r *LoanWriteRepository) Delete(ctx context.Context, loanID string) error {
	res := r.db.WithContext(ctx).Delete(&models.LoanAccount{}, "loan_id = ?", loanID)
	if res.Error != nil {
		return fmt.Errorf("failed to delete loan: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("Loan not found")
	}
	return nil
}

// DuplicateLoan is the Conflict returned when (sno, section) is already held.
func DuplicateLoan(sno int, section string) error {
	return apperr.Conflict("Loan with sNo %d and section %s already exists.", sno, section)
}
