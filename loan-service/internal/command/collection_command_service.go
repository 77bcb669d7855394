package command

import (
	"context"

	"github.com/manikantaaddala217-hub/fin-backend/loan-service/internal/repository"
	"github.com/manikantaaddala217-hub/fin-backend/shared/apperr"
	"github.com/manikantaaddala217-hub/fin-backend/shared/cqrs"
	"github.com/manikantaaddala217-hub/fin-backend/shared/events"
	"github.com/manikantaaddala217-hub/fin-backend/shared/models"
	"github.com/manikantaaddala217-hub/fin-backend/shared/utils"
)

// RecordCollection appends one collection to the loan's ledger and adds it
// to paid. A loan takes at most one entry per date.
func (s *LoanCommandService) RecordCollection(ctx context.Context, cmd cqrs.RecordCollectionCommand) (*models.CollectionResult, error) {
	if err := checkCollection(cmd.Date, cmd.Amount); err != nil {
		return nil, err
	}

	var (
		result  models.CollectionResult
		section string
	)
	err := s.writeRepo.Transaction(ctx, func(tx *repository.LoanWriteRepository) error {
		loan, err := tx.GetForUpdate(ctx, cmd.LoanID)
		if err != nil {
			return err
		}
		if err := checkArea(cmd.Areas, loan.Area); err != nil {
			return err
		}
		section = loan.Section
		exists, err := tx.EntryExists(ctx, loan.LoanID, cmd.Date)
		if err != nil {
			return err
		}
		if exists {
			return apperr.Conflict("Entry for this date already exists for this loan")
		}
		entry := models.LedgerEntry{LoanID: loan.LoanID, Date: cmd.Date, Amount: cmd.Amount}
		if err := tx.InsertEntry(ctx, &entry); err != nil {
			return err
		}
		paid, err := tx.AddPaid(ctx, loan.LoanID, entry.Amount)
		if err != nil {
			return err
		}
		result = models.CollectionResult{Entry: entry, UpdatedPaid: paid}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.collected(ctx, events.CollectionRecorded, section, &result)
	return &result, nil
}

// AmendCollection corrects the amount and/or date of an existing entry.
// Paid moves by the difference between the new and the old amount. Moving
// the entry onto a date the loan already has an entry for is a Conflict.
func (s *LoanCommandService) AmendCollection(ctx context.Context, cmd cqrs.AmendCollectionCommand) (*models.CollectionResult, error) {
	var (
		result  models.CollectionResult
		section string
	)
	err := s.writeRepo.Transaction(ctx, func(tx *repository.LoanWriteRepository) error {
		loan, err := tx.GetForUpdate(ctx, cmd.LoanID)
		if err != nil {
			return err
		}
		if err := checkArea(cmd.Areas, loan.Area); err != nil {
			return err
		}
		section = loan.Section
		entry, err := tx.GetEntry(ctx, loan.LoanID, cmd.Date)
		if err != nil {
			return err
		}

		newAmount := entry.Amount
		if cmd.NewAmount != nil {
			newAmount = *cmd.NewAmount
		}
		newDate := entry.Date
		if cmd.NewDate != nil && *cmd.NewDate != "" {
			newDate = *cmd.NewDate
		}
		if err := checkCollection(newDate, newAmount); err != nil {
			return err
		}
		if newDate != entry.Date {
			taken, err := tx.EntryExists(ctx, loan.LoanID, newDate)
			if err != nil {
				return err
			}
			if taken {
				return apperr.Conflict("Entry for this date already exists for this loan")
			}
		}

		delta := newAmount - entry.Amount
		entry.Amount = newAmount
		entry.Date = newDate
		if err := tx.UpdateEntry(ctx, entry); err != nil {
			return err
		}
		paid, err := tx.AddPaid(ctx, loan.LoanID, delta)
		if err != nil {
			return err
		}
		result = models.CollectionResult{Entry: *entry, UpdatedPaid: paid}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.collected(ctx, events.CollectionAmended, section, &result)
	return &result, nil
}

func (s *LoanCommandService) collected(ctx context.Context, eventType, section string, r *models.CollectionResult) {
	s.readRepo.InvalidateSummary(ctx)
	s.publish(ctx, eventType, events.CollectionEvent{
		LoanID:  r.Entry.LoanID,
		Section: section,
		Date:    r.Entry.Date,
		Amount:  r.Entry.Amount,
		Paid:    r.UpdatedPaid,
	})
}

func checkCollection(date string, amount int64) error {
	if _, err := utils.ParseDate(date); err != nil {
		return apperr.Validation("date must be in YYYY-MM-DD format")
	}
	if amount <= 0 {
		return apperr.Validation("amount must be greater than 0")
	}
	return nil
}
