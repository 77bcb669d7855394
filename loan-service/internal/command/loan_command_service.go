package command

import (
	"context"

	"github.com/google/uuid"
	"github.com/manikantaaddala217-hub/fin-backend/loan-service/internal/repository"
	"github.com/manikantaaddala217-hub/fin-backend/loan-service/internal/terms"
	"github.com/manikantaaddala217-hub/fin-backend/shared/apperr"
	"github.com/manikantaaddala217-hub/fin-backend/shared/cqrs"
	"github.com/manikantaaddala217-hub/fin-backend/shared/events"
	"github.com/manikantaaddala217-hub/fin-backend/shared/models"
	"github.com/rs/zerolog/log"
)

// LoanCommandService writes loans and their ledgers to SQL, keeps the
// cached summary fresh and publishes loan events.
type LoanCommandService struct {
	writeRepo *repository.LoanWriteRepository
	readRepo  *repository.LoanReadRepository
	publisher *events.Publisher
}

func NewLoanCommandService(
	writeRepo *repository.LoanWriteRepository,
	readRepo *repository.LoanReadRepository,
	publisher *events.Publisher,
) *LoanCommandService {
	return &LoanCommandService{
		writeRepo: writeRepo,
		readRepo:  readRepo,
		publisher: publisher,
	}
}

func (s *LoanCommandService) CreateLoan(ctx context.Context, cmd cqrs.CreateLoanCommand) (*models.LoanAccount, error) {
	if err := checkArea(cmd.Areas, cmd.Area); err != nil {
		return nil, err
	}
	loan := &models.LoanAccount{
		LoanID:            uuid.NewString(),
		SNo:               cmd.SNo,
		Section:           cmd.Section,
		Area:              cmd.Area,
		Name:              cmd.Name,
		Address:           cmd.Address,
		PhoneNumber:       cmd.PhoneNumber,
		AlternativeNumber: cmd.AlternativeNumber,
		Work:              cmd.Work,
		Relation:          cmd.Relation,
		ReferName:         cmd.ReferName,
		ReferNumber:       cmd.ReferNumber,
		GivenAmount:       cmd.GivenAmount,
		InterestPercent:   cmd.InterestPercent,
		Interest:          cmd.Interest,
		GivenDate:         cmd.GivenDate,
		LastDate:          cmd.LastDate,
		AdditionalInfo:    cmd.AdditionalInfo,
		VerifiedBy:        cmd.VerifiedBy,
		VerifiedByNo:      cmd.VerifiedByNo,
	}
	if err := terms.Apply(loan); err != nil {
		return nil, err
	}
	if err := s.writeRepo.Create(ctx, loan); err != nil {
		return nil, err
	}

	s.changed(ctx, events.LoanCreated, loan)
	return loan, nil
}

// UpdateLoan merges the patch over the stored loan and re-derives its
// computed fields. Paid is never touched. A scoped caller may neither touch
// a loan outside its areas nor move one out of them.
func (s *LoanCommandService) UpdateLoan(ctx context.Context, cmd cqrs.UpdateLoanCommand) (*models.LoanAccount, error) {
	var loan *models.LoanAccount
	err := s.writeRepo.Transaction(ctx, func(tx *repository.LoanWriteRepository) error {
		current, err := tx.GetForUpdate(ctx, cmd.LoanID)
		if err != nil {
			return err
		}
		if err := checkArea(cmd.Areas, current.Area); err != nil {
			return err
		}
		cmd.Patch.ApplyTo(current)
		if err := checkArea(cmd.Areas, current.Area); err != nil {
			return err
		}
		if err := terms.Apply(current); err != nil {
			return err
		}
		if err := ensureSNoFree(ctx, tx, current); err != nil {
			return err
		}
		if err := tx.Save(ctx, current); err != nil {
			return err
		}
		loan = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.changed(ctx, events.LoanUpdated, loan)
	return loan, nil
}

// RenewLoan starts a fresh lending cycle on the same loan id: the new terms
// replace the old ones, paid drops to zero and the ledger is emptied.
func (s *LoanCommandService) RenewLoan(ctx context.Context, cmd cqrs.RenewLoanCommand) (*models.LoanAccount, error) {
	var loan *models.LoanAccount
	err := s.writeRepo.Transaction(ctx, func(tx *repository.LoanWriteRepository) error {
		current, err := tx.GetForUpdate(ctx, cmd.LoanID)
		if err != nil {
			return err
		}
		if err := checkArea(cmd.Areas, current.Area); err != nil {
			return err
		}
		cmd.Terms.Patch().ApplyTo(current)
		current.Paid = 0
		if err := terms.Apply(current); err != nil {
			return err
		}
		if err := ensureSNoFree(ctx, tx, current); err != nil {
			return err
		}
		purged, err := tx.DeleteEntries(ctx, current.LoanID)
		if err != nil {
			return err
		}
		if err := tx.SaveRenewed(ctx, current); err != nil {
			return err
		}
		log.Info().Str("loanId", current.LoanID).Int64("entries", purged).Msg("loan renewed")
		loan = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.changed(ctx, events.LoanRenewed, loan)
	return loan, nil
}

// DeleteLoan removes the loan and its whole ledger.
func (s *LoanCommandService) DeleteLoan(ctx context.Context, cmd cqrs.DeleteLoanCommand) error {
	var section string
	err := s.writeRepo.Transaction(ctx, func(tx *repository.LoanWriteRepository) error {
		loan, err := tx.GetForUpdate(ctx, cmd.LoanID)
		if err != nil {
			return err
		}
		if err := checkArea(cmd.Areas, loan.Area); err != nil {
			return err
		}
		section = loan.Section
		if _, err := tx.DeleteEntries(ctx, loan.LoanID); err != nil {
			return err
		}
		return tx.Delete(ctx, loan.LoanID)
	})
	if err != nil {
		return err
	}

	s.readRepo.InvalidateSummary(ctx)
	s.publish(ctx, events.LoanDeleted, events.LoanDeletedEvent{LoanID: cmd.LoanID, Section: section})
	return nil
}

// HandleLoanEvent drops the cached summaries whenever another instance
// changed the loan book.
func (s *LoanCommandService) HandleLoanEvent(ctx context.Context, event events.Event) error {
	switch event.Type {
	case events.LoanCreated, events.LoanUpdated, events.LoanRenewed, events.LoanDeleted,
		events.CollectionRecorded, events.CollectionAmended:
		s.readRepo.InvalidateSummary(ctx)
		log.Debug().Str("event", event.Type).Msg("loan summary invalidated")
	}
	return nil
}

// checkArea rejects a loan in an area the caller is not assigned to. Nil
// areas means the caller is not scoped.
func checkArea(areas []string, area string) error {
	if areas == nil {
		return nil
	}
	for _, a := range areas {
		if a == area {
			return nil
		}
	}
	return apperr.Forbidden("Loan is outside your areas")
}

func ensureSNoFree(ctx context.Context, tx *repository.LoanWriteRepository, loan *models.LoanAccount) error {
	taken, err := tx.SNoTaken(ctx, loan.SNo, loan.Section, loan.LoanID)
	if err != nil {
		return err
	}
	if taken {
		return repository.DuplicateLoan(loan.SNo, loan.Section)
	}
	return nil
}

func (s *LoanCommandService) changed(ctx context.Context, eventType string, loan *models.LoanAccount) {
	s.readRepo.InvalidateSummary(ctx)
	s.publish(ctx, eventType, events.LoanChangedEvent{
		LoanID:  loan.LoanID,
		SNo:     loan.SNo,
		Section: loan.Section,
		Area:    loan.Area,
		TAmount: loan.TAmount,
		Paid:    loan.Paid,
	})
}

func (s *LoanCommandService) publish(ctx context.Context, eventType string, data any) {
	if err := s.publisher.Publish(ctx, events.LoanEventsStream, eventType, data); err != nil {
		log.Error().Err(err).Str("event", eventType).Msg("failed to publish event")
	}
}
