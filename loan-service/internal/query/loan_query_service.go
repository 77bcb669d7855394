package query

import (
	"bytes"
	"context"
	"fmt"

	"github.com/manikantaaddala217-hub/fin-backend/loan-service/internal/report"
	"github.com/manikantaaddala217-hub/fin-backend/loan-service/internal/repository"
	"github.com/manikantaaddala217-hub/fin-backend/loan-service/internal/terms"
	"github.com/manikantaaddala217-hub/fin-backend/shared/apperr"
	"github.com/manikantaaddala217-hub/fin-backend/shared/cqrs"
	"github.com/manikantaaddala217-hub/fin-backend/shared/models"
	"github.com/manikantaaddala217-hub/fin-backend/shared/utils"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	pdfContentType  = "application/pdf"
)

// File is a rendered report ready to be sent as an attachment.
type File struct {
	Name        string
	ContentType string
	Body        []byte
}

// LoanQueryService serves loan listings, ledgers, summaries and reports.
type LoanQueryService struct {
	readRepo *repository.LoanReadRepository
}

func NewLoanQueryService(readRepo *repository.LoanReadRepository) *LoanQueryService {
	return &LoanQueryService{readRepo: readRepo}
}

func (s *LoanQueryService) ListLoans(ctx context.Context, q cqrs.ListLoansQuery) ([]models.LoanAccount, error) {
	if q.Section != "" && !terms.IsSection(q.Section) {
		return nil, apperr.Validation("section must be one of Daily, Weekly, Monthly, Interest")
	}
	return s.readRepo.Find(ctx, repository.LoanFilter{Section: q.Section, Areas: q.Areas})
}

func (s *LoanQueryService) Summary(ctx context.Context, q cqrs.SummaryQuery) (*models.LoanSummary, error) {
	if q.Section != "" && !terms.IsSection(q.Section) {
		return nil, apperr.Validation("section must be one of Daily, Weekly, Monthly, Interest")
	}
	return s.readRepo.Summary(ctx, q.Section, q.Areas)
}

// LoanLedger returns the loan and its entries ascending by date.
func (s *LoanQueryService) LoanLedger(ctx context.Context, q cqrs.LoanLedgerQuery) (*models.LoanLedger, error) {
	loan, err := s.readRepo.GetByID(ctx, q.LoanID)
	if err != nil {
		return nil, err
	}
	if q.Areas != nil && !contains(q.Areas, loan.Area) {
		return nil, apperr.Forbidden("Loan is outside your areas")
	}
	entries, err := s.readRepo.Entries(ctx, loan.LoanID)
	if err != nil {
		return nil, err
	}
	return &models.LoanLedger{Loan: loan, Entries: entries}, nil
}

// Download builds the report named by q.DataType.
func (s *LoanQueryService) Download(ctx context.Context, q cqrs.DownloadQuery) (*File, error) {
	if err := checkDownload(q); err != nil {
		return nil, err
	}
	filter := repository.LoanFilter{Section: q.Section, Areas: q.Areas}
	if q.Section == models.SectionWeekly {
		filter.Day = q.Day
	}

	var (
		buf  bytes.Buffer
		file File
	)
	switch q.DataType {
	case cqrs.ReportCustomerData:
		filter.GivenFrom, filter.GivenTo = q.FromDate, q.ToDate
		loans, err := s.readRepo.Find(ctx, filter)
		if err != nil {
			return nil, err
		}
		if err := report.WriteCustomers(&buf, report.Customers(loans)); err != nil {
			return nil, err
		}
		file = File{Name: reportName("customers", q, "xlsx"), ContentType: xlsxContentType}

	case cqrs.ReportCollection, cqrs.ReportFullData:
		loans, err := s.readRepo.Find(ctx, filter)
		if err != nil {
			return nil, err
		}
		ids := make([]string, len(loans))
		for i := range loans {
			ids[i] = loans[i].LoanID
		}
		entries, err := s.readRepo.EntriesBetween(ctx, ids, q.FromDate, q.ToDate)
		if err != nil {
			return nil, err
		}
		if q.DataType == cqrs.ReportCollection {
			if err := report.WriteCollections(&buf, report.Collections(loans, entries)); err != nil {
				return nil, err
			}
			file = File{Name: reportName("collections", q, "xlsx"), ContentType: xlsxContentType}
		} else {
			if err := report.WriteNarratives(&buf, report.Narratives(loans, entries), q.FromDate, q.ToDate); err != nil {
				return nil, err
			}
			file = File{Name: reportName("full_report", q, "pdf"), ContentType: pdfContentType}
		}
	}

	file.Body = buf.Bytes()
	return &file, nil
}

func checkDownload(q cqrs.DownloadQuery) error {
	switch q.DataType {
	case cqrs.ReportCustomerData, cqrs.ReportCollection, cqrs.ReportFullData:
	default:
		return apperr.Validation("Invalid dataType")
	}
	from, err := utils.ParseDate(q.FromDate)
	if err != nil {
		return apperr.Validation("fromDate must be in YYYY-MM-DD format")
	}
	to, err := utils.ParseDate(q.ToDate)
	if err != nil {
		return apperr.Validation("toDate must be in YYYY-MM-DD format")
	}
	if to.Before(from) {
		return apperr.Validation("fromDate must not be after toDate")
	}
	if q.Section != "" && !terms.IsSection(q.Section) {
		return apperr.Validation("section must be one of Daily, Weekly, Monthly, Interest")
	}
	return nil
}

func reportName(kind string, q cqrs.DownloadQuery, ext string) string {
	return fmt.Sprintf("%s_%s_%s.%s", kind, q.FromDate, q.ToDate, ext)
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
