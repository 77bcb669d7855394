package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/manikantaaddala217-hub/fin-backend/loan-service/internal/query"
	"github.com/manikantaaddala217-hub/fin-backend/shared/cqrs"
	"github.com/manikantaaddala217-hub/fin-backend/shared/middleware"
	"github.com/manikantaaddala217-hub/fin-backend/shared/models"
	"github.com/shopspring/decimal"
)

// LoanCommander defines the write-side operations used by LoanHandler.
type LoanCommander interface {
	CreateLoan(context.Context, cqrs.CreateLoanCommand) (*models.LoanAccount, error)
	UpdateLoan(context.Context, cqrs.UpdateLoanCommand) (*models.LoanAccount, error)
	RenewLoan(context.Context, cqrs.RenewLoanCommand) (*models.LoanAccount, error)
	DeleteLoan(context.Context, cqrs.DeleteLoanCommand) error
	RecordCollection(context.Context, cqrs.RecordCollectionCommand) (*models.CollectionResult, error)
	AmendCollection(context.Context, cqrs.AmendCollectionCommand) (*models.CollectionResult, error)
}

// LoanQuerier defines the read-side operations used by LoanHandler.
type LoanQuerier interface {
	ListLoans(context.Context, cqrs.ListLoansQuery) ([]models.LoanAccount, error)
	Summary(context.Context, cqrs.SummaryQuery) (*models.LoanSummary, error)
	LoanLedger(context.Context, cqrs.LoanLedgerQuery) (*models.LoanLedger, error)
	Download(context.Context, cqrs.DownloadQuery) (*query.File, error)
}

// LoanHandler serves the loan book, its collection ledger and the reports.
type LoanHandler struct {
	commands LoanCommander
	queries  LoanQuerier
}

type CreateLoanRequest struct {
	SNo               int             `json:"sno" validate:"required,gte=1"`
	Section           string          `json:"section" validate:"required,oneof=Daily Weekly Monthly Interest"`
	Area              string          `json:"area" validate:"required,max=30"`
	Name              string          `json:"name" validate:"required,max=50"`
	Address           string          `json:"address" validate:"max=100"`
	PhoneNumber       string          `json:"phoneNumber" validate:"max=15"`
	AlternativeNumber string          `json:"alternativeNumber" validate:"max=15"`
	Work              string          `json:"work" validate:"max=30"`
	Relation          string          `json:"houseWifeOrSonOf" validate:"max=30"`
	ReferName         string          `json:"referName" validate:"max=30"`
	ReferNumber       string          `json:"referNumber" validate:"max=15"`
	GivenAmount       int64           `json:"givenAmount" validate:"gte=0,lte=10000000"`
	InterestPercent   decimal.Decimal `json:"interestPercent"`
	Interest          int64           `json:"interest" validate:"gte=0"`
	GivenDate         string          `json:"givenDate" validate:"required,datetime=2006-01-02"`
	LastDate          string          `json:"lastDate" validate:"omitempty,datetime=2006-01-02"`
	AdditionalInfo    string          `json:"additionalInfo" validate:"max=255"`
	VerifiedBy        string          `json:"verifiedBy" validate:"max=25"`
	VerifiedByNo      string          `json:"verifiedByNo" validate:"max=15"`
}

// UpdateLoanRequest fields other than loanId are optional; absent fields
// keep their stored value.
type UpdateLoanRequest struct {
	LoanID            string           `json:"loanId" validate:"required"`
	SNo               *int             `json:"sno" validate:"omitempty,gte=1"`
	Section           *string          `json:"section" validate:"omitempty,oneof=Daily Weekly Monthly Interest"`
	Area              *string          `json:"area" validate:"omitempty,min=1,max=30"`
	Name              *string          `json:"name" validate:"omitempty,min=1,max=50"`
	Address           *string          `json:"address" validate:"omitempty,max=100"`
	PhoneNumber       *string          `json:"phoneNumber" validate:"omitempty,max=15"`
	AlternativeNumber *string          `json:"alternativeNumber" validate:"omitempty,max=15"`
	Work              *string          `json:"work" validate:"omitempty,max=30"`
	Relation          *string          `json:"houseWifeOrSonOf" validate:"omitempty,max=30"`
	ReferName         *string          `json:"referName" validate:"omitempty,max=30"`
	ReferNumber       *string          `json:"referNumber" validate:"omitempty,max=15"`
	GivenAmount       *int64           `json:"givenAmount" validate:"omitempty,gte=0,lte=10000000"`
	InterestPercent   *decimal.Decimal `json:"interestPercent"`
	Interest          *int64           `json:"interest" validate:"omitempty,gte=0"`
	GivenDate         *string          `json:"givenDate" validate:"omitempty,datetime=2006-01-02"`
	LastDate          *string          `json:"lastDate" validate:"omitempty,max=10"`
	AdditionalInfo    *string          `json:"additionalInfo" validate:"omitempty,max=255"`
	VerifiedBy        *string          `json:"verifiedBy" validate:"omitempty,max=25"`
	VerifiedByNo      *string          `json:"verifiedByNo" validate:"omitempty,max=15"`
}

func (r UpdateLoanRequest) patch() models.LoanPatch {
	return models.LoanPatch{
		SNo:               r.SNo,
		Section:           r.Section,
		Area:              r.Area,
		Name:              r.Name,
		Address:           r.Address,
		PhoneNumber:       r.PhoneNumber,
		AlternativeNumber: r.AlternativeNumber,
		Work:              r.Work,
		Relation:          r.Relation,
		ReferName:         r.ReferName,
		ReferNumber:       r.ReferNumber,
		GivenAmount:       r.GivenAmount,
		InterestPercent:   r.InterestPercent,
		Interest:          r.Interest,
		GivenDate:         r.GivenDate,
		LastDate:          r.LastDate,
		AdditionalInfo:    r.AdditionalInfo,
		VerifiedBy:        r.VerifiedBy,
		VerifiedByNo:      r.VerifiedByNo,
	}
}

type RenewLoanRequest struct {
	LoanID          string           `json:"loanId" validate:"required"`
	Section         *string          `json:"section" validate:"omitempty,oneof=Daily Weekly Monthly Interest"`
	GivenAmount     *int64           `json:"givenAmount" validate:"omitempty,gte=0,lte=10000000"`
	InterestPercent *decimal.Decimal `json:"interestPercent"`
	Interest        *int64           `json:"interest" validate:"omitempty,gte=0"`
	GivenDate       *string          `json:"givenDate" validate:"omitempty,datetime=2006-01-02"`
	LastDate        *string          `json:"lastDate" validate:"omitempty,max=10"`
}

type RecordCollectionRequest struct {
	LoanID string `json:"loanId" validate:"required"`
	Date   string `json:"date" validate:"required,datetime=2006-01-02"`
	Amount int64  `json:"amount" validate:"required,gt=0"`
}

// AmendCollectionRequest identifies the entry by loanId and date; amount and
// newDate are the corrected values.
type AmendCollectionRequest struct {
	LoanID  string  `json:"loanId" validate:"required"`
	Date    string  `json:"date" validate:"required,datetime=2006-01-02"`
	Amount  *int64  `json:"amount" validate:"omitempty,gt=0"`
	NewDate *string `json:"newDate" validate:"omitempty,datetime=2006-01-02"`
}

type DownloadRequest struct {
	DataType string   `json:"dataType" validate:"required,oneof='Customer Data' Collection 'Full Data'"`
	Section  string   `json:"section" validate:"omitempty,oneof=Daily Weekly Monthly Interest"`
	Areas    []string `json:"areas"`
	Day      string   `json:"day"`
	FromDate string   `json:"fromDate" validate:"required,datetime=2006-01-02"`
	ToDate   string   `json:"toDate" validate:"required,datetime=2006-01-02"`
}

func NewLoanHandler(commands LoanCommander, queries LoanQuerier) *LoanHandler {
	return &LoanHandler{commands: commands, queries: queries}
}

func (h *LoanHandler) CreateLoan(c *gin.Context) {
	var req CreateLoanRequest
	if !bindAndValidate(c, &req) {
		return
	}
	areas, ok := allowedAreas(c)
	if !ok {
		return
	}

	loan, err := h.commands.CreateLoan(c.Request.Context(), cqrs.CreateLoanCommand{
		SNo:               req.SNo,
		Section:           req.Section,
		Area:              req.Area,
		Name:              req.Name,
		Address:           req.Address,
		PhoneNumber:       req.PhoneNumber,
		AlternativeNumber: req.AlternativeNumber,
		Work:              req.Work,
		Relation:          req.Relation,
		ReferName:         req.ReferName,
		ReferNumber:       req.ReferNumber,
		GivenAmount:       req.GivenAmount,
		InterestPercent:   req.InterestPercent,
		Interest:          req.Interest,
		GivenDate:         req.GivenDate,
		LastDate:          req.LastDate,
		AdditionalInfo:    req.AdditionalInfo,
		VerifiedBy:        req.VerifiedBy,
		VerifiedByNo:      req.VerifiedByNo,
		Areas:             areas,
	})
	if err != nil {
		middleware.RespondWithAppError(c, err, "Failed to create loan")
		return
	}

	middleware.RespondWithSuccess(c, http.StatusCreated, "Loan created successfully", loan)
}

// ListLoans returns every loan of the optional section. Callers who are not
// admins only see the areas assigned to them.
func (h *LoanHandler) ListLoans(c *gin.Context) {
	areas, ok := allowedAreas(c)
	if !ok {
		return
	}

	loans, err := h.queries.ListLoans(c.Request.Context(), cqrs.ListLoansQuery{
		Section: c.Query("section"),
		Areas:   areas,
	})
	if err != nil {
		middleware.RespondWithAppError(c, err, "Failed to fetch loans")
		return
	}

	middleware.RespondWithSuccess(c, http.StatusOK, "Loans fetched successfully", loans)
}

func (h *LoanHandler) UpdateLoan(c *gin.Context) {
	var req UpdateLoanRequest
	if !bindAndValidate(c, &req) {
		return
	}
	areas, ok := allowedAreas(c)
	if !ok {
		return
	}

	loan, err := h.commands.UpdateLoan(c.Request.Context(), cqrs.UpdateLoanCommand{
		LoanID: req.LoanID,
		Patch:  req.patch(),
		Areas:  areas,
	})
	if err != nil {
		middleware.RespondWithAppError(c, err, "Failed to update loan")
		return
	}

	middleware.RespondWithSuccess(c, http.StatusOK, "Loan updated successfully", loan)
}

func (h *LoanHandler) RenewLoan(c *gin.Context) {
	var req RenewLoanRequest
	if !bindAndValidate(c, &req) {
		return
	}
	areas, ok := allowedAreas(c)
	if !ok {
		return
	}

	loan, err := h.commands.RenewLoan(c.Request.Context(), cqrs.RenewLoanCommand{
		LoanID: req.LoanID,
		Terms: models.RenewTerms{
			Section:         req.Section,
			GivenAmount:     req.GivenAmount,
			InterestPercent: req.InterestPercent,
			Interest:        req.Interest,
			GivenDate:       req.GivenDate,
			LastDate:        req.LastDate,
		},
		Areas: areas,
	})
	if err != nil {
		middleware.RespondWithAppError(c, err, "Failed to renew loan")
		return
	}

	middleware.RespondWithSuccess(c, http.StatusOK, "Loan renewed successfully", loan)
}

func (h *LoanHandler) DeleteLoan(c *gin.Context) {
	loanID := c.Query("id")
	if loanID == "" {
		middleware.RespondWithError(c, http.StatusBadRequest, "Loan ID is required")
		return
	}
	areas, ok := allowedAreas(c)
	if !ok {
		return
	}

	if err := h.commands.DeleteLoan(c.Request.Context(), cqrs.DeleteLoanCommand{LoanID: loanID, Areas: areas}); err != nil {
		middleware.RespondWithAppError(c, err, "Failed to delete loan")
		return
	}

	middleware.RespondWithSuccess(c, http.StatusOK, "Loan deleted successfully", nil)
}

// Summary totals the loan book; non-admin callers only see their own areas.
func (h *LoanHandler) Summary(c *gin.Context) {
	areas, ok := allowedAreas(c)
	if !ok {
		return
	}

	summary, err := h.queries.Summary(c.Request.Context(), cqrs.SummaryQuery{Section: c.Query("section"), Areas: areas})
	if err != nil {
		middleware.RespondWithAppError(c, err, "Failed to fetch loan summary")
		return
	}
	middleware.RespondWithSuccess(c, http.StatusOK, "Loan summary fetched successfully", summary)
}

func (h *LoanHandler) RecordCollection(c *gin.Context) {
	var req RecordCollectionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	areas, ok := allowedAreas(c)
	if !ok {
		return
	}

	result, err := h.commands.RecordCollection(c.Request.Context(), cqrs.RecordCollectionCommand{
		LoanID: req.LoanID,
		Date:   req.Date,
		Amount: req.Amount,
		Areas:  areas,
	})
	if err != nil {
		middleware.RespondWithAppError(c, err, "Failed to save table entry")
		return
	}

	respondWithCollection(c, http.StatusCreated, "Table entry saved successfully", result)
}

func (h *LoanHandler) AmendCollection(c *gin.Context) {
	var req AmendCollectionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	areas, ok := allowedAreas(c)
	if !ok {
		return
	}

	result, err := h.commands.AmendCollection(c.Request.Context(), cqrs.AmendCollectionCommand{
		LoanID:    req.LoanID,
		Date:      req.Date,
		NewAmount: req.Amount,
		NewDate:   req.NewDate,
		Areas:     areas,
	})
	if err != nil {
		middleware.RespondWithAppError(c, err, "Failed to update table entry")
		return
	}

	respondWithCollection(c, http.StatusOK, "Table entry updated successfully", result)
}

// LoanLedger returns the loan profile as "user" and its entries as "data".
func (h *LoanHandler) LoanLedger(c *gin.Context) {
	loanID := c.Query("loanId")
	if loanID == "" {
		middleware.RespondWithError(c, http.StatusBadRequest, "Loan ID is required")
		return
	}
	areas, ok := allowedAreas(c)
	if !ok {
		return
	}

	ledger, err := h.queries.LoanLedger(c.Request.Context(), cqrs.LoanLedgerQuery{LoanID: loanID, Areas: areas})
	if err != nil {
		middleware.RespondWithAppError(c, err, "Failed to fetch table entries")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Table entries fetched successfully",
		"data":    ledger.Entries,
		"user":    ledger.Loan,
	})
}

// Download streams the requested report as an attachment. Non-admin callers
// are limited to their own areas whatever the request asks for.
func (h *LoanHandler) Download(c *gin.Context) {
	var req DownloadRequest
	if !bindAndValidate(c, &req) {
		return
	}
	allowed, ok := allowedAreas(c)
	if !ok {
		return
	}

	file, err := h.queries.Download(c.Request.Context(), cqrs.DownloadQuery{
		DataType: req.DataType,
		Section:  req.Section,
		Areas:    scopeAreas(req.Areas, allowed),
		Day:      req.Day,
		FromDate: req.FromDate,
		ToDate:   req.ToDate,
	})
	if err != nil {
		middleware.RespondWithAppError(c, err, "Report generation failed")
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+file.Name)
	c.Data(http.StatusOK, file.ContentType, file.Body)
}

func respondWithCollection(c *gin.Context, code int, message string, r *models.CollectionResult) {
	c.JSON(code, gin.H{
		"success":     true,
		"message":     message,
		"data":        r.Entry,
		"updatedPaid": r.UpdatedPaid,
	})
}
