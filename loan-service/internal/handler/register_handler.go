package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/manikantaaddala217-hub/fin-backend/shared/cqrs"
	"github.com/manikantaaddala217-hub/fin-backend/shared/middleware"
	"github.com/manikantaaddala217-hub/fin-backend/shared/models"
	"github.com/shopspring/decimal"
)

type RegisterCommander interface {
	SaveCashFlow(context.Context, cqrs.SaveCashFlowCommand) (*models.CashFlowEntry, error)
	ClearCashFlow(context.Context) (int64, error)
	SaveBackup(context.Context, cqrs.SaveBackupCommand) (*models.BackupEntry, error)
	DeleteBackup(context.Context, cqrs.DeleteBackupCommand) error
}

type RegisterQuerier interface {
	ListCashFlow(context.Context) ([]models.CashFlowEntry, error)
	ListBackups(context.Context) ([]models.BackupEntry, error)
}

// RegisterHandler serves the cash-flow (cf) and backup (bkp) registers.
type RegisterHandler struct {
	commands RegisterCommander
	queries  RegisterQuerier
}

type SaveCashFlowRequest struct {
	SNo    int             `json:"sNo" validate:"required,gte=1"`
	Amount decimal.Decimal `json:"amount"`
	Date   string          `json:"date" validate:"required,datetime=2006-01-02"`
}

type SaveBackupRequest struct {
	SNo    int             `json:"sNo" validate:"required,gte=1"`
	Name   string          `json:"name" validate:"required,max=50"`
	Amount decimal.Decimal `json:"amount"`
	Area   string          `json:"area" validate:"required,max=30"`
}

func NewRegisterHandler(commands RegisterCommander, queries RegisterQuerier) *RegisterHandler {
	return &RegisterHandler{commands: commands, queries: queries}
}

func (h *RegisterHandler) SaveCashFlow(c *gin.Context) {
	var req SaveCashFlowRequest
	if !bindAndValidate(c, &req) {
		return
	}

	entry, err := h.commands.SaveCashFlow(c.Request.Context(), cqrs.SaveCashFlowCommand{
		SNo:    req.SNo,
		Amount: req.Amount,
		Date:   req.Date,
	})
	if err != nil {
		middleware.RespondWithAppError(c, err, "Failed to save cf entry")
		return
	}

	middleware.RespondWithSuccess(c, http.StatusCreated, "Cf entry saved successfully", entry)
}

func (h *RegisterHandler) ClearCashFlow(c *gin.Context) {
	n, err := h.commands.ClearCashFlow(c.Request.Context())
	if err != nil {
		middleware.RespondWithAppError(c, err, "Failed to clear cf entries")
		return
	}
	middleware.RespondWithSuccess(c, http.StatusOK, "Cf entries cleared successfully", gin.H{"deleted": n})
}

func (h *RegisterHandler) ListCashFlow(c *gin.Context) {
	entries, err := h.queries.ListCashFlow(c.Request.Context())
	if err != nil {
		middleware.RespondWithAppError(c, err, "Failed to fetch cf entries")
		return
	}
	middleware.RespondWithSuccess(c, http.StatusOK, "Cf entries fetched successfully", entries)
}

func (h *RegisterHandler) SaveBackup(c *gin.Context) {
	var req SaveBackupRequest
	if !bindAndValidate(c, &req) {
		return
	}

	entry, err := h.commands.SaveBackup(c.Request.Context(), cqrs.SaveBackupCommand{
		SNo:    req.SNo,
		Name:   req.Name,
		Amount: req.Amount,
		Area:   req.Area,
	})
	if err != nil {
		middleware.RespondWithAppError(c, err, "Failed to save bkp entry")
		return
	}

	middleware.RespondWithSuccess(c, http.StatusCreated, "Bkp entry saved successfully", entry)
}

func (h *RegisterHandler) DeleteBackup(c *gin.Context) {
	id := c.Query("id")
	if id == "" {
		middleware.RespondWithError(c, http.StatusBadRequest, "Bkp entry ID is required")
		return
	}

	if err := h.commands.DeleteBackup(c.Request.Context(), cqrs.DeleteBackupCommand{ID: id}); err != nil {
		middleware.RespondWithAppError(c, err, "Failed to delete bkp entry")
		return
	}

	middleware.RespondWithSuccess(c, http.StatusOK, "Bkp entry deleted successfully", nil)
}

func (h *RegisterHandler) ListBackups(c *gin.Context) {
	entries, err := h.queries.ListBackups(c.Request.Context())
	if err != nil {
		middleware.RespondWithAppError(c, err, "Failed to fetch bkp entries")
		return
	}
	middleware.RespondWithSuccess(c, http.StatusOK, "Bkp entries fetched successfully", entries)
}
