package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/manikantaaddala217-hub/fin-backend/shared/cqrs"
	"github.com/manikantaaddala217-hub/fin-backend/shared/middleware"
	"github.com/manikantaaddala217-hub/fin-backend/shared/models"
)

// AuthQuerier defines the read-side operations used by AuthHandler.
type AuthQuerier interface {
	Login(context.Context, cqrs.LoginCommand) (*models.AuthResult, error)
	RefreshToken(context.Context, cqrs.RefreshTokenCommand) (*models.AuthResult, error)
}

// AuthCommander defines the password reset operations used by AuthHandler.
type AuthCommander interface {
	SendOTP(context.Context, cqrs.SendOTPCommand) error
	ValidateOTP(context.Context, cqrs.ValidateOTPCommand) error
	UpdatePassword(context.Context, cqrs.UpdatePasswordCommand) error
}

type AuthHandler struct {
	commands AuthCommander
	queries  AuthQuerier
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type RefreshTokenRequest struct {
	Token string `json:"token" validate:"required"`
}

type ValidateOTPRequest struct {
	Username string `json:"username" validate:"required"`
	OTP      string `json:"otp" validate:"required,len=6,numeric"`
}

type UpdatePasswordRequest struct {
	Username    string `json:"username" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=6"`
}

type AuthResponse struct {
	Success bool             `json:"success"`
	Message string           `json:"message"`
	Token   string           `json:"token"`
	User    *models.UserView `json:"user"`
}

func NewAuthHandler(commands AuthCommander, queries AuthQuerier) *AuthHandler {
	return &AuthHandler{commands: commands, queries: queries}
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	res, err := h.queries.Login(c.Request.Context(), cqrs.LoginCommand{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		middleware.RespondWithAppError(c, err, "Internal server error")
		return
	}

	c.JSON(http.StatusOK, AuthResponse{Success: true, Message: "Login successful", Token: res.Token, User: res.User})
}

func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	res, err := h.queries.RefreshToken(c.Request.Context(), cqrs.RefreshTokenCommand{
		Token: req.Token,
	})
	if err != nil {
		middleware.RespondWithAppError(c, err, "Internal server error")
		return
	}

	c.JSON(http.StatusOK, AuthResponse{Success: true, Message: "Token refreshed", Token: res.Token, User: res.User})
}

func (h *AuthHandler) SendOTP(c *gin.Context) {
	username := c.Query("username")
	if username == "" {
		middleware.RespondWithError(c, http.StatusBadRequest, "Username required")
		return
	}

	if err := h.commands.SendOTP(c.Request.Context(), cqrs.SendOTPCommand{Username: username}); err != nil {
		middleware.RespondWithAppError(c, err, "Failed to send OTP")
		return
	}

	middleware.RespondWithSuccess(c, http.StatusOK, "OTP sent successfully", nil)
}

func (h *AuthHandler) ValidateOTP(c *gin.Context) {
	var req ValidateOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	if err := h.commands.ValidateOTP(c.Request.Context(), cqrs.ValidateOTPCommand{
		Username: req.Username,
		OTP:      req.OTP,
	}); err != nil {
		middleware.RespondWithAppError(c, err, "OTP validation failed")
		return
	}

	middleware.RespondWithSuccess(c, http.StatusOK, "OTP verified successfully", nil)
}

func (h *AuthHandler) UpdatePassword(c *gin.Context) {
	var req UpdatePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	if err := h.commands.UpdatePassword(c.Request.Context(), cqrs.UpdatePasswordCommand{
		Username:    req.Username,
		NewPassword: req.NewPassword,
	}); err != nil {
		middleware.RespondWithAppError(c, err, "Failed to update password")
		return
	}

	middleware.RespondWithSuccess(c, http.StatusOK, "Password updated successfully", nil)
}
