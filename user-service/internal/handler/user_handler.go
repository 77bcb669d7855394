package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/manikantaaddala217-hub/fin-backend/shared/cqrs"
	"github.com/manikantaaddala217-hub/fin-backend/shared/middleware"
	"github.com/manikantaaddala217-hub/fin-backend/shared/models"
	"github.com/manikantaaddala217-hub/fin-backend/shared/utils"
)

// UserCommander defines the write-side operations used by UserHandler.
type UserCommander interface {
	CreateUser(context.Context, cqrs.CreateUserCommand) (*models.UserView, error)
	UpdateUser(context.Context, cqrs.UpdateUserCommand) (*models.UserView, error)
	DeleteUser(context.Context, cqrs.DeleteUserCommand) error
	AddArea(context.Context, cqrs.AddAreaCommand) (string, error)
}

// UserQuerier defines the read-side operations used by UserHandler.
type UserQuerier interface {
	GetUser(context.Context, cqrs.GetUserQuery) (*models.UserView, error)
	ListUsers(context.Context) ([]*models.UserView, error)
}

// UserHandler routes requests to the command or query service as appropriate.
type UserHandler struct {
	commands UserCommander
	queries  UserQuerier
}

type CreateUserRequest struct {
	Username string   `json:"username" validate:"required,max=50"`
	Password string   `json:"password" validate:"required,min=6"`
	Name     string   `json:"name" validate:"required,max=50"`
	PhoneNo  string   `json:"phoneNo" validate:"omitempty,max=15"`
	Email    string   `json:"email" validate:"omitempty,email"`
	Role     string   `json:"role"`
	Areas    []string `json:"linesHandle"`
}

// UpdateUserRequest fields are optional; absent fields keep their value.
type UpdateUserRequest struct {
	Name     *string  `json:"name" validate:"omitempty,max=50"`
	PhoneNo  *string  `json:"phoneNo" validate:"omitempty,max=15"`
	Email    *string  `json:"email" validate:"omitempty,email"`
	Role     *string  `json:"role"`
	Areas    []string `json:"linesHandle"`
	Password *string  `json:"password" validate:"omitempty,min=6"`
}

type AddAreaRequest struct {
	AreaName string `json:"areaName" validate:"required"`
}

func NewUserHandler(commands UserCommander, queries UserQuerier) *UserHandler {
	return &UserHandler{commands: commands, queries: queries}
}

func (h *UserHandler) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	user, err := h.commands.CreateUser(c.Request.Context(), cqrs.CreateUserCommand{
		Username: req.Username,
		Password: req.Password,
		Name:     req.Name,
		PhoneNo:  req.PhoneNo,
		Email:    req.Email,
		Role:     req.Role,
		Areas:    req.Areas,
	})
	if err != nil {
		middleware.RespondWithAppError(c, err, "Failed to create user")
		return
	}

	middleware.RespondWithSuccess(c, http.StatusCreated, "User registered successfully", user)
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.queries.ListUsers(c.Request.Context())
	if err != nil {
		middleware.RespondWithAppError(c, err, "Failed to fetch users")
		return
	}
	middleware.RespondWithSuccess(c, http.StatusOK, "Users fetched successfully", users)
}

// GetUser lets admins read anyone; everybody else only themselves.
func (h *UserHandler) GetUser(c *gin.Context) {
	userID, ok := userIDParam(c)
	if !ok {
		return
	}
	claims, authed := middleware.GetClaims(c)
	if !authed {
		middleware.RespondWithError(c, http.StatusUnauthorized, "Authentication required")
		return
	}
	if !claims.IsAdmin() && claims.UserID != userID {
		middleware.RespondWithError(c, http.StatusForbidden, "You can only access your own user details")
		return
	}

	view, err := h.queries.GetUser(c.Request.Context(), cqrs.GetUserQuery{UserID: userID})
	if err != nil {
		middleware.RespondWithAppError(c, err, "Failed to fetch user")
		return
	}

	middleware.RespondWithSuccess(c, http.StatusOK, "User fetched successfully", view)
}

func (h *UserHandler) UpdateUser(c *gin.Context) {
	userID, ok := userIDParam(c)
	if !ok {
		return
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	view, err := h.commands.UpdateUser(c.Request.Context(), cqrs.UpdateUserCommand{
		UserID:   userID,
		Name:     req.Name,
		PhoneNo:  req.PhoneNo,
		Email:    req.Email,
		Role:     req.Role,
		Areas:    req.Areas,
		Password: req.Password,
	})
	if err != nil {
		middleware.RespondWithAppError(c, err, "Failed to update user")
		return
	}

	middleware.RespondWithSuccess(c, http.StatusOK, "User updated successfully", view)
}

func (h *UserHandler) DeleteUser(c *gin.Context) {
	userID, ok := userIDParam(c)
	if !ok {
		return
	}

	if err := h.commands.DeleteUser(c.Request.Context(), cqrs.DeleteUserCommand{UserID: userID}); err != nil {
		middleware.RespondWithAppError(c, err, "Failed to delete user")
		return
	}

	middleware.RespondWithSuccess(c, http.StatusOK, "User deleted successfully", nil)
}

func (h *UserHandler) AddArea(c *gin.Context) {
	var req AddAreaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	area, err := h.commands.AddArea(c.Request.Context(), cqrs.AddAreaCommand{AreaName: req.AreaName})
	if err != nil {
		middleware.RespondWithAppError(c, err, "Failed to add area")
		return
	}

	middleware.RespondWithSuccess(c, http.StatusOK, "Area '"+area+"' added successfully to all Admin users", nil)
}

// userIDParam reads the "id" query parameter and answers 400 when it is
// missing or not a user ID.
func userIDParam(c *gin.Context) (string, bool) {
	userID := c.Query("id")
	if userID == "" {
		middleware.RespondWithError(c, http.StatusBadRequest, "User ID is required")
		return "", false
	}
	if !utils.ValidateUserID(userID) {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid user ID")
		return "", false
	}
	return userID, true
}
