package query

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/manikantaaddala217-hub/fin-backend/auth-service/internal/repository"
	"github.com/manikantaaddala217-hub/fin-backend/shared/apperr"
	"github.com/manikantaaddala217-hub/fin-backend/shared/cqrs"
	"github.com/manikantaaddala217-hub/fin-backend/shared/middleware"
	"github.com/manikantaaddala217-hub/fin-backend/shared/models"
	"github.com/manikantaaddala217-hub/fin-backend/shared/utils"
)

// AuthQueryService handles login and token refresh. Neither mutates
// application state, so they live on the query side.
type AuthQueryService struct {
	userRepo *repository.UserRepository
	tokenTTL time.Duration
}

func NewAuthQueryService(userRepo *repository.UserRepository, tokenTTL time.Duration) *AuthQueryService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AuthQueryService{userRepo: userRepo, tokenTTL: tokenTTL}
}

func (s *AuthQueryService) Login(ctx context.Context, cmd cqrs.LoginCommand) (*models.AuthResult, error) {
	user, err := s.userRepo.GetByUsername(ctx, cmd.Username)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.Unauthorized("Invalid credentials")
	}
	if err != nil {
		return nil, err
	}
	if !utils.CheckPassword(cmd.Password, user.PasswordHash) {
		return nil, apperr.Unauthorized("Invalid credentials")
	}
	return s.issue(user)
}

// RefreshToken re-issues a token for a still-valid one. Role and areas are
// re-read so a refreshed token reflects the current assignment.
func (s *AuthQueryService) RefreshToken(ctx context.Context, cmd cqrs.RefreshTokenCommand) (*models.AuthResult, error) {
	claims, err := middleware.ParseToken(cmd.Token)
	if err != nil {
		return nil, apperr.Unauthorized("Invalid token")
	}
	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.Unauthorized("Invalid token")
	}
	if err != nil {
		return nil, err
	}
	return s.issue(user)
}

func (s *AuthQueryService) issue(user *models.User) (*models.AuthResult, error) {
	token, err := s.generateToken(user)
	if err != nil {
		return nil, err
	}
	return &models.AuthResult{Token: token, User: models.ToUserView(user)}, nil
}

func (s *AuthQueryService) generateToken(user *models.User) (string, error) {
	now := time.Now()
	claims := middleware.Claims{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
		Areas:    user.Areas,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(middleware.JWTSecret())
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return signed, nil
}
