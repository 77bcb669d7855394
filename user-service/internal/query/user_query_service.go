package query

import (
	"context"

	"github.com/manikantaaddala217-hub/fin-backend/shared/cqrs"
	"github.com/manikantaaddala217-hub/fin-backend/shared/models"
	"github.com/manikantaaddala217-hub/fin-backend/user-service/internal/repository"
)

// UserQueryService reads user views from the Redis cache (with a SQL fallback).
type UserQueryService struct {
	readRepo *repository.UserReadRepository
}

func NewUserQueryService(readRepo *repository.UserReadRepository) *UserQueryService {
	return &UserQueryService{readRepo: readRepo}
}

func (s *UserQueryService) GetUser(ctx context.Context, q cqrs.GetUserQuery) (*models.UserView, error) {
	return s.readRepo.GetByID(ctx, q.UserID)
}

func (s *UserQueryService) ListUsers(ctx context.Context) ([]*models.UserView, error) {
	return s.readRepo.ListNonAdmin(ctx)
}
