package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/manikantaaddala217-hub/fin-backend/shared/apperr"
	"github.com/manikantaaddala217-hub/fin-backend/shared/models"
	sharedredis "github.com/manikantaaddala217-hub/fin-backend/shared/redis"
	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const userViewKeyPrefix = "user:view:"

// UserReadRepository handles all read operations for users.
// It uses Redis as the primary read store for single users, falling back to
// SQL on a miss. Listings always go to SQL.
type UserReadRepository struct {
	db    *gorm.DB
	cache *sharedredis.ViewCache[models.UserView]
}

func NewUserReadRepository(db *gorm.DB, redisClient goredis.UniversalClient) *UserReadRepository {
	return &UserReadRepository{
		db:    db,
		cache: sharedredis.NewViewCache[models.UserView](redisClient, 0),
	}
}

// GetByID returns a UserView from Redis first, then SQL.
func (r *UserReadRepository) GetByID(ctx context.Context, id string) (*models.UserView, error) {
	cacheKey := userViewKeyPrefix + id

	if view, ok := r.cache.Get(ctx, cacheKey); ok {
		return view, nil
	}

	var user models.User
	err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("User not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	view := models.ToUserView(&user)
	r.CacheUserView(ctx, view)
	return view, nil
}

// ListNonAdmin returns every user whose role is not admin (any case),
// ordered by username.
func (r *UserReadRepository) ListNonAdmin(ctx context.Context) ([]*models.UserView, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).
		Where("LOWER(role) <> ?", "admin").
		Order("username ASC").
		Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	views := make([]*models.UserView, 0, len(users))
	for i := range users {
		views = append(views, models.ToUserView(&users[i]))
	}
	return views, nil
}

// CacheUserView stores or refreshes the Redis read model for a user.
// Called by the command service after every mutation.
func (r *UserReadRepository) CacheUserView(ctx context.Context, view *models.UserView) {
	r.cache.Set(ctx, userViewKeyPrefix+view.ID, view)
}

// InvalidateUserView removes the Redis read model entry for a deleted user.
func (r *UserReadRepository) InvalidateUserView(ctx context.Context, userID string) {
	r.cache.Delete(ctx, userViewKeyPrefix+userID)
}
