package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/manikantaaddala217-hub/fin-backend/shared/apperr"
	"github.com/manikantaaddala217-hub/fin-backend/shared/database"
	"github.com/manikantaaddala217-hub/fin-backend/shared/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserWriteRepository handles all state-mutating operations for users.
// It operates exclusively against the SQL store (source of truth).
type UserWriteRepository struct {
	db *gorm.DB
}

func NewUserWriteRepository(db *gorm.DB) *UserWriteRepository {
	return &UserWriteRepository{db: db}
}

func (r *UserWriteRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return apperr.Conflict("Username already exists")
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *UserWriteRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("User not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

func (r *UserWriteRepository) Update(ctx context.Context, user *models.User) error {
	res := r.db.WithContext(ctx).Model(user).Select("*").Omit("id", "username", "created_at").Updates(user)
	if res.Error != nil {
		return fmt.Errorf("failed to update user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("User not found")
	}
	return nil
}

func (r *UserWriteRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.User{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("User not found")
	}
	return nil
}

func (r *UserWriteRepository) CountAdmins(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Where("LOWER(role) = ?", "admin").Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count admins: %w", err)
	}
	return n, nil
}

// AddAreaToAdmins appends area to the area list of every Admin user that
// does not already hold it, and returns the updated admins. NotFound when
// there is no Admin at all.
func (r *UserWriteRepository) AddAreaToAdmins(ctx context.Context, area string) ([]models.User, error) {
	var admins []models.User
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("role = ?", models.RoleAdmin).
			Order("username").
			Find(&admins).Error; err != nil {
			return fmt.Errorf("failed to list admins: %w", err)
		}
		if len(admins) == 0 {
			return apperr.NotFound("No Admin users found")
		}
		for i := range admins {
			if contains(admins[i].Areas, area) {
				continue
			}
			admins[i].Areas = append(admins[i].Areas, area)
			if err := tx.Model(&admins[i]).Select("lines_handle", "updated_at").Updates(&admins[i]).Error; err != nil {
				return fmt.Errorf("failed to add area to %s: %w", admins[i].Username, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return admins, nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
