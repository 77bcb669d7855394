package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/manikantaaddala217-hub/fin-backend/shared/apperr"
	"github.com/manikantaaddala217-hub/fin-backend/shared/cqrs"
	"github.com/manikantaaddala217-hub/fin-backend/shared/events"
	"github.com/manikantaaddala217-hub/fin-backend/shared/models"
	"github.com/manikantaaddala217-hub/fin-backend/shared/utils"
	"github.com/manikantaaddala217-hub/fin-backend/user-service/internal/repository"
	"github.com/rs/zerolog/log"
)

// UserCommandService writes user state to SQL and keeps the Redis read
// model up to date.
type UserCommandService struct {
	writeRepo *repository.UserWriteRepository
	readRepo  *repository.UserReadRepository
	publisher *events.Publisher
}

func NewUserCommandService(
	writeRepo *repository.UserWriteRepository,
	readRepo *repository.UserReadRepository,
	publisher *events.Publisher,
) *UserCommandService {
	return &UserCommandService{
		writeRepo: writeRepo,
		readRepo:  readRepo,
		publisher: publisher,
	}
}

func (s *UserCommandService) CreateUser(ctx context.Context, cmd cqrs.CreateUserCommand) (*models.UserView, error) {
	role, err := normalizeRole(cmd.Role)
	if err != nil {
		return nil, err
	}
	passwordHash, err := utils.HashPassword(cmd.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user := &models.User{
		ID:           utils.GenerateID("usr"),
		Username:     strings.TrimSpace(cmd.Username),
		PasswordHash: passwordHash,
		Name:         cmd.Name,
		PhoneNo:      cmd.PhoneNo,
		Email:        cmd.Email,
		Role:         role,
		Areas:        cleanAreas(cmd.Areas),
	}
	if err := s.writeRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	view := models.ToUserView(user)
	s.readRepo.CacheUserView(ctx, view)
	s.publish(ctx, events.UserCreated, events.UserCreatedEvent{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
	})
	return view, nil
}

// UpdateUser applies the fields present in cmd. The password is re-hashed only
// when one is given.
func (s *UserCommandService) UpdateUser(ctx context.Context, cmd cqrs.UpdateUserCommand) (*models.UserView, error) {
	user, err := s.writeRepo.GetByID(ctx, cmd.UserID)
	if err != nil {
		return nil, err
	}
	if cmd.Name != nil {
		user.Name = *cmd.Name
	}
	if cmd.PhoneNo != nil {
		user.PhoneNo = *cmd.PhoneNo
	}
	if cmd.Email != nil {
		user.Email = *cmd.Email
	}
	if cmd.Role != nil {
		if user.Role, err = normalizeRole(*cmd.Role); err != nil {
			return nil, err
		}
	}
	if cmd.Areas != nil {
		user.Areas = cleanAreas(cmd.Areas)
	}
	if cmd.Password != nil && *cmd.Password != "" {
		if user.PasswordHash, err = utils.HashPassword(*cmd.Password); err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
	}
	if err := s.writeRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	view := models.ToUserView(user)
	s.readRepo.CacheUserView(ctx, view)
	s.publish(ctx, events.UserUpdated, events.UserUpdatedEvent{
		UserID:   user.ID,
		Username: user.Username,
	})
	return view, nil
}

func (s *UserCommandService) DeleteUser(ctx context.Context, cmd cqrs.DeleteUserCommand) error {
	if err := s.writeRepo.Delete(ctx, cmd.UserID); err != nil {
		return err
	}
	s.readRepo.InvalidateUserView(ctx, cmd.UserID)
	s.publish(ctx, events.UserDeleted, events.UserDeletedEvent{UserID: cmd.UserID})
	return nil
}

// AddArea gives every Admin user the area, so admins always see every line.
func (s *UserCommandService) AddArea(ctx context.Context, cmd cqrs.AddAreaCommand) (string, error) {
	area := strings.TrimSpace(cmd.AreaName)
	if area == "" {
		return "", apperr.Validation("Area Name is required")
	}
	admins, err := s.writeRepo.AddAreaToAdmins(ctx, area)
	if err != nil {
		return "", err
	}
	for i := range admins {
		s.readRepo.CacheUserView(ctx, models.ToUserView(&admins[i]))
	}
	return area, nil
}

// EnsureAdmin creates the first Admin account when none exists yet, so a
// fresh deployment has someone who can call the admin-only routes.
func (s *UserCommandService) EnsureAdmin(ctx context.Context, username, password string) (bool, error) {
	if username == "" || password == "" {
		return false, nil
	}
	n, err := s.writeRepo.CountAdmins(ctx)
	if err != nil || n > 0 {
		return false, err
	}
	if _, err := s.CreateUser(ctx, cqrs.CreateUserCommand{
		Username: username,
		Password: password,
		Name:     username,
		Role:     models.RoleAdmin,
	}); err != nil {
		return false, err
	}
	return true, nil
}

func (s *UserCommandService) publish(ctx context.Context, eventType string, data any) {
	if err := s.publisher.Publish(ctx, events.UserEventsStream, eventType, data); err != nil {
		log.Error().Err(err).Str("event", eventType).Msg("failed to publish event")
	}
}

// normalizeRole maps any casing of a known role to its canonical form.
// Empty means Agent.
func normalizeRole(role string) (string, error) {
	switch {
	case role == "":
		return models.RoleAgent, nil
	case strings.EqualFold(role, models.RoleAdmin):
		return models.RoleAdmin, nil
	case strings.EqualFold(role, models.RoleAgent):
		return models.RoleAgent, nil
	default:
		return "", apperr.Validation("Unknown role %q", role)
	}
}

func cleanAreas(areas []string) []string {
	out := make([]string, 0, len(areas))
	seen := make(map[string]bool, len(areas))
	for _, a := range areas {
		a = strings.TrimSpace(a)
		if a == "" || seen[a] {
			continue
		}
		seen[a] = true
		out = append(out, a)
	}
	return out
}
