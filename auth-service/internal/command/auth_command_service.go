package command

import (
	"context"
	"crypto/subtle"
	"fmt"
	"time"

	"github.com/manikantaaddala217-hub/fin-backend/auth-service/internal/notify"
	"github.com/manikantaaddala217-hub/fin-backend/auth-service/internal/otp"
	"github.com/manikantaaddala217-hub/fin-backend/auth-service/internal/repository"
	"github.com/manikantaaddala217-hub/fin-backend/shared/apperr"
	"github.com/manikantaaddala217-hub/fin-backend/shared/cqrs"
	"github.com/manikantaaddala217-hub/fin-backend/shared/utils"
	"github.com/rs/zerolog/log"
)

// MaxOTPAttempts is how many wrong codes a user may enter before the
// current code is discarded.
const MaxOTPAttempts = 5

// AuthCommandService runs the password reset flow: send a code, validate it,
// then set a new password while the resulting grant is live.
type AuthCommandService struct {
	userRepo *repository.UserRepository
	store    otp.Store
	mailer   notify.Mailer
	otpTTL   time.Duration
	grantTTL time.Duration
	genOTP   func() (string, error)
}

func NewAuthCommandService(
	userRepo *repository.UserRepository,
	store otp.Store,
	mailer notify.Mailer,
	otpTTL, grantTTL time.Duration,
) *AuthCommandService {
	return &AuthCommandService{
		userRepo: userRepo,
		store:    store,
		mailer:   mailer,
		otpTTL:   otpTTL,
		grantTTL: grantTTL,
		genOTP:   utils.GenerateOTP,
	}
}

func (s *AuthCommandService) SendOTP(ctx context.Context, cmd cqrs.SendOTPCommand) error {
	user, err := s.userRepo.GetByUsername(ctx, cmd.Username)
	if err != nil {
		return err
	}
	if user.Email == "" {
		return apperr.Validation("No email address on file for this user")
	}

	code, err := s.genOTP()
	if err != nil {
		return err
	}
	if err := s.store.Set(ctx, otp.CodeKey(user.Username), code, s.otpTTL); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, otp.AttemptsKey(user.Username)); err != nil {
		return err
	}

	subject, body := notify.OTPMessage(code, int(s.otpTTL/time.Minute))
	if err := s.mailer.Send(ctx, user.Email, subject, body); err != nil {
		_ = s.store.Delete(ctx, otp.CodeKey(user.Username))
		return fmt.Errorf("failed to deliver otp: %w", err)
	}
	log.Info().Str("username", user.Username).Msg("otp sent")
	return nil
}

// ValidateOTP consumes a matching code and opens the password reset window.
// After MaxOTPAttempts wrong codes the code is discarded and a new one must
// be requested.
func (s *AuthCommandService) ValidateOTP(ctx context.Context, cmd cqrs.ValidateOTPCommand) error {
	key := otp.CodeKey(cmd.Username)
	attemptsKey := otp.AttemptsKey(cmd.Username)
	code, ok, err := s.store.Get(ctx, key)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.Validation("OTP expired or not found")
	}
	if subtle.ConstantTimeCompare([]byte(code), []byte(cmd.OTP)) != 1 {
		misses, err := s.store.Incr(ctx, attemptsKey, s.otpTTL)
		if err != nil {
			return err
		}
		if misses >= MaxOTPAttempts {
			if err := s.store.Delete(ctx, key); err != nil {
				return err
			}
			_ = s.store.Delete(ctx, attemptsKey)
			log.Warn().Str("username", cmd.Username).Int64("attempts", misses).Msg("otp discarded after repeated misses")
			return apperr.Validation("Too many invalid attempts, request a new OTP")
		}
		return apperr.Validation("Invalid OTP")
	}
	if err := s.store.Delete(ctx, key); err != nil {
		return err
	}
	_ = s.store.Delete(ctx, attemptsKey)
	return s.store.Set(ctx, otp.GrantKey(cmd.Username), "1", s.grantTTL)
}

func (s *AuthCommandService) UpdatePassword(ctx context.Context, cmd cqrs.UpdatePasswordCommand) error {
	grantKey := otp.GrantKey(cmd.Username)
	_, ok, err := s.store.Get(ctx, grantKey)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.Unauthorized("OTP verification required")
	}

	hash, err := utils.HashPassword(cmd.NewPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.userRepo.UpdatePassword(ctx, cmd.Username, hash); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, grantKey); err != nil {
		log.Warn().Err(err).Str("username", cmd.Username).Msg("failed to consume reset grant")
	}
	return nil
}
