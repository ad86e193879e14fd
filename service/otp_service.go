package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"emr-auth/config"
	"emr-auth/entity"
	"emr-auth/pkg/logger"
	"emr-auth/repository"
)

// Notifier dispatches outbound text messages without ever blocking or
// failing the caller
type Notifier interface {
	Send(mobileNumber, text string)
}

// OTPService interface defines the challenge lifecycle operations
type OTPService interface {
	RequestChallenge(ctx context.Context, mobileNumber string, purpose entity.Purpose) (*entity.Challenge, error)
	VerifyChallenge(ctx context.Context, mobileNumber, code string, purpose entity.Purpose) error
	CleanupExpired(ctx context.Context) (int64, error)
}

// otpService implements OTPService interface
type otpService struct {
	otpRepo       repository.OTPRepository
	rateLimitRepo repository.RateLimitRepository
	notifier      Notifier
	cfg           *config.Config
	logger        *logger.Logger
}

// NewOTPService creates a new OTP service instance
func NewOTPService(otpRepo repository.OTPRepository, rateLimitRepo repository.RateLimitRepository, notifier Notifier, cfg *config.Config, logger *logger.Logger) OTPService {
	return &otpService{
		otpRepo:       otpRepo,
		rateLimitRepo: rateLimitRepo,
		notifier:      notifier,
		cfg:           cfg,
		logger:        logger,
	}
}

// RequestChallenge generates a fresh code, persists the challenge and hands
// the message to the notifier. Prior unexpired challenges for the same
// mobile number and purpose stay valid; each is independently single-use.
// Delivery failure never fails this operation.
func (s *otpService) RequestChallenge(ctx context.Context, mobileNumber string, purpose entity.Purpose) (*entity.Challenge, error) {
	limited, err := s.isRateLimited(ctx, mobileNumber)
	if err != nil {
		s.logger.Errorw("Failed to check rate limit", "mobile_number", mobileNumber, "error", err)
		return nil, fmt.Errorf("failed to check rate limit: %w", err)
	}
	if limited {
		return nil, ErrTooManyRequests
	}

	code, err := s.generateCode()
	if err != nil {
		s.logger.Errorw("Failed to generate OTP code", "error", err)
		return nil, fmt.Errorf("failed to generate OTP code: %w", err)
	}

	challenge := &entity.Challenge{
		MobileNumber: mobileNumber,
		Code:         code,
		Purpose:      purpose,
		ExpiresAt:    time.Now().Add(s.cfg.OTP.ExpirationTime),
	}

	created, err := s.otpRepo.Create(challenge)
	if err != nil {
		s.logger.Errorw("Failed to create challenge", "mobile_number", mobileNumber, "error", err)
		return nil, fmt.Errorf("failed to create challenge: %w", err)
	}

	if err := s.updateRateLimit(ctx, mobileNumber); err != nil {
		// The challenge exists; losing one rate limit increment is acceptable.
		s.logger.Errorw("Failed to update rate limit", "mobile_number", mobileNumber, "error", err)
	}

	s.notifier.Send(mobileNumber, s.composeMessage(purpose, code))

	s.logger.Infow("Challenge created",
		"mobile_number", mobileNumber,
		"purpose", purpose,
		"expires_at", created.ExpiresAt,
	)

	return created, nil
}

// VerifyChallenge checks an exact mobile/code/purpose match against an
// unverified, unexpired challenge and consumes it. Exactly one caller wins
// when requests race on the same challenge; the mark-verified step is a
// single conditional update in the store, never a read-then-write.
func (s *otpService) VerifyChallenge(ctx context.Context, mobileNumber, code string, purpose entity.Purpose) error {
	challenge, err := s.otpRepo.GetActive(mobileNumber, code, purpose)
	if err != nil {
		s.logger.Errorw("Failed to look up challenge", "mobile_number", mobileNumber, "error", err)
		return fmt.Errorf("failed to look up challenge: %w", err)
	}
	if challenge == nil {
		s.logger.Warnw("No matching challenge", "mobile_number", mobileNumber, "purpose", purpose)
		return ErrInvalidOrExpiredChallenge
	}

	err = s.otpRepo.MarkVerified(challenge.ID)
	switch {
	case err == nil:
	case errors.Is(err, repository.ErrChallengeConsumed):
		s.logger.Warnw("Challenge lost single-use race", "challenge_id", challenge.ID)
		return ErrChallengeAlreadyUsed
	case errors.Is(err, repository.ErrChallengeGone):
		// Expired or swept between lookup and update.
		return ErrInvalidOrExpiredChallenge
	default:
		s.logger.Errorw("Failed to mark challenge verified", "challenge_id", challenge.ID, "error", err)
		return fmt.Errorf("failed to mark challenge verified: %w", err)
	}

	s.logger.Infow("Challenge verified", "mobile_number", mobileNumber, "purpose", purpose)
	return nil
}

// CleanupExpired deletes challenges past expiry regardless of verified state
func (s *otpService) CleanupExpired(ctx context.Context) (int64, error) {
	deleted, err := s.otpRepo.DeleteExpired()
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired challenges: %w", err)
	}
	if deleted > 0 {
		s.logger.Infow("Expired challenges deleted", "count", deleted)
	}
	return deleted, nil
}

func (s *otpService) isRateLimited(ctx context.Context, mobileNumber string) (bool, error) {
	info, err := s.rateLimitRepo.GetRateLimit(ctx, mobileNumber)
	if err != nil {
		return false, err
	}

	if info.WindowStartAt.IsZero() {
		return false, nil
	}
	if time.Since(info.WindowStartAt) >= s.cfg.RateLimit.WindowDuration {
		return false, nil
	}

	return info.RequestCount >= s.cfg.RateLimit.MaxRequests, nil
}

func (s *otpService) updateRateLimit(ctx context.Context, mobileNumber string) error {
	info, err := s.rateLimitRepo.GetRateLimit(ctx, mobileNumber)
	if err != nil {
		return err
	}

	now := time.Now()
	if info.WindowStartAt.IsZero() || now.Sub(info.WindowStartAt) >= s.cfg.RateLimit.WindowDuration {
		info.RequestCount = 1
		info.WindowStartAt = now
	} else {
		info.RequestCount++
	}
	info.LastRequestAt = now

	return s.rateLimitRepo.UpdateRateLimit(ctx, info)
}

// generateCode produces a uniformly random code whose first digit is never
// zero, so the code is always exactly cfg.OTP.Length characters.
func (s *otpService) generateCode() (string, error) {
	length := s.cfg.OTP.Length
	lower := big.NewInt(1)
	for i := 0; i < length-1; i++ {
		lower.Mul(lower, big.NewInt(10))
	}
	span := new(big.Int).Mul(lower, big.NewInt(9))

	n, err := rand.Int(rand.Reader, span)
	if err != nil {
		return "", fmt.Errorf("failed to generate random number: %w", err)
	}

	return n.Add(n, lower).String(), nil
}

func (s *otpService) composeMessage(purpose entity.Purpose, code string) string {
	name := strings.ToLower(strings.ReplaceAll(string(purpose), "_", " "))
	minutes := int(s.cfg.OTP.ExpirationTime.Minutes())
	return fmt.Sprintf("Your EMR verification code for %s is: %s. Valid for %d minutes. Do not share it with anyone.", name, code, minutes)
}
