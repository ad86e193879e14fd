package service

import (
	"context"
	"fmt"

	"emr-auth/config"
	"emr-auth/entity"
	"emr-auth/pkg/logger"
	"emr-auth/repository"
)

// AuthService composes the OTP lifecycle, principal lookup and credential
// issuance into the operations the surrounding application consumes
type AuthService interface {
	RequestChallenge(ctx context.Context, mobileNumber string, purpose entity.Purpose) (*entity.OTPResponse, error)
	VerifyChallenge(ctx context.Context, mobileNumber, code string, purpose entity.Purpose) (bool, error)
	Authenticate(ctx context.Context, mobileNumber, code string, purpose entity.Purpose) (*entity.SessionCredential, error)
}

// authService implements AuthService interface
type authService struct {
	otpService    OTPService
	jwtService    JWTService
	principalRepo repository.PrincipalRepository
	cfg           *config.Config
	logger        *logger.Logger
}

// NewAuthService creates a new auth service instance
func NewAuthService(otpService OTPService, jwtService JWTService, principalRepo repository.PrincipalRepository, cfg *config.Config, logger *logger.Logger) AuthService {
	return &authService{
		otpService:    otpService,
		jwtService:    jwtService,
		principalRepo: principalRepo,
		cfg:           cfg,
		logger:        logger,
	}
}

// RequestChallenge issues a new challenge and returns an opaque response.
// The raw code crosses this boundary only when code exposure is explicitly
// enabled in configuration.
func (s *authService) RequestChallenge(ctx context.Context, mobileNumber string, purpose entity.Purpose) (*entity.OTPResponse, error) {
	challenge, err := s.otpService.RequestChallenge(ctx, mobileNumber, purpose)
	if err != nil {
		return nil, err
	}

	resp := &entity.OTPResponse{
		Message:      fmt.Sprintf("OTP sent to %s", mobileNumber),
		MobileNumber: mobileNumber,
		ExpiresAt:    challenge.ExpiresAt,
	}
	if s.cfg.OTP.ExposeCodes {
		resp.Code = challenge.Code
	}

	return resp, nil
}

// VerifyChallenge reports true only when the code consumed a matching
// challenge
func (s *authService) VerifyChallenge(ctx context.Context, mobileNumber, code string, purpose entity.Purpose) (bool, error) {
	if err := s.otpService.VerifyChallenge(ctx, mobileNumber, code, purpose); err != nil {
		return false, err
	}
	return true, nil
}

// Authenticate exchanges a correct OTP for a signed session credential. The
// principal lookup happens only after OTP verification, so a failed OTP
// never reveals whether a mobile number is registered.
func (s *authService) Authenticate(ctx context.Context, mobileNumber, code string, purpose entity.Purpose) (*entity.SessionCredential, error) {
	if err := s.otpService.VerifyChallenge(ctx, mobileNumber, code, purpose); err != nil {
		return nil, err
	}

	principal, err := s.principalRepo.GetByMobileNumber(mobileNumber)
	if err != nil {
		s.logger.Errorw("Failed to look up principal", "mobile_number", mobileNumber, "error", err)
		return nil, fmt.Errorf("failed to look up principal: %w", err)
	}
	if principal == nil {
		return nil, ErrPrincipalNotFound
	}

	if !principal.IsActive || principal.IsBlocked {
		s.logger.Warnw("Disabled principal attempted login",
			"subject_id", principal.ID,
			"is_active", principal.IsActive,
			"is_blocked", principal.IsBlocked,
		)
		return nil, ErrAccountInactiveOrBlocked
	}

	credential, err := s.jwtService.IssueSession(principal)
	if err != nil {
		return nil, err
	}

	s.logger.Infow("Principal authenticated", "subject_id", principal.ID, "role", principal.Role)
	return credential, nil
}
