package service

import (
	"fmt"
	"time"

	"emr-auth/config"
	"emr-auth/entity"
	"emr-auth/pkg/logger"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

// JWTService interface defines session credential operations. Tokens are
// self-contained: the verifier needs only the signing secret, no storage.
type JWTService interface {
	IssueSession(principal *entity.Principal) (*entity.SessionCredential, error)
	ValidateAccessToken(tokenString string) (*AccessClaims, error)
}

// AccessClaims represents the access token claims
type AccessClaims struct {
	MobileNumber string      `json:"mobile_number"`
	DisplayName  string      `json:"display_name"`
	Role         entity.Role `json:"role"`
	TokenType    string      `json:"typ"`
	jwt.RegisteredClaims
}

// RefreshClaims represents the refresh token claims; subject identity only
type RefreshClaims struct {
	TokenType string `json:"typ"`
	jwt.RegisteredClaims
}

// jwtService implements JWTService interface
type jwtService struct {
	cfg    *config.Config
	logger *logger.Logger
}

// NewJWTService creates a new JWT service instance
func NewJWTService(cfg *config.Config, logger *logger.Logger) JWTService {
	return &jwtService{
		cfg:    cfg,
		logger: logger,
	}
}

// IssueSession mints a fresh access/refresh token pair for a principal.
// Every call produces unique tokens via a per-token jti.
func (s *jwtService) IssueSession(principal *entity.Principal) (*entity.SessionCredential, error) {
	now := time.Now()
	accessExpiry := now.Add(s.cfg.JWT.AccessTokenTTL)

	accessClaims := AccessClaims{
		MobileNumber: principal.MobileNumber,
		DisplayName:  principal.DisplayName,
		Role:         principal.Role,
		TokenType:    tokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   principal.ID,
			Issuer:    "emr-auth",
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(accessExpiry),
		},
	}

	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims).SignedString([]byte(s.cfg.JWT.Secret))
	if err != nil {
		s.logger.Errorw("Failed to sign access token", "subject_id", principal.ID, "error", err)
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	refreshClaims := RefreshClaims{
		TokenType: tokenTypeRefresh,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   principal.ID,
			Issuer:    "emr-auth",
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.JWT.RefreshTokenTTL)),
		},
	}

	refreshToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, refreshClaims).SignedString([]byte(s.cfg.JWT.Secret))
	if err != nil {
		s.logger.Errorw("Failed to sign refresh token", "subject_id", principal.ID, "error", err)
		return nil, fmt.Errorf("failed to sign refresh token: %w", err)
	}

	s.logger.Infow("Session issued",
		"subject_id", principal.ID,
		"role", principal.Role,
		"expires_at", accessExpiry,
	)

	return &entity.SessionCredential{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		SubjectID:    principal.ID,
		DisplayName:  principal.DisplayName,
		Role:         principal.Role,
		ExpiresIn:    s.cfg.JWT.AccessTokenTTL.Milliseconds(),
	}, nil
}

// ValidateAccessToken parses and verifies an access token signature and
// expiry without touching storage
func (s *jwtService) ValidateAccessToken(tokenString string) (*AccessClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AccessClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.cfg.JWT.Secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(*AccessClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	if claims.TokenType != tokenTypeAccess {
		return nil, fmt.Errorf("not an access token")
	}

	return claims, nil
}
