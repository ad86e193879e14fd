package repository

import (
	"context"

	"emr-auth/entity"
)

// RateLimitRepository interface defines OTP request rate limiting operations
type RateLimitRepository interface {
	GetRateLimit(ctx context.Context, mobileNumber string) (*entity.RateLimitInfo, error)
	UpdateRateLimit(ctx context.Context, info *entity.RateLimitInfo) error
	CleanupRateLimits(ctx context.Context) error
}
