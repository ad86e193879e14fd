package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"emr-auth/config"
	"emr-auth/entity"
	"emr-auth/pkg/logger"

	"github.com/redis/go-redis/v9"
)

// RedisRateLimitRepository implements OTP request rate limiting using Redis.
// Keys carry a TTL matching the remaining window, so expiry is mostly
// Redis's job; CleanupRateLimits only repairs keys that lost their TTL.
type RedisRateLimitRepository struct {
	client *redis.Client
	config *config.Config
	logger *logger.Logger
}

// NewRedisRateLimitRepository creates a new Redis rate limit repository
func NewRedisRateLimitRepository(client *redis.Client, cfg *config.Config, logger *logger.Logger) RateLimitRepository {
	return &RedisRateLimitRepository{
		client: client,
		config: cfg,
		logger: logger,
	}
}

func rateLimitKey(mobileNumber string) string {
	return fmt.Sprintf("otp_rate:%s", mobileNumber)
}

// GetRateLimit retrieves rate limit information for a mobile number. A
// missing key yields a zero-count record rather than an error.
func (r *RedisRateLimitRepository) GetRateLimit(ctx context.Context, mobileNumber string) (*entity.RateLimitInfo, error) {
	data, err := r.client.Get(ctx, rateLimitKey(mobileNumber)).Result()
	if err == redis.Nil {
		return &entity.RateLimitInfo{MobileNumber: mobileNumber}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get rate limit info: %w", err)
	}

	var info entity.RateLimitInfo
	if err := json.Unmarshal([]byte(data), &info); err != nil {
		return nil, fmt.Errorf("failed to unmarshal rate limit info: %w", err)
	}

	return &info, nil
}

// UpdateRateLimit stores rate limit information with a TTL covering the
// remainder of the current window
func (r *RedisRateLimitRepository) UpdateRateLimit(ctx context.Context, info *entity.RateLimitInfo) error {
	now := time.Now()
	windowDuration := r.config.RateLimit.WindowDuration

	if info.WindowStartAt.IsZero() {
		info.WindowStartAt = now
	}

	ttl := info.WindowStartAt.Add(windowDuration).Sub(now)
	if ttl <= 0 {
		info.WindowStartAt = now
		info.RequestCount = 1
		ttl = windowDuration
	} else if ttl < time.Minute {
		ttl = time.Minute
	}

	data, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("failed to marshal rate limit info: %w", err)
	}

	if err := r.client.Set(ctx, rateLimitKey(info.MobileNumber), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to update rate limit info: %w", err)
	}

	r.logger.Debugw("Rate limit updated",
		"mobile_number", info.MobileNumber,
		"request_count", info.RequestCount,
		"ttl_seconds", int(ttl.Seconds()),
	)

	return nil
}

// CleanupRateLimits re-arms TTLs on any rate limit keys left without one
func (r *RedisRateLimitRepository) CleanupRateLimits(ctx context.Context) error {
	keys, err := r.client.Keys(ctx, "otp_rate:*").Result()
	if err != nil {
		return fmt.Errorf("failed to list rate limit keys: %w", err)
	}

	repaired := 0
	for _, key := range keys {
		ttl, err := r.client.TTL(ctx, key).Result()
		if err != nil {
			r.logger.Warnw("Failed to get TTL for rate limit key", "key", key, "error", err)
			continue
		}
		if ttl == -1 {
			if err := r.client.Expire(ctx, key, r.config.RateLimit.WindowDuration).Err(); err != nil {
				r.logger.Warnw("Failed to set TTL for rate limit key", "key", key, "error", err)
				continue
			}
			repaired++
		}
	}

	if repaired > 0 {
		r.logger.Infow("Rate limit cleanup completed", "keys_repaired", repaired)
	}

	return nil
}
