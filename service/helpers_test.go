package service

import (
	"context"
	"sync"
	"time"

	"emr-auth/config"
	"emr-auth/entity"
	"emr-auth/pkg/logger"
	"emr-auth/repository"
)

// fakeOTPRepo is an in-memory OTPRepository with the same compare-and-set
// semantics as the Postgres implementation: the single-use transition is
// atomic under the mutex, so concurrent verifies see exactly one winner.
type fakeOTPRepo struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]*entity.Challenge
}

func newFakeOTPRepo() *fakeOTPRepo {
	return &fakeOTPRepo{rows: make(map[int64]*entity.Challenge)}
}

func (r *fakeOTPRepo) Create(challenge *entity.Challenge) (*entity.Challenge, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	stored := *challenge
	stored.ID = r.nextID
	stored.CreatedAt = time.Now()
	stored.Verified = false
	r.rows[stored.ID] = &stored

	result := stored
	return &result, nil
}

func (r *fakeOTPRepo) GetActive(mobileNumber, code string, purpose entity.Purpose) (*entity.Challenge, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	var best *entity.Challenge
	for _, row := range r.rows {
		if row.MobileNumber != mobileNumber || row.Code != code || row.Purpose != purpose {
			continue
		}
		if row.Verified || !row.ExpiresAt.After(now) {
			continue
		}
		if best == nil || row.CreatedAt.After(best.CreatedAt) {
			best = row
		}
	}
	if best == nil {
		return nil, nil
	}
	result := *best
	return &result, nil
}

func (r *fakeOTPRepo) GetMostRecent(mobileNumber string, purpose entity.Purpose) (*entity.Challenge, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var best *entity.Challenge
	for _, row := range r.rows {
		if row.MobileNumber != mobileNumber || row.Purpose != purpose {
			continue
		}
		if best == nil || row.CreatedAt.After(best.CreatedAt) {
			best = row
		}
	}
	if best == nil {
		return nil, nil
	}
	result := *best
	return &result, nil
}

func (r *fakeOTPRepo) MarkVerified(id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	row, ok := r.rows[id]
	if !ok {
		return repository.ErrChallengeGone
	}
	if row.Verified {
		return repository.ErrChallengeConsumed
	}
	if !row.ExpiresAt.After(time.Now()) {
		return repository.ErrChallengeGone
	}

	now := time.Now()
	row.Verified = true
	row.VerifiedAt = &now
	return nil
}

func (r *fakeOTPRepo) DeleteExpired() (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	var deleted int64
	for id, row := range r.rows {
		if row.ExpiresAt.Before(now) {
			delete(r.rows, id)
			deleted++
		}
	}
	return deleted, nil
}

// insert places a challenge directly into the store, bypassing generation
func (r *fakeOTPRepo) insert(challenge entity.Challenge) *entity.Challenge {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	challenge.ID = r.nextID
	if challenge.CreatedAt.IsZero() {
		challenge.CreatedAt = time.Now()
	}
	r.rows[challenge.ID] = &challenge
	result := challenge
	return &result
}

func (r *fakeOTPRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rows)
}

// fakeRateLimitRepo keeps rate limit records in memory
type fakeRateLimitRepo struct {
	mu   sync.Mutex
	info map[string]*entity.RateLimitInfo
}

func newFakeRateLimitRepo() *fakeRateLimitRepo {
	return &fakeRateLimitRepo{info: make(map[string]*entity.RateLimitInfo)}
}

func (r *fakeRateLimitRepo) GetRateLimit(ctx context.Context, mobileNumber string) (*entity.RateLimitInfo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if info, ok := r.info[mobileNumber]; ok {
		result := *info
		return &result, nil
	}
	return &entity.RateLimitInfo{MobileNumber: mobileNumber}, nil
}

func (r *fakeRateLimitRepo) UpdateRateLimit(ctx context.Context, info *entity.RateLimitInfo) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *info
	r.info[info.MobileNumber] = &stored
	return nil
}

func (r *fakeRateLimitRepo) CleanupRateLimits(ctx context.Context) error {
	return nil
}

// fakePrincipalRepo resolves mobile numbers from a fixed map
type fakePrincipalRepo struct {
	principals map[string]*entity.Principal
}

func (r *fakePrincipalRepo) GetByMobileNumber(mobileNumber string) (*entity.Principal, error) {
	if p, ok := r.principals[mobileNumber]; ok {
		result := *p
		return &result, nil
	}
	return nil, nil
}

// recordingNotifier captures dispatched messages
type recordingNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (n *recordingNotifier) Send(mobileNumber, text string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, text)
}

func (n *recordingNotifier) last() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.messages) == 0 {
		return ""
	}
	return n.messages[len(n.messages)-1]
}

func testConfig() *config.Config {
	return &config.Config{
		JWT: config.JWT{
			Secret:          "test-secret",
			AccessTokenTTL:  24 * time.Hour,
			RefreshTokenTTL: 7 * 24 * time.Hour,
		},
		OTP: config.OTP{
			Length:         6,
			ExpirationTime: 2 * time.Minute,
		},
		RateLimit: config.RateLimit{
			MaxRequests:    3,
			WindowDuration: 10 * time.Minute,
		},
	}
}

func testLogger() *logger.Logger {
	log, err := logger.New("error", "development")
	if err != nil {
		panic(err)
	}
	return log
}
