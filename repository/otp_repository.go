package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"emr-auth/entity"

	"github.com/jmoiron/sqlx"
)

var (
	// ErrChallengeConsumed is returned by MarkVerified when the row exists
	// but another caller already won the single-use transition.
	ErrChallengeConsumed = errors.New("challenge already verified")
	// ErrChallengeGone is returned by MarkVerified when the row is missing
	// or expired, e.g. after a reaper sweep.
	ErrChallengeGone = errors.New("challenge missing or expired")
)

// OTPRepository interface defines challenge data operations
type OTPRepository interface {
	Create(challenge *entity.Challenge) (*entity.Challenge, error)
	GetActive(mobileNumber, code string, purpose entity.Purpose) (*entity.Challenge, error)
	GetMostRecent(mobileNumber string, purpose entity.Purpose) (*entity.Challenge, error)
	MarkVerified(id int64) error
	DeleteExpired() (int64, error)
}

// otpRepository implements OTPRepository interface
type otpRepository struct {
	db *sqlx.DB
}

// NewOTPRepository creates a new OTP repository instance
func NewOTPRepository(db *sqlx.DB) OTPRepository {
	return &otpRepository{
		db: db,
	}
}

// Create inserts a new challenge row. Existing unexpired rows for the same
// mobile number and purpose are left untouched; each remains independently
// valid until its own expiry or its own single use.
func (r *otpRepository) Create(challenge *entity.Challenge) (*entity.Challenge, error) {
	query := `
		INSERT INTO otp_challenges (mobile_number, code, purpose, verified, expires_at, created_at)
		VALUES (:mobile_number, :code, :purpose, :verified, :expires_at, :created_at)
		RETURNING id, mobile_number, code, purpose, verified, expires_at, created_at, verified_at
	`

	challenge.CreatedAt = time.Now()
	challenge.Verified = false

	rows, err := r.db.NamedQuery(query, challenge)
	if err != nil {
		return nil, fmt.Errorf("failed to create challenge: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, fmt.Errorf("failed to get created challenge")
	}

	var created entity.Challenge
	if err := rows.StructScan(&created); err != nil {
		return nil, fmt.Errorf("failed to scan created challenge: %w", err)
	}

	return &created, nil
}

// GetActive retrieves an unverified, unexpired challenge matching the exact
// mobile number, code and purpose
func (r *otpRepository) GetActive(mobileNumber, code string, purpose entity.Purpose) (*entity.Challenge, error) {
	query := `
		SELECT id, mobile_number, code, purpose, verified, expires_at, created_at, verified_at
		FROM otp_challenges
		WHERE mobile_number = $1 AND code = $2 AND purpose = $3
		  AND verified = FALSE AND expires_at > CURRENT_TIMESTAMP
		ORDER BY created_at DESC
		LIMIT 1
	`

	var challenge entity.Challenge
	err := r.db.Get(&challenge, query, mobileNumber, code, purpose)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get challenge: %w", err)
	}

	return &challenge, nil
}

// GetMostRecent retrieves the latest challenge for a mobile number and
// purpose regardless of state
func (r *otpRepository) GetMostRecent(mobileNumber string, purpose entity.Purpose) (*entity.Challenge, error) {
	query := `
		SELECT id, mobile_number, code, purpose, verified, expires_at, created_at, verified_at
		FROM otp_challenges
		WHERE mobile_number = $1 AND purpose = $2
		ORDER BY created_at DESC
		LIMIT 1
	`

	var challenge entity.Challenge
	err := r.db.Get(&challenge, query, mobileNumber, purpose)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get most recent challenge: %w", err)
	}

	return &challenge, nil
}

// MarkVerified performs the single-use transition as one conditional update.
// Concurrent callers racing on the same row see exactly one success; the
// rest get ErrChallengeConsumed, or ErrChallengeGone if the row expired or
// was swept in between.
func (r *otpRepository) MarkVerified(id int64) error {
	query := `
		UPDATE otp_challenges
		SET verified = TRUE, verified_at = CURRENT_TIMESTAMP
		WHERE id = $1 AND verified = FALSE AND expires_at > CURRENT_TIMESTAMP
	`

	result, err := r.db.Exec(query, id)
	if err != nil {
		return fmt.Errorf("failed to mark challenge verified: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected > 0 {
		return nil
	}

	// Classification only; the transition above is the sole mutation.
	var verified bool
	err = r.db.Get(&verified, `SELECT verified FROM otp_challenges WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return ErrChallengeGone
	}
	if err != nil {
		return fmt.Errorf("failed to inspect challenge state: %w", err)
	}
	if verified {
		return ErrChallengeConsumed
	}
	return ErrChallengeGone
}

// DeleteExpired deletes challenges past their expiry regardless of verified
// state and returns the number of rows removed
func (r *otpRepository) DeleteExpired() (int64, error) {
	query := `DELETE FROM otp_challenges WHERE expires_at < CURRENT_TIMESTAMP`

	result, err := r.db.Exec(query)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired challenges: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected, nil
}
