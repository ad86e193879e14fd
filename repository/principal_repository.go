package repository

import (
	"database/sql"
	"fmt"

	"emr-auth/entity"

	"github.com/jmoiron/sqlx"
)

// PrincipalRepository resolves mobile numbers to authenticatable identities.
// Doctors and patients live in separate tables owned by the surrounding
// application; the auth core only consumes this lookup.
type PrincipalRepository interface {
	GetByMobileNumber(mobileNumber string) (*entity.Principal, error)
}

// principalRepository implements PrincipalRepository interface
type principalRepository struct {
	db *sqlx.DB
}

// NewPrincipalRepository creates a new principal repository instance
func NewPrincipalRepository(db *sqlx.DB) PrincipalRepository {
	return &principalRepository{
		db: db,
	}
}

// GetByMobileNumber retrieves the principal owning a mobile number. Mobile
// numbers are unique across both tables, so at most one row matches.
func (r *principalRepository) GetByMobileNumber(mobileNumber string) (*entity.Principal, error) {
	query := `
		SELECT id, mobile_number, full_name, 'DOCTOR' AS role, is_active, is_blocked, created_at
		FROM doctors
		WHERE mobile_number = $1
		UNION ALL
		SELECT id, mobile_number, full_name, 'PATIENT' AS role, is_active, is_blocked, created_at
		FROM patients
		WHERE mobile_number = $1
		LIMIT 1
	`

	var principal entity.Principal
	err := r.db.Get(&principal, query, mobileNumber)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get principal by mobile number: %w", err)
	}

	return &principal, nil
}
