package entity

import (
	"time"
)

// Role identifies the kind of principal holding a session
type Role string

const (
	RoleDoctor  Role = "DOCTOR"
	RolePatient Role = "PATIENT"
)

// Principal is an authenticatable identity (doctor or patient). The
// authentication core consumes only the mobile-number lookup and the two
// status flags; clinical data lives with the surrounding application.
type Principal struct {
	ID           string    `db:"id" json:"id"`
	MobileNumber string    `db:"mobile_number" json:"mobile_number" validate:"required,mobile_number"`
	DisplayName  string    `db:"full_name" json:"display_name"`
	Role         Role      `db:"role" json:"role"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	IsBlocked    bool      `db:"is_blocked" json:"is_blocked"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// SessionCredential is the signed token pair issued after successful
// authentication. ExpiresIn is the access token lifetime in milliseconds.
type SessionCredential struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	SubjectID    string `json:"subject_id"`
	DisplayName  string `json:"display_name"`
	Role         Role   `json:"role"`
	ExpiresIn    int64  `json:"expires_in"`
}
