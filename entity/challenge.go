package entity

import (
	"fmt"
	"time"
)

// Purpose scopes the validity of an OTP challenge. A code issued for one
// purpose never validates a request made for another.
type Purpose string

const (
	PurposeRegistration  Purpose = "REGISTRATION"
	PurposeLogin         Purpose = "LOGIN"
	PurposePasswordReset Purpose = "PASSWORD_RESET"
)

// ParsePurpose converts a request string into a known Purpose
func ParsePurpose(s string) (Purpose, error) {
	switch Purpose(s) {
	case PurposeRegistration, PurposeLogin, PurposePasswordReset:
		return Purpose(s), nil
	}
	return "", fmt.Errorf("unknown OTP purpose: %q", s)
}

// Challenge represents one OTP send attempt
type Challenge struct {
	ID           int64      `db:"id" json:"id"`
	MobileNumber string     `db:"mobile_number" json:"mobile_number" validate:"required,mobile_number"`
	Code         string     `db:"code" json:"code"`
	Purpose      Purpose    `db:"purpose" json:"purpose"`
	Verified     bool       `db:"verified" json:"verified"`
	ExpiresAt    time.Time  `db:"expires_at" json:"expires_at"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	VerifiedAt   *time.Time `db:"verified_at" json:"verified_at"`
}

// TableName returns the table name for the Challenge entity
func (Challenge) TableName() string {
	return "otp_challenges"
}

// SendOTPRequest represents the request to send an OTP
type SendOTPRequest struct {
	MobileNumber string `json:"mobile_number" validate:"required,mobile_number"`
	Purpose      string `json:"purpose" validate:"required,otp_purpose"`
}

// VerifyOTPRequest represents the request to verify an OTP
type VerifyOTPRequest struct {
	MobileNumber string `json:"mobile_number" validate:"required,mobile_number"`
	Code         string `json:"code" validate:"required,len=6,numeric"`
	Purpose      string `json:"purpose" validate:"required,otp_purpose"`
}

// LoginRequest represents the request to exchange a verified OTP for a session
type LoginRequest struct {
	MobileNumber string `json:"mobile_number" validate:"required,mobile_number"`
	Code         string `json:"code" validate:"required,len=6,numeric"`
}

// OTPResponse represents the OTP send response. Code is populated only when
// code exposure is explicitly enabled in configuration.
type OTPResponse struct {
	Message      string    `json:"message"`
	MobileNumber string    `json:"mobile_number"`
	ExpiresAt    time.Time `json:"expires_at"`
	Code         string    `json:"code,omitempty"`
}

// VerifyOTPResponse represents the OTP verification response
type VerifyOTPResponse struct {
	Verified bool   `json:"verified"`
	Message  string `json:"message"`
}
