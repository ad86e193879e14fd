package service

import "errors"

var (
	// ErrInvalidOrExpiredChallenge covers wrong code, wrong purpose, expiry
	// and unknown mobile number alike, so the OTP step never leaks which
	// numbers are registered.
	ErrInvalidOrExpiredChallenge = errors.New("invalid or expired OTP")
	// ErrChallengeAlreadyUsed is returned to callers that lose the
	// single-use race on a challenge.
	ErrChallengeAlreadyUsed = errors.New("OTP already used")
	// ErrPrincipalNotFound is surfaced only after a correct OTP.
	ErrPrincipalNotFound = errors.New("no account for this mobile number")
	// ErrAccountInactiveOrBlocked rejects disabled principals after a
	// correct OTP.
	ErrAccountInactiveOrBlocked = errors.New("account is inactive or blocked")
	// ErrTooManyRequests throttles challenge requests per mobile number.
	ErrTooManyRequests = errors.New("too many OTP requests")
)
