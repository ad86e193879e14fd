package entity

import (
	"time"
)

// RateLimitInfo tracks OTP request counts for a mobile number inside a
// fixed window
type RateLimitInfo struct {
	MobileNumber  string    `json:"mobile_number"`
	RequestCount  int       `json:"request_count"`
	LastRequestAt time.Time `json:"last_request_at"`
	WindowStartAt time.Time `json:"window_start_at"`
}
