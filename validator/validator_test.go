package validator

import (
	"testing"

	"emr-auth/entity"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	v := New()

	assert.NotNil(t, v)
	assert.NotNil(t, v.validator)
}

func TestValidateStructSuccess(t *testing.T) {
	v := New()

	req := entity.SendOTPRequest{
		MobileNumber: "+919812345678",
		Purpose:      "LOGIN",
	}

	assert.NoError(t, v.ValidateStruct(&req))
}

func TestValidateStructNil(t *testing.T) {
	v := New()

	assert.Error(t, v.ValidateStruct(nil))
}

func TestValidateMobileNumber(t *testing.T) {
	v := New()

	tests := []struct {
		name         string
		mobileNumber string
		valid        bool
	}{
		{"international format", "+919812345678", true},
		{"us number", "+15551234567", true},
		{"shortest allowed", "+1234567", true},
		{"missing plus", "919812345678", false},
		{"leading zero country code", "+0912345678", false},
		{"letters", "invalid-phone", false},
		{"too short", "+12345", false},
		{"too long", "+1234567890123456", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := entity.SendOTPRequest{
				MobileNumber: tt.mobileNumber,
				Purpose:      "LOGIN",
			}

			err := v.ValidateStruct(&req)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), "mobile_number")
			}
		})
	}
}

func TestValidatePurpose(t *testing.T) {
	v := New()

	tests := []struct {
		name    string
		purpose string
		valid   bool
	}{
		{"registration", "REGISTRATION", true},
		{"login", "LOGIN", true},
		{"password reset", "PASSWORD_RESET", true},
		{"lowercase", "login", false},
		{"unknown", "SIGNUP", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := entity.SendOTPRequest{
				MobileNumber: "+919812345678",
				Purpose:      tt.purpose,
			}

			err := v.ValidateStruct(&req)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidateVerifyRequest(t *testing.T) {
	v := New()

	tests := []struct {
		name  string
		code  string
		valid bool
	}{
		{"six digits", "482193", true},
		{"too short", "4821", false},
		{"too long", "48219312", false},
		{"non numeric", "48a193", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := entity.VerifyOTPRequest{
				MobileNumber: "+919812345678",
				Code:         tt.code,
				Purpose:      "LOGIN",
			}

			err := v.ValidateStruct(&req)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
