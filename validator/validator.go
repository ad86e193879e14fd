package validator

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"emr-auth/entity"

	"github.com/go-playground/validator/v10"
)

// Validator wraps the go-playground validator
type Validator struct {
	validator *validator.Validate
}

// New creates a new validator instance
func New() *Validator {
	v := validator.New()

	// Use json tags for field names in error messages
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	v.RegisterValidation("mobile_number", validateMobileNumber)
	v.RegisterValidation("otp_purpose", validateOTPPurpose)

	return &Validator{
		validator: v,
	}
}

// ValidateStruct validates a struct and returns formatted errors
func (v *Validator) ValidateStruct(s interface{}) error {
	if s == nil {
		return fmt.Errorf("input cannot be nil")
	}

	if err := v.validator.Struct(s); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			var errors []string
			for _, validationErr := range validationErrors {
				errors = append(errors, v.formatFieldError(validationErr))
			}
			return fmt.Errorf("validation failed: %s", strings.Join(errors, "; "))
		}
		return fmt.Errorf("validation error: %v", err)
	}
	return nil
}

// formatFieldError formats a single field validation error
func (v *Validator) formatFieldError(err validator.FieldError) string {
	field := err.Field()
	tag := err.Tag()
	param := err.Param()

	switch tag {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "len":
		return fmt.Sprintf("%s must be exactly %s characters long", field, param)
	case "numeric":
		return fmt.Sprintf("%s must contain only digits", field)
	case "mobile_number":
		return fmt.Sprintf("%s must be a valid mobile number (format: +1234567890)", field)
	case "otp_purpose":
		return fmt.Sprintf("%s must be one of REGISTRATION, LOGIN, PASSWORD_RESET", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

// validateMobileNumber accepts international format: + followed by a
// country code and 7-15 digits total
func validateMobileNumber(fl validator.FieldLevel) bool {
	mobileRegex := regexp.MustCompile(`^\+[1-9]\d{6,14}$`)
	return mobileRegex.MatchString(fl.Field().String())
}

// validateOTPPurpose accepts the known challenge purposes
func validateOTPPurpose(fl validator.FieldLevel) bool {
	_, err := entity.ParsePurpose(fl.Field().String())
	return err == nil
}
