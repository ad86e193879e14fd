package controller

import (
	"errors"
	"net/http"

	"emr-auth/entity"
	"emr-auth/pkg/logger"
	"emr-auth/service"
	"emr-auth/validator"

	"github.com/labstack/echo/v4"
)

// OTPController handles OTP-related HTTP requests
type OTPController struct {
	authService service.AuthService
	validator   *validator.Validator
	logger      *logger.Logger
}

// NewOTPController creates a new OTP controller instance
func NewOTPController(authService service.AuthService, validator *validator.Validator, logger *logger.Logger) *OTPController {
	return &OTPController{
		authService: authService,
		validator:   validator,
		logger:      logger,
	}
}

// SendOTP handles challenge creation
// @Summary Send OTP
// @Description Generate and send an OTP to the provided mobile number for a stated purpose
// @Tags OTP
// @Accept json
// @Produce json
// @Param request body entity.SendOTPRequest true "Send OTP Request"
// @Success 200 {object} entity.OTPResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 429 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /otp/send [post]
func (c *OTPController) SendOTP(ctx echo.Context) error {
	var req entity.SendOTPRequest

	if err := ctx.Bind(&req); err != nil {
		c.logger.Errorw("Failed to bind request", "error", err)
		return ctx.JSON(http.StatusBadRequest, map[string]interface{}{
			"error":   "Invalid request format",
			"details": err.Error(),
		})
	}

	if err := c.validator.ValidateStruct(&req); err != nil {
		c.logger.Warnw("Validation failed", "request", req, "error", err)
		return ctx.JSON(http.StatusBadRequest, map[string]interface{}{
			"error":   "Validation failed",
			"details": err.Error(),
		})
	}

	purpose, err := entity.ParsePurpose(req.Purpose)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, map[string]interface{}{
			"error":   "Validation failed",
			"details": err.Error(),
		})
	}

	response, err := c.authService.RequestChallenge(ctx.Request().Context(), req.MobileNumber, purpose)
	if err != nil {
		if errors.Is(err, service.ErrTooManyRequests) {
			return ctx.JSON(http.StatusTooManyRequests, map[string]interface{}{
				"error":   "Rate limit exceeded",
				"details": "Too many OTP requests for this mobile number. Please try again later.",
			})
		}

		c.logger.Errorw("Failed to send OTP", "mobile_number", req.MobileNumber, "error", err)
		return ctx.JSON(http.StatusInternalServerError, map[string]interface{}{
			"error":   "Failed to send OTP",
			"details": "Internal server error",
		})
	}

	return ctx.JSON(http.StatusOK, response)
}

// VerifyOTP handles challenge verification
// @Summary Verify OTP
// @Description Verify an OTP against a mobile number and purpose
// @Tags OTP
// @Accept json
// @Produce json
// @Param request body entity.VerifyOTPRequest true "Verify OTP Request"
// @Success 200 {object} entity.VerifyOTPResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /otp/verify [post]
func (c *OTPController) VerifyOTP(ctx echo.Context) error {
	var req entity.VerifyOTPRequest

	if err := ctx.Bind(&req); err != nil {
		c.logger.Errorw("Failed to bind request", "error", err)
		return ctx.JSON(http.StatusBadRequest, map[string]interface{}{
			"error":   "Invalid request format",
			"details": err.Error(),
		})
	}

	if err := c.validator.ValidateStruct(&req); err != nil {
		c.logger.Warnw("Validation failed", "request", req, "error", err)
		return ctx.JSON(http.StatusBadRequest, map[string]interface{}{
			"error":   "Validation failed",
			"details": err.Error(),
		})
	}

	purpose, err := entity.ParsePurpose(req.Purpose)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, map[string]interface{}{
			"error":   "Validation failed",
			"details": err.Error(),
		})
	}

	verified, err := c.authService.VerifyChallenge(ctx.Request().Context(), req.MobileNumber, req.Code, purpose)
	if err != nil {
		// Wrong code, expiry and lost races all read the same to callers.
		if errors.Is(err, service.ErrInvalidOrExpiredChallenge) || errors.Is(err, service.ErrChallengeAlreadyUsed) {
			return ctx.JSON(http.StatusUnauthorized, map[string]interface{}{
				"error":   "Invalid or expired OTP",
				"details": "Please request a new OTP",
			})
		}

		c.logger.Errorw("Failed to verify OTP", "mobile_number", req.MobileNumber, "error", err)
		return ctx.JSON(http.StatusInternalServerError, map[string]interface{}{
			"error":   "Failed to verify OTP",
			"details": "Internal server error",
		})
	}

	return ctx.JSON(http.StatusOK, entity.VerifyOTPResponse{
		Verified: verified,
		Message:  "OTP verified successfully",
	})
}
