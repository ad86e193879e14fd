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

// AuthController handles session issuance and token-protected requests
type AuthController struct {
	authService service.AuthService
	validator   *validator.Validator
	logger      *logger.Logger
}

// NewAuthController creates a new auth controller
func NewAuthController(authService service.AuthService, validator *validator.Validator, logger *logger.Logger) *AuthController {
	return &AuthController{
		authService: authService,
		validator:   validator,
		logger:      logger,
	}
}

// Login exchanges a correct login OTP for a signed token pair
// @Summary Login
// @Description Authenticate a mobile number with a login OTP and issue session credentials
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body entity.LoginRequest true "Login Request"
// @Success 200 {object} entity.SessionCredential
// @Failure 400 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /auth/login [post]
func (c *AuthController) Login(ctx echo.Context) error {
	var req entity.LoginRequest

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

	credential, err := c.authService.Authenticate(ctx.Request().Context(), req.MobileNumber, req.Code, entity.PurposeLogin)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidOrExpiredChallenge), errors.Is(err, service.ErrChallengeAlreadyUsed):
			return ctx.JSON(http.StatusUnauthorized, map[string]interface{}{
				"error":   "Invalid or expired OTP",
				"details": "Please request a new OTP",
			})
		case errors.Is(err, service.ErrPrincipalNotFound):
			return ctx.JSON(http.StatusNotFound, map[string]interface{}{
				"error":   "Account not found",
				"details": "No account is registered for this mobile number",
			})
		case errors.Is(err, service.ErrAccountInactiveOrBlocked):
			return ctx.JSON(http.StatusForbidden, map[string]interface{}{
				"error":   "Account disabled",
				"details": "This account is inactive or blocked",
			})
		}

		c.logger.Errorw("Failed to authenticate", "mobile_number", req.MobileNumber, "error", err)
		return ctx.JSON(http.StatusInternalServerError, map[string]interface{}{
			"error":   "Failed to authenticate",
			"details": "Internal server error",
		})
	}

	return ctx.JSON(http.StatusOK, credential)
}

// Profile returns the identity claims of the presented access token
// @Summary Profile
// @Description Return the identity embedded in the presented access token
// @Tags Authentication
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Router /auth/profile [get]
func (c *AuthController) Profile(ctx echo.Context) error {
	claims, ok := ctx.Get("claims").(*service.AccessClaims)
	if !ok {
		return ctx.JSON(http.StatusUnauthorized, map[string]interface{}{
			"error":   "Unauthorized",
			"details": "Missing token claims",
		})
	}

	return ctx.JSON(http.StatusOK, map[string]interface{}{
		"subject_id":    claims.Subject,
		"mobile_number": claims.MobileNumber,
		"display_name":  claims.DisplayName,
		"role":          claims.Role,
	})
}
