package handler

import (
	"emr-auth/controller"
	"emr-auth/pkg/logger"
	"emr-auth/service"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// RegisterRoutes registers all HTTP routes and middleware
func RegisterRoutes(
	e *echo.Echo,
	otpController *controller.OTPController,
	authController *controller.AuthController,
	healthController *controller.HealthController,
	jwtService service.JWTService,
	logger *logger.Logger,
) {
	e.Use(middleware.Recover())
	e.Use(CORSMiddleware())
	e.Use(RequestLoggerMiddleware(logger))

	// System endpoints
	e.GET("/health", healthController.HealthCheck)
	e.GET("/", healthController.ServiceInfo)

	// API v1 group
	v1 := e.Group("/api/v1")

	// OTP routes (public)
	otpGroup := v1.Group("/otp")
	otpGroup.POST("/send", otpController.SendOTP)
	otpGroup.POST("/verify", otpController.VerifyOTP)

	// Auth routes
	authGroup := v1.Group("/auth")
	authGroup.POST("/login", authController.Login)
	authGroup.GET("/profile", authController.Profile, JWTMiddleware(jwtService, logger))
}
