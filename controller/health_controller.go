package controller

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type HealthController struct{}

func NewHealthController() *HealthController {
	return &HealthController{}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status  string `json:"status" example:"healthy"`
	Service string `json:"service" example:"emr-auth"`
	Version string `json:"version" example:"1.0.0"`
}

// HealthCheck returns the health status of the service
func (h *HealthController) HealthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{
		Status:  "healthy",
		Service: "emr-auth",
		Version: "1.0.0",
	})
}

// ServiceInfo returns basic service information
func (h *HealthController) ServiceInfo(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"message": "EMR Authentication Service",
		"version": "1.0.0",
	})
}
