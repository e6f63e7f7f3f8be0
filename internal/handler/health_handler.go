package handler

import (
	"net/http"

	"inventory-service/prometheus"

	"github.com/labstack/echo/v4"
)

// HealthCheck handles the health check endpoint
func HealthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"status":  "healthy",
		"service": "inventory-service",
	})
}

// MetricsHandler exposes the Prometheus metrics
var MetricsHandler = echo.WrapHandler(prometheus.GetPrometheusHandler())
