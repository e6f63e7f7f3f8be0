package handler

import (
	"net/http"

	"inventory-service/internal/apperr"
	"inventory-service/internal/auth"
	"inventory-service/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Credentials is the body of login and register requests. The tenant may
// also travel in the x-tenant-id header or the tenantId query parameter.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	TenantID string `json:"tenantId,omitempty"`
}

// AuthHandler serves login, registration and the current principal.
type AuthHandler struct {
	service *auth.Service
}

// NewAuthHandler creates an auth handler.
func NewAuthHandler(service *auth.Service) *AuthHandler {
	return &AuthHandler{service: service}
}

// Login authenticates against the tenant resolved for the request
func (h *AuthHandler) Login(c echo.Context) error {
	log := logger.FromEcho(c)

	var req Credentials
	if err := c.Bind(&req); err != nil {
		return respondError(c, invalidRequest(err), "Failed to parse login request")
	}

	result, err := h.service.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return respondError(c, err, "Login failed")
	}

	log.Info("Login successful", zap.String("user_id", result.User.ID))
	return c.JSON(http.StatusOK, result)
}

// Register creates a user in the tenant resolved for the request
func (h *AuthHandler) Register(c echo.Context) error {
	var req Credentials
	if err := c.Bind(&req); err != nil {
		return respondError(c, invalidRequest(err), "Failed to parse register request")
	}

	user, err := h.service.Register(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return respondError(c, err, "Registration failed")
	}

	return c.JSON(http.StatusCreated, user)
}

// Me returns the authenticated principal
func (h *AuthHandler) Me(c echo.Context) error {
	principal, ok := c.Get("user").(*auth.Principal)
	if !ok {
		return respondError(c, apperr.ErrInvalidCredentials, "Not authenticated")
	}
	return c.JSON(http.StatusOK, principal)
}
