package handler

import (
	"net/http"

	"inventory-service/internal/tenant"
	"inventory-service/pkg/logger"
	"inventory-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// TenantHandler administers tenants. Its routes are not tenant scoped.
type TenantHandler struct {
	directory *tenant.Directory
}

// NewTenantHandler creates a tenant handler.
func NewTenantHandler(directory *tenant.Directory) *TenantHandler {
	return &TenantHandler{directory: directory}
}

// CreateTenant registers a new tenant
func (h *TenantHandler) CreateTenant(c echo.Context) error {
	var req tenant.CreateInput
	if err := c.Bind(&req); err != nil {
		return respondError(c, invalidRequest(err), "Invalid tenant request")
	}

	t, err := h.directory.Create(c.Request().Context(), req)
	if err != nil {
		return respondError(c, err, "Failed to create tenant")
	}

	prometheus.RecordTenantOperation("create")
	return c.JSON(http.StatusCreated, t)
}

// ListTenants returns all live tenants
func (h *TenantHandler) ListTenants(c echo.Context) error {
	tenants, err := h.directory.List(c.Request().Context())
	if err != nil {
		return respondError(c, err, "Failed to list tenants")
	}

	logger.FromEcho(c).Info("Tenants retrieved successfully", zap.Int("count", len(tenants)))
	return c.JSON(http.StatusOK, tenants)
}

// GetTenant returns one tenant
func (h *TenantHandler) GetTenant(c echo.Context) error {
	t, err := h.directory.Find(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, err, "Tenant not found")
	}
	return c.JSON(http.StatusOK, t)
}

// UpdateTenant changes a tenant, including its active flag
func (h *TenantHandler) UpdateTenant(c echo.Context) error {
	var req tenant.UpdateInput
	if err := c.Bind(&req); err != nil {
		return respondError(c, invalidRequest(err), "Invalid tenant request")
	}

	t, err := h.directory.Update(c.Request().Context(), c.Param("id"), req)
	if err != nil {
		return respondError(c, err, "Failed to update tenant")
	}

	prometheus.RecordTenantOperation("update")
	return c.JSON(http.StatusOK, t)
}

// DeleteTenant tombstones a tenant
func (h *TenantHandler) DeleteTenant(c echo.Context) error {
	if err := h.directory.Remove(c.Request().Context(), c.Param("id")); err != nil {
		return respondError(c, err, "Failed to delete tenant")
	}

	prometheus.RecordTenantOperation("delete")
	return c.NoContent(http.StatusNoContent)
}
