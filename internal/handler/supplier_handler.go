package handler

import (
	"net/http"

	"inventory-service/internal/repository"

	"github.com/labstack/echo/v4"
)

// SupplierHandler serves the suppliers of the bound tenant.
type SupplierHandler struct {
	repo *repository.SupplierRepository
}

// NewSupplierHandler creates a supplier handler.
func NewSupplierHandler(repo *repository.SupplierRepository) *SupplierHandler {
	return &SupplierHandler{repo: repo}
}

// ListSuppliers returns one page of suppliers
func (h *SupplierHandler) ListSuppliers(c echo.Context) error {
	p, err := bindPagination(c)
	if err != nil {
		return respondError(c, err, "Invalid pagination")
	}

	page, err := h.repo.List(c.Request().Context(), p)
	if err != nil {
		return respondError(c, err, "Failed to retrieve suppliers")
	}
	return c.JSON(http.StatusOK, page)
}

// GetSupplier returns one supplier
func (h *SupplierHandler) GetSupplier(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return respondError(c, err, "Invalid supplier ID")
	}

	supplier, err := h.repo.Get(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err, "Supplier not found")
	}
	return c.JSON(http.StatusOK, supplier)
}

// CreateSupplier creates a supplier
func (h *SupplierHandler) CreateSupplier(c echo.Context) error {
	var req repository.SupplierInput
	if err := c.Bind(&req); err != nil {
		return respondError(c, invalidRequest(err), "Invalid request data")
	}

	supplier, err := h.repo.Create(c.Request().Context(), req)
	if err != nil {
		return respondError(c, err, "Failed to create supplier")
	}
	return c.JSON(http.StatusCreated, supplier)
}

// UpdateSupplier updates a supplier
func (h *SupplierHandler) UpdateSupplier(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return respondError(c, err, "Invalid supplier ID")
	}

	var req repository.SupplierInput
	if err := c.Bind(&req); err != nil {
		return respondError(c, invalidRequest(err), "Invalid request data")
	}

	supplier, err := h.repo.Update(c.Request().Context(), id, req)
	if err != nil {
		return respondError(c, err, "Failed to update supplier")
	}
	return c.JSON(http.StatusOK, supplier)
}

// DeleteSupplier soft-deletes a supplier
func (h *SupplierHandler) DeleteSupplier(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return respondError(c, err, "Invalid supplier ID")
	}

	if err := h.repo.Delete(c.Request().Context(), id); err != nil {
		return respondError(c, err, "Failed to delete supplier")
	}
	return c.NoContent(http.StatusNoContent)
}

func bindPagination(c echo.Context) (repository.Pagination, error) {
	p := repository.Pagination{Page: 1, PerPage: repository.DefaultPerPage}
	err := echo.QueryParamsBinder(c).
		Int("page", &p.Page).
		Int("perPage", &p.PerPage).
		BindError()
	if err != nil {
		return p, invalidRequest(err)
	}
	// only an absent perPage takes the default, an explicit 0 clamps to 1
	if p.PerPage == 0 {
		p.PerPage = 1
	}
	return p.Normalize(), nil
}
