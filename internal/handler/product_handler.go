package handler

import (
	"net/http"

	"inventory-service/internal/repository"
	"inventory-service/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ProductHandler serves the products of the bound tenant.
type ProductHandler struct {
	repo *repository.ProductRepository
}

// NewProductHandler creates a product handler.
func NewProductHandler(repo *repository.ProductRepository) *ProductHandler {
	return &ProductHandler{repo: repo}
}

// ListProducts returns one page of products with category and suppliers
func (h *ProductHandler) ListProducts(c echo.Context) error {
	p, err := bindPagination(c)
	if err != nil {
		return respondError(c, err, "Invalid pagination")
	}

	page, err := h.repo.List(c.Request().Context(), p)
	if err != nil {
		return respondError(c, err, "Failed to retrieve products")
	}

	logger.FromEcho(c).Info("Products retrieved successfully",
		zap.Int("count", len(page.Data)),
		zap.Int64("total", page.Meta.Total))
	return c.JSON(http.StatusOK, page)
}

// GetProduct handles retrieving a single product by ID
func (h *ProductHandler) GetProduct(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return respondError(c, err, "Invalid product ID")
	}

	product, err := h.repo.Get(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err, "Product not found")
	}
	return c.JSON(http.StatusOK, product)
}

// CreateProduct handles creating a new product
func (h *ProductHandler) CreateProduct(c echo.Context) error {
	var req repository.ProductInput
	if err := c.Bind(&req); err != nil {
		return respondError(c, invalidRequest(err), "Invalid request data")
	}

	product, err := h.repo.Create(c.Request().Context(), req)
	if err != nil {
		return respondError(c, err, "Failed to create product")
	}
	return c.JSON(http.StatusCreated, product)
}

// UpdateProduct handles updating an existing product
func (h *ProductHandler) UpdateProduct(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return respondError(c, err, "Invalid product ID")
	}

	var req repository.ProductInput
	if err := c.Bind(&req); err != nil {
		return respondError(c, invalidRequest(err), "Invalid request data")
	}

	product, err := h.repo.Update(c.Request().Context(), id, req)
	if err != nil {
		return respondError(c, err, "Failed to update product")
	}
	return c.JSON(http.StatusOK, product)
}

// DeleteProduct handles soft-deleting a product
func (h *ProductHandler) DeleteProduct(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return respondError(c, err, "Invalid product ID")
	}

	if err := h.repo.Delete(c.Request().Context(), id); err != nil {
		return respondError(c, err, "Failed to delete product")
	}
	return c.NoContent(http.StatusNoContent)
}

// SearchProducts matches products by name or description. The term is read
// from ?query=, with ?q= accepted as a shorthand.
func (h *ProductHandler) SearchProducts(c echo.Context) error {
	term := c.QueryParam("query")
	if term == "" {
		term = c.QueryParam("q")
	}
	products, err := h.repo.Search(c.Request().Context(), term)
	if err != nil {
		return respondError(c, err, "Failed to search products")
	}
	return c.JSON(http.StatusOK, products)
}

// InventoryValue returns the total stock value of the tenant
func (h *ProductHandler) InventoryValue(c echo.Context) error {
	value, err := h.repo.InventoryValue(c.Request().Context())
	if err != nil {
		return respondError(c, err, "Failed to calculate inventory value")
	}
	return c.JSON(http.StatusOK, value)
}
