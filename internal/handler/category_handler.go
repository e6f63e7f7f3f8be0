package handler

import (
	"net/http"

	"inventory-service/internal/repository"
	"inventory-service/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// CategoryHandler serves the categories of the bound tenant.
type CategoryHandler struct {
	repo *repository.CategoryRepository
}

// NewCategoryHandler creates a category handler.
func NewCategoryHandler(repo *repository.CategoryRepository) *CategoryHandler {
	return &CategoryHandler{repo: repo}
}

// ListCategories retrieves all categories of the tenant, ordered by name
func (h *CategoryHandler) ListCategories(c echo.Context) error {
	categories, err := h.repo.List(c.Request().Context())
	if err != nil {
		return respondError(c, err, "Failed to retrieve categories")
	}

	logger.FromEcho(c).Info("Categories retrieved successfully", zap.Int("count", len(categories)))
	return c.JSON(http.StatusOK, categories)
}

// GetCategory retrieves a specific category by ID
func (h *CategoryHandler) GetCategory(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return respondError(c, err, "Invalid category ID")
	}

	category, err := h.repo.Get(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err, "Category not found")
	}
	return c.JSON(http.StatusOK, category)
}

// CreateCategory creates a new category
func (h *CategoryHandler) CreateCategory(c echo.Context) error {
	var req repository.CategoryInput
	if err := c.Bind(&req); err != nil {
		return respondError(c, invalidRequest(err), "Invalid request data")
	}

	category, err := h.repo.Create(c.Request().Context(), req)
	if err != nil {
		return respondError(c, err, "Failed to create category")
	}
	return c.JSON(http.StatusCreated, category)
}

// UpdateCategory updates an existing category
func (h *CategoryHandler) UpdateCategory(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return respondError(c, err, "Invalid category ID")
	}

	var req repository.CategoryInput
	if err := c.Bind(&req); err != nil {
		return respondError(c, invalidRequest(err), "Invalid request data")
	}

	category, err := h.repo.Update(c.Request().Context(), id, req)
	if err != nil {
		return respondError(c, err, "Failed to update category")
	}
	return c.JSON(http.StatusOK, category)
}

// DeleteCategory deletes a category that no product uses
func (h *CategoryHandler) DeleteCategory(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return respondError(c, err, "Invalid category ID")
	}

	if err := h.repo.Delete(c.Request().Context(), id); err != nil {
		return respondError(c, err, "Failed to delete category")
	}
	return c.NoContent(http.StatusNoContent)
}
