package repository

import (
	"context"
	"fmt"
	"strings"

	"inventory-service/internal/apperr"
	"inventory-service/internal/model"
	"inventory-service/pkg/logger"
	"inventory-service/prometheus"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CategoryInput carries the writable fields of a category. Nil fields are
// left unchanged on update.
type CategoryInput struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// CategoryRepository accesses the categories of the bound tenant.
type CategoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository creates a category repository.
func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// Create adds a category to the bound tenant.
func (r *CategoryRepository) Create(ctx context.Context, in CategoryInput) (*model.Category, error) {
	tenantID, err := boundTenant(ctx, "category")
	if err != nil {
		return nil, err
	}

	category := model.Category{TenantID: tenantID}
	if in.Description != nil {
		category.Description = *in.Description
	}
	if in.Name != nil {
		category.Name = strings.TrimSpace(*in.Name)
	}
	if category.Name == "" {
		return nil, fmt.Errorf("%w: name is required", apperr.ErrInvalidInput)
	}

	defer prometheus.TrackDBOperation("category", "insert")()
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := uniqueCategoryName(tx, tenantID, category.Name, 0); err != nil {
			return err
		}
		return tx.Create(&category).Error
	})
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info("Category created",
		zap.Uint("category_id", category.ID),
		zap.String("tenant_id", tenantID))
	return &category, nil
}

// List returns every category of the bound tenant ordered by name.
func (r *CategoryRepository) List(ctx context.Context) ([]model.Category, error) {
	tenantID, err := boundTenant(ctx, "category")
	if err != nil {
		return nil, err
	}

	defer prometheus.TrackDBOperation("category", "query")()

	categories := []model.Category{}
	if err := scoped(ctx, r.db, tenantID).Order("name ASC").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

// Get returns one category of the bound tenant.
func (r *CategoryRepository) Get(ctx context.Context, id uint) (*model.Category, error) {
	tenantID, err := boundTenant(ctx, "category")
	if err != nil {
		return nil, err
	}

	defer prometheus.TrackDBOperation("category", "query")()

	var category model.Category
	if err := firstInTenant(r.db.WithContext(ctx), &category, tenantID, id, "category"); err != nil {
		return nil, err
	}
	return &category, nil
}

// Update changes a category of the bound tenant.
func (r *CategoryRepository) Update(ctx context.Context, id uint, in CategoryInput) (*model.Category, error) {
	tenantID, err := boundTenant(ctx, "category")
	if err != nil {
		return nil, err
	}

	defer prometheus.TrackDBOperation("category", "update")()

	var category model.Category
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := firstInTenant(tx, &category, tenantID, id, "category"); err != nil {
			return err
		}

		if in.Name != nil {
			name := strings.TrimSpace(*in.Name)
			if name == "" {
				return fmt.Errorf("%w: name must not be empty", apperr.ErrInvalidInput)
			}
			if name != category.Name {
				if err := uniqueCategoryName(tx, tenantID, name, category.ID); err != nil {
					return err
				}
			}
			category.Name = name
		}
		if in.Description != nil {
			category.Description = *in.Description
		}
		return tx.Save(&category).Error
	})
	if err != nil {
		return nil, err
	}
	return &category, nil
}

// Delete soft-deletes a category. Categories still referenced by live
// products of the tenant are refused with apperr.ErrEntityInUse.
func (r *CategoryRepository) Delete(ctx context.Context, id uint) error {
	tenantID, err := boundTenant(ctx, "category")
	if err != nil {
		return err
	}

	defer prometheus.TrackDBOperation("category", "delete")()

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var category model.Category
		if err := firstInTenant(tx, &category, tenantID, id, "category"); err != nil {
			return err
		}

		var inUse int64
		err := tx.Model(&model.Product{}).
			Where("tenant_id = ? AND category_id = ?", tenantID, id).
			Count(&inUse).Error
		if err != nil {
			return err
		}
		if inUse > 0 {
			return fmt.Errorf("%w: category %d has %d products", apperr.ErrEntityInUse, id, inUse)
		}

		return tx.Delete(&category).Error
	})
	if err != nil {
		return err
	}

	logger.FromContext(ctx).Info("Category deleted",
		zap.Uint("category_id", id),
		zap.String("tenant_id", tenantID))
	return nil
}

func uniqueCategoryName(tx *gorm.DB, tenantID, name string, exceptID uint) error {
	var count int64
	q := tx.Model(&model.Category{}).Where("tenant_id = ? AND name = ?", tenantID, name)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("%w: category %q", apperr.ErrDuplicateEntity, name)
	}
	return nil
}
