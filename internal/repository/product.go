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
	"gorm.io/gorm/clause"
)

// ProductInput carries the writable fields of a product. Nil fields are left
// unchanged on update; a non-nil SupplierIDs replaces the supplier set.
type ProductInput struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	Quantity    *int     `json:"quantity"`
	CategoryID  *uint    `json:"category_id"`
	SupplierIDs *[]uint  `json:"supplier_ids"`
}

// InventoryValue is the total stock value of one tenant.
type InventoryValue struct {
	TotalValue float64 `json:"totalValue"`
}

// ProductRepository accesses the products of the bound tenant. Category and
// supplier references are resolved inside the bound tenant only.
type ProductRepository struct {
	db *gorm.DB
}

// NewProductRepository creates a product repository.
func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// Create adds a product to the bound tenant. A category or supplier that does
// not belong to the tenant fails with apperr.ErrCrossTenantReferenceRejected
// and nothing is written.
func (r *ProductRepository) Create(ctx context.Context, in ProductInput) (*model.Product, error) {
	tenantID, err := boundTenant(ctx, "product")
	if err != nil {
		return nil, err
	}

	product := model.Product{TenantID: tenantID}
	applyProductFields(&product, in)
	if in.CategoryID != nil {
		product.CategoryID = *in.CategoryID
	}
	if err := validateProduct(&product); err != nil {
		return nil, err
	}

	defer prometheus.TrackDBOperation("product", "insert")()
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireCategory(tx, tenantID, product.CategoryID); err != nil {
			return err
		}

		var ids []uint
		if in.SupplierIDs != nil {
			ids = *in.SupplierIDs
		}
		suppliers, err := suppliersInTenant(tx, tenantID, ids)
		if err != nil {
			return err
		}
		product.Suppliers = suppliers

		if err := tx.Omit("Suppliers.*").Create(&product).Error; err != nil {
			return err
		}
		return loadProduct(tx, &product, tenantID, product.ID)
	})
	if err != nil {
		logger.FromContext(ctx).Warn("Product not created",
			zap.String("tenant_id", tenantID),
			zap.Error(err))
		return nil, err
	}

	logger.FromContext(ctx).Info("Product created",
		zap.Uint("product_id", product.ID),
		zap.String("tenant_id", tenantID))
	return &product, nil
}

// List returns one page of the bound tenant's products with their category
// and suppliers.
func (r *ProductRepository) List(ctx context.Context, p Pagination) (*Page[model.Product], error) {
	tenantID, err := boundTenant(ctx, "product")
	if err != nil {
		return nil, err
	}
	p = p.Normalize()

	defer prometheus.TrackDBOperation("product", "query")()

	var total int64
	if err := scoped(ctx, r.db, tenantID).Model(&model.Product{}).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("count products: %w", err)
	}

	var products []model.Product
	err = withRelations(scoped(ctx, r.db, tenantID), tenantID).
		Order("id ASC").
		Limit(p.PerPage).
		Offset(p.offset()).
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return newPage(products, total, p), nil
}

// Get returns one product of the bound tenant.
func (r *ProductRepository) Get(ctx context.Context, id uint) (*model.Product, error) {
	tenantID, err := boundTenant(ctx, "product")
	if err != nil {
		return nil, err
	}

	defer prometheus.TrackDBOperation("product", "query")()

	var product model.Product
	if err := loadProduct(r.db.WithContext(ctx), &product, tenantID, id); err != nil {
		return nil, err
	}
	return &product, nil
}

// Update changes a product of the bound tenant. New category and supplier
// references are checked the same way as on Create.
func (r *ProductRepository) Update(ctx context.Context, id uint, in ProductInput) (*model.Product, error) {
	tenantID, err := boundTenant(ctx, "product")
	if err != nil {
		return nil, err
	}

	defer prometheus.TrackDBOperation("product", "update")()

	var product model.Product
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := firstInTenant(tx, &product, tenantID, id, "product"); err != nil {
			return err
		}

		applyProductFields(&product, in)
		if in.CategoryID != nil && *in.CategoryID != product.CategoryID {
			if err := requireCategory(tx, tenantID, *in.CategoryID); err != nil {
				return err
			}
			product.CategoryID = *in.CategoryID
		}
		if err := validateProduct(&product); err != nil {
			return err
		}

		if in.SupplierIDs != nil {
			suppliers, err := suppliersInTenant(tx, tenantID, *in.SupplierIDs)
			if err != nil {
				return err
			}
			if err := tx.Model(&product).Association("Suppliers").Replace(suppliers); err != nil {
				return err
			}
		}

		if err := tx.Omit(clause.Associations).Save(&product).Error; err != nil {
			return err
		}
		return loadProduct(tx, &product, tenantID, id)
	})
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// Delete soft-deletes a product of the bound tenant.
func (r *ProductRepository) Delete(ctx context.Context, id uint) error {
	tenantID, err := boundTenant(ctx, "product")
	if err != nil {
		return err
	}

	defer prometheus.TrackDBOperation("product", "delete")()

	result := scoped(ctx, r.db, tenantID).Where("id = ?", id).Delete(&model.Product{})
	if result.Error != nil {
		return fmt.Errorf("delete product %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return notFound("product", id)
	}

	logger.FromContext(ctx).Info("Product deleted",
		zap.Uint("product_id", id),
		zap.String("tenant_id", tenantID))
	return nil
}

// Search returns the bound tenant's products whose name or description
// contains query, ignoring case.
func (r *ProductRepository) Search(ctx context.Context, query string) ([]model.Product, error) {
	tenantID, err := boundTenant(ctx, "product")
	if err != nil {
		return nil, err
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: search query is required", apperr.ErrInvalidInput)
	}
	pattern := "%" + strings.ToLower(query) + "%"

	defer prometheus.TrackDBOperation("product", "search")()

	products := []model.Product{}
	err = withRelations(scoped(ctx, r.db, tenantID), tenantID).
		Where("(LOWER(name) LIKE ? OR LOWER(description) LIKE ?)", pattern, pattern).
		Order("name ASC").
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}
	return products, nil
}

// InventoryValue sums price times quantity over the bound tenant's live
// products.
func (r *ProductRepository) InventoryValue(ctx context.Context) (*InventoryValue, error) {
	tenantID, err := boundTenant(ctx, "product")
	if err != nil {
		return nil, err
	}

	defer prometheus.TrackDBOperation("product", "aggregate")()

	var total float64
	err = scoped(ctx, r.db, tenantID).
		Model(&model.Product{}).
		Select("COALESCE(SUM(price * quantity), 0)").
		Scan(&total).Error
	if err != nil {
		return nil, fmt.Errorf("inventory value: %w", err)
	}
	return &InventoryValue{TotalValue: total}, nil
}

func applyProductFields(p *model.Product, in ProductInput) {
	if in.Name != nil {
		p.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Price != nil {
		p.Price = *in.Price
	}
	if in.Quantity != nil {
		p.Quantity = *in.Quantity
	}
}

func validateProduct(p *model.Product) error {
	switch {
	case p.Name == "":
		return fmt.Errorf("%w: name is required", apperr.ErrInvalidInput)
	case p.Price <= 0:
		return fmt.Errorf("%w: price must be positive", apperr.ErrInvalidInput)
	case p.Quantity < 0:
		return fmt.Errorf("%w: quantity must not be negative", apperr.ErrInvalidInput)
	case p.CategoryID == 0:
		return fmt.Errorf("%w: category_id is required", apperr.ErrInvalidInput)
	}
	return nil
}

// requireCategory fails unless the category is a live row of tenantID.
func requireCategory(tx *gorm.DB, tenantID string, id uint) error {
	var count int64
	err := tx.Model(&model.Category{}).Where("tenant_id = ? AND id = ?", tenantID, id).Count(&count).Error
	if err != nil {
		return err
	}
	if count == 0 {
		return fmt.Errorf("category %d: %w", id, apperr.ErrCrossTenantReferenceRejected)
	}
	return nil
}

// suppliersInTenant loads the suppliers with ids, failing unless every one of
// them is a live row of tenantID.
func suppliersInTenant(tx *gorm.DB, tenantID string, ids []uint) ([]model.Supplier, error) {
	unique := make([]uint, 0, len(ids))
	seen := make(map[uint]bool, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			unique = append(unique, id)
		}
	}
	if len(unique) == 0 {
		return []model.Supplier{}, nil
	}

	var suppliers []model.Supplier
	if err := tx.Where("tenant_id = ? AND id IN ?", tenantID, unique).Find(&suppliers).Error; err != nil {
		return nil, err
	}
	if len(suppliers) != len(unique) {
		return nil, fmt.Errorf("suppliers %v: %w", unique, apperr.ErrCrossTenantReferenceRejected)
	}
	return suppliers, nil
}

func withRelations(q *gorm.DB, tenantID string) *gorm.DB {
	return q.
		Preload("Category", "tenant_id = ?", tenantID).
		Preload("Suppliers", "tenant_id = ?", tenantID)
}

func loadProduct(tx *gorm.DB, dest *model.Product, tenantID string, id uint) error {
	return firstInTenant(withRelations(tx, tenantID), dest, tenantID, id, "product")
}
