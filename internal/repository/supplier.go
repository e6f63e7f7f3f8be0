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

// SupplierInput carries the writable fields of a supplier. Nil fields are
// left unchanged on update.
type SupplierInput struct {
	Name          *string `json:"name"`
	Email         *string `json:"email"`
	Phone         *string `json:"phone"`
	Address       *string `json:"address"`
	ContactPerson *string `json:"contact_person"`
}

// SupplierRepository accesses the suppliers of the bound tenant.
type SupplierRepository struct {
	db *gorm.DB
}

// NewSupplierRepository creates a supplier repository.
func NewSupplierRepository(db *gorm.DB) *SupplierRepository {
	return &SupplierRepository{db: db}
}

// Create adds a supplier to the bound tenant. Emails are unique per tenant.
func (r *SupplierRepository) Create(ctx context.Context, in SupplierInput) (*model.Supplier, error) {
	tenantID, err := boundTenant(ctx, "supplier")
	if err != nil {
		return nil, err
	}

	supplier := model.Supplier{TenantID: tenantID}
	if err := applySupplierInput(&supplier, in); err != nil {
		return nil, err
	}
	if supplier.Name == "" {
		return nil, fmt.Errorf("%w: name is required", apperr.ErrInvalidInput)
	}

	defer prometheus.TrackDBOperation("supplier", "insert")()
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := uniqueSupplierEmail(tx, tenantID, supplier.Email, 0); err != nil {
			return err
		}
		return tx.Create(&supplier).Error
	})
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info("Supplier created",
		zap.Uint("supplier_id", supplier.ID),
		zap.String("tenant_id", tenantID))
	return &supplier, nil
}

// List returns one page of the bound tenant's suppliers.
func (r *SupplierRepository) List(ctx context.Context, p Pagination) (*Page[model.Supplier], error) {
	tenantID, err := boundTenant(ctx, "supplier")
	if err != nil {
		return nil, err
	}
	p = p.Normalize()

	defer prometheus.TrackDBOperation("supplier", "query")()

	var total int64
	if err := scoped(ctx, r.db, tenantID).Model(&model.Supplier{}).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("count suppliers: %w", err)
	}

	var suppliers []model.Supplier
	err = scoped(ctx, r.db, tenantID).
		Order("id ASC").
		Limit(p.PerPage).
		Offset(p.offset()).
		Find(&suppliers).Error
	if err != nil {
		return nil, fmt.Errorf("list suppliers: %w", err)
	}
	return newPage(suppliers, total, p), nil
}

// Get returns one supplier of the bound tenant.
func (r *SupplierRepository) Get(ctx context.Context, id uint) (*model.Supplier, error) {
	tenantID, err := boundTenant(ctx, "supplier")
	if err != nil {
		return nil, err
	}

	defer prometheus.TrackDBOperation("supplier", "query")()

	var supplier model.Supplier
	if err := firstInTenant(r.db.WithContext(ctx), &supplier, tenantID, id, "supplier"); err != nil {
		return nil, err
	}
	return &supplier, nil
}

// Update changes a supplier of the bound tenant.
func (r *SupplierRepository) Update(ctx context.Context, id uint, in SupplierInput) (*model.Supplier, error) {
	tenantID, err := boundTenant(ctx, "supplier")
	if err != nil {
		return nil, err
	}

	defer prometheus.TrackDBOperation("supplier", "update")()

	var supplier model.Supplier
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := firstInTenant(tx, &supplier, tenantID, id, "supplier"); err != nil {
			return err
		}

		oldEmail := supplier.Email
		if err := applySupplierInput(&supplier, in); err != nil {
			return err
		}
		if supplier.Name == "" {
			return fmt.Errorf("%w: name must not be empty", apperr.ErrInvalidInput)
		}
		if supplier.Email != oldEmail {
			if err := uniqueSupplierEmail(tx, tenantID, supplier.Email, supplier.ID); err != nil {
				return err
			}
		}
		return tx.Save(&supplier).Error
	})
	if err != nil {
		return nil, err
	}
	return &supplier, nil
}

// Delete soft-deletes a supplier of the bound tenant.
func (r *SupplierRepository) Delete(ctx context.Context, id uint) error {
	tenantID, err := boundTenant(ctx, "supplier")
	if err != nil {
		return err
	}

	defer prometheus.TrackDBOperation("supplier", "delete")()

	result := scoped(ctx, r.db, tenantID).Where("id = ?", id).Delete(&model.Supplier{})
	if result.Error != nil {
		return fmt.Errorf("delete supplier %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return notFound("supplier", id)
	}

	logger.FromContext(ctx).Info("Supplier deleted",
		zap.Uint("supplier_id", id),
		zap.String("tenant_id", tenantID))
	return nil
}

func applySupplierInput(s *model.Supplier, in SupplierInput) error {
	if in.Name != nil {
		s.Name = strings.TrimSpace(*in.Name)
	}
	if in.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*in.Email))
		if email != "" && !strings.Contains(email, "@") {
			return fmt.Errorf("%w: email %q is not valid", apperr.ErrInvalidInput, email)
		}
		s.Email = email
	}
	if in.Phone != nil {
		s.Phone = *in.Phone
	}
	if in.Address != nil {
		s.Address = *in.Address
	}
	if in.ContactPerson != nil {
		s.ContactPerson = *in.ContactPerson
	}
	return nil
}

func uniqueSupplierEmail(tx *gorm.DB, tenantID, email string, exceptID uint) error {
	if email == "" {
		return nil
	}

	var count int64
	q := tx.Model(&model.Supplier{}).Where("tenant_id = ? AND email = ?", tenantID, email)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("%w: supplier with email %s", apperr.ErrDuplicateEntity, email)
	}
	return nil
}
