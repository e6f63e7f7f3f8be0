package tenant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"inventory-service/internal/apperr"
	"inventory-service/internal/model"
	"inventory-service/pkg/logger"
	"inventory-service/prometheus"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Directory is the authoritative store of tenants. Tombstoned tenants are
// invisible to every read.
type Directory struct {
	db    *gorm.DB
	cache Cache
	ttl   time.Duration
}

// NewDirectory creates a directory over db. A nil cache disables caching.
func NewDirectory(db *gorm.DB, cache Cache, ttl time.Duration) *Directory {
	if cache == nil {
		cache = NopCache{}
	}
	return &Directory{db: db, cache: cache, ttl: ttl}
}

// Find returns the live tenant with the given id, active or not. Malformed
// identifiers are reported as not found without touching the database.
func (d *Directory) Find(ctx context.Context, id string) (*model.Tenant, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: %s", apperr.ErrTenantNotFound, id)
	}

	if t, ok := d.cache.Get(ctx, id); ok {
		return t, nil
	}

	defer prometheus.TrackDBOperation("tenant", "query")()

	var t model.Tenant
	err := d.db.WithContext(ctx).Where("id = ?", id).First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", apperr.ErrTenantNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("find tenant %s: %w", id, err)
	}

	d.cache.Set(ctx, &t, d.ttl)
	return &t, nil
}

// List returns all live tenants ordered by name.
func (d *Directory) List(ctx context.Context) ([]model.Tenant, error) {
	defer prometheus.TrackDBOperation("tenant", "query")()

	var tenants []model.Tenant
	if err := d.db.WithContext(ctx).Order("name ASC").Find(&tenants).Error; err != nil {
		return nil, fmt.Errorf("list tenants: %w", err)
	}
	return tenants, nil
}

// CreateInput carries the fields of a new tenant.
type CreateInput struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// Create registers a new active tenant and issues its API key.
func (d *Directory) Create(ctx context.Context, in CreateInput) (*model.Tenant, error) {
	log := logger.FromContext(ctx)

	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nil, fmt.Errorf("%w: name is required", apperr.ErrInvalidInput)
	}

	t := &model.Tenant{
		ID:       uuid.NewString(),
		Name:     in.Name,
		Email:    in.Email,
		Phone:    in.Phone,
		Address:  in.Address,
		APIKey:   uuid.NewString(),
		IsActive: true,
	}

	defer prometheus.TrackDBOperation("tenant", "insert")()
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureUniqueName(tx, t.Name, ""); err != nil {
			return err
		}
		return tx.Create(t).Error
	})
	if err != nil {
		return nil, err
	}

	log.Info("Tenant created", zap.String("tenant_id", t.ID), zap.String("name", t.Name))
	return t, nil
}

// UpdateInput carries the tenant fields to change. Nil fields are kept.
type UpdateInput struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Phone    *string `json:"phone"`
	Address  *string `json:"address"`
	IsActive *bool   `json:"is_active"`
}

// Update changes a live tenant and drops it from the cache.
func (d *Directory) Update(ctx context.Context, id string, in UpdateInput) (*model.Tenant, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: %s", apperr.ErrTenantNotFound, id)
	}

	defer prometheus.TrackDBOperation("tenant", "update")()

	var t model.Tenant
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&t).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: %s", apperr.ErrTenantNotFound, id)
			}
			return err
		}

		if in.Name != nil {
			name := strings.TrimSpace(*in.Name)
			if name == "" {
				return fmt.Errorf("%w: name must not be empty", apperr.ErrInvalidInput)
			}
			if name != t.Name {
				if err := ensureUniqueName(tx, name, t.ID); err != nil {
					return err
				}
			}
			t.Name = name
		}
		if in.Email != nil {
			t.Email = *in.Email
		}
		if in.Phone != nil {
			t.Phone = *in.Phone
		}
		if in.Address != nil {
			t.Address = *in.Address
		}
		if in.IsActive != nil {
			t.IsActive = *in.IsActive
		}

		return tx.Save(&t).Error
	})
	d.cache.Delete(ctx, id)
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info("Tenant updated",
		zap.String("tenant_id", t.ID),
		zap.Bool("is_active", t.IsActive))
	return &t, nil
}

// Remove tombstones a tenant. The row stays in storage with DeletedAt set.
func (d *Directory) Remove(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %s", apperr.ErrTenantNotFound, id)
	}

	defer prometheus.TrackDBOperation("tenant", "delete")()

	result := d.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Tenant{})
	d.cache.Delete(ctx, id)
	if result.Error != nil {
		return fmt.Errorf("remove tenant %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", apperr.ErrTenantNotFound, id)
	}

	logger.FromContext(ctx).Info("Tenant removed", zap.String("tenant_id", id))
	return nil
}

func ensureUniqueName(tx *gorm.DB, name, exceptID string) error {
	q := tx.Model(&model.Tenant{}).Where("name = ?", name)
	if exceptID != "" {
		q = q.Where("id <> ?", exceptID)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("%w: tenant %q", apperr.ErrDuplicateEntity, name)
	}
	return nil
}
