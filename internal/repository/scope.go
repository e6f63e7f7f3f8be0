// Package repository holds the data accessors for tenant-owned entities.
//
// Every operation reads the tenant from the request context first and fails
// with apperr.ErrContextNotBound when there is none; no query is ever issued
// without a tenant filter. Rows of another tenant are indistinguishable from
// rows that do not exist.
package repository

import (
	"context"
	"errors"
	"fmt"

	"inventory-service/internal/apperr"
	"inventory-service/internal/tenantctx"
	"inventory-service/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// boundTenant returns the tenant bound to ctx, logging the defect when a
// caller reached data access without one.
func boundTenant(ctx context.Context, entity string) (string, error) {
	tenantID, err := tenantctx.Current(ctx)
	if err != nil {
		logger.FromContext(ctx).Error("Data access without tenant context",
			zap.String("entity", entity),
			zap.Error(err))
		return "", err
	}
	return tenantID, nil
}

// scoped returns a session on db restricted to tenantID.
func scoped(ctx context.Context, db *gorm.DB, tenantID string) *gorm.DB {
	return db.WithContext(ctx).Where("tenant_id = ?", tenantID)
}

func notFound(entity string, id uint) error {
	return fmt.Errorf("%w: %s %d", apperr.ErrEntityNotFoundInTenant, entity, id)
}

// firstInTenant loads the row with id owned by tenantID into dest.
func firstInTenant(tx *gorm.DB, dest interface{}, tenantID string, id uint, entity string) error {
	err := tx.Where("tenant_id = ? AND id = ?", tenantID, id).First(dest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound(entity, id)
	}
	if err != nil {
		return fmt.Errorf("find %s %d: %w", entity, id, err)
	}
	return nil
}
