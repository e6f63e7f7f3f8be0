// Package testutil provides database fixtures shared by package tests.
package testutil

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"inventory-service/internal/model"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB returns a migrated in-memory sqlite database private to t.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "open sqlite")

	require.NoError(t, db.AutoMigrate(model.All()...), "migrate")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// a single connection keeps sqlite from reporting locked tables
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	return db
}

// CreateTenant inserts an active tenant with the given name.
func CreateTenant(t *testing.T, db *gorm.DB, name string) *model.Tenant {
	t.Helper()

	tenant := &model.Tenant{Name: name, Email: name + "@example.com", IsActive: true}
	require.NoError(t, db.Create(tenant).Error)
	return tenant
}
