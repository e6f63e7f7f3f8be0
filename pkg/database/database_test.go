package database

import (
	"path/filepath"
	"testing"

	"inventory-service/internal/model"
	"inventory-service/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestInitDB_SQLite(t *testing.T) {
	cfg := &config.DBConfig{
		Driver:       "sqlite",
		SQLitePath:   filepath.Join(t.TempDir(), "inventory.db"),
		MaxIdleConns: 1,
		MaxOpenConns: 1,
		LogLevel:     "silent",
	}

	db, err := InitDB(cfg, zap.NewNop())
	require.NoError(t, err)
	defer Close(db)

	require.NoError(t, MigrateModels(db, model.All()...))
	assert.True(t, db.Migrator().HasTable(&model.Product{}))
	assert.True(t, db.Migrator().HasTable("product_suppliers"))
}

func TestInitDB_UnknownDriver(t *testing.T) {
	_, err := InitDB(&config.DBConfig{Driver: "oracle"}, zap.NewNop())
	assert.Error(t, err)
}

func TestMigrateModels_NilDB(t *testing.T) {
	assert.Error(t, MigrateModels(nil, &model.Tenant{}))
}
