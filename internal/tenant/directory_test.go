package tenant_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"inventory-service/internal/apperr"
	"inventory-service/internal/model"
	"inventory-service/internal/tenant"
	"inventory-service/internal/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryCache records cache traffic for assertions.
type memoryCache struct {
	mu      sync.Mutex
	items   map[string]model.Tenant
	deletes int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{items: map[string]model.Tenant{}}
}

func (c *memoryCache) Get(_ context.Context, id string) (*model.Tenant, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	t, ok := c.items[id]
	if !ok {
		return nil, false
	}
	return &t, true
}

func (c *memoryCache) Set(_ context.Context, t *model.Tenant, _ time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[t.ID] = *t
}

func (c *memoryCache) Delete(_ context.Context, id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, id)
	c.deletes++
}

func TestDirectory_CreateAndFind(t *testing.T) {
	db := testutil.NewDB(t)
	dir := tenant.NewDirectory(db, nil, time.Minute)
	ctx := context.Background()

	created, err := dir.Create(ctx, tenant.CreateInput{Name: "Acme", Email: "ops@acme.test"})
	require.NoError(t, err)
	assert.True(t, created.IsActive)
	assert.NotEmpty(t, created.APIKey)
	_, err = uuid.Parse(created.ID)
	require.NoError(t, err)

	found, err := dir.Find(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme", found.Name)
}

func TestDirectory_CreateValidation(t *testing.T) {
	db := testutil.NewDB(t)
	dir := tenant.NewDirectory(db, nil, time.Minute)
	ctx := context.Background()

	_, err := dir.Create(ctx, tenant.CreateInput{Name: "  "})
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)

	_, err = dir.Create(ctx, tenant.CreateInput{Name: "Acme"})
	require.NoError(t, err)
	_, err = dir.Create(ctx, tenant.CreateInput{Name: "Acme"})
	assert.ErrorIs(t, err, apperr.ErrDuplicateEntity)
}

func TestDirectory_FindUnknownOrMalformed(t *testing.T) {
	db := testutil.NewDB(t)
	dir := tenant.NewDirectory(db, nil, time.Minute)

	_, err := dir.Find(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, apperr.ErrTenantNotFound)

	_, err = dir.Find(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, apperr.ErrTenantNotFound)
}

func TestDirectory_RemoveTombstones(t *testing.T) {
	db := testutil.NewDB(t)
	cache := newMemoryCache()
	dir := tenant.NewDirectory(db, cache, time.Minute)
	ctx := context.Background()

	acme := testutil.CreateTenant(t, db, "acme")
	_, err := dir.Find(ctx, acme.ID) // warms the cache
	require.NoError(t, err)

	require.NoError(t, dir.Remove(ctx, acme.ID))

	_, err = dir.Find(ctx, acme.ID)
	assert.ErrorIs(t, err, apperr.ErrTenantNotFound)

	list, err := dir.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	// still stored, with a tombstone
	var raw model.Tenant
	require.NoError(t, db.Unscoped().Where("id = ?", acme.ID).First(&raw).Error)
	assert.True(t, raw.DeletedAt.Valid)

	assert.ErrorIs(t, dir.Remove(ctx, acme.ID), apperr.ErrTenantNotFound)
}

func TestDirectory_UpdateInvalidatesCache(t *testing.T) {
	db := testutil.NewDB(t)
	cache := newMemoryCache()
	dir := tenant.NewDirectory(db, cache, time.Minute)
	ctx := context.Background()

	acme := testutil.CreateTenant(t, db, "acme")
	_, err := dir.Find(ctx, acme.ID)
	require.NoError(t, err)

	inactive := false
	updated, err := dir.Update(ctx, acme.ID, tenant.UpdateInput{IsActive: &inactive})
	require.NoError(t, err)
	assert.False(t, updated.IsActive)
	assert.Equal(t, 1, cache.deletes)

	found, err := dir.Find(ctx, acme.ID)
	require.NoError(t, err)
	assert.False(t, found.IsActive)
}

func TestDirectory_UpdateRejectsDuplicateName(t *testing.T) {
	db := testutil.NewDB(t)
	dir := tenant.NewDirectory(db, nil, time.Minute)
	ctx := context.Background()

	testutil.CreateTenant(t, db, "acme")
	globex := testutil.CreateTenant(t, db, "globex")

	name := "acme"
	_, err := dir.Update(ctx, globex.ID, tenant.UpdateInput{Name: &name})
	assert.ErrorIs(t, err, apperr.ErrDuplicateEntity)
}
