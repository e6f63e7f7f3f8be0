package tenantctx_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"inventory-service/internal/apperr"
	"inventory-service/internal/tenantctx"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCurrent_Unbound(t *testing.T) {
	_, err := tenantctx.Current(context.Background())
	require.ErrorIs(t, err, apperr.ErrContextNotBound)
	assert.False(t, tenantctx.IsBound(context.Background()))
}

func TestBind_Current(t *testing.T) {
	ctx := tenantctx.Bind(context.Background(), "tenant-a")

	id, err := tenantctx.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tenant-a", id)

	// same value on repeated reads
	again, err := tenantctx.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, id, again)
}

func TestBind_BlankIsNotBound(t *testing.T) {
	ctx := tenantctx.Bind(context.Background(), "   ")
	_, err := tenantctx.Current(ctx)
	assert.ErrorIs(t, err, apperr.ErrContextNotBound)
}

func TestBind_DoesNotLeakToParent(t *testing.T) {
	parent := context.Background()
	_ = tenantctx.Bind(parent, "tenant-a")

	_, err := tenantctx.Current(parent)
	assert.ErrorIs(t, err, apperr.ErrContextNotBound)
}

func TestRunScoped(t *testing.T) {
	outer := tenantctx.Bind(context.Background(), "outer")

	got, err := tenantctx.RunScoped(outer, "inner", func(ctx context.Context) (string, error) {
		return tenantctx.Current(ctx)
	})
	require.NoError(t, err)
	assert.Equal(t, "inner", got)

	id, err := tenantctx.Current(outer)
	require.NoError(t, err)
	assert.Equal(t, "outer", id, "outer binding must be untouched after the scoped run")
}

func TestRunScoped_RequiresTenant(t *testing.T) {
	called := false
	_, err := tenantctx.RunScoped(context.Background(), "", func(ctx context.Context) (int, error) {
		called = true
		return 0, nil
	})
	assert.ErrorIs(t, err, apperr.ErrMissingTenantIdentifier)
	assert.False(t, called)
}

func TestClear(t *testing.T) {
	ctx := tenantctx.Clear(tenantctx.Bind(context.Background(), "tenant-a"))
	_, err := tenantctx.Current(ctx)
	assert.ErrorIs(t, err, apperr.ErrContextNotBound)
}

func TestBinding_SurvivesGoroutinesAndBlocking(t *testing.T) {
	ctx := tenantctx.Bind(context.Background(), "tenant-a")

	result := make(chan string, 1)
	go func(ctx context.Context) {
		time.Sleep(5 * time.Millisecond)
		id, _ := tenantctx.Current(ctx)
		result <- id
	}(ctx)

	assert.Equal(t, "tenant-a", <-result)
}

func TestBinding_ConcurrentRequestsAreIsolated(t *testing.T) {
	const requests = 64

	var wg sync.WaitGroup
	errs := make(chan error, requests)

	for i := 0; i < requests; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			want := fmt.Sprintf("tenant-%d", i%2)

			_, err := tenantctx.RunScoped(context.Background(), want, func(ctx context.Context) (struct{}, error) {
				for step := 0; step < 20; step++ {
					time.Sleep(time.Microsecond)
					got, err := tenantctx.Current(ctx)
					if err != nil {
						return struct{}{}, err
					}
					if got != want {
						return struct{}{}, fmt.Errorf("request %d observed %s, want %s", i, got, want)
					}
				}
				return struct{}{}, nil
			})
			errs <- err
		}(i)
	}

	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}
}
