// Package tenantctx carries the tenant bound to one request through its
// whole call chain.
//
// The binding lives in a context.Context. Every goroutine and blocking call
// that receives the request context, or a context derived from it, observes
// the same tenant; concurrently running requests hold unrelated contexts and
// can never see each other's binding. There is no process-wide state.
package tenantctx

import (
	"context"
	"strings"

	"inventory-service/internal/apperr"
)

type contextKey struct{}

// binding is stored by value. An empty id marks a cleared binding so that
// Clear can mask a tenant bound further up the context chain.
type binding struct {
	id string
}

// Bind returns a copy of ctx bound to tenantID. Blank identifiers are not
// bound: the returned context reports ErrContextNotBound.
func Bind(ctx context.Context, tenantID string) context.Context {
	return context.WithValue(ctx, contextKey{}, binding{id: strings.TrimSpace(tenantID)})
}

// Current returns the tenant bound to ctx. It never falls back to a default
// tenant; an unbound context yields apperr.ErrContextNotBound.
func Current(ctx context.Context) (string, error) {
	if ctx == nil {
		return "", apperr.ErrContextNotBound
	}
	b, ok := ctx.Value(contextKey{}).(binding)
	if !ok || b.id == "" {
		return "", apperr.ErrContextNotBound
	}
	return b.id, nil
}

// IsBound reports whether ctx carries a tenant.
func IsBound(ctx context.Context) bool {
	_, err := Current(ctx)
	return err == nil
}

// RunScoped runs fn with a context bound to tenantID and returns its result.
// The binding is visible only to fn and whatever fn passes the context to.
func RunScoped[T any](ctx context.Context, tenantID string, fn func(ctx context.Context) (T, error)) (T, error) {
	if strings.TrimSpace(tenantID) == "" {
		var zero T
		return zero, apperr.ErrMissingTenantIdentifier
	}
	return fn(Bind(ctx, tenantID))
}

// Clear returns a copy of ctx with any tenant binding removed. Request
// handling never needs it: the binding ends with the request context.
func Clear(ctx context.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, binding{})
}
