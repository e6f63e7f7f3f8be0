package middleware

import (
	"context"

	"inventory-service/internal/model"
	"inventory-service/internal/tenant"
	"inventory-service/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// TenantResolver binds the tenant a request asserts.
type TenantResolver interface {
	Resolve(ctx context.Context, sources tenant.CandidateSources) (context.Context, *model.Tenant, error)
}

// TenantMiddleware resolves the tenant from the x-tenant-id header, the
// tenantId query parameter or a tenantId JSON body field, in that order, and
// binds it for the rest of the request. Requests without a valid, active
// tenant never reach the handler.
func TenantMiddleware(resolver TenantResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := logger.FromEcho(c)

			sources, err := tenant.SourcesFromRequest(c.Request())
			if err != nil {
				log.Warn("Failed to read tenant sources", zap.Error(err))
			}

			ctx, t, err := resolver.Resolve(c.Request().Context(), sources)
			if err != nil {
				if !tenant.IsResolutionError(err) {
					log.Error("Tenant lookup failed", zap.Error(err))
					return reject(c, err)
				}
				log.Warn("Tenant resolution failed",
					zap.String("header", sources.Header),
					zap.String("query", sources.Query),
					zap.String("body", sources.Body),
					zap.Error(err))
				return reject(c, err)
			}

			c.SetRequest(c.Request().WithContext(ctx))
			c.Set("tenant", t)
			logger.SetEcho(c, log.With(zap.String("tenant_id", t.ID)))

			return next(c)
		}
	}
}
