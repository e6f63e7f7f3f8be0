package middleware

import (
	"context"
	"crypto/subtle"
	"fmt"
	"strings"

	"inventory-service/internal/apperr"
	"inventory-service/internal/auth"
	"inventory-service/internal/tenant"
	"inventory-service/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// HeaderAdminKey carries the key guarding tenant administration.
const HeaderAdminKey = "X-Admin-Key"

// TokenVerifier verifies a bearer token against the tenant a request asserts.
type TokenVerifier interface {
	Verify(ctx context.Context, token, requestTenantID string) (context.Context, *auth.Principal, error)
}

// JWTAuthMiddleware binds the tenant a request asserts, then validates the
// bearer token against it. A request naming a tenant has it resolved before
// the token is looked at, so unknown or inactive tenants surface as such. A
// request with neither a tenant nor a token is missing its tenant. The
// principal is stored under "user".
func JWTAuthMiddleware(resolver TenantResolver, verifier TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := logger.FromEcho(c)
			ctx := c.Request().Context()

			sources, err := tenant.SourcesFromRequest(c.Request())
			if err != nil {
				log.Warn("Failed to read tenant sources", zap.Error(err))
			}
			requested, selectErr := sources.Select()
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)

			if selectErr != nil && authHeader == "" {
				log.Warn("Missing tenant and authorization header")
				return reject(c, apperr.ErrMissingTenantIdentifier)
			}

			if selectErr == nil {
				ctx, _, err = resolver.Resolve(ctx, sources)
				if err != nil {
					log.Warn("Tenant resolution failed",
						zap.String("requested", requested),
						zap.Error(err))
					return reject(c, err)
				}
			}

			// Extract the token from the Authorization header
			if authHeader == "" {
				log.Warn("Missing authorization header")
				return reject(c, fmt.Errorf("%w: missing authorization header", apperr.ErrInvalidCredentials))
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				log.Warn("Invalid authorization header format")
				return reject(c, fmt.Errorf("%w: invalid authorization header format", apperr.ErrInvalidCredentials))
			}

			// the token carries the tenant when the request names none
			ctx, principal, err := verifier.Verify(ctx, parts[1], requested)
			if err != nil {
				return reject(c, err)
			}

			c.SetRequest(c.Request().WithContext(ctx))
			c.Set("user", principal)
			logger.SetEcho(c, log.With(
				zap.String("tenant_id", principal.TenantID),
				zap.String("user_id", principal.UserID)))

			log.Debug("JWT token validated successfully",
				zap.String("user_id", principal.UserID),
				zap.String("email", principal.Email))

			return next(c)
		}
	}
}

// RequireRoles lets a request through only when the authenticated principal
// holds at least one of roles.
func RequireRoles(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			principal, ok := c.Get("user").(*auth.Principal)
			if !ok || !principal.HasAnyRole(roles...) {
				logger.FromEcho(c).Warn("Insufficient role",
					zap.Strings("required", roles))
				return reject(c, apperr.ErrInsufficientRole)
			}
			return next(c)
		}
	}
}

// AdminKeyMiddleware guards tenant administration with a static key. An
// empty key leaves the routes open.
func AdminKeyMiddleware(key string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if key == "" {
				return next(c)
			}

			given := c.Request().Header.Get(HeaderAdminKey)
			if subtle.ConstantTimeCompare([]byte(given), []byte(key)) != 1 {
				logger.FromEcho(c).Warn("Invalid admin key")
				return reject(c, fmt.Errorf("%w: invalid admin key", apperr.ErrInvalidCredentials))
			}
			return next(c)
		}
	}
}
