package auth

import (
	"context"
	"fmt"
	"strings"

	"inventory-service/internal/apperr"
	"inventory-service/internal/model"
	"inventory-service/pkg/jwtutil"
	"inventory-service/pkg/logger"
	"inventory-service/prometheus"

	"go.uber.org/zap"
)

// TenantBinder validates a tenant identifier and binds it to a context.
type TenantBinder interface {
	Bind(ctx context.Context, id string) (context.Context, *model.Tenant, error)
}

// Validator verifies bearer tokens and reconciles their tenant claim with
// the tenant asserted by the request itself.
type Validator struct {
	tokens  *jwtutil.JWTUtil
	tenants TenantBinder
}

// NewValidator creates a validator.
func NewValidator(tokens *jwtutil.JWTUtil, tenants TenantBinder) *Validator {
	return &Validator{tokens: tokens, tenants: tenants}
}

// Verify checks token and binds the reconciled tenant to the returned
// context, which also carries the principal. requestTenantID is the tenant
// the request asserts outside the token and may be empty.
//
// A token claim and a request tenant that disagree are a hard failure:
// a token issued for one tenant can never be redirected to another.
func (v *Validator) Verify(ctx context.Context, token, requestTenantID string) (context.Context, *Principal, error) {
	log := logger.FromContext(ctx)

	claims, err := v.tokens.ValidateToken(token)
	if err != nil {
		log.Warn("Invalid or expired token", zap.Error(err))
		prometheus.RecordAuth("verify", "invalid_token")
		return ctx, nil, fmt.Errorf("%w: invalid or expired token", apperr.ErrInvalidCredentials)
	}

	tenantID, err := reconcile(strings.TrimSpace(claims.TenantID), strings.TrimSpace(requestTenantID))
	if err != nil {
		log.Warn("Token tenant rejected",
			zap.String("user_id", claims.Subject),
			zap.String("claim_tenant", claims.TenantID),
			zap.String("request_tenant", requestTenantID),
			zap.Error(err))
		prometheus.RecordAuth("verify", apperr.Code(err))
		return ctx, nil, err
	}

	ctx, tenant, err := v.tenants.Bind(ctx, tenantID)
	if err != nil {
		prometheus.RecordAuth("verify", apperr.Code(err))
		return ctx, nil, err
	}

	principal := &Principal{
		UserID:   claims.Subject,
		Email:    claims.Email,
		TenantID: tenant.ID,
		Roles:    claims.Roles,
	}
	prometheus.RecordAuth("verify", "ok")

	return WithPrincipal(ctx, principal), principal, nil
}

func reconcile(claim, request string) (string, error) {
	switch {
	case claim == "" && request == "":
		return "", apperr.ErrMissingTenantIdentifier
	case request == "":
		return claim, nil
	case claim == "":
		return request, nil
	case claim != request:
		return "", apperr.ErrTenantMismatch
	default:
		return claim, nil
	}
}
