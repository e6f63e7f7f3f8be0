package apperr

import (
	"errors"
	"net/http"
)

// Tenant resolution and binding
var (
	ErrMissingTenantIdentifier = errors.New("tenant identifier is required")
	ErrTenantNotFound          = errors.New("tenant not found")
	ErrTenantInactive          = errors.New("tenant is inactive")
	ErrTenantMismatch          = errors.New("tenant mismatch between credential and request")
	ErrContextNotBound         = errors.New("tenant context is not bound")
)

// Authentication
var (
	ErrInvalidCredentials             = errors.New("invalid credentials")
	ErrUserAlreadyAffiliatedElsewhere = errors.New("access denied for this tenant")
	ErrUserAlreadyExists              = errors.New("user already exists")
	ErrInsufficientRole               = errors.New("insufficient role")
)

// Tenant-owned entities
var (
	ErrEntityNotFoundInTenant       = errors.New("entity not found")
	ErrCrossTenantReferenceRejected = errors.New("referenced entity not found")
	ErrDuplicateEntity              = errors.New("entity already exists")
	ErrEntityInUse                  = errors.New("entity is in use")
	ErrInvalidInput                 = errors.New("invalid input")
)

var categories = []struct {
	err    error
	status int
	code   string
}{
	{ErrContextNotBound, http.StatusInternalServerError, "context_not_bound"},
	{ErrMissingTenantIdentifier, http.StatusUnauthorized, "missing_tenant_identifier"},
	{ErrTenantNotFound, http.StatusNotFound, "tenant_not_found"},
	{ErrTenantInactive, http.StatusUnauthorized, "tenant_inactive"},
	{ErrTenantMismatch, http.StatusForbidden, "tenant_mismatch"},
	{ErrInvalidCredentials, http.StatusUnauthorized, "invalid_credentials"},
	{ErrUserAlreadyAffiliatedElsewhere, http.StatusForbidden, "user_already_affiliated_elsewhere"},
	{ErrUserAlreadyExists, http.StatusConflict, "user_already_exists"},
	{ErrInsufficientRole, http.StatusForbidden, "insufficient_role"},
	{ErrEntityNotFoundInTenant, http.StatusNotFound, "entity_not_found"},
	{ErrCrossTenantReferenceRejected, http.StatusNotFound, "cross_tenant_reference_rejected"},
	{ErrDuplicateEntity, http.StatusConflict, "duplicate_entity"},
	{ErrEntityInUse, http.StatusConflict, "entity_in_use"},
	{ErrInvalidInput, http.StatusBadRequest, "invalid_input"},
}

// HTTPStatus maps an error to the status code it surfaces as.
// Unknown errors are internal server errors.
func HTTPStatus(err error) int {
	for _, c := range categories {
		if errors.Is(err, c.err) {
			return c.status
		}
	}
	return http.StatusInternalServerError
}

// Code returns a stable category name for err, used in responses and
// metric labels. Unknown errors report "internal".
func Code(err error) string {
	for _, c := range categories {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return "internal"
}

// Message returns the text safe to show to API callers. Internal errors
// are never echoed back.
func Message(err error) string {
	if HTTPStatus(err) == http.StatusInternalServerError {
		return "internal server error"
	}
	return err.Error()
}
