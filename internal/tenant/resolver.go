package tenant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"inventory-service/internal/apperr"
	"inventory-service/internal/model"
	"inventory-service/internal/tenantctx"
	"inventory-service/prometheus"
)

// Names of the request inputs that may carry a tenant identifier.
const (
	HeaderTenantID = "X-Tenant-ID"
	QueryTenantID  = "tenantId"
	BodyTenantID   = "tenantId"
)

const maxBodyPeek = 1 << 20

// CandidateSources are the tenant identifiers asserted by one request, in
// precedence order. Empty fields are absent.
type CandidateSources struct {
	Header string
	Query  string
	Body   string
}

// Select returns the first non-empty candidate: header, then query, then body.
func (s CandidateSources) Select() (string, error) {
	for _, candidate := range []string{s.Header, s.Query, s.Body} {
		if c := strings.TrimSpace(candidate); c != "" {
			return c, nil
		}
	}
	return "", apperr.ErrMissingTenantIdentifier
}

// SourcesFromRequest collects the candidates of req. A JSON body is peeked at
// for a top-level tenantId string and restored for later binding; bodies that
// are not JSON objects simply contribute no candidate.
func SourcesFromRequest(req *http.Request) (CandidateSources, error) {
	sources := CandidateSources{
		Header: req.Header.Get(HeaderTenantID),
		Query:  req.URL.Query().Get(QueryTenantID),
	}

	if req.Body == nil || req.Body == http.NoBody || !isJSON(req.Header.Get("Content-Type")) {
		return sources, nil
	}

	raw, err := io.ReadAll(io.LimitReader(req.Body, maxBodyPeek))
	if err != nil {
		return sources, fmt.Errorf("read request body: %w", err)
	}
	rest := req.Body
	req.Body = struct {
		io.Reader
		io.Closer
	}{io.MultiReader(bytes.NewReader(raw), rest), rest}

	var body struct {
		TenantID string `json:"tenantId"`
	}
	if json.Unmarshal(raw, &body) == nil {
		sources.Body = body.TenantID
	}
	return sources, nil
}

func isJSON(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	return err == nil && mediaType == "application/json"
}

// Lookup finds live tenants by id.
type Lookup interface {
	Find(ctx context.Context, id string) (*model.Tenant, error)
}

// Resolver turns a request's tenant candidates into a validated binding.
type Resolver struct {
	tenants Lookup
}

// NewResolver creates a resolver validating against tenants.
func NewResolver(tenants Lookup) *Resolver {
	return &Resolver{tenants: tenants}
}

// Validate checks that id names a live, active tenant.
func (r *Resolver) Validate(ctx context.Context, id string) (*model.Tenant, error) {
	t, err := r.tenants.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !t.IsActive {
		return nil, fmt.Errorf("%w: %s", apperr.ErrTenantInactive, id)
	}
	return t, nil
}

// Bind validates id and returns ctx bound to it. A request holds at most one
// tenant: binding the tenant already bound is a no-op, binding a different
// one fails with ErrTenantMismatch.
func (r *Resolver) Bind(ctx context.Context, id string) (context.Context, *model.Tenant, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		prometheus.RecordTenantResolution(apperr.Code(apperr.ErrMissingTenantIdentifier))
		return ctx, nil, apperr.ErrMissingTenantIdentifier
	}

	if bound, err := tenantctx.Current(ctx); err == nil && bound != id {
		prometheus.RecordTenantResolution(apperr.Code(apperr.ErrTenantMismatch))
		return ctx, nil, fmt.Errorf("%w: request already bound", apperr.ErrTenantMismatch)
	}

	t, err := r.Validate(ctx, id)
	if err != nil {
		prometheus.RecordTenantResolution(apperr.Code(err))
		return ctx, nil, err
	}

	prometheus.RecordTenantResolution("bound")
	if tenantctx.IsBound(ctx) {
		return ctx, t, nil
	}
	return tenantctx.Bind(ctx, t.ID), t, nil
}

// Resolve selects the winning candidate and binds it.
func (r *Resolver) Resolve(ctx context.Context, sources CandidateSources) (context.Context, *model.Tenant, error) {
	id, err := sources.Select()
	if err != nil {
		prometheus.RecordTenantResolution(apperr.Code(err))
		return ctx, nil, err
	}
	return r.Bind(ctx, id)
}

// IsResolutionError reports whether err is one of the tenant resolution
// failures that must abort a request before any data access.
func IsResolutionError(err error) bool {
	return errors.Is(err, apperr.ErrMissingTenantIdentifier) ||
		errors.Is(err, apperr.ErrTenantNotFound) ||
		errors.Is(err, apperr.ErrTenantInactive) ||
		errors.Is(err, apperr.ErrTenantMismatch)
}
