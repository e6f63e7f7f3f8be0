package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"inventory-service/internal/auth"
	"inventory-service/internal/handler"
	"inventory-service/internal/middleware"
	"inventory-service/internal/model"
	"inventory-service/internal/tenant"
	"inventory-service/internal/testutil"
	"inventory-service/pkg/jwtutil"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const adminKey = "admin-secret"

type server struct {
	e      *echo.Echo
	db     *gorm.DB
	tokens *jwtutil.JWTUtil
}

func newServer(t *testing.T) *server {
	t.Helper()

	db := testutil.NewDB(t)
	tokens := jwtutil.NewJWTUtil(&jwtutil.JWTConfig{SigningKey: "test-signing-key", ExpirationHours: 1})
	directory := tenant.NewDirectory(db, nil, 0)
	resolver := tenant.NewResolver(directory)

	e := echo.New()
	e.HTTPErrorHandler = handler.HTTPErrorHandler
	e.Use(middleware.RequestIDMiddleware())
	handler.RegisterRoutes(e, handler.Dependencies{
		DB:        db,
		Directory: directory,
		Resolver:  resolver,
		Auth:      auth.NewService(db, tokens),
		Validator: auth.NewValidator(tokens, resolver),
		AdminKey:  adminKey,
	})

	return &server{e: e, db: db, tokens: tokens}
}

func (s *server) do(t *testing.T, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func (s *server) token(t *testing.T, tenantID string, roles ...string) string {
	t.Helper()

	token, err := s.tokens.GenerateToken("user-1", "u@x.com", tenantID, roles)
	require.NoError(t, err)
	return token
}

func bearer(token string) map[string]string {
	return map[string]string{echo.HeaderAuthorization: "Bearer " + token}
}

func (s *server) createUser(t *testing.T, email, password string) *model.User {
	t.Helper()

	hashed, err := auth.HashPassword(password)
	require.NoError(t, err)
	user := &model.User{Email: email, Password: hashed, IsActive: true, Roles: []string{model.RoleAdmin}}
	require.NoError(t, s.db.Create(user).Error)
	return user
}

func TestHealthCheck(t *testing.T) {
	s := newServer(t)
	rec := s.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
}

func TestCategories_OnlyBoundTenant(t *testing.T) {
	s := newServer(t)
	t1 := testutil.CreateTenant(t, s.db, "t1")
	t2 := testutil.CreateTenant(t, s.db, "t2")
	require.NoError(t, s.db.Create(&model.Category{TenantID: t1.ID, Name: "Mine"}).Error)
	require.NoError(t, s.db.Create(&model.Category{TenantID: t2.ID, Name: "Theirs"}).Error)

	headers := bearer(s.token(t, t1.ID))
	headers[tenant.HeaderTenantID] = t1.ID

	rec := s.do(t, http.MethodGet, "/categories", "", headers)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var categories []model.Category
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &categories))
	require.Len(t, categories, 1)
	assert.Equal(t, "Mine", categories[0].Name)
	assert.Equal(t, t1.ID, categories[0].TenantID)
}

func TestTenantMismatchIsForbidden(t *testing.T) {
	s := newServer(t)
	t1 := testutil.CreateTenant(t, s.db, "t1")
	t2 := testutil.CreateTenant(t, s.db, "t2")

	headers := bearer(s.token(t, t1.ID))
	headers[tenant.HeaderTenantID] = t2.ID

	rec := s.do(t, http.MethodGet, "/categories", "", headers)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "tenant_mismatch")
}

func TestDataRoutes_TenantResolvedBeforeToken(t *testing.T) {
	s := newServer(t)
	t1 := testutil.CreateTenant(t, s.db, "t1")
	t2 := testutil.CreateTenant(t, s.db, "t2")
	require.NoError(t, s.db.Model(t2).Update("is_active", false).Error)
	unknown := uuid.NewString()

	t.Run("no tenant and no token", func(t *testing.T) {
		rec := s.do(t, http.MethodGet, "/categories", "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), `"code":"missing_tenant_identifier"`)
	})

	t.Run("unknown tenant with a valid token", func(t *testing.T) {
		headers := bearer(s.token(t, t1.ID))
		headers[tenant.HeaderTenantID] = unknown
		rec := s.do(t, http.MethodGet, "/categories", "", headers)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Body.String(), `"code":"tenant_not_found"`)
	})

	t.Run("unknown tenant without a token", func(t *testing.T) {
		rec := s.do(t, http.MethodGet, "/products", "", map[string]string{tenant.HeaderTenantID: unknown})
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Body.String(), `"code":"tenant_not_found"`)
	})

	t.Run("inactive tenant with a valid token", func(t *testing.T) {
		headers := bearer(s.token(t, t1.ID))
		headers[tenant.HeaderTenantID] = t2.ID
		rec := s.do(t, http.MethodGet, "/suppliers", "", headers)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), `"code":"tenant_inactive"`)
	})

	t.Run("known tenant without a token", func(t *testing.T) {
		rec := s.do(t, http.MethodGet, "/categories", "", map[string]string{tenant.HeaderTenantID: t1.ID})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), `"code":"invalid_credentials"`)
	})
}

func TestErrorResponsesCarryCode(t *testing.T) {
	s := newServer(t)
	t1 := testutil.CreateTenant(t, s.db, "t1")

	rec := s.do(t, http.MethodGet, "/categories?tenantId="+t1.ID, "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"invalid_credentials"`)

	rec = s.do(t, http.MethodGet, "/categories", "", map[string]string{
		tenant.HeaderTenantID:    t1.ID,
		echo.HeaderAuthorization: "Basic abc",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"invalid_credentials"`)

	rec = s.do(t, http.MethodGet, "/tenants", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"invalid_credentials"`)

	rec = s.do(t, http.MethodGet, "/nowhere", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"not_found"`)
}

func TestRequestTenantWithoutClaim(t *testing.T) {
	s := newServer(t)
	t1 := testutil.CreateTenant(t, s.db, "t1")

	rec := s.do(t, http.MethodGet, "/categories?tenantId="+t1.ID, "", bearer(s.token(t, "")))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/categories", "", bearer(s.token(t, "")))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestInactiveTenantIsUnauthorized(t *testing.T) {
	s := newServer(t)
	t1 := testutil.CreateTenant(t, s.db, "t1")
	require.NoError(t, s.db.Model(t1).Update("is_active", false).Error)

	rec := s.do(t, http.MethodGet, "/categories", "", bearer(s.token(t, t1.ID)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogin_AffiliationFlow(t *testing.T) {
	s := newServer(t)
	t1 := testutil.CreateTenant(t, s.db, "t1")
	t2 := testutil.CreateTenant(t, s.db, "t2")
	user := s.createUser(t, "u@x.com", "pw")

	body := `{"email":"u@x.com","password":"pw"}`

	rec := s.do(t, http.MethodPost, "/auth/login", body, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "no tenant asserted")

	rec = s.do(t, http.MethodPost, "/auth/login", body, map[string]string{tenant.HeaderTenantID: t1.ID})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var result struct {
		AccessToken string     `json:"access_token"`
		User        model.User `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	require.NotEmpty(t, result.AccessToken)

	var stored model.User
	require.NoError(t, s.db.Where("id = ?", user.ID).First(&stored).Error)
	require.NotNil(t, stored.TenantID)
	assert.Equal(t, t1.ID, *stored.TenantID)

	// the issued token works against the affiliated tenant
	rec = s.do(t, http.MethodGet, "/auth/me", "", bearer(result.AccessToken))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), t1.ID)

	// tenant in the body works as well
	rec = s.do(t, http.MethodPost, "/auth/login", `{"email":"u@x.com","password":"pw","tenantId":"`+t1.ID+`"}`, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodPost, "/auth/login", body, map[string]string{tenant.HeaderTenantID: t2.ID})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodPost, "/auth/login", `{"email":"u@x.com","password":"bad"}`, map[string]string{tenant.HeaderTenantID: t1.ID})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRegister(t *testing.T) {
	s := newServer(t)
	t1 := testutil.CreateTenant(t, s.db, "t1")
	headers := map[string]string{tenant.HeaderTenantID: t1.ID}

	rec := s.do(t, http.MethodPost, "/auth/register", `{"email":"new@x.com","password":"pw"}`, headers)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "password")

	rec = s.do(t, http.MethodPost, "/auth/register", `{"email":"new@x.com","password":"pw"}`, headers)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestProductsFlow(t *testing.T) {
	s := newServer(t)
	t1 := testutil.CreateTenant(t, s.db, "t1")
	t2 := testutil.CreateTenant(t, s.db, "t2")
	foreign := &model.Category{TenantID: t2.ID, Name: "Theirs"}
	require.NoError(t, s.db.Create(foreign).Error)

	admin := bearer(s.token(t, t1.ID, model.RoleAdmin))
	user := bearer(s.token(t, t1.ID, model.RoleUser))

	rec := s.do(t, http.MethodPost, "/categories", `{"name":"Tools"}`, user)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var category model.Category
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &category))

	rec = s.do(t, http.MethodPost, "/products",
		`{"name":"Hammer","price":10,"quantity":2,"category_id":`+jsonNumber(foreign.ID)+`}`, user)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "cross_tenant_reference_rejected")

	rec = s.do(t, http.MethodPost, "/products",
		`{"name":"Hammer","price":10,"quantity":2,"category_id":`+jsonNumber(category.ID)+`}`, user)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var product model.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &product))

	rec = s.do(t, http.MethodGet, "/products/inventory-value", "", user)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"totalValue":20}`, rec.Body.String())

	rec = s.do(t, http.MethodGet, "/products/search?query=ham", "", user)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Hammer")

	rec = s.do(t, http.MethodGet, "/products/search?q=HAM", "", user)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Hammer")

	rec = s.do(t, http.MethodGet, "/products/search", "", user)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodGet, "/products?page=1&perPage=5", "", user)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"totalPages":1`)

	rec = s.do(t, http.MethodGet, "/products", "", user)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"perPage":10`)

	rec = s.do(t, http.MethodGet, "/products?perPage=0", "", user)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"perPage":1,`)

	rec = s.do(t, http.MethodGet, "/products?page=abc", "", user)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	path := "/products/" + jsonNumber(product.ID)
	rec = s.do(t, http.MethodDelete, path, "", user)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodDelete, path, "", admin)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, http.MethodGet, path, "", user)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodGet, "/products/not-a-number", "", user)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTenantAdministration(t *testing.T) {
	s := newServer(t)
	key := map[string]string{middleware.HeaderAdminKey: adminKey}

	rec := s.do(t, http.MethodPost, "/tenants", `{"name":"Acme"}`, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodPost, "/tenants", `{"name":"Acme","email":"ops@acme.test"}`, key)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created model.Tenant
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.True(t, created.IsActive)
	assert.NotEmpty(t, created.APIKey)

	rec = s.do(t, http.MethodPost, "/tenants", `{"name":"Acme"}`, key)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(t, http.MethodPatch, "/tenants/"+created.ID, `{"is_active":false}`, key)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"is_active":false`)

	rec = s.do(t, http.MethodGet, "/tenants", "", key)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Acme")

	rec = s.do(t, http.MethodDelete, "/tenants/"+created.ID, "", key)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, http.MethodGet, "/tenants/"+created.ID, "", key)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func jsonNumber(id uint) string {
	b, _ := json.Marshal(id)
	return string(b)
}
