package handler

import (
	"inventory-service/internal/auth"
	"inventory-service/internal/middleware"
	"inventory-service/internal/model"
	"inventory-service/internal/repository"
	"inventory-service/internal/tenant"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// Dependencies are the services the HTTP routes are built from.
type Dependencies struct {
	DB        *gorm.DB
	Directory *tenant.Directory
	Resolver  *tenant.Resolver
	Auth      *auth.Service
	Validator *auth.Validator
	AdminKey  string
}

// RegisterRoutes mounts every route of the service on e.
func RegisterRoutes(e *echo.Echo, deps Dependencies) {
	// Public routes - no tenant required
	e.GET("/health", HealthCheck)
	e.GET("/metrics", MetricsHandler)

	authHandler := NewAuthHandler(deps.Auth)

	// Login and register resolve the tenant from the request itself
	authGroup := e.Group("/auth")
	authGroup.POST("/login", authHandler.Login, middleware.TenantMiddleware(deps.Resolver))
	authGroup.POST("/register", authHandler.Register, middleware.TenantMiddleware(deps.Resolver))
	authGroup.GET("/me", authHandler.Me, middleware.JWTAuthMiddleware(deps.Resolver, deps.Validator))

	// Tenant administration - guarded by the admin key, not tenant scoped
	tenantHandler := NewTenantHandler(deps.Directory)
	tenants := e.Group("/tenants", middleware.AdminKeyMiddleware(deps.AdminKey))
	tenants.POST("", tenantHandler.CreateTenant)
	tenants.GET("", tenantHandler.ListTenants)
	tenants.GET("/:id", tenantHandler.GetTenant)
	tenants.PATCH("/:id", tenantHandler.UpdateTenant)
	tenants.DELETE("/:id", tenantHandler.DeleteTenant)

	// Tenant data - authenticated and bound to exactly one tenant
	authenticated := middleware.JWTAuthMiddleware(deps.Resolver, deps.Validator)
	adminOnly := middleware.RequireRoles(model.RoleAdmin)

	categoryHandler := NewCategoryHandler(repository.NewCategoryRepository(deps.DB))
	categories := e.Group("/categories", authenticated)
	categories.GET("", categoryHandler.ListCategories)
	categories.GET("/:id", categoryHandler.GetCategory)
	categories.POST("", categoryHandler.CreateCategory)
	categories.PATCH("/:id", categoryHandler.UpdateCategory)
	categories.DELETE("/:id", categoryHandler.DeleteCategory, adminOnly)

	supplierHandler := NewSupplierHandler(repository.NewSupplierRepository(deps.DB))
	suppliers := e.Group("/suppliers", authenticated)
	suppliers.GET("", supplierHandler.ListSuppliers)
	suppliers.GET("/:id", supplierHandler.GetSupplier)
	suppliers.POST("", supplierHandler.CreateSupplier)
	suppliers.PATCH("/:id", supplierHandler.UpdateSupplier)
	suppliers.DELETE("/:id", supplierHandler.DeleteSupplier, adminOnly)

	productHandler := NewProductHandler(repository.NewProductRepository(deps.DB))
	products := e.Group("/products", authenticated)
	products.GET("", productHandler.ListProducts)
	products.GET("/search", productHandler.SearchProducts)
	products.GET("/inventory-value", productHandler.InventoryValue)
	products.GET("/:id", productHandler.GetProduct)
	products.POST("", productHandler.CreateProduct)
	products.PATCH("/:id", productHandler.UpdateProduct)
	products.DELETE("/:id", productHandler.DeleteProduct, adminOnly)
}
