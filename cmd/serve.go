package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"inventory-service/internal/auth"
	"inventory-service/internal/handler"
	"inventory-service/internal/middleware"
	"inventory-service/internal/model"
	"inventory-service/internal/tenant"
	"inventory-service/pkg/database"
	"inventory-service/pkg/jwtutil"
	"inventory-service/pkg/logger"
	"inventory-service/prometheus"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, log, db, err := bootstrap()
	if err != nil {
		return err
	}
	defer database.Close(db)

	log.Info("Starting inventory service...", zap.String("environment", cfg.Server.Env))

	if err := database.MigrateModels(db, model.All()...); err != nil {
		log.Fatal("Failed to migrate database", zap.Error(err))
	}

	// Tenant directory, optionally cached in Redis
	var cache tenant.Cache
	if cfg.Redis.URL != "" {
		client, err := tenant.ConnectRedis(ctx, cfg.Redis.URL)
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer client.Close()
		cache = tenant.NewRedisCache(client)
		log.Info("Tenant cache enabled", zap.Duration("ttl", cfg.Redis.TenantCacheTTL))
	}
	directory := tenant.NewDirectory(db, cache, cfg.Redis.TenantCacheTTL)
	resolver := tenant.NewResolver(directory)

	// Initialize JWT utility
	tokens := jwtutil.NewJWTUtil(&jwtutil.JWTConfig{
		SigningKey:      cfg.JWT.SigningKey,
		ExpirationHours: cfg.JWT.ExpirationHours,
	})
	log.Info("JWT utility initialized")

	if cfg.Admin.APIKey == "" {
		log.Warn("ADMIN_API_KEY is not set, tenant administration is open")
	}

	// Initialize Echo framework
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = handler.HTTPErrorHandler

	// Apply global middleware - order matters
	e.Use(echomiddleware.Recover())
	e.Use(middleware.RequestIDMiddleware())
	e.Use(prometheus.MetricsMiddleware())
	e.Use(logger.Middleware())

	handler.RegisterRoutes(e, handler.Dependencies{
		DB:        db,
		Directory: directory,
		Resolver:  resolver,
		Auth:      auth.NewService(db, tokens),
		Validator: auth.NewValidator(tokens, resolver),
		AdminKey:  cfg.Admin.APIKey,
	})

	go func() {
		log.Info("Starting server", zap.String("port", cfg.Server.Port))
		if err := e.Start(":" + cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
