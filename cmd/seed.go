package main

import (
	"context"
	"errors"
	"fmt"

	"inventory-service/internal/apperr"
	"inventory-service/internal/auth"
	"inventory-service/internal/model"
	"inventory-service/internal/repository"
	"inventory-service/internal/tenant"
	"inventory-service/internal/tenantctx"
	"inventory-service/pkg/database"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func seedCmd() *cobra.Command {
	var (
		tenantName    string
		adminEmail    string
		adminPassword string
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create a demo tenant, an unaffiliated admin user and sample inventory",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, log, db, err := bootstrap()
			if err != nil {
				return err
			}
			defer database.Close(db)

			if err := database.MigrateModels(db, model.All()...); err != nil {
				return err
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			directory := tenant.NewDirectory(db, nil, 0)
			t, err := directory.Create(ctx, tenant.CreateInput{Name: tenantName, Email: "demo@example.com"})
			if errors.Is(err, apperr.ErrDuplicateEntity) {
				log.Info("Demo tenant already exists, nothing to seed", zap.String("name", tenantName))
				return nil
			}
			if err != nil {
				return err
			}
			log.Info("Demo tenant created", zap.String("tenant_id", t.ID))

			if err := seedAdmin(db, adminEmail, adminPassword); err != nil {
				return err
			}
			log.Info("Admin user ready, affiliated on first login", zap.String("email", adminEmail))

			_, err = tenantctx.RunScoped(ctx, t.ID, func(ctx context.Context) (struct{}, error) {
				return struct{}{}, seedInventory(ctx, db)
			})
			if err != nil {
				return fmt.Errorf("seed inventory: %w", err)
			}

			log.Info("Seed completed", zap.String("tenant_id", t.ID))
			return nil
		},
	}

	cmd.Flags().StringVar(&tenantName, "tenant", "Demo Store", "name of the demo tenant")
	cmd.Flags().StringVar(&adminEmail, "admin-email", "admin@example.com", "email of the admin user")
	cmd.Flags().StringVar(&adminPassword, "admin-password", "admin123", "password of the admin user")

	return cmd
}

// seedAdmin creates an unaffiliated admin user unless the email is taken.
func seedAdmin(db *gorm.DB, email, password string) error {
	hashed, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	admin := model.User{
		Email:    email,
		Password: hashed,
		IsActive: true,
		Roles:    []string{model.RoleAdmin, model.RoleUser},
	}
	return db.Where(model.User{Email: email}).FirstOrCreate(&admin).Error
}

func seedInventory(ctx context.Context, db *gorm.DB) error {
	categories := repository.NewCategoryRepository(db)
	suppliers := repository.NewSupplierRepository(db)
	products := repository.NewProductRepository(db)

	str := func(s string) *string { return &s }

	tools, err := categories.Create(ctx, repository.CategoryInput{Name: str("Tools"), Description: str("Hand and power tools")})
	if err != nil {
		return err
	}
	garden, err := categories.Create(ctx, repository.CategoryInput{Name: str("Garden"), Description: str("Outdoor supplies")})
	if err != nil {
		return err
	}

	acme, err := suppliers.Create(ctx, repository.SupplierInput{
		Name:          str("Acme Hardware"),
		Email:         str("sales@acme.example.com"),
		ContactPerson: str("Sam Carter"),
	})
	if err != nil {
		return err
	}

	samples := []struct {
		name     string
		price    float64
		quantity int
		category uint
	}{
		{"Claw Hammer", 12.5, 40, tools.ID},
		{"Cordless Drill", 89.99, 12, tools.ID},
		{"Garden Hose", 24.0, 25, garden.ID},
	}
	for _, s := range samples {
		price, quantity, category := s.price, s.quantity, s.category
		supplierIDs := []uint{acme.ID}
		_, err := products.Create(ctx, repository.ProductInput{
			Name:        str(s.name),
			Price:       &price,
			Quantity:    &quantity,
			CategoryID:  &category,
			SupplierIDs: &supplierIDs,
		})
		if err != nil {
			return err
		}
	}
	return nil
}
