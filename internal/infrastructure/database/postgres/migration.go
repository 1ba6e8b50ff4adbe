// internal/infrastructure/database/postgres/migration.go
package postgres

import (
	"errors"
	"fmt"
	"log"

	"github.com/your-org/pos-backend/internal/config"
	"github.com/your-org/pos-backend/internal/domain/cart"
	"github.com/your-org/pos-backend/internal/domain/client"
	"github.com/your-org/pos-backend/internal/domain/inventory"
	"github.com/your-org/pos-backend/internal/domain/invoice"
	"github.com/your-org/pos-backend/internal/domain/product"
	"github.com/your-org/pos-backend/internal/domain/sale"
	"github.com/your-org/pos-backend/internal/domain/user"
	"github.com/your-org/pos-backend/internal/pkg/auth"
	"gorm.io/gorm"
)

// Migrate runs the schema migrations for all domain models
func (d *DB) Migrate() error {
	log.Println("Running database migrations...")

	err := d.gorm.AutoMigrate(
		&user.User{},
		&product.Category{},
		&product.Supplier{},
		&product.Product{},
		&inventory.StockMovement{},
		&cart.Cart{},
		&cart.CartItem{},
		&client.Client{},
		&sale.Sale{},
		&sale.SaleItem{},
		&invoice.Invoice{},
		&invoice.InvoiceItem{},
	)
	if err != nil {
		return fmt.Errorf("auto migration failed: %w", err)
	}

	// Composite indexes AutoMigrate does not cover
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_sales_cashier_date ON sales(cashier_id, sale_date)",
		"CREATE INDEX IF NOT EXISTS idx_stock_movements_product_created ON stock_movements(product_id, created_at)",
	}
	for _, idx := range indexes {
		if err := d.gorm.Exec(idx).Error; err != nil {
			return fmt.Errorf("index creation failed: %w", err)
		}
	}

	log.Println("✅ Database migrations completed")
	return nil
}

// Seed inserts a default admin user and a starter category for development
// environments. Safe to run repeatedly.
func (d *DB) Seed(cfg *config.Config) error {
	log.Println("Seeding development data...")

	var admin user.User
	err := d.gorm.Where("username = ?", "admin").First(&admin).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		passwordManager := auth.NewPasswordManager(cfg)
		hash, err := passwordManager.HashPassword("Admin1234")
		if err != nil {
			return fmt.Errorf("failed to hash seed password: %w", err)
		}

		admin = user.User{
			Username:     "admin",
			Email:        "admin@example.com",
			PasswordHash: hash,
			FirstName:    "Default",
			LastName:     "Admin",
			IsAdmin:      true,
			IsActive:     true,
		}
		if err := d.gorm.Create(&admin).Error; err != nil {
			return fmt.Errorf("failed to seed admin user: %w", err)
		}
	} else if err != nil {
		return fmt.Errorf("failed to check seed user: %w", err)
	}

	var category product.Category
	err = d.gorm.Where("name = ?", "General").First(&category).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		category = product.Category{
			Name:        "General",
			Description: "Uncategorized products",
			IsActive:    true,
		}
		if err := d.gorm.Create(&category).Error; err != nil {
			return fmt.Errorf("failed to seed category: %w", err)
		}
	} else if err != nil {
		return fmt.Errorf("failed to check seed category: %w", err)
	}

	log.Println("✅ Development data seeded")
	return nil
}
