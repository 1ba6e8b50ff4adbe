// internal/domain/inventory/service_test.go
package inventory

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/pos-backend/internal/config"
	"github.com/your-org/pos-backend/internal/domain/product"
	"github.com/your-org/pos-backend/internal/pkg/apperrors"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:inv_%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&product.Category{},
		&product.Supplier{},
		&product.Product{},
		&StockMovement{},
	))
	return db
}

func seedProduct(t *testing.T, db *gorm.DB, stock int) *product.Product {
	t.Helper()

	category := &product.Category{Name: "General", IsActive: true}
	require.NoError(t, db.Create(category).Error)

	p := &product.Product{
		Barcode:      "BC-001",
		Name:         "Widget",
		RetailPrice:  500,
		CurrentStock: stock,
		MinStock:     2,
		CategoryID:   category.ID,
		IsActive:     true,
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

func TestDecrementStock(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, &config.Config{})
	p := seedProduct(t, db, 10)

	err := db.Transaction(func(tx *gorm.DB) error {
		return svc.DecrementStock(tx, p.ID, 3, 1, 1)
	})
	require.NoError(t, err)

	stock, err := svc.GetStockLevel(p.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, stock)

	var movement StockMovement
	require.NoError(t, db.Where("product_id = ?", p.ID).First(&movement).Error)
	assert.Equal(t, MovementTypeOutbound, movement.MovementType)
	assert.Equal(t, ReasonSale, movement.Reason)
	assert.Equal(t, 10, movement.PreviousQuantity)
	assert.Equal(t, 7, movement.NewQuantity)
}

func TestDecrementStock_InsufficientStock(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, &config.Config{})
	p := seedProduct(t, db, 2)

	err := db.Transaction(func(tx *gorm.DB) error {
		return svc.DecrementStock(tx, p.ID, 3, 1, 1)
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrStockConflict))

	// Guarded update left stock untouched
	stock, err := svc.GetStockLevel(p.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stock)

	var count int64
	require.NoError(t, db.Model(&StockMovement{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestDecrementStock_ExactStock(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, &config.Config{})
	p := seedProduct(t, db, 3)

	err := db.Transaction(func(tx *gorm.DB) error {
		return svc.DecrementStock(tx, p.ID, 3, 1, 1)
	})
	require.NoError(t, err)

	stock, err := svc.GetStockLevel(p.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stock)
}

func TestDecrementStock_Validation(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, &config.Config{})
	p := seedProduct(t, db, 5)

	err := db.Transaction(func(tx *gorm.DB) error {
		return svc.DecrementStock(tx, p.ID, 0, 1, 1)
	})
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))

	err = db.Transaction(func(tx *gorm.DB) error {
		return svc.DecrementStock(tx, 9999, 1, 1, 1)
	})
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestRestoreStock(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, &config.Config{})
	p := seedProduct(t, db, 5)

	err := db.Transaction(func(tx *gorm.DB) error {
		return svc.RestoreStock(tx, p.ID, 2, 1, 1)
	})
	require.NoError(t, err)

	stock, err := svc.GetStockLevel(p.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, stock)

	var movement StockMovement
	require.NoError(t, db.Where("product_id = ?", p.ID).First(&movement).Error)
	assert.Equal(t, MovementTypeInbound, movement.MovementType)
	assert.Equal(t, ReasonSaleReversal, movement.Reason)
}

func TestAdjustStock(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, &config.Config{})
	p := seedProduct(t, db, 5)

	movement, err := svc.AdjustStock(p.ID, 12, "recount after delivery", 1)
	require.NoError(t, err)
	assert.Equal(t, MovementTypeInbound, movement.MovementType)
	assert.Equal(t, 7, movement.Quantity)
	assert.Equal(t, ReasonAdjustment, movement.Reason)

	stock, err := svc.GetStockLevel(p.ID)
	require.NoError(t, err)
	assert.Equal(t, 12, stock)

	_, err = svc.AdjustStock(p.ID, -1, "", 1)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
}

func TestGetLowStockProducts(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, &config.Config{})
	p := seedProduct(t, db, 1) // MinStock is 2

	low, err := svc.GetLowStockProducts()
	require.NoError(t, err)
	require.Len(t, low, 1)
	assert.Equal(t, p.ID, low[0].ID)

	_, err = svc.AdjustStock(p.ID, 10, "restock", 1)
	require.NoError(t, err)

	low, err = svc.GetLowStockProducts()
	require.NoError(t, err)
	assert.Empty(t, low)
}
