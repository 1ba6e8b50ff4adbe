// internal/domain/product/service_test.go
package product

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/pos-backend/internal/config"
	"github.com/your-org/pos-backend/internal/pkg/apperrors"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:product_%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&Category{}, &Supplier{}, &Product{}))
	return NewService(db, &config.Config{}), db
}

func createCategory(t *testing.T, svc *Service, name string) *Category {
	t.Helper()
	category, err := svc.CreateCategory(name, "")
	require.NoError(t, err)
	return category
}

func TestCreateProduct(t *testing.T) {
	svc, _ := setupTestService(t)
	category := createCategory(t, svc, "Beverages")

	p, err := svc.CreateProduct(&CreateProductRequest{
		Barcode:      "4006381333931",
		Name:         "Sparkling Water",
		RetailPrice:  250,
		CurrentStock: 24,
		MinStock:     6,
		CategoryID:   category.ID,
	})
	require.NoError(t, err)
	assert.True(t, p.IsActive)
	assert.Equal(t, 24, p.CurrentStock)

	// Duplicate barcode rejected
	_, err = svc.CreateProduct(&CreateProductRequest{
		Barcode:     "4006381333931",
		Name:        "Other",
		RetailPrice: 100,
		CategoryID:  category.ID,
	})
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))

	// Unknown category rejected
	_, err = svc.CreateProduct(&CreateProductRequest{
		Barcode:     "0000000000000",
		Name:        "Orphan",
		RetailPrice: 100,
		CategoryID:  9999,
	})
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestGetProductByBarcode(t *testing.T) {
	svc, _ := setupTestService(t)
	category := createCategory(t, svc, "Snacks")

	created, err := svc.CreateProduct(&CreateProductRequest{
		Barcode:     "12345",
		Name:        "Chips",
		RetailPrice: 300,
		CategoryID:  category.ID,
	})
	require.NoError(t, err)

	p, err := svc.GetProductByBarcode("12345")
	require.NoError(t, err)
	assert.Equal(t, created.ID, p.ID)
	assert.Equal(t, "Snacks", p.Category.Name)

	_, err = svc.GetProductByBarcode("nope")
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestGetProducts_SearchAndPagination(t *testing.T) {
	svc, _ := setupTestService(t)
	category := createCategory(t, svc, "Dairy")

	for i := 0; i < 5; i++ {
		_, err := svc.CreateProduct(&CreateProductRequest{
			Barcode:     fmt.Sprintf("BC-%d", i),
			Name:        fmt.Sprintf("Milk %d", i),
			RetailPrice: 150,
			CategoryID:  category.ID,
		})
		require.NoError(t, err)
	}
	_, err := svc.CreateProduct(&CreateProductRequest{
		Barcode:     "BC-YOG",
		Name:        "Yogurt",
		RetailPrice: 200,
		CategoryID:  category.ID,
	})
	require.NoError(t, err)

	resp, err := svc.GetProducts(&ProductListRequest{Page: 1, Limit: 3, Search: "Milk"})
	require.NoError(t, err)
	assert.Len(t, resp.Products, 3)
	assert.Equal(t, int64(5), resp.Pagination.Total)
	assert.Equal(t, 2, resp.Pagination.TotalPages)
}

func TestUpdateProduct(t *testing.T) {
	svc, _ := setupTestService(t)
	category := createCategory(t, svc, "Bakery")

	created, err := svc.CreateProduct(&CreateProductRequest{
		Barcode:     "BREAD-1",
		Name:        "Bread",
		RetailPrice: 220,
		CategoryID:  category.ID,
	})
	require.NoError(t, err)

	newName := "Sourdough Bread"
	newPrice := int64(350)
	updated, err := svc.UpdateProduct(created.ID, &UpdateProductRequest{
		Name:        &newName,
		RetailPrice: &newPrice,
	})
	require.NoError(t, err)
	assert.Equal(t, "Sourdough Bread", updated.Name)
	assert.Equal(t, int64(350), updated.RetailPrice)

	_, err = svc.UpdateProduct(9999, &UpdateProductRequest{Name: &newName})
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestDeleteProduct(t *testing.T) {
	svc, db := setupTestService(t)
	category := createCategory(t, svc, "Frozen")

	created, err := svc.CreateProduct(&CreateProductRequest{
		Barcode:     "ICE-1",
		Name:        "Ice Cream",
		RetailPrice: 450,
		CategoryID:  category.ID,
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteProduct(created.ID))

	_, err = svc.GetProduct(created.ID)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))

	// Soft delete: the row survives for historical reports
	var count int64
	require.NoError(t, db.Unscoped().Model(&Product{}).Where("id = ?", created.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	assert.True(t, errors.Is(svc.DeleteProduct(9999), apperrors.ErrNotFound))
}
