// internal/domain/sale/service_test.go
package sale

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/pos-backend/internal/config"
	"github.com/your-org/pos-backend/internal/domain/cart"
	"github.com/your-org/pos-backend/internal/domain/client"
	"github.com/your-org/pos-backend/internal/domain/inventory"
	"github.com/your-org/pos-backend/internal/domain/product"
	"github.com/your-org/pos-backend/internal/pkg/apperrors"
	"github.com/your-org/pos-backend/internal/pkg/lock"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testEnv struct {
	db      *gorm.DB
	cartSvc *cart.Service
	saleSvc *Service
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:sale_%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&product.Category{},
		&product.Supplier{},
		&product.Product{},
		&inventory.StockMovement{},
		&cart.Cart{},
		&cart.CartItem{},
		&client.Client{},
		&Sale{},
		&SaleItem{},
	))

	cfg := &config.Config{
		Checkout: config.CheckoutConfig{
			MaxAttempts:  3,
			RetryBackoff: time.Millisecond,
			CartLockTTL:  2 * time.Second,
		},
	}

	locker := lock.NewMemoryLocker()
	cartSvc := cart.NewService(db, locker, cfg)
	invSvc := inventory.NewService(db, cfg)
	saleSvc := NewService(db, cartSvc, invSvc, cfg)

	return &testEnv{db: db, cartSvc: cartSvc, saleSvc: saleSvc}
}

func (e *testEnv) seedProduct(t *testing.T, name string, price int64, stock int) *product.Product {
	t.Helper()

	category := &product.Category{Name: "General " + name, IsActive: true}
	require.NoError(t, e.db.Create(category).Error)

	p := &product.Product{
		Barcode:      fmt.Sprintf("BC-%s", name),
		Name:         name,
		RetailPrice:  price,
		CurrentStock: stock,
		MinStock:     1,
		CategoryID:   category.ID,
		IsActive:     true,
	}
	require.NoError(t, e.db.Create(p).Error)
	return p
}

func (e *testEnv) stockOf(t *testing.T, productID uint) int {
	t.Helper()
	var p product.Product
	require.NoError(t, e.db.First(&p, productID).Error)
	return p.CurrentStock
}

func TestCheckout(t *testing.T) {
	env := setupTestEnv(t)
	p := env.seedProduct(t, "Notebook", 1000, 10)

	_, err := env.cartSvc.AddOrUpdateItem(1, p.ID, 2, 1000)
	require.NoError(t, err)

	sale, err := env.saleSvc.Checkout(&CheckoutRequest{
		UserID:        1,
		PaymentMethod: PaymentMethodCash,
		Discount:      200,
		Tax:           360,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(2000), sale.Subtotal)
	assert.Equal(t, int64(200), sale.Discount)
	assert.Equal(t, int64(360), sale.Tax)
	assert.Equal(t, int64(2160), sale.Total)
	assert.Equal(t, SaleStatusCompleted, sale.Status)
	assert.Regexp(t, `^RCP-\d{8}-\d{5}$`, sale.ReceiptNumber)

	require.Len(t, sale.Items, 1)
	assert.Equal(t, "Notebook", sale.Items[0].ProductName)
	assert.Equal(t, 2, sale.Items[0].Quantity)
	assert.Equal(t, int64(2000), sale.Items[0].Total)

	// Stock decremented and cart emptied
	assert.Equal(t, 8, env.stockOf(t, p.ID))
	resp, err := env.cartSvc.GetCart(1)
	require.NoError(t, err)
	assert.Empty(t, resp.Items)
	assert.Equal(t, int64(0), resp.TotalAmount)

	// Movement audit row written
	var movement inventory.StockMovement
	require.NoError(t, env.db.Where("product_id = ?", p.ID).First(&movement).Error)
	assert.Equal(t, inventory.ReasonSale, movement.Reason)
	assert.Equal(t, 10, movement.PreviousQuantity)
	assert.Equal(t, 8, movement.NewQuantity)
	assert.Equal(t, sale.ID, movement.ReferenceID)
}

func TestCheckout_EmptyCart(t *testing.T) {
	env := setupTestEnv(t)

	_, err := env.saleSvc.Checkout(&CheckoutRequest{
		UserID:        1,
		PaymentMethod: PaymentMethodCash,
	})
	assert.True(t, errors.Is(err, apperrors.ErrEmptyCart))

	var count int64
	require.NoError(t, env.db.Model(&Sale{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestCheckout_ClearedCartIsEmptyToo(t *testing.T) {
	env := setupTestEnv(t)
	p := env.seedProduct(t, "Pen", 150, 5)

	_, err := env.cartSvc.AddOrUpdateItem(1, p.ID, 1, 150)
	require.NoError(t, err)
	require.NoError(t, env.cartSvc.Clear(1))

	_, err = env.saleSvc.Checkout(&CheckoutRequest{
		UserID:        1,
		PaymentMethod: PaymentMethodCard,
	})
	assert.True(t, errors.Is(err, apperrors.ErrEmptyCart))
}

func TestCheckout_InvalidPaymentMethod(t *testing.T) {
	env := setupTestEnv(t)
	p := env.seedProduct(t, "Stapler", 700, 5)

	_, err := env.cartSvc.AddOrUpdateItem(1, p.ID, 1, 700)
	require.NoError(t, err)

	_, err = env.saleSvc.Checkout(&CheckoutRequest{
		UserID:        1,
		PaymentMethod: "crypto",
	})
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
	assert.Equal(t, 5, env.stockOf(t, p.ID))
}

func TestCheckout_StockConflictRollsBackEverything(t *testing.T) {
	env := setupTestEnv(t)
	p1 := env.seedProduct(t, "Marker", 400, 10)
	p2 := env.seedProduct(t, "Eraser", 200, 1)

	_, err := env.cartSvc.AddOrUpdateItem(1, p1.ID, 2, 400)
	require.NoError(t, err)
	_, err = env.cartSvc.AddOrUpdateItem(1, p2.ID, 3, 200)
	require.NoError(t, err)

	_, err = env.saleSvc.Checkout(&CheckoutRequest{
		UserID:        1,
		PaymentMethod: PaymentMethodCash,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrStockConflict))

	// Nothing committed: no sale, stock untouched (including the line that
	// would have succeeded), cart intact.
	var saleCount int64
	require.NoError(t, env.db.Model(&Sale{}).Count(&saleCount).Error)
	assert.Equal(t, int64(0), saleCount)

	assert.Equal(t, 10, env.stockOf(t, p1.ID))
	assert.Equal(t, 1, env.stockOf(t, p2.ID))

	resp, err := env.cartSvc.GetCart(1)
	require.NoError(t, err)
	assert.Len(t, resp.Items, 2)
	assert.Equal(t, int64(800+600), resp.TotalAmount)
}

func TestCheckout_DiscountCannotExceedSubtotal(t *testing.T) {
	env := setupTestEnv(t)
	p := env.seedProduct(t, "Clip", 100, 10)

	_, err := env.cartSvc.AddOrUpdateItem(1, p.ID, 1, 100)
	require.NoError(t, err)

	_, err = env.saleSvc.Checkout(&CheckoutRequest{
		UserID:        1,
		PaymentMethod: PaymentMethodCash,
		Discount:      500,
	})
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
	assert.Equal(t, 10, env.stockOf(t, p.ID))
}

func TestCheckout_ExactStockSellsOut(t *testing.T) {
	env := setupTestEnv(t)
	p := env.seedProduct(t, "Glue", 350, 3)

	_, err := env.cartSvc.AddOrUpdateItem(1, p.ID, 3, 350)
	require.NoError(t, err)

	sale, err := env.saleSvc.Checkout(&CheckoutRequest{
		UserID:        1,
		PaymentMethod: PaymentMethodMobile,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1050), sale.Total)
	assert.Equal(t, 0, env.stockOf(t, p.ID))
}

func TestCheckout_WithClient(t *testing.T) {
	env := setupTestEnv(t)
	p := env.seedProduct(t, "Ledger", 1200, 10)

	cl := &client.Client{
		FirstName:  "Jean",
		LastName:   "Martin",
		Company:    "Acme SARL",
		Phone:      "+33 1 23 45 67 89",
		ClientType: client.ClientTypeCompany,
	}
	require.NoError(t, env.db.Create(cl).Error)

	_, err := env.cartSvc.AddOrUpdateItem(1, p.ID, 1, 1200)
	require.NoError(t, err)

	sale, err := env.saleSvc.Checkout(&CheckoutRequest{
		UserID:        1,
		PaymentMethod: PaymentMethodCard,
		ClientID:      &cl.ID,
	})
	require.NoError(t, err)

	// Client details snapshotted onto the sale
	require.NotNil(t, sale.ClientID)
	assert.Equal(t, cl.ID, *sale.ClientID)
	assert.Equal(t, "Acme SARL", sale.CustomerName)
	assert.Equal(t, "+33 1 23 45 67 89", sale.CustomerPhone)

	// An explicit customer name wins over the client record
	_, err = env.cartSvc.AddOrUpdateItem(1, p.ID, 1, 1200)
	require.NoError(t, err)
	named, err := env.saleSvc.Checkout(&CheckoutRequest{
		UserID:        1,
		PaymentMethod: PaymentMethodCard,
		ClientID:      &cl.ID,
		CustomerName:  "Pickup for Sophie",
	})
	require.NoError(t, err)
	assert.Equal(t, "Pickup for Sophie", named.CustomerName)

	// Renaming the client never rewrites recorded sales
	require.NoError(t, env.db.Model(cl).Update("company", "Renamed SARL").Error)
	got, err := env.saleSvc.GetSale(sale.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme SARL", got.CustomerName)
}

func TestCheckout_UnknownClient(t *testing.T) {
	env := setupTestEnv(t)
	p := env.seedProduct(t, "Stamp", 300, 5)

	_, err := env.cartSvc.AddOrUpdateItem(1, p.ID, 1, 300)
	require.NoError(t, err)

	unknown := uint(9999)
	_, err = env.saleSvc.Checkout(&CheckoutRequest{
		UserID:        1,
		PaymentMethod: PaymentMethodCash,
		ClientID:      &unknown,
	})
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))

	// Nothing committed: stock untouched, cart intact
	assert.Equal(t, 5, env.stockOf(t, p.ID))
	resp, err := env.cartSvc.GetCart(1)
	require.NoError(t, err)
	assert.Len(t, resp.Items, 1)
}

func TestGetSale(t *testing.T) {
	env := setupTestEnv(t)
	p := env.seedProduct(t, "Tape", 250, 10)

	_, err := env.cartSvc.AddOrUpdateItem(1, p.ID, 2, 250)
	require.NoError(t, err)

	created, err := env.saleSvc.Checkout(&CheckoutRequest{
		UserID:        1,
		PaymentMethod: PaymentMethodCard,
	})
	require.NoError(t, err)

	got, err := env.saleSvc.GetSale(created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ReceiptNumber, got.ReceiptNumber)
	assert.Len(t, got.Items, 1)

	byReceipt, err := env.saleSvc.GetSaleByReceiptNumber(created.ReceiptNumber)
	require.NoError(t, err)
	assert.Equal(t, created.ID, byReceipt.ID)

	_, err = env.saleSvc.GetSale(9999)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestGetSales_Filters(t *testing.T) {
	env := setupTestEnv(t)
	p := env.seedProduct(t, "Folder", 500, 20)

	for i := 0; i < 3; i++ {
		_, err := env.cartSvc.AddOrUpdateItem(1, p.ID, 1, 500)
		require.NoError(t, err)
		_, err = env.saleSvc.Checkout(&CheckoutRequest{
			UserID:        1,
			PaymentMethod: PaymentMethodCash,
		})
		require.NoError(t, err)
	}

	resp, err := env.saleSvc.GetSales(&SaleListRequest{Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, resp.Sales, 2)
	assert.Equal(t, int64(3), resp.Pagination.Total)
	assert.Equal(t, 2, resp.Pagination.TotalPages)

	resp, err = env.saleSvc.GetSales(&SaleListRequest{PaymentMethod: "card"})
	require.NoError(t, err)
	assert.Empty(t, resp.Sales)
}

func TestGetDailySummary(t *testing.T) {
	env := setupTestEnv(t)
	p := env.seedProduct(t, "Binder", 1000, 20)

	_, err := env.cartSvc.AddOrUpdateItem(1, p.ID, 2, 1000)
	require.NoError(t, err)
	_, err = env.saleSvc.Checkout(&CheckoutRequest{
		UserID:        1,
		PaymentMethod: PaymentMethodCash,
		Discount:      100,
		Tax:           50,
	})
	require.NoError(t, err)

	today := time.Now().Format("2006-01-02")
	summary, err := env.saleSvc.GetDailySummary(today)
	require.NoError(t, err)

	assert.Equal(t, int64(1), summary.SaleCount)
	assert.Equal(t, int64(2), summary.ItemsSold)
	assert.Equal(t, int64(100), summary.TotalDiscount)
	assert.Equal(t, int64(50), summary.TotalTax)
	assert.Equal(t, int64(1950), summary.TotalRevenue)

	_, err = env.saleSvc.GetDailySummary("not-a-date")
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
}

func TestVoidSale_RestoresStock(t *testing.T) {
	env := setupTestEnv(t)
	p := env.seedProduct(t, "Scissors", 900, 5)

	_, err := env.cartSvc.AddOrUpdateItem(1, p.ID, 2, 900)
	require.NoError(t, err)
	created, err := env.saleSvc.Checkout(&CheckoutRequest{
		UserID:        1,
		PaymentMethod: PaymentMethodCash,
	})
	require.NoError(t, err)
	require.Equal(t, 3, env.stockOf(t, p.ID))

	voided, err := env.saleSvc.VoidSale(created.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, SaleStatusVoided, voided.Status)
	assert.Equal(t, 5, env.stockOf(t, p.ID))

	// Voiding twice is rejected
	_, err = env.saleSvc.VoidSale(created.ID, 1)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
}
