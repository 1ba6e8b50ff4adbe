// internal/domain/sale/service.go
package sale

import (
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/pos-backend/internal/config"
	"github.com/your-org/pos-backend/internal/domain/cart"
	"github.com/your-org/pos-backend/internal/domain/client"
	"github.com/your-org/pos-backend/internal/domain/inventory"
	"github.com/your-org/pos-backend/internal/domain/product"
	"github.com/your-org/pos-backend/internal/pkg/apperrors"
	"gorm.io/gorm"
)

// Service handles checkout and the sale ledger
type Service struct {
	db          *gorm.DB
	cartService *cart.Service
	invService  *inventory.Service
	config      *config.Config
}

// NewService creates a new sale service
func NewService(db *gorm.DB, cartService *cart.Service, invService *inventory.Service, cfg *config.Config) *Service {
	return &Service{
		db:          db,
		cartService: cartService,
		invService:  invService,
		config:      cfg,
	}
}

// CheckoutRequest represents checkout input. Discount and Tax are amounts
// in cents supplied by the terminal, not rates.
type CheckoutRequest struct {
	UserID        uint          `json:"user_id" binding:"required"`
	PaymentMethod PaymentMethod `json:"payment_method" binding:"required"`
	Discount      int64         `json:"discount" binding:"min=0"`
	Tax           int64         `json:"tax" binding:"min=0"`
	ClientID      *uint         `json:"client_id"`
	CustomerName  string        `json:"customer_name"`
	CustomerPhone string        `json:"customer_phone"`
	Notes         string        `json:"notes"`
}

// SaleListRequest represents sale list query parameters
type SaleListRequest struct {
	Page          int    `form:"page,default=1"`
	Limit         int    `form:"limit,default=20"`
	CashierID     uint   `form:"cashier_id"`
	PaymentMethod string `form:"payment_method"`
	DateFrom      string `form:"date_from"` // YYYY-MM-DD
	DateTo        string `form:"date_to"`   // YYYY-MM-DD
}

// SaleListResponse represents paginated sale results
type SaleListResponse struct {
	Sales      []Sale             `json:"sales"`
	Pagination product.Pagination `json:"pagination"`
}

// DailySummary aggregates a day's completed sales
type DailySummary struct {
	Date          string `json:"date"`
	SaleCount     int64  `json:"sale_count"`
	ItemsSold     int64  `json:"items_sold"`
	TotalDiscount int64  `json:"total_discount"`
	TotalTax      int64  `json:"total_tax"`
	TotalRevenue  int64  `json:"total_revenue"`
}

// Checkout converts the user's cart into a sale. The sale insert, the
// guarded stock decrement for every line and the cart reset run in one
// database transaction, so a failure at any step leaves the cart and stock
// exactly as they were. Stock conflicts are retried a bounded number of
// times before giving up with a conflict error.
func (s *Service) Checkout(req *CheckoutRequest) (*Sale, error) {
	if !req.PaymentMethod.IsValid() {
		return nil, fmt.Errorf("%w: unknown payment method '%s'", apperrors.ErrInvalidInput, req.PaymentMethod)
	}
	if req.Discount < 0 || req.Tax < 0 {
		return nil, fmt.Errorf("%w: discount and tax cannot be negative", apperrors.ErrInvalidInput)
	}

	release, err := s.cartService.AcquireCheckoutLock(req.UserID)
	if err != nil {
		return nil, err
	}
	defer release()

	var sale *Sale
	attempts := s.config.Checkout.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	for attempt := 1; attempt <= attempts; attempt++ {
		sale, err = s.checkoutOnce(req)
		if err == nil {
			break
		}
		if !errors.Is(err, apperrors.ErrStockConflict) || attempt == attempts {
			return nil, err
		}

		logrus.WithFields(logrus.Fields{
			"user_id": req.UserID,
			"attempt": attempt,
		}).Warn("Checkout hit a stock conflict, retrying")
		time.Sleep(s.config.Checkout.RetryBackoff)
	}

	logrus.WithFields(logrus.Fields{
		"receipt_number": sale.ReceiptNumber,
		"user_id":        req.UserID,
		"total":          sale.Total,
		"items":          len(sale.Items),
	}).Info("Checkout completed")

	return sale, nil
}

// checkoutOnce runs a single checkout attempt in its own transaction
func (s *Service) checkoutOnce(req *CheckoutRequest) (*Sale, error) {
	var created *Sale

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var c cart.Cart
		err := tx.Preload("Items").Where("user_id = ?", req.UserID).First(&c).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: user %d has no cart", apperrors.ErrEmptyCart, req.UserID)
			}
			return fmt.Errorf("%w: failed to load cart: %v", apperrors.ErrPersistence, err)
		}
		if c.IsEmpty() {
			return fmt.Errorf("%w: user %d", apperrors.ErrEmptyCart, req.UserID)
		}

		customerName := req.CustomerName
		customerPhone := req.CustomerPhone
		if req.ClientID != nil {
			var cl client.Client
			if err := tx.First(&cl, *req.ClientID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("%w: client %d", apperrors.ErrNotFound, *req.ClientID)
				}
				return fmt.Errorf("%w: failed to look up client: %v", apperrors.ErrPersistence, err)
			}
			// Snapshot client details; later client edits never touch the sale
			if customerName == "" {
				customerName = cl.DisplayName()
			}
			if customerPhone == "" {
				customerPhone = cl.Phone
			}
		}

		// Cart total already has the cart-level discount applied; recover
		// the raw line sum before applying the checkout discount and tax.
		subtotal := c.TotalAmount + c.Discount
		total := subtotal - req.Discount + req.Tax
		if total < 0 {
			return fmt.Errorf("%w: discount %d exceeds subtotal %d", apperrors.ErrInvalidInput, req.Discount, subtotal)
		}

		sale := &Sale{
			CashierID:     req.UserID,
			PaymentMethod: req.PaymentMethod,
			Subtotal:      subtotal,
			Discount:      req.Discount,
			Tax:           req.Tax,
			Total:         total,
			Status:        SaleStatusCompleted,
			ClientID:      req.ClientID,
			CustomerName:  customerName,
			CustomerPhone: customerPhone,
			Notes:         req.Notes,
			SaleDate:      time.Now(),
		}

		for _, item := range c.Items {
			barcode := ""
			var p product.Product
			if err := tx.First(&p, item.ProductID).Error; err == nil {
				barcode = p.Barcode
			}
			sale.Items = append(sale.Items, SaleItem{
				ProductID:   item.ProductID,
				ProductName: item.ProductName,
				Barcode:     barcode,
				Price:       item.Price,
				Quantity:    item.Quantity,
				Total:       item.Total,
			})
		}

		if err := tx.Create(sale).Error; err != nil {
			return fmt.Errorf("%w: failed to create sale: %v", apperrors.ErrPersistence, err)
		}

		sale.ReceiptNumber = generateReceiptNumber(sale.ID, sale.SaleDate)
		if err := tx.Model(sale).UpdateColumn("receipt_number", sale.ReceiptNumber).Error; err != nil {
			return fmt.Errorf("%w: failed to set receipt number: %v", apperrors.ErrPersistence, err)
		}

		for _, item := range sale.Items {
			if err := s.invService.DecrementStock(tx, item.ProductID, item.Quantity, sale.ID, req.UserID); err != nil {
				return err
			}
		}

		if err := s.cartService.ClearTx(tx, req.UserID); err != nil {
			return err
		}

		created = sale
		return nil
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

// generateReceiptNumber formats a receipt id like RCP-20250115-00042
func generateReceiptNumber(saleID uint, date time.Time) string {
	return fmt.Sprintf("RCP-%s-%05d", date.Format("20060102"), saleID)
}

// GetSale retrieves a sale with its items
func (s *Service) GetSale(id uint) (*Sale, error) {
	var sale Sale
	err := s.db.Preload("Items").First(&sale, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: sale %d", apperrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("%w: failed to retrieve sale: %v", apperrors.ErrPersistence, err)
	}
	return &sale, nil
}

// GetSaleByReceiptNumber retrieves a sale by its printed receipt id
func (s *Service) GetSaleByReceiptNumber(receiptNumber string) (*Sale, error) {
	var sale Sale
	err := s.db.Preload("Items").Where("receipt_number = ?", receiptNumber).First(&sale).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: receipt '%s'", apperrors.ErrNotFound, receiptNumber)
		}
		return nil, fmt.Errorf("%w: failed to retrieve sale: %v", apperrors.ErrPersistence, err)
	}
	return &sale, nil
}

// GetSales retrieves sales with filtering and pagination, newest first
func (s *Service) GetSales(req *SaleListRequest) (*SaleListResponse, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 || req.Limit > 100 {
		req.Limit = 20
	}

	query := s.db.Model(&Sale{}).Preload("Items")

	if req.CashierID > 0 {
		query = query.Where("cashier_id = ?", req.CashierID)
	}
	if req.PaymentMethod != "" {
		query = query.Where("payment_method = ?", req.PaymentMethod)
	}
	if req.DateFrom != "" {
		from, err := time.Parse("2006-01-02", req.DateFrom)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid date_from '%s'", apperrors.ErrInvalidInput, req.DateFrom)
		}
		query = query.Where("sale_date >= ?", from)
	}
	if req.DateTo != "" {
		to, err := time.Parse("2006-01-02", req.DateTo)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid date_to '%s'", apperrors.ErrInvalidInput, req.DateTo)
		}
		query = query.Where("sale_date < ?", to.AddDate(0, 0, 1))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("%w: failed to count sales: %v", apperrors.ErrPersistence, err)
	}

	var sales []Sale
	offset := (req.Page - 1) * req.Limit
	if err := query.Order("sale_date DESC").Offset(offset).Limit(req.Limit).Find(&sales).Error; err != nil {
		return nil, fmt.Errorf("%w: failed to retrieve sales: %v", apperrors.ErrPersistence, err)
	}

	totalPages := int((total + int64(req.Limit) - 1) / int64(req.Limit))
	return &SaleListResponse{
		Sales: sales,
		Pagination: product.Pagination{
			Page:       req.Page,
			Limit:      req.Limit,
			Total:      total,
			TotalPages: totalPages,
		},
	}, nil
}

// GetDailySummary aggregates completed sales for one calendar day
func (s *Service) GetDailySummary(date string) (*DailySummary, error) {
	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid date '%s'", apperrors.ErrInvalidInput, date)
	}
	start := day
	end := day.AddDate(0, 0, 1)

	summary := &DailySummary{Date: date}

	row := s.db.Model(&Sale{}).
		Select("COUNT(*) as sale_count, COALESCE(SUM(discount), 0) as total_discount, COALESCE(SUM(tax), 0) as total_tax, COALESCE(SUM(total), 0) as total_revenue").
		Where("status = ? AND sale_date >= ? AND sale_date < ?", SaleStatusCompleted, start, end).
		Row()
	if err := row.Scan(&summary.SaleCount, &summary.TotalDiscount, &summary.TotalTax, &summary.TotalRevenue); err != nil {
		return nil, fmt.Errorf("%w: failed to aggregate sales: %v", apperrors.ErrPersistence, err)
	}

	err = s.db.Model(&SaleItem{}).
		Select("COALESCE(SUM(sale_items.quantity), 0)").
		Joins("JOIN sales ON sales.id = sale_items.sale_id").
		Where("sales.status = ? AND sales.sale_date >= ? AND sales.sale_date < ?", SaleStatusCompleted, start, end).
		Scan(&summary.ItemsSold).Error
	if err != nil {
		return nil, fmt.Errorf("%w: failed to aggregate sold items: %v", apperrors.ErrPersistence, err)
	}

	return summary, nil
}

// VoidSale reverses a completed sale and restores its stock
func (s *Service) VoidSale(id uint, userID uint) (*Sale, error) {
	var voided *Sale

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var sale Sale
		if err := tx.Preload("Items").First(&sale, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: sale %d", apperrors.ErrNotFound, id)
			}
			return fmt.Errorf("%w: failed to load sale: %v", apperrors.ErrPersistence, err)
		}
		if sale.Status == SaleStatusVoided {
			return fmt.Errorf("%w: sale %d is already voided", apperrors.ErrInvalidInput, id)
		}

		if err := tx.Model(&sale).UpdateColumn("status", SaleStatusVoided).Error; err != nil {
			return fmt.Errorf("%w: failed to void sale: %v", apperrors.ErrPersistence, err)
		}

		for _, item := range sale.Items {
			if err := s.invService.RestoreStock(tx, item.ProductID, item.Quantity, sale.ID, userID); err != nil {
				return err
			}
		}

		sale.Status = SaleStatusVoided
		voided = &sale
		return nil
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"sale_id":        voided.ID,
		"receipt_number": voided.ReceiptNumber,
		"voided_by":      userID,
	}).Info("Sale voided")

	return voided, nil
}
