// internal/domain/inventory/service.go
package inventory

import (
	"errors"
	"fmt"

	"github.com/your-org/pos-backend/internal/config"
	"github.com/your-org/pos-backend/internal/domain/product"
	"github.com/your-org/pos-backend/internal/pkg/apperrors"
	"gorm.io/gorm"
)

// Service handles stock lookups and guarded stock changes. Checkout calls
// DecrementStock inside its own transaction so the sale insert and every
// decrement commit or roll back as a unit.
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new inventory service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// GetProduct retrieves a product by ID
func (s *Service) GetProduct(id uint) (*product.Product, error) {
	var p product.Product
	if err := s.db.First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: product %d", apperrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("%w: failed to retrieve product: %v", apperrors.ErrPersistence, err)
	}
	return &p, nil
}

// GetStockLevel returns the current stock count for a product
func (s *Service) GetStockLevel(productID uint) (int, error) {
	p, err := s.GetProduct(productID)
	if err != nil {
		return 0, err
	}
	return p.CurrentStock, nil
}

// DecrementStock decrements a product's stock by amount within tx. The
// UPDATE is guarded so stock never goes negative: zero rows affected means
// either the product vanished or the remaining stock is insufficient.
func (s *Service) DecrementStock(tx *gorm.DB, productID uint, amount int, referenceID, userID uint) error {
	if amount < 1 {
		return fmt.Errorf("%w: decrement amount must be at least 1", apperrors.ErrInvalidInput)
	}

	var p product.Product
	if err := tx.First(&p, productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: product %d", apperrors.ErrNotFound, productID)
		}
		return fmt.Errorf("%w: failed to read product %d: %v", apperrors.ErrPersistence, productID, err)
	}

	result := tx.Model(&product.Product{}).
		Where("id = ? AND current_stock >= ?", productID, amount).
		UpdateColumn("current_stock", gorm.Expr("current_stock - ?", amount))

	if result.Error != nil {
		return fmt.Errorf("%w: failed to decrement stock for product %d: %v", apperrors.ErrPersistence, productID, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: product '%s' has %d in stock, requested %d",
			apperrors.ErrStockConflict, p.Name, p.CurrentStock, amount)
	}

	movement := &StockMovement{
		ProductID:        productID,
		MovementType:     MovementTypeOutbound,
		Reason:           ReasonSale,
		Quantity:         amount,
		PreviousQuantity: p.CurrentStock,
		NewQuantity:      p.CurrentStock - amount,
		ReferenceType:    "sale",
		ReferenceID:      referenceID,
		CreatedBy:        userID,
	}
	if err := tx.Create(movement).Error; err != nil {
		return fmt.Errorf("%w: failed to record stock movement: %v", apperrors.ErrPersistence, err)
	}

	return nil
}

// RestoreStock adds amount back to a product's stock within tx. Used when a
// completed sale is reversed.
func (s *Service) RestoreStock(tx *gorm.DB, productID uint, amount int, referenceID, userID uint) error {
	if amount < 1 {
		return fmt.Errorf("%w: restore amount must be at least 1", apperrors.ErrInvalidInput)
	}

	var p product.Product
	if err := tx.First(&p, productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Product was deleted since the sale; nothing to restore to.
			return nil
		}
		return fmt.Errorf("%w: failed to read product %d: %v", apperrors.ErrPersistence, productID, err)
	}

	result := tx.Model(&product.Product{}).
		Where("id = ?", productID).
		UpdateColumn("current_stock", gorm.Expr("current_stock + ?", amount))
	if result.Error != nil {
		return fmt.Errorf("%w: failed to restore stock for product %d: %v", apperrors.ErrPersistence, productID, result.Error)
	}

	movement := &StockMovement{
		ProductID:        productID,
		MovementType:     MovementTypeInbound,
		Reason:           ReasonSaleReversal,
		Quantity:         amount,
		PreviousQuantity: p.CurrentStock,
		NewQuantity:      p.CurrentStock + amount,
		ReferenceType:    "sale",
		ReferenceID:      referenceID,
		CreatedBy:        userID,
	}
	if err := tx.Create(movement).Error; err != nil {
		return fmt.Errorf("%w: failed to record stock movement: %v", apperrors.ErrPersistence, err)
	}

	return nil
}

// AdjustStock applies a manual stock correction outside of any sale
func (s *Service) AdjustStock(productID uint, newQuantity int, notes string, userID uint) (*StockMovement, error) {
	if newQuantity < 0 {
		return nil, fmt.Errorf("%w: stock cannot be negative", apperrors.ErrInvalidInput)
	}

	var movement *StockMovement
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var p product.Product
		if err := tx.First(&p, productID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: product %d", apperrors.ErrNotFound, productID)
			}
			return fmt.Errorf("%w: failed to read product %d: %v", apperrors.ErrPersistence, productID, err)
		}

		if err := tx.Model(&product.Product{}).
			Where("id = ?", productID).
			UpdateColumn("current_stock", newQuantity).Error; err != nil {
			return fmt.Errorf("%w: failed to adjust stock: %v", apperrors.ErrPersistence, err)
		}

		movementType := MovementTypeInbound
		quantity := newQuantity - p.CurrentStock
		if quantity < 0 {
			movementType = MovementTypeOutbound
			quantity = -quantity
		}

		movement = &StockMovement{
			ProductID:        productID,
			MovementType:     movementType,
			Reason:           ReasonAdjustment,
			Quantity:         quantity,
			PreviousQuantity: p.CurrentStock,
			NewQuantity:      newQuantity,
			Notes:            notes,
			CreatedBy:        userID,
		}
		if err := tx.Create(movement).Error; err != nil {
			return fmt.Errorf("%w: failed to record stock movement: %v", apperrors.ErrPersistence, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return movement, nil
}

// GetMovements retrieves the movement history for a product, newest first
func (s *Service) GetMovements(productID uint, limit int) ([]StockMovement, error) {
	if limit < 1 || limit > 200 {
		limit = 50
	}

	var movements []StockMovement
	err := s.db.Where("product_id = ?", productID).
		Order("created_at DESC").
		Limit(limit).
		Find(&movements).Error
	if err != nil {
		return nil, fmt.Errorf("%w: failed to retrieve stock movements: %v", apperrors.ErrPersistence, err)
	}
	return movements, nil
}

// GetLowStockProducts lists products at or below their minimum stock
func (s *Service) GetLowStockProducts() ([]product.Product, error) {
	var products []product.Product
	err := s.db.Preload("Category").
		Where("current_stock <= min_stock AND is_active = ?", true).
		Order("current_stock asc").
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("%w: failed to retrieve low stock products: %v", apperrors.ErrPersistence, err)
	}
	return products, nil
}
