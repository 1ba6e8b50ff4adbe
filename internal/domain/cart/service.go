// internal/domain/cart/service.go
package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/your-org/pos-backend/internal/config"
	"github.com/your-org/pos-backend/internal/domain/product"
	"github.com/your-org/pos-backend/internal/pkg/apperrors"
	"github.com/your-org/pos-backend/internal/pkg/lock"
	"gorm.io/gorm"
)

// Service handles cart business logic. All mutations for a user are applied
// under that user's cart lock so concurrent requests never lose an update.
type Service struct {
	db     *gorm.DB
	locker lock.Locker
	config *config.Config
}

// NewService creates a new cart service
func NewService(db *gorm.DB, locker lock.Locker, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		locker: locker,
		config: cfg,
	}
}

// CartItemResponse represents a cart item with current product details.
// Price and Total come from the stored line item, not the product row.
type CartItemResponse struct {
	ID          uint             `json:"id"`
	ProductID   uint             `json:"product_id"`
	ProductName string           `json:"product_name"`
	Price       int64            `json:"price"`
	Quantity    int              `json:"quantity"`
	Total       int64            `json:"total"`
	Product     *product.Product `json:"product,omitempty"`
	AddedAt     time.Time        `json:"added_at"`
}

// CartResponse represents a shopping cart with items and totals
type CartResponse struct {
	ID          uint               `json:"id"`
	UserID      uint               `json:"user_id"`
	Items       []CartItemResponse `json:"items"`
	Discount    int64              `json:"discount"`
	TotalAmount int64              `json:"total_amount"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

// AddOrUpdateItem upserts a product line in the user's cart. If the product
// is already in the cart its quantity is replaced (not incremented) by the
// supplied quantity. The cart is created lazily on first add. Stock is not
// validated here; checkout owns that check.
func (s *Service) AddOrUpdateItem(userID, productID uint, quantity int, price int64) (*CartResponse, error) {
	if quantity < 1 {
		return nil, fmt.Errorf("%w: quantity must be at least 1", apperrors.ErrInvalidInput)
	}
	if price < 0 {
		return nil, fmt.Errorf("%w: price cannot be negative", apperrors.ErrInvalidInput)
	}

	release, err := s.acquireCartLock(userID)
	if err != nil {
		return nil, err
	}
	defer release()

	// Product must exist; its name is snapshotted into the line item
	var prod product.Product
	if err := s.db.First(&prod, productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: product %d", apperrors.ErrNotFound, productID)
		}
		return nil, fmt.Errorf("%w: failed to retrieve product: %v", apperrors.ErrPersistence, err)
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		cart, err := s.findOrCreateCart(tx, userID)
		if err != nil {
			return err
		}

		var item CartItem
		err = tx.Where("cart_id = ? AND product_id = ?", cart.ID, productID).First(&item).Error
		switch {
		case err == nil:
			// Replace semantics: the supplied quantity wins
			item.Quantity = quantity
			item.Price = price
			item.Total = price * int64(quantity)
			if err := tx.Save(&item).Error; err != nil {
				return fmt.Errorf("%w: failed to update cart item: %v", apperrors.ErrPersistence, err)
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			item = CartItem{
				CartID:      cart.ID,
				ProductID:   productID,
				ProductName: prod.Name,
				Price:       price,
				Quantity:    quantity,
				Total:       price * int64(quantity),
			}
			if err := tx.Create(&item).Error; err != nil {
				return fmt.Errorf("%w: failed to create cart item: %v", apperrors.ErrPersistence, err)
			}
		default:
			return fmt.Errorf("%w: failed to check cart item: %v", apperrors.ErrPersistence, err)
		}

		return s.recalculateTotal(tx, cart)
	})
	if err != nil {
		return nil, err
	}

	return s.getCart(userID)
}

// RemoveItem deletes the line item for the given product from the user's
// cart and recomputes the total. Removing the last item leaves an empty
// cart, not a deleted one.
func (s *Service) RemoveItem(userID, productID uint) (*CartResponse, error) {
	release, err := s.acquireCartLock(userID)
	if err != nil {
		return nil, err
	}
	defer release()

	err = s.db.Transaction(func(tx *gorm.DB) error {
		cart, err := s.findCart(tx, userID)
		if err != nil {
			return err
		}

		result := tx.Where("cart_id = ? AND product_id = ?", cart.ID, productID).Delete(&CartItem{})
		if result.Error != nil {
			return fmt.Errorf("%w: failed to remove cart item: %v", apperrors.ErrPersistence, result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("%w: product %d is not in the cart", apperrors.ErrNotFound, productID)
		}

		return s.recalculateTotal(tx, cart)
	})
	if err != nil {
		return nil, err
	}

	return s.getCart(userID)
}

// GetCart retrieves the user's cart with items resolved against current
// product rows for display. Stored prices and line totals are returned
// untouched even if the product price changed since the item was added.
func (s *Service) GetCart(userID uint) (*CartResponse, error) {
	return s.getCart(userID)
}

// Clear empties the cart: items removed, discount and total reset to zero
func (s *Service) Clear(userID uint) error {
	release, err := s.acquireCartLock(userID)
	if err != nil {
		return err
	}
	defer release()

	return s.db.Transaction(func(tx *gorm.DB) error {
		return s.ClearTx(tx, userID)
	})
}

// ClearTx empties the cart within an existing transaction. Checkout calls
// this so the sale insert, stock decrements and cart reset commit together.
func (s *Service) ClearTx(tx *gorm.DB, userID uint) error {
	cart, err := s.findCart(tx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil // Nothing to clear
		}
		return err
	}

	if err := tx.Where("cart_id = ?", cart.ID).Delete(&CartItem{}).Error; err != nil {
		return fmt.Errorf("%w: failed to clear cart items: %v", apperrors.ErrPersistence, err)
	}

	if err := tx.Model(cart).Updates(map[string]interface{}{
		"discount":     0,
		"total_amount": 0,
	}).Error; err != nil {
		return fmt.Errorf("%w: failed to reset cart totals: %v", apperrors.ErrPersistence, err)
	}

	return nil
}

// AcquireCheckoutLock takes the user's cart lock for the duration of a
// checkout so no concurrent add/remove can commit while the cart is being
// converted into a sale.
func (s *Service) AcquireCheckoutLock(userID uint) (func(), error) {
	return s.acquireCartLock(userID)
}

// Private helper methods

func (s *Service) acquireCartLock(userID uint) (func(), error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.Checkout.CartLockTTL)
	defer cancel()

	release, err := s.locker.Acquire(ctx, fmt.Sprintf("cart:lock:user:%d", userID), s.config.Checkout.CartLockTTL)
	if err != nil {
		return nil, fmt.Errorf("%w: cart is busy: %v", apperrors.ErrPersistence, err)
	}
	return release, nil
}

func (s *Service) findCart(tx *gorm.DB, userID uint) (*Cart, error) {
	var cart Cart
	if err := tx.Where("user_id = ?", userID).First(&cart).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: no cart for user %d", apperrors.ErrNotFound, userID)
		}
		return nil, fmt.Errorf("%w: failed to retrieve cart: %v", apperrors.ErrPersistence, err)
	}
	return &cart, nil
}

func (s *Service) findOrCreateCart(tx *gorm.DB, userID uint) (*Cart, error) {
	var cart Cart
	err := tx.Where("user_id = ?", userID).First(&cart).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		cart = Cart{UserID: userID}
		if err := tx.Create(&cart).Error; err != nil {
			return nil, fmt.Errorf("%w: failed to create cart: %v", apperrors.ErrPersistence, err)
		}
		return &cart, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to retrieve cart: %v", apperrors.ErrPersistence, err)
	}
	return &cart, nil
}

func (s *Service) recalculateTotal(tx *gorm.DB, cart *Cart) error {
	var items []CartItem
	if err := tx.Where("cart_id = ?", cart.ID).Find(&items).Error; err != nil {
		return fmt.Errorf("%w: failed to load cart items: %v", apperrors.ErrPersistence, err)
	}

	cart.Items = items
	cart.RecalculateTotal()

	if err := tx.Model(cart).UpdateColumn("total_amount", cart.TotalAmount).Error; err != nil {
		return fmt.Errorf("%w: failed to update cart total: %v", apperrors.ErrPersistence, err)
	}
	return nil
}

func (s *Service) getCart(userID uint) (*CartResponse, error) {
	var cart Cart
	err := s.db.Preload("Items").Where("user_id = ?", userID).First(&cart).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: no cart for user %d", apperrors.ErrNotFound, userID)
		}
		return nil, fmt.Errorf("%w: failed to retrieve cart: %v", apperrors.ErrPersistence, err)
	}

	items := make([]CartItemResponse, len(cart.Items))
	for i, item := range cart.Items {
		items[i] = CartItemResponse{
			ID:          item.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Price:       item.Price,
			Quantity:    item.Quantity,
			Total:       item.Total,
			AddedAt:     item.CreatedAt,
		}

		// Display fields only; prices stay as captured at add time
		var prod product.Product
		if err := s.db.Preload("Category").First(&prod, item.ProductID).Error; err == nil {
			items[i].Product = &prod
		}
	}

	return &CartResponse{
		ID:          cart.ID,
		UserID:      cart.UserID,
		Items:       items,
		Discount:    cart.Discount,
		TotalAmount: cart.TotalAmount,
		CreatedAt:   cart.CreatedAt,
		UpdatedAt:   cart.UpdatedAt,
	}, nil
}
