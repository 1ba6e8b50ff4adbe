// internal/domain/cart/entity.go
package cart

import (
	"time"
)

// Cart is the per-user staging area for items not yet sold. One cart per
// user, created lazily on first add, emptied (never deleted) on checkout.
// TotalAmount always equals the sum of line totals minus Discount.
type Cart struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	Discount    int64     `gorm:"not null;default:0" json:"discount"`
	TotalAmount int64     `gorm:"not null;default:0" json:"total_amount"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Relationships
	Items []CartItem `gorm:"foreignKey:CartID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"items"`
}

// CartItem is one product line in a cart. Name and price are copied from the
// product at add time so later product edits do not change the cart; the
// line total is always recomputed as Price * Quantity.
type CartItem struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CartID      uint      `gorm:"not null;index:idx_cart_product,unique" json:"cart_id"`
	ProductID   uint      `gorm:"not null;index:idx_cart_product,unique" json:"product_id"`
	ProductName string    `gorm:"not null;size:255" json:"product_name"`
	Price       int64     `gorm:"not null" json:"price"` // Unit price at time of adding, in cents
	Quantity    int       `gorm:"not null;default:1" json:"quantity"`
	Total       int64     `gorm:"not null" json:"total"` // Price * Quantity
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName overrides
func (Cart) TableName() string     { return "carts" }
func (CartItem) TableName() string { return "cart_items" }

// RecalculateTotal recomputes the aggregate total from the line totals
func (c *Cart) RecalculateTotal() {
	var sum int64
	for _, item := range c.Items {
		sum += item.Total
	}
	c.TotalAmount = sum - c.Discount
}

// IsEmpty reports whether the cart has no line items
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}
