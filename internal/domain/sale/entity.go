// internal/domain/sale/entity.go
package sale

import (
	"time"
)

// PaymentMethod represents how a sale was paid
type PaymentMethod string

const (
	PaymentMethodCash   PaymentMethod = "cash"
	PaymentMethodCard   PaymentMethod = "card"
	PaymentMethodMobile PaymentMethod = "mobile"
	PaymentMethodMixed  PaymentMethod = "mixed"
)

// IsValid checks if the payment method is one of the accepted values
func (pm PaymentMethod) IsValid() bool {
	switch pm {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodMobile, PaymentMethodMixed:
		return true
	}
	return false
}

// SaleStatus represents the lifecycle state of a sale
type SaleStatus string

const (
	SaleStatusCompleted SaleStatus = "completed"
	SaleStatusVoided    SaleStatus = "voided"
)

// Sale is the immutable record of a completed checkout. All amounts are in
// cents and copied from the cart at checkout time; later product or price
// edits never change a recorded sale.
type Sale struct {
	ID            uint          `gorm:"primaryKey" json:"id"`
	// ReceiptNumber is assigned from the sale id inside the checkout
	// transaction; the column stays NULL for the instant between insert
	// and assignment so the unique index never sees duplicate blanks.
	ReceiptNumber string        `gorm:"uniqueIndex;size:32;default:null" json:"receipt_number"`
	CashierID     uint          `gorm:"not null;index" json:"cashier_id"`
	PaymentMethod PaymentMethod `gorm:"not null;size:20" json:"payment_method"`
	Subtotal      int64         `gorm:"not null" json:"subtotal"`
	Discount      int64         `gorm:"not null;default:0" json:"discount"`
	Tax           int64         `gorm:"not null;default:0" json:"tax"`
	Total         int64         `gorm:"not null" json:"total"`
	Status        SaleStatus    `gorm:"not null;size:20;default:'completed'" json:"status"`
	ClientID      *uint         `gorm:"index" json:"client_id"`
	CustomerName  string        `gorm:"size:255" json:"customer_name"`
	CustomerPhone string        `gorm:"size:32" json:"customer_phone"`
	Notes         string        `gorm:"type:text" json:"notes"`
	SaleDate      time.Time     `gorm:"not null;index" json:"sale_date"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`

	// Relationships
	Items []SaleItem `gorm:"foreignKey:SaleID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"items"`
}

// SaleItem is one sold line. Name, barcode and price are snapshots taken
// from the cart line at checkout.
type SaleItem struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	SaleID      uint      `gorm:"not null;index" json:"sale_id"`
	ProductID   uint      `gorm:"not null;index" json:"product_id"`
	ProductName string    `gorm:"not null;size:255" json:"product_name"`
	Barcode     string    `gorm:"size:64" json:"barcode"`
	Price       int64     `gorm:"not null" json:"price"`
	Quantity    int       `gorm:"not null" json:"quantity"`
	Total       int64     `gorm:"not null" json:"total"`
	CreatedAt   time.Time `json:"created_at"`
}

// TableName overrides
func (Sale) TableName() string     { return "sales" }
func (SaleItem) TableName() string { return "sale_items" }

// ItemCount returns the total number of units sold
func (s *Sale) ItemCount() int {
	count := 0
	for _, item := range s.Items {
		count += item.Quantity
	}
	return count
}
