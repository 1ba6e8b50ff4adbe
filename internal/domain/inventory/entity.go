// internal/domain/inventory/entity.go
package inventory

import (
	"time"
)

// MovementType represents the type of stock movement
type MovementType string

const (
	MovementTypeInbound  MovementType = "inbound"  // Purchase, return, adjustment increase
	MovementTypeOutbound MovementType = "outbound" // Sale, damage, adjustment decrease
)

// MovementReason represents the reason for a stock movement
type MovementReason string

const (
	ReasonSale         MovementReason = "sale"
	ReasonSaleReversal MovementReason = "sale_reversal"
	ReasonPurchase     MovementReason = "purchase"
	ReasonReturn       MovementReason = "return"
	ReasonAdjustment   MovementReason = "adjustment"
)

// StockMovement is an audit record of a stock change. Rows are written in
// the same transaction as the stock update itself.
type StockMovement struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	ProductID        uint           `gorm:"not null;index" json:"product_id"`
	MovementType     MovementType   `gorm:"not null;size:20" json:"movement_type"`
	Reason           MovementReason `gorm:"not null;size:30" json:"reason"`
	Quantity         int            `gorm:"not null" json:"quantity"`
	PreviousQuantity int            `gorm:"not null" json:"previous_quantity"`
	NewQuantity      int            `gorm:"not null" json:"new_quantity"`
	ReferenceType    string         `gorm:"size:50" json:"reference_type"` // "sale", "purchase", etc.
	ReferenceID      uint           `json:"reference_id"`
	Notes            string         `gorm:"type:text" json:"notes"`
	CreatedBy        uint           `gorm:"index" json:"created_by"`
	CreatedAt        time.Time      `json:"created_at"`
}

// TableName overrides the table name
func (StockMovement) TableName() string {
	return "stock_movements"
}
