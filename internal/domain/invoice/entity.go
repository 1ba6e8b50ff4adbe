// internal/domain/invoice/entity.go
package invoice

import (
	"time"

	"gorm.io/gorm"
)

// InvoiceType represents the direction of an invoice
type InvoiceType string

const (
	InvoiceTypeSale     InvoiceType = "sale"
	InvoiceTypePurchase InvoiceType = "purchase"
	InvoiceTypeReturn   InvoiceType = "return"
)

// IsValid checks if the invoice type is one of the accepted values
func (it InvoiceType) IsValid() bool {
	switch it {
	case InvoiceTypeSale, InvoiceTypePurchase, InvoiceTypeReturn:
		return true
	}
	return false
}

// InvoiceStatus represents the payment state of an invoice
type InvoiceStatus string

const (
	InvoiceStatusPending   InvoiceStatus = "pending"
	InvoiceStatusPaid      InvoiceStatus = "paid"
	InvoiceStatusOverdue   InvoiceStatus = "overdue"
	InvoiceStatusCancelled InvoiceStatus = "cancelled"
)

// IsValid checks if the invoice status is one of the accepted values
func (is InvoiceStatus) IsValid() bool {
	switch is {
	case InvoiceStatusPending, InvoiceStatusPaid, InvoiceStatusOverdue, InvoiceStatusCancelled:
		return true
	}
	return false
}

// Invoice is a billing document, separate from the sale ledger: sales record
// what left the store, invoices track what is owed. Amounts are in cents and
// the customer fields are snapshots, the same rule as Sale.
type Invoice struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	InvoiceNumber   string         `gorm:"uniqueIndex;size:32;default:null" json:"invoice_number"`
	Type            InvoiceType    `gorm:"not null;size:20;default:'sale'" json:"type"`
	ClientID        *uint          `gorm:"index" json:"client_id"`
	SaleID          *uint          `gorm:"index" json:"sale_id"`
	CustomerName    string         `gorm:"not null;size:255" json:"customer_name"`
	CustomerEmail   string         `gorm:"size:255" json:"customer_email"`
	CustomerAddress string         `gorm:"size:255" json:"customer_address"`
	InvoiceDate     time.Time      `gorm:"not null;index" json:"invoice_date"`
	DueDate         *time.Time     `json:"due_date"`
	Subtotal        int64          `gorm:"not null" json:"subtotal"`
	Tax             int64          `gorm:"not null;default:0" json:"tax"`
	Total           int64          `gorm:"not null" json:"total"`
	Notes           string         `gorm:"type:text" json:"notes"`
	Status          InvoiceStatus  `gorm:"not null;size:20;default:'pending'" json:"status"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Items []InvoiceItem `gorm:"foreignKey:InvoiceID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"items"`
}

// InvoiceItem is one billed line on an invoice
type InvoiceItem struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	InvoiceID   uint      `gorm:"not null;index" json:"invoice_id"`
	Description string    `gorm:"not null;size:255" json:"description"`
	Quantity    int       `gorm:"not null" json:"quantity"`
	Price       int64     `gorm:"not null" json:"price"`
	Total       int64     `gorm:"not null" json:"total"`
	CreatedAt   time.Time `json:"created_at"`
}

// TableName overrides
func (Invoice) TableName() string     { return "invoices" }
func (InvoiceItem) TableName() string { return "invoice_items" }

// IsOverdue reports whether an unpaid invoice is past its due date
func (i *Invoice) IsOverdue(now time.Time) bool {
	return i.Status == InvoiceStatusPending && i.DueDate != nil && now.After(*i.DueDate)
}
