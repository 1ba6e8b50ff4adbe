// internal/domain/client/entity.go
package client

import (
	"time"

	"gorm.io/gorm"
)

// ClientType distinguishes walk-in individuals from business accounts
type ClientType string

const (
	ClientTypeIndividual ClientType = "individual"
	ClientTypeCompany    ClientType = "company"
)

// PaymentTerms represents the agreed payment window for a client
type PaymentTerms string

const (
	PaymentTermsImmediate PaymentTerms = "immediate"
	PaymentTermsNet30     PaymentTerms = "net30"
	PaymentTermsNet60     PaymentTerms = "net60"
)

// IsValid checks if the payment terms are one of the accepted values
func (pt PaymentTerms) IsValid() bool {
	switch pt {
	case PaymentTermsImmediate, PaymentTermsNet30, PaymentTermsNet60:
		return true
	}
	return false
}

// Client represents a registered customer. Sales may reference a client but
// always snapshot the customer name, so client edits never rewrite history.
type Client struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	FirstName    string         `gorm:"not null;size:100" json:"first_name"`
	LastName     string         `gorm:"not null;size:100" json:"last_name"`
	Company      string         `gorm:"size:255" json:"company"`
	Email        string         `gorm:"size:255;index" json:"email"`
	Phone        string         `gorm:"size:32" json:"phone"`
	Address      string         `gorm:"size:255" json:"address"`
	City         string         `gorm:"size:100" json:"city"`
	PostalCode   string         `gorm:"size:20" json:"postal_code"`
	Country      string         `gorm:"size:100;default:'France'" json:"country"`
	TaxNumber    string         `gorm:"size:50" json:"tax_number"`
	ClientType   ClientType     `gorm:"size:20;default:'individual'" json:"client_type"`
	PaymentTerms PaymentTerms   `gorm:"size:20;default:'immediate'" json:"payment_terms"`
	CreditLimit  int64          `gorm:"default:0" json:"credit_limit"` // In cents
	DiscountRate float64        `gorm:"default:0" json:"discount_rate"`
	Notes        string         `gorm:"type:text" json:"notes"`
	IsActive     bool           `gorm:"default:true" json:"is_active"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName overrides the table name
func (Client) TableName() string {
	return "clients"
}

// DisplayName returns the name shown on receipts and invoices
func (c *Client) DisplayName() string {
	if c.ClientType == ClientTypeCompany && c.Company != "" {
		return c.Company
	}
	return c.FirstName + " " + c.LastName
}
