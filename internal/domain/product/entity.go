// internal/domain/product/entity.go
package product

import (
	"time"

	"gorm.io/gorm"
)

// Product represents the product entity. Prices are stored in cents.
type Product struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	Barcode        string         `gorm:"uniqueIndex;not null;size:100" json:"barcode"`
	Name           string         `gorm:"not null;size:255;index" json:"name"`
	BrandName      string         `gorm:"size:255" json:"brand_name"`
	RetailPrice    int64          `gorm:"not null" json:"retail_price"`
	WholesalePrice int64          `gorm:"not null" json:"wholesale_price"`
	CostPrice      int64          `gorm:"default:0" json:"cost_price"`
	TaxRate        float64        `gorm:"default:0" json:"tax_rate"`
	CurrentStock   int            `gorm:"not null;default:0" json:"current_stock"`
	MinStock       int            `gorm:"not null;default:0" json:"min_stock"`
	MaxStock       int            `gorm:"default:0" json:"max_stock"`
	CategoryID     uint           `gorm:"not null;index" json:"category_id"`
	SupplierID     *uint          `gorm:"index" json:"supplier_id"`
	Location       string         `gorm:"size:100" json:"location"`
	IsActive       bool           `gorm:"default:true" json:"is_active"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Category Category  `gorm:"foreignKey:CategoryID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"category"`
	Supplier *Supplier `gorm:"foreignKey:SupplierID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"supplier,omitempty"`
}

// Category represents product categories
type Category struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"uniqueIndex;not null;size:255" json:"name"`
	Description string         `gorm:"size:500" json:"description"`
	IsActive    bool           `gorm:"default:true" json:"is_active"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Products []Product `gorm:"foreignKey:CategoryID" json:"products,omitempty"`
}

// Supplier represents a product supplier
type Supplier struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"not null;size:255" json:"name"`
	Phone     string         `gorm:"size:20" json:"phone"`
	Email     string         `gorm:"size:255" json:"email"`
	Address   string         `gorm:"type:text" json:"address"`
	IsActive  bool           `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Products []Product `gorm:"foreignKey:SupplierID" json:"products,omitempty"`
}

// TableName overrides
func (Product) TableName() string  { return "products" }
func (Category) TableName() string { return "categories" }
func (Supplier) TableName() string { return "suppliers" }

// Business methods for Product

// IsInStock reports whether any units remain
func (p *Product) IsInStock() bool {
	return p.CurrentStock > 0
}

// IsLowStock reports whether stock fell to the minimum threshold
func (p *Product) IsLowStock() bool {
	return p.CurrentStock <= p.MinStock
}

// GetFormattedRetailPrice returns the retail price in currency units
func (p *Product) GetFormattedRetailPrice() float64 {
	return float64(p.RetailPrice) / 100
}
