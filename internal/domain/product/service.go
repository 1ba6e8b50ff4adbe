// internal/domain/product/service.go
package product

import (
	"errors"
	"fmt"

	"github.com/your-org/pos-backend/internal/config"
	"github.com/your-org/pos-backend/internal/pkg/apperrors"
	"gorm.io/gorm"
)

// Service handles product business logic
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new product service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// CreateProductRequest represents product creation data
type CreateProductRequest struct {
	Barcode        string  `json:"barcode" binding:"required"`
	Name           string  `json:"name" binding:"required"`
	BrandName      string  `json:"brand_name"`
	RetailPrice    int64   `json:"retail_price" binding:"required,min=0"`
	WholesalePrice int64   `json:"wholesale_price" binding:"min=0"`
	CostPrice      int64   `json:"cost_price" binding:"min=0"`
	TaxRate        float64 `json:"tax_rate" binding:"min=0"`
	CurrentStock   int     `json:"current_stock" binding:"min=0"`
	MinStock       int     `json:"min_stock" binding:"min=0"`
	MaxStock       int     `json:"max_stock" binding:"min=0"`
	CategoryID     uint    `json:"category_id" binding:"required"`
	SupplierID     *uint   `json:"supplier_id"`
	Location       string  `json:"location"`
}

// UpdateProductRequest represents product update data
type UpdateProductRequest struct {
	Name           *string  `json:"name"`
	BrandName      *string  `json:"brand_name"`
	RetailPrice    *int64   `json:"retail_price"`
	WholesalePrice *int64   `json:"wholesale_price"`
	CostPrice      *int64   `json:"cost_price"`
	TaxRate        *float64 `json:"tax_rate"`
	MinStock       *int     `json:"min_stock"`
	MaxStock       *int     `json:"max_stock"`
	CategoryID     *uint    `json:"category_id"`
	SupplierID     *uint    `json:"supplier_id"`
	Location       *string  `json:"location"`
	IsActive       *bool    `json:"is_active"`
}

// ProductListRequest represents product list query parameters
type ProductListRequest struct {
	Page       int    `form:"page,default=1"`
	Limit      int    `form:"limit,default=20"`
	CategoryID uint   `form:"category_id"`
	Search     string `form:"search"`
	LowStock   bool   `form:"low_stock"`
}

// ProductListResponse represents paginated product results
type ProductListResponse struct {
	Products   []Product  `json:"products"`
	Pagination Pagination `json:"pagination"`
}

// Pagination represents pagination information
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// CreateProduct creates a new product
func (s *Service) CreateProduct(req *CreateProductRequest) (*Product, error) {
	// Barcode must be unique
	var existing Product
	if err := s.db.Where("barcode = ?", req.Barcode).First(&existing).Error; err == nil {
		return nil, fmt.Errorf("%w: product with barcode '%s' already exists", apperrors.ErrInvalidInput, req.Barcode)
	}

	// Category must exist
	var category Category
	if err := s.db.First(&category, req.CategoryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: category %d", apperrors.ErrNotFound, req.CategoryID)
		}
		return nil, fmt.Errorf("%w: failed to check category: %v", apperrors.ErrPersistence, err)
	}

	product := &Product{
		Barcode:        req.Barcode,
		Name:           req.Name,
		BrandName:      req.BrandName,
		RetailPrice:    req.RetailPrice,
		WholesalePrice: req.WholesalePrice,
		CostPrice:      req.CostPrice,
		TaxRate:        req.TaxRate,
		CurrentStock:   req.CurrentStock,
		MinStock:       req.MinStock,
		MaxStock:       req.MaxStock,
		CategoryID:     req.CategoryID,
		SupplierID:     req.SupplierID,
		Location:       req.Location,
		IsActive:       true,
	}

	if err := s.db.Create(product).Error; err != nil {
		return nil, fmt.Errorf("%w: failed to create product: %v", apperrors.ErrPersistence, err)
	}

	return product, nil
}

// GetProduct retrieves a single product by ID
func (s *Service) GetProduct(id uint) (*Product, error) {
	var product Product
	err := s.db.Preload("Category").Preload("Supplier").First(&product, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: product %d", apperrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("%w: failed to retrieve product: %v", apperrors.ErrPersistence, err)
	}
	return &product, nil
}

// GetProductByBarcode retrieves a single product by barcode
func (s *Service) GetProductByBarcode(barcode string) (*Product, error) {
	var product Product
	err := s.db.Preload("Category").Preload("Supplier").
		Where("barcode = ?", barcode).First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: product with barcode '%s'", apperrors.ErrNotFound, barcode)
		}
		return nil, fmt.Errorf("%w: failed to retrieve product: %v", apperrors.ErrPersistence, err)
	}
	return &product, nil
}

// GetProducts retrieves products with filtering and pagination
func (s *Service) GetProducts(req *ProductListRequest) (*ProductListResponse, error) {
	var products []Product
	var total int64

	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 || req.Limit > 100 {
		req.Limit = 20
	}

	query := s.db.Model(&Product{}).Preload("Category").Preload("Supplier")

	if req.CategoryID > 0 {
		query = query.Where("category_id = ?", req.CategoryID)
	}

	if req.Search != "" {
		search := "%" + req.Search + "%"
		query = query.Where("name LIKE ? OR barcode LIKE ? OR brand_name LIKE ?", search, search, search)
	}

	if req.LowStock {
		query = query.Where("current_stock <= min_stock")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("%w: failed to count products: %v", apperrors.ErrPersistence, err)
	}

	offset := (req.Page - 1) * req.Limit
	if err := query.Order("name asc").Offset(offset).Limit(req.Limit).Find(&products).Error; err != nil {
		return nil, fmt.Errorf("%w: failed to retrieve products: %v", apperrors.ErrPersistence, err)
	}

	totalPages := int((total + int64(req.Limit) - 1) / int64(req.Limit))
	return &ProductListResponse{
		Products: products,
		Pagination: Pagination{
			Page:       req.Page,
			Limit:      req.Limit,
			Total:      total,
			TotalPages: totalPages,
		},
	}, nil
}

// UpdateProduct updates an existing product
func (s *Service) UpdateProduct(id uint, req *UpdateProductRequest) (*Product, error) {
	product, err := s.GetProduct(id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.BrandName != nil {
		updates["brand_name"] = *req.BrandName
	}
	if req.RetailPrice != nil {
		updates["retail_price"] = *req.RetailPrice
	}
	if req.WholesalePrice != nil {
		updates["wholesale_price"] = *req.WholesalePrice
	}
	if req.CostPrice != nil {
		updates["cost_price"] = *req.CostPrice
	}
	if req.TaxRate != nil {
		updates["tax_rate"] = *req.TaxRate
	}
	if req.MinStock != nil {
		updates["min_stock"] = *req.MinStock
	}
	if req.MaxStock != nil {
		updates["max_stock"] = *req.MaxStock
	}
	if req.CategoryID != nil {
		updates["category_id"] = *req.CategoryID
	}
	if req.SupplierID != nil {
		updates["supplier_id"] = *req.SupplierID
	}
	if req.Location != nil {
		updates["location"] = *req.Location
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if len(updates) == 0 {
		return product, nil
	}

	if err := s.db.Model(product).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("%w: failed to update product: %v", apperrors.ErrPersistence, err)
	}

	return s.GetProduct(id)
}

// DeleteProduct soft-deletes a product. Historical sale snapshots keep their
// copied name and price, so deleting a product never rewrites past sales.
func (s *Service) DeleteProduct(id uint) error {
	result := s.db.Delete(&Product{}, id)
	if result.Error != nil {
		return fmt.Errorf("%w: failed to delete product: %v", apperrors.ErrPersistence, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: product %d", apperrors.ErrNotFound, id)
	}
	return nil
}

// CATEGORY MANAGEMENT

// CreateCategory creates a new category
func (s *Service) CreateCategory(name, description string) (*Category, error) {
	var existing Category
	if err := s.db.Where("name = ?", name).First(&existing).Error; err == nil {
		return nil, fmt.Errorf("%w: category '%s' already exists", apperrors.ErrInvalidInput, name)
	}

	category := &Category{
		Name:        name,
		Description: description,
		IsActive:    true,
	}
	if err := s.db.Create(category).Error; err != nil {
		return nil, fmt.Errorf("%w: failed to create category: %v", apperrors.ErrPersistence, err)
	}
	return category, nil
}

// GetCategories retrieves all active categories
func (s *Service) GetCategories() ([]Category, error) {
	var categories []Category
	if err := s.db.Where("is_active = ?", true).Order("name asc").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("%w: failed to retrieve categories: %v", apperrors.ErrPersistence, err)
	}
	return categories, nil
}

// SUPPLIER MANAGEMENT

// CreateSupplier creates a new supplier
func (s *Service) CreateSupplier(supplier *Supplier) (*Supplier, error) {
	supplier.IsActive = true
	if err := s.db.Create(supplier).Error; err != nil {
		return nil, fmt.Errorf("%w: failed to create supplier: %v", apperrors.ErrPersistence, err)
	}
	return supplier, nil
}

// GetSuppliers retrieves all active suppliers
func (s *Service) GetSuppliers() ([]Supplier, error) {
	var suppliers []Supplier
	if err := s.db.Where("is_active = ?", true).Order("name asc").Find(&suppliers).Error; err != nil {
		return nil, fmt.Errorf("%w: failed to retrieve suppliers: %v", apperrors.ErrPersistence, err)
	}
	return suppliers, nil
}
