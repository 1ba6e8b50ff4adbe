// internal/domain/invoice/service.go
package invoice

import (
	"errors"
	"fmt"
	"time"

	"github.com/your-org/pos-backend/internal/config"
	"github.com/your-org/pos-backend/internal/domain/client"
	"github.com/your-org/pos-backend/internal/domain/product"
	"github.com/your-org/pos-backend/internal/domain/sale"
	"github.com/your-org/pos-backend/internal/pkg/apperrors"
	"gorm.io/gorm"
)

// Service handles invoice business logic
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new invoice service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// InvoiceItemRequest represents one billed line in a create request
type InvoiceItemRequest struct {
	Description string `json:"description" binding:"required"`
	Quantity    int    `json:"quantity" binding:"required,min=1"`
	Price       int64  `json:"price" binding:"min=0"`
}

// CreateInvoiceRequest represents invoice creation data. Line totals,
// subtotal and total are always computed server-side from the items.
type CreateInvoiceRequest struct {
	Type            string               `json:"type"`
	ClientID        *uint                `json:"client_id"`
	CustomerName    string               `json:"customer_name"`
	CustomerEmail   string               `json:"customer_email"`
	CustomerAddress string               `json:"customer_address"`
	InvoiceDate     string               `json:"invoice_date" binding:"required"` // YYYY-MM-DD
	DueDate         string               `json:"due_date"`                        // YYYY-MM-DD
	Tax             int64                `json:"tax" binding:"min=0"`
	Notes           string               `json:"notes"`
	Items           []InvoiceItemRequest `json:"items" binding:"required,min=1"`
}

// InvoiceListRequest represents invoice list query parameters
type InvoiceListRequest struct {
	Page     int    `form:"page,default=1"`
	Limit    int    `form:"limit,default=20"`
	Status   string `form:"status"`
	Type     string `form:"type"`
	ClientID uint   `form:"client_id"`
}

// InvoiceListResponse represents paginated invoice results
type InvoiceListResponse struct {
	Invoices   []Invoice          `json:"invoices"`
	Pagination product.Pagination `json:"pagination"`
}

// CreateInvoice creates a new invoice with computed totals
func (s *Service) CreateInvoice(req *CreateInvoiceRequest) (*Invoice, error) {
	invoiceType := InvoiceType(req.Type)
	if invoiceType == "" {
		invoiceType = InvoiceTypeSale
	}
	if !invoiceType.IsValid() {
		return nil, fmt.Errorf("%w: unknown invoice type '%s'", apperrors.ErrInvalidInput, req.Type)
	}

	invoiceDate, err := time.Parse("2006-01-02", req.InvoiceDate)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid invoice date '%s'", apperrors.ErrInvalidInput, req.InvoiceDate)
	}

	var dueDate *time.Time
	if req.DueDate != "" {
		d, err := time.Parse("2006-01-02", req.DueDate)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid due date '%s'", apperrors.ErrInvalidInput, req.DueDate)
		}
		dueDate = &d
	}

	customerName := req.CustomerName
	customerEmail := req.CustomerEmail
	customerAddress := req.CustomerAddress

	// A linked client fills in missing customer fields; the stored values
	// stay snapshots either way.
	if req.ClientID != nil {
		var cl client.Client
		if err := s.db.First(&cl, *req.ClientID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: client %d", apperrors.ErrNotFound, *req.ClientID)
			}
			return nil, fmt.Errorf("%w: failed to look up client: %v", apperrors.ErrPersistence, err)
		}
		if customerName == "" {
			customerName = cl.DisplayName()
		}
		if customerEmail == "" {
			customerEmail = cl.Email
		}
		if customerAddress == "" {
			customerAddress = cl.Address
		}
	}
	if customerName == "" {
		return nil, fmt.Errorf("%w: customer name is required", apperrors.ErrInvalidInput)
	}

	inv := &Invoice{
		Type:            invoiceType,
		ClientID:        req.ClientID,
		CustomerName:    customerName,
		CustomerEmail:   customerEmail,
		CustomerAddress: customerAddress,
		InvoiceDate:     invoiceDate,
		DueDate:         dueDate,
		Tax:             req.Tax,
		Notes:           req.Notes,
		Status:          InvoiceStatusPending,
	}

	var subtotal int64
	for _, item := range req.Items {
		if item.Quantity < 1 {
			return nil, fmt.Errorf("%w: item quantity must be at least 1", apperrors.ErrInvalidInput)
		}
		if item.Price < 0 {
			return nil, fmt.Errorf("%w: item price cannot be negative", apperrors.ErrInvalidInput)
		}
		total := item.Price * int64(item.Quantity)
		subtotal += total
		inv.Items = append(inv.Items, InvoiceItem{
			Description: item.Description,
			Quantity:    item.Quantity,
			Price:       item.Price,
			Total:       total,
		})
	}
	inv.Subtotal = subtotal
	inv.Total = subtotal + req.Tax

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(inv).Error; err != nil {
			return fmt.Errorf("%w: failed to create invoice: %v", apperrors.ErrPersistence, err)
		}

		inv.InvoiceNumber = generateInvoiceNumber(inv.ID, inv.InvoiceDate)
		if err := tx.Model(inv).UpdateColumn("invoice_number", inv.InvoiceNumber).Error; err != nil {
			return fmt.Errorf("%w: failed to set invoice number: %v", apperrors.ErrPersistence, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return inv, nil
}

// CreateFromSale bills a completed sale as a pending invoice. Line items are
// copied from the sale snapshot.
func (s *Service) CreateFromSale(saleID uint, clientID *uint, dueDate *time.Time) (*Invoice, error) {
	var sl sale.Sale
	if err := s.db.Preload("Items").First(&sl, saleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: sale %d", apperrors.ErrNotFound, saleID)
		}
		return nil, fmt.Errorf("%w: failed to load sale: %v", apperrors.ErrPersistence, err)
	}
	if sl.Status != sale.SaleStatusCompleted {
		return nil, fmt.Errorf("%w: sale %d is not completed", apperrors.ErrInvalidInput, saleID)
	}

	var existing Invoice
	if err := s.db.Where("sale_id = ?", saleID).First(&existing).Error; err == nil {
		return nil, fmt.Errorf("%w: sale %d is already invoiced as %s",
			apperrors.ErrInvalidInput, saleID, existing.InvoiceNumber)
	}

	customerName := sl.CustomerName
	customerEmail := ""
	customerAddress := ""
	if clientID != nil {
		var cl client.Client
		if err := s.db.First(&cl, *clientID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: client %d", apperrors.ErrNotFound, *clientID)
			}
			return nil, fmt.Errorf("%w: failed to look up client: %v", apperrors.ErrPersistence, err)
		}
		if customerName == "" {
			customerName = cl.DisplayName()
		}
		customerEmail = cl.Email
		customerAddress = cl.Address
	}
	if customerName == "" {
		customerName = "Walk-in customer"
	}

	inv := &Invoice{
		Type:            InvoiceTypeSale,
		ClientID:        clientID,
		SaleID:          &sl.ID,
		CustomerName:    customerName,
		CustomerEmail:   customerEmail,
		CustomerAddress: customerAddress,
		InvoiceDate:     sl.SaleDate,
		DueDate:         dueDate,
		Subtotal:        sl.Subtotal,
		Tax:             sl.Tax,
		Total:           sl.Total,
		Notes:           sl.Notes,
		Status:          InvoiceStatusPending,
	}
	for _, item := range sl.Items {
		inv.Items = append(inv.Items, InvoiceItem{
			Description: item.ProductName,
			Quantity:    item.Quantity,
			Price:       item.Price,
			Total:       item.Total,
		})
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(inv).Error; err != nil {
			return fmt.Errorf("%w: failed to create invoice: %v", apperrors.ErrPersistence, err)
		}

		inv.InvoiceNumber = generateInvoiceNumber(inv.ID, inv.InvoiceDate)
		if err := tx.Model(inv).UpdateColumn("invoice_number", inv.InvoiceNumber).Error; err != nil {
			return fmt.Errorf("%w: failed to set invoice number: %v", apperrors.ErrPersistence, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return inv, nil
}

// generateInvoiceNumber formats an invoice id like INV-20250115-00042
func generateInvoiceNumber(invoiceID uint, date time.Time) string {
	return fmt.Sprintf("INV-%s-%05d", date.Format("20060102"), invoiceID)
}

// GetInvoice retrieves an invoice with its items
func (s *Service) GetInvoice(id uint) (*Invoice, error) {
	var inv Invoice
	err := s.db.Preload("Items").First(&inv, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: invoice %d", apperrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("%w: failed to retrieve invoice: %v", apperrors.ErrPersistence, err)
	}
	return &inv, nil
}

// GetInvoices retrieves invoices with filtering and pagination, newest first
func (s *Service) GetInvoices(req *InvoiceListRequest) (*InvoiceListResponse, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 || req.Limit > 100 {
		req.Limit = 20
	}

	query := s.db.Model(&Invoice{}).Preload("Items")

	if req.Status != "" {
		query = query.Where("status = ?", req.Status)
	}
	if req.Type != "" {
		query = query.Where("type = ?", req.Type)
	}
	if req.ClientID > 0 {
		query = query.Where("client_id = ?", req.ClientID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("%w: failed to count invoices: %v", apperrors.ErrPersistence, err)
	}

	var invoices []Invoice
	offset := (req.Page - 1) * req.Limit
	if err := query.Order("invoice_date DESC").Offset(offset).Limit(req.Limit).Find(&invoices).Error; err != nil {
		return nil, fmt.Errorf("%w: failed to retrieve invoices: %v", apperrors.ErrPersistence, err)
	}

	totalPages := int((total + int64(req.Limit) - 1) / int64(req.Limit))
	return &InvoiceListResponse{
		Invoices: invoices,
		Pagination: product.Pagination{
			Page:       req.Page,
			Limit:      req.Limit,
			Total:      total,
			TotalPages: totalPages,
		},
	}, nil
}

// UpdateStatus moves an invoice through its payment lifecycle. Items and
// amounts are immutable once the invoice exists; only status and notes move.
func (s *Service) UpdateStatus(id uint, status InvoiceStatus, notes string) (*Invoice, error) {
	if !status.IsValid() {
		return nil, fmt.Errorf("%w: unknown invoice status '%s'", apperrors.ErrInvalidInput, status)
	}

	inv, err := s.GetInvoice(id)
	if err != nil {
		return nil, err
	}
	if inv.Status == InvoiceStatusCancelled {
		return nil, fmt.Errorf("%w: invoice %d is cancelled", apperrors.ErrInvalidInput, id)
	}

	updates := map[string]interface{}{"status": status}
	if notes != "" {
		updates["notes"] = notes
	}
	if err := s.db.Model(inv).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("%w: failed to update invoice: %v", apperrors.ErrPersistence, err)
	}

	return s.GetInvoice(id)
}

// DeleteInvoice soft-deletes an invoice
func (s *Service) DeleteInvoice(id uint) error {
	result := s.db.Delete(&Invoice{}, id)
	if result.Error != nil {
		return fmt.Errorf("%w: failed to delete invoice: %v", apperrors.ErrPersistence, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: invoice %d", apperrors.ErrNotFound, id)
	}
	return nil
}

// MarkOverdueInvoices flips pending invoices past their due date to overdue
// and returns how many were updated.
func (s *Service) MarkOverdueInvoices(now time.Time) (int64, error) {
	result := s.db.Model(&Invoice{}).
		Where("status = ? AND due_date IS NOT NULL AND due_date < ?", InvoiceStatusPending, now).
		UpdateColumn("status", InvoiceStatusOverdue)
	if result.Error != nil {
		return 0, fmt.Errorf("%w: failed to mark overdue invoices: %v", apperrors.ErrPersistence, result.Error)
	}
	return result.RowsAffected, nil
}
