// internal/domain/client/service.go
package client

import (
	"errors"
	"fmt"

	"github.com/your-org/pos-backend/internal/config"
	"github.com/your-org/pos-backend/internal/domain/product"
	"github.com/your-org/pos-backend/internal/pkg/apperrors"
	"gorm.io/gorm"
)

// Service handles client business logic
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new client service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// CreateClientRequest represents client creation data
type CreateClientRequest struct {
	FirstName    string  `json:"first_name" binding:"required"`
	LastName     string  `json:"last_name" binding:"required"`
	Company      string  `json:"company"`
	Email        string  `json:"email"`
	Phone        string  `json:"phone"`
	Address      string  `json:"address"`
	City         string  `json:"city"`
	PostalCode   string  `json:"postal_code"`
	Country      string  `json:"country"`
	TaxNumber    string  `json:"tax_number"`
	ClientType   string  `json:"client_type"`
	PaymentTerms string  `json:"payment_terms"`
	CreditLimit  int64   `json:"credit_limit" binding:"min=0"`
	DiscountRate float64 `json:"discount_rate" binding:"min=0"`
	Notes        string  `json:"notes"`
}

// UpdateClientRequest represents client update data
type UpdateClientRequest struct {
	FirstName    *string  `json:"first_name"`
	LastName     *string  `json:"last_name"`
	Company      *string  `json:"company"`
	Email        *string  `json:"email"`
	Phone        *string  `json:"phone"`
	Address      *string  `json:"address"`
	City         *string  `json:"city"`
	PostalCode   *string  `json:"postal_code"`
	Country      *string  `json:"country"`
	TaxNumber    *string  `json:"tax_number"`
	ClientType   *string  `json:"client_type"`
	PaymentTerms *string  `json:"payment_terms"`
	CreditLimit  *int64   `json:"credit_limit"`
	DiscountRate *float64 `json:"discount_rate"`
	Notes        *string  `json:"notes"`
	IsActive     *bool    `json:"is_active"`
}

// ClientListRequest represents client list query parameters
type ClientListRequest struct {
	Page   int    `form:"page,default=1"`
	Limit  int    `form:"limit,default=20"`
	Search string `form:"search"`
	Type   string `form:"type"`
}

// ClientListResponse represents paginated client results
type ClientListResponse struct {
	Clients    []Client           `json:"clients"`
	Pagination product.Pagination `json:"pagination"`
}

// CreateClient creates a new client
func (s *Service) CreateClient(req *CreateClientRequest) (*Client, error) {
	clientType := ClientType(req.ClientType)
	if clientType == "" {
		clientType = ClientTypeIndividual
	}
	if clientType != ClientTypeIndividual && clientType != ClientTypeCompany {
		return nil, fmt.Errorf("%w: unknown client type '%s'", apperrors.ErrInvalidInput, req.ClientType)
	}

	terms := PaymentTerms(req.PaymentTerms)
	if terms == "" {
		terms = PaymentTermsImmediate
	}
	if !terms.IsValid() {
		return nil, fmt.Errorf("%w: unknown payment terms '%s'", apperrors.ErrInvalidInput, req.PaymentTerms)
	}

	country := req.Country
	if country == "" {
		country = "France"
	}

	client := &Client{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Company:      req.Company,
		Email:        req.Email,
		Phone:        req.Phone,
		Address:      req.Address,
		City:         req.City,
		PostalCode:   req.PostalCode,
		Country:      country,
		TaxNumber:    req.TaxNumber,
		ClientType:   clientType,
		PaymentTerms: terms,
		CreditLimit:  req.CreditLimit,
		DiscountRate: req.DiscountRate,
		Notes:        req.Notes,
		IsActive:     true,
	}
	if err := s.db.Create(client).Error; err != nil {
		return nil, fmt.Errorf("%w: failed to create client: %v", apperrors.ErrPersistence, err)
	}

	return client, nil
}

// GetClient retrieves a client by ID
func (s *Service) GetClient(id uint) (*Client, error) {
	var client Client
	if err := s.db.First(&client, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: client %d", apperrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("%w: failed to retrieve client: %v", apperrors.ErrPersistence, err)
	}
	return &client, nil
}

// GetClients retrieves clients with filtering and pagination, newest first
func (s *Service) GetClients(req *ClientListRequest) (*ClientListResponse, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 || req.Limit > 100 {
		req.Limit = 20
	}

	query := s.db.Model(&Client{})

	if req.Search != "" {
		search := "%" + req.Search + "%"
		query = query.Where("first_name LIKE ? OR last_name LIKE ? OR company LIKE ? OR email LIKE ?",
			search, search, search, search)
	}
	if req.Type != "" {
		query = query.Where("client_type = ?", req.Type)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("%w: failed to count clients: %v", apperrors.ErrPersistence, err)
	}

	var clients []Client
	offset := (req.Page - 1) * req.Limit
	if err := query.Order("created_at DESC").Offset(offset).Limit(req.Limit).Find(&clients).Error; err != nil {
		return nil, fmt.Errorf("%w: failed to retrieve clients: %v", apperrors.ErrPersistence, err)
	}

	totalPages := int((total + int64(req.Limit) - 1) / int64(req.Limit))
	return &ClientListResponse{
		Clients: clients,
		Pagination: product.Pagination{
			Page:       req.Page,
			Limit:      req.Limit,
			Total:      total,
			TotalPages: totalPages,
		},
	}, nil
}

// UpdateClient updates an existing client
func (s *Service) UpdateClient(id uint, req *UpdateClientRequest) (*Client, error) {
	client, err := s.GetClient(id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.FirstName != nil {
		updates["first_name"] = *req.FirstName
	}
	if req.LastName != nil {
		updates["last_name"] = *req.LastName
	}
	if req.Company != nil {
		updates["company"] = *req.Company
	}
	if req.Email != nil {
		updates["email"] = *req.Email
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}
	if req.Address != nil {
		updates["address"] = *req.Address
	}
	if req.City != nil {
		updates["city"] = *req.City
	}
	if req.PostalCode != nil {
		updates["postal_code"] = *req.PostalCode
	}
	if req.Country != nil {
		updates["country"] = *req.Country
	}
	if req.TaxNumber != nil {
		updates["tax_number"] = *req.TaxNumber
	}
	if req.ClientType != nil {
		clientType := ClientType(*req.ClientType)
		if clientType != ClientTypeIndividual && clientType != ClientTypeCompany {
			return nil, fmt.Errorf("%w: unknown client type '%s'", apperrors.ErrInvalidInput, *req.ClientType)
		}
		updates["client_type"] = clientType
	}
	if req.PaymentTerms != nil {
		terms := PaymentTerms(*req.PaymentTerms)
		if !terms.IsValid() {
			return nil, fmt.Errorf("%w: unknown payment terms '%s'", apperrors.ErrInvalidInput, *req.PaymentTerms)
		}
		updates["payment_terms"] = terms
	}
	if req.CreditLimit != nil {
		updates["credit_limit"] = *req.CreditLimit
	}
	if req.DiscountRate != nil {
		updates["discount_rate"] = *req.DiscountRate
	}
	if req.Notes != nil {
		updates["notes"] = *req.Notes
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if len(updates) == 0 {
		return client, nil
	}

	if err := s.db.Model(client).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("%w: failed to update client: %v", apperrors.ErrPersistence, err)
	}

	return s.GetClient(id)
}

// DeleteClient soft-deletes a client. Sales keep their customer name
// snapshot, so deleting a client never rewrites past sales.
func (s *Service) DeleteClient(id uint) error {
	result := s.db.Delete(&Client{}, id)
	if result.Error != nil {
		return fmt.Errorf("%w: failed to delete client: %v", apperrors.ErrPersistence, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: client %d", apperrors.ErrNotFound, id)
	}
	return nil
}
