// internal/interfaces/http/handlers/sale.go
package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/pos-backend/internal/domain/sale"
	"github.com/your-org/pos-backend/internal/interfaces/http/middleware"
	"github.com/your-org/pos-backend/internal/pkg/apperrors"
	"github.com/your-org/pos-backend/internal/pkg/pdf"
)

// SaleHandler handles checkout and sale ledger endpoints
type SaleHandler struct {
	saleService *sale.Service
	pdfService  *pdf.Service
}

// NewSaleHandler creates a new sale handler
func NewSaleHandler(saleService *sale.Service, pdfService *pdf.Service) *SaleHandler {
	return &SaleHandler{
		saleService: saleService,
		pdfService:  pdfService,
	}
}

// CheckoutRequest represents the checkout payload from a terminal
type CheckoutRequest struct {
	UserID        uint   `json:"userId" binding:"required"`
	PaymentMethod string `json:"paymentMethod" binding:"required"`
	Discount      int64  `json:"discount"`
	Tax           int64  `json:"tax"`
	ClientID      *uint  `json:"clientId"`
	CustomerName  string `json:"customerName"`
	CustomerPhone string `json:"customerPhone"`
	Notes         string `json:"notes"`
}

// Checkout converts the user's cart into a completed sale
// POST /api/v1/cart/checkout
func (h *SaleHandler) Checkout(c *gin.Context) {
	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format", "details": err.Error()})
		return
	}

	created, err := h.saleService.Checkout(&sale.CheckoutRequest{
		UserID:        req.UserID,
		PaymentMethod: sale.PaymentMethod(req.PaymentMethod),
		Discount:      req.Discount,
		Tax:           req.Tax,
		ClientID:      req.ClientID,
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		Notes:         req.Notes,
	})
	if err != nil {
		c.JSON(apperrors.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":   "Checkout completed",
		"receiptId": created.ReceiptNumber,
		"data":      created,
	})
}

// GetSales lists sales with filters and pagination
// GET /api/v1/sales
func (h *SaleHandler) GetSales(c *gin.Context) {
	var req sale.SaleListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return
	}

	resp, err := h.saleService.GetSales(&req)
	if err != nil {
		c.JSON(apperrors.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// GetSale retrieves a single sale
// GET /api/v1/sales/:id
func (h *SaleHandler) GetSale(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid sale ID"})
		return
	}

	s, err := h.saleService.GetSale(id)
	if err != nil {
		c.JSON(apperrors.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": s})
}

// GetDailySummary aggregates one day's sales
// GET /api/v1/sales/summary/daily?date=2025-01-15
func (h *SaleHandler) GetDailySummary(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date query parameter is required"})
		return
	}

	summary, err := h.saleService.GetDailySummary(date)
	if err != nil {
		c.JSON(apperrors.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": summary})
}

// VoidSale reverses a completed sale and restores its stock
// POST /api/v1/sales/:id/void
func (h *SaleHandler) VoidSale(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid sale ID"})
		return
	}

	userID, _ := middleware.GetUserIDFromContext(c)

	voided, err := h.saleService.VoidSale(id, userID)
	if err != nil {
		c.JSON(apperrors.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Sale voided",
		"data":    voided,
	})
}

// GetReceipt renders a sale's receipt as a PDF
// GET /api/v1/sales/:id/receipt
func (h *SaleHandler) GetReceipt(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid sale ID"})
		return
	}

	s, err := h.saleService.GetSale(id)
	if err != nil {
		c.JSON(apperrors.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	pdfBytes, err := h.pdfService.GenerateReceipt(s)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate receipt"})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%s.pdf", s.ReceiptNumber))
	c.Data(http.StatusOK, "application/pdf", pdfBytes)
}
