// internal/interfaces/http/handlers/inventory.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/your-org/pos-backend/internal/domain/inventory"
	"github.com/your-org/pos-backend/internal/interfaces/http/middleware"
	"github.com/your-org/pos-backend/internal/pkg/apperrors"
)

// InventoryHandler handles stock endpoints
type InventoryHandler struct {
	invService *inventory.Service
}

// NewInventoryHandler creates a new inventory handler
func NewInventoryHandler(invService *inventory.Service) *InventoryHandler {
	return &InventoryHandler{
		invService: invService,
	}
}

// GetStockLevel returns the current stock for a product
// GET /api/v1/inventory/:productId/stock
func (h *InventoryHandler) GetStockLevel(c *gin.Context) {
	productID, err := parseIDParam(c, "productId")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
		return
	}

	stock, err := h.invService.GetStockLevel(productID)
	if err != nil {
		c.JSON(apperrors.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"product_id":    productID,
			"current_stock": stock,
		},
	})
}

// AdjustStock applies a manual stock correction
// POST /api/v1/inventory/:productId/adjust
func (h *InventoryHandler) AdjustStock(c *gin.Context) {
	productID, err := parseIDParam(c, "productId")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
		return
	}

	var req struct {
		NewQuantity *int   `json:"new_quantity" binding:"required"`
		Notes       string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format", "details": err.Error()})
		return
	}

	userID, _ := middleware.GetUserIDFromContext(c)

	movement, err := h.invService.AdjustStock(productID, *req.NewQuantity, req.Notes, userID)
	if err != nil {
		c.JSON(apperrors.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Stock adjusted",
		"data":    movement,
	})
}

// GetMovements lists a product's stock movement history
// GET /api/v1/inventory/:productId/movements
func (h *InventoryHandler) GetMovements(c *gin.Context) {
	productID, err := parseIDParam(c, "productId")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	movements, err := h.invService.GetMovements(productID, limit)
	if err != nil {
		c.JSON(apperrors.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": movements})
}

// GetLowStock lists products at or below their minimum stock
// GET /api/v1/inventory/low-stock
func (h *InventoryHandler) GetLowStock(c *gin.Context) {
	products, err := h.invService.GetLowStockProducts()
	if err != nil {
		c.JSON(apperrors.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": products})
}
