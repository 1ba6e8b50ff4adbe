// internal/interfaces/http/handlers/cart.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/your-org/pos-backend/internal/domain/cart"
	"github.com/your-org/pos-backend/internal/pkg/apperrors"
)

// CartHandler handles cart endpoints. The wire field names follow the
// terminal client's camelCase convention.
type CartHandler struct {
	cartService *cart.Service
}

// NewCartHandler creates a new cart handler
func NewCartHandler(cartService *cart.Service) *CartHandler {
	return &CartHandler{
		cartService: cartService,
	}
}

// AddItemRequest represents the add-to-cart payload. ItemTotal is accepted
// for compatibility with older terminals but always recomputed server-side.
type AddItemRequest struct {
	UserID    uint  `json:"userId" binding:"required"`
	ProductID uint  `json:"productId" binding:"required"`
	Quantity  int   `json:"quantity" binding:"required"`
	Price     int64 `json:"price"`
	ItemTotal int64 `json:"itemTotal"`
}

// RemoveItemRequest represents the remove-from-cart payload
type RemoveItemRequest struct {
	UserID    uint `json:"userId" binding:"required"`
	ProductID uint `json:"productId" binding:"required"`
}

// AddItem adds a product to the cart or replaces its quantity
// POST /api/v1/cart/add
func (h *CartHandler) AddItem(c *gin.Context) {
	var req AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format", "details": err.Error()})
		return
	}

	resp, err := h.cartService.AddOrUpdateItem(req.UserID, req.ProductID, req.Quantity, req.Price)
	if err != nil {
		c.JSON(apperrors.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Item added to cart",
		"data":    resp,
	})
}

// RemoveItem removes a product line from the cart
// POST /api/v1/cart/remove
func (h *CartHandler) RemoveItem(c *gin.Context) {
	var req RemoveItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format", "details": err.Error()})
		return
	}

	resp, err := h.cartService.RemoveItem(req.UserID, req.ProductID)
	if err != nil {
		c.JSON(apperrors.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Item removed from cart",
		"data":    resp,
	})
}

// GetCart retrieves a user's cart
// GET /api/v1/cart/:userId
func (h *CartHandler) GetCart(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Param("userId"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	resp, err := h.cartService.GetCart(uint(userID))
	if err != nil {
		c.JSON(apperrors.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// ClearCart empties a user's cart
// POST /api/v1/cart/clear
func (h *CartHandler) ClearCart(c *gin.Context) {
	var req struct {
		UserID uint `json:"userId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	if err := h.cartService.Clear(req.UserID); err != nil {
		c.JSON(apperrors.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Cart cleared"})
}
