// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/your-org/pos-backend/internal/interfaces/http/handlers"
	"github.com/your-org/pos-backend/internal/interfaces/http/middleware"
	"github.com/your-org/pos-backend/internal/pkg/auth"
)

// Handlers bundles all route handlers
type Handlers struct {
	Auth      *handlers.AuthHandler
	Product   *handlers.ProductHandler
	Cart      *handlers.CartHandler
	Sale      *handlers.SaleHandler
	Inventory *handlers.InventoryHandler
	Client    *handlers.ClientHandler
	Invoice   *handlers.InvoiceHandler
}

// Setup registers all API routes
func Setup(router *gin.Engine, h *Handlers, jwtManager *auth.JWTManager) {
	v1 := router.Group("/api/v1")

	// Public routes
	authGroup := v1.Group("/auth")
	{
		authGroup.POST("/register", h.Auth.Register)
		authGroup.POST("/login", h.Auth.Login)
		authGroup.POST("/refresh", h.Auth.RefreshToken)
	}

	// Authenticated routes
	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(jwtManager))
	{
		protected.GET("/auth/profile", h.Auth.GetProfile)

		cart := protected.Group("/cart")
		{
			cart.POST("/add", h.Cart.AddItem)
			cart.POST("/remove", h.Cart.RemoveItem)
			cart.POST("/clear", h.Cart.ClearCart)
			cart.POST("/checkout", h.Sale.Checkout)
			cart.GET("/:userId", h.Cart.GetCart)
		}

		products := protected.Group("/products")
		{
			products.GET("", h.Product.GetProducts)
			products.GET("/:id", h.Product.GetProduct)
			products.GET("/barcode/:barcode", h.Product.GetProductByBarcode)
		}

		categories := protected.Group("/categories")
		{
			categories.GET("", h.Product.GetCategories)
		}

		suppliers := protected.Group("/suppliers")
		{
			suppliers.GET("", h.Product.GetSuppliers)
		}

		sales := protected.Group("/sales")
		{
			sales.GET("", h.Sale.GetSales)
			sales.GET("/:id", h.Sale.GetSale)
			sales.GET("/:id/receipt", h.Sale.GetReceipt)
			sales.GET("/summary/daily", h.Sale.GetDailySummary)
		}

		inventory := protected.Group("/inventory")
		{
			inventory.GET("/low-stock", h.Inventory.GetLowStock)
			inventory.GET("/:productId/stock", h.Inventory.GetStockLevel)
			inventory.GET("/:productId/movements", h.Inventory.GetMovements)
		}

		clients := protected.Group("/clients")
		{
			clients.GET("", h.Client.GetClients)
			clients.GET("/:id", h.Client.GetClient)
		}

		invoices := protected.Group("/invoices")
		{
			invoices.GET("", h.Invoice.GetInvoices)
			invoices.GET("/:id", h.Invoice.GetInvoice)
		}
	}

	// Admin-only routes
	admin := v1.Group("")
	admin.Use(middleware.AuthMiddleware(jwtManager), middleware.AdminMiddleware())
	{
		admin.POST("/products", h.Product.CreateProduct)
		admin.PUT("/products/:id", h.Product.UpdateProduct)
		admin.DELETE("/products/:id", h.Product.DeleteProduct)
		admin.POST("/categories", h.Product.CreateCategory)
		admin.POST("/suppliers", h.Product.CreateSupplier)
		admin.POST("/sales/:id/void", h.Sale.VoidSale)
		admin.POST("/inventory/:productId/adjust", h.Inventory.AdjustStock)
		admin.GET("/users", h.Auth.GetUsers)
		admin.POST("/clients", h.Client.CreateClient)
		admin.PUT("/clients/:id", h.Client.UpdateClient)
		admin.DELETE("/clients/:id", h.Client.DeleteClient)
		admin.POST("/invoices", h.Invoice.CreateInvoice)
		admin.POST("/invoices/from-sale", h.Invoice.CreateInvoiceFromSale)
		admin.PATCH("/invoices/:id/status", h.Invoice.UpdateInvoiceStatus)
		admin.DELETE("/invoices/:id", h.Invoice.DeleteInvoice)
	}
}
