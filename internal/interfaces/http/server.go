// internal/interfaces/http/server.go
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/your-org/pos-backend/internal/config"
	"github.com/your-org/pos-backend/internal/domain/cart"
	"github.com/your-org/pos-backend/internal/domain/client"
	"github.com/your-org/pos-backend/internal/domain/inventory"
	"github.com/your-org/pos-backend/internal/domain/invoice"
	"github.com/your-org/pos-backend/internal/domain/product"
	"github.com/your-org/pos-backend/internal/domain/sale"
	"github.com/your-org/pos-backend/internal/domain/user"
	"github.com/your-org/pos-backend/internal/infrastructure/database/postgres"
	"github.com/your-org/pos-backend/internal/infrastructure/database/redis"
	"github.com/your-org/pos-backend/internal/interfaces/http/handlers"
	"github.com/your-org/pos-backend/internal/interfaces/http/middleware"
	"github.com/your-org/pos-backend/internal/interfaces/http/routes"
	"github.com/your-org/pos-backend/internal/pkg/auth"
	"github.com/your-org/pos-backend/internal/pkg/lock"
	"github.com/your-org/pos-backend/internal/pkg/pdf"
)

// Server represents the HTTP server
type Server struct {
	config     *config.Config
	router     *gin.Engine
	httpServer *http.Server
	db         *postgres.DB
	redis      *redis.Client
}

// NewServer creates a new HTTP server with all routes and middleware wired
func NewServer(cfg *config.Config, db *postgres.DB, redisClient *redis.Client) *Server {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggerMiddleware())
	router.Use(middleware.CORSMiddleware(cfg))
	router.Use(middleware.SecurityHeadersMiddleware())
	router.Use(middleware.RateLimitMiddleware(redisClient.GetClient(), cfg))
	router.Use(middleware.RequestSizeLimitMiddleware(10 << 20)) // 10 MB
	router.Use(middleware.TimeoutMiddleware(30 * time.Second))

	server := &Server{
		config: cfg,
		router: router,
		db:     db,
		redis:  redisClient,
	}

	server.setupRoutes()
	return server
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.healthCheck)
	s.router.GET("/ready", s.readinessCheck)

	gormDB := s.db.GetDB()
	locker := lock.NewRedisLocker(s.redis.GetClient())

	jwtManager := auth.NewJWTManager(s.config)
	passwordManager := auth.NewPasswordManager(s.config)

	userService := user.NewService(gormDB, jwtManager, passwordManager, s.config)
	productService := product.NewService(gormDB, s.config)
	invService := inventory.NewService(gormDB, s.config)
	cartService := cart.NewService(gormDB, locker, s.config)
	saleService := sale.NewService(gormDB, cartService, invService, s.config)
	clientService := client.NewService(gormDB, s.config)
	invoiceService := invoice.NewService(gormDB, s.config)
	pdfService := pdf.NewService(s.config)

	routes.Setup(s.router, &routes.Handlers{
		Auth:      handlers.NewAuthHandler(userService),
		Product:   handlers.NewProductHandler(productService),
		Cart:      handlers.NewCartHandler(cartService),
		Sale:      handlers.NewSaleHandler(saleService, pdfService),
		Inventory: handlers.NewInventoryHandler(invService),
		Client:    handlers.NewClientHandler(clientService),
		Invoice:   handlers.NewInvoiceHandler(invoiceService),
	}, jwtManager)
}

// healthCheck reports process liveness
func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"app":     s.config.App.Name,
		"version": s.config.App.Version,
	})
}

// readinessCheck reports whether backing stores are reachable
func (s *Server) readinessCheck(c *gin.Context) {
	checks := gin.H{}
	healthy := true

	if err := s.db.Health(); err != nil {
		checks["database"] = "unreachable"
		healthy = false
	} else {
		checks["database"] = "ok"
	}

	if err := s.redis.Health(); err != nil {
		checks["redis"] = "unreachable"
		healthy = false
	} else {
		checks["redis"] = "ok"
	}

	status := http.StatusOK
	if !healthy {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{"checks": checks})
}

// Start begins listening for requests
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%s", s.config.Server.Port),
		Handler:      s.router,
		ReadTimeout:  s.config.Server.ReadTimeout,
		WriteTimeout: s.config.Server.WriteTimeout,
		IdleTimeout:  s.config.Server.IdleTimeout,
	}
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}
