// Package http provides the HTTP server adapter for the application layer.
// This is a thin adapter layer that translates HTTP requests to application
// service calls.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/qaiserfcc/cloud-pos-api/internal/application/service"
)

// Logger interface for logging operations
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	JWTSecret    string
}

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:         "0.0.0.0",
		Port:         8080,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}

// Services bundles the application services the HTTP layer exposes.
type Services struct {
	Transfers service.TransferService
	Approvals service.ApprovalService
	Rules     service.ApprovalRuleService
	Inventory service.InventoryService
	Stores    service.StoreService
	Products  service.ProductService
	Sales     service.SaleService
	Exports   service.ExportService
	Audit     service.AuditService
}

// Server is the HTTP server adapter
type Server struct {
	config     ServerConfig
	httpServer *http.Server
	router     *gin.Engine
	services   Services
	logger     Logger
}

// NewServer creates a new HTTP server with the given services
func NewServer(config ServerConfig, services Services, logger Logger) *Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	server := &Server{
		config:   config,
		router:   router,
		services: services,
		logger:   logger,
	}

	server.setupMiddleware()
	server.setupRoutes()

	return server
}

// setupMiddleware configures middleware for the router
func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(s.loggingMiddleware())
}

// loggingMiddleware creates a logging middleware
func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		s.logger.Info("HTTP request",
			"method", method,
			"path", path,
			"status", status,
			"latency", latency.String(),
			"client_ip", c.ClientIP(),
		)
	}
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	handlers := NewHandlers(s.services, s.logger)

	// Health check
	s.router.GET("/health", handlers.HealthCheck)

	// API routes, all tenant-scoped behind JWT auth
	api := s.router.Group("/api")
	api.Use(AuthMiddleware(s.config.JWTSecret))
	{
		transfers := api.Group("/transfers")
		{
			transfers.POST("", handlers.CreateTransfer)
			transfers.GET("", handlers.ListTransfers)
			transfers.GET("/:id", handlers.GetTransfer)
			transfers.POST("/:id/approve", handlers.ApproveTransfer)
			transfers.POST("/:id/reject", handlers.RejectTransfer)
			transfers.POST("/:id/ship", handlers.ShipTransfer)
			transfers.POST("/:id/complete", handlers.CompleteTransfer)
			transfers.POST("/:id/cancel", handlers.CancelTransfer)
		}

		approvals := api.Group("/approval-requests")
		{
			approvals.POST("", handlers.CreateApprovalRequest)
			approvals.GET("/pending", handlers.ListPendingApprovals)
			approvals.GET("/:id", handlers.GetApprovalRequest)
			approvals.POST("/:id/decision", handlers.SubmitDecision)
			approvals.POST("/:id/cancel", handlers.CancelApprovalRequest)
		}

		rules := api.Group("/approval-rules")
		{
			rules.POST("", handlers.CreateApprovalRule)
			rules.GET("", handlers.ListApprovalRules)
			rules.GET("/:id", handlers.GetApprovalRule)
			rules.PUT("/:id", handlers.UpdateApprovalRule)
			rules.DELETE("/:id", handlers.DeactivateApprovalRule)
		}

		inventory := api.Group("/inventory")
		{
			inventory.GET("", handlers.ListInventory)
			inventory.POST("", handlers.UpsertInventory)
			inventory.POST("/adjust", handlers.AdjustInventory)
		}

		stores := api.Group("/stores")
		{
			stores.POST("", handlers.CreateStore)
			stores.GET("", handlers.ListStores)
			stores.GET("/:id", handlers.GetStore)
			stores.PUT("/:id", handlers.UpdateStore)
		}

		products := api.Group("/products")
		{
			products.POST("", handlers.CreateProduct)
			products.GET("", handlers.ListProducts)
			products.GET("/:id", handlers.GetProduct)
			products.PUT("/:id", handlers.UpdateProduct)
		}

		sales := api.Group("/sales")
		{
			sales.POST("", handlers.CreateSale)
			sales.GET("/:id", handlers.GetSale)
			sales.POST("/:id/complete", handlers.CompleteSale)
			sales.POST("/:id/cancel", handlers.CancelSale)
		}

		reports := api.Group("/reports")
		{
			reports.GET("/inventory/export", handlers.ExportInventory)
			reports.GET("/transfers/export", handlers.ExportTransfers)
		}

		api.GET("/audit-logs", handlers.ListAuditLogs)
	}
}

// Start starts the HTTP server
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	s.logger.Info("Starting HTTP server", "address", addr)

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("HTTP server shutdown requested")
		return s.Stop()
	case err := <-errCh:
		s.logger.Error("HTTP server error", "error", err)
		return err
	}
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}

	s.logger.Info("Stopping HTTP server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("HTTP server shutdown error", "error", err)
		return err
	}

	s.logger.Info("HTTP server stopped")
	return nil
}

// Router returns the underlying gin router (for testing)
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Address returns the server address
func (s *Server) Address() string {
	return fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
}
