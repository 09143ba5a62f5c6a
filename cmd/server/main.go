package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/qaiserfcc/cloud-pos-api/internal/application/bridge"
	"github.com/qaiserfcc/cloud-pos-api/internal/application/port"
	"github.com/qaiserfcc/cloud-pos-api/internal/application/service"
	"github.com/qaiserfcc/cloud-pos-api/internal/config"
	"github.com/qaiserfcc/cloud-pos-api/internal/domain/entity"
	"github.com/qaiserfcc/cloud-pos-api/internal/infrastructure/external"
	"github.com/qaiserfcc/cloud-pos-api/internal/infrastructure/external/lark"
	"github.com/qaiserfcc/cloud-pos-api/internal/infrastructure/persistence/repository"
	"github.com/qaiserfcc/cloud-pos-api/internal/infrastructure/persistence/sqlite"
	"github.com/qaiserfcc/cloud-pos-api/internal/infrastructure/worker"
	httpadapter "github.com/qaiserfcc/cloud-pos-api/internal/interfaces/http"
	"github.com/qaiserfcc/cloud-pos-api/pkg/database"
	"github.com/qaiserfcc/cloud-pos-api/pkg/utils"
)

func main() {
	// Local development convenience; missing .env is fine.
	_ = gotenv.Load()

	// Load configuration
	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting cloud POS API",
		zap.String("version", "1.0.0"),
		zap.Int("port", cfg.Server.Port))

	// Initialize database
	db, err := database.New(database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	// Run migrations
	migrator := database.NewMigrator(db, logger)
	if err := migrator.Apply(cfg.Database.MigrationsDir); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	// Initialize repositories
	txManager := sqlite.NewDB(db.DB, logger)
	inventoryRepo := repository.NewInventoryRepository(db.DB, logger)
	transferRepo := repository.NewTransferRepository(db.DB, logger)
	requestRepo := repository.NewApprovalRequestRepository(db.DB, logger)
	ruleRepo := repository.NewApprovalRuleRepository(db.DB, logger)
	storeRepo := repository.NewStoreRepository(db.DB, logger)
	productRepo := repository.NewProductRepository(db.DB, logger)
	userRepo := repository.NewUserRepository(db.DB, logger)
	saleRepo := repository.NewSaleRepository(db.DB, logger)
	auditRepo := repository.NewAuditLogRepository(db.DB, logger)

	// Initialize notifier
	var notifier port.ApprovalNotifier
	if cfg.Lark.Enabled {
		notifier = lark.NewNotifier(lark.Config{
			AppID:     cfg.Lark.AppID,
			AppSecret: cfg.Lark.AppSecret,
			ChatID:    cfg.Lark.ChatID,
		}, logger)
		logger.Info("Lark notifications enabled", zap.String("chat_id", cfg.Lark.ChatID))
	} else {
		notifier = external.NewNoopNotifier()
	}

	// Initialize services
	serviceLogger := &zapLoggerAdapter{logger: logger}
	registry := bridge.NewRegistry(serviceLogger)

	auditService := service.NewAuditService(auditRepo, serviceLogger)
	ruleService := service.NewApprovalRuleService(ruleRepo, auditService, serviceLogger)
	approvalService := service.NewApprovalService(
		requestRepo, userRepo, ruleService, txManager,
		registry, notifier, auditService, serviceLogger,
	)
	inventoryService := service.NewInventoryService(inventoryRepo, txManager, auditService, serviceLogger)
	transferService := service.NewTransferService(
		transferRepo, inventoryRepo, storeRepo, productRepo,
		ruleService, approvalService, txManager, auditService, serviceLogger,
	)
	storeService := service.NewStoreService(storeRepo, txManager, auditService, serviceLogger)
	productService := service.NewProductService(productRepo, txManager, auditService, serviceLogger)
	saleService := service.NewSaleService(
		saleRepo, inventoryRepo, storeRepo, productRepo,
		txManager, auditService, serviceLogger,
	)
	exportService := service.NewExportService(inventoryRepo, transferRepo, serviceLogger)

	// Route resolved transfer approvals back to the transfer lifecycle.
	registry.Register(entity.ObjectTypeInventoryTransfer, transferService)

	// Initialize background workers
	workerManager := worker.NewWorkerManager(logger)
	workerManager.Register(worker.NewExpirySweeper(worker.ExpirySweeperConfig{
		SweepInterval: cfg.Approval.ExpirySweepInterval,
	}, approvalService, logger))

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := workerManager.StartAll(rootCtx); err != nil {
		logger.Fatal("Failed to start workers", zap.Error(err))
	}
	defer workerManager.StopAll()

	// Initialize HTTP server
	server := httpadapter.NewServer(httpadapter.ServerConfig{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		JWTSecret:    cfg.Auth.JWTSecret,
	}, httpadapter.Services{
		Transfers: transferService,
		Approvals: approvalService,
		Rules:     ruleService,
		Inventory: inventoryService,
		Stores:    storeService,
		Products:  productService,
		Sales:     saleService,
		Exports:   exportService,
		Audit:     auditService,
	}, serviceLogger)

	if err := server.Start(rootCtx); err != nil {
		logger.Error("HTTP server exited with error", zap.Error(err))
	}

	logger.Info("Server exited successfully")
}

// zapLoggerAdapter adapts zap.Logger to the key-value Logger interfaces the
// application layers declare.
type zapLoggerAdapter struct {
	logger *zap.Logger
}

func (a *zapLoggerAdapter) Info(msg string, keysAndValues ...interface{}) {
	a.logger.Info(msg, convertToZapFields(keysAndValues...)...)
}

func (a *zapLoggerAdapter) Error(msg string, keysAndValues ...interface{}) {
	a.logger.Error(msg, convertToZapFields(keysAndValues...)...)
}

// convertToZapFields converts key-value pairs to zap fields.
func convertToZapFields(keysAndValues ...interface{}) []zap.Field {
	fields := make([]zap.Field, 0, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", keysAndValues[i])
		}
		fields = append(fields, zap.Any(key, keysAndValues[i+1]))
	}
	return fields
}
