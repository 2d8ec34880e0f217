// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"dairyledger/internal/domain/catalogs/partner"
	"dairyledger/internal/domain/catalogs/pricing"
	"dairyledger/internal/domain/catalogs/product"
	"dairyledger/internal/domain/ledger"
	"dairyledger/internal/domain/registers/dailystock"
	"dairyledger/internal/domain/reports"
	"dairyledger/internal/infrastructure/http/v1/handlers"
	"dairyledger/internal/infrastructure/http/v1/middleware"
	"dairyledger/internal/infrastructure/storage/postgres"
	"dairyledger/internal/infrastructure/storage/postgres/catalog_repo"
	"dairyledger/internal/infrastructure/storage/postgres/ledger_repo"
	"dairyledger/internal/infrastructure/storage/postgres/legacy_repo"
	"dairyledger/internal/infrastructure/storage/postgres/register_repo"
	"dairyledger/internal/infrastructure/storage/postgres/report_repo"
	"dairyledger/pkg/logger"
	"dairyledger/pkg/numerator"
)

// RouterConfig holds router dependencies.
type RouterConfig struct {
	// Pool is the database connection pool (health checks and repos)
	Pool *pgxpool.Pool

	// TxManager wraps transactional work
	TxManager *postgres.TxManager

	// Logger for request logging
	Logger *logger.Logger

	// Numerator issues transaction numbers
	Numerator *numerator.Service
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health endpoints
	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	healthHandler.RegisterRoutes(router.Group("/health"))

	// Repositories
	productRepo := catalog_repo.NewProductRepo(cfg.TxManager)
	partnerRepo := catalog_repo.NewPartnerRepo(cfg.TxManager)
	pricingRepo := catalog_repo.NewPricingRepo(cfg.TxManager)
	transactionRepo := ledger_repo.NewTransactionRepo(cfg.TxManager)
	dailyStockRepo := register_repo.NewDailyStockRepo(cfg.TxManager)
	reportsRepo := report_repo.NewReportsRepo(cfg.TxManager)
	legacyRepo := legacy_repo.NewSalesRepo(cfg.TxManager)

	// Services
	productService := product.NewService(productRepo, cfg.TxManager)
	partnerService := partner.NewService(partnerRepo, cfg.TxManager)
	pricingService := pricing.NewService(pricingRepo, productRepo)
	stockService := dailystock.NewService(dailyStockRepo, productRepo, cfg.TxManager)
	ledgerService := ledger.NewService(transactionRepo, stockService, productRepo, partnerRepo, cfg.Numerator, cfg.TxManager)
	reportsService := reports.NewService(reportsRepo)

	base := handlers.NewBaseHandler()

	// API v1
	v1 := router.Group("/api/v1")
	{
		catalog := v1.Group("/catalog")
		handlers.NewProductHandler(base, productService).RegisterRoutes(catalog.Group("/products"))
		handlers.NewPartnerHandler(base, partnerService).RegisterRoutes(catalog.Group("/partners"))
		handlers.NewPricingHandler(base, pricingService).RegisterRoutes(catalog.Group("/prices"))

		handlers.NewTransactionHandler(base, ledgerService).RegisterRoutes(v1.Group("/ledger/transactions"))
		handlers.NewStockHandler(base, stockService).RegisterRoutes(v1.Group("/stock"))
		handlers.NewReportsHandler(base, reportsService).RegisterRoutes(v1.Group("/reports"))
		handlers.NewLegacyHandler(base, legacyRepo).RegisterRoutes(v1.Group("/legacy"))
	}

	return router
}
