// Package v1 provides HTTP API version 1.
package v1

import (
	"time"

	"github.com/gin-gonic/gin"

	"anchorstock/internal/domain/arrival"
	"anchorstock/internal/domain/audit"
	"anchorstock/internal/domain/catalogs/goods"
	"anchorstock/internal/domain/consumption"
	"anchorstock/internal/domain/cost"
	"anchorstock/internal/domain/stock"
	"anchorstock/internal/domain/stockout"
	"anchorstock/internal/domain/transfer"
	"anchorstock/internal/infrastructure/http/v1/handlers"
	"anchorstock/internal/infrastructure/http/v1/middleware"
	"anchorstock/internal/infrastructure/storage/postgres"
	"anchorstock/internal/infrastructure/storage/postgres/catalog_repo"
	"anchorstock/internal/infrastructure/storage/postgres/ledger_repo"
	"anchorstock/internal/infrastructure/storage/postgres/order_repo"
	"anchorstock/internal/infrastructure/storage/postgres/register_repo"
	"anchorstock/pkg/logger"
	"anchorstock/pkg/numerator"
)

// RouterConfig holds router configuration.
type RouterConfig struct {
	// Pool is the database connection pool (for health checks)
	Pool *postgres.Pool

	// TxManager runs repository operations
	TxManager *postgres.TxManager

	// Logger for request logging
	Logger *logger.Logger

	// Cache backs the stock snapshot (in-memory or Redis)
	Cache stock.SnapshotCache

	// Auditor records entity changes; nil disables auditing
	Auditor audit.Recorder

	// History serves the recorded trail; nil leaves the endpoint unregistered
	History audit.HistoryReader

	// SnapshotTTL overrides the default snapshot lifetime when positive
	SnapshotTTL time.Duration
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health endpoints
	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
	}

	// Repositories
	goodsRepo := catalog_repo.NewGoodsRepo(cfg.TxManager)
	locationRepo := catalog_repo.NewLocationRepo(cfg.TxManager)
	handlerRepo := catalog_repo.NewHandlerRepo(cfg.TxManager)
	arrivalRepo := ledger_repo.NewArrivalRepo(cfg.TxManager)
	transferRepo := ledger_repo.NewTransferRepo(cfg.TxManager)
	stockOutRepo := ledger_repo.NewStockOutRepo(cfg.TxManager)
	consumptionRepo := ledger_repo.NewConsumptionRepo(cfg.TxManager)
	profitCheck := ledger_repo.NewProfitCheck(cfg.TxManager)
	ledgerReader := ledger_repo.NewReader(cfg.TxManager)
	purchaseRepo := order_repo.NewPurchaseRepo(cfg.TxManager)
	inventoryRepo := register_repo.NewInventoryRepo(cfg.TxManager)
	settingsRepo := register_repo.NewSettingsRepo(cfg.TxManager)

	// Services. The inventory repo serves average costs to both the stock
	// snapshot and the cost service, so construction stays acyclic.
	stockService := stock.NewService(goodsRepo, locationRepo, ledgerReader, inventoryRepo, settingsRepo, cfg.Cache, cfg.SnapshotTTL)
	costService := cost.NewService(inventoryRepo, stockService, arrivalRepo)
	goodsService := goods.NewService(goodsRepo)
	arrivalService := arrival.NewService(arrivalRepo, purchaseRepo, goodsRepo, locationRepo, handlerRepo, costService, cfg.Cache, cfg.Auditor)
	transferService := transfer.NewService(transferRepo, goodsRepo, locationRepo, handlerRepo, cfg.Cache, cfg.Auditor)
	stockOutService := stockout.NewService(stockOutRepo, goodsRepo, locationRepo, cfg.Cache, cfg.Auditor)
	consumptionService := consumption.NewService(consumptionRepo, goodsRepo, locationRepo, handlerRepo, ledgerReader, costService, profitCheck, cfg.Cache, cfg.Auditor)

	// Handlers
	stockHandler := handlers.NewStockHandler(stockService)
	goodsHandler := handlers.NewGoodsHandler(goodsService)
	catalogHandler := handlers.NewCatalogHandler(locationRepo, handlerRepo)
	arrivalHandler := handlers.NewArrivalHandler(arrivalService)
	transferHandler := handlers.NewTransferHandler(transferService)
	stockOutHandler := handlers.NewStockOutHandler(stockOutService)
	consumptionHandler := handlers.NewConsumptionHandler(consumptionService)
	orderHandler := handlers.NewOrderHandler(purchaseRepo, numerator.New(cfg.Pool))

	// API v1, scoped to a base
	base := router.Group("/api/v1/bases/:baseId")
	{
		stockGroup := base.Group("/stock")
		{
			stockGroup.GET("/goods/:goodsId/locations", stockHandler.GetByLocations)
			stockGroup.GET("/goods/:goodsId/locations/:locationId", stockHandler.GetStock)
			stockGroup.POST("/goods/:goodsId/locations/:locationId/check", stockHandler.CheckSufficiency)
			stockGroup.GET("/snapshot", stockHandler.Snapshot)
			stockGroup.DELETE("/snapshot/cache", stockHandler.ClearCache)
		}

		goodsGroup := base.Group("/goods")
		{
			goodsGroup.POST("", goodsHandler.Create)
			goodsGroup.GET("", goodsHandler.List)
			goodsGroup.GET("/:goodsId", goodsHandler.Get)
			goodsGroup.PUT("/:goodsId", goodsHandler.Update)
			goodsGroup.DELETE("/:goodsId", goodsHandler.Delete)
		}

		locations := base.Group("/locations")
		{
			locations.POST("", catalogHandler.CreateLocation)
			locations.GET("", catalogHandler.ListLocations)
			locations.DELETE("/:locationId", catalogHandler.DeleteLocation)
		}

		handlerGroup := base.Group("/handlers")
		{
			handlerGroup.POST("", catalogHandler.CreateHandler)
			handlerGroup.GET("", catalogHandler.ListHandlers)
			handlerGroup.DELETE("/:handlerId", catalogHandler.DeleteHandler)
		}

		arrivals := base.Group("/arrivals")
		{
			arrivals.POST("", arrivalHandler.Create)
			arrivals.GET("", arrivalHandler.List)
			arrivals.DELETE("/:recordId", arrivalHandler.Delete)
		}

		transfers := base.Group("/transfers")
		{
			transfers.POST("", transferHandler.Create)
			transfers.GET("", transferHandler.List)
			transfers.PATCH("/:recordId/status", transferHandler.UpdateStatus)
			transfers.DELETE("/:recordId", transferHandler.Delete)
		}

		stockOuts := base.Group("/stock-outs")
		{
			stockOuts.POST("", stockOutHandler.Create)
			stockOuts.GET("", stockOutHandler.List)
			stockOuts.DELETE("/:recordId", stockOutHandler.Delete)
		}

		consumptions := base.Group("/consumptions")
		{
			consumptions.GET("/opening", consumptionHandler.GetOpening)
			consumptions.POST("", consumptionHandler.Create)
			consumptions.POST("/import", consumptionHandler.Import)
			consumptions.GET("", consumptionHandler.List)
			consumptions.PUT("/:recordId", consumptionHandler.Update)
			consumptions.DELETE("/:recordId", consumptionHandler.Delete)
		}

		orders := base.Group("/purchase-orders")
		{
			orders.POST("", orderHandler.Create)
			orders.GET("", orderHandler.List)
			orders.GET("/:orderId", orderHandler.Get)
			orders.PATCH("/:orderId/status", orderHandler.UpdateStatus)
		}

		if cfg.History != nil {
			auditHandler := handlers.NewAuditHandler(cfg.History)
			base.GET("/audit/:entityId", auditHandler.History)
		}
	}

	return router
}
