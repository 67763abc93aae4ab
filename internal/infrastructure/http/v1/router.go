// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"lmis/internal/domain/auth"
	"lmis/internal/domain/catalogs/product"
	"lmis/internal/domain/catalogs/program"
	"lmis/internal/domain/requisition"
	"lmis/internal/domain/stock"
	"lmis/internal/domain/sync"
	"lmis/internal/infrastructure/http/v1/handlers"
	"lmis/internal/infrastructure/http/v1/middleware"
	"lmis/internal/infrastructure/storage/postgres"
	"lmis/pkg/logger"
)

// RouterConfig holds router dependencies.
type RouterConfig struct {
	// Pool is the database connection pool (for health checks)
	Pool *postgres.Pool

	// Logger for request logging
	Logger *logger.Logger

	// JWTValidator for token validation
	JWTValidator middleware.JWTValidator

	// AuthService for authentication endpoints
	AuthService *auth.Service

	// Catalog services
	Products *product.Service
	Programs *program.Service

	// Stock operations
	Stocks    *stock.Service
	StockRepo stock.Repository

	// Requisition lifecycle
	Requisitions *requisition.Service

	// SyncUp pushes authorized requisitions upstream
	SyncUp *sync.UpManager
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

	base := handlers.NewBaseHandler()

	// Health endpoints (no auth required)
	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	// API v1
	apiV1 := router.Group("/api/v1")
	{
		authHandler := handlers.NewAuthHandler(base, cfg.AuthService)

		// Public auth endpoints
		publicAuth := apiV1.Group("/auth")
		publicAuth.POST("/login", authHandler.Login)
		publicAuth.POST("/register", authHandler.Register)

		// Protected endpoints
		protected := apiV1.Group("")
		protected.Use(middleware.Auth(cfg.JWTValidator))

		protected.GET("/auth/me", authHandler.Me)

		registerCatalogRoutes(protected, base, cfg)
		registerStockRoutes(protected, base, cfg)
		registerRequisitionRoutes(protected, base, cfg)
		registerSyncRoutes(protected, base, cfg)
	}

	return router
}

// registerCatalogRoutes registers catalog endpoints.
func registerCatalogRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	catalogs := rg.Group("/catalog")

	productHandler := handlers.NewProductHandler(base, cfg.Products)
	products := catalogs.Group("/products")
	{
		products.GET("", productHandler.List)
		products.GET("/reportable", productHandler.ListReportable)
		products.GET("/:code", productHandler.Get)
		products.POST("", productHandler.Create)
	}

	programHandler := handlers.NewProgramHandler(base, cfg.Programs)
	programs := catalogs.Group("/programs")
	{
		programs.GET("", programHandler.List)
		programs.GET("/:code", programHandler.Get)
		programs.GET("/:code/children", programHandler.ListChildren)
		programs.POST("", programHandler.Create)
	}
}

// registerStockRoutes registers stock card endpoints.
func registerStockRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	stockHandler := handlers.NewStockHandler(base, cfg.Stocks, cfg.StockRepo, cfg.Products)
	cards := rg.Group("/stock-cards")
	{
		cards.GET("", stockHandler.List)
		cards.POST("", stockHandler.Create)
		cards.GET("/:id", stockHandler.Get)
		cards.GET("/:id/movements", stockHandler.ListMovements)
		cards.POST("/:id/movements", stockHandler.RecordMovement)
		cards.GET("/:id/summary", stockHandler.PeriodSummary)
	}
}

// registerRequisitionRoutes registers requisition lifecycle endpoints.
func registerRequisitionRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	requisitionHandler := handlers.NewRequisitionHandler(base, cfg.Requisitions)
	forms := rg.Group("/requisitions")
	{
		forms.GET("", requisitionHandler.List)
		forms.GET("/draft", requisitionHandler.GetDraft)
		forms.POST("", requisitionHandler.CreateDraft)
		forms.POST("/emergency", requisitionHandler.CreateEmergency)
		forms.GET("/:id", requisitionHandler.Get)
		forms.POST("/:id/submit", requisitionHandler.Submit)
		forms.POST("/:id/authorize", requisitionHandler.Authorize)
		forms.DELETE("/:id", requisitionHandler.Delete)
	}
}

// registerSyncRoutes registers synchronization endpoints.
func registerSyncRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	syncHandler := handlers.NewSyncHandler(base, cfg.SyncUp)
	rg.POST("/sync/up", syncHandler.SyncUp)
}
