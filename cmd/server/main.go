// Package main is the entry point for the LMIS facility API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lmis/internal/domain/auth"
	"lmis/internal/domain/catalogs/product"
	"lmis/internal/domain/catalogs/program"
	"lmis/internal/domain/requisition"
	"lmis/internal/domain/stock"
	"lmis/internal/domain/sync"
	v1 "lmis/internal/infrastructure/http/v1"
	"lmis/internal/infrastructure/storage/postgres"
	"lmis/internal/infrastructure/storage/postgres/auth_repo"
	"lmis/internal/infrastructure/storage/postgres/catalog_repo"
	"lmis/internal/infrastructure/storage/postgres/requisition_repo"
	"lmis/internal/infrastructure/storage/postgres/stock_repo"
	"lmis/internal/infrastructure/upstream"
	"lmis/pkg/logger"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       getEnv("LOG_LEVEL", "info"),
		Development: getEnv("APP_ENV", "development") == "development",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	log.Info("starting lmis server")

	// --- Database ---
	poolCfg := postgres.DefaultPoolConfig(mustEnv("DATABASE_URL"))
	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("database connection established")

	txManager := postgres.NewTxManager(pool)

	// --- Audit trail ---
	trail, err := postgres.NewAuditTrail(txManager)
	if err != nil {
		log.Fatalw("failed to initialize audit trail", "error", err)
	}

	// --- Repositories ---
	productRepo := catalog_repo.NewProductRepo(txManager)
	programRepo := catalog_repo.NewProgramRepo(txManager)
	stockRepo := stock_repo.NewStockRepo(txManager)
	formRepo := requisition_repo.NewFormRepo(txManager)
	userRepo := auth_repo.NewUserRepo(txManager)

	// --- Services ---
	productService := product.NewService(productRepo)
	programService := program.NewService(programRepo)

	classifier := stock.NewClassifier(formRepo)
	stockService := stock.NewService(stockRepo, txManager, classifier)

	requisitionService := requisition.NewService(
		formRepo,
		programService,
		productService,
		stockService,
		txManager,
		trail,
	)

	// --- Auth ---
	jwtSecret := getEnv("JWT_SECRET", "your-secret-key-change-in-production")
	jwtService := auth.NewJWTService(auth.DefaultJWTConfig(jwtSecret))
	authService := auth.NewService(userRepo, jwtService)

	// --- Sync ---
	codec := sync.NewCodec(programService, productService)
	transport := upstream.NewClient(upstream.DefaultConfig(
		getEnv("UPSTREAM_URL", "http://localhost:9090"),
		getEnv("UPSTREAM_TOKEN", ""),
	))
	syncManager := sync.NewUpManager(requisitionService, codec, transport)

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Pool:         pool,
		Logger:       log,
		JWTValidator: jwtService,
		AuthService:  authService,
		Products:     productService,
		Programs:     programService,
		Stocks:       stockService,
		StockRepo:    stockRepo,
		Requisitions: requisitionService,
		SyncUp:       syncManager,
	})

	// --- HTTP Server ---
	port := getEnv("APP_PORT", "8080")
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "port", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func mustEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		fmt.Printf("required environment variable %s not set\n", key)
		os.Exit(1)
	}
	return value
}
