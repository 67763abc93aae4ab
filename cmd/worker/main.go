// Package main is the entry point for the LMIS sync worker. It
// periodically pushes authorized requisitions to the central server so
// forms reach the upstream even when nobody triggers a manual sync.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	stdsync "sync"
	"syscall"
	"time"

	"lmis/internal/domain/audit"
	"lmis/internal/domain/catalogs/product"
	"lmis/internal/domain/catalogs/program"
	"lmis/internal/domain/requisition"
	"lmis/internal/domain/stock"
	"lmis/internal/domain/sync"
	"lmis/internal/infrastructure/storage/postgres"
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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log.Info("starting lmis sync worker")

	poolCfg := postgres.DefaultPoolConfig(mustEnv("DATABASE_URL"))
	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	txManager := postgres.NewTxManager(pool)

	productRepo := catalog_repo.NewProductRepo(txManager)
	programRepo := catalog_repo.NewProgramRepo(txManager)
	stockRepo := stock_repo.NewStockRepo(txManager)
	formRepo := requisition_repo.NewFormRepo(txManager)

	productService := product.NewService(productRepo)
	programService := program.NewService(programRepo)
	classifier := stock.NewClassifier(formRepo)
	stockService := stock.NewService(stockRepo, txManager, classifier)

	// The worker never creates forms, so it runs without an audit trail.
	requisitionService := requisition.NewService(
		formRepo,
		programService,
		productService,
		stockService,
		txManager,
		audit.NopTrail{},
	)

	codec := sync.NewCodec(programService, productService)
	transport := upstream.NewClient(upstream.DefaultConfig(
		getEnv("UPSTREAM_URL", "http://localhost:9090"),
		getEnv("UPSTREAM_TOKEN", ""),
	))
	syncManager := sync.NewUpManager(requisitionService, codec, transport)

	interval := getEnvDuration("SYNC_INTERVAL", 15*time.Minute)
	log.Infow("sync worker initialized", "interval", interval)

	var wg stdsync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		run(ctx, syncManager, interval, log)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down worker...")
	cancel()

	wg.Wait()
	log.Info("worker stopped")
}

func run(ctx context.Context, manager *sync.UpManager, interval time.Duration, log *logger.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		synced, failed, err := manager.SyncUp(ctx)
		if err != nil {
			log.Warnw("sync run finished with failures", "synced", synced, "failed", failed, "error", err)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
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

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
