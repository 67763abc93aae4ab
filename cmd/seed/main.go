// Package main provides a CLI tool for seeding the database with initial data.
package main

import (
	"context"
	"fmt"
	"os"

	"lmis/internal/core/apperror"
	"lmis/internal/domain/auth"
	"lmis/internal/domain/catalogs/product"
	"lmis/internal/domain/catalogs/program"
	"lmis/internal/domain/stock"
	"lmis/internal/infrastructure/storage/postgres"
	"lmis/internal/infrastructure/storage/postgres/auth_repo"
	"lmis/internal/infrastructure/storage/postgres/catalog_repo"
	"lmis/internal/infrastructure/storage/postgres/stock_repo"
	"lmis/pkg/logger"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(dbURL))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("connected to database")

	txManager := postgres.NewTxManager(pool)

	if err := seedAdminUser(ctx, txManager, log); err != nil {
		log.Fatalw("failed to seed admin user", "error", err)
	}

	if os.Getenv("SEED_DEMO_DATA") == "true" {
		if err := seedDemoData(ctx, txManager, log); err != nil {
			log.Fatalw("failed to seed demo data", "error", err)
		}
	}

	log.Info("seeding complete")
}

func seedAdminUser(ctx context.Context, txManager *postgres.TxManager, log *logger.Logger) error {
	userRepo := auth_repo.NewUserRepo(txManager)
	authService := auth.NewService(userRepo, nil)

	username := envOr("ADMIN_USERNAME", "admin")
	password := envOr("ADMIN_PASSWORD", "admin-change-me")
	facilityCode := envOr("FACILITY_CODE", "HF01")
	facilityName := envOr("FACILITY_NAME", "Demo Health Facility")

	user, err := authService.Register(ctx, username, password, facilityCode, facilityName)
	if err != nil {
		if appErr, ok := apperror.AsAppError(err); ok && appErr.Code == apperror.CodeDuplicate {
			log.Infow("admin user already exists", "username", username)
			return nil
		}
		return err
	}

	log.Infow("admin user created", "user_id", user.ID, "username", username)
	return nil
}

func seedDemoData(ctx context.Context, txManager *postgres.TxManager, log *logger.Logger) error {
	programRepo := catalog_repo.NewProgramRepo(txManager)
	productRepo := catalog_repo.NewProductRepo(txManager)
	stockRepo := stock_repo.NewStockRepo(txManager)

	programService := program.NewService(programRepo)
	productService := product.NewService(productRepo)

	programs := []*program.Program{
		newProgram("ESS_MEDS", "Essential Medicines", "", false),
		newProgram("MMIA", "Treatment Program", "", true),
		newProgram("TB_MMIA", "TB Sub-Program", "MMIA", true),
	}
	for _, p := range programs {
		if err := createIfMissing(ctx, log, "program", p.Code, func() error {
			return programService.Create(ctx, p)
		}, func() (bool, error) {
			return programRepo.ExistsByCode(ctx, p.Code)
		}); err != nil {
			return err
		}
	}

	products := []*product.Product{
		newProduct("08A01", "Paracetamol", "ESS_MEDS", "500mg", "tablet"),
		newProduct("08A02", "Amoxicillin", "ESS_MEDS", "250mg", "capsule"),
		newProduct("08K01", "First Aid Kit", "ESS_MEDS", "", ""),
		newProduct("04B03", "Isoniazid", "TB_MMIA", "300mg", "tablet"),
	}
	products[2].IsKit = true

	for _, p := range products {
		err := createIfMissing(ctx, log, "product", p.Code, func() error {
			return productService.Create(ctx, p)
		}, func() (bool, error) {
			return productRepo.ExistsByCode(ctx, p.Code)
		})
		if err != nil {
			return err
		}

		if _, err := stockRepo.GetCardByProduct(ctx, p.ID); err == nil {
			continue
		} else if !apperror.IsNotFound(err) {
			return err
		}
		card := stock.NewStockCard(p.ID, p.Code)
		if err := stockRepo.CreateCard(ctx, card); err != nil {
			return err
		}
		log.Infow("stock card created", "product_code", p.Code)
	}

	return nil
}

func createIfMissing(ctx context.Context, log *logger.Logger, kind, code string, create func() error, exists func() (bool, error)) error {
	taken, err := exists()
	if err != nil {
		return err
	}
	if taken {
		log.Infow(kind+" already exists", "code", code)
		return nil
	}
	if err := create(); err != nil {
		return err
	}
	log.Infow(kind+" created", "code", code)
	return nil
}

func newProgram(code, name, parentCode string, supportEmergency bool) *program.Program {
	p := program.New(code, name)
	p.ParentCode = parentCode
	p.SupportEmergency = supportEmergency
	return p
}

func newProduct(code, name, programCode, strength, unit string) *product.Product {
	p := product.New(code, name)
	p.ProgramCode = programCode
	p.Strength = strength
	p.Unit = unit
	return p
}

func envOr(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
