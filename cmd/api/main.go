package main

import (
	"context"
	"flag"
	"log"
	"time"

	"go-payroll/internal/app"
	"go-payroll/internal/auth"
	"go-payroll/internal/bootstrap"
	"go-payroll/internal/config"
	"go-payroll/internal/employee"
	"go-payroll/internal/messaging/kafka"
	"go-payroll/internal/seed"
	"go-payroll/internal/shared/apperror"
	"go-payroll/internal/shared/counter"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func main() {
	migrate := flag.Bool("migrate", true, "run AutoMigrate before serving")
	seedAdmin := flag.Bool("seed", false, "create the configured admin account if missing")
	flag.Parse()

	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := app.NewLogger(cfg)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	apperror.Init()

	infra, err := app.Connect(cfg)
	if err != nil {
		logger.Fatal("connect infrastructure failed", zap.Error(err))
	}

	if *migrate {
		if err := app.Migrate(infra.DB); err != nil {
			logger.Fatal("migrate failed", zap.Error(err))
		}
		logger.Info("migration completed")
	}

	if *seedAdmin {
		if err := runSeed(cfg, infra, logger); err != nil {
			logger.Fatal("seed failed", zap.Error(err))
		}
	}

	reg, m := app.NewMetricsRegistry()
	r := app.NewRouter(cfg, m, logger)

	// build dependency + routes
	if err := app.BuildApp(r, cfg, infra, reg, m, logger); err != nil {
		logger.Fatal("build app failed", zap.Error(err))
	}

	bootstrap.StartHTTPServer(
		r,
		bootstrap.ServerConfig{
			Port:            cfg.Port,
			ReadTimeout:     5 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		infra.Close,
	)
}

func runSeed(cfg *config.Config, infra *app.Infra, logger *zap.Logger) error {
	_, hasher, err := auth.NewCredentialScheme(cfg.PasswordHasher)
	if err != nil {
		return err
	}

	employeeRepo := employee.NewRepository(infra.DB)
	employeeService := employee.NewService(
		infra.DB,
		employeeRepo,
		counter.NewRepository(infra.DB),
		kafka.NewOutboxRepository(infra.DB),
		infra.Redis,
		employee.ServiceConfig{
			DefaultMonthlySalary: decimal.NewFromFloat(cfg.DefaultMonthlySalary),
			Hasher:               hasher,
		},
		logger,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	_, err = seed.Admin(ctx, employeeRepo, employeeService, cfg.SeedAdminIdentifier, cfg.SeedAdminPassword, logger)
	return err
}
