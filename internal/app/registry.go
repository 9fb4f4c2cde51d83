package app

import (
	"go-payroll/internal/attendance"
	"go-payroll/internal/auth"
	"go-payroll/internal/config"
	"go-payroll/internal/employee"
	"go-payroll/internal/messaging/kafka"
	"go-payroll/internal/metrics"
	"go-payroll/internal/payroll"
	"go-payroll/internal/rbac"
	"go-payroll/internal/shared/counter"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func registerModules(
	router *gin.Engine,
	cfg *config.Config,
	db *gorm.DB,
	rdb *redis.Client,
	reg *prometheus.Registry,
	m *metrics.Metrics,
	logger *zap.Logger,
) error {
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	verifier, hasher, err := auth.NewCredentialScheme(cfg.PasswordHasher)
	if err != nil {
		return err
	}

	// --- RBAC Core ---
	rbacService, err := rbac.NewService(rbac.Policy{SelfAttendance: cfg.AllowSelfAttendance})
	if err != nil {
		return err
	}

	// --- Repositories ---
	employeeRepo := employee.NewRepository(db)
	attendanceRepo := attendance.NewRepository(db)
	counterRepo := counter.NewRepository(db)
	outboxRepo := kafka.NewOutboxRepository(db)

	// --- Services ---
	employeeService := employee.NewService(db, employeeRepo, counterRepo, outboxRepo, rdb, employee.ServiceConfig{
		DefaultMonthlySalary: decimal.NewFromFloat(cfg.DefaultMonthlySalary),
		Hasher:               hasher,
	}, logger)
	authService := auth.NewService(employeeRepo, verifier, employeeService, cfg.AllowSelfRegistration, logger)
	attendanceService := attendance.NewService(attendanceRepo, employeeRepo, m, attendance.ServiceConfig{
		Location:         loc,
		AllowLeaveStatus: cfg.AllowLeaveStatus,
	}, logger)
	payrollService := payroll.NewService(db, employeeRepo, attendanceRepo, outboxRepo, m, payroll.ServiceConfig{
		CompanyName: cfg.CompanyName,
		ArchiveDir:  cfg.PayslipArchiveDir,
	}, logger)

	strategy, err := auth.NewStrategy(cfg)
	if err != nil {
		return err
	}
	authn := auth.Authenticate(strategy, authService)

	// --- Handlers ---
	authHandler := auth.NewHandler(authService, strategy, logger)
	employeeHandler := employee.NewHandler(employeeService, logger)
	attendanceHandler := attendance.NewHandler(attendanceService, logger)
	payrollHandler := payroll.NewHandler(payrollService, logger)

	// --- Routes Registration ---
	router.GET("/health", healthHandler(db))
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})))

	api := router.Group("/api/v1")
	{
		auth.RegisterRoutes(api, authHandler, authn)
		employee.RegisterRoutes(api, employeeHandler, authn, rbacService)
		attendance.RegisterRoutes(api, attendanceHandler, authn, rbacService)
		payroll.RegisterRoutes(api, payrollHandler, authn, rbacService, rdb)
	}

	return nil
}
