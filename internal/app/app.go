package app

import (
	"go-payroll/internal/config"
	"go-payroll/internal/metrics"
	"go-payroll/internal/middleware"
	"go-payroll/internal/shared/connection"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Infra groups the long-lived connections shared by the API process.
type Infra struct {
	DB    *gorm.DB
	Redis *redis.Client
}

// Connect opens the database and, when REDIS_ADDR is set, redis.
func Connect(cfg *config.Config) (*Infra, error) {
	db, err := connection.ConnectGORMWithRetry(cfg.DSN(), cfg.DBMaxRetries)
	if err != nil {
		return nil, err
	}
	zap.L().Info("database connection established")

	infra := &Infra{DB: db}
	if cfg.RedisAddr == "" {
		zap.L().Info("redis disabled, idempotency and option cache are off")
		return infra, nil
	}

	rdb, err := connection.ConnectRedisWithRetry(cfg.RedisAddr, cfg.DBMaxRetries)
	if err != nil {
		infra.Close()
		return nil, err
	}
	zap.L().Info("redis connection established")
	infra.Redis = rdb
	return infra, nil
}

func (i *Infra) Close() {
	if i.Redis != nil {
		_ = i.Redis.Close()
	}
	if i.DB != nil {
		if sqlDB, err := i.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}

// NewRouter builds the gin engine with the global middleware chain.
func NewRouter(cfg *config.Config, m *metrics.Metrics, logger *zap.Logger) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.ContextLogger(logger),
		middleware.Metrics(m),
		middleware.CORS(cfg.AllowedOrigins(), cfg.AuthHeader),
	)
	return r
}

// NewMetricsRegistry returns a registry with the runtime collectors and the
// application metrics registered on it.
func NewMetricsRegistry() (*prometheus.Registry, *metrics.Metrics) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg, metrics.NewMetrics(reg)
}

func BuildApp(
	router *gin.Engine,
	cfg *config.Config,
	infra *Infra,
	reg *prometheus.Registry,
	m *metrics.Metrics,
	logger *zap.Logger,
) error {
	return registerModules(router, cfg, infra.DB, infra.Redis, reg, m, logger)
}
