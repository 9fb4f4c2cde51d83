package app

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go-payroll/internal/config"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func testConfig() *config.Config {
	return &config.Config{
		Port:                 8080,
		AppEnv:               "test",
		AuthStrategy:         config.AuthStrategyHeader,
		AuthHeader:           "X-User-Email",
		SessionCookie:        "payroll_session",
		PasswordHasher:       config.HasherPlaintext,
		AllowLeaveStatus:     true,
		DefaultMonthlySalary: 30000,
		Timezone:             "UTC",
		CompanyName:          "Acme",
		PayslipArchiveDir:    "",
		CORSAllowedOrigins:   "http://localhost:3000",
	}
}

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	sqlDB, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{})
	require.NoError(t, err)

	cfg := testConfig()
	reg, m := NewMetricsRegistry()
	r := NewRouter(cfg, m, zap.NewNop())
	require.NoError(t, BuildApp(r, cfg, &Infra{DB: db}, reg, m, zap.NewNop()))
	return r
}

func TestBuildApp_Routes(t *testing.T) {
	r := setupRouter(t)

	t.Run("protected route requires identity", func(t *testing.T) {
		for _, path := range []string{
			"/api/v1/auth/me",
			"/api/v1/employees",
			"/api/v1/attendance",
			"/api/v1/salary/EMP-000001?month=3&year=2025",
		} {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
			assert.Equal(t, http.StatusUnauthorized, w.Code, path)
		}
	})

	t.Run("request id echoed", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
		req.Header.Set("X-Request-ID", "req-123")
		r.ServeHTTP(w, req)

		assert.Equal(t, "req-123", w.Header().Get("X-Request-ID"))
	})

	t.Run("metrics exposed", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "payroll_http_requests_total")
		assert.Contains(t, w.Body.String(), "go_goroutines")
	})

	t.Run("unknown route", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestBuildApp_InvalidConfig(t *testing.T) {
	gin.SetMode(gin.TestMode)

	sqlDB, _, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()
	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{})
	require.NoError(t, err)

	cfg := testConfig()
	cfg.PasswordHasher = "argon2"

	reg, m := NewMetricsRegistry()
	err = BuildApp(NewRouter(cfg, m, zap.NewNop()), cfg, &Infra{DB: db}, reg, m, zap.NewNop())
	assert.Error(t, err)
}
