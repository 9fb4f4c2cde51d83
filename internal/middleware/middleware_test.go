package middleware_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go-payroll/internal/metrics"
	"go-payroll/internal/middleware"
	"go-payroll/internal/shared/contextutil"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redismock/v9"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeRBAC struct {
	allowed map[string]bool
	err     error
}

func (f *fakeRBAC) Enforce(role, resource, action string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.allowed[role+":"+resource+":"+action], nil
}

func withRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if role != "" {
			c.Set(contextutil.KeyRole, role)
		}
		c.Set(contextutil.KeyEmployeeID, "emp-1")
		c.Next()
	}
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	errBody, _ := body["error"].(map[string]any)
	return errBody
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(middleware.RequestID())
	r.GET("/x", func(c *gin.Context) {
		c.String(http.StatusOK, contextutil.GetRequestID(c.Request.Context()))
	})

	t.Run("keeps incoming id", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set(middleware.RequestIDHeader, "rid-1")
		r.ServeHTTP(w, req)

		assert.Equal(t, "rid-1", w.Body.String())
		assert.Equal(t, "rid-1", w.Header().Get(middleware.RequestIDHeader))
	})

	t.Run("generates id", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

		assert.NotEmpty(t, w.Body.String())
		assert.Equal(t, w.Body.String(), w.Header().Get(middleware.RequestIDHeader))
	})
}

func TestContextLogger_AttachesLogger(t *testing.T) {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.ContextLogger(zap.NewNop()))
	r.GET("/x", func(c *gin.Context) {
		logger := contextutil.GetLogger(c.Request.Context(), nil)
		assert.NotNil(t, logger)
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestRequirePermission(t *testing.T) {
	rbac := &fakeRBAC{allowed: map[string]bool{
		"admin:salary:manage":       true,
		"employee:salary:read_self": true,
	}}

	newRouter := func(role, selfAction string) *gin.Engine {
		r := gin.New()
		r.GET("/salary", withRole(role), middleware.RequirePermission(rbac, "salary", selfAction), func(c *gin.Context) {
			c.String(http.StatusOK, c.GetString(contextutil.KeyAccessScope))
		})
		return r
	}

	t.Run("admin gets all scope", func(t *testing.T) {
		w := httptest.NewRecorder()
		newRouter("admin", "read_self").ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/salary", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, middleware.ScopeAll, w.Body.String())
	})

	t.Run("employee gets self scope", func(t *testing.T) {
		w := httptest.NewRecorder()
		newRouter("employee", "read_self").ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/salary", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, middleware.ScopeSelf, w.Body.String())
	})

	t.Run("employee on admin-only route is forbidden", func(t *testing.T) {
		w := httptest.NewRecorder()
		newRouter("employee", "").ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/salary", nil))
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "FORBIDDEN", decodeError(t, w)["code"])
	})

	t.Run("missing role is unauthorized", func(t *testing.T) {
		w := httptest.NewRecorder()
		newRouter("", "read_self").ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/salary", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("enforcer error is 500", func(t *testing.T) {
		r := gin.New()
		r.GET("/salary", withRole("admin"), middleware.RequirePermission(&fakeRBAC{err: errors.New("boom")}, "salary", ""), func(c *gin.Context) {
			c.Status(http.StatusOK)
		})
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/salary", nil))
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestRateLimitByIP(t *testing.T) {
	r := gin.New()
	r.GET("/login", middleware.RateLimitByIP(0.001, 1), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w1 := httptest.NewRecorder()
	r.ServeHTTP(w1, httptest.NewRequest(http.MethodGet, "/login", nil))
	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, httptest.NewRequest(http.MethodGet, "/login", nil))

	assert.Equal(t, http.StatusOK, w1.Code)
	assert.Equal(t, http.StatusTooManyRequests, w2.Code)
	assert.Equal(t, "RATE_LIMITED", decodeError(t, w2)["code"])
}

func TestRateLimitByUser_SkipsAnonymous(t *testing.T) {
	r := gin.New()
	r.GET("/x", middleware.RateLimitByUser(0.001, 1), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

func TestIdempotency(t *testing.T) {
	const path = "/payslips/batch"
	cacheKey := middleware.IdempotencyCacheKey(path, "emp-1", "key-1")
	lockKey := cacheKey + ":lock"

	newRouter := func(handler gin.HandlerFunc) (*gin.Engine, redismock.ClientMock) {
		rdb, mock := redismock.NewClientMock()
		r := gin.New()
		r.POST(path, withRole("admin"), middleware.Idempotency(rdb), handler)
		return r, mock
	}

	t.Run("first request stores result", func(t *testing.T) {
		r, mock := newRouter(func(c *gin.Context) {
			c.JSON(http.StatusAccepted, gin.H{"ok": true})
		})

		stored, _ := json.Marshal(middleware.IdempotentResponse{Status: http.StatusAccepted, Body: []byte(`{"ok":true}`)})
		mock.ExpectGet(cacheKey).RedisNil()
		mock.ExpectSetNX(lockKey, "locked", 30*time.Second).SetVal(true)
		mock.ExpectSet(cacheKey, string(stored), 24*time.Hour).SetVal("OK")
		mock.ExpectDel(lockKey).SetVal(1)

		req := httptest.NewRequest(http.MethodPost, path, nil)
		req.Header.Set(middleware.IdempotencyHeader, "key-1")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusAccepted, w.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("repeated request is replayed", func(t *testing.T) {
		called := false
		r, mock := newRouter(func(c *gin.Context) {
			called = true
			c.Status(http.StatusAccepted)
		})

		stored, _ := json.Marshal(middleware.IdempotentResponse{Status: http.StatusAccepted, Body: []byte(`{"ok":true}`)})
		mock.ExpectGet(cacheKey).SetVal(string(stored))

		req := httptest.NewRequest(http.MethodPost, path, nil)
		req.Header.Set(middleware.IdempotencyHeader, "key-1")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.False(t, called)
		assert.Equal(t, http.StatusAccepted, w.Code)
		assert.JSONEq(t, `{"ok":true}`, w.Body.String())
		assert.Equal(t, "true", w.Header().Get("Idempotent-Replayed"))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("in-flight duplicate is rejected", func(t *testing.T) {
		r, mock := newRouter(func(c *gin.Context) {
			c.Status(http.StatusAccepted)
		})

		mock.ExpectGet(cacheKey).RedisNil()
		mock.ExpectSetNX(lockKey, "locked", 30*time.Second).SetVal(false)

		req := httptest.NewRequest(http.MethodPost, path, nil)
		req.Header.Set(middleware.IdempotencyHeader, "key-1")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "PROCESSING", decodeError(t, w)["code"])
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("failed request is not stored", func(t *testing.T) {
		r, mock := newRouter(func(c *gin.Context) {
			c.JSON(http.StatusBadRequest, gin.H{"ok": false})
		})

		mock.ExpectGet(cacheKey).RedisNil()
		mock.ExpectSetNX(lockKey, "locked", 30*time.Second).SetVal(true)
		mock.ExpectDel(lockKey).SetVal(1)

		req := httptest.NewRequest(http.MethodPost, path, nil)
		req.Header.Set(middleware.IdempotencyHeader, "key-1")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no header passes through", func(t *testing.T) {
		r, mock := newRouter(func(c *gin.Context) {
			c.Status(http.StatusAccepted)
		})

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, path, nil))

		assert.Equal(t, http.StatusAccepted, w.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestMetrics_CountsRequests(t *testing.T) {
	m := metrics.Nop()
	r := gin.New()
	r.Use(middleware.Metrics(m))
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, float64(1), testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "/health", "200")))
}

func TestRateLimitByUserRole(t *testing.T) {
	newRouter := func(role string) *gin.Engine {
		r := gin.New()
		r.POST("/attendance",
			func(c *gin.Context) {
				c.Set(contextutil.KeyEmployeeID, "emp-"+role)
				c.Set(contextutil.KeyRole, role)
				c.Next()
			},
			middleware.RateLimitByUserRole(
				middleware.RateLimit{R: 0.001, B: 2},
				map[string]middleware.RateLimit{"admin": {R: 0.001, B: 50}},
			),
			func(c *gin.Context) { c.Status(http.StatusOK) },
		)
		return r
	}

	send := func(r *gin.Engine, n int) (ok, limited int) {
		for i := 0; i < n; i++ {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/attendance", nil))
			switch w.Code {
			case http.StatusOK:
				ok++
			case http.StatusTooManyRequests:
				limited++
			}
		}
		return ok, limited
	}

	t.Run("admin marks a whole team", func(t *testing.T) {
		ok, limited := send(newRouter("admin"), 30)
		assert.Equal(t, 30, ok)
		assert.Zero(t, limited)
	})

	t.Run("employee uses default budget", func(t *testing.T) {
		ok, limited := send(newRouter("employee"), 5)
		assert.Equal(t, 2, ok)
		assert.Equal(t, 3, limited)
	})
}
