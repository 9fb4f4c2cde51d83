package auth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go-payroll/internal/auth"
	autherrors "go-payroll/internal/auth/errors"
	"go-payroll/internal/config"
	"go-payroll/internal/employee"
	"go-payroll/internal/shared/apperror"
	"go-payroll/internal/shared/contextutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuthService struct {
	LoginFn        func(ctx context.Context, identifier, password string) (auth.AuthResponse, error)
	AuthenticateFn func(ctx context.Context, creds auth.Credentials) (auth.Principal, error)
	MeFn           func(ctx context.Context, employeeID string) (auth.AuthResponse, error)
	RegisterFn     func(ctx context.Context, req employee.RegisterRequest) (auth.AuthResponse, error)
}

func (f *fakeAuthService) Login(ctx context.Context, identifier, password string) (auth.AuthResponse, error) {
	return f.LoginFn(ctx, identifier, password)
}
func (f *fakeAuthService) Authenticate(ctx context.Context, creds auth.Credentials) (auth.Principal, error) {
	return f.AuthenticateFn(ctx, creds)
}
func (f *fakeAuthService) Me(ctx context.Context, employeeID string) (auth.AuthResponse, error) {
	return f.MeFn(ctx, employeeID)
}
func (f *fakeAuthService) Register(ctx context.Context, req employee.RegisterRequest) (auth.AuthResponse, error) {
	return f.RegisterFn(ctx, req)
}

func init() {
	gin.SetMode(gin.TestMode)
	apperror.Init()
}

func newContext(method, target, body string) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c, w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

var cookieStrategy = auth.CookieStrategy{Cookie: "payroll_session"}

func TestAuthHandler_Login(t *testing.T) {
	t.Run("success sets session cookie", func(t *testing.T) {
		svc := &fakeAuthService{
			LoginFn: func(_ context.Context, identifier, password string) (auth.AuthResponse, error) {
				assert.Equal(t, "alice@example.com", identifier)
				assert.Equal(t, "secret", password)
				return auth.AuthResponse{ID: "e-1", Identifier: identifier, Role: "admin"}, nil
			},
		}
		h := auth.NewHandler(svc, cookieStrategy)
		c, w := newContext(http.MethodPost, "/auth/login", `{"identifier":"alice@example.com","password":"secret"}`)

		h.Login(c)

		assert.Equal(t, http.StatusOK, w.Code)
		cookies := w.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, "payroll_session", cookies[0].Name)
		assert.Equal(t, "alice@example.com", cookies[0].Value)
		assert.True(t, cookies[0].HttpOnly)
	})

	t.Run("header strategy sets no cookie", func(t *testing.T) {
		svc := &fakeAuthService{
			LoginFn: func(_ context.Context, identifier, _ string) (auth.AuthResponse, error) {
				return auth.AuthResponse{Identifier: identifier}, nil
			},
		}
		h := auth.NewHandler(svc, auth.HeaderStrategy{Header: "X-User-Email"})
		c, w := newContext(http.MethodPost, "/auth/login", `{"identifier":"a","password":"b"}`)

		h.Login(c)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Result().Cookies())
	})

	t.Run("invalid credentials", func(t *testing.T) {
		svc := &fakeAuthService{
			LoginFn: func(context.Context, string, string) (auth.AuthResponse, error) {
				return auth.AuthResponse{}, autherrors.ErrInvalidCredentials
			},
		}
		h := auth.NewHandler(svc, cookieStrategy)
		c, w := newContext(http.MethodPost, "/auth/login", `{"identifier":"a","password":"b"}`)

		h.Login(c)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, "Invalid identifier or password", body["error"].(map[string]any)["message"])
		assert.Empty(t, w.Result().Cookies())
	})

	t.Run("missing password", func(t *testing.T) {
		h := auth.NewHandler(&fakeAuthService{}, cookieStrategy)
		c, w := newContext(http.MethodPost, "/auth/login", `{"identifier":"a"}`)

		h.Login(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestAuthHandler_Logout(t *testing.T) {
	h := auth.NewHandler(&fakeAuthService{}, cookieStrategy)
	c, w := newContext(http.MethodPost, "/auth/logout", "")

	h.Logout(c)

	assert.Equal(t, http.StatusOK, w.Code)
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "", cookies[0].Value)
	assert.Less(t, cookies[0].MaxAge, 0)
}

func TestAuthHandler_Register(t *testing.T) {
	svc := &fakeAuthService{
		RegisterFn: func(_ context.Context, req employee.RegisterRequest) (auth.AuthResponse, error) {
			return auth.AuthResponse{ID: "e-2", Identifier: req.Identifier, Name: req.Name, Role: "employee"}, nil
		},
	}
	h := auth.NewHandler(svc, cookieStrategy)
	c, w := newContext(http.MethodPost, "/auth/register", `{"identifier":"bob@example.com","name":"Bob","password":"pw"}`)

	h.Register(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "employee", body["data"].(map[string]any)["role"])
}

func TestAuthHandler_Me(t *testing.T) {
	svc := &fakeAuthService{
		MeFn: func(_ context.Context, employeeID string) (auth.AuthResponse, error) {
			assert.Equal(t, "e-1", employeeID)
			return auth.AuthResponse{ID: employeeID, Name: "Alice"}, nil
		},
	}
	h := auth.NewHandler(svc, cookieStrategy)
	c, w := newContext(http.MethodGet, "/auth/me", "")
	c.Set(contextutil.KeyEmployeeID, "e-1")

	h.Me(c)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestNewStrategy(t *testing.T) {
	cfg := &config.Config{AuthStrategy: config.AuthStrategyHeader, AuthHeader: "X-User-Email"}
	s, err := auth.NewStrategy(cfg)
	require.NoError(t, err)
	assert.Equal(t, "header", s.Name())

	cfg.AuthStrategy = "jwt"
	_, err = auth.NewStrategy(cfg)
	assert.ErrorIs(t, err, autherrors.ErrUnknownStrategy)
}

func TestBodyStrategy_RestoresBody(t *testing.T) {
	c, _ := newContext(http.MethodPost, "/attendance", `{"identifier":"a","password":"b","status":"present"}`)

	creds, err := auth.BodyStrategy{}.Extract(c)

	require.NoError(t, err)
	assert.Equal(t, "a", creds.Identifier)
	assert.True(t, creds.RequireSecret)

	var rest struct {
		Status string `json:"status"`
	}
	require.NoError(t, c.ShouldBindJSON(&rest))
	assert.Equal(t, "present", rest.Status)
}

func TestAuthenticateMiddleware(t *testing.T) {
	svc := &fakeAuthService{
		AuthenticateFn: func(_ context.Context, creds auth.Credentials) (auth.Principal, error) {
			if creds.Identifier != "alice@example.com" {
				return auth.Principal{}, autherrors.ErrUnauthenticated
			}
			return auth.Principal{EmployeeID: "e-1", Identifier: creds.Identifier, Role: "employee"}, nil
		},
	}

	r := gin.New()
	r.GET("/me", auth.Authenticate(auth.HeaderStrategy{Header: "X-User-Email"}, svc), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"employee_id": c.GetString(contextutil.KeyEmployeeID),
			"role":        c.GetString(contextutil.KeyRole),
			"ctx_id":      contextutil.GetEmployeeID(c.Request.Context()),
		})
	})

	t.Run("authenticated", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("X-User-Email", "alice@example.com")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"employee_id":"e-1","role":"employee","ctx_id":"e-1"}`, w.Body.String())
	})

	t.Run("missing header", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, false, body["ok"])
	})

	t.Run("unknown identifier", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("X-User-Email", "ghost@example.com")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
