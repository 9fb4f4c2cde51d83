package auth

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	autherrors "go-payroll/internal/auth/errors"
	"go-payroll/internal/config"

	"github.com/gin-gonic/gin"
)

// Strategy pulls credentials out of a request. One is chosen at startup.
type Strategy interface {
	Name() string
	Extract(c *gin.Context) (Credentials, error)
}

func NewStrategy(cfg *config.Config) (Strategy, error) {
	switch cfg.AuthStrategy {
	case config.AuthStrategyBody:
		return BodyStrategy{}, nil
	case config.AuthStrategyHeader:
		return HeaderStrategy{Header: cfg.AuthHeader}, nil
	case config.AuthStrategyCookie:
		return CookieStrategy{Cookie: cfg.SessionCookie, Secure: cfg.IsProduction()}, nil
	default:
		return nil, autherrors.ErrUnknownStrategy
	}
}

// BodyStrategy reads identifier and password from the JSON body of every
// protected request. The body is restored so handlers can bind it again.
type BodyStrategy struct{}

func (BodyStrategy) Name() string { return config.AuthStrategyBody }

func (BodyStrategy) Extract(c *gin.Context) (Credentials, error) {
	if c.Request.Body == nil {
		return Credentials{}, autherrors.ErrUnauthenticated
	}

	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return Credentials{}, autherrors.ErrUnauthenticated
	}
	c.Request.Body = io.NopCloser(bytes.NewReader(raw))

	var body struct {
		Identifier string `json:"identifier"`
		Password   string `json:"password"`
	}
	if len(raw) == 0 || json.Unmarshal(raw, &body) != nil {
		return Credentials{}, autherrors.ErrUnauthenticated
	}

	return Credentials{
		Identifier:    body.Identifier,
		Password:      body.Password,
		RequireSecret: true,
	}, nil
}

// HeaderStrategy trusts an identifier injected by an upstream proxy.
type HeaderStrategy struct {
	Header string
}

func (HeaderStrategy) Name() string { return config.AuthStrategyHeader }

func (h HeaderStrategy) Extract(c *gin.Context) (Credentials, error) {
	id := c.GetHeader(h.Header)
	if id == "" {
		return Credentials{}, autherrors.ErrUnauthenticated
	}
	return Credentials{Identifier: id}, nil
}

// CookieStrategy carries the identifier in cleartext in a session cookie
// set by Login.
type CookieStrategy struct {
	Cookie string
	Secure bool
}

func (CookieStrategy) Name() string { return config.AuthStrategyCookie }

func (s CookieStrategy) Extract(c *gin.Context) (Credentials, error) {
	id, err := c.Cookie(s.Cookie)
	if err != nil || id == "" {
		return Credentials{}, autherrors.ErrUnauthenticated
	}
	return Credentials{Identifier: id}, nil
}

func (s CookieStrategy) SetSession(c *gin.Context, identifier string) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     s.Cookie,
		Value:    identifier,
		Path:     "/",
		MaxAge:   86400, // 1 hari
		HttpOnly: true,
		Secure:   s.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s CookieStrategy) ClearSession(c *gin.Context) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     s.Cookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.Secure,
		SameSite: http.SameSiteLaxMode, // harus sama dengan saat login
	})
}
