package middleware

import (
	"net/http"
	"sync"
	"time"

	"go-payroll/internal/shared/contextutil"
	"go-payroll/internal/shared/response"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const (
	// limiter yang tidak dipakai selama limiterIdleTTL dibuang
	limiterIdleTTL       = 10 * time.Minute
	limiterSweepInterval = time.Minute
)

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type KeyedRateLimiter struct {
	limiters  map[string]*limiterEntry
	mu        *sync.Mutex
	r         rate.Limit // jumlah request per detik
	b         int        // burst
	idleTTL   time.Duration
	lastSweep time.Time
	now       func() time.Time
}

func NewKeyedRateLimiter(r rate.Limit, b int) *KeyedRateLimiter {
	return &KeyedRateLimiter{
		limiters: make(map[string]*limiterEntry),
		mu:       &sync.Mutex{},
		r:        r,
		b:        b,
		idleTTL:  limiterIdleTTL,
		now:      time.Now,
	}
}

func (k *KeyedRateLimiter) GetLimiter(key string) *rate.Limiter {
	k.mu.Lock()
	defer k.mu.Unlock()

	now := k.now()
	if now.Sub(k.lastSweep) >= limiterSweepInterval {
		k.sweep(now)
		k.lastSweep = now
	}

	entry, exists := k.limiters[key]
	if !exists {
		entry = &limiterEntry{limiter: rate.NewLimiter(k.r, k.b)}
		k.limiters[key] = entry
	}
	entry.lastSeen = now

	return entry.limiter
}

// Len returns the number of tracked keys.
func (k *KeyedRateLimiter) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.limiters)
}

func (k *KeyedRateLimiter) sweep(now time.Time) {
	for key, entry := range k.limiters {
		if now.Sub(entry.lastSeen) > k.idleTTL {
			delete(k.limiters, key)
		}
	}
}

// RateLimit is one rate/burst pair.
type RateLimit struct {
	R rate.Limit
	B int
}

func RateLimitByIP(r rate.Limit, b int) gin.HandlerFunc {
	limiter := NewKeyedRateLimiter(r, b)
	return func(c *gin.Context) {
		if !limiter.GetLimiter(c.ClientIP()).Allow() {
			tooManyRequests(c, "Too many requests from this IP")
			return
		}
		c.Next()
	}
}

// RateLimitByUser keys on the authenticated employee. Unauthenticated
// requests pass through, Authenticate rejects them later.
func RateLimitByUser(r rate.Limit, b int) gin.HandlerFunc {
	return RateLimitByUserRole(RateLimit{R: r, B: b}, nil)
}

// RateLimitByUserRole is RateLimitByUser with a separate budget per role,
// roles missing from perRole use def.
func RateLimitByUserRole(def RateLimit, perRole map[string]RateLimit) gin.HandlerFunc {
	defLimiter := NewKeyedRateLimiter(def.R, def.B)
	roleLimiters := make(map[string]*KeyedRateLimiter, len(perRole))
	for role, l := range perRole {
		roleLimiters[role] = NewKeyedRateLimiter(l.R, l.B)
	}

	return func(c *gin.Context) {
		employeeID := c.GetString(contextutil.KeyEmployeeID)
		if employeeID == "" {
			c.Next()
			return
		}

		limiter, ok := roleLimiters[c.GetString(contextutil.KeyRole)]
		if !ok {
			limiter = defLimiter
		}
		if !limiter.GetLimiter(employeeID).Allow() {
			tooManyRequests(c, "Too many requests from this user")
			return
		}
		c.Next()
	}
}

func tooManyRequests(c *gin.Context, message string) {
	response.Error(c, http.StatusTooManyRequests, "RATE_LIMITED", message, nil)
	c.Abort()
}
