package middleware

import (
	"go-payroll/internal/shared/apperror"
	"go-payroll/internal/shared/contextutil"
	"go-payroll/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	ScopeAll  = "all"
	ScopeSelf = "self"

	actionManage = "manage"
)

// RBACService adalah interface lokal, dipenuhi oleh rbac.Service.
type RBACService interface {
	Enforce(role, resource, action string) (bool, error)
}

// RequirePermission allows callers holding "manage" on resource. When
// selfAction is non-empty, callers holding only selfAction pass too, with
// access_scope set to "self" so handlers restrict them to their own records.
func RequirePermission(service RBACService, resource, selfAction string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(contextutil.KeyRole)
		if role == "" {
			response.FromError(c, apperror.ErrUnauthorized)
			c.Abort()
			return
		}

		scope, err := resolveScope(service, role, resource, selfAction)
		if err != nil {
			contextutil.GetLogger(c.Request.Context(), zap.L()).Error("rbac enforce failed",
				zap.String("role", role),
				zap.String("resource", resource),
				zap.Error(err),
			)
			response.FromError(c, apperror.ErrInternal)
			c.Abort()
			return
		}
		if scope == "" {
			response.FromError(c, apperror.ErrForbidden.WithDetails(gin.H{"required": resource + ":" + actionManage}))
			c.Abort()
			return
		}

		c.Set(contextutil.KeyAccessScope, scope)
		c.Next()
	}
}

func resolveScope(service RBACService, role, resource, selfAction string) (string, error) {
	allowed, err := service.Enforce(role, resource, actionManage)
	if err != nil {
		return "", err
	}
	if allowed {
		return ScopeAll, nil
	}
	if selfAction == "" {
		return "", nil
	}

	allowed, err = service.Enforce(role, resource, selfAction)
	if err != nil {
		return "", err
	}
	if allowed {
		return ScopeSelf, nil
	}
	return "", nil
}

// SelfOnly reports whether the caller was admitted with self scope.
func SelfOnly(c *gin.Context) bool {
	return c.GetString(contextutil.KeyAccessScope) != ScopeAll
}
