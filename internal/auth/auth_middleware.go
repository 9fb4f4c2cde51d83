package auth

import (
	"go-payroll/internal/shared/apperror"
	"go-payroll/internal/shared/contextutil"
	"go-payroll/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Authenticate resolves the caller with the configured strategy and stores
// employee_id, identifier and role on the gin context and the request
// context.
func Authenticate(strategy Strategy, svc Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		creds, err := strategy.Extract(c)
		if err == nil {
			var principal Principal
			principal, err = svc.Authenticate(ctx, creds)
			if err == nil {
				c.Set(contextutil.KeyEmployeeID, principal.EmployeeID)
				c.Set(contextutil.KeyIdentifier, principal.Identifier)
				c.Set(contextutil.KeyRole, principal.Role)

				logger := contextutil.GetLogger(ctx, zap.L()).With(zap.String("employee_id", principal.EmployeeID))
				ctx = contextutil.WithEmployeeID(ctx, principal.EmployeeID)
				ctx = contextutil.WithLogger(ctx, logger)
				c.Request = c.Request.WithContext(ctx)

				c.Next()
				return
			}
		}

		httpErr := apperror.ToHTTP(err)
		contextutil.GetLogger(ctx, zap.L()).Debug("authentication failed",
			zap.String("strategy", strategy.Name()),
			zap.String("path", c.FullPath()),
			zap.Int("status", httpErr.Status),
		)
		response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
		c.Abort()
	}
}
