package employee

import (
	"go-payroll/internal/middleware"
	"go-payroll/internal/rbac"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts /employees. authn is the configured authentication
// middleware.
func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	authn gin.HandlerFunc,
	rbacService rbac.Service,
) {
	employees := r.Group("/employees")
	employees.Use(authn)
	{
		employees.GET("",
			middleware.RateLimitByUser(3, 10),
			middleware.RequirePermission(rbacService, rbac.ResourceEmployee, ""),
			handler.GetAll,
		)

		employees.GET("/options",
			middleware.RateLimitByUser(5, 20),
			middleware.RequirePermission(rbacService, rbac.ResourceEmployee, ""),
			handler.GetOptions,
		)

		employees.GET("/:id",
			middleware.RateLimitByUser(3, 10),
			middleware.RequirePermission(rbacService, rbac.ResourceEmployee, rbac.ActionReadSelf),
			handler.GetByRef,
		)

		employees.POST("",
			middleware.RateLimitByUser(1, 5),
			middleware.RequirePermission(rbacService, rbac.ResourceEmployee, ""),
			handler.Create,
		)

		employees.PUT("/:id",
			middleware.RateLimitByUser(1, 5),
			middleware.RequirePermission(rbacService, rbac.ResourceEmployee, ""),
			handler.Update,
		)

		employees.DELETE("/:id",
			middleware.RateLimitByUser(0.5, 2),
			middleware.RequirePermission(rbacService, rbac.ResourceEmployee, ""),
			handler.Delete,
		)
	}
}
