package payroll

import (
	"go-payroll/internal/middleware"
	"go-payroll/internal/rbac"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// RegisterRoutes mounts /salary and /payslips. rdb may be nil, then the
// batch endpoint runs without idempotency.
func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	authn gin.HandlerFunc,
	rbacService rbac.Service,
	rdb *redis.Client,
) {
	salary := r.Group("/salary")
	salary.Use(authn)
	{
		salary.GET("/:employeeId",
			middleware.RateLimitByUser(3, 10),
			middleware.RequirePermission(rbacService, rbac.ResourceSalary, rbac.ActionReadSelf),
			handler.GetSalary,
		)
		salary.GET("/:employeeId/pdf",
			middleware.RateLimitByUser(1, 5),
			middleware.RequirePermission(rbacService, rbac.ResourceSalary, rbac.ActionReadSelf),
			handler.GetSalaryPDF,
		)
	}

	payslips := r.Group("/payslips")
	payslips.Use(authn)
	{
		payslips.POST("/batch",
			middleware.RateLimitByUser(0.2, 2),
			middleware.RequirePermission(rbacService, rbac.ResourcePayslip, ""),
			middleware.Idempotency(rdb),
			handler.RequestBatch,
		)
	}
}
