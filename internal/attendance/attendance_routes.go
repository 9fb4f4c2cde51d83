package attendance

import (
	"go-payroll/internal/middleware"
	"go-payroll/internal/rbac"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, h *Handler, authn gin.HandlerFunc, rbacService rbac.Service) {
	attendances := r.Group("/attendance")
	attendances.Use(authn)
	{
		attendances.POST("",
			// admin menginput absensi satu tim sekaligus
			middleware.RateLimitByUserRole(
				middleware.RateLimit{R: 2, B: 10},
				map[string]middleware.RateLimit{rbac.RoleAdmin: {R: 20, B: 200}},
			),
			middleware.RequirePermission(rbacService, rbac.ResourceAttendance, rbac.ActionWriteSelf),
			h.Mark,
		)
		attendances.GET("",
			middleware.RateLimitByUser(3, 10),
			middleware.RequirePermission(rbacService, rbac.ResourceAttendance, rbac.ActionReadSelf),
			h.List,
		)
		attendances.GET("/export",
			middleware.RateLimitByUser(0.5, 2),
			middleware.RequirePermission(rbacService, rbac.ResourceAttendance, ""),
			h.Export,
		)
	}
}
