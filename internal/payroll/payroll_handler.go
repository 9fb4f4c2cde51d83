package payroll

import (
	"fmt"
	"net/http"

	"go-payroll/internal/middleware"
	"go-payroll/internal/shared/apperror"
	"go-payroll/internal/shared/contextutil"
	"go-payroll/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("payroll.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("payroll.handler")
	}
	return &Handler{service: service, logger: l}
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := response.FromError(c, err)
	h.logger.Warn("payroll request failed",
		zap.String("request_id", contextutil.GetRequestID(c.Request.Context())),
		zap.String("path", c.FullPath()),
		zap.Int("status", httpErr.Status),
		zap.String("code", httpErr.Code),
	)
}

func actorFrom(c *gin.Context) Actor {
	return Actor{
		EmployeeID: c.GetString(contextutil.KeyEmployeeID),
		SelfOnly:   middleware.SelfOnly(c),
	}
}

func (h *Handler) GetSalary(c *gin.Context) {
	ref := c.Param("employeeId")

	var q SalaryQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	result, err := h.service.Compute(c.Request.Context(), actorFrom(c), ref, q.Year, q.Month)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, mapToResponse(result), nil)
}

// GetSalaryPDF only writes headers once the whole document is rendered.
func (h *Handler) GetSalaryPDF(c *gin.Context) {
	ref := c.Param("employeeId")

	var q SalaryQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	payload, err := h.service.RenderPDF(c.Request.Context(), actorFrom(c), ref, q.Year, q.Month)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("salary-slip-%s-%d-%02d.pdf", ref, q.Year, q.Month)
	response.Attachment(c, "application/pdf", filename, payload)
}

func (h *Handler) RequestBatch(c *gin.Context) {
	var req BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	resp, err := h.service.RequestBatch(c.Request.Context(), c.GetString(contextutil.KeyEmployeeID), req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusAccepted, resp, nil)
}
