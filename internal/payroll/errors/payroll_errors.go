package payrollerrors

import (
	"net/http"

	"go-payroll/internal/shared/apperror"
)

var (
	ErrInvalidPeriod = apperror.New(
		apperror.CodeInvalidInput,
		"Month must be between 1 and 12 and year must be set",
		http.StatusBadRequest,
	)
	ErrRenderFailed = apperror.New(
		apperror.CodeInternalError,
		"Failed to render payslip",
		http.StatusInternalServerError,
	)
	ErrArchiveFailed = apperror.New(
		apperror.CodeInternalError,
		"Failed to archive payslip",
		http.StatusInternalServerError,
	)
)
