package employeeerrors

import (
	"go-payroll/internal/shared/apperror"
	"net/http"
)

var (
	ErrEmployeeNotFound = apperror.New(
		apperror.CodeNotFound,
		"Employee not found",
		http.StatusNotFound,
	)
	ErrIdentifierAlreadyExists = apperror.New(
		apperror.CodeConflict,
		"Employee with the same identifier already exists",
		http.StatusConflict,
	)
	ErrCodeAlreadyExists = apperror.New(
		apperror.CodeConflict,
		"Employee code already exists",
		http.StatusConflict,
	)
	ErrEmployeeConflict = apperror.New(
		apperror.CodeConflict,
		"Employee conflicts with an existing record",
		http.StatusConflict,
	)
	ErrInvalidRole = apperror.New(
		apperror.CodeInvalidInput,
		"Role must be one of: admin, employee",
		http.StatusBadRequest,
	)
	ErrRoleImmutable = apperror.New(
		apperror.CodeInvalidInput,
		"Role is assigned at creation and cannot be changed",
		http.StatusBadRequest,
	)
	ErrInvalidSalary = apperror.New(
		apperror.CodeInvalidInput,
		"Monthly salary must be a positive number",
		http.StatusBadRequest,
	)
	ErrEmployeeRefRequired = apperror.New(
		apperror.CodeInvalidInput,
		"Employee id is required",
		http.StatusBadRequest,
	)
)
