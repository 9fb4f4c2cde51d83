package autherrors

import (
	"go-payroll/internal/shared/apperror"
	"net/http"
)

var (
	// ErrInvalidCredentials is returned for an unknown identifier and for a
	// wrong password alike.
	ErrInvalidCredentials = apperror.New(
		apperror.CodeUnauthorized,
		"Invalid identifier or password",
		http.StatusUnauthorized,
	)
	ErrUnauthenticated = apperror.New(
		apperror.CodeUnauthorized,
		"Authentication is required",
		http.StatusUnauthorized,
	)
	ErrRegistrationDisabled = apperror.New(
		apperror.CodeForbidden,
		"Self registration is disabled",
		http.StatusForbidden,
	)
	ErrUnknownStrategy = apperror.New(
		apperror.CodeInternalError,
		"Unknown authentication strategy",
		http.StatusInternalServerError,
	)
)
