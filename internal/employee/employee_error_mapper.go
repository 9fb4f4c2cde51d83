package employee

import (
	"errors"
	"strings"

	employeeerrors "go-payroll/internal/employee/errors"
	"go-payroll/internal/shared/apperror"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return err
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return employeeerrors.ErrEmployeeNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		switch pgErr.ConstraintName {
		case "uq_employee_code":
			return employeeerrors.ErrCodeAlreadyExists
		case "uq_employee_identifier":
			return employeeerrors.ErrIdentifierAlreadyExists
		default:
			return employeeerrors.ErrEmployeeConflict
		}
	}

	errMsg := strings.ToLower(err.Error())
	if strings.Contains(errMsg, "duplicate key value") {
		switch {
		case strings.Contains(errMsg, "uq_employee_code"):
			return employeeerrors.ErrCodeAlreadyExists
		case strings.Contains(errMsg, "uq_employee_identifier"):
			return employeeerrors.ErrIdentifierAlreadyExists
		}
	}

	return apperror.Store(err)
}
