package seed

import (
	"context"
	"errors"
	"strings"

	"go-payroll/internal/employee"
	"go-payroll/internal/rbac"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AccountLookup is satisfied by employee.Repository.
type AccountLookup interface {
	FindByIdentifier(ctx context.Context, identifier string) (*employee.Employee, error)
}

// Creator is satisfied by employee.Service, which hashes the password and
// assigns the code.
type Creator interface {
	Create(ctx context.Context, req employee.CreateEmployeeRequest) (employee.EmployeeResponse, error)
}

// Admin makes sure an admin account with the given identifier exists.
// Existing accounts are left as they are, whatever their role. Reports
// whether a new account was created.
func Admin(
	ctx context.Context,
	accounts AccountLookup,
	creator Creator,
	identifier, password string,
	logger *zap.Logger,
) (bool, error) {
	if logger == nil {
		logger = zap.L()
	}
	log := logger.Named("seed")

	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		log.Info("admin seed skipped, identifier or password not configured")
		return false, nil
	}

	_, err := accounts.FindByIdentifier(ctx, identifier)
	if err == nil {
		log.Info("admin seed skipped, account exists", zap.String("identifier", identifier))
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}

	created, err := creator.Create(ctx, employee.CreateEmployeeRequest{
		Identifier: identifier,
		Name:       "Administrator",
		Password:   password,
		Role:       rbac.RoleAdmin,
	})
	if err != nil {
		return false, err
	}

	log.Info("admin account seeded",
		zap.String("identifier", identifier),
		zap.String("code", created.Code),
	)
	return true, nil
}
