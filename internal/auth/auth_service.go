package auth

import (
	"context"
	"errors"
	"strings"

	autherrors "go-payroll/internal/auth/errors"
	"go-payroll/internal/employee"
	"go-payroll/internal/shared/apperror"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AccountStore is the subset of employee.Repository the gate needs.
type AccountStore interface {
	FindByIdentifier(ctx context.Context, identifier string) (*employee.Employee, error)
	FindByID(ctx context.Context, id string) (*employee.Employee, error)
}

// Registrar creates self-registered accounts, satisfied by employee.Service.
type Registrar interface {
	Register(ctx context.Context, req employee.RegisterRequest) (employee.EmployeeResponse, error)
}

type Service interface {
	Login(ctx context.Context, identifier, password string) (AuthResponse, error)
	Authenticate(ctx context.Context, creds Credentials) (Principal, error)
	Me(ctx context.Context, employeeID string) (AuthResponse, error)
	Register(ctx context.Context, req employee.RegisterRequest) (AuthResponse, error)
}

type service struct {
	accounts          AccountStore
	verifier          CredentialVerifier
	registrar         Registrar
	allowRegistration bool
	logger            *zap.Logger
}

func NewService(
	accounts AccountStore,
	verifier CredentialVerifier,
	registrar Registrar,
	allowRegistration bool,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("auth.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("auth.service")
	}
	if verifier == nil {
		verifier = PlaintextVerifier{}
	}
	return &service{
		accounts:          accounts,
		verifier:          verifier,
		registrar:         registrar,
		allowRegistration: allowRegistration,
		logger:            l,
	}
}

func (s *service) Login(ctx context.Context, identifier, password string) (AuthResponse, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return AuthResponse{}, autherrors.ErrInvalidCredentials
	}

	empl, err := s.lookup(ctx, identifier)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Warn("login failed", zap.String("identifier", identifier))
			return AuthResponse{}, autherrors.ErrInvalidCredentials
		}
		return AuthResponse{}, err
	}

	if !s.verifier.Verify(empl.Password, password) {
		// pesan dan status sama dengan identifier tidak ditemukan
		s.logger.Warn("login failed", zap.String("identifier", identifier))
		return AuthResponse{}, autherrors.ErrInvalidCredentials
	}

	s.logger.Info("login success", zap.String("employee_id", empl.ID.String()))
	return toAuthResponse(empl), nil
}

func (s *service) Authenticate(ctx context.Context, creds Credentials) (Principal, error) {
	identifier := strings.TrimSpace(creds.Identifier)
	if identifier == "" || (creds.RequireSecret && creds.Password == "") {
		return Principal{}, autherrors.ErrUnauthenticated
	}

	empl, err := s.lookup(ctx, identifier)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Principal{}, autherrors.ErrUnauthenticated
		}
		return Principal{}, err
	}

	if creds.RequireSecret && !s.verifier.Verify(empl.Password, creds.Password) {
		return Principal{}, autherrors.ErrUnauthenticated
	}

	return Principal{
		EmployeeID: empl.ID.String(),
		Identifier: empl.Identifier,
		Role:       empl.Role,
	}, nil
}

func (s *service) Me(ctx context.Context, employeeID string) (AuthResponse, error) {
	if employeeID == "" {
		return AuthResponse{}, autherrors.ErrUnauthenticated
	}

	empl, err := s.accounts.FindByID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return AuthResponse{}, autherrors.ErrUnauthenticated
		}
		s.logger.Error("me lookup failed", zap.Error(err))
		return AuthResponse{}, apperror.Store(err)
	}

	return toAuthResponse(empl), nil
}

func (s *service) Register(ctx context.Context, req employee.RegisterRequest) (AuthResponse, error) {
	if !s.allowRegistration {
		return AuthResponse{}, autherrors.ErrRegistrationDisabled
	}

	resp, err := s.registrar.Register(ctx, req)
	if err != nil {
		return AuthResponse{}, err
	}

	s.logger.Info("self registration success", zap.String("employee_id", resp.ID))
	return AuthResponse{
		ID:         resp.ID,
		Code:       resp.Code,
		Identifier: resp.Identifier,
		Name:       resp.Name,
		Role:       resp.Role,
	}, nil
}

// lookup returns gorm.ErrRecordNotFound untouched and wraps anything else.
func (s *service) lookup(ctx context.Context, identifier string) (*employee.Employee, error) {
	empl, err := s.accounts.FindByIdentifier(ctx, identifier)
	if err == nil {
		return empl, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	s.logger.Error("account lookup failed", zap.Error(err))
	return nil, apperror.Store(err)
}

func toAuthResponse(empl *employee.Employee) AuthResponse {
	return AuthResponse{
		ID:         empl.ID.String(),
		Code:       empl.Code,
		Identifier: empl.Identifier,
		Name:       empl.Name,
		Role:       empl.Role,
	}
}
