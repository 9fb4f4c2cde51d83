package employee

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	employeeerrors "go-payroll/internal/employee/errors"
	"go-payroll/internal/events"
	"go-payroll/internal/messaging/kafka"
	"go-payroll/internal/rbac"
	"go-payroll/internal/shared/contextutil"
	"go-payroll/internal/shared/counter"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

const (
	EmployeeOptionsKey = "employees:options"
	employeeOptionsTTL = time.Hour

	employeeCodeCounter = "employee_code"
)

// PasswordHasher prepares a secret before it is stored.
type PasswordHasher interface {
	Hash(plain string) (string, error)
}

type ServiceConfig struct {
	DefaultMonthlySalary decimal.Decimal
	Hasher               PasswordHasher
}

//go:generate mockgen -source=employee_service.go -destination=mock/employee_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, req CreateEmployeeRequest) (EmployeeResponse, error)
	Register(ctx context.Context, req RegisterRequest) (EmployeeResponse, error)
	GetAll(ctx context.Context) ([]EmployeeResponse, error)
	GetOptions(ctx context.Context) ([]EmployeeOptionResponse, error)
	GetByRef(ctx context.Context, ref string) (EmployeeResponse, error)
	Update(ctx context.Context, ref string, req UpdateEmployeeRequest) (EmployeeResponse, error)
	Delete(ctx context.Context, ref string) error
}

type service struct {
	db      *gorm.DB
	repo    Repository
	counter counter.Repository
	outbox  kafka.OutboxRepository
	rdb     *redis.Client
	sf      *singleflight.Group
	cfg     ServiceConfig
	logger  *zap.Logger
}

func NewService(
	db *gorm.DB,
	repo Repository,
	counter counter.Repository,
	outboxRepo kafka.OutboxRepository,
	rdb *redis.Client,
	cfg ServiceConfig,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("employee.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("employee.service")
	}
	if cfg.DefaultMonthlySalary.IsZero() {
		cfg.DefaultMonthlySalary = decimal.NewFromInt(30000)
	}
	return &service{
		db:      db,
		repo:    repo,
		counter: counter,
		outbox:  outboxRepo,
		rdb:     rdb,
		sf:      &singleflight.Group{},
		cfg:     cfg,
		logger:  l,
	}
}

func (s *service) Create(ctx context.Context, req CreateEmployeeRequest) (EmployeeResponse, error) {
	role := req.Role
	if role == "" {
		role = rbac.RoleEmployee
	}
	return s.create(ctx, req, role)
}

// Register is self-registration: the role is always employee.
func (s *service) Register(ctx context.Context, req RegisterRequest) (EmployeeResponse, error) {
	return s.create(ctx, CreateEmployeeRequest{
		Identifier: req.Identifier,
		Name:       req.Name,
		Password:   req.Password,
	}, rbac.RoleEmployee)
}

func (s *service) create(ctx context.Context, req CreateEmployeeRequest, role string) (EmployeeResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("create employee requested",
		zap.String("request_id", rid),
		zap.String("identifier", req.Identifier),
		zap.String("role", role),
	)

	if !rbac.ValidRole(role) {
		return EmployeeResponse{}, employeeerrors.ErrInvalidRole
	}

	salary := s.cfg.DefaultMonthlySalary
	if req.MonthlySalary != nil {
		salary = *req.MonthlySalary
	}
	if !salary.IsPositive() {
		s.logger.Warn("create employee invalid salary", zap.String("monthly_salary", salary.String()))
		return EmployeeResponse{}, employeeerrors.ErrInvalidSalary
	}

	password, err := s.hash(req.Password)
	if err != nil {
		s.logger.Error("create employee hash password failed", zap.Error(err))
		return EmployeeResponse{}, err
	}

	empl := &Employee{
		ID:            uuid.New(),
		Code:          strings.TrimSpace(req.Code),
		Identifier:    strings.TrimSpace(req.Identifier),
		Name:          strings.TrimSpace(req.Name),
		Password:      password,
		Role:          role,
		MonthlySalary: salary.Round(2),
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if empl.Code == "" {
			nextVal, err := s.counter.WithTx(tx).GetNextValue(ctx, employeeCodeCounter)
			if err != nil {
				s.logger.Error("create employee generate code failed", zap.Error(err))
				return err
			}
			empl.Code = fmt.Sprintf("EMP-%06d", nextVal)
		}

		if err := s.repo.WithTx(tx).Create(ctx, empl); err != nil {
			s.logger.Error("create employee persist failed", zap.Error(err))
			return mapRepositoryError(err)
		}

		if err := s.enqueueLifecycleEvent(ctx, tx, events.EmployeeCreated, empl); err != nil {
			s.logger.Error("create employee outbox persist failed",
				zap.String("employee_id", empl.ID.String()),
				zap.Error(err),
			)
			return err
		}
		return nil
	})
	if err != nil {
		return EmployeeResponse{}, err
	}

	s.invalidateOptions(ctx)

	s.logger.Info("create employee success",
		zap.String("request_id", rid),
		zap.String("employee_id", empl.ID.String()),
		zap.String("code", empl.Code),
	)

	return mapToResponse(*empl), nil
}

func (s *service) GetAll(ctx context.Context) ([]EmployeeResponse, error) {
	s.logger.Debug("get all employees requested")
	empls, err := s.repo.FindAll(ctx)
	if err != nil {
		s.logger.Error("get all employees failed", zap.Error(err))
		return nil, mapRepositoryError(err)
	}

	return mapToListResponse(empls), nil
}

func (s *service) GetOptions(ctx context.Context) ([]EmployeeOptionResponse, error) {
	// 1. Cek Redis
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, EmployeeOptionsKey).Result(); err == nil {
			var resp []EmployeeOptionResponse
			if json.Unmarshal([]byte(cached), &resp) == nil {
				return resp, nil
			}
		}
	}

	// 2. Singleflight supaya form admin yang dibuka bersamaan cuma sekali hit DB
	v, err, _ := s.sf.Do(EmployeeOptionsKey, func() (interface{}, error) {
		empls, err := s.repo.FindOptions(ctx)
		if err != nil {
			return nil, mapRepositoryError(err)
		}

		resp := make([]EmployeeOptionResponse, len(empls))
		for i, e := range empls {
			resp[i] = EmployeeOptionResponse{ID: e.ID.String(), Code: e.Code, Name: e.Name}
		}

		// 3. Simpan ke Redis
		if s.rdb != nil {
			if jsonData, err := json.Marshal(resp); err == nil {
				if err := s.rdb.Set(ctx, EmployeeOptionsKey, jsonData, employeeOptionsTTL).Err(); err != nil {
					s.logger.Warn("cache employee options failed", zap.Error(err))
				}
			}
		}

		return resp, nil
	})
	if err != nil {
		s.logger.Error("get employee options failed", zap.Error(err))
		return nil, err
	}

	return v.([]EmployeeOptionResponse), nil
}

func (s *service) GetByRef(ctx context.Context, ref string) (EmployeeResponse, error) {
	s.logger.Debug("get employee requested", zap.String("employee_ref", ref))
	if strings.TrimSpace(ref) == "" {
		return EmployeeResponse{}, employeeerrors.ErrEmployeeRefRequired
	}

	empl, err := s.repo.FindByRef(ctx, ref)
	if err != nil {
		s.logger.Warn("get employee failed", zap.String("employee_ref", ref), zap.Error(err))
		return EmployeeResponse{}, mapRepositoryError(err)
	}

	return mapToResponse(*empl), nil
}

func (s *service) Update(ctx context.Context, ref string, req UpdateEmployeeRequest) (EmployeeResponse, error) {
	s.logger.Debug("update employee requested", zap.String("employee_ref", ref))
	if strings.TrimSpace(ref) == "" {
		return EmployeeResponse{}, employeeerrors.ErrEmployeeRefRequired
	}
	if req.Role != nil {
		s.logger.Warn("update employee role change rejected", zap.String("employee_ref", ref))
		return EmployeeResponse{}, employeeerrors.ErrRoleImmutable
	}
	if req.MonthlySalary != nil && !req.MonthlySalary.IsPositive() {
		return EmployeeResponse{}, employeeerrors.ErrInvalidSalary
	}

	var empl *Employee
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		qtx := s.repo.WithTx(tx)

		existing, err := qtx.FindByRef(ctx, ref)
		if err != nil {
			s.logger.Warn("update employee fetch existing failed", zap.String("employee_ref", ref), zap.Error(err))
			return mapRepositoryError(err)
		}

		if req.Identifier != nil {
			existing.Identifier = strings.TrimSpace(*req.Identifier)
		}
		if req.Name != nil {
			existing.Name = strings.TrimSpace(*req.Name)
		}
		if req.MonthlySalary != nil {
			existing.MonthlySalary = req.MonthlySalary.Round(2)
		}
		if req.Password != nil {
			hashed, err := s.hash(*req.Password)
			if err != nil {
				return err
			}
			existing.Password = hashed
		}

		if err := qtx.Update(ctx, existing); err != nil {
			s.logger.Error("update employee persist failed", zap.Error(err))
			return mapRepositoryError(err)
		}
		empl = existing
		return nil
	})
	if err != nil {
		return EmployeeResponse{}, err
	}

	s.invalidateOptions(ctx)

	s.logger.Info("update employee success", zap.String("employee_id", empl.ID.String()))

	return mapToResponse(*empl), nil
}

// Delete removes the employee and all of its attendance in one transaction.
func (s *service) Delete(ctx context.Context, ref string) error {
	s.logger.Debug("delete employee requested", zap.String("employee_ref", ref))
	if strings.TrimSpace(ref) == "" {
		return employeeerrors.ErrEmployeeRefRequired
	}

	var removed int64
	var employeeID string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		qtx := s.repo.WithTx(tx)

		empl, err := qtx.FindByRef(ctx, ref)
		if err != nil {
			s.logger.Warn("delete employee lookup failed", zap.String("employee_ref", ref), zap.Error(err))
			return mapRepositoryError(err)
		}
		employeeID = empl.ID.String()

		removed, err = qtx.DeleteAttendances(ctx, employeeID)
		if err != nil {
			s.logger.Error("delete employee attendances failed", zap.Error(err))
			return mapRepositoryError(err)
		}

		if err := qtx.Delete(ctx, employeeID); err != nil {
			s.logger.Error("delete employee failed", zap.Error(err))
			return mapRepositoryError(err)
		}

		return s.enqueueLifecycleEvent(ctx, tx, events.EmployeeDeleted, empl)
	})
	if err != nil {
		return err
	}

	s.invalidateOptions(ctx)

	s.logger.Info("delete employee success",
		zap.String("employee_id", employeeID),
		zap.Int64("attendances_removed", removed),
	)
	return nil
}

func (s *service) hash(plain string) (string, error) {
	if s.cfg.Hasher == nil {
		return plain, nil
	}
	return s.cfg.Hasher.Hash(plain)
}

func (s *service) invalidateOptions(ctx context.Context) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, EmployeeOptionsKey).Err(); err != nil {
		s.logger.Error("failed to invalidate employee options cache",
			zap.Error(err),
			zap.String("key", EmployeeOptionsKey),
		)
	}
}

func mapToResponse(empl Employee) EmployeeResponse {
	return EmployeeResponse{
		ID:            empl.ID.String(),
		Code:          empl.Code,
		Identifier:    empl.Identifier,
		Name:          empl.Name,
		Role:          empl.Role,
		MonthlySalary: empl.MonthlySalary.InexactFloat64(),
		CreatedAt:     empl.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     empl.UpdatedAt.Format(time.RFC3339),
	}
}

func mapToListResponse(empls []Employee) []EmployeeResponse {
	res := make([]EmployeeResponse, len(empls))
	for i, e := range empls {
		res[i] = mapToResponse(e)
	}
	return res
}
