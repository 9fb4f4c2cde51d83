package payroll

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go-payroll/internal/attendance"
	"go-payroll/internal/employee"
	employeeerrors "go-payroll/internal/employee/errors"
	"go-payroll/internal/events"
	"go-payroll/internal/messaging/kafka"
	"go-payroll/internal/metrics"
	payrollerrors "go-payroll/internal/payroll/errors"
	"go-payroll/internal/shared/apperror"
	"go-payroll/internal/shared/contextutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	formatJSON = "json"
	formatPDF  = "pdf"
)

type ServiceConfig struct {
	CompanyName string
	ArchiveDir  string
}

//go:generate mockgen -source=payroll_service.go -destination=mock/payroll_service_mock.go -package=mock
type Service interface {
	Compute(ctx context.Context, actor Actor, employeeRef string, year, month int) (SalaryResult, error)
	RenderPDF(ctx context.Context, actor Actor, employeeRef string, year, month int) ([]byte, error)
	RequestBatch(ctx context.Context, requestedBy string, req BatchRequest) (BatchResponse, error)
	ArchivePayslip(ctx context.Context, employeeID string, year, month int) (string, error)
}

type service struct {
	db          *gorm.DB
	employees   employee.Repository
	attendances attendance.Repository
	outbox      kafka.OutboxRepository
	renderer    PayslipRenderer
	metrics     *metrics.Metrics
	cfg         ServiceConfig
	logger      *zap.Logger
}

func NewService(
	db *gorm.DB,
	employees employee.Repository,
	attendances attendance.Repository,
	outboxRepo kafka.OutboxRepository,
	m *metrics.Metrics,
	cfg ServiceConfig,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("payroll.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("payroll.service")
	}
	if m == nil {
		m = metrics.Nop()
	}
	return &service{
		db:          db,
		employees:   employees,
		attendances: attendances,
		outbox:      outboxRepo,
		renderer:    NewPayslipRenderer(cfg.CompanyName),
		metrics:     m,
		cfg:         cfg,
		logger:      l,
	}
}

func (s *service) Compute(ctx context.Context, actor Actor, employeeRef string, year, month int) (SalaryResult, error) {
	result, err := s.compute(ctx, actor, employeeRef, year, month)
	if err != nil {
		return SalaryResult{}, err
	}
	s.metrics.PayslipsRendered.WithLabelValues(formatJSON).Inc()
	return result, nil
}

func (s *service) RenderPDF(ctx context.Context, actor Actor, employeeRef string, year, month int) ([]byte, error) {
	result, err := s.compute(ctx, actor, employeeRef, year, month)
	if err != nil {
		return nil, err
	}

	payload, err := s.renderer.Render(result)
	if err != nil {
		s.logger.Error("render payslip failed",
			zap.String("request_id", contextutil.GetRequestID(ctx)),
			zap.String("employee_id", result.Employee.ID),
			zap.Error(err),
		)
		return nil, payrollerrors.ErrRenderFailed
	}

	s.metrics.PayslipsRendered.WithLabelValues(formatPDF).Inc()
	return payload, nil
}

// RequestBatch enqueues one payslip request per employee in a single
// transaction. The consumer renders them later.
func (s *service) RequestBatch(ctx context.Context, requestedBy string, req BatchRequest) (BatchResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	if _, _, err := attendance.MonthRange(req.Year, req.Month); err != nil {
		return BatchResponse{}, payrollerrors.ErrInvalidPeriod
	}

	batchID := uuid.NewString()
	enqueued := 0

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		empls, err := s.employees.WithTx(tx).FindAll(ctx)
		if err != nil {
			return apperror.Store(err)
		}

		outbox := s.outbox.WithTx(tx)
		for _, empl := range empls {
			payload, err := json.Marshal(events.PayrollPayslipRequestedEvent{
				EventType:   events.PayrollPayslipRequested,
				RequestID:   rid,
				BatchID:     batchID,
				EmployeeID:  empl.ID.String(),
				Year:        req.Year,
				Month:       req.Month,
				RequestedBy: requestedBy,
				OccurredAt:  time.Now().UTC(),
			})
			if err != nil {
				return err
			}

			if err := outbox.Create(ctx, kafka.OutboxEvent{
				ID:            uuid.NewString(),
				RequestID:     rid,
				AggregateType: "payslip",
				AggregateID:   empl.ID.String(),
				EventType:     events.PayrollPayslipRequested,
				Topic:         events.PayrollPayslipRequestedTopic,
				Payload:       payload,
				Status:        kafka.OutboxStatusPending,
			}); err != nil {
				return err
			}
			enqueued++
		}
		return nil
	})
	if err != nil {
		s.logger.Error("payslip batch failed",
			zap.String("request_id", rid),
			zap.String("batch_id", batchID),
			zap.Error(err),
		)
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			return BatchResponse{}, err
		}
		return BatchResponse{}, apperror.Store(err)
	}

	s.metrics.PayslipBatchRequests.Inc()
	s.logger.Info("payslip batch enqueued",
		zap.String("request_id", rid),
		zap.String("batch_id", batchID),
		zap.Int("enqueued", enqueued),
	)
	return BatchResponse{BatchID: batchID, Year: req.Year, Month: req.Month, Enqueued: enqueued}, nil
}

// ArchivePayslip renders the slip with the attendance recorded right now and
// writes <code>-<year>-<month>.pdf into the archive dir. An existing file is
// replaced atomically.
func (s *service) ArchivePayslip(ctx context.Context, employeeID string, year, month int) (string, error) {
	result, err := s.compute(ctx, Actor{}, employeeID, year, month)
	if err != nil {
		return "", err
	}

	payload, err := s.renderer.Render(result)
	if err != nil {
		s.logger.Error("render archived payslip failed", zap.String("employee_id", employeeID), zap.Error(err))
		return "", payrollerrors.ErrRenderFailed
	}

	if err := os.MkdirAll(s.cfg.ArchiveDir, 0o755); err != nil {
		s.logger.Error("create payslip archive dir failed", zap.String("dir", s.cfg.ArchiveDir), zap.Error(err))
		return "", payrollerrors.ErrArchiveFailed
	}

	path := filepath.Join(s.cfg.ArchiveDir, archiveFileName(result.Employee.Code, year, month))
	if err := writeFileAtomic(path, payload); err != nil {
		s.logger.Error("write payslip archive failed", zap.String("path", path), zap.Error(err))
		return "", payrollerrors.ErrArchiveFailed
	}

	s.metrics.PayslipsRendered.WithLabelValues(formatPDF).Inc()
	s.logger.Info("payslip archived",
		zap.String("employee_id", employeeID),
		zap.String("path", path),
	)
	return path, nil
}

func (s *service) compute(ctx context.Context, actor Actor, employeeRef string, year, month int) (SalaryResult, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("compute salary requested",
		zap.String("request_id", rid),
		zap.String("employee_ref", employeeRef),
		zap.Int("year", year),
		zap.Int("month", month),
	)

	from, to, err := attendance.MonthRange(year, month)
	if err != nil {
		s.logger.Warn("compute salary invalid period", zap.Int("year", year), zap.Int("month", month))
		return SalaryResult{}, payrollerrors.ErrInvalidPeriod
	}

	employeeRef = strings.TrimSpace(employeeRef)
	if employeeRef == "" {
		return SalaryResult{}, employeeerrors.ErrEmployeeRefRequired
	}

	empl, err := s.employees.FindByRef(ctx, employeeRef)
	if err != nil {
		return SalaryResult{}, s.mapLookupError(actor, employeeRef, err)
	}
	if actor.SelfOnly && empl.ID.String() != actor.EmployeeID {
		s.logger.Warn("compute salary self-service target mismatch",
			zap.String("employee_id", actor.EmployeeID),
			zap.String("target_id", empl.ID.String()),
		)
		return SalaryResult{}, apperror.ErrForbidden
	}

	present, err := s.attendances.CountByStatusInRange(ctx, empl.ID.String(), attendance.StatusPresent, from, to)
	if err != nil {
		s.logger.Error("count present days failed",
			zap.String("request_id", rid),
			zap.String("employee_id", empl.ID.String()),
			zap.Error(err),
		)
		return SalaryResult{}, apperror.Store(err)
	}

	result := Calculate(EmployeeSnapshot{
		ID:         empl.ID.String(),
		Code:       empl.Code,
		Identifier: empl.Identifier,
		Name:       empl.Name,
		Role:       empl.Role,
	}, empl.MonthlySalary, year, month, int(present))

	s.logger.Info("salary computed",
		zap.String("request_id", rid),
		zap.String("employee_id", empl.ID.String()),
		zap.Int("present_days", result.PresentDays),
		zap.String("calculated_salary", result.CalculatedSalary.StringFixed(2)),
	)
	return result, nil
}

func (s *service) mapLookupError(actor Actor, ref string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if actor.SelfOnly {
			return apperror.ErrForbidden
		}
		s.logger.Warn("payroll employee not found", zap.String("employee_ref", ref))
		return employeeerrors.ErrEmployeeNotFound
	}
	s.logger.Error("payroll employee lookup failed", zap.Error(err))
	return apperror.Store(err)
}

func archiveFileName(code string, year, month int) string {
	return fmt.Sprintf("%s-%d-%02d.pdf", code, year, month)
}

func writeFileAtomic(path string, payload []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".payslip-*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
