package attendance

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	attendanceerrors "go-payroll/internal/attendance/errors"
	"go-payroll/internal/employee"
	employeeerrors "go-payroll/internal/employee/errors"
	"go-payroll/internal/metrics"
	"go-payroll/internal/shared/apperror"
	"go-payroll/internal/shared/contextutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ServiceConfig struct {
	Location         *time.Location
	AllowLeaveStatus bool
}

//go:generate mockgen -source=attendance_service.go -destination=mock/attendance_service_mock.go -package=mock
type Service interface {
	Mark(ctx context.Context, actor Actor, req MarkAttendanceRequest) (AttendanceResponse, error)
	List(ctx context.Context, actor Actor, q ListAttendanceQuery) ([]AttendanceResponse, error)
	Export(ctx context.Context, year, month int) ([]byte, error)
}

type service struct {
	repo      Repository
	employees employee.Repository
	metrics   *metrics.Metrics
	cfg       ServiceConfig
	logger    *zap.Logger
}

func NewService(
	repo Repository,
	employees employee.Repository,
	m *metrics.Metrics,
	cfg ServiceConfig,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("attendance.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("attendance.service")
	}
	if m == nil {
		m = metrics.Nop()
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	return &service{
		repo:      repo,
		employees: employees,
		metrics:   m,
		cfg:       cfg,
		logger:    l,
	}
}

func (s *service) Mark(ctx context.Context, actor Actor, req MarkAttendanceRequest) (AttendanceResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("mark attendance requested",
		zap.String("request_id", rid),
		zap.String("employee_ref", req.EmployeeID),
		zap.String("date", req.Date),
		zap.String("status", req.Status),
	)

	date, err := ParseDate(req.Date, s.cfg.Location)
	if err != nil {
		s.logger.Warn("mark attendance invalid date", zap.String("date", req.Date))
		return AttendanceResponse{}, err
	}

	status, err := s.normalizeStatus(req.Status)
	if err != nil {
		s.logger.Warn("mark attendance invalid status", zap.String("status", req.Status))
		return AttendanceResponse{}, err
	}

	empl, err := s.resolveEmployee(ctx, actor, req.EmployeeID)
	if err != nil {
		return AttendanceResponse{}, err
	}

	row := &Attendance{
		ID:             uuid.New(),
		EmployeeID:     empl.ID,
		AttendanceDate: date,
		Status:         status,
	}
	if err := s.repo.Upsert(ctx, row); err != nil {
		s.logger.Error("mark attendance upsert failed",
			zap.String("request_id", rid),
			zap.String("employee_id", empl.ID.String()),
			zap.Error(err),
		)
		return AttendanceResponse{}, apperror.Store(err)
	}

	s.metrics.AttendanceMarked.WithLabelValues(status).Inc()
	s.logger.Info("attendance marked",
		zap.String("request_id", rid),
		zap.String("employee_id", empl.ID.String()),
		zap.String("date", date.Format(time.DateOnly)),
		zap.String("status", status),
	)

	row.Employee = &EmployeeRef{ID: empl.ID, Code: empl.Code, Name: empl.Name}
	return mapToResponse(*row), nil
}

func (s *service) List(ctx context.Context, actor Actor, q ListAttendanceQuery) ([]AttendanceResponse, error) {
	filter := Filter{}

	if q.Month != 0 || q.Year != 0 {
		from, to, err := MonthRange(q.Year, q.Month)
		if err != nil {
			return nil, err
		}
		filter.From, filter.To = &from, &to
	}

	if actor.SelfOnly || strings.TrimSpace(q.EmployeeID) != "" {
		empl, err := s.resolveEmployee(ctx, actor, q.EmployeeID)
		if err != nil {
			// employee yang sudah dihapus tidak punya attendance lagi
			if errors.Is(err, employeeerrors.ErrEmployeeNotFound) {
				return []AttendanceResponse{}, nil
			}
			return nil, err
		}
		filter.EmployeeID = empl.ID.String()
	}

	rows, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.Error("list attendance failed", zap.Error(err))
		return nil, apperror.Store(err)
	}

	resp := make([]AttendanceResponse, len(rows))
	for i, r := range rows {
		resp[i] = mapToResponse(r)
	}
	return resp, nil
}

func (s *service) Export(ctx context.Context, year, month int) ([]byte, error) {
	from, to, err := MonthRange(year, month)
	if err != nil {
		return nil, err
	}

	rows, err := s.repo.List(ctx, Filter{From: &from, To: &to})
	if err != nil {
		s.logger.Error("export attendance list failed", zap.Error(err))
		return nil, apperror.Store(err)
	}

	buf, err := buildWorkbook(rows)
	if err != nil {
		s.logger.Error("export attendance render failed", zap.Error(err))
		return nil, apperror.Wrap(err, apperror.CodeInternalError, "Failed to render attendance export", http.StatusInternalServerError)
	}

	s.logger.Info("attendance exported",
		zap.Int("year", year),
		zap.Int("month", month),
		zap.Int("rows", len(rows)),
	)
	return buf.Bytes(), nil
}

// resolveEmployee finds the target employee. Self-only callers may only
// target themselves; an unknown ref is reported as forbidden to them.
func (s *service) resolveEmployee(ctx context.Context, actor Actor, ref string) (*employee.Employee, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		if !actor.SelfOnly {
			return nil, apperror.RequiredField("Employee ID")
		}
		ref = actor.EmployeeID
	}

	empl, err := s.employees.FindByRef(ctx, ref)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if actor.SelfOnly {
				return nil, apperror.ErrForbidden
			}
			s.logger.Warn("attendance employee not found", zap.String("employee_ref", ref))
			return nil, employeeerrors.ErrEmployeeNotFound
		}
		s.logger.Error("attendance employee lookup failed", zap.Error(err))
		return nil, apperror.Store(err)
	}

	if actor.SelfOnly && empl.ID.String() != actor.EmployeeID {
		s.logger.Warn("attendance self-service target mismatch",
			zap.String("employee_id", actor.EmployeeID),
			zap.String("target_id", empl.ID.String()),
		)
		return nil, apperror.ErrForbidden
	}
	return empl, nil
}

func (s *service) normalizeStatus(raw string) (string, error) {
	status := strings.ToLower(strings.TrimSpace(raw))
	switch status {
	case "":
		return StatusPresent, nil
	case StatusPresent, StatusAbsent:
		return status, nil
	case StatusLeave:
		if s.cfg.AllowLeaveStatus {
			return status, nil
		}
	}
	return "", attendanceerrors.ErrInvalidStatus
}

func mapToResponse(a Attendance) AttendanceResponse {
	resp := AttendanceResponse{
		ID:             a.ID.String(),
		EmployeeID:     a.EmployeeID.String(),
		AttendanceDate: a.AttendanceDate.Format(time.DateOnly),
		Status:         a.Status,
		UpdatedAt:      a.UpdatedAt.Format(time.RFC3339),
	}
	if a.Employee != nil {
		resp.EmployeeCode = a.Employee.Code
		resp.EmployeeName = a.Employee.Name
	}
	return resp
}
