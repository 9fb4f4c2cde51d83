package attendance_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"go-payroll/internal/attendance"
	attendanceerrors "go-payroll/internal/attendance/errors"
	attendanceMock "go-payroll/internal/attendance/mock"
	"go-payroll/internal/employee"
	employeeerrors "go-payroll/internal/employee/errors"
	employeeMock "go-payroll/internal/employee/mock"
	"go-payroll/internal/metrics"
	"go-payroll/internal/shared/apperror"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/mock/gomock"
	"gorm.io/gorm"
)

type serviceDeps struct {
	service   attendance.Service
	repo      *attendanceMock.MockRepository
	employees *employeeMock.MockRepository
	metrics   *metrics.Metrics
}

func setupServiceTest(t *testing.T, allowLeave bool) *serviceDeps {
	t.Helper()
	ctrl := gomock.NewController(t)

	repo := attendanceMock.NewMockRepository(ctrl)
	employees := employeeMock.NewMockRepository(ctrl)
	m := metrics.Nop()

	svc := attendance.NewService(repo, employees, m, attendance.ServiceConfig{
		Location:         time.UTC,
		AllowLeaveStatus: allowLeave,
	})
	return &serviceDeps{service: svc, repo: repo, employees: employees, metrics: m}
}

func sampleEmployee() *employee.Employee {
	return &employee.Employee{ID: uuid.New(), Code: "E1", Name: "A", Role: "employee"}
}

var admin = attendance.Actor{EmployeeID: uuid.NewString()}

func TestService_Mark(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults to present and drops time of day", func(t *testing.T) {
		deps := setupServiceTest(t, true)
		empl := sampleEmployee()

		deps.employees.EXPECT().FindByRef(ctx, "E1").Return(empl, nil)
		deps.repo.EXPECT().Upsert(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, a *attendance.Attendance) error {
			assert.Equal(t, empl.ID, a.EmployeeID)
			assert.Equal(t, time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC), a.AttendanceDate)
			assert.Equal(t, attendance.StatusPresent, a.Status)
			return nil
		})

		resp, err := deps.service.Mark(ctx, admin, attendance.MarkAttendanceRequest{
			EmployeeID: "E1",
			Date:       "2025-03-03T17:45:00Z",
		})

		require.NoError(t, err)
		assert.Equal(t, "2025-03-03", resp.AttendanceDate)
		assert.Equal(t, "present", resp.Status)
		assert.Equal(t, "E1", resp.EmployeeCode)
		assert.Equal(t, 1.0, testutil.ToFloat64(deps.metrics.AttendanceMarked.WithLabelValues("present")))
	})

	t.Run("upsert returns the existing row id", func(t *testing.T) {
		deps := setupServiceTest(t, true)
		empl := sampleEmployee()
		existingID := uuid.New()

		deps.employees.EXPECT().FindByRef(ctx, "E1").Return(empl, nil)
		deps.repo.EXPECT().Upsert(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, a *attendance.Attendance) error {
			a.ID = existingID
			return nil
		})

		resp, err := deps.service.Mark(ctx, admin, attendance.MarkAttendanceRequest{EmployeeID: "E1", Date: "2025-03-03", Status: "ABSENT"})

		require.NoError(t, err)
		assert.Equal(t, existingID.String(), resp.ID)
		assert.Equal(t, "absent", resp.Status)
	})

	t.Run("invalid date", func(t *testing.T) {
		deps := setupServiceTest(t, true)

		_, err := deps.service.Mark(ctx, admin, attendance.MarkAttendanceRequest{EmployeeID: "E1", Date: "03/03/2025"})
		assert.ErrorIs(t, err, attendanceerrors.ErrInvalidDate)
	})

	t.Run("invalid status", func(t *testing.T) {
		deps := setupServiceTest(t, true)

		_, err := deps.service.Mark(ctx, admin, attendance.MarkAttendanceRequest{EmployeeID: "E1", Date: "2025-03-03", Status: "sick"})
		assert.ErrorIs(t, err, attendanceerrors.ErrInvalidStatus)
	})

	t.Run("leave rejected when disabled", func(t *testing.T) {
		deps := setupServiceTest(t, false)

		_, err := deps.service.Mark(ctx, admin, attendance.MarkAttendanceRequest{EmployeeID: "E1", Date: "2025-03-03", Status: "leave"})
		assert.ErrorIs(t, err, attendanceerrors.ErrInvalidStatus)
	})

	t.Run("employee not found", func(t *testing.T) {
		deps := setupServiceTest(t, true)
		deps.employees.EXPECT().FindByRef(ctx, "E404").Return(nil, gorm.ErrRecordNotFound)

		_, err := deps.service.Mark(ctx, admin, attendance.MarkAttendanceRequest{EmployeeID: "E404", Date: "2025-03-03"})
		assert.ErrorIs(t, err, employeeerrors.ErrEmployeeNotFound)
	})

	t.Run("admin must name the employee", func(t *testing.T) {
		deps := setupServiceTest(t, true)

		_, err := deps.service.Mark(ctx, admin, attendance.MarkAttendanceRequest{Date: "2025-03-03"})

		var appErr *apperror.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, 400, appErr.HTTPStatus)
	})

	t.Run("self-service defaults to own record", func(t *testing.T) {
		deps := setupServiceTest(t, true)
		empl := sampleEmployee()
		self := attendance.Actor{EmployeeID: empl.ID.String(), SelfOnly: true}

		deps.employees.EXPECT().FindByRef(ctx, empl.ID.String()).Return(empl, nil)
		deps.repo.EXPECT().Upsert(ctx, gomock.Any()).Return(nil)

		_, err := deps.service.Mark(ctx, self, attendance.MarkAttendanceRequest{Date: "2025-03-03"})
		assert.NoError(t, err)
	})

	t.Run("self-service cannot mark someone else", func(t *testing.T) {
		deps := setupServiceTest(t, true)
		self := attendance.Actor{EmployeeID: uuid.NewString(), SelfOnly: true}

		deps.employees.EXPECT().FindByRef(ctx, "E1").Return(sampleEmployee(), nil)

		_, err := deps.service.Mark(ctx, self, attendance.MarkAttendanceRequest{EmployeeID: "E1", Date: "2025-03-03"})
		assert.ErrorIs(t, err, apperror.ErrForbidden)
	})

	t.Run("store failure", func(t *testing.T) {
		deps := setupServiceTest(t, true)
		deps.employees.EXPECT().FindByRef(ctx, "E1").Return(sampleEmployee(), nil)
		deps.repo.EXPECT().Upsert(ctx, gomock.Any()).Return(errors.New("connection reset"))

		_, err := deps.service.Mark(ctx, admin, attendance.MarkAttendanceRequest{EmployeeID: "E1", Date: "2025-03-03"})

		var appErr *apperror.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, 500, appErr.HTTPStatus)
	})
}

func TestService_List(t *testing.T) {
	ctx := context.Background()

	t.Run("month filter for one employee", func(t *testing.T) {
		deps := setupServiceTest(t, true)
		empl := sampleEmployee()

		deps.employees.EXPECT().FindByRef(ctx, "E1").Return(empl, nil)
		deps.repo.EXPECT().List(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, f attendance.Filter) ([]attendance.Attendance, error) {
			assert.Equal(t, empl.ID.String(), f.EmployeeID)
			require.NotNil(t, f.From)
			require.NotNil(t, f.To)
			assert.Equal(t, "2025-03-01", f.From.Format(time.DateOnly))
			assert.Equal(t, "2025-04-01", f.To.Format(time.DateOnly))
			return []attendance.Attendance{{ID: uuid.New(), EmployeeID: empl.ID, Status: "present"}}, nil
		})

		resp, err := deps.service.List(ctx, admin, attendance.ListAttendanceQuery{EmployeeID: "E1", Month: 3, Year: 2025})

		require.NoError(t, err)
		assert.Len(t, resp, 1)
	})

	t.Run("month without year", func(t *testing.T) {
		deps := setupServiceTest(t, true)

		_, err := deps.service.List(ctx, admin, attendance.ListAttendanceQuery{Month: 3})
		assert.ErrorIs(t, err, attendanceerrors.ErrInvalidPeriod)
	})

	t.Run("deleted employee yields empty set", func(t *testing.T) {
		deps := setupServiceTest(t, true)
		ref := uuid.NewString()
		deps.employees.EXPECT().FindByRef(ctx, ref).Return(nil, gorm.ErrRecordNotFound)

		resp, err := deps.service.List(ctx, admin, attendance.ListAttendanceQuery{EmployeeID: ref})

		require.NoError(t, err)
		assert.Empty(t, resp)
	})

	t.Run("self-service is scoped to own records", func(t *testing.T) {
		deps := setupServiceTest(t, true)
		empl := sampleEmployee()
		self := attendance.Actor{EmployeeID: empl.ID.String(), SelfOnly: true}

		deps.employees.EXPECT().FindByRef(ctx, empl.ID.String()).Return(empl, nil)
		deps.repo.EXPECT().List(ctx, attendance.Filter{EmployeeID: empl.ID.String()}).Return(nil, nil)

		resp, err := deps.service.List(ctx, self, attendance.ListAttendanceQuery{})

		require.NoError(t, err)
		assert.Empty(t, resp)
	})
}

func TestService_Export(t *testing.T) {
	ctx := context.Background()
	deps := setupServiceTest(t, true)

	e1, e2 := uuid.New(), uuid.New()
	day := func(d int) time.Time { return time.Date(2025, 3, d, 0, 0, 0, 0, time.UTC) }
	rows := []attendance.Attendance{
		{EmployeeID: e1, AttendanceDate: day(3), Status: "present", Employee: &attendance.EmployeeRef{ID: e1, Code: "E1", Name: "A"}},
		{EmployeeID: e1, AttendanceDate: day(4), Status: "absent", Employee: &attendance.EmployeeRef{ID: e1, Code: "E1", Name: "A"}},
		{EmployeeID: e2, AttendanceDate: day(4), Status: "leave", Employee: &attendance.EmployeeRef{ID: e2, Code: "E2", Name: "B"}},
		{EmployeeID: e1, AttendanceDate: day(5), Status: "present", Employee: &attendance.EmployeeRef{ID: e1, Code: "E1", Name: "A"}},
	}
	deps.repo.EXPECT().List(ctx, gomock.Any()).Return(rows, nil)

	payload, err := deps.service.Export(ctx, 2025, 3)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(payload))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Attendance", "Summary"}, f.GetSheetList())

	header, _ := f.GetCellValue("Attendance", "A1")
	assert.Equal(t, "Employee Code", header)
	date, _ := f.GetCellValue("Attendance", "C2")
	assert.Equal(t, "2025-03-03", date)

	summary, err := f.GetRows("Summary")
	require.NoError(t, err)
	require.Len(t, summary, 3)
	assert.Equal(t, []string{"E1", "A", "2", "1", "0"}, summary[1])
	assert.Equal(t, []string{"E2", "B", "0", "0", "1"}, summary[2])
}

func TestService_Export_InvalidMonth(t *testing.T) {
	deps := setupServiceTest(t, true)

	_, err := deps.service.Export(context.Background(), 2025, 13)
	assert.ErrorIs(t, err, attendanceerrors.ErrInvalidPeriod)
}
