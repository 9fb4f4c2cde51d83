//go:build integration

package attendance_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"go-payroll/internal/attendance"
	"go-payroll/internal/employee"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupPostgres(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("payroll_test"),
		postgres.WithUsername("payroll"),
		postgres.WithPassword("payroll"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgContainer.Terminate(ctx) })

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable", "TimeZone=UTC")
	require.NoError(t, err)

	db, err := gorm.Open(gormpostgres.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&employee.Employee{}, &attendance.Attendance{}))
	return db
}

func seedEmployee(t *testing.T, db *gorm.DB, code string) *employee.Employee {
	t.Helper()
	empl := &employee.Employee{
		ID:            uuid.New(),
		Code:          code,
		Identifier:    code + "@example.com",
		Name:          code,
		Password:      "secret",
		Role:          "employee",
		MonthlySalary: decimal.NewFromInt(30000),
	}
	require.NoError(t, db.Create(empl).Error)
	return empl
}

func TestRepository_Upsert_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode.")
	}
	db := setupPostgres(t)
	repo := attendance.NewRepository(db)
	ctx := context.Background()
	empl := seedEmployee(t, db, "E1")
	day := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)

	t.Run("concurrent marks keep one row per day", func(t *testing.T) {
		var wg sync.WaitGroup
		errs := make(chan error, 20)
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				status := attendance.StatusPresent
				if i%2 == 0 {
					status = attendance.StatusAbsent
				}
				errs <- repo.Upsert(ctx, &attendance.Attendance{
					ID:             uuid.New(),
					EmployeeID:     empl.ID,
					AttendanceDate: day,
					Status:         status,
				})
			}(i)
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			require.NoError(t, err)
		}

		var count int64
		require.NoError(t, db.Model(&attendance.Attendance{}).Where("employee_id = ?", empl.ID).Count(&count).Error)
		assert.Equal(t, int64(1), count)
	})

	t.Run("overwrite keeps the row id", func(t *testing.T) {
		first := &attendance.Attendance{ID: uuid.New(), EmployeeID: empl.ID, AttendanceDate: day, Status: attendance.StatusPresent}
		require.NoError(t, repo.Upsert(ctx, first))

		second := &attendance.Attendance{ID: uuid.New(), EmployeeID: empl.ID, AttendanceDate: day, Status: attendance.StatusAbsent}
		require.NoError(t, repo.Upsert(ctx, second))

		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, attendance.StatusAbsent, second.Status)
	})

	t.Run("count present days in month", func(t *testing.T) {
		other := seedEmployee(t, db, "E2")
		for d := 1; d <= 5; d++ {
			require.NoError(t, repo.Upsert(ctx, &attendance.Attendance{
				ID:             uuid.New(),
				EmployeeID:     other.ID,
				AttendanceDate: time.Date(2025, 3, d*5, 0, 0, 0, 0, time.UTC),
				Status:         attendance.StatusPresent,
			}))
		}
		require.NoError(t, repo.Upsert(ctx, &attendance.Attendance{
			ID: uuid.New(), EmployeeID: other.ID, AttendanceDate: time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC), Status: attendance.StatusPresent,
		}))

		from, to, err := attendance.MonthRange(2025, 3)
		require.NoError(t, err)
		total, err := repo.CountByStatusInRange(ctx, other.ID.String(), attendance.StatusPresent, from, to)
		require.NoError(t, err)
		assert.Equal(t, int64(5), total)

		rows, err := repo.List(ctx, attendance.Filter{EmployeeID: other.ID.String(), From: &from, To: &to})
		require.NoError(t, err)
		require.Len(t, rows, 5)
		require.NotNil(t, rows[0].Employee)
		assert.Equal(t, "E2", rows[0].Employee.Code)
		assert.Equal(t, fmt.Sprintf("2025-03-%02d", 5), rows[0].AttendanceDate.Format(time.DateOnly))
	})
}
