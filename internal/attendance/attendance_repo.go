package attendance

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Filter narrows List. From/To form a half-open range [From, To).
type Filter struct {
	EmployeeID string
	From       *time.Time
	To         *time.Time
}

//go:generate mockgen -source=attendance_repo.go -destination=mock/attendance_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	// Upsert inserts or overwrites the status for (employee, day) in one
	// statement. a is filled with the stored row.
	Upsert(ctx context.Context, a *Attendance) error
	List(ctx context.Context, f Filter) ([]Attendance, error)
	CountByStatusInRange(ctx context.Context, employeeID, status string, from, to time.Time) (int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{db: tx}
}

func (r *repository) Upsert(ctx context.Context, a *Attendance) error {
	return r.db.WithContext(ctx).
		Clauses(
			clause.OnConflict{
				Columns:   []clause.Column{{Name: "employee_id"}, {Name: "attendance_date"}},
				DoUpdates: clause.AssignmentColumns([]string{"status", "updated_at"}),
			},
			clause.Returning{},
		).
		Create(a).Error
}

func (r *repository) List(ctx context.Context, f Filter) ([]Attendance, error) {
	q := r.db.WithContext(ctx).
		Model(&Attendance{}).
		Preload("Employee")

	if f.EmployeeID != "" {
		q = q.Where("employee_id = ?", f.EmployeeID)
	}
	if f.From != nil {
		q = q.Where("attendance_date >= ?", f.From.Format(time.DateOnly))
	}
	if f.To != nil {
		q = q.Where("attendance_date < ?", f.To.Format(time.DateOnly))
	}

	var rows []Attendance
	err := q.Order("attendance_date ASC").Order("employee_id ASC").Find(&rows).Error
	return rows, err
}

func (r *repository) CountByStatusInRange(ctx context.Context, employeeID, status string, from, to time.Time) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&Attendance{}).
		Where("employee_id = ?", employeeID).
		Where("status = ?", status).
		Where("attendance_date >= ?", from.Format(time.DateOnly)).
		Where("attendance_date < ?", to.Format(time.DateOnly)).
		Count(&total).Error
	return total, err
}
