package app

import (
	"go-payroll/internal/attendance"
	"go-payroll/internal/employee"
	"go-payroll/internal/messaging/kafka"
	"go-payroll/internal/shared/counter"

	"gorm.io/gorm"
)

// Migrate creates or updates the tables owned by this service. Employee must
// come before Attendance so the foreign key can be created.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&employee.Employee{},
		&attendance.Attendance{},
		&counter.Counter{},
		&kafka.OutboxEvent{},
	)
}
