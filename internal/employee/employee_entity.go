package employee

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Employee struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Code          string          `gorm:"type:varchar(32);not null;uniqueIndex:uq_employee_code"`
	Identifier    string          `gorm:"type:varchar(255);not null;uniqueIndex:uq_employee_identifier"`
	Name          string          `gorm:"type:varchar(255);not null"`
	Password      string          `gorm:"type:varchar(255);not null"`
	Role          string          `gorm:"type:varchar(20);not null;default:employee"`
	MonthlySalary decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (Employee) TableName() string {
	return "employees"
}

func (e Employee) IsAdmin() bool {
	return e.Role == "admin"
}
