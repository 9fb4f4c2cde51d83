package employee

import "github.com/shopspring/decimal"

type CreateEmployeeRequest struct {
	// Kosong = digenerate dari counter (EMP-000001)
	Code          string           `json:"code" binding:"omitempty,max=32"`
	Identifier    string           `json:"identifier" binding:"required,max=255"`
	Name          string           `json:"name" binding:"required,max=255"`
	Password      string           `json:"password" binding:"required"`
	Role          string           `json:"role" binding:"omitempty,oneof=admin employee"`
	MonthlySalary *decimal.Decimal `json:"monthly_salary"`
}

// UpdateEmployeeRequest is a partial update, nil fields are left untouched.
// Role is only decoded so that an attempt to change it can be rejected.
type UpdateEmployeeRequest struct {
	Identifier    *string          `json:"identifier" binding:"omitempty,max=255"`
	Name          *string          `json:"name" binding:"omitempty,max=255"`
	Password      *string          `json:"password" binding:"omitempty,min=1"`
	Role          *string          `json:"role"`
	MonthlySalary *decimal.Decimal `json:"monthly_salary"`
}

type RegisterRequest struct {
	Identifier string `json:"identifier" binding:"required,max=255"`
	Name       string `json:"name" binding:"required,max=255"`
	Password   string `json:"password" binding:"required"`
}

type EmployeeResponse struct {
	ID            string  `json:"id"`
	Code          string  `json:"code"`
	Identifier    string  `json:"identifier"`
	Name          string  `json:"name"`
	Role          string  `json:"role"`
	MonthlySalary float64 `json:"monthly_salary"`
	CreatedAt     string  `json:"created_at"`
	UpdatedAt     string  `json:"updated_at"`
}

type EmployeeOptionResponse struct {
	ID   string `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}
