package payroll

type SalaryQuery struct {
	Month int `form:"month" binding:"required,min=1,max=12"`
	Year  int `form:"year" binding:"required,min=1"`
}

type BatchRequest struct {
	Month int `json:"month" binding:"required,min=1,max=12"`
	Year  int `json:"year" binding:"required,min=1"`
}

// Actor is the authenticated caller as seen by the service.
type Actor struct {
	EmployeeID string
	SelfOnly   bool
}

type EmployeeSnapshotResponse struct {
	ID         string `json:"id"`
	Code       string `json:"code"`
	Identifier string `json:"identifier"`
	Name       string `json:"name"`
	Role       string `json:"role"`
}

// SalaryResponse keeps the camelCase keys legacy payslip clients read.
type SalaryResponse struct {
	Employee         EmployeeSnapshotResponse `json:"employee"`
	Year             int                      `json:"year"`
	Month            int                      `json:"month"`
	PresentDays      int                      `json:"presentDays"`
	TotalDaysInMonth int                      `json:"totalDaysInMonth"`
	BaseSalary       float64                  `json:"baseSalary"`
	PerDaySalary     float64                  `json:"perDaySalary"`
	CalculatedSalary float64                  `json:"calculatedSalary"`
}

type BatchResponse struct {
	BatchID  string `json:"batch_id"`
	Year     int    `json:"year"`
	Month    int    `json:"month"`
	Enqueued int    `json:"enqueued"`
}

func mapToResponse(r SalaryResult) SalaryResponse {
	return SalaryResponse{
		Employee: EmployeeSnapshotResponse{
			ID:         r.Employee.ID,
			Code:       r.Employee.Code,
			Identifier: r.Employee.Identifier,
			Name:       r.Employee.Name,
			Role:       r.Employee.Role,
		},
		Year:             r.Year,
		Month:            r.Month,
		PresentDays:      r.PresentDays,
		TotalDaysInMonth: r.TotalDaysInMonth,
		BaseSalary:       r.BaseSalary.Round(2).InexactFloat64(),
		PerDaySalary:     r.PerDaySalary.Round(2).InexactFloat64(),
		CalculatedSalary: r.CalculatedSalary.Round(2).InexactFloat64(),
	}
}
