package attendance

type MarkAttendanceRequest struct {
	// Kosong untuk self-service: dipakai employee_id caller
	EmployeeID string `json:"employee_id"`
	Date       string `json:"date" binding:"required"`
	Status     string `json:"status"`
}

type ListAttendanceQuery struct {
	EmployeeID string `form:"employee_id"`
	Month      int    `form:"month" binding:"omitempty,min=1,max=12"`
	Year       int    `form:"year" binding:"omitempty,min=1"`
}

type ExportQuery struct {
	Month int `form:"month" binding:"required,min=1,max=12"`
	Year  int `form:"year" binding:"required,min=1"`
}

// Actor is the authenticated caller as seen by the service.
type Actor struct {
	EmployeeID string
	SelfOnly   bool
}

type AttendanceResponse struct {
	ID             string `json:"id"`
	EmployeeID     string `json:"employee_id"`
	EmployeeCode   string `json:"employee_code,omitempty"`
	EmployeeName   string `json:"employee_name,omitempty"`
	AttendanceDate string `json:"attendance_date"`
	Status         string `json:"status"`
	UpdatedAt      string `json:"updated_at"`
}
