package events

import "time"

const PayrollPayslipRequestedTopic = "hr.payroll.payslip.requested.v1"

const PayrollPayslipRequested = "payroll.payslip.requested"

// PayrollPayslipRequestedEvent asks the consumer to render and archive one
// employee's slip. Salary is recomputed at consumption time.
type PayrollPayslipRequestedEvent struct {
	EventType   string    `json:"event_type"`
	RequestID   string    `json:"request_id,omitempty"`
	BatchID     string    `json:"batch_id"`
	EmployeeID  string    `json:"employee_id"`
	Year        int       `json:"year"`
	Month       int       `json:"month"`
	RequestedBy string    `json:"requested_by"`
	OccurredAt  time.Time `json:"occurred_at"`
}
