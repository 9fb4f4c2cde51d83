package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

// PerDayDivisor is fixed regardless of the month length.
const PerDayDivisor = 30

var perDayDivisor = decimal.NewFromInt(PerDayDivisor)

type EmployeeSnapshot struct {
	ID         string
	Code       string
	Identifier string
	Name       string
	Role       string
}

// SalaryResult is derived on every request and never stored.
type SalaryResult struct {
	Employee         EmployeeSnapshot
	Year             int
	Month            int
	PresentDays      int
	TotalDaysInMonth int
	BaseSalary       decimal.Decimal
	PerDaySalary     decimal.Decimal
	CalculatedSalary decimal.Decimal
}

// Calculate applies base / 30 * presentDays. Only the final amount is
// rounded (2 places, half away from zero); PerDaySalary keeps full precision
// and is rounded for display only.
func Calculate(empl EmployeeSnapshot, base decimal.Decimal, year, month, presentDays int) SalaryResult {
	perDay := base.Div(perDayDivisor)
	return SalaryResult{
		Employee:         empl,
		Year:             year,
		Month:            month,
		PresentDays:      presentDays,
		TotalDaysInMonth: DaysInMonth(year, month),
		BaseSalary:       base,
		PerDaySalary:     perDay,
		CalculatedSalary: perDay.Mul(decimal.NewFromInt(int64(presentDays))).Round(2),
	}
}

func DaysInMonth(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
