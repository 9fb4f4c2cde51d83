package attendance

import (
	"strings"
	"time"

	attendanceerrors "go-payroll/internal/attendance/errors"
)

// ParseDate accepts YYYY-MM-DD or RFC3339 and drops the time of day in loc.
// The result is midnight UTC of that calendar day so the date column never
// shifts with the session timezone.
func ParseDate(raw string, loc *time.Location) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if loc == nil {
		loc = time.Local
	}

	t, err := time.ParseInLocation(time.DateOnly, raw, loc)
	if err != nil {
		t, err = time.Parse(time.RFC3339, raw)
		if err != nil {
			return time.Time{}, attendanceerrors.ErrInvalidDate
		}
		t = t.In(loc)
	}

	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
}

// MonthRange returns [first day of month, first day of next month).
func MonthRange(year, month int) (time.Time, time.Time, error) {
	if month < 1 || month > 12 || year < 1 {
		return time.Time{}, time.Time{}, attendanceerrors.ErrInvalidPeriod
	}
	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return from, from.AddDate(0, 1, 0), nil
}
