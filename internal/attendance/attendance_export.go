package attendance

import (
	"bytes"
	"fmt"
	"sort"
	"time"

	"github.com/xuri/excelize/v2"
)

const (
	sheetAttendance = "Attendance"
	sheetSummary    = "Summary"
)

type summaryRow struct {
	code, name             string
	present, absent, leave int
}

// buildWorkbook renders the month as two sheets: one row per attendance
// record and one summary row per employee.
func buildWorkbook(rows []Attendance) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#1F4E79"}, Pattern: 1},
		Alignment: &excelize.Alignment{Vertical: "center", Horizontal: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	if err = writeSheet(f, sheetAttendance, headerStyle,
		[]string{"Employee Code", "Employee Name", "Date", "Status"},
		map[string]float64{"A": 16, "B": 30, "C": 14, "D": 12},
		attendanceRows(rows),
	); err != nil {
		return nil, err
	}

	if err = writeSheet(f, sheetSummary, headerStyle,
		[]string{"Employee Code", "Employee Name", "Present", "Absent", "Leave"},
		map[string]float64{"A": 16, "B": 30, "C": 10, "D": 10, "E": 10},
		summaryRows(rows),
	); err != nil {
		return nil, err
	}

	if err = f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to delete default sheet: %w", err)
	}
	if idx, _ := f.GetSheetIndex(sheetAttendance); idx != -1 {
		f.SetActiveSheet(idx)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf, nil
}

func writeSheet(f *excelize.File, name string, headerStyle int, headers []string, widths map[string]float64, rows [][]any) error {
	if _, err := f.NewSheet(name); err != nil {
		return fmt.Errorf("failed to create sheet %q: %w", name, err)
	}
	if err := f.SetSheetRow(name, "A1", &headers); err != nil {
		return fmt.Errorf("failed to write headers of %q: %w", name, err)
	}

	lastCol, _ := excelize.ColumnNumberToName(len(headers))
	if err := f.SetCellStyle(name, "A1", lastCol+"1", headerStyle); err != nil {
		return fmt.Errorf("failed to style headers of %q: %w", name, err)
	}
	for col, width := range widths {
		if err := f.SetColWidth(name, col, col, width); err != nil {
			return fmt.Errorf("failed to set column width: %w", err)
		}
	}

	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2) // baris 1 = header
		if err := f.SetSheetRow(name, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d of %q: %w", i+2, name, err)
		}
	}

	if len(rows) > 0 {
		if err := f.AddTable(name, &excelize.Table{
			Range:     fmt.Sprintf("A1:%s%d", lastCol, len(rows)+1),
			Name:      "table_" + name,
			StyleName: "TableStyleMedium2",
		}); err != nil {
			return fmt.Errorf("failed to add table to %q: %w", name, err)
		}
	}
	return nil
}

func attendanceRows(rows []Attendance) [][]any {
	out := make([][]any, 0, len(rows))
	for _, a := range rows {
		code, name := employeeLabel(a)
		out = append(out, []any{code, name, a.AttendanceDate.Format(time.DateOnly), a.Status})
	}
	return out
}

func summaryRows(rows []Attendance) [][]any {
	byEmployee := make(map[string]*summaryRow)
	for _, a := range rows {
		key := a.EmployeeID.String()
		s, ok := byEmployee[key]
		if !ok {
			code, name := employeeLabel(a)
			s = &summaryRow{code: code, name: name}
			byEmployee[key] = s
		}
		switch a.Status {
		case StatusPresent:
			s.present++
		case StatusAbsent:
			s.absent++
		case StatusLeave:
			s.leave++
		}
	}

	summaries := make([]*summaryRow, 0, len(byEmployee))
	for _, s := range byEmployee {
		summaries = append(summaries, s)
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].code < summaries[j].code })

	out := make([][]any, 0, len(summaries))
	for _, s := range summaries {
		out = append(out, []any{s.code, s.name, s.present, s.absent, s.leave})
	}
	return out
}

func employeeLabel(a Attendance) (string, string) {
	if a.Employee == nil {
		return a.EmployeeID.String(), ""
	}
	return a.Employee.Code, a.Employee.Name
}
