package payroll

import (
	"bytes"
	"fmt"
	"strconv"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

const payslipDisclaimer = "This salary slip is computer generated from recorded attendance and does not require a signature."

// PayslipRenderer draws a SalaryResult as an A4 PDF.
type PayslipRenderer struct {
	CompanyName string
	// Compress dimatikan di test supaya teks bisa dicari di output
	Compress bool
}

func NewPayslipRenderer(companyName string) PayslipRenderer {
	if companyName == "" {
		companyName = "Salary Slip"
	}
	return PayslipRenderer{CompanyName: companyName, Compress: true}
}

type payslipLine struct {
	label string
	value string
}

// payslipLines returns the table rows in print order.
func payslipLines(r SalaryResult) []payslipLine {
	return []payslipLine{
		{"Base Monthly Salary", formatMoney(r.BaseSalary)},
		{"Per Day Salary", formatMoney(r.PerDaySalary)},
		{"Total Days in Month", strconv.Itoa(r.TotalDaysInMonth)},
		{"Present Days", strconv.Itoa(r.PresentDays)},
		{"Calculated Net Salary", formatMoney(r.CalculatedSalary)},
	}
}

// Render returns the complete document or an error, never a partial one.
// Content that does not fit continues on a new page.
func (p PayslipRenderer) Render(r SalaryResult) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(p.Compress)
	pdf.SetTitle(fmt.Sprintf("Salary Slip %s %d-%02d", r.Employee.Code, r.Year, r.Month), true)
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 25)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFooterFunc(func() {
		pdf.SetY(-20)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.SetTextColor(110, 110, 110)
		pdf.MultiCell(0, 4, tr(payslipDisclaimer), "T", "C", false)
	})

	pdf.AddPage()
	pageW, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	contentW := pageW - left - right

	// header band
	pdf.SetFillColor(31, 78, 121)
	pdf.Rect(0, 0, pageW, 32, "F")
	pdf.SetTextColor(255, 255, 255)
	pdf.SetXY(left, 8)
	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(contentW, 9, tr(p.CompanyName), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(contentW, 7, tr("Salary Slip - "+periodLabel(r.Year, r.Month)), "", 1, "C", false, 0, "")

	// identitas karyawan
	pdf.SetTextColor(0, 0, 0)
	pdf.SetY(42)
	identity := []payslipLine{
		{"Employee Name", r.Employee.Name},
		{"Employee Code", r.Employee.Code},
		{"Identifier", r.Employee.Identifier},
		{"Role", r.Employee.Role},
		{"Pay Period", periodLabel(r.Year, r.Month)},
	}
	for _, row := range identity {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(45, 7, tr(row.label), "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(contentW-45, 7, tr(": "+row.value), "", 1, "L", false, 0, "")
	}
	pdf.Ln(6)

	// tabel komponen
	labelW := contentW * 0.65
	amountW := contentW - labelW
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(220, 230, 241)
	pdf.CellFormat(labelW, 8, "Description", "1", 0, "L", true, 0, "")
	pdf.CellFormat(amountW, 8, "Amount", "1", 1, "R", true, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	for _, row := range payslipLines(r) {
		pdf.CellFormat(labelW, 8, tr(row.label), "1", 0, "L", false, 0, "")
		pdf.CellFormat(amountW, 8, row.value, "1", 1, "R", false, 0, "")
	}
	pdf.Ln(8)

	// net payable
	pdf.SetFillColor(255, 242, 204)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(labelW, 11, "Net Payable", "1", 0, "L", true, 0, "")
	pdf.CellFormat(amountW, 11, formatMoney(r.CalculatedSalary), "1", 1, "R", true, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render payslip: %w", err)
	}
	return buf.Bytes(), nil
}

func formatMoney(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func periodLabel(year, month int) string {
	return fmt.Sprintf("%s %d", time.Month(month).String(), year)
}
