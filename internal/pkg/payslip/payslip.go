package payslip

import (
	"fmt"
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/nemopark/payroll-backend-go/internal/domain/payroll"
	"github.com/shopspring/decimal"
)

const ContentType = "application/pdf"

// Payslip is everything printed on one employee's slip.
type Payslip struct {
	Organization string
	RecordID     string
	EmployeeName string
	Position     string
	Period       payroll.PayPeriod
	Status       payroll.PayrollStatus
	HourlyRate   decimal.Decimal
	Breakdown    payroll.PayBreakdown
	Currency     string
	PaidAt       *time.Time
	GeneratedAt  time.Time
}

// Line is one label/value row of the slip body. Section rows have no value.
type Line struct {
	Label   string
	Value   string
	Section bool
	Total   bool
}

// Lines lays out the slip body in print order.
func Lines(p Payslip) []Line {
	b := p.Breakdown
	money := func(d decimal.Decimal) string {
		return d.StringFixed(payroll.CurrencyPlaces) + " " + p.Currency
	}
	hours := func(d decimal.Decimal) string {
		return d.StringFixed(payroll.CurrencyPlaces) + " h"
	}

	return []Line{
		{Label: "Time worked", Section: true},
		{Label: "Work days", Value: fmt.Sprintf("%d", b.WorkDaysCount)},
		{Label: "Hours per shift", Value: hours(b.HoursPerShift)},
		{Label: "Regular hours", Value: hours(b.RegularHours)},
		{Label: "Overtime hours", Value: hours(b.OvertimeHours)},
		{Label: "Total hours", Value: hours(b.TotalHours)},
		{Label: "Earnings", Section: true},
		{Label: "Hourly rate", Value: money(p.HourlyRate)},
		{Label: "Base salary", Value: money(b.BaseSalary)},
		{Label: "Overtime pay (x" + payroll.OvertimeMultiplier.String() + ")", Value: money(b.OvertimePay)},
		{Label: "Bonus", Value: money(b.Bonus)},
		{Label: "Gross salary", Value: money(b.GrossSalary), Total: true},
		{Label: "Deductions", Section: true},
		{Label: "NDFL (" + payroll.NDFLRate.Shift(2).String() + "%)", Value: money(b.NDFLTax)},
		{Label: "Other deductions", Value: money(b.OtherDeductions)},
		{Label: "Net salary", Value: money(b.NetSalary), Total: true},
	}
}

// Render writes the slip as a single A4 page PDF.
func Render(w io.Writer, p Payslip) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Payslip "+p.Period.String(), true)
	pdf.SetAuthor(p.Organization, true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, tr(p.Organization+" - Payslip"))
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	header := []string{
		"Employee: " + p.EmployeeName,
		"Position: " + p.Position,
		fmt.Sprintf("Period: %s to %s", p.Period.Start.Format(payroll.DateLayout), p.Period.End.Format(payroll.DateLayout)),
		"Status: " + string(p.Status),
	}
	if p.PaidAt != nil {
		header = append(header, "Paid at: "+p.PaidAt.Format(payroll.DateLayout))
	}
	for _, line := range header {
		pdf.Cell(0, 7, tr(line))
		pdf.Ln(6)
	}
	pdf.Ln(4)

	for _, line := range Lines(p) {
		switch {
		case line.Section:
			pdf.SetFont("Helvetica", "B", 12)
			pdf.CellFormat(0, 8, tr(line.Label), "B", 1, "L", false, 0, "")
		case line.Total:
			pdf.SetFont("Helvetica", "B", 11)
			pdf.CellFormat(120, 7, tr(line.Label), "T", 0, "L", false, 0, "")
			pdf.CellFormat(0, 7, tr(line.Value), "T", 1, "R", false, 0, "")
		default:
			pdf.SetFont("Helvetica", "", 11)
			pdf.CellFormat(120, 7, tr(line.Label), "", 0, "L", false, 0, "")
			pdf.CellFormat(0, 7, tr(line.Value), "", 1, "R", false, 0, "")
		}
	}

	pdf.Ln(8)
	pdf.SetFont("Helvetica", "I", 9)
	pdf.Cell(0, 6, tr(fmt.Sprintf("Record %s, generated %s", p.RecordID, p.GeneratedAt.Format(time.RFC3339))))

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to render payslip: %w", err)
	}
	return nil
}

// FileName is the storage key used for a record's slip.
func FileName(p Payslip) string {
	return fmt.Sprintf("payslips/%s/%s.pdf", p.Period.Start.Format("2006-01"), p.RecordID)
}
