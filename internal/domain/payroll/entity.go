package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

var (
	// NDFLRate is the flat personal income tax withheld from gross pay.
	NDFLRate = decimal.RequireFromString("0.13")
	// OvertimeMultiplier applies to every hour past StandardHoursPerDay in a shift.
	OvertimeMultiplier = decimal.RequireFromString("1.5")
)

const (
	StandardHoursPerDay = 8

	// CurrencyPlaces is the number of fractional digits kept for money and hours.
	CurrencyPlaces = 2
)

// PayConfiguration - Employee pay profile consumed by the calculator
type PayConfiguration struct {
	HourlyRate   decimal.Decimal
	ShiftStart   ClockTime
	ShiftEnd     ClockTime // earlier than ShiftStart means the shift ends next day
	BreakMinutes int
	WorkDays     []int // ISO weekdays, 1=Monday ... 7=Sunday
}

// PayPeriod - Inclusive calendar date range
type PayPeriod struct {
	Start time.Time
	End   time.Time
}

// NewPayPeriod truncates both bounds to their calendar date.
func NewPayPeriod(start, end time.Time) PayPeriod {
	return PayPeriod{Start: dateOnly(start), End: dateOnly(end)}
}

// MonthPeriod returns the period covering the whole calendar month.
func MonthPeriod(year int, month time.Month) PayPeriod {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return PayPeriod{Start: start, End: start.AddDate(0, 1, -1)}
}

func (p PayPeriod) IsInverted() bool {
	return dateOnly(p.Start).After(dateOnly(p.End))
}

func (p PayPeriod) String() string {
	return p.Start.Format(DateLayout) + ".." + p.End.Format(DateLayout)
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// PayBreakdown - Result of one payroll calculation
type PayBreakdown struct {
	WorkDaysCount   int
	HoursPerShift   decimal.Decimal
	TotalHours      decimal.Decimal
	RegularHours    decimal.Decimal
	OvertimeHours   decimal.Decimal
	BaseSalary      decimal.Decimal
	OvertimePay     decimal.Decimal
	Bonus           decimal.Decimal
	GrossSalary     decimal.Decimal
	NDFLTax         decimal.Decimal
	OtherDeductions decimal.Decimal
	NetSalary       decimal.Decimal
}

// Recompute derives gross, tax and net from the already rounded components.
// Callers that change Bonus or OtherDeductions must call it before persisting.
func (b PayBreakdown) Recompute() PayBreakdown {
	b.BaseSalary = b.BaseSalary.Round(CurrencyPlaces)
	b.OvertimePay = b.OvertimePay.Round(CurrencyPlaces)
	b.Bonus = b.Bonus.Round(CurrencyPlaces)
	b.OtherDeductions = b.OtherDeductions.Round(CurrencyPlaces)

	b.GrossSalary = b.BaseSalary.Add(b.OvertimePay).Add(b.Bonus)
	b.NDFLTax = b.GrossSalary.Mul(NDFLRate).Round(CurrencyPlaces)
	b.NetSalary = b.GrossSalary.Sub(b.NDFLTax).Sub(b.OtherDeductions)
	return b
}

// PayrollStatus enum
type PayrollStatus string

const (
	PayrollStatusDraft     PayrollStatus = "draft"
	PayrollStatusConfirmed PayrollStatus = "confirmed"
	PayrollStatusPaid      PayrollStatus = "paid"
)

var PayrollStatusValues = []string{
	string(PayrollStatusDraft),
	string(PayrollStatusConfirmed),
	string(PayrollStatusPaid),
}

// CanTransitionTo reports whether the lifecycle allows moving to next.
// Records only move forward: draft -> confirmed -> paid.
func (s PayrollStatus) CanTransitionTo(next PayrollStatus) bool {
	switch s {
	case PayrollStatusDraft:
		return next == PayrollStatusConfirmed
	case PayrollStatusConfirmed:
		return next == PayrollStatusPaid
	default:
		return false
	}
}

func (s PayrollStatus) IsFinalized() bool {
	return s == PayrollStatusConfirmed || s == PayrollStatusPaid
}

// PayrollRecord - Persisted payroll result
type PayrollRecord struct {
	ID          string
	EmployeeID  string
	PeriodStart time.Time
	PeriodEnd   time.Time
	Status      PayrollStatus
	HourlyRate  decimal.Decimal
	Breakdown   PayBreakdown
	CreatedBy   *string
	PaidAt      *time.Time
	PaidBy      *string
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// Joined fields
	EmployeeName *string
	Position     *string
}

func (r PayrollRecord) Period() PayPeriod {
	return PayPeriod{Start: r.PeriodStart, End: r.PeriodEnd}
}

// StatusTotals - Aggregate of records sharing one status
type StatusTotals struct {
	Status     PayrollStatus
	Count      int
	TotalGross decimal.Decimal
	TotalNDFL  decimal.Decimal
	TotalNet   decimal.Decimal
}
