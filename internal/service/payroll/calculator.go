package payroll

import (
	"fmt"

	"github.com/nemopark/payroll-backend-go/internal/domain/payroll"
	"github.com/shopspring/decimal"
)

var (
	minutesPerHour  = decimal.NewFromInt(60)
	standardMinutes = payroll.StandardHoursPerDay * 60
)

// PayrollCalculator turns a pay configuration and a date range into a
// PayBreakdown. It holds no state and is safe for concurrent use.
type PayrollCalculator struct {
}

func NewPayrollCalculator() *PayrollCalculator {
	return &PayrollCalculator{}
}

// CountWorkDays counts the dates in the inclusive period whose ISO weekday is
// one of cfg.WorkDays. An inverted period or an empty WorkDays yields 0.
func (c *PayrollCalculator) CountWorkDays(cfg payroll.PayConfiguration, period payroll.PayPeriod) int {
	var scheduled [8]bool
	for _, d := range cfg.WorkDays {
		if d >= 1 && d <= 7 {
			scheduled[d] = true
		}
	}

	normalized := payroll.NewPayPeriod(period.Start, period.End)
	count := 0
	for current := normalized.Start; !current.After(normalized.End); current = current.AddDate(0, 0, 1) {
		if scheduled[isoWeekday(current.Weekday())] {
			count++
		}
	}
	return count
}

// HoursPerShift returns the paid hours of one shift: the span from ShiftStart
// to ShiftEnd (next day when ShiftEnd is earlier) minus the break, never
// below zero.
func (c *PayrollCalculator) HoursPerShift(cfg payroll.PayConfiguration) decimal.Decimal {
	return decimal.NewFromInt(int64(shiftMinutes(cfg))).Div(minutesPerHour)
}

// Calculate produces the full breakdown for the period. Bonus and
// OtherDeductions are zero; callers may set them and call Recompute.
func (c *PayrollCalculator) Calculate(cfg payroll.PayConfiguration, period payroll.PayPeriod) (payroll.PayBreakdown, error) {
	if err := validateConfiguration(cfg); err != nil {
		return payroll.PayBreakdown{}, err
	}

	workDays := c.CountWorkDays(cfg, period)
	perDayMinutes := shiftMinutes(cfg)
	overtimePerDayMinutes := max(0, perDayMinutes-standardMinutes)

	// Work in whole minutes and divide once, so hours like 7h20m stay exact
	// until the final rounding.
	totalMinutes := decimal.NewFromInt(int64(workDays * perDayMinutes))
	overtimeMinutes := decimal.NewFromInt(int64(workDays * overtimePerDayMinutes))
	regularMinutes := totalMinutes.Sub(overtimeMinutes)

	breakdown := payroll.PayBreakdown{
		WorkDaysCount:   workDays,
		HoursPerShift:   toHours(decimal.NewFromInt(int64(perDayMinutes))),
		TotalHours:      toHours(totalMinutes),
		RegularHours:    toHours(regularMinutes),
		OvertimeHours:   toHours(overtimeMinutes),
		BaseSalary:      regularMinutes.Mul(cfg.HourlyRate).Div(minutesPerHour),
		OvertimePay:     overtimeMinutes.Mul(cfg.HourlyRate).Mul(payroll.OvertimeMultiplier).Div(minutesPerHour),
		Bonus:           decimal.Zero,
		OtherDeductions: decimal.Zero,
	}
	return breakdown.Recompute(), nil
}

func validateConfiguration(cfg payroll.PayConfiguration) error {
	if cfg.HourlyRate.IsNegative() {
		return fmt.Errorf("%w: hourly rate %s is negative", payroll.ErrInvalidConfiguration, cfg.HourlyRate)
	}
	if cfg.BreakMinutes < 0 {
		return fmt.Errorf("%w: break minutes %d is negative", payroll.ErrInvalidConfiguration, cfg.BreakMinutes)
	}
	if !cfg.ShiftStart.Valid() || !cfg.ShiftEnd.Valid() {
		return fmt.Errorf("%w: shift %s-%s is outside a day", payroll.ErrInvalidConfiguration, cfg.ShiftStart, cfg.ShiftEnd)
	}
	return nil
}

func toHours(minutes decimal.Decimal) decimal.Decimal {
	return minutes.Div(minutesPerHour).Round(payroll.CurrencyPlaces)
}

func shiftMinutes(cfg payroll.PayConfiguration) int {
	return max(0, cfg.ShiftStart.MinutesUntil(cfg.ShiftEnd)-cfg.BreakMinutes)
}
