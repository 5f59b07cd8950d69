package employee

import (
	"time"

	"github.com/nemopark/payroll-backend-go/internal/domain/payroll"
	"github.com/shopspring/decimal"
)

type Employee struct {
	ID           string
	UserID       *string
	FirstName    string
	LastName     string
	Position     Position
	HourlyRate   decimal.Decimal
	ShiftStart   payroll.ClockTime
	ShiftEnd     payroll.ClockTime
	BreakMinutes int
	WorkDays     []int
	HireDate     time.Time
	Phone        *string
	Email        *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (e Employee) FullName() string {
	return e.FirstName + " " + e.LastName
}

// PayConfiguration extracts the calculator input from the stored profile.
func (e Employee) PayConfiguration() payroll.PayConfiguration {
	return payroll.PayConfiguration{
		HourlyRate:   e.HourlyRate,
		ShiftStart:   e.ShiftStart,
		ShiftEnd:     e.ShiftEnd,
		BreakMinutes: e.BreakMinutes,
		WorkDays:     e.WorkDays,
	}
}

type Position string

const (
	PositionUser    Position = "user"
	PositionCashier Position = "cashier"
	PositionAdmin   Position = "admin"
)

var defaultRates = map[Position]decimal.Decimal{
	PositionAdmin:   decimal.NewFromInt(450),
	PositionCashier: decimal.NewFromInt(300),
	PositionUser:    decimal.NewFromInt(250),
}

// DefaultRate returns the hourly rate a new employee in the position starts
// with. Unknown positions get zero.
func DefaultRate(position Position) decimal.Decimal {
	if rate, ok := defaultRates[position]; ok {
		return rate
	}
	return decimal.Zero
}

// DefaultWorkDays is Monday through Friday.
func DefaultWorkDays() []int {
	return []int{1, 2, 3, 4, 5}
}

var (
	DefaultShiftStart = payroll.NewClockTime(9, 0)
	DefaultShiftEnd   = payroll.NewClockTime(18, 0)
)

const DefaultBreakMinutes = 60
