package employee

import (
	"time"

	"github.com/nemopark/payroll-backend-go/internal/domain/payroll"
	"github.com/nemopark/payroll-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// PayProfile - The columns the payroll calculator reads
type PayProfile struct {
	HourlyRate   decimal.Decimal
	ShiftStart   payroll.ClockTime
	ShiftEnd     payroll.ClockTime
	BreakMinutes int
	WorkDays     []int
}

// ========== CREATE ==========

// CreateEmployeeRequest - Omitted pay fields fall back to the position defaults.
type CreateEmployeeRequest struct {
	FirstName    string           `json:"first_name" validate:"required,max=100"`
	LastName     string           `json:"last_name" validate:"required,max=100"`
	Position     string           `json:"position" validate:"required,oneof=user cashier admin"`
	HourlyRate   *decimal.Decimal `json:"hourly_rate,omitempty"`
	ShiftStart   *string          `json:"shift_start,omitempty"`
	ShiftEnd     *string          `json:"shift_end,omitempty"`
	BreakMinutes *int             `json:"break_minutes,omitempty" validate:"omitempty,gte=0,lte=720"`
	WorkDays     []int            `json:"work_days,omitempty" validate:"omitempty,unique,dive,gte=1,lte=7"`
	HireDate     *string          `json:"hire_date,omitempty"`
	Phone        *string          `json:"phone,omitempty"`
	Email        *string          `json:"email,omitempty" validate:"omitempty,email"`

	// Optional login
	Username *string `json:"username,omitempty"`
	Password *string `json:"password,omitempty" validate:"omitempty,min=8"`
}

// WantsLogin reports whether credentials should be created with the employee.
func (r *CreateEmployeeRequest) WantsLogin() bool {
	return r.Username != nil && r.Password != nil
}

func (r *CreateEmployeeRequest) Validate() error {
	errs := validator.Struct(r)

	if r.HourlyRate != nil && r.HourlyRate.IsNegative() {
		errs.Add("hourly_rate", "must be non-negative")
	}
	validateShift(&errs, "shift_start", r.ShiftStart)
	validateShift(&errs, "shift_end", r.ShiftEnd)

	if r.HireDate != nil {
		hireDate, ok := validator.IsValidDate(*r.HireDate)
		if !ok {
			errs.Add("hire_date", "must be in YYYY-MM-DD format")
		} else if hireDate.After(time.Now()) {
			errs.Add("hire_date", ErrFutureDateNotAllowed.Error())
		}
	}
	if r.Phone != nil && !validator.IsValidPhoneNumber(*r.Phone) {
		errs.Add("phone", "must be 10-15 digits")
	}
	if r.Username != nil && !validator.IsValidUsername(*r.Username) {
		errs.Add("username", "must be 3-50 letters, digits, dots, dashes or underscores")
	}
	if r.Username != nil && r.Password == nil {
		errs.Add("password", "is required with username")
	}
	if r.Password != nil && r.Username == nil {
		errs.Add("username", "is required with password")
	}

	return errs.Err()
}

// ========== UPDATE ==========

// UpdatePayProfileRequest - nil fields keep their stored value
type UpdatePayProfileRequest struct {
	ID           string           `json:"-" validate:"required"`
	HourlyRate   *decimal.Decimal `json:"hourly_rate,omitempty"`
	ShiftStart   *string          `json:"shift_start,omitempty"`
	ShiftEnd     *string          `json:"shift_end,omitempty"`
	BreakMinutes *int             `json:"break_minutes,omitempty" validate:"omitempty,gte=0,lte=720"`
	WorkDays     *[]int           `json:"work_days,omitempty" validate:"omitempty,unique,dive,gte=1,lte=7"`
}

func (r *UpdatePayProfileRequest) Validate() error {
	errs := validator.Struct(r)

	if r.HourlyRate == nil && r.ShiftStart == nil && r.ShiftEnd == nil && r.BreakMinutes == nil && r.WorkDays == nil {
		errs.Add("request", "at least one pay field is required")
	}
	if r.HourlyRate != nil && r.HourlyRate.IsNegative() {
		errs.Add("hourly_rate", "must be non-negative")
	}
	validateShift(&errs, "shift_start", r.ShiftStart)
	validateShift(&errs, "shift_end", r.ShiftEnd)

	return errs.Err()
}

// Apply returns current with the requested changes. Call Validate first.
func (r *UpdatePayProfileRequest) Apply(current PayProfile) PayProfile {
	next := current
	if r.HourlyRate != nil {
		next.HourlyRate = *r.HourlyRate
	}
	if r.ShiftStart != nil {
		next.ShiftStart, _ = payroll.ParseClockTime(*r.ShiftStart)
	}
	if r.ShiftEnd != nil {
		next.ShiftEnd, _ = payroll.ParseClockTime(*r.ShiftEnd)
	}
	if r.BreakMinutes != nil {
		next.BreakMinutes = *r.BreakMinutes
	}
	if r.WorkDays != nil {
		next.WorkDays = append([]int{}, (*r.WorkDays)...)
	}
	return next
}

func validateShift(errs *validator.ValidationErrors, field string, value *string) {
	if value == nil {
		return
	}
	if _, err := payroll.ParseClockTime(*value); err != nil {
		errs.Add(field, ErrInvalidShift.Error())
	}
}

// ========== LIST ==========

type EmployeeFilter struct {
	Position *string `json:"position,omitempty" validate:"omitempty,oneof=user cashier admin"`
	Search   *string `json:"search,omitempty"` // first or last name, case-insensitive
	Page     int     `json:"page" validate:"gte=0"`
	Limit    int     `json:"limit" validate:"gte=0,lte=100"`
}

func (f *EmployeeFilter) Validate() error {
	return validator.Struct(f).Err()
}

// Normalize applies paging defaults.
func (f *EmployeeFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = 20
	}
}

// ========== RESPONSES ==========

type EmployeeResponse struct {
	ID           string          `json:"id"`
	UserID       *string         `json:"user_id,omitempty"`
	FirstName    string          `json:"first_name"`
	LastName     string          `json:"last_name"`
	FullName     string          `json:"full_name"`
	Position     string          `json:"position"`
	HourlyRate   decimal.Decimal `json:"hourly_rate"`
	ShiftStart   string          `json:"shift_start"`
	ShiftEnd     string          `json:"shift_end"`
	BreakMinutes int             `json:"break_minutes"`
	WorkDays     []int           `json:"work_days"`
	HireDate     string          `json:"hire_date"`
	Phone        *string         `json:"phone,omitempty"`
	Email        *string         `json:"email,omitempty"`
	CreatedAt    string          `json:"created_at"`
	UpdatedAt    string          `json:"updated_at"`
}

func NewEmployeeResponse(e Employee) EmployeeResponse {
	workDays := e.WorkDays
	if workDays == nil {
		workDays = []int{}
	}
	return EmployeeResponse{
		ID:           e.ID,
		UserID:       e.UserID,
		FirstName:    e.FirstName,
		LastName:     e.LastName,
		FullName:     e.FullName(),
		Position:     string(e.Position),
		HourlyRate:   e.HourlyRate,
		ShiftStart:   e.ShiftStart.String(),
		ShiftEnd:     e.ShiftEnd.String(),
		BreakMinutes: e.BreakMinutes,
		WorkDays:     workDays,
		HireDate:     e.HireDate.Format(payroll.DateLayout),
		Phone:        e.Phone,
		Email:        e.Email,
		CreatedAt:    e.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    e.UpdatedAt.Format(time.RFC3339),
	}
}

type ListEmployeeResponse struct {
	TotalCount int64              `json:"total_count"`
	Page       int                `json:"page"`
	Limit      int                `json:"limit"`
	TotalPages int64              `json:"total_pages"`
	Employees  []EmployeeResponse `json:"employees"`
}
