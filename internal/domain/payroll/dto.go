package payroll

import (
	"time"

	"github.com/nemopark/payroll-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// ========== PERIOD DTOs ==========

// PayrollPeriodRequest selects one employee and an inclusive date range.
type PayrollPeriodRequest struct {
	EmployeeID  string `json:"employee_id" validate:"required"`
	PeriodStart string `json:"period_start" validate:"required"`
	PeriodEnd   string `json:"period_end" validate:"required"`
}

func (r *PayrollPeriodRequest) Validate() error {
	errs := validator.Struct(r)
	validatePeriod(&errs, r.PeriodStart, r.PeriodEnd)
	return errs.Err()
}

// Period parses the request dates. Call Validate first.
func (r *PayrollPeriodRequest) Period() (PayPeriod, error) {
	return parsePeriod(r.PeriodStart, r.PeriodEnd)
}

func validatePeriod(errs *validator.ValidationErrors, start, end string) {
	startDate, startOK := validator.IsValidDate(start)
	endDate, endOK := validator.IsValidDate(end)
	if start != "" && !startOK {
		errs.Add("period_start", "must be in YYYY-MM-DD format")
	}
	if end != "" && !endOK {
		errs.Add("period_end", "must be in YYYY-MM-DD format")
	}
	if startOK && endOK && startDate.After(endDate) {
		errs.Add("period_end", "must not be before period_start")
	}
}

func parsePeriod(start, end string) (PayPeriod, error) {
	startDate, err := time.Parse(DateLayout, start)
	if err != nil {
		return PayPeriod{}, ErrInvalidPeriod
	}
	endDate, err := time.Parse(DateLayout, end)
	if err != nil {
		return PayPeriod{}, ErrInvalidPeriod
	}
	return NewPayPeriod(startDate, endDate), nil
}

type WorkDaysResponse struct {
	EmployeeID    string   `json:"employee_id"`
	PeriodStart   string   `json:"period_start"`
	PeriodEnd     string   `json:"period_end"`
	WorkDays      []int    `json:"work_days"`
	WorkDaysCount int      `json:"work_days_count"`
	Warnings      []string `json:"warnings,omitempty"`
}

// ========== PREVIEW DTOs ==========

type BreakdownResponse struct {
	WorkDaysCount   int             `json:"work_days_count"`
	HoursPerShift   decimal.Decimal `json:"hours_per_shift"`
	TotalHours      decimal.Decimal `json:"total_hours"`
	RegularHours    decimal.Decimal `json:"regular_hours"`
	OvertimeHours   decimal.Decimal `json:"overtime_hours"`
	BaseSalary      decimal.Decimal `json:"base_salary"`
	OvertimePay     decimal.Decimal `json:"overtime_pay"`
	Bonus           decimal.Decimal `json:"bonus"`
	GrossSalary     decimal.Decimal `json:"gross_salary"`
	NDFLTax         decimal.Decimal `json:"ndfl_tax"`
	OtherDeductions decimal.Decimal `json:"other_deductions"`
	NetSalary       decimal.Decimal `json:"net_salary"`
}

func NewBreakdownResponse(b PayBreakdown) BreakdownResponse {
	return BreakdownResponse{
		WorkDaysCount:   b.WorkDaysCount,
		HoursPerShift:   b.HoursPerShift,
		TotalHours:      b.TotalHours,
		RegularHours:    b.RegularHours,
		OvertimeHours:   b.OvertimeHours,
		BaseSalary:      b.BaseSalary,
		OvertimePay:     b.OvertimePay,
		Bonus:           b.Bonus,
		GrossSalary:     b.GrossSalary,
		NDFLTax:         b.NDFLTax,
		OtherDeductions: b.OtherDeductions,
		NetSalary:       b.NetSalary,
	}
}

type PayrollPreviewResponse struct {
	EmployeeID   string            `json:"employee_id"`
	EmployeeName string            `json:"employee_name"`
	Position     string            `json:"position"`
	PeriodStart  string            `json:"period_start"`
	PeriodEnd    string            `json:"period_end"`
	HourlyRate   decimal.Decimal   `json:"hourly_rate"`
	ShiftStart   string            `json:"shift_start"`
	ShiftEnd     string            `json:"shift_end"`
	BreakMinutes int               `json:"break_minutes"`
	Breakdown    BreakdownResponse `json:"breakdown"`
}

// ========== PAYROLL RECORD DTOs ==========

type CreatePayrollRequest struct {
	PayrollPeriodRequest
	CreatedBy *string `json:"created_by,omitempty"`
}

type GeneratePayrollRequest struct {
	PeriodStart string   `json:"period_start" validate:"required"`
	PeriodEnd   string   `json:"period_end" validate:"required"`
	EmployeeIDs []string `json:"employee_ids,omitempty" validate:"omitempty,unique,dive,required"` // Empty = all employees
	CreatedBy   *string  `json:"created_by,omitempty"`
}

func (r *GeneratePayrollRequest) Validate() error {
	errs := validator.Struct(r)
	validatePeriod(&errs, r.PeriodStart, r.PeriodEnd)
	return errs.Err()
}

func (r *GeneratePayrollRequest) Period() (PayPeriod, error) {
	return parsePeriod(r.PeriodStart, r.PeriodEnd)
}

type GenerateSummary struct {
	Created         int             `json:"created"`
	SkippedExisting int             `json:"skipped_existing"`
	SkippedNoDays   int             `json:"skipped_no_work_days"`
	TotalGross      decimal.Decimal `json:"total_gross"`
	TotalNDFL       decimal.Decimal `json:"total_ndfl"`
	TotalNet        decimal.Decimal `json:"total_net"`
}

type GeneratePayrollResponse struct {
	PeriodStart string                  `json:"period_start"`
	PeriodEnd   string                  `json:"period_end"`
	Summary     GenerateSummary         `json:"summary"`
	Records     []PayrollRecordResponse `json:"records"`
}

type UpdateAdjustmentsRequest struct {
	ID              string           `json:"-" validate:"required"`
	Bonus           *decimal.Decimal `json:"bonus,omitempty"`
	OtherDeductions *decimal.Decimal `json:"other_deductions,omitempty"`
}

func (r *UpdateAdjustmentsRequest) Validate() error {
	errs := validator.Struct(r)

	if r.Bonus == nil && r.OtherDeductions == nil {
		errs.Add("request", "bonus or other_deductions is required")
	}
	if r.Bonus != nil && r.Bonus.IsNegative() {
		errs.Add("bonus", "must be non-negative")
	}
	if r.OtherDeductions != nil && r.OtherDeductions.IsNegative() {
		errs.Add("other_deductions", "must be non-negative")
	}

	return errs.Err()
}

type ConfirmPayrollRequest struct {
	RecordIDs []string `json:"record_ids" validate:"required,min=1,unique,dive,required"`
}

func (r *ConfirmPayrollRequest) Validate() error {
	return validator.Struct(r).Err()
}

type MarkPaidRequest struct {
	RecordIDs []string `json:"record_ids" validate:"required,min=1,unique,dive,required"`
	PaidBy    string   `json:"paid_by" validate:"required"`
}

func (r *MarkPaidRequest) Validate() error {
	return validator.Struct(r).Err()
}

type PayrollFilter struct {
	EmployeeID *string `json:"employee_id,omitempty"`
	Status     *string `json:"status,omitempty"`
	PeriodFrom *string `json:"period_from,omitempty"` // records starting on or after
	PeriodTo   *string `json:"period_to,omitempty"`   // records ending on or before
	Page       int     `json:"page" validate:"gte=0"`
	Limit      int     `json:"limit" validate:"gte=0,lte=100"`
}

func (f *PayrollFilter) Validate() error {
	errs := validator.Struct(f)

	if f.Status != nil && !validator.IsInSlice(*f.Status, PayrollStatusValues) {
		errs.Add("status", "must be one of draft, confirmed, paid")
	}
	if f.PeriodFrom != nil {
		if _, ok := validator.IsValidDate(*f.PeriodFrom); !ok {
			errs.Add("period_from", "must be in YYYY-MM-DD format")
		}
	}
	if f.PeriodTo != nil {
		if _, ok := validator.IsValidDate(*f.PeriodTo); !ok {
			errs.Add("period_to", "must be in YYYY-MM-DD format")
		}
	}

	return errs.Err()
}

// Normalize applies paging defaults.
func (f *PayrollFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = 20
	}
}

type PayrollRecordResponse struct {
	ID           string            `json:"id"`
	EmployeeID   string            `json:"employee_id"`
	EmployeeName string            `json:"employee_name,omitempty"`
	Position     *string           `json:"position,omitempty"`
	PeriodStart  string            `json:"period_start"`
	PeriodEnd    string            `json:"period_end"`
	Status       string            `json:"status"`
	HourlyRate   decimal.Decimal   `json:"hourly_rate"`
	Breakdown    BreakdownResponse `json:"breakdown"`
	CreatedBy    *string           `json:"created_by,omitempty"`
	PaidAt       *string           `json:"paid_at,omitempty"`
	PaidBy       *string           `json:"paid_by,omitempty"`
	CreatedAt    string            `json:"created_at"`
	UpdatedAt    string            `json:"updated_at"`
}

func NewPayrollRecordResponse(r PayrollRecord) PayrollRecordResponse {
	var paidAt *string
	if r.PaidAt != nil {
		str := r.PaidAt.Format(time.RFC3339)
		paidAt = &str
	}
	employeeName := ""
	if r.EmployeeName != nil {
		employeeName = *r.EmployeeName
	}

	return PayrollRecordResponse{
		ID:           r.ID,
		EmployeeID:   r.EmployeeID,
		EmployeeName: employeeName,
		Position:     r.Position,
		PeriodStart:  r.PeriodStart.Format(DateLayout),
		PeriodEnd:    r.PeriodEnd.Format(DateLayout),
		Status:       string(r.Status),
		HourlyRate:   r.HourlyRate,
		Breakdown:    NewBreakdownResponse(r.Breakdown),
		CreatedBy:    r.CreatedBy,
		PaidAt:       paidAt,
		PaidBy:       r.PaidBy,
		CreatedAt:    r.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    r.UpdatedAt.Format(time.RFC3339),
	}
}

type ListPayrollResponse struct {
	TotalCount int64                   `json:"total_count"`
	Page       int                     `json:"page"`
	Limit      int                     `json:"limit"`
	TotalPages int64                   `json:"total_pages"`
	Records    []PayrollRecordResponse `json:"records"`
}

// ========== SUMMARY DTOs ==========

type SummaryRequest struct {
	PeriodStart string `json:"period_start" validate:"required"`
	PeriodEnd   string `json:"period_end" validate:"required"`
}

func (r *SummaryRequest) Validate() error {
	errs := validator.Struct(r)
	validatePeriod(&errs, r.PeriodStart, r.PeriodEnd)
	return errs.Err()
}

func (r *SummaryRequest) Period() (PayPeriod, error) {
	return parsePeriod(r.PeriodStart, r.PeriodEnd)
}

type StatusTotalsResponse struct {
	Status     string          `json:"status"`
	Count      int             `json:"count"`
	TotalGross decimal.Decimal `json:"total_gross"`
	TotalNDFL  decimal.Decimal `json:"total_ndfl"`
	TotalNet   decimal.Decimal `json:"total_net"`
}

type PayrollSummaryResponse struct {
	PeriodStart   string                 `json:"period_start"`
	PeriodEnd     string                 `json:"period_end"`
	TotalRecords  int                    `json:"total_records"`
	TotalGross    decimal.Decimal        `json:"total_gross"`
	TotalNDFL     decimal.Decimal        `json:"total_ndfl"`
	TotalNet      decimal.Decimal        `json:"total_net"`
	ByStatus      []StatusTotalsResponse `json:"by_status"`
	EmployeeCount int                    `json:"employee_count"`
}

type PayslipResponse struct {
	RecordID string `json:"record_id"`
	Path     string `json:"path"`
	URL      string `json:"url"`
}
