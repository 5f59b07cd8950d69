package payroll

import (
	"context"
	"time"
)

// PayrollRepository defines data access methods for payroll records.
type PayrollRepository interface {
	CreatePayrollRecord(ctx context.Context, record PayrollRecord) (PayrollRecord, error)
	GetPayrollRecordByID(ctx context.Context, id string) (PayrollRecord, error)
	GetPayrollRecordByEmployeePeriod(ctx context.Context, employeeID string, period PayPeriod) (PayrollRecord, error)
	ListPayrollRecords(ctx context.Context, filter PayrollFilter) ([]PayrollRecord, int64, error)
	UpdateBreakdown(ctx context.Context, id string, breakdown PayBreakdown) error
	UpdateStatus(ctx context.Context, id string, status PayrollStatus, paidAt *time.Time, paidBy *string) error
	DeletePayrollRecord(ctx context.Context, id string) error

	// Employee lifecycle
	CountFinalizedByEmployee(ctx context.Context, employeeID string) (int, error)
	DeleteDraftsByEmployee(ctx context.Context, employeeID string) (int64, error)

	// Aggregations
	GetStatusTotals(ctx context.Context, period PayPeriod) ([]StatusTotals, int, error)
}
