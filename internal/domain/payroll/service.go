package payroll

import "context"

type PayrollService interface {
	// Calculation
	CountWorkDays(ctx context.Context, req PayrollPeriodRequest) (WorkDaysResponse, error)
	Preview(ctx context.Context, req PayrollPeriodRequest) (PayrollPreviewResponse, error)

	// Records
	Create(ctx context.Context, req CreatePayrollRequest) (PayrollRecordResponse, error)
	Generate(ctx context.Context, req GeneratePayrollRequest) (GeneratePayrollResponse, error)
	Get(ctx context.Context, id string) (PayrollRecordResponse, error)
	List(ctx context.Context, filter PayrollFilter) (ListPayrollResponse, error)
	UpdateAdjustments(ctx context.Context, req UpdateAdjustmentsRequest) (PayrollRecordResponse, error)
	Delete(ctx context.Context, id string) error

	// Lifecycle
	Confirm(ctx context.Context, req ConfirmPayrollRequest) ([]PayrollRecordResponse, error)
	MarkPaid(ctx context.Context, req MarkPaidRequest) ([]PayrollRecordResponse, error)

	// Reporting
	Summary(ctx context.Context, req SummaryRequest) (PayrollSummaryResponse, error)
	GeneratePayslip(ctx context.Context, id string) (PayslipResponse, error)
}
