package payroll

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nemopark/payroll-backend-go/internal/domain/employee"
	"github.com/nemopark/payroll-backend-go/internal/domain/payroll"
	"github.com/nemopark/payroll-backend-go/internal/pkg/database"
	"github.com/nemopark/payroll-backend-go/internal/pkg/payslip"
	"github.com/nemopark/payroll-backend-go/internal/pkg/storage"
	"github.com/shopspring/decimal"
)

// PayslipSettings - What is printed on every payslip
type PayslipSettings struct {
	Organization string
	Currency     string
}

type PayrollServiceImpl struct {
	tx           database.Transactor
	payrollRepo  payroll.PayrollRepository
	employeeRepo employee.EmployeeRepository
	calculator   *PayrollCalculator
	fileStorage  storage.FileStorage
	payslip      PayslipSettings
	now          func() time.Time
}

func NewPayrollService(
	tx database.Transactor,
	payrollRepo payroll.PayrollRepository,
	employeeRepo employee.EmployeeRepository,
	calculator *PayrollCalculator,
	fileStorage storage.FileStorage,
	payslipSettings PayslipSettings,
) payroll.PayrollService {
	return &PayrollServiceImpl{
		tx:           tx,
		payrollRepo:  payrollRepo,
		employeeRepo: employeeRepo,
		calculator:   calculator,
		fileStorage:  fileStorage,
		payslip:      payslipSettings,
		now:          time.Now,
	}
}

// ========== CALCULATION ==========

func (s *PayrollServiceImpl) CountWorkDays(ctx context.Context, req payroll.PayrollPeriodRequest) (payroll.WorkDaysResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.WorkDaysResponse{}, err
	}
	period, err := req.Period()
	if err != nil {
		return payroll.WorkDaysResponse{}, err
	}

	emp, err := s.employeeRepo.GetByID(ctx, req.EmployeeID)
	if err != nil {
		return payroll.WorkDaysResponse{}, err
	}

	var warnings []string
	if len(emp.WorkDays) == 0 {
		warnings = append(warnings, "employee has no scheduled work days")
	}

	return payroll.WorkDaysResponse{
		EmployeeID:    emp.ID,
		PeriodStart:   period.Start.Format(payroll.DateLayout),
		PeriodEnd:     period.End.Format(payroll.DateLayout),
		WorkDays:      nonNilDays(emp.WorkDays),
		WorkDaysCount: s.calculator.CountWorkDays(emp.PayConfiguration(), period),
		Warnings:      warnings,
	}, nil
}

func (s *PayrollServiceImpl) Preview(ctx context.Context, req payroll.PayrollPeriodRequest) (payroll.PayrollPreviewResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.PayrollPreviewResponse{}, err
	}
	period, err := req.Period()
	if err != nil {
		return payroll.PayrollPreviewResponse{}, err
	}

	emp, err := s.employeeRepo.GetByID(ctx, req.EmployeeID)
	if err != nil {
		return payroll.PayrollPreviewResponse{}, err
	}

	breakdown, err := s.calculator.Calculate(emp.PayConfiguration(), period)
	if err != nil {
		return payroll.PayrollPreviewResponse{}, fmt.Errorf("employee %s: %w", emp.ID, err)
	}

	return payroll.PayrollPreviewResponse{
		EmployeeID:   emp.ID,
		EmployeeName: emp.FullName(),
		Position:     string(emp.Position),
		PeriodStart:  period.Start.Format(payroll.DateLayout),
		PeriodEnd:    period.End.Format(payroll.DateLayout),
		HourlyRate:   emp.HourlyRate,
		ShiftStart:   emp.ShiftStart.String(),
		ShiftEnd:     emp.ShiftEnd.String(),
		BreakMinutes: emp.BreakMinutes,
		Breakdown:    payroll.NewBreakdownResponse(breakdown),
	}, nil
}

// ========== PAYROLL RECORDS ==========

func (s *PayrollServiceImpl) Create(ctx context.Context, req payroll.CreatePayrollRequest) (payroll.PayrollRecordResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.PayrollRecordResponse{}, err
	}
	period, err := req.Period()
	if err != nil {
		return payroll.PayrollRecordResponse{}, err
	}

	var created payroll.PayrollRecord
	err = s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		emp, err := s.employeeRepo.GetByID(txCtx, req.EmployeeID)
		if err != nil {
			return err
		}

		exists, err := s.recordExists(txCtx, emp.ID, period)
		if err != nil {
			return err
		}
		if exists {
			return payroll.ErrPayrollRecordAlreadyExists
		}

		record, err := s.buildRecord(emp, period, req.CreatedBy)
		if err != nil {
			return err
		}
		if record.Breakdown.WorkDaysCount == 0 {
			return fmt.Errorf("%w: %s", payroll.ErrNoWorkDaysInPeriod, period)
		}

		created, err = s.payrollRepo.CreatePayrollRecord(txCtx, record)
		return err
	})
	if err != nil {
		return payroll.PayrollRecordResponse{}, err
	}

	slog.Info("Payroll record created",
		"record_id", created.ID,
		"employee_id", created.EmployeeID,
		"period", period.String(),
		"net_salary", created.Breakdown.NetSalary.String())

	return payroll.NewPayrollRecordResponse(created), nil
}

// Generate drafts records for every requested employee in one transaction.
// Employees that already have a record for the exact period, or that have no
// scheduled day in it, are skipped and counted in the summary.
func (s *PayrollServiceImpl) Generate(ctx context.Context, req payroll.GeneratePayrollRequest) (payroll.GeneratePayrollResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.GeneratePayrollResponse{}, err
	}
	period, err := req.Period()
	if err != nil {
		return payroll.GeneratePayrollResponse{}, err
	}

	summary := payroll.GenerateSummary{
		TotalGross: decimal.Zero,
		TotalNDFL:  decimal.Zero,
		TotalNet:   decimal.Zero,
	}
	var records []payroll.PayrollRecord

	err = s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		employees, err := s.employeesForGeneration(txCtx, req.EmployeeIDs)
		if err != nil {
			return err
		}

		for _, emp := range employees {
			exists, err := s.recordExists(txCtx, emp.ID, period)
			if err != nil {
				return err
			}
			if exists {
				summary.SkippedExisting++
				continue
			}

			record, err := s.buildRecord(emp, period, req.CreatedBy)
			if err != nil {
				return err
			}
			if record.Breakdown.WorkDaysCount == 0 {
				summary.SkippedNoDays++
				continue
			}

			created, err := s.payrollRepo.CreatePayrollRecord(txCtx, record)
			if err != nil {
				return fmt.Errorf("failed to create payroll record for employee %s: %w", emp.ID, err)
			}

			records = append(records, created)
			summary.Created++
			summary.TotalGross = summary.TotalGross.Add(created.Breakdown.GrossSalary)
			summary.TotalNDFL = summary.TotalNDFL.Add(created.Breakdown.NDFLTax)
			summary.TotalNet = summary.TotalNet.Add(created.Breakdown.NetSalary)
		}
		return nil
	})
	if err != nil {
		return payroll.GeneratePayrollResponse{}, err
	}

	slog.Info("Payroll generated",
		"period", period.String(),
		"created", summary.Created,
		"skipped_existing", summary.SkippedExisting,
		"skipped_no_work_days", summary.SkippedNoDays,
		"total_net", summary.TotalNet.String())

	return payroll.GeneratePayrollResponse{
		PeriodStart: period.Start.Format(payroll.DateLayout),
		PeriodEnd:   period.End.Format(payroll.DateLayout),
		Summary:     summary,
		Records:     mapToRecordResponses(records),
	}, nil
}

func (s *PayrollServiceImpl) Get(ctx context.Context, id string) (payroll.PayrollRecordResponse, error) {
	record, err := s.payrollRepo.GetPayrollRecordByID(ctx, id)
	if err != nil {
		return payroll.PayrollRecordResponse{}, err
	}

	return payroll.NewPayrollRecordResponse(record), nil
}

func (s *PayrollServiceImpl) List(ctx context.Context, filter payroll.PayrollFilter) (payroll.ListPayrollResponse, error) {
	if err := filter.Validate(); err != nil {
		return payroll.ListPayrollResponse{}, err
	}
	filter.Normalize()

	records, totalCount, err := s.payrollRepo.ListPayrollRecords(ctx, filter)
	if err != nil {
		return payroll.ListPayrollResponse{}, err
	}

	return payroll.ListPayrollResponse{
		TotalCount: totalCount,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages(totalCount, filter.Limit),
		Records:    mapToRecordResponses(records),
	}, nil
}

// UpdateAdjustments sets bonus and other deductions on a draft and derives
// gross, NDFL and net again.
func (s *PayrollServiceImpl) UpdateAdjustments(ctx context.Context, req payroll.UpdateAdjustmentsRequest) (payroll.PayrollRecordResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.PayrollRecordResponse{}, err
	}

	var updated payroll.PayrollRecord
	err := s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		record, err := s.payrollRepo.GetPayrollRecordByID(txCtx, req.ID)
		if err != nil {
			return err
		}
		if err := ensureDraft(record); err != nil {
			return err
		}

		breakdown := record.Breakdown
		if req.Bonus != nil {
			breakdown.Bonus = *req.Bonus
		}
		if req.OtherDeductions != nil {
			breakdown.OtherDeductions = *req.OtherDeductions
		}
		breakdown = breakdown.Recompute()
		if breakdown.NetSalary.IsNegative() {
			return fmt.Errorf("%w: net would be %s", payroll.ErrDeductionsExceedNet, breakdown.NetSalary.StringFixed(payroll.CurrencyPlaces))
		}

		if err := s.payrollRepo.UpdateBreakdown(txCtx, record.ID, breakdown); err != nil {
			return err
		}

		updated, err = s.payrollRepo.GetPayrollRecordByID(txCtx, record.ID)
		return err
	})
	if err != nil {
		return payroll.PayrollRecordResponse{}, err
	}

	return payroll.NewPayrollRecordResponse(updated), nil
}

func (s *PayrollServiceImpl) Delete(ctx context.Context, id string) error {
	return s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		record, err := s.payrollRepo.GetPayrollRecordByID(txCtx, id)
		if err != nil {
			return err
		}
		if record.Status.IsFinalized() {
			return payroll.ErrCannotDeleteFinalizedRecord
		}

		return s.payrollRepo.DeletePayrollRecord(txCtx, id)
	})
}

// ========== LIFECYCLE ==========

func (s *PayrollServiceImpl) Confirm(ctx context.Context, req payroll.ConfirmPayrollRequest) ([]payroll.PayrollRecordResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	records, err := s.transition(ctx, req.RecordIDs, payroll.PayrollStatusConfirmed, nil)
	if err != nil {
		return nil, err
	}

	slog.Info("Payroll records confirmed", "count", len(records))
	return mapToRecordResponses(records), nil
}

func (s *PayrollServiceImpl) MarkPaid(ctx context.Context, req payroll.MarkPaidRequest) ([]payroll.PayrollRecordResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	records, err := s.transition(ctx, req.RecordIDs, payroll.PayrollStatusPaid, &req.PaidBy)
	if err != nil {
		return nil, err
	}

	slog.Info("Payroll records paid", "count", len(records), "paid_by", req.PaidBy)
	return mapToRecordResponses(records), nil
}

// transition moves every record to next or none of them.
func (s *PayrollServiceImpl) transition(ctx context.Context, ids []string, next payroll.PayrollStatus, paidBy *string) ([]payroll.PayrollRecord, error) {
	var paidAt *time.Time
	if next == payroll.PayrollStatusPaid {
		now := s.now().UTC()
		paidAt = &now
	}

	records := make([]payroll.PayrollRecord, 0, len(ids))
	err := s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		for _, id := range ids {
			record, err := s.payrollRepo.GetPayrollRecordByID(txCtx, id)
			if err != nil {
				return fmt.Errorf("record %s: %w", id, err)
			}
			if !record.Status.CanTransitionTo(next) {
				return fmt.Errorf("%w: record %s is %s, cannot become %s",
					payroll.ErrInvalidStatusTransition, id, record.Status, next)
			}

			if err := s.payrollRepo.UpdateStatus(txCtx, id, next, paidAt, paidBy); err != nil {
				return fmt.Errorf("record %s: %w", id, err)
			}

			updated, err := s.payrollRepo.GetPayrollRecordByID(txCtx, id)
			if err != nil {
				return fmt.Errorf("record %s: %w", id, err)
			}
			records = append(records, updated)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return records, nil
}

// ========== REPORTING ==========

func (s *PayrollServiceImpl) Summary(ctx context.Context, req payroll.SummaryRequest) (payroll.PayrollSummaryResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.PayrollSummaryResponse{}, err
	}
	period, err := req.Period()
	if err != nil {
		return payroll.PayrollSummaryResponse{}, err
	}

	totals, employeeCount, err := s.payrollRepo.GetStatusTotals(ctx, period)
	if err != nil {
		return payroll.PayrollSummaryResponse{}, err
	}

	byStatus := make(map[payroll.PayrollStatus]payroll.StatusTotals, len(totals))
	for _, t := range totals {
		byStatus[t.Status] = t
	}

	resp := payroll.PayrollSummaryResponse{
		PeriodStart:   period.Start.Format(payroll.DateLayout),
		PeriodEnd:     period.End.Format(payroll.DateLayout),
		TotalGross:    decimal.Zero,
		TotalNDFL:     decimal.Zero,
		TotalNet:      decimal.Zero,
		ByStatus:      make([]payroll.StatusTotalsResponse, 0, len(payroll.PayrollStatusValues)),
		EmployeeCount: employeeCount,
	}
	// Every status is reported, zero when no record has it
	for _, status := range payroll.PayrollStatusValues {
		t, ok := byStatus[payroll.PayrollStatus(status)]
		if !ok {
			t = payroll.StatusTotals{TotalGross: decimal.Zero, TotalNDFL: decimal.Zero, TotalNet: decimal.Zero}
		}

		resp.TotalRecords += t.Count
		resp.TotalGross = resp.TotalGross.Add(t.TotalGross)
		resp.TotalNDFL = resp.TotalNDFL.Add(t.TotalNDFL)
		resp.TotalNet = resp.TotalNet.Add(t.TotalNet)
		resp.ByStatus = append(resp.ByStatus, payroll.StatusTotalsResponse{
			Status:     status,
			Count:      t.Count,
			TotalGross: t.TotalGross,
			TotalNDFL:  t.TotalNDFL,
			TotalNet:   t.TotalNet,
		})
	}

	return resp, nil
}

// GeneratePayslip renders the record as PDF and stores it. Drafts get a slip
// too, marked with their status.
func (s *PayrollServiceImpl) GeneratePayslip(ctx context.Context, id string) (payroll.PayslipResponse, error) {
	record, err := s.payrollRepo.GetPayrollRecordByID(ctx, id)
	if err != nil {
		return payroll.PayslipResponse{}, err
	}

	slip := payslip.Payslip{
		Organization: s.payslip.Organization,
		RecordID:     record.ID,
		EmployeeName: derefOr(record.EmployeeName, record.EmployeeID),
		Position:     derefOr(record.Position, "-"),
		Period:       record.Period(),
		Status:       record.Status,
		HourlyRate:   record.HourlyRate,
		Breakdown:    record.Breakdown,
		Currency:     s.payslip.Currency,
		PaidAt:       record.PaidAt,
		GeneratedAt:  s.now().UTC(),
	}

	var buf bytes.Buffer
	if err := payslip.Render(&buf, slip); err != nil {
		return payroll.PayslipResponse{}, err
	}

	path, err := s.fileStorage.Upload(ctx, &buf, payslip.FileName(slip), payslip.ContentType)
	if err != nil {
		return payroll.PayslipResponse{}, fmt.Errorf("failed to store payslip: %w", err)
	}
	url, err := s.fileStorage.GetURL(ctx, path)
	if err != nil {
		return payroll.PayslipResponse{}, fmt.Errorf("failed to resolve payslip url: %w", err)
	}

	slog.Info("Payslip generated", "record_id", record.ID, "path", path)

	return payroll.PayslipResponse{RecordID: record.ID, Path: path, URL: url}, nil
}

// ========== HELPERS ==========

func (s *PayrollServiceImpl) buildRecord(emp employee.Employee, period payroll.PayPeriod, createdBy *string) (payroll.PayrollRecord, error) {
	breakdown, err := s.calculator.Calculate(emp.PayConfiguration(), period)
	if err != nil {
		return payroll.PayrollRecord{}, fmt.Errorf("employee %s: %w", emp.ID, err)
	}

	return payroll.PayrollRecord{
		EmployeeID:  emp.ID,
		PeriodStart: period.Start,
		PeriodEnd:   period.End,
		Status:      payroll.PayrollStatusDraft,
		HourlyRate:  emp.HourlyRate,
		Breakdown:   breakdown,
		CreatedBy:   createdBy,
	}, nil
}

func (s *PayrollServiceImpl) recordExists(ctx context.Context, employeeID string, period payroll.PayPeriod) (bool, error) {
	_, err := s.payrollRepo.GetPayrollRecordByEmployeePeriod(ctx, employeeID, period)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, payroll.ErrPayrollRecordNotFound) {
		return false, nil
	}
	return false, fmt.Errorf("failed to check existing payroll record: %w", err)
}

func (s *PayrollServiceImpl) employeesForGeneration(ctx context.Context, ids []string) ([]employee.Employee, error) {
	if len(ids) == 0 {
		employees, err := s.employeeRepo.GetAll(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get employees: %w", err)
		}
		return employees, nil
	}

	employees, err := s.employeeRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get employees: %w", err)
	}

	found := make(map[string]bool, len(employees))
	for _, emp := range employees {
		found[emp.ID] = true
	}
	for _, id := range ids {
		if !found[id] {
			return nil, fmt.Errorf("%w: %s", employee.ErrEmployeeNotFound, id)
		}
	}
	return employees, nil
}

func ensureDraft(record payroll.PayrollRecord) error {
	switch record.Status {
	case payroll.PayrollStatusDraft:
		return nil
	case payroll.PayrollStatusPaid:
		return payroll.ErrPayrollRecordAlreadyPaid
	default:
		return payroll.ErrPayrollRecordNotDraft
	}
}

func totalPages(total int64, limit int) int64 {
	if limit <= 0 {
		return 0
	}
	return (total + int64(limit) - 1) / int64(limit)
}

func derefOr(s *string, fallback string) string {
	if s == nil || *s == "" {
		return fallback
	}
	return *s
}

func nonNilDays(days []int) []int {
	if days == nil {
		return []int{}
	}
	return days
}

func mapToRecordResponses(records []payroll.PayrollRecord) []payroll.PayrollRecordResponse {
	responses := make([]payroll.PayrollRecordResponse, len(records))
	for i, r := range records {
		responses[i] = payroll.NewPayrollRecordResponse(r)
	}
	return responses
}
