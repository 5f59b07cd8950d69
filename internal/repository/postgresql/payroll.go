package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/nemopark/payroll-backend-go/internal/domain/payroll"
	"github.com/nemopark/payroll-backend-go/internal/pkg/database"
)

type payrollRepository struct {
	db *database.DB
}

func NewPayrollRepository(db *database.DB) payroll.PayrollRepository {
	return &payrollRepository{db: db}
}

const payrollRecordColumns = `
	pr.id, pr.employee_id, pr.period_start, pr.period_end, pr.status,
	pr.work_days_count, pr.hours_per_shift, pr.total_hours, pr.regular_hours, pr.overtime_hours,
	pr.hourly_rate, pr.base_salary, pr.overtime_pay, pr.bonus, pr.gross_salary,
	pr.ndfl_tax, pr.other_deductions, pr.net_salary,
	pr.created_by, pr.paid_at, pr.paid_by, pr.created_at, pr.updated_at,
	e.first_name || ' ' || e.last_name AS employee_name, e.position
`

func scanPayrollRecord(row pgx.Row) (payroll.PayrollRecord, error) {
	var rec payroll.PayrollRecord
	b := &rec.Breakdown
	err := row.Scan(
		&rec.ID, &rec.EmployeeID, &rec.PeriodStart, &rec.PeriodEnd, &rec.Status,
		&b.WorkDaysCount, &b.HoursPerShift, &b.TotalHours, &b.RegularHours, &b.OvertimeHours,
		&rec.HourlyRate, &b.BaseSalary, &b.OvertimePay, &b.Bonus, &b.GrossSalary,
		&b.NDFLTax, &b.OtherDeductions, &b.NetSalary,
		&rec.CreatedBy, &rec.PaidAt, &rec.PaidBy, &rec.CreatedAt, &rec.UpdatedAt,
		&rec.EmployeeName, &rec.Position,
	)
	return rec, err
}

// ========== PAYROLL RECORDS ==========

func (r *payrollRepository) CreatePayrollRecord(ctx context.Context, record payroll.PayrollRecord) (payroll.PayrollRecord, error) {
	q := GetQuerier(ctx, r.db)

	id, err := uuid.NewV7()
	if err != nil {
		return payroll.PayrollRecord{}, fmt.Errorf("failed to generate payroll record id: %w", err)
	}
	if record.Status == "" {
		record.Status = payroll.PayrollStatusDraft
	}

	b := record.Breakdown
	query := `
		WITH pr AS (
			INSERT INTO payroll_records (
				id, employee_id, period_start, period_end, status,
				work_days_count, hours_per_shift, total_hours, regular_hours, overtime_hours,
				hourly_rate, base_salary, overtime_pay, bonus, gross_salary,
				ndfl_tax, other_deductions, net_salary, created_by
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
			RETURNING *
		)
		SELECT ` + payrollRecordColumns + `
		FROM pr
		JOIN employees e ON pr.employee_id = e.id
	`

	rec, err := scanPayrollRecord(q.QueryRow(ctx, query,
		id.String(), record.EmployeeID, record.PeriodStart, record.PeriodEnd, record.Status,
		b.WorkDaysCount, b.HoursPerShift, b.TotalHours, b.RegularHours, b.OvertimeHours,
		record.HourlyRate, b.BaseSalary, b.OvertimePay, b.Bonus, b.GrossSalary,
		b.NDFLTax, b.OtherDeductions, b.NetSalary, record.CreatedBy,
	))
	if err != nil {
		if isUniqueViolation(err, "uk_payroll_employee_period") {
			return payroll.PayrollRecord{}, payroll.ErrPayrollRecordAlreadyExists
		}
		if isForeignKeyViolation(err) {
			return payroll.PayrollRecord{}, fmt.Errorf("employee %s does not exist: %w", record.EmployeeID, err)
		}
		return payroll.PayrollRecord{}, fmt.Errorf("failed to create payroll record: %w", err)
	}

	return rec, nil
}

func (r *payrollRepository) GetPayrollRecordByID(ctx context.Context, id string) (payroll.PayrollRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + payrollRecordColumns + `
		FROM payroll_records pr
		JOIN employees e ON pr.employee_id = e.id
		WHERE pr.id = $1
	`

	rec, err := scanPayrollRecord(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidText(err) {
			return payroll.PayrollRecord{}, payroll.ErrPayrollRecordNotFound
		}
		return payroll.PayrollRecord{}, fmt.Errorf("failed to get payroll record: %w", err)
	}

	return rec, nil
}

func (r *payrollRepository) GetPayrollRecordByEmployeePeriod(ctx context.Context, employeeID string, period payroll.PayPeriod) (payroll.PayrollRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + payrollRecordColumns + `
		FROM payroll_records pr
		JOIN employees e ON pr.employee_id = e.id
		WHERE pr.employee_id = $1 AND pr.period_start = $2 AND pr.period_end = $3
	`

	rec, err := scanPayrollRecord(q.QueryRow(ctx, query, employeeID, period.Start, period.End))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidText(err) {
			return payroll.PayrollRecord{}, payroll.ErrPayrollRecordNotFound
		}
		return payroll.PayrollRecord{}, fmt.Errorf("failed to get payroll record by period: %w", err)
	}

	return rec, nil
}

func (r *payrollRepository) ListPayrollRecords(ctx context.Context, filter payroll.PayrollFilter) ([]payroll.PayrollRecord, int64, error) {
	q := GetQuerier(ctx, r.db)

	baseQuery := `
		FROM payroll_records pr
		JOIN employees e ON pr.employee_id = e.id
		WHERE 1 = 1
	`
	args := []any{}
	argIdx := 1

	if filter.EmployeeID != nil {
		baseQuery += fmt.Sprintf(" AND pr.employee_id = $%d", argIdx)
		args = append(args, *filter.EmployeeID)
		argIdx++
	}
	if filter.Status != nil {
		baseQuery += fmt.Sprintf(" AND pr.status = $%d", argIdx)
		args = append(args, *filter.Status)
		argIdx++
	}
	if filter.PeriodFrom != nil {
		baseQuery += fmt.Sprintf(" AND pr.period_start >= $%d::date", argIdx)
		args = append(args, *filter.PeriodFrom)
		argIdx++
	}
	if filter.PeriodTo != nil {
		baseQuery += fmt.Sprintf(" AND pr.period_end <= $%d::date", argIdx)
		args = append(args, *filter.PeriodTo)
		argIdx++
	}

	// Count query
	var totalCount int64
	countQuery := "SELECT COUNT(*) " + baseQuery
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("failed to count payroll records: %w", err)
	}

	// Pagination
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	offset := (filter.Page - 1) * filter.Limit

	selectQuery := fmt.Sprintf(`
		SELECT %s
		%s
		ORDER BY pr.period_start DESC, e.last_name, e.first_name
		LIMIT $%d OFFSET $%d
	`, payrollRecordColumns, baseQuery, argIdx, argIdx+1)

	args = append(args, filter.Limit, offset)

	rows, err := q.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list payroll records: %w", err)
	}
	defer rows.Close()

	var records []payroll.PayrollRecord
	for rows.Next() {
		rec, err := scanPayrollRecord(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan payroll record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate payroll records: %w", err)
	}

	return records, totalCount, nil
}

// UpdateBreakdown overwrites the money columns of a draft record.
func (r *payrollRepository) UpdateBreakdown(ctx context.Context, id string, breakdown payroll.PayBreakdown) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE payroll_records
		SET bonus = $2, other_deductions = $3, gross_salary = $4, ndfl_tax = $5, net_salary = $6,
			updated_at = NOW()
		WHERE id = $1 AND status = 'draft'
		RETURNING id
	`

	var updatedID string
	err := q.QueryRow(ctx, query, id,
		breakdown.Bonus, breakdown.OtherDeductions, breakdown.GrossSalary, breakdown.NDFLTax, breakdown.NetSalary,
	).Scan(&updatedID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.ErrPayrollRecordNotDraft
		}
		return fmt.Errorf("failed to update payroll breakdown: %w", err)
	}

	return nil
}

func (r *payrollRepository) UpdateStatus(ctx context.Context, id string, status payroll.PayrollStatus, paidAt *time.Time, paidBy *string) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE payroll_records
		SET status = $2, paid_at = COALESCE($3, paid_at), paid_by = COALESCE($4, paid_by), updated_at = NOW()
		WHERE id = $1
		RETURNING id
	`

	var updatedID string
	err := q.QueryRow(ctx, query, id, status, paidAt, paidBy).Scan(&updatedID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.ErrPayrollRecordNotFound
		}
		return fmt.Errorf("failed to update payroll status: %w", err)
	}

	return nil
}

func (r *payrollRepository) DeletePayrollRecord(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	query := `DELETE FROM payroll_records WHERE id = $1 RETURNING id`

	var deletedID string
	err := q.QueryRow(ctx, query, id).Scan(&deletedID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidText(err) {
			return payroll.ErrPayrollRecordNotFound
		}
		return fmt.Errorf("failed to delete payroll record: %w", err)
	}

	return nil
}

// ========== EMPLOYEE LIFECYCLE ==========

func (r *payrollRepository) CountFinalizedByEmployee(ctx context.Context, employeeID string) (int, error) {
	q := GetQuerier(ctx, r.db)

	var count int
	err := q.QueryRow(ctx, `
		SELECT COUNT(*) FROM payroll_records
		WHERE employee_id = $1 AND status IN ('confirmed', 'paid')
	`, employeeID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count finalized payroll records: %w", err)
	}

	return count, nil
}

func (r *payrollRepository) DeleteDraftsByEmployee(ctx context.Context, employeeID string) (int64, error) {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM payroll_records WHERE employee_id = $1 AND status = 'draft'`, employeeID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete draft payroll records: %w", err)
	}

	return tag.RowsAffected(), nil
}

// ========== AGGREGATIONS ==========

func (r *payrollRepository) GetStatusTotals(ctx context.Context, period payroll.PayPeriod) ([]payroll.StatusTotals, int, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT status, COUNT(*), COALESCE(SUM(gross_salary), 0), COALESCE(SUM(ndfl_tax), 0), COALESCE(SUM(net_salary), 0)
		FROM payroll_records
		WHERE period_start >= $1 AND period_end <= $2
		GROUP BY status
		ORDER BY CASE status WHEN 'draft' THEN 1 WHEN 'confirmed' THEN 2 ELSE 3 END
	`

	rows, err := q.Query(ctx, query, period.Start, period.End)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to aggregate payroll records: %w", err)
	}
	defer rows.Close()

	var totals []payroll.StatusTotals
	for rows.Next() {
		var t payroll.StatusTotals
		if err := rows.Scan(&t.Status, &t.Count, &t.TotalGross, &t.TotalNDFL, &t.TotalNet); err != nil {
			return nil, 0, fmt.Errorf("failed to scan payroll totals: %w", err)
		}
		totals = append(totals, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate payroll totals: %w", err)
	}

	var employeeCount int
	err = q.QueryRow(ctx, `
		SELECT COUNT(DISTINCT employee_id)
		FROM payroll_records
		WHERE period_start >= $1 AND period_end <= $2
	`, period.Start, period.End).Scan(&employeeCount)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count payroll employees: %w", err)
	}

	return totals, employeeCount, nil
}
