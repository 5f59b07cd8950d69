package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/nemopark/payroll-backend-go/internal/domain/employee"
	"github.com/nemopark/payroll-backend-go/internal/domain/payroll"
	"github.com/nemopark/payroll-backend-go/internal/pkg/database"
)

type employeeRepositoryImpl struct {
	db *database.DB
}

func NewEmployeeRepository(db *database.DB) employee.EmployeeRepository {
	return &employeeRepositoryImpl{db: db}
}

const employeeColumns = `
	id, user_id, first_name, last_name, position, hourly_rate,
	shift_start, shift_end, break_minutes, work_days, hire_date,
	phone, email, created_at, updated_at
`

func scanEmployee(row pgx.Row) (employee.Employee, error) {
	var (
		e          employee.Employee
		shiftStart pgtype.Time
		shiftEnd   pgtype.Time
		workDays   []int16
	)
	err := row.Scan(
		&e.ID, &e.UserID, &e.FirstName, &e.LastName, &e.Position, &e.HourlyRate,
		&shiftStart, &shiftEnd, &e.BreakMinutes, &workDays, &e.HireDate,
		&e.Phone, &e.Email, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return employee.Employee{}, err
	}

	e.ShiftStart = clockFromPg(shiftStart)
	e.ShiftEnd = clockFromPg(shiftEnd)
	e.WorkDays = make([]int, len(workDays))
	for i, d := range workDays {
		e.WorkDays[i] = int(d)
	}
	return e, nil
}

func clockToPg(c payroll.ClockTime) pgtype.Time {
	return pgtype.Time{Microseconds: int64(c) * 60_000_000, Valid: true}
}

func clockFromPg(t pgtype.Time) payroll.ClockTime {
	if !t.Valid {
		return 0
	}
	return payroll.ClockTime(t.Microseconds / 60_000_000)
}

func workDaysToPg(days []int) []int16 {
	out := make([]int16, len(days))
	for i, d := range days {
		out[i] = int16(d)
	}
	return out
}

// Create implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) Create(ctx context.Context, newEmployee employee.Employee) (employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	id, err := uuid.NewV7()
	if err != nil {
		return employee.Employee{}, fmt.Errorf("failed to generate employee id: %w", err)
	}

	query := `
		INSERT INTO employees (
			id, user_id, first_name, last_name, position, hourly_rate,
			shift_start, shift_end, break_minutes, work_days, hire_date, phone, email
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING ` + employeeColumns

	created, err := scanEmployee(q.QueryRow(ctx, query,
		id.String(), newEmployee.UserID, newEmployee.FirstName, newEmployee.LastName, newEmployee.Position, newEmployee.HourlyRate,
		clockToPg(newEmployee.ShiftStart), clockToPg(newEmployee.ShiftEnd), newEmployee.BreakMinutes,
		workDaysToPg(newEmployee.WorkDays), newEmployee.HireDate, newEmployee.Phone, newEmployee.Email,
	))
	if err != nil {
		if isUniqueViolation(err, "uk_employees_email") {
			return employee.Employee{}, employee.ErrEmailExists
		}
		return employee.Employee{}, fmt.Errorf("failed to create employee: %w", err)
	}

	return created, nil
}

// GetByID implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + employeeColumns + ` FROM employees WHERE id = $1`

	e, err := scanEmployee(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidText(err) {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee with id %s: %w", id, err)
	}

	return e, nil
}

// GetByIDs implements employee.EmployeeRepository. Unknown ids are skipped.
func (r *employeeRepositoryImpl) GetByIDs(ctx context.Context, ids []string) ([]employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + employeeColumns + ` FROM employees WHERE id = ANY($1::uuid[]) ORDER BY last_name, first_name`
	return r.queryEmployees(ctx, q, query, ids)
}

// GetAll implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) GetAll(ctx context.Context) ([]employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + employeeColumns + ` FROM employees ORDER BY last_name, first_name`
	return r.queryEmployees(ctx, q, query)
}

func (r *employeeRepositoryImpl) queryEmployees(ctx context.Context, q database.Querier, query string, args ...any) ([]employee.Employee, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query employees: %w", err)
	}
	defer rows.Close()

	var employees []employee.Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		employees = append(employees, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate employees: %w", err)
	}

	return employees, nil
}

// List implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) List(ctx context.Context, filter employee.EmployeeFilter) ([]employee.Employee, int64, error) {
	q := GetQuerier(ctx, r.db)

	whereClause := "WHERE 1 = 1"
	args := []any{}
	argIdx := 1

	if filter.Position != nil {
		whereClause += fmt.Sprintf(" AND position = $%d", argIdx)
		args = append(args, *filter.Position)
		argIdx++
	}
	if filter.Search != nil && *filter.Search != "" {
		whereClause += fmt.Sprintf(" AND (first_name ILIKE $%d OR last_name ILIKE $%d)", argIdx, argIdx)
		args = append(args, "%"+*filter.Search+"%")
		argIdx++
	}

	var totalCount int64
	if err := q.QueryRow(ctx, "SELECT COUNT(*) FROM employees "+whereClause, args...).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("failed to count employees: %w", err)
	}

	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	offset := (filter.Page - 1) * filter.Limit

	query := fmt.Sprintf(`
		SELECT %s
		FROM employees
		%s
		ORDER BY last_name, first_name
		LIMIT $%d OFFSET $%d
	`, employeeColumns, whereClause, argIdx, argIdx+1)
	args = append(args, filter.Limit, offset)

	employees, err := r.queryEmployees(ctx, q, query, args...)
	if err != nil {
		return nil, 0, err
	}

	return employees, totalCount, nil
}

// UpdatePayProfile implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) UpdatePayProfile(ctx context.Context, id string, profile employee.PayProfile) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE employees
		SET hourly_rate = $2, shift_start = $3, shift_end = $4, break_minutes = $5, work_days = $6,
			updated_at = NOW()
		WHERE id = $1
		RETURNING id
	`

	var updatedID string
	err := q.QueryRow(ctx, query, id,
		profile.HourlyRate, clockToPg(profile.ShiftStart), clockToPg(profile.ShiftEnd),
		profile.BreakMinutes, workDaysToPg(profile.WorkDays),
	).Scan(&updatedID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidText(err) {
			return employee.ErrEmployeeNotFound
		}
		return fmt.Errorf("failed to update pay profile for employee with id %s: %w", id, err)
	}

	return nil
}

// Delete implements employee.EmployeeRepository. Dependent rows must be
// removed first; foreign keys do not cascade.
func (r *employeeRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	var deletedID string
	err := q.QueryRow(ctx, `DELETE FROM employees WHERE id = $1 RETURNING id`, id).Scan(&deletedID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidText(err) {
			return employee.ErrEmployeeNotFound
		}
		if isForeignKeyViolation(err) {
			return fmt.Errorf("employee with id %s is still referenced: %w", id, err)
		}
		return fmt.Errorf("failed to delete employee with id %s: %w", id, err)
	}

	return nil
}
