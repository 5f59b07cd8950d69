package payroll

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/nemopark/payroll-backend-go/internal/domain/employee"
	"github.com/nemopark/payroll-backend-go/internal/domain/payroll"
	"github.com/shopspring/decimal"
)

// passthroughTx runs fn directly; the fakes below do not roll back.
type passthroughTx struct {
	calls int
}

func (t *passthroughTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	t.calls++
	return fn(ctx)
}

// ===== EMPLOYEE REPOSITORY FAKE =====

type fakeEmployeeRepo struct {
	mu        sync.Mutex
	employees map[string]employee.Employee
}

func newFakeEmployeeRepo(employees ...employee.Employee) *fakeEmployeeRepo {
	r := &fakeEmployeeRepo{employees: map[string]employee.Employee{}}
	for _, e := range employees {
		r.employees[e.ID] = e
	}
	return r
}

func (r *fakeEmployeeRepo) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.employees[id]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return e, nil
}

func (r *fakeEmployeeRepo) GetByIDs(ctx context.Context, ids []string) ([]employee.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []employee.Employee
	for _, id := range ids {
		if e, ok := r.employees[id]; ok {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeEmployeeRepo) GetAll(ctx context.Context) ([]employee.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]employee.Employee, 0, len(r.employees))
	for _, e := range r.employees {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeEmployeeRepo) List(ctx context.Context, filter employee.EmployeeFilter) ([]employee.Employee, int64, error) {
	all, _ := r.GetAll(ctx)
	return all, int64(len(all)), nil
}

func (r *fakeEmployeeRepo) Create(ctx context.Context, newEmployee employee.Employee) (employee.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.employees[newEmployee.ID] = newEmployee
	return newEmployee, nil
}

func (r *fakeEmployeeRepo) UpdatePayProfile(ctx context.Context, id string, profile employee.PayProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.employees[id]
	if !ok {
		return employee.ErrEmployeeNotFound
	}
	e.HourlyRate = profile.HourlyRate
	e.ShiftStart, e.ShiftEnd = profile.ShiftStart, profile.ShiftEnd
	e.BreakMinutes = profile.BreakMinutes
	e.WorkDays = profile.WorkDays
	r.employees[id] = e
	return nil
}

func (r *fakeEmployeeRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.employees[id]; !ok {
		return employee.ErrEmployeeNotFound
	}
	delete(r.employees, id)
	return nil
}

// ===== PAYROLL REPOSITORY FAKE =====

type fakePayrollRepo struct {
	mu        sync.Mutex
	seq       int
	records   map[string]payroll.PayrollRecord
	employees *fakeEmployeeRepo
}

func newFakePayrollRepo(employees *fakeEmployeeRepo) *fakePayrollRepo {
	return &fakePayrollRepo{records: map[string]payroll.PayrollRecord{}, employees: employees}
}

func (r *fakePayrollRepo) CreatePayrollRecord(ctx context.Context, record payroll.PayrollRecord) (payroll.PayrollRecord, error) {
	emp, err := r.employees.GetByID(ctx, record.EmployeeID)
	if err != nil {
		return payroll.PayrollRecord{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.records {
		if existing.EmployeeID == record.EmployeeID &&
			existing.PeriodStart.Equal(record.PeriodStart) && existing.PeriodEnd.Equal(record.PeriodEnd) {
			return payroll.PayrollRecord{}, payroll.ErrPayrollRecordAlreadyExists
		}
	}

	r.seq++
	now := time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC)
	record.ID = fmt.Sprintf("rec-%03d", r.seq)
	record.CreatedAt, record.UpdatedAt = now, now
	name := emp.FullName()
	position := string(emp.Position)
	record.EmployeeName, record.Position = &name, &position
	r.records[record.ID] = record
	return record, nil
}

func (r *fakePayrollRepo) GetPayrollRecordByID(ctx context.Context, id string) (payroll.PayrollRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[id]
	if !ok {
		return payroll.PayrollRecord{}, payroll.ErrPayrollRecordNotFound
	}
	return rec, nil
}

func (r *fakePayrollRepo) GetPayrollRecordByEmployeePeriod(ctx context.Context, employeeID string, period payroll.PayPeriod) (payroll.PayrollRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.records {
		if rec.EmployeeID == employeeID && rec.PeriodStart.Equal(period.Start) && rec.PeriodEnd.Equal(period.End) {
			return rec, nil
		}
	}
	return payroll.PayrollRecord{}, payroll.ErrPayrollRecordNotFound
}

func (r *fakePayrollRepo) ListPayrollRecords(ctx context.Context, filter payroll.PayrollFilter) ([]payroll.PayrollRecord, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var matched []payroll.PayrollRecord
	for _, rec := range r.records {
		if filter.EmployeeID != nil && rec.EmployeeID != *filter.EmployeeID {
			continue
		}
		if filter.Status != nil && string(rec.Status) != *filter.Status {
			continue
		}
		matched = append(matched, rec)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })

	total := int64(len(matched))
	start := (filter.Page - 1) * filter.Limit
	if start >= len(matched) {
		return nil, total, nil
	}
	end := min(start+filter.Limit, len(matched))
	return matched[start:end], total, nil
}

func (r *fakePayrollRepo) UpdateBreakdown(ctx context.Context, id string, breakdown payroll.PayBreakdown) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[id]
	if !ok || rec.Status != payroll.PayrollStatusDraft {
		return payroll.ErrPayrollRecordNotDraft
	}
	rec.Breakdown = breakdown
	r.records[id] = rec
	return nil
}

func (r *fakePayrollRepo) UpdateStatus(ctx context.Context, id string, status payroll.PayrollStatus, paidAt *time.Time, paidBy *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[id]
	if !ok {
		return payroll.ErrPayrollRecordNotFound
	}
	rec.Status = status
	if paidAt != nil {
		rec.PaidAt = paidAt
	}
	if paidBy != nil {
		rec.PaidBy = paidBy
	}
	r.records[id] = rec
	return nil
}

func (r *fakePayrollRepo) DeletePayrollRecord(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.records[id]; !ok {
		return payroll.ErrPayrollRecordNotFound
	}
	delete(r.records, id)
	return nil
}

func (r *fakePayrollRepo) CountFinalizedByEmployee(ctx context.Context, employeeID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, rec := range r.records {
		if rec.EmployeeID == employeeID && rec.Status.IsFinalized() {
			count++
		}
	}
	return count, nil
}

func (r *fakePayrollRepo) DeleteDraftsByEmployee(ctx context.Context, employeeID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var deleted int64
	for id, rec := range r.records {
		if rec.EmployeeID == employeeID && rec.Status == payroll.PayrollStatusDraft {
			delete(r.records, id)
			deleted++
		}
	}
	return deleted, nil
}

func (r *fakePayrollRepo) GetStatusTotals(ctx context.Context, period payroll.PayPeriod) ([]payroll.StatusTotals, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	totals := map[payroll.PayrollStatus]*payroll.StatusTotals{}
	employees := map[string]bool{}
	for _, rec := range r.records {
		if rec.PeriodStart.Before(period.Start) || rec.PeriodEnd.After(period.End) {
			continue
		}
		t, ok := totals[rec.Status]
		if !ok {
			t = &payroll.StatusTotals{Status: rec.Status, TotalGross: decimal.Zero, TotalNDFL: decimal.Zero, TotalNet: decimal.Zero}
			totals[rec.Status] = t
		}
		t.Count++
		t.TotalGross = t.TotalGross.Add(rec.Breakdown.GrossSalary)
		t.TotalNDFL = t.TotalNDFL.Add(rec.Breakdown.NDFLTax)
		t.TotalNet = t.TotalNet.Add(rec.Breakdown.NetSalary)
		employees[rec.EmployeeID] = true
	}

	out := make([]payroll.StatusTotals, 0, len(totals))
	for _, t := range totals {
		out = append(out, *t)
	}
	return out, len(employees), nil
}
