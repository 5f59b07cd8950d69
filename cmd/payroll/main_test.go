package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/nemopark/payroll-backend-go/internal/config"
	"github.com/nemopark/payroll-backend-go/internal/domain/employee"
	"github.com/nemopark/payroll-backend-go/internal/domain/payroll"
	"github.com/nemopark/payroll-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEmployeeService struct {
	employee.EmployeeService
	created employee.CreateEmployeeRequest
	updated employee.UpdatePayProfileRequest
}

func (f *fakeEmployeeService) Create(ctx context.Context, req employee.CreateEmployeeRequest) (employee.EmployeeResponse, error) {
	f.created = req
	return employee.EmployeeResponse{ID: "emp-1", FirstName: req.FirstName}, nil
}

func (f *fakeEmployeeService) UpdatePayProfile(ctx context.Context, req employee.UpdatePayProfileRequest) (employee.EmployeeResponse, error) {
	f.updated = req
	return employee.EmployeeResponse{ID: req.ID}, nil
}

type fakePayrollService struct {
	payroll.PayrollService
	generated payroll.GeneratePayrollRequest
	adjusted  payroll.UpdateAdjustmentsRequest
	err       error
}

func (f *fakePayrollService) Generate(ctx context.Context, req payroll.GeneratePayrollRequest) (payroll.GeneratePayrollResponse, error) {
	f.generated = req
	return payroll.GeneratePayrollResponse{PeriodStart: req.PeriodStart, PeriodEnd: req.PeriodEnd}, f.err
}

func (f *fakePayrollService) UpdateAdjustments(ctx context.Context, req payroll.UpdateAdjustmentsRequest) (payroll.PayrollRecordResponse, error) {
	f.adjusted = req
	return payroll.PayrollRecordResponse{ID: req.ID}, nil
}

func newTestApp() (*app, *fakeEmployeeService, *fakePayrollService, *bytes.Buffer) {
	out := &bytes.Buffer{}
	employees := &fakeEmployeeService{}
	payrolls := &fakePayrollService{}
	return &app{cfg: &config.Config{}, employees: employees, payroll: payrolls, out: out}, employees, payrolls, out
}

func decodeResponse(t *testing.T, out *bytes.Buffer) Response {
	t.Helper()
	var resp Response
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
	return resp
}

// ===== FLAG HELPERS TESTS =====

func TestSplitIDs(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, splitIDs("a, b,,c ,"))
	assert.Nil(t, splitIDs(""))
}

func TestParseWeekdays(t *testing.T) {
	days, err := parseWeekdays("1, 3,5")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3, 5}, days)

	days, err = parseWeekdays("none")
	require.NoError(t, err)
	assert.Equal(t, []int{}, days)

	_, err = parseWeekdays("mon,tue")
	var usage usageError
	assert.True(t, errors.As(err, &usage))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, parseLevel("warn"))
	assert.Equal(t, slog.LevelInfo, parseLevel("chatty"))
}

func TestFindCommand(t *testing.T) {
	cmd, ok := findCommand("generate")
	assert.True(t, ok)
	assert.Equal(t, "generate", cmd.name)

	_, ok = findCommand("launch")
	assert.False(t, ok)
}

// ===== COMMAND TESTS =====

func TestRunEmployeeCreate_OnlySetFlagsAreSent(t *testing.T) {
	a, employees, _, out := newTestApp()

	err := runEmployeeCreate(context.Background(), a, []string{
		"-first", "Olga", "-last", "Smirnova", "-position", "cashier", "-rate", "312.50", "-days", "none",
	})

	require.NoError(t, err)
	req := employees.created
	assert.Equal(t, "Olga", req.FirstName)
	assert.Equal(t, "cashier", req.Position)
	require.NotNil(t, req.HourlyRate)
	assert.True(t, decimal.RequireFromString("312.5").Equal(*req.HourlyRate))
	assert.NotNil(t, req.WorkDays)
	assert.Empty(t, req.WorkDays)
	assert.Nil(t, req.ShiftStart)
	assert.Nil(t, req.BreakMinutes)
	assert.Nil(t, req.Username)

	resp := decodeResponse(t, out)
	assert.True(t, resp.Success)
	assert.Equal(t, "Employee created", resp.Message)
}

func TestRunEmployeeCreate_OmittedDaysStayNil(t *testing.T) {
	a, employees, _, _ := newTestApp()

	err := runEmployeeCreate(context.Background(), a, []string{"-first", "A", "-last", "B", "-position", "user", "-break", "0"})

	require.NoError(t, err)
	assert.Nil(t, employees.created.WorkDays)
	require.NotNil(t, employees.created.BreakMinutes)
	assert.Equal(t, 0, *employees.created.BreakMinutes)
}

func TestRunEmployeeCreate_BadRate(t *testing.T) {
	a, _, _, _ := newTestApp()

	err := runEmployeeCreate(context.Background(), a, []string{"-first", "A", "-rate", "lots"})

	var usage usageError
	assert.True(t, errors.As(err, &usage))
}

func TestRunEmployeeUpdate_Days(t *testing.T) {
	a, employees, _, _ := newTestApp()

	err := runEmployeeUpdate(context.Background(), a, []string{"-id", "emp-1", "-days", "6,7"})

	require.NoError(t, err)
	require.NotNil(t, employees.updated.WorkDays)
	assert.Equal(t, []int{6, 7}, *employees.updated.WorkDays)
	assert.Nil(t, employees.updated.HourlyRate)
}

func TestRunGenerate(t *testing.T) {
	a, _, payrolls, out := newTestApp()

	err := runGenerate(context.Background(), a, []string{"-from", "2024-01-01", "-to", "2024-01-31", "-employees", "emp-1,emp-2"})

	require.NoError(t, err)
	assert.Equal(t, []string{"emp-1", "emp-2"}, payrolls.generated.EmployeeIDs)
	assert.Nil(t, payrolls.generated.CreatedBy)
	assert.True(t, decodeResponse(t, out).Success)
}

func TestRunGenerate_UnexpectedArgs(t *testing.T) {
	a, _, _, _ := newTestApp()

	err := runGenerate(context.Background(), a, []string{"-from", "2024-01-01", "extra"})

	var usage usageError
	assert.True(t, errors.As(err, &usage))
}

func TestRunAdjust(t *testing.T) {
	a, _, payrolls, _ := newTestApp()

	err := runAdjust(context.Background(), a, []string{"-id", "rec-1", "-bonus", "250"})

	require.NoError(t, err)
	assert.Equal(t, "rec-1", payrolls.adjusted.ID)
	require.NotNil(t, payrolls.adjusted.Bonus)
	assert.True(t, decimal.NewFromInt(250).Equal(*payrolls.adjusted.Bonus))
	assert.Nil(t, payrolls.adjusted.OtherDeductions)
}

func TestRunSchedule_Disabled(t *testing.T) {
	a, _, _, _ := newTestApp()

	err := runSchedule(context.Background(), a, nil)

	var usage usageError
	assert.True(t, errors.As(err, &usage))
}

// ===== CONNECTION TESTS =====

func countingOpener(a *app, calls *int, err error) {
	a.open = func(ctx context.Context) error {
		*calls++
		return err
	}
}

func TestCommands_FlagErrorsDoNotConnect(t *testing.T) {
	tests := []struct {
		name string
		run  func(ctx context.Context, a *app, args []string) error
		args []string
	}{
		{"migrate with an argument", runMigrate, []string{"now"}},
		{"unknown flag", runGenerate, []string{"-form", "2024-01-01"}},
		{"help", runList, []string{"-h"}},
		{"missing id", runGet, nil},
		{"bad rate", runEmployeeCreate, []string{"-first", "A", "-rate", "lots"}},
		{"bad days", runEmployeeUpdate, []string{"-id", "emp-1", "-days", "mon"}},
		{"schedule disabled", runSchedule, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, _, _, _ := newTestApp()
			calls := 0
			countingOpener(a, &calls, errors.New("database unreachable"))

			err := tt.run(context.Background(), a, tt.args)

			var usage usageError
			assert.True(t, errors.As(err, &usage), "got %v", err)
			assert.Zero(t, calls)
		})
	}
}

func TestCommands_ConnectOnce(t *testing.T) {
	a, _, payrolls, _ := newTestApp()
	calls := 0
	countingOpener(a, &calls, nil)

	require.NoError(t, runGenerate(context.Background(), a, []string{"-from", "2024-01-01", "-to", "2024-01-31"}))
	require.NoError(t, runAdjust(context.Background(), a, []string{"-id", "rec-1", "-bonus", "10"}))

	assert.Equal(t, 1, calls)
	assert.Equal(t, "rec-1", payrolls.adjusted.ID)
}

func TestCommands_ConnectFailure(t *testing.T) {
	a, _, payrolls, _ := newTestApp()
	calls := 0
	countingOpener(a, &calls, errors.New("database unreachable"))

	err := runAdjust(context.Background(), a, []string{"-id", "rec-1", "-bonus", "10"})

	require.EqualError(t, err, "database unreachable")
	assert.Equal(t, 1, calls)
	assert.Empty(t, payrolls.adjusted.ID)
}

// ===== OUTPUT TESTS =====

func TestErrorDetail(t *testing.T) {
	validationErr := validator.ValidationErrors{{Field: "period_end", Message: "is required"}}

	tests := []struct {
		name     string
		err      error
		wantCode string
		wantExit int
	}{
		{"validation", validationErr, codeValidation, 2},
		{"usage", usagef("bad flag"), codeBadRequest, 2},
		{"not found wrapped", fmt.Errorf("failed: %w", payroll.ErrPayrollRecordNotFound), codeNotFound, 2},
		{"conflict", employee.ErrEmployeeHasFinalizedPayroll, codeConflict, 2},
		{"no work days", payroll.ErrNoWorkDaysInPeriod, codeBadRequest, 2},
		{"deductions exceed net", fmt.Errorf("%w: net would be -5.00", payroll.ErrDeductionsExceedNet), codeConflict, 2},
		{"unknown", errors.New("connection reset"), codeInternal, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantCode, errorDetail(tt.err).Code)
			assert.Equal(t, tt.wantExit, exitCode(tt.err))
		})
	}
}

func TestFailure_WritesEnvelope(t *testing.T) {
	out := &bytes.Buffer{}
	err := validator.ValidationErrors{{Field: "period_end", Message: "is required"}}

	require.NoError(t, failure(out, err))

	resp := decodeResponse(t, out)
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, codeValidation, resp.Error.Code)
	assert.Equal(t, "is required", resp.Error.Details["period_end"])
}
