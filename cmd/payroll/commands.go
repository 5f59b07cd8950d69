package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/nemopark/payroll-backend-go/internal/domain/employee"
	"github.com/nemopark/payroll-backend-go/internal/domain/payroll"
	"github.com/nemopark/payroll-backend-go/internal/pkg/cron"
	"github.com/nemopark/payroll-backend-go/internal/pkg/database"
	"github.com/shopspring/decimal"
)

type usageError struct {
	msg string
}

func (e usageError) Error() string { return e.msg }

func usagef(format string, args ...any) error {
	return usageError{msg: fmt.Sprintf(format, args...)}
}

type command struct {
	name    string
	summary string
	run     func(ctx context.Context, a *app, args []string) error
}

var commands = []command{
	{"migrate", "apply pending database migrations", runMigrate},
	{"employee-create", "create an employee, optionally with login credentials", runEmployeeCreate},
	{"employee-update", "change an employee's rate, shift, break or work days", runEmployeeUpdate},
	{"employee-delete", "delete an employee with its drafts and login", runEmployeeDelete},
	{"employee-list", "list employees", runEmployeeList},
	{"workdays", "count scheduled work days in a period", runWorkDays},
	{"preview", "calculate pay for a period without saving", runPreview},
	{"create", "create one draft payroll record", runCreate},
	{"generate", "create draft records for many employees", runGenerate},
	{"adjust", "set bonus or other deductions on a draft", runAdjust},
	{"confirm", "confirm draft records", runConfirm},
	{"pay", "mark confirmed records as paid", runPay},
	{"delete", "delete a draft record", runDelete},
	{"get", "show one payroll record", runGet},
	{"list", "list payroll records", runList},
	{"summary", "totals per status for a period", runSummary},
	{"payslip", "render a record's payslip PDF", runPayslip},
	{"schedule", "run the automatic draft generation until interrupted", runSchedule},
}

func findCommand(name string) (command, bool) {
	for _, c := range commands {
		if c.name == name {
			return c, true
		}
	}
	return command{}, false
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "usage: payroll <command> [flags]")
	fmt.Fprintln(w)
	for _, c := range commands {
		fmt.Fprintf(w, "  %-16s %s\n", c.name, c.summary)
	}
}

// newFlagSet returns a flag set that reports parse errors instead of exiting.
func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func parseFlags(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			fs.SetOutput(os.Stderr)
			fs.PrintDefaults()
		}
		return usagef("%s: %v", fs.Name(), err)
	}
	if fs.NArg() > 0 {
		return usagef("%s: unexpected arguments %v", fs.Name(), fs.Args())
	}
	return nil
}

// isSet reports whether the flag was given on the command line, so that an
// explicit empty value can be told apart from an omitted one.
func isSet(fs *flag.FlagSet, name string) bool {
	set := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}

func optionalString(fs *flag.FlagSet, name, value string) *string {
	if !isSet(fs, name) {
		return nil
	}
	return &value
}

func optionalInt(fs *flag.FlagSet, name string, value int) *int {
	if !isSet(fs, name) {
		return nil
	}
	return &value
}

func optionalDecimal(fs *flag.FlagSet, name, value string) (*decimal.Decimal, error) {
	if !isSet(fs, name) {
		return nil, nil
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return nil, usagef("-%s: %q is not a number", name, value)
	}
	return &d, nil
}

// splitIDs splits a comma separated list, dropping blanks.
func splitIDs(value string) []string {
	var ids []string
	for _, part := range strings.Split(value, ",") {
		if id := strings.TrimSpace(part); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// parseWeekdays reads "1,2,3"; "none" or "" is an explicit empty schedule.
func parseWeekdays(value string) ([]int, error) {
	value = strings.TrimSpace(value)
	if value == "" || value == "none" {
		return []int{}, nil
	}
	var days []int
	for _, part := range strings.Split(value, ",") {
		d, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, usagef("-days: %q is not a weekday number", part)
		}
		days = append(days, d)
	}
	return days, nil
}

// ========== DATABASE ==========

func runMigrate(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("migrate")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	if err := a.connect(ctx); err != nil {
		return err
	}

	applied, err := database.Migrate(ctx, a.db)
	if err != nil {
		return err
	}
	if applied == nil {
		applied = []string{}
	}
	return success(a.out, fmt.Sprintf("%d migrations applied", len(applied)), map[string]any{"applied": applied})
}

// ========== EMPLOYEES ==========

func runEmployeeCreate(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("employee-create")
	firstName := fs.String("first", "", "first name")
	lastName := fs.String("last", "", "last name")
	position := fs.String("position", "", "user, cashier or admin")
	rate := fs.String("rate", "", "hourly rate (default by position)")
	shiftStart := fs.String("shift-start", "", "HH:MM (default 09:00)")
	shiftEnd := fs.String("shift-end", "", "HH:MM (default 18:00)")
	breakMinutes := fs.Int("break", 0, "unpaid break in minutes (default 60)")
	days := fs.String("days", "", "ISO weekdays, e.g. 1,2,3,4,5; none for no schedule")
	hireDate := fs.String("hire-date", "", "YYYY-MM-DD (default today)")
	phone := fs.String("phone", "", "phone number")
	email := fs.String("email", "", "email address")
	username := fs.String("username", "", "login username")
	password := fs.String("password", "", "login password")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	req := employee.CreateEmployeeRequest{
		FirstName:    *firstName,
		LastName:     *lastName,
		Position:     *position,
		ShiftStart:   optionalString(fs, "shift-start", *shiftStart),
		ShiftEnd:     optionalString(fs, "shift-end", *shiftEnd),
		BreakMinutes: optionalInt(fs, "break", *breakMinutes),
		HireDate:     optionalString(fs, "hire-date", *hireDate),
		Phone:        optionalString(fs, "phone", *phone),
		Email:        optionalString(fs, "email", *email),
		Username:     optionalString(fs, "username", *username),
		Password:     optionalString(fs, "password", *password),
	}

	var err error
	if req.HourlyRate, err = optionalDecimal(fs, "rate", *rate); err != nil {
		return err
	}
	if isSet(fs, "days") {
		if req.WorkDays, err = parseWeekdays(*days); err != nil {
			return err
		}
	}

	if err := a.connect(ctx); err != nil {
		return err
	}

	resp, err := a.employees.Create(ctx, req)
	if err != nil {
		return err
	}
	return success(a.out, "Employee created", resp)
}

func runEmployeeUpdate(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("employee-update")
	id := fs.String("id", "", "employee id")
	rate := fs.String("rate", "", "hourly rate")
	shiftStart := fs.String("shift-start", "", "HH:MM")
	shiftEnd := fs.String("shift-end", "", "HH:MM")
	breakMinutes := fs.Int("break", 0, "unpaid break in minutes")
	days := fs.String("days", "", "ISO weekdays, e.g. 1,2,3,4,5; none for no schedule")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	req := employee.UpdatePayProfileRequest{
		ID:           *id,
		ShiftStart:   optionalString(fs, "shift-start", *shiftStart),
		ShiftEnd:     optionalString(fs, "shift-end", *shiftEnd),
		BreakMinutes: optionalInt(fs, "break", *breakMinutes),
	}

	var err error
	if req.HourlyRate, err = optionalDecimal(fs, "rate", *rate); err != nil {
		return err
	}
	if isSet(fs, "days") {
		workDays, err := parseWeekdays(*days)
		if err != nil {
			return err
		}
		req.WorkDays = &workDays
	}

	if err := a.connect(ctx); err != nil {
		return err
	}

	resp, err := a.employees.UpdatePayProfile(ctx, req)
	if err != nil {
		return err
	}
	return success(a.out, "Pay profile updated", resp)
}

func runEmployeeDelete(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("employee-delete")
	id := fs.String("id", "", "employee id")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if *id == "" {
		return usagef("employee-delete: -id is required")
	}

	if err := a.connect(ctx); err != nil {
		return err
	}

	if err := a.employees.Delete(ctx, *id); err != nil {
		return err
	}
	return success(a.out, "Employee deleted", map[string]string{"id": *id})
}

func runEmployeeList(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("employee-list")
	position := fs.String("position", "", "user, cashier or admin")
	search := fs.String("search", "", "first or last name")
	page := fs.Int("page", 1, "page number")
	limit := fs.Int("limit", 20, "page size")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	if err := a.connect(ctx); err != nil {
		return err
	}

	resp, err := a.employees.List(ctx, employee.EmployeeFilter{
		Position: optionalString(fs, "position", *position),
		Search:   optionalString(fs, "search", *search),
		Page:     *page,
		Limit:    *limit,
	})
	if err != nil {
		return err
	}
	return success(a.out, "", resp)
}

// ========== CALCULATION ==========

func periodFlags(fs *flag.FlagSet) (employeeID, from, to *string) {
	employeeID = fs.String("employee", "", "employee id")
	from = fs.String("from", "", "period start YYYY-MM-DD")
	to = fs.String("to", "", "period end YYYY-MM-DD")
	return employeeID, from, to
}

func runWorkDays(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("workdays")
	employeeID, from, to := periodFlags(fs)
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	if err := a.connect(ctx); err != nil {
		return err
	}

	resp, err := a.payroll.CountWorkDays(ctx, payroll.PayrollPeriodRequest{
		EmployeeID:  *employeeID,
		PeriodStart: *from,
		PeriodEnd:   *to,
	})
	if err != nil {
		return err
	}
	return success(a.out, "", resp)
}

func runPreview(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("preview")
	employeeID, from, to := periodFlags(fs)
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	if err := a.connect(ctx); err != nil {
		return err
	}

	resp, err := a.payroll.Preview(ctx, payroll.PayrollPeriodRequest{
		EmployeeID:  *employeeID,
		PeriodStart: *from,
		PeriodEnd:   *to,
	})
	if err != nil {
		return err
	}
	return success(a.out, "", resp)
}

// ========== RECORDS ==========

func runCreate(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("create")
	employeeID, from, to := periodFlags(fs)
	by := fs.String("by", "", "who creates the record")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	if err := a.connect(ctx); err != nil {
		return err
	}

	resp, err := a.payroll.Create(ctx, payroll.CreatePayrollRequest{
		PayrollPeriodRequest: payroll.PayrollPeriodRequest{
			EmployeeID:  *employeeID,
			PeriodStart: *from,
			PeriodEnd:   *to,
		},
		CreatedBy: optionalString(fs, "by", *by),
	})
	if err != nil {
		return err
	}
	return success(a.out, "Payroll record created", resp)
}

func runGenerate(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("generate")
	from := fs.String("from", "", "period start YYYY-MM-DD")
	to := fs.String("to", "", "period end YYYY-MM-DD")
	employees := fs.String("employees", "", "comma separated employee ids (default all)")
	by := fs.String("by", "", "who generates the records")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	if err := a.connect(ctx); err != nil {
		return err
	}

	resp, err := a.payroll.Generate(ctx, payroll.GeneratePayrollRequest{
		PeriodStart: *from,
		PeriodEnd:   *to,
		EmployeeIDs: splitIDs(*employees),
		CreatedBy:   optionalString(fs, "by", *by),
	})
	if err != nil {
		return err
	}
	return success(a.out, "Payroll generated", resp)
}

func runAdjust(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("adjust")
	id := fs.String("id", "", "record id")
	bonus := fs.String("bonus", "", "bonus amount")
	deductions := fs.String("deductions", "", "other deductions")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	req := payroll.UpdateAdjustmentsRequest{ID: *id}
	var err error
	if req.Bonus, err = optionalDecimal(fs, "bonus", *bonus); err != nil {
		return err
	}
	if req.OtherDeductions, err = optionalDecimal(fs, "deductions", *deductions); err != nil {
		return err
	}

	if err := a.connect(ctx); err != nil {
		return err
	}

	resp, err := a.payroll.UpdateAdjustments(ctx, req)
	if err != nil {
		return err
	}
	return success(a.out, "Adjustments saved", resp)
}

func runConfirm(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("confirm")
	ids := fs.String("ids", "", "comma separated record ids")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	if err := a.connect(ctx); err != nil {
		return err
	}

	resp, err := a.payroll.Confirm(ctx, payroll.ConfirmPayrollRequest{RecordIDs: splitIDs(*ids)})
	if err != nil {
		return err
	}
	return success(a.out, fmt.Sprintf("%d records confirmed", len(resp)), resp)
}

func runPay(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("pay")
	ids := fs.String("ids", "", "comma separated record ids")
	by := fs.String("by", "", "who made the payment")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	if err := a.connect(ctx); err != nil {
		return err
	}

	resp, err := a.payroll.MarkPaid(ctx, payroll.MarkPaidRequest{RecordIDs: splitIDs(*ids), PaidBy: *by})
	if err != nil {
		return err
	}
	return success(a.out, fmt.Sprintf("%d records paid", len(resp)), resp)
}

func runDelete(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("delete")
	id := fs.String("id", "", "record id")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if *id == "" {
		return usagef("delete: -id is required")
	}

	if err := a.connect(ctx); err != nil {
		return err
	}

	if err := a.payroll.Delete(ctx, *id); err != nil {
		return err
	}
	return success(a.out, "Payroll record deleted", map[string]string{"id": *id})
}

func runGet(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("get")
	id := fs.String("id", "", "record id")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if *id == "" {
		return usagef("get: -id is required")
	}

	if err := a.connect(ctx); err != nil {
		return err
	}

	resp, err := a.payroll.Get(ctx, *id)
	if err != nil {
		return err
	}
	return success(a.out, "", resp)
}

func runList(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("list")
	employeeID := fs.String("employee", "", "employee id")
	status := fs.String("status", "", "draft, confirmed or paid")
	from := fs.String("from", "", "records starting on or after YYYY-MM-DD")
	to := fs.String("to", "", "records ending on or before YYYY-MM-DD")
	page := fs.Int("page", 1, "page number")
	limit := fs.Int("limit", 20, "page size")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	if err := a.connect(ctx); err != nil {
		return err
	}

	resp, err := a.payroll.List(ctx, payroll.PayrollFilter{
		EmployeeID: optionalString(fs, "employee", *employeeID),
		Status:     optionalString(fs, "status", *status),
		PeriodFrom: optionalString(fs, "from", *from),
		PeriodTo:   optionalString(fs, "to", *to),
		Page:       *page,
		Limit:      *limit,
	})
	if err != nil {
		return err
	}
	return success(a.out, "", resp)
}

// ========== REPORTING ==========

func runSummary(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("summary")
	from := fs.String("from", "", "period start YYYY-MM-DD")
	to := fs.String("to", "", "period end YYYY-MM-DD")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	if err := a.connect(ctx); err != nil {
		return err
	}

	resp, err := a.payroll.Summary(ctx, payroll.SummaryRequest{PeriodStart: *from, PeriodEnd: *to})
	if err != nil {
		return err
	}
	return success(a.out, "", resp)
}

func runPayslip(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("payslip")
	id := fs.String("id", "", "record id")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if *id == "" {
		return usagef("payslip: -id is required")
	}

	if err := a.connect(ctx); err != nil {
		return err
	}

	resp, err := a.payroll.GeneratePayslip(ctx, *id)
	if err != nil {
		return err
	}
	return success(a.out, "Payslip generated", resp)
}

// runSchedule blocks until ctx is cancelled by SIGINT or SIGTERM.
func runSchedule(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("schedule")
	interval := fs.Duration("interval", a.cfg.Payroll.AutoGenerateInterval, "how often the job checks the calendar")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if !a.cfg.Payroll.AutoGenerate {
		return usagef("schedule: automatic generation is disabled, set PAYROLL_AUTO_GENERATE=true")
	}
	if *interval <= 0 {
		return usagef("schedule: -interval must be positive")
	}

	if err := a.connect(ctx); err != nil {
		return err
	}

	scheduler := cron.NewScheduler()
	cron.NewPayrollJobs(a.payroll).RegisterJobs(scheduler, *interval)

	scheduler.Start(ctx)
	<-ctx.Done()
	scheduler.Stop()

	return success(a.out, "Scheduler stopped", nil)
}
