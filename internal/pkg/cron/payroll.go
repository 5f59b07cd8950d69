package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nemopark/payroll-backend-go/internal/domain/payroll"
)

// SchedulerActor is recorded as created_by on drafts the scheduler generates.
const SchedulerActor = "scheduler"

type PayrollJobs struct {
	payrollService payroll.PayrollService
	now            func() time.Time
}

func NewPayrollJobs(payrollService payroll.PayrollService) *PayrollJobs {
	return &PayrollJobs{
		payrollService: payrollService,
		now:            time.Now,
	}
}

func (j *PayrollJobs) RegisterJobs(scheduler *Scheduler, interval time.Duration) {
	scheduler.AddJob("generate_monthly_payroll_drafts", interval, j.GenerateMonthlyDrafts)
}

// GenerateMonthlyDrafts creates draft records for the previous calendar month.
// It only does work on the 1st (UTC); existing records are skipped by the
// service, so repeated runs on the same day are harmless.
func (j *PayrollJobs) GenerateMonthlyDrafts(ctx context.Context) error {
	today := j.now().UTC()
	if today.Day() != 1 {
		return nil
	}

	previous := today.AddDate(0, 0, -1)
	period := payroll.MonthPeriod(previous.Year(), previous.Month())

	slog.Info("Cron: Generating payroll drafts", "period", period.String())

	actor := SchedulerActor
	resp, err := j.payrollService.Generate(ctx, payroll.GeneratePayrollRequest{
		PeriodStart: period.Start.Format(payroll.DateLayout),
		PeriodEnd:   period.End.Format(payroll.DateLayout),
		CreatedBy:   &actor,
	})
	if err != nil {
		return fmt.Errorf("failed to generate payroll for %s: %w", period, err)
	}

	slog.Info("Cron: Payroll drafts generated",
		"period", period.String(),
		"created", resp.Summary.Created,
		"skipped_existing", resp.Summary.SkippedExisting,
		"skipped_no_work_days", resp.Summary.SkippedNoDays,
		"total_net", resp.Summary.TotalNet.String())
	return nil
}
