package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nemopark/payroll-backend-go/internal/domain/payroll"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePayrollService struct {
	payroll.PayrollService
	requests []payroll.GeneratePayrollRequest
	err      error
}

func (f *fakePayrollService) Generate(ctx context.Context, req payroll.GeneratePayrollRequest) (payroll.GeneratePayrollResponse, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return payroll.GeneratePayrollResponse{}, f.err
	}
	return payroll.GeneratePayrollResponse{
		PeriodStart: req.PeriodStart,
		PeriodEnd:   req.PeriodEnd,
		Summary:     payroll.GenerateSummary{Created: 2, TotalNet: decimal.NewFromInt(1000)},
	}, nil
}

func newPayrollJobs(svc payroll.PayrollService, now time.Time) *PayrollJobs {
	j := NewPayrollJobs(svc)
	j.now = func() time.Time { return now }
	return j
}

func TestPayrollJobs_GenerateMonthlyDrafts(t *testing.T) {
	tests := []struct {
		name      string
		now       time.Time
		wantStart string
		wantEnd   string
	}{
		{"previous month", time.Date(2024, 3, 1, 0, 15, 0, 0, time.UTC), "2024-02-01", "2024-02-29"},
		{"across year boundary", time.Date(2025, 1, 1, 6, 0, 0, 0, time.UTC), "2024-12-01", "2024-12-31"},
		{"first of the month in UTC only", time.Date(2024, 4, 30, 23, 0, 0, 0, time.FixedZone("UTC-2", -2*3600)), "2024-04-01", "2024-04-30"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakePayrollService{}

			err := newPayrollJobs(svc, tt.now).GenerateMonthlyDrafts(context.Background())

			require.NoError(t, err)
			require.Len(t, svc.requests, 1)
			req := svc.requests[0]
			assert.Equal(t, tt.wantStart, req.PeriodStart)
			assert.Equal(t, tt.wantEnd, req.PeriodEnd)
			require.NotNil(t, req.CreatedBy)
			assert.Equal(t, SchedulerActor, *req.CreatedBy)
			assert.Empty(t, req.EmployeeIDs)
		})
	}
}

func TestPayrollJobs_GenerateMonthlyDrafts_SkipsOtherDays(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
	}{
		{"second of the month", time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)},
		{"first of the month in local time only", time.Date(2024, 5, 1, 2, 0, 0, 0, time.FixedZone("MSK", 3*3600))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakePayrollService{}

			err := newPayrollJobs(svc, tt.now).GenerateMonthlyDrafts(context.Background())

			require.NoError(t, err)
			assert.Empty(t, svc.requests)
		})
	}
}

func TestPayrollJobs_GenerateMonthlyDrafts_Error(t *testing.T) {
	errDB := errors.New("connection refused")
	svc := &fakePayrollService{err: errDB}

	err := newPayrollJobs(svc, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)).GenerateMonthlyDrafts(context.Background())

	assert.ErrorIs(t, err, errDB)
	assert.Contains(t, err.Error(), "2024-02-01..2024-02-29")
}

func TestPayrollJobs_RegisterJobs(t *testing.T) {
	s := NewScheduler()
	svc := &fakePayrollService{}

	newPayrollJobs(svc, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)).RegisterJobs(s, 30*time.Minute)

	require.Len(t, s.jobs, 1)
	assert.Equal(t, "generate_monthly_payroll_drafts", s.jobs[0].Name)
	assert.Equal(t, 30*time.Minute, s.jobs[0].Interval)

	require.NoError(t, s.RunOnce(context.Background()))
	assert.Len(t, svc.requests, 1)
}
