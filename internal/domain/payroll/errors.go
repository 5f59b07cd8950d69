package payroll

import "errors"

var (
	ErrInvalidConfiguration        = errors.New("invalid pay configuration")
	ErrPayrollRecordNotFound       = errors.New("payroll record not found")
	ErrPayrollRecordAlreadyExists  = errors.New("payroll record already exists for this period")
	ErrPayrollRecordAlreadyPaid    = errors.New("payroll record already paid, cannot modify")
	ErrPayrollRecordNotDraft       = errors.New("payroll record is not a draft, cannot modify")
	ErrInvalidStatusTransition     = errors.New("invalid payroll status transition")
	ErrInvalidPeriod               = errors.New("invalid payroll period")
	ErrCannotDeleteFinalizedRecord = errors.New("cannot delete confirmed or paid payroll record")
	ErrDeductionsExceedNet         = errors.New("other deductions exceed net salary")
	ErrNoWorkDaysInPeriod          = errors.New("period contains no scheduled work days")
)
