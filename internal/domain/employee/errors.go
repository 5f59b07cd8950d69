package employee

import "errors"

var (
	ErrEmployeeNotFound            = errors.New("employee not found")
	ErrEmployeeHasFinalizedPayroll = errors.New("employee has confirmed or paid payroll records, cannot delete")
	ErrEmailExists                 = errors.New("email already registered")
	ErrInvalidShift                = errors.New("shift times must be in HH:MM format")
	ErrFutureDateNotAllowed        = errors.New("date cannot be in the future")
)
