package main

import (
	"encoding/json"
	"errors"
	"io"

	"github.com/nemopark/payroll-backend-go/internal/domain/employee"
	"github.com/nemopark/payroll-backend-go/internal/domain/payroll"
	"github.com/nemopark/payroll-backend-go/internal/domain/user"
	"github.com/nemopark/payroll-backend-go/internal/pkg/validator"
)

// Response is the envelope every command prints on stdout.
type Response struct {
	Success bool         `json:"success"`
	Message string       `json:"message,omitempty"`
	Data    any          `json:"data,omitempty"`
	Error   *ErrorDetail `json:"error,omitempty"`
}

type ErrorDetail struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

const (
	codeBadRequest = "BAD_REQUEST"
	codeValidation = "VALIDATION_ERROR"
	codeNotFound   = "NOT_FOUND"
	codeConflict   = "CONFLICT"
	codeInternal   = "INTERNAL_ERROR"
)

func writeJSON(w io.Writer, payload Response) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}

func success(w io.Writer, message string, data any) error {
	return writeJSON(w, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

func failure(w io.Writer, err error) error {
	return writeJSON(w, Response{
		Success: false,
		Error:   errorDetail(err),
	})
}

// errorDetail maps domain errors onto the stable codes scripts can match on.
func errorDetail(err error) *ErrorDetail {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		return &ErrorDetail{Code: codeValidation, Message: "Validation failed", Details: validationErrs.ToMap()}
	}

	var usage usageError
	if errors.As(err, &usage) {
		return &ErrorDetail{Code: codeBadRequest, Message: usage.Error()}
	}

	switch {
	// Not found
	case errors.Is(err, employee.ErrEmployeeNotFound),
		errors.Is(err, payroll.ErrPayrollRecordNotFound),
		errors.Is(err, user.ErrUserNotFound):
		return &ErrorDetail{Code: codeNotFound, Message: err.Error()}

	// State conflicts
	case errors.Is(err, payroll.ErrPayrollRecordAlreadyExists),
		errors.Is(err, payroll.ErrPayrollRecordAlreadyPaid),
		errors.Is(err, payroll.ErrPayrollRecordNotDraft),
		errors.Is(err, payroll.ErrInvalidStatusTransition),
		errors.Is(err, payroll.ErrCannotDeleteFinalizedRecord),
		errors.Is(err, payroll.ErrDeductionsExceedNet),
		errors.Is(err, employee.ErrEmployeeHasFinalizedPayroll),
		errors.Is(err, employee.ErrEmailExists),
		errors.Is(err, user.ErrUsernameExists):
		return &ErrorDetail{Code: codeConflict, Message: err.Error()}

	// Bad input that got past DTO validation
	case errors.Is(err, payroll.ErrInvalidPeriod),
		errors.Is(err, payroll.ErrInvalidConfiguration),
		errors.Is(err, payroll.ErrNoWorkDaysInPeriod),
		errors.Is(err, employee.ErrInvalidShift):
		return &ErrorDetail{Code: codeBadRequest, Message: err.Error()}
	}

	return &ErrorDetail{Code: codeInternal, Message: err.Error()}
}

// exitCode separates caller mistakes (2) from everything else (1).
func exitCode(err error) int {
	switch errorDetail(err).Code {
	case codeInternal:
		return 1
	default:
		return 2
	}
}
