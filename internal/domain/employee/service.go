package employee

import (
	"context"
)

// EmployeeService defines business logic for employee operations
type EmployeeService interface {
	// Create stores a new employee, filling rate and schedule defaults, and
	// optionally creates linked login credentials
	Create(ctx context.Context, req CreateEmployeeRequest) (EmployeeResponse, error)

	Get(ctx context.Context, id string) (EmployeeResponse, error)
	List(ctx context.Context, filter EmployeeFilter) (ListEmployeeResponse, error)

	// UpdatePayProfile changes rate, shift, break and work days
	UpdatePayProfile(ctx context.Context, req UpdatePayProfileRequest) (EmployeeResponse, error)

	// Delete removes the employee, its draft payroll records and its login
	// in one transaction. Refuses when finalized payroll exists.
	Delete(ctx context.Context, id string) error
}
