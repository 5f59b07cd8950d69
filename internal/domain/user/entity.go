package user

import "time"

type Role string

const (
	RoleUser    Role = "user"    // Park staff without till access
	RoleCashier Role = "cashier" // Ticket and food counters
	RoleAdmin   Role = "admin"   // Runs payroll
)

// User - Login credentials, optionally linked to an employee
type User struct {
	ID           string
	Username     string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time

	// Join
	EmployeeID *string
}
