package employee

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nemopark/payroll-backend-go/internal/domain/employee"
	"github.com/nemopark/payroll-backend-go/internal/domain/payroll"
	"github.com/nemopark/payroll-backend-go/internal/domain/user"
	"github.com/nemopark/payroll-backend-go/internal/pkg/database"
	"golang.org/x/crypto/bcrypt"
)

type EmployeeServiceImpl struct {
	tx           database.Transactor
	employeeRepo employee.EmployeeRepository
	userRepo     user.UserRepository
	payrollRepo  payroll.PayrollRepository
	now          func() time.Time
}

func NewEmployeeService(
	tx database.Transactor,
	employeeRepo employee.EmployeeRepository,
	userRepo user.UserRepository,
	payrollRepo payroll.PayrollRepository,
) employee.EmployeeService {
	return &EmployeeServiceImpl{
		tx:           tx,
		employeeRepo: employeeRepo,
		userRepo:     userRepo,
		payrollRepo:  payrollRepo,
		now:          time.Now,
	}
}

func (s *EmployeeServiceImpl) hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Create implements employee.EmployeeService.
func (s *EmployeeServiceImpl) Create(ctx context.Context, req employee.CreateEmployeeRequest) (employee.EmployeeResponse, error) {
	if err := req.Validate(); err != nil {
		return employee.EmployeeResponse{}, err
	}

	newEmployee, err := s.employeeFromRequest(req)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}

	var created employee.Employee
	err = s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		if req.WantsLogin() {
			userID, err := s.createLogin(txCtx, *req.Username, *req.Password, user.Role(newEmployee.Position))
			if err != nil {
				return err
			}
			newEmployee.UserID = &userID
		}

		created, err = s.employeeRepo.Create(txCtx, newEmployee)
		if err != nil {
			return fmt.Errorf("failed to create employee: %w", err)
		}
		return nil
	})
	if err != nil {
		return employee.EmployeeResponse{}, err
	}

	slog.Info("Employee created",
		"employee_id", created.ID,
		"position", created.Position,
		"hourly_rate", created.HourlyRate.String(),
		"has_login", created.UserID != nil)

	return employee.NewEmployeeResponse(created), nil
}

// employeeFromRequest fills every omitted pay field with the position defaults.
func (s *EmployeeServiceImpl) employeeFromRequest(req employee.CreateEmployeeRequest) (employee.Employee, error) {
	position := employee.Position(req.Position)

	e := employee.Employee{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Position:     position,
		HourlyRate:   employee.DefaultRate(position),
		ShiftStart:   employee.DefaultShiftStart,
		ShiftEnd:     employee.DefaultShiftEnd,
		BreakMinutes: employee.DefaultBreakMinutes,
		WorkDays:     employee.DefaultWorkDays(),
		HireDate:     dateOnly(s.now()),
		Phone:        req.Phone,
		Email:        req.Email,
	}

	if req.HourlyRate != nil {
		e.HourlyRate = *req.HourlyRate
	}
	if req.ShiftStart != nil {
		start, err := payroll.ParseClockTime(*req.ShiftStart)
		if err != nil {
			return employee.Employee{}, fmt.Errorf("%w: %v", employee.ErrInvalidShift, err)
		}
		e.ShiftStart = start
	}
	if req.ShiftEnd != nil {
		end, err := payroll.ParseClockTime(*req.ShiftEnd)
		if err != nil {
			return employee.Employee{}, fmt.Errorf("%w: %v", employee.ErrInvalidShift, err)
		}
		e.ShiftEnd = end
	}
	if req.BreakMinutes != nil {
		e.BreakMinutes = *req.BreakMinutes
	}
	// An explicit empty list is kept: that employee has no scheduled days
	if req.WorkDays != nil {
		e.WorkDays = append([]int{}, req.WorkDays...)
	}
	if req.HireDate != nil {
		hireDate, err := time.Parse(payroll.DateLayout, *req.HireDate)
		if err != nil {
			return employee.Employee{}, fmt.Errorf("invalid hire date: %w", err)
		}
		e.HireDate = hireDate
	}

	return e, nil
}

func (s *EmployeeServiceImpl) createLogin(ctx context.Context, username, password string, role user.Role) (string, error) {
	exists, err := s.userRepo.ExistsByUsername(ctx, username)
	if err != nil {
		return "", err
	}
	if exists {
		return "", user.ErrUsernameExists
	}

	hash, err := s.hashPassword(password)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	created, err := s.userRepo.Create(ctx, user.User{
		Username:     username,
		PasswordHash: hash,
		Role:         role,
	})
	if err != nil {
		return "", err
	}
	return created.ID, nil
}

// Get implements employee.EmployeeService.
func (s *EmployeeServiceImpl) Get(ctx context.Context, id string) (employee.EmployeeResponse, error) {
	e, err := s.employeeRepo.GetByID(ctx, id)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}
	return employee.NewEmployeeResponse(e), nil
}

// List implements employee.EmployeeService.
func (s *EmployeeServiceImpl) List(ctx context.Context, filter employee.EmployeeFilter) (employee.ListEmployeeResponse, error) {
	if err := filter.Validate(); err != nil {
		return employee.ListEmployeeResponse{}, err
	}
	filter.Normalize()

	employees, totalCount, err := s.employeeRepo.List(ctx, filter)
	if err != nil {
		return employee.ListEmployeeResponse{}, err
	}

	responses := make([]employee.EmployeeResponse, len(employees))
	for i, e := range employees {
		responses[i] = employee.NewEmployeeResponse(e)
	}

	return employee.ListEmployeeResponse{
		TotalCount: totalCount,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: (totalCount + int64(filter.Limit) - 1) / int64(filter.Limit),
		Employees:  responses,
	}, nil
}

// UpdatePayProfile implements employee.EmployeeService. Existing payroll
// records keep the values they were calculated with.
func (s *EmployeeServiceImpl) UpdatePayProfile(ctx context.Context, req employee.UpdatePayProfileRequest) (employee.EmployeeResponse, error) {
	if err := req.Validate(); err != nil {
		return employee.EmployeeResponse{}, err
	}

	var updated employee.Employee
	err := s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		current, err := s.employeeRepo.GetByID(txCtx, req.ID)
		if err != nil {
			return err
		}

		profile := req.Apply(employee.PayProfile{
			HourlyRate:   current.HourlyRate,
			ShiftStart:   current.ShiftStart,
			ShiftEnd:     current.ShiftEnd,
			BreakMinutes: current.BreakMinutes,
			WorkDays:     current.WorkDays,
		})
		if err := s.employeeRepo.UpdatePayProfile(txCtx, req.ID, profile); err != nil {
			return err
		}

		updated, err = s.employeeRepo.GetByID(txCtx, req.ID)
		return err
	})
	if err != nil {
		return employee.EmployeeResponse{}, err
	}

	slog.Info("Employee pay profile updated", "employee_id", updated.ID, "hourly_rate", updated.HourlyRate.String())
	return employee.NewEmployeeResponse(updated), nil
}

// Delete implements employee.EmployeeService. The steps run in this order
// inside one transaction; nothing is removed by foreign key cascades.
func (s *EmployeeServiceImpl) Delete(ctx context.Context, id string) error {
	var draftsDeleted int64
	err := s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		// 1. The employee must exist
		emp, err := s.employeeRepo.GetByID(txCtx, id)
		if err != nil {
			return err
		}

		// 2. Confirmed and paid records are accounting history
		finalized, err := s.payrollRepo.CountFinalizedByEmployee(txCtx, emp.ID)
		if err != nil {
			return err
		}
		if finalized > 0 {
			return fmt.Errorf("%w: %d records", employee.ErrEmployeeHasFinalizedPayroll, finalized)
		}

		// 3. Drafts go with the employee
		draftsDeleted, err = s.payrollRepo.DeleteDraftsByEmployee(txCtx, emp.ID)
		if err != nil {
			return err
		}

		// 4. The employee row references the login, so it goes first
		if err := s.employeeRepo.Delete(txCtx, emp.ID); err != nil {
			return err
		}

		// 5. Login credentials
		if emp.UserID != nil {
			if err := s.userRepo.DeleteByID(txCtx, *emp.UserID); err != nil {
				return fmt.Errorf("failed to delete login for employee %s: %w", emp.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	slog.Info("Employee deleted", "employee_id", id, "drafts_deleted", draftsDeleted)
	return nil
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
