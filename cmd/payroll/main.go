package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/nemopark/payroll-backend-go/internal/config"
	"github.com/nemopark/payroll-backend-go/internal/domain/employee"
	"github.com/nemopark/payroll-backend-go/internal/domain/payroll"
	"github.com/nemopark/payroll-backend-go/internal/pkg/database"
	"github.com/nemopark/payroll-backend-go/internal/pkg/storage"
	"github.com/nemopark/payroll-backend-go/internal/repository/postgresql"
	employeeService "github.com/nemopark/payroll-backend-go/internal/service/employee"
	payrollService "github.com/nemopark/payroll-backend-go/internal/service/payroll"
)

// app is everything a command needs. The database and the services built on
// it are filled in by connect, which commands call after their flags parse.
type app struct {
	cfg       *config.Config
	db        *database.DB
	employees employee.EmployeeService
	payroll   payroll.PayrollService
	out       io.Writer
	open      func(ctx context.Context) error
}

// connect opens the database on first use. It is a no-op once connected or
// when the app was assembled without an opener.
func (a *app) connect(ctx context.Context) error {
	if a.open == nil {
		return nil
	}
	if err := a.open(ctx); err != nil {
		return err
	}
	a.open = nil
	return nil
}

func (a *app) close() {
	if a.db != nil {
		a.db.Close()
	}
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) < 1 {
		printUsage(os.Stderr)
		return 2
	}

	cmd, ok := findCommand(args[0])
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", args[0])
		printUsage(os.Stderr)
		return 2
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error loading config:", err)
		return 1
	}
	slog.SetDefault(newLogger(cfg.App, os.Stderr))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := newApp(cfg, os.Stdout)
	defer a.close()

	if err := cmd.run(ctx, a, args[1:]); err != nil {
		slog.Error("Command failed", "command", cmd.name, "error", err)
		_ = failure(a.out, err)
		return exitCode(err)
	}
	return 0
}

func newApp(cfg *config.Config, out io.Writer) *app {
	a := &app{cfg: cfg, out: out}
	a.open = func(ctx context.Context) error {
		fileStorage, err := storage.NewLocalStorage(cfg.Storage.BasePath, cfg.Storage.BaseURL)
		if err != nil {
			return fmt.Errorf("failed to initialize local storage: %w", err)
		}

		db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL())
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}

		tx := postgresql.NewTransactor(db)
		userRepo := postgresql.NewUserRepository(db)
		employeeRepo := postgresql.NewEmployeeRepository(db)
		payrollRepo := postgresql.NewPayrollRepository(db)

		calculator := payrollService.NewPayrollCalculator()

		a.db = db
		a.employees = employeeService.NewEmployeeService(tx, employeeRepo, userRepo, payrollRepo)
		a.payroll = payrollService.NewPayrollService(tx, payrollRepo, employeeRepo, calculator, fileStorage, payrollService.PayslipSettings{
			Organization: cfg.Payroll.Organization,
			Currency:     cfg.Payroll.Currency,
		})
		return nil
	}
	return a
}

// newLogger returns a text handler for development and JSON elsewhere.
func newLogger(appCfg config.AppConfig, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(appCfg.LogLevel)}
	if appCfg.IsProduction() {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(level string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo
	}
	return l
}
