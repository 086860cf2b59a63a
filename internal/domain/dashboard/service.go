package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"garmenthr/internal/domain/employees"
	"garmenthr/internal/domain/tasks"
)

type EmployeeCounter interface {
	Stats(ctx context.Context) (employees.Stats, error)
}

type TaskCounter interface {
	Stats(ctx context.Context) (tasks.Stats, error)
	DailyActivity(ctx context.Context, date time.Time) ([]tasks.CompletedTask, error)
}

type PayrollTotals interface {
	PeriodNet(ctx context.Context, month, year int) (int, decimal.Decimal, error)
}

type EmployeeStats struct {
	Total     int `json:"total"`
	Permanent int `json:"permanent"`
	Temporary int `json:"temporary"`
	Active    int `json:"active"`
	Inactive  int `json:"inactive"`
}

type TaskStats struct {
	Total int `json:"total"`
	Today int `json:"today"`
}

type PayrollStats struct {
	ThisMonth    int             `json:"thisMonth"`
	ThisMonthNet decimal.Decimal `json:"thisMonthNet"`
}

type Stats struct {
	Employees EmployeeStats `json:"employees"`
	Tasks     TaskStats     `json:"tasks"`
	Payroll   PayrollStats  `json:"payroll"`
}

type Service struct {
	employees EmployeeCounter
	tasks     TaskCounter
	payroll   PayrollTotals
	loc       *time.Location
	now       func() time.Time
}

func NewService(emp EmployeeCounter, taskCounter TaskCounter, payroll PayrollTotals, loc *time.Location) *Service {
	if loc == nil {
		loc = time.Local
	}
	return &Service{employees: emp, tasks: taskCounter, payroll: payroll, loc: loc, now: time.Now}
}

// Stats is computed on every call.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	emp, err := s.employees.Stats(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("employee stats: %w", err)
	}
	taskStats, err := s.tasks.Stats(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("task stats: %w", err)
	}
	now := s.now().In(s.loc)
	count, net, err := s.payroll.PeriodNet(ctx, int(now.Month()), now.Year())
	if err != nil {
		return Stats{}, fmt.Errorf("payroll stats: %w", err)
	}

	return Stats{
		Employees: EmployeeStats{
			Total:     emp.Total,
			Permanent: emp.ByType.Permanent,
			Temporary: emp.ByType.Temporary,
			Active:    emp.ByStatus.Active,
			Inactive:  emp.ByStatus.Inactive,
		},
		Tasks:   TaskStats{Total: taskStats.TotalTasks, Today: taskStats.TasksToday},
		Payroll: PayrollStats{ThisMonth: count, ThisMonthNet: net},
	}, nil
}

// DailyActivity lists tasks completed on date's local day; a zero date means today.
func (s *Service) DailyActivity(ctx context.Context, date time.Time) ([]tasks.CompletedTask, error) {
	items, err := s.tasks.DailyActivity(ctx, date)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []tasks.CompletedTask{}
	}
	return items, nil
}
