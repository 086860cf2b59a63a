package employees

import (
	"context"
	"time"
)

type StoreAPI interface {
	Create(ctx context.Context, emp NewEmployee, now time.Time) (string, error)
	Get(ctx context.Context, id string) (Employee, error)
	List(ctx context.Context, filter ListFilter) ([]Employee, int, error)
	Update(ctx context.Context, id string, upd EmployeeUpdate, now time.Time) error
	Delete(ctx context.Context, id string) error
	NICTaken(ctx context.Context, nic, excludeID string) (bool, error)
	SalaryHistory(ctx context.Context, employeeID string) ([]SalaryConfig, error)
	ActiveSalaryConfig(ctx context.Context, employeeID string) (SalaryConfig, error)
	Stats(ctx context.Context) (Stats, error)
}
