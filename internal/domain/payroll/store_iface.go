package payroll

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type StoreAPI interface {
	ActiveEmployees(ctx context.Context) ([]Candidate, error)
	TaskTotal(ctx context.Context, employeeID string, from, to time.Time) (decimal.Decimal, error)
	// Insert creates the row unless the employee already has one for the period; created is false then.
	Insert(ctx context.Context, p Payroll) (Payroll, bool, error)
	Get(ctx context.Context, id string) (Payroll, error)
	List(ctx context.Context, filter ListFilter) ([]Payroll, int, error)
	ListByEmployee(ctx context.Context, employeeID string) ([]Payroll, error)
	UpdateStatus(ctx context.Context, id, from, to string) error
}
