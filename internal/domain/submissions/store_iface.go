package submissions

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type StoreAPI interface {
	EmployeeExists(ctx context.Context, employeeID string) (bool, error)
	TaskTypePrices(ctx context.Context, ids []string) (map[string]decimal.Decimal, error)
	// Create persists the submission and its lines atomically within timeout and returns the re-read result.
	Create(ctx context.Context, req Request, plan Plan, now time.Time, timeout time.Duration) (Submission, error)
	Get(ctx context.Context, id string) (Submission, error)
	List(ctx context.Context, filter ListFilter) ([]Submission, int, error)
}
