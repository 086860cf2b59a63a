package tasks

import (
	"context"
	"time"
)

type StoreAPI interface {
	CreateType(ctx context.Context, in NewTaskType) (string, error)
	GetType(ctx context.Context, id string) (TaskType, error)
	ListTypes(ctx context.Context, status string) ([]TaskType, error)
	// UpdateType applies upd with the row locked. A price differing from the
	// locked price appends one history row in the same transaction and is returned.
	UpdateType(ctx context.Context, id string, upd TaskTypeUpdate, changedBy string) (*PriceChange, error)
	DeleteType(ctx context.Context, id string) error
	NameTaken(ctx context.Context, name, excludeID string) (bool, error)
	PriceHistory(ctx context.Context, taskTypeID string, limit, offset int) ([]TaskPriceHistory, error)
	ListCompleted(ctx context.Context, filter CompletedFilter) ([]CompletedTask, int, error)
	CountCompleted(ctx context.Context, from, to time.Time) (int, error)
	EnsureType(ctx context.Context, in NewTaskType) (bool, error)
}
