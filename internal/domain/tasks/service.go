package tasks

import (
	"context"
	"fmt"
	"strings"
	"time"

	"garmenthr/internal/domain/audit"
)

type Service struct {
	store StoreAPI
	audit audit.Recorder
	loc   *time.Location
	now   func() time.Time
}

func NewService(store StoreAPI, recorder audit.Recorder, loc *time.Location) *Service {
	if loc == nil {
		loc = time.Local
	}
	return &Service{store: store, audit: recorder, loc: loc, now: time.Now}
}

// DayWindow returns [local midnight, next local midnight) around t.
func DayWindow(t time.Time, loc *time.Location) (time.Time, time.Time) {
	local := t.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 0, 1)
}

func (s *Service) CreateType(ctx context.Context, actorID string, in NewTaskType) (TaskType, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Status == "" {
		in.Status = StatusActive
	}
	taken, err := s.store.NameTaken(ctx, in.Name, "")
	if err != nil {
		return TaskType{}, fmt.Errorf("check name: %w", err)
	}
	if taken {
		return TaskType{}, ErrDuplicateTaskTypeName
	}

	id, err := s.store.CreateType(ctx, in)
	if err != nil {
		return TaskType{}, err
	}
	created, err := s.store.GetType(ctx, id)
	if err != nil {
		return TaskType{}, err
	}
	audit.Safe(ctx, s.audit, actorID, AuditCreate, AuditEntity, id, nil, created)
	return created, nil
}

func (s *Service) ListTypes(ctx context.Context, status string) ([]TaskType, error) {
	return s.store.ListTypes(ctx, status)
}

// GetType returns the task type with its most recent price changes.
func (s *Service) GetType(ctx context.Context, id string) (TaskType, error) {
	t, err := s.store.GetType(ctx, id)
	if err != nil {
		return TaskType{}, err
	}
	t.PriceHistory, err = s.store.PriceHistory(ctx, t.ID, RecentHistoryLimit, 0)
	if err != nil {
		return TaskType{}, err
	}
	return t, nil
}

// UpdateType applies a partial update. A differing price appends exactly one
// history row in the same transaction as the price change.
func (s *Service) UpdateType(ctx context.Context, actorID, id string, upd TaskTypeUpdate) (TaskType, error) {
	before, err := s.store.GetType(ctx, id)
	if err != nil {
		return TaskType{}, err
	}
	if upd.Name != nil {
		name := strings.TrimSpace(*upd.Name)
		upd.Name = &name
		if name != before.Name {
			taken, err := s.store.NameTaken(ctx, name, before.ID)
			if err != nil {
				return TaskType{}, fmt.Errorf("check name: %w", err)
			}
			if taken {
				return TaskType{}, ErrDuplicateTaskTypeName
			}
		}
	}

	change, err := s.store.UpdateType(ctx, before.ID, upd, actorID)
	if err != nil {
		return TaskType{}, err
	}

	after, err := s.GetType(ctx, before.ID)
	if err != nil {
		return TaskType{}, err
	}
	audit.Safe(ctx, s.audit, actorID, AuditUpdate, AuditEntity, before.ID, before, after)
	if change != nil {
		audit.Safe(ctx, s.audit, actorID, AuditPriceChange, AuditEntity, before.ID,
			map[string]string{"price": change.OldPrice.String()}, map[string]string{"price": change.NewPrice.String()})
	}
	return after, nil
}

func (s *Service) DeleteType(ctx context.Context, actorID, id string) error {
	before, err := s.store.GetType(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteType(ctx, before.ID); err != nil {
		return err
	}
	audit.Safe(ctx, s.audit, actorID, AuditDelete, AuditEntity, before.ID, before, nil)
	return nil
}

func (s *Service) PriceHistory(ctx context.Context, taskTypeID string, limit, offset int) ([]TaskPriceHistory, error) {
	if _, err := s.store.GetType(ctx, taskTypeID); err != nil {
		return nil, err
	}
	return s.store.PriceHistory(ctx, taskTypeID, limit, offset)
}

func (s *Service) ListCompleted(ctx context.Context, filter CompletedFilter) ([]CompletedTask, int, error) {
	return s.store.ListCompleted(ctx, filter)
}

// DailyActivity lists every task completed on the local calendar day of date.
func (s *Service) DailyActivity(ctx context.Context, date time.Time) ([]CompletedTask, error) {
	if date.IsZero() {
		date = s.now()
	}
	from, to := DayWindow(date, s.loc)
	items, _, err := s.store.ListCompleted(ctx, CompletedFilter{From: from, To: to})
	return items, err
}

func (s *Service) Stats(ctx context.Context) (Stats, error) {
	total, err := s.store.CountCompleted(ctx, time.Time{}, time.Time{})
	if err != nil {
		return Stats{}, err
	}
	from, to := DayWindow(s.now(), s.loc)
	today, err := s.store.CountCompleted(ctx, from, to)
	if err != nil {
		return Stats{}, err
	}
	return Stats{TotalTasks: total, TasksToday: today}, nil
}

// EnsureType creates the task type when its name is unused; used by seeding.
func (s *Service) EnsureType(ctx context.Context, in NewTaskType) (bool, error) {
	if in.Status == "" {
		in.Status = StatusActive
	}
	return s.store.EnsureType(ctx, in)
}
