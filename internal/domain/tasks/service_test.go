package tasks

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	mu        sync.Mutex
	types     map[string]TaskType
	history   map[string][]TaskPriceHistory
	completed []CompletedTask
	nextID    int
}

func newFakeStore() *fakeStore {
	return &fakeStore{types: map[string]TaskType{}, history: map[string][]TaskPriceHistory{}}
}

func (f *fakeStore) CreateType(_ context.Context, in NewTaskType) (string, error) {
	f.nextID++
	id := fmt.Sprintf("t%d", f.nextID)
	f.types[id] = TaskType{ID: id, Name: in.Name, Description: in.Description, Price: in.Price, Status: in.Status}
	return id, nil
}

func (f *fakeStore) GetType(_ context.Context, id string) (TaskType, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.types[id]
	if !ok {
		return TaskType{}, ErrTaskTypeNotFound
	}
	return t, nil
}

func (f *fakeStore) ListTypes(context.Context, string) ([]TaskType, error) {
	out := []TaskType{}
	for _, t := range f.types {
		out = append(out, t)
	}
	return out, nil
}

func (f *fakeStore) UpdateType(_ context.Context, id string, upd TaskTypeUpdate, changedBy string) (*PriceChange, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.types[id]
	if !ok {
		return nil, ErrTaskTypeNotFound
	}
	var change *PriceChange
	if pc, ok := DetectPriceChange(t.Price, upd.Price); ok {
		change = &pc
		by := changedBy
		row := TaskPriceHistory{TaskTypeID: id, OldPrice: change.OldPrice, NewPrice: change.NewPrice, ChangedBy: &by}
		f.history[id] = append([]TaskPriceHistory{row}, f.history[id]...)
	}
	if upd.Name != nil {
		t.Name = *upd.Name
	}
	if upd.Price != nil {
		t.Price = *upd.Price
	}
	if upd.Status != nil {
		t.Status = *upd.Status
	}
	f.types[id] = t
	return change, nil
}

func (f *fakeStore) DeleteType(_ context.Context, id string) error {
	delete(f.types, id)
	return nil
}

func (f *fakeStore) NameTaken(_ context.Context, name, excludeID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, t := range f.types {
		if t.Name == name && id != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) PriceHistory(_ context.Context, taskTypeID string, limit, offset int) ([]TaskPriceHistory, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rows := f.history[taskTypeID]
	if offset >= len(rows) {
		return []TaskPriceHistory{}, nil
	}
	rows = rows[offset:]
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

func (f *fakeStore) ListCompleted(_ context.Context, filter CompletedFilter) ([]CompletedTask, int, error) {
	var out []CompletedTask
	for _, ct := range f.completed {
		if !filter.From.IsZero() && ct.CompletedDate.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && !ct.CompletedDate.Before(filter.To) {
			continue
		}
		out = append(out, ct)
	}
	total := len(out)
	if filter.Offset > 0 {
		out = out[min(filter.Offset, len(out)):]
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, total, nil
}

func (f *fakeStore) CountCompleted(ctx context.Context, from, to time.Time) (int, error) {
	items, _, err := f.ListCompleted(ctx, CompletedFilter{From: from, To: to})
	return len(items), err
}

func (f *fakeStore) EnsureType(ctx context.Context, in NewTaskType) (bool, error) {
	taken, _ := f.NameTaken(ctx, in.Name, "")
	if taken {
		return false, nil
	}
	_, err := f.CreateType(ctx, in)
	return err == nil, err
}

func TestCreateTypeRejectsDuplicateName(t *testing.T) {
	svc := NewService(newFakeStore(), nil, time.UTC)
	ctx := context.Background()

	created, err := svc.CreateType(ctx, "admin", NewTaskType{Name: "Hem Finish", Price: decimal.NewFromInt(20)})
	require.NoError(t, err)
	assert.Equal(t, StatusActive, created.Status)

	_, err = svc.CreateType(ctx, "admin", NewTaskType{Name: " Hem Finish ", Price: decimal.NewFromInt(21)})
	assert.ErrorIs(t, err, ErrDuplicateTaskTypeName)
}

func TestUpdateTypeRecordsPriceHistoryOnlyOnChange(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, nil, time.UTC)
	ctx := context.Background()

	created, err := svc.CreateType(ctx, "admin", NewTaskType{Name: "Hem Finish", Price: decimal.NewFromInt(20)})
	require.NoError(t, err)

	updated, err := svc.UpdateType(ctx, "admin", created.ID, TaskTypeUpdate{Price: ptr(decimal.NewFromInt(25))})
	require.NoError(t, err)
	require.Len(t, updated.PriceHistory, 1)
	assert.True(t, updated.PriceHistory[0].OldPrice.Equal(decimal.NewFromInt(20)))
	assert.True(t, updated.PriceHistory[0].NewPrice.Equal(decimal.NewFromInt(25)))
	assert.Equal(t, "admin", *updated.PriceHistory[0].ChangedBy)

	again, err := svc.UpdateType(ctx, "admin", created.ID, TaskTypeUpdate{Price: ptr(decimal.RequireFromString("25.00"))})
	require.NoError(t, err)
	assert.Len(t, again.PriceHistory, 1)
}

func TestConcurrentSamePriceUpdateRecordsOneChange(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, nil, time.UTC)
	ctx := context.Background()

	created, err := svc.CreateType(ctx, "admin", NewTaskType{Name: "Side Seam", Price: decimal.NewFromInt(20)})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.UpdateType(ctx, "admin", created.ID, TaskTypeUpdate{Price: ptr(decimal.NewFromInt(25))})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	history, err := svc.PriceHistory(ctx, created.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.True(t, history[0].OldPrice.Equal(decimal.NewFromInt(20)))
}

func TestGetTypeLimitsHistory(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, nil, time.UTC)
	ctx := context.Background()

	created, err := svc.CreateType(ctx, "admin", NewTaskType{Name: "Band Attach", Price: decimal.NewFromInt(30)})
	require.NoError(t, err)
	for i := 1; i <= 12; i++ {
		_, err := svc.UpdateType(ctx, "admin", created.ID, TaskTypeUpdate{Price: ptr(decimal.NewFromInt(int64(30 + i)))})
		require.NoError(t, err)
	}

	got, err := svc.GetType(ctx, created.ID)
	require.NoError(t, err)
	assert.Len(t, got.PriceHistory, RecentHistoryLimit)
	assert.True(t, got.PriceHistory[0].NewPrice.Equal(decimal.NewFromInt(42)))
}

func TestUpdateTypeRenameCollision(t *testing.T) {
	svc := NewService(newFakeStore(), nil, time.UTC)
	ctx := context.Background()

	_, err := svc.CreateType(ctx, "admin", NewTaskType{Name: "Zipper Install", Price: decimal.NewFromInt(35)})
	require.NoError(t, err)
	other, err := svc.CreateType(ctx, "admin", NewTaskType{Name: "Button Attach", Price: decimal.NewFromInt(15)})
	require.NoError(t, err)

	_, err = svc.UpdateType(ctx, "admin", other.ID, TaskTypeUpdate{Name: ptr("Zipper Install")})
	assert.ErrorIs(t, err, ErrDuplicateTaskTypeName)
}

func TestStatsCountsToday(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, nil, time.UTC)
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	store.completed = []CompletedTask{
		{ID: "a", CompletedDate: time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)},
		{ID: "b", CompletedDate: time.Date(2024, 6, 15, 23, 59, 59, 0, time.UTC)},
		{ID: "c", CompletedDate: time.Date(2024, 6, 16, 0, 0, 0, 0, time.UTC)},
		{ID: "d", CompletedDate: time.Date(2024, 6, 14, 23, 59, 59, 0, time.UTC)},
	}

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, stats.TotalTasks)
	assert.Equal(t, 2, stats.TasksToday)

	daily, err := svc.DailyActivity(context.Background(), time.Date(2024, 6, 16, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, daily, 1)
	assert.Equal(t, "c", daily[0].ID)
}

func TestDailyActivityReturnsWholeDay(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, nil, time.UTC)
	day := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 250; i++ {
		store.completed = append(store.completed, CompletedTask{
			ID:            fmt.Sprintf("ct%d", i),
			CompletedDate: day.Add(time.Duration(i) * time.Minute),
		})
	}
	store.completed = append(store.completed, CompletedTask{ID: "next", CompletedDate: day.AddDate(0, 0, 1)})

	items, err := svc.DailyActivity(context.Background(), day.Add(9*time.Hour))
	require.NoError(t, err)
	assert.Len(t, items, 250)

	page, total, err := svc.ListCompleted(context.Background(), CompletedFilter{Limit: 20, Offset: 240})
	require.NoError(t, err)
	assert.Equal(t, 251, total)
	assert.Len(t, page, 11)
}

func TestMissingTaskType(t *testing.T) {
	svc := NewService(newFakeStore(), nil, time.UTC)
	ctx := context.Background()

	_, err := svc.GetType(ctx, "nope")
	assert.ErrorIs(t, err, ErrTaskTypeNotFound)
	_, err = svc.UpdateType(ctx, "admin", "nope", TaskTypeUpdate{})
	assert.ErrorIs(t, err, ErrTaskTypeNotFound)
	assert.ErrorIs(t, svc.DeleteType(ctx, "admin", "nope"), ErrTaskTypeNotFound)
}
