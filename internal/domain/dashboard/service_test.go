package dashboard

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"garmenthr/internal/domain/employees"
	"garmenthr/internal/domain/tasks"
)

type fakeEmployees struct {
	stats employees.Stats
	err   error
}

func (f fakeEmployees) Stats(context.Context) (employees.Stats, error) {
	return f.stats, f.err
}

type fakeTasks struct {
	stats    tasks.Stats
	items    []tasks.CompletedTask
	lastDate time.Time
}

func (f *fakeTasks) Stats(context.Context) (tasks.Stats, error) {
	return f.stats, nil
}

func (f *fakeTasks) DailyActivity(_ context.Context, date time.Time) ([]tasks.CompletedTask, error) {
	f.lastDate = date
	return f.items, nil
}

type fakePayroll struct {
	month, year int
}

func (f *fakePayroll) PeriodNet(_ context.Context, month, year int) (int, decimal.Decimal, error) {
	f.month, f.year = month, year
	return 3, decimal.RequireFromString("120500.50"), nil
}

func TestStatsCombinesSources(t *testing.T) {
	emp := fakeEmployees{stats: employees.Stats{
		Total:    5,
		ByType:   employees.TypeCounts{Permanent: 3, Temporary: 2},
		ByStatus: employees.StatusCounts{Active: 4, Inactive: 1},
	}}
	tk := &fakeTasks{stats: tasks.Stats{TotalTasks: 40, TasksToday: 6}}
	pay := &fakePayroll{}
	svc := NewService(emp, tk, pay, time.UTC)
	svc.now = func() time.Time { return time.Date(2025, 3, 31, 23, 30, 0, 0, time.UTC) }

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, EmployeeStats{Total: 5, Permanent: 3, Temporary: 2, Active: 4, Inactive: 1}, stats.Employees)
	assert.Equal(t, TaskStats{Total: 40, Today: 6}, stats.Tasks)
	assert.Equal(t, 3, stats.Payroll.ThisMonth)
	assert.Equal(t, "120500.5", stats.Payroll.ThisMonthNet.String())
	assert.Equal(t, 3, pay.month)
	assert.Equal(t, 2025, pay.year)
}

func TestStatsUsesConfiguredLocation(t *testing.T) {
	loc := time.FixedZone("UTC+5:30", 5*3600+1800)
	pay := &fakePayroll{}
	svc := NewService(fakeEmployees{}, &fakeTasks{}, pay, loc)
	svc.now = func() time.Time { return time.Date(2025, 3, 31, 20, 0, 0, 0, time.UTC) }

	_, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, pay.month)
}

func TestStatsWrapsErrors(t *testing.T) {
	svc := NewService(fakeEmployees{err: errors.New("db down")}, &fakeTasks{}, &fakePayroll{}, time.UTC)

	_, err := svc.Stats(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "employee stats")
}

func TestDailyActivityNeverNil(t *testing.T) {
	tk := &fakeTasks{}
	svc := NewService(fakeEmployees{}, tk, &fakePayroll{}, time.UTC)
	date := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)

	items, err := svc.DailyActivity(context.Background(), date)
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
	assert.Equal(t, date, tk.lastDate)
}

func TestDailyActivityIsNotTruncated(t *testing.T) {
	date := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)
	tk := &fakeTasks{}
	for i := 0; i < 250; i++ {
		tk.items = append(tk.items, tasks.CompletedTask{ID: fmt.Sprintf("ct%d", i), CompletedDate: date})
	}
	svc := NewService(fakeEmployees{}, tk, &fakePayroll{}, time.UTC)

	items, err := svc.DailyActivity(context.Background(), date)
	require.NoError(t, err)
	assert.Len(t, items, 250)
}
