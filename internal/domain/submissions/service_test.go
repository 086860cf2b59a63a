package submissions

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"garmenthr/internal/domain/tasks"
)

type fakeStore struct {
	employees   map[string]bool
	prices      map[string]decimal.Decimal
	priceLoads  int
	created     []Submission
	lines       []Line
	lastTimeout time.Duration
	createErr   error
}

func (f *fakeStore) EmployeeExists(_ context.Context, employeeID string) (bool, error) {
	return f.employees[employeeID], nil
}

func (f *fakeStore) TaskTypePrices(_ context.Context, ids []string) (map[string]decimal.Decimal, error) {
	f.priceLoads++
	out := map[string]decimal.Decimal{}
	for _, id := range ids {
		if p, ok := f.prices[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func (f *fakeStore) Create(_ context.Context, req Request, plan Plan, now time.Time, timeout time.Duration) (Submission, error) {
	f.lastTimeout = timeout
	if f.createErr != nil {
		return Submission{}, f.createErr
	}
	sub := Submission{ID: "s1", EmployeeID: req.EmployeeID, TotalAmount: plan.Total, SubmissionDate: now}
	for _, line := range plan.Lines {
		sub.Tasks = append(sub.Tasks, tasks.CompletedTask{TaskTypeID: line.TaskTypeID, Quantity: line.Quantity, PriceAtTime: line.PriceAtTime, TotalAmount: line.TotalAmount})
	}
	f.created = append(f.created, sub)
	f.lines = append(f.lines, plan.Lines...)
	return sub, nil
}

func (f *fakeStore) Get(_ context.Context, id string) (Submission, error) {
	for _, sub := range f.created {
		if sub.ID == id {
			return sub, nil
		}
	}
	return Submission{}, ErrSubmissionNotFound
}

func (f *fakeStore) List(context.Context, ListFilter) ([]Submission, int, error) {
	return f.created, len(f.created), nil
}

type fakeMetrics struct {
	totals []decimal.Decimal
}

func (m *fakeMetrics) SubmissionRecorded(total decimal.Decimal) {
	m.totals = append(m.totals, total)
}

func newStore() *fakeStore {
	return &fakeStore{
		employees: map[string]bool{"emp-1": true},
		prices:    map[string]decimal.Decimal{"tt-1": decimal.NewFromInt(25), "tt-2": decimal.NewFromInt(30)},
	}
}

func TestSubmitPersistsSnapshot(t *testing.T) {
	store := newStore()
	sink := &fakeMetrics{}
	svc := NewService(store, nil, sink, 0)

	sub, err := svc.Submit(context.Background(), "sup-1", Request{
		EmployeeID: "EMP-1",
		Tasks: []Entry{
			{TaskTypeID: "tt-1", Quantity: 2},
			{TaskTypeID: "tt-2", Quantity: 0},
			{TaskTypeID: " TT-2 ", Quantity: 1},
		},
	})
	require.NoError(t, err)

	assert.True(t, sub.TotalAmount.Equal(decimal.NewFromInt(80)))
	assert.Len(t, sub.Tasks, 2)
	assert.Equal(t, 1, store.priceLoads)
	assert.Equal(t, DefaultTxTimeout, store.lastTimeout)
	require.Len(t, sink.totals, 1)
	assert.True(t, sink.totals[0].Equal(decimal.NewFromInt(80)))
}

func TestSubmitUnknownTaskTypePersistsNothing(t *testing.T) {
	store := newStore()
	svc := NewService(store, nil, nil, time.Second)

	_, err := svc.Submit(context.Background(), "sup-1", Request{
		EmployeeID: "emp-1",
		Tasks:      []Entry{{TaskTypeID: "tt-1", Quantity: 1}, {TaskTypeID: "tt-404", Quantity: 1}},
	})
	require.Error(t, err)
	var notFound *TaskTypeNotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, "tt-404", notFound.ID)
	assert.Empty(t, store.created)
	assert.Empty(t, store.lines)
}

func TestSubmitUnknownEmployee(t *testing.T) {
	svc := NewService(newStore(), nil, nil, time.Second)
	_, err := svc.Submit(context.Background(), "sup-1", Request{EmployeeID: "ghost", Tasks: []Entry{{TaskTypeID: "tt-1", Quantity: 1}}})
	assert.ErrorIs(t, err, ErrEmployeeNotFound)
}

func TestSubmitRequiresTasks(t *testing.T) {
	svc := NewService(newStore(), nil, nil, time.Second)
	_, err := svc.Submit(context.Background(), "sup-1", Request{EmployeeID: "emp-1"})
	assert.ErrorIs(t, err, ErrNoTasks)
}

func TestSubmitStoreFailureIsWrapped(t *testing.T) {
	store := newStore()
	store.createErr = context.DeadlineExceeded
	sink := &fakeMetrics{}
	svc := NewService(store, nil, sink, time.Millisecond)

	_, err := svc.Submit(context.Background(), "sup-1", Request{EmployeeID: "emp-1", Tasks: []Entry{{TaskTypeID: "tt-1", Quantity: 1}}})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Empty(t, sink.totals)
}
