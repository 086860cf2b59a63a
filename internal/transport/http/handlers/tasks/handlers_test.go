package taskhandler

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"garmenthr/internal/domain/auth"
	"garmenthr/internal/domain/tasks"
	"garmenthr/internal/transport/http/handlers/handlertest"
)

const typeID = "3b241101-e2bb-4255-8caf-4136c566a962"

type fakeService struct {
	created         []tasks.NewTaskType
	updates         []tasks.TaskTypeUpdate
	completedFilter tasks.CompletedFilter
	createErr       error
	deleteErr       error
}

func (f *fakeService) CreateType(_ context.Context, _ string, in tasks.NewTaskType) (tasks.TaskType, error) {
	if f.createErr != nil {
		return tasks.TaskType{}, f.createErr
	}
	f.created = append(f.created, in)
	return tasks.TaskType{ID: typeID, Name: in.Name, Price: in.Price}, nil
}

func (f *fakeService) ListTypes(context.Context, string) ([]tasks.TaskType, error) {
	return nil, nil
}

func (f *fakeService) GetType(_ context.Context, id string) (tasks.TaskType, error) {
	if id != typeID {
		return tasks.TaskType{}, tasks.ErrTaskTypeNotFound
	}
	return tasks.TaskType{ID: id, Price: decimal.NewFromInt(25)}, nil
}

func (f *fakeService) UpdateType(_ context.Context, _, id string, upd tasks.TaskTypeUpdate) (tasks.TaskType, error) {
	f.updates = append(f.updates, upd)
	return tasks.TaskType{ID: id}, nil
}

func (f *fakeService) DeleteType(context.Context, string, string) error {
	return f.deleteErr
}

func (f *fakeService) PriceHistory(context.Context, string, int, int) ([]tasks.TaskPriceHistory, error) {
	return nil, nil
}

func (f *fakeService) ListCompleted(_ context.Context, filter tasks.CompletedFilter) ([]tasks.CompletedTask, int, error) {
	f.completedFilter = filter
	return nil, 0, nil
}

func (f *fakeService) Stats(context.Context) (tasks.Stats, error) {
	return tasks.Stats{TotalTasks: 4, TasksToday: 1}, nil
}

func router(svc Service) http.Handler {
	h := NewHandler(svc, auth.StaticPermissions{}, time.UTC)
	return handlertest.Router(func(r chi.Router) { h.RegisterRoutes(r) })
}

func TestCreateTaskType(t *testing.T) {
	svc := &fakeService{}
	rec := handlertest.Do(t, router(svc), http.MethodPost, "/tasks/types",
		map[string]any{"name": " Band Attach ", "price": "30.50", "description": "Attach waistband"}, auth.RoleAdmin)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.Len(t, svc.created, 1)
	assert.Equal(t, "Band Attach", svc.created[0].Name)
	assert.True(t, svc.created[0].Price.Equal(decimal.RequireFromString("30.5")))
	require.NotNil(t, svc.created[0].Description)

	var out struct {
		Price string `json:"price"`
	}
	handlertest.Data(t, rec, &out)
	assert.Equal(t, "30.5", out.Price)
}

func TestCreateTaskTypeValidation(t *testing.T) {
	tests := []struct {
		name string
		body map[string]any
	}{
		{name: "missing price", body: map[string]any{"name": "Hem"}},
		{name: "negative price", body: map[string]any{"name": "Hem", "price": -1}},
		{name: "sub-cent price", body: map[string]any{"name": "Hem", "price": "12.345"}},
		{name: "missing name", body: map[string]any{"price": 10}},
		{name: "bad status", body: map[string]any{"name": "Hem", "price": 10, "status": "archived"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := &fakeService{}
			rec := handlertest.Do(t, router(svc), http.MethodPost, "/tasks/types", tc.body, auth.RoleAdmin)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "validation_error", handlertest.ErrorCode(t, rec))
			assert.Empty(t, svc.created)
		})
	}
}

func TestTaskTypeErrors(t *testing.T) {
	rec := handlertest.Do(t, router(&fakeService{createErr: tasks.ErrDuplicateTaskTypeName}), http.MethodPost, "/tasks/types",
		map[string]any{"name": "Hem", "price": 10}, auth.RoleAdmin)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "duplicate_task_type", handlertest.ErrorCode(t, rec))

	rec = handlertest.Do(t, router(&fakeService{deleteErr: tasks.ErrTaskTypeInUse}), http.MethodDelete, "/tasks/types/"+typeID, nil, auth.RoleAdmin)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "task_type_in_use", handlertest.ErrorCode(t, rec))

	rec = handlertest.Do(t, router(&fakeService{deleteErr: errors.New("boom")}), http.MethodDelete, "/tasks/types/"+typeID, nil, auth.RoleAdmin)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "task_type_delete_failed", handlertest.ErrorCode(t, rec))

	rec = handlertest.Do(t, router(&fakeService{}), http.MethodGet, "/tasks/types/not-a-uuid", nil, auth.RoleAdmin)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateTaskTypePrice(t *testing.T) {
	svc := &fakeService{}
	h := router(svc)

	rec := handlertest.Do(t, h, http.MethodPatch, "/tasks/types/"+typeID, map[string]any{"price": "25.00"}, auth.RoleAdmin)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, svc.updates, 1)
	assert.True(t, svc.updates[0].Price.Equal(decimal.NewFromInt(25)))
	assert.Nil(t, svc.updates[0].Name)

	rec = handlertest.Do(t, h, http.MethodPatch, "/tasks/types/"+typeID, map[string]any{"price": "-5"}, auth.RoleAdmin)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = handlertest.Do(t, h, http.MethodPatch, "/tasks/types/"+typeID, map[string]any{"price": "12.345"}, auth.RoleAdmin)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "validation_error", handlertest.ErrorCode(t, rec))

	rec = handlertest.Do(t, h, http.MethodPatch, "/tasks/types/"+typeID, map[string]any{"price": 30}, auth.RoleSupervisor)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Len(t, svc.updates, 1)
}

func TestListCompletedDateRange(t *testing.T) {
	svc := &fakeService{}
	h := router(svc)
	employeeID := "6F9619FF-8B86-D011-B42D-00C04FC964FF"

	rec := handlertest.Do(t, h, http.MethodGet, "/tasks/completed?employeeId="+employeeID+"&startDate=2025-03-01&endDate=2025-03-31", nil, auth.RoleSupervisor)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "6f9619ff-8b86-d011-b42d-00c04fc964ff", svc.completedFilter.EmployeeID)
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), svc.completedFilter.From)
	assert.Equal(t, time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC), svc.completedFilter.To)

	rec = handlertest.Do(t, h, http.MethodGet, "/tasks/completed?startDate=2025-04-01&endDate=2025-03-01", nil, auth.RoleAdmin)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = handlertest.Do(t, h, http.MethodGet, "/tasks/completed?employeeId=abc", nil, auth.RoleAdmin)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTaskStats(t *testing.T) {
	rec := handlertest.Do(t, router(&fakeService{}), http.MethodGet, "/tasks/stats", nil, auth.RoleSupervisor)
	require.Equal(t, http.StatusOK, rec.Code)
	var stats tasks.Stats
	handlertest.Data(t, rec, &stats)
	assert.Equal(t, tasks.Stats{TotalTasks: 4, TasksToday: 1}, stats)
}
