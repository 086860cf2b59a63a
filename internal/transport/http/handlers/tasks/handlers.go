package taskhandler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"garmenthr/internal/domain/auth"
	"garmenthr/internal/domain/tasks"
	"garmenthr/internal/transport/http/api"
	"garmenthr/internal/transport/http/middleware"
	"garmenthr/internal/transport/http/shared"
)

type Service interface {
	CreateType(ctx context.Context, actorID string, in tasks.NewTaskType) (tasks.TaskType, error)
	ListTypes(ctx context.Context, status string) ([]tasks.TaskType, error)
	GetType(ctx context.Context, id string) (tasks.TaskType, error)
	UpdateType(ctx context.Context, actorID, id string, upd tasks.TaskTypeUpdate) (tasks.TaskType, error)
	DeleteType(ctx context.Context, actorID, id string) error
	PriceHistory(ctx context.Context, taskTypeID string, limit, offset int) ([]tasks.TaskPriceHistory, error)
	ListCompleted(ctx context.Context, filter tasks.CompletedFilter) ([]tasks.CompletedTask, int, error)
	Stats(ctx context.Context) (tasks.Stats, error)
}

type Handler struct {
	Service Service
	Perms   middleware.PermissionStore
	Loc     *time.Location
}

func NewHandler(service Service, perms middleware.PermissionStore, loc *time.Location) *Handler {
	if loc == nil {
		loc = time.Local
	}
	return &Handler{Service: service, Perms: perms, Loc: loc}
}

type createTaskTypeRequest struct {
	Name        string           `json:"name" validate:"required,max=100"`
	Description string           `json:"description" validate:"max=500"`
	Price       *decimal.Decimal `json:"price"`
	Status      string           `json:"status" validate:"omitempty,oneof=ACTIVE INACTIVE"`
}

type updateTaskTypeRequest struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Status      *string          `json:"status"`
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	read := middleware.RequirePermission(auth.PermTasksRead, h.Perms)
	write := middleware.RequirePermission(auth.PermTasksWrite, h.Perms)
	r.Group(func(r chi.Router) {
		r.With(read).Get("/tasks/types", h.handleListTypes)
		r.With(write).Post("/tasks/types", h.handleCreateType)
		r.With(read).Get("/tasks/types/{taskTypeID}", h.handleGetType)
		r.With(write).Patch("/tasks/types/{taskTypeID}", h.handleUpdateType)
		r.With(write).Put("/tasks/types/{taskTypeID}", h.handleUpdateType)
		r.With(write).Delete("/tasks/types/{taskTypeID}", h.handleDeleteType)
		r.With(read).Get("/tasks/types/{taskTypeID}/price-history", h.handlePriceHistory)
		r.With(read).Get("/tasks/completed", h.handleListCompleted)
		r.With(read).Get("/tasks/stats", h.handleStats)
	})
}

func (h *Handler) handleListTypes(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	status := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("status")))
	validator := shared.NewValidator()
	validator.Enum("status", status, tasks.Statuses)
	if validator.Reject(w, reqID) {
		return
	}

	items, err := h.Service.ListTypes(r.Context(), status)
	if err != nil {
		writeError(w, r, err, "task_type_list_failed", "failed to list task types")
		return
	}
	if items == nil {
		items = []tasks.TaskType{}
	}
	api.Success(w, items, reqID)
}

func (h *Handler) handleCreateType(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}

	var payload createTaskTypeRequest
	if !shared.DecodeJSON(w, r, &payload, reqID) {
		return
	}
	payload.Name = strings.TrimSpace(payload.Name)
	payload.Status = strings.ToUpper(strings.TrimSpace(payload.Status))

	validator := shared.NewValidator()
	validator.Struct(payload)
	validator.RequiredMoney("price", payload.Price)
	if validator.Reject(w, reqID) {
		return
	}

	in := tasks.NewTaskType{Name: payload.Name, Price: *payload.Price, Status: payload.Status}
	if desc := strings.TrimSpace(payload.Description); desc != "" {
		in.Description = &desc
	}
	created, err := h.Service.CreateType(r.Context(), user.UserID, in)
	if err != nil {
		writeError(w, r, err, "task_type_create_failed", "failed to create task type")
		return
	}
	api.Created(w, created, reqID)
}

func (h *Handler) handleGetType(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	id, ok := shared.PathID(r, "taskTypeID")
	if !ok {
		api.Fail(w, http.StatusNotFound, "not_found", tasks.ErrTaskTypeNotFound.Error(), reqID)
		return
	}
	t, err := h.Service.GetType(r.Context(), id)
	if err != nil {
		writeError(w, r, err, "task_type_get_failed", "failed to load task type")
		return
	}
	api.Success(w, t, reqID)
}

func (h *Handler) handleUpdateType(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}
	id, ok := shared.PathID(r, "taskTypeID")
	if !ok {
		api.Fail(w, http.StatusNotFound, "not_found", tasks.ErrTaskTypeNotFound.Error(), reqID)
		return
	}

	var payload updateTaskTypeRequest
	if !shared.DecodeJSON(w, r, &payload, reqID) {
		return
	}
	upd := tasks.TaskTypeUpdate{Description: payload.Description, Price: payload.Price}
	validator := shared.NewValidator()
	if payload.Name != nil {
		name := strings.TrimSpace(*payload.Name)
		if name == "" {
			validator.Add("name", "cannot be empty")
		}
		upd.Name = &name
	}
	if payload.Status != nil {
		status := strings.ToUpper(strings.TrimSpace(*payload.Status))
		if status == "" {
			validator.Add("status", "cannot be empty")
		}
		validator.Enum("status", status, tasks.Statuses)
		upd.Status = &status
	}
	validator.Money("price", payload.Price)
	if validator.Reject(w, reqID) {
		return
	}

	updated, err := h.Service.UpdateType(r.Context(), user.UserID, id, upd)
	if err != nil {
		writeError(w, r, err, "task_type_update_failed", "failed to update task type")
		return
	}
	api.Success(w, updated, reqID)
}

func (h *Handler) handleDeleteType(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}
	id, ok := shared.PathID(r, "taskTypeID")
	if !ok {
		api.Fail(w, http.StatusNotFound, "not_found", tasks.ErrTaskTypeNotFound.Error(), reqID)
		return
	}
	if err := h.Service.DeleteType(r.Context(), user.UserID, id); err != nil {
		writeError(w, r, err, "task_type_delete_failed", "failed to delete task type")
		return
	}
	api.Success(w, map[string]string{"message": "Task type deleted successfully"}, reqID)
}

func (h *Handler) handlePriceHistory(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	id, ok := shared.PathID(r, "taskTypeID")
	if !ok {
		api.Fail(w, http.StatusNotFound, "not_found", tasks.ErrTaskTypeNotFound.Error(), reqID)
		return
	}
	page := shared.Paginate(r)
	history, err := h.Service.PriceHistory(r.Context(), id, page.Limit, page.Offset)
	if err != nil {
		writeError(w, r, err, "price_history_failed", "failed to load price history")
		return
	}
	if history == nil {
		history = []tasks.TaskPriceHistory{}
	}
	api.Success(w, history, reqID)
}

func (h *Handler) handleListCompleted(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	page := shared.Paginate(r)
	q := r.URL.Query()

	validator := shared.NewValidator()
	filter := tasks.CompletedFilter{Limit: page.Limit, Offset: page.Offset}
	if employeeID := strings.TrimSpace(q.Get("employeeId")); employeeID != "" {
		if !shared.ValidID(employeeID) {
			validator.Add("employeeId", "must be a valid id")
		}
		filter.EmployeeID = strings.ToLower(employeeID)
	}
	filter.From, filter.To = h.dateRange(validator, q.Get("startDate"), q.Get("endDate"))
	if validator.Reject(w, reqID) {
		return
	}

	items, total, err := h.Service.ListCompleted(r.Context(), filter)
	if err != nil {
		writeError(w, r, err, "completed_tasks_failed", "failed to list completed tasks")
		return
	}
	api.Success(w, api.NewPage(items, total, page.Limit, page.Offset), reqID)
}

// dateRange parses an inclusive [start, end] query range into the half-open
// bounds the store expects. A date-only end covers that whole day.
func (h *Handler) dateRange(v *shared.Validator, rawStart, rawEnd string) (time.Time, time.Time) {
	var from, to time.Time
	if rawStart = strings.TrimSpace(rawStart); rawStart != "" {
		parsed, err := shared.ParseDateIn(rawStart, h.Loc)
		if err != nil {
			v.Add("startDate", "must be a valid date in YYYY-MM-DD format")
		}
		from = parsed
	}
	if rawEnd = strings.TrimSpace(rawEnd); rawEnd != "" {
		parsed, err := shared.ParseDateIn(rawEnd, h.Loc)
		if err != nil {
			v.Add("endDate", "must be a valid date in YYYY-MM-DD format")
		} else {
			to = shared.EndOfRange(rawEnd, parsed).Add(time.Nanosecond)
		}
	}
	if !from.IsZero() && !to.IsZero() {
		v.DateOrder("startDate", from, "endDate", to.Add(-time.Nanosecond))
	}
	return from, to
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	stats, err := h.Service.Stats(r.Context())
	if err != nil {
		writeError(w, r, err, "task_stats_failed", "failed to load task stats")
		return
	}
	api.Success(w, stats, reqID)
}

func writeError(w http.ResponseWriter, r *http.Request, err error, code, message string) {
	reqID := middleware.GetRequestID(r.Context())
	switch {
	case errors.Is(err, tasks.ErrTaskTypeNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", err.Error(), reqID)
	case errors.Is(err, tasks.ErrDuplicateTaskTypeName):
		api.Fail(w, http.StatusBadRequest, "duplicate_task_type", err.Error(), reqID)
	case errors.Is(err, tasks.ErrTaskTypeInUse):
		api.Fail(w, http.StatusBadRequest, "task_type_in_use", err.Error(), reqID)
	default:
		log.Ctx(r.Context()).Error().Err(err).Str("code", code).Msg("task request failed")
		api.Fail(w, http.StatusInternalServerError, code, message, reqID)
	}
}
