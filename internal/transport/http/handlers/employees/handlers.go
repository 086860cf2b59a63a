package employeehandler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"garmenthr/internal/domain/auth"
	"garmenthr/internal/domain/employees"
	"garmenthr/internal/transport/http/api"
	"garmenthr/internal/transport/http/middleware"
	"garmenthr/internal/transport/http/shared"
)

type Service interface {
	Create(ctx context.Context, actorID string, emp employees.NewEmployee) (employees.Employee, error)
	List(ctx context.Context, filter employees.ListFilter) ([]employees.Employee, int, error)
	Get(ctx context.Context, id string) (employees.Employee, error)
	Update(ctx context.Context, actorID, id string, upd employees.EmployeeUpdate) (employees.Employee, error)
	Delete(ctx context.Context, actorID, id string) error
	SalaryHistory(ctx context.Context, employeeID string) ([]employees.SalaryConfig, error)
	ActiveSalaryConfig(ctx context.Context, employeeID string) (employees.SalaryConfig, error)
	Stats(ctx context.Context) (employees.Stats, error)
}

type Handler struct {
	Service Service
	Perms   middleware.PermissionStore
}

func NewHandler(service Service, perms middleware.PermissionStore) *Handler {
	return &Handler{Service: service, Perms: perms}
}

type salaryPayload struct {
	BasicSalary   *decimal.Decimal `json:"basicSalary"`
	Allowance     *decimal.Decimal `json:"allowance"`
	EPFPercentage *decimal.Decimal `json:"epfPercentage"`
	ETFPercentage *decimal.Decimal `json:"etfPercentage"`
}

type createEmployeeRequest struct {
	FirstName    string         `json:"firstName" validate:"required,max=100"`
	LastName     string         `json:"lastName" validate:"required,max=100"`
	Email        string         `json:"email" validate:"omitempty,email"`
	Phone        string         `json:"phone" validate:"required,max=30"`
	Address      string         `json:"address" validate:"max=500"`
	NICNumber    string         `json:"nicNumber" validate:"required,max=20"`
	Gender       string         `json:"gender" validate:"required,oneof=MALE FEMALE OTHER"`
	Age          int            `json:"age" validate:"gte=18"`
	EmployeeType string         `json:"employeeType" validate:"omitempty,oneof=PERMANENT TEMPORARY"`
	Status       string         `json:"status" validate:"omitempty,oneof=ACTIVE INACTIVE"`
	Permanent    *salaryPayload `json:"permanent"`
}

type updateEmployeeRequest struct {
	FirstName    *string        `json:"firstName"`
	LastName     *string        `json:"lastName"`
	Email        *string        `json:"email"`
	Phone        *string        `json:"phone"`
	Address      *string        `json:"address"`
	NICNumber    *string        `json:"nicNumber"`
	Gender       *string        `json:"gender"`
	Age          *int           `json:"age"`
	EmployeeType *string        `json:"employeeType"`
	Status       *string        `json:"status"`
	Permanent    *salaryPayload `json:"permanent"`
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	read := middleware.RequirePermission(auth.PermEmployeesRead, h.Perms)
	write := middleware.RequirePermission(auth.PermEmployeesWrite, h.Perms)
	r.Route("/employees", func(r chi.Router) {
		r.With(read).Get("/", h.handleList)
		r.With(write).Post("/", h.handleCreate)
		r.With(read).Get("/stats", h.handleStats)
		r.With(read).Get("/{employeeID}", h.handleGet)
		r.With(write).Patch("/{employeeID}", h.handleUpdate)
		r.With(write).Put("/{employeeID}", h.handleUpdate)
		r.With(write).Delete("/{employeeID}", h.handleDelete)
		r.With(read).Get("/{employeeID}/salary-configs", h.handleSalaryHistory)
		r.With(read).Get("/{employeeID}/salary-configs/active", h.handleActiveSalary)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	page := shared.Paginate(r)
	q := r.URL.Query()
	filter := employees.ListFilter{
		EmployeeType: strings.ToUpper(strings.TrimSpace(q.Get("type"))),
		Status:       strings.ToUpper(strings.TrimSpace(q.Get("status"))),
		Search:       strings.TrimSpace(q.Get("search")),
		Limit:        page.Limit,
		Offset:       page.Offset,
	}
	if filter.EmployeeType == "" {
		filter.EmployeeType = strings.ToUpper(strings.TrimSpace(q.Get("employeeType")))
	}

	validator := shared.NewValidator()
	filter.EmployeeType = validator.Enum("type", filter.EmployeeType, employees.Types)
	filter.Status = validator.Enum("status", filter.Status, employees.Statuses)
	if validator.Reject(w, reqID) {
		return
	}

	items, total, err := h.Service.List(r.Context(), filter)
	if err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("list employees failed")
		api.Fail(w, http.StatusInternalServerError, "employee_list_failed", "failed to list employees", reqID)
		return
	}
	api.Success(w, api.NewPage(items, total, page.Limit, page.Offset), reqID)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}

	var payload createEmployeeRequest
	if !shared.DecodeJSON(w, r, &payload, reqID) {
		return
	}
	payload.Email = strings.TrimSpace(payload.Email)
	payload.Gender = strings.ToUpper(strings.TrimSpace(payload.Gender))
	payload.EmployeeType = strings.ToUpper(strings.TrimSpace(payload.EmployeeType))
	payload.Status = strings.ToUpper(strings.TrimSpace(payload.Status))

	validator := shared.NewValidator()
	validator.Struct(payload)
	salary := validateSalary(validator, payload.Permanent)
	if validator.Reject(w, reqID) {
		return
	}

	created, err := h.Service.Create(r.Context(), user.UserID, employees.NewEmployee{
		FirstName:    payload.FirstName,
		LastName:     payload.LastName,
		Email:        optional(payload.Email),
		Phone:        payload.Phone,
		Address:      optional(payload.Address),
		NICNumber:    payload.NICNumber,
		Gender:       payload.Gender,
		Age:          payload.Age,
		EmployeeType: payload.EmployeeType,
		Status:       payload.Status,
		Permanent:    salary,
	})
	if err != nil {
		writeError(w, r, err, "employee_create_failed", "failed to create employee")
		return
	}
	api.Created(w, created, reqID)
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	stats, err := h.Service.Stats(r.Context())
	if err != nil {
		writeError(w, r, err, "employee_stats_failed", "failed to load employee stats")
		return
	}
	api.Success(w, stats, reqID)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	id, ok := shared.PathID(r, "employeeID")
	if !ok {
		api.Fail(w, http.StatusNotFound, "not_found", employees.ErrEmployeeNotFound.Error(), reqID)
		return
	}
	emp, err := h.Service.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err, "employee_get_failed", "failed to load employee")
		return
	}
	api.Success(w, emp, reqID)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}
	id, ok := shared.PathID(r, "employeeID")
	if !ok {
		api.Fail(w, http.StatusNotFound, "not_found", employees.ErrEmployeeNotFound.Error(), reqID)
		return
	}

	var payload updateEmployeeRequest
	if !shared.DecodeJSON(w, r, &payload, reqID) {
		return
	}
	upd, validator := buildUpdate(payload)
	if validator.Reject(w, reqID) {
		return
	}

	updated, err := h.Service.Update(r.Context(), user.UserID, id, upd)
	if err != nil {
		writeError(w, r, err, "employee_update_failed", "failed to update employee")
		return
	}
	api.Success(w, updated, reqID)
}

func buildUpdate(payload updateEmployeeRequest) (employees.EmployeeUpdate, *shared.Validator) {
	validator := shared.NewValidator()
	upd := employees.EmployeeUpdate{
		FirstName:    trimmed(payload.FirstName),
		LastName:     trimmed(payload.LastName),
		Email:        trimmed(payload.Email),
		Phone:        trimmed(payload.Phone),
		Address:      trimmed(payload.Address),
		NICNumber:    trimmed(payload.NICNumber),
		Gender:       upper(payload.Gender),
		Age:          payload.Age,
		EmployeeType: upper(payload.EmployeeType),
		Status:       upper(payload.Status),
	}
	for field, value := range map[string]*string{
		"firstName":    upd.FirstName,
		"lastName":     upd.LastName,
		"phone":        upd.Phone,
		"nicNumber":    upd.NICNumber,
		"gender":       upd.Gender,
		"employeeType": upd.EmployeeType,
		"status":       upd.Status,
	} {
		if value != nil && *value == "" {
			validator.Add(field, "cannot be empty")
		}
	}
	if upd.Gender != nil {
		validator.Enum("gender", *upd.Gender, employees.Genders)
	}
	if upd.EmployeeType != nil {
		validator.Enum("employeeType", *upd.EmployeeType, employees.Types)
	}
	if upd.Status != nil {
		validator.Enum("status", *upd.Status, employees.Statuses)
	}
	if upd.Email != nil && *upd.Email != "" {
		validator.Struct(struct {
			Email string `json:"email" validate:"email"`
		}{Email: *upd.Email})
	}
	if upd.Age != nil && *upd.Age < employees.MinAge {
		validator.Add("age", "must be greater than or equal to 18")
	}
	upd.Permanent = validateSalary(validator, payload.Permanent)
	return upd, validator
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}
	id, ok := shared.PathID(r, "employeeID")
	if !ok {
		api.Fail(w, http.StatusNotFound, "not_found", employees.ErrEmployeeNotFound.Error(), reqID)
		return
	}
	if err := h.Service.Delete(r.Context(), user.UserID, id); err != nil {
		writeError(w, r, err, "employee_delete_failed", "failed to delete employee")
		return
	}
	api.Success(w, map[string]string{"message": "Employee deleted successfully"}, reqID)
}

func (h *Handler) handleSalaryHistory(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	id, ok := shared.PathID(r, "employeeID")
	if !ok {
		api.Fail(w, http.StatusNotFound, "not_found", employees.ErrEmployeeNotFound.Error(), reqID)
		return
	}
	history, err := h.Service.SalaryHistory(r.Context(), id)
	if err != nil {
		writeError(w, r, err, "salary_history_failed", "failed to load salary history")
		return
	}
	if history == nil {
		history = []employees.SalaryConfig{}
	}
	api.Success(w, history, reqID)
}

func (h *Handler) handleActiveSalary(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	id, ok := shared.PathID(r, "employeeID")
	if !ok {
		api.Fail(w, http.StatusNotFound, "not_found", employees.ErrEmployeeNotFound.Error(), reqID)
		return
	}
	cfg, err := h.Service.ActiveSalaryConfig(r.Context(), id)
	if err != nil {
		writeError(w, r, err, "salary_config_failed", "failed to load salary configuration")
		return
	}
	api.Success(w, cfg, reqID)
}

func validateSalary(v *shared.Validator, payload *salaryPayload) *employees.SalaryInput {
	if payload == nil {
		return nil
	}
	v.RequiredMoney("permanent.basicSalary", payload.BasicSalary)
	v.Money("permanent.allowance", payload.Allowance)
	v.Percentage("permanent.epfPercentage", payload.EPFPercentage)
	v.Percentage("permanent.etfPercentage", payload.ETFPercentage)
	if payload.BasicSalary == nil {
		return nil
	}
	return &employees.SalaryInput{
		BasicSalary:   *payload.BasicSalary,
		Allowance:     payload.Allowance,
		EPFPercentage: payload.EPFPercentage,
		ETFPercentage: payload.ETFPercentage,
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error, code, message string) {
	reqID := middleware.GetRequestID(r.Context())
	switch {
	case errors.Is(err, employees.ErrEmployeeNotFound), errors.Is(err, employees.ErrSalaryConfigNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", err.Error(), reqID)
	case errors.Is(err, employees.ErrDuplicateNIC):
		api.Fail(w, http.StatusBadRequest, "duplicate_nic", err.Error(), reqID)
	case errors.Is(err, employees.ErrEmployeeInUse):
		api.Fail(w, http.StatusBadRequest, "employee_in_use", err.Error(), reqID)
	default:
		log.Ctx(r.Context()).Error().Err(err).Str("code", code).Msg("employee request failed")
		api.Fail(w, http.StatusInternalServerError, code, message, reqID)
	}
}

func optional(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}

func trimmed(value *string) *string {
	if value == nil {
		return nil
	}
	out := strings.TrimSpace(*value)
	return &out
}

func upper(value *string) *string {
	if value == nil {
		return nil
	}
	out := strings.ToUpper(strings.TrimSpace(*value))
	return &out
}
