package payrollhandler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"garmenthr/internal/domain/auth"
	"garmenthr/internal/domain/payroll"
	"garmenthr/internal/platform/jobs"
	"garmenthr/internal/transport/http/api"
	"garmenthr/internal/transport/http/middleware"
	"garmenthr/internal/transport/http/shared"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type Service interface {
	Generate(ctx context.Context, actorID string, month, year int) (payroll.GenerateResult, error)
	List(ctx context.Context, filter payroll.ListFilter) ([]payroll.Payroll, int, error)
	ListByEmployee(ctx context.Context, employeeID string) ([]payroll.Payroll, error)
	Get(ctx context.Context, id string) (payroll.Payroll, error)
	UpdateStatus(ctx context.Context, actorID, id, status string) (payroll.Payroll, error)
	Payslip(ctx context.Context, id string) ([]byte, payroll.Payroll, error)
	Export(ctx context.Context, month, year int) ([]byte, error)
}

// RunHistory lists recorded generation runs.
type RunHistory interface {
	Recent(ctx context.Context, jobType string, limit int) ([]jobs.Run, error)
}

type Handler struct {
	Service Service
	Perms   middleware.PermissionStore
	Runs    RunHistory
}

func NewHandler(service Service, perms middleware.PermissionStore, runs RunHistory) *Handler {
	return &Handler{Service: service, Perms: perms, Runs: runs}
}

type generateRequest struct {
	Month int `json:"month" validate:"gte=1,lte=12"`
	Year  int `json:"year" validate:"gte=2000,lte=2100"`
}

type statusRequest struct {
	Status string `json:"status" validate:"required,oneof=PENDING APPROVED PAID"`
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	read := middleware.RequirePermission(auth.PermPayrollRead, h.Perms)
	generate := middleware.RequirePermission(auth.PermPayrollGenerate, h.Perms)
	r.Route("/payroll", func(r chi.Router) {
		r.With(read).Get("/", h.handleList)
		r.With(generate).Post("/generate", h.handleGenerate)
		r.With(read).Get("/export", h.handleExport)
		r.With(generate).Get("/runs", h.handleRuns)
		r.With(read).Get("/employee/{employeeID}", h.handleListByEmployee)
		r.With(read).Get("/{payrollID}", h.handleGet)
		r.With(generate).Patch("/{payrollID}/status", h.handleUpdateStatus)
		r.With(read).Get("/{payrollID}/payslip", h.handlePayslip)
	})
}

func (h *Handler) handleGenerate(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}

	var payload generateRequest
	if !shared.DecodeJSON(w, r, &payload, reqID) {
		return
	}
	validator := shared.NewValidator()
	validator.Struct(payload)
	if validator.Reject(w, reqID) {
		return
	}

	result, err := h.Service.Generate(r.Context(), user.UserID, payload.Month, payload.Year)
	if err != nil {
		writeError(w, r, err, "payroll_generate_failed", "failed to generate payroll")
		return
	}
	api.Created(w, result, reqID)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	page := shared.Paginate(r)
	q := r.URL.Query()

	validator := shared.NewValidator()
	filter := payroll.ListFilter{
		Month:  queryInt(validator, q.Get("month"), "month", 1, 12),
		Year:   queryInt(validator, q.Get("year"), "year", payroll.MinYear, payroll.MaxYear),
		Status: strings.ToUpper(strings.TrimSpace(q.Get("status"))),
		Limit:  page.Limit,
		Offset: page.Offset,
	}
	filter.Status = validator.Enum("status", filter.Status, payroll.Statuses)
	if employeeID := strings.TrimSpace(q.Get("employeeId")); employeeID != "" {
		if !shared.ValidID(employeeID) {
			validator.Add("employeeId", "must be a valid id")
		}
		filter.EmployeeID = strings.ToLower(employeeID)
	}
	if validator.Reject(w, reqID) {
		return
	}

	items, total, err := h.Service.List(r.Context(), filter)
	if err != nil {
		writeError(w, r, err, "payroll_list_failed", "failed to list payroll")
		return
	}
	api.Success(w, api.NewPage(items, total, page.Limit, page.Offset), reqID)
}

func (h *Handler) handleListByEmployee(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	employeeID, ok := shared.PathID(r, "employeeID")
	if !ok {
		api.Success(w, []payroll.Payroll{}, reqID)
		return
	}
	items, err := h.Service.ListByEmployee(r.Context(), employeeID)
	if err != nil {
		writeError(w, r, err, "payroll_list_failed", "failed to list payroll")
		return
	}
	if items == nil {
		items = []payroll.Payroll{}
	}
	api.Success(w, items, reqID)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	id, ok := shared.PathID(r, "payrollID")
	if !ok {
		api.Fail(w, http.StatusNotFound, "not_found", payroll.ErrPayrollNotFound.Error(), reqID)
		return
	}
	p, err := h.Service.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err, "payroll_get_failed", "failed to load payroll")
		return
	}
	api.Success(w, p, reqID)
}

func (h *Handler) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}
	id, ok := shared.PathID(r, "payrollID")
	if !ok {
		api.Fail(w, http.StatusNotFound, "not_found", payroll.ErrPayrollNotFound.Error(), reqID)
		return
	}

	var payload statusRequest
	if !shared.DecodeJSON(w, r, &payload, reqID) {
		return
	}
	payload.Status = strings.ToUpper(strings.TrimSpace(payload.Status))
	validator := shared.NewValidator()
	validator.Struct(payload)
	if validator.Reject(w, reqID) {
		return
	}

	updated, err := h.Service.UpdateStatus(r.Context(), user.UserID, id, payload.Status)
	if err != nil {
		writeError(w, r, err, "payroll_status_failed", "failed to update payroll status")
		return
	}
	api.Success(w, updated, reqID)
}

func (h *Handler) handlePayslip(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	id, ok := shared.PathID(r, "payrollID")
	if !ok {
		api.Fail(w, http.StatusNotFound, "not_found", payroll.ErrPayrollNotFound.Error(), reqID)
		return
	}
	body, p, err := h.Service.Payslip(r.Context(), id)
	if err != nil {
		writeError(w, r, err, "payslip_failed", "failed to render payslip")
		return
	}
	api.Binary(w, "application/pdf", payroll.PayslipFilename(p), body)
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	q := r.URL.Query()
	validator := shared.NewValidator()
	validator.Required("month", q.Get("month"), "is required")
	validator.Required("year", q.Get("year"), "is required")
	month := queryInt(validator, q.Get("month"), "month", 1, 12)
	year := queryInt(validator, q.Get("year"), "year", payroll.MinYear, payroll.MaxYear)
	if validator.Reject(w, reqID) {
		return
	}

	body, err := h.Service.Export(r.Context(), month, year)
	if err != nil {
		writeError(w, r, err, "payroll_export_failed", "failed to export payroll")
		return
	}
	api.Binary(w, xlsxContentType, payroll.ExportFilename(month, year), body)
}

func (h *Handler) handleRuns(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	page := shared.ParsePagination(r, 20, 100)
	if h.Runs == nil {
		api.Success(w, []jobs.Run{}, reqID)
		return
	}
	runs, err := h.Runs.Recent(r.Context(), jobs.JobPayrollGenerate, page.Limit)
	if err != nil {
		writeError(w, r, err, "payroll_runs_failed", "failed to list payroll runs")
		return
	}
	if runs == nil {
		runs = []jobs.Run{}
	}
	api.Success(w, runs, reqID)
}

// queryInt parses an optional bounded integer query value; 0 means absent.
func queryInt(v *shared.Validator, raw, field string, minValue, maxValue int) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < minValue || n > maxValue {
		v.Add(field, "must be between "+strconv.Itoa(minValue)+" and "+strconv.Itoa(maxValue))
		return 0
	}
	return n
}

func writeError(w http.ResponseWriter, r *http.Request, err error, code, message string) {
	reqID := middleware.GetRequestID(r.Context())
	switch {
	case errors.Is(err, payroll.ErrPayrollNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", err.Error(), reqID)
	case errors.Is(err, payroll.ErrInvalidStatusTransition):
		api.Fail(w, http.StatusBadRequest, "invalid_status_transition", err.Error(), reqID)
	case errors.Is(err, payroll.ErrInvalidPeriod):
		api.Fail(w, http.StatusBadRequest, "invalid_period", err.Error(), reqID)
	default:
		log.Ctx(r.Context()).Error().Err(err).Str("code", code).Msg("payroll request failed")
		api.Fail(w, http.StatusInternalServerError, code, message, reqID)
	}
}
