package submissionhandler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"garmenthr/internal/domain/auth"
	"garmenthr/internal/domain/submissions"
	"garmenthr/internal/transport/http/api"
	"garmenthr/internal/transport/http/middleware"
	"garmenthr/internal/transport/http/shared"
)

type Service interface {
	Submit(ctx context.Context, actorID string, req submissions.Request) (submissions.Submission, error)
	Get(ctx context.Context, id string) (submissions.Submission, error)
	List(ctx context.Context, filter submissions.ListFilter) ([]submissions.Submission, int, error)
}

type Handler struct {
	Service     Service
	Perms       middleware.PermissionStore
	Idempotency middleware.IdempotencyBackend
	Loc         *time.Location
}

func NewHandler(service Service, perms middleware.PermissionStore, idem middleware.IdempotencyBackend, loc *time.Location) *Handler {
	if loc == nil {
		loc = time.Local
	}
	return &Handler{Service: service, Perms: perms, Idempotency: idem, Loc: loc}
}

type taskEntry struct {
	TaskTypeID string  `json:"taskTypeId" validate:"required"`
	Quantity   int     `json:"quantity"`
	Notes      *string `json:"notes"`
}

type submitRequest struct {
	EmployeeID string      `json:"employeeId" validate:"required"`
	Tasks      []taskEntry `json:"tasks" validate:"required,min=1,dive"`
	Notes      *string     `json:"notes" validate:"omitempty,max=1000"`
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	read := middleware.RequirePermission(auth.PermSubmissionsRead, h.Perms)
	write := middleware.RequirePermission(auth.PermSubmissionsWrite, h.Perms)
	r.Route("/tasks/submissions", func(r chi.Router) {
		r.With(read).Get("/", h.handleList)
		r.With(write, middleware.Idempotency(h.Idempotency)).Post("/", h.handleSubmit)
		r.With(read).Get("/{submissionID}", h.handleGet)
	})
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}

	var payload submitRequest
	if !shared.DecodeJSON(w, r, &payload, reqID) {
		return
	}
	validator := shared.NewValidator()
	validator.Struct(payload)
	if validator.Reject(w, reqID) {
		return
	}

	req := submissions.Request{EmployeeID: payload.EmployeeID, Notes: payload.Notes}
	for _, entry := range payload.Tasks {
		req.Tasks = append(req.Tasks, submissions.Entry{TaskTypeID: entry.TaskTypeID, Quantity: entry.Quantity, Notes: entry.Notes})
	}

	sub, err := h.Service.Submit(r.Context(), user.UserID, req)
	switch {
	case err == nil:
		api.Created(w, sub, reqID)
	case errors.Is(err, submissions.ErrEmployeeNotFound), errors.Is(err, submissions.ErrTaskTypeNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", err.Error(), reqID)
	case errors.Is(err, submissions.ErrNoTasks):
		shared.FailValidation(w, reqID, []shared.ValidationIssue{{Field: "tasks", Reason: "must contain at least 1 item"}})
	default:
		log.Ctx(r.Context()).Error().Err(err).Str("employeeId", payload.EmployeeID).Msg("task submission failed")
		api.Fail(w, http.StatusInternalServerError, "submission_failed", "failed to record task submission", reqID)
	}
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	page := shared.Paginate(r)
	q := r.URL.Query()
	filter := submissions.ListFilter{
		EmployeeName: strings.TrimSpace(q.Get("employeeName")),
		Limit:        page.Limit,
		Offset:       page.Offset,
	}

	validator := shared.NewValidator()
	rawStart, rawEnd := strings.TrimSpace(q.Get("startDate")), strings.TrimSpace(q.Get("endDate"))
	if rawStart != "" {
		parsed, err := shared.ParseDateIn(rawStart, h.Loc)
		if err != nil {
			validator.Add("startDate", "must be a valid date in YYYY-MM-DD format")
		}
		filter.From = parsed
	}
	if rawEnd != "" {
		parsed, err := shared.ParseDateIn(rawEnd, h.Loc)
		if err != nil {
			validator.Add("endDate", "must be a valid date in YYYY-MM-DD format")
		}
		filter.To = shared.EndOfRange(rawEnd, parsed)
	}
	validator.DateOrder("startDate", filter.From, "endDate", filter.To)
	if validator.Reject(w, reqID) {
		return
	}

	items, total, err := h.Service.List(r.Context(), filter)
	if err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("list submissions failed")
		api.Fail(w, http.StatusInternalServerError, "submission_list_failed", "failed to list submissions", reqID)
		return
	}
	w.Header().Set("X-Total-Count", strconv.Itoa(total))
	api.Success(w, api.NewPage(items, total, page.Limit, page.Offset), reqID)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	id, ok := shared.PathID(r, "submissionID")
	if !ok {
		api.Fail(w, http.StatusNotFound, "not_found", submissions.ErrSubmissionNotFound.Error(), reqID)
		return
	}
	sub, err := h.Service.Get(r.Context(), id)
	if errors.Is(err, submissions.ErrSubmissionNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", err.Error(), reqID)
		return
	}
	if err != nil {
		log.Ctx(r.Context()).Error().Err(err).Str("submissionId", id).Msg("get submission failed")
		api.Fail(w, http.StatusInternalServerError, "submission_get_failed", "failed to load submission", reqID)
		return
	}
	api.Success(w, sub, reqID)
}
