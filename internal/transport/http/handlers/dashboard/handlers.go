package dashboardhandler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"garmenthr/internal/domain/auth"
	"garmenthr/internal/domain/dashboard"
	"garmenthr/internal/domain/tasks"
	"garmenthr/internal/transport/http/api"
	"garmenthr/internal/transport/http/middleware"
	"garmenthr/internal/transport/http/shared"
)

type Service interface {
	Stats(ctx context.Context) (dashboard.Stats, error)
	DailyActivity(ctx context.Context, date time.Time) ([]tasks.CompletedTask, error)
}

type Handler struct {
	Service Service
	Perms   middleware.PermissionStore
	Loc     *time.Location
	now     func() time.Time
}

func NewHandler(service Service, perms middleware.PermissionStore, loc *time.Location) *Handler {
	if loc == nil {
		loc = time.Local
	}
	return &Handler{Service: service, Perms: perms, Loc: loc, now: time.Now}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	read := middleware.RequirePermission(auth.PermDashboardRead, h.Perms)
	r.Route("/dashboard", func(r chi.Router) {
		r.With(read).Get("/stats", h.handleStats)
		r.With(read).Get("/daily-activity", h.handleDailyActivity)
	})
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	stats, err := h.Service.Stats(r.Context())
	if err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("dashboard stats failed")
		api.Fail(w, http.StatusInternalServerError, "dashboard_stats_failed", "failed to load dashboard stats", reqID)
		return
	}
	api.Success(w, stats, reqID)
}

// handleDailyActivity defaults to today in the configured location.
func (h *Handler) handleDailyActivity(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	raw := strings.TrimSpace(r.URL.Query().Get("date"))

	var date time.Time
	if raw == "" {
		now := h.now().In(h.Loc)
		date = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, h.Loc)
	} else {
		parsed, err := shared.ParseDateIn(raw, h.Loc)
		if err != nil || !shared.IsDateOnly(raw) {
			shared.FailValidation(w, reqID, []shared.ValidationIssue{{Field: "date", Reason: "must be a date (YYYY-MM-DD)"}})
			return
		}
		date = parsed
	}

	items, err := h.Service.DailyActivity(r.Context(), date)
	if err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("daily activity failed")
		api.Fail(w, http.StatusInternalServerError, "daily_activity_failed", "failed to load daily activity", reqID)
		return
	}
	api.Success(w, items, reqID)
}
