package audithandler

import (
	"context"
	"encoding/csv"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"garmenthr/internal/domain/audit"
	"garmenthr/internal/domain/auth"
	"garmenthr/internal/transport/http/api"
	"garmenthr/internal/transport/http/middleware"
	"garmenthr/internal/transport/http/shared"
)

type Service interface {
	List(ctx context.Context, filter audit.Filter, limit, offset int) ([]audit.Event, int, error)
}

type Handler struct {
	Service Service
	Perms   middleware.PermissionStore
}

func NewHandler(service Service, perms middleware.PermissionStore) *Handler {
	return &Handler{Service: service, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	read := middleware.RequirePermission(auth.PermAuditRead, h.Perms)
	r.Route("/audit", func(r chi.Router) {
		r.With(read).Get("/events", h.handleListEvents)
		r.With(read).Get("/events/export", h.handleExportEvents)
		r.With(read).Get("/{entityType}/{entityID}", h.handleEntityHistory)
	})
}

func filterFrom(r *http.Request) audit.Filter {
	q := r.URL.Query()
	return audit.Filter{
		Action:     strings.TrimSpace(q.Get("action")),
		EntityType: strings.TrimSpace(q.Get("entityType")),
		EntityID:   strings.TrimSpace(q.Get("entityId")),
		ActorID:    strings.ToLower(strings.TrimSpace(q.Get("actorUserId"))),
	}
}

func (h *Handler) handleListEvents(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, filterFrom(r))
}

func (h *Handler) handleEntityHistory(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, audit.Filter{
		EntityType: chi.URLParam(r, "entityType"),
		EntityID:   chi.URLParam(r, "entityID"),
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request, filter audit.Filter) {
	reqID := middleware.GetRequestID(r.Context())
	page := shared.ParsePagination(r, 100, 500)

	events, total, err := h.Service.List(r.Context(), filter, page.Limit, page.Offset)
	if err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("audit list failed")
		api.Fail(w, http.StatusInternalServerError, "audit_list_failed", "failed to list audit events", reqID)
		return
	}

	w.Header().Set("X-Total-Count", strconv.Itoa(total))
	api.Success(w, api.NewPage(events, total, page.Limit, page.Offset), reqID)
}

func (h *Handler) handleExportEvents(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	events, _, err := h.Service.List(r.Context(), filterFrom(r), 0, 0)
	if err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("audit export failed")
		api.Fail(w, http.StatusInternalServerError, "audit_export_failed", "failed to export audit events", reqID)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename=audit-events.csv")
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"id", "actor_user_id", "action", "entity_type", "entity_id", "request_id", "ip", "created_at"}); err != nil {
		log.Ctx(r.Context()).Warn().Err(err).Msg("audit export header failed")
	}
	for _, evt := range events {
		row := []string{evt.ID, evt.ActorID, evt.Action, evt.EntityType, evt.EntityID, evt.RequestID, evt.IP, evt.CreatedAt.UTC().Format(time.RFC3339)}
		if err := writer.Write(row); err != nil {
			log.Ctx(r.Context()).Warn().Err(err).Msg("audit export row failed")
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		log.Ctx(r.Context()).Warn().Err(err).Msg("audit export flush failed")
	}
}
